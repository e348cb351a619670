// Package files keeps the link records as flat text files: one append-only
// master file per site and one daily snapshot per site and run date.
package files

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"job-links/internal/config"
	"job-links/internal/links"
	"job-links/internal/observability"
	"job-links/internal/storage"
)

const (
	DateLayout = "2006-01-02"

	lockRetryDelay = 200 * time.Millisecond
	maxLineBytes   = 1 << 20
)

type Repository struct {
	dir      string
	basename string
	logger   *observability.Logger
}

func NewRepository(dir, basename string, logger *observability.Logger) *Repository {
	return &Repository{
		dir:      dir,
		basename: basename,
		logger:   logger,
	}
}

// MasterPath is <dir>/<basename>_<site>_master.txt.
func (r *Repository) MasterPath(site config.Site) string {
	return filepath.Join(r.dir, fmt.Sprintf("%s_%s_master.txt", r.basename, site))
}

// DailyPath is <dir>/<basename>_<site>_<YYYY-MM-DD>.txt.
func (r *Repository) DailyPath(site config.Site, date time.Time) string {
	return filepath.Join(r.dir, fmt.Sprintf("%s_%s_%s.txt", r.basename, site, date.Format(DateLayout)))
}

func (r *Repository) Save(ctx context.Context, site config.Site, found links.Set, date time.Time) (*storage.SaveResult, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	masterPath := r.MasterPath(site)
	dailyPath := r.DailyPath(site, date)

	unlock, err := r.lock(ctx, masterPath)
	if err != nil {
		return nil, err
	}
	defer unlock()

	records, unterminated, err := readMaster(masterPath)
	if err != nil {
		return nil, err
	}
	known := links.NewSet()
	for _, rec := range records {
		known.Add(rec.Link)
	}

	fresh := found.Difference(known).Sorted()
	day := date.Format(DateLayout)

	if err := os.Remove(dailyPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to remove old daily file: %w", err)
	}

	if err := writeLines(dailyPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fresh, func(link string) string {
		return link
	}); err != nil {
		return nil, fmt.Errorf("failed to write daily file: %w", err)
	}

	masterLines := make([]string, 0, len(fresh))
	for _, link := range fresh {
		masterLines = append(masterLines, link+";"+day)
	}
	// a last line without its newline would otherwise swallow the first appended record
	if unterminated && len(masterLines) > 0 {
		masterLines[0] = "\n" + masterLines[0]
	}
	if err := writeLines(masterPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, masterLines, func(line string) string {
		return line
	}); err != nil {
		return nil, fmt.Errorf("failed to append to master record: %w", err)
	}

	r.logger.Info("Links saved",
		"site", site.String(),
		"found", len(found),
		"new", len(fresh),
		"daily_file", dailyPath,
	)

	return &storage.SaveResult{
		Site:       site,
		New:        fresh,
		Known:      len(known),
		DailyPath:  dailyPath,
		MasterPath: masterPath,
	}, nil
}

func (r *Repository) Load(ctx context.Context, site config.Site) ([]storage.Record, error) {
	masterPath := r.MasterPath(site)

	if _, err := os.Stat(masterPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat master record: %w", err)
	}

	unlock, err := r.lock(ctx, masterPath)
	if err != nil {
		return nil, err
	}
	defer unlock()

	records, _, err := readMaster(masterPath)
	return records, err
}

// lock takes an exclusive advisory lock next to the master record so that
// overlapping runs do not interleave their appends.
// The directory of masterPath must already exist.
func (r *Repository) lock(ctx context.Context, masterPath string) (func(), error) {
	fl := flock.New(masterPath + ".lock")
	locked, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to lock master record: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("failed to lock master record %s", masterPath)
	}

	return func() {
		if err := fl.Unlock(); err != nil {
			r.logger.Warn("Failed to unlock master record", "path", masterPath, "error", err.Error())
		}
	}, nil
}

// readMaster parses the master record. A missing file is an empty record.
// unterminated reports a non-empty file whose last byte is not '\n'.
func readMaster(path string) (records []storage.Record, unterminated bool, err error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to open master record: %w", err)
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, err := parseRecord(line)
		if err != nil {
			return nil, false, fmt.Errorf("%s:%d: %w", path, lineNum, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, false, fmt.Errorf("failed to read master record: %w", err)
	}

	unterminated, err = lacksTrailingNewline(file)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read master record: %w", err)
	}
	return records, unterminated, nil
}

func lacksTrailingNewline(file *os.File) (bool, error) {
	info, err := file.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() == 0 {
		return false, nil
	}
	last := make([]byte, 1)
	if _, err := file.ReadAt(last, info.Size()-1); err != nil {
		return false, err
	}
	return last[0] != '\n', nil
}

func parseRecord(line string) (storage.Record, error) {
	link, day, ok := strings.Cut(line, ";")
	if !ok {
		return storage.Record{}, fmt.Errorf("%w: missing ';' in %q", storage.ErrMalformedRecord, line)
	}
	if link == "" {
		return storage.Record{}, fmt.Errorf("%w: empty link in %q", storage.ErrMalformedRecord, line)
	}
	firstSeen, err := time.Parse(DateLayout, day)
	if err != nil {
		return storage.Record{}, fmt.Errorf("%w: bad date in %q: %v", storage.ErrMalformedRecord, line, err)
	}
	return storage.Record{Link: link, FirstSeen: firstSeen}, nil
}

// writeLines opens path with flag and writes one formatted line per item.
func writeLines(path string, flag int, items []string, format func(string) string) (err error) {
	file, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	w := bufio.NewWriter(file)
	for _, item := range items {
		if _, err := w.WriteString(format(item) + "\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}
