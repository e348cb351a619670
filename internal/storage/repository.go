package storage

import (
	"context"
	"errors"
	"time"

	"job-links/internal/config"
	"job-links/internal/links"
)

// ErrMalformedRecord is returned when a master record line cannot be parsed.
var ErrMalformedRecord = errors.New("malformed master record line")

// Record is one line of the master record: a link and the day it was first seen.
type Record struct {
	Link      string
	FirstSeen time.Time
}

// SaveResult describes what one Save call wrote.
type SaveResult struct {
	Site       config.Site
	New        []string // links written to the daily file, sorted
	Known      int      // links already present in the master record before Save
	DailyPath  string
	MasterPath string
}

// Repository persists the links found for a site across runs.
type Repository interface {
	// Save writes the links of found that the master record does not hold
	// yet to the daily file for date, replacing any earlier daily file of
	// that date, and appends them to the master record.
	Save(ctx context.Context, site config.Site, found links.Set, date time.Time) (*SaveResult, error)

	// Load returns the master record of site in file order.
	Load(ctx context.Context, site config.Site) ([]Record, error)
}
