package app

import (
	"context"
	"fmt"
	"time"

	"job-links/internal/config"
	"job-links/internal/extractor"
	"job-links/internal/fetcher"
	"job-links/internal/links"
	"job-links/internal/observability"
	"job-links/internal/storage"
)

// PageFetcher downloads one search results page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*fetcher.FetchResponse, error)
}

type Orchestrator struct {
	cfg     *config.Config
	logger  *observability.Logger
	fetcher PageFetcher
	store   storage.Repository
	now     func() time.Time
}

func NewOrchestrator(
	cfg *config.Config,
	logger *observability.Logger,
	f PageFetcher,
	store storage.Repository,
) *Orchestrator {
	return &Orchestrator{
		cfg:     cfg,
		logger:  logger,
		fetcher: f,
		store:   store,
		now:     time.Now,
	}
}

// WithClock replaces the clock used to date the saved links.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

type SiteStats struct {
	Site       config.Site
	Pages      int
	Links      []string // every matching link found this run, sorted
	New        []string
	DailyPath  string
	MasterPath string
}

// Run crawls the configured sites one after another and stops at the first
// error. Stats of the sites finished before the error are still returned.
func (o *Orchestrator) Run(ctx context.Context) ([]*SiteStats, error) {
	results := make([]*SiteStats, 0, len(o.cfg.Sites))
	for _, site := range o.cfg.Sites {
		stats, err := o.RunSite(ctx, site)
		if err != nil {
			return results, fmt.Errorf("site %s: %w", site, err)
		}
		results = append(results, stats)
	}
	return results, nil
}

// RunSite fetches every configured page of site, merges the extracted links
// and saves them once. Nothing is saved if any page fails.
func (o *Orchestrator) RunSite(ctx context.Context, site config.Site) (*SiteStats, error) {
	spec, err := site.Spec()
	if err != nil {
		return nil, err
	}

	ext := extractor.New(spec.LinkPattern, o.cfg.Keywords)
	found := links.NewSet()
	log := o.logger.With("site", site.String())

	log.Info("Starting site crawl", "pages", o.cfg.Pages, "delay", o.cfg.GetDelay().String())

	for page := 0; page < o.cfg.Pages; page++ {
		pageURL := spec.PageURL(page)

		resp, err := o.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			log.Error("Fetch failed", "page", page, "url", pageURL, "error", err.Error())
			return nil, err
		}

		pageLinks, err := ext.Extract(string(resp.Body))
		if err != nil {
			log.Error("Extract failed", "page", page, "url", pageURL, "error", err.Error())
			return nil, fmt.Errorf("page %d: %w", page, err)
		}

		found.Merge(pageLinks)
		log.Info("Page processed",
			"page", page,
			"url", pageURL,
			"page_links", len(pageLinks),
			"total_links", len(found),
		)
	}

	res, err := o.store.Save(ctx, site, found, o.now())
	if err != nil {
		log.Error("Save failed", "error", err.Error())
		return nil, err
	}

	log.Info("Site crawl completed",
		"found", len(found),
		"new", len(res.New),
		"already_known", res.Known,
	)

	return &SiteStats{
		Site:       site,
		Pages:      o.cfg.Pages,
		Links:      found.Sorted(),
		New:        res.New,
		DailyPath:  res.DailyPath,
		MasterPath: res.MasterPath,
	}, nil
}
