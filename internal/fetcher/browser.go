package fetcher

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"job-links/internal/config"
	"job-links/internal/observability"
)

// BrowserFetcher renders pages in headless Chrome for sites that build their
// listings with JavaScript. It shares the no-retry, fixed-delay behaviour of
// Fetcher.
type BrowserFetcher struct {
	cfg         *config.Config
	logger      *observability.Logger
	launcher    *launcher.Launcher
	browser     *rod.Browser
	rateLimiter *RateLimiter
}

func NewBrowserFetcher(cfg *config.Config, logger *observability.Logger) (*BrowserFetcher, error) {
	l := launcher.New().Headless(true)
	if cfg.Rod.ChromePath != "" {
		l = l.Bin(cfg.Rod.ChromePath)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	return &BrowserFetcher{
		cfg:         cfg,
		logger:      logger,
		launcher:    l,
		browser:     browser,
		rateLimiter: NewRateLimiter(cfg.GetDelay()),
	}, nil
}

func (b *BrowserFetcher) Fetch(ctx context.Context, urlStr string) (*FetchResponse, error) {
	if err := b.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	page, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to open tab: %w", err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			b.logger.Warn("Failed to close tab", "url", urlStr, "error", err.Error())
		}
	}()
	p := page.Timeout(b.cfg.GetRodPageTimeout())

	if err := p.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: b.cfg.HTTP.UserAgent}); err != nil {
		return nil, fmt.Errorf("failed to set user agent: %w", err)
	}

	status := 0
	waitDocument := p.EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type != proto.NetworkResourceTypeDocument {
			return false
		}
		status = e.Response.Status
		return true
	})

	if err := p.Navigate(urlStr); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", urlStr, err)
	}
	waitDocument()

	if status < 200 || status > 299 {
		return nil, fmt.Errorf("%w: %d for %s", ErrUnexpectedStatus, status, urlStr)
	}

	if err := p.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load %s: %w", urlStr, err)
	}

	html, err := p.HTML()
	if err != nil {
		return nil, fmt.Errorf("read rendered HTML: %w", err)
	}

	info, err := p.Info()
	finalURL := urlStr
	if err == nil {
		finalURL = info.URL
	}

	b.logger.Debug("Page rendered", "url", urlStr, "status", status, "bytes", len(html))

	return &FetchResponse{
		StatusCode: status,
		Body:       []byte(html),
		URL:        finalURL,
	}, nil
}

func (b *BrowserFetcher) Close() error {
	err := b.browser.Close()
	b.launcher.Kill()
	return err
}
