package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

type RobotsCache struct {
	cache     map[string]*robotsEntry
	ttl       time.Duration
	userAgent string
	// limiter spaces robots.txt downloads together with page requests
	limiter *RateLimiter
	mu      sync.RWMutex
}

type robotsEntry struct {
	// nil means allow everything
	data      *robotstxt.RobotsData
	expiresAt time.Time
}

func NewRobotsCache(ttl time.Duration, userAgent string, limiter *RateLimiter) *RobotsCache {
	return &RobotsCache{
		cache:     make(map[string]*robotsEntry),
		ttl:       ttl,
		userAgent: userAgent,
		limiter:   limiter,
	}
}

// IsAllowed checks pageURL against the host's robots.txt. A robots.txt that
// is missing, unreachable or unparsable allows everything.
func (rc *RobotsCache) IsAllowed(ctx context.Context, pageURL *url.URL, client *http.Client) (bool, error) {
	origin := pageURL.Scheme + "://" + pageURL.Host

	rc.mu.RLock()
	cached, exists := rc.cache[origin]
	rc.mu.RUnlock()

	if !exists || time.Now().After(cached.expiresAt) {
		if rc.limiter != nil {
			if err := rc.limiter.Wait(ctx); err != nil {
				return false, err
			}
		}
		data := rc.fetch(ctx, origin, client)
		if err := ctx.Err(); err != nil {
			return false, err
		}
		cached = &robotsEntry{
			data:      data,
			expiresAt: time.Now().Add(rc.ttl),
		}
		rc.mu.Lock()
		rc.cache[origin] = cached
		rc.mu.Unlock()
	}

	if cached.data == nil {
		return true, nil
	}
	return cached.data.TestAgent(pageURL.RequestURI(), rc.userAgent), nil
}

func (rc *RobotsCache) fetch(ctx context.Context, origin string, client *http.Client) *robotstxt.RobotsData {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", rc.userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}

	data, err := robotstxt.FromBytes(body)
	if err != nil {
		return nil
	}
	return data
}
