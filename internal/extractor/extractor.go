package extractor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"job-links/internal/links"
	"job-links/internal/normalize"
)

// Extractor picks job posting links out of a search results page.
type Extractor struct {
	pattern  *regexp.Regexp
	keywords []string
}

// New builds an Extractor. The pattern always has to match the whole href,
// even when it was written without ^ and $ anchors.
func New(pattern *regexp.Regexp, keywords []string) *Extractor {
	return &Extractor{
		pattern:  regexp.MustCompile(`^(?:` + pattern.String() + `)$`),
		keywords: normalize.Keywords(keywords),
	}
}

// Extract returns the distinct hrefs of the page's anchors that have the
// job link shape and mention at least one keyword.
func (e *Extractor) Extract(html string) (links.Set, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	found := links.NewSet()
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		href = normalize.URL(href)
		if e.Matches(href) {
			found.Add(href)
		}
	})

	return found, nil
}

// Matches reports whether href passes both the shape and keyword filters.
func (e *Extractor) Matches(href string) bool {
	return e.pattern.MatchString(href) && normalize.ContainsAny(href, e.keywords)
}
