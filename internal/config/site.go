package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrUnknownSite = errors.New("unknown site")

// Site identifies a supported recruitment website.
type Site int

const (
	SiteEldorado Site = iota + 1
	SitePracuj
)

// AllSites lists every supported site in a stable order.
var AllSites = []Site{SiteEldorado, SitePracuj}

// Slugs may carry Polish letters, so word characters are Unicode letters
// and digits rather than RE2's ASCII-only \w.
var (
	eldoradoPattern = regexp.MustCompile(`^https://czyjesteldorado\.pl/praca/\d+-[\p{L}\p{N}_-]+$`)
	pracujPattern   = regexp.MustCompile(`^https://www\.pracuj\.pl/praca/[\p{L}\p{N}_-]+,oferta,\d+$`)
)

// SiteSpec describes how to page through a site's search results and how
// its job posting links look.
type SiteSpec struct {
	// SearchURL contains a single %d verb for the page number.
	SearchURL   string
	FirstPage   int
	LinkPattern *regexp.Regexp
}

// PageURL resolves the search URL for the zero-based page index.
func (s SiteSpec) PageURL(page int) string {
	return fmt.Sprintf(s.SearchURL, s.FirstPage+page)
}

// Spec returns the static crawl description of the site.
func (s Site) Spec() (SiteSpec, error) {
	switch s {
	case SiteEldorado:
		return SiteSpec{
			SearchURL:   "https://czyjesteldorado.pl/search?q=&page=%d",
			FirstPage:   0,
			LinkPattern: eldoradoPattern,
		}, nil
	case SitePracuj:
		return SiteSpec{
			SearchURL:   "https://www.pracuj.pl/praca?pn=%d",
			FirstPage:   1,
			LinkPattern: pracujPattern,
		}, nil
	}
	return SiteSpec{}, fmt.Errorf("%w: %d", ErrUnknownSite, int(s))
}

func (s Site) String() string {
	switch s {
	case SiteEldorado:
		return "eldorado"
	case SitePracuj:
		return "pracuj"
	}
	return fmt.Sprintf("site(%d)", int(s))
}

// ParseSite maps a configured site name to its Site value.
func ParseSite(name string) (Site, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "eldorado":
		return SiteEldorado, nil
	case "pracuj":
		return SitePracuj, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSite, name)
}

func (s *Site) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseSite(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s Site) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}
