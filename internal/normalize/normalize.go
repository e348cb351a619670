package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// URL trims the whitespace surrounding an href. The rest of the href,
// including any #fragment or query, is kept as written.
func URL(urlStr string) string {
	return strings.TrimSpace(urlStr)
}

// Lower maps s to lower case with the Unicode default rules. Unlike case
// folding it leaves letters such as "ß" alone.
func Lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// Keywords lowercases every keyword and drops blanks and duplicates, keeping
// the first occurrence order.
func Keywords(kws []string) []string {
	out := make([]string, 0, len(kws))
	seen := make(map[string]struct{}, len(kws))
	for _, kw := range kws {
		kw = Lower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}

// ContainsAny reports whether the lowercased text contains at least one of
// the already lowercased keywords as a substring.
func ContainsAny(text string, lowered []string) bool {
	text = Lower(text)
	for _, kw := range lowered {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
