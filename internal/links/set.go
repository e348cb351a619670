// Package links holds the job link set shared by extraction and storage.
package links

import "sort"

// Set is an unordered collection of distinct job links.
type Set map[string]struct{}

func NewSet(items ...string) Set {
	s := make(Set, len(items))
	for _, it := range items {
		s.Add(it)
	}
	return s
}

func (s Set) Add(link string) {
	s[link] = struct{}{}
}

func (s Set) Has(link string) bool {
	_, ok := s[link]
	return ok
}

// Merge adds every link of other to s.
func (s Set) Merge(other Set) {
	for link := range other {
		s[link] = struct{}{}
	}
}

// Difference returns the links of s that are not in other.
func (s Set) Difference(other Set) Set {
	out := make(Set)
	for link := range s {
		if !other.Has(link) {
			out[link] = struct{}{}
		}
	}
	return out
}

// Sorted returns the links in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for link := range s {
		out = append(out, link)
	}
	sort.Strings(out)
	return out
}
