package answer

import (
	"context"
	"fmt"
)

// Answer is one knowledge-base hit.
type Answer struct {
	Text       string  `json:"answer"`
	Confidence float64 `json:"confidence"`
}

// Searcher queries a knowledge base. One instance exists per supported
// locale; retry and backoff belong to the service behind it.
type Searcher interface {
	Search(ctx context.Context, query string) (Answer, bool, error)
}

// Set holds the per-locale searcher instances.
type Set struct {
	byLocale map[string]Searcher
}

// NewSet validates and wraps the locale → searcher dictionary. An
// empty dictionary is a configuration error.
func NewSet(byLocale map[string]Searcher) (*Set, error) {
	if len(byLocale) == 0 {
		return nil, fmt.Errorf("answer: searcher dictionary is empty")
	}
	for loc, s := range byLocale {
		if s == nil {
			return nil, fmt.Errorf("answer: nil searcher for locale %q", loc)
		}
	}
	cp := make(map[string]Searcher, len(byLocale))
	for loc, s := range byLocale {
		cp[loc] = s
	}
	return &Set{byLocale: cp}, nil
}

// For returns the searcher configured for locale.
func (s *Set) For(locale string) (Searcher, bool) {
	sr, ok := s.byLocale[locale]
	return sr, ok
}
