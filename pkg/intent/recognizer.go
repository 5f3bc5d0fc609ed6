package intent

import (
	"context"
	"fmt"
)

// None is the effective intent when no label clears the confidence
// threshold.
const None = "None"

// DefaultThreshold is the minimum confidence the top intent must reach
// to be acted on.
const DefaultThreshold = 0.7

// Recognition is the classifier output for one utterance.
type Recognition struct {
	Intents  map[string]float64 `json:"intents"`
	Entities map[string]string  `json:"entities,omitempty"`
}

// Top returns the highest-scoring intent and its confidence. Ties are
// broken by label so the result is deterministic. An empty recognition
// yields (None, 0).
func (r Recognition) Top() (string, float64) {
	top := None
	best := 0.0
	first := true
	for label, score := range r.Intents {
		if first || score > best || (score == best && label < top) {
			top, best, first = label, score, false
		}
	}
	if first {
		return None, 0
	}
	return top, best
}

// Effective applies the confidence threshold: if the raw top intent
// scores below it, the effective intent is None regardless of label.
func Effective(r Recognition, threshold float64) (string, float64) {
	top, score := r.Top()
	if score < threshold {
		return None, score
	}
	return top, score
}

// Recognizer classifies one utterance. One instance exists per
// supported locale.
type Recognizer interface {
	Recognize(ctx context.Context, text string) (Recognition, error)
}

// Set holds the per-locale recognizer instances.
type Set struct {
	byLocale map[string]Recognizer
}

// NewSet validates and wraps the locale → recognizer dictionary. An
// empty dictionary is a configuration error.
func NewSet(byLocale map[string]Recognizer) (*Set, error) {
	if len(byLocale) == 0 {
		return nil, fmt.Errorf("intent: recognizer dictionary is empty")
	}
	for loc, r := range byLocale {
		if r == nil {
			return nil, fmt.Errorf("intent: nil recognizer for locale %q", loc)
		}
	}
	cp := make(map[string]Recognizer, len(byLocale))
	for loc, r := range byLocale {
		cp[loc] = r
	}
	return &Set{byLocale: cp}, nil
}

// For returns the recognizer configured for locale.
func (s *Set) For(locale string) (Recognizer, bool) {
	r, ok := s.byLocale[locale]
	return r, ok
}

// Has reports whether a recognizer exists for locale.
func (s *Set) Has(locale string) bool {
	_, ok := s.byLocale[locale]
	return ok
}
