package locale

import (
	"context"
	"errors"

	"github.com/conciergebot/concierge/pkg/state"
)

// UserData is the persisted per-user record. One record exists per
// user key, created lazily on first access.
type UserData struct {
	Locale string `json:"locale,omitempty"`
	Name   string `json:"name,omitempty"`
}

// Store reads and writes UserData through a state accessor. Writes are
// idempotent: setting an unchanged locale skips the persisted write.
type Store struct {
	acc state.Accessor
}

func NewStore(acc state.Accessor) (*Store, error) {
	if acc == nil {
		return nil, errors.New("locale: state accessor is required")
	}
	return &Store{acc: acc}, nil
}

func userDataKey(userKey string) string {
	return "user:" + userKey
}

// Get loads the user's record. A missing record is returned as a zero
// UserData with ok=false; that is not an error.
func (s *Store) Get(ctx context.Context, userKey string) (UserData, bool, error) {
	var ud UserData
	ok, err := s.acc.Get(ctx, userDataKey(userKey), &ud)
	if err != nil {
		return UserData{}, false, err
	}
	return ud, ok, nil
}

// SetLocale persists the locale for userKey, preserving the rest of
// the record. A write that would not change the stored locale is
// skipped.
func (s *Store) SetLocale(ctx context.Context, userKey, locale string) error {
	ud, ok, err := s.Get(ctx, userKey)
	if err != nil {
		return err
	}
	if ok && ud.Locale == locale {
		return nil
	}
	ud.Locale = locale
	return s.acc.Set(ctx, userDataKey(userKey), ud)
}

// SetName persists the user's display name, preserving the locale.
func (s *Store) SetName(ctx context.Context, userKey, name string) error {
	ud, ok, err := s.Get(ctx, userKey)
	if err != nil {
		return err
	}
	if ok && ud.Name == name {
		return nil
	}
	ud.Name = name
	return s.acc.Set(ctx, userDataKey(userKey), ud)
}

// Reset replaces the record with a fresh one retaining only the locale.
func (s *Store) Reset(ctx context.Context, userKey string) error {
	ud, _, err := s.Get(ctx, userKey)
	if err != nil {
		return err
	}
	return s.acc.Set(ctx, userDataKey(userKey), UserData{Locale: ud.Locale})
}
