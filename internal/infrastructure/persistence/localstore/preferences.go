package localstore

import (
	"context"

	"github.com/daidai-0318/nanimeshi-web/internal/ports/outbound"
	"github.com/daidai-0318/nanimeshi-web/pkg/errors"
)

// Theme values.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// PreferenceStore stores scalar preferences under their own keys.
type PreferenceStore struct {
	kv outbound.KVStore
}

// NewPreferenceStore creates a preference store over kv.
func NewPreferenceStore(kv outbound.KVStore) *PreferenceStore {
	return &PreferenceStore{kv: kv}
}

var _ outbound.PreferenceRepository = (*PreferenceStore)(nil)

// Theme returns the stored theme, defaulting to light.
func (s *PreferenceStore) Theme(ctx context.Context) (string, error) {
	data, ok, err := s.kv.Get(ctx, keyTheme)
	if err != nil {
		return "", errors.NewStorageError("read theme", err)
	}
	if !ok || string(data) != ThemeDark {
		return ThemeLight, nil
	}
	return ThemeDark, nil
}

// SetTheme stores the theme preference.
func (s *PreferenceStore) SetTheme(ctx context.Context, theme string) error {
	if theme != ThemeLight && theme != ThemeDark {
		return errors.NewValidationError("theme must be light or dark")
	}
	if err := s.kv.Set(ctx, keyTheme, []byte(theme)); err != nil {
		return errors.NewStorageError("write theme", err)
	}
	return nil
}
