package core

import (
	"context"
	"log/slog"
	"sync"

	"book-finder/internal/core/model"
)

const themeKey = "theme"

// ThemeStore holds the light/dark preference. It shares the key-value
// storage with favorites but under its own key.
type ThemeStore struct {
	mu    sync.Mutex
	theme model.Theme
	kv    KeyValueStore
	log   *slog.Logger
}

// NewThemeStore loads the saved theme, defaulting to light.
func NewThemeStore(ctx context.Context, kv KeyValueStore, logger *slog.Logger) *ThemeStore {
	s := &ThemeStore{theme: model.ThemeLight, kv: kv, log: logger}
	raw, err := kv.Get(ctx, themeKey)
	if err != nil {
		return s
	}
	if t := model.Theme(raw); t.Valid() {
		s.theme = t
	} else {
		logger.Warn("theme: ignoring unknown value", "value", string(raw))
	}
	return s
}

func (s *ThemeStore) Get() model.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

func (s *ThemeStore) Set(ctx context.Context, t model.Theme) error {
	if !t.Valid() {
		return model.ErrValidation
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(ctx, t)
}

// Toggle switches between light and dark and returns the new theme.
func (s *ThemeStore) Toggle(ctx context.Context) (model.Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := model.ThemeDark
	if s.theme == model.ThemeDark {
		next = model.ThemeLight
	}
	if err := s.setLocked(ctx, next); err != nil {
		return s.theme, err
	}
	return next, nil
}

func (s *ThemeStore) setLocked(ctx context.Context, t model.Theme) error {
	if err := s.kv.Put(ctx, themeKey, []byte(t)); err != nil {
		s.log.Error("theme: persist failed", "err", err)
		return err
	}
	s.theme = t
	return nil
}
