package preferences

import (
	"errors"
	"sync"

	"github.com/MrJamesThe3rd/billroom/internal/persist"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

var ErrInvalidTheme = errors.New("theme must be light or dark")

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Store holds the UI theme and the signed-in flag.
type Store struct {
	mu            sync.RWMutex
	theme         Theme
	authenticated bool
	sink          persist.Sink
}

func NewStore(sink persist.Sink) *Store {
	return &Store{theme: ThemeLight, sink: sink}
}

// Restore applies persisted values; an unknown theme keeps the default.
func (s *Store) Restore(theme Theme, authenticated bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if theme.Valid() {
		s.theme = theme
	}

	s.authenticated = authenticated
}

func (s *Store) Theme() Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.theme
}

func (s *Store) SetTheme(theme Theme) error {
	if !theme.Valid() {
		return ErrInvalidTheme
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.theme = theme
	s.sink.Put(persist.KeyTheme, s.theme)

	return nil
}

// ToggleTheme flips between light and dark and returns the new theme.
func (s *Store) ToggleTheme() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.theme == ThemeDark {
		s.theme = ThemeLight
	} else {
		s.theme = ThemeDark
	}

	s.sink.Put(persist.KeyTheme, s.theme)

	return s.theme
}

func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.authenticated
}

func (s *Store) SetAuthenticated(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.authenticated = v
	s.sink.Put(persist.KeyAuth, s.authenticated)
}
