package preferences_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/billroom/internal/persist"
	"github.com/MrJamesThe3rd/billroom/internal/preferences"
)

func TestStore_Theme(t *testing.T) {
	s := preferences.NewStore(persist.Discard)

	assert.Equal(t, preferences.ThemeLight, s.Theme())
	assert.Equal(t, preferences.ThemeDark, s.ToggleTheme())
	assert.Equal(t, preferences.ThemeLight, s.ToggleTheme())

	assert.ErrorIs(t, s.SetTheme("sepia"), preferences.ErrInvalidTheme)
	require.NoError(t, s.SetTheme(preferences.ThemeDark))
	assert.Equal(t, preferences.ThemeDark, s.Theme())
}

func TestStore_PersistRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := persist.NewMemory()
	w := persist.NewWriter(mem, slog.Default())

	s := preferences.NewStore(w)
	s.ToggleTheme()
	s.SetAuthenticated(true)
	require.NoError(t, w.Flush(ctx))

	var (
		theme preferences.Theme
		auth  bool
	)

	require.True(t, persist.LoadJSON(ctx, mem, persist.KeyTheme, &theme))
	require.True(t, persist.LoadJSON(ctx, mem, persist.KeyAuth, &auth))

	restored := preferences.NewStore(persist.Discard)
	restored.Restore(theme, auth)

	assert.Equal(t, preferences.ThemeDark, restored.Theme())
	assert.True(t, restored.Authenticated())
}

func TestStore_RestoreIgnoresUnknownTheme(t *testing.T) {
	s := preferences.NewStore(persist.Discard)
	s.Restore("neon", false)

	assert.Equal(t, preferences.ThemeLight, s.Theme())
}
