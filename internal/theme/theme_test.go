package theme

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/coreman2200/funtimes-backdrop/internal/render"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestOpenMissingUsesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	s, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, render.Dark, s.Current())

	th, err := s.Toggle()
	require.NoError(t, err)
	assert.Equal(t, render.Light, th)

	p, err := LoadPrefs(path)
	require.NoError(t, err)
	assert.Equal(t, render.Light, p.Theme)
}

func TestOpenRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("theme: sepia\n"), 0644))
	_, err := Open(path, zerolog.Nop())
	assert.Error(t, err)
}

func TestSubscribers(t *testing.T) {
	s := NewSource(render.Light)
	var got []render.Theme
	cancel := s.Subscribe(func(th render.Theme) { got = append(got, th) })

	require.NoError(t, s.Set(render.Dark))
	require.NoError(t, s.Set(render.Dark))
	_, err := s.Toggle()
	require.NoError(t, err)
	assert.Equal(t, []render.Theme{render.Dark, render.Light}, got)

	cancel()
	cancel()
	require.NoError(t, s.Set(render.Dark))
	assert.Len(t, got, 2)

	assert.Error(t, s.Set("sepia"))
}

func TestNestedSetPersistsLatestTheme(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	s, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	s.Subscribe(func(th render.Theme) {
		if th == render.Light {
			assert.NoError(t, s.Set(render.Dark))
		}
	})

	require.NoError(t, s.Set(render.Light))
	assert.Equal(t, render.Dark, s.Current())
	p, err := LoadPrefs(path)
	require.NoError(t, err)
	assert.Equal(t, render.Dark, p.Theme)
}

func TestWatchPicksUpExternalEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	require.NoError(t, SavePrefs(path, Prefs{Theme: render.Dark}))
	s, err := Open(path, zerolog.Nop())
	require.NoError(t, err)

	changed := make(chan render.Theme, 4)
	defer s.Subscribe(func(th render.Theme) { changed <- th })()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()

	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("theme: light\n"), 0644)
		return s.Current() == render.Light
	}, 5*time.Second, 50*time.Millisecond)
	assert.Equal(t, render.Light, <-changed)

	cancel()
	require.NoError(t, <-done)
}

func TestWatchNeedsFile(t *testing.T) {
	assert.Error(t, NewSource(render.Dark).Watch(context.Background()))
}
