// Package theme holds the page's light/dark preference.
package theme

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/coreman2200/funtimes-backdrop/internal/render"
)

// Default is used when no preference has been stored.
const Default = render.Dark

// Prefs is the on-disk preference file.
type Prefs struct {
	Theme render.Theme `yaml:"theme"`
}

func LoadPrefs(path string) (Prefs, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Prefs{}, err
	}
	var p Prefs
	if err := yaml.Unmarshal(b, &p); err != nil {
		return Prefs{}, err
	}
	th, err := render.ParseTheme(string(p.Theme))
	if err != nil {
		return Prefs{}, err
	}
	p.Theme = th
	return p, nil
}

func SavePrefs(path string, p Prefs) error {
	b, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Source is the current theme plus change notification. Subscribers run
// synchronously on the goroutine that changed the theme.
type Source struct {
	mu   sync.RWMutex
	cur  render.Theme
	path string
	subs map[int]func(render.Theme)
	next int
	log  zerolog.Logger

	// saveMu orders writes of the preference file.
	saveMu sync.Mutex
}

// NewSource keeps the theme in memory only.
func NewSource(initial render.Theme) *Source {
	if initial != render.Light {
		initial = render.Dark
	}
	return &Source{cur: initial, subs: map[int]func(render.Theme){}, log: zerolog.Nop()}
}

// Open loads the preference at path. A missing file yields the default theme;
// it is written on the first change.
func Open(path string, log zerolog.Logger) (*Source, error) {
	s := NewSource(Default)
	s.path = path
	s.log = log
	p, err := LoadPrefs(path)
	switch {
	case err == nil:
		s.cur = p.Theme
	case errors.Is(err, os.ErrNotExist):
		log.Debug().Str("path", path).Msg("no theme preference, using default")
	default:
		return nil, fmt.Errorf("theme prefs %s: %w", path, err)
	}
	return s, nil
}

func (s *Source) Current() render.Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Set changes the theme, notifies subscribers and persists the theme that is
// current once they return. Setting the current theme does nothing.
//
// Subscribers may call Set themselves, and Set may race with Watch, so a
// notification can be stale by the time it is delivered; subscribers should
// read Current rather than trust the argument.
func (s *Source) Set(th render.Theme) error {
	if _, err := render.ParseTheme(string(th)); err != nil {
		return err
	}
	if !s.swap(th) {
		return nil
	}
	return s.save()
}

// save writes the current theme. Serialised so the last write carries the
// latest value.
func (s *Source) save() error {
	if s.path == "" {
		return nil
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if err := SavePrefs(s.path, Prefs{Theme: s.Current()}); err != nil {
		return fmt.Errorf("save theme prefs: %w", err)
	}
	return nil
}

func (s *Source) Toggle() (render.Theme, error) {
	next := s.Current().Other()
	return next, s.Set(next)
}

// swap stores th and notifies subscribers if it differs from the current theme.
func (s *Source) swap(th render.Theme) bool {
	s.mu.Lock()
	if s.cur == th {
		s.mu.Unlock()
		return false
	}
	s.cur = th
	subs := make([]func(render.Theme), 0, len(s.subs))
	for i := 0; i < s.next; i++ {
		if fn, ok := s.subs[i]; ok {
			subs = append(subs, fn)
		}
	}
	s.mu.Unlock()

	s.log.Info().Str("theme", string(th)).Msg("theme changed")
	for _, fn := range subs {
		fn(th)
	}
	return true
}

// Subscribe registers fn for theme changes. The returned func unsubscribes.
func (s *Source) Subscribe(fn func(render.Theme)) (cancel func()) {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Watch applies external edits of the preference file until ctx is done.
func (s *Source) Watch(ctx context.Context) error {
	if s.path == "" {
		return errors.New("theme: no preference file to watch")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	// Watch the directory: editors replace the file rather than writing it.
	if err := w.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watch %s: %w", s.path, err)
	}
	target := filepath.Clean(s.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			p, err := LoadPrefs(s.path)
			if err != nil {
				s.log.Warn().Err(err).Str("path", s.path).Msg("ignoring unreadable theme prefs")
				continue
			}
			s.swap(p.Theme)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.Warn().Err(err).Msg("theme watcher")
		}
	}
}
