// Package section mounts decorative scenes into page sections and rebuilds
// them when the theme changes.
package section

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-backdrop/internal/diagnostics"
	"github.com/coreman2200/funtimes-backdrop/internal/dom"
	"github.com/coreman2200/funtimes-backdrop/internal/input"
	"github.com/coreman2200/funtimes-backdrop/internal/render"
	"github.com/coreman2200/funtimes-backdrop/internal/scene"
)

// Themes is read once per construction and watched for changes.
type Themes interface {
	Current() render.Theme
	Subscribe(fn func(render.Theme)) (cancel func())
}

type options struct {
	log    zerolog.Logger
	report diagnostics.Reporter
	scene  []scene.Option
}

type Option func(*options)

func WithLogger(l zerolog.Logger) Option { return func(o *options) { o.log = l } }

func WithReporter(r diagnostics.Reporter) Option { return func(o *options) { o.report = r } }

// WithSceneOptions is passed to every controller the section constructs.
func WithSceneOptions(opts ...scene.Option) Option {
	return func(o *options) { o.scene = append(o.scene, opts...) }
}

// Section hosts at most one live controller in its container. A section whose
// scene failed to construct is degraded; the rest of the page is unaffected.
type Section struct {
	mu        sync.Mutex
	name      string
	container dom.Container
	cfg       scene.Config
	themes    Themes
	opts      options
	log       zerolog.Logger
	bridge    *input.Bridge

	ctrl      *scene.Controller
	err       error
	unsub     func()
	unmounted bool
	builds    int
}

// Mount constructs the scene with the current theme and starts following
// theme changes. It never fails; check Err for a degraded section.
func Mount(name string, container dom.Container, cfg scene.Config, themes Themes, opts ...Option) *Section {
	o := options{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	s := &Section{
		name:      name,
		container: container,
		cfg:       cfg,
		themes:    themes,
		opts:      o,
		log:       o.log.With().Str("section", name).Logger(),
		bridge:    input.NewBridge(container),
	}
	s.mu.Lock()
	s.construct(themes.Current())
	s.mu.Unlock()
	s.unsub = themes.Subscribe(s.rebuild)
	return s
}

// construct builds a controller for th. Callers hold s.mu.
func (s *Section) construct(th render.Theme) {
	opts := append([]scene.Option{
		scene.WithName(s.name),
		scene.WithLogger(s.opts.log),
		scene.WithErrorHandler(s.frameFailed),
	}, s.opts.scene...)
	c, err := scene.New(s.container, s.cfg, th, opts...)
	s.builds++
	if err != nil {
		s.ctrl, s.err = nil, err
		s.bridge.SetTarget(nil)
		s.log.Warn().Err(err).Bool("recoverable", scene.Recoverable(err)).Msg("scene degraded")
		s.opts.report.Report(diagnostics.Degraded(s.name, err, scene.Recoverable(err)))
		return
	}
	s.ctrl, s.err = c, nil
	s.bridge.SetTarget(c)
}

// rebuild replaces the controller with one for the current theme: destroy the
// old one, then construct anew. Notifications may arrive out of order, so the
// notified theme is ignored and a scene already drawing the current theme is
// kept.
func (s *Section) rebuild(render.Theme) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unmounted {
		return
	}
	th := s.themes.Current()
	if s.ctrl != nil && s.ctrl.Theme() == th && s.ctrl.Err() == nil {
		return
	}
	if s.ctrl != nil {
		if err := s.ctrl.Destroy(); err != nil {
			s.log.Error().Err(err).Msg("destroy before rebuild")
		}
		s.ctrl = nil
	}
	s.log.Debug().Str("theme", string(th)).Msg("rebuilding scene")
	s.construct(th)
	if s.err == nil {
		s.opts.report.Report(diagnostics.ThemeRebuilt(s.name, string(th)))
	}
}

func (s *Section) frameFailed(err error) {
	s.opts.report.Report(diagnostics.FrameFailed(s.name, err))
}

// Retry constructs the scene again if the section is degraded or its frame
// loop stopped.
func (s *Section) Retry() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unmounted {
		return errors.New("section unmounted")
	}
	if s.ctrl != nil {
		if s.ctrl.Err() == nil {
			return nil
		}
		if err := s.ctrl.Destroy(); err != nil {
			s.log.Error().Err(err).Msg("destroy stopped scene")
		}
		s.ctrl = nil
	}
	s.construct(s.themes.Current())
	if s.err == nil {
		s.opts.report.Report(diagnostics.Recovered(s.name))
	}
	return s.err
}

// Unmount stops following the theme and destroys the scene. Further calls do
// nothing.
func (s *Section) Unmount() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unmounted {
		return nil
	}
	s.unmounted = true
	if s.unsub != nil {
		s.unsub()
	}
	s.bridge.SetTarget(nil)
	if s.ctrl == nil {
		return nil
	}
	err := s.ctrl.Destroy()
	s.ctrl = nil
	return err
}

func (s *Section) HoverEnter()                { s.bridge.HoverEnter() }
func (s *Section) HoverLeave()                { s.bridge.HoverLeave() }
func (s *Section) PointerMove(px, py float64) { s.bridge.PointerMove(px, py) }

func (s *Section) Name() string             { return s.name }
func (s *Section) Container() dom.Container { return s.container }

// Controller is the live controller, or nil when degraded or unmounted.
func (s *Section) Controller() *scene.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl
}

// Err is the construction error of a degraded section.
func (s *Section) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Section) Live() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl != nil && s.ctrl.State() == scene.StateLive && s.ctrl.Err() == nil
}

// Builds counts construction attempts.
func (s *Section) Builds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.builds
}
