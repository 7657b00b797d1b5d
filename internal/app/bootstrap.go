package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/coreman2200/funtimes-backdrop/internal/config"
	diag "github.com/coreman2200/funtimes-backdrop/internal/diagnostics"
	"github.com/coreman2200/funtimes-backdrop/internal/frame"
	"github.com/coreman2200/funtimes-backdrop/internal/input"
	"github.com/coreman2200/funtimes-backdrop/internal/layout"
	"github.com/coreman2200/funtimes-backdrop/internal/led"
	"github.com/coreman2200/funtimes-backdrop/internal/render"
	"github.com/coreman2200/funtimes-backdrop/internal/scene"
	"github.com/coreman2200/funtimes-backdrop/internal/section"
	"github.com/coreman2200/funtimes-backdrop/internal/theme"
	"github.com/coreman2200/funtimes-backdrop/internal/ws"
)

// Core wires the page, its frame loop and the preview outputs.
type Core struct {
	Cfg    *config.Config
	Themes *theme.Source
	Disp   *input.Dispatcher
	Loop   *frame.Loop
	Diags  *diag.Buffer
	Page   *section.Page
	Server *ws.Server
	Mirror *led.Mirror

	sinks *sinks
	log   zerolog.Logger
}

// Options override parts of the wiring, mostly for tests.
type Options struct {
	Backend render.Backend
	// Themes replaces the prefs-file theme source.
	Themes *theme.Source
	// LED replaces the configured LED driver.
	LED led.Driver
}

// sinks lets outputs created after the page receive its frames.
type sinks struct {
	mu   sync.RWMutex
	list []scene.Sink
}

func (s *sinks) add(k scene.Sink) {
	s.mu.Lock()
	s.list = append(s.list, k)
	s.mu.Unlock()
}

func (s *sinks) WriteFrame(f scene.Frame) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var errs []error
	for _, k := range s.list {
		if err := k.WriteFrame(f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func InitCore(cfg *config.Config, opts Options, log zerolog.Logger) (*Core, error) {
	presets, err := section.FromConfig(cfg)
	if err != nil {
		return nil, err
	}

	c := &Core{
		Cfg:   cfg,
		Disp:  input.NewDispatcher(render.Size{W: cfg.Window.W, H: cfg.Window.H}),
		Loop:  frame.NewLoop(cfg.FPS, log),
		Diags: diag.NewBuffer(128),
		sinks: &sinks{},
		log:   log,
	}

	c.Themes = opts.Themes
	if c.Themes == nil {
		if c.Themes, err = theme.Open(cfg.PrefsPath, log); err != nil {
			return nil, err
		}
	}

	// LED mirror
	l := layout.FromConfig(cfg.LED)
	drv := opts.LED
	if drv == nil {
		if drv, err = led.Open(cfg.LED, l.Count(), log); err != nil {
			return nil, err
		}
	}
	if drv != nil {
		c.Mirror = led.NewMirror(cfg.LED.Section, l, led.NewLimiter(cfg.LED.Power), cfg.LED.Brightness, drv, log)
		c.Mirror.SetGamma(cfg.LED.Gamma)
		c.sinks.add(c.Mirror)
	}

	sceneOpts := []scene.Option{scene.WithScheduler(c.Loop), scene.WithSink(c.sinks)}
	if opts.Backend != nil {
		sceneOpts = append(sceneOpts, scene.WithBackend(opts.Backend))
	}
	c.Diags.Subscribe(func(d diag.Diagnostic) {
		log.Info().Str("code", d.Code).Str("section", d.Section).Str("detail", d.Detail).Msg(d.Summary)
	})
	c.Page = section.NewPage(presets, c.Themes, c.Disp,
		section.WithLogger(log),
		section.WithReporter(c.Diags.Reporter()),
		section.WithSceneOptions(sceneOpts...))

	c.Server = ws.NewServer(c.Page, c.Themes, c.Disp, c.Diags, log)
	c.sinks.add(c.Server)

	log.Info().
		Strs("live", c.Page.Live()).
		Strs("degraded", c.Page.Degraded()).
		Str("theme", string(c.Themes.Current())).
		Msg("page mounted")
	return c, nil
}

// Run drives frames, the theme watcher and the HTTP server until ctx is done.
func (c *Core) Run(ctx context.Context, addr string) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return c.Loop.Run(ctx) })

	if c.Cfg.PrefsPath != "" {
		g.Go(func() error {
			if err := c.Themes.Watch(ctx); err != nil {
				c.log.Warn().Err(err).Msg("theme watch disabled")
			}
			return nil
		})
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      withCORS(c.Server.Handler()),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	g.Go(func() error {
		c.log.Info().Str("addr", addr).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = c.Server.Close()
		return srv.Shutdown(sctx)
	})

	return g.Wait()
}

// Close unmounts the page and releases the LED strip.
func (c *Core) Close() error {
	err := c.Page.Unmount()
	if cerr := c.Server.Close(); err == nil {
		err = cerr
	}
	if c.Mirror != nil {
		if cerr := c.Mirror.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}
