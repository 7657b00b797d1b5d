package frame

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const DefaultFPS = 60

// Loop is the real-time Scheduler: one goroutine, one frame per tick, callbacks
// run sequentially in request order.
type Loop struct {
	q   *queue
	fps int
	log zerolog.Logger
}

func NewLoop(fps int, log zerolog.Logger) *Loop {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Loop{q: newQueue(), fps: fps, log: log}
}

func (l *Loop) RequestFrame(fn func()) Token { return l.q.request(fn) }

func (l *Loop) CancelFrame(tok Token) { l.q.cancel(tok) }

func (l *Loop) FPS() int { return l.fps }

func (l *Loop) Frames() uint64 { return l.q.frames.Load() }

func (l *Loop) Pending() int { return l.q.size() }

// Run drives frames until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	tick := time.NewTicker(time.Second / time.Duration(l.fps))
	defer tick.Stop()
	l.log.Debug().Int("fps", l.fps).Msg("frame loop started")
	for {
		select {
		case <-ctx.Done():
			l.log.Debug().Uint64("frames", l.Frames()).Msg("frame loop stopped")
			return nil
		case <-tick.C:
			l.q.run(l.guard)
		}
	}
}

// guard keeps one misbehaving callback from taking the loop down.
func (l *Loop) guard(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error().Err(fmt.Errorf("%v", r)).Msg("frame callback panicked")
		}
	}()
	fn()
}
