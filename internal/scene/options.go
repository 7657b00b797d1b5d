package scene

import (
	"image"

	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-backdrop/internal/frame"
	"github.com/coreman2200/funtimes-backdrop/internal/input"
	"github.com/coreman2200/funtimes-backdrop/internal/render"
)

// Frame is one rendered image handed to sinks. Image is a private copy.
type Frame struct {
	Scene string
	ID    string
	Seq   uint64
	Image image.Image
}

// Sink receives every rendered frame. It runs on the frame goroutine and must
// not call back into the controller.
type Sink interface {
	WriteFrame(f Frame) error
}

type options struct {
	name     string
	sched    frame.Scheduler
	backend  render.Backend
	disp     *input.Dispatcher
	registry *render.Registry
	log      zerolog.Logger
	sinks    []Sink
	onErr    func(error)
}

type Option func(*options)

func WithName(name string) Option { return func(o *options) { o.name = name } }

// WithScheduler sets the frame source. Without one the controller only
// advances through Step.
func WithScheduler(s frame.Scheduler) Option { return func(o *options) { o.sched = s } }

func WithBackend(b render.Backend) Option { return func(o *options) { o.backend = b } }

// WithDispatcher subscribes the controller to window resize and pointer events.
func WithDispatcher(d *input.Dispatcher) Option { return func(o *options) { o.disp = d } }

func WithRegistry(r *render.Registry) Option { return func(o *options) { o.registry = r } }

func WithLogger(l zerolog.Logger) Option { return func(o *options) { o.log = l } }

func WithSink(s Sink) Option {
	return func(o *options) {
		if s != nil {
			o.sinks = append(o.sinks, s)
		}
	}
}

// WithErrorHandler is called once, off the controller lock, when the frame loop
// stops on a failure.
func WithErrorHandler(fn func(error)) Option { return func(o *options) { o.onErr = fn } }
