package scene

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/image/draw"

	"github.com/coreman2200/funtimes-backdrop/internal/dom"
	"github.com/coreman2200/funtimes-backdrop/internal/frame"
	"github.com/coreman2200/funtimes-backdrop/internal/input"
	"github.com/coreman2200/funtimes-backdrop/internal/render"
	"github.com/coreman2200/funtimes-backdrop/internal/render/scenes"
)

// ElementTag is the tag of the child element a controller adds to its container.
const ElementTag = "canvas"

// Controller owns one live scene: surface, camera, geometry and frame
// subscription. Input methods may be called from any goroutine.
type Controller struct {
	mu sync.Mutex

	id    string
	name  string
	cfg   Config
	theme render.Theme
	log   zerolog.Logger

	container dom.Container
	el        *dom.Element
	surface   render.Surface
	cam       *render.Camera
	geom      render.Geometry
	rig       render.Rig
	style     render.Style

	sched frame.Scheduler
	tok   frame.Token
	reg   *input.Registration
	sinks []Sink
	onErr func(error)

	// sinkPanicked marks sinks whose panic has already been logged.
	sinkPanicked []bool

	state  State
	anim   AnimationState
	rot    render.Euler
	frames uint64
	err    error
}

// New constructs a live controller or fails without leaving anything behind.
func New(container dom.Container, cfg Config, th render.Theme, opts ...Option) (*Controller, error) {
	o := options{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.sched == nil {
		o.sched = frame.NewManual()
	}
	if o.backend == nil {
		o.backend = render.NewCanvas
	}
	if o.registry == nil {
		o.registry = scenes.Registry()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if container == nil {
		return nil, &InvalidContainerError{Reason: "nil container"}
	}
	if !container.Attached() {
		return nil, &InvalidContainerError{Container: container.ID(), Reason: "not attached"}
	}
	r := container.Rect()
	if r.Empty() {
		return nil, &InvalidContainerError{Container: container.ID(), Reason: fmt.Sprintf("zero size %vx%v", r.W, r.H)}
	}

	c := &Controller{
		id:           uuid.NewString(),
		name:         o.name,
		cfg:          cfg,
		theme:        th,
		container:    container,
		sched:        o.sched,
		sinks:        o.sinks,
		sinkPanicked: make([]bool, len(o.sinks)),
		onErr:        o.onErr,
		style:        render.Style{Color: cfg.Palette.For(th), Opacity: cfg.Opacity},
	}
	if c.name == "" {
		c.name = container.ID()
	}
	c.log = o.log.With().Str("scene", c.name).Str("id", c.id).Logger()

	size := render.Size{W: r.W, H: r.H}
	if cfg.FillWindow && o.disp != nil && o.disp.Size().Valid() {
		size = o.disp.Size()
	}
	w, h := pixels(size)
	if w <= 0 || h <= 0 {
		return nil, &InvalidContainerError{Container: container.ID(), Reason: fmt.Sprintf("sub-pixel size %vx%v", size.W, size.H)}
	}

	surface, err := o.backend(w, h)
	if err != nil {
		return nil, &RenderingUnavailableError{Err: err}
	}
	if surface == nil {
		return nil, &RenderingUnavailableError{Err: fmt.Errorf("backend returned no surface")}
	}

	geom, rig, err := o.registry.Build(cfg.Geometry, cfg.spec())
	if err != nil {
		_ = surface.Close()
		return nil, err
	}

	if err := container.Bind(c.id); err != nil {
		geom.Release()
		_ = surface.Close()
		return nil, fmt.Errorf("bind %s: %w", container.ID(), err)
	}
	el := dom.NewElement(ElementTag)
	if err := container.AppendChild(el); err != nil {
		container.Unbind(c.id)
		geom.Release()
		_ = surface.Close()
		return nil, &InvalidContainerError{Container: container.ID(), Reason: err.Error()}
	}

	c.surface = surface
	c.geom = geom
	c.rig = rig
	c.el = el
	c.cam = render.NewCamera(rig.Camera, render.Size{W: float64(w), H: float64(h)})

	c.mu.Lock()
	c.state = StateLive
	c.tok = c.sched.RequestFrame(c.tick)
	c.mu.Unlock()
	if o.disp != nil {
		c.reg = o.disp.Register(c)
	}

	c.log.Debug().
		Str("geometry", string(cfg.Geometry)).
		Str("theme", string(th)).
		Int("w", w).Int("h", h).
		Msg("scene constructed")
	return c, nil
}

func pixels(s render.Size) (int, int) {
	return int(math.Round(s.W)), int(math.Round(s.H))
}

// tick is the scheduled frame callback.
func (c *Controller) tick() {
	c.mu.Lock()
	if c.state != StateLive || c.err != nil {
		c.mu.Unlock()
		return
	}
	c.tok = 0
	err := c.advance()
	var f Frame
	if err != nil {
		c.err = err
	} else {
		c.tok = c.sched.RequestFrame(c.tick)
		f = c.capture()
	}
	c.mu.Unlock()

	if err != nil {
		c.report(err)
		return
	}
	c.emit(f)
}

// Step runs one frame synchronously without touching the frame subscription.
func (c *Controller) Step() error {
	c.mu.Lock()
	if c.state != StateLive {
		c.mu.Unlock()
		return ErrDestroyed
	}
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return err
	}
	err := c.advance()
	var f Frame
	if err != nil {
		c.err = err
	} else {
		f = c.capture()
	}
	c.mu.Unlock()

	if err != nil {
		c.report(err)
		return err
	}
	c.emit(f)
	return nil
}

// advance moves time forward one step and renders. Callers hold c.mu.
func (c *Controller) advance() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scene %s: frame panicked: %v", c.name, r)
		}
	}()
	c.anim.T += TimeStep
	c.rot = c.orientation()
	c.geom.Update(c.anim.T)
	c.surface.Clear()
	if err := c.geom.Draw(c.surface, c.cam, c.rot, c.style); err != nil {
		return fmt.Errorf("scene %s: draw: %w", c.name, err)
	}
	c.frames++
	return nil
}

// orientation is pointer driven while hovering an interactive scene and a pure
// function of T otherwise.
func (c *Controller) orientation() render.Euler {
	if c.cfg.Interactive && c.anim.Hovering {
		return render.Euler{X: c.anim.Pointer.Y * PointerGain, Y: c.anim.Pointer.X * PointerGain}
	}
	return Idle(c.rig.IdleSpin, c.anim.T)
}

func (c *Controller) capture() Frame {
	if len(c.sinks) == 0 {
		return Frame{}
	}
	return Frame{Scene: c.name, ID: c.id, Seq: c.frames, Image: clone(c.surface.Image())}
}

func clone(src image.Image) *image.RGBA {
	if src == nil {
		return nil
	}
	dst := image.NewRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst
}

func (c *Controller) emit(f Frame) {
	if f.Image == nil {
		return
	}
	for i, s := range c.sinks {
		if err := c.write(i, s, f); err != nil {
			c.log.Debug().Err(err).Uint64("seq", f.Seq).Msg("sink rejected frame")
		}
	}
}

// write hands f to one sink. A panicking sink is logged the first time only
// and never stops the scene.
func (c *Controller) write(i int, s Sink, f Frame) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		err = fmt.Errorf("panic: %v", r)
		c.mu.Lock()
		first := !c.sinkPanicked[i]
		c.sinkPanicked[i] = true
		c.mu.Unlock()
		if first {
			c.log.Error().Err(err).Int("sink", i).Uint64("seq", f.Seq).Msg("sink panicked")
		}
	}()
	return s.WriteFrame(f)
}

func (c *Controller) report(err error) {
	c.log.Error().Err(err).Float64("t", c.AnimationState().T).Msg("scene stopped")
	if c.onErr != nil {
		c.onErr(err)
	}
}

// OnResize adapts camera and surface to a new size. Non-positive sizes and
// calls after Destroy are ignored.
func (c *Controller) OnResize(w, h float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateLive {
		return
	}
	if !(render.Size{W: w, H: h}).Valid() {
		return
	}
	iw, ih := pixels(render.Size{W: w, H: h})
	if iw <= 0 || ih <= 0 {
		return
	}
	vp := render.Size{W: float64(iw), H: float64(ih)}
	if c.surface.Size() != vp {
		if err := c.surface.Resize(iw, ih); err != nil {
			c.log.Warn().Err(err).Int("w", iw).Int("h", ih).Msg("surface resize failed")
			return
		}
	}
	c.cam.SetViewport(vp)
}

// OnPointerMove records the pointer in NDC. Ignored unless the scene is
// interactive and hovered.
func (c *Controller) OnPointerMove(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateLive || !c.cfg.Interactive || !c.anim.Hovering {
		return
	}
	c.anim.Pointer = render.Vec2{X: clamp(x), Y: clamp(y)}
}

// OnHoverChange sets hovering. Leaving snaps the orientation back to idle.
func (c *Controller) OnHoverChange(hovering bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateLive {
		return
	}
	c.anim.Hovering = hovering
	if !hovering {
		c.anim.Pointer = render.Vec2{}
	}
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}

// WindowResized follows the window for full-window scenes and the container
// otherwise.
func (c *Controller) WindowResized(w, h float64) {
	if c.cfg.FillWindow {
		c.OnResize(w, h)
		return
	}
	r := c.container.Rect()
	c.OnResize(r.W, r.H)
}

// WindowPointer drives full-window scenes from the global pointer stream.
// Container scenes get pointer input from their bridge instead.
func (c *Controller) WindowPointer(x, y float64) {
	if !c.cfg.FillWindow {
		return
	}
	c.mu.Lock()
	vp := c.cam.Viewport()
	c.mu.Unlock()
	p := input.NDC(dom.Rect{W: vp.W, H: vp.H}, x, y)
	c.OnPointerMove(p.X, p.Y)
}

// Destroy cancels the pending frame, unsubscribes input, detaches the element
// and releases every resource. Teardown failures are joined into the returned
// error; the controller is destroyed regardless. A second call returns
// *DoubleDestroyError.
func (c *Controller) Destroy() error {
	c.mu.Lock()
	if c.state == StateDestroyed {
		c.mu.Unlock()
		return &DoubleDestroyError{Scene: c.name}
	}
	c.state = StateDestroyed
	if c.tok != 0 {
		c.sched.CancelFrame(c.tok)
		c.tok = 0
	}
	reg := c.reg
	c.reg = nil

	var errs []error
	if err := c.container.RemoveChild(c.el); err != nil {
		errs = append(errs, fmt.Errorf("remove element: %w", err))
	}
	c.container.Unbind(c.id)
	c.geom.Release()
	if err := c.surface.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close surface: %w", err))
	}
	frames := c.frames
	c.mu.Unlock()

	reg.Remove()
	c.log.Debug().Uint64("frames", frames).Msg("scene destroyed")
	if len(errs) > 0 {
		c.log.Warn().Errs("errors", errs).Msg("scene teardown incomplete")
	}
	return errors.Join(errs...)
}

func (c *Controller) ID() string          { return c.id }
func (c *Controller) Name() string        { return c.name }
func (c *Controller) Config() Config      { return c.cfg }
func (c *Controller) Theme() render.Theme { return c.theme }
func (c *Controller) Rig() render.Rig     { return c.rig }

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err is the failure that stopped the frame loop, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Controller) AnimationState() AnimationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.anim
}

// Orientation is the rotation the next frame would draw at the current T.
func (c *Controller) Orientation() render.Euler {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.orientation()
}

func (c *Controller) Frames() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}

// Geometry exposes the live geometry. Callers must not draw or release it.
func (c *Controller) Geometry() render.Geometry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.geom
}

func (c *Controller) Size() render.Size {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateLive {
		return render.Size{}
	}
	return c.surface.Size()
}

// Snapshot copies the last rendered image.
func (c *Controller) Snapshot() (image.Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateLive {
		return nil, ErrDestroyed
	}
	return clone(c.surface.Image()), nil
}
