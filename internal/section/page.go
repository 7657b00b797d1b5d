package section

import (
	"errors"
	"fmt"
	"sync"

	"github.com/coreman2200/funtimes-backdrop/internal/dom"
	"github.com/coreman2200/funtimes-backdrop/internal/input"
	"github.com/coreman2200/funtimes-backdrop/internal/render"
	"github.com/coreman2200/funtimes-backdrop/internal/scene"
)

// Page stacks sections vertically, one container each, and keeps the
// full-window containers sized to the window.
type Page struct {
	mu       sync.Mutex
	sections []*Section
	nodes    map[string]*dom.Node
	presets  map[string]Preset
	reg      *input.Registration
}

// NewPage mounts every preset. Sections that fail to construct stay degraded;
// the page itself always comes up.
func NewPage(presets []Preset, themes Themes, disp *input.Dispatcher, opts ...Option) *Page {
	p := &Page{
		nodes:   map[string]*dom.Node{},
		presets: map[string]Preset{},
	}
	// registered first so containers are relaid out before scenes see a resize
	p.reg = disp.Register(p)
	p.mu.Lock()
	defer p.mu.Unlock()
	win := disp.Size()
	y := 0.0
	for _, pr := range presets {
		r := p.rectFor(pr, win, y)
		y += r.H
		n := dom.NewNode(pr.Name, r)
		p.nodes[pr.Name] = n
		p.presets[pr.Name] = pr
		sopts := append([]Option{WithSceneOptions(scene.WithDispatcher(disp))}, opts...)
		p.sections = append(p.sections, Mount(pr.Name, n, pr.Config, themes, sopts...))
	}
	return p
}

func (p *Page) rectFor(pr Preset, win render.Size, y float64) dom.Rect {
	if pr.Size.W > 0 && pr.Size.H > 0 {
		return dom.Rect{Y: y, W: pr.Size.W, H: pr.Size.H}
	}
	return dom.Rect{Y: y, W: win.W, H: win.H}
}

// WindowResized relayouts the containers for the new window size.
func (p *Page) WindowResized(w, h float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	y := 0.0
	for _, s := range p.sections {
		n := p.nodes[s.Name()]
		r := p.rectFor(p.presets[s.Name()], render.Size{W: w, H: h}, y)
		n.SetRect(r)
		y += r.H
	}
}

func (p *Page) WindowPointer(float64, float64) {}

func (p *Page) Sections() []*Section {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Section(nil), p.sections...)
}

func (p *Page) Section(name string) (*Section, bool) {
	for _, s := range p.Sections() {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}

// Node returns the container of a section.
func (p *Page) Node(name string) (*dom.Node, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n, ok := p.nodes[name]
	return n, ok
}

// Live and Degraded partition the mounted sections by scene health.
func (p *Page) Live() []string     { return p.filter(true) }
func (p *Page) Degraded() []string { return p.filter(false) }

func (p *Page) filter(live bool) []string {
	var out []string
	for _, s := range p.Sections() {
		if s.Live() == live {
			out = append(out, s.Name())
		}
	}
	return out
}

// RetryDegraded retries every section without a running scene.
func (p *Page) RetryDegraded() error {
	var errs []error
	for _, s := range p.Sections() {
		if s.Live() {
			continue
		}
		if err := s.Retry(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Unmount tears down every section.
func (p *Page) Unmount() error {
	p.reg.Remove()
	var errs []error
	for _, s := range p.Sections() {
		if err := s.Unmount(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
