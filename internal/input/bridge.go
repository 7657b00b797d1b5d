package input

import (
	"sync"

	"github.com/coreman2200/funtimes-backdrop/internal/dom"
	"github.com/coreman2200/funtimes-backdrop/internal/render"
)

// Target is what a Bridge forwards into.
type Target interface {
	OnPointerMove(x, y float64)
	OnHoverChange(hovering bool)
}

// NDC maps a window pixel to normalized device coordinates of r: x right, y up,
// both in [-1, 1] inside the rect.
func NDC(r dom.Rect, px, py float64) render.Vec2 {
	if r.Empty() {
		return render.Vec2{}
	}
	return render.Vec2{
		X: (px-r.X)/r.W*2 - 1,
		Y: -((py-r.Y)/r.H*2 - 1),
	}
}

// Bridge forwards hover and pointer events of one container to its current
// target. The target may be swapped when the scene is rebuilt; the hover
// state is replayed into the new target.
type Bridge struct {
	c dom.Container

	mu       sync.Mutex
	t        Target
	hovering bool
}

func NewBridge(c dom.Container) *Bridge { return &Bridge{c: c} }

func (b *Bridge) SetTarget(t Target) {
	b.mu.Lock()
	b.t = t
	h := b.hovering
	b.mu.Unlock()
	if t != nil && h {
		t.OnHoverChange(true)
	}
}

func (b *Bridge) HoverEnter() { b.setHover(true) }
func (b *Bridge) HoverLeave() { b.setHover(false) }

func (b *Bridge) setHover(v bool) {
	b.mu.Lock()
	b.hovering = v
	t := b.t
	b.mu.Unlock()
	if t != nil {
		t.OnHoverChange(v)
	}
}

func (b *Bridge) Hovering() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hovering
}

// PointerMove forwards a window-pixel pointer position in container NDC.
func (b *Bridge) PointerMove(px, py float64) {
	p := NDC(b.c.Rect(), px, py)
	b.mu.Lock()
	t := b.t
	b.mu.Unlock()
	if t != nil {
		t.OnPointerMove(p.X, p.Y)
	}
}
