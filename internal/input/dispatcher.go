// Package input fans window-level events out to scenes and forwards
// per-container pointer events.
package input

import (
	"sync"

	"github.com/coreman2200/funtimes-backdrop/internal/render"
)

// Listener receives window-wide events. Implementations must not mutate other
// listeners through these calls.
type Listener interface {
	WindowResized(w, h float64)
	WindowPointer(x, y float64)
}

// Dispatcher owns the single window subscription and fans events out to every
// registered listener.
type Dispatcher struct {
	mu      sync.RWMutex
	next    uint64
	ls      map[uint64]Listener
	order   []uint64
	size    render.Size
	pointer render.Vec2
}

func NewDispatcher(window render.Size) *Dispatcher {
	return &Dispatcher{ls: map[uint64]Listener{}, size: window}
}

// Registration removes its listener from the dispatcher.
type Registration struct {
	d    *Dispatcher
	id   uint64
	once sync.Once
}

// Remove is idempotent.
func (r *Registration) Remove() {
	if r == nil || r.d == nil {
		return
	}
	r.once.Do(func() { r.d.remove(r.id) })
}

func (d *Dispatcher) Register(l Listener) *Registration {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.next++
	d.ls[d.next] = l
	d.order = append(d.order, d.next)
	return &Registration{d: d, id: d.next}
}

func (d *Dispatcher) remove(id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.ls, id)
	for i, v := range d.order {
		if v == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

// snapshot returns the listeners registered right now, in registration order.
func (d *Dispatcher) snapshot() []Listener {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Listener, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.ls[id])
	}
	return out
}

func (d *Dispatcher) Resize(w, h float64) {
	d.mu.Lock()
	d.size = render.Size{W: w, H: h}
	d.mu.Unlock()
	for _, l := range d.snapshot() {
		l.WindowResized(w, h)
	}
}

func (d *Dispatcher) PointerMove(x, y float64) {
	d.mu.Lock()
	d.pointer = render.Vec2{X: x, Y: y}
	d.mu.Unlock()
	for _, l := range d.snapshot() {
		l.WindowPointer(x, y)
	}
}

// Size is the last window size seen.
func (d *Dispatcher) Size() render.Size {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.size
}

func (d *Dispatcher) Pointer() render.Vec2 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.pointer
}

// Len is the number of registered listeners.
func (d *Dispatcher) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.ls)
}
