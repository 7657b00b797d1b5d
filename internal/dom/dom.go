// Package dom models the page containers scenes attach their surfaces to.
package dom

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrAlreadyBound = errors.New("container already holds a scene surface")
	ErrNotChild     = errors.New("element is not a child of this container")
	ErrDetached     = errors.New("container is not attached")
)

// Rect is a bounding box in window pixels.
type Rect struct{ X, Y, W, H float64 }

func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Element is a child node. Canvas elements carry a scene surface.
type Element struct {
	ID  string
	Tag string
}

func NewElement(tag string) *Element {
	return &Element{ID: uuid.NewString(), Tag: tag}
}

// Container is a layout region that can host exactly one scene surface.
type Container interface {
	ID() string
	Attached() bool
	Rect() Rect
	AppendChild(el *Element) error
	RemoveChild(el *Element) error
	Children() []*Element
	// Bind reserves the container for owner; a second owner gets ErrAlreadyBound.
	Bind(owner string) error
	Unbind(owner string)
}

// Node is the in-memory Container.
type Node struct {
	mu       sync.RWMutex
	id       string
	attached bool
	rect     Rect
	children []*Element
	owner    string
}

// NewNode returns an attached container with the given bounds.
func NewNode(id string, r Rect) *Node {
	return &Node{id: id, rect: r, attached: true}
}

func (n *Node) ID() string { return n.id }

func (n *Node) Attached() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.attached
}

func (n *Node) Attach() { n.setAttached(true) }
func (n *Node) Detach() { n.setAttached(false) }

func (n *Node) setAttached(v bool) {
	n.mu.Lock()
	n.attached = v
	n.mu.Unlock()
}

func (n *Node) Rect() Rect {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.rect
}

// SetRect moves or resizes the container, as a layout pass would.
func (n *Node) SetRect(r Rect) {
	n.mu.Lock()
	n.rect = r
	n.mu.Unlock()
}

func (n *Node) AppendChild(el *Element) error {
	if el == nil {
		return errors.New("nil element")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.attached {
		return ErrDetached
	}
	for _, c := range n.children {
		if c.ID == el.ID {
			return fmt.Errorf("element %s already appended", el.ID)
		}
	}
	n.children = append(n.children, el)
	return nil
}

func (n *Node) RemoveChild(el *Element) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, c := range n.children {
		if c == el {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return nil
		}
	}
	return ErrNotChild
}

func (n *Node) Children() []*Element {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]*Element, len(n.children))
	copy(out, n.children)
	return out
}

// CountTag returns how many children have the given tag.
func (n *Node) CountTag(tag string) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	c := 0
	for _, el := range n.children {
		if el.Tag == tag {
			c++
		}
	}
	return c
}

func (n *Node) Bind(owner string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.owner != "" && n.owner != owner {
		return ErrAlreadyBound
	}
	n.owner = owner
	return nil
}

func (n *Node) Unbind(owner string) {
	n.mu.Lock()
	if n.owner == owner {
		n.owner = ""
	}
	n.mu.Unlock()
}

// Owner is the id of the scene bound to this container, or "".
func (n *Node) Owner() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.owner
}
