// Package frame provides the "run on next frame" primitive scenes animate with.
package frame

import (
	"sync"
	"sync/atomic"
)

// Token identifies one pending frame request.
type Token uint64

// Scheduler runs each requested callback once, on the next frame.
// A cancelled token's callback never runs.
type Scheduler interface {
	RequestFrame(fn func()) Token
	CancelFrame(Token)
}

// queue holds pending callbacks in request order. Callbacks requested while a
// frame is running are deferred to the following frame.
type queue struct {
	mu      sync.Mutex
	last    Token
	pending map[Token]func()
	order   []Token

	cancels atomic.Int64
	frames  atomic.Uint64
}

func newQueue() *queue { return &queue{pending: map[Token]func(){}} }

func (q *queue) request(fn func()) Token {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.last++
	q.pending[q.last] = fn
	q.order = append(q.order, q.last)
	return q.last
}

func (q *queue) cancel(tok Token) {
	q.cancels.Add(1)
	q.mu.Lock()
	delete(q.pending, tok)
	q.mu.Unlock()
}

func (q *queue) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// run executes one frame. guard wraps each callback (used for panic recovery).
func (q *queue) run(guard func(func())) {
	q.mu.Lock()
	batch := q.order
	q.order = nil
	q.mu.Unlock()

	for _, tok := range batch {
		q.mu.Lock()
		fn, ok := q.pending[tok]
		delete(q.pending, tok)
		q.mu.Unlock()
		if !ok {
			continue
		}
		guard(fn)
	}
	q.frames.Add(1)
}
