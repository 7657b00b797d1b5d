package frame

// Manual is a Scheduler that only advances when Tick is called.
type Manual struct{ q *queue }

func NewManual() *Manual { return &Manual{q: newQueue()} }

func (m *Manual) RequestFrame(fn func()) Token { return m.q.request(fn) }

func (m *Manual) CancelFrame(tok Token) { m.q.cancel(tok) }

// Tick runs one frame.
func (m *Manual) Tick() { m.q.run(func(fn func()) { fn() }) }

// TickN runs n frames.
func (m *Manual) TickN(n int) {
	for i := 0; i < n; i++ {
		m.Tick()
	}
}

// Pending is the number of callbacks waiting for the next frame.
func (m *Manual) Pending() int { return m.q.size() }

// Cancels counts CancelFrame calls.
func (m *Manual) Cancels() int { return int(m.q.cancels.Load()) }

func (m *Manual) Frames() uint64 { return m.q.frames.Load() }
