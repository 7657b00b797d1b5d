package diagnostics

import (
	"sync"
	"time"
)

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

type Diagnostic struct {
	Time           time.Time      `json:"time"`
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Section        string         `json:"section,omitempty"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

// Reporter receives diagnostics. A nil Reporter drops them.
type Reporter func(Diagnostic)

func (r Reporter) Report(d Diagnostic) {
	if r == nil {
		return
	}
	if d.Time.IsZero() {
		d.Time = time.Now()
	}
	r(d)
}

const (
	CodeSceneDegraded  = "SCENE.DEGRADED"
	CodeSceneRecovered = "SCENE.RECOVERED"
	CodeFrameFailed    = "SCENE.FRAME_FAILED"
	CodeThemeRebuild   = "SCENE.THEME_REBUILD"
)

// Degraded describes a section whose scene could not be constructed.
func Degraded(section string, err error, recoverable bool) Diagnostic {
	d := Diagnostic{
		Severity: Warn,
		Code:     CodeSceneDegraded,
		Section:  section,
		Summary:  "Decorative scene disabled",
		Detail:   err.Error(),
		Evidence: map[string]any{"recoverable": recoverable},
	}
	if recoverable {
		d.LikelyCauses = []string{"container not laid out yet", "no rendering context"}
		d.SuggestedFixes = []string{"retry after layout settles"}
	} else {
		d.Severity = Err
		d.LikelyCauses = []string{"invalid scene configuration"}
	}
	return d
}

func FrameFailed(section string, err error) Diagnostic {
	return Diagnostic{
		Severity: Err,
		Code:     CodeFrameFailed,
		Section:  section,
		Summary:  "Scene stopped after a frame failure",
		Detail:   err.Error(),
	}
}

func Recovered(section string) Diagnostic {
	return Diagnostic{Severity: Info, Code: CodeSceneRecovered, Section: section, Summary: "Decorative scene running"}
}

// ThemeRebuilt records a destroy and reconstruct after a theme change.
func ThemeRebuilt(section, theme string) Diagnostic {
	return Diagnostic{
		Severity: Info,
		Code:     CodeThemeRebuild,
		Section:  section,
		Summary:  "Scene rebuilt for theme " + theme,
		Evidence: map[string]any{"theme": theme},
	}
}

// Buffer keeps the most recent diagnostics and fans new ones out to
// subscribers.
type Buffer struct {
	mu   sync.Mutex
	max  int
	recs []Diagnostic
	subs map[int]func(Diagnostic)
	next int
}

func NewBuffer(size int) *Buffer {
	if size <= 0 {
		size = 64
	}
	return &Buffer{max: size, subs: map[int]func(Diagnostic){}}
}

// Reporter returns a Reporter that pushes into b.
func (b *Buffer) Reporter() Reporter { return b.Push }

func (b *Buffer) Push(d Diagnostic) {
	if d.Time.IsZero() {
		d.Time = time.Now()
	}
	b.mu.Lock()
	b.recs = append(b.recs, d)
	if len(b.recs) > b.max {
		b.recs = append(b.recs[:0], b.recs[len(b.recs)-b.max:]...)
	}
	subs := make([]func(Diagnostic), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.mu.Unlock()
	for _, fn := range subs {
		fn(d)
	}
}

func (b *Buffer) Recent() []Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Diagnostic(nil), b.recs...)
}

func (b *Buffer) Subscribe(fn func(Diagnostic)) (cancel func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Count returns how many buffered diagnostics carry code.
func (b *Buffer) Count(code string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, d := range b.recs {
		if d.Code == code {
			n++
		}
	}
	return n
}
