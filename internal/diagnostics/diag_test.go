package diagnostics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferKeepsMostRecent(t *testing.T) {
	b := NewBuffer(2)
	var seen []string
	cancel := b.Subscribe(func(d Diagnostic) { seen = append(seen, d.Code) })

	b.Push(Recovered("hero"))
	b.Push(FrameFailed("hero", errors.New("x")))
	b.Push(Degraded("skills", errors.New("zero size"), true))
	cancel()
	b.Push(Recovered("skills"))

	recent := b.Recent()
	assert.Len(t, recent, 2)
	assert.Equal(t, CodeSceneDegraded, recent[0].Code)
	assert.Equal(t, CodeSceneRecovered, recent[1].Code)
	assert.False(t, recent[1].Time.IsZero())
	assert.Equal(t, []string{CodeSceneRecovered, CodeFrameFailed, CodeSceneDegraded}, seen)
	assert.Equal(t, 1, b.Count(CodeSceneDegraded))
}

func TestDegradedSeverity(t *testing.T) {
	assert.Equal(t, Warn, Degraded("a", errors.New("e"), true).Severity)
	assert.Equal(t, Err, Degraded("a", errors.New("e"), false).Severity)
}

func TestNilReporter(t *testing.T) {
	var r Reporter
	assert.NotPanics(t, func() { r.Report(Recovered("hero")) })
}
