package latch

import (
	"testing"
	"time"
)

func TestNoOpMetricsProvider_DoesNotPanic(_ *testing.T) {
	var m NoOpMetricsProvider

	m.OnStateChange(StateSynced, StateModified)
	m.OnCommit(100 * time.Millisecond)
	m.OnCommitFailure("source", 50*time.Millisecond)
	m.OnDiscard()
	m.OnValueChange()
}

// recordingMetrics captures metrics callbacks for assertions.
type recordingMetrics struct {
	transitions [][2]State
	commits     []time.Duration
	failures    []string
	discards    int
	changes     int
}

func (m *recordingMetrics) OnStateChange(from, to State) {
	m.transitions = append(m.transitions, [2]State{from, to})
}
func (m *recordingMetrics) OnCommit(d time.Duration) { m.commits = append(m.commits, d) }
func (m *recordingMetrics) OnCommitFailure(stage string, _ time.Duration) {
	m.failures = append(m.failures, stage)
}
func (m *recordingMetrics) OnDiscard()     { m.discards++ }
func (m *recordingMetrics) OnValueChange() { m.changes++ }

var _ MetricsProvider = (*recordingMetrics)(nil)
