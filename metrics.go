package latch

import "time"

// MetricsProvider allows integration with metrics systems like Prometheus, StatsD, etc.
// Implement this interface to receive callbacks on key field events.
type MetricsProvider interface {
	// OnStateChange is called when a field transitions between states.
	OnStateChange(from, to State)

	// OnCommit is called when a commit writes to the data source successfully.
	OnCommit(duration time.Duration)

	// OnCommitFailure is called when a commit fails.
	// Stage is "validate" or "source".
	OnCommitFailure(stage string, duration time.Duration)

	// OnDiscard is called when buffered changes are discarded.
	OnDiscard()

	// OnValueChange is called when a field fires a value change.
	OnValueChange()
}

// NoOpMetricsProvider is a no-op implementation of MetricsProvider.
// Use this as an embedded type to implement only the methods you need.
type NoOpMetricsProvider struct{}

func (NoOpMetricsProvider) OnStateChange(_, _ State)                  {}
func (NoOpMetricsProvider) OnCommit(_ time.Duration)                  {}
func (NoOpMetricsProvider) OnCommitFailure(_ string, _ time.Duration) {}
func (NoOpMetricsProvider) OnDiscard()                                {}
func (NoOpMetricsProvider) OnValueChange()                            {}
