package latch

// State describes a Field's relationship with its data source. It is derived
// from the field's flags rather than stored.
type State int32

const (
	// StateUnbound indicates the field has no data source and holds a plain
	// local value.
	StateUnbound State = iota

	// StateSynced indicates the field is bound and its value matches what was
	// last read from or written to the data source.
	StateSynced

	// StateModified indicates the field holds local changes that have not been
	// written to the data source.
	StateModified

	// StateFailed indicates the last read from or write to the data source
	// failed. The error is retained until the next successful transfer.
	StateFailed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateUnbound:
		return "unbound"
	case StateSynced:
		return "synced"
	case StateModified:
		return "modified"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
