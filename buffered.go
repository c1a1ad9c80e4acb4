package latch

// Buffered is implemented by objects that buffer changes to a data source
// and commit or discard them on request.
//
// In write-through mode every change is written to the source immediately.
// In read-through mode the current value is read from the source whenever
// there are no uncommitted local changes.
type Buffered interface {
	// Commit writes buffered changes to the data source.
	Commit() error

	// Discard drops buffered changes and re-reads the data source.
	Discard()

	IsModified() bool

	WriteThrough() bool
	// SetWriteThrough switches write-through mode. Enabling it commits
	// pending changes and returns the commit error.
	SetWriteThrough(writeThrough bool) error

	ReadThrough() bool
	SetReadThrough(readThrough bool)
}

// Validatable is implemented by objects whose value can be checked by validators.
type Validatable interface {
	AddValidator(v Validator)
	RemoveValidator(v Validator)
	Validators() []Validator

	// IsValid reports whether the value passes validation. It never fails.
	IsValid() bool

	// Validate returns a *InvalidValueError describing why the value is invalid.
	Validate() error

	// InvalidAllowed reports whether invalid values may be set at all.
	InvalidAllowed() bool
	SetInvalidAllowed(allowed bool)
}

// BufferedValidatable combines Buffered and Validatable and controls whether
// invalid values are written to the data source.
type BufferedValidatable interface {
	Buffered
	Validatable

	InvalidCommitted() bool
	SetInvalidCommitted(committed bool)
}
