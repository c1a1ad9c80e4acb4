package latch

import "github.com/zoobzio/capitan"

// Field binding signals.
var (
	// FieldBound is emitted when a field is bound to a new data source.
	FieldBound = capitan.NewSignal(
		"latch.field.bound",
		"Field data source changed",
	)

	// FieldStateChanged is emitted when a field transitions between states.
	FieldStateChanged = capitan.NewSignal(
		"latch.field.state.changed",
		"Field state transition",
	)

	// FieldValueChanged is emitted when a field fires a value change.
	FieldValueChanged = capitan.NewSignal(
		"latch.field.value.changed",
		"Field value changed",
	)
)

// Buffering signals.
var (
	// FieldCommitted is emitted when buffered changes are written to the source.
	FieldCommitted = capitan.NewSignal(
		"latch.field.committed",
		"Field value committed",
	)

	// FieldDiscarded is emitted when buffered changes are dropped.
	FieldDiscarded = capitan.NewSignal(
		"latch.field.discarded",
		"Field changes discarded",
	)

	// FieldValidationFailed is emitted when a set or commit is rejected by validation.
	FieldValidationFailed = capitan.NewSignal(
		"latch.field.validation.failed",
		"Field validation failed",
	)

	// FieldSourceFailed is emitted when reading or writing the data source fails.
	FieldSourceFailed = capitan.NewSignal(
		"latch.field.source.failed",
		"Field data source failed",
	)
)

// Form signals.
var (
	// FormCommitted is emitted when every field of a form committed.
	FormCommitted = capitan.NewSignal(
		"latch.form.committed",
		"Form committed",
	)

	// FormCommitFailed is emitted when at least one field of a form failed to commit.
	FormCommitFailed = capitan.NewSignal(
		"latch.form.commit.failed",
		"Form commit failed",
	)
)
