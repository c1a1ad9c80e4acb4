package latch

import "github.com/zoobzio/capitan"

// Field keys for latch events.
var (
	// KeyField is the name of the field the event concerns.
	KeyField = capitan.NewStringKey("field")

	// KeyState is the state of the field once it is bound.
	KeyState = capitan.NewStringKey("state")

	// KeyOldState is the previous state before a transition.
	KeyOldState = capitan.NewStringKey("old_state")

	// KeyNewState is the new state after a transition.
	KeyNewState = capitan.NewStringKey("new_state")

	// KeyError is the error message when an operation fails.
	KeyError = capitan.NewStringKey("error")

	// KeyOp is the source operation ("read" or "write") that failed.
	KeyOp = capitan.NewStringKey("op")

	// KeyValidators is the number of validators attached to the field.
	KeyValidators = capitan.NewIntKey("validators")

	// KeyFields is the number of fields in a form.
	KeyFields = capitan.NewIntKey("fields")

	// KeyDuration is the time taken by a commit.
	KeyDuration = capitan.NewDurationKey("duration")
)
