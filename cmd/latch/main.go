// Command latch edits one stored value through a buffered latch field.
//
// Usage:
//
//	latch [flags] action...
//
// The value lives in a bbolt database (-db) or a plain file (-file). Actions
// are applied in order:
//
//	set <value>  set the field value
//	commit       write the buffered value to storage
//	discard      drop the buffered value
//	show         print the value, state and errors
//
// Example:
//
//	latch -db settings.db -key port -type int -buffered -validate 'min=1,max=65535' set 9090 show commit
package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/latch"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	hookSignals(logger)

	code := run(os.Args[1:], os.Stdout, logger)
	capitan.Shutdown()
	os.Exit(code)
}

// hookSignals logs field lifecycle events.
func hookSignals(logger zerolog.Logger) {
	capitan.Hook(latch.FieldBound, func(_ context.Context, e *capitan.Event) {
		name, _ := latch.KeyField.From(e)
		state, _ := latch.KeyState.From(e)
		n, _ := latch.KeyValidators.From(e)
		logger.Debug().Str("field", name).Str("state", state).Int("validators", n).Msg("bound")
	})

	capitan.Hook(latch.FieldStateChanged, func(_ context.Context, e *capitan.Event) {
		name, _ := latch.KeyField.From(e)
		oldState, _ := latch.KeyOldState.From(e)
		newState, _ := latch.KeyNewState.From(e)
		logger.Debug().Str("field", name).Str("from", oldState).Str("to", newState).Msg("state changed")
	})

	capitan.Hook(latch.FieldCommitted, func(_ context.Context, e *capitan.Event) {
		name, _ := latch.KeyField.From(e)
		d, _ := latch.KeyDuration.From(e)
		logger.Info().Str("field", name).Dur("duration", d).Msg("committed")
	})

	capitan.Hook(latch.FieldDiscarded, func(_ context.Context, e *capitan.Event) {
		name, _ := latch.KeyField.From(e)
		logger.Info().Str("field", name).Msg("discarded")
	})

	capitan.Hook(latch.FieldValidationFailed, func(_ context.Context, e *capitan.Event) {
		name, _ := latch.KeyField.From(e)
		msg, _ := latch.KeyError.From(e)
		logger.Warn().Str("field", name).Str("error", msg).Msg("validation failed")
	})

	capitan.Hook(latch.FieldSourceFailed, func(_ context.Context, e *capitan.Event) {
		name, _ := latch.KeyField.From(e)
		op, _ := latch.KeyOp.From(e)
		msg, _ := latch.KeyError.From(e)
		logger.Error().Str("field", name).Str("op", op).Str("error", msg).Msg("storage failed")
	})
}
