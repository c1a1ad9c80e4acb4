package latch

import (
	"context"
	"errors"
	"time"

	"github.com/zoobzio/pipz"
)

// SourceRequest is one read or write of a storage-backed property as it
// passes through a SourcePipeline.
type SourceRequest struct {
	// Op is "load" or "write".
	Op string

	// Key identifies the stored value, such as a file path or database key.
	Key string

	// Data holds the text read by a load, or the text to write. Nil data on
	// a write removes the stored value.
	Data []byte
}

// SourceOption wraps the I/O of a SourcePipeline with middleware.
// With no options the I/O runs once, as if called directly.
type SourceOption func(pipz.Chainable[*SourceRequest]) pipz.Chainable[*SourceRequest]

var (
	sourceIOID           = pipz.NewIdentity("latch:source-io", "Reads or writes a stored property value")
	sourceRetryID        = pipz.NewIdentity("latch:source-retry", "Retries failed source operations")
	sourceBackoffID      = pipz.NewIdentity("latch:source-backoff", "Retries failed source operations with backoff")
	sourceTimeoutID      = pipz.NewIdentity("latch:source-timeout", "Bounds the duration of source operations")
	sourceErrorHandlerID = pipz.NewIdentity("latch:source-error-handler", "Observes failed source operations")
)

// WithRetry retries a failed operation immediately, up to maxAttempts
// attempts in total.
func WithRetry(maxAttempts int) SourceOption {
	return func(p pipz.Chainable[*SourceRequest]) pipz.Chainable[*SourceRequest] {
		return pipz.NewRetry(sourceRetryID, p, maxAttempts)
	}
}

// WithBackoff retries a failed operation with delays of baseDelay,
// 2*baseDelay, 4*baseDelay and so on.
func WithBackoff(maxAttempts int, baseDelay time.Duration) SourceOption {
	return func(p pipz.Chainable[*SourceRequest]) pipz.Chainable[*SourceRequest] {
		return pipz.NewBackoff(sourceBackoffID, p, maxAttempts, baseDelay)
	}
}

// WithTimeout fails an operation that takes longer than d.
func WithTimeout(d time.Duration) SourceOption {
	return func(p pipz.Chainable[*SourceRequest]) pipz.Chainable[*SourceRequest] {
		return pipz.NewTimeout(sourceTimeoutID, p, d)
	}
}

// WithErrorHandler passes failed operations to handler. The error still
// reaches the caller.
func WithErrorHandler(handler pipz.Chainable[*pipz.Error[*SourceRequest]]) SourceOption {
	return func(p pipz.Chainable[*SourceRequest]) pipz.Chainable[*SourceRequest] {
		return pipz.NewHandle(sourceErrorHandlerID, p, handler)
	}
}

// SourcePipeline runs the I/O of a storage-backed property through the
// configured middleware.
type SourcePipeline struct {
	pipeline pipz.Chainable[*SourceRequest]
}

// NewSourcePipeline wraps io with opts. Options apply in order, so the last
// option is the outermost.
func NewSourcePipeline(io func(context.Context, *SourceRequest) error, opts ...SourceOption) *SourcePipeline {
	var pipeline pipz.Chainable[*SourceRequest] = pipz.Effect(sourceIOID, io)
	for _, opt := range opts {
		pipeline = opt(pipeline)
	}
	return &SourcePipeline{pipeline: pipeline}
}

// Run processes req. A failure is returned as the error of the I/O itself,
// so callers can still match it with errors.Is and errors.As.
func (s *SourcePipeline) Run(ctx context.Context, req *SourceRequest) error {
	_, err := s.pipeline.Process(ctx, req)
	if err == nil {
		return nil
	}
	var perr *pipz.Error[*SourceRequest]
	if errors.As(err, &perr) && perr.Err != nil {
		return perr.Err
	}
	return err
}
