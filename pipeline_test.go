package latch

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/zoobzio/pipz"
)

var testSourceObserverID = pipz.NewIdentity("test:source-observer", "Test source error observer")

func flakyIO(failures int, attempts *int) func(context.Context, *SourceRequest) error {
	return func(_ context.Context, req *SourceRequest) error {
		*attempts++
		if *attempts <= failures {
			return errors.New("transient failure")
		}
		req.Data = []byte("8080")
		return nil
	}
}

func TestSourcePipeline_RunsOnceWithoutOptions(t *testing.T) {
	var attempts int
	p := NewSourcePipeline(flakyIO(1, &attempts))

	if err := p.Run(context.Background(), &SourceRequest{Op: "load"}); err == nil {
		t.Fatal("expected failure without retry")
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestSourcePipeline_WithRetry(t *testing.T) {
	var attempts int
	p := NewSourcePipeline(flakyIO(2, &attempts), WithRetry(3))

	req := &SourceRequest{Op: "load", Key: "port"}
	if err := p.Run(context.Background(), req); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
	if string(req.Data) != "8080" {
		t.Errorf("expected loaded data, got %q", req.Data)
	}
}

func TestSourcePipeline_WithRetryExhausted(t *testing.T) {
	var attempts int
	p := NewSourcePipeline(flakyIO(10, &attempts), WithRetry(3))

	if err := p.Run(context.Background(), &SourceRequest{Op: "write"}); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestSourcePipeline_WithBackoff(t *testing.T) {
	var attempts int
	p := NewSourcePipeline(flakyIO(1, &attempts), WithBackoff(3, time.Millisecond))

	if err := p.Run(context.Background(), &SourceRequest{Op: "load"}); err != nil {
		t.Fatalf("expected success after backoff, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestSourcePipeline_WithTimeout(t *testing.T) {
	p := NewSourcePipeline(func(ctx context.Context, _ *SourceRequest) error {
		select {
		case <-time.After(time.Second):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}, WithTimeout(50*time.Millisecond))

	start := time.Now()
	if err := p.Run(context.Background(), &SourceRequest{Op: "load"}); err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) >= time.Second {
		t.Error("expected the operation to be cut short")
	}
}

func TestSourcePipeline_UnwrapsIOError(t *testing.T) {
	p := NewSourcePipeline(func(context.Context, *SourceRequest) error {
		return &SourceError{Op: "read", Err: os.ErrNotExist}
	}, WithRetry(2))

	err := p.Run(context.Background(), &SourceRequest{Op: "load"})
	var srcErr *SourceError
	if !errors.As(err, &srcErr) || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected the I/O error, got %v", err)
	}
}

func TestSourcePipeline_WithErrorHandler(t *testing.T) {
	var observed string
	handler := pipz.Effect(testSourceObserverID, func(_ context.Context, err *pipz.Error[*SourceRequest]) error {
		observed = err.Err.Error()
		return nil
	})

	var attempts int
	p := NewSourcePipeline(flakyIO(10, &attempts), WithErrorHandler(handler))

	if err := p.Run(context.Background(), &SourceRequest{Op: "write"}); err == nil {
		t.Fatal("expected the error to reach the caller")
	}
	if observed != "transient failure" {
		t.Errorf("expected observed error, got %q", observed)
	}
}
