package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zoobzio/latch"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}

func TestNew(t *testing.T) {
	p := New("/path/to/../to/port", latch.TypeOf[int]())
	if p.Path() != "/path/to/port" {
		t.Errorf("expected cleaned path, got %q", p.Path())
	}
	if p.Type() != latch.TypeOf[int]() {
		t.Errorf("expected int type, got %v", p.Type())
	}
}

func TestProperty_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "port")
	writeFile(t, path, "8080\n")

	p := New(path, latch.TypeOf[int]())
	v, err := p.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if v != 8080 {
		t.Errorf("expected 8080, got %v (%T)", v, v)
	}
}

func TestProperty_LoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "port")
	writeFile(t, path, "\n")

	v, err := New(path, latch.TypeOf[int]()).Load()
	if err != nil || v != nil {
		t.Errorf("expected nil value, got %v, %v", v, err)
	}
}

func TestProperty_LoadMissingFile(t *testing.T) {
	p := New(filepath.Join(t.TempDir(), "missing"), latch.TypeOf[int]())

	_, err := p.Load()
	if !IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
	if p.Value() != nil {
		t.Error("expected nil value for missing file")
	}
}

func TestProperty_LoadConversionError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "port")
	writeFile(t, path, "eighty")

	_, err := New(path, latch.TypeOf[int]()).Load()
	var convErr *latch.ConversionError
	if !errors.As(err, &convErr) {
		t.Errorf("expected ConversionError, got %v", err)
	}
}

func TestProperty_SetValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "port")
	p := New(path, latch.TypeOf[int]())
	counter := &countingListener{}
	p.AddValueChangeListener(counter)

	if err := p.SetValue("9090"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	if string(data) != "9090\n" {
		t.Errorf("unexpected file contents %q", data)
	}
	if p.Value() != 9090 || counter.n != 1 {
		t.Errorf("expected 9090 and one notification, got %v %d", p.Value(), counter.n)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected temp file to be cleaned up, got %d entries", len(entries))
	}
}

func TestProperty_SetValueRejectsUnconvertible(t *testing.T) {
	path := filepath.Join(t.TempDir(), "port")
	writeFile(t, path, "8080")
	p := New(path, latch.TypeOf[int]())

	err := p.SetValue("eighty")
	var convErr *latch.ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("expected ConversionError, got %v", err)
	}
	if p.Value() != 8080 {
		t.Error("file must be unchanged")
	}
}

func TestProperty_StringKeepsSurroundingSpaces(t *testing.T) {
	p := New(filepath.Join(t.TempDir(), "motd"), latch.TypeOf[string]())

	if err := p.SetValue("  hello  "); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if v := p.Value(); v != "  hello  " {
		t.Errorf("expected spaces kept, got %q", v)
	}
}

func TestProperty_WithPipeline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "port")
	p := New(path, latch.TypeOf[int](), WithPipeline(latch.WithRetry(3), latch.WithTimeout(time.Second)))

	if _, err := p.Load(); !IsNotExist(err) {
		t.Errorf("expected not-exist error after retries, got %v", err)
	}
	if err := p.SetValue(8080); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if v := p.Value(); v != 8080 {
		t.Errorf("expected 8080, got %v", v)
	}
}

func TestProperty_ReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "port")
	writeFile(t, path, "8080")
	p := New(path, latch.TypeOf[int](), WithReadOnly())

	if err := p.SetValue(1); !errors.Is(err, latch.ErrReadOnly) {
		t.Errorf("expected ErrReadOnly, got %v", err)
	}
}

func TestProperty_BoundField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "port")
	writeFile(t, path, "8080")
	p := New(path, latch.TypeOf[int]())

	f := latch.NewField().Named("port")
	f.SetPropertyDataSource(p)
	if err := f.SetWriteThrough(false); err != nil {
		t.Fatalf("SetWriteThrough failed: %v", err)
	}
	if err := f.SetValue(9090); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if p.Value() != 8080 {
		t.Error("buffered change must not reach the file")
	}
	if err := f.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if p.Value() != 9090 {
		t.Errorf("expected committed value on disk, got %v", p.Value())
	}
}

func TestProperty_BoundFieldReadFailure(t *testing.T) {
	p := New(filepath.Join(t.TempDir(), "missing"), latch.TypeOf[int]())
	f := latch.NewField()
	f.SetPropertyDataSource(p)

	if f.State() != latch.StateFailed {
		t.Errorf("expected failed state, got %s", f.State())
	}
	if err := f.SourceError(); err == nil || !IsNotExist(err) {
		t.Errorf("expected not-exist source error, got %v", err)
	}
}

func TestProperty_BoundFieldWritesAfterExternalEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "name")
	writeFile(t, path, "a\n")
	p := New(path, latch.TypeOf[string]())

	f := latch.NewField().Named("name")
	f.SetPropertyDataSource(p)

	writeFile(t, path, "b\n")
	if f.Value() != "b" {
		t.Fatalf("expected field to read through, got %v", f.Value())
	}

	if err := f.SetValue("a"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	if string(data) != "a\n" {
		t.Errorf("expected write-through to reach the file, got %q", data)
	}
}

func TestProperty_ReadOnlyListenersDeduplicated(t *testing.T) {
	p := New(filepath.Join(t.TempDir(), "port"), latch.TypeOf[int]())
	l := &countingListener{}
	p.AddReadOnlyStatusChangeListener(l)
	p.AddReadOnlyStatusChangeListener(l)

	p.SetReadOnly(true)
	if l.readOnly != 1 {
		t.Errorf("expected one notification, got %d", l.readOnly)
	}

	p.RemoveReadOnlyStatusChangeListener(l)
	p.SetReadOnly(false)
	if l.readOnly != 1 {
		t.Errorf("expected no notification after remove, got %d", l.readOnly)
	}
}

func TestProperty_Refresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "port")
	writeFile(t, path, "8080")
	p := New(path, latch.TypeOf[int]())

	f := latch.NewField()
	f.SetPropertyDataSource(p)
	changes := 0
	f.OnValueChange(func(latch.ValueChangeEvent) { changes++ })

	if err := p.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if changes != 0 {
		t.Error("unchanged file must not notify")
	}

	writeFile(t, path, "9090")
	if err := p.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if changes != 1 || f.Value() != 9090 {
		t.Errorf("expected field to follow the file, got %v after %d events", f.Value(), changes)
	}
}

func TestProperty_Watch_EmitsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "port")
	writeFile(t, path, "8080")
	p := New(path, latch.TypeOf[int]())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ch, err := p.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	writeFile(t, path, "9090")

	select {
	case <-ch:
		if p.Value() != 9090 {
			t.Errorf("expected updated value, got %v", p.Value())
		}
	case <-ctx.Done():
		t.Fatal("timeout waiting for file update")
	}
}

func TestProperty_Watch_SeesAtomicReplace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "port")
	writeFile(t, path, "8080")
	p := New(path, latch.TypeOf[int]())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ch, err := p.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	if err := New(path, latch.TypeOf[int]()).SetValue(7); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}

	select {
	case <-ch:
	case <-ctx.Done():
		t.Fatal("timeout waiting for replacement")
	}
}

func TestProperty_Watch_MissingDirectory(t *testing.T) {
	p := New("/nonexistent/dir/port", latch.TypeOf[int]())
	if _, err := p.Watch(context.Background()); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestProperty_Watch_ClosesOnContextCancel(t *testing.T) {
	p := New(filepath.Join(t.TempDir(), "port"), latch.TypeOf[int]())
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := p.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected channel to close after context cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel to close")
	}
}

type countingListener struct {
	n        int
	readOnly int
}

func (c *countingListener) ValueChange(latch.ValueChangeEvent) { c.n++ }

func (c *countingListener) ReadOnlyStatusChange(latch.ReadOnlyStatusChangeEvent) { c.readOnly++ }
