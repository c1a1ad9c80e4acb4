// Package file provides a latch.Property whose value is stored as text in a
// file, with change detection through fsnotify.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/zoobzio/latch"
)

// Property stores a typed value as text in a file.
//
// Reads go to disk every time, so a bound field always sees the current file
// contents. Writes replace the file atomically. A Property is not safe for
// concurrent use; use Watch to learn about external changes and call Refresh
// from the goroutine that owns the bound fields.
type Property struct {
	path      string
	typ       reflect.Type
	converter latch.Converter
	perm      os.FileMode
	readOnly  bool
	pipeline  *latch.SourcePipeline

	last any

	valueListeners    latch.Listeners[latch.ValueChangeListener]
	readOnlyListeners latch.Listeners[latch.ReadOnlyStatusChangeListener]
}

// Option configures a Property.
type Option func(*Property)

// WithConverter sets the converter used to parse the file contents.
// Default: latch.TextConverter.
func WithConverter(conv latch.Converter) Option {
	return func(p *Property) {
		p.converter = conv
	}
}

// WithPerm sets the permissions of files created by SetValue.
// Default: 0o600.
func WithPerm(perm os.FileMode) Option {
	return func(p *Property) {
		p.perm = perm
	}
}

// WithReadOnly creates the property in read-only mode.
func WithReadOnly() Option {
	return func(p *Property) {
		p.readOnly = true
	}
}

// WithPipeline wraps every read and write of the file with the given
// middleware, such as latch.WithRetry or latch.WithTimeout.
func WithPipeline(opts ...latch.SourceOption) Option {
	return func(p *Property) {
		p.pipeline = latch.NewSourcePipeline(p.io, opts...)
	}
}

// New creates a Property of type typ stored at path. The file does not need
// to exist until the property is read.
func New(path string, typ reflect.Type, opts ...Option) *Property {
	p := &Property{
		path:      filepath.Clean(path),
		typ:       typ,
		converter: latch.TextConverter{},
		perm:      0o600,
	}
	p.pipeline = latch.NewSourcePipeline(p.io)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Path returns the file path.
func (p *Property) Path() string {
	return p.path
}

// Load reads and converts the file contents. One trailing newline is
// dropped and other whitespace is kept, so string values round-trip. An
// empty file holds nil, which means an empty string reads back as nil.
func (p *Property) Load() (any, error) {
	req := &latch.SourceRequest{Op: "load", Key: p.path}
	if err := p.pipeline.Run(context.Background(), req); err != nil {
		return nil, err
	}
	text := strings.TrimSuffix(string(req.Data), "\n")
	text = strings.TrimSuffix(text, "\r")
	if text == "" {
		p.last = nil
		return nil, nil
	}
	v, err := p.converter.Convert(text, p.typ)
	if err != nil {
		return nil, &latch.ConversionError{Value: text, Type: p.typ, Err: err}
	}
	p.last = v
	return v, nil
}

// Value implements latch.Property. It returns the last value read when the
// file cannot be read.
func (p *Property) Value() any {
	v, err := p.Load()
	if err != nil {
		return p.last
	}
	return v
}

// SetValue implements latch.Property. The value is written in its textual
// form, which must convert back to the property type. A nil value empties
// the file.
func (p *Property) SetValue(v any) error {
	if p.readOnly {
		return &latch.ReadOnlyError{Name: p.path}
	}

	text := ""
	var value any
	if v != nil {
		text = fmt.Sprint(v)
		converted, err := p.converter.Convert(text, p.typ)
		if err != nil {
			return &latch.ConversionError{Value: v, Type: p.typ, Err: err}
		}
		value = converted
	}

	req := &latch.SourceRequest{Op: "write", Key: p.path, Data: []byte(text + "\n")}
	if err := p.pipeline.Run(context.Background(), req); err != nil {
		return err
	}
	p.last = value
	p.notify()
	return nil
}

func (p *Property) io(_ context.Context, req *latch.SourceRequest) error {
	if req.Op == "write" {
		return p.write(req.Data)
	}
	data, err := os.ReadFile(p.path)
	if err != nil {
		return err
	}
	req.Data = data
	return nil
}

// write replaces the file through a temporary file in the same directory.
func (p *Property) write(data []byte) error {
	dir, base := filepath.Split(p.path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // already renamed on success

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", p.path, err)
	}
	if err := tmp.Chmod(p.perm); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", p.path, err)
	}
	if err := os.Rename(tmp.Name(), p.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", p.path, err)
	}
	return nil
}

// Type implements latch.Property.
func (p *Property) Type() reflect.Type {
	return p.typ
}

// ReadOnly implements latch.Property.
func (p *Property) ReadOnly() bool {
	return p.readOnly
}

// SetReadOnly implements latch.Property.
func (p *Property) SetReadOnly(readOnly bool) {
	if p.readOnly == readOnly {
		return
	}
	p.readOnly = readOnly
	p.readOnlyListeners.Each(func(l latch.ReadOnlyStatusChangeListener) {
		l.ReadOnlyStatusChange(latch.ReadOnlyStatusChangeEvent{Property: p})
	})
}

// Refresh re-reads the file and notifies listeners if the value differs from
// the last value seen.
func (p *Property) Refresh() error {
	before := p.last
	v, err := p.Load()
	if err != nil {
		return err
	}
	if !reflect.DeepEqual(before, v) {
		p.notify()
	}
	return nil
}

// Watch watches the file and returns a channel that receives a signal
// whenever it is created, written or replaced. The containing directory is
// watched so atomic replacements are seen. The channel is closed when ctx is
// done.
func (p *Property) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	dir := filepath.Dir(p.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	out := make(chan struct{}, 1)

	go func() {
		defer close(out)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != p.path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				// Coalesce bursts: one pending signal is enough.
				select {
				case out <- struct{}{}:
				default:
				}

			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return out, nil
}

// AddValueChangeListener implements latch.ValueChangeNotifier.
func (p *Property) AddValueChangeListener(l latch.ValueChangeListener) {
	p.valueListeners.Add(l)
}

// RemoveValueChangeListener implements latch.ValueChangeNotifier.
func (p *Property) RemoveValueChangeListener(l latch.ValueChangeListener) {
	p.valueListeners.Remove(l)
}

// AddReadOnlyStatusChangeListener implements latch.ReadOnlyStatusNotifier.
func (p *Property) AddReadOnlyStatusChangeListener(l latch.ReadOnlyStatusChangeListener) {
	p.readOnlyListeners.Add(l)
}

// RemoveReadOnlyStatusChangeListener implements latch.ReadOnlyStatusNotifier.
func (p *Property) RemoveReadOnlyStatusChangeListener(l latch.ReadOnlyStatusChangeListener) {
	p.readOnlyListeners.Remove(l)
}

func (p *Property) notify() {
	p.valueListeners.Each(func(l latch.ValueChangeListener) {
		l.ValueChange(latch.ValueChangeEvent{Property: p})
	})
}

// IsNotExist reports whether err means the property file does not exist.
func IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}

// Ensure Property implements the property capabilities.
var (
	_ latch.Property               = (*Property)(nil)
	_ latch.Loader                 = (*Property)(nil)
	_ latch.ValueChangeNotifier    = (*Property)(nil)
	_ latch.ReadOnlyStatusNotifier = (*Property)(nil)
)
