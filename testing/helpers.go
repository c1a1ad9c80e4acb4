// Package testing provides test utilities and helpers for latch fields and properties.
package testing

import (
	"errors"
	"reflect"
	"testing"

	"github.com/zoobzio/latch"
)

// ErrInjected is the default error returned by FailingProperty.
var ErrInjected = errors.New("injected failure")

// FailingProperty is an in-memory Property whose reads and writes can be made
// to fail. It implements latch.Loader so fields read it through Load.
type FailingProperty struct {
	inner *latch.ObjectProperty

	// ReadErr, when set, is returned by Load.
	ReadErr error
	// WriteErr, when set, is returned by SetValue.
	WriteErr error

	Loads  int
	Writes int
}

// NewFailingProperty creates a FailingProperty holding value.
func NewFailingProperty(value any) *FailingProperty {
	return &FailingProperty{inner: latch.MustObjectProperty(value)}
}

// Value implements latch.Property.
func (p *FailingProperty) Value() any { return p.inner.Value() }

// Load implements latch.Loader.
func (p *FailingProperty) Load() (any, error) {
	p.Loads++
	if p.ReadErr != nil {
		return nil, p.ReadErr
	}
	return p.inner.Value(), nil
}

// SetValue implements latch.Property.
func (p *FailingProperty) SetValue(v any) error {
	p.Writes++
	if p.WriteErr != nil {
		return p.WriteErr
	}
	return p.inner.SetValue(v)
}

// Type implements latch.Property.
func (p *FailingProperty) Type() reflect.Type { return p.inner.Type() }

// ReadOnly implements latch.Property.
func (p *FailingProperty) ReadOnly() bool { return p.inner.ReadOnly() }

// SetReadOnly implements latch.Property.
func (p *FailingProperty) SetReadOnly(readOnly bool) { p.inner.SetReadOnly(readOnly) }

// AddValueChangeListener implements latch.ValueChangeNotifier.
func (p *FailingProperty) AddValueChangeListener(l latch.ValueChangeListener) {
	p.inner.AddValueChangeListener(l)
}

// RemoveValueChangeListener implements latch.ValueChangeNotifier.
func (p *FailingProperty) RemoveValueChangeListener(l latch.ValueChangeListener) {
	p.inner.RemoveValueChangeListener(l)
}

// Ensure FailingProperty implements the property capabilities.
var (
	_ latch.Property            = (*FailingProperty)(nil)
	_ latch.Loader              = (*FailingProperty)(nil)
	_ latch.ValueChangeNotifier = (*FailingProperty)(nil)
)

// Recorder records value change events.
type Recorder struct {
	Values []any
}

// ValueChange implements latch.ValueChangeListener.
func (r *Recorder) ValueChange(e latch.ValueChangeEvent) {
	r.Values = append(r.Values, e.Property.Value())
}

// Count returns the number of recorded events.
func (r *Recorder) Count() int {
	return len(r.Values)
}

// RequireState fails the test immediately if the field is not in the expected state.
func RequireState(t *testing.T, f *latch.Field, expected latch.State) {
	t.Helper()
	if got := f.State(); got != expected {
		t.Fatalf("expected state %s, got %s", expected, got)
	}
}

// RequireValue fails the test immediately if the field value is not expected.
func RequireValue(t *testing.T, f *latch.Field, expected any) {
	t.Helper()
	if got := f.Value(); !reflect.DeepEqual(got, expected) {
		t.Fatalf("expected value %v (%T), got %v (%T)", expected, expected, got, got)
	}
}
