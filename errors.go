package latch

import (
	"errors"
	"fmt"
	"reflect"
	"time"
)

// ErrReadOnly is matched by every ReadOnlyError via errors.Is.
var ErrReadOnly = errors.New("read-only")

// ErrEmptyComposite is returned when a CompositeErrorMessage would contain no errors.
var ErrEmptyComposite = errors.New("composite error message must have at least one error")

// ReadOnlyError is returned when a value is written to a read-only Property or Field.
type ReadOnlyError struct {
	// Name identifies the rejecting field, if it has one.
	Name string
}

func (e *ReadOnlyError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s is read-only", e.Name)
	}
	return "property is read-only"
}

// Is reports whether target is ErrReadOnly.
func (e *ReadOnlyError) Is(target error) bool {
	return target == ErrReadOnly
}

// ConversionError is returned when a value cannot be converted to the
// declared type of a Property.
type ConversionError struct {
	Value any
	Type  reflect.Type
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %q to %s: %v", fmt.Sprint(e.Value), typeName(e.Type), e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// SourceError wraps a failure raised by a Field's data source while the field
// was reading from or writing to it. The field retains the error until the
// next successful write or read, so it can be displayed later.
type SourceError struct {
	// Field is the name of the field that buffered the error.
	Field string
	// Op is "read" or "write".
	Op  string
	Err error
	At  time.Time
}

func (e *SourceError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: source %s failed: %v", e.Field, e.Op, e.Err)
	}
	return fmt.Sprintf("source %s failed: %v", e.Op, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Level implements ErrorMessage.
func (e *SourceError) Level() ErrorLevel { return LevelError }

// Paint implements ErrorMessage.
func (e *SourceError) Paint(target PaintTarget) error {
	return paintLeaf(target, e.Level(), e.Err.Error())
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
