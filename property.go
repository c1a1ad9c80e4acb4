package latch

import (
	"fmt"
	"reflect"
)

// Property is a single typed value holder.
type Property interface {
	// Value returns the current value, or nil.
	Value() any

	// SetValue stores a new value. It returns a *ReadOnlyError when the
	// property is read-only and a *ConversionError when the value cannot be
	// converted to Type().
	SetValue(v any) error

	// Type returns the declared type of the value.
	Type() reflect.Type

	ReadOnly() bool
	SetReadOnly(readOnly bool)
}

// Loader is implemented by properties whose reads can fail, typically
// because the value lives outside the process. Fields bound to a Loader read
// through Load so failures can be buffered as source errors.
type Loader interface {
	Load() (any, error)
}

// ValidatorSource is implemented by properties that carry their own
// validators. A Field copies them when the property becomes its data source.
type ValidatorSource interface {
	Validators() []Validator
}

// ObjectProperty is an in-memory Property.
//
// Every successful SetValue notifies value change listeners, including sets
// that store an unchanged value.
type ObjectProperty struct {
	value      any
	typ        reflect.Type
	readOnly   bool
	converter  Converter
	validators []Validator

	valueListeners    Listeners[ValueChangeListener]
	readOnlyListeners Listeners[ReadOnlyStatusChangeListener]
}

// propertyConfig holds construction options for an ObjectProperty.
type propertyConfig struct {
	typ        reflect.Type
	readOnly   bool
	converter  Converter
	validators []Validator
}

// PropertyOption configures an ObjectProperty.
type PropertyOption func(*propertyConfig)

// WithType declares the property type. Without it the type is taken from the
// initial value, and a nil initial value accepts any value.
func WithType(typ reflect.Type) PropertyOption {
	return func(c *propertyConfig) {
		c.typ = typ
	}
}

// WithReadOnly creates the property in read-only mode. The initial value is
// stored before the flag is applied.
func WithReadOnly() PropertyOption {
	return func(c *propertyConfig) {
		c.readOnly = true
	}
}

// WithConverter replaces the TextConverter used for values that are not
// assignable to the property type.
func WithConverter(conv Converter) PropertyOption {
	return func(c *propertyConfig) {
		c.converter = conv
	}
}

// WithValidators attaches validators that fields copy when bound to the property.
func WithValidators(validators ...Validator) PropertyOption {
	return func(c *propertyConfig) {
		c.validators = append(c.validators, validators...)
	}
}

// NewObjectProperty creates a property holding value.
//
// Example:
//
//	port, err := latch.NewObjectProperty("8080", latch.WithType(latch.TypeOf[int]()))
//	// port.Value() == 8080
func NewObjectProperty(value any, opts ...PropertyOption) (*ObjectProperty, error) {
	cfg := &propertyConfig{converter: TextConverter{}}
	for _, opt := range opts {
		opt(cfg)
	}

	typ := cfg.typ
	if typ == nil {
		if value != nil {
			typ = reflect.TypeOf(value)
		} else {
			typ = TypeOf[any]()
		}
	}

	p := &ObjectProperty{
		typ:        typ,
		converter:  cfg.converter,
		validators: cfg.validators,
	}
	v, err := coerce(p.converter, value, typ)
	if err != nil {
		return nil, err
	}
	p.value = v
	p.readOnly = cfg.readOnly
	return p, nil
}

// MustObjectProperty is like NewObjectProperty but panics on error.
func MustObjectProperty(value any, opts ...PropertyOption) *ObjectProperty {
	p, err := NewObjectProperty(value, opts...)
	if err != nil {
		panic(fmt.Sprintf("latch: %v", err))
	}
	return p
}

// Value implements Property.
func (p *ObjectProperty) Value() any {
	return p.value
}

// SetValue implements Property.
func (p *ObjectProperty) SetValue(v any) error {
	if p.readOnly {
		return &ReadOnlyError{}
	}
	converted, err := coerce(p.converter, v, p.typ)
	if err != nil {
		return err
	}
	p.value = converted
	p.fireValueChange()
	return nil
}

// Type implements Property.
func (p *ObjectProperty) Type() reflect.Type {
	return p.typ
}

// ReadOnly implements Property.
func (p *ObjectProperty) ReadOnly() bool {
	return p.readOnly
}

// SetReadOnly implements Property and notifies read-only status listeners
// when the flag changes.
func (p *ObjectProperty) SetReadOnly(readOnly bool) {
	if p.readOnly == readOnly {
		return
	}
	p.readOnly = readOnly
	p.readOnlyListeners.Each(func(l ReadOnlyStatusChangeListener) {
		l.ReadOnlyStatusChange(ReadOnlyStatusChangeEvent{Property: p})
	})
}

// Validators implements ValidatorSource.
func (p *ObjectProperty) Validators() []Validator {
	return p.validators
}

// String returns the textual form of the value, or "" when it is nil.
func (p *ObjectProperty) String() string {
	if p.value == nil {
		return ""
	}
	return fmt.Sprint(p.value)
}

// AddValueChangeListener implements ValueChangeNotifier.
func (p *ObjectProperty) AddValueChangeListener(l ValueChangeListener) {
	p.valueListeners.Add(l)
}

// RemoveValueChangeListener implements ValueChangeNotifier.
func (p *ObjectProperty) RemoveValueChangeListener(l ValueChangeListener) {
	p.valueListeners.Remove(l)
}

// OnValueChange registers fn as a value change listener and returns a
// function that unregisters it.
func (p *ObjectProperty) OnValueChange(fn func(ValueChangeEvent)) func() {
	l := &valueChangeFunc{fn: fn}
	p.AddValueChangeListener(l)
	return func() { p.RemoveValueChangeListener(l) }
}

// AddReadOnlyStatusChangeListener implements ReadOnlyStatusNotifier.
func (p *ObjectProperty) AddReadOnlyStatusChangeListener(l ReadOnlyStatusChangeListener) {
	p.readOnlyListeners.Add(l)
}

// RemoveReadOnlyStatusChangeListener implements ReadOnlyStatusNotifier.
func (p *ObjectProperty) RemoveReadOnlyStatusChangeListener(l ReadOnlyStatusChangeListener) {
	p.readOnlyListeners.Remove(l)
}

func (p *ObjectProperty) fireValueChange() {
	p.valueListeners.Each(func(l ValueChangeListener) {
		l.ValueChange(ValueChangeEvent{Property: p})
	})
}

// Ensure ObjectProperty implements the property capabilities.
var (
	_ Property               = (*ObjectProperty)(nil)
	_ ValueChangeNotifier    = (*ObjectProperty)(nil)
	_ ReadOnlyStatusNotifier = (*ObjectProperty)(nil)
	_ ValidatorSource        = (*ObjectProperty)(nil)
)
