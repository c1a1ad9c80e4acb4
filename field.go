package latch

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// VariableValue is the client variable carrying a new field value.
const VariableValue = "value"

// Field buffers a value bound to an optional Property data source.
//
// An unbound field is a plain value holder. A bound field reads its value
// from the source (read-through) and writes every change to it immediately
// (write-through) unless those modes are switched off, in which case changes
// stay local until Commit and can be dropped with Discard.
//
// Validators are checked on demand by IsValid and Validate. By default invalid
// values may be set but are not written to the source. Failures while reading
// or writing the source are retained as a *SourceError and reported by
// ErrorMessage until the next successful transfer.
//
// A Field is not safe for concurrent use.
type Field struct {
	name         string
	typ          reflect.Type
	clock        clockz.Clock
	metrics      MetricsProvider
	errorHistory *sourceErrorRing

	value      any
	dataSource Property
	validators []Validator

	writeThrough bool
	readThrough  bool
	modified     bool
	// propagating is set while the field writes to its source so the
	// source's echo notification is ignored.
	propagating bool
	sourceErr   *SourceError
	lastCommit  time.Time

	invalidAllowed    bool
	invalidCommitted  bool
	required          bool
	requiredError     string
	validationVisible bool

	readOnly       bool
	tabIndex       int
	componentError ErrorMessage

	valueListeners    Listeners[ValueChangeListener]
	readOnlyListeners Listeners[ReadOnlyStatusChangeListener]
	repaintListeners  Listeners[*repaintFunc]
}

type repaintFunc struct {
	fn func()
}

// NewField creates an unbound field in write-through and read-through mode.
//
// Example:
//
//	port := latch.MustObjectProperty(8080)
//	field := latch.NewField().Named("port").Typed(latch.TypeOf[string]())
//	field.SetPropertyDataSource(port)
//	field.Value() // "8080"
func NewField() *Field {
	return &Field{
		typ:               TypeOf[any](),
		clock:             clockz.RealClock,
		metrics:           NoOpMetricsProvider{},
		writeThrough:      true,
		readThrough:       true,
		invalidAllowed:    true,
		validationVisible: true,
	}
}

// -----------------------------------------------------------------------------
// Chainable Instance Configuration
// -----------------------------------------------------------------------------

// Named sets the name used in errors and events.
func (f *Field) Named(name string) *Field {
	f.name = name
	return f
}

// Typed sets the field type. A field of string kind presents non-string
// source values in their textual form. Default: any.
func (f *Field) Typed(typ reflect.Type) *Field {
	f.typ = typ
	return f
}

// Clock sets a custom clock for timestamps and commit durations.
// Use this with clockz.FakeClock for deterministic tests.
func (f *Field) Clock(clock clockz.Clock) *Field {
	f.clock = clock
	return f
}

// Metrics sets a metrics provider for observability integration.
func (f *Field) Metrics(provider MetricsProvider) *Field {
	if provider == nil {
		provider = NoOpMetricsProvider{}
	}
	f.metrics = provider
	return f
}

// ErrorHistorySize sets the number of recent source errors to retain.
// The history is cleared by a successful commit. Use 0 (default) to only
// retain the current error via SourceError().
func (f *Field) ErrorHistorySize(n int) *Field {
	f.errorHistory = newSourceErrorRing(n)
	return f
}

// -----------------------------------------------------------------------------
// Property
// -----------------------------------------------------------------------------

// Name returns the field name.
func (f *Field) Name() string {
	return f.name
}

// Type implements Property.
func (f *Field) Type() reflect.Type {
	return f.typ
}

// Value returns the current value of the field.
//
// The local value is returned when the field is unbound, not reading
// through, or modified. Otherwise the source is read; if that read fails the
// local value is returned.
func (f *Field) Value() any {
	if f.dataSource == nil || !f.readThrough || f.modified {
		return f.value
	}
	v, err := f.readSource()
	if err != nil {
		return f.value
	}
	return v
}

// SetValue sets the value of the field.
//
// It returns a *ReadOnlyError for read-only fields, the first validator's
// *InvalidValueError when invalid values are not allowed, and a *SourceError
// when the write-through to the data source fails. In the last case the new
// value is kept locally and the field stays modified.
func (f *Field) SetValue(v any) error {
	return f.setValue(v, false)
}

// SetValueNoRepaint is SetValue for callers that know the client already
// shows the new value, such as ChangeVariables. Required or validated fields
// still request a repaint.
func (f *Field) SetValueNoRepaint(v any) error {
	return f.setValue(v, true)
}

func (f *Field) setValue(newValue any, repaintNotNeeded bool) error {
	if f.ReadOnly() {
		return &ReadOnlyError{Name: f.name}
	}
	// Compare with what the field shows: a read-through source may have
	// changed without notifying the field.
	if valuesEqual(newValue, f.Value()) {
		return nil
	}

	before := f.State()
	if repaintNotNeeded && (f.required || len(f.validators) > 0) {
		repaintNotNeeded = false
	}

	if !f.invalidAllowed {
		for _, v := range f.validators {
			if err := v.Validate(newValue); err != nil {
				f.emitValidationFailed(err)
				return err
			}
		}
	}

	f.setInternalValue(newValue)
	f.modified = f.dataSource != nil

	if f.writeThrough && f.dataSource != nil && (f.invalidCommitted || f.IsValid()) {
		if err := f.writeSource(newValue); err != nil {
			f.transition(before)
			return err
		}
		f.modified = false
	}

	if f.sourceErr != nil {
		f.sourceErr = nil
		f.requestRepaint()
	}

	f.fireValueChange(repaintNotNeeded)
	f.transition(before)
	return nil
}

// ReadOnly implements Property. A field is also read-only when its data
// source is.
func (f *Field) ReadOnly() bool {
	return f.readOnly || (f.dataSource != nil && f.dataSource.ReadOnly())
}

// SetReadOnly implements Property and notifies read-only status listeners.
func (f *Field) SetReadOnly(readOnly bool) {
	f.readOnly = readOnly
	f.readOnlyListeners.Each(func(l ReadOnlyStatusChangeListener) {
		l.ReadOnlyStatusChange(ReadOnlyStatusChangeEvent{Property: f})
	})
	f.requestRepaint()
}

// String returns the textual form of the value, or "" when it is nil.
func (f *Field) String() string {
	v := f.Value()
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// IsEmpty reports whether the value is nil.
func (f *Field) IsEmpty() bool {
	return f.Value() == nil
}

// -----------------------------------------------------------------------------
// Data Source
// -----------------------------------------------------------------------------

// PropertyDataSource returns the bound data source, or nil.
func (f *Field) PropertyDataSource() Property {
	return f.dataSource
}

// SetPropertyDataSource binds the field to p, replacing any uncommitted
// changes with the value of p. A nil p unbinds the field.
//
// A failure reading p is retained as the field's source error and the field
// is marked modified; it is not returned. Validators of a ValidatorSource are
// appended to the field's validators and remain after later rebinds.
func (f *Field) SetPropertyDataSource(p Property) {
	before := f.State()
	oldValue := f.value

	if f.dataSource != nil {
		if n, ok := f.dataSource.(ValueChangeNotifier); ok {
			n.RemoveValueChangeListener(f)
		}
		if n, ok := f.dataSource.(ReadOnlyStatusNotifier); ok {
			n.RemoveReadOnlyStatusChangeListener(f)
		}
	}

	f.dataSource = p
	f.modified = false
	if p != nil {
		if v, err := f.readSource(); err != nil {
			f.setSourceError("read", err)
			f.modified = true
		} else {
			f.setInternalValue(v)
		}

		if n, ok := p.(ValueChangeNotifier); ok {
			n.AddValueChangeListener(f)
		}
		if n, ok := p.(ReadOnlyStatusNotifier); ok {
			n.AddReadOnlyStatusChangeListener(f)
		}
		if vs, ok := p.(ValidatorSource); ok {
			for _, v := range vs.Validators() {
				f.AddValidator(v)
			}
		}
	}

	capitan.Emit(context.Background(), FieldBound,
		KeyField.Field(f.name),
		KeyState.Field(f.State().String()),
		KeyValidators.Field(len(f.validators)),
	)

	if !valuesEqual(f.value, oldValue) {
		f.fireValueChange(false)
	}
	f.transition(before)
}

// ValueChange implements ValueChangeListener. The field follows its source
// when reading through and not modified, except for the echo of its own writes.
func (f *Field) ValueChange(e ValueChangeEvent) {
	if f.propagating || !f.readThrough || f.modified {
		return
	}
	f.setInternalValue(f.fromSource(e.Property.Value()))
	f.fireValueChange(false)
}

// ReadOnlyStatusChange implements ReadOnlyStatusChangeListener.
func (f *Field) ReadOnlyStatusChange(_ ReadOnlyStatusChangeEvent) {
	f.requestRepaint()
}

// -----------------------------------------------------------------------------
// Buffered
// -----------------------------------------------------------------------------

// Commit writes the value to the data source.
//
// Invalid values are only written when InvalidCommitted is set; otherwise the
// validation error is returned and nothing changes. A failing write is
// returned as a *SourceError and retained. Commit on an unbound field, or one
// bound to a read-only source, only clears the modified flag.
func (f *Field) Commit() error {
	before := f.State()
	start := f.clock.Now()
	wrote := false

	if f.dataSource != nil && !f.dataSource.ReadOnly() {
		if f.invalidCommitted || f.IsValid() {
			if err := f.writeSource(f.Value()); err != nil {
				f.metrics.OnCommitFailure("source", f.clock.Since(start))
				f.transition(before)
				return err
			}
			wrote = true
		} else if err := f.Validate(); err != nil {
			f.emitValidationFailed(err)
			f.metrics.OnCommitFailure("validate", f.clock.Since(start))
			return err
		}
	}

	repaintNeeded := false
	if f.modified {
		f.modified = false
		repaintNeeded = true
	}
	if f.sourceErr != nil {
		f.sourceErr = nil
		repaintNeeded = true
	}

	if wrote {
		f.lastCommit = f.clock.Now()
		f.errorHistory.clear()
		duration := f.clock.Since(start)
		capitan.Emit(context.Background(), FieldCommitted,
			KeyField.Field(f.name),
			KeyDuration.Field(duration),
		)
		f.metrics.OnCommit(duration)
	}

	if repaintNeeded {
		f.requestRepaint()
	}
	f.transition(before)
	return nil
}

// Discard drops local changes by re-reading the data source. A failed read
// is retained as the field's source error and is not returned.
func (f *Field) Discard() {
	if f.dataSource == nil {
		return
	}
	before := f.State()

	newValue, err := f.readSource()
	if err != nil {
		f.setSourceError("read", err)
		f.transition(before)
		return
	}
	if f.sourceErr != nil {
		f.sourceErr = nil
		f.requestRepaint()
	}

	wasModified := f.modified
	f.modified = false

	if !valuesEqual(newValue, f.value) {
		f.setInternalValue(newValue)
		f.fireValueChange(false)
	} else if wasModified {
		f.requestRepaint()
	}

	capitan.Emit(context.Background(), FieldDiscarded,
		KeyField.Field(f.name),
	)
	f.metrics.OnDiscard()
	f.transition(before)
}

// IsModified reports whether the field holds changes not yet written to its source.
func (f *Field) IsModified() bool {
	return f.modified
}

// WriteThrough implements Buffered.
func (f *Field) WriteThrough() bool {
	return f.writeThrough
}

// SetWriteThrough implements Buffered. Switching write-through on commits
// pending changes.
func (f *Field) SetWriteThrough(writeThrough bool) error {
	if f.writeThrough == writeThrough {
		return nil
	}
	f.writeThrough = writeThrough
	if f.writeThrough {
		return f.Commit()
	}
	return nil
}

// ReadThrough implements Buffered.
func (f *Field) ReadThrough() bool {
	return f.readThrough
}

// SetReadThrough implements Buffered. Switching read-through on re-reads an
// unmodified field from its source.
func (f *Field) SetReadThrough(readThrough bool) {
	if f.readThrough == readThrough {
		return
	}
	f.readThrough = readThrough
	if f.modified || !f.readThrough || f.dataSource == nil {
		return
	}

	before := f.State()
	v, err := f.readSource()
	if err != nil {
		f.setSourceError("read", err)
		f.transition(before)
		return
	}
	f.setInternalValue(v)
	f.fireValueChange(false)
	f.transition(before)
}

// InvalidCommitted reports whether invalid values are written to the source.
func (f *Field) InvalidCommitted() bool {
	return f.invalidCommitted
}

// SetInvalidCommitted sets whether invalid values are written to the source.
func (f *Field) SetInvalidCommitted(committed bool) {
	f.invalidCommitted = committed
}

// SourceError returns the retained source error, or nil.
func (f *Field) SourceError() *SourceError {
	return f.sourceErr
}

// ErrorHistory returns recent source errors, oldest first.
// Returns nil if error history is not enabled (see ErrorHistorySize).
func (f *Field) ErrorHistory() []*SourceError {
	return f.errorHistory.all()
}

// LastCommit returns the time of the last successful write by Commit, or the
// zero time.
func (f *Field) LastCommit() time.Time {
	return f.lastCommit
}

// State returns the current state of the field.
func (f *Field) State() State {
	switch {
	case f.sourceErr != nil:
		return StateFailed
	case f.dataSource == nil:
		return StateUnbound
	case f.modified:
		return StateModified
	default:
		return StateSynced
	}
}

// -----------------------------------------------------------------------------
// Validatable
// -----------------------------------------------------------------------------

// AddValidator appends a validator.
func (f *Field) AddValidator(v Validator) {
	f.validators = append(f.validators, v)
	f.requestRepaint()
}

// RemoveValidator removes the first occurrence of v.
func (f *Field) RemoveValidator(v Validator) {
	for i, existing := range f.validators {
		if existing == v {
			f.validators = append(f.validators[:i:i], f.validators[i+1:]...)
			break
		}
	}
	f.requestRepaint()
}

// Validators returns the attached validators in insertion order, or nil.
func (f *Field) Validators() []Validator {
	if len(f.validators) == 0 {
		return nil
	}
	out := make([]Validator, len(f.validators))
	copy(out, f.validators)
	return out
}

// IsValid reports whether the value passes every validator. An empty field
// is valid unless it is required; validators are not consulted for it.
func (f *Field) IsValid() bool {
	if f.IsEmpty() {
		return !f.required
	}
	value := f.Value()
	for _, v := range f.validators {
		if !v.IsValid(value) {
			return false
		}
	}
	return true
}

// Validate checks the value against every validator.
//
// An empty required field fails with the required error message. A single
// failing validator's error is returned as is; several failures are combined
// into one *InvalidValueError whose causes follow attachment order.
func (f *Field) Validate() error {
	if f.IsEmpty() {
		if f.required {
			return &InvalidValueError{Message: f.requiredError}
		}
		return nil
	}

	value := f.Value()
	var failures []*InvalidValueError
	for _, v := range f.validators {
		if err := v.Validate(value); err != nil {
			failures = append(failures, asInvalidValue(err))
		}
	}

	switch len(failures) {
	case 0:
		return nil
	case 1:
		return failures[0]
	default:
		return &InvalidValueError{Causes: failures}
	}
}

// InvalidAllowed implements Validatable.
func (f *Field) InvalidAllowed() bool {
	return f.invalidAllowed
}

// SetInvalidAllowed implements Validatable. When invalid values are not
// allowed, SetValue rejects them before changing anything.
func (f *Field) SetInvalidAllowed(allowed bool) {
	f.invalidAllowed = allowed
}

// Required reports whether the field must have a value.
func (f *Field) Required() bool {
	return f.required
}

// SetRequired marks the field as required. An empty required field is
// invalid regardless of its validators.
func (f *Field) SetRequired(required bool) {
	f.required = required
	f.requestRepaint()
}

// RequiredError returns the message reported for an empty required field.
func (f *Field) RequiredError() string {
	return f.requiredError
}

// SetRequiredError sets the message reported for an empty required field.
// An empty message keeps the field invalid but hides the error from the user.
func (f *Field) SetRequiredError(message string) {
	f.requiredError = message
	f.requestRepaint()
}

// ValidationVisible reports whether validation errors are included in ErrorMessage.
func (f *Field) ValidationVisible() bool {
	return f.validationVisible
}

// SetValidationVisible sets whether validation errors are included in ErrorMessage.
func (f *Field) SetValidationVisible(visible bool) {
	if f.validationVisible != visible {
		f.requestRepaint()
		f.validationVisible = visible
	}
}

// -----------------------------------------------------------------------------
// Errors & Rendering
// -----------------------------------------------------------------------------

// ComponentError returns the error set on the field itself, or nil.
func (f *Field) ComponentError() ErrorMessage {
	return f.componentError
}

// SetComponentError sets an error on the field itself.
func (f *Field) SetComponentError(err ErrorMessage) {
	f.componentError = err
	f.requestRepaint()
}

// ErrorMessage combines the component error, the visible validation error
// and the retained source error. It returns nil when there is none.
func (f *Field) ErrorMessage() *CompositeErrorMessage {
	var validationErr ErrorMessage
	if f.validationVisible {
		if err := f.Validate(); err != nil {
			if ive := asInvalidValue(err); !ive.Invisible() {
				validationErr = ive
			}
		}
	}

	msgs := []ErrorMessage{f.componentError, validationErr}
	if f.sourceErr != nil {
		msgs = append(msgs, f.sourceErr)
	}
	composite, err := NewCompositeErrorMessage(msgs...)
	if err != nil {
		return nil
	}
	return composite
}

// TabIndex returns the tab index.
func (f *Field) TabIndex() int {
	return f.tabIndex
}

// SetTabIndex sets the tab index.
func (f *Field) SetTabIndex(index int) {
	f.tabIndex = index
	f.requestRepaint()
}

// PaintContent writes the field's state attributes to target.
func (f *Field) PaintContent(target PaintTarget) error {
	if f.tabIndex != 0 {
		if err := target.AddAttribute(AttrTabIndex, f.tabIndex); err != nil {
			return err
		}
	}
	if f.modified {
		if err := target.AddAttribute(AttrModified, true); err != nil {
			return err
		}
	}
	if !f.ReadOnly() && f.required {
		if err := target.AddAttribute(AttrRequired, true); err != nil {
			return err
		}
	}
	if f.required && f.IsEmpty() && f.componentError == nil && f.ErrorMessage() != nil {
		if err := target.AddAttribute(AttrHideError, true); err != nil {
			return err
		}
	}
	return nil
}

// ChangeVariables applies variables sent by the client. The "value" variable
// is set on the field unless the field is read-only.
func (f *Field) ChangeVariables(_ any, variables map[string]any) error {
	v, ok := variables[VariableValue]
	if !ok || f.ReadOnly() {
		return nil
	}
	return f.SetValueNoRepaint(v)
}

// -----------------------------------------------------------------------------
// Listeners
// -----------------------------------------------------------------------------

// AddValueChangeListener implements ValueChangeNotifier.
func (f *Field) AddValueChangeListener(l ValueChangeListener) {
	f.valueListeners.Add(l)
}

// RemoveValueChangeListener implements ValueChangeNotifier.
func (f *Field) RemoveValueChangeListener(l ValueChangeListener) {
	f.valueListeners.Remove(l)
}

// OnValueChange registers fn as a value change listener and returns a
// function that unregisters it.
func (f *Field) OnValueChange(fn func(ValueChangeEvent)) func() {
	l := &valueChangeFunc{fn: fn}
	f.AddValueChangeListener(l)
	return func() { f.RemoveValueChangeListener(l) }
}

// AddReadOnlyStatusChangeListener implements ReadOnlyStatusNotifier.
func (f *Field) AddReadOnlyStatusChangeListener(l ReadOnlyStatusChangeListener) {
	f.readOnlyListeners.Add(l)
}

// RemoveReadOnlyStatusChangeListener implements ReadOnlyStatusNotifier.
func (f *Field) RemoveReadOnlyStatusChangeListener(l ReadOnlyStatusChangeListener) {
	f.readOnlyListeners.Remove(l)
}

// OnReadOnlyStatusChange registers fn as a read-only status listener and
// returns a function that unregisters it.
func (f *Field) OnReadOnlyStatusChange(fn func(ReadOnlyStatusChangeEvent)) func() {
	l := &readOnlyStatusFunc{fn: fn}
	f.AddReadOnlyStatusChangeListener(l)
	return func() { f.RemoveReadOnlyStatusChangeListener(l) }
}

// OnRepaint registers fn to be called whenever the field needs to be
// repainted and returns a function that unregisters it.
func (f *Field) OnRepaint(fn func()) func() {
	l := &repaintFunc{fn: fn}
	f.repaintListeners.Add(l)
	return func() { f.repaintListeners.Remove(l) }
}

// -----------------------------------------------------------------------------
// Internals
// -----------------------------------------------------------------------------

// readSource reads the data source, through Load when it can fail.
func (f *Field) readSource() (any, error) {
	if l, ok := f.dataSource.(Loader); ok {
		v, err := l.Load()
		if err != nil {
			return nil, err
		}
		return f.fromSource(v), nil
	}
	return f.fromSource(f.dataSource.Value()), nil
}

// fromSource presents a source value in the field's type: string fields see
// the textual form of non-string values.
func (f *Field) fromSource(v any) any {
	if v == nil || f.typ == nil || f.typ.Kind() != reflect.String {
		return v
	}
	if _, ok := v.(string); ok {
		return v
	}
	return fmt.Sprint(v)
}

// writeSource writes v to the data source with propagation suppressed.
func (f *Field) writeSource(v any) error {
	f.propagating = true
	defer func() { f.propagating = false }()

	if err := f.dataSource.SetValue(v); err != nil {
		f.setSourceError("write", err)
		return f.sourceErr
	}
	return nil
}

func (f *Field) setSourceError(op string, err error) {
	f.sourceErr = &SourceError{Field: f.name, Op: op, Err: err, At: f.clock.Now()}
	f.errorHistory.push(f.sourceErr)
	capitan.Emit(context.Background(), FieldSourceFailed,
		KeyField.Field(f.name),
		KeyOp.Field(op),
		KeyError.Field(err.Error()),
	)
	f.requestRepaint()
}

func (f *Field) setInternalValue(v any) {
	f.value = v
	if len(f.validators) > 0 {
		f.requestRepaint()
	}
}

func (f *Field) fireValueChange(repaintNotNeeded bool) {
	f.valueListeners.Each(func(l ValueChangeListener) {
		l.ValueChange(ValueChangeEvent{Property: f})
	})
	capitan.Emit(context.Background(), FieldValueChanged,
		KeyField.Field(f.name),
	)
	f.metrics.OnValueChange()
	if !repaintNotNeeded {
		f.requestRepaint()
	}
}

func (f *Field) requestRepaint() {
	f.repaintListeners.Each(func(l *repaintFunc) {
		l.fn()
	})
}

func (f *Field) emitValidationFailed(err error) {
	capitan.Emit(context.Background(), FieldValidationFailed,
		KeyField.Field(f.name),
		KeyError.Field(err.Error()),
	)
}

// transition emits a state change event if the state differs from before.
func (f *Field) transition(before State) {
	after := f.State()
	if before == after {
		return
	}
	capitan.Emit(context.Background(), FieldStateChanged,
		KeyField.Field(f.name),
		KeyOldState.Field(before.String()),
		KeyNewState.Field(after.String()),
	)
	f.metrics.OnStateChange(before, after)
}

func valuesEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

// Ensure Field implements the binding contracts.
var (
	_ Property                     = (*Field)(nil)
	_ BufferedValidatable          = (*Field)(nil)
	_ ValueChangeNotifier          = (*Field)(nil)
	_ ReadOnlyStatusNotifier       = (*Field)(nil)
	_ ValueChangeListener          = (*Field)(nil)
	_ ReadOnlyStatusChangeListener = (*Field)(nil)
)
