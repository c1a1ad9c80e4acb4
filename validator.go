package latch

import (
	"errors"
	"fmt"
	"strings"
)

// Validator checks values. Implementations are stateless and safe to share
// between fields.
type Validator interface {
	// IsValid reports whether value is valid. It has no side effects.
	IsValid(value any) bool

	// Validate returns a *InvalidValueError when IsValid(value) is false.
	Validate(value any) error
}

// InvalidValueError reports a rejected value. A composite error has no
// message of its own and carries the individual failures as Causes, which may
// themselves be composites.
type InvalidValueError struct {
	Message string
	Causes  []*InvalidValueError
}

// NewInvalidValueError creates a leaf validation error.
func NewInvalidValueError(message string) *InvalidValueError {
	return &InvalidValueError{Message: message}
}

func (e *InvalidValueError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	msgs := make([]string, 0, len(e.Causes))
	for _, c := range e.Causes {
		if s := c.Error(); s != "" {
			msgs = append(msgs, s)
		}
	}
	return strings.Join(msgs, "; ")
}

// Invisible reports whether the error should be hidden from the user: its
// message is empty and none of its causes is visible.
func (e *InvalidValueError) Invisible() bool {
	if e.Message != "" {
		return false
	}
	for _, c := range e.Causes {
		if !c.Invisible() {
			return false
		}
	}
	return true
}

// Unwrap exposes the causes to errors.Is and errors.As.
func (e *InvalidValueError) Unwrap() []error {
	if len(e.Causes) == 0 {
		return nil
	}
	errs := make([]error, len(e.Causes))
	for i, c := range e.Causes {
		errs[i] = c
	}
	return errs
}

// Level implements ErrorMessage.
func (e *InvalidValueError) Level() ErrorLevel { return LevelError }

// Paint implements ErrorMessage. Invisible causes are skipped.
func (e *InvalidValueError) Paint(target PaintTarget) error {
	if err := target.StartTag(tagError); err != nil {
		return err
	}
	if err := target.AddAttribute(attrLevel, levelName(e.Level())); err != nil {
		return err
	}
	if e.Message != "" {
		if err := target.AddText(e.Message); err != nil {
			return err
		}
	}
	for _, c := range e.Causes {
		if c.Invisible() {
			continue
		}
		if err := c.Paint(target); err != nil {
			return err
		}
	}
	return target.EndTag(tagError)
}

// asInvalidValue converts an arbitrary validator error into an InvalidValueError.
func asInvalidValue(err error) *InvalidValueError {
	var ive *InvalidValueError
	if errors.As(err, &ive) {
		return ive
	}
	return &InvalidValueError{Message: err.Error()}
}

// formatMessage substitutes {0} in message with the textual form of value.
func formatMessage(message string, value any) string {
	if !strings.Contains(message, "{0}") {
		return message
	}
	text := ""
	if value != nil {
		text = fmt.Sprint(value)
	}
	return strings.ReplaceAll(message, "{0}", text)
}

// check is the shared Validate implementation for predicate validators.
func check(valid bool, message string, value any) error {
	if valid {
		return nil
	}
	return &InvalidValueError{Message: formatMessage(message, value)}
}

// FuncValidator adapts a predicate into a Validator.
type FuncValidator struct {
	message string
	fn      func(any) bool
}

// NewFuncValidator creates a Validator that accepts values for which fn
// returns true. The message may reference the value as {0}.
func NewFuncValidator(message string, fn func(any) bool) *FuncValidator {
	return &FuncValidator{message: message, fn: fn}
}

// IsValid implements Validator.
func (v *FuncValidator) IsValid(value any) bool {
	return v.fn(value)
}

// Validate implements Validator.
func (v *FuncValidator) Validate(value any) error {
	return check(v.IsValid(value), v.message, value)
}

// CompositeMode selects how a CompositeValidator combines its validators.
type CompositeMode int

const (
	// ModeAnd requires every validator to accept the value.
	ModeAnd CompositeMode = iota
	// ModeOr requires at least one validator to accept the value.
	ModeOr
)

// String returns the string representation of the mode.
func (m CompositeMode) String() string {
	switch m {
	case ModeAnd:
		return "and"
	case ModeOr:
		return "or"
	default:
		return "unknown"
	}
}

// CompositeValidator combines validators with a CompositeMode.
//
// In ModeAnd the first failure is returned; when the composite has a message
// the failure is wrapped under it. In ModeOr, if every validator fails, an
// error carrying the composite message and all failures as causes is returned.
type CompositeValidator struct {
	mode       CompositeMode
	message    string
	validators []Validator
}

// NewCompositeValidator creates a composite validator. An empty composite
// accepts every value.
func NewCompositeValidator(mode CompositeMode, message string, validators ...Validator) *CompositeValidator {
	return &CompositeValidator{mode: mode, message: message, validators: validators}
}

// Add appends a validator.
func (c *CompositeValidator) Add(v Validator) {
	c.validators = append(c.validators, v)
}

// Mode returns the combination mode.
func (c *CompositeValidator) Mode() CompositeMode {
	return c.mode
}

// IsValid implements Validator.
func (c *CompositeValidator) IsValid(value any) bool {
	if len(c.validators) == 0 {
		return true
	}
	for _, v := range c.validators {
		ok := v.IsValid(value)
		if c.mode == ModeOr && ok {
			return true
		}
		if c.mode == ModeAnd && !ok {
			return false
		}
	}
	return c.mode == ModeAnd
}

// Validate implements Validator.
func (c *CompositeValidator) Validate(value any) error {
	if len(c.validators) == 0 {
		return nil
	}
	if c.mode == ModeAnd {
		for _, v := range c.validators {
			if err := v.Validate(value); err != nil {
				if c.message == "" {
					return err
				}
				return &InvalidValueError{
					Message: formatMessage(c.message, value),
					Causes:  []*InvalidValueError{asInvalidValue(err)},
				}
			}
		}
		return nil
	}

	causes := make([]*InvalidValueError, 0, len(c.validators))
	for _, v := range c.validators {
		err := v.Validate(value)
		if err == nil {
			return nil
		}
		causes = append(causes, asInvalidValue(err))
	}
	return &InvalidValueError{Message: formatMessage(c.message, value), Causes: causes}
}

// Ensure the validators implement Validator.
var (
	_ Validator = (*FuncValidator)(nil)
	_ Validator = (*CompositeValidator)(nil)
)
