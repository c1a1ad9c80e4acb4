package latch

import (
	"cmp"
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// tagValidate is the shared go-playground validator instance.
var tagValidate = validator.New()

// StringLengthValidator checks the rune length of a value's textual form.
type StringLengthValidator struct {
	message  string
	min, max int
	allowNil bool
}

// NewStringLengthValidator accepts values whose length is within [min, max].
// A negative max means no upper bound. allowNil controls whether nil passes.
func NewStringLengthValidator(message string, min, max int, allowNil bool) *StringLengthValidator {
	return &StringLengthValidator{message: message, min: min, max: max, allowNil: allowNil}
}

// IsValid implements Validator.
func (v *StringLengthValidator) IsValid(value any) bool {
	if value == nil {
		return v.allowNil
	}
	n := utf8.RuneCountInString(fmt.Sprint(value))
	if n < v.min {
		return false
	}
	return v.max < 0 || n <= v.max
}

// Validate implements Validator.
func (v *StringLengthValidator) Validate(value any) error {
	return check(v.IsValid(value), v.message, value)
}

// RegexpValidator checks string values against a regular expression.
// Nil is valid; non-string values are not.
type RegexpValidator struct {
	message  string
	pattern  *regexp.Regexp
	complete bool
}

// NewRegexpValidator compiles pattern. When complete is true the whole value
// must match; otherwise a match anywhere in the value is enough.
func NewRegexpValidator(message, pattern string, complete bool) (*RegexpValidator, error) {
	expr := pattern
	if complete {
		expr = `^(?:` + pattern + `)$`
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return &RegexpValidator{message: message, pattern: re, complete: complete}, nil
}

// IsValid implements Validator.
func (v *RegexpValidator) IsValid(value any) bool {
	if value == nil {
		return true
	}
	s, ok := value.(string)
	if !ok {
		return false
	}
	return v.pattern.MatchString(s)
}

// Validate implements Validator.
func (v *RegexpValidator) Validate(value any) error {
	return check(v.IsValid(value), v.message, value)
}

// NullValidator accepts either only nil or only non-nil values.
type NullValidator struct {
	message  string
	onlyNull bool
}

// NewNullValidator creates a NullValidator. With onlyNull set, nil is the
// only valid value; otherwise nil is the only invalid value.
func NewNullValidator(message string, onlyNull bool) *NullValidator {
	return &NullValidator{message: message, onlyNull: onlyNull}
}

// IsValid implements Validator.
func (v *NullValidator) IsValid(value any) bool {
	return (value == nil) == v.onlyNull
}

// Validate implements Validator.
func (v *NullValidator) Validate(value any) error {
	return check(v.IsValid(value), v.message, value)
}

// RangeValidator accepts values of type T within [min, max]. Nil is valid and
// values of other types are not.
type RangeValidator[T cmp.Ordered] struct {
	message  string
	min, max T
}

// NewRangeValidator creates a RangeValidator.
func NewRangeValidator[T cmp.Ordered](message string, min, max T) *RangeValidator[T] {
	return &RangeValidator[T]{message: message, min: min, max: max}
}

// IsValid implements Validator.
func (v *RangeValidator[T]) IsValid(value any) bool {
	if value == nil {
		return true
	}
	t, ok := value.(T)
	if !ok {
		return false
	}
	return cmp.Compare(t, v.min) >= 0 && cmp.Compare(t, v.max) <= 0
}

// Validate implements Validator.
func (v *RangeValidator[T]) Validate(value any) error {
	return check(v.IsValid(value), v.message, value)
}

// TagValidator validates values with go-playground/validator tags, such as
// "min=1,max=65535" or "email".
type TagValidator struct {
	message string
	tag     string
}

// NewTagValidator creates a TagValidator. An unknown tag is reported here
// rather than when validating. When message is empty, a message naming the
// tag is used.
func NewTagValidator(tag, message string) (*TagValidator, error) {
	if err := probeTag(tag); err != nil {
		return nil, err
	}
	if message == "" {
		message = fmt.Sprintf("{0} does not satisfy %q", tag)
	}
	return &TagValidator{message: message, tag: tag}, nil
}

// Tag returns the validation tag.
func (v *TagValidator) Tag() string {
	return v.tag
}

// IsValid implements Validator.
func (v *TagValidator) IsValid(value any) bool {
	return v.run(value) == nil
}

// Validate implements Validator.
func (v *TagValidator) Validate(value any) error {
	if err := v.run(value); err != nil {
		return &InvalidValueError{Message: formatMessage(v.message, value)}
	}
	return nil
}

// run calls the validator, turning its panics for unsupported value types
// into errors.
func (v *TagValidator) run(value any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tag %q: %v", v.tag, r)
		}
	}()
	return tagValidate.Var(value, v.tag)
}

func probeTag(tag string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid validation tag %q: %v", tag, r)
		}
	}()
	_ = tagValidate.Var("", tag) //nolint:errcheck // only parse failures matter
	return nil
}

// Ensure the validators implement Validator.
var (
	_ Validator = (*StringLengthValidator)(nil)
	_ Validator = (*RegexpValidator)(nil)
	_ Validator = (*NullValidator)(nil)
	_ Validator = (*RangeValidator[int])(nil)
	_ Validator = (*TagValidator)(nil)
)
