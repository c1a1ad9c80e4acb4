package latch

import (
	"math"
	"reflect"
	"strings"
)

// ErrorLevel is the severity of an ErrorMessage.
type ErrorLevel int

// Error levels, ordered by severity.
const (
	LevelInformation ErrorLevel = 1000
	LevelWarning     ErrorLevel = 2000
	LevelError       ErrorLevel = 3000
	LevelCritical    ErrorLevel = 4000
	LevelSystemError ErrorLevel = 5000
)

// String returns the name used when the level is painted.
func (l ErrorLevel) String() string {
	return levelName(l)
}

func levelName(l ErrorLevel) string {
	switch {
	case l <= LevelInformation:
		return "info"
	case l <= LevelWarning:
		return "warning"
	case l <= LevelError:
		return "error"
	case l <= LevelCritical:
		return "critical"
	default:
		return "system"
	}
}

// ErrorMessage is an error that can be shown to the user.
type ErrorMessage interface {
	error
	Level() ErrorLevel
	Paint(target PaintTarget) error
}

// UserError is a plain error message with a level, typically set as a
// component error.
type UserError struct {
	Message  string
	Severity ErrorLevel
}

// NewUserError creates a UserError at LevelError.
func NewUserError(message string) *UserError {
	return &UserError{Message: message, Severity: LevelError}
}

func (e *UserError) Error() string { return e.Message }

// Level implements ErrorMessage.
func (e *UserError) Level() ErrorLevel { return e.Severity }

// Paint implements ErrorMessage.
func (e *UserError) Paint(target PaintTarget) error {
	return paintLeaf(target, e.Severity, e.Message)
}

// CompositeErrorMessage lists several error messages together. Its level is
// the highest level among them.
type CompositeErrorMessage struct {
	messages []ErrorMessage
	level    ErrorLevel
}

// NewCompositeErrorMessage combines messages, skipping nils and duplicates.
// It returns ErrEmptyComposite when no message remains.
func NewCompositeErrorMessage(messages ...ErrorMessage) (*CompositeErrorMessage, error) {
	c := &CompositeErrorMessage{level: math.MinInt}
	for _, m := range messages {
		c.Add(m)
	}
	if len(c.messages) == 0 {
		return nil, ErrEmptyComposite
	}
	return c, nil
}

// Add appends m unless it is nil or already present.
func (c *CompositeErrorMessage) Add(m ErrorMessage) {
	if isNilMessage(m) {
		return
	}
	for _, existing := range c.messages {
		if sameMessage(existing, m) {
			return
		}
	}
	c.messages = append(c.messages, m)
	if l := m.Level(); l > c.level {
		c.level = l
	}
}

// Level implements ErrorMessage.
func (c *CompositeErrorMessage) Level() ErrorLevel {
	return c.level
}

// Messages returns the combined messages in insertion order.
func (c *CompositeErrorMessage) Messages() []ErrorMessage {
	out := make([]ErrorMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// Error implements error.
func (c *CompositeErrorMessage) Error() string {
	return c.String()
}

// String returns the messages as a comma separated list in brackets.
func (c *CompositeErrorMessage) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, m := range c.messages {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(m.Error())
	}
	b.WriteByte(']')
	return b.String()
}

// Paint implements ErrorMessage. A single message is painted directly;
// several are wrapped in an error tag carrying the composite level.
func (c *CompositeErrorMessage) Paint(target PaintTarget) error {
	if len(c.messages) == 1 {
		return c.messages[0].Paint(target)
	}
	if err := target.StartTag(tagError); err != nil {
		return err
	}
	if err := target.AddAttribute(attrLevel, levelName(c.level)); err != nil {
		return err
	}
	for _, m := range c.messages {
		if err := m.Paint(target); err != nil {
			return err
		}
	}
	return target.EndTag(tagError)
}

// Unwrap exposes the combined messages to errors.Is and errors.As.
func (c *CompositeErrorMessage) Unwrap() []error {
	errs := make([]error, len(c.messages))
	for i, m := range c.messages {
		errs[i] = m
	}
	return errs
}

func paintLeaf(target PaintTarget, level ErrorLevel, text string) error {
	if err := target.StartTag(tagError); err != nil {
		return err
	}
	if err := target.AddAttribute(attrLevel, levelName(level)); err != nil {
		return err
	}
	if text != "" {
		if err := target.AddText(text); err != nil {
			return err
		}
	}
	return target.EndTag(tagError)
}

// isNilMessage catches both nil interfaces and typed nil pointers.
func isNilMessage(m ErrorMessage) bool {
	if m == nil {
		return true
	}
	v := reflect.ValueOf(m)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

func sameMessage(a, b ErrorMessage) bool {
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	if reflect.TypeOf(a).Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// Ensure the error types implement ErrorMessage.
var (
	_ ErrorMessage = (*UserError)(nil)
	_ ErrorMessage = (*CompositeErrorMessage)(nil)
	_ ErrorMessage = (*InvalidValueError)(nil)
	_ ErrorMessage = (*SourceError)(nil)
)
