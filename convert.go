package latch

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrEmptyText is returned when blank text is converted to a non-string type.
var ErrEmptyText = errors.New("empty text")

// Converter constructs a value of a declared type from its textual form.
// Properties use it for values that are not directly assignable to their type.
type Converter interface {
	Convert(text string, typ reflect.Type) (any, error)
}

// TextConverter is the default Converter.
//
// Types implementing encoding.TextUnmarshaler parse themselves; string kinds
// are assigned directly; everything else is decoded as a YAML scalar, which
// covers numbers, booleans, durations and simple collections.
type TextConverter struct{}

// Convert implements Converter.
func (TextConverter) Convert(text string, typ reflect.Type) (any, error) {
	if typ == nil {
		return text, nil
	}

	ptr := reflect.New(typ)
	if u, ok := ptr.Interface().(encoding.TextUnmarshaler); ok {
		if err := u.UnmarshalText([]byte(text)); err != nil {
			return nil, err
		}
		return ptr.Elem().Interface(), nil
	}

	switch typ.Kind() {
	case reflect.String:
		return reflect.ValueOf(text).Convert(typ).Interface(), nil
	case reflect.Interface:
		if reflect.TypeOf(text).AssignableTo(typ) {
			return text, nil
		}
	}

	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if err := yaml.Unmarshal([]byte(text), ptr.Interface()); err != nil {
		return nil, err
	}
	return ptr.Elem().Interface(), nil
}

// Ensure TextConverter implements Converter.
var _ Converter = TextConverter{}

// coerce stores v as-is when it is nil or assignable to typ, and otherwise
// converts its textual representation.
func coerce(conv Converter, v any, typ reflect.Type) (any, error) {
	if v == nil || typ == nil || reflect.TypeOf(v).AssignableTo(typ) {
		return v, nil
	}
	out, err := conv.Convert(fmt.Sprint(v), typ)
	if err != nil {
		return nil, &ConversionError{Value: v, Type: typ, Err: err}
	}
	return out, nil
}

// TypeOf returns the reflect.Type of T, including interface types.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
