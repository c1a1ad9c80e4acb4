package latch

import (
	"errors"
	"reflect"
	"testing"
)

type hostname string

func TestTextConverter(t *testing.T) {
	conv := TextConverter{}

	tests := []struct {
		name string
		text string
		typ  any
		want any
	}{
		{"int", "42", 0, 42},
		{"float", "1.5", 0.0, 1.5},
		{"bool", "true", false, true},
		{"string", "  spaced ", "", "  spaced "},
		{"named string", "example.com", hostname(""), hostname("example.com")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := conv.Convert(tt.text, reflect.TypeOf(tt.typ))
			if err != nil {
				t.Fatalf("Convert failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v (%T), got %v (%T)", tt.want, tt.want, got, got)
			}
		})
	}
}

func TestTextConverter_Interface(t *testing.T) {
	got, err := TextConverter{}.Convert("raw", TypeOf[any]())
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if got != "raw" {
		t.Errorf("expected text unchanged, got %v", got)
	}
}

func TestTextConverter_BlankText(t *testing.T) {
	_, err := TextConverter{}.Convert("   ", TypeOf[int]())
	if !errors.Is(err, ErrEmptyText) {
		t.Errorf("expected ErrEmptyText, got %v", err)
	}
}

func TestCoerce(t *testing.T) {
	conv := TextConverter{}

	v, err := coerce(conv, nil, TypeOf[int]())
	if err != nil || v != nil {
		t.Errorf("expected nil to pass through, got %v, %v", v, err)
	}

	v, err = coerce(conv, 7, TypeOf[int]())
	if err != nil || v != 7 {
		t.Errorf("expected assignable value to pass through, got %v, %v", v, err)
	}

	v, err = coerce(conv, 7, TypeOf[string]())
	if err != nil || v != "7" {
		t.Errorf("expected \"7\", got %v, %v", v, err)
	}

	_, err = coerce(conv, "", TypeOf[int]())
	var convErr *ConversionError
	if !errors.As(err, &convErr) || !errors.Is(err, ErrEmptyText) {
		t.Errorf("expected ConversionError wrapping ErrEmptyText, got %v", err)
	}
}
