package latch

import (
	"errors"
	"testing"
)

func isEven(v any) bool {
	n, ok := v.(int)
	return ok && n%2 == 0
}

func TestInvalidValueError_Error(t *testing.T) {
	single := NewInvalidValueError("too long")
	if single.Error() != "too long" {
		t.Errorf("expected message, got %q", single.Error())
	}

	combined := &InvalidValueError{Causes: []*InvalidValueError{
		NewInvalidValueError("first"),
		NewInvalidValueError(""),
		NewInvalidValueError("second"),
	}}
	if combined.Error() != "first; second" {
		t.Errorf("expected causes joined, got %q", combined.Error())
	}
}

func TestInvalidValueError_Invisible(t *testing.T) {
	if !NewInvalidValueError("").Invisible() {
		t.Error("expected empty error to be invisible")
	}
	if NewInvalidValueError("shown").Invisible() {
		t.Error("expected error with message to be visible")
	}

	nested := &InvalidValueError{Causes: []*InvalidValueError{NewInvalidValueError("")}}
	if !nested.Invisible() {
		t.Error("expected error with only invisible causes to be invisible")
	}
	nested.Causes = append(nested.Causes, NewInvalidValueError("shown"))
	if nested.Invisible() {
		t.Error("expected error with a visible cause to be visible")
	}
}

func TestInvalidValueError_UnwrapCauses(t *testing.T) {
	cause := NewInvalidValueError("cause")
	err := &InvalidValueError{Message: "outer", Causes: []*InvalidValueError{cause}}

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if err.Level() != LevelError {
		t.Errorf("expected level %d, got %d", LevelError, err.Level())
	}
}

func TestFuncValidator_MessageSubstitution(t *testing.T) {
	v := NewFuncValidator("{0} is odd", isEven)

	if !v.IsValid(4) {
		t.Error("expected 4 to be valid")
	}
	if err := v.Validate(4); err != nil {
		t.Errorf("expected nil, got %v", err)
	}

	err := v.Validate(3)
	if err == nil || err.Error() != "3 is odd" {
		t.Errorf("expected \"3 is odd\", got %v", err)
	}

	err = v.Validate(nil)
	if err == nil || err.Error() != " is odd" {
		t.Errorf("expected nil to substitute as empty, got %v", err)
	}
}

func TestCompositeValidator_Empty(t *testing.T) {
	for _, mode := range []CompositeMode{ModeAnd, ModeOr} {
		c := NewCompositeValidator(mode, "")
		if !c.IsValid(1) || c.Validate(1) != nil {
			t.Errorf("expected empty %s composite to accept everything", mode)
		}
	}
}

func TestCompositeValidator_And(t *testing.T) {
	even := NewFuncValidator("{0} is odd", isEven)
	small := NewRangeValidator("{0} is too big", 0, 10)
	c := NewCompositeValidator(ModeAnd, "", even, small)

	if !c.IsValid(4) {
		t.Error("expected 4 to be valid")
	}
	if c.IsValid(12) {
		t.Error("expected 12 to be invalid")
	}

	err := c.Validate(13)
	if err == nil || err.Error() != "13 is odd" {
		t.Errorf("expected first failure only, got %v", err)
	}
}

func TestCompositeValidator_AndWithMessage(t *testing.T) {
	c := NewCompositeValidator(ModeAnd, "{0} rejected", NewFuncValidator("odd", isEven))

	err := c.Validate(3)
	var ive *InvalidValueError
	if !errors.As(err, &ive) {
		t.Fatalf("expected InvalidValueError, got %v", err)
	}
	if ive.Message != "3 rejected" {
		t.Errorf("expected composite message, got %q", ive.Message)
	}
	if len(ive.Causes) != 1 || ive.Causes[0].Message != "odd" {
		t.Errorf("expected the failing validator as cause, got %v", ive.Causes)
	}
}

func TestCompositeValidator_Or(t *testing.T) {
	even := NewFuncValidator("odd", isEven)
	small := NewRangeValidator("big", 0, 10)
	c := NewCompositeValidator(ModeOr, "", even, small)
	c.Add(NewFuncValidator("never", func(any) bool { return false }))

	if !c.IsValid(3) || c.Validate(3) != nil {
		t.Error("expected 3 to be valid as it is small")
	}
	if !c.IsValid(12) {
		t.Error("expected 12 to be valid as it is even")
	}

	err := c.Validate(13)
	var ive *InvalidValueError
	if !errors.As(err, &ive) {
		t.Fatalf("expected InvalidValueError, got %v", err)
	}
	if len(ive.Causes) != 3 {
		t.Fatalf("expected 3 causes, got %d", len(ive.Causes))
	}
	if ive.Error() != "odd; big; never" {
		t.Errorf("unexpected message %q", ive.Error())
	}
}

func TestCompositeMode_String(t *testing.T) {
	if ModeAnd.String() != "and" || ModeOr.String() != "or" {
		t.Error("unexpected mode names")
	}
	if CompositeMode(9).String() != "unknown" {
		t.Error("expected unknown for invalid mode")
	}
}
