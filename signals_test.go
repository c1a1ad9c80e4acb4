package latch

import "testing"

func TestSignalNames(t *testing.T) {
	cases := map[string]string{
		"latch.field.bound":             FieldBound.Name(),
		"latch.field.state.changed":     FieldStateChanged.Name(),
		"latch.field.value.changed":     FieldValueChanged.Name(),
		"latch.field.committed":         FieldCommitted.Name(),
		"latch.field.discarded":         FieldDiscarded.Name(),
		"latch.field.validation.failed": FieldValidationFailed.Name(),
		"latch.field.source.failed":     FieldSourceFailed.Name(),
		"latch.form.committed":          FormCommitted.Name(),
		"latch.form.commit.failed":      FormCommitFailed.Name(),
	}
	for want, got := range cases {
		if got != want {
			t.Errorf("expected name %q, got %q", want, got)
		}
	}
}
