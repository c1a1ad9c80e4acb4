package latch

import "testing"

func TestState_String(t *testing.T) {
	cases := map[State]string{
		StateUnbound:  "unbound",
		StateSynced:   "synced",
		StateModified: "modified",
		StateFailed:   "failed",
		State(999):    "unknown",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int32(state), got, want)
		}
	}
}

func TestState_Values(t *testing.T) {
	if StateUnbound != 0 {
		t.Errorf("expected StateUnbound=0, got %d", StateUnbound)
	}
	if StateFailed != 3 {
		t.Errorf("expected StateFailed=3, got %d", StateFailed)
	}
}
