package latch

import "testing"

type sliceListener struct {
	seen []any
}

func (l sliceListener) ValueChange(ValueChangeEvent) {}

type pointerListener struct {
	n int
}

func (l *pointerListener) ValueChange(ValueChangeEvent) { l.n++ }

func TestListeners_NonComparableListeners(t *testing.T) {
	p := MustObjectProperty(1)
	p.AddValueChangeListener(sliceListener{})
	p.AddValueChangeListener(sliceListener{})

	if p.valueListeners.Len() != 2 {
		t.Errorf("expected both listeners registered, got %d", p.valueListeners.Len())
	}
	p.RemoveValueChangeListener(sliceListener{})
	if p.valueListeners.Len() != 2 {
		t.Errorf("expected remove to find nothing, got %d", p.valueListeners.Len())
	}
	if err := p.SetValue(2); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
}

func TestListeners_AddIsIdempotent(t *testing.T) {
	var l Listeners[ValueChangeListener]
	a := &pointerListener{}
	b := &pointerListener{}
	l.Add(a)
	l.Add(a)
	l.Add(b)

	if l.Len() != 2 {
		t.Fatalf("expected 2 listeners, got %d", l.Len())
	}
	l.Each(func(x ValueChangeListener) { x.ValueChange(ValueChangeEvent{}) })
	if a.n != 1 || b.n != 1 {
		t.Errorf("expected one call each, got %d %d", a.n, b.n)
	}

	l.Remove(a)
	if l.Len() != 1 {
		t.Errorf("expected 1 listener after remove, got %d", l.Len())
	}
}

func TestListeners_MixedTypesNeverEqual(t *testing.T) {
	var l Listeners[ValueChangeListener]
	l.Add(&pointerListener{})
	l.Add(sliceListener{})
	l.Add(sliceListener{})

	if l.Len() != 3 {
		t.Errorf("expected 3 listeners, got %d", l.Len())
	}
}
