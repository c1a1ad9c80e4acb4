package latch

import "reflect"

// ValueChangeEvent is delivered to value change listeners.
type ValueChangeEvent struct {
	// Property is the property or field whose value changed.
	Property Property
}

// ValueChangeListener receives value change notifications.
type ValueChangeListener interface {
	ValueChange(event ValueChangeEvent)
}

// ReadOnlyStatusChangeEvent is delivered when a property's read-only flag changes.
type ReadOnlyStatusChangeEvent struct {
	Property Property
}

// ReadOnlyStatusChangeListener receives read-only status notifications.
type ReadOnlyStatusChangeListener interface {
	ReadOnlyStatusChange(event ReadOnlyStatusChangeEvent)
}

// ValueChangeNotifier is implemented by properties that publish value changes.
// A Field subscribes to its data source only when the source implements it.
type ValueChangeNotifier interface {
	AddValueChangeListener(l ValueChangeListener)
	RemoveValueChangeListener(l ValueChangeListener)
}

// ReadOnlyStatusNotifier is implemented by properties that publish read-only
// status changes.
type ReadOnlyStatusNotifier interface {
	AddReadOnlyStatusChangeListener(l ReadOnlyStatusChangeListener)
	RemoveReadOnlyStatusChangeListener(l ReadOnlyStatusChangeListener)
}

type valueChangeFunc struct {
	fn func(ValueChangeEvent)
}

func (f *valueChangeFunc) ValueChange(e ValueChangeEvent) { f.fn(e) }

type readOnlyStatusFunc struct {
	fn func(ReadOnlyStatusChangeEvent)
}

func (f *readOnlyStatusFunc) ReadOnlyStatusChange(e ReadOnlyStatusChangeEvent) { f.fn(e) }

// Listeners is an ordered listener registry for Property implementations.
// The zero value is ready to use. Adding a listener that is already
// registered has no effect; listeners of non-comparable dynamic types are
// never considered equal, so each Add registers them again and Remove cannot
// find them.
type Listeners[L any] struct {
	items []L
}

// Add registers item unless it is already registered.
func (l *Listeners[L]) Add(item L) {
	for _, existing := range l.items {
		if sameListener(existing, item) {
			return
		}
	}
	l.items = append(l.items, item)
}

// Remove unregisters item.
func (l *Listeners[L]) Remove(item L) {
	for i, existing := range l.items {
		if sameListener(existing, item) {
			l.items = append(l.items[:i:i], l.items[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered listeners.
func (l *Listeners[L]) Len() int {
	return len(l.items)
}

// Each calls fn for every listener registered when dispatch begins.
// Listeners added or removed during dispatch take effect on the next call.
func (l *Listeners[L]) Each(fn func(L)) {
	if len(l.items) == 0 {
		return
	}
	snapshot := make([]L, len(l.items))
	copy(snapshot, l.items)
	for _, item := range snapshot {
		fn(item)
	}
}

func sameListener(a, b any) bool {
	ta := reflect.TypeOf(a)
	if ta == nil || ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}
