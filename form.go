package latch

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/zoobzio/capitan"
)

// FieldFactory creates the field editing property p of an item.
type FieldFactory func(id string, p Property) *Field

// DefaultFieldFactory creates a field named after the property id and typed
// like the property.
func DefaultFieldFactory(id string, p Property) *Field {
	return NewField().Named(id).Typed(p.Type())
}

// Form edits the properties of an Item through one Field per property and
// buffers them together.
type Form struct {
	item    Item
	ids     []string
	fields  map[string]*Field
	factory FieldFactory

	writeThrough     bool
	readThrough      bool
	invalidCommitted bool
}

// NewForm creates a form with no item, in write-through and read-through mode.
func NewForm() *Form {
	return &Form{
		fields:       map[string]*Field{},
		factory:      DefaultFieldFactory,
		writeThrough: true,
		readThrough:  true,
	}
}

// FieldFactory sets the factory used by SetItemDataSource.
// Default: DefaultFieldFactory.
func (f *Form) FieldFactory(factory FieldFactory) *Form {
	f.factory = factory
	return f
}

// ItemDataSource returns the edited item, or nil.
func (f *Form) ItemDataSource() Item {
	return f.item
}

// SetItemDataSource replaces the form's fields with one field per property
// of item. Fields of the previous item are unbound. A nil item leaves the
// form empty.
func (f *Form) SetItemDataSource(item Item) {
	for _, id := range f.ids {
		f.fields[id].SetPropertyDataSource(nil)
	}
	f.item = item
	f.ids = nil
	f.fields = map[string]*Field{}
	if item == nil {
		return
	}

	for _, id := range item.PropertyIDs() {
		p := item.Property(id)
		field := f.factory(id, p)
		if field == nil {
			continue
		}
		field.writeThrough = f.writeThrough
		field.readThrough = f.readThrough
		field.SetInvalidCommitted(f.invalidCommitted)
		field.SetPropertyDataSource(p)
		f.ids = append(f.ids, id)
		f.fields[id] = field
	}
}

// Field returns the field editing property id, or nil.
func (f *Form) Field(id string) *Field {
	return f.fields[id]
}

// FieldIDs returns the ids of the form's fields in item order.
func (f *Form) FieldIDs() []string {
	out := make([]string, len(f.ids))
	copy(out, f.ids)
	return out
}

// Commit commits every field.
//
// Unless invalid values may be committed, the form is validated first and
// nothing is written when any field is invalid. Otherwise every field is
// committed and all failures are returned together.
func (f *Form) Commit() error {
	ctx := context.Background()
	if !f.invalidCommitted && !f.IsValid() {
		if err := f.Validate(); err != nil {
			capitan.Emit(ctx, FormCommitFailed,
				KeyFields.Field(len(f.ids)),
				KeyError.Field(err.Error()),
			)
			return err
		}
	}

	var result *multierror.Error
	for _, id := range f.ids {
		if err := f.fields[id].Commit(); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", id, err))
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		capitan.Emit(ctx, FormCommitFailed,
			KeyFields.Field(len(f.ids)),
			KeyError.Field(err.Error()),
		)
		return err
	}

	capitan.Emit(ctx, FormCommitted,
		KeyFields.Field(len(f.ids)),
	)
	return nil
}

// Discard discards the changes of every field.
func (f *Form) Discard() {
	for _, id := range f.ids {
		f.fields[id].Discard()
	}
}

// IsModified reports whether any field is modified.
func (f *Form) IsModified() bool {
	for _, id := range f.ids {
		if f.fields[id].IsModified() {
			return true
		}
	}
	return false
}

// IsValid reports whether every field is valid.
func (f *Form) IsValid() bool {
	for _, id := range f.ids {
		if !f.fields[id].IsValid() {
			return false
		}
	}
	return true
}

// Validate returns the validation error of the first invalid field, prefixed
// with its id.
func (f *Form) Validate() error {
	for _, id := range f.ids {
		if err := f.fields[id].Validate(); err != nil {
			return fmt.Errorf("%s: %w", id, err)
		}
	}
	return nil
}

// WriteThrough reports whether the form's fields write through.
func (f *Form) WriteThrough() bool {
	return f.writeThrough
}

// SetWriteThrough switches write-through mode on every field. Fields that
// fail to commit when switched on are reported together.
func (f *Form) SetWriteThrough(writeThrough bool) error {
	f.writeThrough = writeThrough
	var result *multierror.Error
	for _, id := range f.ids {
		if err := f.fields[id].SetWriteThrough(writeThrough); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", id, err))
		}
	}
	return result.ErrorOrNil()
}

// ReadThrough reports whether the form's fields read through.
func (f *Form) ReadThrough() bool {
	return f.readThrough
}

// SetReadThrough switches read-through mode on every field.
func (f *Form) SetReadThrough(readThrough bool) {
	f.readThrough = readThrough
	for _, id := range f.ids {
		f.fields[id].SetReadThrough(readThrough)
	}
}

// InvalidCommitted reports whether invalid values are committed.
func (f *Form) InvalidCommitted() bool {
	return f.invalidCommitted
}

// SetInvalidCommitted sets whether invalid values are committed, on the form
// and every field.
func (f *Form) SetInvalidCommitted(committed bool) {
	f.invalidCommitted = committed
	for _, id := range f.ids {
		f.fields[id].SetInvalidCommitted(committed)
	}
}
