package latch

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Item is a set of properties identified by name.
type Item interface {
	// Property returns the property with the given id, or nil.
	Property(id string) Property

	// PropertyIDs returns the property ids in insertion order.
	PropertyIDs() []string

	// AddProperty adds p under id. It returns false if id is already used.
	AddProperty(id string, p Property) bool

	// RemoveProperty removes the property with the given id. It returns false
	// if there is none.
	RemoveProperty(id string) bool
}

// PropertysetItem is an ordered in-memory Item.
type PropertysetItem struct {
	ids   []string
	props map[string]Property
}

// NewPropertysetItem creates an empty item.
func NewPropertysetItem() *PropertysetItem {
	return &PropertysetItem{props: map[string]Property{}}
}

// Property implements Item.
func (i *PropertysetItem) Property(id string) Property {
	return i.props[id]
}

// PropertyIDs implements Item.
func (i *PropertysetItem) PropertyIDs() []string {
	out := make([]string, len(i.ids))
	copy(out, i.ids)
	return out
}

// AddProperty implements Item.
func (i *PropertysetItem) AddProperty(id string, p Property) bool {
	if p == nil {
		return false
	}
	if _, exists := i.props[id]; exists {
		return false
	}
	i.ids = append(i.ids, id)
	i.props[id] = p
	return true
}

// RemoveProperty implements Item.
func (i *PropertysetItem) RemoveProperty(id string) bool {
	if _, exists := i.props[id]; !exists {
		return false
	}
	delete(i.props, id)
	for n, existing := range i.ids {
		if existing == id {
			i.ids = append(i.ids[:n:n], i.ids[n+1:]...)
			break
		}
	}
	return true
}

// Decode sets the item's properties from a document of id/value pairs.
// Unknown ids are ignored. Every property that cannot be set is reported;
// the others are still updated.
func (i *PropertysetItem) Decode(codec Codec, data []byte) error {
	var doc map[string]any
	if err := codec.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode %s: %w", codec.ContentType(), err)
	}

	var result *multierror.Error
	for _, id := range i.ids {
		v, ok := doc[id]
		if !ok {
			continue
		}
		if err := i.props[id].SetValue(v); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", id, err))
		}
	}
	return result.ErrorOrNil()
}

// Encode writes the current property values as a document of id/value pairs.
func (i *PropertysetItem) Encode(codec Codec) ([]byte, error) {
	doc := make(map[string]any, len(i.ids))
	for _, id := range i.ids {
		doc[id] = i.props[id].Value()
	}
	data, err := codec.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", codec.ContentType(), err)
	}
	return data, nil
}

// Ensure PropertysetItem implements Item.
var _ Item = (*PropertysetItem)(nil)
