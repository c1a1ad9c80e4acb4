package latch

import "fmt"

// Tag and attribute names written by the render hooks.
const (
	tagError      = "error"
	attrLevel     = "level"
	AttrTabIndex  = "tabindex"
	AttrModified  = "modified"
	AttrRequired  = "required"
	AttrHideError = "hideErrors"
)

// PaintTarget is the output sink of the render hooks. The rendering layer
// decides how the recorded structure reaches the client.
type PaintTarget interface {
	StartTag(name string) error
	EndTag(name string) error
	AddAttribute(name string, value any) error
	AddText(text string) error
}

// Tag is a node recorded by MemoryTarget.
type Tag struct {
	Name       string
	Attributes map[string]any
	Text       []string
	Children   []*Tag
}

// Attribute returns the named attribute and whether it was set.
func (t *Tag) Attribute(name string) (any, bool) {
	v, ok := t.Attributes[name]
	return v, ok
}

// MemoryTarget records painted output as a tree of tags. Attributes and text
// written outside any tag land on the root.
type MemoryTarget struct {
	root  *Tag
	stack []*Tag
}

// NewMemoryTarget creates an empty MemoryTarget.
func NewMemoryTarget() *MemoryTarget {
	root := &Tag{Attributes: map[string]any{}}
	return &MemoryTarget{root: root, stack: []*Tag{root}}
}

// Root returns the root node.
func (m *MemoryTarget) Root() *Tag {
	return m.root
}

// StartTag implements PaintTarget.
func (m *MemoryTarget) StartTag(name string) error {
	t := &Tag{Name: name, Attributes: map[string]any{}}
	cur := m.current()
	cur.Children = append(cur.Children, t)
	m.stack = append(m.stack, t)
	return nil
}

// EndTag implements PaintTarget.
func (m *MemoryTarget) EndTag(name string) error {
	if len(m.stack) == 1 {
		return fmt.Errorf("end tag %q without start tag", name)
	}
	if cur := m.current(); cur.Name != name {
		return fmt.Errorf("end tag %q does not match open tag %q", name, cur.Name)
	}
	m.stack = m.stack[:len(m.stack)-1]
	return nil
}

// AddAttribute implements PaintTarget.
func (m *MemoryTarget) AddAttribute(name string, value any) error {
	m.current().Attributes[name] = value
	return nil
}

// AddText implements PaintTarget.
func (m *MemoryTarget) AddText(text string) error {
	cur := m.current()
	cur.Text = append(cur.Text, text)
	return nil
}

func (m *MemoryTarget) current() *Tag {
	return m.stack[len(m.stack)-1]
}

// Ensure MemoryTarget implements PaintTarget.
var _ PaintTarget = (*MemoryTarget)(nil)
