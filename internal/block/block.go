// Package block holds the node type of the page tree.
//
// A Block is either a plain block or, when Component is non-nil, a component
// instance that references a definition in the component library. Traversal
// code never branches on the variant; only Instance does.
package block

import (
	"maps"

	"github.com/google/uuid"

	"pagebuilder/internal/domain"
)

// IDGenerator produces block identifiers.
type IDGenerator func() string

// UUID is the default IDGenerator.
func UUID() string {
	return uuid.New().String()
}

// ComponentRef marks a block as a component instance.
type ComponentRef struct {
	// ReferencedComponentID is a weak link into the component library.
	ReferencedComponentID string
	// Overrides holds attributes that differ from the referenced definition.
	Overrides map[string]string
}

// Block is one visual element in the page tree. A block exclusively owns its children.
type Block struct {
	ID         string
	Kind       domain.BlockKind
	Attributes map[string]string
	Styles     domain.Styles
	Children   []*Block
	Component  *ComponentRef
}

// IsRoot reports whether b is a page root.
func (b *Block) IsRoot() bool {
	return b.Kind == domain.BlockKindBody
}

// IsComponent reports whether b is a component instance.
func (b *Block) IsComponent() bool {
	return b.Component != nil
}

// Spec converts b and its subtree back to the wire shape. The result shares
// no memory with b. With retainID false every id in the result is empty.
func (b *Block) Spec(retainID bool) domain.BlockSpec {
	s := domain.BlockSpec{
		Kind:       b.Kind,
		Attributes: maps.Clone(b.Attributes),
		Styles:     b.Styles.Clone(),
	}
	if retainID {
		s.BlockID = b.ID
	}
	if b.Component != nil {
		s.IsComponent = true
		s.ReferencedComponentID = b.Component.ReferencedComponentID
		s.Overrides = maps.Clone(b.Component.Overrides)
	}
	if len(b.Children) > 0 {
		s.Children = make([]domain.BlockSpec, len(b.Children))
		for i, c := range b.Children {
			s.Children[i] = c.Spec(retainID)
		}
	}
	return s
}

// Walk visits b and its descendants in pre-order. Returning false from fn
// stops the walk; Walk then returns false as well.
func (b *Block) Walk(fn func(*Block) bool) bool {
	if !fn(b) {
		return false
	}
	for _, c := range b.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Contains reports whether target is b or one of its descendants.
func (b *Block) Contains(target *Block) bool {
	found := false
	b.Walk(func(x *Block) bool {
		found = x == target
		return !found
	})
	return found
}

// IndexOf returns the position of child among b's direct children, or -1.
func (b *Block) IndexOf(child *Block) int {
	for i, c := range b.Children {
		if c == child {
			return i
		}
	}
	return -1
}

// InsertChild places child at index, clamped to the valid range.
func (b *Block) InsertChild(index int, child *Block) {
	if index < 0 || index > len(b.Children) {
		index = len(b.Children)
	}
	b.Children = append(b.Children, nil)
	copy(b.Children[index+1:], b.Children[index:])
	b.Children[index] = child
}

// RemoveChild detaches child and reports whether it was a direct child.
func (b *Block) RemoveChild(child *Block) bool {
	i := b.IndexOf(child)
	if i < 0 {
		return false
	}
	b.Children = append(b.Children[:i], b.Children[i+1:]...)
	return true
}
