package builder

import (
	"fmt"

	"pagebuilder/internal/block"
	"pagebuilder/internal/blocktemplate"
	"pagebuilder/internal/domain"
)

// Tree is one canvas worth of blocks. The top-level sequence always holds
// exactly one block, the root, at index 0.
type Tree struct {
	blocks    []*block.Block
	templates *blocktemplate.Factory
	gen       block.IDGenerator
}

// NewTree returns a tree holding a single fresh root.
func NewTree(templates *blocktemplate.Factory, gen block.IDGenerator) *Tree {
	if templates == nil {
		templates = blocktemplate.New()
	}
	if gen == nil {
		gen = block.UUID
	}
	t := &Tree{templates: templates, gen: gen}
	t.ClearBlocks()
	return t
}

// Blocks returns the top-level sequence. Callers must not restructure it.
func (t *Tree) Blocks() []*block.Block {
	return t.blocks
}

// Root returns the first top-level block.
func (t *Tree) Root() *block.Block {
	if len(t.blocks) == 0 {
		return nil
	}
	return t.blocks[0]
}

// NewRoot instances a fresh root block from the body template.
func (t *Tree) NewRoot() *block.Block {
	root, err := block.Instance(t.templates.MustTemplate(domain.BlockKindBody), t.gen, nil)
	if err != nil {
		// the body template is built in and always valid
		panic(err)
	}
	return root
}

// ClearBlocks resets the tree to exactly one fresh root.
func (t *Tree) ClearBlocks() {
	t.blocks = []*block.Block{t.NewRoot()}
}

// Instance builds a block from spec whose ids do not collide with this tree.
// The block is not attached.
func (t *Tree) Instance(spec domain.BlockSpec) (*block.Block, error) {
	return block.Instance(spec, t.gen, t.idSet())
}

// PushBlocks installs specs. When the first spec is a root it replaces the
// whole tree and any further specs become children of the new root, rather
// than being dropped.
// Otherwise every spec is appended to the current root, in order. Nothing is
// changed when any spec is invalid.
func (t *Tree) PushBlocks(specs []domain.BlockSpec) error {
	if len(specs) == 0 {
		return nil
	}
	rest := specs
	var root *block.Block
	taken := t.idSet()
	if specs[0].IsRoot() {
		var err error
		root, err = block.Instance(specs[0], t.gen, nil)
		if err != nil {
			return err
		}
		rest = specs[1:]
		taken = idsOf(root)
	}

	children := make([]*block.Block, 0, len(rest))
	for _, spec := range rest {
		if spec.IsRoot() {
			return &domain.ValidationError{BlockID: spec.BlockID, Field: "kind", Message: "a page has exactly one root"}
		}
		b, err := block.Instance(spec, t.gen, taken)
		if err != nil {
			return err
		}
		collectIDs(taken, b)
		children = append(children, b)
	}

	if root != nil {
		t.blocks = []*block.Block{root}
	}
	parent := t.Root()
	parent.Children = append(parent.Children, children...)
	return nil
}

// Load replaces the tree with a single block built from spec, ids retained.
func (t *Tree) Load(spec domain.BlockSpec) error {
	b, err := block.Instance(spec, t.gen, nil)
	if err != nil {
		return err
	}
	t.blocks = []*block.Block{b}
	return nil
}

// FindBlock searches scope, or the whole tree when scope is empty, depth
// first in pre-order and returns the first block with the given id.
func (t *Tree) FindBlock(id string, scope ...*block.Block) *block.Block {
	if len(scope) == 0 {
		scope = t.blocks
	}
	for _, b := range scope {
		if b.ID == id {
			return b
		}
		if found := t.FindBlock(id, b.Children...); found != nil {
			return found
		}
	}
	return nil
}

// FindParentBlock returns the parent of the block with the given id, or nil
// for the root and for unknown ids. Direct children are checked before
// descending, so the shallowest parent wins.
func (t *Tree) FindParentBlock(id string, scope ...*block.Block) *block.Block {
	if len(scope) == 0 {
		scope = t.blocks
	}
	for _, b := range scope {
		if len(b.Children) == 0 {
			continue
		}
		for _, c := range b.Children {
			if c.ID == id {
				return b
			}
		}
		if found := t.FindParentBlock(id, b.Children...); found != nil {
			return found
		}
	}
	return nil
}

// DuplicateBlock copies the block with fresh ids and inserts the copy right
// after the original.
func (t *Tree) DuplicateBlock(id string) (*block.Block, error) {
	b, parent, err := t.locate(id)
	if err != nil {
		return nil, fmt.Errorf("duplicate block: %w", err)
	}
	dup, err := t.Instance(b.Spec(false))
	if err != nil {
		return nil, fmt.Errorf("duplicate block: %w", err)
	}
	parent.InsertChild(parent.IndexOf(b)+1, dup)
	return dup, nil
}

// RemoveBlock detaches a non-root block and returns it.
func (t *Tree) RemoveBlock(id string) (*block.Block, error) {
	b, parent, err := t.locate(id)
	if err != nil {
		return nil, fmt.Errorf("remove block: %w", err)
	}
	parent.RemoveChild(b)
	return b, nil
}

// MoveBlock re-parents a non-root block under parentID at index. A block
// cannot be moved into its own subtree.
func (t *Tree) MoveBlock(id, parentID string, index int) error {
	b, oldParent, err := t.locate(id)
	if err != nil {
		return fmt.Errorf("move block: %w", err)
	}
	newParent := t.FindBlock(parentID)
	if newParent == nil {
		return fmt.Errorf("move block: parent %s: %w", parentID, domain.ErrNotFound)
	}
	if b.Contains(newParent) {
		return &domain.ValidationError{BlockID: id, Field: "parent", Message: "cannot move a block into its own subtree"}
	}
	if oldParent == newParent && oldParent.IndexOf(b) < index {
		index--
	}
	oldParent.RemoveChild(b)
	newParent.InsertChild(index, b)
	return nil
}

// Len returns the number of blocks in the tree.
func (t *Tree) Len() int {
	n := 0
	for _, b := range t.blocks {
		b.Walk(func(*block.Block) bool {
			n++
			return true
		})
	}
	return n
}

// IDs lists every block id in pre-order.
func (t *Tree) IDs() []string {
	var ids []string
	for _, b := range t.blocks {
		b.Walk(func(x *block.Block) bool {
			ids = append(ids, x.ID)
			return true
		})
	}
	return ids
}

// Specs returns a detached wire-form copy of the tree, ids retained.
func (t *Tree) Specs() []domain.BlockSpec {
	out := make([]domain.BlockSpec, len(t.blocks))
	for i, b := range t.blocks {
		out[i] = b.Spec(true)
	}
	return out
}

// locate finds a non-root block and its parent.
func (t *Tree) locate(id string) (b, parent *block.Block, err error) {
	b = t.FindBlock(id)
	if b == nil {
		return nil, nil, fmt.Errorf("block %s: %w", id, domain.ErrNotFound)
	}
	parent = t.FindParentBlock(id)
	if parent == nil {
		return nil, nil, &domain.ValidationError{BlockID: id, Field: "blockId", Message: "root block cannot be detached"}
	}
	return b, parent, nil
}

func (t *Tree) idSet() map[string]struct{} {
	ids := make(map[string]struct{})
	for _, b := range t.blocks {
		collectIDs(ids, b)
	}
	return ids
}

func idsOf(b *block.Block) map[string]struct{} {
	return collectIDs(make(map[string]struct{}), b)
}

func collectIDs(ids map[string]struct{}, b *block.Block) map[string]struct{} {
	b.Walk(func(x *block.Block) bool {
		ids[x.ID] = struct{}{}
		return true
	})
	return ids
}
