package builder_test

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagebuilder/internal/block"
	"pagebuilder/internal/builder"
	"pagebuilder/internal/domain"
)

func seqGen() block.IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func text(s string) domain.BlockSpec {
	return domain.BlockSpec{Kind: domain.BlockKindText, Attributes: map[string]string{"text": s}}
}

func container(children ...domain.BlockSpec) domain.BlockSpec {
	return domain.BlockSpec{Kind: domain.BlockKindContainer, Children: children}
}

func assertUniqueIDs(t *testing.T, tr *builder.Tree) {
	t.Helper()
	seen := map[string]bool{}
	for _, id := range tr.IDs() {
		require.NotEmpty(t, id)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestTree_ClearBlocks(t *testing.T) {
	tr := builder.NewTree(nil, seqGen())
	require.NoError(t, tr.PushBlocks([]domain.BlockSpec{text("a"), text("b")}))
	require.Equal(t, 3, tr.Len())

	tr.ClearBlocks()
	require.Len(t, tr.Blocks(), 1)
	assert.Equal(t, 1, tr.Len())
	assert.True(t, tr.Root().IsRoot())
}

func TestTree_PushBlocks_AppendsToRoot(t *testing.T) {
	tr := builder.NewTree(nil, seqGen())
	require.NoError(t, tr.PushBlocks([]domain.BlockSpec{container(text("inner"))}))
	root := tr.Root()
	first := root.Children[0]

	require.NoError(t, tr.PushBlocks([]domain.BlockSpec{text("x"), text("y")}))
	assert.Same(t, root, tr.Root(), "root is unchanged")
	require.Len(t, root.Children, 3)
	assert.Same(t, first, root.Children[0], "prior children untouched")
	assert.Equal(t, "x", root.Children[1].Attributes["text"])
	assert.Equal(t, "y", root.Children[2].Attributes["text"])
	assert.Len(t, tr.Blocks(), 1, "pushed blocks are children, not top-level siblings")
}

func TestTree_PushBlocks_ReplacesOnRoot(t *testing.T) {
	tr := builder.NewTree(nil, seqGen())
	require.NoError(t, tr.PushBlocks([]domain.BlockSpec{text("old")}))

	page := domain.BlockSpec{BlockID: "root", Kind: domain.BlockKindBody, Children: []domain.BlockSpec{
		{BlockID: "img", Kind: domain.BlockKindImage},
	}}
	require.NoError(t, tr.PushBlocks([]domain.BlockSpec{page, text("extra")}))
	require.Len(t, tr.Blocks(), 1)
	assert.Equal(t, "root", tr.Root().ID)
	require.Len(t, tr.Root().Children, 2)
	assert.Equal(t, "img", tr.Root().Children[0].ID)
	assert.Nil(t, tr.FindBlock("id-2"), "old content is gone")
}

func TestTree_PushBlocks_Atomic(t *testing.T) {
	tr := builder.NewTree(nil, seqGen())
	require.NoError(t, tr.PushBlocks([]domain.BlockSpec{{BlockID: "keep", Kind: domain.BlockKindText}}))
	before := tr.IDs()

	err := tr.PushBlocks([]domain.BlockSpec{text("ok"), {BlockID: "keep", Kind: domain.BlockKindText}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Equal(t, before, tr.IDs())

	err = tr.PushBlocks([]domain.BlockSpec{text("ok"), {Kind: domain.BlockKindBody}})
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Equal(t, before, tr.IDs())

	assert.NoError(t, tr.PushBlocks(nil))
	assert.Equal(t, before, tr.IDs())
}

func TestTree_FindRoundTrip(t *testing.T) {
	tr := builder.NewTree(nil, seqGen())
	require.NoError(t, tr.PushBlocks([]domain.BlockSpec{
		container(text("a"), container(text("b"))),
		text("c"),
	}))

	for _, top := range tr.Blocks() {
		top.Walk(func(x *block.Block) bool {
			assert.Same(t, x, tr.FindBlock(x.ID))
			parent := tr.FindParentBlock(x.ID)
			if x.IsRoot() {
				assert.Nil(t, parent)
				return true
			}
			require.NotNil(t, parent)
			assert.GreaterOrEqual(t, parent.IndexOf(x), 0)
			return true
		})
	}
	assert.Nil(t, tr.FindBlock("missing"))
	assert.Nil(t, tr.FindParentBlock("missing"))
}

func TestTree_FindScoped(t *testing.T) {
	tr := builder.NewTree(nil, seqGen())
	require.NoError(t, tr.PushBlocks([]domain.BlockSpec{container(text("a")), text("b")}))
	c := tr.Root().Children[0]
	inner := c.Children[0]
	outside := tr.Root().Children[1]

	assert.Same(t, inner, tr.FindBlock(inner.ID, c))
	assert.Nil(t, tr.FindBlock(outside.ID, c))
	assert.Same(t, c, tr.FindParentBlock(inner.ID, c))
}

func TestTree_FindParent_ShallowestWins(t *testing.T) {
	// Hand-built malformed tree: "dup" appears twice at different depths.
	deep := &block.Block{ID: "dup", Kind: domain.BlockKindText}
	mid := &block.Block{ID: "mid", Kind: domain.BlockKindContainer, Children: []*block.Block{deep}}
	shallow := &block.Block{ID: "dup", Kind: domain.BlockKindText}
	root := &block.Block{ID: "root", Kind: domain.BlockKindBody, Children: []*block.Block{mid, shallow}}

	tr := builder.NewTree(nil, seqGen())
	assert.Same(t, root, tr.FindParentBlock("dup", root))
	assert.Same(t, deep, tr.FindBlock("dup", root), "pre-order reaches the deep one first")
}

func TestTree_UniqueIDsUnderRandomEdits(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tr := builder.NewTree(nil, nil)
	for i := 0; i < 200; i++ {
		ids := tr.IDs()
		target := ids[rng.Intn(len(ids))]
		switch rng.Intn(4) {
		case 0:
			require.NoError(t, tr.PushBlocks([]domain.BlockSpec{container(text("p"), text("q"))}))
		case 1:
			if tr.FindParentBlock(target) != nil {
				_, err := tr.DuplicateBlock(target)
				require.NoError(t, err)
			}
		case 2:
			blk := tr.FindBlock(target)
			copySpec := blk.Spec(false)
			if copySpec.IsRoot() {
				continue
			}
			inst, err := tr.Instance(copySpec)
			require.NoError(t, err)
			for _, id := range tr.IDs() {
				assert.Nil(t, tr.FindBlock(id, inst), "copy ids must be disjoint from the tree")
			}
			tr.Root().Children = append(tr.Root().Children, inst)
		case 3:
			if tr.FindParentBlock(target) != nil && rng.Intn(3) == 0 {
				_, err := tr.RemoveBlock(target)
				require.NoError(t, err)
			}
		}
		assertUniqueIDs(t, tr)
	}
}

func TestTree_DuplicateBlock(t *testing.T) {
	tr := builder.NewTree(nil, seqGen())
	require.NoError(t, tr.PushBlocks([]domain.BlockSpec{container(text("a")), text("z")}))
	orig := tr.Root().Children[0]

	dup, err := tr.DuplicateBlock(orig.ID)
	require.NoError(t, err)
	assert.Same(t, dup, tr.Root().Children[1])
	assert.NotEqual(t, orig.ID, dup.ID)
	assert.NotEqual(t, orig.Children[0].ID, dup.Children[0].ID)
	assert.Equal(t, "a", dup.Children[0].Attributes["text"])

	dup.Children[0].Attributes["text"] = "changed"
	assert.Equal(t, "a", orig.Children[0].Attributes["text"])

	_, err = tr.DuplicateBlock(tr.Root().ID)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	_, err = tr.DuplicateBlock("nope")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestTree_MoveBlock(t *testing.T) {
	tr := builder.NewTree(nil, seqGen())
	require.NoError(t, tr.PushBlocks([]domain.BlockSpec{container(container(text("deep"))), text("b"), text("c")}))
	root := tr.Root()
	outer := root.Children[0]
	inner := outer.Children[0]
	b, c := root.Children[1], root.Children[2]

	require.NoError(t, tr.MoveBlock(c.ID, root.ID, 0))
	assert.Equal(t, []*block.Block{c, outer, b}, root.Children)

	require.NoError(t, tr.MoveBlock(c.ID, root.ID, 3))
	assert.Equal(t, []*block.Block{outer, b, c}, root.Children)

	require.NoError(t, tr.MoveBlock(b.ID, inner.ID, 0))
	assert.Same(t, inner, tr.FindParentBlock(b.ID))

	err := tr.MoveBlock(outer.ID, inner.ID, 0)
	assert.True(t, errors.Is(err, domain.ErrValidation), "no cycles")
	err = tr.MoveBlock(outer.ID, outer.ID, 0)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	err = tr.MoveBlock(outer.ID, "ghost", 0)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assertUniqueIDs(t, tr)
}

func TestTree_Specs_Detached(t *testing.T) {
	tr := builder.NewTree(nil, seqGen())
	require.NoError(t, tr.PushBlocks([]domain.BlockSpec{text("a")}))
	specs := tr.Specs()
	require.Len(t, specs, 1)
	assert.Equal(t, tr.Root().ID, specs[0].BlockID)

	specs[0].Children[0].Attributes["text"] = "mutated"
	assert.Equal(t, "a", tr.Root().Children[0].Attributes["text"])
}
