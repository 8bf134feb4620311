package block_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagebuilder/internal/block"
	"pagebuilder/internal/domain"
)

func counter(prefix string) block.IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func sampleSpec() domain.BlockSpec {
	return domain.BlockSpec{
		Kind: domain.BlockKindBody,
		Children: []domain.BlockSpec{
			{Kind: domain.BlockKindContainer, Children: []domain.BlockSpec{
				{Kind: domain.BlockKindText, Attributes: map[string]string{"text": "hi"}},
			}},
			{Kind: domain.BlockKindImage, Attributes: map[string]string{"src": "/a.png"}},
		},
	}
}

func TestInstance_AssignsIDs(t *testing.T) {
	b, err := block.Instance(sampleSpec(), counter("b"), nil)
	require.NoError(t, err)

	var ids []string
	b.Walk(func(x *block.Block) bool {
		ids = append(ids, x.ID)
		return true
	})
	assert.Equal(t, []string{"b-1", "b-2", "b-3", "b-4"}, ids)
	assert.True(t, b.IsRoot())
	assert.False(t, b.Children[0].IsRoot())
}

func TestInstance_KeepsSuppliedIDs(t *testing.T) {
	spec := sampleSpec()
	spec.BlockID = "root"
	spec.Children[1].BlockID = "img"

	b, err := block.Instance(spec, counter("g"), nil)
	require.NoError(t, err)
	assert.Equal(t, "root", b.ID)
	assert.Equal(t, "img", b.Children[1].ID)
}

func TestInstance_Component(t *testing.T) {
	spec := domain.BlockSpec{
		Kind:                  domain.BlockKindContainer,
		IsComponent:           true,
		ReferencedComponentID: "cmp-1",
		Overrides:             map[string]string{"text": "override"},
	}
	b, err := block.Instance(spec, counter("c"), nil)
	require.NoError(t, err)
	require.True(t, b.IsComponent())
	assert.Equal(t, "cmp-1", b.Component.ReferencedComponentID)
	assert.Equal(t, "override", b.Component.Overrides["text"])
	assert.Empty(t, b.Children, "definition content is not copied into the instance")
}

func TestInstance_Validation(t *testing.T) {
	tests := []struct {
		name  string
		spec  domain.BlockSpec
		taken map[string]struct{}
		field string
	}{
		{
			name:  "missing kind",
			spec:  domain.BlockSpec{},
			field: "kind",
		},
		{
			name:  "nested missing kind",
			spec:  domain.BlockSpec{Kind: domain.BlockKindBody, Children: []domain.BlockSpec{{}}},
			field: "kind",
		},
		{
			name:  "component without reference",
			spec:  domain.BlockSpec{Kind: domain.BlockKindContainer, IsComponent: true},
			field: "referencedComponentId",
		},
		{
			name: "duplicate ids in spec",
			spec: domain.BlockSpec{BlockID: "x", Kind: domain.BlockKindBody, Children: []domain.BlockSpec{
				{BlockID: "x", Kind: domain.BlockKindText},
			}},
			field: "blockId",
		},
		{
			name:  "id already in tree",
			spec:  domain.BlockSpec{BlockID: "x", Kind: domain.BlockKindText},
			taken: map[string]struct{}{"x": {}},
			field: "blockId",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := block.Instance(tt.spec, counter("v"), tt.taken)
			require.Error(t, err)
			assert.Nil(t, b)
			assert.True(t, errors.Is(err, domain.ErrValidation))

			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestInstance_GeneratedIDsSkipTaken(t *testing.T) {
	taken := map[string]struct{}{"t-1": {}, "t-2": {}}
	b, err := block.Instance(domain.BlockSpec{Kind: domain.BlockKindText}, counter("t"), taken)
	require.NoError(t, err)
	assert.Equal(t, "t-3", b.ID)
}

func TestSpec_RoundTripIndependent(t *testing.T) {
	spec := sampleSpec()
	spec.Styles = domain.Styles{domain.BreakpointDesktop: {"color": "red"}}
	b, err := block.Instance(spec, counter("r"), nil)
	require.NoError(t, err)

	out := b.Spec(true)
	assert.Equal(t, "r-1", out.BlockID)
	assert.Equal(t, "r-3", out.Children[0].Children[0].BlockID)

	out.Children[1].Attributes["src"] = "/changed.png"
	out.Styles[domain.BreakpointDesktop]["color"] = "blue"
	assert.Equal(t, "/a.png", b.Children[1].Attributes["src"])
	assert.Equal(t, "red", b.Styles[domain.BreakpointDesktop]["color"])

	stripped := b.Spec(false)
	assert.Empty(t, stripped.BlockID)
	assert.Empty(t, stripped.Children[0].Children[0].BlockID)
}

func TestWalk_PreOrderAndStop(t *testing.T) {
	b, err := block.Instance(sampleSpec(), counter("w"), nil)
	require.NoError(t, err)

	var kinds []domain.BlockKind
	completed := b.Walk(func(x *block.Block) bool {
		kinds = append(kinds, x.Kind)
		return x.Kind != domain.BlockKindText
	})
	assert.False(t, completed)
	assert.Equal(t, []domain.BlockKind{domain.BlockKindBody, domain.BlockKindContainer, domain.BlockKindText}, kinds)
}

func TestChildEditing(t *testing.T) {
	b, err := block.Instance(sampleSpec(), counter("e"), nil)
	require.NoError(t, err)
	container, image := b.Children[0], b.Children[1]

	assert.True(t, b.Contains(container.Children[0]))
	assert.False(t, container.Contains(image))

	require.True(t, b.RemoveChild(container))
	assert.Equal(t, []*block.Block{image}, b.Children)
	assert.False(t, b.RemoveChild(container))

	b.InsertChild(0, container)
	assert.Equal(t, 0, b.IndexOf(container))
	b.InsertChild(99, &block.Block{ID: "tail", Kind: domain.BlockKindText})
	assert.Equal(t, "tail", b.Children[2].ID)
}

func TestValidateSpecs_AcrossDocument(t *testing.T) {
	a := domain.BlockSpec{BlockID: "x", Kind: domain.BlockKindText}
	b := domain.BlockSpec{BlockID: "y", Kind: domain.BlockKindText}
	assert.NoError(t, block.ValidateSpecs([]domain.BlockSpec{a, b}))
	assert.NoError(t, block.ValidateSpecs(nil))

	err := block.ValidateSpecs([]domain.BlockSpec{a, {Kind: domain.BlockKindContainer, Children: []domain.BlockSpec{a}}})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}
