package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/service"
)

func TestComponentService_CreateInsertEdit(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p, err := e.pages.CreatePage("Home")
	require.NoError(t, err)
	_, err = e.pages.OpenPage(p.ID)
	require.NoError(t, err)

	hero, err := e.builder.InsertBlock("", domain.BlockSpec{
		Kind:     domain.BlockKindContainer,
		Children: []domain.BlockSpec{textSpec("Welcome")},
	})
	require.NoError(t, err)

	def, err := e.components.CreateFromBlock(ctx, hero.ID, "Hero")
	require.NoError(t, err)
	assert.Equal(t, hero.ID, def.Block.BlockID, "definition keeps ids")
	assert.False(t, e.builder.FindBlock(hero.ID).IsComponent(), "page is untouched")
	assert.Equal(t, 1, e.count(service.EventComponentCreated))

	inst, err := e.components.InsertInstance(def.ID, "")
	require.NoError(t, err)
	require.True(t, inst.IsComponent())
	assert.Equal(t, def.ID, inst.Component.ReferencedComponentID)
	assert.NotEqual(t, hero.ID, inst.ID)

	e.builder.EditComponent(inst)
	require.Equal(t, domain.EditingModeComponent, e.builder.EditingMode())
	canvasRoot := e.builder.ActiveTree().Root()
	assert.Equal(t, hero.ID, canvasRoot.ID, "canvas holds the definition")

	_, err = e.builder.InsertBlock(canvasRoot.ID, textSpec("Subtitle"))
	require.NoError(t, err)
	saved, err := e.components.SaveEditedComponent(ctx)
	require.NoError(t, err)
	assert.Len(t, saved.Block.Children, 2)

	again, err := e.components.Lookup(def.ID)
	require.NoError(t, err)
	assert.Len(t, again.Block.Children, 2)

	e.builder.EditPage()
	_, err = e.components.SaveEditedComponent(ctx)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestComponentService_Rejects(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	root := e.builder.GetPageData()[0]

	_, err := e.components.CreateFromBlock(ctx, root.ID, "Body")
	assert.True(t, errors.Is(err, domain.ErrValidation))
	_, err = e.components.CreateFromBlock(ctx, "ghost", "Ghost")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = e.components.CreateFromBlock(ctx, root.ID, "")
	assert.True(t, errors.Is(err, domain.ErrValidation))
	_, err = e.components.InsertInstance("ghost", "")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	inst, err := e.builder.InsertBlock("", domain.BlockSpec{Kind: domain.BlockKindContainer, IsComponent: true, ReferencedComponentID: "x"})
	require.NoError(t, err)
	_, err = e.components.CreateFromBlock(ctx, inst.ID, "Nested")
	assert.True(t, errors.Is(err, domain.ErrValidation))

	list, err := e.components.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}
