package app

// ─────────────────────────────────────────────────────────────
// Component Handlers: thin delegates to ComponentService
// ─────────────────────────────────────────────────────────────

import (
	"fmt"

	"pagebuilder/internal/domain"
)

func (a *App) ListComponents() ([]domain.ComponentDefinition, error) {
	return a.components.List()
}

func (a *App) CreateComponent(blockID, name string) (*domain.ComponentDefinition, error) {
	return a.components.CreateFromBlock(a.ctx, blockID, name)
}

func (a *App) InsertComponent(componentID, parentID string) (*domain.BlockSpec, error) {
	blk, err := a.components.InsertInstance(componentID, parentID)
	if err != nil {
		return nil, err
	}
	out := a.builder.GetBlockCopy(blk, true)
	return &out, nil
}

func (a *App) DeleteComponent(id string) error {
	return a.components.Delete(id)
}

// EditComponent switches the canvas to the definition behind an instance.
func (a *App) EditComponent(blockID string) (domain.PageState, error) {
	blk := a.builder.FindBlock(blockID)
	if blk == nil {
		return domain.PageState{}, fmt.Errorf("edit component %s: %w", blockID, domain.ErrNotFound)
	}
	if !blk.IsComponent() {
		return domain.PageState{}, &domain.ValidationError{BlockID: blockID, Field: "isComponent", Message: "block is not a component instance"}
	}
	a.builder.EditComponent(blk)
	return a.builder.State(), nil
}

func (a *App) SaveComponent() (*domain.ComponentDefinition, error) {
	return a.components.SaveEditedComponent(a.ctx)
}

// EditPage leaves component editing.
func (a *App) EditPage() domain.PageState {
	a.builder.EditPage()
	return a.builder.State()
}
