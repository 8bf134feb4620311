package app

// ─────────────────────────────────────────────────────────────
// Block + Session Handlers: thin delegates to the Builder
// ─────────────────────────────────────────────────────────────

import (
	"fmt"

	"pagebuilder/internal/domain"
)

// ── Blocks ─────────────────────────────────────────────────

// GetPageState returns the active canvas and session.
func (a *App) GetPageState() domain.PageState {
	return a.builder.State()
}

func (a *App) ListTemplates() []domain.BlockKind {
	return a.builder.Templates().Kinds()
}

// InsertBlock creates a block of kind from its template under parentID
// (root when empty) and returns it with ids.
func (a *App) InsertBlock(parentID, kind string) (*domain.BlockSpec, error) {
	spec, err := a.builder.Templates().Template(domain.BlockKind(kind))
	if err != nil {
		return nil, err
	}
	return a.insert(parentID, spec)
}

// InsertImage adds an image block for src; alt is usually the file name.
func (a *App) InsertImage(parentID, src, alt string) (*domain.BlockSpec, error) {
	spec, err := a.builder.GetImageBlock(src, alt)
	if err != nil {
		return nil, err
	}
	return a.insert(parentID, spec)
}

func (a *App) insert(parentID string, spec domain.BlockSpec) (*domain.BlockSpec, error) {
	blk, err := a.builder.InsertBlock(parentID, spec)
	if err != nil {
		return nil, err
	}
	out := a.builder.GetBlockCopy(blk, true)
	return &out, nil
}

// PushBlocks pastes specs into the page (replacing it when the first spec is
// a body block).
func (a *App) PushBlocks(specs []domain.BlockSpec) error {
	return a.builder.PushBlocks(specs)
}

// CopyBlock returns an id-free copy of a block for the clipboard.
func (a *App) CopyBlock(id string) (*domain.BlockSpec, error) {
	blk := a.builder.FindActiveBlock(id)
	if blk == nil {
		return nil, fmt.Errorf("copy block %s: %w", id, domain.ErrNotFound)
	}
	out := a.builder.GetBlockCopy(blk, false)
	return &out, nil
}

func (a *App) DuplicateBlock(id string) (*domain.BlockSpec, error) {
	dup, err := a.builder.DuplicateBlock(id)
	if err != nil {
		return nil, err
	}
	out := a.builder.GetBlockCopy(dup, true)
	return &out, nil
}

func (a *App) RemoveBlock(id string) error {
	return a.builder.RemoveBlock(id)
}

func (a *App) MoveBlock(id, parentID string, index int) error {
	return a.builder.MoveBlock(id, parentID, index)
}

func (a *App) UpdateBlock(id string, attrs map[string]string, styles domain.StyleMap) error {
	return a.builder.UpdateBlock(id, attrs, styles)
}

// ── Session ────────────────────────────────────────────────

func (a *App) SelectBlock(id string, modifier, scrollIntoView bool) error {
	_, err := a.builder.SelectBlockByID(id, modifier, scrollIntoView)
	return err
}

func (a *App) ClearSelection() {
	a.builder.ClearSelection()
}

func (a *App) SetHoveredBlock(id string) {
	a.builder.SetHoveredBlock(id)
}

func (a *App) SetEditableBlock(id string) error {
	return a.builder.SetEditableBlock(id)
}

func (a *App) SetActiveBreakpoint(bp string) error {
	return a.builder.SetActiveBreakpoint(domain.Breakpoint(bp))
}

func (a *App) SetMode(mode string) {
	a.builder.SetMode(domain.CanvasMode(mode))
}

// GetBreakpoints returns the configured device preview widths.
func (a *App) GetBreakpoints() []BreakpointView {
	views := make([]BreakpointView, 0, len(a.cfg.Breakpoints))
	for _, bp := range a.cfg.Breakpoints {
		views = append(views, BreakpointView{Device: string(bp.Device), Width: bp.Width, Icon: bp.Icon})
	}
	return views
}
