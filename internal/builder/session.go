package builder

import (
	"context"
	"slices"

	"pagebuilder/internal/block"
	"pagebuilder/internal/domain"
)

// Editor events emitted to the UI.
const (
	EventSelectionChanged = "builder:selection-changed"
	EventScrollIntoView   = "builder:scroll-into-view"
	EventModeChanged      = "builder:mode-changed"
	EventBlocksChanged    = "builder:blocks-changed"
	EventPageLoaded       = "builder:page-loaded"
)

// EventEmitter is an interface for emitting events to the frontend.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, string, any) {}

// Session is the editor state for the open document. It owns the selection:
// a block is selected iff its id is in the set, so there is no per-node flag
// that could drift from the session's view.
type Session struct {
	ctx     context.Context
	emitter EventEmitter

	selected   []string
	hovered    string
	editable   *block.Block
	editing    domain.EditingMode
	breakpoint domain.Breakpoint
	mode       domain.CanvasMode
}

// NewSession returns a session in page mode on the desktop breakpoint.
func NewSession(ctx context.Context, emitter EventEmitter) *Session {
	if ctx == nil {
		ctx = context.Background()
	}
	if emitter == nil {
		emitter = noopEmitter{}
	}
	s := &Session{ctx: ctx, emitter: emitter}
	s.Reset()
	return s
}

// Reset returns the session to its load-time state.
func (s *Session) Reset() {
	s.selected = nil
	s.hovered = ""
	s.editable = nil
	s.editing = domain.EditingModePage
	s.breakpoint = domain.BreakpointDesktop
	s.mode = domain.CanvasModeSelect
}

// ── Selection ──────────────────────────────────────────────

// Select makes b the only selected block.
func (s *Session) Select(b *block.Block) {
	s.selected = []string{b.ID}
	s.emitSelection()
}

// ToggleSelect flips b's membership without touching other selected blocks.
func (s *Session) ToggleSelect(b *block.Block) {
	if i := slices.Index(s.selected, b.ID); i >= 0 {
		s.selected = slices.Delete(s.selected, i, i+1)
	} else {
		s.selected = append(s.selected, b.ID)
	}
	s.emitSelection()
}

// SelectBlock applies a click on b. With modifier held the block is toggled,
// otherwise it becomes the sole selection. scrollIntoView also leaves any
// inline edit and asks the UI to reveal the block.
func (s *Session) SelectBlock(b *block.Block, modifier, scrollIntoView bool) {
	if modifier {
		s.ToggleSelect(b)
	} else {
		s.Select(b)
	}
	if scrollIntoView {
		s.emitter.Emit(s.ctx, EventScrollIntoView, map[string]string{"blockId": b.ID})
		s.editable = nil
	}
}

// Deselect drops id from the selection, if present.
func (s *Session) Deselect(ids ...string) {
	before := len(s.selected)
	s.selected = slices.DeleteFunc(s.selected, func(id string) bool {
		return slices.Contains(ids, id)
	})
	if len(s.selected) != before {
		s.emitSelection()
	}
}

// ClearSelection empties the selection.
func (s *Session) ClearSelection() {
	if len(s.selected) == 0 {
		return
	}
	s.selected = nil
	s.emitSelection()
}

// IsSelected reports whether b is selected.
func (s *Session) IsSelected(b *block.Block) bool {
	return slices.Contains(s.selected, b.ID)
}

// SelectedIDs returns the selection in selection order.
func (s *Session) SelectedIDs() []string {
	return slices.Clone(s.selected)
}

func (s *Session) emitSelection() {
	s.emitter.Emit(s.ctx, EventSelectionChanged, map[string]any{"blockIds": s.SelectedIDs()})
}

// ── Editing mode ───────────────────────────────────────────

// EditPage returns to page editing and drops the editable block.
func (s *Session) EditPage() {
	s.editable = nil
	s.editing = domain.EditingModePage
	s.emitMode()
}

// EditComponent switches to component editing with b as the editable block.
// b is expected to be a component instance; it is not checked.
func (s *Session) EditComponent(b *block.Block) {
	s.editable = b
	s.editing = domain.EditingModeComponent
	s.emitMode()
}

// SetEditable opens b for inline editing without changing the editing mode.
func (s *Session) SetEditable(b *block.Block) {
	s.editable = b
}

func (s *Session) EditingMode() domain.EditingMode { return s.editing }

func (s *Session) EditableBlock() *block.Block { return s.editable }

func (s *Session) emitMode() {
	data := map[string]string{"editingMode": string(s.editing)}
	if s.editable != nil {
		data["editableBlockId"] = s.editable.ID
	}
	s.emitter.Emit(s.ctx, EventModeChanged, data)
}

// ── Hover, breakpoint, canvas mode ─────────────────────────

func (s *Session) SetHovered(blockID string) { s.hovered = blockID }

func (s *Session) Hovered() string { return s.hovered }

// SetActiveBreakpoint switches the visible style layer.
func (s *Session) SetActiveBreakpoint(bp domain.Breakpoint) error {
	if !bp.Valid() {
		return &domain.ValidationError{Field: "breakpoint", Message: "unknown breakpoint " + string(bp)}
	}
	s.breakpoint = bp
	return nil
}

func (s *Session) ActiveBreakpoint() domain.Breakpoint { return s.breakpoint }

func (s *Session) SetMode(m domain.CanvasMode) { s.mode = m }

func (s *Session) Mode() domain.CanvasMode { return s.mode }
