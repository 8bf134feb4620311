package domain

// EditingMode selects whether edits target the page tree or a component's tree.
type EditingMode string

const (
	EditingModePage      EditingMode = "page"
	EditingModeComponent EditingMode = "component"
)

// CanvasMode is the active canvas tool.
type CanvasMode string

const (
	CanvasModeSelect    CanvasMode = "select"
	CanvasModeContainer CanvasMode = "container"
	CanvasModeText      CanvasMode = "text"
	CanvasModeImage     CanvasMode = "image"
	CanvasModeMove      CanvasMode = "move"
)

// SessionState is the read-only view of the editor session handed to the UI.
type SessionState struct {
	SelectedPage     string      `json:"selectedPage"`
	PageName         string      `json:"pageName"`
	Route            string      `json:"route"`
	SelectedBlockIDs []string    `json:"selectedBlockIds"`
	HoveredBlockID   string      `json:"hoveredBlockId,omitempty"`
	EditableBlockID  string      `json:"editableBlockId,omitempty"`
	ActiveBreakpoint Breakpoint  `json:"activeBreakpoint"`
	EditingMode      EditingMode `json:"editingMode"`
	Mode             CanvasMode  `json:"mode"`
}

// PageState represents the complete state of the open page for rendering.
// Returned to the frontend to render the full canvas.
type PageState struct {
	Blocks  []BlockSpec  `json:"blocks"`
	Session SessionState `json:"session"`
}
