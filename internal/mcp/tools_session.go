package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"pagebuilder/internal/domain"
)

func (s *Server) registerSessionTools() {
	// ── get_session ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Return the editor session: selection, editing mode, breakpoint and canvas mode"),
	), s.handleGetSession)

	// ── select_block ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("select_block",
		mcp.WithDescription("Select a block. With modifier the block is toggled in a multi-selection."),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithBoolean("modifier", mcp.Description("Toggle instead of replacing the selection (default false)")),
		mcp.WithBoolean("scrollIntoView", mcp.Description("Ask the canvas to scroll to the block (default false)")),
	), s.handleSelectBlock)

	// ── clear_selection ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("clear_selection",
		mcp.WithDescription("Clear the block selection"),
	), s.handleClearSelection)

	// ── edit_component ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("edit_component",
		mcp.WithDescription("Switch the canvas to a component instance's definition. Block tools then act on the component."),
		mcp.WithString("blockId", mcp.Description("Component instance block ID"), mcp.Required()),
	), s.handleEditComponent)

	// ── edit_page ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("edit_page",
		mcp.WithDescription("Return the canvas to the page tree"),
	), s.handleEditPage)

	// ── set_breakpoint ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_breakpoint",
		mcp.WithDescription("Choose which style layer the canvas shows"),
		mcp.WithString("breakpoint",
			mcp.Description("Device class"),
			mcp.Enum("desktop", "tablet", "mobile"),
			mcp.Required(),
		),
	), s.handleSetBreakpoint)

	// ── set_mode ───────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_mode",
		mcp.WithDescription("Choose the active canvas tool"),
		mcp.WithString("mode",
			mcp.Description("Canvas mode"),
			mcp.Enum("select", "container", "text", "image", "move"),
			mcp.Required(),
		),
	), s.handleSetMode)
}

func (s *Server) handleGetSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.builder.State().Session)
}

func (s *Server) handleSelectBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	blockID := req.GetString("blockId", "")
	if blockID == "" {
		return nil, fmt.Errorf("blockId is required")
	}
	if _, err := s.builder.SelectBlockByID(blockID, boolArg(args, "modifier"), boolArg(args, "scrollIntoView")); err != nil {
		return nil, err
	}
	return jsonResult(map[string]any{"selectedBlockIds": s.builder.State().Session.SelectedBlockIDs})
}

func (s *Server) handleClearSelection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.builder.ClearSelection()
	return textResult("Selection cleared"), nil
}

func (s *Server) handleEditComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	blockID := req.GetString("blockId", "")
	if blockID == "" {
		return nil, fmt.Errorf("blockId is required")
	}
	b := s.builder.FindBlock(blockID)
	if b == nil {
		return nil, fmt.Errorf("block %s not found", blockID)
	}
	if !b.IsComponent() {
		return nil, fmt.Errorf("block %s is not a component instance", blockID)
	}
	s.builder.EditComponent(b)
	return jsonResult(s.builder.ActiveSpecs())
}

func (s *Server) handleEditPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.builder.EditPage()
	return textResult("Editing the page"), nil
}

func (s *Server) handleSetBreakpoint(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bp := domain.Breakpoint(req.GetString("breakpoint", ""))
	if err := s.builder.SetActiveBreakpoint(bp); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Breakpoint set to %s", bp)), nil
}

func (s *Server) handleSetMode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mode := domain.CanvasMode(req.GetString("mode", ""))
	switch mode {
	case domain.CanvasModeSelect, domain.CanvasModeContainer, domain.CanvasModeText,
		domain.CanvasModeImage, domain.CanvasModeMove:
	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
	s.builder.SetMode(mode)
	return textResult(fmt.Sprintf("Mode set to %s", mode)), nil
}
