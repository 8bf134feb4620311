package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerComponentTools() {
	// ── list_components ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_components",
		mcp.WithDescription("List reusable component definitions"),
	), s.handleListComponents)

	// ── create_component ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_component",
		mcp.WithDescription("Store a copy of a page block as a new reusable component. The page is not changed."),
		mcp.WithString("blockId", mcp.Description("Source block ID"), mcp.Required()),
		mcp.WithString("name", mcp.Description("Component name"), mcp.Required()),
	), s.handleCreateComponent)

	// ── insert_component ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("insert_component",
		mcp.WithDescription("Place an instance of a component on the page"),
		mcp.WithString("componentId", mcp.Description("Component ID"), mcp.Required()),
		mcp.WithString("parentId", mcp.Description("Parent block ID (optional, defaults to the root)")),
	), s.handleInsertComponent)

	// ── save_component ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("save_component",
		mcp.WithDescription("Write the component canvas back to its definition (after edit_component)"),
	), s.handleSaveComponent)
}

func (s *Server) handleListComponents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	defs, err := s.components.List()
	if err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}
	type componentSummary struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Kind string `json:"kind"`
	}
	summaries := make([]componentSummary, 0, len(defs))
	for _, d := range defs {
		summaries = append(summaries, componentSummary{ID: d.ID, Name: d.Name, Kind: string(d.Block.Kind)})
	}
	return jsonResult(summaries)
}

func (s *Server) handleCreateComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	def, err := s.components.CreateFromBlock(ctx, req.GetString("blockId", ""), req.GetString("name", ""))
	if err != nil {
		return nil, fmt.Errorf("create component: %w", err)
	}
	return textResult(fmt.Sprintf("Created component %q (%s)", def.Name, def.ID)), nil
}

func (s *Server) handleInsertComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	componentID := req.GetString("componentId", "")
	if componentID == "" {
		return nil, fmt.Errorf("componentId is required")
	}
	blk, err := s.components.InsertInstance(componentID, req.GetString("parentId", ""))
	if err != nil {
		return nil, fmt.Errorf("insert component: %w", err)
	}
	s.emitBlocksChanged(ctx)
	return s.blockResult(blk)
}

func (s *Server) handleSaveComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	def, err := s.components.SaveEditedComponent(ctx)
	if err != nil {
		return nil, fmt.Errorf("save component: %w", err)
	}
	return textResult(fmt.Sprintf("Saved component %q", def.Name)), nil
}
