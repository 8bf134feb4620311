package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPageTools() {
	// ── list_pages ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List all pages in the workspace"),
	), s.handleListPages)

	// ── create_page ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_page",
		mcp.WithDescription("Create a new page holding an empty body. The route is derived from the name."),
		mcp.WithString("name",
			mcp.Description("Name of the new page"),
			mcp.Required(),
		),
	), s.handleCreatePage)

	// ── load_page ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("load_page",
		mcp.WithDescription("Open a page in the builder. Subsequent block tools act on this page."),
		mcp.WithString("pageId",
			mcp.Description("ID of the page to open"),
			mcp.Required(),
		),
	), s.handleLoadPage)

	// ── save_page ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("save_page",
		mcp.WithDescription("Save the open page and record a revision"),
		mcp.WithString("label", mcp.Description("Revision label (optional)")),
	), s.handleSavePage)

	// ── list_revisions ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_revisions",
		mcp.WithDescription("List saved revisions of a page, newest first"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to the open page)")),
	), s.handleListRevisions)

	// ── restore_revision (destructive) ─────────────────
	s.mcp.AddTool(mcp.NewTool("restore_revision",
		mcp.WithDescription("🛑 DESTRUCTIVE: Replace the open page with a saved revision. Requires user approval."),
		mcp.WithString("revisionId", mcp.Description("Revision ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleRestoreRevision)
}

func (s *Server) handleListPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pages, err := s.pages.ListPages()
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	return jsonResult(pages)
}

func (s *Server) handleCreatePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	page, err := s.pages.CreatePage(name)
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	return jsonResult(page)
}

func (s *Server) handleLoadPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID := req.GetString("pageId", "")
	if pageID == "" {
		return nil, fmt.Errorf("pageId is required")
	}
	if _, err := s.pages.OpenPage(pageID); err != nil {
		return nil, fmt.Errorf("load page: %w", err)
	}
	page := s.builder.Page()
	return textResult(fmt.Sprintf("Opened page %q at %s", page.PageName, page.Route)), nil
}

func (s *Server) handleSavePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	label := req.GetString("label", "mcp")
	rev, err := s.pages.SavePage(ctx, label)
	if err != nil {
		return nil, fmt.Errorf("save page: %w", err)
	}
	return textResult(fmt.Sprintf("Saved revision %s", rev.ID)), nil
}

func (s *Server) handleListRevisions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID := req.GetString("pageId", "")
	if pageID == "" {
		pageID = s.builder.Page().ID
	}
	if pageID == "" {
		return nil, fmt.Errorf("no pageId provided and no page open (use load_page first)")
	}
	revs, err := s.pages.ListRevisions(pageID)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	return jsonResult(revs)
}

func (s *Server) handleRestoreRevision(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	revID := req.GetString("revisionId", "")
	if revID == "" {
		return nil, fmt.Errorf("revisionId is required")
	}
	if _, err := s.approval.Request("restore_revision", fmt.Sprintf("Replace the open page with revision %s", revID)); err != nil {
		return nil, err
	}
	page, err := s.pages.RestoreRevision(revID)
	if err != nil {
		return nil, fmt.Errorf("restore revision: %w", err)
	}
	s.emitBlocksChanged(ctx)
	return textResult(fmt.Sprintf("Restored revision %s of page %s (unsaved)", revID, page.ID)), nil
}
