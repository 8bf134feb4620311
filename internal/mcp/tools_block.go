package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"pagebuilder/internal/domain"
)

func (s *Server) registerBlockTools() {
	// ── get_page_data ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_page_data",
		mcp.WithDescription("Return the open page's block tree with ids"),
	), s.handleGetPageData)

	// ── push_blocks ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("push_blocks",
		mcp.WithDescription("Add blocks to the open page. If the first block has kind \"body\" the page content is replaced and any further blocks are placed inside it; otherwise every block is appended to the page root."),
		mcp.WithString("blocks",
			mcp.Description(`JSON array of block specs [{kind, attributes?, styles?, children?, blockId?, isComponent?, referencedComponentId?}, ...]`),
			mcp.Required(),
		),
	), s.handlePushBlocks)

	// ── insert_block ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("insert_block",
		mcp.WithDescription("Create a block from a template kind and append it under a parent. Attributes override the template."),
		mcp.WithString("kind",
			mcp.Description("Template kind (see list_templates)"),
			mcp.Required(),
		),
		mcp.WithString("parentId", mcp.Description("Parent block ID (optional, defaults to the root)")),
		mcp.WithString("attributes", mcp.Description(`JSON object of attributes, e.g. {"text":"Hello"} (optional)`)),
	), s.handleInsertBlock)

	// ── insert_image ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("insert_image",
		mcp.WithDescription("Insert an image block. The alt text defaults to the file name without extension."),
		mcp.WithString("src", mcp.Description("Image URL"), mcp.Required()),
		mcp.WithString("alt", mcp.Description("Alt text or file name (optional)")),
		mcp.WithString("parentId", mcp.Description("Parent block ID (optional, defaults to the root)")),
	), s.handleInsertImage)

	// ── update_block ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_block",
		mcp.WithDescription("Merge attributes and styles into a block. Styles apply to the active breakpoint. An empty value removes the key. On a component instance, attributes become overrides."),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("attributes", mcp.Description(`JSON object of attributes, e.g. {"text":"Hi"} (optional)`)),
		mcp.WithString("styles", mcp.Description(`JSON object of CSS properties, e.g. {"color":"red"} (optional)`)),
	), s.handleUpdateBlock)

	// ── find_block ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("find_block",
		mcp.WithDescription("Return a block and its subtree by id"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
	), s.handleFindBlock)

	// ── find_parent_block ──────────────────────────────
	s.mcp.AddTool(mcp.NewTool("find_parent_block",
		mcp.WithDescription("Return the id and kind of a block's parent"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
	), s.handleFindParentBlock)

	// ── duplicate_block ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("duplicate_block",
		mcp.WithDescription("Copy a block and its subtree next to the original with fresh ids, and select the copy"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
	), s.handleDuplicateBlock)

	// ── move_block ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_block",
		mcp.WithDescription("Move a block under a new parent at a position"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("parentId", mcp.Description("New parent block ID"), mcp.Required()),
		mcp.WithNumber("index", mcp.Description("Position among the parent's children (default: end)")),
	), s.handleMoveBlock)

	// ── remove_block (destructive) ─────────────────────
	s.mcp.AddTool(mcp.NewTool("remove_block",
		mcp.WithDescription("🛑 DESTRUCTIVE: Remove a block and its subtree. Requires user approval."),
		mcp.WithString("blockId", mcp.Description("Block ID to remove"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleRemoveBlock)

	// ── list_templates ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_templates",
		mcp.WithDescription("List the block kinds that have templates"),
	), s.handleListTemplates)
}

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleGetPageData(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.builder.PageSpecs())
}

func (s *Server) handlePushBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw := req.GetString("blocks", "")
	if raw == "" {
		return nil, fmt.Errorf("blocks is required")
	}
	var specs []domain.BlockSpec
	if err := parseJSON(raw, &specs); err != nil {
		return nil, fmt.Errorf("invalid blocks JSON: %w", err)
	}
	if err := s.builder.PushBlocks(specs); err != nil {
		return nil, err
	}
	s.emitBlocksChanged(ctx)
	return textResult(fmt.Sprintf("Pushed %d block(s); page has %d block(s)", len(specs), countBlocks(s.builder.PageSpecs()))), nil
}

func (s *Server) handleInsertBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind := req.GetString("kind", "")
	if kind == "" {
		return nil, fmt.Errorf("kind is required")
	}
	spec, err := s.builder.Templates().Template(domain.BlockKind(kind))
	if err != nil {
		return nil, err
	}
	attrs, err := stringMapArg(req, "attributes")
	if err != nil {
		return nil, err
	}
	if len(attrs) > 0 && spec.Attributes == nil {
		spec.Attributes = map[string]string{}
	}
	for k, v := range attrs {
		spec.Attributes[k] = v
	}
	blk, err := s.builder.InsertBlock(req.GetString("parentId", ""), spec)
	if err != nil {
		return nil, err
	}
	s.emitBlocksChanged(ctx)
	return s.blockResult(blk)
}

func (s *Server) handleInsertImage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	src := req.GetString("src", "")
	if src == "" {
		return nil, fmt.Errorf("src is required")
	}
	alt := req.GetString("alt", "")
	if alt == "" {
		alt = src[strings.LastIndex(src, "/")+1:]
	}
	spec, err := s.builder.GetImageBlock(src, alt)
	if err != nil {
		return nil, err
	}
	blk, err := s.builder.InsertBlock(req.GetString("parentId", ""), spec)
	if err != nil {
		return nil, err
	}
	s.emitBlocksChanged(ctx)
	return s.blockResult(blk)
}

func (s *Server) handleUpdateBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	blockID := req.GetString("blockId", "")
	if blockID == "" {
		return nil, fmt.Errorf("blockId is required")
	}
	attrs, err := stringMapArg(req, "attributes")
	if err != nil {
		return nil, err
	}
	styles, err := stringMapArg(req, "styles")
	if err != nil {
		return nil, err
	}
	if len(attrs) == 0 && len(styles) == 0 {
		return nil, fmt.Errorf("attributes or styles is required")
	}
	if err := s.builder.UpdateBlock(blockID, attrs, domain.StyleMap(styles)); err != nil {
		return nil, err
	}
	s.emitBlocksChanged(ctx)
	b, err := s.requireBlock(req)
	if err != nil {
		return nil, err
	}
	return s.blockResult(b)
}

func (s *Server) handleFindBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	b, err := s.requireBlock(req)
	if err != nil {
		return nil, err
	}
	return s.blockResult(b)
}

func (s *Server) handleFindParentBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	blockID := req.GetString("blockId", "")
	if blockID == "" {
		return nil, fmt.Errorf("blockId is required")
	}
	parent := s.builder.FindActiveParentBlock(blockID)
	if parent == nil {
		return textResult(fmt.Sprintf("Block %s has no parent (it is the root or does not exist)", blockID)), nil
	}
	return jsonResult(map[string]any{
		"blockId": parent.ID,
		"kind":    parent.Kind,
	})
}

func (s *Server) handleDuplicateBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	blockID := req.GetString("blockId", "")
	if blockID == "" {
		return nil, fmt.Errorf("blockId is required")
	}
	dup, err := s.builder.DuplicateBlock(blockID)
	if err != nil {
		return nil, err
	}
	s.emitBlocksChanged(ctx)
	return s.blockResult(dup)
}

func (s *Server) handleMoveBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	blockID := req.GetString("blockId", "")
	parentID := req.GetString("parentId", "")
	if blockID == "" || parentID == "" {
		return nil, fmt.Errorf("blockId and parentId are required")
	}
	index := -1
	if v, ok := args["index"].(float64); ok {
		index = int(v)
	}
	if err := s.builder.MoveBlock(blockID, parentID, index); err != nil {
		return nil, err
	}
	s.emitBlocksChanged(ctx)
	return textResult(fmt.Sprintf("Moved block %s under %s", blockID, parentID)), nil
}

func (s *Server) handleRemoveBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	b, err := s.requireBlock(req)
	if err != nil {
		return nil, err
	}
	meta, _ := json.Marshal(map[string]any{"blockIds": []string{b.ID}})
	desc := fmt.Sprintf("Remove %s block %s", b.Kind, b.ID)
	if _, err := s.approval.Request("remove_block", desc, string(meta)); err != nil {
		return nil, err
	}
	if err := s.builder.RemoveBlock(b.ID); err != nil {
		return nil, err
	}
	s.emitBlocksChanged(ctx)
	return textResult(fmt.Sprintf("Removed block %s", b.ID)), nil
}

func (s *Server) handleListTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.builder.Templates().Kinds())
}

func countBlocks(specs []domain.BlockSpec) int {
	n := 0
	for _, sp := range specs {
		n += 1 + countBlocks(sp.Children)
	}
	return n
}
