package mcpserver

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"pagebuilder/internal/block"
	"pagebuilder/internal/builder"
	"pagebuilder/internal/logging"
	"pagebuilder/internal/service"
)

// Server is the MCP server for the page builder.
// It exposes tools, resources, and prompts so AI agents can edit the open page.
type Server struct {
	mcp      *server.MCPServer
	emitter  EventEmitter
	approval *ApprovalQueue
	logger   *log.Logger

	// Services (injected from app layer)
	builder    *builder.Builder
	pages      *service.PageService
	components *service.ComponentService
}

// Deps holds all dependencies passed from the App layer to the MCP server.
type Deps struct {
	Emitter    EventEmitter
	Builder    *builder.Builder
	Pages      *service.PageService
	Components *service.ComponentService
	Logger     *log.Logger
	ApprovalDB *sql.DB // When set, use SQLite-based approval (standalone mode)
}

// New creates and configures a new MCP server with all tools and resources.
func New(ctx context.Context, deps Deps) *Server {
	approval := NewApprovalQueue(ctx, deps.Emitter)
	if deps.ApprovalDB != nil {
		approval.SetDB(deps.ApprovalDB)
	}
	s := &Server{
		emitter:    deps.Emitter,
		approval:   approval,
		logger:     logging.Or(deps.Logger),
		builder:    deps.Builder,
		pages:      deps.Pages,
		components: deps.Components,
	}

	s.mcp = server.NewMCPServer(
		"pagebuilder-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerPageTools()
	s.registerBlockTools()
	s.registerSessionTools()
	s.registerComponentTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.logger.Info("starting MCP stdio server")
	return server.ServeStdio(s.mcp)
}

// Approve forwards a user approval to the approval queue. It reports whether
// the action was waiting in this process.
func (s *Server) Approve(actionID string) bool {
	return s.approval.Approve(actionID)
}

// Reject forwards a user rejection to the approval queue.
func (s *Server) Reject(actionID string) bool {
	return s.approval.Reject(actionID)
}

// ── Helpers ────────────────────────────────────────────────

// emitBlocksChanged notifies the frontend that an agent edited the page.
func (s *Server) emitBlocksChanged(ctx context.Context) {
	s.emitter.Emit(ctx, "mcp:blocks-changed", map[string]string{"pageId": s.builder.Page().ID})
}

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := marshalJSON(v)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// blockResult renders a block and its subtree with ids.
func (s *Server) blockResult(b *block.Block) (*mcp.CallToolResult, error) {
	return jsonResult(s.builder.GetBlockCopy(b, true))
}

// requireBlock resolves the blockId argument in the active tree.
func (s *Server) requireBlock(req mcp.CallToolRequest) (*block.Block, error) {
	blockID := req.GetString("blockId", "")
	if blockID == "" {
		return nil, fmt.Errorf("blockId is required")
	}
	b := s.builder.FindActiveBlock(blockID)
	if b == nil {
		return nil, fmt.Errorf("block %s not found", blockID)
	}
	return b, nil
}

func boolArg(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}

func boolPtr(v bool) *bool { return &v }
