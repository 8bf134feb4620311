package app

import (
	mcpserver "pagebuilder/internal/mcp"
)

// ApproveAction answers an MCP approval prompt. Actions raised by the
// in-process server are resolved directly; anything else belongs to a
// standalone server and is answered through the database.
func (a *App) ApproveAction(actionID string) error {
	if a.mcp != nil && a.mcp.Approve(actionID) {
		return nil
	}
	return mcpserver.ResolveStored(a.db.Conn(), actionID, true)
}

// RejectAction declines an MCP approval prompt.
func (a *App) RejectAction(actionID string) error {
	if a.mcp != nil && a.mcp.Reject(actionID) {
		return nil
	}
	return mcpserver.ResolveStored(a.db.Conn(), actionID, false)
}

// ListPendingActions returns approvals a standalone MCP server is waiting on.
func (a *App) ListPendingActions() ([]mcpserver.PendingAction, error) {
	return mcpserver.ListStored(a.db.Conn())
}
