package mcpserver

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventEmitter allows the approval queue to notify the frontend.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// Events emitted by the approval queue.
const (
	EventApprovalRequired  = "mcp:approval-required"
	EventApprovalDismissed = "mcp:approval-dismissed"
)

// Approval row states in the mcp_approvals table.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

const (
	defaultApprovalTimeout = 120 * time.Second
	approvalPollInterval   = 500 * time.Millisecond
)

// PendingAction represents a destructive operation awaiting user approval.
type PendingAction struct {
	ID          string `json:"id"`
	Tool        string `json:"tool"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
	Metadata    string `json:"metadata"` // JSON with extra context (e.g. block IDs to highlight)
}

// actionResult is sent through the channel when user approves/rejects.
type actionResult struct {
	approved bool
}

// ApprovalQueue manages human-in-the-loop approval for destructive MCP tool calls.
// It supports two modes:
//   - In-process (Wails app running MCP): uses channels + Wails events
//   - DB-based (standalone MCP): writes to mcp_approvals table, polls for result
type ApprovalQueue struct {
	mu      sync.Mutex
	pending map[string]chan actionResult
	ctx     context.Context
	emitter EventEmitter
	timeout time.Duration
	// DB-based mode for standalone MCP (cross-process IPC)
	db *sql.DB
}

func NewApprovalQueue(ctx context.Context, emitter EventEmitter) *ApprovalQueue {
	return &ApprovalQueue{
		pending: make(map[string]chan actionResult),
		ctx:     ctx,
		emitter: emitter,
		timeout: defaultApprovalTimeout,
	}
}

// SetDB enables DB-based approval mode for standalone MCP.
// The standalone process writes pending actions to SQLite and polls for results.
func (q *ApprovalQueue) SetDB(db *sql.DB) {
	q.db = db
}

// SetTimeout changes how long a request waits before it is treated as rejected.
func (q *ApprovalQueue) SetTimeout(d time.Duration) {
	if d > 0 {
		q.timeout = d
	}
}

// Request sends an approval request and blocks until approved/rejected.
// metadata is optional JSON with extra context (e.g. block IDs for highlighting).
func (q *ApprovalQueue) Request(tool, description string, metadata ...string) (bool, error) {
	id := uuid.New().String()
	meta := "{}"
	if len(metadata) > 0 && metadata[0] != "" {
		meta = metadata[0]
	}

	if q.db != nil {
		return q.requestViaDB(id, tool, description, meta)
	}
	return q.requestViaChannel(id, tool, description, meta)
}

// requestViaDB writes a pending approval to SQLite and polls until resolved.
func (q *ApprovalQueue) requestViaDB(id, tool, description, metadata string) (bool, error) {
	_, err := q.db.Exec(
		`INSERT INTO mcp_approvals (id, tool, description, status, metadata) VALUES (?, ?, ?, ?, ?)`,
		id, tool, description, StatusPending, metadata,
	)
	if err != nil {
		return false, fmt.Errorf("insert approval: %w", err)
	}
	defer q.db.Exec(`DELETE FROM mcp_approvals WHERE id = ?`, id)

	deadline := time.Now().Add(q.timeout)
	ticker := time.NewTicker(approvalPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if time.Now().After(deadline) {
				return false, fmt.Errorf("action timed out after %s: %s", q.timeout, tool)
			}
			var status string
			if err := q.db.QueryRow(`SELECT status FROM mcp_approvals WHERE id = ?`, id).Scan(&status); err != nil {
				continue
			}
			switch status {
			case StatusApproved:
				return true, nil
			case StatusRejected:
				return false, fmt.Errorf("action rejected by user: %s", tool)
			}
		case <-q.ctx.Done():
			return false, fmt.Errorf("context cancelled")
		}
	}
}

// requestViaChannel is the in-process mode using Wails events.
func (q *ApprovalQueue) requestViaChannel(id, tool, description, metadata string) (bool, error) {
	ch := make(chan actionResult, 1)

	q.mu.Lock()
	q.pending[id] = ch
	q.mu.Unlock()
	defer q.cleanup(id)

	q.emitter.Emit(q.ctx, EventApprovalRequired, PendingAction{
		ID:          id,
		Tool:        tool,
		Description: description,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		Metadata:    metadata,
	})

	select {
	case result := <-ch:
		if !result.approved {
			return false, fmt.Errorf("action rejected by user: %s", tool)
		}
		return true, nil
	case <-time.After(q.timeout):
		q.emitter.Emit(q.ctx, EventApprovalDismissed, map[string]string{"id": id})
		return false, fmt.Errorf("action timed out after %s: %s", q.timeout, tool)
	case <-q.ctx.Done():
		return false, fmt.Errorf("context cancelled")
	}
}

// Approve marks a pending action as approved (in-process mode).
// It reports whether the action was waiting in this process.
func (q *ApprovalQueue) Approve(actionID string) bool {
	return q.resolve(actionID, true)
}

// Reject marks a pending action as rejected (in-process mode).
func (q *ApprovalQueue) Reject(actionID string) bool {
	return q.resolve(actionID, false)
}

func (q *ApprovalQueue) resolve(actionID string, approved bool) bool {
	q.mu.Lock()
	ch, ok := q.pending[actionID]
	q.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case ch <- actionResult{approved: approved}:
	default:
	}
	return true
}

func (q *ApprovalQueue) cleanup(id string) {
	q.mu.Lock()
	delete(q.pending, id)
	q.mu.Unlock()
}

// ── Cross-process helpers (GUI side) ───────────────────────

// ResolveStored answers an approval written by a standalone MCP process.
func ResolveStored(db *sql.DB, actionID string, approved bool) error {
	status := StatusRejected
	if approved {
		status = StatusApproved
	}
	res, err := db.Exec(`UPDATE mcp_approvals SET status = ? WHERE id = ? AND status = ?`, status, actionID, StatusPending)
	if err != nil {
		return fmt.Errorf("resolve approval: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("approval %s is not pending", actionID)
	}
	return nil
}

// ListStored returns approvals still pending in the database, oldest first.
func ListStored(db *sql.DB) ([]PendingAction, error) {
	rows, err := db.Query(
		`SELECT id, tool, description, created_at, metadata FROM mcp_approvals WHERE status = ? ORDER BY created_at, rowid`,
		StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("list approvals: %w", err)
	}
	defer rows.Close()

	var actions []PendingAction
	for rows.Next() {
		var a PendingAction
		if err := rows.Scan(&a.ID, &a.Tool, &a.Description, &a.CreatedAt, &a.Metadata); err != nil {
			return nil, fmt.Errorf("scan approval: %w", err)
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}
