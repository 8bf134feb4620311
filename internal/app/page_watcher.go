package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	mcpserver "pagebuilder/internal/mcp"
	"pagebuilder/internal/service"
)

// Events emitted by the page watcher.
const (
	EventPageChanged  = "mcp:page-changed"
	EventPageConflict = service.EventPageConflict
	EventPagesChanged = "mcp:pages-changed"
	EventMCPActivity  = "mcp:activity"
)

const watchInterval = 2 * time.Second

// pageWatcher polls the database for changes to the open page made by
// another process (e.g. the standalone MCP server), and for approvals that
// process is waiting on.
type pageWatcher struct {
	ctx context.Context
	app *App
	mu  sync.Mutex
	// Open page tracking
	pageID    string
	lastSaved string // page updated_at fingerprint
	// Page list tracking (sidebar refresh)
	lastPageList string // pages fingerprint (count + max updated_at)
	stopCh       chan struct{}
	// Track emitted approval IDs to avoid infinite re-emission
	emittedApprovals map[string]bool
}

func newPageWatcher(ctx context.Context, app *App) *pageWatcher {
	return &pageWatcher{ctx: ctx, app: app, emittedApprovals: map[string]bool{}}
}

// SetPage updates the watched page ID. Called when the editor opens a page.
func (w *pageWatcher) SetPage(pageID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pageID = pageID
	w.lastSaved = w.pageFingerprint(pageID)
}

// MarkSaved records the current stored version of the open page as our own.
func (w *pageWatcher) MarkSaved() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastSaved = w.pageFingerprint(w.pageID)
}

// Start begins the polling loop. Should be called once on app startup.
func (w *pageWatcher) Start() {
	w.stopCh = make(chan struct{})
	go w.pollLoop(w.stopCh)
}

// Stop terminates the polling loop.
func (w *pageWatcher) Stop() {
	if w.stopCh != nil {
		close(w.stopCh)
		w.stopCh = nil
	}
}

func (w *pageWatcher) pollLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.check()
		case <-stop:
			return
		case <-w.ctx.Done():
			return
		}
	}
}

func (w *pageWatcher) pageFingerprint(pageID string) string {
	if pageID == "" {
		return ""
	}
	var updated string
	if err := w.app.db.Conn().QueryRow(`SELECT COALESCE(updated_at, '') FROM pages WHERE id = ?`, pageID).Scan(&updated); err != nil {
		return ""
	}
	return updated
}

func (w *pageWatcher) check() {
	db := w.app.db.Conn()

	// ── Open page ──────────────────────────────────────
	w.mu.Lock()
	pageID := w.pageID
	fingerprint := w.pageFingerprint(pageID)
	pageChanged := fingerprint != "" && w.lastSaved != "" && fingerprint != w.lastSaved
	if fingerprint != "" {
		w.lastSaved = fingerprint
	}
	w.mu.Unlock()

	if pageChanged {
		w.reloadOpenPage(pageID)
	}

	// ── Page list (sidebar) ────────────────────────────
	var pageCount int
	var pagesMaxUpdated string
	if err := db.QueryRow(`SELECT COUNT(*), COALESCE(MAX(updated_at), '') FROM pages`).Scan(&pageCount, &pagesMaxUpdated); err == nil {
		listFingerprint := fmt.Sprintf("%d:%s", pageCount, pagesMaxUpdated)
		w.mu.Lock()
		listChanged := w.lastPageList != "" && w.lastPageList != listFingerprint
		w.lastPageList = listFingerprint
		w.mu.Unlock()
		if listChanged {
			wailsRuntime.EventsEmit(w.ctx, EventPagesChanged, map[string]int{"count": pageCount})
		}
	}

	// ── Pending MCP approvals (cross-process IPC) ──────
	pending, err := mcpserver.ListStored(db)
	if err != nil {
		return
	}
	live := make(map[string]bool, len(pending))
	for _, action := range pending {
		live[action.ID] = true
		w.mu.Lock()
		alreadySent := w.emittedApprovals[action.ID]
		w.emittedApprovals[action.ID] = true
		w.mu.Unlock()
		if !alreadySent {
			wailsRuntime.EventsEmit(w.ctx, EventMCPActivity, map[string]any{"changes": 1, "pageId": pageID})
			wailsRuntime.EventsEmit(w.ctx, mcpserver.EventApprovalRequired, action)
		}
	}

	// Forget approvals the standalone process has resolved or timed out.
	w.mu.Lock()
	for id := range w.emittedApprovals {
		if !live[id] {
			delete(w.emittedApprovals, id)
		}
	}
	w.mu.Unlock()
}

// reloadOpenPage picks up a save made by another process. Unsaved local
// edits are never overwritten; the frontend is told about the conflict
// instead.
func (w *pageWatcher) reloadOpenPage(pageID string) {
	if w.app.builder.Page().ID != pageID {
		return
	}
	if w.app.pages.IsDirty() {
		wailsRuntime.EventsEmit(w.ctx, EventPageConflict, map[string]string{"pageId": pageID})
		return
	}
	if _, err := w.app.pages.OpenPage(pageID); err != nil {
		wailsRuntime.LogErrorf(w.ctx, "Reload page %s: %v", pageID, err)
		return
	}
	wailsRuntime.EventsEmit(w.ctx, EventPageChanged, map[string]string{"pageId": pageID})
}
