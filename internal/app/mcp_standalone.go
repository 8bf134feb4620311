package app

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"pagebuilder/internal/logging"
	mcpserver "pagebuilder/internal/mcp"
	"pagebuilder/internal/service"
	"pagebuilder/internal/storage"
)

// noopEmitter is a no-op EventEmitter used in MCP-only mode (no Wails frontend).
type noopEmitter struct{}

func (noopEmitter) Emit(_ context.Context, _ string, _ any) {}

// ServeMCP runs the app as a standalone MCP server on stdin/stdout with no GUI.
// It shares the desktop app's database; pages it saves are picked up by a
// running editor, and destructive tools wait for approval through the
// mcp_approvals table.
func ServeMCP() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// stdout carries the MCP protocol; logs go to stderr.
	cfg, cfgErr := loadConfig()
	logger := logging.FromConfig(cfg.LogLevel)
	if cfgErr != nil {
		logger.Warn("invalid config, using defaults", "err", cfgErr)
	}

	db, err := storage.New(cfg.DBPath(), filepath.Join(cfg.DataDir, "pages"))
	if err != nil {
		logger.Fatal("failed to open database", "err", err)
	}
	defer db.Close()

	svc := newServices(ctx, db, noopEmitter{}, logger)

	if id := service.NewSettingsService(db).LastPageID(); id != "" {
		if _, err := svc.pages.OpenPage(id); err != nil {
			logger.Warn("last page unavailable", "page", id, "err", err)
		}
	}

	mcpSrv := mcpserver.New(ctx, mcpserver.Deps{
		Emitter:    noopEmitter{},
		Builder:    svc.builder,
		Pages:      svc.pages,
		Components: svc.components,
		Logger:     logger,
		ApprovalDB: db.Conn(), // Enable SQLite-based approval IPC
	})

	if err := mcpSrv.ServeStdio(); err != nil {
		logger.Fatal("MCP server error", "err", err)
	}
}
