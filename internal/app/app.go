package app

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"

	"github.com/charmbracelet/log"
	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"pagebuilder/internal/builder"
	"pagebuilder/internal/config"
	"pagebuilder/internal/domain"
	"pagebuilder/internal/logging"
	mcpserver "pagebuilder/internal/mcp"
	"pagebuilder/internal/pagefile"
	"pagebuilder/internal/service"
	"pagebuilder/internal/storage"
)

// App is the main Wails application struct.
// All exported methods are available as Wails bindings.
type App struct {
	ctx    context.Context
	cfg    *config.Config
	logger *log.Logger

	db         *storage.DB
	builder    *builder.Builder
	pages      *service.PageService
	components *service.ComponentService
	autosave   *service.AutosaveService
	settings   *service.SettingsService

	files     *pagefile.Watcher
	exportDir string
	watcher   *pageWatcher
	mcp       *mcpserver.Server
}

// New creates a new App.
func New() *App {
	return &App{}
}

// wailsEmitter implements service.EventEmitter via wailsRuntime.
type wailsEmitter struct{}

func (wailsEmitter) Emit(ctx context.Context, event string, data any) {
	wailsRuntime.EventsEmit(ctx, event, data)
}

// services is the wiring shared by the desktop app and the standalone MCP
// server.
type services struct {
	builder    *builder.Builder
	pages      *service.PageService
	components *service.ComponentService
}

func newServices(ctx context.Context, db *storage.DB, emitter service.EventEmitter, logger *log.Logger) services {
	b := builder.New(ctx, builder.Options{Emitter: emitter, Logger: logger})
	return services{
		builder:    b,
		pages:      service.NewPageService(storage.NewPageStore(db), storage.NewRevisionStore(db), b, emitter, logger),
		components: service.NewComponentService(storage.NewComponentStore(db), b, emitter, logger),
	}
}

// loadConfig reads builder.yaml from the default data directory, falling
// back to defaults when the file is broken.
func loadConfig() (*config.Config, error) {
	dir := config.DefaultDataDir()
	cfg, err := config.LoadFromDir(dir)
	if err != nil {
		cfg = config.Default()
	}
	return cfg, err
}

// Startup is called when the app starts.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx

	// macOS: disable "Press and Hold" accent popup so key repeat works in the WebView.
	exec.Command("defaults", "write", "com.wails.pagebuilder", "ApplePressAndHoldEnabled", "-bool", "false").Run()

	cfg, err := loadConfig()
	if err != nil {
		wailsRuntime.LogErrorf(ctx, "Invalid config, using defaults: %v", err)
	}
	a.cfg = cfg
	a.logger = logging.FromConfig(cfg.LogLevel)

	db, err := storage.New(cfg.DBPath(), filepath.Join(cfg.DataDir, "pages"))
	if err != nil {
		wailsRuntime.LogFatalf(ctx, "Failed to open database: %v", err)
		return
	}
	a.db = db

	emitter := wailsEmitter{}
	svc := newServices(ctx, db, emitter, a.logger)
	a.builder = svc.builder
	a.pages = svc.pages
	a.components = svc.components
	a.settings = service.NewSettingsService(db)

	a.exportDir = cfg.WatchDir
	if a.exportDir == "" {
		a.exportDir = db.DataDir()
	}
	a.pages.SetExporter(a.exportPage)

	if cfg.WatchDir != "" {
		a.startFileWatcher(cfg.WatchDir)
	}

	a.autosave = service.NewAutosaveService(a.pages, a.logger)
	if err := a.autosave.Start(ctx, cfg.Autosave); err != nil {
		wailsRuntime.LogErrorf(ctx, "Autosave disabled: %v", err)
	}

	a.mcp = mcpserver.New(ctx, mcpserver.Deps{
		Emitter:    emitter,
		Builder:    a.builder,
		Pages:      a.pages,
		Components: a.components,
		Logger:     a.logger,
	})

	a.watcher = newPageWatcher(ctx, a)
	a.watcher.Start()

	size := a.settings.LoadWindowSize()
	wailsRuntime.WindowSetSize(ctx, size.Width, size.Height)

	a.openInitialPage()
}

// openInitialPage reopens the last page, or creates the default page on a
// fresh install.
func (a *App) openInitialPage() {
	if id := a.settings.LastPageID(); id != "" {
		if _, err := a.OpenPage(id); err == nil {
			return
		}
		wailsRuntime.LogInfof(a.ctx, "Last page %s unavailable", id)
	}
	pages, err := a.pages.ListPages()
	if err != nil {
		wailsRuntime.LogErrorf(a.ctx, "List pages: %v", err)
		return
	}
	if len(pages) > 0 {
		a.OpenPage(pages[0].ID)
		return
	}
	p, err := a.pages.CreatePage(a.cfg.DefaultPage)
	if err != nil {
		wailsRuntime.LogErrorf(a.ctx, "Create default page: %v", err)
		return
	}
	a.OpenPage(p.ID)
}

func (a *App) startFileWatcher(dir string) {
	w, err := pagefile.NewWatcher(func(p *domain.Page) {
		if err := a.pages.ImportPage(a.ctx, p); err != nil {
			wailsRuntime.LogErrorf(a.ctx, "Import %s: %v", p.ID, err)
		}
	}, a.logger)
	if err != nil {
		wailsRuntime.LogErrorf(a.ctx, "Failed to create page file watcher: %v", err)
		return
	}
	if err := w.Add(dir); err != nil {
		wailsRuntime.LogErrorf(a.ctx, "Watch %s: %v", dir, err)
		w.Close()
		return
	}
	a.files = w
}

// exportPage runs after every save. It writes the page to the export
// directory without triggering a re-import.
func (a *App) exportPage(p *domain.Page) error {
	if a.watcher != nil {
		a.watcher.MarkSaved()
	}
	if a.files != nil {
		a.files.Ignore(filepath.Join(a.exportDir, pagefile.FileName(p.ID)))
	}
	_, err := pagefile.Export(a.exportDir, p)
	return err
}

// Shutdown is called when the app is closing.
func (a *App) Shutdown(ctx context.Context) {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.autosave != nil {
		a.autosave.Stop()
	}
	if a.pages != nil {
		if a.pages.IsDirty() {
			if _, err := a.pages.SavePage(ctx, service.AutosaveLabel); err != nil && !errors.Is(err, domain.ErrValidation) {
				wailsRuntime.LogErrorf(ctx, "Final save failed: %v", err)
			}
		}
		a.pages.WaitSaves(ctx)
	}
	if a.files != nil {
		a.files.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
