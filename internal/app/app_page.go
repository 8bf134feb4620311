package app

// ─────────────────────────────────────────────────────────────
// Page Handlers: thin delegates to PageService
// ─────────────────────────────────────────────────────────────

import (
	"path/filepath"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/pagefile"
	"pagebuilder/internal/service"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// ── Pages ──────────────────────────────────────────────────

func (a *App) ListPages() ([]domain.Page, error) {
	return a.pages.ListPages()
}

func (a *App) CreatePage(name string) (*domain.Page, error) {
	return a.pages.CreatePage(name)
}

// DuplicatePage stores a copy of a page with fresh block ids.
func (a *App) DuplicatePage(id, name string) (*domain.Page, error) {
	return a.pages.DuplicatePage(id, name)
}

// OpenPage loads a page into the editor and returns its full state.
func (a *App) OpenPage(id string) (*domain.PageState, error) {
	wailsRuntime.LogInfof(a.ctx, "[OpenPage] loading page: %s", id)
	if _, err := a.pages.OpenPage(id); err != nil {
		return nil, err
	}
	if err := a.settings.SetLastPageID(id); err != nil {
		wailsRuntime.LogWarningf(a.ctx, "Remember last page: %v", err)
	}
	a.watcher.SetPage(id)
	state := a.builder.State()
	return &state, nil
}

func (a *App) RenamePage(id, name string) error {
	return a.pages.RenamePage(id, name)
}

func (a *App) DeletePage(id string) error {
	return a.pages.DeletePage(id)
}

// SavePage saves the open page with a user label.
func (a *App) SavePage(label string) (*domain.PageRevision, error) {
	if label == "" {
		label = "manual"
	}
	return a.pages.SavePage(a.ctx, label)
}

func (a *App) IsDirty() bool {
	return a.pages.IsDirty()
}

// ── Revisions ──────────────────────────────────────────────

func (a *App) ListRevisions(pageID string) ([]domain.PageRevision, error) {
	return a.pages.ListRevisions(pageID)
}

func (a *App) RestoreRevision(id string) (*domain.PageState, error) {
	if _, err := a.pages.RestoreRevision(id); err != nil {
		return nil, err
	}
	state := a.builder.State()
	return &state, nil
}

// ── Files ──────────────────────────────────────────────────

// ImportPageFile reads a page JSON file picked by the user and stores it.
func (a *App) ImportPageFile() (*domain.Page, error) {
	path, err := wailsRuntime.OpenFileDialog(a.ctx, wailsRuntime.OpenDialogOptions{
		Title: "Import Page",
		Filters: []wailsRuntime.FileFilter{
			{DisplayName: "Page Files", Pattern: "*" + pagefile.Ext},
			{DisplayName: "All Files", Pattern: "*.*"},
		},
	})
	if err != nil || path == "" {
		return nil, err
	}
	p, err := pagefile.Import(path)
	if err != nil {
		return nil, err
	}
	if err := a.pages.ImportPage(a.ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ExportPageFile writes the open page's stored version to the export
// directory and returns the file path.
func (a *App) ExportPageFile(id string) (string, error) {
	p, err := a.pages.GetPage(id)
	if err != nil {
		return "", err
	}
	if err := a.exportPage(p); err != nil {
		return "", err
	}
	return filepath.Join(a.exportDir, pagefile.FileName(id)), nil
}

// ── Settings ───────────────────────────────────────────────

func (a *App) GetWindowSize() service.WindowSize {
	return a.settings.LoadWindowSize()
}

func (a *App) SaveWindowSize(width, height int) error {
	return a.settings.SaveWindowSize(width, height)
}
