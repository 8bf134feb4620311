package app

import (
	"context"
	"fmt"
	"path/filepath"

	"pagebuilder/internal/logging"
	"pagebuilder/internal/pagefile"
	"pagebuilder/internal/storage"
)

// openHeadless opens the configured database and services without a GUI.
func openHeadless(ctx context.Context) (*storage.DB, services, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, services{}, fmt.Errorf("load config: %w", err)
	}
	db, err := storage.New(cfg.DBPath(), filepath.Join(cfg.DataDir, "pages"))
	if err != nil {
		return nil, services{}, fmt.Errorf("open database: %w", err)
	}
	return db, newServices(ctx, db, noopEmitter{}, logging.FromConfig(cfg.LogLevel)), nil
}

// ExportPages writes every stored page to dir as page files and returns the
// paths written.
func ExportPages(ctx context.Context, dir string) ([]string, error) {
	db, svc, err := openHeadless(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	headers, err := svc.pages.ListPages()
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(headers))
	for _, h := range headers {
		p, err := svc.pages.GetPage(h.ID)
		if err != nil {
			return paths, err
		}
		path, err := pagefile.Export(dir, p)
		if err != nil {
			return paths, fmt.Errorf("export %s: %w", h.ID, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// ImportPageFiles validates and stores each page file.
func ImportPageFiles(ctx context.Context, paths []string) error {
	db, svc, err := openHeadless(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, path := range paths {
		p, err := pagefile.Import(path)
		if err != nil {
			return err
		}
		if err := svc.pages.ImportPage(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
