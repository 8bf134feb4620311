// Package pagefile reads and writes pages as JSON documents on disk so they
// can be versioned or edited outside the builder.
package pagefile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pagebuilder/internal/block"
	"pagebuilder/internal/domain"
)

// Ext is the suffix of page files.
const Ext = ".page.json"

// FileName returns the file a page is exported to.
func FileName(pageID string) string {
	return pageID + Ext
}

// IsPageFile reports whether path looks like an exported page.
func IsPageFile(path string) bool {
	return strings.HasSuffix(path, Ext)
}

// Export writes page to dir and returns the file path. The write goes
// through a temp file so a watcher never sees a half-written document.
func Export(dir string, page *domain.Page) (string, error) {
	if page.ID == "" {
		return "", &domain.ValidationError{Field: "id", Message: "page has no id"}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	data, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode page: %w", err)
	}

	path := filepath.Join(dir, FileName(page.ID))
	tmp, err := os.CreateTemp(dir, ".export-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write page: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write page: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write page: %w", err)
	}
	return path, nil
}

// Import parses and validates a page file. The page id defaults to the
// file name when the document omits it.
func Import(path string) (*domain.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read page file: %w", err)
	}
	page := &domain.Page{}
	if err := json.Unmarshal(data, page); err != nil {
		return nil, fmt.Errorf("parse page file %s: %w", filepath.Base(path), err)
	}
	if page.ID == "" {
		page.ID = strings.TrimSuffix(filepath.Base(path), Ext)
	}
	if page.PageName == "" {
		page.PageName = page.Name
	}
	if err := block.ValidateSpecs(page.Blocks); err != nil {
		return nil, fmt.Errorf("page file %s: %w", filepath.Base(path), err)
	}
	return page, nil
}
