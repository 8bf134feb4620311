package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"pagebuilder/internal/block"
	"pagebuilder/internal/builder"
	"pagebuilder/internal/domain"
	"pagebuilder/internal/logging"
	"pagebuilder/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Page Service: persistence for the page open in the builder
// ─────────────────────────────────────────────────────────────

// Events emitted by PageService.
const (
	EventPageSaved    = "page:saved"
	EventPageImported = "page:imported"
	EventPageConflict = "mcp:page-conflict"
)

// PageService loads pages into the Builder and saves them back, keeping a
// revision per save.
type PageService struct {
	pages     *storage.PageStore
	revisions *storage.RevisionStore
	builder   *builder.Builder
	emitter   EventEmitter
	logger    *log.Logger
	saving    saveGuard
	export    ExportFunc

	mu           sync.Mutex
	savedVersion uint64
}

// ExportFunc writes a saved page somewhere outside the database.
type ExportFunc func(p *domain.Page) error

// NewPageService creates a PageService.
func NewPageService(
	pages *storage.PageStore,
	revisions *storage.RevisionStore,
	b *builder.Builder,
	emitter EventEmitter,
	logger *log.Logger,
) *PageService {
	return &PageService{
		pages:     pages,
		revisions: revisions,
		builder:   b,
		emitter:   emitter,
		logger:    logging.Or(logger),
	}
}

// SetExporter registers fn to run after every successful save. Export
// failures are logged and do not fail the save.
func (s *PageService) SetExporter(fn ExportFunc) {
	s.export = fn
}

// ── Pages ──────────────────────────────────────────────────

func (s *PageService) ListPages() ([]domain.Page, error) {
	return s.pages.ListPages()
}

func (s *PageService) GetPage(id string) (*domain.Page, error) {
	return s.pages.GetPage(id)
}

// CreatePage stores a new page holding a single root block.
func (s *PageService) CreatePage(name string) (*domain.Page, error) {
	if name == "" {
		return nil, &domain.ValidationError{Field: "name", Message: "page name is required"}
	}
	root := s.builder.GetRootBlock()
	p := &domain.Page{
		ID:       uuid.New().String(),
		Name:     name,
		PageName: name,
		Route:    domain.DefaultRoute(name),
		Blocks:   []domain.BlockSpec{root.Spec(true)},
	}
	if err := s.pages.CreatePage(p); err != nil {
		return nil, err
	}
	s.logger.Info("page created", "page", p.ID, "route", p.Route)
	return p, nil
}

// DuplicatePage stores a copy of page id under name. Block ids in the copy
// are fresh.
func (s *PageService) DuplicatePage(id, name string) (*domain.Page, error) {
	if name == "" {
		return nil, &domain.ValidationError{Field: "name", Message: "page name is required"}
	}
	src, err := s.pages.GetPage(id)
	if err != nil {
		return nil, err
	}
	blocks := make([]domain.BlockSpec, len(src.Blocks))
	for i, spec := range src.Blocks {
		blk, err := s.builder.GetBlockInstance(s.builder.GetSpecCopy(spec, false))
		if err != nil {
			return nil, fmt.Errorf("duplicate page %s: %w", id, err)
		}
		blocks[i] = blk.Spec(true)
	}
	p := &domain.Page{
		ID:       uuid.New().String(),
		Name:     name,
		PageName: name,
		Route:    domain.DefaultRoute(name),
		Blocks:   blocks,
	}
	if err := s.pages.CreatePage(p); err != nil {
		return nil, err
	}
	s.logger.Info("page duplicated", "page", p.ID, "from", id)
	return p, nil
}

// OpenPage loads a stored page into the builder.
func (s *PageService) OpenPage(id string) (*domain.Page, error) {
	p, err := s.pages.GetPage(id)
	if err != nil {
		return nil, err
	}
	if err := s.load(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PageService) load(p *domain.Page) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.builder.SetPage(p); err != nil {
		return err
	}
	s.savedVersion = s.builder.Version()
	return nil
}

func (s *PageService) RenamePage(id, name string) error {
	if name == "" {
		return &domain.ValidationError{Field: "name", Message: "page name is required"}
	}
	p, err := s.pages.GetPage(id)
	if err != nil {
		return err
	}
	p.Name = name
	p.PageName = name
	return s.pages.UpdatePage(p)
}

// DeletePage removes a page and its revisions. The open page cannot be deleted.
func (s *PageService) DeletePage(id string) error {
	if s.builder.Page().ID == id {
		return &domain.ValidationError{Field: "id", Message: "page is open in the editor"}
	}
	if err := s.revisions.DeleteRevisionsByPage(id); err != nil {
		return fmt.Errorf("delete revisions: %w", err)
	}
	return s.pages.DeletePage(id)
}

// ── Saving ─────────────────────────────────────────────────

// IsDirty reports whether the open page changed since it was loaded or saved.
func (s *PageService) IsDirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.builder.Page().ID != "" && s.builder.Version() != s.savedVersion
}

// SavePage writes the open page and records a revision labelled label.
func (s *PageService) SavePage(ctx context.Context, label string) (*domain.PageRevision, error) {
	page, version := s.builder.Snapshot()
	if page.ID == "" {
		return nil, &domain.ValidationError{Field: "page", Message: "no page is open"}
	}
	if !s.saving.TryLock(page.ID) {
		return nil, fmt.Errorf("save page %s: already running", page.ID)
	}
	defer s.saving.Unlock(page.ID)

	if err := s.pages.UpdatePage(&page); err != nil {
		return nil, fmt.Errorf("save page: %w", err)
	}
	rev := &domain.PageRevision{
		ID:     uuid.New().String(),
		PageID: page.ID,
		Label:  label,
		Blocks: page.Blocks,
	}
	if err := s.revisions.PushRevision(rev); err != nil {
		return nil, fmt.Errorf("save page: %w", err)
	}

	s.mu.Lock()
	s.savedVersion = version
	s.mu.Unlock()

	if s.export != nil {
		if err := s.export(&page); err != nil {
			s.logger.Warn("page export failed", "page", page.ID, "err", err)
		}
	}

	s.logger.Info("page saved", "page", page.ID, "revision", rev.ID, "label", label)
	s.emitter.Emit(ctx, EventPageSaved, map[string]string{"pageId": page.ID, "revisionId": rev.ID})
	return rev, nil
}

// Saving reports whether a save of the open page is in flight.
func (s *PageService) Saving() bool {
	return s.saving.Busy(s.builder.Page().ID)
}

// WaitSaves blocks until in-flight saves finish or ctx is done.
func (s *PageService) WaitSaves(ctx context.Context) {
	s.saving.WaitAll(ctx)
}

// ── Revisions ──────────────────────────────────────────────

func (s *PageService) ListRevisions(pageID string) ([]domain.PageRevision, error) {
	return s.revisions.ListRevisions(pageID)
}

// RestoreRevision opens the revision's page with the snapshot's blocks. The
// result is unsaved until the next SavePage.
func (s *PageService) RestoreRevision(id string) (*domain.Page, error) {
	rev, err := s.revisions.GetRevision(id)
	if err != nil {
		return nil, err
	}
	p, err := s.pages.GetPage(rev.PageID)
	if err != nil {
		return nil, err
	}
	p.Blocks = rev.Blocks
	if err := s.builder.SetPage(p); err != nil {
		return nil, fmt.Errorf("restore revision %s: %w", id, err)
	}
	s.logger.Info("revision restored", "page", p.ID, "revision", id)
	return p, nil
}

// ── Import ─────────────────────────────────────────────────

// ImportPage upserts p and reloads the editor when p is the open page.
func (s *PageService) ImportPage(ctx context.Context, p *domain.Page) error {
	if p.ID == "" {
		return &domain.ValidationError{Field: "id", Message: "imported page has no id"}
	}
	if err := block.ValidateSpecs(p.Blocks); err != nil {
		return fmt.Errorf("import page %s: %w", p.ID, err)
	}
	if p.Name == "" {
		p.Name = p.PageName
	}
	_, err := s.pages.GetPage(p.ID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		err = s.pages.CreatePage(p)
	case err == nil:
		err = s.pages.UpdatePage(p)
	}
	if err != nil {
		return fmt.Errorf("import page %s: %w", p.ID, err)
	}

	if s.builder.Page().ID == p.ID {
		if s.IsDirty() {
			s.logger.Warn("import skipped reload of edited page", "page", p.ID)
			s.emitter.Emit(ctx, EventPageConflict, map[string]string{"pageId": p.ID})
		} else if err := s.load(p); err != nil {
			return fmt.Errorf("import page %s: %w", p.ID, err)
		}
	}
	s.logger.Info("page imported", "page", p.ID)
	s.emitter.Emit(ctx, EventPageImported, map[string]string{"pageId": p.ID})
	return nil
}
