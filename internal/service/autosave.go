package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"

	"pagebuilder/internal/logging"
)

// ─────────────────────────────────────────────────────────────
// Autosave: periodic save of the open page when dirty
// ─────────────────────────────────────────────────────────────

// AutosaveLabel marks revisions written by the scheduler.
const AutosaveLabel = "autosave"

// AutosaveService saves the open page on a cron schedule.
type AutosaveService struct {
	pages  *PageService
	logger *log.Logger

	mu        sync.Mutex
	cronSched *cron.Cron
}

func NewAutosaveService(pages *PageService, logger *log.Logger) *AutosaveService {
	return &AutosaveService{pages: pages, logger: logging.Or(logger)}
}

// Start (re)schedules autosave with a cron spec such as "@every 30s".
// An empty spec disables it.
func (s *AutosaveService) Start(ctx context.Context, spec string) error {
	s.Stop()
	if spec == "" {
		s.logger.Info("autosave disabled")
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("autosave: invalid schedule %q: %w", spec, err)
	}
	c.Start()

	s.mu.Lock()
	s.cronSched = c
	s.mu.Unlock()
	s.logger.Info("autosave scheduled", "spec", spec)
	return nil
}

// RunOnce saves the open page if it is dirty and reports whether it did.
func (s *AutosaveService) RunOnce(ctx context.Context) bool {
	if !s.pages.IsDirty() || s.pages.Saving() {
		return false
	}
	if _, err := s.pages.SavePage(ctx, AutosaveLabel); err != nil {
		s.logger.Error("autosave failed", "err", err)
		return false
	}
	return true
}

// Stop halts the scheduler and waits for a running save to finish.
func (s *AutosaveService) Stop() {
	s.mu.Lock()
	c := s.cronSched
	s.cronSched = nil
	s.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}
