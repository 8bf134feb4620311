package service

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"pagebuilder/internal/block"
	"pagebuilder/internal/builder"
	"pagebuilder/internal/domain"
	"pagebuilder/internal/logging"
	"pagebuilder/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Component Service: the reusable component library
// ─────────────────────────────────────────────────────────────

const (
	EventComponentCreated = "component:created"
	EventComponentSaved   = "component:saved"
)

// ComponentService stores component definitions and places instances of
// them on the open page. It satisfies builder.Library.
type ComponentService struct {
	store   *storage.ComponentStore
	builder *builder.Builder
	emitter EventEmitter
	logger  *log.Logger
}

var _ builder.Library = (*ComponentService)(nil)

// NewComponentService creates a ComponentService and attaches it to b as
// the component library.
func NewComponentService(store *storage.ComponentStore, b *builder.Builder, emitter EventEmitter, logger *log.Logger) *ComponentService {
	s := &ComponentService{
		store:   store,
		builder: b,
		emitter: emitter,
		logger:  logging.Or(logger),
	}
	b.SetLibrary(s)
	return s
}

func (s *ComponentService) List() ([]domain.ComponentDefinition, error) {
	return s.store.ListComponents()
}

// Lookup resolves a component definition by id.
func (s *ComponentService) Lookup(id string) (*domain.ComponentDefinition, error) {
	return s.store.GetComponent(id)
}

// CreateFromBlock stores an exact copy of a page block as a new definition.
// The page itself is left unchanged.
func (s *ComponentService) CreateFromBlock(ctx context.Context, blockID, name string) (*domain.ComponentDefinition, error) {
	if name == "" {
		return nil, &domain.ValidationError{Field: "name", Message: "component name is required"}
	}
	blk := s.builder.FindBlock(blockID)
	if blk == nil {
		return nil, fmt.Errorf("create component: block %s: %w", blockID, domain.ErrNotFound)
	}
	if blk.IsRoot() {
		return nil, &domain.ValidationError{BlockID: blockID, Field: "kind", Message: "the root block cannot become a component"}
	}
	if blk.IsComponent() {
		return nil, &domain.ValidationError{BlockID: blockID, Field: "isComponent", Message: "block is already a component instance"}
	}

	def := &domain.ComponentDefinition{
		ID:    uuid.New().String(),
		Name:  name,
		Block: s.builder.GetBlockCopy(blk, true),
	}
	if err := s.store.CreateComponent(def); err != nil {
		return nil, err
	}
	s.logger.Info("component created", "component", def.ID, "from", blockID)
	s.emitter.Emit(ctx, EventComponentCreated, def)
	return def, nil
}

// InsertInstance appends an instance of componentID under parentID, or under
// the root when parentID is empty.
func (s *ComponentService) InsertInstance(componentID, parentID string) (*block.Block, error) {
	def, err := s.Lookup(componentID)
	if err != nil {
		return nil, err
	}
	return s.builder.InsertBlock(parentID, domain.BlockSpec{
		Kind:                  def.Block.Kind,
		IsComponent:           true,
		ReferencedComponentID: def.ID,
	})
}

// SaveEditedComponent writes the component canvas back to the definition
// being edited.
func (s *ComponentService) SaveEditedComponent(ctx context.Context) (*domain.ComponentDefinition, error) {
	if s.builder.EditingMode() != domain.EditingModeComponent {
		return nil, &domain.ValidationError{Field: "editingMode", Message: "not editing a component"}
	}
	editable := s.builder.EditableBlock()
	if editable == nil || !editable.IsComponent() {
		return nil, &domain.ValidationError{Field: "editableBlock", Message: "edited block is not a component instance"}
	}
	def, err := s.Lookup(editable.Component.ReferencedComponentID)
	if err != nil {
		return nil, err
	}
	specs := s.builder.ActiveSpecs()
	if len(specs) == 0 {
		return nil, &domain.ValidationError{Field: "block", Message: "component canvas is empty"}
	}
	def.Block = specs[0]
	if err := s.store.UpdateComponent(def); err != nil {
		return nil, err
	}
	s.logger.Info("component saved", "component", def.ID)
	s.emitter.Emit(ctx, EventComponentSaved, def)
	return def, nil
}

func (s *ComponentService) Delete(id string) error {
	return s.store.DeleteComponent(id)
}
