// Package builder holds the open document: the page tree, the component
// canvas and the editor session, plus the operations the UI drives them with.
//
// All mutations arrive as discrete UI events. Builder serialises its public
// methods so a Wails binding, an MCP tool call and a file watcher callback
// never interleave; blocks handed out must only be changed through Builder.
package builder

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"pagebuilder/internal/block"
	"pagebuilder/internal/blocktemplate"
	"pagebuilder/internal/domain"
	"pagebuilder/internal/logging"
)

// Library resolves component references. Lookups are by id only.
type Library interface {
	Lookup(id string) (*domain.ComponentDefinition, error)
}

// Options configures a Builder. Zero values fall back to defaults.
type Options struct {
	Templates *blocktemplate.Factory
	IDGen     block.IDGenerator
	Library   Library
	Emitter   EventEmitter
	Logger    *log.Logger
}

// Builder is the active-document context.
type Builder struct {
	mu sync.Mutex

	ctx       context.Context
	templates *blocktemplate.Factory
	gen       block.IDGenerator
	library   Library
	emitter   EventEmitter
	logger    *log.Logger

	page      *Tree
	component *Tree
	session   *Session

	selectedPage string
	pageName     string
	route        string
	version      uint64
}

// New creates a Builder holding an empty page named "Home".
func New(ctx context.Context, opts Options) *Builder {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Templates == nil {
		opts.Templates = blocktemplate.New()
	}
	if opts.IDGen == nil {
		opts.IDGen = block.UUID
	}
	if opts.Emitter == nil {
		opts.Emitter = noopEmitter{}
	}
	return &Builder{
		ctx:       ctx,
		templates: opts.Templates,
		gen:       opts.IDGen,
		library:   opts.Library,
		emitter:   opts.Emitter,
		logger:    logging.Or(opts.Logger),
		page:      NewTree(opts.Templates, opts.IDGen),
		component: NewTree(opts.Templates, opts.IDGen),
		session:   NewSession(ctx, opts.Emitter),
		pageName:  "Home",
		route:     "/",
	}
}

// SetLibrary attaches the component library used by EditComponent.
func (b *Builder) SetLibrary(l Library) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.library = l
}

// Templates exposes the template factory.
func (b *Builder) Templates() *blocktemplate.Factory {
	return b.templates
}

// ── Tree operations ────────────────────────────────────────

// ClearBlocks resets the page to a single fresh root.
func (b *Builder) ClearBlocks() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.page.ClearBlocks()
	b.session.ClearSelection()
	b.changed()
}

// PushBlocks replaces the page when the first spec is a root, otherwise
// appends every spec to the current root.
func (b *Builder) PushBlocks(specs []domain.BlockSpec) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.pushBlocks(specs); err != nil {
		return err
	}
	b.changed()
	return nil
}

func (b *Builder) pushBlocks(specs []domain.BlockSpec) error {
	replacing := len(specs) > 0 && specs[0].IsRoot()
	if err := b.page.PushBlocks(specs); err != nil {
		return fmt.Errorf("push blocks: %w", err)
	}
	if replacing {
		b.session.ClearSelection()
	}
	return nil
}

// GetBlockInstance builds a detached block from spec, choosing the component
// variant when spec.IsComponent is set. Fresh ids never collide with the page.
func (b *Builder) GetBlockInstance(spec domain.BlockSpec) (*block.Block, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.page.Instance(spec)
}

// GetBlockCopy returns an independent wire-form copy of blk. Without
// retainID every id is stripped so instancing the copy yields fresh ids.
func (b *Builder) GetBlockCopy(blk *block.Block, retainID bool) domain.BlockSpec {
	b.mu.Lock()
	defer b.mu.Unlock()
	return blk.Spec(retainID)
}

// GetSpecCopy is GetBlockCopy for a spec that has not been instanced.
func (b *Builder) GetSpecCopy(spec domain.BlockSpec, retainID bool) domain.BlockSpec {
	return spec.Clone(retainID)
}

// GetRootBlock returns a fresh, detached root block.
func (b *Builder) GetRootBlock() *block.Block {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.page.NewRoot()
}

// GetPageData returns the page's top-level blocks for serialisation.
func (b *Builder) GetPageData() []*block.Block {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.page.Blocks()
}

// PageSpecs returns a detached copy of the page, ids retained.
func (b *Builder) PageSpecs() []domain.BlockSpec {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.page.Specs()
}

// FindBlock searches the page tree, or scope when given.
func (b *Builder) FindBlock(id string, scope ...*block.Block) *block.Block {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.page.FindBlock(id, scope...)
}

// FindParentBlock returns the parent of id in the page tree, or scope when given.
func (b *Builder) FindParentBlock(id string, scope ...*block.Block) *block.Block {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.page.FindParentBlock(id, scope...)
}

// FindActiveParentBlock returns the parent of id in the active tree.
func (b *Builder) FindActiveParentBlock(id string) *block.Block {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.activeTree().FindParentBlock(id)
}

// DuplicateBlock clones a block of the active tree next to the original and
// selects the clone.
func (b *Builder) DuplicateBlock(id string) (*block.Block, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	dup, err := b.activeTree().DuplicateBlock(id)
	if err != nil {
		return nil, err
	}
	b.session.Select(dup)
	b.changed()
	return dup, nil
}

// RemoveBlock detaches a block of the active tree and drops it, and its
// descendants, from the selection.
func (b *Builder) RemoveBlock(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	removed, err := b.activeTree().RemoveBlock(id)
	if err != nil {
		return err
	}
	var ids []string
	removed.Walk(func(x *block.Block) bool {
		ids = append(ids, x.ID)
		return true
	})
	b.session.Deselect(ids...)
	if e := b.session.EditableBlock(); e != nil && removed.Contains(e) {
		b.session.SetEditable(nil)
	}
	b.changed()
	return nil
}

// MoveBlock re-parents a block within the active tree.
func (b *Builder) MoveBlock(id, parentID string, index int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.activeTree().MoveBlock(id, parentID, index); err != nil {
		return err
	}
	b.changed()
	return nil
}

// InsertBlock instances spec and appends it to parentID in the active tree,
// or to the root when parentID is empty.
func (b *Builder) InsertBlock(parentID string, spec domain.BlockSpec) (*block.Block, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := b.activeTree()
	parent := t.Root()
	if parentID != "" {
		parent = t.FindBlock(parentID)
	}
	if parent == nil {
		return nil, fmt.Errorf("insert block: parent %s: %w", parentID, domain.ErrNotFound)
	}
	if spec.IsRoot() {
		return nil, &domain.ValidationError{Field: "kind", Message: "a page has exactly one root"}
	}
	blk, err := t.Instance(spec)
	if err != nil {
		return nil, fmt.Errorf("insert block: %w", err)
	}
	parent.Children = append(parent.Children, blk)
	b.changed()
	return blk, nil
}

// UpdateBlock edits a block of the active tree. attrs are merged into the
// attributes, or into the overrides of a component instance; styles are
// merged into the active breakpoint's layer. An empty value deletes the key.
func (b *Builder) UpdateBlock(id string, attrs map[string]string, styles domain.StyleMap) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	blk := b.activeTree().FindBlock(id)
	if blk == nil {
		return fmt.Errorf("update block %s: %w", id, domain.ErrNotFound)
	}
	if len(attrs) > 0 {
		target := &blk.Attributes
		if blk.Component != nil {
			target = &blk.Component.Overrides
		}
		*target = mergeValues(*target, attrs)
	}
	if len(styles) > 0 {
		bp := b.session.ActiveBreakpoint()
		if blk.Styles == nil {
			blk.Styles = domain.Styles{}
		}
		blk.Styles[bp] = mergeValues(blk.Styles[bp], styles)
		if len(blk.Styles[bp]) == 0 {
			delete(blk.Styles, bp)
		}
	}
	b.changed()
	return nil
}

func mergeValues[M ~map[string]string](dst, src M) M {
	if dst == nil {
		dst = M{}
	}
	for k, v := range src {
		if v == "" {
			delete(dst, k)
			continue
		}
		dst[k] = v
	}
	return dst
}

// ── Page lifecycle ─────────────────────────────────────────

// SetPage loads page into the editor. A nil page is ignored. The route
// defaults to one derived from the page name.
func (b *Builder) SetPage(page *domain.Page) error {
	if page == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	// A rejected page leaves the open one intact.
	scratch := NewTree(b.templates, b.gen)
	if err := scratch.PushBlocks(page.Blocks); err != nil {
		b.logger.Error("page load failed", "page", page.ID, "err", err)
		return fmt.Errorf("set page %s: push blocks: %w", page.ID, err)
	}
	b.page.blocks = scratch.blocks
	name := page.PageName
	if name == "" {
		name = page.Name
	}
	b.pageName = name
	b.route = page.Route
	if b.route == "" {
		b.route = domain.DefaultRoute(name)
	}
	b.selectedPage = page.ID
	b.session.Reset()
	b.component.ClearBlocks()
	b.version++

	b.logger.Info("page loaded", "page", page.ID, "name", name, "blocks", b.page.Len())
	b.emitter.Emit(b.ctx, EventPageLoaded, map[string]string{"pageId": page.ID, "route": b.route})
	return nil
}

// Page describes the open page: identity, name, route and current blocks.
func (b *Builder) Page() domain.Page {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pageLocked()
}

// Snapshot returns the open page together with the version it reflects.
func (b *Builder) Snapshot() (domain.Page, uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pageLocked(), b.version
}

func (b *Builder) pageLocked() domain.Page {
	return domain.Page{
		ID:       b.selectedPage,
		Name:     b.pageName,
		PageName: b.pageName,
		Route:    b.route,
		Blocks:   b.page.Specs(),
	}
}

// GetImageBlock builds an image spec for src. A non-empty alt has its file
// extension stripped.
func (b *Builder) GetImageBlock(src, alt string) (domain.BlockSpec, error) {
	spec, err := b.templates.Template(domain.BlockKindImage)
	if err != nil {
		return domain.BlockSpec{}, err
	}
	if spec.Attributes == nil {
		spec.Attributes = map[string]string{}
	}
	spec.Attributes["src"] = src
	if alt = stripExtension(alt); alt != "" {
		spec.Attributes["alt"] = alt
	}
	return spec, nil
}

// Version increments on every structural change; persistence compares it to
// decide whether the page is dirty.
func (b *Builder) Version() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.version
}

// ── Session ────────────────────────────────────────────────

// SelectBlock applies a canvas click on blk.
func (b *Builder) SelectBlock(blk *block.Block, modifier, scrollIntoView bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.session.SelectBlock(blk, modifier, scrollIntoView)
}

// SelectBlockByID resolves id in the active tree and selects it.
func (b *Builder) SelectBlockByID(id string, modifier, scrollIntoView bool) (*block.Block, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	blk := b.activeTree().FindBlock(id)
	if blk == nil {
		return nil, fmt.Errorf("select block %s: %w", id, domain.ErrNotFound)
	}
	b.session.SelectBlock(blk, modifier, scrollIntoView)
	return blk, nil
}

// ClearSelection deselects everything.
func (b *Builder) ClearSelection() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.session.ClearSelection()
}

// IsSelected reports whether blk is selected.
func (b *Builder) IsSelected(blk *block.Block) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session.IsSelected(blk)
}

// SelectedBlocks resolves the selection against the active tree.
func (b *Builder) SelectedBlocks() []*block.Block {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := b.activeTree()
	var out []*block.Block
	for _, id := range b.session.SelectedIDs() {
		if blk := t.FindBlock(id); blk != nil {
			out = append(out, blk)
		}
	}
	return out
}

// EditComponent opens blk for component editing. When the referenced
// definition is in the library it is loaded into the component canvas;
// otherwise the canvas shows a copy of the instance itself. blk is resolved
// against the page tree; a block found only on the canvas is ignored.
func (b *Builder) EditComponent(blk *block.Block) {
	b.mu.Lock()
	defer b.mu.Unlock()

	onPage := b.page.FindBlock(blk.ID)
	if onPage == nil {
		b.logger.Warn("edit component: block is not on the page", "block", blk.ID)
		return
	}
	blk = onPage
	spec := blk.Spec(true)
	if blk.Component != nil && b.library != nil {
		def, err := b.library.Lookup(blk.Component.ReferencedComponentID)
		switch {
		case err != nil:
			b.logger.Warn("component definition unavailable", "component", blk.Component.ReferencedComponentID, "err", err)
		case def != nil:
			spec = b.GetSpecCopy(def.Block, true)
		}
	}
	if err := b.component.Load(spec); err != nil {
		b.logger.Warn("component canvas load failed", "block", blk.ID, "err", err)
		b.component.ClearBlocks()
	}
	b.session.ClearSelection()
	b.session.EditComponent(blk)
}

// EditPage returns to page editing.
func (b *Builder) EditPage() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.session.ClearSelection()
	b.session.EditPage()
}

// ActiveTree is the page tree in page mode and the component canvas in
// component mode.
func (b *Builder) ActiveTree() *Tree {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.activeTree()
}

// FindActiveBlock searches the active tree.
func (b *Builder) FindActiveBlock(id string) *block.Block {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.activeTree().FindBlock(id)
}

// ActiveSpecs returns a detached copy of the active tree, ids retained.
func (b *Builder) ActiveSpecs() []domain.BlockSpec {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.activeTree().Specs()
}

func (b *Builder) activeTree() *Tree {
	if b.session.EditingMode() == domain.EditingModeComponent {
		return b.component
	}
	return b.page
}

// EditingMode returns the current editing mode.
func (b *Builder) EditingMode() domain.EditingMode {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session.EditingMode()
}

// EditableBlock returns the block open for focused editing, if any.
func (b *Builder) EditableBlock() *block.Block {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session.EditableBlock()
}

// SetEditableBlock opens a block of the active tree for inline editing.
func (b *Builder) SetEditableBlock(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	blk := b.activeTree().FindBlock(id)
	if blk == nil {
		return fmt.Errorf("edit block %s: %w", id, domain.ErrNotFound)
	}
	b.session.SetEditable(blk)
	return nil
}

func (b *Builder) SetHoveredBlock(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.session.SetHovered(id)
}

func (b *Builder) SetActiveBreakpoint(bp domain.Breakpoint) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session.SetActiveBreakpoint(bp)
}

func (b *Builder) SetMode(m domain.CanvasMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.session.SetMode(m)
}

// State snapshots the active canvas and session for the UI.
func (b *Builder) State() domain.PageState {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := domain.SessionState{
		SelectedPage:     b.selectedPage,
		PageName:         b.pageName,
		Route:            b.route,
		SelectedBlockIDs: b.session.SelectedIDs(),
		HoveredBlockID:   b.session.Hovered(),
		ActiveBreakpoint: b.session.ActiveBreakpoint(),
		EditingMode:      b.session.EditingMode(),
		Mode:             b.session.Mode(),
	}
	if e := b.session.EditableBlock(); e != nil {
		s.EditableBlockID = e.ID
	}
	return domain.PageState{Blocks: b.activeTree().Specs(), Session: s}
}

// changed records a structural mutation. Caller holds mu.
func (b *Builder) changed() {
	b.version++
	b.emitter.Emit(b.ctx, EventBlocksChanged, map[string]any{
		"pageId":  b.selectedPage,
		"version": b.version,
	})
}

func stripExtension(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}
