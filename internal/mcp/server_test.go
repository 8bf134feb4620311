package mcpserver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagebuilder/internal/builder"
	"pagebuilder/internal/domain"
	"pagebuilder/internal/logging"
	"pagebuilder/internal/service"
	"pagebuilder/internal/storage"
)

// answeringEmitter records events and answers approval requests as they
// arrive.
type answeringEmitter struct {
	mu      sync.Mutex
	events  []string
	approve bool
	srv     *Server
}

func (e *answeringEmitter) Emit(_ context.Context, event string, data any) {
	e.mu.Lock()
	e.events = append(e.events, event)
	srv, approve := e.srv, e.approve
	e.mu.Unlock()
	if action, ok := data.(PendingAction); ok && event == EventApprovalRequired && srv != nil {
		if approve {
			srv.Approve(action.ID)
		} else {
			srv.Reject(action.ID)
		}
	}
}

func (e *answeringEmitter) count(event string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, ev := range e.events {
		if ev == event {
			n++
		}
	}
	return n
}

type testEnv struct {
	srv     *Server
	builder *builder.Builder
	pages   *service.PageService
	emitter *answeringEmitter
	db      *storage.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	db, err := storage.New(filepath.Join(dir, "test.db"), dir)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	em := &answeringEmitter{approve: true}
	b := builder.New(ctx, builder.Options{Emitter: em, Logger: logging.Discard()})
	pages := service.NewPageService(storage.NewPageStore(db), storage.NewRevisionStore(db), b, em, logging.Discard())
	components := service.NewComponentService(storage.NewComponentStore(db), b, em, logging.Discard())

	srv := New(ctx, Deps{
		Emitter:    em,
		Builder:    b,
		Pages:      pages,
		Components: components,
		Logger:     logging.Discard(),
	})
	srv.approval.SetTimeout(2 * time.Second)
	em.srv = srv

	p, err := pages.CreatePage("Home")
	require.NoError(t, err)
	_, err = pages.OpenPage(p.ID)
	require.NoError(t, err)

	return &testEnv{srv: srv, builder: b, pages: pages, emitter: em, db: db}
}

func callReq(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func decodeSpec(t *testing.T, res *mcp.CallToolResult) domain.BlockSpec {
	t.Helper()
	var spec domain.BlockSpec
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &spec))
	return spec
}

func (e *testEnv) rootID() string {
	return e.builder.GetRootBlock().ID
}

func TestPushBlocksAndGetPageData(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	_, err := e.srv.handlePushBlocks(ctx, callReq(map[string]any{
		"blocks": `[{"kind":"text","attributes":{"text":"one"}},{"kind":"text","attributes":{"text":"two"}}]`,
	}))
	require.NoError(t, err)
	assert.Equal(t, 1, e.emitter.count("mcp:blocks-changed"))

	res, err := e.srv.handleGetPageData(ctx, callReq(nil))
	require.NoError(t, err)
	var specs []domain.BlockSpec
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &specs))
	require.Len(t, specs, 1)
	require.Len(t, specs[0].Children, 2)
	assert.Equal(t, "two", specs[0].Children[1].Attributes["text"])

	_, err = e.srv.handlePushBlocks(ctx, callReq(map[string]any{"blocks": `not json`}))
	assert.Error(t, err)
	_, err = e.srv.handlePushBlocks(ctx, callReq(map[string]any{}))
	assert.Error(t, err)
}

func TestInsertBlockWithAttributes(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	res, err := e.srv.handleInsertBlock(ctx, callReq(map[string]any{
		"kind":       "text",
		"attributes": `{"text":"Hello"}`,
	}))
	require.NoError(t, err)
	spec := decodeSpec(t, res)
	assert.Equal(t, domain.BlockKindText, spec.Kind)
	assert.Equal(t, "Hello", spec.Attributes["text"])
	assert.NotEmpty(t, spec.BlockID)
	assert.NotNil(t, e.builder.FindBlock(spec.BlockID))

	_, err = e.srv.handleInsertBlock(ctx, callReq(map[string]any{"kind": "marquee"}))
	assert.Error(t, err)
	_, err = e.srv.handleInsertBlock(ctx, callReq(map[string]any{"kind": "text", "parentId": "ghost"}))
	assert.Error(t, err)
}

func TestInsertImageDefaultsAlt(t *testing.T) {
	e := newTestEnv(t)
	res, err := e.srv.handleInsertImage(context.Background(), callReq(map[string]any{
		"src": "https://cdn.example.com/img/sunset.jpg",
	}))
	require.NoError(t, err)
	spec := decodeSpec(t, res)
	assert.Equal(t, domain.BlockKindImage, spec.Kind)
	assert.Equal(t, "sunset", spec.Attributes["alt"])
}

func TestFindDuplicateMove(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	res, err := e.srv.handleInsertBlock(ctx, callReq(map[string]any{"kind": "container"}))
	require.NoError(t, err)
	box := decodeSpec(t, res)
	res, err = e.srv.handleInsertBlock(ctx, callReq(map[string]any{"kind": "text"}))
	require.NoError(t, err)
	txt := decodeSpec(t, res)

	res, err = e.srv.handleFindParentBlock(ctx, callReq(map[string]any{"blockId": txt.BlockID}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), e.rootID())

	_, err = e.srv.handleMoveBlock(ctx, callReq(map[string]any{
		"blockId":  txt.BlockID,
		"parentId": box.BlockID,
		"index":    float64(0),
	}))
	require.NoError(t, err)
	assert.Equal(t, box.BlockID, e.builder.FindParentBlock(txt.BlockID).ID)

	res, err = e.srv.handleDuplicateBlock(ctx, callReq(map[string]any{"blockId": box.BlockID}))
	require.NoError(t, err)
	dup := decodeSpec(t, res)
	assert.NotEqual(t, box.BlockID, dup.BlockID)
	require.Len(t, dup.Children, 1)
	assert.NotEqual(t, txt.BlockID, dup.Children[0].BlockID)
	assert.True(t, e.builder.IsSelected(e.builder.FindBlock(dup.BlockID)))

	_, err = e.srv.handleFindBlock(ctx, callReq(map[string]any{"blockId": "ghost"}))
	assert.Error(t, err)
	_, err = e.srv.handleMoveBlock(ctx, callReq(map[string]any{"blockId": box.BlockID, "parentId": txt.BlockID}))
	assert.Error(t, err, "cannot move into own subtree")
}

func TestUpdateBlock(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	res, err := e.srv.handleInsertBlock(ctx, callReq(map[string]any{
		"kind":       "text",
		"attributes": `{"text":"draft"}`,
	}))
	require.NoError(t, err)
	txt := decodeSpec(t, res)

	res, err = e.srv.handleUpdateBlock(ctx, callReq(map[string]any{
		"blockId":    txt.BlockID,
		"attributes": `{"text":"final"}`,
		"styles":     `{"color":"red"}`,
	}))
	require.NoError(t, err)
	updated := decodeSpec(t, res)
	assert.Equal(t, "final", updated.Attributes["text"])
	assert.Equal(t, "red", updated.Styles[domain.BreakpointDesktop]["color"])

	_, err = e.srv.handleUpdateBlock(ctx, callReq(map[string]any{
		"blockId": txt.BlockID,
		"styles":  `{"color":""}`,
	}))
	require.NoError(t, err)
	assert.NotContains(t, e.builder.FindBlock(txt.BlockID).Styles[domain.BreakpointDesktop], "color")

	_, err = e.srv.handleUpdateBlock(ctx, callReq(map[string]any{"blockId": txt.BlockID}))
	assert.Error(t, err, "nothing to update")
	_, err = e.srv.handleUpdateBlock(ctx, callReq(map[string]any{"blockId": "ghost", "styles": `{"color":"red"}`}))
	assert.Error(t, err)
}

func TestRemoveBlockApproval(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	res, err := e.srv.handleInsertBlock(ctx, callReq(map[string]any{"kind": "text"}))
	require.NoError(t, err)
	txt := decodeSpec(t, res)

	e.emitter.approve = false
	_, err = e.srv.handleRemoveBlock(ctx, callReq(map[string]any{"blockId": txt.BlockID}))
	require.Error(t, err)
	assert.NotNil(t, e.builder.FindBlock(txt.BlockID), "rejected removal keeps the block")

	e.emitter.approve = true
	_, err = e.srv.handleRemoveBlock(ctx, callReq(map[string]any{"blockId": txt.BlockID}))
	require.NoError(t, err)
	assert.Nil(t, e.builder.FindBlock(txt.BlockID))
	assert.Equal(t, 2, e.emitter.count(EventApprovalRequired))
}

func TestSessionTools(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	res, err := e.srv.handleInsertBlock(ctx, callReq(map[string]any{"kind": "text"}))
	require.NoError(t, err)
	a := decodeSpec(t, res)
	res, err = e.srv.handleInsertBlock(ctx, callReq(map[string]any{"kind": "text"}))
	require.NoError(t, err)
	b := decodeSpec(t, res)

	_, err = e.srv.handleSelectBlock(ctx, callReq(map[string]any{"blockId": a.BlockID}))
	require.NoError(t, err)
	res, err = e.srv.handleSelectBlock(ctx, callReq(map[string]any{"blockId": b.BlockID, "modifier": true, "scrollIntoView": true}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), a.BlockID)
	assert.Contains(t, resultText(t, res), b.BlockID)
	assert.Equal(t, 1, e.emitter.count(builder.EventScrollIntoView))

	_, err = e.srv.handleClearSelection(ctx, callReq(nil))
	require.NoError(t, err)
	assert.Empty(t, e.builder.SelectedBlocks())

	_, err = e.srv.handleSetBreakpoint(ctx, callReq(map[string]any{"breakpoint": "mobile"}))
	require.NoError(t, err)
	_, err = e.srv.handleSetBreakpoint(ctx, callReq(map[string]any{"breakpoint": "watch"}))
	assert.Error(t, err)
	_, err = e.srv.handleSetMode(ctx, callReq(map[string]any{"mode": "text"}))
	require.NoError(t, err)
	_, err = e.srv.handleSetMode(ctx, callReq(map[string]any{"mode": "lasso"}))
	assert.Error(t, err)

	state := e.builder.State().Session
	assert.Equal(t, domain.BreakpointMobile, state.ActiveBreakpoint)
	assert.Equal(t, domain.CanvasModeText, state.Mode)

	_, err = e.srv.handleEditComponent(ctx, callReq(map[string]any{"blockId": a.BlockID}))
	assert.Error(t, err, "plain block is not a component")
}

func TestComponentTools(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	res, err := e.srv.handleInsertBlock(ctx, callReq(map[string]any{"kind": "text", "attributes": `{"text":"Buy now"}`}))
	require.NoError(t, err)
	src := decodeSpec(t, res)

	_, err = e.srv.handleCreateComponent(ctx, callReq(map[string]any{"blockId": src.BlockID, "name": "CTA"}))
	require.NoError(t, err)
	defs, err := e.srv.components.List()
	require.NoError(t, err)
	require.Len(t, defs, 1)

	res, err = e.srv.handleInsertComponent(ctx, callReq(map[string]any{"componentId": defs[0].ID}))
	require.NoError(t, err)
	inst := decodeSpec(t, res)
	assert.True(t, inst.IsComponent)
	assert.Equal(t, defs[0].ID, inst.ReferencedComponentID)

	_, err = e.srv.handleEditComponent(ctx, callReq(map[string]any{"blockId": inst.BlockID}))
	require.NoError(t, err)
	assert.Equal(t, domain.EditingModeComponent, e.builder.EditingMode())

	res, err = e.srv.handleInsertBlock(ctx, callReq(map[string]any{"kind": "text", "parentId": src.BlockID}))
	require.NoError(t, err)
	inner := decodeSpec(t, res)
	res, err = e.srv.handleFindParentBlock(ctx, callReq(map[string]any{"blockId": inner.BlockID}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), src.BlockID, "parent lookup follows the component canvas")

	_, err = e.srv.handleEditPage(ctx, callReq(nil))
	require.NoError(t, err)
	assert.Equal(t, domain.EditingModePage, e.builder.EditingMode())

	_, err = e.srv.handleSaveComponent(ctx, callReq(nil))
	assert.Error(t, err, "not editing a component")
}

func TestPageTools(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	res, err := e.srv.handleCreatePage(ctx, callReq(map[string]any{"name": "About Us"}))
	require.NoError(t, err)
	var created domain.Page
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &created))
	assert.Equal(t, "/about-us", created.Route)

	_, err = e.srv.handleLoadPage(ctx, callReq(map[string]any{"pageId": created.ID}))
	require.NoError(t, err)
	assert.Equal(t, created.ID, e.builder.Page().ID)

	_, err = e.srv.handleInsertBlock(ctx, callReq(map[string]any{"kind": "text"}))
	require.NoError(t, err)
	_, err = e.srv.handleSavePage(ctx, callReq(nil))
	require.NoError(t, err)

	res, err = e.srv.handleListRevisions(ctx, callReq(nil))
	require.NoError(t, err)
	var revs []domain.PageRevision
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &revs))
	require.Len(t, revs, 1)
	assert.Equal(t, "mcp", revs[0].Label)

	_, err = e.srv.handleInsertBlock(ctx, callReq(map[string]any{"kind": "text"}))
	require.NoError(t, err)
	_, err = e.srv.handleRestoreRevision(ctx, callReq(map[string]any{"revisionId": revs[0].ID}))
	require.NoError(t, err)
	assert.Len(t, e.builder.PageSpecs()[0].Children, 1)
	assert.True(t, e.pages.IsDirty())

	_, err = e.srv.handleLoadPage(ctx, callReq(map[string]any{"pageId": "ghost"}))
	assert.Error(t, err)
}

func TestPageBlocksResource(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	assert.Equal(t, "abc", pageIDFromURI("builder://page/abc/blocks"))
	assert.Empty(t, pageIDFromURI("builder://page/a/b/blocks"))
	assert.Empty(t, pageIDFromURI("notes://page/abc/blocks"))

	open := e.builder.Page()
	req := mcp.ReadResourceRequest{}
	req.Params.URI = "builder://page/" + open.ID + "/blocks"
	contents, err := e.srv.handlePageBlocksResource(ctx, req)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text := contents[0].(mcp.TextResourceContents).Text
	assert.Contains(t, text, open.Blocks[0].BlockID)

	req.Params.URI = "builder://page/ghost/blocks"
	_, err = e.srv.handlePageBlocksResource(ctx, req)
	assert.Error(t, err)
}

func TestApprovalViaDB(t *testing.T) {
	e := newTestEnv(t)
	conn := e.db.Conn()

	q := NewApprovalQueue(context.Background(), e.emitter)
	q.SetDB(conn)
	q.SetTimeout(5 * time.Second)

	done := make(chan error, 1)
	go func() {
		_, err := q.Request("remove_block", "Remove text block")
		done <- err
	}()

	var pending []PendingAction
	require.Eventually(t, func() bool {
		var err error
		pending, err = ListStored(conn)
		return err == nil && len(pending) == 1
	}, 3*time.Second, 50*time.Millisecond)
	assert.Equal(t, "remove_block", pending[0].Tool)

	require.NoError(t, ResolveStored(conn, pending[0].ID, true))
	require.NoError(t, <-done)
	assert.Error(t, ResolveStored(conn, pending[0].ID, true), "row is gone once answered")
}
