package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	uriPages      = "builder://pages"
	uriComponents = "builder://components"
	uriOpenPage   = "builder://page/blocks"
	pageURIPrefix = "builder://page/"
	pageURISuffix = "/blocks"
	mimeTypeJSON  = "application/json"
)

func (s *Server) registerResources() {
	// ── builder://pages ────────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		uriPages,
		"All Pages",
		mcp.WithMIMEType(mimeTypeJSON),
	), s.handlePagesResource)

	// ── builder://components ───────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		uriComponents,
		"Component Library",
		mcp.WithMIMEType(mimeTypeJSON),
	), s.handleComponentsResource)

	// ── builder://page/blocks ──────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		uriOpenPage,
		"Open Page and Session",
		mcp.WithMIMEType(mimeTypeJSON),
	), s.handleOpenPageResource)

	// ── builder://page/{pageId}/blocks ─────────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			pageURIPrefix+"{pageId}"+pageURISuffix,
			"Blocks of a Stored Page",
		),
		s.handlePageBlocksResource,
	)
}

func (s *Server) handlePagesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	pages, err := s.pages.ListPages()
	if err != nil {
		return nil, err
	}
	type pageSummary struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Route string `json:"route"`
	}
	summaries := make([]pageSummary, 0, len(pages))
	for _, p := range pages {
		summaries = append(summaries, pageSummary{ID: p.ID, Name: p.Name, Route: p.Route})
	}
	return jsonResource(uriPages, summaries)
}

func (s *Server) handleComponentsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	defs, err := s.components.List()
	if err != nil {
		return nil, err
	}
	return jsonResource(uriComponents, defs)
}

func (s *Server) handleOpenPageResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	page := s.builder.Page()
	return jsonResource(uriOpenPage, map[string]any{
		"page":    page,
		"session": s.builder.State().Session,
	})
}

func (s *Server) handlePageBlocksResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	pageID := pageIDFromURI(uri)
	if pageID == "" {
		return nil, fmt.Errorf("could not extract pageId from URI: %s", uri)
	}

	// The open page may hold unsaved edits.
	if open := s.builder.Page(); open.ID == pageID {
		return jsonResource(uri, open.Blocks)
	}
	page, err := s.pages.GetPage(pageID)
	if err != nil {
		return nil, err
	}
	return jsonResource(uri, page.Blocks)
}

// pageIDFromURI extracts the page ID from "builder://page/{id}/blocks".
func pageIDFromURI(uri string) string {
	if !strings.HasPrefix(uri, pageURIPrefix) || !strings.HasSuffix(uri, pageURISuffix) {
		return ""
	}
	id := strings.TrimSuffix(strings.TrimPrefix(uri, pageURIPrefix), pageURISuffix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := marshalJSON(v)
	if err != nil {
		return nil, fmt.Errorf("marshal resource %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: mimeTypeJSON,
			Text:     string(data),
		},
	}, nil
}
