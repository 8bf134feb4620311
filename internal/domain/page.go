package domain

import (
	"strings"
	"time"
)

// Page is a builder page as persisted and as handed to the editor on load.
type Page struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	PageName  string      `json:"pageName"`
	Route     string      `json:"route,omitempty"`
	Blocks    []BlockSpec `json:"blocks"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// DefaultRoute derives a route from a page name: "About Us" → "/about-us".
func DefaultRoute(pageName string) string {
	return "/" + strings.ReplaceAll(strings.ToLower(pageName), " ", "-")
}

// ComponentDefinition is a reusable block subtree stored in the component library.
// Component blocks reference it by ID.
type ComponentDefinition struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Block     BlockSpec `json:"block"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PageRevision is an exact snapshot of a page's blocks taken on save.
type PageRevision struct {
	ID        string      `json:"id"`
	PageID    string      `json:"pageId"`
	Label     string      `json:"label"`
	Blocks    []BlockSpec `json:"blocks"`
	CreatedAt time.Time   `json:"createdAt"`
}

type PageStore interface {
	CreatePage(p *Page) error
	GetPage(id string) (*Page, error)
	ListPages() ([]Page, error)
	UpdatePage(p *Page) error
	DeletePage(id string) error
}

type ComponentStore interface {
	CreateComponent(c *ComponentDefinition) error
	GetComponent(id string) (*ComponentDefinition, error)
	ListComponents() ([]ComponentDefinition, error)
	UpdateComponent(c *ComponentDefinition) error
	DeleteComponent(id string) error
}

type RevisionStore interface {
	PushRevision(r *PageRevision) error
	GetRevision(id string) (*PageRevision, error)
	ListRevisions(pageID string) ([]PageRevision, error)
	DeleteRevisionsByPage(pageID string) error
}
