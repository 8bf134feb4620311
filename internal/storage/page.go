package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"pagebuilder/internal/domain"
)

// PageStore implements domain.PageStore using SQLite. Blocks are stored as
// one JSON document per page.
type PageStore struct {
	db *DB
}

func NewPageStore(db *DB) *PageStore {
	return &PageStore{db: db}
}

func (s *PageStore) CreatePage(p *domain.Page) error {
	blocksJSON, err := marshalBlocks(p.Blocks)
	if err != nil {
		return err
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err = s.db.conn.Exec(
		`INSERT INTO pages (id, name, page_name, route, blocks_json, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.PageName, p.Route, blocksJSON, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create page: %w", err)
	}
	return nil
}

func (s *PageStore) GetPage(id string) (*domain.Page, error) {
	p := &domain.Page{}
	var blocksJSON string
	err := s.db.conn.QueryRow(
		`SELECT id, name, page_name, route, blocks_json, created_at, updated_at FROM pages WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.PageName, &p.Route, &blocksJSON, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, notFound("page", id, err)
	}
	if err := json.Unmarshal([]byte(blocksJSON), &p.Blocks); err != nil {
		return nil, fmt.Errorf("decode page %s blocks: %w", id, err)
	}
	return p, nil
}

// ListPages returns page headers without blocks, newest first.
func (s *PageStore) ListPages() ([]domain.Page, error) {
	rows, err := s.db.conn.Query(`SELECT id, name, page_name, route, created_at, updated_at FROM pages ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []domain.Page
	for rows.Next() {
		var p domain.Page
		if err := rows.Scan(&p.ID, &p.Name, &p.PageName, &p.Route, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

func (s *PageStore) UpdatePage(p *domain.Page) error {
	blocksJSON, err := marshalBlocks(p.Blocks)
	if err != nil {
		return err
	}
	p.UpdatedAt = time.Now()
	res, err := s.db.conn.Exec(
		`UPDATE pages SET name = ?, page_name = ?, route = ?, blocks_json = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.PageName, p.Route, blocksJSON, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update page: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update page %s: %w", p.ID, domain.ErrNotFound)
	}
	return nil
}

func (s *PageStore) DeletePage(id string) error {
	_, err := s.db.conn.Exec(`DELETE FROM pages WHERE id = ?`, id)
	return err
}

func marshalBlocks(blocks []domain.BlockSpec) (string, error) {
	if blocks == nil {
		blocks = []domain.BlockSpec{}
	}
	data, err := json.Marshal(blocks)
	if err != nil {
		return "", fmt.Errorf("encode blocks: %w", err)
	}
	return string(data), nil
}
