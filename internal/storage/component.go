package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"pagebuilder/internal/domain"
)

// ComponentStore implements domain.ComponentStore using SQLite.
type ComponentStore struct {
	db *DB
}

func NewComponentStore(db *DB) *ComponentStore {
	return &ComponentStore{db: db}
}

func (s *ComponentStore) CreateComponent(c *domain.ComponentDefinition) error {
	blockJSON, err := json.Marshal(c.Block)
	if err != nil {
		return fmt.Errorf("encode component block: %w", err)
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	_, err = s.db.conn.Exec(
		`INSERT INTO components (id, name, block_json, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, string(blockJSON), c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create component: %w", err)
	}
	return nil
}

func (s *ComponentStore) GetComponent(id string) (*domain.ComponentDefinition, error) {
	c := &domain.ComponentDefinition{}
	var blockJSON string
	err := s.db.conn.QueryRow(
		`SELECT id, name, block_json, created_at, updated_at FROM components WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &blockJSON, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, notFound("component", id, err)
	}
	if err := json.Unmarshal([]byte(blockJSON), &c.Block); err != nil {
		return nil, fmt.Errorf("decode component %s: %w", id, err)
	}
	return c, nil
}

func (s *ComponentStore) ListComponents() ([]domain.ComponentDefinition, error) {
	rows, err := s.db.conn.Query(`SELECT id, name, block_json, created_at, updated_at FROM components ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ComponentDefinition
	for rows.Next() {
		var c domain.ComponentDefinition
		var blockJSON string
		if err := rows.Scan(&c.ID, &c.Name, &blockJSON, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(blockJSON), &c.Block); err != nil {
			return nil, fmt.Errorf("decode component %s: %w", c.ID, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *ComponentStore) UpdateComponent(c *domain.ComponentDefinition) error {
	blockJSON, err := json.Marshal(c.Block)
	if err != nil {
		return fmt.Errorf("encode component block: %w", err)
	}
	c.UpdatedAt = time.Now()
	res, err := s.db.conn.Exec(
		`UPDATE components SET name = ?, block_json = ?, updated_at = ? WHERE id = ?`,
		c.Name, string(blockJSON), c.UpdatedAt, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update component: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update component %s: %w", c.ID, domain.ErrNotFound)
	}
	return nil
}

func (s *ComponentStore) DeleteComponent(id string) error {
	_, err := s.db.conn.Exec(`DELETE FROM components WHERE id = ?`, id)
	return err
}
