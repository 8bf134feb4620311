package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"pagebuilder/internal/domain"
)

// maxRevisions is how many saved snapshots are kept per page.
const maxRevisions = 40

// RevisionStore keeps saved page snapshots in SQLite.
type RevisionStore struct {
	db *DB
}

func NewRevisionStore(db *DB) *RevisionStore {
	return &RevisionStore{db: db}
}

// PushRevision stores r and prunes the page's oldest snapshots past the limit.
func (s *RevisionStore) PushRevision(r *domain.PageRevision) error {
	blocksJSON, err := marshalBlocks(r.Blocks)
	if err != nil {
		return err
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	_, err = s.db.Conn().Exec(
		`INSERT INTO page_revisions (id, page_id, label, blocks_json, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.PageID, r.Label, blocksJSON, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert revision: %w", err)
	}

	s.pruneIfNeeded(r.PageID, maxRevisions)
	return nil
}

func (s *RevisionStore) GetRevision(id string) (*domain.PageRevision, error) {
	r := &domain.PageRevision{}
	var blocksJSON string
	err := s.db.Conn().QueryRow(
		`SELECT id, page_id, label, blocks_json, created_at FROM page_revisions WHERE id = ?`, id,
	).Scan(&r.ID, &r.PageID, &r.Label, &blocksJSON, &r.CreatedAt)
	if err != nil {
		return nil, notFound("revision", id, err)
	}
	if err := json.Unmarshal([]byte(blocksJSON), &r.Blocks); err != nil {
		return nil, fmt.Errorf("decode revision %s: %w", id, err)
	}
	return r, nil
}

// ListRevisions returns revision headers for a page, newest first.
func (s *RevisionStore) ListRevisions(pageID string) ([]domain.PageRevision, error) {
	rows, err := s.db.Conn().Query(
		`SELECT id, page_id, label, created_at
		 FROM page_revisions WHERE page_id = ? ORDER BY created_at DESC, rowid DESC`, pageID,
	)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer rows.Close()

	var out []domain.PageRevision
	for rows.Next() {
		var r domain.PageRevision
		if err := rows.Scan(&r.ID, &r.PageID, &r.Label, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteRevisionsByPage removes every snapshot of a page.
func (s *RevisionStore) DeleteRevisionsByPage(pageID string) error {
	_, err := s.db.Conn().Exec(`DELETE FROM page_revisions WHERE page_id = ?`, pageID)
	return err
}

// pruneIfNeeded removes oldest revisions when count exceeds max.
func (s *RevisionStore) pruneIfNeeded(pageID string, max int) {
	var count int
	s.db.Conn().QueryRow(`SELECT COUNT(*) FROM page_revisions WHERE page_id = ?`, pageID).Scan(&count)
	if count <= max {
		return
	}

	// Collect IDs to delete FIRST (close rows before doing any writes)
	rows, err := s.db.Conn().Query(
		`SELECT id FROM page_revisions WHERE page_id = ?
		 ORDER BY created_at ASC, rowid ASC LIMIT ?`, pageID, count-max,
	)
	if err != nil {
		return
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		ids = append(ids, id)
	}
	rows.Close()

	for _, id := range ids {
		s.db.Conn().Exec(`DELETE FROM page_revisions WHERE id = ?`, id)
	}
}
