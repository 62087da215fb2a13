package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer/domain"
)

// SQLDocumentStore keeps one JSON workflow document per key in the
// designer_documents table.
type SQLDocumentStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLDocumentStore(db *sql.DB) *SQLDocumentStore {
	return &SQLDocumentStore{db: db, now: time.Now}
}

// Save inserts the document or replaces the payload stored under key.
func (r *SQLDocumentStore) Save(ctx context.Context, key string, w domain.Workflow) error {
	payload, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("marshal workflow: %w", err)
	}
	query, err := upsertDocumentQuery()
	if err != nil {
		return err
	}
	now := r.now().UTC()
	if _, err := r.db.ExecContext(ctx, query, key, string(payload), now, now); err != nil {
		return fmt.Errorf("save document %s: %w", key, err)
	}
	return nil
}

// Load returns nil, nil when no document is stored under key.
func (r *SQLDocumentStore) Load(ctx context.Context, key string) (*domain.Workflow, error) {
	query := `
		SELECT payload
		FROM designer_documents WHERE doc_key = ` + placeholder(1) + `
	`
	var payload string
	err := r.db.QueryRowContext(ctx, query, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", key, err)
	}
	return decodeDocument(key, []byte(payload))
}

// Delete removes the document stored under key. Missing keys are not an error.
func (r *SQLDocumentStore) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM designer_documents WHERE doc_key = ` + placeholder(1)
	if _, err := r.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("delete document %s: %w", key, err)
	}
	return nil
}

func decodeDocument(key string, payload []byte) (*domain.Workflow, error) {
	var w domain.Workflow
	if err := json.Unmarshal(payload, &w); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", key, err)
	}
	w.Normalize()
	return &w, nil
}
