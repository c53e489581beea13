package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/ragline/internal/core/domain"
	"github.com/custodia-labs/ragline/internal/core/ports/driven"
)

// RecordStore implements driven.RecordStore.
type RecordStore struct {
	db *sql.DB
}

var _ driven.RecordStore = (*RecordStore)(nil)

const recordColumns = `id, source, title, content_type, chunk_count, record_ids, metadata, created_at, updated_at`

// Create stores a new record.
func (s *RecordStore) Create(ctx context.Context, doc *domain.DocumentRecord) error {
	recordIDs, metadata, err := encodeRecord(doc)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, doc.ID, doc.Source, doc.Title, doc.ContentType, doc.ChunkCount,
		recordIDs, metadata, toUnix(doc.CreatedAt), toUnix(doc.UpdatedAt))
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrAlreadyExists)
	}
	return nil
}

// Get retrieves a record by ID.
func (s *RecordStore) Get(ctx context.Context, id string) (*domain.DocumentRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM documents WHERE id = ?`, id)
	doc, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// List returns all records, newest first.
func (s *RecordStore) List(ctx context.Context) ([]domain.DocumentRecord, error) {
	return s.query(ctx, `SELECT `+recordColumns+` FROM documents ORDER BY created_at DESC, id ASC`)
}

// FindBySource returns records ingested from source, newest first.
func (s *RecordStore) FindBySource(ctx context.Context, source string) ([]domain.DocumentRecord, error) {
	return s.query(ctx, `SELECT `+recordColumns+` FROM documents
		WHERE source = ? ORDER BY created_at DESC, id ASC`, source)
}

// Update replaces an existing record. CreatedAt is kept from the stored row.
func (s *RecordStore) Update(ctx context.Context, doc *domain.DocumentRecord) error {
	recordIDs, metadata, err := encodeRecord(doc)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE documents SET
			source = ?, title = ?, content_type = ?, chunk_count = ?,
			record_ids = ?, metadata = ?, updated_at = ?
		WHERE id = ?
	`, doc.Source, doc.Title, doc.ContentType, doc.ChunkCount,
		recordIDs, metadata, toUnix(doc.UpdatedAt), doc.ID)
	if err != nil {
		return fmt.Errorf("updating document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a record.
func (s *RecordStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *RecordStore) query(ctx context.Context, query string, args ...any) ([]domain.DocumentRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	docs := []domain.DocumentRecord{}
	for rows.Next() {
		doc, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*domain.DocumentRecord, error) {
	var doc domain.DocumentRecord
	var recordIDs, metadata string
	var createdAt, updatedAt int64
	if err := row.Scan(&doc.ID, &doc.Source, &doc.Title, &doc.ContentType, &doc.ChunkCount,
		&recordIDs, &metadata, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	if err := json.Unmarshal([]byte(recordIDs), &doc.RecordIDs); err != nil {
		return nil, fmt.Errorf("unmarshaling record ids: %w", err)
	}
	if len(doc.RecordIDs) == 0 {
		doc.RecordIDs = nil
	}
	if err := json.Unmarshal([]byte(metadata), &doc.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshaling metadata: %w", err)
	}
	doc.CreatedAt = fromUnix(createdAt)
	doc.UpdatedAt = fromUnix(updatedAt)
	return &doc, nil
}

func encodeRecord(doc *domain.DocumentRecord) (recordIDs, metadata string, err error) {
	ids := doc.RecordIDs
	if ids == nil {
		ids = []string{}
	}
	if recordIDs, err = marshalJSON(ids); err != nil {
		return "", "", err
	}
	if metadata, err = marshalJSON(doc.Metadata); err != nil {
		return "", "", err
	}
	return recordIDs, metadata, nil
}
