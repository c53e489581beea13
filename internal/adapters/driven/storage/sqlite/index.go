package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/ragline/internal/core/domain"
	"github.com/custodia-labs/ragline/internal/core/ports/driven"
)

// Index implements driven.VectorIndex on the vectors table.
// Search loads every vector and ranks in Go; the metric and dimension are
// recorded in index_meta so a reopened index keeps its shape.
type Index struct {
	db     *sql.DB
	metric domain.Metric

	// mu serialises writers so the first upsert establishes the dimension once.
	mu        sync.RWMutex
	dimension int
}

var _ driven.VectorIndex = (*Index)(nil)

const (
	metaMetric    = "metric"
	metaDimension = "dimension"
)

// VectorIndex opens the persistent vector index.
// A database created with another metric or dimension is rejected with
// domain.ErrConfiguration. A dimension of 0 is established by the first upsert.
func (s *Store) VectorIndex(ctx context.Context, metric domain.Metric, dimension int) (*Index, error) {
	if metric == "" {
		metric = domain.MetricCosine
	}

	meta, err := s.loadMeta(ctx)
	if err != nil {
		return nil, err
	}

	if stored, ok := meta[metaMetric]; ok && domain.Metric(stored) != metric {
		return nil, fmt.Errorf("%w: index was created with metric %s, configured %s",
			domain.ErrConfiguration, stored, metric)
	}
	if stored, ok := meta[metaDimension]; ok {
		n, err := strconv.Atoi(stored)
		if err != nil {
			return nil, fmt.Errorf("%w: corrupt index dimension %q", domain.ErrConfiguration, stored)
		}
		if dimension > 0 && dimension != n {
			return nil, fmt.Errorf("%w: index has dimension %d, configured %d (re-ingest into a new data dir)",
				domain.ErrConfiguration, n, dimension)
		}
		dimension = n
	}

	if _, ok := meta[metaMetric]; !ok {
		if err := setMeta(ctx, s.db, metaMetric, string(metric)); err != nil {
			return nil, err
		}
	}
	if _, ok := meta[metaDimension]; !ok && dimension > 0 {
		if err := setMeta(ctx, s.db, metaDimension, strconv.Itoa(dimension)); err != nil {
			return nil, err
		}
	}

	return &Index{db: s.db, metric: metric, dimension: dimension}, nil
}

// Upsert inserts records in one transaction.
func (x *Index) Upsert(ctx context.Context, records []domain.RecordInput) ([]string, error) {
	if len(records) == 0 {
		return []string{}, nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	dim := x.dimension
	for i, r := range records {
		if len(r.Vector) == 0 {
			return nil, fmt.Errorf("%w: record %d has an empty vector", domain.ErrInvalidInput, i)
		}
		if dim == 0 {
			dim = len(r.Vector)
		}
		if len(r.Vector) != dim {
			return nil, fmt.Errorf("%w: record %d has dimension %d, index has %d",
				domain.ErrDimensionMismatch, i, len(r.Vector), dim)
		}
	}

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO vectors (id, text, embedding, metadata) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	ids := make([]string, len(records))
	for i, r := range records {
		metadata, err := marshalJSON(r.Metadata)
		if err != nil {
			return nil, err
		}
		id := uuid.New().String()
		if _, err := stmt.ExecContext(ctx, id, r.Text, float32SliceToBytes(r.Vector), metadata); err != nil {
			return nil, fmt.Errorf("inserting vector %d: %w", i, err)
		}
		ids[i] = id
	}

	if x.dimension == 0 {
		if err := setMeta(ctx, tx, metaDimension, strconv.Itoa(dim)); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing vectors: %w", err)
	}

	x.dimension = dim
	return ids, nil
}

// Search returns at most k records by descending similarity.
func (x *Index) Search(ctx context.Context, query []float32, k int) ([]domain.SearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	rows, err := x.db.QueryContext(ctx, `SELECT seq, id, text, embedding, metadata FROM vectors`)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var candidates []domain.Scored
	for rows.Next() {
		rec, seq, err := scanVector(rows)
		if err != nil {
			return nil, err
		}
		if len(query) != len(rec.Vector) {
			return nil, fmt.Errorf("%w: query has dimension %d, index has %d",
				domain.ErrDimensionMismatch, len(query), len(rec.Vector))
		}
		candidates = append(candidates, domain.Scored{
			Record: *rec,
			Score:  domain.Score(x.metric, query, rec.Vector),
			Seq:    seq,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vectors: %w", err)
	}

	if len(candidates) == 0 {
		return []domain.SearchResult{}, nil
	}
	return domain.RankTopK(candidates, k), nil
}

// Get retrieves a record by ID.
func (x *Index) Get(ctx context.Context, id string) (*domain.IndexedRecord, error) {
	row := x.db.QueryRowContext(ctx, `SELECT seq, id, text, embedding, metadata FROM vectors WHERE id = ?`, id)
	rec, _, err := scanVector(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes records in one transaction. Unknown IDs are ignored.
func (x *Index) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `DELETE FROM vectors WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("preparing delete: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return fmt.Errorf("deleting vector %s: %w", id, err)
		}
	}
	return tx.Commit()
}

// Count returns the number of stored records.
func (x *Index) Count(ctx context.Context) (int, error) {
	var n int
	if err := x.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vectors`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting vectors: %w", err)
	}
	return n, nil
}

// Dimension returns the established vector dimension.
func (x *Index) Dimension() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.dimension
}

// Metric returns the similarity metric.
func (x *Index) Metric() domain.Metric {
	return x.metric
}

// Close is a no-op; the Store owns the database handle.
func (x *Index) Close() error {
	return nil
}

func scanVector(row scanner) (*domain.IndexedRecord, int64, error) {
	var rec domain.IndexedRecord
	var seq int64
	var embedding []byte
	var metadata string
	if err := row.Scan(&seq, &rec.ID, &rec.Text, &embedding, &metadata); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, err
		}
		return nil, 0, fmt.Errorf("scanning vector: %w", err)
	}
	rec.Vector = bytesToFloat32Slice(embedding)
	if err := json.Unmarshal([]byte(metadata), &rec.Metadata); err != nil {
		return nil, 0, fmt.Errorf("unmarshaling metadata: %w", err)
	}
	return &rec, seq, nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func setMeta(ctx context.Context, db execer, key, value string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO index_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("saving index %s: %w", key, err)
	}
	return nil
}

func (s *Store) loadMeta(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM index_meta`)
	if err != nil {
		return nil, fmt.Errorf("querying index meta: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scanning index meta: %w", err)
		}
		meta[k] = v
	}
	return meta, rows.Err()
}
