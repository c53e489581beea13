package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/ragline/internal/core/domain"
	"github.com/custodia-labs/ragline/internal/core/ports/driven"
)

// PromptStore implements driven.PromptStore.
// The active prompt is the single row of active_prompt.
type PromptStore struct {
	db *sql.DB
}

var _ driven.PromptStore = (*PromptStore)(nil)

const promptSelect = `
	SELECT p.id, p.name, p.content, p.description, p.version, p.created_at, p.updated_at,
		a.prompt_id IS NOT NULL
	FROM prompts p
	LEFT JOIN active_prompt a ON a.prompt_id = p.id`

// Create stores a new prompt.
func (s *PromptStore) Create(ctx context.Context, p *domain.Prompt) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO prompts (id, name, content, description, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, p.ID, p.Name, p.Content, p.Description, p.Version, toUnix(p.CreatedAt), toUnix(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("saving prompt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("prompt %s: %w", p.ID, domain.ErrAlreadyExists)
	}
	return nil
}

// Get retrieves a prompt by ID.
func (s *PromptStore) Get(ctx context.Context, id string) (*domain.Prompt, error) {
	row := s.db.QueryRowContext(ctx, promptSelect+` WHERE p.id = ?`, id)
	p, err := scanPrompt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return p, err
}

// List returns all prompts, newest first.
func (s *PromptStore) List(ctx context.Context) ([]domain.Prompt, error) {
	rows, err := s.db.QueryContext(ctx, promptSelect+` ORDER BY p.created_at DESC, p.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying prompts: %w", err)
	}
	defer rows.Close()

	prompts := []domain.Prompt{}
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, err
		}
		prompts = append(prompts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating prompts: %w", err)
	}
	return prompts, nil
}

// Update replaces a prompt's editable fields.
func (s *PromptStore) Update(ctx context.Context, p *domain.Prompt) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE prompts SET name = ?, content = ?, description = ?, version = ?, updated_at = ?
		WHERE id = ?
	`, p.Name, p.Content, p.Description, p.Version, toUnix(p.UpdatedAt), p.ID)
	if err != nil {
		return fmt.Errorf("updating prompt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a prompt, clearing the active slot if it pointed at it.
func (s *PromptStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM active_prompt WHERE prompt_id = ?", id); err != nil {
		return fmt.Errorf("clearing active prompt: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM prompts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting prompt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit()
}

// SetActive points the active slot at the prompt.
func (s *PromptStore) SetActive(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM prompts WHERE id = ?", id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("looking up prompt: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO active_prompt (slot, prompt_id) VALUES (1, ?)
		ON CONFLICT(slot) DO UPDATE SET prompt_id = excluded.prompt_id
	`, id); err != nil {
		return fmt.Errorf("activating prompt: %w", err)
	}
	return tx.Commit()
}

// ClearActive empties the active slot.
func (s *PromptStore) ClearActive(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM active_prompt"); err != nil {
		return fmt.Errorf("clearing active prompt: %w", err)
	}
	return nil
}

// Active returns the active prompt.
func (s *PromptStore) Active(ctx context.Context) (*domain.Prompt, error) {
	row := s.db.QueryRowContext(ctx, promptSelect+` WHERE a.slot = 1`)
	p, err := scanPrompt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return p, err
}

func scanPrompt(row scanner) (*domain.Prompt, error) {
	var p domain.Prompt
	var createdAt, updatedAt int64
	if err := row.Scan(&p.ID, &p.Name, &p.Content, &p.Description, &p.Version,
		&createdAt, &updatedAt, &p.Active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning prompt: %w", err)
	}
	p.CreatedAt = fromUnix(createdAt)
	p.UpdatedAt = fromUnix(updatedAt)
	return &p, nil
}
