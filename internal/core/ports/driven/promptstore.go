package driven

import (
	"context"

	"github.com/custodia-labs/ragline/internal/core/domain"
)

// PromptStore persists answer prompt templates.
// Exactly zero or one prompt is active; activation is a single-slot write,
// so the Active flag on stored prompts is derived from the slot.
type PromptStore interface {
	// Create stores a new prompt.
	Create(ctx context.Context, p *domain.Prompt) error

	// Get retrieves a prompt by ID.
	// Returns domain.ErrNotFound if the ID does not exist.
	Get(ctx context.Context, id string) (*domain.Prompt, error)

	// List returns all prompts, newest first.
	List(ctx context.Context) ([]domain.Prompt, error)

	// Update replaces name, content, description and version of a prompt.
	Update(ctx context.Context, p *domain.Prompt) error

	// Delete removes a prompt. Deleting the active prompt clears the slot.
	Delete(ctx context.Context, id string) error

	// SetActive points the active slot at the prompt.
	// Returns domain.ErrNotFound if the ID does not exist.
	SetActive(ctx context.Context, id string) error

	// ClearActive empties the active slot.
	ClearActive(ctx context.Context) error

	// Active returns the active prompt.
	// Returns domain.ErrNotFound when no prompt is active.
	Active(ctx context.Context) (*domain.Prompt, error)
}
