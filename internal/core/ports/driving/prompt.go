package driving

import (
	"context"

	"github.com/custodia-labs/ragline/internal/core/domain"
)

// PromptService manages answer prompt templates.
type PromptService interface {
	// Create stores a new prompt. The content must not be blank.
	Create(ctx context.Context, name, content, description string) (*domain.Prompt, error)

	// Get retrieves a prompt by ID.
	Get(ctx context.Context, id string) (*domain.Prompt, error)

	// List returns all prompts, newest first.
	List(ctx context.Context) ([]domain.Prompt, error)

	// Update changes the name, content and description of a prompt.
	// Empty arguments leave the field unchanged.
	Update(ctx context.Context, id, name, content, description string) (*domain.Prompt, error)

	// Delete removes a prompt.
	Delete(ctx context.Context, id string) error

	// Activate makes the prompt the one used for answers.
	Activate(ctx context.Context, id string) error

	// Deactivate clears the active prompt so the default template is used.
	Deactivate(ctx context.Context) error

	// Active returns the active prompt, or domain.ErrNotFound.
	Active(ctx context.Context) (*domain.Prompt, error)

	// Template returns the active prompt content, or the default template.
	Template(ctx context.Context) (string, error)

	// Seed creates and activates the default prompt when none is active.
	// It reports whether a prompt was created.
	Seed(ctx context.Context) (*domain.Prompt, bool, error)
}
