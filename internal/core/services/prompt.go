package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/ragline/internal/core/domain"
	"github.com/custodia-labs/ragline/internal/core/ports/driven"
	"github.com/custodia-labs/ragline/internal/core/ports/driving"
)

// Ensure PromptService implements the interface.
var _ driving.PromptService = (*PromptService)(nil)

// DefaultPromptName names the prompt created by Seed.
const DefaultPromptName = "default"

// PromptService manages answer prompt templates.
type PromptService struct {
	store           driven.PromptStore
	defaultTemplate string
}

// NewPromptService creates a prompt service.
// defaultTemplate is used when no prompt is active; empty selects the built-in default.
func NewPromptService(store driven.PromptStore, defaultTemplate string) *PromptService {
	if strings.TrimSpace(defaultTemplate) == "" {
		defaultTemplate = domain.DefaultPromptTemplate
	}
	return &PromptService{
		store:           store,
		defaultTemplate: defaultTemplate,
	}
}

// Create stores a new, inactive prompt.
func (s *PromptService) Create(ctx context.Context, name, content, description string) (*domain.Prompt, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: prompt name is empty", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: prompt content is empty", domain.ErrInvalidInput)
	}

	now := time.Now().UTC()
	p := &domain.Prompt{
		ID:          uuid.New().String(),
		Name:        name,
		Content:     content,
		Description: strings.TrimSpace(description),
		Version:     "1",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create prompt: %w", err)
	}
	return p, nil
}

// Get retrieves a prompt by ID.
func (s *PromptService) Get(ctx context.Context, id string) (*domain.Prompt, error) {
	return s.store.Get(ctx, id)
}

// List returns all prompts, newest first.
func (s *PromptService) List(ctx context.Context) ([]domain.Prompt, error) {
	return s.store.List(ctx)
}

// Update changes the non-empty fields of a prompt and bumps its version.
func (s *PromptService) Update(ctx context.Context, id, name, content, description string) (*domain.Prompt, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		p.Name = name
	}
	if strings.TrimSpace(content) != "" {
		p.Content = content
	}
	if description = strings.TrimSpace(description); description != "" {
		p.Description = description
	}
	p.Version = nextVersion(p.Version)
	p.UpdatedAt = time.Now().UTC()

	if err := s.store.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update prompt: %w", err)
	}
	return p, nil
}

// Delete removes a prompt.
func (s *PromptService) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// Activate makes the prompt the one used for answers.
func (s *PromptService) Activate(ctx context.Context, id string) error {
	return s.store.SetActive(ctx, id)
}

// Deactivate clears the active prompt.
func (s *PromptService) Deactivate(ctx context.Context) error {
	return s.store.ClearActive(ctx)
}

// Active returns the active prompt, or domain.ErrNotFound.
func (s *PromptService) Active(ctx context.Context) (*domain.Prompt, error) {
	return s.store.Active(ctx)
}

// Template returns the active prompt content, or the default template.
func (s *PromptService) Template(ctx context.Context) (string, error) {
	p, err := s.store.Active(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return s.defaultTemplate, nil
	}
	if err != nil {
		return "", fmt.Errorf("load active prompt: %w", err)
	}
	return p.Content, nil
}

// Seed creates and activates the default prompt when no prompt is active.
// It reports whether a prompt was created.
func (s *PromptService) Seed(ctx context.Context) (*domain.Prompt, bool, error) {
	active, err := s.store.Active(ctx)
	if err == nil {
		return active, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, fmt.Errorf("load active prompt: %w", err)
	}

	p, err := s.Create(ctx, DefaultPromptName, s.defaultTemplate, "Answer strictly from the retrieved documents")
	if err != nil {
		return nil, false, err
	}
	if err := s.store.SetActive(ctx, p.ID); err != nil {
		return nil, false, fmt.Errorf("activate prompt: %w", err)
	}
	p.Active = true
	return p, true, nil
}

func nextVersion(v string) string {
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return "2"
	}
	return strconv.Itoa(n + 1)
}
