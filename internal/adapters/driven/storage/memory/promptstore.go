package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/ragline/internal/core/domain"
	"github.com/custodia-labs/ragline/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore is an in-memory implementation of driven.PromptStore.
// The active prompt is a single ID slot.
type PromptStore struct {
	mu      sync.RWMutex
	prompts map[string]domain.Prompt
	active  string
}

// NewPromptStore creates a new in-memory prompt store.
func NewPromptStore() *PromptStore {
	return &PromptStore{
		prompts: make(map[string]domain.Prompt),
	}
}

// Create stores a new prompt.
func (s *PromptStore) Create(_ context.Context, p *domain.Prompt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.prompts[p.ID]; exists {
		return domain.ErrAlreadyExists
	}
	stored := *p
	stored.Active = false
	s.prompts[p.ID] = stored
	return nil
}

// Get retrieves a prompt by ID.
func (s *PromptStore) Get(_ context.Context, id string) (*domain.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prompts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p.Active = id == s.active
	return &p, nil
}

// List returns all prompts, newest first.
func (s *PromptStore) List(_ context.Context) ([]domain.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Prompt, 0, len(s.prompts))
	for id, p := range s.prompts {
		p.Active = id == s.active
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Update replaces a prompt's editable fields.
func (s *PromptStore) Update(_ context.Context, p *domain.Prompt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.prompts[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	existing.Name = p.Name
	existing.Content = p.Content
	existing.Description = p.Description
	existing.Version = p.Version
	existing.UpdatedAt = p.UpdatedAt
	s.prompts[p.ID] = existing
	return nil
}

// Delete removes a prompt, clearing the active slot if it pointed at it.
func (s *PromptStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.prompts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.prompts, id)
	if s.active == id {
		s.active = ""
	}
	return nil
}

// SetActive points the active slot at the prompt.
func (s *PromptStore) SetActive(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.prompts[id]; !ok {
		return domain.ErrNotFound
	}
	s.active = id
	return nil
}

// ClearActive empties the active slot.
func (s *PromptStore) ClearActive(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = ""
	return nil
}

// Active returns the active prompt.
func (s *PromptStore) Active(_ context.Context) (*domain.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == "" {
		return nil, domain.ErrNotFound
	}
	p := s.prompts[s.active]
	p.Active = true
	return &p, nil
}
