package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragline/internal/core/domain"
)

func prompt(id string, created time.Time) *domain.Prompt {
	return &domain.Prompt{
		ID:        id,
		Name:      "prompt " + id,
		Content:   "Context: {{context}} Question: {{query}}",
		Version:   "1",
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestPromptStore_CRUD(t *testing.T) {
	ctx := context.Background()
	store := NewPromptStore()

	p := prompt("p1", time.Now())
	require.NoError(t, store.Create(ctx, p))
	assert.ErrorIs(t, store.Create(ctx, p), domain.ErrAlreadyExists)

	got, err := store.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "prompt p1", got.Name)
	assert.False(t, got.Active)

	got.Content = "new"
	got.Version = "2"
	require.NoError(t, store.Update(ctx, got))
	got, err = store.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Content)
	assert.Equal(t, "2", got.Version)

	require.NoError(t, store.Delete(ctx, "p1"))
	_, err = store.Get(ctx, "p1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPromptStore_ActiveSlot(t *testing.T) {
	ctx := context.Background()
	store := NewPromptStore()
	now := time.Now()
	require.NoError(t, store.Create(ctx, prompt("a", now)))
	require.NoError(t, store.Create(ctx, prompt("b", now.Add(time.Second))))

	_, err := store.Active(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.SetActive(ctx, "a"))
	require.NoError(t, store.SetActive(ctx, "b"))

	active, err := store.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", active.ID)
	assert.True(t, active.Active)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)
	assert.True(t, list[0].Active)
	assert.False(t, list[1].Active, "only one prompt may be active")

	assert.ErrorIs(t, store.SetActive(ctx, "missing"), domain.ErrNotFound)

	require.NoError(t, store.ClearActive(ctx))
	_, err = store.Active(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPromptStore_DeleteActiveClearsSlot(t *testing.T) {
	ctx := context.Background()
	store := NewPromptStore()
	require.NoError(t, store.Create(ctx, prompt("a", time.Now())))
	require.NoError(t, store.SetActive(ctx, "a"))

	require.NoError(t, store.Delete(ctx, "a"))

	_, err := store.Active(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
