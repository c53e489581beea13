package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragline/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ragline/internal/core/domain"
)

func TestPromptService_CreateValidates(t *testing.T) {
	svc := NewPromptService(memory.NewPromptStore(), "")
	ctx := context.Background()

	_, err := svc.Create(ctx, " ", "{{context}}", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Create(ctx, "strict", "\n", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	p, err := svc.Create(ctx, " strict ", "Answer: {{context}} {{query}}", " terse ")
	require.NoError(t, err)
	assert.Equal(t, "strict", p.Name)
	assert.Equal(t, "terse", p.Description)
	assert.Equal(t, "1", p.Version)
	assert.False(t, p.Active)
	assert.NotEmpty(t, p.ID)
}

func TestPromptService_UpdateBumpsVersion(t *testing.T) {
	svc := NewPromptService(memory.NewPromptStore(), "")
	ctx := context.Background()

	p, err := svc.Create(ctx, "strict", "v1 {{context}} {{query}}", "")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, p.ID, "", "v2 {{context}} {{query}}", "")
	require.NoError(t, err)
	assert.Equal(t, "strict", updated.Name, "empty fields are left unchanged")
	assert.Equal(t, "v2 {{context}} {{query}}", updated.Content)
	assert.Equal(t, "2", updated.Version)

	updated, err = svc.Update(ctx, p.ID, "renamed", "", "")
	require.NoError(t, err)
	assert.Equal(t, "3", updated.Version)

	_, err = svc.Update(ctx, "missing", "x", "", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPromptService_SingleActiveSlot(t *testing.T) {
	svc := NewPromptService(memory.NewPromptStore(), "fallback {{context}} {{query}}")
	ctx := context.Background()

	tmpl, err := svc.Template(ctx)
	require.NoError(t, err)
	assert.Equal(t, "fallback {{context}} {{query}}", tmpl)

	a, err := svc.Create(ctx, "a", "A {{context}}", "")
	require.NoError(t, err)
	b, err := svc.Create(ctx, "b", "B {{context}}", "")
	require.NoError(t, err)

	require.NoError(t, svc.Activate(ctx, a.ID))
	require.NoError(t, svc.Activate(ctx, b.ID))

	active, err := svc.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, b.ID, active.ID)

	prompts, err := svc.List(ctx)
	require.NoError(t, err)
	activeCount := 0
	for _, p := range prompts {
		if p.Active {
			activeCount++
		}
	}
	assert.Equal(t, 1, activeCount)

	tmpl, err = svc.Template(ctx)
	require.NoError(t, err)
	assert.Equal(t, "B {{context}}", tmpl)

	require.NoError(t, svc.Deactivate(ctx))
	_, err = svc.Active(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, svc.Activate(ctx, "missing"), domain.ErrNotFound)
}

func TestPromptService_DeleteActiveFallsBackToDefault(t *testing.T) {
	svc := NewPromptService(memory.NewPromptStore(), "")
	ctx := context.Background()

	p, err := svc.Create(ctx, "a", "A {{context}}", "")
	require.NoError(t, err)
	require.NoError(t, svc.Activate(ctx, p.ID))
	require.NoError(t, svc.Delete(ctx, p.ID))

	tmpl, err := svc.Template(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPromptTemplate, tmpl)
}

func TestPromptService_Seed(t *testing.T) {
	svc := NewPromptService(memory.NewPromptStore(), "")
	ctx := context.Background()

	p, created, err := svc.Seed(ctx)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, DefaultPromptName, p.Name)
	assert.True(t, p.Active)

	again, created, err := svc.Seed(ctx)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, p.ID, again.ID)

	prompts, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, prompts, 1)
}
