package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragline/internal/core/domain"
)

func record(id, source string, created time.Time) *domain.DocumentRecord {
	return &domain.DocumentRecord{
		ID:         id,
		Source:     source,
		Title:      "Title " + id,
		ChunkCount: 2,
		RecordIDs:  []string{id + "-0", id + "-1"},
		Metadata:   map[string]string{"lang": "en"},
		CreatedAt:  created,
		UpdatedAt:  created,
	}
}

func TestRecordStore_CRUD(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore()
	now := time.Now()

	doc := record("a", "https://example.com/a.pdf", now)
	require.NoError(t, store.Create(ctx, doc))
	assert.ErrorIs(t, store.Create(ctx, doc), domain.ErrAlreadyExists)

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	got.Title = "Renamed"
	require.NoError(t, store.Update(ctx, got))
	got, err = store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)

	require.NoError(t, store.Delete(ctx, "a"))
	_, err = store.Get(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "a"), domain.ErrNotFound)
	assert.ErrorIs(t, store.Update(ctx, doc), domain.ErrNotFound)
}

func TestRecordStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore()
	doc := record("a", "src", time.Now())
	require.NoError(t, store.Create(ctx, doc))

	doc.RecordIDs[0] = "mutated"
	doc.Metadata["lang"] = "fr"

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a-0", got.RecordIDs[0])
	assert.Equal(t, "en", got.Metadata["lang"])
}

func TestRecordStore_ListAndFindBySource(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore()
	base := time.Now()

	require.NoError(t, store.Create(ctx, record("old", "s1", base)))
	require.NoError(t, store.Create(ctx, record("new", "s1", base.Add(time.Minute))))
	require.NoError(t, store.Create(ctx, record("other", "s2", base.Add(30*time.Second))))

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"new", "other", "old"}, []string{all[0].ID, all[1].ID, all[2].ID})

	bySource, err := store.FindBySource(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, bySource, 2)
	assert.Equal(t, "new", bySource[0].ID)

	none, err := store.FindBySource(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}
