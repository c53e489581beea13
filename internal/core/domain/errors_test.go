package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrAlreadyExists", ErrAlreadyExists},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrGenerationUnavailable", ErrGenerationUnavailable},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrVectorIndexUnavailable", ErrVectorIndexUnavailable},
		{"ErrValidation", ErrValidation},
		{"ErrDownload", ErrDownload},
		{"ErrFormat", ErrFormat},
		{"ErrExtraction", ErrExtraction},
		{"ErrEmptyContent", ErrEmptyContent},
		{"ErrEmbedding", ErrEmbedding},
		{"ErrDimensionMismatch", ErrDimensionMismatch},
		{"ErrQueryEmbedding", ErrQueryEmbedding},
		{"ErrService", ErrService},
		{"ErrConfiguration", ErrConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, ""},
		{"validation", fmt.Errorf("%w: bad url", ErrValidation), KindValidation},
		{"format", fmt.Errorf("%w: text/html", ErrFormat), KindFormat},
		{"download", fmt.Errorf("fetch: %w", ErrDownload), KindDownload},
		{"extraction", ErrExtraction, KindExtraction},
		{"empty content", ErrEmptyContent, KindEmptyContent},
		{"embedding wrapping service", fmt.Errorf("%w: %w", ErrEmbedding, ErrService), KindEmbedding},
		{"query embedding wrapping embedding", fmt.Errorf("%w: %w", ErrQueryEmbedding, ErrEmbedding), KindQueryEmbedding},
		{"dimension mismatch", ErrDimensionMismatch, KindDimensionMismatch},
		{"embedding wrapping dimension mismatch", fmt.Errorf("%w: text 0: %w", ErrEmbedding, ErrDimensionMismatch), KindEmbedding},
		{"service", fmt.Errorf("generate: %w", ErrService), KindService},
		{"configuration", ErrConfiguration, KindConfiguration},
		{"not found", ErrNotFound, KindNotFound},
		{"unclassified", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestNewErrorDetail(t *testing.T) {
	assert.Nil(t, NewErrorDetail(StateExtracting, nil))

	detail := NewErrorDetail(StateDownloading, fmt.Errorf("%w: status 404", ErrDownload))
	require.NotNil(t, detail)
	assert.Equal(t, KindDownload, detail.Kind)
	assert.Equal(t, StateDownloading, detail.Stage)
	assert.Contains(t, detail.Message, "status 404")
}
