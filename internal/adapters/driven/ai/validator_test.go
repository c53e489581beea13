package ai

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragline/internal/core/domain"
)

func TestNewConfigValidator(t *testing.T) {
	require.NotNil(t, NewConfigValidator())
}

func TestConfigValidator_NilAndUnconfigured(t *testing.T) {
	v := NewConfigValidator()

	assert.NoError(t, v.ValidateEmbedding(nil))
	assert.NoError(t, v.ValidateEmbedding(&domain.EmbeddingSettings{Model: "m"}))
	assert.NoError(t, v.ValidateGeneration(nil))
	assert.NoError(t, v.ValidateGeneration(&domain.GenerationSettings{Model: "m"}))
}

func TestConfigValidator_PingsOllama(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	v := NewConfigValidator()

	assert.NoError(t, v.ValidateEmbedding(&domain.EmbeddingSettings{
		Provider: domain.ProviderOllama, Model: "nomic-embed-text", BaseURL: srv.URL,
	}))
	assert.NoError(t, v.ValidateGeneration(&domain.GenerationSettings{
		Provider: domain.ProviderOllama, Model: "llama3.2", BaseURL: srv.URL,
	}))
}

func TestConfigValidator_UnreachableOllama(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewConfigValidator().ValidateGeneration(&domain.GenerationSettings{
		Provider: domain.ProviderOllama, Model: "llama3.2", BaseURL: url,
	})
	assert.Error(t, err)
}
