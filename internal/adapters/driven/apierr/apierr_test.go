package apierr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/ragline/internal/core/domain"
)

func TestRetryable(t *testing.T) {
	for _, status := range []int{408, 429, 500, 502, 503} {
		assert.True(t, Retryable(status), status)
	}
	for _, status := range []int{200, 400, 401, 403, 404, 422} {
		assert.False(t, Retryable(status), status)
	}
}

func TestFromStatus(t *testing.T) {
	err := FromStatus("ollama", 503, []byte("overloaded"))
	assert.ErrorIs(t, err, domain.ErrService)
	assert.Contains(t, err.Error(), "overloaded")

	err = FromStatus("ollama", 404, []byte(`{"error":"model not found"}`))
	assert.NotErrorIs(t, err, domain.ErrService)
	assert.Contains(t, err.Error(), "model not found")

	err = FromStatus("x", 500, []byte(strings.Repeat("a", 2000)))
	assert.Less(t, len(err.Error()), 700)
}

func TestFromTransport(t *testing.T) {
	assert.ErrorIs(t, FromTransport("x", errors.New("connection refused")), domain.ErrService)
	assert.ErrorIs(t, FromTransport("x", context.DeadlineExceeded), domain.ErrService)

	err := FromTransport("x", fmt.Errorf("do: %w", context.Canceled))
	assert.NotErrorIs(t, err, domain.ErrService)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFromOpenAI(t *testing.T) {
	assert.NoError(t, FromOpenAI(nil))

	rateLimited := &openai.APIError{HTTPStatusCode: 429, Message: "slow down"}
	assert.ErrorIs(t, FromOpenAI(rateLimited), domain.ErrService)

	unauthorized := &openai.APIError{HTTPStatusCode: 401, Message: "bad key"}
	err := FromOpenAI(unauthorized)
	assert.NotErrorIs(t, err, domain.ErrService)
	assert.Contains(t, err.Error(), "bad key")

	gateway := &openai.RequestError{HTTPStatusCode: 502, Err: errors.New("bad gateway")}
	assert.ErrorIs(t, FromOpenAI(gateway), domain.ErrService)

	assert.ErrorIs(t, FromOpenAI(errors.New("dial tcp: refused")), domain.ErrService)
}
