// Package apierr classifies failures of remote model and document APIs.
//
// Failures a retry may fix (transport errors, timeouts, 408, 429 and 5xx)
// are wrapped with domain.ErrService. Everything else is returned as a
// plain error so callers fail fast.
package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/ragline/internal/core/domain"
)

// maxBodyInError bounds how much of a response body is quoted in an error.
const maxBodyInError = 512

// Retryable reports whether an HTTP status code signals a transient failure.
func Retryable(status int) bool {
	return status == http.StatusRequestTimeout ||
		status == http.StatusTooManyRequests ||
		status >= http.StatusInternalServerError
}

// FromStatus builds the error for a non-2xx response.
func FromStatus(provider string, status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxBodyInError {
		msg = msg[:maxBodyInError] + "..."
	}
	if Retryable(status) {
		return fmt.Errorf("%w: %s returned status %d: %s", domain.ErrService, provider, status, msg)
	}
	return fmt.Errorf("%s returned status %d: %s", provider, status, msg)
}

// FromTransport wraps a failed round trip.
// Cancellation by the caller is not retryable; a deadline is.
func FromTransport(provider string, err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s request cancelled: %w", provider, err)
	}
	return fmt.Errorf("%w: %s request failed: %w", domain.ErrService, provider, err)
}

// FromOpenAI classifies an error returned by the go-openai client.
func FromOpenAI(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if Retryable(apiErr.HTTPStatusCode) {
			return fmt.Errorf("%w: openai: %w", domain.ErrService, err)
		}
		return fmt.Errorf("openai: %w", err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if Retryable(reqErr.HTTPStatusCode) {
			return fmt.Errorf("%w: openai: %w", domain.ErrService, err)
		}
		return fmt.Errorf("openai: %w", err)
	}

	return FromTransport("openai", err)
}
