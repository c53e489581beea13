package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragline/internal/core/domain"
)

func TestSupportedMIMETypes(t *testing.T) {
	types := New().SupportedMIMETypes()
	assert.Contains(t, types, "text/plain")
	assert.Contains(t, types, "application/json")
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		content  []byte
		expected string
	}{
		{"plain", []byte("hello world"), "hello world"},
		{"bom stripped", []byte("\ufeffhello"), "hello"},
		{"windows newlines", []byte("a\r\nb\r\n"), "a\nb\n"},
		{"empty", []byte{}, ""},
		{"unicode", []byte("日本語のテキスト"), "日本語のテキスト"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			text, err := New().Extract(context.Background(), tc.content, "text/plain")
			require.NoError(t, err)
			assert.Equal(t, tc.expected, text)
		})
	}
}

func TestExtract_Binary(t *testing.T) {
	_, err := New().Extract(context.Background(), []byte{0xff, 0xfe, 0x00, 0x81}, "text/plain")
	assert.ErrorIs(t, err, domain.ErrExtraction)
}
