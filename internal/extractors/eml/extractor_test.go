package eml

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragline/internal/core/domain"
)

func crlf(s string) []byte {
	return []byte(strings.ReplaceAll(s, "\n", "\r\n"))
}

func TestExtract_PlainMessage(t *testing.T) {
	msg := crlf(`From: Ada <ada@example.com>
To: team@example.com
Subject: =?UTF-8?Q?Caf=C3=A9_notes?=
Content-Type: text/plain; charset=utf-8

Meeting moved to Thursday.
`)

	text, err := New().Extract(context.Background(), msg, "message/rfc822")

	require.NoError(t, err)
	assert.Contains(t, text, "From: Ada <ada@example.com>")
	assert.Contains(t, text, "Subject: Café notes")
	assert.True(t, strings.HasSuffix(text, "Meeting moved to Thursday."))
}

func TestExtract_MultipartPrefersPlainText(t *testing.T) {
	msg := crlf(`From: a@example.com
Subject: Both
Content-Type: multipart/alternative; boundary="XX"

--XX
Content-Type: text/html

<p>html version</p>
--XX
Content-Type: text/plain

plain version
--XX--
`)

	text, err := New().Extract(context.Background(), msg, "message/rfc822")

	require.NoError(t, err)
	assert.Contains(t, text, "plain version")
	assert.NotContains(t, text, "html version")
}

func TestExtract_HTMLOnlyAndBase64(t *testing.T) {
	msg := crlf(`Subject: Encoded
Content-Type: multipart/mixed; boundary="B"

--B
Content-Type: text/html
Content-Transfer-Encoding: base64

PHA+SGVsbG8gPGI+d29ybGQ8L2I+PC9wPg==
--B--
`)

	text, err := New().Extract(context.Background(), msg, "message/rfc822")

	require.NoError(t, err)
	assert.Contains(t, text, "Hello world")
}

func TestExtract_QuotedPrintableBody(t *testing.T) {
	msg := crlf(`Subject: QP
Content-Type: text/plain
Content-Transfer-Encoding: quoted-printable

caf=C3=A9 au lait
`)

	text, err := New().Extract(context.Background(), msg, "message/rfc822")

	require.NoError(t, err)
	assert.Contains(t, text, "café au lait")
}

func TestExtract_Malformed(t *testing.T) {
	_, err := New().Extract(context.Background(), []byte("no headers here"), "message/rfc822")
	assert.ErrorIs(t, err, domain.ErrExtraction)
}
