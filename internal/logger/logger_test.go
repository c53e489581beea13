package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, l Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(l)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	t.Cleanup(func() { SetVerbose(false) })

	SetVerbose(false)
	assert.False(t, IsVerbose())
	assert.Equal(t, LevelError, GetLevel())

	SetVerbose(true)
	assert.True(t, IsVerbose())
	assert.Equal(t, LevelDebug, GetLevel())
}

func TestDebug_WhenVerbose(t *testing.T) {
	buf := capture(t, LevelDebug)

	Debug("test message %s", "arg")

	assert.Equal(t, "[DEBUG] test message arg\n", buf.String())
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	buf := capture(t, LevelError)

	Debug("test message")
	Info("info")
	Warn("warn")

	assert.Zero(t, buf.Len())
}

func TestThreshold(t *testing.T) {
	buf := capture(t, LevelWarn)

	Debug("d")
	Info("i")
	Warn("w %d", 1)
	Error("e %d", 2)

	assert.Equal(t, "[WARN] w 1\n[ERROR] e 2\n", buf.String())
}

func TestError_AlwaysPrinted(t *testing.T) {
	buf := capture(t, LevelError)

	Error("failed: %v", "boom")

	assert.Equal(t, "[ERROR] failed: boom\n", buf.String())
}

func TestSection(t *testing.T) {
	buf := capture(t, LevelInfo)
	Section("Ingest")
	assert.Equal(t, "\n=== Ingest ===\n", buf.String())

	buf.Reset()
	SetLevel(LevelWarn)
	Section("Hidden")
	assert.Zero(t, buf.Len())
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"":        LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
		if in != "" && in != "warning" && in != "INFO" {
			assert.Equal(t, in, got.String())
		}
	}

	_, err := ParseLevel("trace")
	assert.Error(t, err)
}
