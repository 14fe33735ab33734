package util

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"```markdown\n# Plan\n```", "# Plan"},
		{"```md\n- a\n```", "- a"},
		{"```\nhello\n```", "hello"},
		{"  plain text  ", "plain text"},
		{"Intro\n```\ncode\n```\nOutro", "Intro\n```\ncode\n```\nOutro"},
		{"```", "```"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripCodeFences(tt.in), tt.in)
	}
}

func TestChunk(t *testing.T) {
	assert.Equal(t, []string{"short"}, Chunk("short", 10))

	parts := Chunk("line one\nline two\nline three", 12)
	assert.Equal(t, []string{"line one", "line two", "line three"}, parts)

	long := strings.Repeat("é", 10) // 20 bytes
	parts = Chunk(long, 5)
	for _, p := range parts {
		assert.LessOrEqual(t, len(p), 5)
		assert.True(t, strings.HasPrefix(long, p) || strings.Contains(long, p))
	}
	assert.Equal(t, long, strings.Join(parts, ""))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab…", Truncate("abcdef", 2))
}

func TestDecodeBase64MaybeDataURL(t *testing.T) {
	raw := []byte("OggS\x00\x02voice")
	b64 := base64.StdEncoding.EncodeToString(raw)

	b, mime, err := DecodeBase64MaybeDataURL("data:audio/webm;codecs=opus;base64," + b64)
	require.NoError(t, err)
	assert.Equal(t, raw, b)
	assert.Equal(t, "audio/webm", mime)

	b, mime, err = DecodeBase64MaybeDataURL(b64)
	require.NoError(t, err)
	assert.Equal(t, raw, b)
	assert.Empty(t, mime)

	_, _, err = DecodeBase64MaybeDataURL("%%%not base64%%%")
	assert.Error(t, err)
}

func TestPickMIME(t *testing.T) {
	ogg := []byte("OggS\x00\x02rest")
	assert.Equal(t, "audio/webm", PickMIME(" audio/webm;codecs=opus ", "audio/ogg", ogg))
	assert.Equal(t, "audio/mpeg", PickMIME("", "audio/mpeg", ogg))
	assert.Equal(t, "audio/ogg", PickMIME("", "", ogg))
	assert.Equal(t, "audio/wav", PickMIME("", "", []byte("RIFF\x00\x00\x00\x00WAVEfmt ")))
	assert.Equal(t, "audio/ogg", PickMIME("", "", nil))
}

func TestLoadPrompt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "preamble.txt"), []byte("  Be kind.\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blank.txt"), []byte(" \n"), 0o644))

	s, err := LoadPrompt(dir, "preamble")
	require.NoError(t, err)
	assert.Equal(t, "Be kind.", s)

	_, err = LoadPrompt(dir, "blank")
	assert.Error(t, err)
	_, err = LoadPrompt(dir, "missing")
	assert.Error(t, err)

	t.Setenv("PROMPT_DIR", dir)
	s, err = LoadPrompt("", "preamble")
	require.NoError(t, err)
	assert.Equal(t, "Be kind.", s)
}
