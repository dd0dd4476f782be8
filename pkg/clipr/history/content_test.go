package history

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashContentStable(t *testing.T) {
	assert.Equal(t, HashContent(Text("hello")), HashContent(Text("hello")))
	assert.NotEqual(t, HashContent(Text("hello")), HashContent(Text("hello ")))
	assert.Equal(t,
		HashContent(Image([]byte{1, 2, 3}, "image/png")),
		HashContent(Image([]byte{1, 2, 3}, "image/png")))
	assert.NotEqual(t,
		HashContent(Image([]byte{1, 2, 3}, "image/png")),
		HashContent(Image([]byte{1, 2, 3}, "image/jpeg")))
}

func TestHashContentSeparatesKinds(t *testing.T) {
	hashes := map[uint64]string{}
	for name, c := range map[string]Content{
		"text":       Text("a/b"),
		"file":       FileRef("a", "b"),
		"file-split": FileRef("a/", ""),
		"image":      Image([]byte("a/b"), ""),
		"empty-text": Text(""),
		"empty-file": FileRef("", ""),
	} {
		h := HashContent(c)
		if other, dup := hashes[h]; dup {
			t.Errorf("%s and %s hash alike", name, other)
		}
		hashes[h] = name
	}
}

// File references are addressed by path and MIME type, not by the bytes on
// disk. Rewriting the file must not produce a second entry.
func TestFileRefHashIgnoresFileBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("version one"), 0o644))
	before := HashContent(FileRef(path, "text/plain"))

	require.NoError(t, os.WriteFile(path, []byte("version two, longer"), 0o644))
	after := HashContent(FileRef(path, "text/plain"))
	assert.Equal(t, before, after)

	l := New()
	first := l.Insert(FileRef(path, "text/plain"))
	require.NoError(t, os.WriteFile(path, []byte("version three"), 0o644))
	second := l.Insert(FileRef(path, "text/plain"))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, l.Len())

	assert.NotEqual(t, before, HashContent(FileRef(path, "application/octet-stream")))
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name    string
		content Content
		maxLen  int
		want    string
	}{
		{"short text", Text("hello"), 10, "hello"},
		{"collapses whitespace", Text("  one\n\ttwo  "), 20, "one two"},
		{"truncates runes", Text("héllo wörld"), 5, "héllo..."},
		{"no limit", Text(strings.Repeat("x", 30)), 0, strings.Repeat("x", 30)},
		{"image", Image(make([]byte, 2048), "image/png"), 10, "[Image: image/png (2.0 KiB)]"},
		{"file", FileRef("/home/me/report.pdf", "application/pdf"), 10, "[File: application/pdf (report.pdf)]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.content.Preview(tt.maxLen); got != tt.want {
				t.Errorf("Preview(%d) = %q, want %q", tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestSearchText(t *testing.T) {
	assert.Equal(t, "some text", Text("some text").SearchText())
	assert.Equal(t, "[image]", Image([]byte{1}, "image/png").SearchText())
	assert.Equal(t, "[file: a.txt]", FileRef("/x/a.txt", "text/plain").SearchText())
}

func TestIsImage(t *testing.T) {
	assert.True(t, Image(nil, "image/png").IsImage())
	assert.True(t, FileRef("/a.png", "image/png").IsImage())
	assert.False(t, FileRef("/a.txt", "text/plain").IsImage())
	assert.False(t, Text("image/png").IsImage())
}

func TestParseKindRoundTrip(t *testing.T) {
	for _, k := range []Kind{KindText, KindImage, KindFile} {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("video")
	assert.Error(t, err)
}
