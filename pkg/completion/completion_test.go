package completion

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bastiangx/propserve/pkg/dictionary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDictionary = `# sample dictionary
server.port=Port the HTTP server listens on
server.host=Interface to bind \
  (defaults to all)

spring.datasource.url=JDBC url
logging.level.root=Root log level
`

func newDictionaryFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keys.properties")
	require.NoError(t, os.WriteFile(path, []byte(sampleDictionary), 0o644))
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))
	return path
}

func labels(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Label)
	}
	return out
}

func TestParseDirective(t *testing.T) {
	testCases := []struct {
		line   string
		want   string
		wantOK bool
	}{
		{DirectivePrefix + "/tmp/keys.properties", "/tmp/keys.properties", true},
		{DirectivePrefix + "  https://example.com/keys  ", "https://example.com/keys", true},
		{DirectivePrefix, "", false},
		{DirectivePrefix + "   ", "", false},
		{"#vscode_properties_completion_proposals=/tmp/x", "", false},
		{" " + DirectivePrefix + "/tmp/x", "", false},
		{"a=b", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.line, func(t *testing.T) {
			got, ok := ParseDirective(tc.line)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLinePrefix(t *testing.T) {
	testCases := []struct {
		name   string
		text   string
		pos    Position
		want   string
		wantOK bool
	}{
		{"whole line", "abc", Position{0, 3}, "abc", true},
		{"cut mid line", "server.port", Position{0, 3}, "ser", true},
		{"second line", "a\nbcd", Position{1, 2}, "bc", true},
		{"past end of line", "abc", Position{0, 10}, "abc", true},
		{"crlf", "a\r\nbcd\r\n", Position{1, 3}, "bcd", true},
		{"non ascii", "héllo", Position{0, 2}, "hé", true},
		{"surrogate pair", "😀a", Position{0, 2}, "😀", true},
		{"inside surrogate pair", "😀a", Position{0, 1}, "", true},
		{"line out of range", "abc", Position{3, 0}, "", false},
		{"negative", "abc", Position{-1, 0}, "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := LinePrefix(tc.text, tc.pos)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestInKeyContext(t *testing.T) {
	assert.True(t, InKeyContext(""))
	assert.True(t, InKeyContext("server."))
	assert.True(t, InKeyContext("=leading"))
	assert.False(t, InKeyContext("# comment"))
	assert.False(t, InKeyContext("key=val"))
	assert.False(t, InKeyContext("key="))
}

func TestCompleteEmptyDocument(t *testing.T) {
	p := NewProvider(dictionary.NewCache(), 0)

	items := p.Complete(context.Background(), "", Position{})
	require.Len(t, items, 1)
	assert.Equal(t, DirectivePrefix, items[0].Label)
	assert.Equal(t, KindKeyword, items[0].Kind)

	assert.Empty(t, p.Complete(context.Background(), "", Position{0, 1}))
}

func TestComplete(t *testing.T) {
	ctx := context.Background()
	path := newDictionaryFile(t)
	p := NewProvider(dictionary.NewCache(), 0)
	doc := func(body string) string {
		return DirectivePrefix + path + "\n" + body
	}

	t.Run("substring matches sorted", func(t *testing.T) {
		items := p.Complete(ctx, doc("ser"), Position{1, 3})
		assert.Equal(t, []string{"server.host", "server.port"}, labels(items))
		assert.Equal(t, Item{
			Label:  "server.host",
			Detail: "Interface to bind (defaults to all)",
			Kind:   KindKeyword,
		}, items[0])
	})

	t.Run("matches anywhere in the key", func(t *testing.T) {
		items := p.Complete(ctx, doc("url"), Position{1, 3})
		assert.Equal(t, []string{"spring.datasource.url"}, labels(items))
	})

	t.Run("empty line offers everything", func(t *testing.T) {
		items := p.Complete(ctx, doc(""), Position{1, 0})
		assert.Equal(t, []string{"logging.level.root", "server.host", "server.port", "spring.datasource.url"}, labels(items))
	})

	t.Run("cursor mid line uses text before cursor", func(t *testing.T) {
		items := p.Complete(ctx, doc("logXXX"), Position{1, 3})
		assert.Equal(t, []string{"logging.level.root"}, labels(items))
	})

	t.Run("value part gets nothing", func(t *testing.T) {
		assert.Empty(t, p.Complete(ctx, doc("server.port=80"), Position{1, 14}))
	})

	t.Run("comment line gets nothing", func(t *testing.T) {
		assert.Empty(t, p.Complete(ctx, doc("# ser"), Position{1, 5}))
	})

	t.Run("directive line gets nothing", func(t *testing.T) {
		assert.Empty(t, p.Complete(ctx, doc(""), Position{0, 5}))
	})

	t.Run("crlf document", func(t *testing.T) {
		text := DirectivePrefix + path + "\r\nser\r\n"
		assert.Equal(t, []string{"server.host", "server.port"}, labels(p.Complete(ctx, text, Position{1, 3})))
	})

	stats := p.Stats()
	assert.Equal(t, 1, stats["loads"])
	assert.Equal(t, 1, stats["indexes"])
}

func TestCompleteWithoutDirective(t *testing.T) {
	path := newDictionaryFile(t)
	p := NewProvider(dictionary.NewCache(), 0)

	items := p.Complete(context.Background(), "# "+path+"\nser", Position{1, 3})
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.Zero(t, p.Stats()["loads"])
}

func TestCompleteMissingDictionary(t *testing.T) {
	p := NewProvider(dictionary.NewCache(), 0)
	missing := filepath.Join(t.TempDir(), "missing.properties")

	items := p.Complete(context.Background(), DirectivePrefix+missing+"\nser", Position{1, 3})
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.Equal(t, 1, p.Stats()["failures"])
}

func TestCompleteMaxResults(t *testing.T) {
	path := newDictionaryFile(t)
	p := NewProvider(dictionary.NewCache(), 2)
	text := DirectivePrefix + path + "\n"

	items := p.Complete(context.Background(), text, Position{1, 0})
	assert.Equal(t, []string{"logging.level.root", "server.host"}, labels(items))

	p.SetMaxResults(0)
	assert.Len(t, p.Complete(context.Background(), text, Position{1, 0}), 4)
}

func TestCompleteRebuildsIndexAfterChange(t *testing.T) {
	ctx := context.Background()
	path := newDictionaryFile(t)
	p := NewProvider(dictionary.NewCache(), 0)
	text := DirectivePrefix + path + "\nnew"

	assert.Empty(t, p.Complete(ctx, text, Position{1, 3}))

	require.NoError(t, os.WriteFile(path, []byte("brand.new.key=added\n"), 0o644))
	now := time.Now()
	require.NoError(t, os.Chtimes(path, now, now))

	assert.Equal(t, []string{"brand.new.key"}, labels(p.Complete(ctx, text, Position{1, 3})))
	assert.Equal(t, 2, p.Stats()["loads"])
}

func TestForget(t *testing.T) {
	ctx := context.Background()
	path := newDictionaryFile(t)
	p := NewProvider(dictionary.NewCache(), 0)

	p.Complete(ctx, DirectivePrefix+path+"\nser", Position{1, 3})
	assert.True(t, p.Forget(path))
	assert.Zero(t, p.Stats()["indexes"])
	assert.False(t, p.Forget(path))
}
