// Package completion answers editor completion requests for properties
// documents whose first line names a dictionary:
//
//	# vscode_properties_completion_proposals=/path/or/https/url
//
// Keys are only offered while the cursor is still in the key part of a
// line. Every failure along the way (missing directive, unreadable
// dictionary, network trouble) produces no items instead of an error, since
// editors ask again on the next keystroke anyway.
package completion

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"unicode/utf16"

	"github.com/bastiangx/propserve/pkg/dictionary"
	"github.com/bastiangx/propserve/pkg/suggest"
	"github.com/charmbracelet/log"
)

// DirectivePrefix must start the first line of a document for completion
// to be enabled; the rest of the line is the dictionary path or URL.
const DirectivePrefix = "# vscode_properties_completion_proposals="

// KindKeyword is the item kind of every suggestion.
const KindKeyword = "keyword"

// Position is a zero-based cursor position. Character counts UTF-16 code
// units, as editors and LSP clients do.
type Position struct {
	Line      int
	Character int
}

// Item is one suggestion handed back to the editor.
type Item struct {
	Label  string
	Detail string
	Kind   string
}

// indexed pairs a cached dictionary with the index built from it.
type indexed struct {
	dict  *dictionary.Dictionary
	index *suggest.Index
}

// Provider serves completion requests from one dictionary cache.
// It is safe for concurrent use.
type Provider struct {
	cache      *dictionary.Cache
	maxResults atomic.Int64
	indexes    map[string]indexed
	mu         sync.Mutex
}

// NewProvider creates a provider backed by cache. maxResults caps the number
// of items per request; 0 means no cap.
func NewProvider(cache *dictionary.Cache, maxResults int) *Provider {
	p := &Provider{
		cache:   cache,
		indexes: make(map[string]indexed),
	}
	p.SetMaxResults(maxResults)
	return p
}

// SetMaxResults changes the per-request cap.
func (p *Provider) SetMaxResults(n int) {
	if n < 0 {
		n = 0
	}
	p.maxResults.Store(int64(n))
}

// ParseDirective extracts the dictionary identifier from a document's first
// line. It reports false when the line is not a directive or names nothing.
func ParseDirective(firstLine string) (string, bool) {
	rest, ok := strings.CutPrefix(firstLine, DirectivePrefix)
	if !ok {
		return "", false
	}
	id := strings.TrimSpace(rest)
	return id, id != ""
}

// LinePrefix returns the text of line pos.Line up to the cursor.
func LinePrefix(text string, pos Position) (string, bool) {
	if pos.Line < 0 || pos.Character < 0 {
		return "", false
	}
	lines := strings.Split(text, "\n")
	if pos.Line >= len(lines) {
		return "", false
	}
	line := strings.TrimSuffix(lines[pos.Line], "\r")
	return cutUTF16(line, pos.Character), true
}

// cutUTF16 returns the longest prefix of s spanning at most n UTF-16 units.
func cutUTF16(s string, n int) string {
	units := 0
	for i, r := range s {
		size := utf16.RuneLen(r)
		if size < 0 {
			size = 1
		}
		if units+size > n {
			return s[:i]
		}
		units += size
	}
	return s
}

// InKeyContext reports whether a line cut at the cursor is still editing a
// key: not a comment, and no '=' typed after the first character.
func InKeyContext(linePrefix string) bool {
	return !strings.HasPrefix(linePrefix, "#") && strings.Index(linePrefix, "=") <= 0
}

// Complete returns the suggestions for the cursor at pos in text.
// The result is never nil.
func (p *Provider) Complete(ctx context.Context, text string, pos Position) []Item {
	if text == "" && pos == (Position{}) {
		return []Item{directiveItem()}
	}

	linePrefix, ok := LinePrefix(text, pos)
	if !ok || !InKeyContext(linePrefix) {
		return []Item{}
	}

	firstLine, _, _ := strings.Cut(text, "\n")
	id, ok := ParseDirective(strings.TrimSuffix(firstLine, "\r"))
	if !ok {
		return []Item{}
	}

	index, err := p.indexFor(ctx, dictionary.ParseSource(id))
	if err != nil {
		log.Debugf("No completions from %s: %v", id, err)
		return []Item{}
	}

	matches := suggest.Limit(index.Search(linePrefix), int(p.maxResults.Load()))
	items := make([]Item, 0, len(matches))
	for _, e := range matches {
		items = append(items, Item{
			Label:  e.Key,
			Detail: e.Description,
			Kind:   KindKeyword,
		})
	}
	log.Debug("Completed", "source", id, "prefix", linePrefix, "items", len(items))
	return items
}

// indexFor returns the index of the current dictionary for src, rebuilding
// it only when the cache handed back a different dictionary.
func (p *Provider) indexFor(ctx context.Context, src dictionary.Source) (*suggest.Index, error) {
	dict, err := p.cache.GetOrLoad(ctx, src)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if cached, ok := p.indexes[src.ID()]; ok && cached.dict == dict {
		return cached.index, nil
	}
	index := suggest.NewIndex(dict.Entries)
	p.indexes[src.ID()] = indexed{dict: dict, index: index}
	return index, nil
}

// Forget drops everything cached for the dictionary id.
func (p *Provider) Forget(id string) bool {
	p.mu.Lock()
	delete(p.indexes, id)
	p.mu.Unlock()
	return p.cache.Forget(id)
}

// Stats returns cache counters plus the number of built indexes.
func (p *Provider) Stats() map[string]int {
	stats := p.cache.Stats()
	p.mu.Lock()
	stats["indexes"] = len(p.indexes)
	p.mu.Unlock()
	stats["maxResults"] = int(p.maxResults.Load())
	return stats
}

func directiveItem() Item {
	return Item{
		Label:  DirectivePrefix,
		Detail: "Path or URL of the dictionary to complete keys from",
		Kind:   KindKeyword,
	}
}
