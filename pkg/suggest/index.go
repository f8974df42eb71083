package suggest

import (
	"sort"

	"github.com/bastiangx/propserve/pkg/dictionary"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

var _ ISearcher = (*Index)(nil)

// Index is a substring index over dictionary keys.
// Every suffix of every key is a trie key whose item lists the positions of
// the entries it came from, so a substring search is a subtree visit.
// An Index is read-only after NewIndex and safe for concurrent use.
type Index struct {
	entries []dictionary.Entry
	trie    *patricia.Trie
}

// NewIndex builds an index over entries. The slice must not be modified
// afterwards.
func NewIndex(entries []dictionary.Entry) *Index {
	trie := patricia.NewTrie()
	for i, e := range entries {
		for offset := range e.Key {
			suffix := patricia.Prefix(e.Key[offset:])
			if item := trie.Get(suffix); item != nil {
				trie.Set(suffix, append(item.([]int), i))
				continue
			}
			trie.Insert(suffix, []int{i})
		}
	}
	return &Index{entries: entries, trie: trie}
}

// Len returns the number of indexed entries.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Search returns the entries whose key contains substr, sorted like Query.
func (ix *Index) Search(substr string) []dictionary.Entry {
	if substr == "" {
		all := make([]dictionary.Entry, len(ix.entries))
		copy(all, ix.entries)
		SortByKey(all)
		return all
	}

	seen := make(map[int]struct{})
	err := ix.trie.VisitSubtree(patricia.Prefix(substr), func(_ patricia.Prefix, item patricia.Item) error {
		for _, pos := range item.([]int) {
			seen[pos] = struct{}{}
		}
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting suffix trie: %v", err)
		return []dictionary.Entry{}
	}

	positions := make([]int, 0, len(seen))
	for pos := range seen {
		positions = append(positions, pos)
	}
	// dictionary order first so equal keys stay stable under SortByKey
	sort.Ints(positions)

	matches := make([]dictionary.Entry, 0, len(positions))
	for _, pos := range positions {
		matches = append(matches, ix.entries[pos])
	}
	SortByKey(matches)
	return matches
}
