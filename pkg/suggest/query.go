package suggest

import (
	"sort"
	"strings"
	"sync"

	"github.com/bastiangx/propserve/pkg/dictionary"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// collators are not safe for concurrent use, so each sort borrows one
var collatorPool = sync.Pool{
	New: func() any {
		return collate.New(language.Und)
	},
}

// Query returns the entries whose key contains prefix, sorted by key.
// Entries with equal keys keep their dictionary order.
func Query(entries []dictionary.Entry, prefix string) []dictionary.Entry {
	matches := make([]dictionary.Entry, 0)
	for _, e := range entries {
		if strings.Contains(e.Key, prefix) {
			matches = append(matches, e)
		}
	}
	SortByKey(matches)
	return matches
}

// SortByKey sorts entries by key in place, keeping equal keys in order.
func SortByKey(entries []dictionary.Entry) {
	c := collatorPool.Get().(*collate.Collator)
	defer collatorPool.Put(c)

	sort.SliceStable(entries, func(i, j int) bool {
		return c.CompareString(entries[i].Key, entries[j].Key) < 0
	})
}

// Limit cuts entries to at most n. n <= 0 means no limit.
func Limit(entries []dictionary.Entry, n int) []dictionary.Entry {
	if n > 0 && len(entries) > n {
		return entries[:n]
	}
	return entries
}
