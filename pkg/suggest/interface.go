// Package suggest picks the dictionary entries to offer for what was typed.
//
// Matching is by substring, not prefix: an entry qualifies when its key
// contains the typed text anywhere, case-sensitively. Results are ordered by
// key using locale-aware collation.
//
// Query does this with a linear scan. Index answers the same question from a
// patricia trie holding every suffix of every key, which avoids touching
// keys that cannot match and is what long-lived callers should keep around.
package suggest

import "github.com/bastiangx/propserve/pkg/dictionary"

// ISearcher defines the lookup used by completion providers
type ISearcher interface {
	// Search returns entries whose key contains substr, in collation order
	Search(substr string) []dictionary.Entry

	// Len returns the number of indexed entries
	Len() int
}
