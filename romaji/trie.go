// Package romaji implements the roman-letter-to-kana transducer (spec §4.1):
// a prefix trie over (roman key -> kana) pairs, the convert() state machine
// that drains pending romaji into composed kana, and the post-drain collapse
// pass.
package romaji

import (
	"github.com/tchap/go-patricia/v2/patricia"
)

// MatchKind is the result of looking up a romaji key in the Trie.
type MatchKind int

const (
	None MatchKind = iota
	MatchPrefix
	Exact
	ExactAndPrefix
)

// Trie is a set of (roman-letter key -> kana string) entries, built once
// from configuration (spec §4.1, like dict.Dictionary it is a Patricia radix
// trie — the same primitive wordserve uses for prefix completion).
type Trie struct {
	trie *patricia.Trie
}

// NewTrie builds a Trie from a key->kana table.
func NewTrie(table map[string]string) *Trie {
	t := &Trie{trie: patricia.NewTrie()}
	for k, v := range table {
		t.trie.Insert(patricia.Prefix(k), v)
	}
	return t
}

// Lookup classifies key against the trie (spec §4.1): None, MatchPrefix (a
// longer key exists but key itself isn't one), Exact (key is a member, no
// longer member extends it), or ExactAndPrefix (both).
func (t *Trie) Lookup(key string) (MatchKind, string) {
	if key == "" {
		return None, ""
	}
	exactVal := t.trie.Get(patricia.Prefix(key))
	hasLonger := false
	_ = t.trie.VisitSubtree(patricia.Prefix(key), func(p patricia.Prefix, item patricia.Item) error {
		if string(p) != key {
			hasLonger = true
		}
		return nil
	})
	switch {
	case exactVal != nil && hasLonger:
		return ExactAndPrefix, exactVal.(string)
	case exactVal != nil:
		return Exact, exactVal.(string)
	case hasLonger:
		return MatchPrefix, ""
	default:
		return None, ""
	}
}

// Has reports whether key is an exact member, used by the collapse pass to
// validate a candidate latin+vowel composite.
func (t *Trie) Has(key string) (string, bool) {
	v := t.trie.Get(patricia.Prefix(key))
	if v == nil {
		return "", false
	}
	return v.(string), true
}
