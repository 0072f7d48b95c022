// Package userdict implements the writable reading->entries layer composed
// atop the system dictionary (spec §3, §4.2): entries registered by the
// user get "general noun" connection ids and a word_cost that always wins
// ties against system entries. Persisted in the LXUW format.
package userdict

import (
	"sync"
	"unicode/utf8"

	"github.com/tchap/go-patricia/v2/patricia"

	"lexime/dict"
)

// GeneralNounLeftID and GeneralNounRightID are the connection ids assigned
// to every user-registered entry (spec §4.2).
const (
	GeneralNounLeftID  uint16 = 1
	GeneralNounRightID uint16 = 1
)

// WinningCost is strictly lower than any system dictionary word cost, so a
// user entry always wins cost ties against a system entry for the same
// reading (spec §4.2).
const WinningCost int16 = -30000

// Dictionary is a writable reading->entries store guarded by a reader/writer
// lock (spec §5: "UserDictionary ... Reader/writer lock"). Entries are
// indexed by the same Patricia radix trie dict.Dictionary uses for the
// system dictionary (spec §4.2 shares one trie shape across both layers).
type Dictionary struct {
	mu   sync.RWMutex
	trie *patricia.Trie
}

// New builds an empty user dictionary.
func New() *Dictionary {
	return &Dictionary{trie: patricia.NewTrie()}
}

// Register adds a user word. The caller supplies only reading and surface:
// leftID/rightID are always the general-noun ids and wordCost is always
// WinningCost, per spec §4.2.
func (d *Dictionary) Register(reading, surface string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e := dict.Entry{
		Reading:  reading,
		Surface:  surface,
		LeftID:   GeneralNounLeftID,
		RightID:  GeneralNounRightID,
		WordCost: WinningCost,
		Role:     dict.ContentWord,
	}
	key := patricia.Prefix(reading)
	if existing := d.trie.Get(key); existing != nil {
		d.trie.Set(key, append(existing.([]dict.Entry), e))
		return
	}
	d.trie.Insert(key, []dict.Entry{e})
}

// Unregister removes every entry for reading whose surface matches. Returns
// the number of entries removed.
func (d *Dictionary) Unregister(reading, surface string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := patricia.Prefix(reading)
	v := d.trie.Get(key)
	if v == nil {
		return 0
	}
	existing := v.([]dict.Entry)
	out := existing[:0]
	removed := 0
	for _, e := range existing {
		if e.Surface == surface {
			removed++
			continue
		}
		out = append(out, e)
	}
	if len(out) == 0 {
		d.trie.Delete(key)
	} else {
		d.trie.Set(key, out)
	}
	return removed
}

func (d *Dictionary) Lookup(reading string) ([]dict.Entry, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v := d.trie.Get(patricia.Prefix(reading))
	if v == nil {
		return nil, false
	}
	return v.([]dict.Entry), true
}

// CommonPrefixSearch enumerates every prefix of query that is itself a
// registered reading, the same rune-boundary probing dict.Dictionary uses.
func (d *Dictionary) CommonPrefixSearch(query string) []dict.PrefixMatch {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []dict.PrefixMatch
	for i, r := range query {
		offset := i + utf8.RuneLen(r)
		prefix := query[:offset]
		if v := d.trie.Get(patricia.Prefix(prefix)); v != nil {
			out = append(out, dict.PrefixMatch{MatchedLen: offset, Entries: v.([]dict.Entry)})
		}
	}
	return out
}

func (d *Dictionary) PredictiveSearch(prefix string) []dict.PredictiveMatch {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []dict.PredictiveMatch
	_ = d.trie.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, item patricia.Item) error {
		out = append(out, dict.PredictiveMatch{Reading: string(p), Entries: item.([]dict.Entry)})
		return nil
	})
	return out
}

// Len reports the number of distinct registered readings.
func (d *Dictionary) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n := 0
	_ = d.trie.Visit(func(p patricia.Prefix, item patricia.Item) error {
		n++
		return nil
	})
	return n
}

var _ dict.Lookuper = (*Dictionary)(nil)
