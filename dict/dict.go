// Package dict implements the read-only system dictionary (spec §3, §4.2):
// reading -> ordered []DictEntry, with exact/common-prefix/predictive search
// over a Patricia radix trie, plus the LXDX on-disk format (spec §6).
package dict

import (
	"unicode/utf8"

	"github.com/tchap/go-patricia/v2/patricia"
)

// Role tags a DictEntry's part-of-speech role for phrase grouping (spec §4.4).
type Role int

const (
	ContentWord Role = iota
	FunctionWord
	Suffix
	Prefix
)

func (r Role) String() string {
	switch r {
	case ContentWord:
		return "content"
	case FunctionWord:
		return "function"
	case Suffix:
		return "suffix"
	case Prefix:
		return "prefix"
	default:
		return "unknown"
	}
}

// Entry is a single dictionary item (spec §3's DictEntry). Entries are
// created at build time and never mutated at runtime.
type Entry struct {
	Reading  string
	Surface  string
	LeftID   uint16
	RightID  uint16
	WordCost int16
	Role     Role
}

// PrefixMatch is one result of a common-prefix search: the matched byte
// length of the query and the entries stored at that reading.
type PrefixMatch struct {
	MatchedLen int // in bytes, matching utf8.RuneCountInString(query[:MatchedLen]) runes
	Entries    []Entry
}

// PredictiveMatch is one result of a predictive search.
type PredictiveMatch struct {
	Reading string
	Entries []Entry
}

// Dictionary is a read-only, concurrency-safe reading->entries store.
type Dictionary struct {
	trie *patricia.Trie
}

// New builds an empty dictionary. Use Load to populate from an LXDX file, or
// build one programmatically (dictionary-compilation tooling is out of
// scope; tests populate via Insert).
func New() *Dictionary {
	return &Dictionary{trie: patricia.NewTrie()}
}

// Insert adds entries for a reading, appending to any entries already present
// for that exact reading. Not concurrency-safe; call only during build/load.
func (d *Dictionary) Insert(reading string, entries ...Entry) {
	key := patricia.Prefix(reading)
	if existing := d.trie.Get(key); existing != nil {
		d.trie.Set(key, append(existing.([]Entry), entries...))
		return
	}
	d.trie.Insert(key, append([]Entry{}, entries...))
}

// Lookup returns the exact entries for reading, or (nil, false) if the
// reading is not present (spec: "Fails with NotFound on unknown keys").
func (d *Dictionary) Lookup(reading string) ([]Entry, bool) {
	v := d.trie.Get(patricia.Prefix(reading))
	if v == nil {
		return nil, false
	}
	return v.([]Entry), true
}

// CommonPrefixSearch enumerates every prefix of query that is itself a
// dictionary reading, shortest first.
func (d *Dictionary) CommonPrefixSearch(query string) []PrefixMatch {
	var out []PrefixMatch
	// Walk increasing rune-prefixes; go-patricia operates on byte prefixes so
	// we probe rune-boundary byte offsets directly rather than using
	// VisitPrefixes (which would also need byte offsets translated back to
	// rune counts for MatchedLen).
	for i, r := range query {
		offset := i + utf8.RuneLen(r)
		prefix := query[:offset]
		if v := d.trie.Get(patricia.Prefix(prefix)); v != nil {
			out = append(out, PrefixMatch{MatchedLen: offset, Entries: v.([]Entry)})
		}
	}
	return out
}

// PredictiveSearch enumerates every reading that starts with prefix.
func (d *Dictionary) PredictiveSearch(prefix string) []PredictiveMatch {
	var out []PredictiveMatch
	_ = d.trie.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, item patricia.Item) error {
		out = append(out, PredictiveMatch{Reading: string(p), Entries: item.([]Entry)})
		return nil
	})
	return out
}

// Len reports the number of distinct readings held.
func (d *Dictionary) Len() int {
	n := 0
	_ = d.trie.Visit(func(p patricia.Prefix, item patricia.Item) error {
		n++
		return nil
	})
	return n
}

// Lookuper is the read interface CompositeDictionary and the candidate
// generator depend on, satisfied by both *Dictionary and *userdict.Dictionary.
type Lookuper interface {
	Lookup(reading string) ([]Entry, bool)
	CommonPrefixSearch(query string) []PrefixMatch
	PredictiveSearch(prefix string) []PredictiveMatch
}

var _ Lookuper = (*Dictionary)(nil)

// CompositeDictionary layers a user dictionary atop a system dictionary
// (spec §4.2): every operation concatenates both layers, user entries first
// so they win ties in downstream cost comparisons.
type CompositeDictionary struct {
	User   Lookuper
	System Lookuper
}

var _ Lookuper = (*CompositeDictionary)(nil)

func (c *CompositeDictionary) Lookup(reading string) ([]Entry, bool) {
	var out []Entry
	uOK, sOK := false, false
	if c.User != nil {
		if e, ok := c.User.Lookup(reading); ok {
			out = append(out, e...)
			uOK = true
		}
	}
	if c.System != nil {
		if e, ok := c.System.Lookup(reading); ok {
			out = append(out, e...)
			sOK = true
		}
	}
	return out, uOK || sOK
}

func (c *CompositeDictionary) CommonPrefixSearch(query string) []PrefixMatch {
	byLen := map[int][]Entry{}
	var order []int
	merge := func(matches []PrefixMatch) {
		for _, m := range matches {
			if _, seen := byLen[m.MatchedLen]; !seen {
				order = append(order, m.MatchedLen)
			}
			byLen[m.MatchedLen] = append(byLen[m.MatchedLen], m.Entries...)
		}
	}
	if c.User != nil {
		merge(c.User.CommonPrefixSearch(query))
	}
	if c.System != nil {
		merge(c.System.CommonPrefixSearch(query))
	}
	out := make([]PrefixMatch, 0, len(order))
	seen := map[int]bool{}
	for _, l := range order {
		if seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, PrefixMatch{MatchedLen: l, Entries: byLen[l]})
	}
	return out
}

func (c *CompositeDictionary) PredictiveSearch(prefix string) []PredictiveMatch {
	byReading := map[string][]Entry{}
	var order []string
	merge := func(matches []PredictiveMatch) {
		for _, m := range matches {
			if _, seen := byReading[m.Reading]; !seen {
				order = append(order, m.Reading)
			}
			byReading[m.Reading] = append(byReading[m.Reading], m.Entries...)
		}
	}
	if c.User != nil {
		merge(c.User.PredictiveSearch(prefix))
	}
	if c.System != nil {
		merge(c.System.PredictiveSearch(prefix))
	}
	out := make([]PredictiveMatch, 0, len(order))
	for _, r := range order {
		out = append(out, PredictiveMatch{Reading: r, Entries: byReading[r]})
	}
	return out
}
