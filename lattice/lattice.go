// Package lattice builds a word-graph over a reading and runs N-best Viterbi
// search over it (spec §3, §4.3). A Lattice is built once per
// candidate-generation call and discarded after.
package lattice

import (
	"lexime/dict"
)

// UnknownWordCost is the default cost assigned to single-character
// unknown-word nodes inserted to guarantee lattice connectivity (spec §4.3).
const UnknownWordCost = 10000

// Node represents a candidate dict.Entry occupying [Start, End) in the
// reading (character offsets, not bytes). Unknown-word nodes synthesize a
// single-character entry with UnknownWordCost.
type Node struct {
	Start, End int
	Entry      dict.Entry
	Unknown    bool
}

// Lattice is the set of node slots indexed by end position, plus BOS/EOS
// sentinels. Slot i holds every node ending at character offset i.
type Lattice struct {
	Reading  []rune
	NodesAt  map[int][]*Node // keyed by End position
	BOS, EOS *Node
}

// Build constructs a lattice over reading by probing CommonPrefixSearch at
// every character offset (spec §4.3). If no entry begins at i, a
// single-character unknown-word node is inserted so the lattice stays
// connected.
func Build(lookup dict.Lookuper, reading string) *Lattice {
	runes := []rune(reading)
	n := len(runes)
	l := &Lattice{
		Reading: runes,
		NodesAt: make(map[int][]*Node),
		BOS:     &Node{Start: 0, End: 0},
		EOS:     &Node{Start: n, End: n},
	}
	for i := 0; i < n; i++ {
		matches := lookup.CommonPrefixSearch(string(runes[i:]))
		found := false
		for _, m := range matches {
			runeLen := runeLenOfByteLen(runes[i:], m.MatchedLen)
			end := i + runeLen
			for _, e := range m.Entries {
				l.NodesAt[end] = append(l.NodesAt[end], &Node{Start: i, End: end, Entry: e})
				found = true
			}
		}
		if !found {
			end := i + 1
			l.NodesAt[end] = append(l.NodesAt[end], &Node{
				Start: i, End: end, Unknown: true,
				Entry: dict.Entry{
					Reading:  string(runes[i:end]),
					Surface:  string(runes[i:end]),
					WordCost: UnknownWordCost,
					Role:     dict.ContentWord,
				},
			})
		}
	}
	return l
}

// runeLenOfByteLen converts a byte-length match (as returned by
// CommonPrefixSearch, measured against the UTF-8 encoding of runes) into a
// rune count.
func runeLenOfByteLen(runes []rune, byteLen int) int {
	count := 0
	consumed := 0
	for _, r := range runes {
		if consumed >= byteLen {
			break
		}
		consumed += runeByteLen(r)
		count++
	}
	return count
}

func runeByteLen(r rune) int {
	switch {
	case r < 0x80:
		return 1
	case r < 0x800:
		return 2
	case r < 0x10000:
		return 3
	default:
		return 4
	}
}

// PredecessorsAt returns every node ending exactly at pos, i.e. candidate
// predecessors for a node starting at pos. pos==0 yields BOS.
func (l *Lattice) PredecessorsAt(pos int) []*Node {
	if pos == 0 {
		return []*Node{l.BOS}
	}
	return l.NodesAt[pos]
}
