// Package rerank post-processes Viterbi N-best paths into ranked, phrase-
// grouped candidates (spec §4.4): an additive-score reranker, a set of
// rewriters that append script variants, and phrase grouping over POS roles.
package rerank

import (
	"lexime/dict"
	"lexime/lattice"
)

// Phrase is one bunsetsu: a content word plus any attached suffix/function-
// word segments, collapsed into a single editing unit (spec glossary).
type Phrase struct {
	Reading string
	Surface string
	Start   int
	End     int
}

// GroupPhrases collapses runs of [ContentWord] [Suffix|FunctionWord]* into
// single phrase segments (spec §4.4). The output of candidate generation is
// phrases, not morphemes.
func GroupPhrases(segs []lattice.Segment) []Phrase {
	var phrases []Phrase
	i := 0
	for i < len(segs) {
		p := Phrase{
			Reading: segs[i].Reading,
			Surface: segs[i].Surface,
			Start:   segs[i].Start,
			End:     segs[i].End,
		}
		i++
		for i < len(segs) {
			role := dict.Role(segs[i].Role)
			if role != dict.Suffix && role != dict.FunctionWord {
				break
			}
			p.Reading += segs[i].Reading
			p.Surface += segs[i].Surface
			p.End = segs[i].End
			i++
		}
		phrases = append(phrases, p)
	}
	return phrases
}
