package rerank

import (
	"sort"
	"unicode"

	"lexime/connection"
	"lexime/dict"
	"lexime/lattice"
)

// Config holds the tunable cost coefficients of the [cost] and [reranker]
// sections of settings.toml (spec §6).
type Config struct {
	SegmentPenalty       int64
	MixedScriptBonus     int64
	KatakanaPenalty      int64
	PureKanjiBonus       int64
	LatinPenalty         int64
	LengthVarianceWeight float64
	StructureCostFilter  int64
}

// DefaultConfig returns the coefficients used when settings.toml supplies
// none (spec §6 lists these as settings keys, not hardcoded constants, but
// every installation needs a working default).
func DefaultConfig() Config {
	return Config{
		SegmentPenalty:       80,
		MixedScriptBonus:     -50,
		KatakanaPenalty:      30,
		PureKanjiBonus:       -40,
		LatinPenalty:         60,
		LengthVarianceWeight: 10,
		StructureCostFilter:  5000,
	}
}

// Scored pairs a path with its rerank score and its grouped phrases.
type Scored struct {
	Path    lattice.Path
	Phrases []Phrase
	Score   int64
}

// Reranker scores over-generated Viterbi paths by an additive formula (spec
// §4.4) and drops paths whose structure penalty alone exceeds
// StructureCostFilter (too fragmented to be useful).
type Reranker struct {
	Matrix *connection.Matrix
	Config Config
}

func NewReranker(m *connection.Matrix, cfg Config) *Reranker {
	return &Reranker{Matrix: m, Config: cfg}
}

// Rerank scores and sorts paths ascending by score (lowest is best).
func (rr *Reranker) Rerank(paths []lattice.Path) []Scored {
	out := make([]Scored, 0, len(paths))
	for _, p := range paths {
		phrases := GroupPhrases(p.Segments)
		sp := rr.structurePenalty(p.Segments)
		if sp > rr.Config.StructureCostFilter {
			continue
		}
		score := p.TotalCost +
			sp +
			int64(len(phrases))*rr.Config.SegmentPenalty +
			int64(float64(lengthVariance(phrases))*rr.Config.LengthVarianceWeight) +
			rr.scriptPenalties(phrases)
		out = append(out, Scored{Path: p, Phrases: phrases, Score: score})
	}
	sortScoredAscending(out)
	return out
}

// structurePenalty sums the transition costs internal to each phrase: the
// cost of every morpheme-to-morpheme edge that does not cross a phrase
// boundary (spec §4.4, "per Mozc convention").
func (rr *Reranker) structurePenalty(segs []lattice.Segment) int64 {
	var total int64
	for i := 1; i < len(segs); i++ {
		role := dict.Role(segs[i].Role)
		if role != dict.Suffix && role != dict.FunctionWord {
			continue // phrase boundary, not an internal edge
		}
		total += int64(rr.Matrix.Cost(segs[i-1].RightID, segs[i].LeftID))
	}
	return total
}

// lengthVariance is the population variance of phrase surface lengths (in
// runes), penalizing paths with wildly uneven phrase sizes.
func lengthVariance(phrases []Phrase) float64 {
	if len(phrases) == 0 {
		return 0
	}
	var sum float64
	lens := make([]float64, len(phrases))
	for i, p := range phrases {
		l := float64(len([]rune(p.Surface)))
		lens[i] = l
		sum += l
	}
	mean := sum / float64(len(phrases))
	var variance float64
	for _, l := range lens {
		d := l - mean
		variance += d * d
	}
	return variance / float64(len(phrases))
}

func (rr *Reranker) scriptPenalties(phrases []Phrase) int64 {
	var total int64
	for _, p := range phrases {
		scripts := classifyScripts(p.Surface)
		switch {
		case scripts.kanji && !scripts.kana && !scripts.latin && !scripts.katakana:
			total += rr.Config.PureKanjiBonus
		case scripts.katakana && !scripts.kanji:
			total += rr.Config.KatakanaPenalty
		case scripts.latin:
			total += rr.Config.LatinPenalty
		case countTrue(scripts.kanji, scripts.kana, scripts.katakana, scripts.latin) >= 2:
			total += rr.Config.MixedScriptBonus
		}
	}
	return total
}

type scriptSet struct {
	kanji, kana, katakana, latin bool
}

func classifyScripts(s string) scriptSet {
	var set scriptSet
	for _, r := range s {
		switch {
		case unicode.In(r, unicode.Han):
			set.kanji = true
		case unicode.In(r, unicode.Katakana):
			set.katakana = true
		case unicode.In(r, unicode.Hiragana):
			set.kana = true
		case r < unicode.MaxASCII && unicode.IsLetter(r):
			set.latin = true
		}
	}
	return set
}

func countTrue(bs ...bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}

func sortScoredAscending(s []Scored) {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Score < s[j].Score })
}
