// Package candidate implements the candidate generator (spec §3, §4.5): the
// component that merges Viterbi N-best paths, learned surfaces, prefix
// predictions, and dictionary lookups into the surfaces a session displays.
package candidate

import (
	"lexime/connection"
	"lexime/dict"
	"lexime/history"
	"lexime/lattice"
	"lexime/rerank"
)

// Mode selects Standard or Predictive generation (spec §4.5).
type Mode int

const (
	Standard Mode = iota
	Predictive
)

// Config bundles the sizes the [candidates] section of settings.toml
// exposes (spec §6).
type Config struct {
	NBest      int
	MaxResults int
}

func DefaultConfig() Config {
	return Config{NBest: 5, MaxResults: 10}
}

// Generator merges every candidate source named in spec §4.5 into one
// ranked, deduped surface list.
type Generator struct {
	Dict     dict.Lookuper
	Matrix   *connection.Matrix
	History  *history.Store
	Reranker *rerank.Reranker
	Config   Config
}

func NewGenerator(d dict.Lookuper, m *connection.Matrix, h *history.Store, cfg Config) *Generator {
	return &Generator{
		Dict:     d,
		Matrix:   m,
		History:  h,
		Reranker: rerank.NewReranker(m, rerank.DefaultConfig()),
		Config:   cfg,
	}
}

// Result is what Generate returns: the display surfaces, the underlying
// Viterbi paths, and a surface -> phrases index callers use to record
// history for whichever surface the user actually committed (spec §4.5,
// §4.6). Surfaces added by a rewriter or a plain dictionary/predictive
// lookup map to their source path's phrases (rewriters preserve phrase
// boundaries; a bare dictionary entry has none, so Phrases[surface] is nil
// and history.Record degrades to a unigram-only record).
type Result struct {
	Surfaces []string
	Paths    []rerank.Scored
	Phrases  map[string][]rerank.Phrase
}

// Generate dispatches to the Standard or Predictive pipeline (spec §4.5).
func (g *Generator) Generate(reading string, mode Mode, now uint64) Result {
	if surfaces, ok := g.punctuationSubstitution(reading); ok {
		return Result{Surfaces: surfaces}
	}

	l := lattice.Build(g.Dict, reading)
	cf := lattice.DefaultCostFunction(g.Matrix)
	overgenerate := g.Config.NBest * 10
	if overgenerate < g.Config.NBest {
		overgenerate = g.Config.NBest
	}
	viterbiPaths := lattice.NBest(l, cf, overgenerate)

	scored := g.Reranker.Rerank(viterbiPaths)
	g.applyLearningBoost(scored, now)
	resortByScore(scored)
	if len(scored) > g.Config.NBest {
		scored = scored[:g.Config.NBest]
	}

	variants, phrases := g.rewriteVariants(scored)

	var result Result
	switch mode {
	case Predictive:
		result = g.generatePredictive(reading, scored, variants, now)
	default:
		result = g.generateStandard(reading, scored, variants, now)
	}
	result.Phrases = phrases
	return result
}

// rewriteVariants runs rerank.DefaultRewriters over every scored path,
// returning the extra surfaces each path's base surface expands to (script
// variants, numeric width variants, spec §4.4) and a surface -> phrases
// index covering both the base surfaces and their rewritten variants.
func (g *Generator) rewriteVariants(scored []rerank.Scored) (variants map[string][]string, phrases map[string][]rerank.Phrase) {
	variants = make(map[string][]string)
	phrases = make(map[string][]rerank.Phrase)
	rewriters := rerank.DefaultRewriters()

	for _, sc := range scored {
		base := sc.Path.Surface()
		if _, ok := phrases[base]; !ok {
			phrases[base] = sc.Phrases
		}
		for _, rw := range rewriters {
			for _, v := range rw(sc) {
				if v == "" || v == base {
					continue
				}
				variants[base] = append(variants[base], v)
				if _, ok := phrases[v]; !ok {
					phrases[v] = sc.Phrases
				}
			}
		}
	}
	return variants, phrases
}

// applyLearningBoost subtracts each path's learned-surface boost from its
// score (boost lowers cost, since lower score ranks better), per spec
// §4.5's "learning-aware: boost applied here".
func (g *Generator) applyLearningBoost(scored []rerank.Scored, now uint64) {
	if g.History == nil {
		return
	}
	for i := range scored {
		surface := scored[i].Path.Surface()
		boost := g.History.Boost(reading(scored[i]), surface, now)
		scored[i].Score -= int64(boost)
	}
}

func reading(s rerank.Scored) string {
	out := ""
	for _, p := range s.Phrases {
		out += p.Reading
	}
	return out
}
