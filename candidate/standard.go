package candidate

import (
	"sort"

	"lexime/rerank"
)

func resortByScore(scored []rerank.Scored) {
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score < scored[j].Score })
}

// generateStandard implements spec §4.5's five-step Standard merge.
func (g *Generator) generateStandard(reading string, scored []rerank.Scored, variants map[string][]string, now uint64) Result {
	var surfaces []string
	seen := map[string]bool{}
	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		surfaces = append(surfaces, s)
	}

	// 1. Top-N Viterbi paths, already learning-boosted and sorted, each
	// immediately followed by its rewriter variants (script/width forms).
	for _, s := range scored {
		base := s.Path.Surface()
		add(base)
		for _, v := range variants[base] {
			add(v)
		}
	}

	// 2. Learned surfaces for this reading not already present, boost desc.
	if g.History != nil {
		for _, succ := range g.History.LearnedSurfaces(reading, now) {
			add(succ.Surface)
		}
	}

	// 3. Raw hiragana of the reading, promoted ahead of later steps if it
	// carries a learning boost (Open Question: interleaved-by-boost
	// revision, SPEC_FULL.md §6).
	rawBoost := 0.0
	if g.History != nil {
		rawBoost = g.History.Boost(reading, reading, now)
	}
	if rawBoost > 0 {
		surfaces = insertByBoost(surfaces, reading, seen)
	} else {
		add(reading)
	}

	// 4. Predictive prefix search via Dictionary.
	for _, m := range g.Dict.PredictiveSearch(reading) {
		for _, e := range m.Entries {
			add(e.Surface)
		}
	}

	// 5. Exact dictionary lookup.
	if entries, ok := g.Dict.Lookup(reading); ok {
		for _, e := range entries {
			add(e.Surface)
		}
	}

	if len(surfaces) > g.Config.MaxResults {
		surfaces = surfaces[:g.Config.MaxResults]
	}
	return Result{Surfaces: surfaces, Paths: scored}
}

// insertByBoost inserts surface at index 1 of list, right after list[0]
// (it already has a learning boost, so it's promoted ahead of the Viterbi
// paths that follow position 0, but never ahead of the #1 path already
// merged). Into an empty list it goes at index 0. This approximates
// "interleave by boost" without tracking per-surface boosts across the
// whole list.
func insertByBoost(list []string, surface string, seen map[string]bool) []string {
	if seen[surface] {
		return list
	}
	seen[surface] = true
	if len(list) == 0 {
		return []string{surface}
	}
	out := make([]string, 0, len(list)+1)
	out = append(out, list[0])
	out = append(out, surface)
	out = append(out, list[1:]...)
	return out
}
