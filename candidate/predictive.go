package candidate

import "lexime/rerank"

// maxChainExtensions bounds how many bigram hops a single candidate chain
// may extend, an explicit backstop alongside the visited-set cycle guard
// (spec §9: cycles broken by a per-chain visited set).
const maxChainExtensions = 8

// generatePredictive implements spec §4.5's Predictive mode: Viterbi
// N-best, then bigram-chained extension of each path's last surface.
func (g *Generator) generatePredictive(readingStr string, scored []rerank.Scored, variants map[string][]string, now uint64) Result {
	var surfaces []string
	seen := map[string]bool{}
	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		surfaces = append(surfaces, s)
	}

	for _, s := range scored {
		base := s.Path.Surface()
		add(base)
		for _, v := range variants[base] {
			add(v)
		}
		if g.History == nil || len(s.Phrases) == 0 {
			continue
		}
		extended := g.extendChain(base, s.Phrases[len(s.Phrases)-1].Surface, now)
		for _, e := range extended {
			add(e)
		}
	}

	add(readingStr)

	if len(surfaces) > g.Config.MaxResults {
		surfaces = surfaces[:g.Config.MaxResults]
	}
	return Result{Surfaces: surfaces, Paths: scored}
}

// extendChain walks bigram_successors(prevSurface) repeatedly, concatenating
// onto base, tracking visited surfaces to detect and abort cycles (spec
// §4.5, §9).
func (g *Generator) extendChain(base, lastSurface string, now uint64) []string {
	var out []string
	visited := map[string]bool{lastSurface: true}
	current := base
	prev := lastSurface
	for i := 0; i < maxChainExtensions; i++ {
		successors := g.History.BigramSuccessors(prev, now)
		if len(successors) == 0 {
			break
		}
		next := successors[0]
		if visited[next.Surface] {
			break // cycle
		}
		visited[next.Surface] = true
		current += next.Surface
		out = append(out, current)
		prev = next.Surface
	}
	return out
}
