package lattice

import (
	"container/heap"
	"sort"
)

// CostFunction is a struct-of-funcs rather than an interface: the set of
// cost functions is closed (exactly one default implementation), so a
// struct of closures avoids dynamic dispatch on the hot search path (spec
// §9) while still letting callers substitute cost logic in tests.
type CostFunction struct {
	WordCost   func(n *Node) int64
	Transition func(prev, next *Node) int64
	BOSCost    func(n *Node) int64
	EOSCost    func(n *Node) int64
}

// Segment is one phrase/morpheme slot of a completed path.
type Segment struct {
	Reading  string
	Surface  string
	Start    int
	End      int
	Role     int
	LeftID   uint16
	RightID  uint16
	WordCost int16
}

// Path is a complete BOS-to-EOS walk through the lattice.
type Path struct {
	Segments  []Segment
	TotalCost int64
}

// Surface concatenates every segment's surface, the string this path would
// commit or display.
func (p Path) Surface() string {
	s := ""
	for _, seg := range p.Segments {
		s += seg.Surface
	}
	return s
}

type searchNode struct {
	node     *Node
	id       int
	costs    []int64
	predNode []*Node
	predRank []int
}

type beamEntry struct {
	cost    int64
	predID  int
	rank    int
	predPtr *Node
}

// beamHeap is a bounded max-heap: it keeps the K smallest-cost entries seen
// so far by evicting its current maximum whenever a smaller candidate
// arrives and capacity is full.
type beamHeap []beamEntry

func (h beamHeap) Len() int { return len(h) }
func (h beamHeap) Less(i, j int) bool {
	if h[i].cost != h[j].cost {
		return h[i].cost > h[j].cost // max-heap: largest cost floats to top
	}
	if h[i].predID != h[j].predID {
		return h[i].predID > h[j].predID
	}
	return h[i].rank > h[j].rank
}
func (h beamHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *beamHeap) Push(x interface{}) { *h = append(*h, x.(beamEntry)) }
func (h *beamHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func (h *beamHeap) offer(e beamEntry, k int) {
	if h.Len() < k {
		heap.Push(h, e)
		return
	}
	if h.Len() == 0 {
		return
	}
	worst := (*h)[0]
	less := e.cost < worst.cost ||
		(e.cost == worst.cost && e.predID < worst.predID) ||
		(e.cost == worst.cost && e.predID == worst.predID && e.rank < worst.rank)
	if less {
		(*h)[0] = e
		heap.Fix(h, 0)
	}
}

// sortedAscending drains the heap into ascending (cost, predID, rank) order.
func (h beamHeap) sortedAscending() []beamEntry {
	out := make([]beamEntry, len(h))
	copy(out, h)
	sort.Slice(out, func(i, j int) bool {
		if out[i].cost != out[j].cost {
			return out[i].cost < out[j].cost
		}
		if out[i].predID != out[j].predID {
			return out[i].predID < out[j].predID
		}
		return out[i].rank < out[j].rank
	})
	return out
}

// NBest runs N-best Viterbi over l under cf, keeping up to overgenerate
// candidates per node, and returns up to overgenerate complete paths from
// BOS to EOS sorted ascending by total cost with surfaces deduped (spec
// §4.3: "Dedup identical surface strings, preserving the best cost").
func NBest(l *Lattice, cf CostFunction, overgenerate int) []Path {
	if overgenerate < 1 {
		overgenerate = 1
	}

	ids := map[*Node]int{}
	id := 0
	assign := func(n *Node) {
		if _, ok := ids[n]; !ok {
			ids[n] = id
			id++
		}
	}
	assign(l.BOS)
	for end := 1; end <= len(l.Reading); end++ {
		for _, n := range l.NodesAt[end] {
			assign(n)
		}
	}
	assign(l.EOS)

	search := map[*Node]*searchNode{}
	search[l.BOS] = &searchNode{
		node:     l.BOS,
		id:       ids[l.BOS],
		costs:    []int64{cf.BOSCost(l.BOS)},
		predNode: []*Node{nil},
		predRank: []int{-1},
	}

	processNode := func(n *Node, isEOS bool) {
		preds := l.PredecessorsAt(n.Start)
		var h beamHeap
		for _, p := range preds {
			ps, ok := search[p]
			if !ok {
				continue
			}
			for r, pc := range ps.costs {
				var inc int64
				if isEOS {
					inc = cf.EOSCost(n)
				} else {
					inc = cf.WordCost(n)
				}
				cost := pc + cf.Transition(p, n) + inc
				h.offer(beamEntry{cost: cost, predID: ps.id, rank: r, predPtr: p}, overgenerate)
			}
		}
		entries := h.sortedAscending()
		sn := &searchNode{node: n, id: ids[n]}
		for _, e := range entries {
			sn.costs = append(sn.costs, e.cost)
			sn.predNode = append(sn.predNode, e.predPtr)
			sn.predRank = append(sn.predRank, e.rank)
		}
		search[n] = sn
	}

	for end := 1; end <= len(l.Reading); end++ {
		for _, n := range l.NodesAt[end] {
			processNode(n, false)
		}
	}
	processNode(l.EOS, true)

	eos := search[l.EOS]
	if eos == nil || len(eos.costs) == 0 {
		return nil
	}

	n := overgenerate
	if n > len(eos.costs) {
		n = len(eos.costs)
	}

	var paths []Path
	for r := 0; r < n; r++ {
		segs, total := walkBack(search, l.BOS, l.EOS, r)
		paths = append(paths, Path{Segments: segs, TotalCost: total})
	}

	return dedupBySurface(paths)
}

// walkBack follows back-pointers from end (EOS) at the given rank to bos
// (BOS), collecting one Segment per real node in between (both sentinels
// carry no segment of their own).
func walkBack(search map[*Node]*searchNode, bos, end *Node, rank int) ([]Segment, int64) {
	sn := search[end]
	total := sn.costs[rank]

	var segs []Segment
	pred := sn.predNode[rank]
	predRank := sn.predRank[rank]
	for pred != nil && pred != bos {
		segs = append(segs, Segment{
			Reading:  pred.Entry.Reading,
			Surface:  pred.Entry.Surface,
			Start:    pred.Start,
			End:      pred.End,
			Role:     int(pred.Entry.Role),
			LeftID:   pred.Entry.LeftID,
			RightID:  pred.Entry.RightID,
			WordCost: pred.Entry.WordCost,
		})
		psn := search[pred]
		nextPred := psn.predNode[predRank]
		nextRank := psn.predRank[predRank]
		pred, predRank = nextPred, nextRank
	}

	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return segs, total
}

func dedupBySurface(paths []Path) []Path {
	sort.SliceStable(paths, func(i, j int) bool { return paths[i].TotalCost < paths[j].TotalCost })
	seen := map[string]bool{}
	out := make([]Path, 0, len(paths))
	for _, p := range paths {
		s := p.Surface()
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, p)
	}
	return out
}
