package lattice

import (
	"lexime/connection"
)

// DefaultCostFunction returns the dictionary's word cost and the connection
// matrix's cell verbatim (spec §4.3), cast to int64 so accumulation along a
// long path cannot overflow an i16/i32 intermediate.
func DefaultCostFunction(m *connection.Matrix) CostFunction {
	return CostFunction{
		WordCost: func(n *Node) int64 {
			return int64(n.Entry.WordCost)
		},
		Transition: func(prev, next *Node) int64 {
			return int64(m.Cost(prev.Entry.RightID, next.Entry.LeftID))
		},
		BOSCost: func(n *Node) int64 {
			return 0
		},
		EOSCost: func(n *Node) int64 {
			return 0
		},
	}
}
