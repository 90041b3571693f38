package tseq

import "iter"

// EdgeDiffRecord is one step of the edge-diff stream (spec §4.1): the span
// of the next local tree, the edges that ceased being active at Left, and
// the edges that became active at Left. For the first tree, Out is empty.
type EdgeDiffRecord struct {
	Left, Right float64
	Out, In     []Edge
}

// EdgeDiffs returns an iterator over the tree sequence's local trees in
// increasing position order; each range over it starts again from the
// first tree. Total work across a full traversal is O(E): every edge
// appears in exactly one In slice, and in exactly one Out slice unless it
// extends to the sequence length.
func (ts *TreeSequence) EdgeDiffs() iter.Seq[EdgeDiffRecord] {
	return func(yield func(EdgeDiffRecord) bool) {
		iOut, iIn := 0, 0
		left := 0.0
		for bi := 1; bi < len(ts.breakpoints); bi++ {
			right := ts.breakpoints[bi]
			var out, in []Edge
			for iOut < len(ts.edgesByRight) && ts.edges[ts.edgesByRight[iOut]].Right == left {
				out = append(out, ts.edges[ts.edgesByRight[iOut]])
				iOut++
			}
			for iIn < len(ts.edgesByLeft) && ts.edges[ts.edgesByLeft[iIn]].Left == left {
				in = append(in, ts.edges[ts.edgesByLeft[iIn]])
				iIn++
			}
			if !yield(EdgeDiffRecord{Left: left, Right: right, Out: out, In: in}) {
				return
			}
			left = right
		}
	}
}
