package engine

import "github.com/evolbioinfo/tsstat/tseq"

// propagator maintains, incrementally as edges are removed and inserted by
// the edge-diff stream (spec §4.1/§4.3), the subtree-sum state
// S[u] = sum over samples s descended from u of W[s], and the parent
// pointer P[u] (-1 if u currently has no parent in the forest).
//
// Only the nodes on the path from a changed child to the root ever have
// their S value touched by a single edge event, which is what keeps a full
// traversal at O(E) edge events times O(tree depth) rather than O(E*N).
type propagator struct {
	ts     *tseq.TreeSequence
	K      int
	S      [][]float64
	parent []int
}

func newPropagator(ts *tseq.TreeSequence, W [][]float64) *propagator {
	n := ts.NumNodes()
	k := 0
	if len(W) > 0 {
		k = len(W[0])
	}
	s := make([][]float64, n)
	for u := range s {
		s[u] = make([]float64, k)
	}
	for u := 0; u < n; u++ {
		if idx := ts.SampleIndex(u); idx >= 0 {
			copy(s[u], W[idx])
		}
	}
	parent := make([]int, n)
	for i := range parent {
		parent[i] = -1
	}
	return &propagator{ts: ts, K: k, S: s, parent: parent}
}

// pathToRoot returns u's ancestors, nearest first, stopping at a node with
// no current parent.
func (p *propagator) pathToRoot(u int) []int {
	var path []int
	for v := p.parent[u]; v != -1; v = p.parent[v] {
		path = append(path, v)
	}
	return path
}

// remove detaches child from its current parent. For every ancestor u on
// the old path to the root, before(u) is invoked with the about-to-change
// S[u] still in place, S[u] -= S[child] is applied, and then after(u) is
// invoked with the new value. Either callback may be nil.
func (p *propagator) remove(child int, before, after func(u int)) {
	for _, u := range p.pathToRoot(child) {
		if before != nil {
			before(u)
		}
		for k := 0; k < p.K; k++ {
			p.S[u][k] -= p.S[child][k]
		}
		if after != nil {
			after(u)
		}
	}
	p.parent[child] = -1
}

// insert attaches child to parentNode and adds S[child] to every ancestor
// on the new path to the root, with the same before/after contract as
// remove.
func (p *propagator) insert(child, parentNode int, before, after func(u int)) {
	p.parent[child] = parentNode
	for _, u := range p.pathToRoot(child) {
		if before != nil {
			before(u)
		}
		for k := 0; k < p.K; k++ {
			p.S[u][k] += p.S[child][k]
		}
		if after != nil {
			after(u)
		}
	}
}

// overlap returns the length of the intersection of [aLeft,aRight) and
// [bLeft,bRight), or 0 if they do not intersect.
func overlap(aLeft, aRight, bLeft, bRight float64) float64 {
	lo := aLeft
	if bLeft > lo {
		lo = bLeft
	}
	hi := aRight
	if bRight < hi {
		hi = bRight
	}
	if hi > lo {
		return hi - lo
	}
	return 0
}

// accumulateSpan adds rate[k]*overlap into acc[window][k] for every window
// in windowBounds overlapping [left,right), advancing *cursor so repeated
// calls with increasing left/right only ever move forward.
func accumulateSpan(windowBounds []float64, cursor *int, left, right float64, rate []float64, acc [][]float64) {
	i := *cursor
	for i < len(windowBounds)-1 && windowBounds[i+1] <= left {
		i++
	}
	for i < len(windowBounds)-1 && windowBounds[i] < right {
		ov := overlap(left, right, windowBounds[i], windowBounds[i+1])
		if ov > 0 {
			row := acc[i]
			for k := range rate {
				row[k] += rate[k] * ov
			}
		}
		if windowBounds[i+1] >= right {
			break
		}
		i++
	}
	*cursor = i
}

// windowOf returns the index of the window in windowBounds containing
// position, clamping the right edge into the last window.
func windowOf(windowBounds []float64, position float64) int {
	lo, hi := 0, len(windowBounds)-2
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if windowBounds[mid] <= position {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}
