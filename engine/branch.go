package engine

import "github.com/evolbioinfo/tsstat/tseq"

// BranchGeneralStat runs the incremental branch-mode traversal (spec §4.4):
// an area-weighted integral, over branch length times genomic span, of
// f(S[u]) for every branch present in the trees overlapping each window.
func BranchGeneralStat(ts *tseq.TreeSequence, W [][]float64, f SummaryFunc, windowBounds []float64, polarised, spanNormalise bool) Result {
	k := 0
	if len(W) > 0 {
		k = len(W[0])
	}
	m := Probe(f, k)
	numWindows := len(windowBounds) - 1
	result := NewResult(numWindows, 1, m)
	acc := make([][]float64, numWindows)
	for i := range acc {
		acc[i] = make([]float64, m)
	}

	totalWeight := make([]float64, k)
	for _, row := range W {
		for j, v := range row {
			totalWeight[j] += v
		}
	}

	p := newPropagator(ts, W)
	branchLen := make([]float64, ts.NumNodes())
	rate := make([]float64, m)

	nodeSummary := func(u int) []float64 {
		v := f(p.S[u])
		if polarised {
			return v
		}
		comp := make([]float64, k)
		for j := range comp {
			comp[j] = totalWeight[j] - p.S[u][j]
		}
		return addVec(v, f(comp))
	}
	subtract := func(u int) {
		contrib := nodeSummary(u)
		bl := branchLen[u]
		for j := range rate {
			rate[j] -= bl * contrib[j]
		}
	}
	add := func(u int) {
		contrib := nodeSummary(u)
		bl := branchLen[u]
		for j := range rate {
			rate[j] += bl * contrib[j]
		}
	}

	cursor := 0
	for diff := range ts.EdgeDiffs() {
		for _, e := range diff.Out {
			subtract(e.Child)
			branchLen[e.Child] = 0
			p.remove(e.Child, subtract, add)
		}
		for _, e := range diff.In {
			p.insert(e.Child, e.Parent, subtract, add)
			branchLen[e.Child] = ts.Time(e.Parent) - ts.Time(e.Child)
			add(e.Child)
		}
		accumulateSpan(windowBounds, &cursor, diff.Left, diff.Right, rate, acc)
	}

	for w := 0; w < numWindows; w++ {
		copy(result.Row(w, 0), acc[w])
		if spanNormalise {
			result.ScaleWindow(w, windowBounds[w+1]-windowBounds[w])
		}
	}
	return result
}
