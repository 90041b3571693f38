package engine

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/evolbioinfo/tsstat/tseq"
)

// localTree is a from-scratch snapshot of one local tree's topology: a
// dense parent array, -1 for nodes with no current parent.
type localTree struct {
	Left, Right float64
	Parent      []int
}

// buildLocalTrees walks the edge-diff stream once to record every local
// tree's topology. This is the one piece of bookkeeping the naive
// reference shares with the incremental engines; everything downstream of
// it recomputes subtree sums from scratch per tree rather than
// maintaining them incrementally, which is the point of a reference used
// to cross-check the incremental engines (spec §4.9).
func buildLocalTrees(ts *tseq.TreeSequence) []localTree {
	n := ts.NumNodes()
	parent := make([]int, n)
	for i := range parent {
		parent[i] = -1
	}
	var trees []localTree
	for diff := range ts.EdgeDiffs() {
		for _, e := range diff.Out {
			parent[e.Child] = -1
		}
		for _, e := range diff.In {
			parent[e.Child] = e.Parent
		}
		snapshot := make([]int, n)
		copy(snapshot, parent)
		trees = append(trees, localTree{Left: diff.Left, Right: diff.Right, Parent: snapshot})
	}
	return trees
}

// computeSubtreeSums recomputes S[u] for every node in lt from scratch, by
// visiting nodes in increasing time order (tree sequences guarantee every
// child's time is strictly less than its parent's, so this is a valid
// postorder without needing an explicit child-list or recursion).
func computeSubtreeSums(ts *tseq.TreeSequence, W [][]float64, lt localTree) [][]float64 {
	n := ts.NumNodes()
	k := widthOf(W)
	S := make([][]float64, n)
	for u := range S {
		S[u] = make([]float64, k)
		if idx := ts.SampleIndex(u); idx >= 0 {
			copy(S[u], W[idx])
		}
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return ts.Time(order[i]) < ts.Time(order[j]) })
	for _, u := range order {
		if pu := lt.Parent[u]; pu != -1 {
			for j := range S[u] {
				S[pu][j] += S[u][j]
			}
		}
	}
	return S
}

func widthOf(W [][]float64) int {
	if len(W) == 0 {
		return 0
	}
	return len(W[0])
}

func sumWeights(W [][]float64, k int) []float64 {
	total := make([]float64, k)
	for _, row := range W {
		for j, v := range row {
			total[j] += v
		}
	}
	return total
}

func nodeSummaryFrom(S [][]float64, u int, f SummaryFunc, totalWeight []float64, k int, polarised bool) []float64 {
	v := f(S[u])
	if polarised {
		return v
	}
	comp := make([]float64, k)
	for j := range comp {
		comp[j] = totalWeight[j] - S[u][j]
	}
	return addVec(v, f(comp))
}

// NaiveBranchGeneralStat reconstructs every local tree from scratch and
// recomputes its branch-mode contribution, instead of maintaining S[u]
// incrementally. Tree recomputations are independent, so they run across
// up to nprocs goroutines (nprocs<=0 means unbounded); merging their
// contributions into the window result happens sequentially afterward.
func NaiveBranchGeneralStat(ts *tseq.TreeSequence, W [][]float64, f SummaryFunc, windowBounds []float64, polarised, spanNormalise bool, nprocs int) (Result, error) {
	k := widthOf(W)
	m := Probe(f, k)
	numWindows := len(windowBounds) - 1
	totalWeight := sumWeights(W, k)
	trees := buildLocalTrees(ts)

	contribs := make([][]float64, len(trees))
	g, _ := errgroup.WithContext(context.Background())
	if nprocs > 0 {
		g.SetLimit(nprocs)
	}
	for i, lt := range trees {
		i, lt := i, lt
		g.Go(func() error {
			S := computeSubtreeSums(ts, W, lt)
			rate := make([]float64, m)
			for u := 0; u < ts.NumNodes(); u++ {
				pu := lt.Parent[u]
				if pu == -1 {
					continue
				}
				bl := ts.Time(pu) - ts.Time(u)
				v := nodeSummaryFrom(S, u, f, totalWeight, k, polarised)
				for j := range rate {
					rate[j] += bl * v[j]
				}
			}
			contribs[i] = rate
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	acc := make([][]float64, numWindows)
	for i := range acc {
		acc[i] = make([]float64, m)
	}
	cursor := 0
	for i, lt := range trees {
		accumulateSpan(windowBounds, &cursor, lt.Left, lt.Right, contribs[i], acc)
	}
	result := NewResult(numWindows, 1, m)
	for w := 0; w < numWindows; w++ {
		copy(result.Row(w, 0), acc[w])
		if spanNormalise {
			result.ScaleWindow(w, windowBounds[w+1]-windowBounds[w])
		}
	}
	return result, nil
}

// NaiveNodeGeneralStat is NaiveBranchGeneralStat's node-mode counterpart:
// every active node (one with a parent or at least one child in the local
// tree) gets f(S[u]) times its tree's span added to its (window, node)
// entry, with per-tree recomputation parallelised the same way.
func NaiveNodeGeneralStat(ts *tseq.TreeSequence, W [][]float64, f SummaryFunc, windowBounds []float64, polarised, spanNormalise bool, nprocs int) (Result, error) {
	k := widthOf(W)
	m := Probe(f, k)
	numWindows := len(windowBounds) - 1
	n := ts.NumNodes()
	totalWeight := sumWeights(W, k)
	trees := buildLocalTrees(ts)

	type perTree struct {
		value map[int][]float64
	}
	results := make([]perTree, len(trees))
	g, _ := errgroup.WithContext(context.Background())
	if nprocs > 0 {
		g.SetLimit(nprocs)
	}
	for i, lt := range trees {
		i, lt := i, lt
		g.Go(func() error {
			S := computeSubtreeSums(ts, W, lt)
			hasChild := make([]bool, n)
			for u := 0; u < n; u++ {
				if lt.Parent[u] != -1 {
					hasChild[lt.Parent[u]] = true
				}
			}
			// Skips nodes absent from this local tree rather than
			// recording f(0)+f(T) for them; see the matching note on
			// NodeGeneralStat's active-gate in node.go. Both engines
			// apply the same gate, so they agree with each other; the
			// skipped f(0)+f(T) is zero for Diversity, Divergence,
			// Y1-Y3 and F2-F4.
			values := make(map[int][]float64)
			for u := 0; u < n; u++ {
				if lt.Parent[u] == -1 && !hasChild[u] {
					continue
				}
				values[u] = nodeSummaryFrom(S, u, f, totalWeight, k, polarised)
			}
			results[i] = perTree{value: values}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	result := NewResult(numWindows, n, m)
	for i, lt := range trees {
		for u, v := range results[i].value {
			flushNode(result, u, lt.Left, lt.Right, v, windowBounds)
		}
	}
	if spanNormalise {
		for w := 0; w < numWindows; w++ {
			result.ScaleWindow(w, windowBounds[w+1]-windowBounds[w])
		}
	}
	return result, nil
}

// NaiveSiteGeneralStat recomputes, for every mutated site, the local
// tree's subtree sums from scratch (rather than reusing the incrementally
// maintained ones) before partitioning samples by allele.
func NaiveSiteGeneralStat(ts *tseq.TreeSequence, W [][]float64, f SummaryFunc, windowBounds []float64, polarised, spanNormalise bool, nprocs int) (Result, error) {
	k := widthOf(W)
	m := Probe(f, k)
	numWindows := len(windowBounds) - 1
	totalWeight := sumWeights(W, k)
	trees := buildLocalTrees(ts)

	sArrays := make([][][]float64, len(trees))
	g, _ := errgroup.WithContext(context.Background())
	if nprocs > 0 {
		g.SetLimit(nprocs)
	}
	for i, lt := range trees {
		i, lt := i, lt
		g.Go(func() error {
			sArrays[i] = computeSubtreeSums(ts, W, lt)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	result := NewResult(numWindows, 1, m)
	treeIdx := 0
	for site := 0; site < ts.NumSites(); site++ {
		pos := ts.Site(site).Position
		for treeIdx < len(trees)-1 && trees[treeIdx].Right <= pos {
			treeIdx++
		}
		S := sArrays[treeIdx]
		w := windowOf(windowBounds, pos)
		addSiteContribution(ts, result, w, site, func(u int) []float64 { return S[u] }, f, totalWeight, k, polarised)
	}
	if spanNormalise {
		for w := 0; w < numWindows; w++ {
			result.ScaleWindow(w, windowBounds[w+1]-windowBounds[w])
		}
	}
	return result, nil
}
