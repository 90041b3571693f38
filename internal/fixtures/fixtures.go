// Package fixtures holds small hand-verified tree sequences used across
// package tests. The node/edge/site tables here are transcribed from the
// tskit test suite's SpecificTreesTestCase and FourTaxonTestCase fixtures,
// not invented, so expected statistic values can be checked against
// independently published numbers rather than against this module's own
// output.
package fixtures

import "github.com/evolbioinfo/tsstat/tseq"

// CaseOne is a 7-node, 3-sample tree sequence with three distinct local
// trees over [0,1) and ten single-mutation sites. Samples are nodes 0,1,2.
func CaseOne() *tseq.TreeSequence {
	nodes := []tseq.Node{
		{Time: 0, Sample: true},  // 0
		{Time: 0, Sample: true},  // 1
		{Time: 0, Sample: true},  // 2
		{Time: 0.4, Sample: false}, // 3
		{Time: 0.5, Sample: false}, // 4
		{Time: 0.7, Sample: false}, // 5
		{Time: 1.0, Sample: false}, // 6
	}
	edges := []tseq.Edge{
		{Left: 0.2, Right: 0.8, Parent: 3, Child: 0},
		{Left: 0.2, Right: 0.8, Parent: 3, Child: 2},
		{Left: 0.0, Right: 0.2, Parent: 4, Child: 1},
		{Left: 0.0, Right: 0.2, Parent: 4, Child: 2},
		{Left: 0.2, Right: 0.8, Parent: 4, Child: 1},
		{Left: 0.2, Right: 0.8, Parent: 4, Child: 3},
		{Left: 0.8, Right: 1.0, Parent: 4, Child: 1},
		{Left: 0.8, Right: 1.0, Parent: 4, Child: 2},
		{Left: 0.8, Right: 1.0, Parent: 5, Child: 0},
		{Left: 0.8, Right: 1.0, Parent: 5, Child: 4},
		{Left: 0.0, Right: 0.2, Parent: 6, Child: 0},
		{Left: 0.0, Right: 0.2, Parent: 6, Child: 4},
	}
	positions := []float64{0.05, 0.1, 0.11, 0.15, 0.151, 0.3, 0.6, 0.9, 0.95, 0.951}
	mutNodes := []int{4, 0, 2, 0, 1, 1, 2, 0, 1, 2}
	sites := make([]tseq.Site, len(positions))
	muts := make([]tseq.Mutation, len(positions))
	for i, p := range positions {
		sites[i] = tseq.Site{Position: p, AncestralState: []byte("0")}
		muts[i] = tseq.Mutation{Site: i, Node: mutNodes[i], DerivedState: []byte("1"), Parent: -1}
	}
	ts, err := tseq.NewTreeSequence(nodes, edges, sites, muts, 1.0)
	if err != nil {
		panic(err)
	}
	return ts
}

// FourTaxon is a 9-node, 4-sample tree sequence with three local trees over
// [0,2.5) and no sites, used for branch-mode f2/f3/f4 checks. Samples are
// nodes 0,1,2,3.
func FourTaxon() *tseq.TreeSequence {
	nodes := []tseq.Node{
		{Time: 0, Sample: true},   // 0
		{Time: 0, Sample: true},   // 1
		{Time: 0, Sample: true},   // 2
		{Time: 0, Sample: true},   // 3
		{Time: 0.4, Sample: false}, // 4
		{Time: 0.5, Sample: false}, // 5
		{Time: 0.7, Sample: false}, // 6
		{Time: 1.0, Sample: false}, // 7
		{Time: 0.4, Sample: false}, // 8
	}
	edges := []tseq.Edge{
		{Left: 0.0, Right: 2.5, Parent: 8, Child: 1},
		{Left: 0.0, Right: 2.5, Parent: 8, Child: 3},
		{Left: 0.2, Right: 0.8, Parent: 4, Child: 0},
		{Left: 0.2, Right: 0.8, Parent: 4, Child: 2},
		{Left: 0.0, Right: 0.2, Parent: 5, Child: 8},
		{Left: 0.0, Right: 0.2, Parent: 5, Child: 2},
		{Left: 0.2, Right: 0.8, Parent: 5, Child: 8},
		{Left: 0.2, Right: 0.8, Parent: 5, Child: 4},
		{Left: 0.8, Right: 2.5, Parent: 5, Child: 8},
		{Left: 0.8, Right: 2.5, Parent: 5, Child: 2},
		{Left: 0.8, Right: 2.5, Parent: 6, Child: 0},
		{Left: 0.8, Right: 2.5, Parent: 6, Child: 5},
		{Left: 0.0, Right: 0.2, Parent: 7, Child: 0},
		{Left: 0.0, Right: 0.2, Parent: 7, Child: 5},
	}
	ts, err := tseq.NewTreeSequence(nodes, edges, nil, nil, 2.5)
	if err != nil {
		panic(err)
	}
	return ts
}

// RecurrentMutations is CaseOne's topology but with a single site carrying
// a two-mutation chain at the same site: node 4 mutates away from the
// ancestral state, then node 1 (a descendant of node 4 in the first local
// tree) mutates back to it. Used to test mutation-parent handling — a
// later mutation's "from" allele is its parent mutation's derived state,
// not always the site's ancestral state — in the site engine.
func RecurrentMutations() *tseq.TreeSequence {
	nodes := []tseq.Node{
		{Time: 0, Sample: true},
		{Time: 0, Sample: true},
		{Time: 0, Sample: true},
		{Time: 0.4, Sample: false},
		{Time: 0.5, Sample: false},
		{Time: 0.7, Sample: false},
		{Time: 1.0, Sample: false},
	}
	edges := []tseq.Edge{
		{Left: 0.2, Right: 0.8, Parent: 3, Child: 0},
		{Left: 0.2, Right: 0.8, Parent: 3, Child: 2},
		{Left: 0.0, Right: 0.2, Parent: 4, Child: 1},
		{Left: 0.0, Right: 0.2, Parent: 4, Child: 2},
		{Left: 0.2, Right: 0.8, Parent: 4, Child: 1},
		{Left: 0.2, Right: 0.8, Parent: 4, Child: 3},
		{Left: 0.8, Right: 1.0, Parent: 4, Child: 1},
		{Left: 0.8, Right: 1.0, Parent: 4, Child: 2},
		{Left: 0.8, Right: 1.0, Parent: 5, Child: 0},
		{Left: 0.8, Right: 1.0, Parent: 5, Child: 4},
		{Left: 0.0, Right: 0.2, Parent: 6, Child: 0},
		{Left: 0.0, Right: 0.2, Parent: 6, Child: 4},
	}
	sites := []tseq.Site{{Position: 0.1, AncestralState: []byte("0")}}
	muts := []tseq.Mutation{
		{Site: 0, Node: 4, DerivedState: []byte("1"), Parent: -1},
		{Site: 0, Node: 1, DerivedState: []byte("0"), Parent: 0},
	}
	ts, err := tseq.NewTreeSequence(nodes, edges, sites, muts, 1.0)
	if err != nil {
		panic(err)
	}
	return ts
}
