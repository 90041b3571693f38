// Package tseq provides read-only access to succinct tree sequences: nodes,
// edges, sites, and mutations describing how local genealogies change along
// a genome. It does not read or write any file format and does not simulate
// or construct tree sequences from biological data; callers hand it an
// already-decided set of nodes, edges, sites, and mutations.
package tseq

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrBadSequenceLength = errors.New("sequence length must be positive")
	ErrBadEdge           = errors.New("invalid edge")
	ErrBadSite           = errors.New("invalid site")
	ErrBadMutation       = errors.New("invalid mutation")
)

// Node is a single vertex in the ancestral graph: a dense id in [0, N),
// a non-negative time, and whether it is one of the distinguished samples.
type Node struct {
	Time   float64
	Sample bool
}

// Edge records that Child was a descendant of Parent over the half-open
// genomic interval [Left, Right).
type Edge struct {
	Parent, Child int
	Left, Right   float64
}

// Site is a genomic position at which one or more mutations occurred,
// together with the inferred ancestral (un-mutated) allele.
type Site struct {
	Position       float64
	AncestralState []byte
}

// Mutation places a derived allele on a node at a site. Parent is the id of
// the mutation (at the same site) that this one arose on top of, or -1 if
// it arose on the ancestral background.
type Mutation struct {
	Site         int
	Node         int
	DerivedState []byte
	Parent       int
}

// TreeSequence is a read-only, immutable view over the data model in
// spec §3. All exported accessors are safe for concurrent use; nothing
// about a constructed TreeSequence ever changes.
type TreeSequence struct {
	nodes          []Node
	edges          []Edge
	sites          []Site
	mutations      []Mutation
	mutationsBySite [][]int // site id -> indices into mutations, in listed order
	samples        []int   // node ids, ascending
	sampleIndex    map[int]int
	sequenceLength float64

	edgesByLeft  []int // indices into edges, sorted by Left ascending
	edgesByRight []int // indices into edges, sorted by Right ascending
	breakpoints  []float64
}

// NewTreeSequence validates and wraps the given tables. It checks the
// invariants spec §3 calls "assumed of input; verified where cheap": edge
// bounds, node references, site-position ordering, and mutation
// parent-before-child ordering within a site. It does not verify the
// expensive global invariant that edges active at any position form a
// forest; callers are responsible for that.
func NewTreeSequence(nodes []Node, edges []Edge, sites []Site, mutations []Mutation, sequenceLength float64) (*TreeSequence, error) {
	if sequenceLength <= 0 {
		return nil, ErrBadSequenceLength
	}
	n := len(nodes)
	for i, e := range edges {
		if e.Parent < 0 || e.Parent >= n || e.Child < 0 || e.Child >= n {
			return nil, fmt.Errorf("%w: edge %d references node out of [0,%d)", ErrBadEdge, i, n)
		}
		if !(0 <= e.Left && e.Left < e.Right && e.Right <= sequenceLength) {
			return nil, fmt.Errorf("%w: edge %d has bad interval [%g,%g)", ErrBadEdge, i, e.Left, e.Right)
		}
	}
	for i := 1; i < len(sites); i++ {
		if sites[i-1].Position >= sites[i].Position {
			return nil, fmt.Errorf("%w: site positions must be strictly increasing (site %d)", ErrBadSite, i)
		}
	}
	for _, s := range sites {
		if s.Position < 0 || s.Position >= sequenceLength {
			return nil, fmt.Errorf("%w: site position %g out of [0,%g)", ErrBadSite, s.Position, sequenceLength)
		}
	}
	mutationsBySite := make([][]int, len(sites))
	for i := range mutationsBySite {
		mutationsBySite[i] = []int{}
	}
	for i, m := range mutations {
		if m.Site < 0 || m.Site >= len(sites) {
			return nil, fmt.Errorf("%w: mutation %d references site out of range", ErrBadMutation, i)
		}
		if m.Node < 0 || m.Node >= n {
			return nil, fmt.Errorf("%w: mutation %d references node out of range", ErrBadMutation, i)
		}
		if m.Parent != -1 {
			if m.Parent < 0 || m.Parent >= i {
				return nil, fmt.Errorf("%w: mutation %d's parent must precede it", ErrBadMutation, i)
			}
			if mutations[m.Parent].Site != m.Site {
				return nil, fmt.Errorf("%w: mutation %d's parent is at a different site", ErrBadMutation, i)
			}
		}
		mutationsBySite[m.Site] = append(mutationsBySite[m.Site], i)
	}
	samples := make([]int, 0)
	sampleIndex := make(map[int]int)
	for id, nd := range nodes {
		if nd.Sample {
			sampleIndex[id] = len(samples)
			samples = append(samples, id)
		}
	}
	ts := &TreeSequence{
		nodes:           nodes,
		edges:           edges,
		sites:           sites,
		mutations:       mutations,
		mutationsBySite: mutationsBySite,
		samples:         samples,
		sampleIndex:     sampleIndex,
		sequenceLength:  sequenceLength,
	}
	ts.indexEdges()
	return ts, nil
}

func (ts *TreeSequence) indexEdges() {
	n := len(ts.edges)
	ts.edgesByLeft = make([]int, n)
	ts.edgesByRight = make([]int, n)
	for i := range ts.edges {
		ts.edgesByLeft[i] = i
		ts.edgesByRight[i] = i
	}
	slices.SortFunc(ts.edgesByLeft, func(a, b int) int {
		return cmpFloat(ts.edges[a].Left, ts.edges[b].Left)
	})
	slices.SortFunc(ts.edgesByRight, func(a, b int) int {
		return cmpFloat(ts.edges[a].Right, ts.edges[b].Right)
	})
	bps := make([]float64, 0, n*2+2)
	bps = append(bps, 0, ts.sequenceLength)
	for _, e := range ts.edges {
		bps = append(bps, e.Left, e.Right)
	}
	slices.Sort(bps)
	ts.breakpoints = slices.Compact(bps)
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (ts *TreeSequence) NumNodes() int            { return len(ts.nodes) }
func (ts *TreeSequence) NumSamples() int          { return len(ts.samples) }
func (ts *TreeSequence) NumSites() int            { return len(ts.sites) }
func (ts *TreeSequence) NumEdges() int            { return len(ts.edges) }
func (ts *TreeSequence) SequenceLength() float64  { return ts.sequenceLength }
func (ts *TreeSequence) Samples() []int           { return slices.Clone(ts.samples) }
func (ts *TreeSequence) Time(node int) float64    { return ts.nodes[node].Time }
func (ts *TreeSequence) IsSample(node int) bool   { return ts.nodes[node].Sample }
func (ts *TreeSequence) Site(i int) Site          { return ts.sites[i] }
func (ts *TreeSequence) Mutation(i int) Mutation  { return ts.mutations[i] }

// SampleIndex returns the row of the weight matrix that corresponds to the
// given sample node id, or -1 if node is not a sample.
func (ts *TreeSequence) SampleIndex(node int) int {
	if idx, ok := ts.sampleIndex[node]; ok {
		return idx
	}
	return -1
}

// Mutations returns the mutations at site i in listed order (any parent
// mutation precedes its children).
func (ts *TreeSequence) Mutations(site int) []Mutation {
	idxs := ts.mutationsBySite[site]
	out := make([]Mutation, len(idxs))
	for i, idx := range idxs {
		out[i] = ts.mutations[idx]
	}
	return out
}

// MutationIndices returns the indices into the tree sequence's global
// mutation table for site i, in listed order. Mutation.Parent, when set,
// is always an earlier index in this same site's list.
func (ts *TreeSequence) MutationIndices(site int) []int {
	return slices.Clone(ts.mutationsBySite[site])
}

// Breakpoints returns the sorted tree-breakpoint array (spec windows="trees").
func (ts *TreeSequence) Breakpoints() []float64 { return slices.Clone(ts.breakpoints) }

// SitePositions returns the positions of all sites, in id order.
func (ts *TreeSequence) SitePositions() []float64 {
	pos := make([]float64, len(ts.sites))
	for i, s := range ts.sites {
		pos[i] = s.Position
	}
	return pos
}
