package tseq

import (
	"errors"
	"testing"
)

func validNodes() []Node {
	return []Node{
		{Time: 0, Sample: true},
		{Time: 0, Sample: true},
		{Time: 1, Sample: false},
	}
}

func TestNewTreeSequenceValid(t *testing.T) {
	nodes := validNodes()
	edges := []Edge{
		{Parent: 2, Child: 0, Left: 0, Right: 1},
		{Parent: 2, Child: 1, Left: 0, Right: 1},
	}
	ts, err := NewTreeSequence(nodes, edges, nil, nil, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts.NumNodes() != 3 || ts.NumSamples() != 2 || ts.NumEdges() != 2 {
		t.Fatalf("unexpected shape: %+v", ts)
	}
	if got := ts.Samples(); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Fatalf("got samples %v", got)
	}
	if ts.SampleIndex(2) != -1 {
		t.Fatalf("node 2 is not a sample")
	}
}

func TestNewTreeSequenceRejectsBadSequenceLength(t *testing.T) {
	_, err := NewTreeSequence(validNodes(), nil, nil, nil, 0)
	if !errors.Is(err, ErrBadSequenceLength) {
		t.Fatalf("got %v, want ErrBadSequenceLength", err)
	}
}

func TestNewTreeSequenceRejectsBadEdge(t *testing.T) {
	nodes := validNodes()
	cases := []struct {
		name  string
		edges []Edge
	}{
		{"parent out of range", []Edge{{Parent: 5, Child: 0, Left: 0, Right: 1}}},
		{"child out of range", []Edge{{Parent: 2, Child: 5, Left: 0, Right: 1}}},
		{"left >= right", []Edge{{Parent: 2, Child: 0, Left: 0.5, Right: 0.5}}},
		{"right beyond sequence", []Edge{{Parent: 2, Child: 0, Left: 0, Right: 1.5}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewTreeSequence(nodes, c.edges, nil, nil, 1.0)
			if !errors.Is(err, ErrBadEdge) {
				t.Fatalf("got %v, want ErrBadEdge", err)
			}
		})
	}
}

func TestNewTreeSequenceRejectsBadSite(t *testing.T) {
	nodes := validNodes()
	sites := []Site{{Position: 0.5, AncestralState: []byte("0")}, {Position: 0.4, AncestralState: []byte("0")}}
	_, err := NewTreeSequence(nodes, nil, sites, nil, 1.0)
	if !errors.Is(err, ErrBadSite) {
		t.Fatalf("got %v, want ErrBadSite", err)
	}
}

func TestNewTreeSequenceRejectsBadMutation(t *testing.T) {
	nodes := validNodes()
	sites := []Site{{Position: 0.5, AncestralState: []byte("0")}, {Position: 0.7, AncestralState: []byte("0")}}
	cases := []struct {
		name string
		muts []Mutation
	}{
		{"site out of range", []Mutation{{Site: 2, Node: 0, DerivedState: []byte("1"), Parent: -1}}},
		{"node out of range", []Mutation{{Site: 0, Node: 5, DerivedState: []byte("1"), Parent: -1}}},
		{"parent must precede", []Mutation{{Site: 0, Node: 0, DerivedState: []byte("1"), Parent: 0}}},
		{"parent different site", []Mutation{
			{Site: 0, Node: 0, DerivedState: []byte("1"), Parent: -1},
			{Site: 1, Node: 1, DerivedState: []byte("2"), Parent: 0},
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewTreeSequence(nodes, nil, sites, c.muts, 1.0)
			if !errors.Is(err, ErrBadMutation) {
				t.Fatalf("got %v, want ErrBadMutation", err)
			}
		})
	}
}

func TestMutationsOrderAndIndices(t *testing.T) {
	nodes := validNodes()
	sites := []Site{{Position: 0.2, AncestralState: []byte("0")}, {Position: 0.6, AncestralState: []byte("0")}}
	muts := []Mutation{
		{Site: 0, Node: 0, DerivedState: []byte("1"), Parent: -1},
		{Site: 0, Node: 1, DerivedState: []byte("2"), Parent: 0},
		{Site: 1, Node: 2, DerivedState: []byte("1"), Parent: -1},
	}
	ts, err := NewTreeSequence(nodes, nil, sites, muts, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ts.Mutations(0); len(got) != 2 {
		t.Fatalf("expected 2 mutations at site 0, got %d", len(got))
	}
	if got := ts.MutationIndices(1); len(got) != 1 || got[0] != 2 {
		t.Fatalf("got %v", got)
	}
}

func TestBreakpointsAndSitePositions(t *testing.T) {
	nodes := validNodes()
	edges := []Edge{
		{Parent: 2, Child: 0, Left: 0, Right: 0.5},
		{Parent: 2, Child: 1, Left: 0.5, Right: 1.0},
	}
	sites := []Site{{Position: 0.25, AncestralState: []byte("0")}, {Position: 0.75, AncestralState: []byte("0")}}
	ts, err := NewTreeSequence(nodes, edges, sites, nil, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	if pos := ts.SitePositions(); len(pos) != 2 || pos[0] != 0.25 || pos[1] != 0.75 {
		t.Fatalf("got site positions %v, want [0.25 0.75]", pos)
	}
	want := []float64{0, 0.5, 1.0}
	got := ts.Breakpoints()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
