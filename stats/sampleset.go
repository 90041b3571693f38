// Package stats builds the weight matrices that general_stat needs from
// sample sets described by node id, and implements the convenience
// statistics (diversity, divergence, Y1-Y3, f2-f4, Fst, segregating
// sites) that reduce to particular summary functions over those weights.
package stats

import (
	"errors"
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/evolbioinfo/tsstat/tseq"
)

var (
	ErrInvalidSampleSet = errors.New("invalid sample set")
	ErrInvalidIndexes   = errors.New("invalid sample set index")
)

// SampleSet is a validated, duplicate-free set of sample node ids,
// recorded as a bitmap over sample indices (not node ids) the same way
// the teacher tracks leaf membership per subtree.
type SampleSet struct {
	ts    *tseq.TreeSequence
	nodes []int
	bits  *bitset.BitSet
}

// NewSampleSet validates that every node in nodes is one of ts's samples
// and appears at most once, and records the set as a bitmap.
func NewSampleSet(ts *tseq.TreeSequence, nodes []int) (SampleSet, error) {
	bits := bitset.New(uint(ts.NumSamples()))
	out := make([]int, 0, len(nodes))
	for _, node := range nodes {
		idx := ts.SampleIndex(node)
		if idx < 0 {
			return SampleSet{}, fmt.Errorf("%w: node %d is not a sample", ErrInvalidSampleSet, node)
		}
		if bits.Test(uint(idx)) {
			return SampleSet{}, fmt.Errorf("%w: node %d repeated", ErrInvalidSampleSet, node)
		}
		bits.Set(uint(idx))
		out = append(out, node)
	}
	if len(out) == 0 {
		return SampleSet{}, fmt.Errorf("%w: sample set must be non-empty", ErrInvalidSampleSet)
	}
	return SampleSet{ts: ts, nodes: out, bits: bits}, nil
}

// Size returns the number of samples in the set.
func (s SampleSet) Size() int { return len(s.nodes) }

// Nodes returns the set's sample node ids in the order they were given.
func (s SampleSet) Nodes() []int {
	out := make([]int, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// BuildWeights turns a list of sample sets into the NumSamples x len(sets)
// indicator weight matrix general_stat needs (spec §4.8). Sets are
// allowed to overlap; overlap is exactly what divergence and Fst need.
func BuildWeights(ts *tseq.TreeSequence, sets []SampleSet) ([][]float64, error) {
	if len(sets) == 0 {
		return nil, fmt.Errorf("%w: need at least one sample set", ErrInvalidIndexes)
	}
	n := ts.NumSamples()
	k := len(sets)
	W := make([][]float64, n)
	for i := range W {
		W[i] = make([]float64, k)
	}
	for j, s := range sets {
		if s.ts != ts {
			return nil, fmt.Errorf("%w: sample set %d was built from a different tree sequence", ErrInvalidIndexes, j)
		}
		for i := 0; i < n; i++ {
			if s.bits.Test(uint(i)) {
				W[i][j] = 1
			}
		}
	}
	return W, nil
}
