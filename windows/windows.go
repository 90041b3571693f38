// Package windows resolves a caller-supplied window specification (spec
// §4.2) into a concrete, strictly increasing array of breakpoints over
// [0, sequenceLength]. It knows nothing about statistics or propagation;
// it only turns "trees" / "sites" / explicit boundaries / nil into the
// array that the engine walks one window at a time.
package windows

import (
	"errors"
	"fmt"
	"slices"

	"github.com/evolbioinfo/tsstat/tseq"
)

var ErrInvalidWindows = errors.New("invalid windows")

// Policy selects how window boundaries are derived when the caller does
// not supply an explicit boundary array.
type Policy int

const (
	// WholeSequence treats the entire sequence as a single window.
	WholeSequence Policy = iota
	// Trees places one window per local tree, at the tree-sequence
	// breakpoints.
	Trees
	// Sites places one window per site, with boundaries at the midpoints
	// between consecutive site positions. Span-normalisation is forced off for
	// this policy (spec §4.2: site windows have no natural biological
	// span to normalise by).
	Sites
)

// Spec is a window specification: either a Policy (Boundaries nil) or an
// explicit ascending array of boundaries (Policy ignored).
type Spec struct {
	Policy      Policy
	Boundaries  []float64
}

// FromPolicy builds a Spec selecting one of the named policies.
func FromPolicy(p Policy) Spec { return Spec{Policy: p} }

// Explicit builds a Spec from caller-supplied boundaries.
func Explicit(boundaries []float64) Spec { return Spec{Boundaries: boundaries} }

// Resolve turns spec into a strictly increasing []float64 running from 0 to
// ts.SequenceLength(), plus whether span-normalisation is forced off by the
// policy (true only for Sites).
func Resolve(ts *tseq.TreeSequence, spec Spec) ([]float64, bool, error) {
	if spec.Boundaries != nil {
		return resolveExplicit(ts, spec.Boundaries)
	}
	switch spec.Policy {
	case WholeSequence:
		return []float64{0, ts.SequenceLength()}, false, nil
	case Trees:
		return ts.Breakpoints(), false, nil
	case Sites:
		return resolveSites(ts)
	default:
		return nil, false, fmt.Errorf("%w: unknown policy %d", ErrInvalidWindows, spec.Policy)
	}
}

func resolveExplicit(ts *tseq.TreeSequence, boundaries []float64) ([]float64, bool, error) {
	if len(boundaries) < 2 {
		return nil, false, fmt.Errorf("%w: need at least two boundaries", ErrInvalidWindows)
	}
	if boundaries[0] != 0 {
		return nil, false, fmt.Errorf("%w: first boundary must be 0, got %g", ErrInvalidWindows, boundaries[0])
	}
	last := boundaries[len(boundaries)-1]
	if last != ts.SequenceLength() {
		return nil, false, fmt.Errorf("%w: last boundary must be sequence length %g, got %g", ErrInvalidWindows, ts.SequenceLength(), last)
	}
	for i := 1; i < len(boundaries); i++ {
		if boundaries[i-1] >= boundaries[i] {
			return nil, false, fmt.Errorf("%w: boundaries must be strictly increasing", ErrInvalidWindows)
		}
	}
	return slices.Clone(boundaries), false, nil
}

// resolveSites builds one window per site, boundaries at midpoints between
// consecutive sites, with the first window starting at 0 and the last
// ending at the sequence length. A tree sequence with no sites resolves to
// the whole-sequence window, matching the degenerate case where there is
// nothing to center windows on.
func resolveSites(ts *tseq.TreeSequence) ([]float64, bool, error) {
	positions := ts.SitePositions()
	if len(positions) == 0 {
		return []float64{0, ts.SequenceLength()}, true, nil
	}
	boundaries := make([]float64, 0, len(positions)+1)
	boundaries = append(boundaries, 0)
	for i := 1; i < len(positions); i++ {
		boundaries = append(boundaries, (positions[i-1]+positions[i])/2)
	}
	boundaries = append(boundaries, ts.SequenceLength())
	return boundaries, true, nil
}

// NumWindows returns the number of windows (intervals) implied by a
// resolved boundary array.
func NumWindows(boundaries []float64) int {
	if len(boundaries) == 0 {
		return 0
	}
	return len(boundaries) - 1
}
