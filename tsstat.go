// Package tsstat is the public entry point of the tree-sequence statistics
// engine: it wires together window resolution (package windows), the
// incremental and naive traversal engines (package engine), and the
// sample-set/summary-function helpers (package stats) behind a single
// GeneralStat call, plus convenience wrappers for the statistics named in
// the spec (diversity, divergence, Y1-Y3, f2-f4, Fst, segregating sites).
package tsstat

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/evolbioinfo/tsstat/engine"
	"github.com/evolbioinfo/tsstat/stats"
	"github.com/evolbioinfo/tsstat/tseq"
	"github.com/evolbioinfo/tsstat/windows"
)

// ErrInvalidWeights is returned when W's first dimension does not match
// the tree sequence's sample count (spec §6, §7).
var ErrInvalidWeights = errors.New("invalid weights")

// Mode selects the traversal mode; re-exported so callers need not import
// package engine directly for the common case.
type Mode = engine.Mode

const (
	Branch = engine.Branch
	Site   = engine.Site
	Node   = engine.Node
)

// Result is the dense, shape-aware output of a traversal; see
// engine.Result for its accessors.
type Result = engine.Result

// SummaryFunc is the caller-supplied reduction f: R^K -> R^M.
type SummaryFunc = engine.SummaryFunc

// WindowSpec selects how window boundaries are derived.
type WindowSpec = windows.Spec

// WholeSequence treats the entire sequence as a single window.
func WholeSequence() WindowSpec { return windows.FromPolicy(windows.WholeSequence) }

// TreeWindows places one window per local tree.
func TreeWindows() WindowSpec { return windows.FromPolicy(windows.Trees) }

// SiteWindows places one window per site, span-normalisation forced off.
func SiteWindows() WindowSpec { return windows.FromPolicy(windows.Sites) }

// ExplicitWindows uses caller-supplied ascending boundaries.
func ExplicitWindows(boundaries []float64) WindowSpec { return windows.Explicit(boundaries) }

// ResolveWindows turns win into a concrete, strictly increasing boundary
// array for ts, plus whether span-normalisation is forced off by the
// window policy. Exported so callers that need the boundaries themselves
// (for reporting or plotting) don't have to re-derive them by hand.
func ResolveWindows(ts *tseq.TreeSequence, win WindowSpec) ([]float64, bool, error) {
	return windows.Resolve(ts, win)
}

// Options controls the shared knobs of a general_stat traversal (spec §6).
type Options struct {
	// Polarised, if true, omits the symmetric complement f(total-S[u])
	// in branch/node mode, and the ancestral-allele entry in site mode.
	Polarised bool
	// SpanNormalise divides each window's accumulated value by the
	// window's genomic width. Forced off when WindowSpec is SiteWindows,
	// regardless of this field.
	SpanNormalise bool
	// NumProcs bounds how many goroutines the naive reference uses to
	// recompute trees in parallel. 0 means runtime.GOMAXPROCS(0), the
	// same default the teacher's CLI derives its worker count from.
	NumProcs int
}

func (o Options) numProcs() int {
	if o.NumProcs > 0 {
		return o.NumProcs
	}
	return runtime.GOMAXPROCS(0)
}

// GeneralStat runs the incremental traversal engine (spec §4.4-§4.6) over
// ts with weight matrix W (NumSamples x K) and summary function f, using
// the requested mode and window specification.
func GeneralStat(ts *tseq.TreeSequence, W [][]float64, f SummaryFunc, mode Mode, win WindowSpec, opts Options) (Result, error) {
	if err := validateWeights(ts, W); err != nil {
		return Result{}, err
	}
	bounds, forceOff, err := windows.Resolve(ts, win)
	if err != nil {
		return Result{}, err
	}
	spanNormalise := opts.SpanNormalise && !forceOff
	switch mode {
	case Branch:
		return engine.BranchGeneralStat(ts, W, f, bounds, opts.Polarised, spanNormalise), nil
	case Site:
		return engine.SiteGeneralStat(ts, W, f, bounds, opts.Polarised, spanNormalise), nil
	case Node:
		return engine.NodeGeneralStat(ts, W, f, bounds, opts.Polarised, spanNormalise), nil
	default:
		return Result{}, fmt.Errorf("%w: %v", engine.ErrInvalidMode, mode)
	}
}

// NaiveGeneralStat runs the from-scratch reference implementation (spec
// §4.9), used to cross-check GeneralStat rather than for everyday use.
func NaiveGeneralStat(ts *tseq.TreeSequence, W [][]float64, f SummaryFunc, mode Mode, win WindowSpec, opts Options) (Result, error) {
	if err := validateWeights(ts, W); err != nil {
		return Result{}, err
	}
	bounds, forceOff, err := windows.Resolve(ts, win)
	if err != nil {
		return Result{}, err
	}
	spanNormalise := opts.SpanNormalise && !forceOff
	nprocs := opts.numProcs()
	switch mode {
	case Branch:
		return engine.NaiveBranchGeneralStat(ts, W, f, bounds, opts.Polarised, spanNormalise, nprocs)
	case Site:
		return engine.NaiveSiteGeneralStat(ts, W, f, bounds, opts.Polarised, spanNormalise, nprocs)
	case Node:
		return engine.NaiveNodeGeneralStat(ts, W, f, bounds, opts.Polarised, spanNormalise, nprocs)
	default:
		return Result{}, fmt.Errorf("%w: %v", engine.ErrInvalidMode, mode)
	}
}

// validateWeights checks that W's first dimension equals ts's sample
// count, before any traversal work begins (spec §7: "validation errors
// are detected at entry and raised before any work").
func validateWeights(ts *tseq.TreeSequence, W [][]float64) error {
	if len(W) != ts.NumSamples() {
		return fmt.Errorf("%w: got %d rows, want %d (one per sample)", ErrInvalidWeights, len(W), ts.NumSamples())
	}
	return nil
}

var errSingleStat = errors.New("expected a single-statistic result")

// valuesOf extracts a single-statistic, single-node result as a flat
// per-window slice, for feeding into stats.PlotWindowedStat or for
// combining several GeneralStat calls (e.g. Fst).
func valuesOf(r Result) ([]float64, error) {
	if r.NumStats != 1 || r.NumNodes != 1 {
		return nil, errSingleStat
	}
	out := make([]float64, r.NumWindows)
	for w := range out {
		out[w] = r.At(w, 0, 0)
	}
	return out, nil
}

// Diversity computes mean pairwise diversity within set over windows,
// in branch or site mode.
func Diversity(ts *tseq.TreeSequence, set stats.SampleSet, mode Mode, win WindowSpec) (Result, error) {
	W, err := stats.BuildWeights(ts, []stats.SampleSet{set})
	if err != nil {
		return Result{}, err
	}
	return GeneralStat(ts, W, stats.Diversity(set.Size()), mode, win, Options{Polarised: true, SpanNormalise: true})
}

// Divergence computes mean pairwise divergence between a and b.
func Divergence(ts *tseq.TreeSequence, a, b stats.SampleSet, mode Mode, win WindowSpec) (Result, error) {
	W, err := stats.BuildWeights(ts, []stats.SampleSet{a, b})
	if err != nil {
		return Result{}, err
	}
	return GeneralStat(ts, W, stats.Divergence(a.Size(), b.Size()), mode, win, Options{Polarised: true, SpanNormalise: true})
}

// Y1 computes Patterson's Y1(a) statistic on a single sample set of size
// at least 3.
func Y1(ts *tseq.TreeSequence, a stats.SampleSet, mode Mode, win WindowSpec) (Result, error) {
	W, err := stats.BuildWeights(ts, []stats.SampleSet{a})
	if err != nil {
		return Result{}, err
	}
	return GeneralStat(ts, W, stats.Y1(a.Size()), mode, win, Options{Polarised: true, SpanNormalise: true})
}

// Y2 computes Patterson's Y2(a,b) statistic, b of size at least 2.
func Y2(ts *tseq.TreeSequence, a, b stats.SampleSet, mode Mode, win WindowSpec) (Result, error) {
	W, err := stats.BuildWeights(ts, []stats.SampleSet{a, b})
	if err != nil {
		return Result{}, err
	}
	return GeneralStat(ts, W, stats.Y2(a.Size(), b.Size()), mode, win, Options{Polarised: true, SpanNormalise: true})
}

// Y3 computes Patterson's Y3(a,b,c) statistic.
func Y3(ts *tseq.TreeSequence, a, b, c stats.SampleSet, mode Mode, win WindowSpec) (Result, error) {
	W, err := stats.BuildWeights(ts, []stats.SampleSet{a, b, c})
	if err != nil {
		return Result{}, err
	}
	return GeneralStat(ts, W, stats.Y3(a.Size(), b.Size(), c.Size()), mode, win, Options{Polarised: true, SpanNormalise: true})
}

// F4 computes Patterson's f4(a,b;c,d) statistic.
func F4(ts *tseq.TreeSequence, a, b, c, d stats.SampleSet, mode Mode, win WindowSpec) (Result, error) {
	W, err := stats.BuildWeights(ts, []stats.SampleSet{a, b, c, d})
	if err != nil {
		return Result{}, err
	}
	return GeneralStat(ts, W, stats.F4(a.Size(), b.Size(), c.Size(), d.Size()), mode, win, Options{Polarised: true, SpanNormalise: true})
}

// F3 computes f3(c;a,b).
func F3(ts *tseq.TreeSequence, c, a, b stats.SampleSet, mode Mode, win WindowSpec) (Result, error) {
	W, err := stats.BuildWeights(ts, []stats.SampleSet{c, a, b})
	if err != nil {
		return Result{}, err
	}
	return GeneralStat(ts, W, stats.F3(c.Size(), a.Size(), b.Size()), mode, win, Options{Polarised: true, SpanNormalise: true})
}

// F2 computes f2(a,b).
func F2(ts *tseq.TreeSequence, a, b stats.SampleSet, mode Mode, win WindowSpec) (Result, error) {
	W, err := stats.BuildWeights(ts, []stats.SampleSet{a, b})
	if err != nil {
		return Result{}, err
	}
	return GeneralStat(ts, W, stats.F2(a.Size(), b.Size()), mode, win, Options{Polarised: true, SpanNormalise: true})
}

// Fst computes the per-window Fst estimator of stats.Fst,
// 1 - 2(dX+dY)/(dX+dY+2dXY), between a and b, by composing three
// GeneralStat calls (diversity of a, diversity of b,
// divergence of a and b) rather than a single summary function.
func Fst(ts *tseq.TreeSequence, a, b stats.SampleSet, mode Mode, win WindowSpec) ([]float64, error) {
	piA, err := Diversity(ts, a, mode, win)
	if err != nil {
		return nil, err
	}
	piB, err := Diversity(ts, b, mode, win)
	if err != nil {
		return nil, err
	}
	dAB, err := Divergence(ts, a, b, mode, win)
	if err != nil {
		return nil, err
	}
	out := make([]float64, piA.NumWindows)
	for w := range out {
		out[w] = stats.Fst(piA.At(w, 0, 0), piB.At(w, 0, 0), dAB.At(w, 0, 0))
	}
	return out, nil
}

// SFS computes the branch-mode sample frequency spectrum of set: for each
// window, a length-(set.Size()+1) histogram of branch length by the
// number of set members descending from the branch. Site-mode SFS is left
// unimplemented (spec §9 Open Question b); node mode is not a defined
// statistic for SFS.
func SFS(ts *tseq.TreeSequence, set stats.SampleSet, win WindowSpec) (Result, error) {
	W, err := stats.BuildWeights(ts, []stats.SampleSet{set})
	if err != nil {
		return Result{}, err
	}
	return GeneralStat(ts, W, stats.SFS(set.Size()), Branch, win, Options{Polarised: true, SpanNormalise: true})
}

// SegregatingSites counts, per window, the sites at which set carries
// more than one allele. Only meaningful in Site mode.
func SegregatingSites(ts *tseq.TreeSequence, set stats.SampleSet, win WindowSpec) (Result, error) {
	W, err := stats.BuildWeights(ts, []stats.SampleSet{set})
	if err != nil {
		return Result{}, err
	}
	return GeneralStat(ts, W, stats.SegregatingSites(set.Size()), Site, win, Options{Polarised: true, SpanNormalise: true})
}

// PlotWindowedStat renders a single-statistic result as a line-and-points
// PNG, using windowBounds to place each value at its window's midpoint.
func PlotWindowedStat(r Result, windowBounds []float64, xLabel, yLabel, outPrefix string) error {
	values, err := valuesOf(r)
	if err != nil {
		return err
	}
	return stats.PlotWindowedStat(values, windowBounds, xLabel, yLabel, outPrefix)
}
