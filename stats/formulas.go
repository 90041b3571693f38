package stats

import (
	"math"

	"github.com/evolbioinfo/tsstat/engine"
)

// Diversity returns the summary function for mean pairwise diversity
// within a single sample set of size n: f(x) = x*(n-x)*2/(n*(n-1)). It
// expects a one-column weight matrix built from a single SampleSet.
func Diversity(n int) engine.SummaryFunc {
	scale := 2.0 / (float64(n) * float64(n-1))
	return func(x []float64) []float64 {
		return []float64{x[0] * (float64(n) - x[0]) * scale}
	}
}

// Divergence returns the summary function for mean pairwise divergence
// between two disjoint sample sets of size nA, nB:
// f(x) = (xA*(nB-xB) + (nA-xA)*xB) / (nA*nB). It expects a two-column
// weight matrix, column 0 for A and column 1 for B.
func Divergence(nA, nB int) engine.SummaryFunc {
	denom := float64(nA) * float64(nB)
	return func(x []float64) []float64 {
		xa, xb := x[0], x[1]
		return []float64{(xa*(float64(nB)-xb) + (float64(nA)-xa)*xb) / denom}
	}
}

// Y1 returns the summary function for Patterson's Y1 statistic on a
// single sample set of size n (n must be at least 3): the probability
// that three samples drawn without replacement from A have a shared
// ancestor that is derived relative to the fourth sampled lineage's
// branch, expressed via allele frequencies.
func Y1(n int) engine.SummaryFunc {
	nf := float64(n)
	denom := nf * (nf - 1) * (nf - 2)
	return func(x []float64) []float64 {
		xa := x[0]
		return []float64{xa * (nf - xa) * (nf - xa - 1) / denom}
	}
}

// Y2 returns the summary function for Patterson's Y2 statistic between
// sample set A (size nA) and sample set B (size nB, at least 2): like Y3,
// but with two of the three sampled lineages drawn (without replacement)
// from B instead of from three distinct sets.
func Y2(nA, nB int) engine.SummaryFunc {
	fa, fb := float64(nA), float64(nB)
	denomB := fb - 1
	return func(x []float64) []float64 {
		xa, xb := x[0], x[1]
		pa := xa / fa
		return []float64{pa*(fb-xb)*(fb-xb-1)/(fb*denomB) + (1-pa)*xb*(xb-1)/(fb*denomB)}
	}
}

// Y3 returns the summary function for Patterson's Y3 statistic among
// disjoint sample sets A, B, C, expressed in terms of allele frequencies:
// f(x) = pA*(1-pB)*(1-pC) + (1-pA)*pB*pC.
func Y3(nA, nB, nC int) engine.SummaryFunc {
	fa, fb, fc := float64(nA), float64(nB), float64(nC)
	return func(x []float64) []float64 {
		pa, pb, pc := x[0]/fa, x[1]/fb, x[2]/fc
		return []float64{pa*(1-pb)*(1-pc) + (1-pa)*pb*pc}
	}
}

// F4 returns the summary function for Patterson's f4(A,B;C,D) statistic:
// f(x) = (pA-pB)*(pC-pD), using allele frequencies within each of the
// four disjoint sample sets.
func F4(nA, nB, nC, nD int) engine.SummaryFunc {
	fa, fb, fc, fd := float64(nA), float64(nB), float64(nC), float64(nD)
	return func(x []float64) []float64 {
		pa, pb, pc, pd := x[0]/fa, x[1]/fb, x[2]/fc, x[3]/fd
		return []float64{(pa - pb) * (pc - pd)}
	}
}

// F3 returns the summary function for f3(C;A,B), the standard
// three-population test for C being admixed between A and B: the unbiased,
// without-replacement estimator (spec §4.8's "treat these as tests" of the
// sample-set test suite, not the naive (pC-pA)*(pC-pB) plug-in), folded over
// the polarisation complement the way F4 already is, so it is correct
// called with Options.Polarised true. xc carries the (xc-1) self-sampling
// correction that distinguishes f3 from a plain frequency-difference
// product; dropping it (as a biased plug-in would) gives the wrong value
// whenever a sample set is counted against itself, e.g. n=(2,2,2),
// x=(1,0,0) is 0, not the biased estimator's 0.25.
func F3(nC, nA, nB int) engine.SummaryFunc {
	nc, na, nb := float64(nC), float64(nA), float64(nB)
	denom := nc * (nc - 1) * na * nb
	return func(x []float64) []float64 {
		xc, xa, xb := x[0], x[1], x[2]
		term1 := xc * (xc - 1) * (na - xa) * (nb - xb)
		term2 := xc * (nc - xc) * (na - xa) * xb
		term3 := (nc - xc) * (nc - xc - 1) * xa * xb
		term4 := (nc - xc) * xc * xa * (nb - xb)
		return []float64{(term1 - term2 + term3 - term4) / denom}
	}
}

// F2 returns the summary function for f2(A,B), the expected
// squared allele-frequency difference between two sample sets: the
// unbiased, without-replacement estimator, folded over the polarisation
// complement (as F4 is), so it is correct called with Options.Polarised
// true. The naive plug-in (pA-pB)^2 omits the (x-1) self-sampling
// correction and disagrees with this definition whenever a set is sampled
// against itself, e.g. n=(2,2), x=(1,1) is -0.5, not the plug-in's 0.
func F2(nA, nB int) engine.SummaryFunc {
	na, nb := float64(nA), float64(nB)
	denom := na * (na - 1) * nb * (nb - 1)
	return func(x []float64) []float64 {
		xa, xb := x[0], x[1]
		same := xa*(xa-1)*(nb-xb)*(nb-xb-1) + (na-xa)*(na-xa-1)*xb*(xb-1)
		cross := 2 * xa * (na - xa) * xb * (nb - xb)
		return []float64{(same - cross) / denom}
	}
}

// Fst combines a window's within-set diversities dX, dY and between-set
// divergence dXY into the per-site Fst estimator 1 - 2(dX+dY)/(dX+dY+2dXY)
// (spec §6). It is a plain composition of three general_stat calls, not a
// summary function run through the engine itself. A window with no
// segregating sites between or within the two sets has an undefined
// denominator and returns NaN, per spec scenario S6.
func Fst(dX, dY, dXY float64) float64 {
	denom := dX + dY + 2*dXY
	if denom == 0 {
		return math.NaN()
	}
	return 1 - 2*(dX+dY)/denom
}

// SFS returns the branch-mode summary function underlying the sample
// frequency spectrum of a single sample set of size n: f(x) is the
// length-(n+1) one-hot vector with a 1 at index round(x), so that
// BranchGeneralStat's per-node bl(u)*f(S[u]) accumulation deposits every
// node's branch length into the bucket for its tracked-sample count,
// exactly as the naive/efficient branch_sample_frequency_spectrum
// definitions do. Only branch mode is specified (spec §9 Open Question b
// leaves site-mode SFS unimplemented, and multi-root trees are out of
// scope per Open Question c); call with Options.Polarised true, since the
// complement-folding that other convenience statistics use does not apply
// to a frequency-indexed histogram.
func SFS(n int) engine.SummaryFunc {
	return func(x []float64) []float64 {
		out := make([]float64, n+1)
		count := int(x[0] + 0.5)
		if count >= 0 && count <= n {
			out[count] = 1
		}
		return out
	}
}

// SegregatingSites returns the site-mode summary function that counts,
// for a single sample set of size n, the sites at which the set carries
// more than one allele: f(x) = 1 if 0 < x < n else 0.
func SegregatingSites(n int) engine.SummaryFunc {
	return func(x []float64) []float64 {
		if x[0] > 0 && x[0] < float64(n) {
			return []float64{1}
		}
		return []float64{0}
	}
}
