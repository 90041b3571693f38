package engine

import "github.com/evolbioinfo/tsstat/tseq"

// SiteGeneralStat runs the incremental site-mode traversal (spec §4.5):
// for every mutated site, the samples are partitioned by the allele they
// carry at that site, and f is evaluated at the weight sum of each allele
// partition (skipping the ancestral-state partition when polarised). The
// site's contribution is assigned to the window containing its position;
// site mode is never branch-length weighted.
func SiteGeneralStat(ts *tseq.TreeSequence, W [][]float64, f SummaryFunc, windowBounds []float64, polarised, spanNormalise bool) Result {
	k := 0
	if len(W) > 0 {
		k = len(W[0])
	}
	m := Probe(f, k)
	numWindows := len(windowBounds) - 1
	result := NewResult(numWindows, 1, m)

	totalWeight := make([]float64, k)
	for _, row := range W {
		for j, v := range row {
			totalWeight[j] += v
		}
	}

	p := newPropagator(ts, W)

	siteIdx := 0
	numSites := ts.NumSites()
	for diff := range ts.EdgeDiffs() {
		for _, e := range diff.Out {
			p.remove(e.Child, nil, nil)
		}
		for _, e := range diff.In {
			p.insert(e.Child, e.Parent, nil, nil)
		}
		for siteIdx < numSites {
			site := ts.Site(siteIdx)
			if site.Position >= diff.Right {
				break
			}
			w := windowOf(windowBounds, site.Position)
			addSiteContribution(ts, result, w, siteIdx, func(u int) []float64 { return p.S[u] }, f, totalWeight, k, polarised)
			siteIdx++
		}
	}

	if spanNormalise {
		for w := 0; w < numWindows; w++ {
			result.ScaleWindow(w, windowBounds[w+1]-windowBounds[w])
		}
	}
	return result
}

// addSiteContribution partitions the samples descended from each mutated
// node (at the site's current local tree) into allele-weight buckets by
// walking the site's mutations in parent-before-child order, then adds
// f(weight) for every allele (skipping the ancestral one if polarised)
// into the result row for window.
func addSiteContribution(ts *tseq.TreeSequence, result Result, window, site int, subtreeSum func(node int) []float64, f SummaryFunc, totalWeight []float64, k int, polarised bool) {
	s := ts.Site(site)
	ancestral := string(s.AncestralState)
	alleleWeight := map[string][]float64{ancestral: cloneVec(totalWeight)}

	for _, idx := range ts.MutationIndices(site) {
		mu := ts.Mutation(idx)
		from := ancestral
		if mu.Parent != -1 {
			from = string(ts.Mutation(mu.Parent).DerivedState)
		}
		to := string(mu.DerivedState)
		ensureAllele(alleleWeight, from, k)
		ensureAllele(alleleWeight, to, k)
		delta := subtreeSum(mu.Node)
		for j := range delta {
			alleleWeight[from][j] -= delta[j]
			alleleWeight[to][j] += delta[j]
		}
	}

	row := result.Row(window, 0)
	for allele, weight := range alleleWeight {
		if polarised && allele == ancestral {
			continue
		}
		v := f(weight)
		for j := range row {
			row[j] += v[j]
		}
	}
}

func cloneVec(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

func ensureAllele(m map[string][]float64, allele string, k int) {
	if _, ok := m[allele]; !ok {
		m[allele] = make([]float64, k)
	}
}
