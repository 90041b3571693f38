// Package engine implements the propagation core and the three general_stat
// traversal modes (branch, site, node) over a tseq.TreeSequence, plus the
// from-scratch naive reference implementations used to cross-check them.
package engine

import "errors"

var ErrInvalidMode = errors.New("invalid mode")

// Mode selects which of the three general_stat traversal modes to run.
type Mode int

const (
	// Branch mode integrates the summary function over branch length and
	// genomic span: each window entry is a sum, over every branch present
	// in the trees spanning the window, of branch length times f(S[u]),
	// area-weighted by the overlap between the branch's tree span and the
	// window.
	Branch Mode = iota
	// Site mode sums f evaluated at the allele-weight partition of each
	// mutated site falling inside the window; it is not branch-length
	// weighted.
	Site
	// Node mode reports one entry per node per window: the genomic span,
	// within the window, for which the node was part of some local tree,
	// weighted by f(S[u]) (not by branch length).
	Node
)

func (m Mode) String() string {
	switch m {
	case Branch:
		return "branch"
	case Site:
		return "site"
	case Node:
		return "node"
	default:
		return "invalid"
	}
}
