package engine

import "fmt"

// Result wraps the dense output buffer of a general_stat traversal together
// with its shape, so callers index with At(window, node, stat) instead of
// doing row/column arithmetic over a bare slice. For Branch and Site mode
// NumNodes is always 1 (the node dimension is degenerate).
type Result struct {
	NumWindows int
	NumNodes   int
	NumStats   int
	data       []float64
}

// NewResult allocates a zeroed Result of the given shape.
func NewResult(numWindows, numNodes, numStats int) Result {
	return Result{
		NumWindows: numWindows,
		NumNodes:   numNodes,
		NumStats:   numStats,
		data:       make([]float64, numWindows*numNodes*numStats),
	}
}

func (r Result) index(window, node, stat int) int {
	return (window*r.NumNodes+node)*r.NumStats + stat
}

// At returns the value for the given window, node, and stat index. node
// must be 0 for Branch and Site mode results.
func (r Result) At(window, node, stat int) float64 {
	return r.data[r.index(window, node, stat)]
}

// Set stores a value at the given window, node, and stat index.
func (r Result) Set(window, node, stat int, v float64) {
	r.data[r.index(window, node, stat)] = v
}

// AddAt adds delta to the current value at the given window, node, and
// stat index.
func (r Result) AddAt(window, node, stat int, delta float64) {
	r.data[r.index(window, node, stat)] += delta
}

// Row returns the length-NumStats slice of values for the given window and
// node, shared with the underlying buffer (mutating it mutates r).
func (r Result) Row(window, node int) []float64 {
	start := r.index(window, node, 0)
	return r.data[start : start+r.NumStats]
}

// ScaleWindow divides every entry in the given window by factor, used to
// apply span-normalisation after accumulation.
func (r Result) ScaleWindow(window int, factor float64) {
	for node := 0; node < r.NumNodes; node++ {
		row := r.Row(window, node)
		for i := range row {
			row[i] /= factor
		}
	}
}

func (r Result) String() string {
	return fmt.Sprintf("Result{windows=%d, nodes=%d, stats=%d}", r.NumWindows, r.NumNodes, r.NumStats)
}
