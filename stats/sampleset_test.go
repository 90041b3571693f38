package stats

import (
	"errors"
	"testing"

	"github.com/evolbioinfo/tsstat/internal/fixtures"
)

func TestNewSampleSetValidation(t *testing.T) {
	ts := fixtures.CaseOne()

	if _, err := NewSampleSet(ts, []int{0, 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := NewSampleSet(ts, nil); !errors.Is(err, ErrInvalidSampleSet) {
		t.Fatalf("expected ErrInvalidSampleSet for empty set, got %v", err)
	}
	if _, err := NewSampleSet(ts, []int{0, 0}); !errors.Is(err, ErrInvalidSampleSet) {
		t.Fatalf("expected ErrInvalidSampleSet for duplicate, got %v", err)
	}
	if _, err := NewSampleSet(ts, []int{3}); !errors.Is(err, ErrInvalidSampleSet) {
		t.Fatalf("expected ErrInvalidSampleSet for non-sample node, got %v", err)
	}
}

func TestBuildWeights(t *testing.T) {
	ts := fixtures.CaseOne()
	a, err := NewSampleSet(ts, []int{0})
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewSampleSet(ts, []int{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	W, err := BuildWeights(ts, []SampleSet{a, b})
	if err != nil {
		t.Fatal(err)
	}
	want := [][]float64{{1, 0}, {0, 1}, {0, 1}}
	for i := range want {
		for j := range want[i] {
			if W[i][j] != want[i][j] {
				t.Fatalf("W[%d][%d] = %v, want %v", i, j, W[i][j], want[i][j])
			}
		}
	}
}
