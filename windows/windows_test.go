package windows

import (
	"errors"
	"testing"

	"github.com/evolbioinfo/tsstat/internal/fixtures"
)

func TestResolveWholeSequence(t *testing.T) {
	ts := fixtures.CaseOne()
	got, norm, err := Resolve(ts, FromPolicy(WholeSequence))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if norm {
		t.Fatalf("whole-sequence windows should not force normalisation off")
	}
	want := []float64{0, 1.0}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestResolveTrees(t *testing.T) {
	ts := fixtures.CaseOne()
	got, _, err := Resolve(ts, FromPolicy(Trees))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{0, 0.2, 0.8, 1.0}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestResolveSites(t *testing.T) {
	ts := fixtures.CaseOne()
	got, norm, err := Resolve(ts, FromPolicy(Sites))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !norm {
		t.Fatalf("site windows must force span-normalisation off")
	}
	positions := ts.SitePositions()
	if len(got) != len(positions)+1 {
		t.Fatalf("expected %d boundaries, got %d", len(positions)+1, len(got))
	}
	if got[0] != 0 || got[len(got)-1] != ts.SequenceLength() {
		t.Fatalf("boundaries must span [0, L], got %v", got)
	}
}

func TestResolveExplicitValidation(t *testing.T) {
	ts := fixtures.CaseOne()
	cases := []struct {
		name       string
		boundaries []float64
	}{
		{"too short", []float64{0}},
		{"bad first", []float64{0.1, 1.0}},
		{"bad last", []float64{0, 0.9}},
		{"not increasing", []float64{0, 0.5, 0.5, 1.0}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, _, err := Resolve(ts, Explicit(c.boundaries))
			if !errors.Is(err, ErrInvalidWindows) {
				t.Fatalf("expected ErrInvalidWindows, got %v", err)
			}
		})
	}
}

func TestNumWindows(t *testing.T) {
	if got := NumWindows([]float64{0, 0.5, 1.0}); got != 2 {
		t.Fatalf("got %d, want 2", got)
	}
	if got := NumWindows(nil); got != 0 {
		t.Fatalf("got %d, want 0", got)
	}
}
