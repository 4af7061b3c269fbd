package engine

import (
	"testing"

	"github.com/pipewright/pipewright/pkg/graph"
)

func TestCapacity_ZeroLength(t *testing.T) {
	for _, size := range graph.PipeSizes() {
		if got := Capacity(size, 0, DefaultPressureDrop); got != 0 {
			t.Errorf("Capacity(%s, 0) = %d, want 0", size, got)
		}
		if got := Capacity(size, -5, DefaultPressureDrop); got != 0 {
			t.Errorf("Capacity(%s, -5) = %d, want 0", size, got)
		}
	}
}

func TestCapacity_MonotonicInLength(t *testing.T) {
	lengths := []float64{5, 10, 20, 40, 80, 160}
	for _, size := range graph.PipeSizes() {
		prev := int64(-1)
		for i := len(lengths) - 1; i >= 0; i-- {
			got := Capacity(size, lengths[i], DefaultPressureDrop)
			if got < prev {
				t.Errorf("Capacity(%s) not non-increasing in length: len=%g gave %d after %d", size, lengths[i], got, prev)
			}
			prev = got
		}
	}
}

func TestCapacity_MonotonicInSize(t *testing.T) {
	sizes := graph.PipeSizes()
	prev := int64(0)
	for _, size := range sizes {
		got := Capacity(size, 20, DefaultPressureDrop)
		if got <= prev {
			t.Errorf("Capacity(%s, 20ft) = %d, expected more than smaller size's %d", size, got, prev)
		}
		prev = got
	}
}

func TestCapacity_RoundsDownToThousands(t *testing.T) {
	for _, size := range graph.PipeSizes() {
		for _, length := range []float64{7, 13, 42, 99} {
			got := Capacity(size, length, DefaultPressureDrop)
			if got < 0 {
				t.Errorf("Capacity(%s, %g) = %d, want non-negative", size, length, got)
			}
			if got%1000 != 0 {
				t.Errorf("Capacity(%s, %g) = %d, want a multiple of 1000", size, length, got)
			}
		}
	}
}

func TestCapacity_UnknownSize(t *testing.T) {
	if got := Capacity(graph.PipeSize("6"), 10, DefaultPressureDrop); got != 0 {
		t.Errorf("unknown size should have zero capacity, got %d", got)
	}
}

func TestCapacity_PlausibleRange(t *testing.T) {
	// A 3/4" line at 10 ft under the default drop should land in the
	// neighborhood of the published table values (~180 kBTU/h).
	got := Capacity(graph.SizeThreeQuarter, 10, DefaultPressureDrop)
	if got < 100000 || got > 300000 {
		t.Errorf("Capacity(3/4, 10ft) = %d, outside plausible range", got)
	}
}
