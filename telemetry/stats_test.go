package telemetry

import (
	"math"
	"testing"
)

func TestComputeFieldStats(t *testing.T) {
	// Shuffled 1..10
	values := []float64{7, 2, 9, 4, 1, 10, 3, 8, 5, 6}

	mean, std, p5, p50, p95 := ComputeFieldStats(values)

	if math.Abs(mean-5.5) > 1e-12 {
		t.Errorf("expected mean 5.5, got %f", mean)
	}
	wantStd := math.Sqrt(82.5 / 9.0)
	if math.Abs(std-wantStd) > 1e-12 {
		t.Errorf("expected std %f, got %f", wantStd, std)
	}
	if p5 != 1 {
		t.Errorf("expected p5 = 1, got %f", p5)
	}
	if p50 != 5 {
		t.Errorf("expected p50 = 5, got %f", p50)
	}
	if p95 != 10 {
		t.Errorf("expected p95 = 10, got %f", p95)
	}

	// Input must not be reordered
	if values[0] != 7 || values[9] != 6 {
		t.Error("expected the input slice left untouched")
	}
}

func TestComputeFieldStats_Empty(t *testing.T) {
	mean, std, p5, p50, p95 := ComputeFieldStats(nil)
	if mean != 0 || std != 0 || p5 != 0 || p50 != 0 || p95 != 0 {
		t.Errorf("expected all zeros for empty input, got %f %f %f %f %f", mean, std, p5, p50, p95)
	}
}

func TestComputeFieldStats_SingleValue(t *testing.T) {
	mean, std, p5, p50, p95 := ComputeFieldStats([]float64{7})
	if mean != 7 {
		t.Errorf("expected mean 7, got %f", mean)
	}
	if std != 0 {
		t.Errorf("expected zero std for a single value, got %f", std)
	}
	if p5 != 7 || p50 != 7 || p95 != 7 {
		t.Errorf("expected all percentiles 7, got %f %f %f", p5, p50, p95)
	}
}

func TestMaxValue(t *testing.T) {
	if got := MaxValue(nil); got != 0 {
		t.Errorf("expected 0 for empty input, got %f", got)
	}
	if got := MaxValue([]float64{3, 9, 1}); got != 9 {
		t.Errorf("expected 9, got %f", got)
	}
}
