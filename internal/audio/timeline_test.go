package audio

import (
	"math"
	"testing"
)

func TestResamplePicksWindowPeak(t *testing.T) {
	samples := []float64{0.1, -0.7, 0.2, 0.3, 0.05, 0.4}
	got := Resample(samples, 3)
	want := []float64{-0.7, 0.3, 0.4}

	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Resample()[%d] = %g, want %g", i, got[i], want[i])
		}
	}
}

func TestResampleFewerSamplesThanSeconds(t *testing.T) {
	got := Resample([]float64{0.5, -0.5}, 4)
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	if got[3] != -0.5 {
		t.Errorf("last value = %g, want -0.5", got[3])
	}
}

func TestResampleEmpty(t *testing.T) {
	if got := Resample(nil, 10); got != nil {
		t.Errorf("Resample(nil) = %v, want nil", got)
	}
	if got := Resample([]float64{1}, 0); got != nil {
		t.Errorf("Resample(_, 0) = %v, want nil", got)
	}
}

func TestRescale(t *testing.T) {
	got := Rescale([]float64{0.2, 0.4, 0.6})
	want := []float64{-1, 0, 1}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("Rescale()[%d] = %g, want %g", i, got[i], want[i])
		}
	}
}

func TestRescaleFlat(t *testing.T) {
	got := Rescale([]float64{0.5, 0.5})
	if got[0] != 0.5 || got[1] != 0.5 {
		t.Errorf("flat timeline changed: %v", got)
	}
}

func TestTimelineRoundsClipLength(t *testing.T) {
	// 2.6 seconds at 10 Hz rounds to 3 timeline values.
	samples := make([]float64, 26)
	for i := range samples {
		samples[i] = float64(i) / 26
	}
	timeline := Timeline(NewClip("ramp", samples, 10))

	if len(timeline) != 3 {
		t.Fatalf("len = %d, want 3", len(timeline))
	}
	if timeline[0] != -1 || timeline[2] != 1 {
		t.Errorf("timeline not rescaled to [-1, 1]: %v", timeline)
	}
}
