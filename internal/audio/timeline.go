package audio

import "math"

// Resample reduces samples to exactly seconds values. Each value is the
// sample of greatest magnitude inside its window, sign preserved. When there
// are fewer samples than seconds the last sample is repeated.
func Resample(samples []float64, seconds int) []float64 {
	if seconds <= 0 || len(samples) == 0 {
		return nil
	}

	out := make([]float64, seconds)
	n := len(samples)
	for i := range out {
		start := i * n / seconds
		end := (i + 1) * n / seconds
		if start >= n {
			start = n - 1
		}
		if end <= start {
			end = start + 1
		}

		peak := samples[start]
		for _, v := range samples[start+1 : end] {
			if math.Abs(v) > math.Abs(peak) {
				peak = v
			}
		}
		out[i] = peak
	}
	return out
}

// Rescale stretches values in place so the observed minimum maps to -1 and
// the maximum to +1. A flat timeline carries no range to stretch and is left
// untouched.
func Rescale(values []float64) []float64 {
	if len(values) == 0 {
		return values
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		return values
	}

	for i, v := range values {
		values[i] = (v-lo)/(hi-lo)*2 - 1
	}
	return values
}

// Timeline converts a source into one rescaled value per whole second of
// clip length.
func Timeline(src Source) []float64 {
	seconds := int(math.Round(src.Length()))
	return Rescale(Resample(src.Samples(), seconds))
}
