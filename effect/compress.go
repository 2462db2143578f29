// Package effect holds the per-sample processing applied between capture and
// the sink. Currently a single dynamic-range compressor.
package effect

import "math"

// Compress applies instantaneous feed-forward compression to a frame of
// float samples in [-1, 1] and returns the processed frame. The input is not
// modified. Above the threshold the gain is thresholdAmp +
// (amp-thresholdAmp)/ratio; below it samples pass through unchanged. There is
// no attack/release smoothing and no knee.
func Compress(samples []float32, thresholdDB, ratio float32) []float32 {
	result := make([]float32, len(samples))

	thresholdAmp := float32(math.Pow(10, float64(thresholdDB)/20))
	if thresholdAmp == 0 || ratio == 0 {
		copy(result, samples)
		return result
	}

	for i, sample := range samples {
		abs := float32(math.Abs(float64(sample)))
		if abs > thresholdAmp {
			gain := thresholdAmp + (abs-thresholdAmp)/ratio
			result[i] = sample * (gain / abs)
		} else {
			result[i] = sample
		}
	}

	return result
}
