package effect

import (
	"math"
	"testing"
)

func TestCompressBelowThresholdIsIdentity(t *testing.T) {
	// -20 dB -> thresholdAmp ~= 0.1
	in := []float32{0.0, 0.05, -0.05, 0.0999, -0.0999}
	out := Compress(in, -20, 4)
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("sample %d: got %v, want %v unchanged", i, out[i], in[i])
		}
	}
}

func TestCompressAboveThresholdAttenuates(t *testing.T) {
	in := []float32{0.5, -0.5, 0.2, -0.9, 1.0}
	out := Compress(in, -20, 4)
	for i := range in {
		if math.Abs(float64(out[i])) >= math.Abs(float64(in[i])) {
			t.Errorf("sample %d: |%v| not attenuated from |%v|", i, out[i], in[i])
		}
		if (out[i] < 0) != (in[i] < 0) {
			t.Errorf("sample %d: sign flipped: %v -> %v", i, in[i], out[i])
		}
	}
}

func TestCompressKnownValues(t *testing.T) {
	// thresholdDb=-20, ratio=4, thresholdAmp~=0.1.
	// s=0.5: gain = 0.1 + (0.5-0.1)/4 = 0.2, out = 0.5 * (0.2/0.5) = 0.2.
	out := Compress([]float32{0.5, -0.05}, -20, 4)
	if math.Abs(float64(out[0])-0.2) > 1e-6 {
		t.Errorf("compress(0.5) = %v, want ~0.2", out[0])
	}
	if out[1] != -0.05 {
		t.Errorf("compress(-0.05) = %v, want -0.05", out[1])
	}
}

func TestCompressRatioOneIsIdentity(t *testing.T) {
	in := []float32{0.0, 0.05, 0.5, -0.5, 0.99, -1.0}
	out := Compress(in, -20, 1)
	for i := range in {
		// gain = thresholdAmp + (a - thresholdAmp) = a, so gain/a = 1.
		if math.Abs(float64(out[i]-in[i])) > 1e-7 {
			t.Errorf("sample %d: got %v, want %v", i, out[i], in[i])
		}
	}
}

func TestCompressOutputLength(t *testing.T) {
	for _, n := range []int{0, 1, 37, 4096} {
		in := make([]float32, n)
		if got := len(Compress(in, -20, 4)); got != n {
			t.Errorf("len(Compress(%d samples)) = %d", n, got)
		}
	}
}

func TestCompressZeroThresholdAmpGuard(t *testing.T) {
	// thresholdDb = -Inf would give thresholdAmp = 0; must act as identity
	// rather than divide by zero.
	in := []float32{0.0, 0.3, -0.7}
	out := Compress(in, float32(math.Inf(-1)), 4)
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("sample %d: got %v, want %v", i, out[i], in[i])
		}
	}
}
