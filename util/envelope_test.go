package util

import (
	"testing"

	"gonum.org/v1/gonum/floats"
)

func TestEnvelopeBuckets(t *testing.T) {
	samples := []float64{0, 1, -1, 0.5, 0.25, -0.5, 0, 0.75}
	lo := make([]float64, 4)
	hi := make([]float64, 4)

	Envelope(samples, 4, lo, hi)

	if want := []float64{0, -1, -0.5, 0}; !floats.Equal(lo, want) {
		t.Errorf("lo = %v, want %v", lo, want)
	}

	if want := []float64{1, 0.5, 0.25, 0.75}; !floats.Equal(hi, want) {
		t.Errorf("hi = %v, want %v", hi, want)
	}
}

func TestEnvelopeMoreColumnsThanSamples(t *testing.T) {
	samples := []float64{1, 2}
	lo := make([]float64, 5)
	hi := make([]float64, 5)

	Envelope(samples, 5, lo, hi)

	if !floats.Equal(lo, hi) {
		t.Fatalf("expected single-sample buckets, lo %v hi %v", lo, hi)
	}

	if want := []float64{1, 1, 1, 2, 2}; !floats.Equal(lo, want) {
		t.Fatalf("lo = %v, want %v", lo, want)
	}
}

func TestEnvelopeEmpty(t *testing.T) {
	lo := []float64{7}
	hi := []float64{7}

	Envelope(nil, 1, lo, hi)

	if lo[0] != 7 || hi[0] != 7 {
		t.Fatal("expected empty input to leave buffers untouched")
	}
}

func TestScale(t *testing.T) {
	tests := []struct {
		v, min, max float64
		steps, want int
	}{
		{-1, -1, 1, 11, 0},
		{1, -1, 1, 11, 10},
		{0, -1, 1, 11, 5},
		{5, -1, 1, 11, 10},
		{-5, -1, 1, 11, 0},
		{0.5, 0, 0, 11, 5},
		{0.5, 0, 1, 0, 0},
		{2048, 0, 4096, 81, 40},
	}

	for _, tc := range tests {
		if got := Scale(tc.v, tc.min, tc.max, tc.steps); got != tc.want {
			t.Errorf("Scale(%v, %v, %v, %d) = %d, want %d",
				tc.v, tc.min, tc.max, tc.steps, got, tc.want)
		}
	}
}
