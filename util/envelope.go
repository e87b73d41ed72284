// Package util holds helpers shared by renderers.
package util

import (
	"gonum.org/v1/gonum/floats"
)

// Envelope splits samples into cols buckets of near equal size and stores the
// minimum and maximum of each bucket in lo and hi. lo and hi must hold at
// least cols values. When there are fewer samples than columns, buckets repeat
// the nearest sample so every column is filled.
func Envelope(samples []float64, cols int, lo, hi []float64) {
	n := len(samples)
	if n == 0 || cols < 1 {
		return
	}

	for col := 0; col < cols; col++ {
		start := col * n / cols
		stop := (col + 1) * n / cols

		if stop <= start {
			stop = start + 1
		}

		if start >= n {
			start = n - 1
			stop = n
		}

		bucket := samples[start:stop]
		lo[col] = floats.Min(bucket)
		hi[col] = floats.Max(bucket)
	}
}

// Scale maps v from the range [lo, hi] onto [0, steps-1], clamping at both
// ends. An empty range maps everything to the middle.
func Scale(v, lo, hi float64, steps int) int {
	if steps < 1 {
		return 0
	}

	span := hi - lo
	if span == 0 {
		return (steps - 1) / 2
	}

	pos := int((v-lo)/span*float64(steps-1) + 0.5)

	switch {
	case pos < 0:
		return 0
	case pos > steps-1:
		return steps - 1
	}

	return pos
}
