package scope

// Window is a fixed size history of one channel, oldest sample first. The last
// slot always holds the most recent sample.
//
// It is a dense array rather than an index-wrapped ring so that readers always
// get one contiguous slice without wrap handling.
type Window struct {
	samples []float64
}

// NewWindow returns a zero-filled window holding size samples.
func NewWindow(size int) *Window {
	return &Window{samples: make([]float64, size)}
}

// Ingest appends the first count samples of src, discarding as many of the
// oldest. When count reaches the window size, the window becomes the newest
// Cap() samples of src. count is clamped to len(src).
func (w *Window) Ingest(src []float32, count int) {
	if count > len(src) {
		count = len(src)
	}

	if count <= 0 {
		return
	}

	size := len(w.samples)

	if count >= size {
		src = src[count-size : count]
		for i := range w.samples {
			w.samples[i] = float64(src[i])
		}
		return
	}

	copy(w.samples, w.samples[count:])

	tail := w.samples[size-count:]
	for i := range tail {
		tail[i] = float64(src[i])
	}
}

// Samples returns the window contents, oldest first. Callers must not modify
// the returned slice.
func (w *Window) Samples() []float64 {
	return w.samples
}

// Slice returns length samples starting at offset, clamped to the window.
func (w *Window) Slice(offset, length int) []float64 {
	if offset < 0 {
		offset = 0
	}

	if offset > len(w.samples) {
		offset = len(w.samples)
	}

	end := offset + length
	if end > len(w.samples) || length < 0 {
		end = len(w.samples)
	}

	return w.samples[offset:end]
}

// Cap returns the fixed window size.
func (w *Window) Cap() int {
	return len(w.samples)
}
