package shm

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestSegment(t *testing.T, channels, maxFrames int) (*Segment, string) {
	t.Helper()

	path := Path(t.TempDir(), DefaultEndpoint)

	seg, err := Create(path, 1, channels, maxFrames)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	t.Cleanup(func() { seg.Close() })

	return seg, path
}

func interleave(frames int, channels int, fn func(frame, ch int) float32) []float32 {
	out := make([]float32, frames*channels)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			out[i*channels+ch] = fn(i, ch)
		}
	}
	return out
}

func TestConnectMissingSegment(t *testing.T) {
	c := Connect(filepath.Join(t.TempDir(), "nope"))
	if c.Valid() {
		t.Fatal("expected client for missing segment to be invalid")
	}

	r := c.ReaderFor(0)
	if r == nil {
		t.Fatal("expected a non-nil reader")
	}

	if r.Valid() {
		t.Fatal("expected reader of invalid client to be invalid")
	}

	if n, ok := r.Pull(); ok || n != 0 {
		t.Fatalf("expected failed pull, got (%d, %v)", n, ok)
	}
}

func TestConnectForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foreign")
	if err := os.WriteFile(path, make([]byte, 4096), 0o644); err != nil {
		t.Fatal(err)
	}

	if Connect(path).Valid() {
		t.Fatal("expected client for a file without magic to be invalid")
	}
}

func TestReaderForOutOfRange(t *testing.T) {
	_, path := newTestSegment(t, 2, 16)

	c := Connect(path)
	defer c.Close()

	if !c.Valid() {
		t.Fatal("expected client to be valid")
	}

	for _, idx := range []int{-1, 1, 7} {
		if c.ReaderFor(idx).Valid() {
			t.Errorf("expected reader for buffer %d to be invalid", idx)
		}
	}
}

func TestPullDistinguishesIdleFromDead(t *testing.T) {
	seg, path := newTestSegment(t, 2, 16)

	c := Connect(path)
	defer c.Close()

	r := c.ReaderFor(0)

	// priming pull
	if n, ok := r.Pull(); !ok || n != 0 {
		t.Fatalf("expected (0, true) on first pull, got (%d, %v)", n, ok)
	}

	if n, ok := r.Pull(); !ok || n != 0 {
		t.Fatalf("expected (0, true) from an idle producer, got (%d, %v)", n, ok)
	}

	w, err := seg.Writer(0)
	if err != nil {
		t.Fatal(err)
	}

	w.Close()

	if n, ok := r.Pull(); ok || n != 0 {
		t.Fatalf("expected (0, false) after writer close, got (%d, %v)", n, ok)
	}

	if r.Valid() {
		t.Fatal("expected reader to be invalid after writer close")
	}
}

func TestPullChannelMajorLayout(t *testing.T) {
	seg, path := newTestSegment(t, 2, 16)

	w, err := seg.Writer(0)
	if err != nil {
		t.Fatal(err)
	}

	c := Connect(path)
	defer c.Close()

	r := c.ReaderFor(0)
	r.Pull()

	frames := interleave(5, 2, func(i, ch int) float32 {
		return float32(i) + float32(ch)*100
	})

	if n := w.Write(frames); n != 5 {
		t.Fatalf("expected 5 frames written, got %d", n)
	}

	n, ok := r.Pull()
	if !ok || n != 5 {
		t.Fatalf("expected (5, true), got (%d, %v)", n, ok)
	}

	data := r.Data()
	max := r.MaxFrames()

	for i := 0; i < n; i++ {
		if data[i] != float32(i) {
			t.Errorf("left[%d] = %v, want %v", i, data[i], i)
		}

		if data[max+i] != float32(i)+100 {
			t.Errorf("right[%d] = %v, want %v", i, data[max+i], float32(i)+100)
		}
	}

	if n, ok := r.Pull(); !ok || n != 0 {
		t.Fatalf("expected nothing new, got (%d, %v)", n, ok)
	}
}

func TestPullWrapsAndClamps(t *testing.T) {
	seg, path := newTestSegment(t, 1, 8)

	w, _ := seg.Writer(0)

	c := Connect(path)
	defer c.Close()

	r := c.ReaderFor(0)
	r.Pull()

	// 6 then 5 frames cross the ring boundary
	w.Write([]float32{1, 2, 3, 4, 5, 6})
	r.Pull()

	w.Write([]float32{7, 8, 9, 10, 11})

	n, ok := r.Pull()
	if !ok || n != 5 {
		t.Fatalf("expected (5, true), got (%d, %v)", n, ok)
	}

	for i, want := range []float32{7, 8, 9, 10, 11} {
		if got := r.Data()[i]; got != want {
			t.Errorf("data[%d] = %v, want %v", i, got, want)
		}
	}

	// falling behind by more than a ring keeps the newest frames only
	big := make([]float32, 20)
	for i := range big {
		big[i] = float32(100 + i)
	}
	w.Write(big)

	n, ok = r.Pull()
	if !ok || n != 8 {
		t.Fatalf("expected (8, true), got (%d, %v)", n, ok)
	}

	for i := 0; i < n; i++ {
		if want := float32(112 + i); r.Data()[i] != want {
			t.Errorf("data[%d] = %v, want %v", i, r.Data()[i], want)
		}
	}
}

func TestSegmentCloseInvalidatesReaders(t *testing.T) {
	path := Path(t.TempDir(), 1)

	seg, err := Create(path, 2, 2, 32)
	if err != nil {
		t.Fatal(err)
	}

	c := Connect(path)
	defer c.Close()

	r := c.ReaderFor(1)
	if !r.Valid() {
		t.Fatal("expected reader to be valid")
	}

	if err := seg.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, ok := r.Pull(); ok {
		t.Fatal("expected pull to fail after segment close")
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected segment file to be removed, stat err: %v", err)
	}

	if Connect(path).Valid() {
		t.Fatal("expected reconnect to a removed segment to be invalid")
	}
}

func TestClientCloseInvalidatesReaders(t *testing.T) {
	_, path := newTestSegment(t, 2, 16)

	c := Connect(path)
	r := c.ReaderFor(0)

	if err := c.Close(); err != nil {
		t.Fatal(err)
	}

	if r.Valid() {
		t.Fatal("expected reader to be invalid after client close")
	}

	if _, ok := r.Pull(); ok {
		t.Fatal("expected pull to fail after client close")
	}
}

func TestCreateRejectsBadGeometry(t *testing.T) {
	dir := t.TempDir()

	for _, tc := range []struct{ buffers, channels, frames int }{
		{0, 2, 16},
		{1, 0, 16},
		{1, 2, 0},
	} {
		if _, err := Create(Path(dir, 9), tc.buffers, tc.channels, tc.frames); err == nil {
			t.Errorf("expected error for %+v", tc)
		}
	}
}

func BenchmarkPull(b *testing.B) {
	path := Path(b.TempDir(), DefaultEndpoint)

	seg, err := Create(path, 1, 2, 4096)
	if err != nil {
		b.Fatal(err)
	}
	defer seg.Close()

	w, _ := seg.Writer(0)
	c := Connect(path)
	defer c.Close()

	r := c.ReaderFor(0)
	r.Pull()

	chunk := make([]float32, 2*882)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		w.Write(chunk)
		r.Pull()
	}
}

func TestEndpoints(t *testing.T) {
	dir := t.TempDir()

	for _, ep := range []int{12, 3} {
		seg, err := Create(Path(dir, ep), 1, 1, 4)
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { seg.Close() })
	}

	if err := os.WriteFile(filepath.Join(dir, "catscope-7.tmp-1"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Endpoints(dir)
	if err != nil {
		t.Fatal(err)
	}

	if len(got) != 2 || got[0] != 3 || got[1] != 12 {
		t.Fatalf("endpoints = %v, want [3 12]", got)
	}
}
