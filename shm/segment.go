package shm

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Segment is the producer side of a shared ring segment.
type Segment struct {
	path   string
	mem    []byte
	l      layout
	closed bool
}

// Create makes a new segment at path, replacing any previous one. The file is
// fully initialized before it becomes visible under path, so a reader either
// finds no segment or a complete one.
func Create(path string, buffers, channels, maxFrames int) (*Segment, error) {
	switch {
	case buffers < 1:
		return nil, errors.New("too few buffers (1 min)")
	case channels < 1:
		return nil, errors.New("too few channels (1 min)")
	case maxFrames < 1:
		return nil, errors.New("too few frames (1 min)")
	}

	l := layout{buffers: buffers, channels: channels, maxFrames: maxFrames}

	tmp := fmt.Sprintf("%s.tmp-%d", path, os.Getpid())

	f, err := os.OpenFile(tmp, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create segment file")
	}
	defer f.Close()

	if err := f.Truncate(int64(l.size())); err != nil {
		os.Remove(tmp)
		return nil, errors.Wrap(err, "failed to size segment file")
	}

	mem, err := unix.Mmap(int(f.Fd()), 0, l.size(),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		os.Remove(tmp)
		return nil, errors.Wrap(err, "failed to map segment file")
	}

	for idx := 0; idx < buffers; idx++ {
		storeWord(mem, l.base(idx)+offState, StateLive)
	}

	writeLayout(mem, l)

	if err := os.Rename(tmp, path); err != nil {
		unix.Munmap(mem)
		os.Remove(tmp)
		return nil, errors.Wrap(err, "failed to publish segment file")
	}

	return &Segment{path: path, mem: mem, l: l}, nil
}

// Path returns the published path of the segment.
func (s *Segment) Path() string {
	return s.path
}

// Channels returns the number of channels per buffer.
func (s *Segment) Channels() int {
	return s.l.channels
}

// MaxFrames returns the per-channel ring size.
func (s *Segment) MaxFrames() int {
	return s.l.maxFrames
}

// Writer returns the writer for buffer index.
func (s *Segment) Writer(index int) (*Writer, error) {
	if s.closed {
		return nil, errors.New("segment is closed")
	}

	if index < 0 || index >= s.l.buffers {
		return nil, errors.Errorf("buffer index %d out of range [0, %d)", index, s.l.buffers)
	}

	return &Writer{seg: s, index: index}, nil
}

// Close marks every buffer closed, unmaps the segment and removes its file.
func (s *Segment) Close() error {
	if s.closed {
		return nil
	}

	s.closed = true

	for idx := 0; idx < s.l.buffers; idx++ {
		storeWord(s.mem, s.l.base(idx)+offState, StateClosed)
	}

	err := unix.Munmap(s.mem)
	s.mem = nil

	if rmErr := os.Remove(s.path); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
		err = rmErr
	}

	return errors.Wrap(err, "failed to close segment")
}

// Writer appends frames to one buffer of a segment. It must only be used from
// a single goroutine.
type Writer struct {
	seg   *Segment
	index int
}

// Channels returns the number of samples per interleaved frame.
func (w *Writer) Channels() int {
	return w.seg.l.channels
}

// Write stores interleaved frames and publishes them. A trailing partial frame
// is ignored. It returns the number of frames written.
func (w *Writer) Write(interleaved []float32) int {
	if w.seg.closed {
		return 0
	}

	l := w.seg.l
	mem := w.seg.mem
	frames := len(interleaved) / l.channels

	if frames == 0 {
		return 0
	}

	ctrl := l.base(w.index)
	written := loadWord(mem, ctrl+offWritten)
	dst := ring(mem, l, w.index)

	// older frames would be overwritten within this call anyway
	skip := 0
	if frames > l.maxFrames {
		skip = frames - l.maxFrames
	}

	for i := skip; i < frames; i++ {
		pos := int((written + uint64(i)) % uint64(l.maxFrames))
		for ch := 0; ch < l.channels; ch++ {
			dst[ch*l.maxFrames+pos] = interleaved[i*l.channels+ch]
		}
	}

	storeWord(mem, ctrl+offWritten, written+uint64(frames))

	return frames
}

// Close marks the buffer closed. Readers see their next Pull fail.
func (w *Writer) Close() error {
	if w.seg.closed {
		return nil
	}

	storeWord(w.seg.mem, w.seg.l.base(w.index)+offState, StateClosed)
	return nil
}
