// Package shm provides a shared-memory ring segment that carries audio frames
// from a producer process to a scope reader.
//
// A segment is a single memory-mapped file. It starts with a fixed header,
// followed by one block per logical buffer. Each block holds a small control
// area (state and a count of frames ever written) and a channel-major sample
// area where every channel owns a ring of MaxFrames float32 slots.
//
// Neither side ever blocks. The producer writes samples and then publishes the
// new frame count; the reader loads the count and copies whatever is new.
package shm

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"unsafe"
)

const (
	// Magic marks a segment file. It reads "CSCOPE01" in little endian.
	Magic uint64 = 0x313045504f435343
	// Version is the layout version.
	Version uint64 = 1

	// DefaultEndpoint is the endpoint id used when none is configured.
	DefaultEndpoint = 4556

	headerSize  = 64
	controlSize = 64
	alignment   = 64

	offMagic     = 0
	offVersion   = 8
	offBuffers   = 16
	offChannels  = 24
	offMaxFrames = 32

	offState   = 0
	offWritten = 8
)

// Buffer states.
const (
	StateEmpty uint64 = iota
	StateLive
	StateClosed
)

// DefaultDir returns /dev/shm when it exists, and the temp dir otherwise.
func DefaultDir() string {
	if fi, err := os.Stat("/dev/shm"); err == nil && fi.IsDir() {
		return "/dev/shm"
	}

	return os.TempDir()
}

// Path returns the segment file path for an endpoint within dir. An empty dir
// means DefaultDir.
func Path(dir string, endpoint int) string {
	if dir == "" {
		dir = DefaultDir()
	}

	return filepath.Join(dir, fmt.Sprintf("catscope-%d", endpoint))
}

// Endpoints returns the endpoints with a published segment in dir, sorted.
func Endpoints(dir string) ([]int, error) {
	if dir == "" {
		dir = DefaultDir()
	}

	matches, err := filepath.Glob(filepath.Join(dir, "catscope-*"))
	if err != nil {
		return nil, err
	}

	var endpoints []int

	for _, m := range matches {
		id := strings.TrimPrefix(filepath.Base(m), "catscope-")

		// skips segments still being created
		n, err := strconv.Atoi(id)
		if err != nil || n < 0 {
			continue
		}

		endpoints = append(endpoints, n)
	}

	sort.Ints(endpoints)

	return endpoints, nil
}

// layout describes the geometry of a segment.
type layout struct {
	buffers   int
	channels  int
	maxFrames int
}

func (l layout) slots() int {
	return l.channels * l.maxFrames
}

func (l layout) stride() int {
	return controlSize + align(l.slots()*4)
}

func (l layout) size() int {
	return headerSize + l.buffers*l.stride()
}

func (l layout) base(index int) int {
	return headerSize + index*l.stride()
}

func align(n int) int {
	return (n + alignment - 1) / alignment * alignment
}

func readLayout(mem []byte) (layout, bool) {
	if len(mem) < headerSize {
		return layout{}, false
	}

	if binary.LittleEndian.Uint64(mem[offMagic:]) != Magic ||
		binary.LittleEndian.Uint64(mem[offVersion:]) != Version {
		return layout{}, false
	}

	l := layout{
		buffers:   int(binary.LittleEndian.Uint64(mem[offBuffers:])),
		channels:  int(binary.LittleEndian.Uint64(mem[offChannels:])),
		maxFrames: int(binary.LittleEndian.Uint64(mem[offMaxFrames:])),
	}

	if l.buffers < 1 || l.channels < 1 || l.maxFrames < 1 || l.size() > len(mem) {
		return layout{}, false
	}

	return l, true
}

func writeLayout(mem []byte, l layout) {
	binary.LittleEndian.PutUint64(mem[offVersion:], Version)
	binary.LittleEndian.PutUint64(mem[offBuffers:], uint64(l.buffers))
	binary.LittleEndian.PutUint64(mem[offChannels:], uint64(l.channels))
	binary.LittleEndian.PutUint64(mem[offMaxFrames:], uint64(l.maxFrames))
	// magic last, a reader never accepts a half written header
	binary.LittleEndian.PutUint64(mem[offMagic:], Magic)
}

// word returns the 8-byte aligned word at off for atomic access.
func word(mem []byte, off int) *uint64 {
	return (*uint64)(unsafe.Pointer(&mem[off]))
}

func loadWord(mem []byte, off int) uint64 {
	return atomic.LoadUint64(word(mem, off))
}

func storeWord(mem []byte, off int, v uint64) {
	atomic.StoreUint64(word(mem, off), v)
}

// ring returns the sample area of buffer index as float32 slots.
func ring(mem []byte, l layout, index int) []float32 {
	off := l.base(index) + controlSize
	return unsafe.Slice((*float32)(unsafe.Pointer(&mem[off])), l.slots())
}
