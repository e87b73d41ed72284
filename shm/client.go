package shm

import (
	"os"

	"golang.org/x/sys/unix"
)

// Client is a read-only view of a segment. A Client that failed to connect is
// still usable; it simply reports itself invalid and hands out invalid
// readers.
type Client struct {
	mem   []byte
	l     layout
	valid bool
}

// Connect maps the segment at path. It never returns an error: a missing
// producer, a short file or a foreign header leave the client invalid.
func Connect(path string) *Client {
	c := &Client{}

	f, err := os.Open(path)
	if err != nil {
		return c
	}
	// the mapping outlives the descriptor
	defer f.Close()

	fi, err := f.Stat()
	if err != nil || fi.Size() < headerSize {
		return c
	}

	mem, err := unix.Mmap(int(f.Fd()), 0, int(fi.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return c
	}

	l, ok := readLayout(mem)
	if !ok {
		unix.Munmap(mem)
		return c
	}

	c.mem = mem
	c.l = l
	c.valid = true

	return c
}

// Valid reports whether the segment is mapped.
func (c *Client) Valid() bool {
	return c != nil && c.valid
}

// Channels returns the number of channels per buffer.
func (c *Client) Channels() int {
	return c.l.channels
}

// Close unmaps the segment. Readers bound to the client become invalid.
func (c *Client) Close() error {
	if c == nil || !c.valid {
		return nil
	}

	c.valid = false
	mem := c.mem
	c.mem = nil

	return unix.Munmap(mem)
}

// ReaderFor binds a reader to one logical buffer. An invalid client or an out
// of range index gives an invalid reader, never nil.
func (c *Client) ReaderFor(index int) *Reader {
	r := &Reader{client: c, index: index}

	if !c.Valid() || index < 0 || index >= c.l.buffers {
		return r
	}

	r.bound = true
	r.data = make([]float32, c.l.slots())

	return r
}

// Reader pulls newly written frames out of one buffer of a segment.
type Reader struct {
	client *Client
	index  int
	bound  bool

	cursor uint64
	primed bool

	// channel-major copy of the last pull
	data []float32
}

// Valid reports whether the buffer is bound and its producer is live.
func (r *Reader) Valid() bool {
	if !r.bound || !r.client.Valid() {
		return false
	}

	c := r.client
	return loadWord(c.mem, c.l.base(r.index)+offState) == StateLive
}

// MaxFrames returns the per-channel slot count. Channel ch of Data starts at
// MaxFrames()*ch.
func (r *Reader) MaxFrames() int {
	if !r.bound {
		return 0
	}

	return r.client.l.maxFrames
}

// Data returns the frames copied by the last successful Pull, channel-major.
// It is only meaningful right after that Pull.
func (r *Reader) Data() []float32 {
	return r.data
}

// Pull copies the frames written since the previous pull. It returns false
// when the buffer is no longer live. A live buffer with nothing new returns
// (0, true). The first pull only records the current write position.
func (r *Reader) Pull() (int, bool) {
	if !r.Valid() {
		return 0, false
	}

	c := r.client
	written := loadWord(c.mem, c.l.base(r.index)+offWritten)

	if !r.primed || written < r.cursor {
		r.cursor = written
		r.primed = true
		return 0, true
	}

	maxFrames := uint64(c.l.maxFrames)

	n := written - r.cursor
	if n == 0 {
		return 0, true
	}

	if n > maxFrames {
		r.cursor = written - maxFrames
		n = maxFrames
	}

	src := ring(c.mem, c.l, r.index)

	for ch := 0; ch < c.l.channels; ch++ {
		off := ch * c.l.maxFrames
		dst := r.data[off : off+int(n)]
		slot := src[off : off+c.l.maxFrames]

		for i := range dst {
			dst[i] = slot[(r.cursor+uint64(i))%maxFrames]
		}
	}

	r.cursor = written

	return int(n), true
}
