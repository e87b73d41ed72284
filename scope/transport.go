package scope

// Dialer opens connections to the producer.
type Dialer interface {
	// Connect must not block. A missing producer yields an invalid Conn, not
	// an error.
	Connect(endpoint int) Conn
}

// Conn is one connection to the producer's shared segment.
type Conn interface {
	Valid() bool
	// Channels is the number of channels the producer writes per frame.
	Channels() int
	// ReaderFor binds to one logical buffer. It returns an invalid Reader
	// rather than nil on failure.
	ReaderFor(index int) Reader
	Close() error
}

// Reader pulls frames from one logical buffer.
type Reader interface {
	Valid() bool
	// Pull is non-blocking. It returns (n, true) with n >= 0 new frames while
	// the producer is live, and (0, false) once the connection is dead.
	Pull() (int, bool)
	// Data holds the frames of the last successful Pull, channel-major, with
	// channel ch starting at MaxFrames()*ch.
	Data() []float32
	MaxFrames() int
}

// Output is the rendering side. Redraw is called from Tick with the panels
// that received new data; it must not block.
type Output interface {
	Redraw(panels []*Panel)
}
