// Package scope holds the acquisition core of the scope: per-channel sample
// windows, the panel view model, and the controller that pulls frames from
// the producer on every tick and recovers lost or stale connections.
package scope

import (
	"io"
	"log"

	"github.com/pkg/errors"
)

const (
	// DefaultWindowSize is the per-channel history length.
	DefaultWindowSize = 4096
	// DefaultTailSize is the number of newest samples in the XY panel.
	DefaultTailSize = 1024
	// DefaultStaleThreshold is how many empty pulls in a row are tolerated
	// before the connection is recreated.
	DefaultStaleThreshold = 10
	// MaxChannelCount is the most channels a controller tracks.
	MaxChannelCount = 8
)

// Config configures a Controller.
type Config struct {
	// Endpoint identifies the producer segment.
	Endpoint int
	// BufferIndex is the logical buffer within the segment.
	BufferIndex int
	// ChannelCount is the number of channel windows.
	ChannelCount int
	// WindowSize is the number of samples kept per channel.
	WindowSize int
	// StaleThreshold is the number of consecutive empty pulls tolerated.
	StaleThreshold int
	// Panels to build. Nil means DefaultPanels.
	Panels []PanelConfig
	// Logger receives connection state changes. Nil discards.
	Logger *log.Logger
}

// Validate checks the configuration and its panels.
func (cfg *Config) Validate() error {
	switch {
	case cfg.ChannelCount < 1:
		return errors.New("too few channels (1 min)")

	case cfg.ChannelCount > MaxChannelCount:
		return errors.Errorf("too many channels (%d max)", MaxChannelCount)

	case cfg.WindowSize < 1:
		return errors.New("window size too small (1 min)")

	case cfg.StaleThreshold < 0:
		return errors.New("stale threshold cannot be negative")

	case cfg.BufferIndex < 0:
		return errors.New("buffer index cannot be negative")
	}

	seen := make(map[string]bool, len(cfg.Panels))

	for _, pc := range cfg.Panels {
		if err := pc.validate(cfg.ChannelCount, cfg.WindowSize); err != nil {
			return err
		}

		if seen[pc.Name] {
			return errors.Errorf("duplicate panel name %q", pc.Name)
		}

		seen[pc.Name] = true
	}

	return nil
}

// Stats are running counters of a Controller.
type Stats struct {
	Ticks       uint64 // ticks that were not skipped by pause
	Pulls       uint64 // pull calls made
	Frames      uint64 // frames ingested per channel
	Connects    uint64 // connection attempts
	Disconnects uint64 // connections dropped, for any reason
	StaleResets uint64 // connections dropped for staleness
	EmptyStreak int    // current consecutive empty pulls
}

// Controller owns the connection, the channel windows and the panels. It is
// not safe for concurrent use: Tick and every control call must come from the
// same goroutine.
type Controller struct {
	endpoint       int
	bufferIndex    int
	staleThreshold int

	dialer Dialer
	out    Output
	log    *log.Logger

	conn   Conn
	reader Reader
	// channels shared by the producer and the windows
	channels int

	windows []*Window
	panels  []*Panel

	paused      bool
	axesVisible bool
	empty       int

	stats Stats
}

// New builds a controller. The connection is opened lazily by the first Tick.
func New(cfg Config, dialer Dialer, out Output) (*Controller, error) {
	if dialer == nil {
		return nil, errors.New("no dialer given")
	}

	if cfg.Panels == nil {
		cfg.Panels = DefaultPanels(cfg.ChannelCount, cfg.WindowSize, DefaultTailSize)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid scope config")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	c := &Controller{
		endpoint:       cfg.Endpoint,
		bufferIndex:    cfg.BufferIndex,
		staleThreshold: cfg.StaleThreshold,
		dialer:         dialer,
		out:            out,
		log:            logger,
		windows:        make([]*Window, cfg.ChannelCount),
		panels:         make([]*Panel, len(cfg.Panels)),
		axesVisible:    true,
	}

	for idx := range c.windows {
		c.windows[idx] = NewWindow(cfg.WindowSize)
	}

	for idx, pc := range cfg.Panels {
		c.panels[idx] = newPanel(pc, c.windows)
	}

	return c, nil
}

// Tick runs one acquisition cycle. It never blocks and never fails: transport
// problems move the controller to the disconnected state, and a later tick
// tries again.
func (c *Controller) Tick() {
	if c.paused {
		return
	}

	c.stats.Ticks++

	if c.reader != nil && !c.reader.Valid() {
		c.disconnect("reader became invalid")
	}

	if c.reader == nil && !c.connect() {
		return
	}

	frames, ok := c.reader.Pull()
	c.stats.Pulls++

	if !ok {
		c.disconnect("pull failed")
		return
	}

	if frames == 0 {
		c.empty++
		c.stats.EmptyStreak = c.empty

		if c.empty > c.staleThreshold {
			c.stats.StaleResets++
			c.disconnect("stale after %d empty pulls", c.empty)
			c.empty = 0
			c.stats.EmptyStreak = 0
		}

		return
	}

	c.empty = 0
	c.stats.EmptyStreak = 0

	if !c.ingest(frames) {
		c.disconnect("short frame data")
		return
	}

	for _, p := range c.panels {
		p.dirty = true
	}

	if c.out != nil {
		c.out.Redraw(c.panels)
	}
}

func (c *Controller) ingest(frames int) bool {
	data := c.reader.Data()
	maxFrames := c.reader.MaxFrames()

	if frames > maxFrames {
		frames = maxFrames
	}

	if len(data) < maxFrames*(c.channels-1)+frames {
		return false
	}

	for ch, w := range c.windows[:c.channels] {
		off := maxFrames * ch
		w.Ingest(data[off:off+frames], frames)
	}

	c.stats.Frames += uint64(frames)

	return true
}

func (c *Controller) connect() bool {
	c.stats.Connects++

	conn := c.dialer.Connect(c.endpoint)
	if conn == nil {
		return false
	}

	if !conn.Valid() {
		conn.Close()
		return false
	}

	reader := conn.ReaderFor(c.bufferIndex)
	if reader == nil || !reader.Valid() || conn.Channels() < 1 {
		conn.Close()
		return false
	}

	c.conn = conn
	c.reader = reader
	c.channels = len(c.windows)

	// windows the producer does not feed stay as they are
	if n := conn.Channels(); n != len(c.windows) {
		c.log.Printf("producer has %d channels, scope expects %d", n, len(c.windows))

		if n < c.channels {
			c.channels = n
		}
	}

	c.log.Printf("connected to endpoint %d buffer %d", c.endpoint, c.bufferIndex)

	return true
}

// disconnect drops the connection. The next tick builds a fresh one.
func (c *Controller) disconnect(format string, v ...interface{}) {
	if c.conn == nil {
		return
	}

	if err := c.conn.Close(); err != nil {
		c.log.Printf("close connection: %v", err)
	}

	c.conn = nil
	c.reader = nil
	c.stats.Disconnects++

	c.log.Printf("disconnected: "+format, v...)
}

// Reset drops the current connection; the next tick reconnects.
func (c *Controller) Reset() {
	c.disconnect("reset requested")
	c.empty = 0
	c.stats.EmptyStreak = 0
}

// Close drops the connection for good.
func (c *Controller) Close() error {
	if c.conn == nil {
		return nil
	}

	err := c.conn.Close()
	c.conn = nil
	c.reader = nil

	return err
}

// TogglePause flips between active and paused. While paused, Tick does
// nothing and the windows stay frozen. The connection is kept.
func (c *Controller) TogglePause() bool {
	c.paused = !c.paused
	return c.paused
}

// Paused reports whether acquisition is paused.
func (c *Controller) Paused() bool {
	return c.paused
}

// Connected reports whether a live connection is held.
func (c *Controller) Connected() bool {
	return c.reader != nil
}

// SetPanelEnabled enables or disables the named panel and returns on. A name
// that matches no panel is ignored.
func (c *Controller) SetPanelEnabled(name string, on bool) bool {
	if p := c.Panel(name); p != nil {
		p.enabled = on
	}

	return on
}

// SetAxesVisible shows or hides axes and titles on every panel and returns on.
func (c *Controller) SetAxesVisible(on bool) bool {
	c.axesVisible = on

	for _, p := range c.panels {
		p.axesVisible = on
	}

	return on
}

// PanelNames returns the panel names in construction order.
func (c *Controller) PanelNames() []string {
	names := make([]string, len(c.panels))
	for idx, p := range c.panels {
		names[idx] = p.Name()
	}

	return names
}

// Panels returns the panels in construction order. The slice must not be
// modified.
func (c *Controller) Panels() []*Panel {
	return c.panels
}

// Panel returns the named panel, or nil.
func (c *Controller) Panel(name string) *Panel {
	for _, p := range c.panels {
		if p.Name() == name {
			return p
		}
	}

	return nil
}

// Window returns the history of channel ch, or nil.
func (c *Controller) Window(ch int) *Window {
	if ch < 0 || ch >= len(c.windows) {
		return nil
	}

	return c.windows[ch]
}

// EmptyPulls returns the current run of consecutive empty pulls.
func (c *Controller) EmptyPulls() int {
	return c.empty
}

// Stats returns a copy of the running counters.
func (c *Controller) Stats() Stats {
	return c.stats
}
