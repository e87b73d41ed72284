package scope

import (
	"github.com/pkg/errors"
)

// Panel names of the default layout.
const (
	PanelLissajous = "Lissajous"
	PanelLeft      = "Left"
	PanelRight     = "Right"
)

// Range is a closed axis interval.
type Range struct {
	Min float64
	Max float64
}

// PanelConfig declares a panel. A panel with one channel is a time series of
// that channel; a panel with two channels plots the first against the second.
type PanelConfig struct {
	Name     string
	Channels []int
	// Offset and Length select the region of each channel window
	Offset int
	Length int

	XRange Range
	YRange Range

	// ShowX and ShowY are the axes shown while axes are globally visible
	ShowX bool
	ShowY bool

	PenWidth int
}

// DefaultPanels returns the stock layout for a window of size samples: an X/Y
// phase view over the newest tail samples of channels 0 and 1, followed by a
// full-window series per channel. With one channel only the series is built.
func DefaultPanels(channels, size, tail int) []PanelConfig {
	if tail > size {
		tail = size
	}

	unit := Range{Min: -1, Max: 1}
	series := Range{Min: 0, Max: float64(size)}

	if channels < 2 {
		return []PanelConfig{{
			Name:     PanelLeft,
			Channels: []int{0},
			Length:   size,
			XRange:   series,
			YRange:   unit,
			ShowY:    true,
			PenWidth: 2,
		}}
	}

	return []PanelConfig{
		{
			Name:     PanelLissajous,
			Channels: []int{0, 1},
			Offset:   size - tail,
			Length:   tail,
			XRange:   unit,
			YRange:   unit,
			ShowX:    true,
			ShowY:    true,
			PenWidth: 1,
		},
		{
			Name:     PanelLeft,
			Channels: []int{0},
			Length:   size,
			XRange:   series,
			YRange:   unit,
			ShowY:    true,
			PenWidth: 2,
		},
		{
			Name:     PanelRight,
			Channels: []int{1},
			Length:   size,
			XRange:   series,
			YRange:   unit,
			ShowY:    true,
			PenWidth: 2,
		},
	}
}

func (pc PanelConfig) validate(channels, size int) error {
	if pc.Name == "" {
		return errors.New("panel has no name")
	}

	if n := len(pc.Channels); n < 1 || n > 2 {
		return errors.Errorf("panel %q: needs 1 or 2 channels, got %d", pc.Name, n)
	}

	for _, ch := range pc.Channels {
		if ch < 0 || ch >= channels {
			return errors.Errorf("panel %q: channel %d out of range [0, %d)", pc.Name, ch, channels)
		}
	}

	if pc.Offset < 0 || pc.Length < 1 || pc.Offset+pc.Length > size {
		return errors.Errorf("panel %q: region [%d, %d) outside window of %d",
			pc.Name, pc.Offset, pc.Offset+pc.Length, size)
	}

	return nil
}

// Panel is a named, read-only view into one or two channel windows. It never
// copies sample data.
type Panel struct {
	cfg     PanelConfig
	windows []*Window

	enabled     bool
	axesVisible bool
	dirty       bool
}

func newPanel(cfg PanelConfig, windows []*Window) *Panel {
	p := &Panel{
		cfg:         cfg,
		windows:     make([]*Window, len(cfg.Channels)),
		enabled:     true,
		axesVisible: true,
	}

	for idx, ch := range cfg.Channels {
		p.windows[idx] = windows[ch]
	}

	return p
}

// Name returns the unique panel name.
func (p *Panel) Name() string { return p.cfg.Name }

// Channels returns the referenced channel indices.
func (p *Panel) Channels() []int { return p.cfg.Channels }

// Offset returns the first window position shown.
func (p *Panel) Offset() int { return p.cfg.Offset }

// Length returns the number of window positions shown.
func (p *Panel) Length() int { return p.cfg.Length }

// XRange returns the x axis range.
func (p *Panel) XRange() Range { return p.cfg.XRange }

// YRange returns the y axis range.
func (p *Panel) YRange() Range { return p.cfg.YRange }

// PenWidth returns the trace weight.
func (p *Panel) PenWidth() int { return p.cfg.PenWidth }

// Enabled reports whether the panel should be displayed.
func (p *Panel) Enabled() bool { return p.enabled }

// XY reports whether the panel plots one channel against another.
func (p *Panel) XY() bool { return len(p.windows) == 2 }

// Axes reports which axes are shown: an axis is shown when axes are visible
// and the panel declares it.
func (p *Panel) Axes() (x, y bool) {
	return p.axesVisible && p.cfg.ShowX, p.axesVisible && p.cfg.ShowY
}

// Title returns the display title, empty while axes are hidden.
func (p *Panel) Title() string {
	if !p.axesVisible {
		return ""
	}

	return p.cfg.Name
}

// Dirty reports whether new data arrived since the renderer last drew.
func (p *Panel) Dirty() bool { return p.dirty }

// ClearDirty is called by the renderer after drawing.
func (p *Panel) ClearDirty() { p.dirty = false }

// Samples returns the panel region of its idx-th channel: the y series for a
// single-channel panel, x (idx 0) and y (idx 1) for an XY panel. The slice
// aliases the window and is only valid until the next Tick.
func (p *Panel) Samples(idx int) []float64 {
	if idx < 0 || idx >= len(p.windows) {
		return nil
	}

	return p.windows[idx].Slice(p.cfg.Offset, p.cfg.Length)
}

// Points returns the x and y series to plot. For a single-channel panel x is
// nil and the sample index within the window (Offset + i) is implied.
func (p *Panel) Points() (x, y []float64) {
	if p.XY() {
		return p.Samples(0), p.Samples(1)
	}

	return nil, p.Samples(0)
}
