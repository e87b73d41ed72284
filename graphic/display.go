// Package graphic draws scope panels on a terminal with termbox.
package graphic

import (
	"context"

	"github.com/noriah/catscope/scope"
	"github.com/noriah/catscope/util"

	"github.com/nsf/termbox-go"
	"github.com/pkg/errors"
)

const (
	// TraceRune draws a series with a wide pen
	TraceRune = '█'
	// DotRune draws a series or an X/Y point with a thin pen
	DotRune = '•'
	// ZeroRune draws the zero line
	ZeroRune = '─'
	// AxisRune draws the y axis
	AxisRune = '│'

	// HelpText is shown when no status func is set
	HelpText = "space pause  a axes  1-9 panels  r reconnect  q quit"
)

// Styles are the colors used to draw panels.
type Styles struct {
	Foreground termbox.Attribute
	Background termbox.Attribute
	Axis       termbox.Attribute
}

// DefaultStyles returns the default styles.
func DefaultStyles() Styles {
	return Styles{
		Foreground: termbox.ColorMagenta,
		Background: termbox.ColorDefault,
		Axis:       termbox.ColorDefault,
	}
}

// AsUInt16s returns the styles as plain numbers for flag parsing.
func (s Styles) AsUInt16s() (uint16, uint16, uint16) {
	return uint16(s.Foreground), uint16(s.Background), uint16(s.Axis)
}

// StylesFromUInt16 builds styles from plain numbers.
func StylesFromUInt16(fg, bg, axis uint16) Styles {
	return Styles{
		Foreground: termbox.Attribute(fg),
		Background: termbox.Attribute(bg),
		Axis:       termbox.Attribute(axis),
	}
}

// Display renders panels into the terminal and turns key presses into scope
// commands. Redraw and Draw must be called from the goroutine that owns the
// controller.
type Display struct {
	panels []*scope.Panel
	names  []string
	styles Styles
	status func() string

	cmds chan scope.Command

	poll      func() termbox.Event
	interrupt func()
	done      chan struct{}

	lo []float64
	hi []float64
}

// NewDisplay returns a display with default styles.
func NewDisplay() *Display {
	return &Display{
		styles:    DefaultStyles(),
		cmds:      make(chan scope.Command, 16),
		poll:      termbox.PollEvent,
		interrupt: termbox.Interrupt,
	}
}

// Init sets up termbox.
func (d *Display) Init() error {
	restore, err := normalizeTerminal()
	if err != nil {
		return errors.Wrap(err, "failed to normalize terminal")
	}
	defer restore()

	if err := termbox.Init(); err != nil {
		return errors.Wrap(err, "failed to init termbox")
	}

	termbox.SetInputMode(termbox.InputEsc)
	termbox.HideCursor()

	return nil
}

// SetPanels sets the panels laid out on every draw, in order. The display
// only reads them.
func (d *Display) SetPanels(panels []*scope.Panel) {
	d.panels = panels
	d.names = make([]string, len(panels))

	for idx, p := range panels {
		d.names[idx] = p.Name()
	}
}

// SetStyles sets the drawing colors.
func (d *Display) SetStyles(s Styles) {
	d.styles = s
}

// SetStatus sets the func producing the bottom status line.
func (d *Display) SetStatus(fn func() string) {
	d.status = fn
}

// Commands delivers control requests from key presses.
func (d *Display) Commands() <-chan scope.Command {
	return d.cmds
}

// Start polls terminal events until Stop. The returned context is canceled
// when the user quits.
func (d *Display) Start(ctx context.Context) context.Context {
	dispCtx, dispCancel := context.WithCancel(ctx)
	d.done = make(chan struct{})
	go eventPoller(dispCtx, dispCancel, d)
	return dispCtx
}

// eventPoller keeps reading after a quit. termbox.Interrupt blocks until
// PollEvent takes it, so only an interrupt or an error may end the loop.
func eventPoller(ctx context.Context, cancel context.CancelFunc, d *Display) {
	defer close(d.done)
	defer cancel()

	for {
		ev := d.poll()

		switch ev.Type {
		case termbox.EventInterrupt, termbox.EventError:
			return
		}

		cmd, act := keyCommand(ev, d.names)

		switch act {
		case actQuit:
			cancel()

		case actCommand:
			select {
			case d.cmds <- cmd:
			case <-ctx.Done():
			}
		}
	}
}

// Stop ends the event poller and waits for it.
func (d *Display) Stop() {
	if d.done == nil {
		return
	}

	select {
	case <-d.done:
		return
	default:
	}

	d.interrupt()
	<-d.done
}

// Close restores the terminal.
func (d *Display) Close() error {
	termbox.Close()
	return nil
}

// Visible reports whether there is any room to draw.
func (d *Display) Visible() bool {
	w, h := termbox.Size()
	return w > 0 && h > 1
}

// Redraw implements scope.Output. The whole screen is redrawn because panel
// layout depends on every enabled panel.
func (d *Display) Redraw([]*scope.Panel) {
	d.Draw()
}

// Draw renders all enabled panels and the status line.
func (d *Display) Draw() {
	width, height := termbox.Size()

	termbox.Clear(d.styles.Axis, d.styles.Background)

	var enabled []*scope.Panel
	for _, p := range d.panels {
		if p.Enabled() {
			enabled = append(enabled, p)
		}
	}

	for idx, r := range stack(width, height-1, len(enabled)) {
		d.drawPanel(enabled[idx], r)
		enabled[idx].ClearDirty()
	}

	status := HelpText
	if d.status != nil {
		status = d.status()
	}

	d.print(0, height-1, status, d.styles.Axis)

	termbox.Flush()
}

func (d *Display) drawPanel(p *scope.Panel, r region) {
	showX, showY := p.Axes()
	title := p.Title()

	f := panelFrame(r, title != "", showX, showY)
	if f.plot.w < 1 || f.plot.h < 1 {
		return
	}

	xr, yr := p.XRange(), p.YRange()

	if f.title >= 0 {
		d.print(r.x+f.gutter, f.title, title, d.styles.Axis|termbox.AttrBold)
	}

	if f.gutter > 0 {
		d.print(r.x, f.plot.y, formatLabel(yr.Max), d.styles.Axis)
		d.print(r.x, f.plot.y+f.plot.h-1, formatLabel(yr.Min), d.styles.Axis)

		for row := f.plot.y; row < f.plot.y+f.plot.h; row++ {
			termbox.SetCell(f.plot.x-1, row, AxisRune, d.styles.Axis, d.styles.Background)
		}
	}

	if f.xAxis >= 0 {
		d.print(f.plot.x, f.xAxis, formatLabel(xr.Min), d.styles.Axis)

		maxLabel := formatLabel(xr.Max)
		d.print(f.plot.x+f.plot.w-len(maxLabel), f.xAxis, maxLabel, d.styles.Axis)
	}

	if yr.Min < 0 && yr.Max > 0 {
		row := f.plot.y + f.plot.h - 1 - util.Scale(0, yr.Min, yr.Max, f.plot.h)
		for col := f.plot.x; col < f.plot.x+f.plot.w; col++ {
			termbox.SetCell(col, row, ZeroRune, d.styles.Axis, d.styles.Background)
		}
	}

	pen := DotRune
	if p.PenWidth() > 1 {
		pen = TraceRune
	}

	x, y := p.Points()

	if p.XY() {
		d.drawXY(f.plot, x, y, xr, yr, pen)
		return
	}

	d.drawSeries(f.plot, y, yr, pen)
}

func (d *Display) drawSeries(r region, y []float64, yr scope.Range, pen rune) {
	if len(d.lo) < r.w {
		d.lo = make([]float64, r.w)
		d.hi = make([]float64, r.w)
	}

	util.Envelope(y, r.w, d.lo, d.hi)

	bottom := r.y + r.h - 1

	for col := 0; col < r.w && len(y) > 0; col++ {
		top := bottom - util.Scale(d.hi[col], yr.Min, yr.Max, r.h)
		low := bottom - util.Scale(d.lo[col], yr.Min, yr.Max, r.h)

		for row := top; row <= low; row++ {
			termbox.SetCell(r.x+col, row, pen, d.styles.Foreground, d.styles.Background)
		}
	}
}

func (d *Display) drawXY(r region, x, y []float64, xr, yr scope.Range, pen rune) {
	bottom := r.y + r.h - 1

	for i := range x {
		if i >= len(y) {
			break
		}

		col := r.x + util.Scale(x[i], xr.Min, xr.Max, r.w)
		row := bottom - util.Scale(y[i], yr.Min, yr.Max, r.h)

		termbox.SetCell(col, row, pen, d.styles.Foreground, d.styles.Background)
	}
}

func (d *Display) print(x, y int, s string, fg termbox.Attribute) {
	for _, ch := range s {
		termbox.SetCell(x, y, ch, fg, d.styles.Background)
		x++
	}
}
