package graphic

import (
	"strconv"

	"github.com/noriah/catscope/scope"

	"github.com/nsf/termbox-go"
)

// region is a rectangle of terminal cells.
type region struct {
	x, y int
	w, h int
}

// stack splits height rows, starting at row 0, between count panels. Earlier
// panels receive the remainder rows.
func stack(width, height, count int) []region {
	if count < 1 || height < 1 || width < 1 {
		return nil
	}

	regions := make([]region, count)

	base := height / count
	extra := height % count
	row := 0

	for idx := range regions {
		h := base
		if idx < extra {
			h++
		}

		regions[idx] = region{x: 0, y: row, w: width, h: h}
		row += h
	}

	return regions
}

// frame is the plot area of a panel region after title, labels and axes have
// taken their share.
type frame struct {
	plot   region
	title  int // row of the title, -1 when hidden
	xAxis  int // row of the x labels, -1 when hidden
	gutter int // columns used by y labels
}

const labelWidth = 6

func panelFrame(r region, title bool, showX, showY bool) frame {
	f := frame{plot: r, title: -1, xAxis: -1}

	if title && f.plot.h > 2 {
		f.title = f.plot.y
		f.plot.y++
		f.plot.h--
	}

	if showX && f.plot.h > 2 {
		f.plot.h--
		f.xAxis = f.plot.y + f.plot.h
	}

	if showY && f.plot.w > labelWidth*2 {
		f.gutter = labelWidth
		f.plot.x += labelWidth
		f.plot.w -= labelWidth
	}

	return f
}

func formatLabel(v float64) string {
	s := strconv.FormatFloat(v, 'g', 4, 64)
	if len(s) > labelWidth-1 {
		s = s[:labelWidth-1]
	}

	return s
}

type action int

const (
	actNone action = iota
	actCommand
	actQuit
)

// keyCommand maps a key event onto the control surface. Digits toggle panels
// by position.
func keyCommand(ev termbox.Event, names []string) (scope.Command, action) {
	if ev.Type != termbox.EventKey {
		return scope.Command{}, actNone
	}

	switch ev.Key {
	case termbox.KeyCtrlC, termbox.KeyEsc:
		return scope.Command{}, actQuit

	case termbox.KeySpace:
		return scope.Command{Kind: scope.CommandTogglePause}, actCommand
	}

	switch ev.Ch {
	case 'q', 'Q':
		return scope.Command{}, actQuit

	case 'p', 'P':
		return scope.Command{Kind: scope.CommandTogglePause}, actCommand

	case 'a', 'A':
		return scope.Command{Kind: scope.CommandToggleAxes}, actCommand

	case 'r', 'R':
		return scope.Command{Kind: scope.CommandReset}, actCommand
	}

	if ev.Ch >= '1' && ev.Ch <= '9' {
		if idx := int(ev.Ch - '1'); idx < len(names) {
			return scope.Command{Kind: scope.CommandTogglePanel, Panel: names[idx]}, actCommand
		}
	}

	return scope.Command{}, actNone
}
