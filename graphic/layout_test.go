package graphic

import (
	"testing"

	"github.com/noriah/catscope/scope"

	"github.com/nsf/termbox-go"
)

func TestStack(t *testing.T) {
	regions := stack(80, 10, 3)

	if len(regions) != 3 {
		t.Fatalf("expected 3 regions, got %d", len(regions))
	}

	wantHeights := []int{4, 3, 3}
	row := 0

	for idx, r := range regions {
		if r.h != wantHeights[idx] || r.y != row || r.w != 80 {
			t.Errorf("region %d = %+v", idx, r)
		}
		row += r.h
	}

	if stack(80, 10, 0) != nil || stack(80, 0, 2) != nil {
		t.Error("expected no regions without panels or rows")
	}
}

func TestPanelFrame(t *testing.T) {
	r := region{x: 0, y: 5, w: 40, h: 10}

	f := panelFrame(r, true, true, true)

	if f.title != 5 {
		t.Errorf("title row = %d, want 5", f.title)
	}

	if f.plot.y != 6 || f.plot.h != 8 {
		t.Errorf("plot rows = [%d, +%d)", f.plot.y, f.plot.h)
	}

	if f.xAxis != 14 {
		t.Errorf("x axis row = %d, want 14", f.xAxis)
	}

	if f.gutter != labelWidth || f.plot.x != labelWidth || f.plot.w != 40-labelWidth {
		t.Errorf("unexpected gutter %d plot %+v", f.gutter, f.plot)
	}

	bare := panelFrame(r, false, false, false)
	if bare.plot != r || bare.title != -1 || bare.xAxis != -1 || bare.gutter != 0 {
		t.Errorf("expected bare frame to use the whole region, got %+v", bare)
	}

	tiny := panelFrame(region{w: 8, h: 2}, true, true, true)
	if tiny.plot.h != 2 || tiny.gutter != 0 {
		t.Errorf("expected tiny region kept for plotting, got %+v", tiny)
	}
}

func TestFormatLabel(t *testing.T) {
	for v, want := range map[float64]string{
		-1:   "-1",
		1:    "1",
		4096: "4096",
		0.5:  "0.5",
	} {
		if got := formatLabel(v); got != want {
			t.Errorf("formatLabel(%v) = %q, want %q", v, got, want)
		}
	}

	if got := formatLabel(-123456); len(got) > labelWidth-1 {
		t.Errorf("label %q wider than gutter", got)
	}
}

func TestKeyCommand(t *testing.T) {
	names := []string{scope.PanelLissajous, scope.PanelLeft, scope.PanelRight}

	tests := []struct {
		name string
		ev   termbox.Event
		cmd  scope.Command
		act  action
	}{
		{"space pauses", termbox.Event{Type: termbox.EventKey, Key: termbox.KeySpace},
			scope.Command{Kind: scope.CommandTogglePause}, actCommand},
		{"p pauses", termbox.Event{Type: termbox.EventKey, Ch: 'p'},
			scope.Command{Kind: scope.CommandTogglePause}, actCommand},
		{"a toggles axes", termbox.Event{Type: termbox.EventKey, Ch: 'a'},
			scope.Command{Kind: scope.CommandToggleAxes}, actCommand},
		{"r resets", termbox.Event{Type: termbox.EventKey, Ch: 'r'},
			scope.Command{Kind: scope.CommandReset}, actCommand},
		{"2 toggles Left", termbox.Event{Type: termbox.EventKey, Ch: '2'},
			scope.Command{Kind: scope.CommandTogglePanel, Panel: scope.PanelLeft}, actCommand},
		{"9 has no panel", termbox.Event{Type: termbox.EventKey, Ch: '9'},
			scope.Command{}, actNone},
		{"q quits", termbox.Event{Type: termbox.EventKey, Ch: 'q'},
			scope.Command{}, actQuit},
		{"ctrl-c quits", termbox.Event{Type: termbox.EventKey, Key: termbox.KeyCtrlC},
			scope.Command{}, actQuit},
		{"resize is ignored", termbox.Event{Type: termbox.EventResize, Width: 10, Height: 10},
			scope.Command{}, actNone},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cmd, act := keyCommand(tc.ev, names)

			if act != tc.act {
				t.Fatalf("action = %v, want %v", act, tc.act)
			}

			if act == actCommand && (cmd.Kind != tc.cmd.Kind || cmd.Panel != tc.cmd.Panel) {
				t.Fatalf("command = %+v, want %+v", cmd, tc.cmd)
			}
		})
	}
}

func TestStylesRoundTrip(t *testing.T) {
	s := DefaultStyles()

	if got := StylesFromUInt16(s.AsUInt16s()); got != s {
		t.Fatalf("got %+v, want %+v", got, s)
	}
}
