package ffmpeg

import (
	"strings"
	"testing"

	"github.com/noriah/catscope/input"
	"github.com/noriah/catscope/input/parec"
)

func TestParseALSADevice(t *testing.T) {
	tests := map[string]ALSADevice{
		"00-00": "hw:0,0",
		"00-03": "hw:0,3",
		"01-10": "hw:1,10",
		"02":    "hw:2",
	}

	for in, want := range tests {
		got, err := ParseALSADevice(in)
		if err != nil {
			t.Errorf("%q: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("%q = %q, want %q", in, got, want)
		}
	}

	if _, err := ParseALSADevice("1-2-3"); err == nil {
		t.Error("expected error for three parts")
	}
}

func TestNewSessionArgs(t *testing.T) {
	cfg := input.SessionConfig{ChannelCount: 2, SampleRate: 48000, ChunkSize: 256}

	s, err := NewSession(ALSADevice("hw:0,0"), cfg)
	if err != nil {
		t.Fatal(err)
	}

	argv := strings.Join(s.Argv(), " ")
	want := "ffmpeg -hide_banner -loglevel panic -f alsa -i hw:0,0 -ar 48000 -ac 2 -f f32le -"
	if argv != want {
		t.Fatalf("argv = %q\nwant %q", argv, want)
	}
}

func TestPulseRequiresPulseDevice(t *testing.T) {
	cfg := input.SessionConfig{Device: ALSADevice("hw:0"), ChannelCount: 2}
	if _, err := (Pulse{}).Start(cfg); err == nil {
		t.Fatal("expected alsa device to be rejected")
	}

	cfg.Device = parec.PulseDevice("default")
	if _, err := (Pulse{}).Start(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
