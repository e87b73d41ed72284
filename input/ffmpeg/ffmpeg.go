// Package ffmpeg captures through an ffmpeg child process.
package ffmpeg

import (
	"fmt"

	"github.com/noriah/catscope/input"
	"github.com/noriah/catscope/input/common/execread"
)

// FFmpegBackend is a device ffmpeg knows how to open.
type FFmpegBackend interface {
	InputArgs() []string
}

func NewSession(b FFmpegBackend, cfg input.SessionConfig) (*execread.Session, error) {
	args := []string{"ffmpeg", "-hide_banner", "-loglevel", "panic"}
	args = append(args, b.InputArgs()...)
	args = append(args,
		"-ar", fmt.Sprintf("%.0f", cfg.SampleRate),
		"-ac", fmt.Sprintf("%d", cfg.ChannelCount),
		"-f", "f32le",
		"-",
	)

	return execread.NewSession(args, true, cfg), nil
}
