// Package input provides the producer side of catscope: audio backends that
// capture or synthesize frames and write them into a shared segment.
package input

import (
	"context"
	"time"
)

// Device is a source a backend can read from.
type Device interface {
	String() string
}

// FrameWriter takes interleaved frames. shm.Writer implements it.
type FrameWriter interface {
	// Write stores whole frames and returns how many were stored.
	Write(interleaved []float32) int
}

// SessionConfig is the configuration of one producer session.
type SessionConfig struct {
	Device       Device  // device to read from
	ChannelCount int     // samples per frame
	SampleRate   float64 // frames per second
	ChunkSize    int     // frames per write
}

// ChunkDuration returns the real time covered by one chunk.
func (cfg SessionConfig) ChunkDuration() time.Duration {
	if cfg.SampleRate <= 0 {
		return 0
	}

	return time.Duration(float64(time.Second) * float64(cfg.ChunkSize) / cfg.SampleRate)
}

// MakeChunk returns a buffer for one interleaved chunk.
func (cfg SessionConfig) MakeChunk() []float32 {
	return make([]float32, cfg.ChunkSize*cfg.ChannelCount)
}

// Session produces frames until the source ends or ctx is canceled.
type Session interface {
	Start(ctx context.Context, dst FrameWriter) error
}
