package main

import (
	"errors"

	"github.com/noriah/catscope/graphic"
	"github.com/noriah/catscope/scope"
	"github.com/noriah/catscope/shm"
)

// Config is a temporary struct to define parameters
type config struct {
	// dir holds the producer segments
	dir string
	// endpoint is the producer to attach to
	endpoint int
	// buffer is the logical buffer within the segment
	buffer int
	// channelCount is the number of channels we want to look at
	channelCount int
	// windowSize is how many samples each series panel shows
	windowSize int
	// tailSize is how many samples the X/Y panel traces
	tailSize int
	// tickMs is the time between pulls in milliseconds
	tickMs int
	// staleThreshold is the empty pull streak that forces a reconnect
	staleThreshold int
	// logPath receives connection logs. The terminal is busy drawing
	logPath string
	// hideAxes starts with axes hidden
	hideAxes bool
	// styles is the configuration for colors
	styles graphic.Styles
}

func newZeroConfig() config {
	return config{
		dir:            shm.DefaultDir(),
		endpoint:       shm.DefaultEndpoint,
		buffer:         0,
		channelCount:   2,
		windowSize:     scope.DefaultWindowSize,
		tailSize:       scope.DefaultTailSize,
		tickMs:         20,
		staleThreshold: scope.DefaultStaleThreshold,
		styles:         graphic.DefaultStyles(),
	}
}

func (cfg *config) validate() error {
	if cfg.tickMs < 1 {
		return errors.New("tick interval too small (1ms min)")
	}

	if cfg.tailSize > cfg.windowSize {
		cfg.tailSize = cfg.windowSize
	}

	return nil
}
