package catscope

import (
	"context"
	"log"
	"time"

	"github.com/noriah/catscope/scope"
	"github.com/noriah/catscope/shm"

	"github.com/pkg/errors"
)

// Config configures Run.
type Config struct {
	// Directory holding producer segments. Empty means shm.DefaultDir
	Dir string
	// The endpoint the producer publishes on
	Endpoint int
	// The logical buffer to read within the segment
	BufferIndex int
	// The number of channels to keep windows for
	ChannelCount int
	// The number of samples kept per channel
	WindowSize int
	// The number of newest samples drawn by the X/Y panel
	TailSize int
	// The number of consecutive empty pulls before reconnecting
	StaleThreshold int
	// Time between ticks
	TickInterval time.Duration

	// Where connection changes are logged. Nil discards
	Logger *log.Logger

	// How to reach the producer. Nil means shared memory in Dir
	Dialer scope.Dialer
	// Where to send panels that have new data
	Output scope.Output
	// Overrides the tick source. Nil means a ticker at TickInterval
	Ticks <-chan time.Time
	// Control requests applied between ticks
	Commands <-chan scope.Command
	// Ticks are skipped while this returns false. Nil means always visible
	Visible func() bool

	// Function to call when setting up the pipeline
	SetupFunc SetupFunc
	// Function to call when starting the pipeline
	StartFunc StartFunc
	// Function to call when cleaning up the pipeline
	CleanupFunc CleanupFunc
}

// SetupFunc receives the controller once it is built.
type SetupFunc func(ctrl *scope.Controller) error

// StartFunc may replace the context the loop runs under.
type StartFunc func(ctx context.Context) (context.Context, error)

type CleanupFunc func() error

func NewZeroConfig() Config {
	return Config{
		Dir:            shm.DefaultDir(),
		Endpoint:       shm.DefaultEndpoint,
		BufferIndex:    0,
		ChannelCount:   2,
		WindowSize:     scope.DefaultWindowSize,
		TailSize:       scope.DefaultTailSize,
		StaleThreshold: scope.DefaultStaleThreshold,
		TickInterval:   DefaultTickInterval,
	}
}

func (cfg *Config) Validate() error {
	switch {
	case cfg.Endpoint < 0:
		return errors.New("endpoint cannot be negative")

	case cfg.ChannelCount > scope.MaxChannelCount:
		return errors.Errorf("too many channels (%d max)", scope.MaxChannelCount)

	case cfg.ChannelCount < 1:
		return errors.New("too few channels (1 min)")

	case cfg.WindowSize < 1:
		return errors.New("window size too small (1 min)")

	case cfg.TailSize < 1 || cfg.TailSize > cfg.WindowSize:
		return errors.Errorf("tail size out of range [1, %d]", cfg.WindowSize)

	case cfg.StaleThreshold < 0:
		return errors.New("stale threshold cannot be negative")

	case cfg.Ticks == nil && cfg.TickInterval <= 0:
		return errors.New("tick interval must be positive")
	}

	return nil
}

func (cfg *Config) scopeConfig() scope.Config {
	return scope.Config{
		Endpoint:       cfg.Endpoint,
		BufferIndex:    cfg.BufferIndex,
		ChannelCount:   cfg.ChannelCount,
		WindowSize:     cfg.WindowSize,
		StaleThreshold: cfg.StaleThreshold,
		Panels:         scope.DefaultPanels(cfg.ChannelCount, cfg.WindowSize, cfg.TailSize),
		Logger:         cfg.Logger,
	}
}
