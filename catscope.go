// Package catscope runs a live audio scope. A producer publishes frames into
// a shared memory segment; Run pulls them on a steady tick, keeps a sliding
// window per channel, and hands the panels to an output.
package catscope

import (
	"context"
	"time"

	"github.com/noriah/catscope/scope"

	"github.com/pkg/errors"
)

// DefaultTickInterval is the time between pulls.
const DefaultTickInterval = 20 * time.Millisecond

// Run builds a controller and ticks it until ctx is canceled. Commands are
// applied between ticks, and the output is redrawn after each so the change
// shows even while paused.
func Run(cfg *Config, ctx context.Context) error {
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid config")
	}

	dialer := cfg.Dialer
	if dialer == nil {
		dialer = NewDialer(cfg.Dir)
	}

	ctrl, err := scope.New(cfg.scopeConfig(), dialer, cfg.Output)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	if cfg.SetupFunc != nil {
		if err := cfg.SetupFunc(ctrl); err != nil {
			return errors.Wrap(err, "failed to setup")
		}
	}

	if cfg.CleanupFunc != nil {
		defer cfg.CleanupFunc()
	}

	if cfg.StartFunc != nil {
		if ctx, err = cfg.StartFunc(ctx); err != nil {
			return errors.Wrap(err, "failed to start")
		}
	}

	ticks := cfg.Ticks
	if ticks == nil {
		ticker := time.NewTicker(cfg.TickInterval)
		defer ticker.Stop()
		ticks = ticker.C
	}

	commands := cfg.Commands

	for {
		select {
		case <-ctx.Done():
			return nil

		case cmd, ok := <-commands:
			if !ok {
				commands = nil
				continue
			}

			ctrl.Apply(cmd)

			if cfg.Output != nil {
				cfg.Output.Redraw(ctrl.Panels())
			}

		case _, ok := <-ticks:
			if !ok {
				return nil
			}

			if cfg.Visible != nil && !cfg.Visible() {
				continue
			}

			ctrl.Tick()
		}
	}
}
