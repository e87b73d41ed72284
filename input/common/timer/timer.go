// Package timer paces producers that generate audio faster than real time.
package timer

import (
	"context"
	"io"
	"time"

	"github.com/noriah/catscope/input"
)

// Process calls produce once per chunk duration of cfg until produce fails
// or ctx is canceled. A produce returning io.EOF ends the run cleanly.
func Process(ctx context.Context, cfg input.SessionConfig, produce func() error) error {
	rate := cfg.ChunkDuration()
	if rate <= 0 {
		rate = time.Millisecond
	}

	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	for {
		if err := produce(); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
