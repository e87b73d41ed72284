package timer

import (
	"context"
	"io"
	"testing"

	"github.com/noriah/catscope/input"
	"github.com/pkg/errors"
)

func TestProcessStopsOnEOF(t *testing.T) {
	cfg := input.SessionConfig{ChunkSize: 1, SampleRate: 10000}

	calls := 0
	err := Process(context.Background(), cfg, func() error {
		calls++
		if calls == 3 {
			return io.EOF
		}
		return nil
	})

	if err != nil || calls != 3 {
		t.Fatalf("err = %v calls = %d", err, calls)
	}
}

func TestProcessReturnsErrors(t *testing.T) {
	boom := errors.New("boom")

	err := Process(context.Background(), input.SessionConfig{}, func() error {
		return boom
	})

	if err != boom {
		t.Fatalf("err = %v", err)
	}
}

func TestProcessCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := input.SessionConfig{ChunkSize: 1, SampleRate: 1}

	err := Process(ctx, cfg, func() error {
		cancel()
		return nil
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}
