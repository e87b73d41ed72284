package main

import (
	"context"
	"testing"
	"time"

	"github.com/noriah/catscope/shm"
)

func TestValidate(t *testing.T) {
	cfg := newZeroConfig()
	cfg.backend = "tone"

	if err := cfg.validate(); err != nil {
		t.Fatalf("zero config invalid: %v", err)
	}

	cfg.ringFrames = cfg.chunkSize - 1
	if err := cfg.validate(); err == nil {
		t.Fatal("expected ring smaller than chunk to fail")
	}
}

func TestFeedTone(t *testing.T) {
	cfg := newZeroConfig()
	cfg.backend = "tone"
	cfg.dir = t.TempDir()
	cfg.endpoint = 5
	cfg.sampleRate = 8000
	cfg.chunkSize = 80

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- feed(ctx, &cfg) }()

	path := shm.Path(cfg.dir, cfg.endpoint)

	var c *shm.Client
	for i := 0; i < 100; i++ {
		if c = shm.Connect(path); c.Valid() {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	if !c.Valid() {
		cancel()
		t.Fatal("segment never appeared")
	}
	defer c.Close()

	r := c.ReaderFor(0)
	r.Pull()

	var got int
	for i := 0; i < 100 && got == 0; i++ {
		time.Sleep(10 * time.Millisecond)
		got, _ = r.Pull()
	}

	cancel()

	if err := <-done; err != nil {
		t.Fatalf("feed failed: %v", err)
	}

	if got == 0 {
		t.Fatal("no frames published")
	}

	if r.Valid() {
		t.Fatal("expected buffer closed after feed stops")
	}
}
