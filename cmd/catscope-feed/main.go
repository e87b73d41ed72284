// Command catscope-feed captures audio from an input backend and publishes it
// into a shared memory segment for catscope to read.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/noriah/catscope/input"
	"github.com/noriah/catscope/shm"

	_ "github.com/noriah/catscope/input/all"

	"github.com/integrii/flaggy"
	"github.com/pkg/errors"
)

// AppName is the app name
const AppName = "catscope-feed"

// AppDesc is the app description
const AppDesc = "Audio producer for catscope"

var version = "unknown"

type config struct {
	// backend is the backend name from list-backends
	backend string
	// device is the device name from list-devices
	device string
	// sampleRate is the rate at which samples are read
	sampleRate float64
	// chunkSize is the number of frames per write
	chunkSize int
	// channelCount is the number of channels to publish
	channelCount int
	// dir holds the segment
	dir string
	// endpoint names the segment
	endpoint int
	// ringFrames is the per-channel capacity of the segment
	ringFrames int
}

func newZeroConfig() config {
	return config{
		backend:      input.DefaultBackend(),
		sampleRate:   44100,
		chunkSize:    512,
		channelCount: 2,
		dir:          shm.DefaultDir(),
		endpoint:     shm.DefaultEndpoint,
		ringFrames:   16384,
	}
}

func (cfg *config) validate() error {
	switch {
	case cfg.backend == "":
		return errors.New("no backend available")

	case cfg.channelCount < 1 || cfg.channelCount > 8:
		return errors.New("channel count out of range [1, 8]")

	case cfg.chunkSize < 1:
		return errors.New("chunk size too small (1 min)")

	case cfg.ringFrames < cfg.chunkSize:
		return errors.New("ring smaller than a chunk")

	case cfg.sampleRate < float64(cfg.chunkSize):
		return errors.New("sample rate lower than chunk size")
	}

	return nil
}

func main() {
	log.SetFlags(0)

	cfg := newZeroConfig()

	if doFlags(&cfg) {
		return
	}

	chk(cfg.validate(), "invalid config")

	// Root Context
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	chk(feed(ctx, &cfg), "failed to run "+AppName)
}

func feed(ctx context.Context, cfg *config) error {
	backend, err := input.InitBackend(cfg.backend)
	if err != nil {
		return err
	}
	defer backend.Close()

	device, err := input.GetDevice(backend, cfg.device)
	if err != nil {
		return err
	}

	session, err := backend.Start(input.SessionConfig{
		Device:       device,
		ChannelCount: cfg.channelCount,
		SampleRate:   cfg.sampleRate,
		ChunkSize:    cfg.chunkSize,
	})
	if err != nil {
		return errors.Wrap(err, "failed to start input session")
	}

	seg, err := shm.Create(shm.Path(cfg.dir, cfg.endpoint), 1, cfg.channelCount, cfg.ringFrames)
	if err != nil {
		return err
	}
	defer seg.Close()

	w, err := seg.Writer(0)
	if err != nil {
		return err
	}
	defer w.Close()

	log.Printf("publishing %s %q on %s", cfg.backend, device, seg.Path())

	if err := session.Start(ctx, w); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

func doFlags(cfg *config) bool {

	parser := flaggy.NewParser(AppName)
	parser.Description = AppDesc
	parser.Version = version

	listBackendsCmd := flaggy.Subcommand{
		Name:                 "list-backends",
		ShortName:            "lb",
		Description:          "list all supported backends",
		AdditionalHelpAppend: "\nuse the full name after the '-'",
	}

	parser.AttachSubcommand(&listBackendsCmd, 1)

	listDevicesCmd := flaggy.Subcommand{
		Name:                 "list-devices",
		ShortName:            "ld",
		Description:          "list all devices for a backend",
		AdditionalHelpAppend: "\nuse the full name after the '-'",
	}

	parser.AttachSubcommand(&listDevicesCmd, 1)

	parser.String(&cfg.backend, "b", "backend", "backend name")
	parser.String(&cfg.device, "d", "device", "device name (a path for the file backend)")
	parser.Float64(&cfg.sampleRate, "r", "rate", "sample rate")
	parser.Int(&cfg.chunkSize, "n", "chunk", "frames per write")
	parser.Int(&cfg.channelCount, "ch", "channels", "channel count")
	parser.String(&cfg.dir, "D", "dir", "directory to publish the segment in")
	parser.Int(&cfg.endpoint, "e", "endpoint", "endpoint to publish on")
	parser.Int(&cfg.ringFrames, "f", "frames", "ring capacity in frames per channel")

	chk(parser.Parse(), "failed to parse arguments")

	switch {
	case listBackendsCmd.Used:
		for _, backend := range input.Backends {
			fmt.Printf("- %s\n", backend.Name)
		}

		return true

	case listDevicesCmd.Used:
		backend, err := input.InitBackend(cfg.backend)
		chk(err, "failed to init backend")

		devices, err := backend.Devices()
		chk(err, "failed to get devices")

		// We don't really need the default device to be indicated.
		defaultDevice, _ := backend.DefaultDevice()

		fmt.Printf("all devices for %q backend. '*' marks default\n", cfg.backend)

		for idx := range devices {
			star := ' '
			if defaultDevice != nil && devices[idx].String() == defaultDevice.String() {
				star = '*'
			}

			fmt.Printf("- %v %c\n", devices[idx], star)
		}

		return true
	}

	return false
}

func chk(err error, wrap string) {
	if err != nil {
		log.Fatalln(wrap+": ", err)
	}
}
