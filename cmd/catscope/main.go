package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/noriah/catscope"
	"github.com/noriah/catscope/graphic"
	"github.com/noriah/catscope/scope"
	"github.com/noriah/catscope/shm"

	"github.com/integrii/flaggy"
)

// AppName is the app name
const AppName = "catscope"

// AppDesc is the app description
const AppDesc = "Continuous Audio Terminal Scope"

// AppSite is the app website
const AppSite = "https://github.com/noriah/catscope"

var version = "unknown"

func main() {
	log.SetFlags(0)

	cfg := newZeroConfig()

	if doFlags(&cfg) {
		return
	}

	chk(cfg.validate(), "invalid config")

	logger := log.New(io.Discard, "", 0)
	if cfg.logPath != "" {
		f, err := os.OpenFile(cfg.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		chk(err, "failed to open log")
		defer f.Close()

		logger = log.New(f, AppName+": ", log.LstdFlags)
	}

	display := graphic.NewDisplay()

	scopeCfg := catscope.Config{
		Dir:            cfg.dir,
		Endpoint:       cfg.endpoint,
		BufferIndex:    cfg.buffer,
		ChannelCount:   cfg.channelCount,
		WindowSize:     cfg.windowSize,
		TailSize:       cfg.tailSize,
		StaleThreshold: cfg.staleThreshold,
		TickInterval:   time.Duration(cfg.tickMs) * time.Millisecond,
		Logger:         logger,
		Output:         display,
		Commands:       display.Commands(),
		Visible:        display.Visible,
		SetupFunc: func(ctrl *scope.Controller) error {
			if err := display.Init(); err != nil {
				return err
			}

			display.SetPanels(ctrl.Panels())
			display.SetStyles(cfg.styles)
			display.SetStatus(func() string {
				return statusLine(ctrl, cfg.endpoint)
			})

			if cfg.hideAxes {
				ctrl.SetAxesVisible(false)
			}

			display.Draw()

			return nil
		},
		StartFunc: func(ctx context.Context) (context.Context, error) {
			ctx = display.Start(ctx)

			return ctx, nil
		},
		CleanupFunc: func() error {
			display.Stop()
			display.Close()
			return nil
		},
	}

	// Root Context
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	chk(catscope.Run(&scopeCfg, ctx), "failed to run catscope")
}

func statusLine(ctrl *scope.Controller, endpoint int) string {
	state := "waiting"
	if ctrl.Connected() {
		state = "live"
	}

	if ctrl.Paused() {
		state = "paused"
	}

	s := ctrl.Stats()

	return fmt.Sprintf("%s  endpoint %d  frames %d  resets %d  |  %s",
		state, endpoint, s.Frames, s.Disconnects, graphic.HelpText)
}

func doFlags(cfg *config) bool {

	parser := flaggy.NewParser(AppName)
	parser.Description = AppDesc
	parser.AdditionalHelpPrepend = AppSite
	parser.Version = version

	listEndpointsCmd := flaggy.Subcommand{
		Name:        "list-endpoints",
		ShortName:   "le",
		Description: "list producers publishing in the segment dir",
	}

	parser.AttachSubcommand(&listEndpointsCmd, 1)

	parser.String(&cfg.dir, "D", "dir", "directory holding producer segments")
	parser.Int(&cfg.endpoint, "e", "endpoint", "producer endpoint")
	parser.Int(&cfg.buffer, "B", "buffer", "buffer index within the segment")
	parser.Int(&cfg.channelCount, "ch", "channels", "channel count (1 or 2)")
	parser.Int(&cfg.windowSize, "w", "window", "samples kept per channel")
	parser.Int(&cfg.tailSize, "t", "tail", "samples traced by the X/Y panel")
	parser.Int(&cfg.tickMs, "i", "interval", "milliseconds between pulls")
	parser.Int(&cfg.staleThreshold, "s", "stale", "empty pulls tolerated before reconnecting")
	parser.String(&cfg.logPath, "l", "log", "append connection logs to this file")
	parser.Bool(&cfg.hideAxes, "na", "no-axes", "start with axes hidden")

	fg, bg, axis := graphic.DefaultStyles().AsUInt16s()
	parser.UInt16(&fg, "fg", "foreground",
		"foreground color within the 256-color range [0, 255] with attributes")
	parser.UInt16(&bg, "bg", "background",
		"background color within the 256-color range [0, 255] with attributes")
	parser.UInt16(&axis, "ax", "axis",
		"axis color within the 256-color range [0, 255] with attributes")

	chk(parser.Parse(), "failed to parse arguments")

	// Manually set the styles.
	cfg.styles = graphic.StylesFromUInt16(fg, bg, axis)

	if listEndpointsCmd.Used {
		endpoints, err := shm.Endpoints(cfg.dir)
		chk(err, "failed to list endpoints")

		fmt.Printf("all endpoints in %q. '*' marks the selected one\n", cfg.dir)

		for _, ep := range endpoints {
			star := ' '
			if ep == cfg.endpoint {
				star = '*'
			}

			fmt.Printf("- %d %c\n", ep, star)
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
