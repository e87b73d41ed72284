// Package tone is a capture-free backend that synthesizes test signals.
package tone

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/noriah/catscope/input"
	"github.com/noriah/catscope/input/common/timer"
	"github.com/pkg/errors"
)

// DefaultFrequency is used when a device name carries no frequency.
const DefaultFrequency = 440.0

func init() {
	input.RegisterBackend("tone", Backend{})
}

// Device is a named signal shape at a base frequency. Channels past the
// second repeat the second channel.
type Device struct {
	Shape     string
	Frequency float64
}

func (d Device) String() string {
	if d.Frequency == DefaultFrequency {
		return d.Shape
	}
	return d.Shape + "@" + strconv.FormatFloat(d.Frequency, 'f', -1, 64)
}

// Shapes lists the signals the backend can make.
//
//	sine        same sine on every channel, a diagonal line as X/Y
//	quadrature  sine left, cosine right, a circle as X/Y
//	beat        right channel one hertz above the left, a slowly turning figure
var Shapes = []string{"sine", "quadrature", "beat"}

type Backend struct{}

func (b Backend) Init() error {
	return nil
}

func (b Backend) Close() error {
	return nil
}

func (b Backend) Devices() ([]input.Device, error) {
	devices := make([]input.Device, len(Shapes))
	for i, shape := range Shapes {
		devices[i] = Device{Shape: shape, Frequency: DefaultFrequency}
	}
	return devices, nil
}

func (b Backend) DefaultDevice() (input.Device, error) {
	return Device{Shape: "quadrature", Frequency: DefaultFrequency}, nil
}

// ParseDevice parses "shape" or "shape@frequency".
func (b Backend) ParseDevice(name string) (input.Device, error) {
	shape, freq, found := strings.Cut(name, "@")

	d := Device{Shape: shape, Frequency: DefaultFrequency}

	if found {
		f, err := strconv.ParseFloat(freq, 64)
		if err != nil || f <= 0 {
			return nil, fmt.Errorf("invalid frequency %q", freq)
		}
		d.Frequency = f
	}

	for _, s := range Shapes {
		if s == shape {
			return d, nil
		}
	}

	return nil, fmt.Errorf("unknown tone %q", shape)
}

func (b Backend) Start(cfg input.SessionConfig) (input.Session, error) {
	return NewSession(cfg)
}

// Session writes one chunk of signal per chunk duration.
type Session struct {
	cfg    input.SessionConfig
	device Device
	chunk  []float32
	frame  uint64
}

func NewSession(cfg input.SessionConfig) (*Session, error) {
	dv, ok := cfg.Device.(Device)
	if !ok {
		return nil, fmt.Errorf("invalid device type %T", cfg.Device)
	}

	if cfg.ChannelCount < 1 || cfg.ChunkSize < 1 || cfg.SampleRate <= 0 {
		return nil, errors.New("invalid session geometry")
	}

	return &Session{
		cfg:    cfg,
		device: dv,
		chunk:  cfg.MakeChunk(),
	}, nil
}

func (s *Session) Start(ctx context.Context, dst input.FrameWriter) error {
	return timer.Process(ctx, s.cfg, func() error {
		dst.Write(s.fill())
		return nil
	})
}

// fill renders the next chunk.
func (s *Session) fill() []float32 {
	chans := s.cfg.ChannelCount
	step := 2 * math.Pi / s.cfg.SampleRate

	for i := 0; i < s.cfg.ChunkSize; i++ {
		t := float64(s.frame) * step
		s.frame++

		left := math.Sin(t * s.device.Frequency)
		right := left

		switch s.device.Shape {
		case "quadrature":
			right = math.Cos(t * s.device.Frequency)
		case "beat":
			right = math.Sin(t * (s.device.Frequency + 1))
		}

		for ch := 0; ch < chans; ch++ {
			v := right
			if ch == 0 {
				v = left
			}
			s.chunk[i*chans+ch] = float32(v * 0.8)
		}
	}

	return s.chunk
}
