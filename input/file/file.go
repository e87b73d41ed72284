// Package file plays audio files into a segment at their own sample rate.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/noriah/catscope/input"
	"github.com/noriah/catscope/input/common/timer"
	"github.com/pkg/errors"
)

func init() {
	input.RegisterBackend("file", Backend{})
}

// Extensions are the file types the backend can decode.
var Extensions = []string{".wav", ".mp3", ".flac", ".ogg"}

// Device is the path of an audio file.
type Device string

func (d Device) String() string {
	return string(d)
}

type Backend struct{}

func (b Backend) Init() error {
	return nil
}

func (b Backend) Close() error {
	return nil
}

// Devices returns nothing. Files are named with ParseDevice.
func (b Backend) Devices() ([]input.Device, error) {
	return nil, nil
}

func (b Backend) DefaultDevice() (input.Device, error) {
	return nil, errors.New("file backend needs a path as its device")
}

func (b Backend) ParseDevice(path string) (input.Device, error) {
	ext := strings.ToLower(filepath.Ext(path))

	for _, e := range Extensions {
		if e == ext {
			return Device(path), nil
		}
	}

	return nil, fmt.Errorf("unsupported format: %s", ext)
}

func (b Backend) Start(cfg input.SessionConfig) (input.Session, error) {
	return NewSession(cfg)
}

// Session decodes a file and paces its frames in real time. Source channels
// are mapped onto the session channels in order, with the last source
// channel repeated when the session has more.
type Session struct {
	cfg  input.SessionConfig
	path string

	// SampleRate is the rate of the opened file.
	SampleRate int
}

func NewSession(cfg input.SessionConfig) (*Session, error) {
	dv, ok := cfg.Device.(Device)
	if !ok {
		return nil, fmt.Errorf("invalid device type %T", cfg.Device)
	}

	if cfg.ChannelCount < 1 || cfg.ChunkSize < 1 {
		return nil, errors.New("invalid session geometry")
	}

	return &Session{cfg: cfg, path: string(dv)}, nil
}

func (s *Session) Start(ctx context.Context, dst input.FrameWriter) error {
	f, err := os.Open(s.path)
	if err != nil {
		return errors.Wrap(err, "failed to open file")
	}
	defer f.Close()

	dec, err := newDecoder(f)
	if err != nil {
		return err
	}

	s.SampleRate = dec.SampleRate()

	// pace by the file, not by the requested rate
	pace := s.cfg
	pace.SampleRate = float64(dec.SampleRate())

	m := newMapper(dec, s.cfg.ChannelCount, s.cfg.ChunkSize)

	return timer.Process(ctx, pace, func() error {
		chunk, err := m.next()
		if len(chunk) > 0 {
			dst.Write(chunk)
		}
		return err
	})
}

// decoder reads interleaved float32 samples in [-1, 1].
type decoder interface {
	// Read fills dst with whole frames and returns the samples read.
	Read(dst []float32) (int, error)
	SampleRate() int
	Channels() int
}

func newDecoder(f *os.File) (decoder, error) {
	ext := strings.ToLower(filepath.Ext(f.Name()))
	switch ext {
	case ".wav":
		return newWAVDecoder(f)
	case ".mp3":
		return newMP3Decoder(f)
	case ".flac":
		return newFLACDecoder(f)
	case ".ogg":
		return newOGGDecoder(f)
	default:
		return nil, fmt.Errorf("unsupported format: %s", ext)
	}
}

// mapper turns decoder output into chunks of the session channel layout.
type mapper struct {
	dec   decoder
	src   []float32
	out   []float32
	chans int
}

func newMapper(dec decoder, chans, frames int) *mapper {
	return &mapper{
		dec:   dec,
		src:   make([]float32, frames*dec.Channels()),
		out:   make([]float32, frames*chans),
		chans: chans,
	}
}

// next returns the next chunk. At the end of the file it returns the last
// partial chunk along with io.EOF.
func (m *mapper) next() ([]float32, error) {
	srcChans := m.dec.Channels()

	filled := 0
	var err error

	for filled < len(m.src) && err == nil {
		var n int
		n, err = m.dec.Read(m.src[filled:])
		filled += n

		if n == 0 && err == nil {
			err = io.EOF
		}
	}

	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}

	if err != nil && err != io.EOF {
		return nil, err
	}

	frames := filled / srcChans

	for i := 0; i < frames; i++ {
		for ch := 0; ch < m.chans; ch++ {
			sc := ch
			if sc >= srcChans {
				sc = srcChans - 1
			}
			m.out[i*m.chans+ch] = m.src[i*srcChans+sc]
		}
	}

	return m.out[:frames*m.chans], err
}
