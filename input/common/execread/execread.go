// Package execread provides a shared struct that wraps around cmd.
package execread

import (
	"context"
	"encoding/binary"
	"io"
	"math"
	"os"
	"os/exec"
	"time"

	"github.com/noriah/catscope/input"
	"github.com/pkg/errors"
)

// Session is a session that reads floating-point audio values from a Cmd.
type Session struct {
	// OnStart is called when the session starts. Nil by default.
	OnStart func(ctx context.Context, cmd *exec.Cmd) error

	// prevents cmd.Stderr from pointing to os.Stderr. false by default.
	DisconnectedStderr bool

	argv []string
	cfg  input.SessionConfig

	samples int // multiplied

	f32mode bool
}

// NewSession creates a new execread session. It never returns an error.
func NewSession(argv []string, f32mode bool, cfg input.SessionConfig) *Session {
	if len(argv) < 1 {
		panic("argv has no arg0")
	}

	return &Session{
		argv:    argv,
		cfg:     cfg,
		f32mode: f32mode,
		samples: cfg.ChunkSize * cfg.ChannelCount,
	}
}

// Argv returns the command line of the session.
func (s *Session) Argv() []string {
	return s.argv
}

func (s *Session) Start(ctx context.Context, dst input.FrameWriter) error {
	if s.samples < 1 {
		return errors.New("invalid chunk size given")
	}

	cmd := exec.CommandContext(ctx, s.argv[0], s.argv[1:]...)

	if !s.DisconnectedStderr {
		cmd.Stderr = os.Stderr
	}

	o, err := cmd.StdoutPipe()
	if err != nil {
		return errors.Wrap(err, "failed to get stdout pipe")
	}
	defer o.Close()

	// We need o as an *os.File for SetReadDeadline.
	of, ok := o.(*os.File)
	if !ok {
		return errors.New("stdout pipe is not an *os.File (bug)")
	}

	if err := cmd.Start(); err != nil {
		return errors.Wrap(err, "failed to start "+s.argv[0])
	}
	defer cmd.Wait()

	if s.OnStart != nil {
		if err := s.OnStart(ctx, cmd); err != nil {
			return err
		}
	}

	return s.pump(ctx, of, dst)
}

// deadlineReader is a reader that can time out.
type deadlineReader interface {
	io.Reader
	SetReadDeadline(time.Time) error
}

func (s *Session) pump(ctx context.Context, src deadlineReader, dst input.FrameWriter) error {
	reader := floatReader{
		order: binary.LittleEndian,
		f64:   !s.f32mode,
	}

	raw := make([]byte, s.samples*reader.width())
	chunk := make([]float32, s.samples)

	// A stalled source is left silent so the scope can notice it.
	timeout := s.cfg.ChunkDuration() * 6
	fill := 0

	for {
		if timeout > 0 {
			if err := src.SetReadDeadline(time.Now().Add(timeout)); err != nil {
				return errors.Wrap(err, "failed to set read deadline")
			}
		}

		n, err := io.ReadFull(src, raw[fill:])
		fill += n

		switch {
		case err == nil:
		case errors.Is(err, os.ErrDeadlineExceeded):
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return nil
		default:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		fill = 0
		reader.reset(raw)
		for i := range chunk {
			chunk[i] = reader.next()
		}

		dst.Write(chunk)

		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

type floatReader struct {
	order binary.ByteOrder
	buf   []byte
	f64   bool
}

func (f *floatReader) width() int {
	if f.f64 {
		return 8
	}
	return 4
}

func (f *floatReader) reset(b []byte) {
	f.buf = b
}

func (f *floatReader) next() float32 {
	if f.f64 {
		b := f.buf[:8]
		f.buf = f.buf[8:]
		return float32(math.Float64frombits(f.order.Uint64(b)))
	}

	b := f.buf[:4]
	f.buf = f.buf[4:]
	return math.Float32frombits(f.order.Uint32(b))
}
