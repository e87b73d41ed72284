package file

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
	"github.com/pkg/errors"
)

// --- WAV ---

type wavDecoder struct {
	dec   *wav.Decoder
	buf   *audio.IntBuffer
	scale float32
}

func newWAVDecoder(f *os.File) (*wavDecoder, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid WAV file")
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, errors.Wrap(err, "reading WAV PCM data")
	}

	if dec.NumChans < 1 || dec.BitDepth < 8 {
		return nil, errors.New("unsupported WAV layout")
	}

	return &wavDecoder{
		dec: dec,
		buf: &audio.IntBuffer{
			Format:         dec.Format(),
			SourceBitDepth: int(dec.BitDepth),
		},
		scale: float32(int64(1) << (dec.BitDepth - 1)),
	}, nil
}

func (d *wavDecoder) Read(dst []float32) (int, error) {
	want := len(dst) - len(dst)%d.Channels()
	if cap(d.buf.Data) < want {
		d.buf.Data = make([]int, want)
	}
	d.buf.Data = d.buf.Data[:want]

	n, err := d.dec.PCMBuffer(d.buf)
	n -= n % d.Channels()

	for i, v := range d.buf.Data[:n] {
		// 8 bit WAV is unsigned
		if d.dec.BitDepth == 8 {
			v -= 128
		}
		dst[i] = float32(v) / d.scale
	}

	switch {
	case n > 0 && (err == io.EOF || err == io.ErrUnexpectedEOF):
		err = nil
	case n == 0 && err == nil:
		err = io.EOF
	}

	return n, err
}

func (d *wavDecoder) SampleRate() int { return int(d.dec.SampleRate) }
func (d *wavDecoder) Channels() int   { return int(d.dec.NumChans) }

// --- MP3 ---

// mp3Decoder reads the 16 bit little endian stereo stream go-mp3 produces.
type mp3Decoder struct {
	dec *mp3.Decoder
	raw []byte
}

func newMP3Decoder(f *os.File) (*mp3Decoder, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, errors.Wrap(err, "decoding MP3")
	}
	return &mp3Decoder{dec: dec}, nil
}

func (d *mp3Decoder) Read(dst []float32) (int, error) {
	want := (len(dst) / 2) * 4
	if cap(d.raw) < want {
		d.raw = make([]byte, want)
	}

	n, err := io.ReadFull(d.dec, d.raw[:want])
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}

	samples := (n / 4) * 2
	for i := 0; i < samples; i++ {
		dst[i] = float32(int16(binary.LittleEndian.Uint16(d.raw[i*2:]))) / 32768
	}

	if samples > 0 && err == io.EOF {
		err = nil
	}

	return samples, err
}

func (d *mp3Decoder) SampleRate() int { return d.dec.SampleRate() }
func (d *mp3Decoder) Channels() int   { return 2 }

// --- FLAC ---

type flacDecoder struct {
	stream *flac.Stream
	left   []float32
	scale  float32
	chans  int
}

func newFLACDecoder(f *os.File) (*flacDecoder, error) {
	stream, err := flac.New(f)
	if err != nil {
		return nil, errors.Wrap(err, "decoding FLAC")
	}

	return &flacDecoder{
		stream: stream,
		scale:  float32(int64(1) << (stream.Info.BitsPerSample - 1)),
		chans:  int(stream.Info.NChannels),
	}, nil
}

func (d *flacDecoder) Read(dst []float32) (int, error) {
	if len(d.left) == 0 {
		frame, err := d.stream.ParseNext()
		if err != nil {
			return 0, err
		}

		nSamples := int(frame.Subframes[0].NSamples)
		d.left = make([]float32, nSamples*d.chans)

		for i := 0; i < nSamples; i++ {
			for ch := 0; ch < d.chans; ch++ {
				d.left[i*d.chans+ch] = float32(frame.Subframes[ch].Samples[i]) / d.scale
			}
		}
	}

	n := copy(dst[:len(dst)-len(dst)%d.chans], d.left)
	d.left = d.left[n:]

	return n, nil
}

func (d *flacDecoder) SampleRate() int { return int(d.stream.Info.SampleRate) }
func (d *flacDecoder) Channels() int   { return d.chans }

// --- OGG Vorbis ---

type oggDecoder struct {
	reader *oggvorbis.Reader
}

func newOGGDecoder(f *os.File) (*oggDecoder, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, errors.Wrap(err, "decoding OGG")
	}
	return &oggDecoder{reader: reader}, nil
}

func (d *oggDecoder) Read(dst []float32) (int, error) {
	return d.reader.Read(dst[:len(dst)-len(dst)%d.Channels()])
}

func (d *oggDecoder) SampleRate() int { return d.reader.SampleRate() }
func (d *oggDecoder) Channels() int   { return d.reader.Channels() }
