package file

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/noriah/catscope/input"
)

type sliceDecoder struct {
	data  []float32
	chans int
}

func (d *sliceDecoder) Read(dst []float32) (int, error) {
	if len(d.data) == 0 {
		return 0, io.EOF
	}
	n := copy(dst, d.data)
	d.data = d.data[n:]
	return n, nil
}

func (d *sliceDecoder) SampleRate() int { return 8000 }
func (d *sliceDecoder) Channels() int   { return d.chans }

type collectWriter struct {
	samples []float32
}

func (w *collectWriter) Write(interleaved []float32) int {
	w.samples = append(w.samples, interleaved...)
	return len(interleaved)
}

func TestMapperMonoToStereo(t *testing.T) {
	m := newMapper(&sliceDecoder{data: []float32{1, 2, 3}, chans: 1}, 2, 2)

	chunk, err := m.next()
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	want := []float32{1, 1, 2, 2}
	for i := range want {
		if chunk[i] != want[i] {
			t.Fatalf("chunk = %v, want %v", chunk, want)
		}
	}

	chunk, err = m.next()
	if err != io.EOF || len(chunk) != 2 || chunk[0] != 3 {
		t.Fatalf("last chunk = %v, %v", chunk, err)
	}
}

func TestMapperDropsExtraChannels(t *testing.T) {
	m := newMapper(&sliceDecoder{data: []float32{1, 2, 3, 4, 5, 6}, chans: 3}, 1, 4)

	chunk, err := m.next()
	if err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}

	if len(chunk) != 2 || chunk[0] != 1 || chunk[1] != 4 {
		t.Fatalf("chunk = %v", chunk)
	}
}

func TestParseDevice(t *testing.T) {
	if _, err := (Backend{}).ParseDevice("song.FLAC"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if _, err := (Backend{}).ParseDevice("notes.txt"); err == nil {
		t.Error("expected unsupported extension error")
	}
}

func writeWAV(t *testing.T, path string, data []int) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, 8000, 16, 2, 1)

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: 8000},
		Data:           data,
		SourceBitDepth: 16,
	}

	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}

	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestPlayWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	writeWAV(t, path, []int{16384, -16384, 0, 8192, -32768, 32767})

	s, err := NewSession(input.SessionConfig{
		Device:       Device(path),
		ChannelCount: 2,
		ChunkSize:    2,
	})
	if err != nil {
		t.Fatal(err)
	}

	w := &collectWriter{}
	if err := s.Start(context.Background(), w); err != nil {
		t.Fatalf("play failed: %v", err)
	}

	if s.SampleRate != 8000 {
		t.Errorf("sample rate = %d", s.SampleRate)
	}

	want := []float32{0.5, -0.5, 0, 0.25, -1}
	if len(w.samples) != 6 {
		t.Fatalf("got %d samples", len(w.samples))
	}

	for i := range want {
		if w.samples[i] != want[i] {
			t.Fatalf("samples = %v", w.samples)
		}
	}
}

func TestPlayMissingFile(t *testing.T) {
	s, _ := NewSession(input.SessionConfig{
		Device:       Device(filepath.Join(t.TempDir(), "none.wav")),
		ChannelCount: 2,
		ChunkSize:    2,
	})

	if err := s.Start(context.Background(), &collectWriter{}); err == nil {
		t.Fatal("expected error")
	}
}
