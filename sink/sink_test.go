package sink

import (
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/wav"
	"github.com/mewkiz/flac"
)

func testConfig(f Format) Config {
	return Config{Format: f, SampleRate: 44100, BitDepth: 16, Channels: 1}
}

func TestFilename(t *testing.T) {
	ts := time.Date(2024, 3, 9, 17, 5, 42, 0, time.UTC)
	got := Filename("out", ts, "USB Audio Device", Flac)
	want := filepath.Join("out", "2024-03-09-17-05-42-USB_Audio_Device.flac")
	if got != want {
		t.Errorf("Filename = %q, want %q", got, want)
	}
}

func TestToIntSaturates(t *testing.T) {
	cases := []struct {
		in   float32
		bits uint16
		want int32
	}{
		{0, 16, 0},
		{1, 16, 32767},
		{-1, 16, -32767},
		{2.5, 16, 32767},
		{-2.5, 16, -32768},
		{0.5, 16, 16383}, // truncation toward zero
		{1, 32, math.MaxInt32},
		{100, 32, math.MaxInt32},
		{-100, 32, math.MinInt32},
	}
	for _, c := range cases {
		if got := toInt(c.in, c.bits); got != c.want {
			t.Errorf("toInt(%v, %d) = %d, want %d", c.in, c.bits, got, c.want)
		}
	}
}

func TestWaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	s, err := Open(path, testConfig(Wave))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	frames := [][]float32{
		{0, 0.25, -0.25, 0.5},
		{1, -1, 0.1},
	}
	var want []int
	for _, frame := range frames {
		if err := s.Write(frame); err != nil {
			t.Fatalf("Write: %v", err)
		}
		for _, sample := range frame {
			want = append(want, int(toInt(sample, 16)))
		}
	}
	if err := s.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening result: %v", err)
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decoding wav: %v", err)
	}
	if int(dec.SampleRate) != 44100 || dec.NumChans != 1 || dec.BitDepth != 16 {
		t.Errorf("header = %d Hz / %d ch / %d bit, want 44100/1/16",
			dec.SampleRate, dec.NumChans, dec.BitDepth)
	}
	if len(buf.Data) != len(want) {
		t.Fatalf("decoded %d samples, want %d", len(buf.Data), len(want))
	}
	for i := range want {
		if buf.Data[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, buf.Data[i], want[i])
		}
	}
}

func TestPcmBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pcm")
	s, err := Open(path, testConfig(Pcm))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	frame := []float32{0, 0.5, -0.5, 1, -1}
	if err := s.Write(frame); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading result: %v", err)
	}
	if len(data) != len(frame)*2 {
		t.Fatalf("file is %d bytes, want %d", len(data), len(frame)*2)
	}
	for i, sample := range frame {
		got := int16(binary.LittleEndian.Uint16(data[i*2:]))
		want := int16(toInt(sample, 16))
		if got != want {
			t.Errorf("sample %d = %d, want %d", i, got, want)
		}
	}
}

func TestFlacRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.flac")
	s, err := Open(path, testConfig(Flac))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	// More than one block to exercise frame splitting.
	frame := make([]float32, flacBlockSize+500)
	for i := range frame {
		frame[i] = float32(math.Sin(float64(i)/30)) * 0.8
	}
	var want []int32
	for _, sample := range frame {
		want = append(want, toInt(sample, 16))
	}
	if err := s.Write(frame); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	stream, err := flac.ParseFile(path)
	if err != nil {
		t.Fatalf("parsing flac: %v", err)
	}
	defer stream.Close()

	var got []int32
	for {
		fr, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("parsing flac frame: %v", err)
		}
		got = append(got, fr.Subframes[0].Samples...)
	}

	if len(got) != len(want) {
		t.Fatalf("decoded %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d = %d, want %d (lossless round trip)", i, got[i], want[i])
		}
	}
}

func TestFlacEmptyWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.flac")
	s, err := Open(path, testConfig(Flac))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("finalizing an empty flac sink must not create a file")
	}
}

func TestWriteAfterFinalize(t *testing.T) {
	for _, format := range []Format{Wave, Pcm, Flac} {
		path := filepath.Join(t.TempDir(), "out"+format.Ext())
		s, err := Open(path, testConfig(format))
		if err != nil {
			t.Fatalf("%s: Open: %v", format, err)
		}
		if err := s.Finalize(); err != nil {
			t.Fatalf("%s: Finalize: %v", format, err)
		}
		if err := s.Write([]float32{0.1}); err != ErrFinalized {
			t.Errorf("%s: Write after Finalize = %v, want ErrFinalized", format, err)
		}
		// Finalize is idempotent.
		if err := s.Finalize(); err != nil {
			t.Errorf("%s: second Finalize = %v, want nil", format, err)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"WAVE": Wave, "pcm": Pcm, "Flac": Flac} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseFormat("mp3"); err == nil {
		t.Error("ParseFormat(mp3) should fail")
	}
}
