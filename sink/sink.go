// Package sink persists one recording session's processed samples to disk.
// Wave and Pcm sinks stream to the file as frames arrive; the Flac sink
// accumulates in memory and encodes once at finalize.
package sink

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

type Format string

const (
	Wave Format = "WAVE"
	Pcm  Format = "PCM"
	Flac Format = "FLAC"
)

func (f Format) Ext() string {
	switch f {
	case Pcm:
		return ".pcm"
	case Flac:
		return ".flac"
	default:
		return ".wav"
	}
}

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToUpper(s)) {
	case Wave:
		return Wave, nil
	case Pcm:
		return Pcm, nil
	case Flac:
		return Flac, nil
	}
	return "", fmt.Errorf("unknown audio format %q", s)
}

type Config struct {
	Format     Format
	SampleRate uint32
	BitDepth   uint16
	Channels   int
}

// ErrFinalized is returned by Write once Finalize has run. A sink is bound
// to one session and never transitions back from finalized.
var ErrFinalized = errors.New("sink already finalized")

// Sink is the per-session storage abstraction. Write and Finalize are safe
// to call from different goroutines; Finalize must be called exactly once.
type Sink interface {
	// Write converts one processed frame to integer samples and appends it
	// (to disk for streaming variants, to memory for Flac).
	Write(frame []float32) error
	// Finalize completes the on-disk artifact: rewrites the Wave header,
	// encodes and writes the Flac stream, no-op for Pcm.
	Finalize() error
	Path() string
}

// Open creates the sink for one recording session at path.
func Open(path string, cfg Config) (Sink, error) {
	switch cfg.Format {
	case Wave:
		return openWave(path, cfg)
	case Pcm:
		return openPcm(path)
	case Flac:
		return openFlac(path, cfg)
	}
	return nil, fmt.Errorf("unknown audio format %q", cfg.Format)
}

// Filename derives the session file name: sortable timestamp, device name
// with spaces replaced by underscores, extension matching the format.
func Filename(dir string, now time.Time, deviceName string, f Format) string {
	name := now.Format("2006-01-02-15-04-05") + "-" + strings.ReplaceAll(deviceName, " ", "_") + f.Ext()
	return filepath.Join(dir, name)
}

// maxAmp is the largest positive sample value for a signed integer format of
// the given width (32767 for 16-bit, 2^31-1 for 32-bit).
func maxAmp(bits uint16) int32 {
	return int32(1)<<(bits-1) - 1
}

// toInt converts a float sample in [-1, 1] to a signed integer of the given
// width, truncating toward zero and saturating at the format bounds. Values
// must not wrap.
func toInt(sample float32, bits uint16) int32 {
	max := maxAmp(bits)
	v := sample * float32(max)
	if v >= float32(max) {
		return max
	}
	if v <= float32(-max-1) {
		return -max - 1
	}
	return int32(v)
}
