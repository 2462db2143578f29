package sink

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

// flacBlockSize is the fixed block size used when the accumulated samples
// are encoded at finalize.
const flacBlockSize = 4096

// flacSink accumulates integer samples in memory and encodes the whole
// buffer as a mono FLAC stream at finalize. Nothing touches the disk before
// then, so a failed encode leaves no partial file behind.
type flacSink struct {
	mu        sync.Mutex
	path      string
	cfg       Config
	samples   []int32
	finalized bool
}

func openFlac(path string, cfg Config) (Sink, error) {
	return &flacSink{path: path, cfg: cfg}, nil
}

func (s *flacSink) Write(frame []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return ErrFinalized
	}
	for _, sample := range frame {
		s.samples = append(s.samples, toInt(sample, s.cfg.BitDepth))
	}
	return nil
}

func (s *flacSink) Finalize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return nil
	}
	s.finalized = true

	if len(s.samples) == 0 {
		return nil
	}

	data, err := encodeFlac(s.samples, s.cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("writing flac file: %w", err)
	}
	return nil
}

func (s *flacSink) Path() string { return s.path }

// encodeFlac encodes samples as a mono stream at the configured bit depth
// and sample rate, one verbatim frame per fixed-size block.
func encodeFlac(samples []int32, cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	info := &meta.StreamInfo{
		BlockSizeMin:  flacBlockSize,
		BlockSizeMax:  flacBlockSize,
		SampleRate:    cfg.SampleRate,
		NChannels:     1,
		BitsPerSample: uint8(cfg.BitDepth),
		NSamples:      uint64(len(samples)),
	}
	enc, err := flac.NewEncoder(&buf, info)
	if err != nil {
		return nil, fmt.Errorf("creating flac encoder: %w", err)
	}

	for off := 0; off < len(samples); off += flacBlockSize {
		end := off + flacBlockSize
		if end > len(samples) {
			end = len(samples)
		}
		block := samples[off:end]

		subframe := &frame.Subframe{
			SubHeader: frame.SubHeader{
				Pred: frame.PredVerbatim,
			},
			Samples:  block,
			NSamples: len(block),
		}
		f := &frame.Frame{
			Header: frame.Header{
				BlockSize:     uint16(len(block)),
				SampleRate:    cfg.SampleRate,
				Channels:      frame.ChannelsMono,
				BitsPerSample: uint8(cfg.BitDepth),
			},
			Subframes: []*frame.Subframe{subframe},
		}
		if err := enc.WriteFrame(f); err != nil {
			return nil, fmt.Errorf("writing flac frame: %w", err)
		}
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("closing flac encoder: %w", err)
	}
	return buf.Bytes(), nil
}
