package sink

import (
	"fmt"
	"os"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// waveSink streams integer PCM into a WAV container. The header is written
// with placeholder lengths at open and rewritten by the encoder's Close when
// the sink is finalized.
type waveSink struct {
	mu        sync.Mutex
	path      string
	file      *os.File
	enc       *wav.Encoder
	format    *audio.Format
	bitDepth  uint16
	finalized bool
}

func openWave(path string, cfg Config) (Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating wav file: %w", err)
	}
	enc := wav.NewEncoder(f, int(cfg.SampleRate), int(cfg.BitDepth), cfg.Channels, 1)
	return &waveSink{
		path: path,
		file: f,
		enc:  enc,
		format: &audio.Format{
			NumChannels: cfg.Channels,
			SampleRate:  int(cfg.SampleRate),
		},
		bitDepth: cfg.BitDepth,
	}, nil
}

func (s *waveSink) Write(frame []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return ErrFinalized
	}

	data := make([]int, len(frame))
	for i, sample := range frame {
		data[i] = int(toInt(sample, s.bitDepth))
	}
	buf := &audio.IntBuffer{
		Format:         s.format,
		SourceBitDepth: int(s.bitDepth),
		Data:           data,
	}
	if err := s.enc.Write(buf); err != nil {
		return fmt.Errorf("writing wav samples: %w", err)
	}
	return nil
}

func (s *waveSink) Finalize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return nil
	}
	s.finalized = true

	// Close rewrites the header with the final data length.
	if err := s.enc.Close(); err != nil {
		s.file.Close()
		return fmt.Errorf("finalizing wav: %w", err)
	}
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("closing wav file: %w", err)
	}
	return nil
}

func (s *waveSink) Path() string { return s.path }
