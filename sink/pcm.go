package sink

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"
)

// pcmSink appends headerless little-endian 16-bit samples. The stream is
// complete after every write, so finalize only closes the file.
type pcmSink struct {
	mu        sync.Mutex
	path      string
	file      *os.File
	finalized bool
}

func openPcm(path string) (Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating pcm file: %w", err)
	}
	return &pcmSink{path: path, file: f}, nil
}

func (s *pcmSink) Write(frame []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return ErrFinalized
	}

	data := make([]byte, len(frame)*2)
	for i, sample := range frame {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(int16(toInt(sample, 16))))
	}
	if _, err := s.file.Write(data); err != nil {
		return fmt.Errorf("writing pcm samples: %w", err)
	}
	return nil
}

func (s *pcmSink) Finalize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return nil
	}
	s.finalized = true
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("closing pcm file: %w", err)
	}
	return nil
}

func (s *pcmSink) Path() string { return s.path }
