// Package preview holds the bounded sample buffer a display layer polls to
// render a waveform for one recording slot.
package preview

import "sync"

// MaxSamples bounds the buffer to the tail of the most recent frame.
const MaxSamples = 300

// seedLen is the number of zero samples a fresh buffer holds so a UI can
// draw a flat line before the first frame arrives.
const seedLen = 200

// Buffer is a latest-snapshot sample buffer: each Push replaces the entire
// previous content with the new frame, truncated from the front to
// MaxSamples. It deliberately does not keep a rolling history across frames.
// Safe for one writer (the capture callback) and any number of readers.
type Buffer struct {
	mu      sync.Mutex
	samples []float32
}

func NewBuffer() *Buffer {
	return &Buffer{samples: make([]float32, seedLen)}
}

// Push replaces the buffer content with the tail of frame. The frame is
// copied; the caller may reuse it.
func (b *Buffer) Push(frame []float32) {
	tail := frame
	if len(tail) > MaxSamples {
		tail = tail[len(tail)-MaxSamples:]
	}
	b.mu.Lock()
	b.samples = b.samples[:0]
	b.samples = append(b.samples, tail...)
	b.mu.Unlock()
}

// Samples returns a point-in-time copy of the buffer content.
func (b *Buffer) Samples() []float32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]float32, len(b.samples))
	copy(out, b.samples)
	return out
}
