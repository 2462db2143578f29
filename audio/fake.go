package audio

import (
	"sync"
	"time"
)

const fakeFrameSize = 1024

// FakeContext is a test backend that replays a fixed set of float samples
// through the capture callback. In burst mode the whole take is delivered
// synchronously from Start; in realtime mode chunks are paced at the
// configured sample rate.
type FakeContext struct {
	samples    []float32
	sampleRate uint32
	realtime   bool

	// Channels is the fake device's native layout; zero means mono. The
	// sample slice is interleaved accordingly.
	Channels int
}

func NewFakeContext(samples []float32, sampleRate uint32, realtime bool) *FakeContext {
	return &FakeContext{samples: samples, sampleRate: sampleRate, realtime: realtime}
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) {
	return []DeviceInfo{{ID: "fake-0", Name: "Fake Mic"}}, nil
}

func (f *FakeContext) NewCapture(_ *DeviceInfo, _ CaptureConfig) (CaptureDevice, error) {
	channels := f.Channels
	if channels < 1 {
		channels = 1
	}
	return &FakeCapture{
		samples:    f.samples,
		sampleRate: f.sampleRate,
		realtime:   f.realtime,
		channels:   channels,
	}, nil
}

func (f *FakeContext) Close() {}

type FakeCapture struct {
	samples    []float32
	sampleRate uint32
	realtime   bool
	channels   int

	mu       sync.Mutex
	cb       DataCallback
	stopCh   chan struct{}
	feedDone chan struct{}
}

func (f *FakeCapture) SetCallback(cb DataCallback) {
	f.mu.Lock()
	f.cb = cb
	f.mu.Unlock()
}

func (f *FakeCapture) ClearCallback() {
	f.mu.Lock()
	f.cb = nil
	f.mu.Unlock()
}

func (f *FakeCapture) Channels() int { return f.channels }

func (f *FakeCapture) loadCallback() DataCallback {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cb
}

func (f *FakeCapture) feedChunk(cb DataCallback, pos int) int {
	end := min(pos+fakeFrameSize, len(f.samples))
	chunk := make([]float32, end-pos)
	copy(chunk, f.samples[pos:end])
	cb(chunk, uint32(len(chunk)/f.channels))
	return end
}

func (f *FakeCapture) Start() error {
	f.stopCh = make(chan struct{})
	f.feedDone = make(chan struct{})

	if !f.realtime {
		defer close(f.feedDone)
		cb := f.loadCallback()
		if cb == nil {
			return nil
		}
		for pos := 0; pos < len(f.samples); {
			pos = f.feedChunk(cb, pos)
		}
		return nil
	}

	interval := time.Duration(fakeFrameSize) * time.Second / time.Duration(f.sampleRate)
	go func() {
		defer close(f.feedDone)
		pos := 0
		for pos < len(f.samples) {
			select {
			case <-f.stopCh:
				return
			case <-time.After(interval):
			}
			cb := f.loadCallback()
			if cb == nil {
				continue
			}
			pos = f.feedChunk(cb, pos)
		}
	}()
	return nil
}

func (f *FakeCapture) Stop() {
	if f.stopCh == nil {
		return
	}
	select {
	case <-f.stopCh:
	default:
		close(f.stopCh)
	}
	<-f.feedDone
}

func (f *FakeCapture) Close() {}
