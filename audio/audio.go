// Package audio abstracts the capture backend: PulseAudio on Linux,
// miniaudio elsewhere, plus a fake backend for tests. Frames are delivered
// as interleaved float32 samples in [-1, 1].
package audio

// DataCallback receives one frame of interleaved samples on the backend's
// own thread. frameCount is per channel: len(samples) = frameCount * channels.
type DataCallback func(samples []float32, frameCount uint32)

type CaptureConfig struct {
	SampleRate uint32
	// Channels zero selects the device's native layout; the resolved count
	// is reported by CaptureDevice.Channels.
	Channels uint32
}

type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

type Context interface {
	Devices() ([]DeviceInfo, error)
	NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error)
	Close()
}

type CaptureDevice interface {
	Start() error
	Stop()
	Close()
	SetCallback(cb DataCallback)
	ClearCallback()
	// Channels reports the stream's channel count, needed by container headers.
	Channels() int
}
