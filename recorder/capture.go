package recorder

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"rokuon/audio"
	"rokuon/effect"
	"rokuon/log"
	"rokuon/preview"
	"rokuon/sink"
)

// stopPollInterval bounds worst-case stop latency: the supervisor checks
// the stop flag at this interval rather than blocking on a wakeup.
const stopPollInterval = 100 * time.Millisecond

// The capture path uses a fixed compressor curve; the threshold/ratio fields
// in the settings file are persisted but not consulted here.
const (
	compressorThresholdDB = -20.0
	compressorRatio       = 4.0
)

// captureHandle lets the Manager wait for one capture goroutine to
// terminate. err holds the finalize result and is valid once done is closed.
type captureHandle struct {
	done   chan struct{}
	err    error
	frames atomic.Uint64
}

func (h *captureHandle) join() error {
	<-h.done
	return h.err
}

// startCapture opens the device stream and sink for one session, registers
// the frame callback, starts the stream and spawns the supervisor goroutine.
// Any failure tears everything down and leaves no file behind.
func (m *Manager) startCapture(device audio.DeviceInfo, stop *atomic.Bool, buf *preview.Buffer) (*captureHandle, string, error) {
	capture, err := m.ctx.NewCapture(&device, audio.CaptureConfig{
		SampleRate: m.settings.SampleRate,
	})
	if err != nil {
		return nil, "", fmt.Errorf("opening capture stream for %s: %w", device.Name, err)
	}

	path := sink.Filename(m.settings.OutputDir, time.Now(), device.Name, m.settings.SinkFormat())
	snk, err := sink.Open(path, sink.Config{
		Format:     m.settings.SinkFormat(),
		SampleRate: m.settings.SampleRate,
		BitDepth:   m.settings.BitDepth,
		Channels:   capture.Channels(),
	})
	if err != nil {
		capture.Close()
		return nil, "", fmt.Errorf("opening sink for %s: %w", device.Name, err)
	}

	handle := &captureHandle{done: make(chan struct{})}
	compressorOn := m.settings.CompressorEnabled

	// Runs on the backend's thread. Once the stop flag is set the callback
	// returns without writing; the stream itself keeps running until the
	// supervisor stops it.
	capture.SetCallback(func(samples []float32, frameCount uint32) {
		if stop.Load() {
			return
		}
		processed := samples
		if compressorOn {
			processed = effect.Compress(samples, compressorThresholdDB, compressorRatio)
		}
		buf.Push(processed)
		if err := snk.Write(processed); err != nil {
			log.CallbackFault(device.Name, err)
			return
		}
		handle.frames.Add(uint64(frameCount))
	})

	if err := capture.Start(); err != nil {
		capture.ClearCallback()
		capture.Close()
		snk.Finalize()
		os.Remove(path)
		return nil, "", fmt.Errorf("starting capture stream for %s: %w", device.Name, err)
	}
	log.RecordingStart(device.Name, path)
	started := time.Now()

	go func() {
		defer close(handle.done)
		for !stop.Load() {
			time.Sleep(stopPollInterval)
		}
		capture.Stop()
		capture.ClearCallback()
		handle.err = snk.Finalize()
		capture.Close()
		log.RecordingStop(device.Name, path, handle.frames.Load(), time.Since(started))
	}()

	return handle, path, nil
}
