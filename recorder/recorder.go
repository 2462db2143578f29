// Package recorder owns the recording slots and their capture goroutines.
// The Manager is the boundary a front end calls into: it keeps slot
// bookkeeping consistent, starts and stops captures, and exposes per-slot
// state and preview samples for display.
package recorder

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"rokuon/audio"
	"rokuon/config"
	"rokuon/preview"
)

var (
	ErrBadSlot       = errors.New("recording slot index out of range")
	ErrSlotRecording = errors.New("slot is recording")
	ErrNoDevices     = errors.New("no input devices available")
)

// slot is one user-visible recording unit bound to one device. Exactly one
// capture goroutine may be live per slot; its stop flag and handle always
// change together with the recording mark.
type slot struct {
	device    audio.DeviceInfo
	recording bool
	startedAt time.Time
	path      string

	stop    *atomic.Bool
	handle  *captureHandle
	preview *preview.Buffer
}

// SlotInfo is a point-in-time copy of one slot's display state.
type SlotInfo struct {
	Device    audio.DeviceInfo
	Recording bool
	Elapsed   time.Duration
	Path      string
	Preview   []float32
}

// Manager keeps the slot list and runs group commands. Commands (add,
// start, stop, remove, change device) are meant to run from one goroutine
// at a time; Snapshot and Len are safe to call concurrently with them.
type Manager struct {
	ctx      audio.Context
	settings config.Settings

	mu    sync.RWMutex
	slots []*slot
}

func New(ctx audio.Context, settings config.Settings) *Manager {
	return &Manager{ctx: ctx, settings: settings}
}

// AddSlot appends an idle slot bound to device. A nil device selects the
// first enumerated input device; ErrNoDevices if there is none.
func (m *Manager) AddSlot(device *audio.DeviceInfo) error {
	if device == nil {
		devices, err := m.ctx.Devices()
		if err != nil {
			return fmt.Errorf("enumerating devices: %w", err)
		}
		if len(devices) == 0 {
			return ErrNoDevices
		}
		device = &devices[0]
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots = append(m.slots, &slot{
		device:  *device,
		stop:    &atomic.Bool{},
		preview: preview.NewBuffer(),
	})
	return nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.slots)
}

// Snapshot returns display state for every slot.
func (m *Manager) Snapshot() []SlotInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	infos := make([]SlotInfo, len(m.slots))
	for i, s := range m.slots {
		info := SlotInfo{
			Device:    s.device,
			Recording: s.recording,
			Path:      s.path,
			Preview:   s.preview.Samples(),
		}
		if s.recording && !s.startedAt.IsZero() {
			info.Elapsed = time.Since(s.startedAt)
		}
		infos[i] = info
	}
	return infos
}

// StartGroup starts a capture for each idle slot in indices, sequentially.
// A slot that fails to start stays idle; its error is joined into the
// returned error and the remaining slots still start.
func (m *Manager) StartGroup(indices []int) error {
	var errs []error
	for _, i := range indices {
		m.mu.Lock()
		if i < 0 || i >= len(m.slots) {
			m.mu.Unlock()
			errs = append(errs, fmt.Errorf("slot %d: %w", i, ErrBadSlot))
			continue
		}
		s := m.slots[i]
		if s.recording {
			m.mu.Unlock()
			continue
		}
		// Claim the slot before the capture is built so a re-entrant start
		// cannot spawn a second goroutine for it.
		s.recording = true
		s.stop.Store(false)
		device := s.device
		stop := s.stop
		buf := s.preview
		m.mu.Unlock()

		handle, path, err := m.startCapture(device, stop, buf)

		m.mu.Lock()
		if err != nil {
			s.recording = false
			m.mu.Unlock()
			errs = append(errs, fmt.Errorf("slot %d: %w", i, err))
			continue
		}
		s.startedAt = time.Now()
		s.handle = handle
		s.path = path
		m.mu.Unlock()
	}
	return errors.Join(errs...)
}

// StopGroup stops each recording slot in indices: flips its stop flag,
// clears the bookkeeping, then joins the capture goroutine before moving to
// the next index. Finalize failures are joined into the returned error; the
// slot is still marked stopped. Stopping an idle slot is a no-op.
func (m *Manager) StopGroup(indices []int) error {
	var errs []error
	for _, i := range indices {
		m.mu.Lock()
		if i < 0 || i >= len(m.slots) {
			m.mu.Unlock()
			errs = append(errs, fmt.Errorf("slot %d: %w", i, ErrBadSlot))
			continue
		}
		s := m.slots[i]
		if !s.recording {
			m.mu.Unlock()
			continue
		}
		s.stop.Store(true)
		s.recording = false
		s.startedAt = time.Time{}
		handle := s.handle
		s.handle = nil
		m.mu.Unlock()

		// A claimed slot whose capture is still being built has no handle
		// yet; there is nothing to join for it.
		if handle == nil {
			continue
		}
		// Join outside the lock so readers can keep polling other slots.
		if err := handle.join(); err != nil {
			errs = append(errs, fmt.Errorf("slot %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// StartAll and StopAll operate on every slot, the record-button semantics.
func (m *Manager) StartAll() error { return m.StartGroup(m.allIndices()) }
func (m *Manager) StopAll() error  { return m.StopGroup(m.allIndices()) }

func (m *Manager) allIndices() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	indices := make([]int, len(m.slots))
	for i := range indices {
		indices[i] = i
	}
	return indices
}

// RemoveSlot deletes the slot at index i, stopping its capture first if it
// is recording. The slot disappears even when finalize fails; the error is
// still returned.
func (m *Manager) RemoveSlot(i int) error {
	err := m.StopGroup([]int{i})

	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= len(m.slots) {
		return err
	}
	m.slots = append(m.slots[:i], m.slots[i+1:]...)
	return err
}

// ChangeDevice rebinds an idle slot to a new device. Changing the device of
// a recording slot is a precondition violation and returns ErrSlotRecording.
func (m *Manager) ChangeDevice(i int, device audio.DeviceInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= len(m.slots) {
		return fmt.Errorf("slot %d: %w", i, ErrBadSlot)
	}
	if m.slots[i].recording {
		return fmt.Errorf("slot %d: %w", i, ErrSlotRecording)
	}
	m.slots[i].device = device
	return nil
}
