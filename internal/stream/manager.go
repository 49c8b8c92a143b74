// Package stream batches GPU command recordings across a frame.
//
// A Manager always has exactly one open recording. Work issued at any time,
// including during device construction, lands in that recording. Rotate
// closes it and opens a new one; SubmitAndClear rotates once more and hands
// every closed recording to the queue in the order they were opened.
package stream

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/wgpu/hal"
)

// ErrDestroyed is returned by operations on a destroyed Manager.
var ErrDestroyed = errors.New("stream: manager destroyed")

// Config holds Manager settings.
type Config struct {
	// Label prefixes the debug labels of encoders.
	Label string

	// Logger receives debug output. Nil disables logging.
	Logger *slog.Logger
}

// Manager owns the open command encoder and the queue of finished command
// buffers awaiting submission. It is not safe for concurrent use.
type Manager struct {
	device hal.Device
	queue  hal.Queue
	cfg    Config
	log    *slog.Logger

	current hal.CommandEncoder
	pending []hal.CommandBuffer

	// serial is the submission index the queue returned for the most recent
	// submission; completed is the highest index known to have finished.
	serial    uint64
	completed uint64
	inFlight  []inFlight
	opened    int
	destroyed bool
}

// inFlight is a submitted batch whose command buffers are freed once the
// queue reports its submission index complete.
type inFlight struct {
	serial  uint64
	buffers []hal.CommandBuffer
}

// New creates a Manager and opens its first recording.
func New(device hal.Device, queue hal.Queue, cfg Config) (*Manager, error) {
	if cfg.Label == "" {
		cfg.Label = "stream"
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(discard{})
	}
	m := &Manager{
		device: device,
		queue:  queue,
		cfg:    cfg,
		log:    log,
	}
	enc, err := m.open()
	if err != nil {
		return nil, err
	}
	m.current = enc
	return m, nil
}

func (m *Manager) open() (hal.CommandEncoder, error) {
	label := fmt.Sprintf("%s_%d", m.cfg.Label, m.opened)
	enc, err := m.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := enc.BeginEncoding(label); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}
	m.opened++
	return enc, nil
}

// Current returns the open recording. It is never nil before Destroy.
func (m *Manager) Current() hal.CommandEncoder { return m.current }

// Pending returns the number of finished recordings awaiting submission.
func (m *Manager) Pending() int { return len(m.pending) }

// Serial returns the submission index of the most recent submission, or 0
// before the first one.
func (m *Manager) Serial() uint64 { return m.serial }

// Completed returns the highest submission index known to have finished on
// the GPU.
func (m *Manager) Completed() uint64 { return m.completed }

// Rotate finishes the open recording, queues it, and installs a new empty
// one. If the new recording cannot be opened the old one stays current.
func (m *Manager) Rotate() error {
	if m.destroyed {
		return ErrDestroyed
	}
	next, err := m.open()
	if err != nil {
		return err
	}
	cmdBuf, err := m.current.EndEncoding()
	if err != nil {
		next.DiscardEncoding()
		return fmt.Errorf("end encoding: %w", err)
	}
	m.pending = append(m.pending, cmdBuf)
	m.current = next
	m.log.Debug("stream: rotate", "pending", len(m.pending))
	return nil
}

// SubmitAndClear rotates, submits every pending recording in FIFO order,
// and empties the pending queue. It returns the number of recordings
// submitted; Serial reports the submission index the queue assigned.
func (m *Manager) SubmitAndClear() (int, error) {
	if err := m.Rotate(); err != nil {
		return 0, err
	}
	batch := m.pending
	m.pending = nil
	index, err := m.queue.Submit(batch)
	if err != nil {
		for _, cb := range batch {
			m.device.FreeCommandBuffer(cb)
		}
		return 0, fmt.Errorf("submit: %w", err)
	}
	m.serial = index
	m.inFlight = append(m.inFlight, inFlight{serial: index, buffers: batch})
	m.log.Debug("stream: submit", "serial", index, "recordings", len(batch))
	return len(batch), nil
}

// Poll asks the queue for completed submissions without blocking, frees
// command buffers of finished batches, and returns the highest completed
// submission index.
func (m *Manager) Poll() uint64 {
	if done := m.queue.PollCompleted(); done > m.completed {
		m.completed = done
	}
	m.release()
	return m.completed
}

// WaitIdle blocks until the device has finished every submission.
func (m *Manager) WaitIdle() error {
	if m.serial == 0 {
		return nil
	}
	if err := m.device.WaitIdle(); err != nil {
		return fmt.Errorf("stream: wait idle: %w", err)
	}
	m.completed = m.serial
	m.release()
	return nil
}

func (m *Manager) release() {
	n := 0
	for _, f := range m.inFlight {
		if f.serial > m.completed {
			m.inFlight[n] = f
			n++
			continue
		}
		for _, cb := range f.buffers {
			m.device.FreeCommandBuffer(cb)
		}
	}
	clear(m.inFlight[n:])
	m.inFlight = m.inFlight[:n]
}

// Destroy discards the open recording and any unsubmitted ones. The caller
// must wait for idle first.
func (m *Manager) Destroy() {
	if m.destroyed {
		return
	}
	m.destroyed = true
	if m.current != nil {
		m.current.DiscardEncoding()
		m.current = nil
	}
	for _, cb := range m.pending {
		m.device.FreeCommandBuffer(cb)
	}
	m.pending = nil
	for _, f := range m.inFlight {
		for _, cb := range f.buffers {
			m.device.FreeCommandBuffer(cb)
		}
	}
	m.inFlight = nil
}
