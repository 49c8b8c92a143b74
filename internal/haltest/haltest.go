// Package haltest wraps the noop HAL backend with recorders so tests can
// observe which GPU objects were created, destroyed, recorded and submitted.
package haltest

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// Open creates a noop device and queue wrapped in recorders. The device is
// destroyed when the test finishes.
func Open(t testing.TB) (*Device, *Queue) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		t.Fatal("noop backend exposed no adapters")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	dev := &Device{Device: openDev.Device}
	return dev, &Queue{Queue: openDev.Queue}
}

// Device records calls made through it and forwards them to the wrapped
// device. Fail* fields inject errors into the matching call.
type Device struct {
	hal.Device

	Pipelines        []*hal.RenderPipelineDescriptor
	PipelineLayouts  int
	BuffersCreated   []*hal.BufferDescriptor
	BuffersDestroyed int
	TexturesCreated  []*hal.TextureDescriptor
	Encoders         []*Encoder

	FailCreateTexture  error
	FailCreatePipeline error
	FailCreateBuffer   error
}

// CreateRenderPipeline records desc.
func (d *Device) CreateRenderPipeline(desc *hal.RenderPipelineDescriptor) (hal.RenderPipeline, error) {
	if d.FailCreatePipeline != nil {
		return nil, d.FailCreatePipeline
	}
	d.Pipelines = append(d.Pipelines, desc)
	return d.Device.CreateRenderPipeline(desc)
}

// CreatePipelineLayout counts layouts.
func (d *Device) CreatePipelineLayout(desc *hal.PipelineLayoutDescriptor) (hal.PipelineLayout, error) {
	d.PipelineLayouts++
	return d.Device.CreatePipelineLayout(desc)
}

// CreateBuffer records desc.
func (d *Device) CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error) {
	if d.FailCreateBuffer != nil {
		return nil, d.FailCreateBuffer
	}
	d.BuffersCreated = append(d.BuffersCreated, desc)
	return d.Device.CreateBuffer(desc)
}

// DestroyBuffer counts destructions.
func (d *Device) DestroyBuffer(b hal.Buffer) {
	d.BuffersDestroyed++
	d.Device.DestroyBuffer(b)
}

// CreateTexture records desc.
func (d *Device) CreateTexture(desc *hal.TextureDescriptor) (hal.Texture, error) {
	if d.FailCreateTexture != nil {
		return nil, d.FailCreateTexture
	}
	d.TexturesCreated = append(d.TexturesCreated, desc)
	return d.Device.CreateTexture(desc)
}

// CreateCommandEncoder returns a recording encoder. Encoders are numbered in
// creation order.
func (d *Device) CreateCommandEncoder(desc *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	enc, err := d.Device.CreateCommandEncoder(desc)
	if err != nil {
		return nil, err
	}
	e := &Encoder{CommandEncoder: enc, ID: len(d.Encoders), Label: desc.Label}
	d.Encoders = append(d.Encoders, e)
	return e, nil
}

// FreeCommandBuffer unwraps recorded command buffers.
func (d *Device) FreeCommandBuffer(cb hal.CommandBuffer) {
	if r, ok := cb.(*CommandBuffer); ok {
		cb = r.CommandBuffer
	}
	d.Device.FreeCommandBuffer(cb)
}

// Encoder records render passes and copies.
type Encoder struct {
	hal.CommandEncoder

	ID           int
	Label        string
	Passes       []*hal.RenderPassDescriptor
	Copies       []hal.BufferTextureCopy
	BufferCopies []hal.BufferCopy
	Ended        bool

	// Ops lists recorded commands in order: "pass", "copy_texture" or
	// "copy_buffer".
	Ops []string
}

// BeginRenderPass records desc.
func (e *Encoder) BeginRenderPass(desc *hal.RenderPassDescriptor) hal.RenderPassEncoder {
	e.Passes = append(e.Passes, desc)
	e.Ops = append(e.Ops, "pass")
	return e.CommandEncoder.BeginRenderPass(desc)
}

// CopyBufferToTexture records regions.
func (e *Encoder) CopyBufferToTexture(src hal.Buffer, dst hal.Texture, regions []hal.BufferTextureCopy) {
	e.Copies = append(e.Copies, regions...)
	e.Ops = append(e.Ops, "copy_texture")
	e.CommandEncoder.CopyBufferToTexture(src, dst, regions)
}

// CopyBufferToBuffer records regions.
func (e *Encoder) CopyBufferToBuffer(src, dst hal.Buffer, regions []hal.BufferCopy) {
	e.BufferCopies = append(e.BufferCopies, regions...)
	e.Ops = append(e.Ops, "copy_buffer")
	e.CommandEncoder.CopyBufferToBuffer(src, dst, regions)
}

// EndEncoding tags the command buffer with the encoder that produced it.
func (e *Encoder) EndEncoding() (hal.CommandBuffer, error) {
	cb, err := e.CommandEncoder.EndEncoding()
	if err != nil {
		return nil, err
	}
	e.Ended = true
	return &CommandBuffer{CommandBuffer: cb, Encoder: e}, nil
}

// CommandBuffer is a finished recording tagged with its encoder.
type CommandBuffer struct {
	hal.CommandBuffer
	Encoder *Encoder
}

// Queue records submissions and writes.
type Queue struct {
	hal.Queue

	// Submissions holds, per Submit call, the encoder IDs in submitted order.
	Submissions [][]int
	// Indices holds the submission index returned for each Submit call.
	Indices []uint64
	// Writes counts successful WriteBuffer calls.
	Writes int

	// Stall freezes completion: PollCompleted keeps reporting the value it
	// returned before Stall was set.
	Stall bool
	// FailWriteBuffer is returned by WriteBuffer when set.
	FailWriteBuffer error

	reported uint64
}

// Submit records the encoder order and forwards the unwrapped buffers.
func (q *Queue) Submit(cbs []hal.CommandBuffer) (uint64, error) {
	ids := make([]int, 0, len(cbs))
	raw := make([]hal.CommandBuffer, 0, len(cbs))
	for _, cb := range cbs {
		if r, ok := cb.(*CommandBuffer); ok {
			ids = append(ids, r.Encoder.ID)
			cb = r.CommandBuffer
		} else {
			ids = append(ids, -1)
		}
		raw = append(raw, cb)
	}
	index, err := q.Queue.Submit(raw)
	if err != nil {
		return 0, err
	}
	q.Submissions = append(q.Submissions, ids)
	q.Indices = append(q.Indices, index)
	return index, nil
}

// PollCompleted forwards to the wrapped queue unless Stall is set.
func (q *Queue) PollCompleted() uint64 {
	if !q.Stall {
		q.reported = q.Queue.PollCompleted()
	}
	return q.reported
}

// WriteBuffer counts writes or fails with FailWriteBuffer.
func (q *Queue) WriteBuffer(buf hal.Buffer, offset uint64, data []byte) error {
	if q.FailWriteBuffer != nil {
		return q.FailWriteBuffer
	}
	if err := q.Queue.WriteBuffer(buf, offset, data); err != nil {
		return err
	}
	q.Writes++
	return nil
}
