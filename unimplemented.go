package imdevice

import (
	"image"
	"time"
)

// TimerQuery is a GPU timestamp query. Timer queries are not implemented.
type TimerQuery struct{}

// Fence is a CPU-visible GPU progress marker. Fences are not implemented.
type Fence struct{}

// ComputeDimensions is the workgroup count of a compute dispatch.
type ComputeDimensions struct {
	X, Y, Z uint32
}

// CreateTimerQuery returns ErrUnimplemented.
func (d *Device) CreateTimerQuery() (*TimerQuery, error) {
	return nil, unimplemented("timer queries")
}

// BeginTimerQuery returns ErrUnimplemented.
func (d *Device) BeginTimerQuery(q *TimerQuery) error {
	return unimplemented("timer queries")
}

// EndTimerQuery returns ErrUnimplemented.
func (d *Device) EndTimerQuery(q *TimerQuery) error {
	return unimplemented("timer queries")
}

// TimerQueryResult returns ErrUnimplemented.
func (d *Device) TimerQueryResult(q *TimerQuery) (time.Duration, error) {
	return 0, unimplemented("timer queries")
}

// AddFence returns ErrUnimplemented.
func (d *Device) AddFence() (*Fence, error) {
	return nil, unimplemented("fences")
}

// WaitForFence returns ErrUnimplemented.
func (d *Device) WaitForFence(f *Fence) error {
	return unimplemented("fences")
}

// ReadPixels returns ErrUnimplemented.
func (d *Device) ReadPixels(target RenderTarget, rect image.Rectangle) (TextureData, error) {
	return TextureData{}, unimplemented("readback")
}

// ReadBuffer returns ErrUnimplemented.
func (d *Device) ReadBuffer(buf *Buffer, target BufferTarget, start, end uint64) ([]byte, error) {
	return nil, unimplemented("buffer readback")
}

// DispatchCompute returns ErrUnimplemented.
func (d *Device) DispatchCompute(dims ComputeDimensions, program *Program) error {
	return unimplemented("compute dispatch")
}

// GetStorageBuffer returns ErrUnimplemented.
func (d *Device) GetStorageBuffer(p *Program, name string, binding uint32) (StorageBinding, error) {
	return StorageBinding{}, unimplemented("storage buffer " + name)
}
