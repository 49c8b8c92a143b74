package imdevice

import (
	"fmt"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/imdevice/internal/lazy"
)

// Buffer is a GPU buffer whose storage is created by AllocateBuffer.
// A Buffer holds at most one allocation at a time.
type Buffer struct {
	mode  BufferUploadMode
	alloc lazy.Cell[bufferAllocation]
}

type bufferAllocation struct {
	raw    hal.Buffer
	size   uint64
	target BufferTarget
}

// Size returns the allocated size in bytes and whether the buffer is
// allocated.
func (b *Buffer) Size() (uint64, bool) {
	a, err := b.alloc.Get()
	if err != nil {
		return 0, false
	}
	return a.size, true
}

// Mode returns the upload mode the buffer was created with.
func (b *Buffer) Mode() BufferUploadMode { return b.mode }

func (b *Buffer) allocation() (bufferAllocation, error) {
	a, err := b.alloc.Get()
	if err != nil {
		return bufferAllocation{}, ErrBufferNotAllocated
	}
	return a, nil
}

// BufferData is the initial content of an allocation: either a size with
// undefined contents, or bytes to copy in.
type BufferData struct {
	size  uint64
	bytes []byte
}

// BufferUninitialized is size bytes of undefined content.
func BufferUninitialized(size uint64) BufferData {
	return BufferData{size: size}
}

// BufferBytes copies b into the allocation.
func BufferBytes(b []byte) BufferData {
	return BufferData{size: uint64(len(b)), bytes: b}
}

// BufferMemory copies the in-memory representation of data into the
// allocation. T must not contain pointers.
func BufferMemory[T any](data []T) BufferData {
	if len(data) == 0 {
		return BufferData{}
	}
	var zero T
	n := uintptr(len(data)) * unsafe.Sizeof(zero)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), n) //nolint:gosec // plain-data slice view
	return BufferData{size: uint64(n), bytes: b}
}

// Size returns the length of the data in bytes.
func (d BufferData) Size() uint64 { return d.size }

// align4 rounds n up to the copy alignment of buffers.
func align4(n uint64) uint64 {
	return (n + 3) &^ 3
}

// padded returns b extended with zeros to a multiple of four bytes.
func padded(b []byte) []byte {
	n := align4(uint64(len(b)))
	if n == uint64(len(b)) {
		return b
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

// CreateBuffer declares a buffer. No GPU memory is allocated until
// AllocateBuffer.
func (d *Device) CreateBuffer(mode BufferUploadMode) *Buffer {
	return &Buffer{mode: mode}
}

// AllocateBuffer creates storage for buf sized and filled from data, usable
// as target. If buf already has storage, the new allocation replaces it and
// the old one is destroyed once the GPU has finished every submission that
// may reference it.
func (d *Device) AllocateBuffer(buf *Buffer, data BufferData, target BufferTarget) error {
	if d.destroyed {
		return ErrDestroyed
	}
	size := align4(data.size)
	if size == 0 {
		size = 4
	}
	raw, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: d.label("buffer_" + target.String()),
		Size:  size,
		Usage: target.usage(),
	})
	if err != nil {
		return nativeErr("create buffer", err)
	}
	if data.bytes != nil {
		if err := d.queue.WriteBuffer(raw, 0, padded(data.bytes)); err != nil {
			d.device.DestroyBuffer(raw)
			return nativeErr("write buffer", err)
		}
	}

	prev, replaced := buf.alloc.InitializeOrReplace(bufferAllocation{raw: raw, size: size, target: target})
	if replaced {
		d.retire(retiredResource{buffer: prev.raw})
	}
	d.log.Debug("imdevice: allocate buffer", "target", target.String(), "size", size, "replaced", replaced)
	return nil
}

// UploadToBuffer writes data into buf at offset. The offset must be a
// multiple of four and the data must fit the current allocation.
//
// The data is staged and the copy is recorded into the open recording, so
// draws recorded before the upload still read the previous contents.
func (d *Device) UploadToBuffer(buf *Buffer, offset uint64, data BufferData) error {
	if d.destroyed {
		return ErrDestroyed
	}
	a, err := buf.allocation()
	if err != nil {
		return err
	}
	size := align4(data.size)
	if offset%4 != 0 || offset > a.size || size > a.size-offset {
		return fmt.Errorf("%w: %d bytes at offset %d into %d-byte buffer", ErrBufferRange, data.size, offset, a.size)
	}
	if data.bytes == nil || size == 0 {
		return nil
	}

	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: d.label("buffer_staging"),
		Size:  size,
		Usage: gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nativeErr("create staging buffer", err)
	}
	if err := d.queue.WriteBuffer(staging, 0, padded(data.bytes)); err != nil {
		d.device.DestroyBuffer(staging)
		return nativeErr("write buffer", err)
	}
	d.stream.Current().CopyBufferToBuffer(staging, a.raw, []hal.BufferCopy{{
		SrcOffset: 0,
		DstOffset: offset,
		Size:      size,
	}})
	d.retire(retiredResource{buffer: staging})
	d.stats.BufferUploads++
	return nil
}

// DestroyBuffer releases buf's storage once the GPU is done with it. The
// buffer returns to the unallocated state and may be allocated again.
func (d *Device) DestroyBuffer(buf *Buffer) {
	if a, ok := buf.alloc.Take(); ok {
		d.retire(retiredResource{buffer: a.raw})
	}
}
