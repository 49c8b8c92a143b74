package imdevice

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/imdevice/internal/format"
)

// VertexArray is the set of vertex buffers and the optional index buffer a
// draw reads. Draws read its state at call time; later changes affect only
// later draws.
type VertexArray struct {
	buffers []vertexBufferBinding
	index   *Buffer
}

type vertexBufferBinding struct {
	buffer     *Buffer
	stride     uint64
	stepMode   gputypes.VertexStepMode
	attributes []gputypes.VertexAttribute
}

// CreateVertexArray returns an empty vertex array.
func (d *Device) CreateVertexArray() *VertexArray {
	return &VertexArray{}
}

// BindBuffer binds buf to va. Each vertex binding occupies the next buffer
// slot; an index binding replaces the previous one. Storage buffers cannot
// be bound to a vertex array.
func (d *Device) BindBuffer(va *VertexArray, buf *Buffer, target BufferTarget) error {
	switch target {
	case BufferTargetVertex:
		va.bindVertexBuffer(buf)
	case BufferTargetIndex:
		va.bindIndexBuffer(buf)
	default:
		return unimplemented("binding " + target.String() + " buffers")
	}
	return nil
}

// ConfigureVertexAttribute describes attr within the vertex buffer at
// desc.BufferIndex. The buffer's stride and step mode are taken from desc,
// replacing earlier values; the attribute is appended to those already
// configured.
func (d *Device) ConfigureVertexAttribute(va *VertexArray, attr VertexAttr, desc VertexAttrDescriptor) error {
	return va.configureAttribute(attr, desc)
}

// VertexBufferCount returns the number of bound vertex buffers.
func (va *VertexArray) VertexBufferCount() int { return len(va.buffers) }

func (va *VertexArray) bindVertexBuffer(buf *Buffer) {
	va.buffers = append(va.buffers, vertexBufferBinding{
		buffer:   buf,
		stepMode: gputypes.VertexStepModeVertex,
	})
}

func (va *VertexArray) bindIndexBuffer(buf *Buffer) {
	va.index = buf
}

// configureAttribute validates desc completely before changing anything.
func (va *VertexArray) configureAttribute(attr VertexAttr, desc VertexAttrDescriptor) error {
	if int(desc.BufferIndex) >= len(va.buffers) {
		return fmt.Errorf("%w: index %d, %d bound", ErrUnboundBufferIndex, desc.BufferIndex, len(va.buffers))
	}
	var step gputypes.VertexStepMode
	switch desc.Divisor {
	case 0:
		step = gputypes.VertexStepModeVertex
	case 1:
		step = gputypes.VertexStepModeInstance
	default:
		return &UnsupportedDivisorError{Divisor: desc.Divisor}
	}
	f, err := format.VertexFormat(desc.Class, desc.Type, desc.Size)
	if err != nil {
		return unsupported(err)
	}
	if size := format.VertexFormatSize(f); desc.Stride != 0 && uint64(desc.Offset)+size > uint64(desc.Stride) {
		return fmt.Errorf("%w: offset %d size %d stride %d", ErrAttributeOutsideStride, desc.Offset, size, desc.Stride)
	}

	b := &va.buffers[desc.BufferIndex]
	b.stride = uint64(desc.Stride)
	b.stepMode = step
	b.attributes = append(b.attributes, gputypes.VertexAttribute{
		Format:         f,
		Offset:         uint64(desc.Offset),
		ShaderLocation: attr.Location,
	})
	return nil
}

// snapshot copies the vertex layouts in binding order.
func (va *VertexArray) snapshot() []gputypes.VertexBufferLayout {
	layouts := make([]gputypes.VertexBufferLayout, len(va.buffers))
	for i, b := range va.buffers {
		layouts[i] = gputypes.VertexBufferLayout{
			ArrayStride: b.stride,
			StepMode:    b.stepMode,
			Attributes:  append([]gputypes.VertexAttribute(nil), b.attributes...),
		}
	}
	return layouts
}
