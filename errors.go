package imdevice

import (
	"errors"
	"fmt"

	"github.com/gogpu/imdevice/internal/format"
	"github.com/gogpu/imdevice/internal/lazy"
)

// Error categories. Every error returned by this package wraps exactly one
// of them, so callers can tell a caller bug from a missing feature with
// errors.Is.
var (
	// ErrUsage is wrapped by errors caused by the caller violating a
	// precondition.
	ErrUsage = errors.New("imdevice: usage error")

	// ErrUnsupported is wrapped by errors reporting a combination outside
	// the supported enumeration.
	ErrUnsupported = errors.New("imdevice: unsupported")

	// ErrNative is wrapped by errors returned from the GPU API.
	ErrNative = errors.New("imdevice: native resource error")

	// ErrUnimplemented is returned by capabilities that are not available.
	ErrUnimplemented = errors.New("imdevice: capability not implemented")
)

// Usage errors.
var (
	// ErrUnboundBufferIndex is returned when an attribute is configured for
	// a buffer index that has no bound vertex buffer.
	ErrUnboundBufferIndex = fmt.Errorf("%w: attribute configured for unbound buffer index", ErrUsage)

	// ErrAttributeOutsideStride is returned when an attribute does not fit
	// inside the vertex stride of its buffer. A zero stride is not checked.
	ErrAttributeOutsideStride = fmt.Errorf("%w: vertex attribute extends past stride", ErrUsage)

	// ErrNoIndexBuffer is returned by indexed draws on a vertex array
	// without an index buffer.
	ErrNoIndexBuffer = fmt.Errorf("%w: no index buffer bound", ErrUsage)

	// ErrBufferNotAllocated is returned when a buffer is used before
	// AllocateBuffer.
	ErrBufferNotAllocated = fmt.Errorf("%w: buffer %w", ErrUsage, lazy.ErrNotInitialized)

	// ErrTextureDataMismatch is returned when upload data does not match
	// the texture format or the upload rectangle.
	ErrTextureDataMismatch = fmt.Errorf("%w: texture data/format/size mismatch", ErrUsage)

	// ErrBufferRange is returned when a buffer upload does not fit.
	ErrBufferRange = fmt.Errorf("%w: buffer upload out of range", ErrUsage)

	// ErrDestroyed is returned by operations on a destroyed device.
	ErrDestroyed = fmt.Errorf("%w: device destroyed", ErrUsage)

	// ErrDepthOnFramebuffer is returned when depth or stencil options are
	// used with a framebuffer target, which has no depth attachment.
	ErrDepthOnFramebuffer = fmt.Errorf("%w: depth/stencil options need the default target", ErrUsage)
)

// ErrMalformedShader is returned for shader binaries whose length is not a
// whole number of words or whose structure cannot be decoded.
var ErrMalformedShader = fmt.Errorf("%w: malformed shader binary", ErrNative)

// UnsupportedVertexFormatError reports an attribute class/type/count triple
// with no native vertex format.
type UnsupportedVertexFormatError = format.UnsupportedVertexFormatError

// UnsupportedDivisorError reports an instancing divisor other than 0 or 1.
type UnsupportedDivisorError struct {
	Divisor uint32
}

func (e *UnsupportedDivisorError) Error() string {
	return fmt.Sprintf("imdevice: unsupported divisor %d", e.Divisor)
}

// Unwrap returns ErrUnsupported.
func (e *UnsupportedDivisorError) Unwrap() error { return ErrUnsupported }

// unsupported wraps a format mapping error so it matches ErrUnsupported
// while still unwrapping to the typed payload.
func unsupported(err error) error {
	return fmt.Errorf("%w: %w", ErrUnsupported, err)
}

func nativeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrNative, op, err)
}

func unimplemented(what string) error {
	return fmt.Errorf("%w: %s", ErrUnimplemented, what)
}
