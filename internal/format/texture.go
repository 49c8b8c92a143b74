package format

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// Texture is one of the logical pixel formats the device accepts.
type Texture uint8

const (
	R8 Texture = iota
	R16F
	RGBA8
	RGBA16F
	RGBA32F
)

func (f Texture) String() string {
	switch f {
	case R8:
		return "R8"
	case R16F:
		return "R16F"
	case RGBA8:
		return "RGBA8"
	case RGBA16F:
		return "RGBA16F"
	case RGBA32F:
		return "RGBA32F"
	default:
		return fmt.Sprintf("Texture(%d)", uint8(f))
	}
}

// Component is the scalar type a texel channel is stored as.
type Component uint8

const (
	ComponentU8 Component = iota
	ComponentF16
	ComponentF32
)

func (c Component) String() string {
	switch c {
	case ComponentU8:
		return "u8"
	case ComponentF16:
		return "f16"
	case ComponentF32:
		return "f32"
	default:
		return fmt.Sprintf("Component(%d)", uint8(c))
	}
}

// Size returns the byte size of one channel value.
func (c Component) Size() int {
	switch c {
	case ComponentU8:
		return 1
	case ComponentF16:
		return 2
	case ComponentF32:
		return 4
	default:
		return 0
	}
}

// TextureFormat maps f onto its native texture format.
func TextureFormat(f Texture) gputypes.TextureFormat {
	switch f {
	case R8:
		return gputypes.TextureFormatR8Unorm
	case R16F:
		return gputypes.TextureFormatR16Float
	case RGBA8:
		return gputypes.TextureFormatRGBA8Unorm
	case RGBA16F:
		return gputypes.TextureFormatRGBA16Float
	case RGBA32F:
		return gputypes.TextureFormatRGBA32Float
	default:
		return gputypes.TextureFormatUndefined
	}
}

// Channels returns the number of channels per texel.
func Channels(f Texture) int {
	switch f {
	case R8, R16F:
		return 1
	default:
		return 4
	}
}

// ComponentOf returns the channel storage type of f.
func ComponentOf(f Texture) Component {
	switch f {
	case R16F, RGBA16F:
		return ComponentF16
	case RGBA32F:
		return ComponentF32
	default:
		return ComponentU8
	}
}

// BytesPerTexel returns the size of one texel of f in bytes.
func BytesPerTexel(f Texture) uint32 {
	return uint32(Channels(f) * ComponentOf(f).Size()) //nolint:gosec // at most 16
}
