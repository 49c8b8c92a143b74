package imdevice

import (
	"image"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/imdevice/internal/format"
)

// TextureFormat is a logical texture pixel format.
type TextureFormat = format.Texture

// Texture formats.
const (
	TextureFormatR8      = format.R8
	TextureFormatR16F    = format.R16F
	TextureFormatRGBA8   = format.RGBA8
	TextureFormatRGBA16F = format.RGBA16F
	TextureFormatRGBA32F = format.RGBA32F
)

// VertexAttrClass is how a shader interprets vertex attribute components.
type VertexAttrClass = format.AttrClass

// Vertex attribute classes.
const (
	VertexAttrClassFloat     = format.Float
	VertexAttrClassFloatNorm = format.FloatNorm
	VertexAttrClassInt       = format.Int
)

// VertexAttrType is the storage type of vertex attribute components.
type VertexAttrType = format.AttrType

// Vertex attribute component types.
const (
	VertexAttrTypeI8  = format.I8
	VertexAttrTypeI16 = format.I16
	VertexAttrTypeU8  = format.U8
	VertexAttrTypeU16 = format.U16
	VertexAttrTypeF32 = format.F32
)

// BufferTarget is what a buffer is bound as.
type BufferTarget uint8

const (
	BufferTargetVertex BufferTarget = iota
	BufferTargetIndex
	BufferTargetStorage
)

func (t BufferTarget) String() string {
	switch t {
	case BufferTargetVertex:
		return "vertex"
	case BufferTargetIndex:
		return "index"
	case BufferTargetStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// usage returns the native buffer usage for t. Every buffer can also be
// copied to and from.
func (t BufferTarget) usage() gputypes.BufferUsage {
	var u gputypes.BufferUsage
	switch t {
	case BufferTargetVertex:
		u = gputypes.BufferUsageVertex
	case BufferTargetIndex:
		u = gputypes.BufferUsageIndex
	case BufferTargetStorage:
		u = gputypes.BufferUsageStorage
	}
	return u | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst
}

// BufferUploadMode hints how often a buffer's contents change. It does not
// alter allocation.
type BufferUploadMode uint8

const (
	BufferUploadModeStatic BufferUploadMode = iota
	BufferUploadModeDynamic
)

// ShaderKind is the pipeline stage of a shader.
type ShaderKind uint8

const (
	ShaderKindVertex ShaderKind = iota
	ShaderKindFragment
	ShaderKindCompute
)

func (k ShaderKind) String() string {
	switch k {
	case ShaderKindVertex:
		return "vertex"
	case ShaderKindFragment:
		return "fragment"
	case ShaderKindCompute:
		return "compute"
	default:
		return "unknown"
	}
}

// suffix returns the file-name infix used by CreateShader.
func (k ShaderKind) suffix() string {
	switch k {
	case ShaderKindVertex:
		return "vs"
	case ShaderKindFragment:
		return "fs"
	default:
		return "cs"
	}
}

// Primitive is the topology of a draw.
type Primitive uint8

const (
	PrimitiveTriangles Primitive = iota
	PrimitiveLines
)

// BlendFactor is a blend equation multiplier.
type BlendFactor uint8

const (
	BlendFactorZero BlendFactor = iota
	BlendFactorOne
	BlendFactorSrcAlpha
	BlendFactorOneMinusSrcAlpha
	BlendFactorDestAlpha
	BlendFactorOneMinusDestAlpha
	BlendFactorDestColor
)

// BlendOp combines the weighted source and destination.
type BlendOp uint8

const (
	BlendOpAdd BlendOp = iota
	BlendOpSubtract
	BlendOpReverseSubtract
	BlendOpMin
	BlendOpMax
)

// BlendState describes color and alpha blending. Op applies to both.
type BlendState struct {
	SrcRGBFactor    BlendFactor
	DestRGBFactor   BlendFactor
	SrcAlphaFactor  BlendFactor
	DestAlphaFactor BlendFactor
	Op              BlendOp
}

// DepthFunc is the depth comparison.
type DepthFunc uint8

const (
	DepthFuncLess DepthFunc = iota
	DepthFuncAlways
)

// DepthState enables the depth test.
type DepthState struct {
	Func  DepthFunc
	Write bool
}

// StencilFunc is the stencil comparison.
type StencilFunc uint8

const (
	StencilFuncAlways StencilFunc = iota
	StencilFuncEqual
)

// StencilState enables the stencil test. When Write is set, passing
// fragments store Reference masked by Mask.
type StencilState struct {
	Func      StencilFunc
	Reference uint32
	Mask      uint32
	Write     bool
}

// ClearOps selects which attachments a render pass clears. Nil fields load
// the existing contents.
type ClearOps struct {
	Color   *gputypes.Color
	Depth   *float32
	Stencil *uint8
}

// HasOps reports whether any attachment is cleared.
func (c ClearOps) HasOps() bool {
	return c.Color != nil || c.Depth != nil || c.Stencil != nil
}

// RenderOptions is the fixed-function state of a draw. Nil Blend means
// opaque replacement. Depth and Stencil are tested only when set.
type RenderOptions struct {
	Blend    *BlendState
	Depth    *DepthState
	Stencil  *StencilState
	ClearOps ClearOps

	// DisableColorWrite masks off every color channel.
	DisableColorWrite bool
}

// RenderTarget selects where a draw lands. The zero value is the default
// swap target.
type RenderTarget struct {
	Framebuffer *Framebuffer
}

// FramebufferTarget returns a RenderTarget drawing into fb.
func FramebufferTarget(fb *Framebuffer) RenderTarget {
	return RenderTarget{Framebuffer: fb}
}

// IsDefault reports whether t is the default swap target.
func (t RenderTarget) IsDefault() bool { return t.Framebuffer == nil }

// UniformBinding assigns a value to a uniform.
type UniformBinding struct {
	Uniform Uniform
	Value   any
}

// TextureBinding binds a sampled texture by shader parameter name.
type TextureBinding struct {
	Name    string
	Texture *Texture
}

// ImageAccess is how a storage image is accessed.
type ImageAccess uint8

const (
	ImageAccessRead ImageAccess = iota
	ImageAccessWrite
	ImageAccessReadWrite
)

// ImageBinding binds a storage image by shader parameter name.
type ImageBinding struct {
	Name    string
	Texture *Texture
	Access  ImageAccess
}

// StorageBinding binds a storage buffer by shader parameter name.
type StorageBinding struct {
	Name   string
	Buffer *Buffer
}

// RenderState is everything a draw reads. It is consumed by the draw call
// and never retained.
type RenderState struct {
	Target      RenderTarget
	Program     *Program
	VertexArray *VertexArray
	Primitive   Primitive
	Viewport    image.Rectangle
	Options     RenderOptions

	// Resource bindings are not implemented. A draw with any of them set
	// returns ErrUnimplemented.
	Uniforms       []UniformBinding
	Textures       []TextureBinding
	Images         []ImageBinding
	StorageBuffers []StorageBinding
}

// VertexAttr is a resolved vertex shader input.
type VertexAttr struct {
	Location uint32
}

// VertexAttrDescriptor describes one attribute inside a bound vertex buffer.
// Divisor 0 advances per vertex and 1 per instance.
type VertexAttrDescriptor struct {
	Size        int
	Class       VertexAttrClass
	Type        VertexAttrType
	Stride      uint32
	Offset      uint32
	Divisor     uint32
	BufferIndex uint32
}

// TextureSamplingFlags selects wrapping and filtering for a texture.
type TextureSamplingFlags uint8

const (
	SamplingRepeatU TextureSamplingFlags = 1 << iota
	SamplingRepeatV
	SamplingNearestMag
	SamplingNearestMin
)

// samplingFlagCombinations is the size of the sampler table.
const samplingFlagCombinations = 16

// FeatureLevel is the capability tier the device reports.
type FeatureLevel uint8

const (
	FeatureLevelD3D10 FeatureLevel = iota
	FeatureLevelD3D11
)
