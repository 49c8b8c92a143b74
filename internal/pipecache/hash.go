package pipecache

import (
	"encoding/binary"
	"hash"
	"hash/fnv"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Description is everything that distinguishes one synthesized pipeline
// from another. Shaders are identified by the device-assigned program ID.
type Description struct {
	Program       uint64
	VertexBuffers []gputypes.VertexBufferLayout
	Topology      gputypes.PrimitiveTopology
	FrontFace     gputypes.FrontFace
	CullMode      gputypes.CullMode
	ColorFormat   gputypes.TextureFormat
	WriteMask     gputypes.ColorWriteMask
	Blend         *gputypes.BlendState
	DepthStencil  *hal.DepthStencilState
}

// Hash computes an FNV-1a hash of d.
//
//nolint:gosec // G115: counts are bounded by GPU limits
func Hash(d *Description) uint64 {
	h := fnv.New64a()

	hashWriteUint64(h, d.Program)

	hashWriteUint32(h, uint32(len(d.VertexBuffers)))
	for i := range d.VertexBuffers {
		layout := &d.VertexBuffers[i]
		hashWriteUint64(h, uint64(layout.ArrayStride))
		hashWriteUint32(h, uint32(layout.StepMode))
		hashWriteUint32(h, uint32(len(layout.Attributes)))
		for j := range layout.Attributes {
			attr := &layout.Attributes[j]
			hashWriteUint32(h, uint32(attr.ShaderLocation))
			hashWriteUint32(h, uint32(attr.Format))
			hashWriteUint64(h, uint64(attr.Offset))
		}
	}

	hashWriteUint32(h, uint32(d.Topology))
	hashWriteUint32(h, uint32(d.FrontFace))
	hashWriteUint32(h, uint32(d.CullMode))
	hashWriteUint32(h, uint32(d.ColorFormat))
	hashWriteUint32(h, uint32(d.WriteMask))

	if d.Blend != nil {
		hashWriteBool(h, true)
		hashWriteUint32(h, uint32(d.Blend.Color.SrcFactor))
		hashWriteUint32(h, uint32(d.Blend.Color.DstFactor))
		hashWriteUint32(h, uint32(d.Blend.Color.Operation))
		hashWriteUint32(h, uint32(d.Blend.Alpha.SrcFactor))
		hashWriteUint32(h, uint32(d.Blend.Alpha.DstFactor))
		hashWriteUint32(h, uint32(d.Blend.Alpha.Operation))
	} else {
		hashWriteBool(h, false)
	}

	if ds := d.DepthStencil; ds != nil {
		hashWriteBool(h, true)
		hashWriteUint32(h, uint32(ds.Format))
		hashWriteBool(h, ds.DepthWriteEnabled)
		hashWriteUint32(h, uint32(ds.DepthCompare))
		hashStencilFace(h, &ds.StencilFront)
		hashStencilFace(h, &ds.StencilBack)
		hashWriteUint32(h, uint32(ds.StencilReadMask))
		hashWriteUint32(h, uint32(ds.StencilWriteMask))
	} else {
		hashWriteBool(h, false)
	}

	return h.Sum64()
}

func hashStencilFace(h hash.Hash64, f *hal.StencilFaceState) {
	hashWriteUint32(h, uint32(f.Compare))
	hashWriteUint32(h, uint32(f.FailOp))
	hashWriteUint32(h, uint32(f.DepthFailOp))
	hashWriteUint32(h, uint32(f.PassOp))
}

func hashWriteUint32(h hash.Hash64, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, _ = h.Write(buf[:])
}

func hashWriteUint64(h hash.Hash64, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, _ = h.Write(buf[:])
}

func hashWriteBool(h hash.Hash64, v bool) {
	if v {
		_, _ = h.Write([]byte{1})
	} else {
		_, _ = h.Write([]byte{0})
	}
}
