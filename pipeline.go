package imdevice

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/imdevice/internal/pipecache"
)

var blendFactors = [...]gputypes.BlendFactor{
	BlendFactorZero:              gputypes.BlendFactorZero,
	BlendFactorOne:               gputypes.BlendFactorOne,
	BlendFactorSrcAlpha:          gputypes.BlendFactorSrcAlpha,
	BlendFactorOneMinusSrcAlpha:  gputypes.BlendFactorOneMinusSrcAlpha,
	BlendFactorDestAlpha:         gputypes.BlendFactorDstAlpha,
	BlendFactorOneMinusDestAlpha: gputypes.BlendFactorOneMinusDstAlpha,
	BlendFactorDestColor:         gputypes.BlendFactorDst,
}

var blendOps = [...]gputypes.BlendOperation{
	BlendOpAdd:             gputypes.BlendOperationAdd,
	BlendOpSubtract:        gputypes.BlendOperationSubtract,
	BlendOpReverseSubtract: gputypes.BlendOperationReverseSubtract,
	BlendOpMin:             gputypes.BlendOperationMin,
	BlendOpMax:             gputypes.BlendOperationMax,
}

// replaceBlend writes the source unchanged on color and alpha.
var replaceBlend = gputypes.BlendState{
	Color: gputypes.BlendComponent{
		SrcFactor: gputypes.BlendFactorOne,
		DstFactor: gputypes.BlendFactorZero,
		Operation: gputypes.BlendOperationAdd,
	},
	Alpha: gputypes.BlendComponent{
		SrcFactor: gputypes.BlendFactorOne,
		DstFactor: gputypes.BlendFactorZero,
		Operation: gputypes.BlendOperationAdd,
	},
}

func blendFactor(f BlendFactor) (gputypes.BlendFactor, error) {
	if int(f) >= len(blendFactors) {
		return 0, fmt.Errorf("%w: blend factor %d", ErrUnsupported, f)
	}
	return blendFactors[f], nil
}

// blendState maps b onto native blend equations. Nil b yields replacement.
func blendState(b *BlendState) (gputypes.BlendState, error) {
	if b == nil {
		return replaceBlend, nil
	}
	if int(b.Op) >= len(blendOps) {
		return gputypes.BlendState{}, fmt.Errorf("%w: blend op %d", ErrUnsupported, b.Op)
	}
	var factors [4]gputypes.BlendFactor
	for i, f := range [4]BlendFactor{b.SrcRGBFactor, b.DestRGBFactor, b.SrcAlphaFactor, b.DestAlphaFactor} {
		nf, err := blendFactor(f)
		if err != nil {
			return gputypes.BlendState{}, err
		}
		factors[i] = nf
	}
	op := blendOps[b.Op]
	return gputypes.BlendState{
		Color: gputypes.BlendComponent{
			SrcFactor: factors[0],
			DstFactor: factors[1],
			Operation: op,
		},
		Alpha: gputypes.BlendComponent{
			SrcFactor: factors[2],
			DstFactor: factors[3],
			Operation: op,
		},
	}, nil
}

// ignoreStencil passes every fragment and never touches the stencil buffer.
var ignoreStencil = hal.StencilFaceState{
	Compare:     gputypes.CompareFunctionAlways,
	FailOp:      hal.StencilOperationKeep,
	DepthFailOp: hal.StencilOperationKeep,
	PassOp:      hal.StencilOperationKeep,
}

// depthStencilState returns the depth/stencil state for opts, or nil when
// neither test is enabled. A missing depth option fails every depth test;
// a missing stencil option leaves the stencil buffer untouched.
func depthStencilState(opts *RenderOptions, f gputypes.TextureFormat) (*hal.DepthStencilState, error) {
	if opts.Depth == nil && opts.Stencil == nil {
		return nil, nil
	}
	ds := &hal.DepthStencilState{
		Format:           f,
		DepthCompare:     gputypes.CompareFunctionNever,
		StencilFront:     ignoreStencil,
		StencilBack:      ignoreStencil,
		StencilReadMask:  0xFFFFFFFF,
		StencilWriteMask: 0,
	}
	if d := opts.Depth; d != nil {
		ds.DepthWriteEnabled = d.Write
		switch d.Func {
		case DepthFuncLess:
			ds.DepthCompare = gputypes.CompareFunctionLess
		case DepthFuncAlways:
			ds.DepthCompare = gputypes.CompareFunctionAlways
		default:
			return nil, fmt.Errorf("%w: depth func %d", ErrUnsupported, d.Func)
		}
	}
	if s := opts.Stencil; s != nil {
		face := ignoreStencil
		switch s.Func {
		case StencilFuncAlways:
		case StencilFuncEqual:
			face.Compare = gputypes.CompareFunctionEqual
		default:
			return nil, fmt.Errorf("%w: stencil func %d", ErrUnsupported, s.Func)
		}
		if s.Write {
			face.PassOp = hal.StencilOperationReplace
			ds.StencilWriteMask = s.Mask
		}
		ds.StencilFront, ds.StencilBack = face, face
		ds.StencilReadMask = s.Mask
	}
	return ds, nil
}

func topology(p Primitive) (gputypes.PrimitiveTopology, error) {
	switch p {
	case PrimitiveTriangles:
		return gputypes.PrimitiveTopologyTriangleList, nil
	case PrimitiveLines:
		return gputypes.PrimitiveTopologyLineList, nil
	}
	return 0, fmt.Errorf("%w: primitive %d", ErrUnsupported, p)
}

// describePipeline collects everything a draw's pipeline depends on. Enum
// values outside their declared range fail with ErrUnsupported.
func (d *Device) describePipeline(state *RenderState, colorFormat gputypes.TextureFormat) (*pipecache.Description, error) {
	blend, err := blendState(state.Options.Blend)
	if err != nil {
		return nil, err
	}
	ds, err := depthStencilState(&state.Options, d.opts.depthStencilFormat)
	if err != nil {
		return nil, err
	}
	topo, err := topology(state.Primitive)
	if err != nil {
		return nil, err
	}
	mask := gputypes.ColorWriteMaskAll
	if state.Options.DisableColorWrite {
		mask = gputypes.ColorWriteMaskNone
	}
	return &pipecache.Description{
		Program:       state.Program.id,
		VertexBuffers: state.VertexArray.snapshot(),
		Topology:      topo,
		FrontFace:     gputypes.FrontFaceCW,
		CullMode:      gputypes.CullModeNone,
		ColorFormat:   colorFormat,
		WriteMask:     mask,
		Blend:         &blend,
		DepthStencil:  ds,
	}, nil
}

// buildPipeline creates the layout and pipeline for desc. Bind group
// layouts are always empty.
func (d *Device) buildPipeline(prog *Program, desc *pipecache.Description) (pipecache.Entry, error) {
	layout, err := d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: d.label("pipeline_layout_" + prog.name),
	})
	if err != nil {
		return pipecache.Entry{}, nativeErr("create pipeline layout", err)
	}

	pipeline, err := d.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  d.label("pipeline_" + prog.name),
		Layout: layout,
		Vertex: hal.VertexState{
			Module:     prog.vertex.module,
			EntryPoint: prog.vertex.entryPoint,
			Buffers:    desc.VertexBuffers,
		},
		Fragment: &hal.FragmentState{
			Module:     prog.fragment.module,
			EntryPoint: prog.fragment.entryPoint,
			Targets: []gputypes.ColorTargetState{{
				Format:    desc.ColorFormat,
				Blend:     desc.Blend,
				WriteMask: desc.WriteMask,
			}},
		},
		DepthStencil: desc.DepthStencil,
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  desc.Topology,
			FrontFace: desc.FrontFace,
			CullMode:  desc.CullMode,
		},
	})
	if err != nil {
		d.device.DestroyPipelineLayout(layout)
		return pipecache.Entry{}, nativeErr("create render pipeline", err)
	}
	d.stats.PipelinesBuilt++
	return pipecache.Entry{Layout: layout, Pipeline: pipeline}, nil
}

// pipelineFor returns the pipeline for desc. Without the cache a new one
// is built and retired with the current recording.
func (d *Device) pipelineFor(prog *Program, desc *pipecache.Description) (hal.RenderPipeline, error) {
	if d.cache != nil {
		e, hit, err := d.cache.GetOrCreate(pipecache.Hash(desc), func() (pipecache.Entry, error) {
			return d.buildPipeline(prog, desc)
		})
		if err != nil {
			return nil, err
		}
		if hit {
			d.stats.PipelineCacheHits++
		}
		return e.Pipeline, nil
	}

	e, err := d.buildPipeline(prog, desc)
	if err != nil {
		return nil, err
	}
	d.retire(retiredResource{pipeline: e.Pipeline, layout: e.Layout})
	return e.Pipeline, nil
}
