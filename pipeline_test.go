package imdevice

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

func drawQuad(t *testing.T, r *testRig, state *RenderState) {
	t.Helper()
	if err := r.dev.DrawElements(6, state); err != nil {
		t.Fatalf("DrawElements failed: %v", err)
	}
}

func TestPipelinePerDrawWithoutCache(t *testing.T) {
	r := newTestRig(t)
	p := r.program(t)
	state := &RenderState{Program: p, VertexArray: r.quad(t, p)}

	drawQuad(t, r, state)
	drawQuad(t, r, state)

	if got := len(r.hal.Pipelines); got != 2 {
		t.Errorf("pipelines = %d, want 2", got)
	}
	if got := r.hal.PipelineLayouts; got != 2 {
		t.Errorf("layouts = %d, want 2", got)
	}
	if got := len(r.hal.Encoders[0].Passes); got != 2 {
		t.Errorf("passes = %d, want one per draw", got)
	}
}

func TestPipelineCacheReusesIdenticalState(t *testing.T) {
	r := newTestRig(t, WithPipelineCache(true))
	p := r.program(t)
	state := &RenderState{Program: p, VertexArray: r.quad(t, p)}

	drawQuad(t, r, state)
	drawQuad(t, r, state)
	state.Primitive = PrimitiveLines
	drawQuad(t, r, state)

	if got := len(r.hal.Pipelines); got != 2 {
		t.Errorf("pipelines = %d, want 2", got)
	}
	st := r.dev.Stats()
	if st.PipelineCacheHits != 1 || st.PipelinesBuilt != 2 {
		t.Errorf("stats = %+v, want 1 hit and 2 builds", st)
	}
}

func TestPipelineDefaults(t *testing.T) {
	r := newTestRig(t)
	p := r.program(t)
	drawQuad(t, r, &RenderState{Program: p, VertexArray: r.quad(t, p)})

	pd := r.hal.Pipelines[0]
	if pd.DepthStencil != nil {
		t.Error("pipeline without depth or stencil options should have no depth/stencil state")
	}
	target := pd.Fragment.Targets[0]
	if target.Blend == nil {
		t.Fatal("blend state not set")
	}
	want := gputypes.BlendComponent{
		SrcFactor: gputypes.BlendFactorOne,
		DstFactor: gputypes.BlendFactorZero,
		Operation: gputypes.BlendOperationAdd,
	}
	if target.Blend.Color != want || target.Blend.Alpha != want {
		t.Errorf("blend = %+v, want replacement", *target.Blend)
	}
	if target.WriteMask != gputypes.ColorWriteMaskAll {
		t.Errorf("write mask = %v, want all", target.WriteMask)
	}
	if pd.Primitive.Topology != gputypes.PrimitiveTopologyTriangleList ||
		pd.Primitive.FrontFace != gputypes.FrontFaceCW ||
		pd.Primitive.CullMode != gputypes.CullModeNone {
		t.Errorf("primitive = %+v", pd.Primitive)
	}
	if pd.Multisample.Count != 1 {
		t.Errorf("sample count = %d, want 1", pd.Multisample.Count)
	}
}

func TestBlendStateMapping(t *testing.T) {
	got, err := blendState(&BlendState{
		SrcRGBFactor:    BlendFactorSrcAlpha,
		DestRGBFactor:   BlendFactorOneMinusSrcAlpha,
		SrcAlphaFactor:  BlendFactorOne,
		DestAlphaFactor: BlendFactorOneMinusDestAlpha,
		Op:              BlendOpSubtract,
	})
	if err != nil {
		t.Fatalf("blendState failed: %v", err)
	}
	if got.Color.SrcFactor != gputypes.BlendFactorSrcAlpha ||
		got.Color.DstFactor != gputypes.BlendFactorOneMinusSrcAlpha ||
		got.Alpha.SrcFactor != gputypes.BlendFactorOne ||
		got.Alpha.DstFactor != gputypes.BlendFactorOneMinusDstAlpha {
		t.Errorf("factors = %+v", got)
	}
	if got.Color.Operation != gputypes.BlendOperationSubtract || got.Alpha.Operation != gputypes.BlendOperationSubtract {
		t.Errorf("operation = %v/%v, want subtract on both", got.Color.Operation, got.Alpha.Operation)
	}
}

func mustDepthStencil(t *testing.T, opts *RenderOptions) *hal.DepthStencilState {
	t.Helper()
	ds, err := depthStencilState(opts, gputypes.TextureFormatDepth24PlusStencil8)
	if err != nil {
		t.Fatalf("depthStencilState failed: %v", err)
	}
	return ds
}

func TestDepthStencilState(t *testing.T) {

	t.Run("none", func(t *testing.T) {
		if ds := mustDepthStencil(t, &RenderOptions{}); ds != nil {
			t.Errorf("got %+v, want nil", ds)
		}
	})

	t.Run("stencil only fails depth", func(t *testing.T) {
		ds := mustDepthStencil(t, &RenderOptions{
			Stencil: &StencilState{Func: StencilFuncEqual, Reference: 1, Mask: 0xFF},
		})
		if ds.DepthCompare != gputypes.CompareFunctionNever {
			t.Errorf("depth compare = %v, want never", ds.DepthCompare)
		}
		if ds.StencilFront.Compare != gputypes.CompareFunctionEqual {
			t.Errorf("stencil compare = %v, want equal", ds.StencilFront.Compare)
		}
		if ds.StencilFront.PassOp != hal.StencilOperationKeep || ds.StencilWriteMask != 0 {
			t.Errorf("read-only stencil writes: pass %v mask %#x", ds.StencilFront.PassOp, ds.StencilWriteMask)
		}
		if ds.StencilReadMask != 0xFF {
			t.Errorf("read mask = %#x, want 0xff", ds.StencilReadMask)
		}
	})

	t.Run("depth only ignores stencil", func(t *testing.T) {
		ds := mustDepthStencil(t, &RenderOptions{Depth: &DepthState{Func: DepthFuncLess, Write: true}})
		if ds.DepthCompare != gputypes.CompareFunctionLess || !ds.DepthWriteEnabled {
			t.Errorf("depth = %v write %v", ds.DepthCompare, ds.DepthWriteEnabled)
		}
		if ds.StencilFront != ignoreStencil || ds.StencilBack != ignoreStencil {
			t.Error("stencil faces should pass and keep")
		}
		if ds.StencilWriteMask != 0 {
			t.Errorf("write mask = %#x, want 0", ds.StencilWriteMask)
		}
	})

	t.Run("stencil write", func(t *testing.T) {
		ds := mustDepthStencil(t, &RenderOptions{
			Stencil: &StencilState{Func: StencilFuncAlways, Reference: 1, Mask: 0x0F, Write: true},
		})
		if ds.StencilFront.PassOp != hal.StencilOperationReplace {
			t.Errorf("pass op = %v, want replace", ds.StencilFront.PassOp)
		}
		if ds.StencilWriteMask != 0x0F {
			t.Errorf("write mask = %#x, want 0x0f", ds.StencilWriteMask)
		}
	})
}

func TestDrawRejectsUnknownEnums(t *testing.T) {
	tests := []struct {
		name  string
		state func(*RenderState)
	}{
		{"blend factor", func(s *RenderState) {
			s.Options.Blend = &BlendState{SrcRGBFactor: 42}
		}},
		{"dest alpha factor", func(s *RenderState) {
			s.Options.Blend = &BlendState{DestAlphaFactor: BlendFactorDestColor + 1}
		}},
		{"blend op", func(s *RenderState) {
			s.Options.Blend = &BlendState{Op: BlendOpMax + 1}
		}},
		{"depth func", func(s *RenderState) {
			s.Options.Depth = &DepthState{Func: 9}
		}},
		{"stencil func", func(s *RenderState) {
			s.Options.Stencil = &StencilState{Func: 9}
		}},
		{"primitive", func(s *RenderState) {
			s.Primitive = 7
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRig(t)
			p := r.program(t)
			state := &RenderState{Program: p, VertexArray: r.quad(t, p)}
			tt.state(state)
			textures := len(r.hal.TexturesCreated)

			err := r.dev.DrawElements(6, state)
			if !errors.Is(err, ErrUnsupported) {
				t.Fatalf("DrawElements error = %v, want ErrUnsupported", err)
			}
			if got := len(r.hal.Pipelines); got != 0 {
				t.Errorf("pipelines = %d, want none built", got)
			}
			if got := len(r.hal.TexturesCreated); got != textures {
				t.Errorf("textures created = %d, want %d", got, textures)
			}
		})
	}
}

func TestRenderPassLoadOps(t *testing.T) {
	r := newTestRig(t)
	p := r.program(t)
	va := r.quad(t, p)

	drawQuad(t, r, &RenderState{Program: p, VertexArray: va})
	drawQuad(t, r, &RenderState{
		Program:     p,
		VertexArray: va,
		Options: RenderOptions{ClearOps: ClearOps{
			Depth:   ptr(float32(1)),
			Stencil: ptr(uint8(0)),
		}},
	})

	passes := r.hal.Encoders[0].Passes
	load := passes[0]
	if load.ColorAttachments[0].LoadOp != gputypes.LoadOpLoad {
		t.Error("color should load without a clear color")
	}
	if ds := load.DepthStencilAttachment; ds == nil || ds.DepthLoadOp != gputypes.LoadOpLoad || ds.StencilLoadOp != gputypes.LoadOpLoad {
		t.Errorf("depth/stencil should load: %+v", ds)
	}

	clr := passes[1]
	ds := clr.DepthStencilAttachment
	if ds.DepthLoadOp != gputypes.LoadOpClear || ds.DepthClearValue != 1 {
		t.Errorf("depth = %v %v, want clear to 1", ds.DepthLoadOp, ds.DepthClearValue)
	}
	if ds.StencilLoadOp != gputypes.LoadOpClear || ds.StencilClearValue != 0 {
		t.Errorf("stencil = %v %v, want clear to 0", ds.StencilLoadOp, ds.StencilClearValue)
	}
	if clr.ColorAttachments[0].LoadOp != gputypes.LoadOpLoad {
		t.Error("color should still load")
	}
}

func TestDisableColorWrite(t *testing.T) {
	r := newTestRig(t)
	p := r.program(t)
	drawQuad(t, r, &RenderState{
		Program:     p,
		VertexArray: r.quad(t, p),
		Options:     RenderOptions{DisableColorWrite: true},
	})
	if got := r.hal.Pipelines[0].Fragment.Targets[0].WriteMask; got != gputypes.ColorWriteMaskNone {
		t.Errorf("write mask = %v, want none", got)
	}
}
