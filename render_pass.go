package imdevice

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// drawCall is the part of a draw that differs between draw entry points.
type drawCall struct {
	indexed   bool
	count     uint32
	instances uint32
}

// DrawIndexedInstanced draws instanceCount instances of the first
// indexCount indices of state's index buffer.
//
// Every call synthesizes its pipeline from state and opens its own render
// pass; nothing is reused between draws unless WithPipelineCache is set.
func (d *Device) DrawIndexedInstanced(indexCount, instanceCount uint32, state *RenderState) error {
	return d.draw(state, drawCall{indexed: true, count: indexCount, instances: instanceCount})
}

// DrawElements draws indexCount indices as a single instance.
func (d *Device) DrawElements(indexCount uint32, state *RenderState) error {
	return d.draw(state, drawCall{indexed: true, count: indexCount, instances: 1})
}

// DrawArrays draws vertexCount vertices without an index buffer.
func (d *Device) DrawArrays(vertexCount uint32, state *RenderState) error {
	return d.draw(state, drawCall{count: vertexCount, instances: 1})
}

// boundBuffers holds the allocations resolved for one draw.
type boundBuffers struct {
	vertex []hal.Buffer
	index  hal.Buffer
}

// resolveBuffers checks that every buffer the draw reads is allocated.
func resolveBuffers(va *VertexArray, indexed bool) (boundBuffers, error) {
	var bb boundBuffers
	if indexed {
		if va.index == nil {
			return bb, ErrNoIndexBuffer
		}
		a, err := va.index.allocation()
		if err != nil {
			return bb, fmt.Errorf("%w (index buffer)", err)
		}
		bb.index = a.raw
	}
	bb.vertex = make([]hal.Buffer, len(va.buffers))
	for i, b := range va.buffers {
		a, err := b.buffer.allocation()
		if err != nil {
			return bb, fmt.Errorf("%w (vertex buffer %d)", err, i)
		}
		bb.vertex[i] = a.raw
	}
	return bb, nil
}

func checkBindings(state *RenderState) error {
	switch {
	case len(state.Uniforms) > 0:
		return unimplemented("uniform binding")
	case len(state.Textures) > 0:
		return unimplemented("texture binding")
	case len(state.Images) > 0:
		return unimplemented("image binding")
	case len(state.StorageBuffers) > 0:
		return unimplemented("storage buffer binding")
	}
	return nil
}

// colorTarget is the resolved color attachment of a draw.
type colorTarget struct {
	view    hal.TextureView
	format  gputypes.TextureFormat
	size    image.Point
	texture *Texture
}

func (d *Device) resolveTarget(t RenderTarget) (colorTarget, error) {
	if t.IsDefault() {
		return colorTarget{
			view:   d.target.View(),
			format: d.target.Format(),
			size:   d.target.Size(),
		}, nil
	}
	tex := t.Framebuffer.texture
	if tex == nil || tex.raw == nil {
		return colorTarget{}, fmt.Errorf("%w: draw into destroyed framebuffer", ErrUsage)
	}
	return colorTarget{
		view:    tex.view,
		format:  d.nativeTextureFormat(tex.format),
		size:    tex.size,
		texture: tex,
	}, nil
}

func (d *Device) draw(state *RenderState, call drawCall) error {
	if d.destroyed {
		return ErrDestroyed
	}
	if state == nil || state.Program == nil || state.VertexArray == nil {
		return fmt.Errorf("%w: render state needs a program and a vertex array", ErrUsage)
	}
	if err := checkBindings(state); err != nil {
		return err
	}
	buffers, err := resolveBuffers(state.VertexArray, call.indexed)
	if err != nil {
		return err
	}
	target, err := d.resolveTarget(state.Target)
	if err != nil {
		return err
	}
	opts := &state.Options
	if !state.Target.IsDefault() && (opts.Depth != nil || opts.Stencil != nil) {
		return ErrDepthOnFramebuffer
	}
	desc, err := d.describePipeline(state, target.format)
	if err != nil {
		return err
	}
	if state.Target.IsDefault() {
		if err := d.ensureDepthStencil(target.size); err != nil {
			return err
		}
	}
	pipeline, err := d.pipelineFor(state.Program, desc)
	if err != nil {
		return err
	}

	pass := d.stream.Current().BeginRenderPass(d.renderPassDescriptor(state, target))
	d.stats.RenderPasses++
	if opts.ClearOps.Color != nil {
		d.stats.ClearedColorPasses++
	}

	pass.SetPipeline(pipeline)
	vp := state.Viewport
	if vp.Empty() {
		vp = image.Rectangle{Max: target.size}
	}
	pass.SetViewport(float32(vp.Min.X), float32(vp.Min.Y), float32(vp.Dx()), float32(vp.Dy()), 0, 1)
	if s := opts.Stencil; s != nil {
		pass.SetStencilReference(s.Reference)
	}
	for slot, buf := range buffers.vertex {
		pass.SetVertexBuffer(uint32(slot), buf, 0) //nolint:gosec // slot count bounded by GPU limits
	}
	if call.indexed {
		pass.SetIndexBuffer(buffers.index, gputypes.IndexFormatUint32, 0)
		pass.DrawIndexed(call.count, call.instances, 0, 0, 0)
	} else {
		pass.Draw(call.count, call.instances, 0, 0)
	}
	pass.End()
	d.stats.Draws++

	if target.texture != nil {
		target.texture.dirty = true
	}
	d.log.Debug("imdevice: draw",
		"indexed", call.indexed,
		"count", call.count,
		"instances", call.instances,
		"default_target", state.Target.IsDefault())
	return nil
}

// renderPassDescriptor attaches the color target and, for the default
// target only, the device depth/stencil attachment. Each attachment is
// cleared when state asks for it and loaded otherwise.
func (d *Device) renderPassDescriptor(state *RenderState, target colorTarget) *hal.RenderPassDescriptor {
	ops := state.Options.ClearOps
	color := hal.RenderPassColorAttachment{
		View:    target.view,
		LoadOp:  gputypes.LoadOpLoad,
		StoreOp: gputypes.StoreOpStore,
	}
	if ops.Color != nil {
		color.LoadOp = gputypes.LoadOpClear
		color.ClearValue = *ops.Color
	}
	desc := &hal.RenderPassDescriptor{
		Label:            d.label("render_pass"),
		ColorAttachments: []hal.RenderPassColorAttachment{color},
	}
	if !state.Target.IsDefault() {
		return desc
	}

	ds := &hal.RenderPassDepthStencilAttachment{
		View:           d.depth.view,
		DepthLoadOp:    gputypes.LoadOpLoad,
		DepthStoreOp:   gputypes.StoreOpStore,
		StencilLoadOp:  gputypes.LoadOpLoad,
		StencilStoreOp: gputypes.StoreOpStore,
	}
	if ops.Depth != nil {
		ds.DepthLoadOp = gputypes.LoadOpClear
		ds.DepthClearValue = *ops.Depth
	}
	if ops.Stencil != nil {
		ds.StencilLoadOp = gputypes.LoadOpClear
		ds.StencilClearValue = uint32(*ops.Stencil)
	}
	desc.DepthStencilAttachment = ds
	return desc
}
