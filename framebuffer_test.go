package imdevice

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestDrawToFramebuffer(t *testing.T) {
	r := newTestRig(t)
	p := r.program(t)
	va := r.quad(t, p)

	tex, err := r.dev.CreateTexture(TextureFormatRGBA16F, image.Pt(32, 16))
	if err != nil {
		t.Fatal(err)
	}
	fb := r.dev.CreateFramebuffer(tex)
	drawQuad(t, r, &RenderState{Target: FramebufferTarget(fb), Program: p, VertexArray: va})

	pass := r.hal.Encoders[0].Passes[0]
	if pass.DepthStencilAttachment != nil {
		t.Error("framebuffer pass should have no depth/stencil attachment")
	}
	if got := r.hal.Pipelines[0].Fragment.Targets[0].Format; got != gputypes.TextureFormatRGBA16Float {
		t.Errorf("color format = %v, want rgba16float", got)
	}
	if !tex.Dirty() {
		t.Error("framebuffer texture should be marked dirty")
	}
	if r.dev.DestroyFramebuffer(fb) != tex {
		t.Error("DestroyFramebuffer should return the texture")
	}
}

func TestFramebufferRejectsDepthOptions(t *testing.T) {
	r := newTestRig(t)
	p := r.program(t)
	tex, err := r.dev.CreateTexture(TextureFormatRGBA8, image.Pt(8, 8))
	if err != nil {
		t.Fatal(err)
	}
	err = r.dev.DrawElements(6, &RenderState{
		Target:      FramebufferTarget(r.dev.CreateFramebuffer(tex)),
		Program:     p,
		VertexArray: r.quad(t, p),
		Options:     RenderOptions{Depth: &DepthState{Func: DepthFuncLess}},
	})
	if !errors.Is(err, ErrDepthOnFramebuffer) {
		t.Errorf("error = %v, want ErrDepthOnFramebuffer", err)
	}
	if len(r.hal.Pipelines) != 0 {
		t.Error("no pipeline should be built for a rejected draw")
	}
}
