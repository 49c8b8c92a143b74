package imdevice

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// SwapTarget is the presentable surface the default render target draws
// into. The device reads View and Format when a draw targets it, calls
// Present and then Next at the end of every frame, and sizes its
// depth/stencil attachment from Size.
type SwapTarget interface {
	View() hal.TextureView
	Format() gputypes.TextureFormat
	Size() image.Point
	Present() error
	Next() error
}

// OffscreenTarget is a SwapTarget backed by a single texture. Present and
// Next only count calls.
type OffscreenTarget struct {
	device hal.Device
	tex    hal.Texture
	view   hal.TextureView
	size   image.Point
	format gputypes.TextureFormat

	Presents int
}

// NewOffscreenTarget creates a size-sized render texture of format f.
func NewOffscreenTarget(device hal.Device, size image.Point, f gputypes.TextureFormat) (*OffscreenTarget, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("%w: offscreen target: empty size %v", ErrUsage, size)
	}
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label: "offscreen_target",
		Size: hal.Extent3D{
			Width:              uint32(size.X), //nolint:gosec // checked positive
			Height:             uint32(size.Y), //nolint:gosec // checked positive
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        f,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, nativeErr("create offscreen target", err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: "offscreen_target_view"})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, nativeErr("create offscreen target view", err)
	}
	return &OffscreenTarget{device: device, tex: tex, view: view, size: size, format: f}, nil
}

// View returns the render view.
func (t *OffscreenTarget) View() hal.TextureView { return t.view }

// Format returns the texture format.
func (t *OffscreenTarget) Format() gputypes.TextureFormat { return t.format }

// Size returns the texture size.
func (t *OffscreenTarget) Size() image.Point { return t.size }

// Texture returns the backing texture, for copies out of the target.
func (t *OffscreenTarget) Texture() hal.Texture { return t.tex }

// Present counts the call.
func (t *OffscreenTarget) Present() error {
	t.Presents++
	return nil
}

// Next keeps the same view.
func (t *OffscreenTarget) Next() error { return nil }

// Destroy releases the texture. The GPU must be idle.
func (t *OffscreenTarget) Destroy() {
	if t.view != nil {
		t.device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		t.device.DestroyTexture(t.tex)
		t.tex = nil
	}
}
