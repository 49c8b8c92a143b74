package imdevice

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/imdevice/internal/format"
)

// copyBytesPerRowAlignment is the row pitch alignment required for
// buffer-to-texture copies.
const copyBytesPerRowAlignment = 256

// Texture is a 2D, single-mip, single-sample GPU image.
type Texture struct {
	raw      hal.Texture
	view     hal.TextureView
	size     image.Point
	format   TextureFormat
	sampling TextureSamplingFlags
	dirty    bool
}

// Size returns the texture size in texels.
func (t *Texture) Size() image.Point { return t.size }

// Format returns the logical pixel format.
func (t *Texture) Format() TextureFormat { return t.format }

// SamplingFlags returns the sampling mode set by SetTextureSamplingMode.
func (t *Texture) SamplingFlags() TextureSamplingFlags { return t.sampling }

// Dirty reports whether the texture has been rendered to since the last
// ClearDirty.
func (t *Texture) Dirty() bool { return t.dirty }

// ClearDirty resets the dirty flag.
func (t *Texture) ClearDirty() { t.dirty = false }

// TextureData is pixel data for an upload. Half-float channels are carried
// as their IEEE 754 binary16 bit patterns.
type TextureData struct {
	component format.Component
	u8        []uint8
	f16       []uint16
	f32       []float32
}

// TextureDataU8 wraps 8-bit unsigned normalized channels.
func TextureDataU8(p []uint8) TextureData {
	return TextureData{component: format.ComponentU8, u8: p}
}

// TextureDataF16 wraps binary16 channels.
func TextureDataF16(p []uint16) TextureData {
	return TextureData{component: format.ComponentF16, f16: p}
}

// TextureDataF32 wraps 32-bit float channels.
func TextureDataF32(p []float32) TextureData {
	return TextureData{component: format.ComponentF32, f32: p}
}

// Len returns the number of channel values.
func (d TextureData) Len() int {
	switch d.component {
	case format.ComponentF16:
		return len(d.f16)
	case format.ComponentF32:
		return len(d.f32)
	default:
		return len(d.u8)
	}
}

func (d TextureData) bytes() []byte {
	switch d.component {
	case format.ComponentF16:
		if len(d.f16) == 0 {
			return nil
		}
		return unsafe.Slice((*byte)(unsafe.Pointer(&d.f16[0])), len(d.f16)*2) //nolint:gosec // plain-data slice view
	case format.ComponentF32:
		if len(d.f32) == 0 {
			return nil
		}
		return unsafe.Slice((*byte)(unsafe.Pointer(&d.f32[0])), len(d.f32)*4) //nolint:gosec // plain-data slice view
	default:
		return d.u8
	}
}

// CreateTexture allocates a texture of the given format and size.
func (d *Device) CreateTexture(f TextureFormat, size image.Point) (*Texture, error) {
	if d.destroyed {
		return nil, ErrDestroyed
	}
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("%w: create texture: empty size %v", ErrNative, size)
	}
	label := d.label("texture")
	raw, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label: label,
		Size: hal.Extent3D{
			Width:              uint32(size.X), //nolint:gosec // checked positive
			Height:             uint32(size.Y), //nolint:gosec // checked positive
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format.TextureFormat(f),
		Usage: gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst |
			gputypes.TextureUsageCopySrc | gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, nativeErr("create texture", err)
	}
	view, err := d.device.CreateTextureView(raw, &hal.TextureViewDescriptor{Label: label + "_view"})
	if err != nil {
		d.device.DestroyTexture(raw)
		return nil, nativeErr("create texture view", err)
	}
	d.stats.TexturesCreated++
	return &Texture{raw: raw, view: view, size: size, format: f}, nil
}

// CreateTextureFromData creates a texture and uploads data covering all of
// it.
func (d *Device) CreateTextureFromData(f TextureFormat, size image.Point, data TextureData) (*Texture, error) {
	if err := checkTextureData(f, image.Rectangle{Max: size}, data); err != nil {
		return nil, err
	}
	t, err := d.CreateTexture(f, size)
	if err != nil {
		return nil, err
	}
	if err := d.UploadToTexture(t, image.Rectangle{Max: size}, data); err != nil {
		d.DestroyTexture(t)
		return nil, err
	}
	return t, nil
}

// CreateTextureFromImage creates an RGBA8 texture from img.
func (d *Device) CreateTextureFromImage(img image.Image) (*Texture, error) {
	b := img.Bounds()
	n := 4 * b.Dx() * b.Dy()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) || rgba.Stride != 4*b.Dx() || len(rgba.Pix) < n {
		rgba = image.NewRGBA(image.Rectangle{Max: b.Size()})
		xdraw.Draw(rgba, rgba.Bounds(), img, b.Min, xdraw.Src)
	}
	return d.CreateTextureFromData(TextureFormatRGBA8, b.Size(), TextureDataU8(rgba.Pix[:n]))
}

// DestroyTexture releases t once the GPU is done with it.
func (d *Device) DestroyTexture(t *Texture) {
	if t == nil || t.raw == nil {
		return
	}
	d.retire(retiredResource{texture: t.raw, view: t.view})
	t.raw, t.view = nil, nil
}

// TextureSize returns the size of t.
func (d *Device) TextureSize(t *Texture) image.Point { return t.size }

// TextureFormat returns the format of t.
func (d *Device) TextureFormat(t *Texture) TextureFormat { return t.format }

// SetTextureSamplingMode sets how t is sampled.
func (d *Device) SetTextureSamplingMode(t *Texture, flags TextureSamplingFlags) {
	t.sampling = flags & (samplingFlagCombinations - 1)
}

// checkTextureData validates that data covers rect in the component type
// of f.
func checkTextureData(f TextureFormat, rect image.Rectangle, data TextureData) error {
	if data.component != format.ComponentOf(f) {
		return fmt.Errorf("%w: %v data for %v texture", ErrTextureDataMismatch, data.component, f)
	}
	want := rect.Dx() * rect.Dy() * format.Channels(f)
	if data.Len() != want {
		return fmt.Errorf("%w: got %d values, %v rect of %v needs %d",
			ErrTextureDataMismatch, data.Len(), rect.Size(), f, want)
	}
	return nil
}

// UploadToTexture copies data into rect of t. The data is packed into a
// staging buffer and the copy is recorded into the open recording, so it
// becomes visible to draws recorded after it once that recording is
// submitted.
func (d *Device) UploadToTexture(t *Texture, rect image.Rectangle, data TextureData) error {
	if d.destroyed {
		return ErrDestroyed
	}
	if t.raw == nil {
		return fmt.Errorf("%w: upload to destroyed texture", ErrUsage)
	}
	if rect.Empty() || !rect.In(image.Rectangle{Max: t.size}) {
		return fmt.Errorf("%w: rect %v outside %v texture", ErrTextureDataMismatch, rect, t.size)
	}
	if err := checkTextureData(t.format, rect, data); err != nil {
		return err
	}

	bpt := format.BytesPerTexel(t.format)
	width := uint32(rect.Dx())  //nolint:gosec // checked non-empty
	height := uint32(rect.Dy()) //nolint:gosec // checked non-empty
	rowBytes := width * bpt
	align := d.opts.stagingAlignment
	pitch := (rowBytes + align - 1) &^ (align - 1)

	src := data.bytes()
	staged := src
	if pitch != rowBytes {
		staged = make([]byte, int(pitch)*int(height))
		for row := 0; row < int(height); row++ {
			copy(staged[row*int(pitch):], src[row*int(rowBytes):(row+1)*int(rowBytes)])
		}
	}

	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: d.label("upload_staging"),
		Size:  align4(uint64(len(staged))),
		Usage: gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nativeErr("create staging buffer", err)
	}
	if err := d.queue.WriteBuffer(staging, 0, padded(staged)); err != nil {
		d.device.DestroyBuffer(staging)
		return nativeErr("write buffer", err)
	}

	d.stream.Current().CopyBufferToTexture(staging, t.raw, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: pitch, RowsPerImage: height},
		TextureBase: hal.ImageCopyTexture{
			Texture:  t.raw,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: uint32(rect.Min.X), Y: uint32(rect.Min.Y)}, //nolint:gosec // inside texture
			Aspect:   gputypes.TextureAspectAll,
		},
		Size: hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
	}})
	d.retire(retiredResource{buffer: staging})
	d.stats.TextureUploads++
	return nil
}
