package imdevice

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestUploadToTexture(t *testing.T) {
	r := newTestRig(t)
	tex, err := r.dev.CreateTexture(TextureFormatRGBA8, image.Pt(8, 8))
	if err != nil {
		t.Fatal(err)
	}

	rect := image.Rect(2, 3, 6, 5)
	if err := r.dev.UploadToTexture(tex, rect, TextureDataU8(make([]uint8, 4*2*4))); err != nil {
		t.Fatalf("UploadToTexture failed: %v", err)
	}
	copies := r.hal.Encoders[0].Copies
	if len(copies) != 1 {
		t.Fatalf("copies = %d, want 1", len(copies))
	}
	c := copies[0]
	if c.TextureBase.Origin.X != 2 || c.TextureBase.Origin.Y != 3 || c.TextureBase.MipLevel != 0 {
		t.Errorf("copy base = %+v", c.TextureBase)
	}
	if c.Size.Width != 4 || c.Size.Height != 2 {
		t.Errorf("copy size = %+v, want 4x2", c.Size)
	}
	if c.BufferLayout.BytesPerRow != copyBytesPerRowAlignment {
		t.Errorf("bytes per row = %d, want %d", c.BufferLayout.BytesPerRow, copyBytesPerRowAlignment)
	}
	if got := r.dev.Stats().TextureUploads; got != 1 {
		t.Errorf("TextureUploads = %d, want 1", got)
	}
}

func TestUploadToTextureMismatch(t *testing.T) {
	r := newTestRig(t)
	tex, err := r.dev.CreateTexture(TextureFormatR16F, image.Pt(4, 4))
	if err != nil {
		t.Fatal(err)
	}
	full := image.Rect(0, 0, 4, 4)

	tests := []struct {
		name string
		rect image.Rectangle
		data TextureData
	}{
		{"wrong component", full, TextureDataU8(make([]uint8, 16))},
		{"wrong length", full, TextureDataF16(make([]uint16, 15))},
		{"outside texture", image.Rect(2, 2, 6, 6), TextureDataF16(make([]uint16, 16))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.dev.UploadToTexture(tex, tt.rect, tt.data)
			if !errors.Is(err, ErrTextureDataMismatch) {
				t.Errorf("error = %v, want ErrTextureDataMismatch", err)
			}
		})
	}
	if got := len(r.hal.Encoders[0].Copies); got != 0 {
		t.Errorf("copies = %d, want none after rejected uploads", got)
	}
}

func TestCreateTextureFromImage(t *testing.T) {
	r := newTestRig(t)
	img := image.NewNRGBA(image.Rect(10, 10, 13, 12))
	img.Set(10, 10, color.NRGBA{R: 255, A: 255})

	tex, err := r.dev.CreateTextureFromImage(img)
	if err != nil {
		t.Fatalf("CreateTextureFromImage failed: %v", err)
	}
	if tex.Size() != image.Pt(3, 2) || tex.Format() != TextureFormatRGBA8 {
		t.Errorf("texture = %v %v, want 3x2 rgba8", tex.Size(), tex.Format())
	}
	if got := len(r.hal.Encoders[0].Copies); got != 1 {
		t.Errorf("copies = %d, want 1", got)
	}
}

func TestCreateTextureFromSubImage(t *testing.T) {
	r := newTestRig(t)
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for _, rect := range []image.Rectangle{image.Rect(0, 0, 4, 2), image.Rect(0, 1, 4, 3)} {
		sub := img.SubImage(rect)
		tex, err := r.dev.CreateTextureFromImage(sub)
		if err != nil {
			t.Fatalf("CreateTextureFromImage(%v) failed: %v", rect, err)
		}
		if tex.Size() != image.Pt(4, 2) {
			t.Errorf("texture size = %v, want 4x2", tex.Size())
		}
	}
}

func TestUploadToTextureWriteFailure(t *testing.T) {
	r := newTestRig(t)
	tex, err := r.dev.CreateTexture(TextureFormatRGBA8, image.Pt(2, 2))
	if err != nil {
		t.Fatal(err)
	}
	r.queue.FailWriteBuffer = errors.New("device lost")
	destroyed := r.hal.BuffersDestroyed

	err = r.dev.UploadToTexture(tex, image.Rect(0, 0, 2, 2), TextureDataU8(make([]uint8, 16)))
	if !errors.Is(err, ErrNative) {
		t.Errorf("error = %v, want ErrNative", err)
	}
	if got := len(r.hal.Encoders[0].Copies); got != 0 {
		t.Errorf("copies = %d, want none", got)
	}
	if got := r.hal.BuffersDestroyed; got != destroyed+1 {
		t.Errorf("staging buffers destroyed = %d, want 1", got-destroyed)
	}
	if got := r.dev.Stats().TextureUploads; got != 0 {
		t.Errorf("TextureUploads = %d, want 0", got)
	}
}

func TestCreateTextureEmptySize(t *testing.T) {
	r := newTestRig(t)
	_, err := r.dev.CreateTexture(TextureFormatRGBA8, image.Pt(0, 4))
	if !errors.Is(err, ErrNative) {
		t.Errorf("error = %v, want ErrNative", err)
	}
}

func TestSamplerTable(t *testing.T) {
	r := newTestRig(t)

	seen := make(map[string]bool)
	for i := range samplingFlagCombinations {
		flags := TextureSamplingFlags(i)
		if r.dev.Sampler(flags) == nil {
			t.Fatalf("sampler %d is nil", i)
		}
		d := r.dev.samplers.descs[i]
		key := d.Label
		if seen[key] {
			t.Fatalf("duplicate sampler %s", key)
		}
		seen[key] = true
	}

	d := samplerDescriptor(SamplingRepeatU | SamplingNearestMin)
	if d.AddressModeU != gputypes.AddressModeRepeat || d.AddressModeV != gputypes.AddressModeClampToEdge {
		t.Errorf("address modes = %v/%v", d.AddressModeU, d.AddressModeV)
	}
	if d.MinFilter != gputypes.FilterModeNearest || d.MagFilter != gputypes.FilterModeLinear {
		t.Errorf("filters = min %v mag %v", d.MinFilter, d.MagFilter)
	}

	tex, err := r.dev.CreateTexture(TextureFormatR8, image.Pt(2, 2))
	if err != nil {
		t.Fatal(err)
	}
	r.dev.SetTextureSamplingMode(tex, SamplingRepeatV|SamplingNearestMag)
	if tex.SamplingFlags() != SamplingRepeatV|SamplingNearestMag {
		t.Errorf("sampling flags = %v", tex.SamplingFlags())
	}
}
