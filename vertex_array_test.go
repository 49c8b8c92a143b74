package imdevice

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestConfigureVertexAttribute(t *testing.T) {
	r := newTestRig(t)
	d := r.dev
	va := d.CreateVertexArray()
	buf := d.CreateBuffer(BufferUploadModeDynamic)
	if err := d.BindBuffer(va, buf, BufferTargetVertex); err != nil {
		t.Fatal(err)
	}

	t.Run("unbound index", func(t *testing.T) {
		err := d.ConfigureVertexAttribute(va, VertexAttr{Location: 0}, VertexAttrDescriptor{
			Size: 2, Class: VertexAttrClassFloat, Type: VertexAttrTypeF32, BufferIndex: 1,
		})
		if !errors.Is(err, ErrUnboundBufferIndex) || !errors.Is(err, ErrUsage) {
			t.Errorf("error = %v, want ErrUnboundBufferIndex", err)
		}
	})

	t.Run("divisor", func(t *testing.T) {
		err := d.ConfigureVertexAttribute(va, VertexAttr{Location: 0}, VertexAttrDescriptor{
			Size: 2, Class: VertexAttrClassFloat, Type: VertexAttrTypeF32, Divisor: 2,
		})
		var de *UnsupportedDivisorError
		if !errors.As(err, &de) || de.Divisor != 2 {
			t.Errorf("error = %v, want UnsupportedDivisorError{2}", err)
		}
		if !errors.Is(err, ErrUnsupported) {
			t.Error("divisor error should match ErrUnsupported")
		}
	})

	t.Run("format", func(t *testing.T) {
		err := d.ConfigureVertexAttribute(va, VertexAttr{Location: 0}, VertexAttrDescriptor{
			Size: 3, Class: VertexAttrClassInt, Type: VertexAttrTypeF32,
		})
		if !errors.Is(err, ErrUnsupported) {
			t.Errorf("error = %v, want ErrUnsupported", err)
		}
		var fe *UnsupportedVertexFormatError
		if !errors.As(err, &fe) || fe.Count != 3 {
			t.Errorf("error = %v, want format payload with count 3", err)
		}
	})

	t.Run("outside stride", func(t *testing.T) {
		err := d.ConfigureVertexAttribute(va, VertexAttr{Location: 0}, VertexAttrDescriptor{
			Size: 4, Class: VertexAttrClassFloat, Type: VertexAttrTypeF32, Stride: 16, Offset: 8,
		})
		if !errors.Is(err, ErrAttributeOutsideStride) || !errors.Is(err, ErrUsage) {
			t.Errorf("error = %v, want ErrAttributeOutsideStride", err)
		}
	})

	layouts := va.snapshot()
	if len(layouts[0].Attributes) != 0 {
		t.Fatalf("rejected configurations changed the layout: %+v", layouts[0])
	}

	if err := d.ConfigureVertexAttribute(va, VertexAttr{Location: 0}, VertexAttrDescriptor{
		Size: 2, Class: VertexAttrClassFloat, Type: VertexAttrTypeF32, Stride: 12,
	}); err != nil {
		t.Fatal(err)
	}
	if err := d.ConfigureVertexAttribute(va, VertexAttr{Location: 1}, VertexAttrDescriptor{
		Size: 4, Class: VertexAttrClassFloatNorm, Type: VertexAttrTypeU8, Stride: 16, Offset: 8, Divisor: 1,
	}); err != nil {
		t.Fatal(err)
	}

	got := va.snapshot()[0]
	if got.ArrayStride != 16 {
		t.Errorf("stride = %d, want the last configured 16", got.ArrayStride)
	}
	if got.StepMode != gputypes.VertexStepModeInstance {
		t.Errorf("step mode = %v, want instance", got.StepMode)
	}
	if len(got.Attributes) != 2 {
		t.Fatalf("attributes = %d, want 2", len(got.Attributes))
	}
	if a := got.Attributes[1]; a.Format != gputypes.VertexFormatUnorm8x4 || a.Offset != 8 || a.ShaderLocation != 1 {
		t.Errorf("second attribute = %+v", a)
	}
}

func TestVertexArraySnapshotIsCopy(t *testing.T) {
	r := newTestRig(t)
	p := r.program(t)
	va := r.quad(t, p)

	snap := va.snapshot()
	snap[0].Attributes[0].ShaderLocation = 7
	if va.snapshot()[0].Attributes[0].ShaderLocation != 0 {
		t.Error("snapshot aliases the vertex array state")
	}
}

func TestBindStorageBufferUnimplemented(t *testing.T) {
	r := newTestRig(t)
	err := r.dev.BindBuffer(r.dev.CreateVertexArray(), r.dev.CreateBuffer(BufferUploadModeStatic), BufferTargetStorage)
	if !errors.Is(err, ErrUnimplemented) {
		t.Errorf("error = %v, want ErrUnimplemented", err)
	}
}
