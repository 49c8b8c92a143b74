package imdevice

import (
	"image"
	"testing"

	"github.com/gogpu/gputypes"
	nagaspirv "github.com/gogpu/naga/spirv"

	"github.com/gogpu/imdevice/internal/haltest"
)

type testRig struct {
	dev    *Device
	hal    *haltest.Device
	queue  *haltest.Queue
	target *OffscreenTarget
}

// newTestRig creates a device on the recording noop backend drawing into a
// 64x64 offscreen target.
func newTestRig(t *testing.T, opts ...Option) *testRig {
	t.Helper()
	halDev, queue := haltest.Open(t)
	target, err := NewOffscreenTarget(halDev, image.Pt(64, 64), gputypes.TextureFormatBGRA8Unorm)
	if err != nil {
		t.Fatalf("NewOffscreenTarget failed: %v", err)
	}
	dev, err := New(halDev, queue, target, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() {
		dev.Destroy()
		target.Destroy()
	})
	return &testRig{dev: dev, hal: halDev, queue: queue, target: target}
}

// vertexShaderBinary assembles a vertex shader whose interface declares
// aPosition at location 0, aColor at location 1, a builtin, and an
// unprefixed input.
func vertexShaderBinary(t *testing.T) []byte {
	t.Helper()
	b := nagaspirv.NewModuleBuilder(nagaspirv.Version1_3)
	b.AddCapability(nagaspirv.CapabilityShader)
	b.SetMemoryModel(nagaspirv.AddressingModelLogical, nagaspirv.MemoryModelGLSL450)

	voidType := b.AddTypeVoid()
	floatType := b.AddTypeFloat(32)
	vec2Type := b.AddTypeVector(floatType, 2)
	vec4Type := b.AddTypeVector(floatType, 4)
	vec2In := b.AddTypePointer(nagaspirv.StorageClassInput, vec2Type)
	vec4In := b.AddTypePointer(nagaspirv.StorageClassInput, vec4Type)
	floatIn := b.AddTypePointer(nagaspirv.StorageClassInput, floatType)
	funcType := b.AddTypeFunction(voidType)

	pos := b.AddVariable(vec2In, nagaspirv.StorageClassInput)
	b.AddName(pos, "aPosition")
	b.AddDecorate(pos, nagaspirv.DecorationLocation, 0)

	color := b.AddVariable(vec4In, nagaspirv.StorageClassInput)
	b.AddName(color, "aColor")
	b.AddDecorate(color, nagaspirv.DecorationLocation, 1)

	instance := b.AddVariable(floatIn, nagaspirv.StorageClassInput)
	b.AddName(instance, "aInstanceIndex")
	b.AddDecorate(instance, nagaspirv.DecorationBuiltIn, 43)

	other := b.AddVariable(floatIn, nagaspirv.StorageClassInput)
	b.AddName(other, "weight")
	b.AddDecorate(other, nagaspirv.DecorationLocation, 2)

	mainFunc := b.AddFunction(funcType, voidType, nagaspirv.FunctionControlNone)
	b.AddName(mainFunc, "main")
	b.AddLabel()
	b.AddReturn()
	b.AddFunctionEnd()
	b.AddEntryPoint(nagaspirv.ExecutionModelVertex, mainFunc, "main", []uint32{pos, color, instance, other})
	return b.Build()
}

// fragmentShaderBinary assembles a fragment shader with one color output.
func fragmentShaderBinary(t *testing.T) []byte {
	t.Helper()
	b := nagaspirv.NewModuleBuilder(nagaspirv.Version1_3)
	b.AddCapability(nagaspirv.CapabilityShader)
	b.SetMemoryModel(nagaspirv.AddressingModelLogical, nagaspirv.MemoryModelGLSL450)

	voidType := b.AddTypeVoid()
	vec4Type := b.AddTypeVector(b.AddTypeFloat(32), 4)
	vec4Out := b.AddTypePointer(nagaspirv.StorageClassOutput, vec4Type)
	funcType := b.AddTypeFunction(voidType)

	out := b.AddVariable(vec4Out, nagaspirv.StorageClassOutput)
	b.AddName(out, "fragColor")
	b.AddDecorate(out, nagaspirv.DecorationLocation, 0)

	mainFunc := b.AddFunction(funcType, voidType, nagaspirv.FunctionControlNone)
	b.AddName(mainFunc, "fs_main")
	b.AddLabel()
	b.AddReturn()
	b.AddFunctionEnd()
	b.AddEntryPoint(nagaspirv.ExecutionModelFragment, mainFunc, "fs_main", []uint32{out})
	b.AddExecutionMode(mainFunc, nagaspirv.ExecutionModeOriginUpperLeft)
	return b.Build()
}

func (r *testRig) program(t *testing.T) *Program {
	t.Helper()
	vs, err := r.dev.CreateShaderFromBinary("quad", vertexShaderBinary(t), ShaderKindVertex)
	if err != nil {
		t.Fatalf("vertex shader: %v", err)
	}
	fs, err := r.dev.CreateShaderFromBinary("quad", fragmentShaderBinary(t), ShaderKindFragment)
	if err != nil {
		t.Fatalf("fragment shader: %v", err)
	}
	p, err := r.dev.CreateProgram("quad", vs, fs)
	if err != nil {
		t.Fatalf("CreateProgram failed: %v", err)
	}
	return p
}

// quad builds a vertex array with 4 float2 vertices at buffer 0 and 6
// indices, attribute Position configured at location 0.
func (r *testRig) quad(t *testing.T, p *Program) *VertexArray {
	t.Helper()
	d := r.dev
	vertices := d.CreateBuffer(BufferUploadModeStatic)
	if err := d.AllocateBuffer(vertices, BufferMemory([]float32{0, 0, 1, 0, 1, 1, 0, 1}), BufferTargetVertex); err != nil {
		t.Fatalf("allocate vertices: %v", err)
	}
	indices := d.CreateBuffer(BufferUploadModeStatic)
	if err := d.AllocateBuffer(indices, BufferMemory([]uint32{0, 1, 2, 0, 2, 3}), BufferTargetIndex); err != nil {
		t.Fatalf("allocate indices: %v", err)
	}

	va := d.CreateVertexArray()
	if err := d.BindBuffer(va, vertices, BufferTargetVertex); err != nil {
		t.Fatal(err)
	}
	if err := d.BindBuffer(va, indices, BufferTargetIndex); err != nil {
		t.Fatal(err)
	}
	attr, ok := d.GetVertexAttribute(p, "Position")
	if !ok {
		t.Fatal("Position attribute not found")
	}
	err := d.ConfigureVertexAttribute(va, attr, VertexAttrDescriptor{
		Size:   2,
		Class:  VertexAttrClassFloat,
		Type:   VertexAttrTypeF32,
		Stride: 8,
	})
	if err != nil {
		t.Fatalf("ConfigureVertexAttribute failed: %v", err)
	}
	return va
}

func ptr[T any](v T) *T { return &v }
