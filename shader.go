package imdevice

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/imdevice/internal/spirv"
)

// attributePrefix marks vertex shader inputs that are exposed as named
// attributes. "aPosition" is looked up as "Position".
const attributePrefix = "a"

// Shader is a compiled shader module.
type Shader struct {
	name       string
	kind       ShaderKind
	module     hal.ShaderModule
	entryPoint string
	attributes map[string]uint32
}

// Name returns the debug name the shader was created with.
func (s *Shader) Name() string { return s.name }

// Kind returns the pipeline stage of the shader.
func (s *Shader) Kind() ShaderKind { return s.kind }

// EntryPoint returns the entry point used for the shader's stage.
func (s *Shader) EntryPoint() string { return s.entryPoint }

// Attributes returns a copy of the vertex input table keyed by the input
// name without its prefix. It is empty for non-vertex shaders.
func (s *Shader) Attributes() map[string]uint32 {
	out := make(map[string]uint32, len(s.attributes))
	for k, v := range s.attributes {
		out[k] = v
	}
	return out
}

var executionModels = map[ShaderKind]spirv.ExecutionModel{
	ShaderKindVertex:   spirv.ExecutionModelVertex,
	ShaderKindFragment: spirv.ExecutionModelFragment,
	ShaderKindCompute:  spirv.ExecutionModelGLCompute,
}

// CreateShaderFromBinary creates a shader from a SPIR-V binary. For vertex
// shaders the input variables named with the attribute prefix are recorded
// for GetVertexAttribute; other inputs, including builtins, are not.
func (d *Device) CreateShaderFromBinary(name string, binary []byte, kind ShaderKind) (*Shader, error) {
	if d.destroyed {
		return nil, ErrDestroyed
	}
	if len(binary)%4 != 0 {
		return nil, fmt.Errorf("%w: %s: length %d is not a multiple of 4", ErrMalformedShader, name, len(binary))
	}
	mod, err := spirv.Reflect(binary)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedShader, name, err)
	}

	s := &Shader{
		name:       name,
		kind:       kind,
		entryPoint: "main",
		attributes: make(map[string]uint32),
	}
	for _, ep := range mod.EntryPoints {
		if ep.Model == executionModels[kind] {
			s.entryPoint = ep.Name
			break
		}
	}
	if kind == ShaderKindVertex {
		for _, in := range mod.Inputs {
			if in.BuiltIn || !in.HasLocation || !strings.HasPrefix(in.Name, attributePrefix) {
				continue
			}
			s.attributes[strings.TrimPrefix(in.Name, attributePrefix)] = in.Location
		}
	}

	module, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  d.label("shader_" + name),
		Source: hal.ShaderSource{SPIRV: mod.Words},
	})
	if err != nil {
		return nil, nativeErr("create shader module "+name, err)
	}
	s.module = module
	d.log.Debug("imdevice: shader created", "name", name, "kind", kind.String(), "attributes", len(s.attributes))
	return s, nil
}

// ShaderPath returns the resource path CreateShader reads for name and kind.
func ShaderPath(name string, kind ShaderKind) string {
	return path.Join("shaders", "spirv", name+"."+kind.suffix()+".spv")
}

// CreateShader loads shaders/spirv/{name}.{vs,fs}.spv from fsys and creates
// a shader from it.
func (d *Device) CreateShader(fsys fs.FS, name string, kind ShaderKind) (*Shader, error) {
	if kind == ShaderKindCompute {
		return nil, unimplemented("compute shaders")
	}
	p := ShaderPath(name, kind)
	binary, err := fs.ReadFile(fsys, p)
	if err != nil {
		return nil, fmt.Errorf("%w: read shader %s: %w", ErrUsage, p, err)
	}
	return d.CreateShaderFromBinary(name, binary, kind)
}

// DestroyShader releases the shader module. Programs using it must not be
// drawn with afterwards.
func (d *Device) DestroyShader(s *Shader) {
	if s.module != nil {
		d.device.DestroyShaderModule(s.module)
		s.module = nil
	}
}
