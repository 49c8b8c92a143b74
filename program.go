package imdevice

import (
	"fmt"
	"io/fs"
)

// Program is an immutable vertex and fragment shader pair.
type Program struct {
	id       uint64
	name     string
	vertex   *Shader
	fragment *Shader
}

// Name returns the program name.
func (p *Program) Name() string { return p.name }

// Vertex returns the vertex shader.
func (p *Program) Vertex() *Shader { return p.vertex }

// Fragment returns the fragment shader.
func (p *Program) Fragment() *Shader { return p.fragment }

// Uniform is a resolved uniform parameter. Uniform resolution is not
// implemented, so no Uniform is ever returned by GetUniform.
type Uniform struct {
	Name string
}

// CreateProgram pairs a vertex and a fragment shader.
func (d *Device) CreateProgram(name string, vertex, fragment *Shader) (*Program, error) {
	if d.destroyed {
		return nil, ErrDestroyed
	}
	if vertex == nil || vertex.kind != ShaderKindVertex {
		return nil, fmt.Errorf("%w: program %s: vertex stage is not a vertex shader", ErrUsage, name)
	}
	if fragment == nil || fragment.kind != ShaderKindFragment {
		return nil, fmt.Errorf("%w: program %s: fragment stage is not a fragment shader", ErrUsage, name)
	}
	d.nextProgramID++
	return &Program{id: d.nextProgramID, name: name, vertex: vertex, fragment: fragment}, nil
}

// LoadProgram loads the vertex and fragment shaders called name from fsys
// and pairs them.
func (d *Device) LoadProgram(fsys fs.FS, name string) (*Program, error) {
	vs, err := d.CreateShader(fsys, name, ShaderKindVertex)
	if err != nil {
		return nil, err
	}
	fsh, err := d.CreateShader(fsys, name, ShaderKindFragment)
	if err != nil {
		d.DestroyShader(vs)
		return nil, err
	}
	return d.CreateProgram(name, vs, fsh)
}

// CreateComputeProgram is not implemented.
func (d *Device) CreateComputeProgram(name string, compute *Shader) (*Program, error) {
	return nil, unimplemented("compute program " + name)
}

// GetVertexAttribute resolves a vertex input by its unprefixed name.
func (d *Device) GetVertexAttribute(p *Program, name string) (VertexAttr, bool) {
	loc, ok := p.vertex.attributes[name]
	if !ok {
		return VertexAttr{}, false
	}
	return VertexAttr{Location: loc}, true
}

// GetUniform is not implemented. It always returns ErrUnimplemented.
func (d *Device) GetUniform(p *Program, name string) (Uniform, error) {
	return Uniform{}, unimplemented("uniform " + name)
}
