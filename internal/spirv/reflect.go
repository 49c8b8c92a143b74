// Package spirv extracts the interface variables of a SPIR-V module.
//
// Only the handful of instructions needed to recover input locations are
// decoded: OpEntryPoint, OpName, OpDecorate and OpVariable. Everything else
// is skipped by word count.
package spirv

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Magic is the SPIR-V magic number in host word order.
const Magic = 0x07230203

const headerWords = 5

// Opcodes and operands understood by Reflect.
const (
	opName       = 5
	opEntryPoint = 15
	opVariable   = 59
	opDecorate   = 71

	decorationBuiltIn  = 11
	decorationLocation = 30

	storageClassInput  = 1
	storageClassOutput = 3
)

// ExecutionModel identifies the pipeline stage of an entry point.
type ExecutionModel uint32

const (
	ExecutionModelVertex    ExecutionModel = 0
	ExecutionModelFragment  ExecutionModel = 4
	ExecutionModelGLCompute ExecutionModel = 5
)

var (
	// ErrMalformed is returned for binaries that are not word aligned or
	// contain truncated instructions.
	ErrMalformed = errors.New("spirv: malformed module")

	// ErrBadMagic is returned when the first word is not the SPIR-V magic
	// number in either byte order.
	ErrBadMagic = errors.New("spirv: bad magic number")
)

// EntryPoint is one OpEntryPoint of the module.
type EntryPoint struct {
	Model ExecutionModel
	Name  string
}

// Variable is an Input or Output interface variable. HasLocation is false
// for variables without a Location decoration.
type Variable struct {
	ID          uint32
	Name        string
	Location    uint32
	HasLocation bool
	BuiltIn     bool
}

// Module is the reflected interface of a SPIR-V binary.
type Module struct {
	Words       []uint32
	EntryPoints []EntryPoint
	Inputs      []Variable
	Outputs     []Variable
}

// Words decodes binary into SPIR-V words, detecting the byte order from
// the magic number.
func Words(binary []byte) ([]uint32, error) {
	if len(binary)%4 != 0 {
		return nil, fmt.Errorf("%w: length %d is not a multiple of 4", ErrMalformed, len(binary))
	}
	if len(binary) < headerWords*4 {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrMalformed, len(binary))
	}
	order := byteOrder(binary)
	if order == nil {
		return nil, ErrBadMagic
	}
	words := make([]uint32, len(binary)/4)
	for i := range words {
		words[i] = order.Uint32(binary[i*4:])
	}
	return words, nil
}

func byteOrder(b []byte) binary.ByteOrder {
	switch {
	case binary.LittleEndian.Uint32(b) == Magic:
		return binary.LittleEndian
	case binary.BigEndian.Uint32(b) == Magic:
		return binary.BigEndian
	default:
		return nil
	}
}

// Reflect decodes binary and collects its entry points and interface
// variables in declaration order.
func Reflect(binary []byte) (*Module, error) {
	words, err := Words(binary)
	if err != nil {
		return nil, err
	}

	names := make(map[uint32]string)
	locations := make(map[uint32]uint32)
	builtins := make(map[uint32]bool)
	type decl struct {
		id, class uint32
	}
	var vars []decl
	m := &Module{Words: words}

	for pc := headerWords; pc < len(words); {
		count := int(words[pc] >> 16)
		op := words[pc] & 0xFFFF
		if count == 0 || pc+count > len(words) {
			return nil, fmt.Errorf("%w: truncated instruction at word %d", ErrMalformed, pc)
		}
		operands := words[pc+1 : pc+count]

		switch op {
		case opName:
			if len(operands) >= 1 {
				names[operands[0]] = literalString(operands[1:])
			}
		case opEntryPoint:
			if len(operands) >= 2 {
				m.EntryPoints = append(m.EntryPoints, EntryPoint{
					Model: ExecutionModel(operands[0]),
					Name:  literalString(operands[2:]),
				})
			}
		case opDecorate:
			if len(operands) >= 2 {
				switch operands[1] {
				case decorationLocation:
					if len(operands) >= 3 {
						locations[operands[0]] = operands[2]
					}
				case decorationBuiltIn:
					builtins[operands[0]] = true
				}
			}
		case opVariable:
			if len(operands) >= 3 {
				vars = append(vars, decl{id: operands[1], class: operands[2]})
			}
		}
		pc += count
	}

	for _, d := range vars {
		if d.class != storageClassInput && d.class != storageClassOutput {
			continue
		}
		loc, hasLoc := locations[d.id]
		v := Variable{
			ID:          d.id,
			Name:        names[d.id],
			Location:    loc,
			HasLocation: hasLoc,
			BuiltIn:     builtins[d.id],
		}
		if d.class == storageClassInput {
			m.Inputs = append(m.Inputs, v)
		} else {
			m.Outputs = append(m.Outputs, v)
		}
	}
	return m, nil
}

// literalString decodes a nul-terminated UTF-8 literal packed into words.
func literalString(words []uint32) string {
	buf := make([]byte, 0, len(words)*4)
	for _, w := range words {
		for i := 0; i < 4; i++ {
			c := byte(w >> (8 * i))
			if c == 0 {
				return string(buf)
			}
			buf = append(buf, c)
		}
	}
	return string(buf)
}
