// Package format maps the adapter's logical vertex and texture formats onto
// gputypes enumerations.
package format

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
)

// ErrUnsupportedVertexFormat is wrapped by every UnsupportedVertexFormatError.
var ErrUnsupportedVertexFormat = errors.New("format: unsupported vertex attribute format")

// AttrClass is how the shader interprets an attribute's components.
type AttrClass uint8

const (
	// Float components are read as-is. Only F32 storage is accepted.
	Float AttrClass = iota
	// FloatNorm components are integers normalized to [0,1] or [-1,1].
	FloatNorm
	// Int components are read as integers.
	Int
)

func (c AttrClass) String() string {
	switch c {
	case Float:
		return "Float"
	case FloatNorm:
		return "FloatNorm"
	case Int:
		return "Int"
	default:
		return fmt.Sprintf("AttrClass(%d)", uint8(c))
	}
}

// AttrType is the storage type of one attribute component.
type AttrType uint8

const (
	I8 AttrType = iota
	I16
	U8
	U16
	F32
)

func (t AttrType) String() string {
	switch t {
	case I8:
		return "I8"
	case I16:
		return "I16"
	case U8:
		return "U8"
	case U16:
		return "U16"
	case F32:
		return "F32"
	default:
		return fmt.Sprintf("AttrType(%d)", uint8(t))
	}
}

// Size returns the byte size of one component.
func (t AttrType) Size() int {
	switch t {
	case I8, U8:
		return 1
	case I16, U16:
		return 2
	case F32:
		return 4
	default:
		return 0
	}
}

// UnsupportedVertexFormatError reports a class/type/count triple that has no
// native vertex format.
type UnsupportedVertexFormatError struct {
	Class AttrClass
	Type  AttrType
	Count int
}

func (e *UnsupportedVertexFormatError) Error() string {
	return fmt.Sprintf("%v: %v/%v/%d", ErrUnsupportedVertexFormat, e.Class, e.Type, e.Count)
}

// Unwrap returns ErrUnsupportedVertexFormat.
func (e *UnsupportedVertexFormatError) Unwrap() error { return ErrUnsupportedVertexFormat }

// pair holds the two- and four-component variants of a packed format.
// One- and three-component requests are padded up to the next variant, so
// the shader sees extra trailing components it must ignore.
type pair struct {
	x2, x4 gputypes.VertexFormat
}

type key struct {
	class AttrClass
	typ   AttrType
}

var packed = map[key]pair{
	{Int, I8}:        {gputypes.VertexFormatSint8x2, gputypes.VertexFormatSint8x4},
	{Int, U8}:        {gputypes.VertexFormatUint8x2, gputypes.VertexFormatUint8x4},
	{Int, I16}:       {gputypes.VertexFormatSint16x2, gputypes.VertexFormatSint16x4},
	{Int, U16}:       {gputypes.VertexFormatUint16x2, gputypes.VertexFormatUint16x4},
	{FloatNorm, I8}:  {gputypes.VertexFormatSnorm8x2, gputypes.VertexFormatSnorm8x4},
	{FloatNorm, U8}:  {gputypes.VertexFormatUnorm8x2, gputypes.VertexFormatUnorm8x4},
	{FloatNorm, I16}: {gputypes.VertexFormatSnorm16x2, gputypes.VertexFormatSnorm16x4},
	{FloatNorm, U16}: {gputypes.VertexFormatUnorm16x2, gputypes.VertexFormatUnorm16x4},
}

var float32Formats = [...]gputypes.VertexFormat{
	gputypes.VertexFormatFloat32,
	gputypes.VertexFormatFloat32x2,
	gputypes.VertexFormatFloat32x3,
	gputypes.VertexFormatFloat32x4,
}

// VertexFormat returns the native format for count components of typ
// interpreted as class. Unsupported combinations return an
// *UnsupportedVertexFormatError.
func VertexFormat(class AttrClass, typ AttrType, count int) (gputypes.VertexFormat, error) {
	if count >= 1 && count <= 4 {
		if class == Float && typ == F32 {
			return float32Formats[count-1], nil
		}
		if p, ok := packed[key{class, typ}]; ok {
			if count <= 2 {
				return p.x2, nil
			}
			return p.x4, nil
		}
	}
	return 0, &UnsupportedVertexFormatError{Class: class, Type: typ, Count: count}
}

// VertexFormatSize returns the byte size of a native vertex format produced
// by VertexFormat, or 0 for formats outside that set.
func VertexFormatSize(f gputypes.VertexFormat) uint64 {
	switch f {
	case gputypes.VertexFormatSint8x2, gputypes.VertexFormatUint8x2,
		gputypes.VertexFormatSnorm8x2, gputypes.VertexFormatUnorm8x2:
		return 2
	case gputypes.VertexFormatSint8x4, gputypes.VertexFormatUint8x4,
		gputypes.VertexFormatSnorm8x4, gputypes.VertexFormatUnorm8x4,
		gputypes.VertexFormatSint16x2, gputypes.VertexFormatUint16x2,
		gputypes.VertexFormatSnorm16x2, gputypes.VertexFormatUnorm16x2,
		gputypes.VertexFormatFloat32:
		return 4
	case gputypes.VertexFormatSint16x4, gputypes.VertexFormatUint16x4,
		gputypes.VertexFormatSnorm16x4, gputypes.VertexFormatUnorm16x4,
		gputypes.VertexFormatFloat32x2:
		return 8
	case gputypes.VertexFormatFloat32x3:
		return 12
	case gputypes.VertexFormatFloat32x4:
		return 16
	default:
		return 0
	}
}
