// Package types defines the value-type descriptors shared by the machine IR
// and the selection DAG.
package types

// Kind classifies the payload a DataType describes.
type Kind uint8

const (
	// KindInvalid is the zero Kind and never appears on a constructed value.
	KindInvalid Kind = iota
	KindInt
	KindFloat
	KindToken
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindToken:
		return "token"
	default:
		return "invalid"
	}
}

// Width is the bit width of a DataType.
type Width uint8

const (
	WidthInvalid Width = iota
	B32
	B64
)

func (w Width) String() string {
	switch w {
	case B32:
		return "32"
	case B64:
		return "64"
	default:
		return "0"
	}
}

// DataType is a value-type descriptor (kind, width). DataTypes are immutable
// and compared by identity: the package exposes exactly the five canonical
// singletons below (plus PTR, an alias of I64), and nothing else constructs
// a *DataType.
type DataType struct {
	kind  Kind
	width Width
	name  string
}

func (t *DataType) Kind() Kind   { return t.kind }
func (t *DataType) Width() Width { return t.width }
func (t *DataType) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.name
}

// Bytes returns the storage size of the type in bytes.
func (t *DataType) Bytes() int {
	if t.width == B32 {
		return 4
	}
	return 8
}

// The five canonical singletons. Every DataType in the system is one of
// these pointers; equality is pointer equality.
var (
	I32   = &DataType{kind: KindInt, width: B32, name: "i32"}
	I64   = &DataType{kind: KindInt, width: B64, name: "i64"}
	F32   = &DataType{kind: KindFloat, width: B32, name: "f32"}
	F64   = &DataType{kind: KindFloat, width: B64, name: "f64"}
	Token = &DataType{kind: KindToken, width: B64, name: "token"}
)

// PTR is an alias of I64: pointers are INT/B64, sharing the same singleton
// rather than minting a second identity for the same bits.
var PTR = I64
