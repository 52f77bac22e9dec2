package mir

import "github.com/nkucc/mirbackend/internal/types"

// RegID is the identifier half of a Register: a monotone per-function
// virtual-register counter value for virtuals, or a target-defined integer
// for physicals.
type RegID uint32

// Register is a triple (id, type, isVirtual). Two registers are equal iff
// all three fields match; registers are ordered lexicographically by
// (isVirtual, id, type), which is the order regalloc.LinearScan uses to
// break ties deterministically.
type Register struct {
	ID        RegID
	Type      *types.DataType
	IsVirtual bool
}

// Less orders registers by (isVirtual, id, type).
func (r Register) Less(o Register) bool {
	if r.IsVirtual != o.IsVirtual {
		// Physical registers (isVirtual=false) sort before virtuals, so
		// pre-colored registers always compare least.
		return !r.IsVirtual
	}
	if r.ID != o.ID {
		return r.ID < o.ID
	}
	return regTypeRank(r.Type) < regTypeRank(o.Type)
}

func regTypeRank(t *types.DataType) int {
	switch t.Kind() {
	case types.KindInt:
		return 0
	case types.KindFloat:
		return 1
	default:
		return 2
	}
}

// Class reports the register class (int vs float) used to partition
// allocation pools. Token-typed registers never reach the allocator.
type Class uint8

const (
	ClassInvalid Class = iota
	ClassInt
	ClassFloat
)

func (r Register) Class() Class {
	switch r.Type.Kind() {
	case types.KindInt:
		return ClassInt
	case types.KindFloat:
		return ClassFloat
	default:
		return ClassInvalid
	}
}

func (c Class) String() string {
	if c == ClassFloat {
		return "float"
	}
	return "int"
}
