// Package ir declares the read-only surface the backend consumes from the
// middle-end's SSA IR. The middle-end itself — parser, mem2reg, ADCE,
// DCE, the symbol table — is out of scope; this package exists
// only so internal/dag's builder has a concrete type to compile against.
package ir

import "github.com/nkucc/mirbackend/internal/types"

// BlockID identifies a block within a Function. Block 0 is the entry.
type BlockID uint32

// Opcode enumerates the IR instruction kinds the DAG builder understands.
type Opcode uint8

const (
	OpInvalid Opcode = iota
	OpConstInt
	OpConstFloat
	OpAdd
	OpSub
	OpMul
	OpSDiv
	OpUDiv
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpICmp
	OpLoad
	OpStore
	OpAlloca
	OpCall
	OpBr     // unconditional branch
	OpCondBr // conditional branch, falls through on false
	OpRet
	OpCopy
	// OpPhi represents an SSA phi node: its value is PhiSources()[pred] for
	// whichever predecessor control arrived from. Phis must be the leading
	// instructions of a Block, mirroring mir.Block's own "all phis precede
	// all non-phis" invariant one level up, in the IR. isel
	// translates OpPhi directly into a mir.PhiInst — it never reaches
	// internal/dag, since a phi's value isn't a data-flow computation
	// within the block that holds it.
	OpPhi
)

// Predicate enumerates ICmp comparison predicates.
type Predicate uint8

const (
	PredInvalid Predicate = iota
	PredEQ
	PredNE
	PredSLT
	PredSLE
	PredSGT
	PredSGE
	PredULT
	PredULE
	PredUGT
	PredUGE
)

// Swapped returns the predicate that holds after swapping operand order
//.
func (p Predicate) Swapped() Predicate {
	switch p {
	case PredSLT:
		return PredSGT
	case PredSGT:
		return PredSLT
	case PredSLE:
		return PredSGE
	case PredSGE:
		return PredSLE
	case PredULT:
		return PredUGT
	case PredUGT:
		return PredULT
	case PredULE:
		return PredUGE
	case PredUGE:
		return PredULE
	default:
		return p // EQ/NE unchanged
	}
}

// Value is anything the DAG builder can reference as an operand: a
// computed instruction result or a function parameter.
type Value interface {
	Type() *types.DataType
}

// Instruction is one SSA instruction. Branch/Ret instructions have no
// result Value (Type returns nil).
type Instruction interface {
	Value
	Opcode() Opcode
	Operands() []Value

	// Predicate is meaningful only for OpICmp.
	Predicate() Predicate
	// IntImmediate is meaningful for OpConstInt.
	IntImmediate() int64
	// FloatImmediate is meaningful for OpConstFloat.
	FloatImmediate() float32
	// Target is the unconditional branch target (OpBr), or the "taken"
	// target of a conditional branch (OpCondBr, which otherwise falls
	// through to the block whose id is the current block's id+1 —
	// consistent with mir.Block's fall-through convention).
	Target() BlockID
	// Name is a debug-only identifier, e.g. "%2".
	Name() string
	// PhiSources is meaningful only for OpPhi: the incoming value per
	// predecessor block id.
	PhiSources() map[BlockID]Value
}

// Block is one basic block of a Function's body.
type Block interface {
	ID() BlockID
	Instructions() []Instruction
}

// Function is one function body: parameters plus an ordered block list
// (block 0 is the entry).
type Function interface {
	Name() string
	Params() []Value
	Blocks() []Block
}

// Module is the top-level compilation unit handed to the backend.
type Module interface {
	Functions() []Function
}
