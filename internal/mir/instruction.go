package mir

import "strings"

// InstrID is a stable per-function instruction identifier, used by passes that
// need to refer back to an instruction without holding a pointer across a
// list splice (e.g. regalloc's linear numbering).
type InstrID uint32

// Opcode is a target-close instruction kind. Real targets register their own
// opcodes above OpcodeTargetBase; the pseudo-opcodes below are understood by
// every pass in this module.
type Opcode uint16

const (
	OpcodeInvalid Opcode = iota
	OpcodeNop
	OpcodePhi
	OpcodeMove
	OpcodeFILoad
	OpcodeFIStore
	OpcodeFIAddr

	// OpcodeTargetBase is the first opcode value a target may assign to its
	// own real instructions.
	OpcodeTargetBase Opcode = 1000
)

// OperandRole partitions an instruction's operand slots into defs and uses.
// The partition is target-specific but every MInstruction still carries its operands as
// one ordered slice; Defs/Uses below are computed by the generic pseudo-
// instruction handling, while real instructions are queried through the
// adapter.
type OperandRole uint8

const (
	RoleUse OperandRole = iota
	RoleDef
)

// MInstruction is a machine instruction: a kind tag, operand slots, an
// optional comment, and a stable id.
type MInstruction struct {
	ID      InstrID
	Opcode  Opcode
	Mnemonic string // real-target mnemonic; pseudo-ops ignore this
	Operands []Operand
	Roles    []OperandRole // parallel to Operands; nil for pseudo-ops with fixed shape
	Comment  string

	// Phi is non-nil iff Opcode == OpcodePhi.
	Phi *PhiInst
}

// NewMove builds the pseudo MOVE dst <- src instruction.
func NewMove(id InstrID, dst, src Register) *MInstruction {
	return &MInstruction{
		ID:       id,
		Opcode:   OpcodeMove,
		Operands: []Operand{RegOperand(dst), RegOperand(src)},
		Roles:    []OperandRole{RoleDef, RoleUse},
	}
}

// NewFILoad builds the pseudo FILoad dst <- frame[index] instruction,
// materialized by frame lowering into a real load.
func NewFILoad(id InstrID, dst Register, index FrameIndex) *MInstruction {
	return &MInstruction{
		ID:       id,
		Opcode:   OpcodeFILoad,
		Operands: []Operand{RegOperand(dst), {Kind: OperandIntImm, IntImm: int64(index)}},
		Roles:    []OperandRole{RoleDef, RoleUse},
	}
}

// NewFIStore builds the pseudo FIStore frame[index] <- src instruction.
func NewFIStore(id InstrID, src Register, index FrameIndex) *MInstruction {
	return &MInstruction{
		ID:       id,
		Opcode:   OpcodeFIStore,
		Operands: []Operand{RegOperand(src), {Kind: OperandIntImm, IntImm: int64(index)}},
		Roles:    []OperandRole{RoleUse, RoleUse},
	}
}

// NewFIAddr builds the pseudo FIAddr dst <- &frame[index] instruction: the
// effective address of a frame slot, rather than its stored value.
func NewFIAddr(id InstrID, dst Register, index FrameIndex) *MInstruction {
	return &MInstruction{
		ID:       id,
		Opcode:   OpcodeFIAddr,
		Operands: []Operand{RegOperand(dst), {Kind: OperandIntImm, IntImm: int64(index)}},
		Roles:    []OperandRole{RoleDef, RoleUse},
	}
}

// MoveOperands returns the (dst, src) registers of a MOVE instruction.
func (i *MInstruction) MoveOperands() (dst, src Register) {
	return i.Operands[0].Reg, i.Operands[1].Reg
}

// FrameIndexOperand returns the frame index carried by a FILoad/FIStore/FIAddr.
func (i *MInstruction) FrameIndexOperand() FrameIndex {
	for _, o := range i.Operands {
		if o.Kind == OperandIntImm {
			return FrameIndex(o.IntImm)
		}
	}
	return InvalidFrameIndex
}

// IsPseudo reports whether this is one of the six pseudo-instructions that
// must be materialized or removed before emission.
func (i *MInstruction) IsPseudo() bool {
	switch i.Opcode {
	case OpcodeNop, OpcodePhi, OpcodeMove, OpcodeFILoad, OpcodeFIStore, OpcodeFIAddr:
		return true
	default:
		return false
	}
}

// String renders the instruction for the default pseudo-opcodes; emission of
// real instructions goes through the target's mnemonic table instead
//.
func (i *MInstruction) String() string {
	var b strings.Builder
	switch i.Opcode {
	case OpcodeNop:
		b.WriteString("NOP")
	case OpcodeMove:
		dst, src := i.MoveOperands()
		b.WriteString("MOVE ")
		b.WriteString(dst.String())
		b.WriteString(", ")
		b.WriteString(src.String())
	case OpcodePhi:
		b.WriteString(i.Phi.String())
	case OpcodeFILoad:
		dst := i.Operands[0].Reg
		b.WriteString("FILoad ")
		b.WriteString(dst.String())
		b.WriteString(", fi")
		b.WriteString(intImmString(int64(i.FrameIndexOperand())))
	case OpcodeFIStore:
		src := i.Operands[0].Reg
		b.WriteString("FIStore fi")
		b.WriteString(intImmString(int64(i.FrameIndexOperand())))
		b.WriteString(", ")
		b.WriteString(src.String())
	case OpcodeFIAddr:
		dst := i.Operands[0].Reg
		b.WriteString("FIAddr ")
		b.WriteString(dst.String())
		b.WriteString(", fi")
		b.WriteString(intImmString(int64(i.FrameIndexOperand())))
	default:
		b.WriteString(i.Mnemonic)
	}
	if i.Comment != "" {
		b.WriteString("\t# ")
		b.WriteString(i.Comment)
	}
	return b.String()
}

func (r Register) String() string {
	if r.IsVirtual {
		return vregString(r)
	}
	return pregString(r)
}

// PhiInst carries a destination Register and a map from predecessor blockId
// to source Operand. Invariant: the key set equals the
// predecessor set of the enclosing block; all sources and the destination
// share a single DataType.
type PhiInst struct {
	Dst     Register
	Sources map[BlockID]Operand
}

func (p *PhiInst) String() string {
	var b strings.Builder
	b.WriteString(p.Dst.String())
	b.WriteString(" = PHI(")
	first := true
	// Deterministic order: ascending predecessor blockId.
	for _, pred := range sortedBlockIDs(p.Sources) {
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(labelString(pred))
		b.WriteString(": ")
		b.WriteString(p.Sources[pred].String())
	}
	b.WriteString(")")
	return b.String()
}

func sortedBlockIDs(m map[BlockID]Operand) []BlockID {
	ids := make([]BlockID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	// Simple insertion sort: phi predecessor counts are small in practice.
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	return ids
}
