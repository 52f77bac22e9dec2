package arm64

import (
	"fmt"
	"strconv"

	"github.com/nkucc/mirbackend/internal/legalize"
	"github.com/nkucc/mirbackend/internal/mir"
	"github.com/nkucc/mirbackend/internal/target"
)

func init() {
	target.RegisterFactory("aarch64", func() target.BackendTarget { return backendTarget{} })
}

// backendTarget implements target.BackendTarget for AAPCS64, grounded on
// backend/isa/arm64's split between lowering (selector.go/adapter.go here)
// and the assembly printer, narrowed to this module's textual rather than
// binary-encoded emission.
type backendTarget struct{}

func (backendTarget) Name() string                            { return "aarch64" }
func (backendTarget) Adapter() target.InstrAdapter             { return adapter{} }
func (backendTarget) RegInfo() target.RegInfo                  { return reginfo{} }
func (backendTarget) Selector() target.Selector                { return selector{} }

// ExtraLegalizeRules: none. This target's instruction set accepts every
// shape the core's mandatory ICmp canonicalization already produces (no
// further splitting, e.g. of wide immediates or unsupported widths, is
// needed for the operations this module selects).
func (backendTarget) ExtraLegalizeRules() []legalize.ExtraRule { return nil }

// frameBase is the register every frame-relative access is addressed from.
// Allocas, spills, and callee-saves are all sp-relative: the prologue's job
// is save link register, save callee-saved, adjust sp — no frame-pointer
// chain is maintained.
func frameBase() mir.Register { return xreg(regSP) }

// MaterializeFrameAccess replaces a FILoad/FIStore/FIAddr pseudo with a
// real sp-relative instruction, reusing the same operand shapes
// selector.go already produces for a non-folded load/store/address
// computation so EmitInstr needs no pseudo-aware special case.
func (backendTarget) MaterializeFrameAccess(ctx *mir.MContext, inst *mir.MInstruction, offset int32) *mir.MInstruction {
	switch inst.Opcode {
	case mir.OpcodeFILoad:
		dst := inst.Operands[0].Reg
		return &mir.MInstruction{
			ID:       ctx.NewInstrID(),
			Opcode:   opLDR,
			Mnemonic: "ldr",
			Operands: []mir.Operand{mir.RegOperand(dst), mir.RegOperand(frameBase()), mir.IntImmOperand(int64(offset))},
			Roles:    []mir.OperandRole{mir.RoleDef, mir.RoleUse, mir.RoleUse},
		}
	case mir.OpcodeFIStore:
		src := inst.Operands[0].Reg
		return &mir.MInstruction{
			ID:       ctx.NewInstrID(),
			Opcode:   opSTR,
			Mnemonic: "str",
			Operands: []mir.Operand{mir.RegOperand(src), mir.RegOperand(frameBase()), mir.IntImmOperand(int64(offset))},
			Roles:    []mir.OperandRole{mir.RoleUse, mir.RoleUse, mir.RoleUse},
		}
	case mir.OpcodeFIAddr:
		dst := inst.Operands[0].Reg
		return &mir.MInstruction{
			ID:       ctx.NewInstrID(),
			Opcode:   opADD,
			Mnemonic: "add",
			Operands: []mir.Operand{mir.RegOperand(dst), mir.RegOperand(frameBase()), mir.IntImmOperand(int64(offset))},
			Roles:    []mir.OperandRole{mir.RoleDef, mir.RoleUse, mir.RoleUse},
		}
	default:
		panic("BUG: arm64 MaterializeFrameAccess: not a frame-access pseudo")
	}
}

// frameReserve is the fixed extra space every frame carries beyond its
// slots, for the unconditionally saved link register.
const frameReserve = 16

// calleeSaveInstr builds a single-register sp-relative save (str) or
// restore (ldr) at a fixed byte offset. Each callee-saved slot's offset is
// i*8 in calleeSaved's own order: frame.assignOffsets lays out
// SlotCalleeSave entries first, at exactly that spacing, so this function
// and the frame-lowering pass agree on layout without EmitPrologue ever
// seeing MFrameInfo directly.
func calleeSaveInstr(ctx *mir.MContext, op mir.Opcode, mnemonic string, r mir.Register, offset int32) *mir.MInstruction {
	if op == opLDR {
		return &mir.MInstruction{
			ID:       ctx.NewInstrID(),
			Opcode:   op,
			Mnemonic: mnemonic,
			Operands: []mir.Operand{mir.RegOperand(r), mir.RegOperand(frameBase()), mir.IntImmOperand(int64(offset))},
			Roles:    []mir.OperandRole{mir.RoleDef, mir.RoleUse, mir.RoleUse},
		}
	}
	return &mir.MInstruction{
		ID:       ctx.NewInstrID(),
		Opcode:   op,
		Mnemonic: mnemonic,
		Operands: []mir.Operand{mir.RegOperand(r), mir.RegOperand(frameBase()), mir.IntImmOperand(int64(offset))},
		Roles:    []mir.OperandRole{mir.RoleUse, mir.RoleUse, mir.RoleUse},
	}
}

func spAdjustInstr(ctx *mir.MContext, op mir.Opcode, mnemonic string, amount int32) *mir.MInstruction {
	return &mir.MInstruction{
		ID:       ctx.NewInstrID(),
		Opcode:   op,
		Mnemonic: mnemonic,
		Operands: []mir.Operand{mir.IntImmOperand(int64(amount))},
	}
}

// EmitPrologue adjusts sp down by the whole frame (slots plus the link
// register's reserved space), saves the link register at the top of that
// space, then saves every callee-saved register at its assignOffsets slot
//.
func (backendTarget) EmitPrologue(ctx *mir.MContext, calleeSaved []mir.Register, stackSize int32) []*mir.MInstruction {
	total := stackSize + frameReserve
	out := []*mir.MInstruction{spAdjustInstr(ctx, opSUBSP, "sub", total)}
	out = append(out, calleeSaveInstr(ctx, opSTR, "str", xreg(regLR), stackSize))
	for i, r := range calleeSaved {
		out = append(out, calleeSaveInstr(ctx, opSTR, "str", r, int32(i*8)))
	}
	return out
}

// EmitEpilogue reloads every callee-saved register from its slot (in
// calleeSaved order), then the link register, then restores sp.
func (backendTarget) EmitEpilogue(ctx *mir.MContext, calleeSaved []mir.Register, stackSize int32) []*mir.MInstruction {
	total := stackSize + frameReserve
	var out []*mir.MInstruction
	for i, r := range calleeSaved {
		out = append(out, calleeSaveInstr(ctx, opLDR, "ldr", r, int32(i*8)))
	}
	out = append(out, calleeSaveInstr(ctx, opLDR, "ldr", xreg(regLR), stackSize))
	out = append(out, spAdjustInstr(ctx, opADDSP, "add", total))
	return out
}

func (backendTarget) EmitFunctionHeader(out *[]string, f *mir.Function) {
	*out = append(*out, ".text")
	*out = append(*out, fmt.Sprintf(".globl %s", f.Name))
	*out = append(*out, ".p2align 2")
	*out = append(*out, fmt.Sprintf("%s:", f.Name))
}

func (backendTarget) EmitBlockLabel(out *[]string, f *mir.Function, id mir.BlockID) {
	if id == f.EntryBlock().ID {
		return // entry falls straight out of the function label, no block label needed
	}
	*out = append(*out, fmt.Sprintf(".L%d:", id))
}

func (backendTarget) EmitInstr(out *[]string, inst *mir.MInstruction) {
	if inst.IsPseudo() {
		*out = append(*out, "\t"+inst.String())
		return
	}
	*out = append(*out, "\t"+formatInstr(inst))
}

func formatInstr(inst *mir.MInstruction) string {
	switch inst.Opcode {
	case opADD, opSUB, opMUL, opSDIV, opUDIV, opAND, opORR, opEOR, opLSL, opLSR:
		return fmt.Sprintf("%s %s, %s, %s", inst.Mnemonic, operandAsm(inst.Operands[0]), operandAsm(inst.Operands[1]), operandAsm(inst.Operands[2]))
	case opMOVZ, opFMOV:
		return fmt.Sprintf("%s %s, %s", inst.Mnemonic, operandAsm(inst.Operands[0]), operandAsm(inst.Operands[1]))
	case opCMP:
		return fmt.Sprintf("cmp %s, %s", operandAsm(inst.Operands[0]), operandAsm(inst.Operands[1]))
	case opCSET:
		return fmt.Sprintf("cset %s, %s", operandAsm(inst.Operands[0]), inst.Operands[1].Symbol)
	case opLDR:
		return fmt.Sprintf("ldr %s, [%s, %s]", operandAsm(inst.Operands[0]), operandAsm(inst.Operands[1]), operandAsm(inst.Operands[2]))
	case opSTR:
		return fmt.Sprintf("str %s, [%s, %s]", operandAsm(inst.Operands[0]), operandAsm(inst.Operands[1]), operandAsm(inst.Operands[2]))
	case opB:
		return fmt.Sprintf("b %s", operandAsm(inst.Operands[0]))
	case opBCOND:
		return fmt.Sprintf("cbnz %s, %s", operandAsm(inst.Operands[0]), operandAsm(inst.Operands[1]))
	case opBL:
		return fmt.Sprintf("bl %s", inst.Operands[0].Symbol)
	case opRET:
		return "ret"
	case opSUBSP:
		return fmt.Sprintf("sub sp, sp, %s", operandAsm(inst.Operands[0]))
	case opADDSP:
		return fmt.Sprintf("add sp, sp, %s", operandAsm(inst.Operands[0]))
	default:
		return inst.String()
	}
}

func operandAsm(o mir.Operand) string {
	switch o.Kind {
	case mir.OperandReg:
		return regName(o.Reg)
	case mir.OperandIntImm:
		return "#" + strconv.FormatInt(o.IntImm, 10)
	case mir.OperandFloatImm:
		return "#" + strconv.FormatFloat(float64(o.FloatImm), 'g', -1, 32)
	case mir.OperandLabel:
		return fmt.Sprintf(".L%d", o.Label)
	case mir.OperandSymbol:
		return o.Symbol
	default:
		return "<invalid>"
	}
}

// regName prints this target's GNU-assembler register names. Every
// register reaching emission is physical (regalloc has already rewritten
// every virtual register away), and always 64-bit (reginfo.go's
// documented simplification).
func regName(r mir.Register) string {
	if r.Class() == mir.ClassFloat {
		return "d" + strconv.Itoa(int(r.ID))
	}
	switch r.ID {
	case regSP:
		return "sp"
	case regXZR:
		return "xzr"
	default:
		return "x" + strconv.Itoa(int(r.ID))
	}
}

func (backendTarget) EmitGlobal(out *[]string, g *mir.GlobalVariable) {
	*out = append(*out, fmt.Sprintf(".globl %s", g.Name))
	*out = append(*out, fmt.Sprintf("%s:", g.Name))
	if len(g.Initializer) == 0 {
		*out = append(*out, fmt.Sprintf("\t.zero %d", globalByteSize(g)))
		return
	}
	for _, v := range g.Initializer {
		*out = append(*out, "\t"+globalDirective(g)+" "+dataOperandAsm(v))
	}
}

// dataOperandAsm formats an initializer value for a data directive, where
// (unlike an instruction operand) an immediate carries no leading '#'.
func dataOperandAsm(o mir.Operand) string {
	switch o.Kind {
	case mir.OperandIntImm:
		return strconv.FormatInt(o.IntImm, 10)
	case mir.OperandFloatImm:
		return strconv.FormatFloat(float64(o.FloatImm), 'g', -1, 32)
	default:
		return operandAsm(o)
	}
}

func globalByteSize(g *mir.GlobalVariable) int {
	size := g.Type.Bytes()
	for _, d := range g.Dims {
		size *= d
	}
	return size
}

func globalDirective(g *mir.GlobalVariable) string {
	if g.Type.Bytes() == 8 {
		return ".quad"
	}
	return ".word"
}

// EmitSectionHeaders opens the data section; EmitFunctionHeader re-enters
// .text itself before each function, since globals (emitted between this
// call and the first function) all belong under .data.
func (backendTarget) EmitSectionHeaders(out *[]string) {
	*out = append(*out, ".data")
}
