package arm64

import "github.com/nkucc/mirbackend/internal/mir"

// adapter implements target.InstrAdapter. Every real instruction this
// target emits carries an explicit per-operand Roles slice (selector.go's
// emit helper), so defs/uses/replacement are generic role-filtering code
// here rather than a per-opcode switch — only the handful of methods that
// need to recognize a specific opcode (branches, calls, returns, copies)
// switch on Opcode directly.
type adapter struct{}

func (adapter) IsCall(i *mir.MInstruction) bool         { return i.Opcode == opBL }
func (adapter) IsReturn(i *mir.MInstruction) bool       { return i.Opcode == opRET }
func (adapter) IsUncondBranch(i *mir.MInstruction) bool { return i.Opcode == opB }
func (adapter) IsCondBranch(i *mir.MInstruction) bool   { return i.Opcode == opBCOND }

func (adapter) ExtractBranchTarget(i *mir.MInstruction) int64 {
	switch i.Opcode {
	case opB:
		return int64(i.Operands[0].Label)
	case opBCOND:
		return int64(i.Operands[1].Label)
	default:
		return -1
	}
}

func (adapter) EnumUses(i *mir.MInstruction) []mir.Register {
	return regsWithRole(i, mir.RoleUse)
}

func (adapter) EnumDefs(i *mir.MInstruction) []mir.Register {
	return regsWithRole(i, mir.RoleDef)
}

func regsWithRole(i *mir.MInstruction, role mir.OperandRole) []mir.Register {
	var out []mir.Register
	for idx, o := range i.Operands {
		if idx >= len(i.Roles) {
			break
		}
		if i.Roles[idx] == role && o.IsReg() {
			out = append(out, o.Reg)
		}
	}
	return out
}

func (adapter) ReplaceUse(i *mir.MInstruction, from, to mir.Register) {
	replaceRole(i, mir.RoleUse, from, to)
}

func (adapter) ReplaceDef(i *mir.MInstruction, from, to mir.Register) {
	replaceRole(i, mir.RoleDef, from, to)
}

func replaceRole(i *mir.MInstruction, role mir.OperandRole, from, to mir.Register) {
	for idx := range i.Operands {
		if idx >= len(i.Roles) {
			break
		}
		if i.Roles[idx] == role && i.Operands[idx].IsReg() && i.Operands[idx].Reg == from {
			i.Operands[idx] = mir.RegOperand(to)
		}
	}
}

// IsCopy recognizes the pseudo MOVE only: this target has no distinct real
// reg-to-reg move opcode of its own (ABI argument shuffles and the return
// value handoff all go through the shared pseudo, see selector.go), so
// there is nothing opcode-specific to add here.
func (adapter) IsCopy(i *mir.MInstruction) (dst, src mir.Register, ok bool) {
	if i.Opcode != mir.OpcodeMove {
		return mir.Register{}, mir.Register{}, false
	}
	dst, src = i.MoveOperands()
	return dst, src, true
}

// EnumPhysRegs returns the physical registers a call clobbers beyond its
// explicit operands: every register of IntRegs/FloatRegs outside the
// callee-saved sets, plus the link register. Registers outside those pools
// (the reserved scratch registers, d16-d31) are not listed.
func (adapter) EnumPhysRegs(i *mir.MInstruction) []mir.Register {
	if i.Opcode != opBL {
		return nil
	}
	ri := reginfo{}
	calleeSaved := make(map[mir.Register]bool)
	for _, r := range ri.CalleeSavedInt() {
		calleeSaved[r] = true
	}
	for _, r := range ri.CalleeSavedFloat() {
		calleeSaved[r] = true
	}

	var out []mir.Register
	for _, r := range ri.IntRegs() {
		if !calleeSaved[r] {
			out = append(out, r)
		}
	}
	for _, r := range ri.FloatRegs() {
		if !calleeSaved[r] {
			out = append(out, r)
		}
	}
	out = append(out, xreg(regLR))
	return out
}

func (adapter) InsertReloadBefore(ctx *mir.MContext, block *mir.Block, at int, physReg mir.Register, frameIndex mir.FrameIndex) {
	block.InsertBefore(at, mir.NewFILoad(ctx.NewInstrID(), physReg, frameIndex))
}

func (adapter) InsertSpillAfter(ctx *mir.MContext, block *mir.Block, at int, physReg mir.Register, frameIndex mir.FrameIndex) {
	block.InsertBefore(at+1, mir.NewFIStore(ctx.NewInstrID(), physReg, frameIndex))
}

func (adapter) SetBranchTarget(i *mir.MInstruction, to mir.BlockID) {
	switch i.Opcode {
	case opB:
		i.Operands[0] = mir.LabelOperand(to)
	case opBCOND:
		i.Operands[1] = mir.LabelOperand(to)
	}
}

func (adapter) NewUncondBranch(ctx *mir.MContext, to mir.BlockID) *mir.MInstruction {
	return &mir.MInstruction{
		ID:       ctx.NewInstrID(),
		Opcode:   opB,
		Mnemonic: "b",
		Operands: []mir.Operand{mir.LabelOperand(to)},
	}
}
