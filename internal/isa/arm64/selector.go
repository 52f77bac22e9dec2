package arm64

import (
	"github.com/nkucc/mirbackend/internal/dag"
	"github.com/nkucc/mirbackend/internal/ir"
	"github.com/nkucc/mirbackend/internal/mir"
	"github.com/nkucc/mirbackend/internal/types"
)

// selector implements target.Selector by walking each block's selection
// DAG bottom-up from its roots, grounded on backend/isa/arm64/lower_instr.go's
// per-ssa.Instruction lowering switch, narrowed to this module's smaller
// dag.ISDOpcode set and to a textual rather than binary-encoded result.
type selector struct{}

// blockSelector holds the state one SelectBlock call threads through: the
// function's monotone id counters, the destination block, frame-slot
// access for allocations, and a per-DAG-node result cache so a value
// shared by two roots (the uniquing dag.SelectionDAG promises) is computed
// once.
type blockSelector struct {
	ctx       *mir.MContext
	mblock    *mir.Block
	frameInfo *mir.MFrameInfo
	cache     map[dag.NodeID]mir.Register
}

func (selector) SelectBlock(ctx *mir.MContext, d *dag.SelectionDAG, roots []dag.SDValue, mblock *mir.Block, frameInfo *mir.MFrameInfo) {
	s := &blockSelector{ctx: ctx, mblock: mblock, frameInfo: frameInfo, cache: make(map[dag.NodeID]mir.Register)}
	for _, r := range roots {
		s.selectRoot(r)
	}
}

func (s *blockSelector) emit(op mir.Opcode, mnemonic string, roles []mir.OperandRole, operands ...mir.Operand) *mir.MInstruction {
	inst := &mir.MInstruction{
		ID:       s.ctx.NewInstrID(),
		Opcode:   op,
		Mnemonic: mnemonic,
		Operands: operands,
		Roles:    roles,
	}
	s.mblock.Append(inst)
	return inst
}

// selectRoot lowers one side-effecting (chain-producing) DAG node: a
// store, branch, return, or the CopyToReg that materializes a block-local
// value into its function-wide home register.
func (s *blockSelector) selectRoot(v dag.SDValue) {
	n := v.Node
	switch n.Opcode {
	case dag.OpStore:
		addr := n.Operands[1]
		val := s.selectValue(n.Operands[2])
		s.selectStore(addr, val)
	case dag.OpBr:
		s.emit(opB, "b", nil, mir.LabelOperand(mir.BlockID(n.Block)))
	case dag.OpBrCond:
		cond := s.selectValue(n.Operands[1])
		s.emit(opBCOND, "cbnz", []mir.OperandRole{mir.RoleUse, mir.RoleUse},
			mir.RegOperand(cond), mir.LabelOperand(mir.BlockID(n.Block)))
	case dag.OpRet:
		if len(n.Operands) > 1 {
			val := s.selectValue(n.Operands[1])
			ret := returnReg(val.Class())
			s.mblock.Append(mir.NewMove(s.ctx.NewInstrID(), ret, val))
			s.emit(opRET, "ret", []mir.OperandRole{mir.RoleUse}, mir.RegOperand(ret))
			return
		}
		s.emit(opRET, "ret", nil)
	case dag.OpCopyToReg:
		val := s.selectValue(n.Operands[1])
		dst := mir.Register{ID: mir.RegID(n.ImmInt), Type: val.Type, IsVirtual: true}
		if dst != val {
			s.mblock.Append(mir.NewMove(s.ctx.NewInstrID(), dst, val))
		}
	case dag.OpCall:
		s.selectValue(v) // a void call is a root directly; cache its chain-producing node
	default:
		// Any other opcode reaching here as a root is a malformed DAG: every
		// chain-producing opcode is handled above.
		panic("BUG: arm64 selector: unexpected root opcode")
	}
}

// selectValue lowers a value-producing node, memoized by node id so a
// value read by two different instructions is computed once.
func (s *blockSelector) selectValue(v dag.SDValue) mir.Register {
	n := v.Node
	if r, ok := s.cache[n.ID()]; ok {
		return r
	}
	r := s.doSelectValue(v)
	s.cache[n.ID()] = r
	return r
}

func (s *blockSelector) doSelectValue(v dag.SDValue) mir.Register {
	n := v.Node
	switch n.Opcode {
	case dag.OpConstI32, dag.OpConstI64:
		dst := s.ctx.NewVReg(n.Type)
		s.emit(opMOVZ, "mov", []mir.OperandRole{mir.RoleDef}, mir.RegOperand(dst), mir.IntImmOperand(n.ImmInt))
		return dst
	case dag.OpConstF32:
		dst := s.ctx.NewVReg(n.Type)
		s.emit(opFMOV, "fmov", []mir.OperandRole{mir.RoleDef}, mir.RegOperand(dst), mir.FloatImmOperand(n.ImmFloat))
		return dst
	case dag.OpAdd:
		return s.binop(n, opADD, "add")
	case dag.OpSub:
		return s.binop(n, opSUB, "sub")
	case dag.OpMul:
		return s.binop(n, opMUL, "mul")
	case dag.OpSDiv:
		return s.binop(n, opSDIV, "sdiv")
	case dag.OpUDiv:
		return s.binop(n, opUDIV, "udiv")
	case dag.OpAnd:
		return s.binop(n, opAND, "and")
	case dag.OpOr:
		return s.binop(n, opORR, "orr")
	case dag.OpXor:
		return s.binop(n, opEOR, "eor")
	case dag.OpShl:
		return s.binop(n, opLSL, "lsl")
	case dag.OpShr:
		return s.binop(n, opLSR, "lsr")
	case dag.OpICmp:
		lhs := s.selectValue(n.Operands[0])
		rhs := s.selectValue(n.Operands[1])
		s.emit(opCMP, "cmp", []mir.OperandRole{mir.RoleUse, mir.RoleUse}, mir.RegOperand(lhs), mir.RegOperand(rhs))
		dst := s.ctx.NewVReg(types.I32)
		s.emit(opCSET, "cset", []mir.OperandRole{mir.RoleDef, mir.RoleUse}, mir.RegOperand(dst), mir.SymbolOperand(condString(n.Pred)))
		return dst
	case dag.OpLoad:
		return s.selectLoad(n.Type, n.Operands[1])
	case dag.OpFrameIndex:
		idx := s.frameInfo.AllocSlot(mir.SlotAlloca, int32(n.ImmInt))
		dst := s.ctx.NewVReg(types.PTR)
		s.mblock.Append(mir.NewFIAddr(s.ctx.NewInstrID(), dst, idx))
		return dst
	case dag.OpCopyFromReg:
		return mir.Register{ID: mir.RegID(n.ImmInt), Type: n.Type, IsVirtual: true}
	case dag.OpCall:
		return s.selectCall(n)
	default:
		panic("BUG: arm64 selector: unsupported dag opcode")
	}
}

func (s *blockSelector) binop(n *dag.Node, op mir.Opcode, mnemonic string) mir.Register {
	lhs := s.selectValue(n.Operands[0])
	rhs := s.selectValue(n.Operands[1])
	dst := s.ctx.NewVReg(n.Type)
	s.emit(op, mnemonic, []mir.OperandRole{mir.RoleDef, mir.RoleUse, mir.RoleUse}, mir.RegOperand(dst), mir.RegOperand(lhs), mir.RegOperand(rhs))
	return dst
}

// selectStore folds a store directly addressed by a frame index into an
// FIStore pseudo; any other address is lowered to a real indexed store.
// Folding an address computed elsewhere (escaped through a CopyFromReg)
// is not attempted — a genuine pointer value is expected to have gone
// through selectLoad/selectStore's real-address path instead.
func (s *blockSelector) selectStore(addr dag.SDValue, val mir.Register) {
	if addr.Node.Opcode == dag.OpFrameIndex {
		idx := s.frameInfo.AllocSlot(mir.SlotAlloca, int32(addr.Node.ImmInt))
		s.mblock.Append(mir.NewFIStore(s.ctx.NewInstrID(), val, idx))
		return
	}
	base := s.selectValue(addr)
	s.emit(opSTR, "str", []mir.OperandRole{mir.RoleUse, mir.RoleUse, mir.RoleUse}, mir.RegOperand(val), mir.RegOperand(base), mir.IntImmOperand(0))
}

func (s *blockSelector) selectLoad(t *types.DataType, addr dag.SDValue) mir.Register {
	if addr.Node.Opcode == dag.OpFrameIndex {
		idx := s.frameInfo.AllocSlot(mir.SlotAlloca, int32(addr.Node.ImmInt))
		dst := s.ctx.NewVReg(t)
		s.mblock.Append(mir.NewFILoad(s.ctx.NewInstrID(), dst, idx))
		return dst
	}
	base := s.selectValue(addr)
	dst := s.ctx.NewVReg(t)
	s.emit(opLDR, "ldr", []mir.OperandRole{mir.RoleDef, mir.RoleUse, mir.RoleUse}, mir.RegOperand(dst), mir.RegOperand(base), mir.IntImmOperand(0))
	return dst
}

// selectCall lowers arguments into the AAPCS64 argument registers with
// pseudo MOVEs (the same mechanism isel.lowerIncomingParams uses on a
// function's way in), emits the branch-with-link, and returns the ABI
// return register holding the call's result (void calls return the zero
// Register; their root is reached only for the side effect).
func (s *blockSelector) selectCall(n *dag.Node) mir.Register {
	ri := reginfo{}
	intArgs, floatArgs := ri.IntArgRegs(), ri.FloatArgRegs()
	var nInt, nFloat int
	for _, argOp := range n.Operands[1:] {
		arg := s.selectValue(argOp)
		if arg.Class() == mir.ClassFloat {
			s.mblock.Append(mir.NewMove(s.ctx.NewInstrID(), floatArgs[nFloat], arg))
			nFloat++
		} else {
			s.mblock.Append(mir.NewMove(s.ctx.NewInstrID(), intArgs[nInt], arg))
			nInt++
		}
	}
	s.emit(opBL, "bl", nil, mir.SymbolOperand(n.Symbol))

	if n.Type == nil {
		return mir.Register{}
	}
	ret := returnReg(classOf(n.Type))
	dst := s.ctx.NewVReg(n.Type)
	s.mblock.Append(mir.NewMove(s.ctx.NewInstrID(), dst, ret))
	return dst
}

func classOf(t *types.DataType) mir.Class {
	if t.Kind() == types.KindFloat {
		return mir.ClassFloat
	}
	return mir.ClassInt
}

// returnReg is x0/d0, the AAPCS64 result register for the given class.
func returnReg(c mir.Class) mir.Register {
	if c == mir.ClassFloat {
		return dreg(0)
	}
	return xreg(0)
}

func condString(p ir.Predicate) string {
	switch p {
	case ir.PredEQ:
		return "eq"
	case ir.PredNE:
		return "ne"
	case ir.PredSLT:
		return "lt"
	case ir.PredSLE:
		return "le"
	case ir.PredSGT:
		return "gt"
	case ir.PredSGE:
		return "ge"
	case ir.PredULT:
		return "lo"
	case ir.PredULE:
		return "ls"
	case ir.PredUGT:
		return "hi"
	case ir.PredUGE:
		return "hs"
	default:
		return "al"
	}
}
