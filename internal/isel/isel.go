// Package isel drives instruction selection: for every IR block it builds
// the selection DAG (internal/dag), legalizes it (internal/legalize), and
// hands it to the target's Selector to emit virtual-register MIR
//.
package isel

import (
	"fmt"

	"github.com/nkucc/mirbackend/internal/dag"
	"github.com/nkucc/mirbackend/internal/ir"
	"github.com/nkucc/mirbackend/internal/legalize"
	"github.com/nkucc/mirbackend/internal/mir"
	"github.com/nkucc/mirbackend/internal/target"
)

// AssignVRegs walks every block of f once, in order, assigning a fresh
// virtual register to every parameter and every instruction that produces a
// value. Doing this once, function-wide, before any per-block DAG is built
// is what lets a value defined in one block be read as a CopyFromReg in
// another.
func AssignVRegs(f ir.Function, ctx *mir.MContext) dag.ValueRegs {
	regs := make(dag.ValueRegs)
	for _, p := range f.Params() {
		regs[p] = ctx.NewVReg(p.Type())
	}
	for _, blk := range f.Blocks() {
		for _, inst := range blk.Instructions() {
			if inst.Type() != nil {
				regs[inst] = ctx.NewVReg(inst.Type())
			}
		}
	}
	return regs
}

// SelectFunction lowers irFn into mf. Block ids are copied 1:1 from the IR (irFn.Blocks()[i].ID()),
// which guarantees the dense-numbering-from-0 invariant cfg.Build's
// fall-through rule depends on, provided the IR itself numbers blocks
// densely — the standard shape for a block list coming out of SSA
// construction (SPEC_FULL.md Open Questions).
func SelectFunction(irFn ir.Function, mf *mir.Function, bt target.BackendTarget) error {
	regs := AssignVRegs(irFn, &mf.Ctx)

	for _, p := range irFn.Params() {
		mf.Params = append(mf.Params, regs[p])
	}

	selector := bt.Selector()
	for _, blk := range irFn.Blocks() {
		mblock := mir.NewBlock(mir.BlockID(blk.ID()))

		for _, inst := range blk.Instructions() {
			if inst.Opcode() != ir.OpPhi {
				break // phis are the leading run
			}
			mblock.Append(phiToMIR(&mf.Ctx, inst, regs))
		}

		built, err := dag.BuildBlock(blk, regs)
		if err != nil {
			return fmt.Errorf("isel: function %s block %d: %w", irFn.Name(), blk.ID(), err)
		}
		legalize.Run(built.DAG, bt.ExtraLegalizeRules()...)

		selector.SelectBlock(&mf.Ctx, built.DAG, built.Roots, mblock, &mf.FrameInfo)
		mf.AddBlock(mblock)
	}

	// Incoming-parameter lowering runs after every block exists so it can
	// prepend to the already-built entry block rather than race AddBlock's
	// bookkeeping.
	lowerIncomingParams(mf, irFn, regs, bt.RegInfo())
	return nil
}

// phiToMIR translates one IR OpPhi instruction into a real mir.PhiInst,
// mapping each predecessor's incoming IR value through regs to the register
// that already holds it (every IR value has a home register assigned by
// AssignVRegs, function-wide, before any block is selected).
func phiToMIR(ctx *mir.MContext, inst ir.Instruction, regs dag.ValueRegs) *mir.MInstruction {
	sources := make(map[mir.BlockID]mir.Operand, len(inst.PhiSources()))
	for pred, v := range inst.PhiSources() {
		sources[mir.BlockID(pred)] = mir.RegOperand(regs[v])
	}
	return &mir.MInstruction{
		ID:     ctx.NewInstrID(),
		Opcode: mir.OpcodePhi,
		Phi: &mir.PhiInst{
			Dst:     regs[inst],
			Sources: sources,
		},
	}
}

// lowerIncomingParams prepends, to the entry block, MOVEs from the ABI's
// argument registers into each parameter's assigned virtual register
// (int/float classes consumed independently, per the target's calling
// convention). Parameters beyond the argument-register limit are recorded
// as stack slots for frame lowering to finish.
func lowerIncomingParams(mf *mir.Function, irFn ir.Function, regs dag.ValueRegs, ri target.RegInfo) {
	intArgs, floatArgs := ri.IntArgRegs(), ri.FloatArgRegs()
	var nInt, nFloat int
	var stackParams []mir.Register

	var prelude []*mir.MInstruction
	for _, p := range irFn.Params() {
		vreg := regs[p]
		if vreg.Class() == mir.ClassFloat {
			if nFloat < len(floatArgs) {
				prelude = append(prelude, mir.NewMove(mf.Ctx.NewInstrID(), vreg, floatArgs[nFloat]))
				nFloat++
				continue
			}
		} else {
			if nInt < len(intArgs) {
				prelude = append(prelude, mir.NewMove(mf.Ctx.NewInstrID(), vreg, intArgs[nInt]))
				nInt++
				continue
			}
		}
		stackParams = append(stackParams, vreg)
	}

	if len(stackParams) > 0 {
		mf.FrameInfo.HasStackParam = true
		for i, vreg := range stackParams {
			idx := mf.FrameInfo.AllocSlot(mir.SlotStackParam, int32(vreg.Type.Bytes()))
			slot := mf.FrameInfo.Slot(idx)
			slot.ParamIndex = int32(i)
			prelude = append(prelude, mir.NewFILoad(mf.Ctx.NewInstrID(), vreg, idx))
		}
	}

	if len(prelude) == 0 {
		return
	}
	entry := mf.EntryBlock()
	entry.Instrs = append(prelude, entry.Instrs...)
}
