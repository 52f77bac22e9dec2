// Package frame lowers a register-allocated function's spill slots, saved
// registers, and stack parameters into a concrete stack layout, then
// materializes that layout into the function's instructions.
package frame

import (
	"sort"

	"github.com/nkucc/mirbackend/internal/mir"
	"github.com/nkucc/mirbackend/internal/target"
)

// Lower runs the whole frame-lowering pass over f:
//
//  1. Records one callee-saved slot per callee-saved physical register f
//     actually writes.
//  2. Assigns every slot (spills, callee-saves, allocas, stack params) a
//     byte offset from sp, and rounds the total frame size up to the
//     target's required alignment.
//  3. Replaces every FILoad/FIStore with the target's real load/store.
//  4. Prepends the prologue to the entry block and inserts an epilogue
//     before every return.
func Lower(f *mir.Function, bt target.BackendTarget) {
	ri := bt.RegInfo()
	adapter := bt.Adapter()

	calleeSaved := writtenCalleeSaved(f, adapter, ri)
	for _, r := range calleeSaved {
		idx := f.FrameInfo.AllocSlot(mir.SlotCalleeSave, 8)
		f.FrameInfo.Slot(idx).Reg = r
	}

	assignOffsets(f, ri)
	materializeFrameAccesses(f, bt)
	insertPrologueEpilogue(f, bt, calleeSaved, adapter)
}

// writtenCalleeSaved returns, in RegInfo's declared scan order, every
// callee-saved physical register f's instructions define at least once
//. This needs no target-specific knowledge: defs are
// already enumerated uniformly via the adapter.
func writtenCalleeSaved(f *mir.Function, adapter target.InstrAdapter, ri target.RegInfo) []mir.Register {
	written := make(map[mir.Register]bool)
	for _, id := range f.BlockOrder {
		for _, inst := range f.Blocks[id].Instrs {
			for _, d := range defsOf(adapter, inst) {
				if !d.IsVirtual && target.IsCalleeSaved(ri, d) {
					written[d] = true
				}
			}
		}
	}

	var out []mir.Register
	for _, r := range append(append([]mir.Register{}, ri.CalleeSavedInt()...), ri.CalleeSavedFloat()...) {
		if written[r] {
			out = append(out, r)
		}
	}
	return out
}

// defsOf mirrors internal/regalloc's pseudo-opcode special-casing: frame
// lowering runs after regalloc has rewritten every virtual register to a
// physical one, but FILoad/FIStore pseudo-ops are still present and carry
// no adapter-recognized def/use shape.
func defsOf(adapter target.InstrAdapter, i *mir.MInstruction) []mir.Register {
	switch i.Opcode {
	case mir.OpcodeMove:
		dst, _ := i.MoveOperands()
		return []mir.Register{dst}
	case mir.OpcodeFILoad, mir.OpcodeFIAddr:
		return []mir.Register{i.Operands[0].Reg}
	case mir.OpcodeFIStore, mir.OpcodeNop, mir.OpcodePhi:
		return nil
	default:
		return adapter.EnumDefs(i)
	}
}

// assignOffsets lays out every frame slot at a fixed byte offset from sp
// and rounds the total size up to the target's alignment. Layout order is callee-saves first (at the lowest
// offsets from sp), then allocas and spills, then stack parameters above the
// frame — deterministic because FrameInfo.Slots is itself append-ordered.
func assignOffsets(f *mir.Function, ri target.RegInfo) {
	var offset int32
	var stackParams []*mir.FrameSlot

	// Callee-save slots are laid out first even though Lower allocates them
	// last (only regalloc's output tells it which registers were written):
	// EmitPrologue/EmitEpilogue receive calleeSaved in ri's declared scan
	// order but not each slot's offset, so they reconstruct offset i*8
	// themselves — that only works if this pass places them at a fixed,
	// predictable prefix of the frame.
	for i := range f.FrameInfo.Slots {
		slot := &f.FrameInfo.Slots[i]
		if slot.Kind != mir.SlotCalleeSave {
			continue
		}
		slot.Offset = offset
		offset += slot.Size
	}
	for i := range f.FrameInfo.Slots {
		slot := &f.FrameInfo.Slots[i]
		if slot.Kind == mir.SlotCalleeSave {
			continue
		}
		if slot.Kind == mir.SlotStackParam {
			stackParams = append(stackParams, slot)
			continue
		}
		slot.Offset = offset
		offset += slot.Size
	}

	align := ri.StackAlignment()
	if rem := offset % align; rem != 0 {
		offset += align - rem
	}
	f.FrameInfo.StackSize = offset

	if len(stackParams) > 0 {
		sort.Slice(stackParams, func(i, j int) bool { return stackParams[i].ParamIndex < stackParams[j].ParamIndex })
		var paramOffset int32
		for _, slot := range stackParams {
			// Stack parameters live above the callee's own frame, at
			// [sp + frameSize + paramOffset].
			slot.Offset = f.FrameInfo.StackSize + paramOffset
			paramOffset += slot.Size
		}
		f.FrameInfo.ParamSize = paramOffset
	}
}

// materializeFrameAccesses replaces every FILoad/FIStore in f with the
// target's real addressed load/store.
func materializeFrameAccesses(f *mir.Function, bt target.BackendTarget) {
	for _, id := range f.BlockOrder {
		blk := f.Blocks[id]
		for i, inst := range blk.Instrs {
			if inst.Opcode != mir.OpcodeFILoad && inst.Opcode != mir.OpcodeFIStore && inst.Opcode != mir.OpcodeFIAddr {
				continue
			}
			fi := inst.FrameIndexOperand()
			offset := f.FrameInfo.Slot(fi).Offset
			blk.Instrs[i] = bt.MaterializeFrameAccess(&f.Ctx, inst, offset)
		}
	}
}

// insertPrologueEpilogue prepends the prologue to the entry block and an
// epilogue before every return.
func insertPrologueEpilogue(f *mir.Function, bt target.BackendTarget, calleeSaved []mir.Register, adapter target.InstrAdapter) {
	size := f.FrameInfo.StackSize
	entry := f.EntryBlock()
	prologue := bt.EmitPrologue(&f.Ctx, calleeSaved, size)
	entry.Instrs = append(prologue, entry.Instrs...)

	for _, id := range f.BlockOrder {
		blk := f.Blocks[id]
		for i := len(blk.Instrs) - 1; i >= 0; i-- {
			if !adapter.IsReturn(blk.Instrs[i]) {
				continue
			}
			epilogue := bt.EmitEpilogue(&f.Ctx, calleeSaved, size)
			blk.Instrs = append(blk.Instrs[:i], append(epilogue, blk.Instrs[i:]...)...)
		}
	}
}
