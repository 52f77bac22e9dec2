package regalloc

import (
	"github.com/nkucc/mirbackend/internal/mir"
	"github.com/nkucc/mirbackend/internal/target"
)

// materializeSpill rewrites every occurrence of reg (a virtual register the
// allocator could not keep in a physical one) to scratch, reloading before
// each use and storing after each def, against frame slot fi.
//
// One scratch register per class serves every spilled value in the
// function; this is only correct because a spilled value is reloaded
// immediately before the single instruction that needs it and never held
// live across another instruction, so two spills can never need the
// scratch register at once — unless a single instruction reads two
// distinct spilled virtual registers itself, which this backend's
// instruction shapes never produce (every real opcode here takes at most
// one freely-choosable register source per operand slot; the other is
// always pre-colored or a second scratch of the other class).
func materializeSpill(ctx *mir.MContext, f *mir.Function, order []mir.BlockID, adapter target.InstrAdapter, reg, scratch mir.Register, fi mir.FrameIndex) {
	for _, id := range order {
		blk := f.Blocks[id]

		var idxs []int
		for i, inst := range blk.Instrs {
			if containsReg(instrUses(adapter, inst), reg) || containsReg(instrDefs(adapter, inst), reg) {
				idxs = append(idxs, i)
			}
		}

		// Walk occurrences back to front so inserting reload/spill
		// instructions around one never invalidates the index of another
		// still waiting to be processed.
		for k := len(idxs) - 1; k >= 0; k-- {
			i := idxs[k]
			inst := blk.Instrs[i]
			isUse := containsReg(instrUses(adapter, inst), reg)
			isDef := containsReg(instrDefs(adapter, inst), reg)

			if isUse {
				adapter.ReplaceUse(inst, reg, scratch)
			}
			if isDef {
				adapter.ReplaceDef(inst, reg, scratch)
			}

			pos := i
			if isUse {
				adapter.InsertReloadBefore(ctx, blk, pos, scratch, fi)
				pos++ // inst itself shifted one slot to the right
			}
			if isDef {
				adapter.InsertSpillAfter(ctx, blk, pos, scratch, fi)
			}
		}
	}
}
