// Package phielim destroys SSA form: it replaces every φ instruction with
// parallel copies scheduled into the φ's predecessors, splitting critical
// edges first so a copy never affects a value live across an unrelated
// successor.
package phielim

import (
	"github.com/nkucc/mirbackend/internal/cfg"
	"github.com/nkucc/mirbackend/internal/mir"
	"github.com/nkucc/mirbackend/internal/target"
)

// Run eliminates every φ in f. For each block with φs it:
//
//  1. builds the CFG and finds the block's predecessors;
//  2. splits any critical edge among them (an edge u->v where u has more
//     than one successor and v has more than one predecessor) by inserting
//     a trampoline block: redirect the original branch at a fresh block
//     that re-issues it to the real target;
//  3. schedules one parallel copy per predecessor (or its trampoline) that
//     assigns every φ's source value for that edge to the φ's destination,
//     sequentializing the copies so no copy clobbers a value another copy
//     in the same set still needs to read (breaking cycles with a fresh
//     temporary register when one exists);
//  4. removes the φs from the block.
func Run(f *mir.Function, adapter target.InstrAdapter) {
	g := cfg.Build(f, adapter)

	// Snapshot the block list: trampolines appended mid-pass never carry
	// φs of their own and must not be revisited.
	for _, succID := range append([]mir.BlockID(nil), f.BlockOrder...) {
		blk := f.Blocks[succID]
		phis := blk.Phis()
		if len(phis) == 0 {
			continue
		}

		origPreds := append([]mir.BlockID(nil), g.Pred[succID]...)
		critical := len(origPreds) > 1
		emitBlock := make(map[mir.BlockID]mir.BlockID, len(origPreds))
		for _, predID := range origPreds {
			if critical && len(g.Succ[predID]) > 1 {
				emitBlock[predID] = splitEdge(f, g, predID, succID, adapter)
			} else {
				emitBlock[predID] = predID
			}
		}

		insertParallelCopies(f, phis, emitBlock, adapter)
		blk.RemovePhis()
	}
}

// splitEdge inserts a trampoline block on the predID->succID edge and
// retargets whatever sent control along that edge (an explicit branch, or
// an implicit fall-through materialized into one) to the trampoline
// instead. It returns the trampoline's id, which is where phi-resolving
// copies for this edge belong.
func splitEdge(f *mir.Function, g *cfg.Graph, predID, succID mir.BlockID, adapter target.InstrAdapter) mir.BlockID {
	predBlk := f.Blocks[predID]

	branchIdx := -1
	for i, inst := range predBlk.Instrs {
		if !adapter.IsCondBranch(inst) && !adapter.IsUncondBranch(inst) {
			continue
		}
		if adapter.ExtractBranchTarget(inst) == int64(succID) {
			branchIdx = i
		}
	}

	trampolineID := f.NewBlockID()
	trampoline := mir.NewBlock(trampolineID)
	trampoline.Append(adapter.NewUncondBranch(&f.Ctx, succID))
	f.AddBlock(trampoline)

	if branchIdx >= 0 {
		adapter.SetBranchTarget(predBlk.Instrs[branchIdx], trampolineID)
	} else {
		// The edge was an implicit fall-through (cfg.Build's id+1 rule).
		// Materialize it as an explicit branch so the split does not
		// depend on where the trampoline happens to land in block order.
		predBlk.Append(adapter.NewUncondBranch(&f.Ctx, trampolineID))
	}

	g.RemoveEdge(predID, succID)
	g.AddEdge(predID, trampolineID)
	g.AddEdge(trampolineID, succID)
	return trampolineID
}

// pendingCopy is one not-yet-emitted "dst <- src" assignment a φ's
// resolution requires along one incoming edge.
type pendingCopy struct {
	dst, src mir.Register
}

// insertParallelCopies resolves phis (all belonging to one successor block)
// by inserting, into each predecessor's emission block, the sequentialized
// moves that implement that predecessor's column of the φ matrix.
func insertParallelCopies(f *mir.Function, phis []*mir.MInstruction, emitBlock map[mir.BlockID]mir.BlockID, adapter target.InstrAdapter) {
	byBlock := make(map[mir.BlockID][]pendingCopy)
	for predID, emitID := range emitBlock {
		for _, phi := range phis {
			src, ok := phi.Phi.Sources[predID]
			if !ok {
				panic("BUG: phielim: phi missing source for a CFG predecessor")
			}
			if !src.IsReg() {
				panic("BUG: phielim: phi source is not a register")
			}
			if src.Reg == phi.Phi.Dst {
				continue // identity copy, nothing to schedule
			}
			byBlock[emitID] = append(byBlock[emitID], pendingCopy{dst: phi.Phi.Dst, src: src.Reg})
		}
	}

	for blockID, copies := range byBlock {
		blk := f.Blocks[blockID]
		at := insertionPoint(blk, adapter)
		for _, mv := range sequentialize(&f.Ctx, copies) {
			blk.InsertBefore(at, mv)
			at++
		}
	}
}

// insertionPoint finds where copies must go: immediately before the
// block's terminator (a branch or return), or at the end of a block that
// has none. This is the search that used to live as a method on mir.Block
// itself; it lives here instead because it needs target.InstrAdapter to
// recognize a terminator, and mir must not depend on target.
func insertionPoint(blk *mir.Block, adapter target.InstrAdapter) int {
	for i, inst := range blk.Instrs {
		if target.IsBranchOrReturn(adapter, inst) {
			return i
		}
	}
	return len(blk.Instrs)
}

// sequentialize orders a set of parallel dst<-src copies into a safe move
// sequence. A copy is "ready" once no other pending copy still needs to
// read its destination. When every remaining copy is part of a cycle (each
// one's destination is some other's source), the cycle is broken by
// saving one destination's current value to a fresh temporary first and
// rewriting the copies that depended on it to read the temporary instead.
func sequentialize(ctx *mir.MContext, copies []pendingCopy) []*mir.MInstruction {
	pending := append([]pendingCopy(nil), copies...)
	var out []*mir.MInstruction

	for len(pending) > 0 {
		ready := -1
		for i, c := range pending {
			stillNeeded := false
			for j, other := range pending {
				if j != i && other.src == c.dst {
					stillNeeded = true
					break
				}
			}
			if !stillNeeded {
				ready = i
				break
			}
		}

		if ready >= 0 {
			c := pending[ready]
			out = append(out, mir.NewMove(ctx.NewInstrID(), c.dst, c.src))
			pending = append(pending[:ready], pending[ready+1:]...)
			continue
		}

		// Every remaining copy sits on a cycle. Break it: stash the value
		// about to be overwritten in c.dst, then point whichever copy was
		// waiting to read it at the stash instead.
		c := pending[0]
		temp := ctx.NewVReg(c.dst.Type)
		out = append(out, mir.NewMove(ctx.NewInstrID(), temp, c.dst))
		for i := range pending {
			if pending[i].src == c.dst {
				pending[i].src = temp
			}
		}
	}

	return out
}
