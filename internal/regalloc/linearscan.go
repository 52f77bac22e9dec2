package regalloc

import (
	"github.com/nkucc/mirbackend/internal/cfg"
	"github.com/nkucc/mirbackend/internal/mir"
	"github.com/nkucc/mirbackend/internal/target"
)

// linearScanAllocator implements the Poletto & Sarkar linear-scan algorithm
// over live intervals sorted by start point, spilling the interval whose
// end point is furthest away whenever a class's physical registers run out
//.
type linearScanAllocator struct{}

func (linearScanAllocator) Allocate(f *mir.Function, ri target.RegInfo, adapter target.InstrAdapter) error {
	g := cfg.Build(f, adapter)
	n := number(f, g)
	intervals := computeIntervals(f, g, n, adapter)

	sorted := make([]*LiveInterval, 0, len(intervals))
	for _, iv := range intervals {
		sorted = append(sorted, iv)
	}
	sortIntervals(sorted)
	calls := callPositions(f, n, adapter)

	pools := newClassPools(ri)
	assign := make(map[mir.RegID]mir.Register)
	spilled := make(map[mir.RegID]mir.FrameIndex)
	var active []*LiveInterval // unsorted; scanned linearly, small in practice

	for _, cur := range sorted {
		active = expireOld(active, cur.Start, pools, assign)

		class := cur.Reg.Class()
		pool := pools.pool(class)
		crosses := crossesCall(cur, calls)
		if preg, ok := pool.alloc(crosses); ok {
			if crosses && !pool.isCalleeSaved(preg) {
				// No callee-saved register of this class was free. Handing
				// out the caller-saved one anyway would leave cur resident
				// in a register a call is free to clobber, so it must be
				// spilled instead: materializeSpill never holds a spilled
				// value in a physical register across an instruction,
				// which keeps it safe across the call too.
				pool.release(preg)
				spilled[cur.Reg.ID] = f.FrameInfo.AllocSlot(mir.SlotSpill, int32(cur.Reg.Type.Bytes()))
				continue
			}
			assign[cur.Reg.ID] = preg
			active = append(active, cur)
			continue
		}

		// Every physical register of this class is occupied. Spill
		// whichever of the current interval or an active same-class one
		// ends furthest in the future.
		candidateIdx, candidate := furthestEndSameClass(active, class)
		if candidate != nil && candidate.End > cur.End {
			preg := assign[candidate.Reg.ID]
			spilled[candidate.Reg.ID] = f.FrameInfo.AllocSlot(mir.SlotSpill, int32(candidate.Reg.Type.Bytes()))
			assign[cur.Reg.ID] = preg
			active[candidateIdx] = cur
		} else {
			spilled[cur.Reg.ID] = f.FrameInfo.AllocSlot(mir.SlotSpill, int32(cur.Reg.Type.Bytes()))
		}
	}

	for id, preg := range assign {
		reg := intervals[id].Reg
		rewriteEverywhere(f, n.order, adapter, reg, preg)
	}
	for id, fi := range spilled {
		reg := intervals[id].Reg
		scratch := ri.ScratchInt()
		if reg.Class() == mir.ClassFloat {
			scratch = ri.ScratchFloat()
		}
		materializeSpill(&f.Ctx, f, n.order, adapter, reg, scratch, fi)
	}
	return nil
}

// expireOld removes from active every interval that ended before start,
// releasing its physical register back to the pool.
func expireOld(active []*LiveInterval, start int, pools *classPools, assign map[mir.RegID]mir.Register) []*LiveInterval {
	kept := active[:0]
	for _, a := range active {
		if a.End < start {
			if preg, ok := assign[a.Reg.ID]; ok {
				pools.pool(a.Reg.Class()).release(preg)
			}
			continue
		}
		kept = append(kept, a)
	}
	return kept
}

// furthestEndSameClass finds the active interval of the given class whose
// End is largest, returning its index in active (for in-place eviction).
func furthestEndSameClass(active []*LiveInterval, class mir.Class) (int, *LiveInterval) {
	best := -1
	for i, a := range active {
		if a.Reg.Class() != class {
			continue
		}
		if best == -1 || a.End > active[best].End {
			best = i
		}
	}
	if best == -1 {
		return -1, nil
	}
	return best, active[best]
}

// rewriteEverywhere replaces every occurrence of a virtual register with
// its assigned physical register across the whole function.
func rewriteEverywhere(f *mir.Function, order []mir.BlockID, adapter target.InstrAdapter, from, to mir.Register) {
	for _, id := range order {
		for _, inst := range f.Blocks[id].Instrs {
			adapter.ReplaceUse(inst, from, to)
			adapter.ReplaceDef(inst, from, to)
		}
	}
}
