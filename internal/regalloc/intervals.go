package regalloc

import (
	"sort"

	"github.com/nkucc/mirbackend/internal/cfg"
	"github.com/nkucc/mirbackend/internal/mir"
	"github.com/nkucc/mirbackend/internal/target"
)

// LiveInterval is the live range of one virtual register, measured in the
// linear instruction numbers numbering assigns.
type LiveInterval struct {
	Reg   mir.Register
	Start int
	End   int
}

// numbering assigns every instruction in f a position in one linear order:
// blocks visited in CFG reverse post-order, instructions in block order
// within each.
type numbering struct {
	order    []mir.BlockID
	rpoIndex map[mir.BlockID]int
	instrNum map[mir.InstrID]int
	// blockRange[b] is [firstNum, lastNum] of b's instructions; lastNum <
	// firstNum for an empty block.
	blockRange map[mir.BlockID][2]int
}

func number(f *mir.Function, g *cfg.Graph) *numbering {
	order := g.ReversePostOrder()
	n := &numbering{
		order:      order,
		rpoIndex:   make(map[mir.BlockID]int, len(order)),
		instrNum:   make(map[mir.InstrID]int),
		blockRange: make(map[mir.BlockID][2]int, len(order)),
	}

	num := 0
	for idx, id := range order {
		n.rpoIndex[id] = idx
		start := num
		for _, inst := range f.Blocks[id].Instrs {
			n.instrNum[inst.ID] = num
			num++
		}
		n.blockRange[id] = [2]int{start, num - 1}
	}
	return n
}

// computeIntervals builds one LiveInterval per virtual register touched in
// f, then widens any interval live at a loop header across that loop's
// back edge. Physical registers
// are pre-colored and never get an interval of their own.
func computeIntervals(f *mir.Function, g *cfg.Graph, n *numbering, adapter target.InstrAdapter) map[mir.RegID]*LiveInterval {
	byReg := make(map[mir.RegID]*LiveInterval)
	touch := func(r mir.Register, num int) {
		if !r.IsVirtual {
			return
		}
		iv, ok := byReg[r.ID]
		if !ok {
			byReg[r.ID] = &LiveInterval{Reg: r, Start: num, End: num}
			return
		}
		if num < iv.Start {
			iv.Start = num
		}
		if num > iv.End {
			iv.End = num
		}
	}

	for _, id := range n.order {
		for _, inst := range f.Blocks[id].Instrs {
			num := n.instrNum[inst.ID]
			for _, u := range instrUses(adapter, inst) {
				touch(u, num)
			}
			for _, d := range instrDefs(adapter, inst) {
				touch(d, num)
			}
		}
	}

	extendAcrossBackEdges(g, n, byReg)
	return byReg
}

// extendAcrossBackEdges finds every back edge u->v (v's reverse-post-order
// index no later than u's) and extends any interval that is live at v's
// first instruction to cover the whole loop body, through u's last
// instruction. This is the classic linear-scan loop-extension heuristic
// (Poletto & Sarkar): it keeps a value defined before a loop, and still
// needed inside it, from being spilled and reloaded every iteration.
func extendAcrossBackEdges(g *cfg.Graph, n *numbering, byReg map[mir.RegID]*LiveInterval) {
	for _, u := range n.order {
		for _, v := range g.Succ[u] {
			if n.rpoIndex[v] > n.rpoIndex[u] {
				continue // forward edge
			}
			headerStart := n.blockRange[v][0]
			loopEnd := n.blockRange[u][1]
			for _, iv := range byReg {
				if iv.Start <= headerStart && iv.End >= headerStart && iv.End < loopEnd {
					iv.End = loopEnd
				}
			}
		}
	}
}

// callPositions returns the linear number of every call instruction in f,
// ascending, used to decide which live intervals cross a call.
func callPositions(f *mir.Function, n *numbering, adapter target.InstrAdapter) []int {
	var calls []int
	for _, id := range n.order {
		for _, inst := range f.Blocks[id].Instrs {
			if adapter.IsCall(inst) {
				calls = append(calls, n.instrNum[inst.ID])
			}
		}
	}
	sort.Ints(calls)
	return calls
}

// crossesCall reports whether iv is live at any call position.
func crossesCall(iv *LiveInterval, calls []int) bool {
	for _, c := range calls {
		if c >= iv.Start && c <= iv.End {
			return true
		}
	}
	return false
}

// sortIntervals orders by (Start, End, register id) ascending, the
// deterministic tie-break allocation order relies on.
func sortIntervals(ivs []*LiveInterval) {
	sort.Slice(ivs, func(i, j int) bool {
		a, b := ivs[i], ivs[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.End != b.End {
			return a.End < b.End
		}
		return a.Reg.ID < b.Reg.ID
	})
}
