package regalloc

import (
	"sort"

	"github.com/nkucc/mirbackend/internal/cfg"
	"github.com/nkucc/mirbackend/internal/mir"
	"github.com/nkucc/mirbackend/internal/target"
)

// coloringAllocator implements Chaitin's graph-coloring algorithm over the
// same live intervals linearScanAllocator computes, used as an interference
// test (two virtual registers of the same class interfere iff their
// intervals overlap) rather than true per-point liveness: build neighbors,
// simplify by popping low-degree nodes onto a stack, force-spill when none
// qualifies, then assign colors by popping the stack in reverse.
type coloringAllocator struct{}

// node is one virtual register's entry in the interference graph.
type node struct {
	iv        *LiveInterval
	neighbors map[*node]struct{}
	color     mir.Register // zero value until assigned
	colored   bool
	spilled   bool
}

func (coloringAllocator) Allocate(f *mir.Function, ri target.RegInfo, adapter target.InstrAdapter) error {
	g := cfg.Build(f, adapter)
	n := number(f, g)
	intervals := computeIntervals(f, g, n, adapter)

	colorFor(f, n, ri, adapter, intervals, mir.ClassInt, ri.IntRegs())
	colorFor(f, n, ri, adapter, intervals, mir.ClassFloat, ri.FloatRegs())
	return nil
}

func colorFor(f *mir.Function, n *numbering, ri target.RegInfo, adapter target.InstrAdapter, intervals map[mir.RegID]*LiveInterval, class mir.Class, allocatable []mir.Register) {
	nodes := buildGraph(intervals, class)
	if len(nodes) == 0 {
		return
	}
	simplifyAndSelect(nodes, len(allocatable), allocatable)

	for _, nd := range nodes {
		if nd.colored {
			rewriteEverywhere(f, n.order, adapter, nd.iv.Reg, nd.color)
			continue
		}
		fi := f.FrameInfo.AllocSlot(mir.SlotSpill, int32(nd.iv.Reg.Type.Bytes()))
		scratch := ri.ScratchInt()
		if class == mir.ClassFloat {
			scratch = ri.ScratchFloat()
		}
		materializeSpill(&f.Ctx, f, n.order, adapter, nd.iv.Reg, scratch, fi)
	}
}

// buildGraph adds an edge between every pair of same-class intervals whose
// [Start, End] ranges intersect.
func buildGraph(intervals map[mir.RegID]*LiveInterval, class mir.Class) []*node {
	var nodes []*node
	for _, iv := range intervals {
		if iv.Reg.Class() != class {
			continue
		}
		nodes = append(nodes, &node{iv: iv, neighbors: make(map[*node]struct{})})
	}
	// Deterministic iteration order for neighbor construction.
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].iv.Reg.ID < nodes[j].iv.Reg.ID })

	for i, a := range nodes {
		for _, b := range nodes[i+1:] {
			if intersects(a.iv, b.iv) {
				a.neighbors[b] = struct{}{}
				b.neighbors[a] = struct{}{}
			}
		}
	}
	return nodes
}

func intersects(a, b *LiveInterval) bool {
	return a.Start <= b.End && b.Start <= a.End
}

// simplifyAndSelect runs Chaitin's build/simplify/select over nodes, using
// k physical registers, assigning a color (or marking spilled) to every
// node.
func simplifyAndSelect(nodes []*node, k int, allocatable []mir.Register) {
	degree := make(map[*node]int, len(nodes))
	for _, nd := range nodes {
		degree[nd] = len(nd.neighbors)
	}

	remaining := append([]*node(nil), nodes...)
	var stack []*node
	spillSet := make(map[*node]bool)

	for len(remaining) > 0 {
		sort.SliceStable(remaining, func(i, j int) bool { return degree[remaining[i]] < degree[remaining[j]] })

		popCount := 0
		for popCount < len(remaining) && degree[remaining[popCount]] < k {
			popCount++
		}
		if popCount == 0 {
			// No low-degree node: force-spill the highest-degree one so the
			// simplify phase can keep making progress.
			last := len(remaining) - 1
			remaining[0], remaining[last] = remaining[last], remaining[0]
			spillSet[remaining[0]] = true
			popCount = 1
		}

		popped := remaining[:popCount]
		remaining = remaining[popCount:]
		for _, p := range popped {
			for nb := range p.neighbors {
				degree[nb]--
			}
		}
		stack = append(stack, popped...)
	}

	for i := len(stack) - 1; i >= 0; i-- {
		nd := stack[i]
		used := make(map[mir.Register]bool, len(nd.neighbors))
		for nb := range nd.neighbors {
			if nb.colored {
				used[nb.color] = true
			}
		}
		for _, candidate := range allocatable {
			if !used[candidate] {
				nd.color = candidate
				nd.colored = true
				break
			}
		}
		if !nd.colored {
			nd.spilled = true
		}
	}
}
