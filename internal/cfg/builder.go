package cfg

import (
	"github.com/nkucc/mirbackend/internal/mir"
	"github.com/nkucc/mirbackend/internal/target"
)

// Build derives the CFG of f.
//
//  1. Register every block by id; entry_block = blocks[0] if present.
//  2. For each block, scan instructions in order, stopping at the first
//     return or unconditional branch. For every branch encountered, query
//     ExtractBranchTarget and, if the target block exists, add an edge with
//     no duplicates.
//  3. Fall-through: if no return and no unconditional branch was seen, and
//     block id+1 exists, add edge (id -> id+1). This assumes block ids are
//     dense (SPEC_FULL.md Open Questions: adopted explicitly, guaranteed by
//     internal/isel numbering blocks 0..n-1 with no gaps).
//  4. The return block is the first block whose terminator satisfies
//     IsReturn.
func Build(f *mir.Function, adapter target.InstrAdapter) *Graph {
	g := &Graph{
		Func: f,
		Succ: make(map[mir.BlockID][]mir.BlockID),
		Pred: make(map[mir.BlockID][]mir.BlockID),
	}

	if _, ok := f.Blocks[0]; ok {
		g.EntryBlock = 0
	}

	for _, id := range f.BlockOrder {
		if id > g.MaxLabel {
			g.MaxLabel = id
		}
	}

	for _, id := range f.BlockOrder {
		blk := f.Blocks[id]
		sawReturn, sawUncond := scanBlock(g, blk, adapter)
		if !sawReturn && !sawUncond {
			if _, ok := f.Blocks[id+1]; ok {
				g.AddEdge(id, id+1)
			}
		}
		if sawReturn && !g.HasRet {
			g.RetBlock = id
			g.HasRet = true
		}
	}

	return g
}

func scanBlock(g *Graph, blk *mir.Block, adapter target.InstrAdapter) (sawReturn, sawUncond bool) {
	for _, inst := range blk.Instrs {
		if adapter.IsCondBranch(inst) || adapter.IsUncondBranch(inst) {
			target := adapter.ExtractBranchTarget(inst)
			if target >= 0 {
				if _, ok := g.Func.Blocks[mir.BlockID(target)]; ok {
					g.AddEdge(blk.ID, mir.BlockID(target))
				}
			}
		}
		if adapter.IsReturn(inst) {
			sawReturn = true
			break
		}
		if adapter.IsUncondBranch(inst) {
			sawUncond = true
			break
		}
	}
	return
}
