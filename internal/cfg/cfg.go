// Package cfg derives the control-flow graph of a machine-IR function from
// its branch and fall-through structure.
package cfg

import "github.com/nkucc/mirbackend/internal/mir"

// Graph is a function's CFG: forward adjacency by blockId, inverse adjacency
// by blockId, plus the entry/return block and max_label.
//
// Ownership of blocks stays with the Function; the Graph holds only ids,
// resolving to *mir.Block via the Function's block map on demand — this
// sidesteps the cyclic-ownership problem a pointer-holding CFG would have.
type Graph struct {
	Func *mir.Function

	Succ map[mir.BlockID][]mir.BlockID
	Pred map[mir.BlockID][]mir.BlockID

	EntryBlock mir.BlockID
	RetBlock   mir.BlockID
	HasRet     bool
	MaxLabel   mir.BlockID
}

// Block resolves an id to its *mir.Block via the owning Function.
func (g *Graph) Block(id mir.BlockID) *mir.Block {
	return g.Func.Blocks[id]
}

// AddEdge adds from->to with set semantics over multi-edges.
func (g *Graph) AddEdge(from, to mir.BlockID) {
	for _, s := range g.Succ[from] {
		if s == to {
			return
		}
	}
	g.Succ[from] = append(g.Succ[from], to)
	g.Pred[to] = append(g.Pred[to], from)
}

// RemoveEdge removes from->to from both adjacency directions by linear
// search and index-paired erase.
func (g *Graph) RemoveEdge(from, to mir.BlockID) {
	g.Succ[from] = removeFirst(g.Succ[from], to)
	g.Pred[to] = removeFirst(g.Pred[to], from)
}

func removeFirst(s []mir.BlockID, v mir.BlockID) []mir.BlockID {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

// ReversePostOrder returns every block reachable from EntryBlock in reverse
// post-order, followed by any unreached blocks in their original BlockOrder
// (deterministic fallback for dead code, which a linear numbering still has
// to cover). Register allocation's linear instruction numbering walks
// blocks in this order.
func (g *Graph) ReversePostOrder() []mir.BlockID {
	visited := make(map[mir.BlockID]bool, len(g.Func.BlockOrder))
	var post []mir.BlockID

	var visit func(mir.BlockID)
	visit = func(b mir.BlockID) {
		if visited[b] {
			return
		}
		visited[b] = true
		for _, s := range g.Succ[b] {
			visit(s)
		}
		post = append(post, b)
	}

	if _, ok := g.Func.Blocks[g.EntryBlock]; ok {
		visit(g.EntryBlock)
	}
	for _, id := range g.Func.BlockOrder {
		visit(id)
	}

	rpo := make([]mir.BlockID, len(post))
	for i, b := range post {
		rpo[len(post)-1-i] = b
	}
	return rpo
}

// Bidirectional checks the CFG bidirectionality property:
// for all u, v: v in succ(u) iff u in pred(v), with no duplicate edges.
func (g *Graph) Bidirectional() bool {
	seen := func(list []mir.BlockID, v mir.BlockID) (count int) {
		for _, x := range list {
			if x == v {
				count++
			}
		}
		return
	}
	for u, succs := range g.Succ {
		for _, v := range succs {
			if seen(g.Succ[u], v) != 1 || seen(g.Pred[v], u) != 1 {
				return false
			}
		}
	}
	for v, preds := range g.Pred {
		for _, u := range preds {
			if seen(g.Pred[v], u) != 1 || seen(g.Succ[u], v) != 1 {
				return false
			}
		}
	}
	return true
}
