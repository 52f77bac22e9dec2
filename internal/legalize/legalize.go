// Package legalize implements the DAG legalizer: it
// canonicalizes operand order and fixes illegal predicates before
// instruction selection runs.
package legalize

import "github.com/nkucc/mirbackend/internal/dag"

// ExtraRule is a target-specific legalization extension point. A rule returns true if it
// rewrote n.
type ExtraRule func(d *dag.SelectionDAG, n *dag.Node) bool

// Run legalizes every node currently in d, applying the core's one
// mandatory rule (ICmp canonicalization) plus any target-supplied extra
// rules, in order.
func Run(d *dag.SelectionDAG, extra ...ExtraRule) {
	for _, n := range d.Nodes() {
		canonicalizeICmp(n)
		for _, rule := range extra {
			rule(d, n)
		}
	}
}

// canonicalizeICmp: if lhs is a constant and rhs is not, swap operands and
// apply the predicate-swap rule. The immediate payload (which holds the
// predicate code) is updated in place via
// SetImmI64 is not used here since Node.Pred is a dedicated field — the
// mutation is still one of the two documented in-place operations, generalized to the node's predicate field the same way this
// port generalizes the immediate payload itself (see node.go).
func canonicalizeICmp(n *dag.Node) {
	if n.Opcode != dag.OpICmp {
		return
	}
	lhs, rhs := n.Operands[0], n.Operands[1]
	if lhs.Node.Opcode.IsConst() && !rhs.Node.Opcode.IsConst() {
		n.ReplaceOperands([]dag.SDValue{rhs, lhs})
		n.Pred = n.Pred.Swapped()
	}
}
