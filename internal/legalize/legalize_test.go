package legalize

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nkucc/mirbackend/internal/dag"
	"github.com/nkucc/mirbackend/internal/ir"
)

func TestRun_swapsConstantLHSAndInvertsPredicate(t *testing.T) {
	d := dag.New()
	c := dag.SDValue{Node: d.GetConstI32(5), Result: 0}
	v := dag.SDValue{Node: d.GetFrameIndex(0), Result: 0}

	n := d.GetICmp(ir.PredSLT, c, v)
	Run(d)

	require.Equal(t, v, n.Operands[0], "non-constant operand moves to lhs")
	require.Equal(t, c, n.Operands[1])
	require.Equal(t, ir.PredSGT, n.Pred, "SLT(const, x) becomes SGT(x, const)")
}

func TestRun_leavesAlreadyCanonicalICmpUntouched(t *testing.T) {
	d := dag.New()
	v := dag.SDValue{Node: d.GetFrameIndex(0), Result: 0}
	c := dag.SDValue{Node: d.GetConstI32(5), Result: 0}

	n := d.GetICmp(ir.PredSLT, v, c)
	Run(d)

	require.Equal(t, v, n.Operands[0])
	require.Equal(t, c, n.Operands[1])
	require.Equal(t, ir.PredSLT, n.Pred)
}

func TestRun_equalityPredicateUnaffectedBySwap(t *testing.T) {
	d := dag.New()
	c := dag.SDValue{Node: d.GetConstI32(5), Result: 0}
	v := dag.SDValue{Node: d.GetFrameIndex(0), Result: 0}

	n := d.GetICmp(ir.PredEQ, c, v)
	Run(d)

	require.Equal(t, ir.PredEQ, n.Pred)
	require.Equal(t, v, n.Operands[0])
}

func TestRun_bothOperandsConstantIsLeftAlone(t *testing.T) {
	d := dag.New()
	a := dag.SDValue{Node: d.GetConstI32(1), Result: 0}
	b := dag.SDValue{Node: d.GetConstI32(2), Result: 0}

	n := d.GetICmp(ir.PredSLT, a, b)
	Run(d)

	require.Equal(t, a, n.Operands[0], "neither side is the lone non-constant: nothing to canonicalize")
	require.Equal(t, b, n.Operands[1])
}

func TestRun_nonICmpNodesAreUntouched(t *testing.T) {
	d := dag.New()
	x := dag.SDValue{Node: d.GetConstI32(1), Result: 0}
	y := dag.SDValue{Node: d.GetConstI32(2), Result: 0}
	add := d.GetNode(dag.OpAdd, x.Node.Type, x, y)

	Run(d)
	require.Equal(t, x, add.Operands[0])
	require.Equal(t, y, add.Operands[1])
}

func TestRun_invokesExtraRulesForEveryNode(t *testing.T) {
	d := dag.New()
	d.GetConstI32(1)
	d.GetConstI32(2)

	var visited int
	extra := func(d *dag.SelectionDAG, n *dag.Node) bool {
		visited++
		return false
	}
	Run(d, extra)

	require.Equal(t, d.NumNodes(), visited, "every node in the DAG, including the entry token, gets a chance at each extra rule")
}
