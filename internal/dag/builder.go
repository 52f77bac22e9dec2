package dag

import (
	"fmt"

	"github.com/nkucc/mirbackend/internal/ir"
	"github.com/nkucc/mirbackend/internal/mir"
)

// ValueRegs maps every SSA value that needs a home register — every
// instruction with a result plus every function parameter — to the virtual
// register assigned to it. It is built once per function (isel.AssignVRegs)
// and shared across every block's DAG build, since a value defined in one
// block may be read by another.
type ValueRegs map[ir.Value]mir.Register

// Built is the result of building one block's selection DAG: the DAG
// itself, plus the list of "root" nodes instruction selection must walk to
// cover every side effect in the block (stores, calls, branches, returns,
// and every value export via CopyToReg) — bottom-up construction naturally
// produces a DAG reachable only from such roots.
type Built struct {
	DAG   *SelectionDAG
	Roots []SDValue
}

// BuildBlock builds the selection DAG for one IR block.
// Construction is bottom-up from IR operands: each IR instruction becomes
// one (possibly newly-uniqued) DAG node, operands are resolved either to a
// same-block node already built or to a CopyFromReg of the value's assigned
// register, and every value this block defines is exported via a trailing
// CopyToReg so that other blocks can read it back from its register
//.
func BuildBlock(blk ir.Block, regs ValueRegs) (Built, error) {
	d := New()
	local := make(map[ir.Value]SDValue, len(blk.Instructions()))
	chain := d.EntryTokenValue()
	var roots []SDValue

	resolve := func(v ir.Value) (SDValue, error) {
		if sv, ok := local[v]; ok {
			return sv, nil
		}
		r, ok := regs[v]
		if !ok {
			return SDValue{}, fmt.Errorf("dag: value %v has no assigned register and is not block-local", v)
		}
		n := d.GetCopyFromReg(r.Type, int64(r.ID))
		return SDValue{Node: n, Result: 0}, nil
	}

	for _, inst := range blk.Instructions() {
		if inst.Opcode() == ir.OpPhi {
			// Phis are not data-flow nodes local to this block; isel
			// translates them directly into mir.PhiInst before DAG
			// construction begins (see isel.SelectFunction).
			continue
		}
		ops := inst.Operands()
		sdOps := make([]SDValue, len(ops))
		for i, o := range ops {
			sv, err := resolve(o)
			if err != nil {
				return Built{}, err
			}
			sdOps[i] = sv
		}

		var result SDValue
		switch inst.Opcode() {
		case ir.OpConstInt:
			var n *Node
			if inst.Type().Bytes() == 4 {
				n = d.GetConstI32(int32(inst.IntImmediate()))
			} else {
				n = d.GetConstI64(inst.IntImmediate())
			}
			result = SDValue{Node: n, Result: 0}
		case ir.OpConstFloat:
			n := d.GetConstF32(inst.FloatImmediate())
			result = SDValue{Node: n, Result: 0}
		case ir.OpAdd:
			result = SDValue{Node: d.GetNode(OpAdd, inst.Type(), sdOps...), Result: 0}
		case ir.OpSub:
			result = SDValue{Node: d.GetNode(OpSub, inst.Type(), sdOps...), Result: 0}
		case ir.OpMul:
			result = SDValue{Node: d.GetNode(OpMul, inst.Type(), sdOps...), Result: 0}
		case ir.OpSDiv:
			result = SDValue{Node: d.GetNode(OpSDiv, inst.Type(), sdOps...), Result: 0}
		case ir.OpUDiv:
			result = SDValue{Node: d.GetNode(OpUDiv, inst.Type(), sdOps...), Result: 0}
		case ir.OpAnd:
			result = SDValue{Node: d.GetNode(OpAnd, inst.Type(), sdOps...), Result: 0}
		case ir.OpOr:
			result = SDValue{Node: d.GetNode(OpOr, inst.Type(), sdOps...), Result: 0}
		case ir.OpXor:
			result = SDValue{Node: d.GetNode(OpXor, inst.Type(), sdOps...), Result: 0}
		case ir.OpShl:
			result = SDValue{Node: d.GetNode(OpShl, inst.Type(), sdOps...), Result: 0}
		case ir.OpShr:
			result = SDValue{Node: d.GetNode(OpShr, inst.Type(), sdOps...), Result: 0}
		case ir.OpICmp:
			if len(sdOps) != 2 {
				return Built{}, fmt.Errorf("dag: icmp requires 2 operands, got %d", len(sdOps))
			}
			result = SDValue{Node: d.GetICmp(inst.Predicate(), sdOps[0], sdOps[1]), Result: 0}
		case ir.OpLoad:
			n := d.GetLoad(inst.Type(), SDValue{Node: chain.Node}, sdOps[0])
			chain = SDValue{Node: n, Result: 1}
			result = SDValue{Node: n, Result: 0}
		case ir.OpStore:
			n := d.GetStore(SDValue{Node: chain.Node}, sdOps[0], sdOps[1])
			chain = SDValue{Node: n, Result: 0}
			roots = append(roots, chain)
			continue
		case ir.OpAlloca:
			n := d.GetFrameIndex(inst.IntImmediate())
			result = SDValue{Node: n, Result: 0}
		case ir.OpCall:
			n := d.GetCall(inst.Type(), SDValue{Node: chain.Node}, inst.Name(), sdOps)
			chain = SDValue{Node: n, Result: 1}
			if inst.Type() != nil {
				result = SDValue{Node: n, Result: 0}
			} else {
				roots = append(roots, chain)
				continue
			}
		case ir.OpCopy:
			result = sdOps[0]
		case ir.OpBr:
			n := d.GetBr(SDValue{Node: chain.Node}, inst.Target())
			chain = SDValue{Node: n, Result: 0}
			roots = append(roots, chain)
			continue
		case ir.OpCondBr:
			n := d.GetBrCond(SDValue{Node: chain.Node}, sdOps[0], inst.Target())
			chain = SDValue{Node: n, Result: 0}
			roots = append(roots, chain)
			continue
		case ir.OpRet:
			var v SDValue
			if len(sdOps) > 0 {
				v = sdOps[0]
			}
			n := d.GetRet(SDValue{Node: chain.Node}, v)
			chain = SDValue{Node: n, Result: 0}
			roots = append(roots, chain)
			continue
		default:
			return Built{}, fmt.Errorf("dag: unsupported IR opcode %d", inst.Opcode())
		}

		local[inst] = result
		if r, ok := regs[inst]; ok {
			exportChain := d.GetCopyToReg(SDValue{Node: chain.Node}, int64(r.ID), result)
			chain = SDValue{Node: exportChain, Result: 0}
			roots = append(roots, chain)
		}
	}

	return Built{DAG: d, Roots: roots}, nil
}
