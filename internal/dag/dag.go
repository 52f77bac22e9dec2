// Package dag implements the per-block selection DAG and its content-
// addressed node-uniquing layer.
package dag

import (
	"github.com/nkucc/mirbackend/internal/ir"
	"github.com/nkucc/mirbackend/internal/types"
)

// SelectionDAG owns an append-only node table and an exported pointer to an
// entry token node. One SelectionDAG is built per IR basic
// block; the DAG (and all its nodes) is owned by the BackendTarget for the
// duration of a compilation.
type SelectionDAG struct {
	nodes    []*Node
	unique   map[string]*Node
	nextID   NodeID
	entryTok *Node
}

// New creates an empty SelectionDAG with its entry token already materialized.
func New() *SelectionDAG {
	d := &SelectionDAG{unique: make(map[string]*Node)}
	d.entryTok = d.getOrCreate(OpToken, nil, types.Token, 0, 0, ir.PredInvalid, "", 0)
	return d
}

// EntryToken returns this DAG's entry token node, the default chain value for
// load/store nodes.
func (d *SelectionDAG) EntryToken() *Node { return d.entryTok }

// EntryTokenValue returns the entry token as an SDValue result 0.
func (d *SelectionDAG) EntryTokenValue() SDValue { return SDValue{Node: d.entryTok, Result: 0} }

// Nodes returns every node ever created in this DAG, in creation order.
// Mutated nodes remain in this table at their original slot.
func (d *SelectionDAG) Nodes() []*Node { return d.nodes }

// NumNodes reports the number of distinct (uniqued) nodes created so far.
func (d *SelectionDAG) NumNodes() int { return len(d.nodes) }

// getOrCreate builds the fingerprint, looks it up, and on miss creates,
// stores, and returns a fresh node.
func (d *SelectionDAG) getOrCreate(op ISDOpcode, operands []SDValue, resultType *types.DataType, immInt int64, immFloat float32, pred ir.Predicate, symbol string, block ir.BlockID) *Node {
	fp := fingerprint(op, operands, resultType, immInt, immFloat, pred, symbol, block)
	key := fp.Bytes()
	if existing, ok := d.unique[key]; ok {
		// A node mutated in place (ReplaceOperands/SetImmI64) still sits
		// under its old key; it is only a hit if its contents still match.
		cur := fingerprint(existing.Opcode, existing.Operands, existing.Type, existing.ImmInt, existing.ImmFloat, existing.Pred, existing.Symbol, existing.Block)
		if cur.Bytes() == key {
			return existing
		}
	}
	n := &Node{
		id:       d.nextID,
		Opcode:   op,
		Operands: operands,
		Type:     resultType,
		ImmInt:   immInt,
		ImmFloat: immFloat,
		Pred:     pred,
		Symbol:   symbol,
		Block:    block,
	}
	d.nextID++
	d.nodes = append(d.nodes, n)
	d.unique[key] = n
	return n
}

// GetNode creates (or returns the existing uniqued) binary/unary arithmetic
// or comparison node.
func (d *SelectionDAG) GetNode(op ISDOpcode, resultType *types.DataType, operands ...SDValue) *Node {
	return d.getOrCreate(op, operands, resultType, 0, 0, ir.PredInvalid, "", 0)
}

// GetICmp creates (or returns) an ICMP node with the given predicate.
func (d *SelectionDAG) GetICmp(pred ir.Predicate, lhs, rhs SDValue) *Node {
	return d.getOrCreate(OpICmp, []SDValue{lhs, rhs}, types.I32, 0, 0, pred, "", 0)
}

// GetConstI32/I64/F32 create (or return) a uniqued constant node.
func (d *SelectionDAG) GetConstI32(v int32) *Node {
	return d.getOrCreate(OpConstI32, nil, types.I32, int64(v), 0, ir.PredInvalid, "", 0)
}

func (d *SelectionDAG) GetConstI64(v int64) *Node {
	return d.getOrCreate(OpConstI64, nil, types.I64, v, 0, ir.PredInvalid, "", 0)
}

func (d *SelectionDAG) GetConstF32(v float32) *Node {
	return d.getOrCreate(OpConstF32, nil, types.F32, 0, v, ir.PredInvalid, "", 0)
}

// GetLoad creates a Load node. chain defaults to the entry token when the
// caller has no explicit chain dependency as
// their first operand").
func (d *SelectionDAG) GetLoad(resultType *types.DataType, chain, addr SDValue) *Node {
	if !chain.Valid() {
		chain = d.EntryTokenValue()
	}
	return d.getOrCreate(OpLoad, []SDValue{chain, addr}, resultType, 0, 0, ir.PredInvalid, "", 0)
}

// GetStore creates a Store node; its sole result is the outgoing chain.
func (d *SelectionDAG) GetStore(chain, addr, value SDValue) *Node {
	if !chain.Valid() {
		chain = d.EntryTokenValue()
	}
	return d.getOrCreate(OpStore, []SDValue{chain, addr, value}, nil, 0, 0, ir.PredInvalid, "", 0)
}

// GetCopyFromReg creates (or returns) the node representing "read the value
// currently in vreg v", keyed by v's numeric id/type so repeated reads of the
// same register within one DAG unique together.
func (d *SelectionDAG) GetCopyFromReg(t *types.DataType, regID int64) *Node {
	return d.getOrCreate(OpCopyFromReg, nil, t, regID, 0, ir.PredInvalid, "", 0)
}

// GetCopyToReg creates a node forcing value to be materialized into vreg
// regID; its sole result is the outgoing chain.
func (d *SelectionDAG) GetCopyToReg(chain SDValue, regID int64, value SDValue) *Node {
	if !chain.Valid() {
		chain = d.EntryTokenValue()
	}
	n := d.getOrCreate(OpCopyToReg, []SDValue{chain, value}, nil, regID, 0, ir.PredInvalid, "", 0)
	return n
}

// GetFrameIndex creates (or returns) the frame-index node for an alloca of
// slot bytes (carried in ImmInt, so equal sizes unique together).
func (d *SelectionDAG) GetFrameIndex(slot int64) *Node {
	return d.getOrCreate(OpFrameIndex, nil, types.PTR, slot, 0, ir.PredInvalid, "", 0)
}

// GetCall creates a Call node; results are (returnValue, chain).
func (d *SelectionDAG) GetCall(resultType *types.DataType, chain SDValue, callee string, args []SDValue) *Node {
	if !chain.Valid() {
		chain = d.EntryTokenValue()
	}
	operands := append([]SDValue{chain}, args...)
	return d.getOrCreate(OpCall, operands, resultType, 0, 0, ir.PredInvalid, callee, 0)
}

// GetBr creates an unconditional branch node to the given IR block.
func (d *SelectionDAG) GetBr(chain SDValue, target ir.BlockID) *Node {
	if !chain.Valid() {
		chain = d.EntryTokenValue()
	}
	return d.getOrCreate(OpBr, []SDValue{chain}, nil, 0, 0, ir.PredInvalid, "", target)
}

// GetBrCond creates a conditional branch node: taken if cond != 0, falls
// through otherwise.
func (d *SelectionDAG) GetBrCond(chain, cond SDValue, target ir.BlockID) *Node {
	if !chain.Valid() {
		chain = d.EntryTokenValue()
	}
	return d.getOrCreate(OpBrCond, []SDValue{chain, cond}, nil, 0, 0, ir.PredInvalid, "", target)
}

// GetRet creates a return node; value is the zero SDValue for a void return.
func (d *SelectionDAG) GetRet(chain, value SDValue) *Node {
	if !chain.Valid() {
		chain = d.EntryTokenValue()
	}
	operands := []SDValue{chain}
	if value.Valid() {
		operands = append(operands, value)
	}
	return d.getOrCreate(OpRet, operands, nil, 0, 0, ir.PredInvalid, "", 0)
}

// ReplaceOperands and SetImmI64 are the two documented in-place mutations
// the legalizer uses. After either, n's fingerprint is stale; the
// legalizer never looks n up again by fingerprint in the same pass.
func (n *Node) ReplaceOperands(newOps []SDValue) {
	n.Operands = newOps
}

func (n *Node) SetImmI64(v int64) {
	n.ImmInt = v
}
