package dag

import (
	"github.com/nkucc/mirbackend/internal/ir"
	"github.com/nkucc/mirbackend/internal/types"
)

// NodeID is a stable, monotonically-assigned per-DAG node identifier. It
// stands in for the raw node pointer the original FoldingSetNodeID fingerprint
// hashes (see foldingset.go's doc comment).
type NodeID uint32

// ISDOpcode enumerates the DAG node opcodes.
type ISDOpcode uint8

const (
	OpInvalid ISDOpcode = iota
	OpToken             // the per-DAG entry token; zero operands, uniqued singleton
	OpConstI32
	OpConstI64
	OpConstF32
	OpAdd
	OpSub
	OpMul
	OpUDiv
	OpSDiv
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpICmp
	OpLoad  // (chain, addr) -> (value, chain)
	OpStore // (chain, addr, value) -> chain
	OpCopyFromReg
	OpCopyToReg // (chain, value) -> chain; forces materialization into a vreg
	OpFrameIndex
	OpCall // (chain, args...) -> (result, chain)
	OpBr
	OpBrCond
	OpRet
)

func (op ISDOpcode) HasChain() bool {
	switch op {
	case OpLoad, OpStore, OpCopyToReg, OpCall, OpBr, OpBrCond, OpRet:
		return true
	default:
		return false
	}
}

func (op ISDOpcode) IsConst() bool {
	switch op {
	case OpConstI32, OpConstI64, OpConstF32:
		return true
	default:
		return false
	}
}

// SDValue is a non-owning (DAG node, result index) handle.
type SDValue struct {
	Node   *Node
	Result int
}

func (v SDValue) Valid() bool { return v.Node != nil }

// Node is one selection-DAG node: an opcode, an ordered list of operand
// SDValues, a single result DataType (plus optional chain output), and an
// optional immediate payload.
type Node struct {
	id NodeID

	Opcode   ISDOpcode
	Operands []SDValue
	Type     *types.DataType // result type; nil for chain-only nodes (Store, Br, Ret)

	ImmInt   int64
	ImmFloat float32
	Pred     ir.Predicate // meaningful only for OpICmp

	Symbol string     // OpCall callee name
	Block  ir.BlockID // OpBr/OpBrCond payload: branch target
}

// ID returns the node's stable identifier within its owning DAG.
func (n *Node) ID() NodeID { return n.id }

// ResultCount reports how many SDValue results this node produces. Nodes
// with a chain output additionally return the chain as result index 1 (for
// Load) or 0 (for chain-only ops).
func (n *Node) ResultCount() int {
	switch n.Opcode {
	case OpLoad, OpCall:
		return 2 // (value, chain)
	case OpStore, OpCopyToReg, OpBr, OpBrCond, OpRet, OpToken:
		return 1 // chain only, or token
	default:
		return 1
	}
}

// fingerprint builds this node's FoldingSetNodeID from opcode, operand node
// ids + result indices, the result type's identity, and any immediate
// payload.
func fingerprint(op ISDOpcode, operands []SDValue, resultType *types.DataType, immInt int64, immFloat float32, pred ir.Predicate, symbol string, block ir.BlockID) FoldingSetNodeID {
	var id FoldingSetNodeID
	id.AddUint32(uint32(op))
	for _, o := range operands {
		id.AddUint32(uint32(o.Node.id))
		id.AddUint32(uint32(o.Result))
	}
	// Result type is nil or one of the canonical singletons (types
	// package); typeOrdinal maps each to a fixed small integer, so this
	// part of the key is deterministic across runs.
	id.AddUint32(typeOrdinal(resultType))
	id.AddInteger(immInt)
	id.AddFloat(immFloat)
	id.AddUint32(uint32(pred))
	id.AddString(symbol)
	id.AddUint32(uint32(block))
	return id
}

func typeOrdinal(t *types.DataType) uint32 {
	switch t {
	case nil:
		return 0
	case types.I32:
		return 1
	case types.I64:
		return 2
	case types.F32:
		return 3
	case types.F64:
		return 4
	case types.Token:
		return 5
	default:
		return 6
	}
}
