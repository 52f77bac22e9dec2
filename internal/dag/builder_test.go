package dag

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nkucc/mirbackend/internal/ir"
	"github.com/nkucc/mirbackend/internal/mir"
	"github.com/nkucc/mirbackend/internal/types"
)

// mockValue/mockInstr/mockBlock are a minimal hand-rolled ir.Block so
// internal/dag's builder can be exercised without going through the JSON
// loader.
type mockValue struct{ typ *types.DataType }

func (v *mockValue) Type() *types.DataType { return v.typ }

type mockInstr struct {
	mockValue
	op         ir.Opcode
	operands   []ir.Value
	pred       ir.Predicate
	intImm     int64
	floatImm   float32
	target     ir.BlockID
	name       string
	phiSources map[ir.BlockID]ir.Value
}

func (i *mockInstr) Opcode() ir.Opcode                 { return i.op }
func (i *mockInstr) Operands() []ir.Value              { return i.operands }
func (i *mockInstr) Predicate() ir.Predicate           { return i.pred }
func (i *mockInstr) IntImmediate() int64               { return i.intImm }
func (i *mockInstr) FloatImmediate() float32           { return i.floatImm }
func (i *mockInstr) Target() ir.BlockID                { return i.target }
func (i *mockInstr) Name() string                      { return i.name }
func (i *mockInstr) PhiSources() map[ir.BlockID]ir.Value { return i.phiSources }

type mockBlock struct {
	id     ir.BlockID
	instrs []ir.Instruction
}

func (b *mockBlock) ID() ir.BlockID                 { return b.id }
func (b *mockBlock) Instructions() []ir.Instruction { return b.instrs }

func TestBuildBlock_singleBlockAdd(t *testing.T) {
	a := &mockValue{typ: types.I32}
	b := &mockValue{typ: types.I32}
	add := &mockInstr{mockValue: mockValue{typ: types.I32}, op: ir.OpAdd, operands: []ir.Value{a, b}}
	ret := &mockInstr{op: ir.OpRet, operands: []ir.Value{add}}
	blk := &mockBlock{id: 0, instrs: []ir.Instruction{add, ret}}

	regs := ValueRegs{
		a:   mir.Register{ID: 1, Type: types.I32, IsVirtual: true},
		b:   mir.Register{ID: 2, Type: types.I32, IsVirtual: true},
		add: mir.Register{ID: 3, Type: types.I32, IsVirtual: true},
	}

	built, err := BuildBlock(blk, regs)
	require.NoError(t, err)
	require.Len(t, built.Roots, 2, "one CopyToReg export for add's result, one Ret")

	last := built.Roots[len(built.Roots)-1]
	require.Equal(t, OpRet, last.Node.Opcode)
	require.Len(t, last.Node.Operands, 2, "chain + return value")
}

func TestBuildBlock_duplicateConstantsUniqueAcrossInstructions(t *testing.T) {
	c1 := &mockInstr{mockValue: mockValue{typ: types.I32}, op: ir.OpConstInt, intImm: 5}
	c2 := &mockInstr{mockValue: mockValue{typ: types.I32}, op: ir.OpConstInt, intImm: 5}
	add := &mockInstr{mockValue: mockValue{typ: types.I32}, op: ir.OpAdd, operands: []ir.Value{c1, c2}}
	ret := &mockInstr{op: ir.OpRet, operands: []ir.Value{add}}
	blk := &mockBlock{id: 0, instrs: []ir.Instruction{c1, c2, add, ret}}

	built, err := BuildBlock(blk, ValueRegs{})
	require.NoError(t, err)

	// Two distinct IR instructions requesting the same constant must fold
	// onto the same DAG node, so add's two operands are the identical node.
	retNode := built.Roots[len(built.Roots)-1].Node
	addNode := retNode.Operands[1].Node
	require.Same(t, addNode.Operands[0].Node, addNode.Operands[1].Node)
}

func TestBuildBlock_crossBlockValueResolvesViaCopyFromReg(t *testing.T) {
	// definedElsewhere is never present in this block's instruction list —
	// only in regs — which is exactly the shape a value produced by a
	// different block takes.
	definedElsewhere := &mockInstr{mockValue: mockValue{typ: types.I32}, op: ir.OpAdd}
	useIt := &mockInstr{op: ir.OpRet, operands: []ir.Value{definedElsewhere}}
	blk := &mockBlock{id: 1, instrs: []ir.Instruction{useIt}}

	reg := mir.Register{ID: 9, Type: types.I32, IsVirtual: true}
	built, err := BuildBlock(blk, ValueRegs{definedElsewhere: reg})
	require.NoError(t, err)

	retNode := built.Roots[0].Node
	require.Equal(t, OpCopyFromReg, retNode.Operands[1].Node.Opcode)
	require.Equal(t, int64(reg.ID), retNode.Operands[1].Node.ImmInt)
}

func TestBuildBlock_unresolvedValueIsAnError(t *testing.T) {
	orphan := &mockInstr{mockValue: mockValue{typ: types.I32}, op: ir.OpAdd}
	useIt := &mockInstr{op: ir.OpRet, operands: []ir.Value{orphan}}
	blk := &mockBlock{id: 0, instrs: []ir.Instruction{useIt}}

	_, err := BuildBlock(blk, ValueRegs{})
	require.Error(t, err)
}
