package isel

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nkucc/mirbackend/internal/dag"
	"github.com/nkucc/mirbackend/internal/ir"
	"github.com/nkucc/mirbackend/internal/legalize"
	"github.com/nkucc/mirbackend/internal/mir"
	"github.com/nkucc/mirbackend/internal/target"
	"github.com/nkucc/mirbackend/internal/types"
)

// mockValue/mockInstr/mockBlock/mockFunction mirror internal/dag's own
// builder_test.go doubles, extended with a Name()/PhiSources() pair and an
// ir.Function wrapper so SelectFunction can be driven end to end.
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

func (i *mockInstr) Opcode() ir.Opcode                   { return i.op }
func (i *mockInstr) Operands() []ir.Value                { return i.operands }
func (i *mockInstr) Predicate() ir.Predicate             { return i.pred }
func (i *mockInstr) IntImmediate() int64                 { return i.intImm }
func (i *mockInstr) FloatImmediate() float32             { return i.floatImm }
func (i *mockInstr) Target() ir.BlockID                  { return i.target }
func (i *mockInstr) Name() string                        { return i.name }
func (i *mockInstr) PhiSources() map[ir.BlockID]ir.Value { return i.phiSources }

type mockBlock struct {
	id     ir.BlockID
	instrs []ir.Instruction
}

func (b *mockBlock) ID() ir.BlockID                 { return b.id }
func (b *mockBlock) Instructions() []ir.Instruction { return b.instrs }

type mockFunction struct {
	name   string
	params []ir.Value
	blocks []ir.Block
}

func (f *mockFunction) Name() string      { return f.name }
func (f *mockFunction) Params() []ir.Value { return f.params }
func (f *mockFunction) Blocks() []ir.Block { return f.blocks }

func TestAssignVRegs_coversParamsAndValueInstructions(t *testing.T) {
	p := &mockValue{typ: types.I32}
	add := &mockInstr{mockValue: mockValue{typ: types.I32}, op: ir.OpAdd}
	br := &mockInstr{op: ir.OpBr} // Type() nil: no result value, must not get a register
	blk := &mockBlock{id: 0, instrs: []ir.Instruction{add, br}}
	fn := &mockFunction{name: "f", params: []ir.Value{p}, blocks: []ir.Block{blk}}

	var ctx mir.MContext
	regs := AssignVRegs(fn, &ctx)

	_, paramOK := regs[p]
	_, addOK := regs[add]
	_, brOK := regs[br]
	require.True(t, paramOK)
	require.True(t, addOK)
	require.False(t, brOK, "instructions with no result type must not get a register")
}

func TestPhiToMIR_mapsEachPredecessorThroughRegs(t *testing.T) {
	src1 := &mockValue{typ: types.I32}
	src2 := &mockValue{typ: types.I32}
	phi := &mockInstr{mockValue: mockValue{typ: types.I32}, op: ir.OpPhi, phiSources: map[ir.BlockID]ir.Value{0: src1, 1: src2}}

	regs := dag.ValueRegs{
		phi:  mir.Register{ID: 1, Type: types.I32, IsVirtual: true},
		src1: mir.Register{ID: 2, Type: types.I32, IsVirtual: true},
		src2: mir.Register{ID: 3, Type: types.I32, IsVirtual: true},
	}

	var ctx mir.MContext
	mi := phiToMIR(&ctx, phi, regs)

	require.Equal(t, mir.OpcodePhi, mi.Opcode)
	require.Equal(t, regs[phi], mi.Phi.Dst)
	require.Equal(t, regs[src1], mi.Phi.Sources[0].Reg)
	require.Equal(t, regs[src2], mi.Phi.Sources[1].Reg)
}

// fakeSelector appends one NOP per root it is asked to cover, recording how
// many times it ran and with how many roots, which is all SelectFunction's
// wiring contract promises it.
type fakeSelector struct {
	calls []int // roots count per SelectBlock call
}

func (s *fakeSelector) SelectBlock(ctx *mir.MContext, d *dag.SelectionDAG, roots []dag.SDValue, mblock *mir.Block, frameInfo *mir.MFrameInfo) {
	s.calls = append(s.calls, len(roots))
	for range roots {
		mblock.Append(&mir.MInstruction{ID: ctx.NewInstrID(), Opcode: mir.OpcodeNop})
	}
}

func preg(id mir.RegID) mir.Register { return mir.Register{ID: id, Type: types.I32, IsVirtual: false} }

type fakeRegInfo struct{}

func (fakeRegInfo) StackPointer() mir.Register         { return preg(100) }
func (fakeRegInfo) ReturnAddress() mir.Register        { return preg(101) }
func (fakeRegInfo) ZeroRegister() (mir.Register, bool) { return mir.Register{}, false }
func (fakeRegInfo) IntArgRegs() []mir.Register         { return []mir.Register{preg(0), preg(1)} }
func (fakeRegInfo) FloatArgRegs() []mir.Register       { return nil }
func (fakeRegInfo) CalleeSavedInt() []mir.Register     { return nil }
func (fakeRegInfo) CalleeSavedFloat() []mir.Register   { return nil }
func (fakeRegInfo) Reserved() []mir.Register           { return nil }
func (fakeRegInfo) IntRegs() []mir.Register            { return []mir.Register{preg(0), preg(1)} }
func (fakeRegInfo) FloatRegs() []mir.Register          { return nil }
func (fakeRegInfo) ScratchInt() mir.Register           { return preg(98) }
func (fakeRegInfo) ScratchFloat() mir.Register         { return preg(97) }
func (fakeRegInfo) StackAlignment() int32              { return 16 }

type fakeBackendTarget struct{ selector *fakeSelector }

func (*fakeBackendTarget) Name() string                            { return "fake" }
func (*fakeBackendTarget) Adapter() target.InstrAdapter             { return nil }
func (t *fakeBackendTarget) RegInfo() target.RegInfo                { return fakeRegInfo{} }
func (t *fakeBackendTarget) Selector() target.Selector               { return t.selector }
func (*fakeBackendTarget) ExtraLegalizeRules() []legalize.ExtraRule { return nil }
func (*fakeBackendTarget) MaterializeFrameAccess(*mir.MContext, *mir.MInstruction, int32) *mir.MInstruction {
	return nil
}
func (*fakeBackendTarget) EmitPrologue(*mir.MContext, []mir.Register, int32) []*mir.MInstruction { return nil }
func (*fakeBackendTarget) EmitEpilogue(*mir.MContext, []mir.Register, int32) []*mir.MInstruction { return nil }
func (*fakeBackendTarget) EmitFunctionHeader(*[]string, *mir.Function)          {}
func (*fakeBackendTarget) EmitBlockLabel(*[]string, *mir.Function, mir.BlockID) {}
func (*fakeBackendTarget) EmitInstr(*[]string, *mir.MInstruction)              {}
func (*fakeBackendTarget) EmitGlobal(*[]string, *mir.GlobalVariable)           {}
func (*fakeBackendTarget) EmitSectionHeaders(*[]string)                       {}

func TestSelectFunction_buildsOneBlockPerIRBlockAndLowersParams(t *testing.T) {
	p0 := &mockValue{typ: types.I32}
	add := &mockInstr{mockValue: mockValue{typ: types.I32}, op: ir.OpAdd, operands: []ir.Value{p0, p0}}
	ret := &mockInstr{op: ir.OpRet, operands: []ir.Value{add}}
	blk := &mockBlock{id: 0, instrs: []ir.Instruction{add, ret}}
	fn := &mockFunction{name: "f", params: []ir.Value{p0}, blocks: []ir.Block{blk}}

	bt := &fakeBackendTarget{selector: &fakeSelector{}}
	mf := mir.NewFunction("f")

	err := SelectFunction(fn, mf, bt)
	require.NoError(t, err)

	require.Len(t, mf.BlockOrder, 1)
	require.Equal(t, mir.BlockID(0), mf.BlockOrder[0])
	require.Len(t, bt.selector.calls, 1, "selector runs exactly once for the one IR block")

	// lowerIncomingParams must have prepended one MOVE from the first
	// int arg register into the parameter's assigned vreg.
	entry := mf.EntryBlock()
	require.Equal(t, mir.OpcodeMove, entry.Instrs[0].Opcode)
	_, src := entry.Instrs[0].MoveOperands()
	require.Equal(t, fakeRegInfo{}.IntArgRegs()[0], src)
}

func TestSelectFunction_propagatesBuildBlockErrors(t *testing.T) {
	orphan := &mockValue{typ: types.I32} // never assigned a register by AssignVRegs
	ret := &mockInstr{op: ir.OpRet, operands: []ir.Value{orphan}}
	blk := &mockBlock{id: 0, instrs: []ir.Instruction{ret}}
	fn := &mockFunction{name: "f", blocks: []ir.Block{blk}}

	bt := &fakeBackendTarget{selector: &fakeSelector{}}
	mf := mir.NewFunction("f")

	err := SelectFunction(fn, mf, bt)
	require.Error(t, err)
}

func TestLowerIncomingParams_overflowGoesToStack(t *testing.T) {
	p0 := &mockValue{typ: types.I32}
	p1 := &mockValue{typ: types.I32}
	p2 := &mockValue{typ: types.I32} // IntArgRegs only has 2 slots
	fn := &mockFunction{name: "f", params: []ir.Value{p0, p1, p2}}

	mf := mir.NewFunction("f")
	mf.AddBlock(mir.NewBlock(0))
	regs := dag.ValueRegs{
		p0: mir.Register{ID: 1, Type: types.I32, IsVirtual: true},
		p1: mir.Register{ID: 2, Type: types.I32, IsVirtual: true},
		p2: mir.Register{ID: 3, Type: types.I32, IsVirtual: true},
	}

	lowerIncomingParams(mf, fn, regs, fakeRegInfo{})

	require.True(t, mf.FrameInfo.HasStackParam)
	require.Len(t, mf.FrameInfo.Slots, 1)
	require.Equal(t, mir.SlotStackParam, mf.FrameInfo.Slots[0].Kind)

	entry := mf.EntryBlock()
	require.Len(t, entry.Instrs, 3, "2 register-passed MOVEs + 1 FILoad for the overflow parameter")
	require.Equal(t, mir.OpcodeFILoad, entry.Instrs[2].Opcode)
}
