package emit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nkucc/mirbackend/internal/legalize"
	"github.com/nkucc/mirbackend/internal/mir"
	"github.com/nkucc/mirbackend/internal/target"
	"github.com/nkucc/mirbackend/internal/types"
)

// fakeBackendTarget records enough shape (textual sentinels per Emit call)
// to assert Module/Function walk order without depending on a real target.
type fakeBackendTarget struct{}

func (fakeBackendTarget) Name() string                            { return "fake" }
func (fakeBackendTarget) Adapter() target.InstrAdapter             { return nil }
func (fakeBackendTarget) RegInfo() target.RegInfo                  { return nil }
func (fakeBackendTarget) Selector() target.Selector                { return nil }
func (fakeBackendTarget) ExtraLegalizeRules() []legalize.ExtraRule { return nil }
func (fakeBackendTarget) MaterializeFrameAccess(*mir.MContext, *mir.MInstruction, int32) *mir.MInstruction {
	return nil
}
func (fakeBackendTarget) EmitPrologue(*mir.MContext, []mir.Register, int32) []*mir.MInstruction {
	return nil
}
func (fakeBackendTarget) EmitEpilogue(*mir.MContext, []mir.Register, int32) []*mir.MInstruction {
	return nil
}
func (fakeBackendTarget) EmitFunctionHeader(out *[]string, f *mir.Function) {
	*out = append(*out, "header:"+f.Name)
}
func (fakeBackendTarget) EmitBlockLabel(out *[]string, f *mir.Function, id mir.BlockID) {
	*out = append(*out, "label:"+f.Name)
}
func (fakeBackendTarget) EmitInstr(out *[]string, inst *mir.MInstruction) {
	*out = append(*out, "instr")
}
func (fakeBackendTarget) EmitGlobal(out *[]string, g *mir.GlobalVariable) {
	*out = append(*out, "global:"+g.Name)
}
func (fakeBackendTarget) EmitSectionHeaders(out *[]string) {
	*out = append(*out, "section")
}

func TestFunction_walksBlocksInBlockOrderEmittingLabelThenInstrsPerBlock(t *testing.T) {
	f := mir.NewFunction("f")
	b0 := mir.NewBlock(0)
	b0.Append(&mir.MInstruction{ID: 1})
	b1 := mir.NewBlock(1)
	b1.Append(&mir.MInstruction{ID: 2})
	b1.Append(&mir.MInstruction{ID: 3})
	f.AddBlock(b0)
	f.AddBlock(b1)

	var out []string
	Function(&out, f, fakeBackendTarget{})

	require.Equal(t, []string{
		"header:f",
		"label:f", "instr",
		"label:f", "instr", "instr",
	}, out)
}

func TestModule_emitsSectionHeadersThenGlobalsThenFunctionsInOrder(t *testing.T) {
	m := mir.NewModule("m")
	m.AddGlobal(&mir.GlobalVariable{Name: "g", Type: types.I32})
	f := mir.NewFunction("f")
	f.AddBlock(mir.NewBlock(0))
	m.AddFunction(f)

	out := Module(m, fakeBackendTarget{})

	require.Equal(t, "section\nglobal:g\nheader:f\nlabel:f\n", out)
}
