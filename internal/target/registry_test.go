package target

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nkucc/mirbackend/internal/legalize"
	"github.com/nkucc/mirbackend/internal/mir"
)

type stubTarget struct{ name string }

func (s stubTarget) Name() string                            { return s.name }
func (stubTarget) Adapter() InstrAdapter                      { return nil }
func (stubTarget) RegInfo() RegInfo                           { return nil }
func (stubTarget) Selector() Selector                         { return nil }
func (stubTarget) ExtraLegalizeRules() []legalize.ExtraRule   { return nil }
func (stubTarget) MaterializeFrameAccess(*mir.MContext, *mir.MInstruction, int32) *mir.MInstruction {
	return nil
}
func (stubTarget) EmitPrologue(*mir.MContext, []mir.Register, int32) []*mir.MInstruction { return nil }
func (stubTarget) EmitEpilogue(*mir.MContext, []mir.Register, int32) []*mir.MInstruction { return nil }
func (stubTarget) EmitFunctionHeader(*[]string, *mir.Function)          {}
func (stubTarget) EmitBlockLabel(*[]string, *mir.Function, mir.BlockID) {}
func (stubTarget) EmitInstr(*[]string, *mir.MInstruction)               {}
func (stubTarget) EmitGlobal(*[]string, *mir.GlobalVariable)            {}
func (stubTarget) EmitSectionHeaders(*[]string)                         {}

func TestRegisterFactory_lookupReturnsTheRegisteredBackendAndMissesUnknownNames(t *testing.T) {
	RegisterFactory("stub-a", func() BackendTarget { return stubTarget{name: "stub-a"} })

	bt1, ok := Lookup("stub-a")
	require.True(t, ok)
	require.Equal(t, "stub-a", bt1.Name())

	_, ok = Lookup("does-not-exist")
	require.False(t, ok)
}

func TestRegisterFactory_reregisteringUnderTheSameNameOverwrites(t *testing.T) {
	RegisterFactory("stub-b", func() BackendTarget { return stubTarget{name: "first"} })
	RegisterFactory("stub-b", func() BackendTarget { return stubTarget{name: "second"} })

	bt, ok := Lookup("stub-b")
	require.True(t, ok)
	require.Equal(t, "second", bt.Name())
}

func TestNames_isSortedAndIncludesEveryRegisteredName(t *testing.T) {
	RegisterFactory("stub-z", func() BackendTarget { return stubTarget{name: "stub-z"} })
	RegisterFactory("stub-m", func() BackendTarget { return stubTarget{name: "stub-m"} })

	names := Names()
	require.Contains(t, names, "stub-z")
	require.Contains(t, names, "stub-m")
	for i := 1; i < len(names); i++ {
		require.LessOrEqual(t, names[i-1], names[i], "Names must be sorted")
	}
}
