package arm64

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nkucc/mirbackend/internal/mir"
	"github.com/nkucc/mirbackend/internal/types"
)

func TestRegInfo_argAndCalleeSavedPoolsHaveAAPCS64Shape(t *testing.T) {
	ri := reginfo{}
	require.Len(t, ri.IntArgRegs(), 8)
	require.Len(t, ri.FloatArgRegs(), 8)
	require.Len(t, ri.CalleeSavedInt(), 10)
	require.Len(t, ri.CalleeSavedFloat(), 8)
	require.Equal(t, xreg(19), ri.CalleeSavedInt()[0])
	require.Equal(t, xreg(28), ri.CalleeSavedInt()[9])
}

func TestRegInfo_reservedRegistersAreExcludedFromIntRegs(t *testing.T) {
	ri := reginfo{}
	reserved := ri.Reserved()
	require.Contains(t, reserved, xreg(regSP))
	require.Contains(t, reserved, xreg(regXZR))
	require.Contains(t, reserved, xreg(regFP))
	require.Contains(t, reserved, xreg(regLR))

	intRegs := ri.IntRegs()
	require.NotContains(t, intRegs, xreg(regSP))
	require.NotContains(t, intRegs, xreg(regFP))
	require.NotContains(t, intRegs, xreg(regLR))

	// IntRegs is already filtered against Reserved: the graph-coloring
	// allocator takes IntRegs() as its pool as-is, so the reserved scratch
	// register x16 must not appear here.
	require.NotContains(t, intRegs, xreg(16))
}

func TestRegInfo_scratchRegistersAreDistinctFromArgAndCalleeSavedPools(t *testing.T) {
	ri := reginfo{}
	require.Equal(t, xreg(16), ri.ScratchInt())
	require.Equal(t, dreg(16), ri.ScratchFloat())
	require.NotContains(t, ri.IntRegs(), ri.ScratchInt())
	require.NotContains(t, ri.FloatRegs(), ri.ScratchFloat())
}

func TestRegInfo_stackAlignmentIsSixteen(t *testing.T) {
	require.Equal(t, int32(16), reginfo{}.StackAlignment())
}

func TestXregDregCarryDistinctTypesAtTheSameID(t *testing.T) {
	x := xreg(3)
	d := dreg(3)
	require.Equal(t, mir.RegID(3), x.ID)
	require.Equal(t, mir.RegID(3), d.ID)
	require.NotEqual(t, x, d, "same numeric id in different classes must not compare equal")
	require.Equal(t, types.I64, x.Type)
	require.Equal(t, types.F64, d.Type)
}
