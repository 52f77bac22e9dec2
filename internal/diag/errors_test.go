package diag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMalformedIR_errorIncludesBlockAndStage(t *testing.T) {
	err := MalformedIR("f", 3, "isel", "missing terminator")
	require.EqualError(t, err, "malformed-ir: missing terminator (function f, block 3, stage isel)")

	var fatal *Fatal
	require.ErrorAs(t, err, &fatal)
	require.Equal(t, MalformedIR, fatal.Kind)
	require.True(t, fatal.HasBlock)
}

func TestUnsupportedOp_errorOmitsBlock(t *testing.T) {
	err := UnsupportedOp("f", "isel", "no lowering for opcode %d", 7)
	require.EqualError(t, err, "unsupported-operation: no lowering for opcode 7 (function f, stage isel)")

	var fatal *Fatal
	require.ErrorAs(t, err, &fatal)
	require.False(t, fatal.HasBlock)
}

func TestRegisterExhaustion_errorCarriesItsKind(t *testing.T) {
	err := RegisterExhaustion("f", "regalloc", "out of int registers")
	var fatal *Fatal
	require.ErrorAs(t, err, &fatal)
	require.Equal(t, RegisterClassExhausted, fatal.Kind)
}

func TestKind_stringCoversEveryKindAndDefault(t *testing.T) {
	require.Equal(t, "malformed-ir", MalformedIR.String())
	require.Equal(t, "unsupported-operation", UnsupportedOperation.String())
	require.Equal(t, "register-class-exhausted", RegisterClassExhausted.String())
	require.Equal(t, "unknown", Kind(99).String())
}

func TestInternalInvariant_panicsWithBugPrefix(t *testing.T) {
	require.PanicsWithValue(t, "BUG: cfg has a dangling edge", func() {
		InternalInvariant("f", "cfg", "cfg has a dangling edge")
	})
}
