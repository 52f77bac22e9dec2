package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSingletons_haveExpectedKindWidthAndBytes(t *testing.T) {
	require.Equal(t, KindInt, I32.Kind())
	require.Equal(t, B32, I32.Width())
	require.Equal(t, 4, I32.Bytes())

	require.Equal(t, KindInt, I64.Kind())
	require.Equal(t, B64, I64.Width())
	require.Equal(t, 8, I64.Bytes())

	require.Equal(t, KindFloat, F32.Kind())
	require.Equal(t, 4, F32.Bytes())

	require.Equal(t, KindFloat, F64.Kind())
	require.Equal(t, 8, F64.Bytes())

	require.Equal(t, KindToken, Token.Kind())
	require.Equal(t, B64, Token.Width())
}

func TestPTR_isTheSameIdentityAsI64(t *testing.T) {
	require.True(t, PTR == I64, "PTR must share I64's identity, not a distinct instance")
}

func TestDataType_stringUsesTheCanonicalName(t *testing.T) {
	require.Equal(t, "i32", I32.String())
	require.Equal(t, "i64", I64.String())
	require.Equal(t, "f32", F32.String())
	require.Equal(t, "f64", F64.String())
	require.Equal(t, "token", Token.String())
}

func TestDataType_stringOnNilReceiverDoesNotPanic(t *testing.T) {
	var dt *DataType
	require.Equal(t, "<nil>", dt.String())
}

func TestKind_stringCoversEveryKind(t *testing.T) {
	require.Equal(t, "int", KindInt.String())
	require.Equal(t, "float", KindFloat.String())
	require.Equal(t, "token", KindToken.String())
	require.Equal(t, "invalid", KindInvalid.String())
}

func TestWidth_stringCoversEveryWidth(t *testing.T) {
	require.Equal(t, "32", B32.String())
	require.Equal(t, "64", B64.String())
	require.Equal(t, "0", WidthInvalid.String())
}
