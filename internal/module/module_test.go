package module

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/glintlang/glint/internal/value"
)

func TestExecSimpleArithmetic(t *testing.T) {
	m, err := FromSource("t.glint", `fn main(): I32 { return 40 + 5; }`)
	require.NoError(t, err)

	got, err := m.Exec("main", nil)
	require.NoError(t, err)
	require.Equal(t, int32(45), got.AsI32())
}

func TestExecWhileLoopCountsToTen(t *testing.T) {
	m, err := FromSource("t.glint", `
		fn main(): I32 {
			let x = 0;
			while x < 10 {
				x = x + 1;
			}
			return x;
		}
	`)
	require.NoError(t, err)

	got, err := m.Exec("main", nil)
	require.NoError(t, err)
	require.Equal(t, int32(10), got.AsI32())
}

func TestExecIfElseWithoutFallthrough(t *testing.T) {
	m, err := FromSource("t.glint", `
		fn main(): I32 {
			if true {
				return 1;
			} else {
				return 2;
			}
		}
	`)
	require.NoError(t, err)

	got, err := m.Exec("main", nil)
	require.NoError(t, err)
	require.Equal(t, int32(1), got.AsI32())
}

func TestExecRecursiveFib(t *testing.T) {
	m, err := FromSource("t.glint", `
		fn fib(n: I32): I32 {
			if n < 2 {
				n
			} else {
				fib(n - 1) + fib(n - 2)
			}
		}
		fn main(): I32 { return fib(10); }
	`)
	require.NoError(t, err)

	got, err := m.Exec("main", nil)
	require.NoError(t, err)
	require.Equal(t, int32(55), got.AsI32())
}

func TestExecScopeShadowingDoesNotEscapeBlock(t *testing.T) {
	m, err := FromSource("t.glint", `
		fn main(): I32 {
			let x = 1;
			if true {
				let x = 99;
			}
			return x;
		}
	`)
	require.NoError(t, err)

	got, err := m.Exec("main", nil)
	require.NoError(t, err)
	require.Equal(t, int32(1), got.AsI32())
}

func TestExecFloatNegation(t *testing.T) {
	m, err := FromSource("t.glint", `fn main(): F64 { return -42.2; }`)
	require.NoError(t, err)

	got, err := m.Exec("main", nil)
	require.NoError(t, err)
	require.Equal(t, -42.2, got.AsF64())
}

func TestFromSourceParseErrorStopsBeforeBuild(t *testing.T) {
	_, err := FromSource("t.glint", `fn main(: I32 { return 1; }`)
	require.Error(t, err)
}

func TestFromASTDuplicateFunctionNameIsRejected(t *testing.T) {
	_, err := FromSource("t.glint", `
		fn f(): I32 { return 1; }
		fn f(): I32 { return 2; }
	`)
	require.Error(t, err)
}

func TestFromASTMissingReturnIsRejected(t *testing.T) {
	_, err := FromSource("t.glint", `fn main(): I32 { let x = 1; }`)
	require.Error(t, err)
}

func TestToWATProducesExportedFunction(t *testing.T) {
	m, err := FromSource("t.glint", `fn main(): I32 { return 40 + 5; }`)
	require.NoError(t, err)

	wat := m.ToWAT()
	require.True(t, strings.HasPrefix(wat, "(module\n"))
	require.Contains(t, wat, `(export "main")`)
}

func TestToWASMProducesValidMagicAndVersion(t *testing.T) {
	m, err := FromSource("t.glint", `fn main(): I32 { return 1; }`)
	require.NoError(t, err)

	bin := m.ToWASM()
	require.Equal(t, []byte{0x00, 0x61, 0x73, 0x6D}, bin[:4])
	require.Equal(t, []byte{0x01, 0x00, 0x00, 0x00}, bin[4:8])
}

func TestDumpIRStableFormat(t *testing.T) {
	m, err := FromSource("t.glint", `fn main(): I32 { return 40 + 5; }`)
	require.NoError(t, err)

	dump := m.DumpIRString()
	require.Contains(t, dump, "function main ():")
	require.Contains(t, dump, "return v")
}

func TestMutualForwardReferenceResolves(t *testing.T) {
	m, err := FromSource("t.glint", `
		fn isEven(n: I32): Bool {
			if n == 0 {
				true
			} else {
				isOdd(n - 1)
			}
		}
		fn isOdd(n: I32): Bool {
			if n == 0 {
				false
			} else {
				isEven(n - 1)
			}
		}
		fn main(): Bool { return isEven(10); }
	`)
	require.NoError(t, err)

	got, err := m.Exec("main", nil)
	require.NoError(t, err)
	require.True(t, got.AsBool())
}
