package ir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/glintlang/glint/internal/ast"
	"github.com/glintlang/glint/internal/diagnostic"
	"github.com/glintlang/glint/internal/scope"
	"github.com/glintlang/glint/internal/value"
)

// noFuncs is a FuncLookup with nothing registered, for tests that don't call.
type noFuncs struct{}

func (noFuncs) LookupFunc(string) (FuncID, value.Type, int, bool) { return 0, value.Unit, 0, false }

func build(t *testing.T, def *ast.FuncDef, funcs FuncLookup) (*Func, *diagnostic.Diagnostics) {
	t.Helper()
	if funcs == nil {
		funcs = noFuncs{}
	}
	diags := diagnostic.New()
	fn := BuildFunction(def, 0, funcs, scope.New(), diags)
	return fn, diags
}

func TestBuildSimpleArithmetic(t *testing.T) {
	// main(): I32 { let x = 5; return 40 + x }
	def := &ast.FuncDef{
		Name:       "main",
		ReturnType: value.I32,
		Body: &ast.Block{Exprs: []ast.Expr{
			&ast.Declare{Name: "x", Value: &ast.IntLit{Value: 5}},
			&ast.Return{Value: &ast.BinaryOp{Op: value.Add, Left: &ast.IntLit{Value: 40}, Right: &ast.Ident{Name: "x"}}},
		}},
	}
	fn, diags := build(t, def, nil)
	require.False(t, diags.HasErrors(), diags.Format("test"))
	require.Equal(t, KReturn, fn.Blocks.Insts[len(fn.Blocks.Insts)-1].Kind)
}

func TestBuildWhileLoopAddsSingleCondParam(t *testing.T) {
	// main(): I32 { let x = 1; while x < 10 { x = x + 1 }; return x }
	def := &ast.FuncDef{
		Name:       "main",
		ReturnType: value.I32,
		Body: &ast.Block{Exprs: []ast.Expr{
			&ast.Declare{Name: "x", Value: &ast.IntLit{Value: 1}},
			&ast.While{
				Cond: &ast.BinaryOp{Op: value.Lt, Left: &ast.Ident{Name: "x"}, Right: &ast.IntLit{Value: 10}},
				Body: &ast.Block{Exprs: []ast.Expr{
					&ast.Assign{Name: "x", Value: &ast.BinaryOp{Op: value.Add, Left: &ast.Ident{Name: "x"}, Right: &ast.IntLit{Value: 1}}},
				}},
			},
			&ast.Return{Value: &ast.Ident{Name: "x"}},
		}},
	}
	fn, diags := build(t, def, nil)
	require.False(t, diags.HasErrors(), diags.Format("test"))

	// cond_bb is block 1 (0=entry, 1=cond, 2=body, 3=out)
	require.Len(t, fn.Blocks.BlockParams[Block(1)], 1, "cond block must have exactly one phi parameter")
}

func TestBuildIfWithoutElseYieldsNoValue(t *testing.T) {
	def := &ast.FuncDef{
		Name:       "main",
		ReturnType: value.Unit,
		Body: &ast.Block{Exprs: []ast.Expr{
			&ast.If{
				Cond: &ast.BoolLit{Value: true},
				Then: &ast.Block{Exprs: []ast.Expr{&ast.IntLit{Value: 1}}},
			},
		}},
	}
	_, diags := build(t, def, nil)
	require.False(t, diags.HasErrors(), diags.Format("test"))
}

func TestBuildIfBranchValueMismatchIsRejected(t *testing.T) {
	def := &ast.FuncDef{
		Name:       "main",
		ReturnType: value.I32,
		Body: &ast.Block{Exprs: []ast.Expr{
			&ast.If{
				Cond: &ast.BoolLit{Value: true},
				Then: &ast.Return{Value: &ast.IntLit{Value: 1}},
				Else: &ast.IntLit{Value: 2}, // produces a value, Then does not
			},
		}},
	}
	_, diags := build(t, def, nil)
	require.True(t, diags.HasErrors())
}

func TestBuildUndeclaredNameIsReported(t *testing.T) {
	def := &ast.FuncDef{
		Name:       "main",
		ReturnType: value.I32,
		Body:       &ast.Return{Value: &ast.Ident{Name: "nope"}},
	}
	_, diags := build(t, def, nil)
	require.True(t, diags.HasErrors())
	require.Contains(t, diags.Format("t"), "undeclared name")
}

func TestBuildScopeShadowingDoesNotEscapeBlock(t *testing.T) {
	// main(): I32 { let x = 1; { let x = 5; x = x + 1 }; return x }
	def := &ast.FuncDef{
		Name:       "main",
		ReturnType: value.I32,
		Body: &ast.Block{Exprs: []ast.Expr{
			&ast.Declare{Name: "x", Value: &ast.IntLit{Value: 1}},
			&ast.Block{Exprs: []ast.Expr{
				&ast.Declare{Name: "x", Value: &ast.IntLit{Value: 5}},
				&ast.Assign{Name: "x", Value: &ast.BinaryOp{Op: value.Add, Left: &ast.Ident{Name: "x"}, Right: &ast.IntLit{Value: 1}}},
			}},
			&ast.Return{Value: &ast.Ident{Name: "x"}},
		}},
	}
	fn, diags := build(t, def, nil)
	require.False(t, diags.HasErrors(), diags.Format("test"))

	var buf strings.Builder
	fn.Dump(&buf)
	// The outer x must still be the Const(1) variable by the time of
	// return: the inner block's reassignment must not propagate out.
	last := fn.Blocks.Insts[len(fn.Blocks.Insts)-1]
	require.Equal(t, KReturn, last.Kind)
	require.Equal(t, value.I32, fn.Blocks.VarTypeOf(last.Ret))
	first := fn.Blocks.Insts[0]
	require.Equal(t, KConst, first.Kind)
	require.Equal(t, int32(1), first.Const.AsI32())
	require.Equal(t, first.Dst, last.Ret)
}

func TestBuildCallResolvesCalleeReturnType(t *testing.T) {
	funcs := fakeFuncs{"fib": {id: 1, ret: value.I32, numParams: 1}}
	def := &ast.FuncDef{
		Name:       "main",
		ReturnType: value.I32,
		Body: &ast.Block{Exprs: []ast.Expr{
			&ast.Return{Value: &ast.Call{Callee: &ast.Ident{Name: "fib"}, Args: []ast.Expr{&ast.IntLit{Value: 7}}}},
		}},
	}
	fn, diags := build(t, def, funcs)
	require.False(t, diags.HasErrors(), diags.Format("test"))
	last := fn.Blocks.Insts[len(fn.Blocks.Insts)-1]
	require.Equal(t, KReturn, last.Kind)
	callInst := fn.Blocks.Insts[len(fn.Blocks.Insts)-2]
	require.Equal(t, KCall, callInst.Kind)
	require.Equal(t, value.I32, fn.Blocks.VarTypeOf(callInst.Dst))
}

type fakeFuncInfo struct {
	id        FuncID
	ret       value.Type
	numParams int
}

type fakeFuncs map[string]fakeFuncInfo

func (f fakeFuncs) LookupFunc(name string) (FuncID, value.Type, int, bool) {
	info, ok := f[name]
	return info.id, info.ret, info.numParams, ok
}
