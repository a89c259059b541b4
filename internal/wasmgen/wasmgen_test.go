package wasmgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/glintlang/glint/internal/ast"
	"github.com/glintlang/glint/internal/diagnostic"
	"github.com/glintlang/glint/internal/ir"
	"github.com/glintlang/glint/internal/scope"
	"github.com/glintlang/glint/internal/value"
)

type noFuncs struct{}

func (noFuncs) LookupFunc(string) (ir.FuncID, value.Type, int, bool) {
	return 0, value.Unit, 0, false
}

func buildFn(t *testing.T, def *ast.FuncDef) *ir.Func {
	t.Helper()
	diags := diagnostic.New()
	fn := ir.BuildFunction(def, 0, noFuncs{}, scope.New(), diags)
	require.False(t, diags.HasErrors(), diags.Format("test"))
	return fn
}

func arithmeticFn() *ast.FuncDef {
	return &ast.FuncDef{
		Name:       "main",
		ReturnType: value.I32,
		Body: &ast.Block{Exprs: []ast.Expr{
			&ast.Return{Value: &ast.BinaryOp{Op: value.Add, Left: &ast.IntLit{Value: 40}, Right: &ast.IntLit{Value: 5}}},
		}},
	}
}

func whileFn() *ast.FuncDef {
	return &ast.FuncDef{
		Name:       "count",
		ReturnType: value.I32,
		Body: &ast.Block{Exprs: []ast.Expr{
			&ast.Declare{Name: "x", Value: &ast.IntLit{Value: 0}},
			&ast.While{
				Cond: &ast.BinaryOp{Op: value.Lt, Left: &ast.Ident{Name: "x"}, Right: &ast.IntLit{Value: 10}},
				Body: &ast.Assign{Name: "x", Value: &ast.BinaryOp{Op: value.Add, Left: &ast.Ident{Name: "x"}, Right: &ast.IntLit{Value: 1}}},
			},
			&ast.Return{Value: &ast.Ident{Name: "x"}},
		}},
	}
}

func ifElseFn() *ast.FuncDef {
	return &ast.FuncDef{
		Name:       "pick",
		ReturnType: value.I32,
		Body: &ast.Block{Exprs: []ast.Expr{
			&ast.If{
				Cond: &ast.BoolLit{Value: true},
				Then: &ast.Return{Value: &ast.IntLit{Value: 1}},
				Else: &ast.Return{Value: &ast.IntLit{Value: 2}},
			},
		}},
	}
}

func TestRelooperArithmeticHasNoControlFlow(t *testing.T) {
	fn := buildFn(t, arithmeticFn())
	nodes := Reloop(fn)
	for _, n := range nodes {
		require.False(t, n.isLoop)
		require.False(t, n.isIf)
	}
}

func TestRelooperWrapsLoopHeaderInLoopConstruct(t *testing.T) {
	fn := buildFn(t, whileFn())
	nodes := Reloop(fn)

	found := false
	for _, n := range nodes {
		if n.isLoop {
			found = true
		}
	}
	require.True(t, found, "while-loop body must be wrapped in a Wasm loop construct")
}

// containsLoop reports whether a loop node appears anywhere in nodes or its
// nested if/loop bodies.
func containsLoop(nodes []node) bool {
	for _, n := range nodes {
		if n.isLoop {
			return true
		}
		if n.isIf && (containsLoop(n.thenBody) || containsLoop(n.elseBody)) {
			return true
		}
	}
	return false
}

// findLoop returns the first loop node found at the top level of nodes.
func findLoop(nodes []node) *node {
	for i := range nodes {
		if nodes[i].isLoop {
			return &nodes[i]
		}
	}
	return nil
}

// findIf returns the first if node found anywhere in nodes, searching into
// loop bodies but not recursing into a found if's own arms.
func findIf(nodes []node) *node {
	for i := range nodes {
		if nodes[i].isIf {
			return &nodes[i]
		}
		if nodes[i].isLoop {
			if found := findIf(nodes[i].loopBody); found != nil {
				return found
			}
		}
	}
	return nil
}

// TestRelooperLoopEnclosesBranchNotReverse guards against the fallthrough
// bug where a loop header reached by a JumpTo from the preceding block (the
// only way a while's cond block is ever first entered) was lowered with
// addBlock instead of reloop, so its own IsLoop-ness was never checked and
// no enclosing loop construct was emitted at all — or, with the CFG-level
// companion bug, a loop construct appeared one level too deep, wrapping
// only the body block instead of enclosing the whole cond/body branch.
// Here the while's condition branch (the `if`) must be nested inside the
// loop construct, and the body's jump back to cond must be a `br` of depth
// 1 counted from inside that if (0 = the if itself, 1 = the enclosing
// loop) — not a depth that only reaches past the if.
func TestRelooperLoopEnclosesBranchNotReverse(t *testing.T) {
	fn := buildFn(t, whileFn())
	nodes := Reloop(fn)

	loopNode := findLoop(nodes)
	require.NotNil(t, loopNode, "top-level output must contain a loop node wrapping the cond block")

	ifNode := findIf(loopNode.loopBody)
	require.NotNil(t, ifNode, "the loop's body must contain the cond branch")
	require.NotEmpty(t, ifNode.thenBody)
	require.NotEmpty(t, ifNode.elseBody)

	require.False(t, containsLoop(ifNode.thenBody), "the body arm must not itself contain a second, misnested loop")
	require.False(t, containsLoop(ifNode.elseBody))

	var br *node
	for i := range ifNode.thenBody {
		if ifNode.thenBody[i].code == cBr {
			br = &ifNode.thenBody[i]
		}
	}
	require.NotNil(t, br, "the body arm must branch back via br, closing the loop")
	require.Equal(t, 1, br.depth, "br must count 0=if, 1=the enclosing loop, to continue the loop rather than exit the if")
}

func TestRelooperBranchProducesIfConstructOnBothArms(t *testing.T) {
	fn := buildFn(t, ifElseFn())
	nodes := Reloop(fn)

	var ifNode *node
	for i := range nodes {
		if nodes[i].isIf {
			ifNode = &nodes[i]
		}
	}
	require.NotNil(t, ifNode)
	require.NotEmpty(t, ifNode.thenBody)
	require.NotEmpty(t, ifNode.elseBody)
}

func TestEmitWATProducesWellFormedModule(t *testing.T) {
	fn := buildFn(t, arithmeticFn())
	out := EmitWAT([]*ir.Func{fn})

	require.True(t, strings.HasPrefix(out, "(module\n"))
	require.Contains(t, out, `(export "main")`)
	require.Contains(t, out, "i32.add")
	require.True(t, strings.HasSuffix(out, ")\n"))
}

func TestEmitWATIfElseEmitsBothArms(t *testing.T) {
	fn := buildFn(t, ifElseFn())
	out := EmitWAT([]*ir.Func{fn})

	require.Contains(t, out, "if\n")
	require.Contains(t, out, "else\n")
}

// TestEmitWATLoopEnclosesIfAndContinuesByBranchingOne guards the
// fallthrough regression at the rendered-text level: the loop construct
// must textually enclose the if construct (so "loop" is written before
// "if"), and the branch that sends control back to the loop condition must
// count out exactly one enclosing construct ("br 1") from inside that if,
// appearing after "if" and before its matching "else".
func TestEmitWATLoopEnclosesIfAndContinuesByBranchingOne(t *testing.T) {
	fn := buildFn(t, whileFn())
	out := EmitWAT([]*ir.Func{fn})

	loopAt := strings.Index(out, "loop\n")
	ifAt := strings.Index(out, "if\n")
	elseAt := strings.Index(out, "else\n")
	brAt := strings.Index(out, "br 1\n")

	require.GreaterOrEqual(t, loopAt, 0)
	require.GreaterOrEqual(t, ifAt, 0)
	require.GreaterOrEqual(t, elseAt, 0)
	require.GreaterOrEqual(t, brAt, 0)

	require.Less(t, loopAt, ifAt, "the loop must enclose the if, not the reverse")
	require.Less(t, ifAt, brAt, "the branch back to the loop is inside the if")
	require.Less(t, brAt, elseAt, "the branch back to the loop is in the then arm, before else")
}

func TestEmitBinaryStartsWithMagicAndVersion(t *testing.T) {
	fn := buildFn(t, arithmeticFn())
	out := EmitBinary([]*ir.Func{fn})

	require.Equal(t, wasmMagic, out[:4])
	require.Equal(t, wasmVersion, out[4:8])
	require.Equal(t, sectionType, out[8])
}

func TestEmitBinaryWhileLoopEmitsLoopOpcode(t *testing.T) {
	fn := buildFn(t, whileFn())
	out := EmitBinary([]*ir.Func{fn})

	found := false
	// Look for the `loop` opcode followed by its void block type: a lone
	// 0x03 byte would also match the function section's id.
	for i := 0; i+1 < len(out); i++ {
		if out[i] == opLoop && out[i+1] == blockVoid {
			found = true
			break
		}
	}
	require.True(t, found)
}
