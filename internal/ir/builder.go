package ir

import (
	"github.com/pkg/errors"

	"github.com/samber/lo"

	"github.com/glintlang/glint/internal/ast"
	"github.com/glintlang/glint/internal/diagnostic"
	"github.com/glintlang/glint/internal/scope"
	"github.com/glintlang/glint/internal/value"
)

// FuncLookup resolves a callee name to the function table entry the module
// assembly pass (spec.md §4.7) has already registered, so that mutually
// recursive and forward-referencing calls lower correctly.
type FuncLookup interface {
	LookupFunc(name string) (id FuncID, returnType value.Type, numParams int, ok bool)
}

// Builder lowers one function body's AST into Blocks, per spec.md §4.3.
// A fresh Builder is used per function; the module assembly pass drives it.
type Builder struct {
	blocks *Blocks
	funcs  FuncLookup
	diags  *diagnostic.Diagnostics
}

// NewBuilder creates a Builder whose Blocks starts with block 0 carrying
// paramTypes as its entry parameters (the function's formal parameters).
func NewBuilder(paramTypes []value.Type, funcs FuncLookup, diags *diagnostic.Diagnostics) *Builder {
	return &Builder{
		blocks: NewBlocks(paramTypes),
		funcs:  funcs,
		diags:  diags,
	}
}

// Blocks returns the Blocks under construction.
func (b *Builder) Blocks() *Blocks { return b.blocks }

func (b *Builder) errorf(line, col int, format string, args ...interface{}) {
	b.diags.Errorf(line, col, format, args...)
}

// BuildFunction lowers a full FuncDef into a Func, given the module-level
// scope of already-declared names (spec.md §4.7 step 3: "creating a child
// scope off the module scope; declaring each formal parameter").
func BuildFunction(def *ast.FuncDef, id FuncID, funcs FuncLookup, moduleScope *scope.Scope, diags *diagnostic.Diagnostics) *Func {
	paramTypes := make([]value.Type, len(def.Params))
	for i, p := range def.Params {
		paramTypes[i] = p.Type
	}

	b := NewBuilder(paramTypes, funcs, diags)
	fnScope := moduleScope.Child()
	for i, p := range def.Params {
		fnScope.Declare(p.Name, int(b.blocks.BlockParams[0][i]))
	}

	ret := b.Lower(fnScope, def.Body)
	// A function whose body contains no `return` and yields no value is
	// only valid when the declared return type is Unit; otherwise this is
	// a missing-return compile error (spec.md §8: "an empty function body
	// with declared return type I32 is rejected").
	if ret != NoValue {
		// The body produced a trailing-expression value but never an
		// explicit `return` — treat it as an implicit return of that
		// value, which keeps e.g. `fn f(): I32 { 1 + 1 }` usable without
		// forcing every body to end in `return`.
		b.blocks.AddReturn(ret)
	} else if def.ReturnType != value.Unit {
		hasReturn := false
		for _, inst := range b.blocks.Insts {
			if inst.Kind == KReturn {
				hasReturn = true
				break
			}
		}
		if !hasReturn {
			b.errorf(def.Line, def.Col, "function %q must return a value of type %s", def.Name, def.ReturnType)
		}
	}

	return &Func{
		Name:       def.Name,
		NumParams:  len(def.Params),
		ReturnType: def.ReturnType,
		Blocks:     b.blocks,
	}
}

// Lower lowers one expression in scope s, returning the variable holding
// its result or NoValue for a statement-shaped expression.
func (b *Builder) Lower(s *scope.Scope, e ast.Expr) Var {
	switch n := e.(type) {
	case *ast.IntLit:
		return b.blocks.AddConst(value.I32Value(n.Value))
	case *ast.FloatLit:
		return b.blocks.AddConst(value.F64Value(n.Value))
	case *ast.BoolLit:
		return b.blocks.AddConst(value.BoolValue(n.Value))
	case *ast.Ident:
		return b.lowerIdent(s, n)
	case *ast.BinaryOp:
		return b.lowerBinary(s, n)
	case *ast.Negative:
		return b.lowerNegative(s, n)
	case *ast.If:
		return b.lowerIf(s, n)
	case *ast.While:
		return b.lowerWhile(s, n)
	case *ast.Return:
		v := b.Lower(s, n.Value)
		b.blocks.AddReturn(v)
		return NoValue
	case *ast.Declare:
		v := b.Lower(s, n.Value)
		s.Declare(n.Name, int(v))
		return NoValue
	case *ast.Assign:
		v := b.Lower(s, n.Value)
		s.Assign(n.Name, int(v))
		return NoValue
	case *ast.Block:
		return b.lowerBlock(s, n)
	case *ast.Call:
		return b.lowerCall(s, n)
	default:
		panic(errors.Errorf("ir: builder encountered unknown AST node %T", e))
	}
}

func (b *Builder) lowerIdent(s *scope.Scope, n *ast.Ident) Var {
	v, ok := s.Get(n.Name)
	if !ok {
		b.errorf(n.Line, n.Col, "undeclared name %q", n.Name)
		return b.blocks.AddConst(value.I32Value(0))
	}
	return Var(v)
}

func (b *Builder) lowerBinary(s *scope.Scope, n *ast.BinaryOp) Var {
	a := b.Lower(s, n.Left)
	bb := b.Lower(s, n.Right)

	at, bt := b.blocks.VarTypeOf(a), b.blocks.VarTypeOf(bb)
	if at != bt {
		b.errorf(n.Line, n.Col, "type mismatch: %s %s %s", at, n.Op, bt)
		return b.blocks.AddConst(value.BoolValue(false))
	}
	if !operandTypeValid(n.Op, at) {
		b.errorf(n.Line, n.Col, "operator %s is not defined for %s", n.Op, at)
	}
	return b.blocks.AddOp(n.Op, a, bb)
}

func operandTypeValid(op value.Op, t value.Type) bool {
	switch op {
	case value.Eq, value.Ne:
		return true
	case value.Add, value.Sub, value.Mul, value.Div, value.Lt, value.Le, value.Gt, value.Ge:
		return t == value.I32 || t == value.F64
	default:
		return false
	}
}

func (b *Builder) lowerNegative(s *scope.Scope, n *ast.Negative) Var {
	a := b.Lower(s, n.Operand)
	t := b.blocks.VarTypeOf(a)
	if t != value.I32 && t != value.F64 {
		b.errorf(n.Line, n.Col, "Neg is not defined for %s", t)
	}
	return b.blocks.AddUOp(value.Neg, a)
}

func (b *Builder) lowerCall(s *scope.Scope, n *ast.Call) Var {
	ident, ok := n.Callee.(*ast.Ident)
	if !ok {
		b.errorf(n.Line, n.Col, "call target must be a named function")
		return b.blocks.AddConst(value.I32Value(0))
	}
	id, retType, numParams, ok := b.funcs.LookupFunc(ident.Name)
	if !ok {
		b.errorf(n.Line, n.Col, "undeclared function %q", ident.Name)
		return b.blocks.AddConst(value.I32Value(0))
	}
	if len(n.Args) != numParams {
		b.errorf(n.Line, n.Col, "function %q expects %d argument(s), got %d", ident.Name, numParams, len(n.Args))
	}
	args := make([]Var, len(n.Args))
	for i, a := range n.Args {
		args[i] = b.Lower(s, a)
	}
	return b.blocks.AddCall(id, retType, args)
}

// lowerBlock implements spec.md §4.3's Block rule: a fresh child scope,
// sequential lowering, assign-map propagation to the parent, and a result
// that is simply whatever the last child expression returned — NoValue for
// a statement-shaped last child, a variable for a value-producing one.
func (b *Builder) lowerBlock(s *scope.Scope, n *ast.Block) Var {
	child := s.Child()
	last := NoValue
	for _, e := range n.Exprs {
		last = b.Lower(child, e)
	}
	child.PropagateTo(s)
	return last
}

// lowerIf implements spec.md §4.3's phi construction for if/else.
func (b *Builder) lowerIf(s *scope.Scope, n *ast.If) Var {
	cond := b.Lower(s, n.Cond)
	if b.blocks.VarTypeOf(cond) != value.Bool {
		b.errorf(n.Line, n.Col, "if condition must be Bool, got %s", b.blocks.VarTypeOf(cond))
	}

	thenBB := b.blocks.NewBlock()
	elseBB := b.blocks.NewBlock()
	outBB := b.blocks.NewBlock()
	b.blocks.AddBranch(cond, thenBB, elseBB)

	thenScope, elseScope := s.Branch()

	b.blocks.Label(thenBB)
	aRet := b.Lower(thenScope, n.Then)
	aJump := b.blocks.AddJump(outBB)

	b.blocks.Label(elseBB)
	var bRet Var = NoValue
	if n.Else != nil {
		bRet = b.Lower(elseScope, n.Else)
	}
	bJump := b.blocks.AddJump(outBB)

	b.blocks.Label(outBB)

	names := lo.Uniq(append(append([]string{}, thenScope.AssignedNames()...), elseScope.AssignedNames()...))
	for _, name := range names {
		old, ok := s.Get(name)
		if !ok {
			panic(errors.Errorf("ir: if-phi reassigned undeclared name %q", name))
		}
		aVal, ok := thenScope.AssignedVar(name)
		if !ok {
			aVal = old
		}
		bVal, ok := elseScope.AssignedVar(name)
		if !ok {
			bVal = old
		}
		newParam := b.blocks.AddParam(outBB, b.blocks.VarTypeOf(Var(old)))
		b.blocks.AppendJumpArg(aJump, Var(aVal))
		b.blocks.AppendJumpArg(bJump, Var(bVal))
		s.Assign(name, int(newParam))
	}

	switch {
	case aRet != NoValue && bRet != NoValue:
		at, bt := b.blocks.VarTypeOf(aRet), b.blocks.VarTypeOf(bRet)
		if at != bt {
			b.errorf(n.Line, n.Col, "if branches disagree on result type: %s vs %s", at, bt)
		}
		result := b.blocks.AddParam(outBB, at)
		b.blocks.AppendJumpArg(aJump, aRet)
		b.blocks.AppendJumpArg(bJump, bRet)
		return result
	case aRet == NoValue && bRet == NoValue:
		return NoValue
	case n.Else == nil:
		// A missing else arm is an empty block, so the if yields no value.
		return NoValue
	default:
		b.errorf(n.Line, n.Col, "if branches must either both produce a value or neither")
		return NoValue
	}
}

// lowerWhile implements spec.md §4.3's loop construction.
func (b *Builder) lowerWhile(s *scope.Scope, n *ast.While) Var {
	condBB := b.blocks.NewBlock()
	bodyBB := b.blocks.NewBlock()
	outBB := b.blocks.NewBlock()

	entryJump := b.blocks.AddJump(condBB)

	b.blocks.Label(condBB)
	cond := b.Lower(s, n.Cond)
	if b.blocks.VarTypeOf(cond) != value.Bool {
		b.errorf(n.Line, n.Col, "while condition must be Bool, got %s", b.blocks.VarTypeOf(cond))
	}
	b.blocks.AddBranch(cond, bodyBB, outBB)

	bodyScope := s.Child()
	b.blocks.Label(bodyBB)
	b.Lower(bodyScope, n.Body)
	bodyJump := b.blocks.AddJump(condBB)

	for _, name := range bodyScope.AssignedNames() {
		old, ok := s.Get(name)
		if !ok {
			panic(errors.Errorf("ir: while-phi reassigned undeclared name %q", name))
		}
		arg, _ := bodyScope.AssignedVar(name)

		newParam := b.blocks.AddParam(condBB, b.blocks.VarTypeOf(Var(old)))
		b.blocks.AppendJumpArg(entryJump, Var(old))
		b.blocks.AppendJumpArg(bodyJump, Var(arg))
		s.Assign(name, int(newParam))
		b.blocks.Update(b.blocks.BlockStart[condBB], Var(old), newParam)
	}

	b.blocks.Label(outBB)
	return NoValue
}
