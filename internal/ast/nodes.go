// Package ast defines the parsed syntax tree the middle end consumes.
// The shape follows spec.md §6's AST contract exactly: literals, identifier,
// unary negation, binary ops, if/while/return/declare/assign/block/call, and
// top-level function definitions.
package ast

import "github.com/glintlang/glint/internal/value"

// Type is the surface-syntax spelling of value.Type, reused directly since
// the source language's type set is exactly the closed {Unit,Bool,I32,F64}.
type Type = value.Type

// Node is any AST node; it exists only to give Expr and FuncDef a common
// umbrella for tooling (dumping, position info) without forcing a single
// node kind enumeration on the whole tree.
type Node interface {
	node()
}

// Expr is any expression-shaped node — the builder lowers every Expr to
// either a variable holding its result or the NO_VALUE sentinel.
type Expr interface {
	Node
	exprNode()
}

// Param is a single formal parameter of a function definition.
type Param struct {
	Name string
	Type Type
}

// FuncDef is a top-level function definition: name, parameters, declared
// return type, and a body expression (almost always a Block).
type FuncDef struct {
	Name       string
	Params     []Param
	ReturnType Type
	Body       Expr
	Line, Col  int
}

func (*FuncDef) node() {}

// --- literals ---

type IntLit struct {
	Value     int32
	Line, Col int
}

type FloatLit struct {
	Value     float64
	Line, Col int
}

type BoolLit struct {
	Value     bool
	Line, Col int
}

func (*IntLit) node()       {}
func (*IntLit) exprNode()   {}
func (*FloatLit) node()     {}
func (*FloatLit) exprNode() {}
func (*BoolLit) node()      {}
func (*BoolLit) exprNode()  {}

// Ident is an identifier reference, resolved via the scope chain.
type Ident struct {
	Name      string
	Line, Col int
}

func (*Ident) node()     {}
func (*Ident) exprNode() {}

// BinaryOp is one of Add Sub Mul Div Eq Ne Lt Le Gt Ge.
type BinaryOp struct {
	Op        value.Op
	Left      Expr
	Right     Expr
	Line, Col int
}

func (*BinaryOp) node()     {}
func (*BinaryOp) exprNode() {}

// Negative is unary minus; the parser never produces a bare Not node since
// the source language's only unary surface syntax is numeric negation, but
// the builder's UOp lowering also serves a boolean `not` should a later
// grammar extension add one (see value.Not).
type Negative struct {
	Operand   Expr
	Line, Col int
}

func (*Negative) node()     {}
func (*Negative) exprNode() {}

// If is `if cond { then } else { else }`; Else may be nil (spec.md §8:
// "an if with no else treats the else arm as an empty block").
type If struct {
	Cond      Expr
	Then      Expr
	Else      Expr
	Line, Col int
}

func (*If) node()     {}
func (*If) exprNode() {}

// While is `while cond { body }`; always yields NO_VALUE.
type While struct {
	Cond      Expr
	Body      Expr
	Line, Col int
}

func (*While) node()     {}
func (*While) exprNode() {}

// Return is `return e`.
type Return struct {
	Value     Expr
	Line, Col int
}

func (*Return) node()     {}
func (*Return) exprNode() {}

// Declare is `let name = e`.
type Declare struct {
	Name      string
	Value     Expr
	Line, Col int
}

func (*Declare) node()     {}
func (*Declare) exprNode() {}

// Assign is `name = e`.
type Assign struct {
	Name      string
	Value     Expr
	Line, Col int
}

func (*Assign) node()     {}
func (*Assign) exprNode() {}

// Block is a sequence of expressions evaluated in a fresh child scope; its
// value is its last child's value if that child is itself value-producing,
// NO_VALUE otherwise (SPEC_FULL.md's resolution of spec.md §9's open
// question).
type Block struct {
	Exprs     []Expr
	Line, Col int
}

func (*Block) node()     {}
func (*Block) exprNode() {}

// Call is `callee(args...)`. Callee is almost always an Ident naming a
// module-scope function, but is itself an Expr to keep the tree uniform;
// the builder is responsible for resolving a function-valued identifier to
// a FuncId rather than a local variable (spec.md §4.3).
type Call struct {
	Callee    Expr
	Args      []Expr
	Line, Col int
}

func (*Call) node()     {}
func (*Call) exprNode() {}
