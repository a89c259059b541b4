// Package ir implements the block-structured, SSA-form intermediate
// representation: a dense instruction arena per function, basic blocks
// addressed by integer id, and block parameters standing in for phi nodes
// (spec.md §3, §4.3).
package ir

import (
	"fmt"

	"github.com/glintlang/glint/internal/value"
)

// Var is a dense non-negative index into a function's variable table.
type Var int

// NoValue is the sentinel returned by the builder for statements and
// expressions that do not produce a value (spec.md §4.3).
const NoValue Var = -1

// Block is a dense id addressing one of a function's basic blocks.
type Block int

// FuncID is a function's position in a Module's function table.
type FuncID int

// Kind tags the closed instruction set of spec.md §3.
type Kind int

const (
	KConst Kind = iota
	KOp
	KUOp
	KCall
	KBranch
	KJumpTo
	KReturn
)

func (k Kind) String() string {
	switch k {
	case KConst:
		return "Const"
	case KOp:
		return "Op"
	case KUOp:
		return "UOp"
	case KCall:
		return "Call"
	case KBranch:
		return "Branch"
	case KJumpTo:
		return "JumpTo"
	case KReturn:
		return "Return"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Inst is one instruction of the closed set described in spec.md §3. Only
// the fields relevant to Kind are meaningful; this mirrors the original
// Rust source's tagged-enum arena with a single flat Go struct, the
// idiomatic substitute for a sum type in a dense instruction vector.
type Inst struct {
	Kind Kind

	// KConst, KOp, KUOp, KCall: destination variable.
	Dst Var

	// KConst.
	Const value.Value

	// KOp / KUOp.
	Op  value.Op
	UOp value.UOp
	A   Var // KOp left operand, KUOp operand
	B   Var // KOp right operand

	// KCall.
	Callee FuncID
	Args   []Var // KCall args, or KJumpTo block arguments

	// KBranch.
	Cond Var
	Then Block
	Else Block

	// KJumpTo.
	Target Block

	// KReturn.
	Ret Var
}

// Blocks is a function's IR body: the instruction arena plus the
// variable and basic-block metadata that index into it.
type Blocks struct {
	Insts []Inst

	VarType []value.Type
	VarDecl []int // instruction count at the defining site (0 for the entry block's parameters)

	// BlockStart[b] is the index into Insts where block b's instructions
	// begin; it is NoValue-like-undefined (-1) until Label is called.
	BlockStart []int
	// BlockParams[b] is the ordered list of variables block b receives
	// from its predecessors at entry.
	BlockParams [][]Var
}

// NewBlocks creates a Blocks whose block 0 is the function entry, with the
// given parameter types pre-declared as its block-0 parameters (the
// function's formal parameters).
func NewBlocks(paramTypes []value.Type) *Blocks {
	b := &Blocks{
		BlockStart:  []int{0},
		BlockParams: [][]Var{make([]Var, len(paramTypes))},
	}
	for i, t := range paramTypes {
		v := b.newVarAt(t, 0)
		b.BlockParams[0][i] = v
	}
	return b
}

func (b *Blocks) newVarAt(t value.Type, declSite int) Var {
	v := Var(len(b.VarType))
	b.VarType = append(b.VarType, t)
	b.VarDecl = append(b.VarDecl, declSite)
	return v
}

// NewVar allocates a fresh variable of type t, recording the current
// instruction count as its declaration site.
func (b *Blocks) NewVar(t value.Type) Var {
	return b.newVarAt(t, len(b.Insts))
}

// VarTypeOf returns the static type of variable v.
func (b *Blocks) VarTypeOf(v Var) value.Type {
	return b.VarType[v]
}

// NumVars reports the number of variables allocated so far.
func (b *Blocks) NumVars() int { return len(b.VarType) }

// NewBlock allocates a fresh block id with no parameters and an
// as-yet-unset start offset.
func (b *Blocks) NewBlock() Block {
	id := Block(len(b.BlockStart))
	b.BlockStart = append(b.BlockStart, -1)
	b.BlockParams = append(b.BlockParams, nil)
	return id
}

// Label marks the current instruction-count position as block id's start.
func (b *Blocks) Label(id Block) {
	b.BlockStart[id] = len(b.Insts)
}

// AddParam allocates a new block parameter of type t on block id and
// returns its variable.
func (b *Blocks) AddParam(id Block, t value.Type) Var {
	v := b.NewVar(t)
	b.BlockParams[id] = append(b.BlockParams[id], v)
	return v
}

// AddConst appends a Const instruction and returns its destination.
func (b *Blocks) AddConst(v value.Value) Var {
	dst := b.NewVar(v.Type())
	b.Insts = append(b.Insts, Inst{Kind: KConst, Dst: dst, Const: v})
	return dst
}

// AddOp appends a binary Op instruction and returns its destination.
func (b *Blocks) AddOp(op value.Op, a, bb Var) Var {
	resultType := op.ResultType(b.VarTypeOf(a))
	dst := b.NewVar(resultType)
	b.Insts = append(b.Insts, Inst{Kind: KOp, Dst: dst, Op: op, A: a, B: bb})
	return dst
}

// AddUOp appends a unary UOp instruction and returns its destination.
func (b *Blocks) AddUOp(op value.UOp, a Var) Var {
	resultType := op.ResultType(b.VarTypeOf(a))
	dst := b.NewVar(resultType)
	b.Insts = append(b.Insts, Inst{Kind: KUOp, Dst: dst, UOp: op, A: a})
	return dst
}

// AddCall appends a Call instruction and returns its destination, typed by
// the callee's declared return type.
func (b *Blocks) AddCall(callee FuncID, retType value.Type, args []Var) Var {
	dst := b.NewVar(retType)
	b.Insts = append(b.Insts, Inst{Kind: KCall, Dst: dst, Callee: callee, Args: args})
	return dst
}

// AddBranch appends a terminating Branch instruction.
func (b *Blocks) AddBranch(cond Var, then, els Block) {
	b.Insts = append(b.Insts, Inst{Kind: KBranch, Cond: cond, Then: then, Else: els})
}

// AddJump appends a terminating JumpTo with no arguments yet and returns
// its instruction index so the caller can fill in arguments later via
// AppendJumpArg, mirroring the builder's need to emit placeholder jumps
// before a block's phi parameters are known (spec.md §4.3 steps 4-5).
func (b *Blocks) AddJump(target Block) int {
	idx := len(b.Insts)
	b.Insts = append(b.Insts, Inst{Kind: KJumpTo, Target: target})
	return idx
}

// AppendJumpArg appends one more argument to a previously emitted JumpTo
// instruction at idx.
func (b *Blocks) AppendJumpArg(idx int, arg Var) {
	b.Insts[idx].Args = append(b.Insts[idx].Args, arg)
}

// AddReturn appends a terminating Return instruction.
func (b *Blocks) AddReturn(v Var) {
	b.Insts = append(b.Insts, Inst{Kind: KReturn, Ret: v})
}

// Update rewrites every occurrence of variable old to new across all
// instructions from index `from` onward (spec.md §4.3's while-loop phi
// rewrite: the cond block's own test, lowered before its phi parameter
// existed, must be retargeted to the new parameter).
func (b *Blocks) Update(from int, old, new Var) {
	rewrite := func(v Var) Var {
		if v == old {
			return new
		}
		return v
	}
	for i := from; i < len(b.Insts); i++ {
		inst := &b.Insts[i]
		switch inst.Kind {
		case KOp:
			inst.A = rewrite(inst.A)
			inst.B = rewrite(inst.B)
		case KUOp:
			inst.A = rewrite(inst.A)
		case KCall:
			for j := range inst.Args {
				inst.Args[j] = rewrite(inst.Args[j])
			}
		case KBranch:
			inst.Cond = rewrite(inst.Cond)
		case KJumpTo:
			for j := range inst.Args {
				inst.Args[j] = rewrite(inst.Args[j])
			}
		case KReturn:
			inst.Ret = rewrite(inst.Ret)
		}
	}
}

// Func is one compiled function: its signature plus its IR body. The
// function's formal parameters occupy variables 0..NumParams and are block
// 0's parameters.
type Func struct {
	Name       string
	NumParams  int
	ReturnType value.Type
	Blocks     *Blocks
}
