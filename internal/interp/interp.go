// Package interp implements the tree-walking register-based IR
// interpreter (spec.md §4.5): it executes a Func's instruction arena
// directly, following Branch/JumpTo terminators to move between blocks and
// binding block parameters from jump arguments in place of phi nodes.
package interp

import (
	"github.com/pkg/errors"

	"github.com/glintlang/glint/internal/ir"
	"github.com/glintlang/glint/internal/value"
)

// Program resolves a FuncID to its compiled Func, so Call instructions can
// recurse into another function (including the current one, for direct
// recursion) without the interpreter needing its own notion of a module.
type Program interface {
	Func(id ir.FuncID) *ir.Func
}

// Table is the simplest Program: a function table indexed directly by
// FuncID, exactly as module assembly builds it (spec.md §4.7).
type Table []*ir.Func

func (t Table) Func(id ir.FuncID) *ir.Func { return t[id] }

// regs is one call frame's variable storage, indexed directly by ir.Var —
// the Go equivalent of the original interpreter's sparse register file,
// made dense since Blocks.NumVars is known up front.
type regs struct {
	vals []value.Value
}

func newRegs(fn *ir.Func) *regs {
	return &regs{vals: make([]value.Value, fn.Blocks.NumVars())}
}

func (r *regs) set(v ir.Var, val value.Value) { r.vals[v] = val }
func (r *regs) get(v ir.Var) value.Value       { return r.vals[v] }

// Exec runs fn to completion with the given argument values and returns its
// result, recursing through prog for any Call instructions it executes.
// Grounded on original_source/src/core/repl.rs's exec_ir: a flat instruction
// pointer loop with no call stack beyond Go's own, since every Call
// instruction simply recurses into Exec.
func Exec(prog Program, fn *ir.Func, args []value.Value) value.Value {
	if len(args) != fn.NumParams {
		panic(errors.Errorf("interp: %s expects %d argument(s), got %d", fn.Name, fn.NumParams, len(args)))
	}

	r := newRegs(fn)
	for i, a := range args {
		r.set(ir.Var(i), a)
	}

	block := ir.Block(0)
	pc := fn.Blocks.BlockStart[block]

	for {
		if pc >= len(fn.Blocks.Insts) {
			panic(errors.Errorf("interp: %s: ran off the end of the instruction arena", fn.Name))
		}
		inst := fn.Blocks.Insts[pc]

		switch inst.Kind {
		case ir.KConst:
			r.set(inst.Dst, inst.Const)
			pc++

		case ir.KOp:
			r.set(inst.Dst, value.EvalOp(inst.Op, r.get(inst.A), r.get(inst.B)))
			pc++

		case ir.KUOp:
			r.set(inst.Dst, value.EvalUOp(inst.UOp, r.get(inst.A)))
			pc++

		case ir.KCall:
			callee := prog.Func(inst.Callee)
			callArgs := make([]value.Value, len(inst.Args))
			for i, a := range inst.Args {
				callArgs[i] = r.get(a)
			}
			r.set(inst.Dst, Exec(prog, callee, callArgs))
			pc++

		case ir.KJumpTo:
			params := fn.Blocks.BlockParams[inst.Target]
			incoming := make([]value.Value, len(params))
			for i, a := range inst.Args {
				incoming[i] = r.get(a)
			}
			for i, p := range params {
				r.set(p, incoming[i])
			}
			block = inst.Target
			pc = fn.Blocks.BlockStart[block]

		case ir.KBranch:
			if r.get(inst.Cond).AsBool() {
				block = inst.Then
			} else {
				block = inst.Else
			}
			pc = fn.Blocks.BlockStart[block]

		case ir.KReturn:
			return r.get(inst.Ret)

		default:
			panic(errors.Errorf("interp: unknown instruction kind %v", inst.Kind))
		}
	}
}
