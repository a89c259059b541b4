// Package wasmgen lowers a Func's block-structured CFG into WebAssembly,
// both as text (WAT) and as the binary module format, via a Relooper that
// reconstructs structured control flow (block/loop/if) from the arbitrary
// graph the IR builder produced (spec.md §4.6).
package wasmgen

import "github.com/glintlang/glint/internal/value"

// code tags the abstract instruction set the Relooper emits; it is the
// target-independent intermediate between "walk the CFG" and "render it",
// so the WAT and binary backends share one control-flow reconstruction
// instead of duplicating it (the distilled source's reloop/reloop_bin pair
// duplicate this logic line for line; Go's interface-free sum-of-structs
// approach lets one Relooper pass serve both renderers).
type code int

const (
	cLocalGet code = iota
	cLocalSet
	cI32Const
	cF64Const
	cCall
	cReturn
	cBr
	cUnreachable
	cBinOp
	cI32Neg
	cF64Neg
	cBoolNot
)

// binOp names one arithmetic/comparison opcode pair, keyed by operand type,
// that both renderers must translate to their own instruction encoding.
type binOp struct {
	op value.Op
	ty value.Type
}

// node is one piece of the structured tree the Relooper builds. Most nodes
// are "plain" — a single flat instruction with at most one immediate — and
// the control-flow nodes (loop, if) nest further node lists as their
// bodies, mirroring the s-expression nesting WAT text and the Wasm binary
// format both ultimately need.
type node struct {
	code code

	// cLocalGet / cLocalSet: local index.
	// cCall: callee function index.
	// cBr: branch depth.
	local int
	depth int
	callee int

	// cI32Const.
	i32 int32
	// cF64Const.
	f64 float64

	// cBinOp.
	bin binOp

	// loop / if bodies; a plain node leaves these nil.
	loopBody []node
	thenBody []node
	elseBody []node
	isLoop   bool
	isIf     bool
}
