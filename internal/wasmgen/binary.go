package wasmgen

import (
	"github.com/pkg/errors"

	"github.com/glintlang/glint/internal/ir"
	"github.com/glintlang/glint/internal/value"
)

var wasmMagic = []byte{0x00, 0x61, 0x73, 0x6D}
var wasmVersion = []byte{0x01, 0x00, 0x00, 0x00}

// EmitBinary assembles the full Wasm binary module for every function in
// funcs, following the section layout of
// original_source/src/targets/wasm.rs's to_wasm: type section (one entry
// per function, deduplication is not attempted since every function here
// already has a distinct, small signature), function section, export
// section (every function exported under its own name), then code section.
func EmitBinary(funcs []*ir.Func) []byte {
	var out []byte
	out = append(out, wasmMagic...)
	out = append(out, wasmVersion...)

	out = append(out, encodeSection(sectionType, typeSection(funcs))...)
	out = append(out, encodeSection(sectionFunction, functionSection(funcs))...)
	out = append(out, encodeSection(sectionExport, exportSection(funcs))...)
	out = append(out, encodeSection(sectionCode, codeSection(funcs))...)
	return out
}

func typeSection(funcs []*ir.Func) []byte {
	var b []byte
	for _, fn := range funcs {
		var entry []byte
		entry = append(entry, 0x60) // func type tag
		entry = append(entry, encodeULEB128(uint64(fn.NumParams))...)
		for i := 0; i < fn.NumParams; i++ {
			entry = append(entry, wasmValType(fn.Blocks.VarTypeOf(ir.Var(i))))
		}
		if fn.ReturnType == value.Unit {
			entry = append(entry, encodeULEB128(0)...)
		} else {
			entry = append(entry, encodeULEB128(1)...)
			entry = append(entry, wasmValType(fn.ReturnType))
		}
		b = append(b, entry...)
	}
	return encodeVector(len(funcs), b)
}

func functionSection(funcs []*ir.Func) []byte {
	var b []byte
	for i := range funcs {
		b = append(b, encodeULEB128(uint64(i))...)
	}
	return encodeVector(len(funcs), b)
}

func exportSection(funcs []*ir.Func) []byte {
	var b []byte
	for i, fn := range funcs {
		b = append(b, encodeName(fn.Name)...)
		b = append(b, exportFunc)
		b = append(b, encodeULEB128(uint64(i))...)
	}
	return encodeVector(len(funcs), b)
}

func codeSection(funcs []*ir.Func) []byte {
	var b []byte
	for _, fn := range funcs {
		var body []byte

		numLocals := fn.Blocks.NumVars() - fn.NumParams
		if numLocals < 0 {
			numLocals = 0
		}
		body = append(body, encodeULEB128(uint64(numLocals))...)
		for i := fn.NumParams; i < fn.Blocks.NumVars(); i++ {
			body = append(body, encodeULEB128(1)...) // one local of this type
			body = append(body, wasmValType(fn.Blocks.VarTypeOf(ir.Var(i))))
		}

		body = append(body, renderBinary(Reloop(fn))...)
		// Every reachable path through the relooped body ends in an
		// explicit return; trailing unreachable satisfies the validator's
		// requirement that a function's implicit end produce a value of
		// its declared result type even on this statically dead path.
		body = append(body, opUnreachable)
		body = append(body, opEnd)

		var framed []byte
		framed = append(framed, encodeULEB128(uint64(len(body)))...)
		framed = append(framed, body...)
		b = append(b, framed...)
	}
	return encodeVector(len(funcs), b)
}

func renderBinary(nodes []node) []byte {
	var b []byte
	for _, n := range nodes {
		switch {
		case n.isLoop:
			b = append(b, opLoop, blockVoid)
			b = append(b, renderBinary(n.loopBody)...)
			b = append(b, opEnd)
		case n.isIf:
			b = append(b, opIf, blockVoid)
			b = append(b, renderBinary(n.thenBody)...)
			b = append(b, opElse)
			b = append(b, renderBinary(n.elseBody)...)
			b = append(b, opEnd)
		default:
			b = append(b, renderPlainBinary(n)...)
		}
	}
	return b
}

func renderPlainBinary(n node) []byte {
	switch n.code {
	case cLocalGet:
		return append([]byte{opLocalGet}, encodeULEB128(uint64(n.local))...)
	case cLocalSet:
		return append([]byte{opLocalSet}, encodeULEB128(uint64(n.local))...)
	case cI32Const:
		return append([]byte{opI32Const}, encodeSLEB128(int64(n.i32))...)
	case cF64Const:
		return append([]byte{opF64Const}, encodeF64LE(n.f64)...)
	case cCall:
		return append([]byte{opCall}, encodeULEB128(uint64(n.callee))...)
	case cReturn:
		return []byte{opReturn}
	case cBr:
		return append([]byte{opBr}, encodeULEB128(uint64(n.depth))...)
	case cUnreachable:
		return []byte{opUnreachable}
	case cBinOp:
		return []byte{binOpcode(n.bin.op, n.bin.ty)}
	case cI32Neg:
		out := []byte{opI32Const}
		out = append(out, encodeSLEB128(0)...)
		out = append(out, opLocalGet)
		out = append(out, encodeULEB128(uint64(n.local))...)
		out = append(out, opI32Sub)
		return out
	case cF64Neg:
		out := []byte{opLocalGet}
		out = append(out, encodeULEB128(uint64(n.local))...)
		out = append(out, opF64Neg)
		return out
	case cBoolNot:
		out := []byte{opLocalGet}
		out = append(out, encodeULEB128(uint64(n.local))...)
		out = append(out, opI32Eqz)
		return out
	default:
		panic(errors.New("wasmgen: unknown plain node code"))
	}
}
