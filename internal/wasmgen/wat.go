package wasmgen

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/glintlang/glint/internal/ir"
	"github.com/glintlang/glint/internal/value"
)

// typeToWat spells out the WAT mnemonic for a value type, representing
// Bool as i32 like the binary backend does.
func typeToWat(t value.Type) string {
	switch t {
	case value.I32, value.Bool:
		return "i32"
	case value.F64:
		return "f64"
	default:
		panic(errors.New("wasmgen: Unit has no WAT value type"))
	}
}

// EmitWAT renders the module as WebAssembly text format, one exported
// function per entry in funcs, following
// original_source/src/targets/wasm.rs's to_wat layout: params, result,
// locals, then the relooped body.
func EmitWAT(funcs []*ir.Func) string {
	var b strings.Builder
	b.WriteString("(module\n")
	for i, fn := range funcs {
		fmt.Fprintf(&b, "  (func $%d\n", i)
		fmt.Fprintf(&b, "    (export %q)\n", fn.Name)
		for p := 0; p < fn.NumParams; p++ {
			fmt.Fprintf(&b, "    (param $%d %s)\n", p, typeToWat(fn.Blocks.VarTypeOf(ir.Var(p))))
		}
		if fn.ReturnType != value.Unit {
			fmt.Fprintf(&b, "    (result %s)\n", typeToWat(fn.ReturnType))
		}
		for v := fn.NumParams; v < fn.Blocks.NumVars(); v++ {
			fmt.Fprintf(&b, "    (local $%d %s)\n", v, typeToWat(fn.Blocks.VarTypeOf(ir.Var(v))))
		}

		renderWAT(&b, Reloop(fn), "    ")
		b.WriteString("    unreachable\n")
		b.WriteString("  )\n")
	}
	b.WriteString(")\n")
	return b.String()
}

func renderWAT(b *strings.Builder, nodes []node, indent string) {
	for _, n := range nodes {
		switch {
		case n.isLoop:
			fmt.Fprintf(b, "%sloop\n", indent)
			renderWAT(b, n.loopBody, indent+"  ")
			fmt.Fprintf(b, "%send\n", indent)
		case n.isIf:
			fmt.Fprintf(b, "%sif\n", indent)
			renderWAT(b, n.thenBody, indent+"  ")
			fmt.Fprintf(b, "%selse\n", indent)
			renderWAT(b, n.elseBody, indent+"  ")
			fmt.Fprintf(b, "%send\n", indent)
		default:
			renderPlainWAT(b, n, indent)
		}
	}
}

func renderPlainWAT(b *strings.Builder, n node, indent string) {
	switch n.code {
	case cLocalGet:
		fmt.Fprintf(b, "%slocal.get $%d\n", indent, n.local)
	case cLocalSet:
		fmt.Fprintf(b, "%slocal.set $%d\n", indent, n.local)
	case cI32Const:
		fmt.Fprintf(b, "%si32.const %d\n", indent, n.i32)
	case cF64Const:
		fmt.Fprintf(b, "%sf64.const %v\n", indent, n.f64)
	case cCall:
		fmt.Fprintf(b, "%scall $%d\n", indent, n.callee)
	case cReturn:
		fmt.Fprintf(b, "%sreturn\n", indent)
	case cBr:
		fmt.Fprintf(b, "%sbr %d\n", indent, n.depth)
	case cUnreachable:
		fmt.Fprintf(b, "%sunreachable\n", indent)
	case cBinOp:
		fmt.Fprintf(b, "%s%s\n", indent, watOpName(n.bin.op, n.bin.ty))
	case cI32Neg:
		fmt.Fprintf(b, "%si32.const 0\n%slocal.get $%d\n%si32.sub\n", indent, indent, n.local, indent)
	case cF64Neg:
		fmt.Fprintf(b, "%slocal.get $%d\n%sf64.neg\n", indent, n.local, indent)
	case cBoolNot:
		fmt.Fprintf(b, "%slocal.get $%d\n%si32.eqz\n", indent, n.local, indent)
	default:
		panic(errors.New("wasmgen: unknown plain node code"))
	}
}
