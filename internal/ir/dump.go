package ir

import (
	"fmt"
	"io"
	"strings"

	"github.com/kr/pretty"
)

// Dump writes the function's textual IR in the stable format required by
// spec.md §6:
//
//	function NAME ():
//	'BLOCKID (vPARAM1 vPARAM2 …):
//	  vDST = INSTRUCTION
//	  …
//	  if vCOND then 'T else 'E
//	  'TARGET(vARG1 vARG2 …)
//	  return vV
func (f *Func) Dump(w io.Writer) {
	fmt.Fprintf(w, "function %s ():\n", f.Name)
	f.Blocks.dump(w)
}

func (b *Blocks) dump(w io.Writer) {
	numBlocks := len(b.BlockStart)
	for bid := 0; bid < numBlocks; bid++ {
		start := b.BlockStart[Block(bid)]
		end := len(b.Insts)
		for other := 0; other < numBlocks; other++ {
			if other == bid {
				continue
			}
			os := b.BlockStart[Block(other)]
			if os > start && os < end {
				end = os
			}
		}

		params := b.BlockParams[Block(bid)]
		paramStrs := make([]string, len(params))
		for i, p := range params {
			paramStrs[i] = fmt.Sprintf("v%d", p)
		}
		fmt.Fprintf(w, "'%d (%s):\n", bid, strings.Join(paramStrs, " "))

		for i := start; i < end; i++ {
			dumpInst(w, b.Insts[i])
		}
	}
}

func dumpInst(w io.Writer, inst Inst) {
	switch inst.Kind {
	case KConst:
		fmt.Fprintf(w, "  v%d = %s\n", inst.Dst, inst.Const)
	case KOp:
		fmt.Fprintf(w, "  v%d = (%s v%d v%d)\n", inst.Dst, inst.Op, inst.A, inst.B)
	case KUOp:
		fmt.Fprintf(w, "  v%d = (%s v%d)\n", inst.Dst, inst.UOp, inst.A)
	case KCall:
		args := varList(inst.Args)
		fmt.Fprintf(w, "  v%d = $%d[%s]\n", inst.Dst, inst.Callee, args)
	case KBranch:
		fmt.Fprintf(w, "  if v%d then '%d else '%d\n", inst.Cond, inst.Then, inst.Else)
	case KJumpTo:
		fmt.Fprintf(w, "  '%d(%s)\n", inst.Target, varList(inst.Args))
	case KReturn:
		fmt.Fprintf(w, "  return v%d\n", inst.Ret)
	}
}

func varList(vs []Var) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprintf("v%d", v)
	}
	return strings.Join(parts, " ")
}

// GoString backs %#v and --debug-dump-ir: a structural pretty-print of the
// Blocks arena via kr/pretty, useful when the stable Dump format above
// hides an internal inconsistency (e.g. a dangling BlockStart offset).
func (b *Blocks) GoString() string {
	return pretty.Sprint(*b)
}
