package ast

import (
	"fmt"
	"strings"
)

// Print returns a tree-like string representation of the AST for debugging.
func Print(node Node) string {
	var sb strings.Builder
	printNode(&sb, node, 0)
	return sb.String()
}

func printNode(sb *strings.Builder, node Node, indent int) {
	if node == nil {
		return
	}

	prefix := strings.Repeat("  ", indent)

	switch n := node.(type) {
	case *FuncDef:
		sb.WriteString(fmt.Sprintf("%sFuncDef %s(", prefix, n.Name))
		for i, p := range n.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("%s:%s", p.Name, p.Type))
		}
		sb.WriteString(fmt.Sprintf(") -> %s\n", n.ReturnType))
		printNode(sb, n.Body, indent+1)

	case *IntLit:
		sb.WriteString(fmt.Sprintf("%sIntLit %d\n", prefix, n.Value))

	case *FloatLit:
		sb.WriteString(fmt.Sprintf("%sFloatLit %g\n", prefix, n.Value))

	case *BoolLit:
		sb.WriteString(fmt.Sprintf("%sBoolLit %t\n", prefix, n.Value))

	case *Ident:
		sb.WriteString(fmt.Sprintf("%sIdent %s\n", prefix, n.Name))

	case *BinaryOp:
		sb.WriteString(fmt.Sprintf("%sBinaryOp %s\n", prefix, n.Op))
		printNode(sb, n.Left, indent+1)
		printNode(sb, n.Right, indent+1)

	case *Negative:
		sb.WriteString(prefix + "Negative\n")
		printNode(sb, n.Operand, indent+1)

	case *If:
		sb.WriteString(prefix + "If\n")
		printNode(sb, n.Cond, indent+1)
		sb.WriteString(prefix + "Then\n")
		printNode(sb, n.Then, indent+1)
		if n.Else != nil {
			sb.WriteString(prefix + "Else\n")
			printNode(sb, n.Else, indent+1)
		}

	case *While:
		sb.WriteString(prefix + "While\n")
		printNode(sb, n.Cond, indent+1)
		printNode(sb, n.Body, indent+1)

	case *Return:
		sb.WriteString(prefix + "Return\n")
		printNode(sb, n.Value, indent+1)

	case *Declare:
		sb.WriteString(fmt.Sprintf("%sDeclare %s\n", prefix, n.Name))
		printNode(sb, n.Value, indent+1)

	case *Assign:
		sb.WriteString(fmt.Sprintf("%sAssign %s\n", prefix, n.Name))
		printNode(sb, n.Value, indent+1)

	case *Block:
		sb.WriteString(prefix + "Block\n")
		for _, e := range n.Exprs {
			printNode(sb, e, indent+1)
		}

	case *Call:
		sb.WriteString(prefix + "Call\n")
		printNode(sb, n.Callee, indent+1)
		for _, a := range n.Args {
			printNode(sb, a, indent+1)
		}

	default:
		sb.WriteString(fmt.Sprintf("%sUnknown node type: %T\n", prefix, node))
	}
}
