package ast

import (
	"fmt"
	"strings"
)

// Print returns a tree-like string representation of the AST for debugging
func Print(node Node) string {
	var sb strings.Builder
	printNode(&sb, node, 0)
	return sb.String()
}

// PrintProgram returns a tree-like dump of every item in the program.
func PrintProgram(prog *Program) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Program (seed %d, %d params)\n", prog.Seed, len(prog.Params)))
	for _, p := range prog.Params {
		sb.WriteString(fmt.Sprintf("  Param: %s: %s\n", p.Name, p.Type.Rust()))
	}
	for _, item := range prog.Items {
		printNode(&sb, item, 1)
	}
	return sb.String()
}

func printNode(sb *strings.Builder, node Node, indent int) {
	if node == nil {
		return
	}

	prefix := strings.Repeat("  ", indent)

	switch n := node.(type) {
	case *StructItem:
		sb.WriteString(fmt.Sprintf("%sStruct: %s (%d fields)\n", prefix, n.Decl.Name, len(n.Decl.Fields)))

	case *EnumItem:
		sb.WriteString(fmt.Sprintf("%sEnum: %s (%d variants)\n", prefix, n.Decl.Name, len(n.Decl.Variants)))

	case *FuncItem:
		ret := "()"
		if n.Return != nil {
			ret = n.Return.Rust()
		}
		entry := ""
		if n.IsEntry {
			entry = " [entry]"
		}
		sb.WriteString(fmt.Sprintf("%sFunc: %s -> %s%s\n", prefix, n.Name, ret, entry))
		printNode(sb, n.Body, indent+1)

	case *LetStmt:
		mut := ""
		if n.Mutable {
			mut = "mut "
		}
		sb.WriteString(fmt.Sprintf("%sLet: %s%s: %s\n", prefix, mut, n.Name, n.VarType.Rust()))
		printNode(sb, n.Value, indent+1)

	case *AssignStmt:
		sb.WriteString(fmt.Sprintf("%sAssign: %s\n", prefix, n.Name))
		printNode(sb, n.Value, indent+1)

	case *ExprStmt:
		sb.WriteString(prefix + "ExprStmt\n")
		printNode(sb, n.Value, indent+1)

	case *IfStmt:
		sb.WriteString(prefix + "IfStmt\n")
		printNode(sb, n.Cond, indent+1)
		sb.WriteString(prefix + "  Then:\n")
		for _, s := range n.Then {
			printNode(sb, s, indent+2)
		}
		if len(n.Else) > 0 {
			sb.WriteString(prefix + "  Else:\n")
			for _, s := range n.Else {
				printNode(sb, s, indent+2)
			}
		}

	case *PrintStmt:
		sb.WriteString(fmt.Sprintf("%sPrint (%d args)\n", prefix, len(n.Args)))
		for _, a := range n.Args {
			printNode(sb, a, indent+1)
		}

	case *IntLit:
		sb.WriteString(fmt.Sprintf("%sIntLit: %s%s\n", prefix, n.Val, n.IntType.Rust()))

	case *BoolLit:
		sb.WriteString(fmt.Sprintf("%sBoolLit: %t\n", prefix, n.Val))

	case *CharLit:
		sb.WriteString(fmt.Sprintf("%sCharLit: %q\n", prefix, n.Val))

	case *StrLit:
		sb.WriteString(fmt.Sprintf("%sStrLit: %q\n", prefix, n.Val))

	case *VarRef:
		ext := ""
		if n.External {
			ext = " [external]"
		}
		sb.WriteString(fmt.Sprintf("%sVarRef: %s: %s%s\n", prefix, n.Name, n.VarType.Rust(), ext))

	case *UnaryExpr:
		op := "-"
		if n.Op == OpNot {
			op = "!"
		}
		sb.WriteString(fmt.Sprintf("%sUnary: %s%s\n", prefix, op, safeTag(n.Safe)))
		printNode(sb, n.Operand, indent+1)

	case *BinaryExpr:
		sb.WriteString(fmt.Sprintf("%sBinary: %s%s\n", prefix, n.Op.Rust(), safeTag(n.Safe)))
		printNode(sb, n.Left, indent+1)
		printNode(sb, n.Right, indent+1)

	case *CastExpr:
		sb.WriteString(fmt.Sprintf("%sCast -> %s%s\n", prefix, n.To.Rust(), safeTag(n.Safe)))
		printNode(sb, n.Value, indent+1)

	case *CallExpr:
		sb.WriteString(fmt.Sprintf("%sCall: %s (%d args)\n", prefix, n.Callee, len(n.Args)))
		for _, a := range n.Args {
			printNode(sb, a, indent+1)
		}

	case *IfExpr:
		sb.WriteString(fmt.Sprintf("%sIfExpr: %s\n", prefix, n.ResType.Rust()))
		printNode(sb, n.Cond, indent+1)
		printNode(sb, n.Then, indent+1)
		printNode(sb, n.Else, indent+1)

	case *BlockExpr:
		sb.WriteString(fmt.Sprintf("%sBlock (%d stmts)\n", prefix, len(n.Stmts)))
		for _, s := range n.Stmts {
			printNode(sb, s, indent+1)
		}
		if n.Value != nil {
			printNode(sb, n.Value, indent+1)
		}

	case *TupleExpr:
		sb.WriteString(fmt.Sprintf("%sTuple: %s\n", prefix, n.ResType.Rust()))
		for _, e := range n.Elems {
			printNode(sb, e, indent+1)
		}

	case *ArrayExpr:
		sb.WriteString(fmt.Sprintf("%sArray: %s\n", prefix, n.ResType.Rust()))
		for _, e := range n.Elems {
			printNode(sb, e, indent+1)
		}

	case *IndexExpr:
		sb.WriteString(fmt.Sprintf("%sIndex%s\n", prefix, safeTag(n.Safe)))
		printNode(sb, n.Arr, indent+1)
		printNode(sb, n.Index, indent+1)

	case *TupleIndexExpr:
		sb.WriteString(fmt.Sprintf("%sTupleIndex: .%d\n", prefix, n.Index))
		printNode(sb, n.Tuple, indent+1)

	case *FieldAccessExpr:
		sb.WriteString(fmt.Sprintf("%sFieldAccess: .%s\n", prefix, n.Field))
		printNode(sb, n.Source, indent+1)

	case *StructExpr:
		sb.WriteString(fmt.Sprintf("%sStructExpr: %s\n", prefix, n.Decl.Name))
		for _, e := range n.Fields {
			printNode(sb, e, indent+1)
		}

	case *EnumExpr:
		sb.WriteString(fmt.Sprintf("%sEnumExpr: %s::%s\n", prefix, n.Decl.Name, n.Decl.Variants[n.VariantIdx].Name))
		for _, e := range n.Fields {
			printNode(sb, e, indent+1)
		}

	case *OptionExpr:
		if n.Inner == nil {
			sb.WriteString(fmt.Sprintf("%sOption: None: %s\n", prefix, n.ResType.Rust()))
		} else {
			sb.WriteString(fmt.Sprintf("%sOption: Some: %s\n", prefix, n.ResType.Rust()))
			printNode(sb, n.Inner, indent+1)
		}

	case *ResultExpr:
		variant := "Err"
		if n.IsOk {
			variant = "Ok"
		}
		sb.WriteString(fmt.Sprintf("%sResult: %s: %s\n", prefix, variant, n.ResType.Rust()))
		printNode(sb, n.Inner, indent+1)

	case *BoxExpr:
		sb.WriteString(fmt.Sprintf("%sBox: %s\n", prefix, n.ResType.Rust()))
		printNode(sb, n.Inner, indent+1)

	case *DerefExpr:
		sb.WriteString(prefix + "Deref\n")
		printNode(sb, n.Box, indent+1)

	case *RefExpr:
		sb.WriteString(fmt.Sprintf("%sRef: %s\n", prefix, n.ResType.Rust()))
		printNode(sb, n.Inner, indent+1)

	case *UnwrapExpr:
		sb.WriteString(fmt.Sprintf("%sUnwrap%s\n", prefix, safeTag(n.Safe)))
		printNode(sb, n.Source, indent+1)

	case *MatchExpr:
		sb.WriteString(fmt.Sprintf("%sMatch (%d arms): %s\n", prefix, len(n.Arms), n.ResType.Rust()))
		printNode(sb, n.Scrutinee, indent+1)
		for _, arm := range n.Arms {
			sb.WriteString(fmt.Sprintf("%s  Arm: %s\n", prefix, arm.Pattern.VariantName))
			printNode(sb, arm.Body, indent+2)
		}
	}
}

func safeTag(safe bool) string {
	if safe {
		return " [safe]"
	}
	return ""
}
