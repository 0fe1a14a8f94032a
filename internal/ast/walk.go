package ast

import "fmt"

// Walk calls fn on node and then on every child, pre-order. Match arms
// and patterns are not nodes themselves; their bodies are visited.
func Walk(node Node, fn func(Node)) {
	if node == nil {
		return
	}
	fn(node)

	switch n := node.(type) {
	case *StructItem, *EnumItem:
		// no children
	case *FuncItem:
		Walk(n.Body, fn)
	case *LetStmt:
		Walk(n.Value, fn)
	case *AssignStmt:
		Walk(n.Value, fn)
	case *ExprStmt:
		Walk(n.Value, fn)
	case *IfStmt:
		Walk(n.Cond, fn)
		for _, s := range n.Then {
			Walk(s, fn)
		}
		for _, s := range n.Else {
			Walk(s, fn)
		}
	case *PrintStmt:
		for _, a := range n.Args {
			Walk(a, fn)
		}
	case *IntLit, *BoolLit, *CharLit, *StrLit, *VarRef:
		// leaves
	case *UnaryExpr:
		Walk(n.Operand, fn)
	case *BinaryExpr:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *CastExpr:
		Walk(n.Value, fn)
	case *CallExpr:
		for _, a := range n.Args {
			Walk(a, fn)
		}
	case *IfExpr:
		Walk(n.Cond, fn)
		Walk(n.Then, fn)
		Walk(n.Else, fn)
	case *BlockExpr:
		for _, s := range n.Stmts {
			Walk(s, fn)
		}
		if n.Value != nil {
			Walk(n.Value, fn)
		}
	case *TupleExpr:
		for _, e := range n.Elems {
			Walk(e, fn)
		}
	case *ArrayExpr:
		for _, e := range n.Elems {
			Walk(e, fn)
		}
	case *IndexExpr:
		Walk(n.Arr, fn)
		Walk(n.Index, fn)
	case *TupleIndexExpr:
		Walk(n.Tuple, fn)
	case *FieldAccessExpr:
		Walk(n.Source, fn)
	case *StructExpr:
		for _, e := range n.Fields {
			Walk(e, fn)
		}
	case *EnumExpr:
		for _, e := range n.Fields {
			Walk(e, fn)
		}
	case *OptionExpr:
		if n.Inner != nil {
			Walk(n.Inner, fn)
		}
	case *ResultExpr:
		Walk(n.Inner, fn)
	case *BoxExpr:
		Walk(n.Inner, fn)
	case *DerefExpr:
		Walk(n.Box, fn)
	case *RefExpr:
		Walk(n.Inner, fn)
	case *UnwrapExpr:
		Walk(n.Source, fn)
	case *MatchExpr:
		Walk(n.Scrutinee, fn)
		for _, arm := range n.Arms {
			Walk(arm.Body, fn)
		}
	default:
		panic(fmt.Sprintf("ast: unknown node %T", node))
	}
}

// WalkProgram visits every item of the program, including the entry
// function, in declaration order.
func WalkProgram(prog *Program, fn func(Node)) {
	for _, item := range prog.Items {
		Walk(item, fn)
	}
}
