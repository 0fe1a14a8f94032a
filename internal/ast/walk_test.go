package ast

import (
	"testing"

	"github.com/rustsynth/rustsynth/internal/rstype"
)

// sampleProgram builds a small hand-assembled tree touching nested
// statements and expressions.
func sampleProgram() *Program {
	cond := &BinaryExpr{
		Op:      OpLt,
		Left:    &VarRef{Name: "param0", VarType: rstype.I32, External: true},
		Right:   &IntLit{Val: "7", IntType: rstype.I32},
		ResType: rstype.Bool,
	}
	entry := &FuncItem{
		Name:    "fun0",
		Params:  []Param{{Name: "param0", Type: rstype.I32}},
		IsEntry: true,
		Body: &BlockExpr{
			Stmts: []Stmt{
				&LetStmt{
					Name:    "var0",
					VarType: rstype.I32,
					Value: &BinaryExpr{
						Op:      OpAdd,
						Left:    &VarRef{Name: "param0", VarType: rstype.I32, External: true},
						Right:   &IntLit{Val: "1", IntType: rstype.I32},
						ResType: rstype.I32,
					},
				},
				&IfStmt{
					Cond: cond,
					Then: []Stmt{
						&ExprStmt{Value: &BoolLit{Val: true}},
					},
				},
				&PrintStmt{Args: []Expr{&VarRef{Name: "var0", VarType: rstype.I32}}},
			},
		},
	}
	return &Program{Items: []Item{entry}, Entry: entry, Params: entry.Params}
}

func TestWalkVisitsEveryNode(t *testing.T) {
	counts := make(map[NodeKind]int)
	WalkProgram(sampleProgram(), func(n Node) {
		counts[n.Kind()]++
	})

	want := map[NodeKind]int{
		KindFuncItem:   1,
		KindBlockExpr:  1,
		KindLetStmt:    1,
		KindIfStmt:     1,
		KindExprStmt:   1,
		KindPrintStmt:  1,
		KindBinaryExpr: 2,
		KindVarRef:     3,
		KindIntLit:     2,
		KindBoolLit:    1,
	}
	for kind, n := range want {
		if counts[kind] != n {
			t.Errorf("%s visited %d times, want %d", kind, counts[kind], n)
		}
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	wantTotal := 0
	for _, n := range want {
		wantTotal += n
	}
	if total != wantTotal {
		t.Errorf("visited %d nodes in total, want %d", total, wantTotal)
	}
}

func TestWalkIsPreOrder(t *testing.T) {
	let := &LetStmt{
		Name:    "var0",
		VarType: rstype.I32,
		Value:   &IntLit{Val: "3", IntType: rstype.I32},
	}
	var order []NodeKind
	Walk(let, func(n Node) {
		order = append(order, n.Kind())
	})
	if len(order) != 2 || order[0] != KindLetStmt || order[1] != KindIntLit {
		t.Errorf("pre-order walk gave %v", order)
	}
}

func TestExprTypeMatchesConstruction(t *testing.T) {
	tests := []struct {
		expr Expr
		want rstype.Type
	}{
		{&IntLit{Val: "1", IntType: rstype.U8}, rstype.U8},
		{&BoolLit{Val: false}, rstype.Bool},
		{&CharLit{Val: 'x'}, rstype.Char},
		{&StrLit{Val: "abc"}, rstype.Str},
		{&CastExpr{Value: &IntLit{Val: "1", IntType: rstype.I64}, To: rstype.I8}, rstype.I8},
		{&OptionExpr{ResType: &rstype.OptionType{Inner: rstype.I8}}, &rstype.OptionType{Inner: rstype.I8}},
	}
	for _, tt := range tests {
		if !tt.expr.Type().Equal(tt.want) {
			t.Errorf("%s: Type() = %s, want %s", tt.expr.Kind(), tt.expr.Type().Rust(), tt.want.Rust())
		}
	}
}

func TestBinaryOpClassification(t *testing.T) {
	arith := []BinaryOp{OpAdd, OpSub, OpMul, OpDiv, OpRem}
	for _, op := range arith {
		if !op.Arith() {
			t.Errorf("%s should classify as arithmetic", op.Rust())
		}
		if op.Comparison() {
			t.Errorf("%s should not classify as comparison", op.Rust())
		}
	}
	cmp := []BinaryOp{OpEq, OpNe, OpLt, OpLe, OpGt, OpGe}
	for _, op := range cmp {
		if !op.Comparison() {
			t.Errorf("%s should classify as comparison", op.Rust())
		}
		if op.Arith() {
			t.Errorf("%s should not classify as arithmetic", op.Rust())
		}
	}
	for _, op := range []BinaryOp{OpAnd, OpOr} {
		if op.Arith() || op.Comparison() {
			t.Errorf("%s should be neither arithmetic nor comparison", op.Rust())
		}
	}
}

func TestBinaryOpRustSyntax(t *testing.T) {
	tests := []struct {
		op   BinaryOp
		want string
	}{
		{OpAdd, "+"}, {OpSub, "-"}, {OpMul, "*"}, {OpDiv, "/"}, {OpRem, "%"},
		{OpEq, "=="}, {OpNe, "!="}, {OpLt, "<"}, {OpLe, "<="}, {OpGt, ">"}, {OpGe, ">="},
		{OpAnd, "&&"}, {OpOr, "||"},
	}
	for _, tt := range tests {
		if got := tt.op.Rust(); got != tt.want {
			t.Errorf("op %d: Rust() = %q, want %q", tt.op, got, tt.want)
		}
	}
}
