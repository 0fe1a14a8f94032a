package render

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/rustsynth/rustsynth/internal/ast"
	"github.com/rustsynth/rustsynth/internal/gen"
	"github.com/rustsynth/rustsynth/internal/recondition"
	"github.com/rustsynth/rustsynth/internal/rstype"
	"github.com/rustsynth/rustsynth/internal/selection"
)

func handProgram() *ast.Program {
	entry := &ast.FuncItem{
		Name:    "fun0",
		Params:  []ast.Param{{Name: "param0", Type: rstype.I64}, {Name: "param1", Type: rstype.Str}},
		IsEntry: true,
		Body: &ast.BlockExpr{
			Stmts: []ast.Stmt{
				&ast.LetStmt{
					Name:    "var0",
					VarType: rstype.I64,
					Value: &ast.BinaryExpr{
						Op:      ast.OpAdd,
						Left:    &ast.VarRef{Name: "param0", VarType: rstype.I64, External: true},
						Right:   &ast.IntLit{Val: "3", IntType: rstype.I64},
						ResType: rstype.I64,
						Safe:    true,
					},
				},
				&ast.LetStmt{
					Name:    "var1",
					VarType: rstype.Str,
					Value:   &ast.VarRef{Name: "param1", VarType: rstype.Str, External: true},
				},
				&ast.PrintStmt{Args: []ast.Expr{
					&ast.VarRef{Name: "var0", VarType: rstype.I64},
					&ast.VarRef{Name: "var1", VarType: rstype.Str},
				}},
			},
		},
	}
	return &ast.Program{
		Items:  []ast.Item{entry},
		Entry:  entry,
		Params: entry.Params,
		Seed:   42,
	}
}

func TestProgramEmitsEntryAndMain(t *testing.T) {
	src := Program(handProgram())

	for _, want := range []string{
		"// program seed: 42",
		"#![allow(unused_parens, unused_variables, unused_mut, dead_code, unused_macros)]",
		"fn fun0(param0: i64, param1: String) {",
		"let var0: i64 = (param0).wrapping_add(3i64);",
		"let var1: String = param1.clone();",
		"println!(\"{:?} {:?}\", &var0, &var1);",
		"fn main() {",
		"let args: Vec<String> = std::env::args().collect();",
		"fun0(args[1].parse::<i64>().unwrap(), args[2].clone());",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("rendered source missing %q:\n%s", want, src)
		}
	}
}

func TestGuardMacrosAlwaysPresent(t *testing.T) {
	src := Program(handProgram())
	for _, want := range []string{"macro_rules! safe_div", "macro_rules! safe_rem", "macro_rules! safe_index"} {
		if !strings.Contains(src, want) {
			t.Errorf("rendered source missing %q", want)
		}
	}
}

func TestSafeForms(t *testing.T) {
	i64lit := func(v string) ast.Expr { return &ast.IntLit{Val: v, IntType: rstype.I64} }
	r := &renderer{bufs: []*strings.Builder{{}}}

	tests := []struct {
		name string
		expr ast.Expr
		want string
	}{
		{
			"wrapping mul",
			&ast.BinaryExpr{Op: ast.OpMul, Left: i64lit("2"), Right: i64lit("3"), ResType: rstype.I64, Safe: true},
			"(2i64).wrapping_mul(3i64)",
		},
		{
			"guarded division",
			&ast.BinaryExpr{Op: ast.OpDiv, Left: i64lit("6"), Right: i64lit("0"), ResType: rstype.I64, Safe: true},
			"safe_div!(6i64, 0i64)",
		},
		{
			"guarded remainder",
			&ast.BinaryExpr{Op: ast.OpRem, Left: i64lit("6"), Right: i64lit("0"), ResType: rstype.I64, Safe: true},
			"safe_rem!(6i64, 0i64)",
		},
		{
			"wrapping negation",
			&ast.UnaryExpr{Op: ast.OpNeg, Operand: i64lit("5"), ResType: rstype.I64, Safe: true},
			"(5i64).wrapping_neg()",
		},
		{
			"guarded cast",
			&ast.CastExpr{Value: i64lit("300"), To: rstype.I8, Safe: true},
			"i8::try_from(300i64).unwrap_or(0i8)",
		},
		{
			"plain cast",
			&ast.CastExpr{Value: i64lit("3"), To: rstype.I128},
			"(3i64 as i128)",
		},
		{
			"guarded index",
			&ast.IndexExpr{
				Arr:     &ast.ArrayExpr{Elems: []ast.Expr{i64lit("1"), i64lit("2")}, ResType: &rstype.ArrayType{Elem: rstype.I64, Len: 2}},
				Index:   &ast.IntLit{Val: "9", IntType: rstype.USize},
				ResType: rstype.I64,
				Safe:    true,
			},
			"safe_index!([1i64, 2i64], 9usize, 2usize)",
		},
		{
			"guarded option unwrap",
			&ast.UnwrapExpr{
				Source:  &ast.OptionExpr{ResType: &rstype.OptionType{Inner: rstype.I64}},
				ResType: rstype.I64,
				Safe:    true,
			},
			"(None::<i64>).unwrap_or_else(|| 0i64)",
		},
		{
			"guarded result unwrap",
			&ast.UnwrapExpr{
				Source: &ast.ResultExpr{
					IsOk:    true,
					Inner:   i64lit("1"),
					ResType: &rstype.ResultType{Ok: rstype.I64, Err: rstype.Str},
				},
				ResType: rstype.I64,
				Safe:    true,
			},
			"(Ok::<i64, String>(1i64)).unwrap_or_else(|_| 0i64)",
		},
		{
			"tuple index",
			&ast.TupleIndexExpr{
				Tuple: &ast.TupleExpr{
					Elems:   []ast.Expr{i64lit("1"), &ast.BoolLit{Val: true}},
					ResType: &rstype.TupleType{Elems: []rstype.Type{rstype.I64, rstype.Bool}},
				},
				Index:   1,
				ResType: rstype.Bool,
			},
			"((1i64, true)).1",
		},
		{
			"struct field access",
			&ast.FieldAccessExpr{
				Source: &ast.VarRef{
					Name:    "var0",
					VarType: &rstype.StructType{Name: "Struct0", Fields: []rstype.Field{{Name: "field0", Type: rstype.I64}}},
				},
				Field:   "field0",
				ResType: rstype.I64,
			},
			"(var0.clone()).field0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.expr(tt.expr); got != tt.want {
				t.Errorf("expr = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestChecksumAvoidsWideTuples renders a checksum over more values
// than Debug supports for a single tuple (arity 12). Each value must
// get its own placeholder or the program does not compile.
func TestChecksumAvoidsWideTuples(t *testing.T) {
	var vars []ast.Expr
	var holes, names []string
	for i := 0; i < 16; i++ {
		name := fmt.Sprintf("var%d", i)
		vars = append(vars, &ast.VarRef{Name: name, VarType: rstype.I64})
		holes = append(holes, "{:?}")
		names = append(names, "&"+name)
	}
	r := &renderer{bufs: []*strings.Builder{{}}}
	r.renderStmt(&ast.PrintStmt{Args: vars})
	got := r.bufs[0].String()
	want := fmt.Sprintf("println!(%q, %s);\n", strings.Join(holes, " "), strings.Join(names, ", "))
	if got != want {
		t.Errorf("checksum = %q, want %q", got, want)
	}
	if strings.Contains(got, "(&var0,") {
		t.Error("checksum still renders one tuple over every value")
	}
}

func TestCloneInsertedForNonCopyUses(t *testing.T) {
	r := &renderer{bufs: []*strings.Builder{{}}}
	if got := r.expr(&ast.VarRef{Name: "var0", VarType: rstype.Str}); got != "var0.clone()" {
		t.Errorf("owned string use = %q, want clone", got)
	}
	if got := r.expr(&ast.VarRef{Name: "var1", VarType: rstype.I8}); got != "var1" {
		t.Errorf("copy type use = %q, want bare name", got)
	}
	if got := r.expr(&ast.RefExpr{
		Inner:   &ast.VarRef{Name: "var2", VarType: rstype.Str},
		ResType: &rstype.RefType{Inner: rstype.Str},
	}); got != "&var2" {
		t.Errorf("borrow = %q, want &var2 without clone", got)
	}
}

func TestDefaultValues(t *testing.T) {
	r := &renderer{bufs: []*strings.Builder{{}}}
	en := &rstype.EnumType{
		Name: "Enum0",
		Variants: []rstype.Variant{
			{Name: "VariantA", Fields: []rstype.Field{{Name: "field0", Type: rstype.Str}}},
			{Name: "VariantB"},
		},
	}
	tests := []struct {
		typ  rstype.Type
		want string
	}{
		{rstype.U16, "0u16"},
		{rstype.Bool, "false"},
		{rstype.Str, "String::new()"},
		{&rstype.ArrayType{Elem: rstype.I8, Len: 2}, "[0i8, 0i8]"},
		{&rstype.TupleType{Elems: []rstype.Type{rstype.I8, rstype.Char}}, "(0i8, 'a')"},
		{&rstype.BoxType{Inner: rstype.U8}, "Box::new(0u8)"},
		{&rstype.OptionType{Inner: rstype.Str}, "None::<String>"},
		{&rstype.ResultType{Ok: rstype.I8, Err: rstype.Str}, "Ok::<i8, String>(0i8)"},
		{en, "Enum0::VariantA { field0: String::new() }"},
	}
	for _, tt := range tests {
		if got := r.defaultValue(tt.typ); got != tt.want {
			t.Errorf("defaultValue(%s) = %q, want %q", tt.typ.Rust(), got, tt.want)
		}
	}
}

func TestStringEscaping(t *testing.T) {
	r := &renderer{bufs: []*strings.Builder{{}}}
	got := r.expr(&ast.StrLit{Val: `a"b\c`})
	want := `String::from("a\"b\\c")`
	if got != want {
		t.Errorf("string literal = %q, want %q", got, want)
	}
}

func TestLineCount(t *testing.T) {
	if got := LineCount(""); got != 0 {
		t.Errorf("empty source: %d lines, want 0", got)
	}
	if got := LineCount("a\nb\n"); got != 2 {
		t.Errorf("two terminated lines: %d, want 2", got)
	}
	if got := LineCount("a\nb"); got != 2 {
		t.Errorf("unterminated final line: %d, want 2", got)
	}
}

// TestRenderGeneratedPrograms runs the full pipeline over a batch of
// seeds and sanity-checks the emitted text.
func TestRenderGeneratedPrograms(t *testing.T) {
	rendered := 0
	for seed := uint64(0); seed < 40 && rendered < 10; seed++ {
		rng := rand.New(rand.NewSource(int64(seed)))
		opts := gen.DefaultOptions()
		opts.Seed = seed
		mgr := selection.NewManager(selection.Uniform, rng)
		prog, err := gen.New(opts, mgr, rng).Generate()
		if err != nil {
			if errors.Is(err, selection.ErrDeadEnd) {
				continue
			}
			t.Fatalf("seed %d: %v", seed, err)
		}
		safe, _ := recondition.Recondition(prog, 64)
		src := Program(safe)
		rendered++

		if !strings.Contains(src, "fn main()") {
			t.Errorf("seed %d: no main in rendered source", seed)
		}
		if !strings.Contains(src, "fn "+safe.Entry.Name) {
			t.Errorf("seed %d: entry function missing", seed)
		}
		if strings.Contains(src, ".unwrap()") && !strings.Contains(src, "args[") {
			t.Errorf("seed %d: bare unwrap outside argument parsing", seed)
		}
		if got := LineCount(src); got < 10 {
			t.Errorf("seed %d: implausibly short output (%d lines)", seed, got)
		}
	}
	if rendered == 0 {
		t.Fatal("no program rendered")
	}
}
