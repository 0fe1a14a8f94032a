// Package render turns a program AST into Rust source text. The
// emitted file is self-contained: it defines the guard macros used by
// reconditioned operations, every declared item, the entry function,
// and a main that parses the entry arguments from argv.
package render

import (
	"fmt"
	"strings"

	"github.com/rustsynth/rustsynth/internal/ast"
	"github.com/rustsynth/rustsynth/internal/rstype"
)

type renderer struct {
	bufs   []*strings.Builder
	indent int
}

// Program renders prog to Rust source.
func Program(prog *ast.Program) string {
	r := &renderer{bufs: []*strings.Builder{{}}}
	r.emitLine(fmt.Sprintf("// program seed: %d", prog.Seed))
	r.emitLine("#![allow(unused_parens, unused_variables, unused_mut, dead_code, unused_macros)]")
	r.emitLine("")
	r.emitMacros()
	for _, item := range prog.Items {
		r.renderItem(item)
		r.emitLine("")
	}
	r.renderMain(prog)
	return r.buf().String()
}

// LineCount reports the number of lines in rendered source.
func LineCount(src string) int {
	n := strings.Count(src, "\n")
	if len(src) > 0 && !strings.HasSuffix(src, "\n") {
		n++
	}
	return n
}

func (r *renderer) buf() *strings.Builder {
	return r.bufs[len(r.bufs)-1]
}

func (r *renderer) pushBuf() {
	r.bufs = append(r.bufs, &strings.Builder{})
}

func (r *renderer) popBuf() string {
	s := r.buf().String()
	r.bufs = r.bufs[:len(r.bufs)-1]
	return s
}

func (r *renderer) emit(s string) {
	r.buf().WriteString(s)
}

func (r *renderer) emitLine(s string) {
	if s != "" {
		r.emit(r.indentStr())
		r.emit(s)
	}
	r.emit("\n")
}

func (r *renderer) indentStr() string {
	return strings.Repeat("    ", r.indent)
}

// Guard macros bind their operands once so that operand side effects
// are not replayed.
func (r *renderer) emitMacros() {
	r.emitLine("macro_rules! safe_div {")
	r.emitLine("    ($a:expr, $b:expr) => {{ let __a = $a; let __b = $b; __a.checked_div(__b).unwrap_or(__a) }};")
	r.emitLine("}")
	r.emitLine("macro_rules! safe_rem {")
	r.emitLine("    ($a:expr, $b:expr) => {{ let __a = $a; let __b = $b; __a.checked_rem(__b).unwrap_or(__a) }};")
	r.emitLine("}")
	r.emitLine("macro_rules! safe_index {")
	r.emitLine("    ($a:expr, $i:expr, $n:expr) => {{ let __arr = $a; let __idx = $i; __arr[__idx % $n].clone() }};")
	r.emitLine("}")
	r.emitLine("")
}

func (r *renderer) renderItem(item ast.Item) {
	switch it := item.(type) {
	case *ast.StructItem:
		r.emitLine("#[derive(Clone, Debug)]")
		r.emitLine(fmt.Sprintf("struct %s {", it.Decl.Name))
		r.indent++
		for _, f := range it.Decl.Fields {
			r.emitLine(fmt.Sprintf("%s: %s,", f.Name, f.Type.Rust()))
		}
		r.indent--
		r.emitLine("}")
	case *ast.EnumItem:
		r.emitLine("#[derive(Clone, Debug)]")
		r.emitLine(fmt.Sprintf("enum %s {", it.Decl.Name))
		r.indent++
		for _, v := range it.Decl.Variants {
			if len(v.Fields) == 0 {
				r.emitLine(fmt.Sprintf("%s,", v.Name))
				continue
			}
			parts := make([]string, len(v.Fields))
			for i, f := range v.Fields {
				parts[i] = fmt.Sprintf("%s: %s", f.Name, f.Type.Rust())
			}
			r.emitLine(fmt.Sprintf("%s { %s },", v.Name, strings.Join(parts, ", ")))
		}
		r.indent--
		r.emitLine("}")
	case *ast.FuncItem:
		r.renderFunc(it)
	default:
		panic(fmt.Sprintf("render: unknown item %T", item))
	}
}

func (r *renderer) renderFunc(fn *ast.FuncItem) {
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = fmt.Sprintf("%s: %s", p.Name, p.Type.Rust())
	}
	sig := fmt.Sprintf("fn %s(%s)", fn.Name, strings.Join(params, ", "))
	if fn.Return != nil {
		sig += " -> " + fn.Return.Rust()
	}
	r.emitLine(sig + " {")
	r.indent++
	for _, st := range fn.Body.Stmts {
		r.renderStmt(st)
	}
	if fn.Body.Value != nil {
		r.emitLine(r.expr(fn.Body.Value))
	}
	r.indent--
	r.emitLine("}")
}

func (r *renderer) renderMain(prog *ast.Program) {
	r.emitLine("fn main() {")
	r.indent++
	if len(prog.Params) > 0 {
		r.emitLine("let args: Vec<String> = std::env::args().collect();")
	}
	call := make([]string, len(prog.Params))
	for i, p := range prog.Params {
		call[i] = argParse(fmt.Sprintf("args[%d]", i+1), p.Type)
	}
	r.emitLine(fmt.Sprintf("%s(%s);", prog.Entry.Name, strings.Join(call, ", ")))
	r.indent--
	r.emitLine("}")
}

// argParse converts one argv slot to the entry parameter type.
func argParse(slot string, t rstype.Type) string {
	switch tt := t.(type) {
	case *rstype.IntType:
		return fmt.Sprintf("%s.parse::<%s>().unwrap()", slot, tt.Rust())
	case *rstype.BoolType:
		return fmt.Sprintf("%s.parse::<bool>().unwrap()", slot)
	case *rstype.CharType:
		return fmt.Sprintf("%s.chars().next().unwrap()", slot)
	case *rstype.StrType:
		return fmt.Sprintf("%s.clone()", slot)
	default:
		panic(fmt.Sprintf("render: non-primitive entry parameter %s", t.Rust()))
	}
}

func (r *renderer) renderStmt(stmt ast.Stmt) {
	switch st := stmt.(type) {
	case *ast.LetStmt:
		kw := "let"
		if st.Mutable {
			kw = "let mut"
		}
		r.emitLine(fmt.Sprintf("%s %s: %s = %s;", kw, st.Name, st.VarType.Rust(), r.expr(st.Value)))
	case *ast.AssignStmt:
		r.emitLine(fmt.Sprintf("%s = %s;", st.Name, r.expr(st.Value)))
	case *ast.ExprStmt:
		r.emitLine(fmt.Sprintf("let _: %s = %s;", st.Value.Type().Rust(), r.expr(st.Value)))
	case *ast.IfStmt:
		r.emitLine(fmt.Sprintf("if %s {", r.expr(st.Cond)))
		r.indent++
		for _, s := range st.Then {
			r.renderStmt(s)
		}
		r.indent--
		if len(st.Else) > 0 {
			r.emitLine("} else {")
			r.indent++
			for _, s := range st.Else {
				r.renderStmt(s)
			}
			r.indent--
		}
		r.emitLine("}")
	case *ast.PrintStmt:
		// One placeholder per value. Debug is only implemented for
		// tuples up to arity 12, and the checksum can carry more.
		args := make([]string, len(st.Args))
		holes := make([]string, len(st.Args))
		for i, a := range st.Args {
			args[i] = "&" + a.(*ast.VarRef).Name
			holes[i] = "{:?}"
		}
		r.emitLine(fmt.Sprintf("println!(\"%s\", %s);", strings.Join(holes, " "), strings.Join(args, ", ")))
	default:
		panic(fmt.Sprintf("render: unknown statement %T", stmt))
	}
}

func (r *renderer) expr(e ast.Expr) string {
	switch ex := e.(type) {
	case *ast.IntLit:
		return ex.Val + ex.IntType.Rust()
	case *ast.BoolLit:
		if ex.Val {
			return "true"
		}
		return "false"
	case *ast.CharLit:
		return quoteRustChar(ex.Val)
	case *ast.StrLit:
		return fmt.Sprintf("String::from(\"%s\")", escapeRustString(ex.Val))
	case *ast.VarRef:
		if isCopy(ex.VarType) {
			return ex.Name
		}
		return ex.Name + ".clone()"
	case *ast.UnaryExpr:
		return r.unary(ex)
	case *ast.BinaryExpr:
		return r.binary(ex)
	case *ast.CastExpr:
		return r.cast(ex)
	case *ast.CallExpr:
		args := make([]string, len(ex.Args))
		for i, a := range ex.Args {
			args[i] = r.expr(a)
		}
		return fmt.Sprintf("%s(%s)", ex.Callee, strings.Join(args, ", "))
	case *ast.IfExpr:
		return fmt.Sprintf("if %s %s else %s", r.expr(ex.Cond), r.block(ex.Then), r.block(ex.Else))
	case *ast.BlockExpr:
		return r.block(ex)
	case *ast.TupleExpr:
		elems := make([]string, len(ex.Elems))
		for i, el := range ex.Elems {
			elems[i] = r.expr(el)
		}
		return fmt.Sprintf("(%s)", strings.Join(elems, ", "))
	case *ast.ArrayExpr:
		elems := make([]string, len(ex.Elems))
		for i, el := range ex.Elems {
			elems[i] = r.expr(el)
		}
		return fmt.Sprintf("[%s]", strings.Join(elems, ", "))
	case *ast.IndexExpr:
		return r.index(ex)
	case *ast.TupleIndexExpr:
		return fmt.Sprintf("(%s).%d", r.expr(ex.Tuple), ex.Index)
	case *ast.FieldAccessExpr:
		return fmt.Sprintf("(%s).%s", r.expr(ex.Source), ex.Field)
	case *ast.StructExpr:
		fields := make([]string, len(ex.Fields))
		for i, f := range ex.Fields {
			fields[i] = fmt.Sprintf("%s: %s", ex.Decl.Fields[i].Name, r.expr(f))
		}
		return fmt.Sprintf("%s { %s }", ex.Decl.Name, strings.Join(fields, ", "))
	case *ast.EnumExpr:
		v := ex.Decl.Variants[ex.VariantIdx]
		if len(v.Fields) == 0 {
			return fmt.Sprintf("%s::%s", ex.Decl.Name, v.Name)
		}
		fields := make([]string, len(ex.Fields))
		for i, f := range ex.Fields {
			fields[i] = fmt.Sprintf("%s: %s", v.Fields[i].Name, r.expr(f))
		}
		return fmt.Sprintf("%s::%s { %s }", ex.Decl.Name, v.Name, strings.Join(fields, ", "))
	case *ast.OptionExpr:
		if ex.Inner == nil {
			return fmt.Sprintf("None::<%s>", ex.ResType.Inner.Rust())
		}
		return fmt.Sprintf("Some(%s)", r.expr(ex.Inner))
	case *ast.ResultExpr:
		ctor := "Err"
		if ex.IsOk {
			ctor = "Ok"
		}
		return fmt.Sprintf("%s::<%s, %s>(%s)", ctor, ex.ResType.Ok.Rust(), ex.ResType.Err.Rust(), r.expr(ex.Inner))
	case *ast.BoxExpr:
		return fmt.Sprintf("Box::new(%s)", r.expr(ex.Inner))
	case *ast.DerefExpr:
		return fmt.Sprintf("(*%s)", r.expr(ex.Box))
	case *ast.RefExpr:
		v, ok := ex.Inner.(*ast.VarRef)
		if !ok {
			panic("render: reference to non-variable expression")
		}
		return "&" + v.Name
	case *ast.UnwrapExpr:
		return r.unwrap(ex)
	case *ast.MatchExpr:
		return r.match(ex)
	default:
		panic(fmt.Sprintf("render: unknown expression %T", e))
	}
}

func (r *renderer) unary(ex *ast.UnaryExpr) string {
	op := r.expr(ex.Operand)
	switch ex.Op {
	case ast.OpNot:
		return fmt.Sprintf("(!%s)", op)
	case ast.OpNeg:
		if ex.Safe {
			return fmt.Sprintf("(%s).wrapping_neg()", op)
		}
		return fmt.Sprintf("(-%s)", op)
	default:
		panic(fmt.Sprintf("render: unknown unary operator %d", ex.Op))
	}
}

func (r *renderer) binary(ex *ast.BinaryExpr) string {
	lhs := r.expr(ex.Left)
	rhs := r.expr(ex.Right)
	if ex.Safe {
		switch ex.Op {
		case ast.OpAdd:
			return fmt.Sprintf("(%s).wrapping_add(%s)", lhs, rhs)
		case ast.OpSub:
			return fmt.Sprintf("(%s).wrapping_sub(%s)", lhs, rhs)
		case ast.OpMul:
			return fmt.Sprintf("(%s).wrapping_mul(%s)", lhs, rhs)
		case ast.OpDiv:
			return fmt.Sprintf("safe_div!(%s, %s)", lhs, rhs)
		case ast.OpRem:
			return fmt.Sprintf("safe_rem!(%s, %s)", lhs, rhs)
		}
	}
	return fmt.Sprintf("(%s %s %s)", lhs, ex.Op.Rust(), rhs)
}

func (r *renderer) cast(ex *ast.CastExpr) string {
	val := r.expr(ex.Value)
	if !ex.Safe {
		return fmt.Sprintf("(%s as %s)", val, ex.To.Rust())
	}
	return fmt.Sprintf("%s::try_from(%s).unwrap_or(%s)", ex.To.Rust(), val, r.defaultValue(ex.To))
}

func (r *renderer) index(ex *ast.IndexExpr) string {
	arr := r.expr(ex.Arr)
	idx := r.expr(ex.Index)
	at, ok := ex.Arr.Type().(*rstype.ArrayType)
	if !ok {
		panic("render: index into non-array")
	}
	if ex.Safe {
		return fmt.Sprintf("safe_index!(%s, %s, %dusize)", arr, idx, at.Len)
	}
	if isCopy(at.Elem) {
		return fmt.Sprintf("(%s)[%s]", arr, idx)
	}
	return fmt.Sprintf("(%s)[%s].clone()", arr, idx)
}

func (r *renderer) unwrap(ex *ast.UnwrapExpr) string {
	src := r.expr(ex.Source)
	if !ex.Safe {
		return fmt.Sprintf("(%s).unwrap()", src)
	}
	def := r.defaultValue(ex.ResType)
	if _, isResult := ex.Source.Type().(*rstype.ResultType); isResult {
		return fmt.Sprintf("(%s).unwrap_or_else(|_| %s)", src, def)
	}
	return fmt.Sprintf("(%s).unwrap_or_else(|| %s)", src, def)
}

func (r *renderer) block(b *ast.BlockExpr) string {
	if len(b.Stmts) == 0 {
		if b.Value == nil {
			return "{ }"
		}
		return fmt.Sprintf("{ %s }", r.expr(b.Value))
	}
	r.pushBuf()
	r.emit("{\n")
	r.indent++
	for _, st := range b.Stmts {
		r.renderStmt(st)
	}
	if b.Value != nil {
		r.emitLine(r.expr(b.Value))
	}
	r.indent--
	r.emit(r.indentStr() + "}")
	return r.popBuf()
}

func (r *renderer) match(ex *ast.MatchExpr) string {
	r.pushBuf()
	r.emit(fmt.Sprintf("match %s {\n", r.expr(ex.Scrutinee)))
	r.indent++
	for _, arm := range ex.Arms {
		r.emit(r.indentStr())
		r.emit(r.pattern(arm.Pattern, ex.Scrutinee.Type()))
		r.emit(" => ")
		r.emit(r.expr(arm.Body))
		r.emit(",\n")
	}
	r.indent--
	r.emit(r.indentStr() + "}")
	return r.popBuf()
}

func (r *renderer) pattern(p *ast.MatchPattern, scrutinee rstype.Type) string {
	if p.Wildcard {
		return "_"
	}
	if p.Builtin {
		// Option and Result variants use positional bindings.
		if len(p.Bindings) == 0 {
			return p.VariantName
		}
		return fmt.Sprintf("%s(%s)", p.VariantName, strings.Join(p.Bindings, ", "))
	}
	et, ok := scrutinee.(*rstype.EnumType)
	if !ok {
		panic("render: enum pattern on non-enum scrutinee")
	}
	if len(p.Bindings) == 0 {
		return fmt.Sprintf("%s::%s", et.Name, p.VariantName)
	}
	parts := make([]string, len(p.Bindings))
	for i, b := range p.Bindings {
		parts[i] = fmt.Sprintf("%s: %s", p.FieldNames[i], b)
	}
	return fmt.Sprintf("%s::%s { %s }", et.Name, p.VariantName, strings.Join(parts, ", "))
}

// defaultValue produces a constant expression of type t, used as the
// fallback arm of guarded casts and unwraps.
func (r *renderer) defaultValue(t rstype.Type) string {
	switch tt := t.(type) {
	case *rstype.IntType:
		return "0" + tt.Rust()
	case *rstype.BoolType:
		return "false"
	case *rstype.CharType:
		return "'a'"
	case *rstype.StrType:
		return "String::new()"
	case *rstype.ArrayType:
		elems := make([]string, tt.Len)
		for i := range elems {
			elems[i] = r.defaultValue(tt.Elem)
		}
		return fmt.Sprintf("[%s]", strings.Join(elems, ", "))
	case *rstype.TupleType:
		elems := make([]string, len(tt.Elems))
		for i, el := range tt.Elems {
			elems[i] = r.defaultValue(el)
		}
		return fmt.Sprintf("(%s)", strings.Join(elems, ", "))
	case *rstype.BoxType:
		return fmt.Sprintf("Box::new(%s)", r.defaultValue(tt.Inner))
	case *rstype.OptionType:
		return fmt.Sprintf("None::<%s>", tt.Inner.Rust())
	case *rstype.ResultType:
		return fmt.Sprintf("Ok::<%s, %s>(%s)", tt.Ok.Rust(), tt.Err.Rust(), r.defaultValue(tt.Ok))
	case *rstype.StructType:
		fields := make([]string, len(tt.Fields))
		for i, f := range tt.Fields {
			fields[i] = fmt.Sprintf("%s: %s", f.Name, r.defaultValue(f.Type))
		}
		return fmt.Sprintf("%s { %s }", tt.Name, strings.Join(fields, ", "))
	case *rstype.EnumType:
		vi := rstype.CheapestVariant(tt, 8)
		v := tt.Variants[vi]
		if len(v.Fields) == 0 {
			return fmt.Sprintf("%s::%s", tt.Name, v.Name)
		}
		fields := make([]string, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = fmt.Sprintf("%s: %s", f.Name, r.defaultValue(f.Type))
		}
		return fmt.Sprintf("%s::%s { %s }", tt.Name, v.Name, strings.Join(fields, ", "))
	default:
		panic(fmt.Sprintf("render: no default value for %s", t.Rust()))
	}
}

// isCopy reports whether values of t are implicitly copied rather
// than moved. Declared structs and enums derive Clone, not Copy.
func isCopy(t rstype.Type) bool {
	switch tt := t.(type) {
	case *rstype.IntType, *rstype.BoolType, *rstype.CharType, *rstype.RefType:
		return true
	case *rstype.ArrayType:
		return isCopy(tt.Elem)
	case *rstype.TupleType:
		for _, el := range tt.Elems {
			if !isCopy(el) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func escapeRustString(s string) string {
	var b strings.Builder
	for _, c := range s {
		switch c {
		case '\\':
			b.WriteString("\\\\")
		case '"':
			b.WriteString("\\\"")
		case '\n':
			b.WriteString("\\n")
		case '\t':
			b.WriteString("\\t")
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}

func quoteRustChar(c rune) string {
	switch c {
	case '\\':
		return `'\\'`
	case '\'':
		return `'\''`
	case '\n':
		return `'\n'`
	case '\t':
		return `'\t'`
	default:
		return fmt.Sprintf("'%c'", c)
	}
}
