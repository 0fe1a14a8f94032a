// Package recondition rewrites a finished program so that no
// expression can fail at run time for any input, while preserving
// every node's declared type and the program's external signature.
// The rewrite is one-to-one on tree shape: each patched node is
// replaced in place by its guarded form, nothing is reordered.
package recondition

import (
	"fmt"

	"github.com/rustsynth/rustsynth/internal/ast"
	"github.com/rustsynth/rustsynth/internal/rstype"
)

// Recondition returns a patched copy of prog plus the statistics
// gathered over the patched tree. platformBits is the width of
// isize/usize (32 or 64) and decides which casts touching them are
// lossless. Applying Recondition to its own output changes nothing.
// It never fails on a well-typed tree; anything it cannot handle is an
// upstream invariant violation.
func Recondition(prog *ast.Program, platformBits int) (*ast.Program, *Stats) {
	if platformBits != 32 && platformBits != 64 {
		platformBits = 64
	}
	rw := &rewriter{platformBits: platformBits}
	out := &ast.Program{
		Params: prog.Params,
		Seed:   prog.Seed,
	}
	for _, item := range prog.Items {
		patched := rw.item(item)
		out.Items = append(out.Items, patched)
		if fn, ok := patched.(*ast.FuncItem); ok && fn.IsEntry {
			out.Entry = fn
		}
	}
	return out, Collect(out)
}

type rewriter struct {
	platformBits int
}

func (rw *rewriter) item(item ast.Item) ast.Item {
	switch n := item.(type) {
	case *ast.StructItem, *ast.EnumItem:
		return n
	case *ast.FuncItem:
		return &ast.FuncItem{
			Name:    n.Name,
			Params:  n.Params,
			Return:  n.Return,
			Body:    rw.expr(n.Body).(*ast.BlockExpr),
			IsEntry: n.IsEntry,
		}
	default:
		panic(fmt.Sprintf("recondition: unknown item %T", item))
	}
}

func (rw *rewriter) stmt(s ast.Stmt) ast.Stmt {
	switch n := s.(type) {
	case *ast.LetStmt:
		return &ast.LetStmt{Name: n.Name, Mutable: n.Mutable, VarType: n.VarType, Value: rw.expr(n.Value)}
	case *ast.AssignStmt:
		return &ast.AssignStmt{Name: n.Name, VarType: n.VarType, Value: rw.expr(n.Value)}
	case *ast.ExprStmt:
		return &ast.ExprStmt{Value: rw.expr(n.Value)}
	case *ast.IfStmt:
		return &ast.IfStmt{
			Cond: rw.expr(n.Cond),
			Then: rw.stmts(n.Then),
			Else: rw.stmts(n.Else),
		}
	case *ast.PrintStmt:
		args := make([]ast.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = rw.expr(a)
		}
		return &ast.PrintStmt{Args: args}
	default:
		panic(fmt.Sprintf("recondition: unknown statement %T", s))
	}
}

func (rw *rewriter) stmts(stmts []ast.Stmt) []ast.Stmt {
	if stmts == nil {
		return nil
	}
	out := make([]ast.Stmt, len(stmts))
	for i, s := range stmts {
		out[i] = rw.stmt(s)
	}
	return out
}

func (rw *rewriter) expr(e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case *ast.IntLit, *ast.BoolLit, *ast.CharLit, *ast.StrLit, *ast.VarRef:
		return n

	case *ast.UnaryExpr:
		// Integer negation overflows on MIN; force the wrapping form.
		return &ast.UnaryExpr{
			Op:      n.Op,
			Operand: rw.expr(n.Operand),
			ResType: n.ResType,
			Safe:    n.Safe || (n.Op == ast.OpNeg && rstype.IsInteger(n.ResType)),
		}

	case *ast.BinaryExpr:
		return &ast.BinaryExpr{
			Op:      n.Op,
			Left:    rw.expr(n.Left),
			Right:   rw.expr(n.Right),
			ResType: n.ResType,
			Safe:    n.Safe || (n.Op.Arith() && rstype.IsInteger(n.ResType)),
		}

	case *ast.CastExpr:
		from := n.Value.Type().(*rstype.IntType)
		return &ast.CastExpr{
			Value: rw.expr(n.Value),
			To:    n.To,
			Safe:  n.Safe || !losslessCast(from, n.To, rw.platformBits),
		}

	case *ast.CallExpr:
		args := make([]ast.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = rw.expr(a)
		}
		return &ast.CallExpr{Callee: n.Callee, Args: args, ResType: n.ResType}

	case *ast.IfExpr:
		return &ast.IfExpr{
			Cond:    rw.expr(n.Cond),
			Then:    rw.expr(n.Then).(*ast.BlockExpr),
			Else:    rw.expr(n.Else).(*ast.BlockExpr),
			ResType: n.ResType,
		}

	case *ast.BlockExpr:
		var value ast.Expr
		if n.Value != nil {
			value = rw.expr(n.Value)
		}
		return &ast.BlockExpr{Stmts: rw.stmts(n.Stmts), Value: value, ResType: n.ResType}

	case *ast.TupleExpr:
		return &ast.TupleExpr{Elems: rw.exprs(n.Elems), ResType: n.ResType}

	case *ast.ArrayExpr:
		return &ast.ArrayExpr{Elems: rw.exprs(n.Elems), ResType: n.ResType}

	case *ast.IndexExpr:
		// Any index can be out of bounds; wrap it into range.
		return &ast.IndexExpr{
			Arr:     rw.expr(n.Arr),
			Index:   rw.expr(n.Index),
			ResType: n.ResType,
			Safe:    true,
		}

	case *ast.TupleIndexExpr:
		// The index is static and in range by construction.
		return &ast.TupleIndexExpr{Tuple: rw.expr(n.Tuple), Index: n.Index, ResType: n.ResType}

	case *ast.FieldAccessExpr:
		return &ast.FieldAccessExpr{Source: rw.expr(n.Source), Field: n.Field, ResType: n.ResType}

	case *ast.StructExpr:
		return &ast.StructExpr{Decl: n.Decl, Fields: rw.exprs(n.Fields)}

	case *ast.EnumExpr:
		return &ast.EnumExpr{Decl: n.Decl, VariantIdx: n.VariantIdx, Fields: rw.exprs(n.Fields)}

	case *ast.OptionExpr:
		if n.Inner == nil {
			return n
		}
		return &ast.OptionExpr{Inner: rw.expr(n.Inner), ResType: n.ResType}

	case *ast.ResultExpr:
		return &ast.ResultExpr{IsOk: n.IsOk, Inner: rw.expr(n.Inner), ResType: n.ResType}

	case *ast.BoxExpr:
		return &ast.BoxExpr{Inner: rw.expr(n.Inner), ResType: n.ResType}

	case *ast.DerefExpr:
		// Box dereference is total in safe Rust; only its operand
		// needs patching.
		return &ast.DerefExpr{Box: rw.expr(n.Box), ResType: n.ResType}

	case *ast.RefExpr:
		return &ast.RefExpr{Inner: rw.expr(n.Inner), ResType: n.ResType}

	case *ast.UnwrapExpr:
		// The source may be None or Err; substitute a deterministic
		// default in that case.
		return &ast.UnwrapExpr{Source: rw.expr(n.Source), ResType: n.ResType, Safe: true}

	case *ast.MatchExpr:
		arms := make([]*ast.MatchArm, len(n.Arms))
		for i, arm := range n.Arms {
			arms[i] = &ast.MatchArm{Pattern: arm.Pattern, Body: rw.expr(arm.Body)}
		}
		return &ast.MatchExpr{Scrutinee: rw.expr(n.Scrutinee), Arms: arms, ResType: n.ResType}

	default:
		panic(fmt.Sprintf("recondition: unknown expression %T", e))
	}
}

func (rw *rewriter) exprs(exprs []ast.Expr) []ast.Expr {
	out := make([]ast.Expr, len(exprs))
	for i, e := range exprs {
		out[i] = rw.expr(e)
	}
	return out
}

// losslessCast reports whether every value of from fits in to. The
// widths of isize/usize come from the configured platform width, so
// the same cast can be lossless on one target and guarded on the
// other.
func losslessCast(from, to *rstype.IntType, platformBits int) bool {
	if from.Equal(to) {
		return true
	}
	fromBits := from.Width(platformBits)
	toBits := to.Width(platformBits)
	if from.Unsigned == to.Unsigned {
		return toBits >= fromBits
	}
	if from.Unsigned && !to.Unsigned {
		// u8 -> i16 etc: needs one extra bit for the sign.
		return toBits > fromBits
	}
	// signed -> unsigned loses negatives.
	return false
}
