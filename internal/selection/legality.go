package selection

import (
	"github.com/rustsynth/rustsynth/internal/ast"
	"github.com/rustsynth/rustsynth/internal/rstype"
)

// Legality is derived from the type model and the remaining budget
// only. It is identical for every strategy; strategies merely pick
// among the legal kinds.

// legalStmtKinds returns the statement productions permitted under ctx.
func legalStmtKinds(ctx *Context) []ast.NodeKind {
	var kinds []ast.NodeKind
	if ctx.Budget < 1 || ctx.Depth < 1 {
		return kinds
	}
	kinds = append(kinds, ast.KindLetStmt, ast.KindExprStmt)
	if len(ctx.Scope.MutableVars()) > 0 {
		kinds = append(kinds, ast.KindAssignStmt)
	}
	if ctx.Depth >= 2 && ctx.Budget >= 2 {
		kinds = append(kinds, ast.KindIfStmt)
	}
	return kinds
}

// legalExprKinds returns the expression productions able to produce a
// value of the expected type under ctx.
func legalExprKinds(ctx *Context) []ast.NodeKind {
	var kinds []ast.NodeKind
	t := ctx.Expected
	d := ctx.Depth

	switch ty := t.(type) {
	case *rstype.IntType:
		kinds = append(kinds, ast.KindIntLit)
		if d >= 1 {
			kinds = append(kinds, ast.KindBinaryExpr, ast.KindCastExpr)
			if !ty.Unsigned {
				kinds = append(kinds, ast.KindUnaryExpr)
			}
		}
	case *rstype.BoolType:
		kinds = append(kinds, ast.KindBoolLit)
		if d >= 1 {
			kinds = append(kinds, ast.KindUnaryExpr, ast.KindBinaryExpr)
		}
	case *rstype.CharType:
		kinds = append(kinds, ast.KindCharLit)
	case *rstype.StrType:
		kinds = append(kinds, ast.KindStrLit)
	case *rstype.TupleType:
		if rstype.Constructible(t, d) {
			kinds = append(kinds, ast.KindTupleExpr)
		}
	case *rstype.ArrayType:
		if rstype.Constructible(t, d) {
			kinds = append(kinds, ast.KindArrayExpr)
		}
	case *rstype.BoxType:
		if rstype.Constructible(t, d) {
			kinds = append(kinds, ast.KindBoxExpr)
		}
	case *rstype.OptionType:
		if d >= 1 {
			kinds = append(kinds, ast.KindOptionExpr)
		}
	case *rstype.ResultType:
		if rstype.Constructible(t, d) {
			kinds = append(kinds, ast.KindResultExpr)
		}
	case *rstype.RefType:
		// References borrow named immutable places only, so a borrow
		// can never outlive its referent.
		if d >= 1 && len(immutableVarsOfType(ctx, ty.Inner)) > 0 {
			kinds = append(kinds, ast.KindRefExpr)
		}
	case *rstype.StructType:
		if rstype.Constructible(t, d) {
			kinds = append(kinds, ast.KindStructExpr)
		}
	case *rstype.EnumType:
		if rstype.Constructible(t, d) {
			kinds = append(kinds, ast.KindEnumExpr)
		}
	}

	// Productions independent of the expected type's shape. Reference
	// results are excluded from these: a borrow produced inside a
	// block or match arm could escape its referent's scope.
	if len(ctx.Scope.VarsOfType(t)) > 0 || (ctx.AllowExternal && rstype.IsPrimitive(t)) {
		kinds = append(kinds, ast.KindVarRef)
	}
	if _, isRef := t.(*rstype.RefType); isRef {
		return kinds
	}
	if d >= 1 && len(ctx.FuncsReturning(t)) > 0 {
		kinds = append(kinds, ast.KindCallExpr)
	}
	if d >= 1 && rstype.Constructible(t, d-1) {
		kinds = append(kinds, ast.KindBlockExpr)
	}
	if d >= 2 && rstype.Constructible(t, d-1) {
		kinds = append(kinds, ast.KindIfExpr, ast.KindMatchExpr)
	}
	if d >= 2 && rstype.Constructible(t, d-2) {
		kinds = append(kinds, ast.KindDerefExpr, ast.KindUnwrapExpr, ast.KindIndexExpr,
			ast.KindTupleIndexExpr)
	}
	if d >= 1 && len(ctx.StructFieldsOfType(t)) > 0 {
		kinds = append(kinds, ast.KindFieldAccessExpr)
	}
	return kinds
}

// immutableVarsOfType returns the visible immutable symbols of type t.
func immutableVarsOfType(ctx *Context, t rstype.Type) []string {
	var out []string
	for _, sym := range ctx.Scope.VarsOfType(t) {
		if !sym.Mutable {
			out = append(out, sym.Name)
		}
	}
	return out
}

// familyOf maps a type to the node kind of its constructor, used to
// apply per-kind strategy policy (swarm masks, aggressive targets) to
// type choice as well.
func familyOf(t rstype.Type) ast.NodeKind {
	switch t.(type) {
	case *rstype.IntType:
		return ast.KindIntLit
	case *rstype.BoolType:
		return ast.KindBoolLit
	case *rstype.CharType:
		return ast.KindCharLit
	case *rstype.StrType:
		return ast.KindStrLit
	case *rstype.TupleType:
		return ast.KindTupleExpr
	case *rstype.ArrayType:
		return ast.KindArrayExpr
	case *rstype.BoxType:
		return ast.KindBoxExpr
	case *rstype.OptionType:
		return ast.KindOptionExpr
	case *rstype.ResultType:
		return ast.KindResultExpr
	case *rstype.RefType:
		return ast.KindRefExpr
	case *rstype.StructType:
		return ast.KindStructExpr
	case *rstype.EnumType:
		return ast.KindEnumExpr
	default:
		return ast.KindIntLit
	}
}
