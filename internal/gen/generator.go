package gen

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strconv"

	"github.com/rustsynth/rustsynth/internal/ast"
	"github.com/rustsynth/rustsynth/internal/idgen"
	"github.com/rustsynth/rustsynth/internal/rstype"
	"github.com/rustsynth/rustsynth/internal/scope"
	"github.com/rustsynth/rustsynth/internal/selection"
)

// Options bound the size and shape of one generated program.
type Options struct {
	Seed     uint64
	IntWidth int  // 32 or 64, width of isize/usize on the target
	FailFast bool // stricter pruning on dead-ends

	MaxDepth   int // expression recursion budget per statement
	MaxStmts   int // total statement budget for the whole program
	MaxStructs int
	MaxEnums   int
	MaxFuncs   int
}

// DefaultOptions returns the sizing used when the caller does not
// override it.
func DefaultOptions() Options {
	return Options{
		IntWidth:   64,
		MaxDepth:   5,
		MaxStmts:   30,
		MaxStructs: 3,
		MaxEnums:   2,
		MaxFuncs:   3,
	}
}

// Generator synthesizes one complete program per instance. All state
// is per-attempt: one random source, one identifier allocator, one
// selection manager, discarded together on a dead-end.
type Generator struct {
	rng  *rand.Rand
	ids  *idgen.Allocator
	mgr  *selection.Manager
	opts Options

	structs []*rstype.StructType
	enums   []*rstype.EnumType
	funcs   []selection.FuncSig

	budget     int
	inEntry    bool
	entryScope *scope.Scope
	params     []ast.Param
}

// New builds a generator for a single attempt.
func New(opts Options, mgr *selection.Manager, rng *rand.Rand) *Generator {
	if opts.MaxDepth == 0 {
		opts.MaxDepth = DefaultOptions().MaxDepth
	}
	if opts.MaxStmts == 0 {
		opts.MaxStmts = DefaultOptions().MaxStmts
	}
	return &Generator{
		rng:    rng,
		ids:    idgen.New(),
		mgr:    mgr,
		opts:   opts,
		budget: opts.MaxStmts,
	}
}

// Generate produces a complete, type-sound program or fails with a
// wrapped selection.ErrDeadEnd. No partial state survives a failure;
// the caller discards the Generator either way.
func (g *Generator) Generate() (*ast.Program, error) {
	var items []ast.Item

	nStructs := g.rng.Intn(g.opts.MaxStructs + 1)
	nEnums := g.rng.Intn(g.opts.MaxEnums + 1)
	nFuncs := g.rng.Intn(g.opts.MaxFuncs + 1)

	for i := 0; i < nStructs; i++ {
		st, err := g.genStructDecl()
		if err != nil {
			return nil, err
		}
		g.structs = append(g.structs, st)
		items = append(items, &ast.StructItem{Decl: st})
	}
	for i := 0; i < nEnums; i++ {
		en, err := g.genEnumDecl()
		if err != nil {
			return nil, err
		}
		g.enums = append(g.enums, en)
		items = append(items, &ast.EnumItem{Decl: en})
	}
	for i := 0; i < nFuncs; i++ {
		fn, err := g.genHelperFunc()
		if err != nil {
			return nil, err
		}
		g.funcs = append(g.funcs, selection.FuncSig{
			Name:   fn.Name,
			Params: paramTypes(fn.Params),
			Return: fn.Return,
		})
		items = append(items, fn)
	}

	entry, err := g.genEntryFunc()
	if err != nil {
		return nil, err
	}
	items = append(items, entry)

	return &ast.Program{
		Items:  items,
		Entry:  entry,
		Params: g.params,
		Seed:   g.opts.Seed,
	}, nil
}

func paramTypes(params []ast.Param) []rstype.Type {
	out := make([]rstype.Type, len(params))
	for i, p := range params {
		out[i] = p.Type
	}
	return out
}

// ctx assembles the decision-point context for the given scope and
// remaining depth.
func (g *Generator) ctx(sc *scope.Scope, depth int) selection.Context {
	return selection.Context{
		Scope:         sc,
		Depth:         depth,
		Budget:        g.budget,
		AllowExternal: g.inEntry,
		Funcs:         g.funcs,
		Structs:       g.structs,
		Enums:         g.enums,
		Config: selection.Config{
			IntWidth: g.opts.IntWidth,
			FailFast: g.opts.FailFast,
		},
	}
}

// --- Declarations ---

// declType picks a type usable in a struct field, enum variant field,
// or function signature. Declarations never see a scope, so reference
// types are never offered here.
func (g *Generator) declType() (rstype.Type, error) {
	ctx := g.ctx(scope.New(nil), 4)
	return g.mgr.ChooseType(&ctx)
}

func (g *Generator) genStructDecl() (*rstype.StructType, error) {
	n := 1 + g.rng.Intn(3)
	fields := make([]rstype.Field, n)
	for i := range fields {
		t, err := g.declType()
		if err != nil {
			return nil, err
		}
		fields[i] = rstype.Field{Name: g.ids.Next(idgen.Field), Type: t}
	}
	return &rstype.StructType{Name: g.ids.Next(idgen.Struct), Fields: fields}, nil
}

func (g *Generator) genEnumDecl() (*rstype.EnumType, error) {
	n := 1 + g.rng.Intn(3)
	variants := make([]rstype.Variant, n)
	for i := range variants {
		name := fmt.Sprintf("Variant%c", 'A'+i)
		var fields []rstype.Field
		if g.rng.Intn(2) == 0 {
			for j := 0; j < 1+g.rng.Intn(2); j++ {
				t, err := g.declType()
				if err != nil {
					return nil, err
				}
				fields = append(fields, rstype.Field{Name: g.ids.Next(idgen.Field), Type: t})
			}
		}
		variants[i] = rstype.Variant{Name: name, Fields: fields}
	}
	return &rstype.EnumType{Name: g.ids.Next(idgen.Enum), Variants: variants}, nil
}

func (g *Generator) genHelperFunc() (*ast.FuncItem, error) {
	nParams := g.rng.Intn(3)
	params := make([]ast.Param, nParams)
	sc := scope.New(nil)
	for i := range params {
		t, err := g.declType()
		if err != nil {
			return nil, err
		}
		params[i] = ast.Param{Name: g.ids.Next(idgen.Param), Type: t}
		if err := sc.Define(&scope.Symbol{Name: params[i].Name, Type: t, Kind: scope.SymParam}); err != nil {
			panic(err)
		}
	}
	ret, err := g.declType()
	if err != nil {
		return nil, err
	}

	body, err := g.genBlockExpr(sc, ret, g.opts.MaxDepth)
	if err != nil {
		return nil, err
	}
	return &ast.FuncItem{
		Name:   g.ids.Next(idgen.Func),
		Params: params,
		Return: ret,
		Body:   body,
	}, nil
}

func (g *Generator) genEntryFunc() (*ast.FuncItem, error) {
	g.inEntry = true
	defer func() { g.inEntry = false }()

	g.entryScope = scope.New(nil)
	sc := g.entryScope

	target := 3 + g.rng.Intn(5)
	var stmts []ast.Stmt
	for i := 0; i < target && g.budget > 0; i++ {
		s, err := g.genStmt(sc)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}

	// Print every top-level binding so the program's behavior is
	// observable by a differential harness.
	var printArgs []ast.Expr
	for _, sym := range sc.Visible() {
		printArgs = append(printArgs, &ast.VarRef{
			Name:     sym.Name,
			VarType:  sym.Type,
			External: sym.Kind == scope.SymExternal,
		})
	}
	if len(printArgs) > 0 {
		stmts = append(stmts, &ast.PrintStmt{Args: printArgs})
	}

	return &ast.FuncItem{
		Name:    g.ids.Next(idgen.Func),
		Params:  g.params,
		Body:    &ast.BlockExpr{Stmts: stmts},
		IsEntry: true,
	}, nil
}

// --- Statements ---

func (g *Generator) genStmt(sc *scope.Scope) (ast.Stmt, error) {
	ctx := g.ctx(sc, g.opts.MaxDepth)
	kind, err := g.mgr.ChooseStmtKind(&ctx)
	if err != nil {
		return nil, err
	}
	g.budget--

	switch kind {
	case ast.KindLetStmt:
		t, err := g.mgr.ChooseType(&ctx)
		if err != nil {
			return nil, err
		}
		value, err := g.genExpr(sc, t, ctx.Depth-1)
		if err != nil {
			return nil, err
		}
		mutable := g.rng.Intn(3) == 0 && !containsRef(t)
		name := g.ids.Next(idgen.Var)
		if err := sc.Define(&scope.Symbol{Name: name, Type: t, Mutable: mutable, Kind: scope.SymVariable}); err != nil {
			panic(err)
		}
		return &ast.LetStmt{Name: name, Mutable: mutable, VarType: t, Value: value}, nil

	case ast.KindAssignStmt:
		muts := sc.MutableVars()
		sym := muts[g.rng.Intn(len(muts))]
		value, err := g.genExpr(sc, sym.Type, ctx.Depth-1)
		if err != nil {
			return nil, err
		}
		return &ast.AssignStmt{Name: sym.Name, VarType: sym.Type, Value: value}, nil

	case ast.KindExprStmt:
		t, err := g.mgr.ChooseType(&ctx)
		if err != nil {
			return nil, err
		}
		value, err := g.genExpr(sc, t, ctx.Depth-1)
		if err != nil {
			return nil, err
		}
		return &ast.ExprStmt{Value: value}, nil

	case ast.KindIfStmt:
		cond, err := g.genExpr(sc, rstype.Bool, ctx.Depth-1)
		if err != nil {
			return nil, err
		}
		then, err := g.genStmtList(scope.New(sc), 1+g.rng.Intn(2))
		if err != nil {
			return nil, err
		}
		var els []ast.Stmt
		if g.rng.Intn(2) == 0 {
			els, err = g.genStmtList(scope.New(sc), 1+g.rng.Intn(2))
			if err != nil {
				return nil, err
			}
		}
		return &ast.IfStmt{Cond: cond, Then: then, Else: els}, nil

	default:
		panic(fmt.Sprintf("gen: unexpected statement kind %s", kind))
	}
}

func (g *Generator) genStmtList(sc *scope.Scope, n int) ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for i := 0; i < n && g.budget > 0; i++ {
		s, err := g.genStmt(sc)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

// --- Expressions ---

// genExpr builds an expression of exactly type t. The fail-fast policy
// propagates the first dead-end; the exploratory policy re-rolls the
// production a few times before giving up.
func (g *Generator) genExpr(sc *scope.Scope, t rstype.Type, depth int) (ast.Expr, error) {
	attempts := 1
	if !g.opts.FailFast {
		attempts = 3
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		ctx := g.ctx(sc, depth)
		kind, err := g.mgr.ChooseExprKind(&ctx, t)
		if err != nil {
			return nil, err
		}
		e, err := g.genExprKind(sc, t, depth, kind)
		if err == nil {
			return e, nil
		}
		if !errors.Is(err, selection.ErrDeadEnd) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (g *Generator) genExprKind(sc *scope.Scope, t rstype.Type, depth int, kind ast.NodeKind) (ast.Expr, error) {
	switch kind {
	case ast.KindIntLit:
		return g.genIntLit(t.(*rstype.IntType)), nil

	case ast.KindBoolLit:
		return &ast.BoolLit{Val: g.rng.Intn(2) == 0}, nil

	case ast.KindCharLit:
		return &ast.CharLit{Val: rune('a' + g.rng.Intn(26))}, nil

	case ast.KindStrLit:
		return &ast.StrLit{Val: g.genStringValue()}, nil

	case ast.KindVarRef:
		return g.genVarRef(sc, t)

	case ast.KindUnaryExpr:
		return g.genUnary(sc, t, depth)

	case ast.KindBinaryExpr:
		return g.genBinary(sc, t, depth)

	case ast.KindCastExpr:
		from := rstype.Integers[g.rng.Intn(len(rstype.Integers))]
		value, err := g.genExpr(sc, from, depth-1)
		if err != nil {
			return nil, err
		}
		return &ast.CastExpr{Value: value, To: t.(*rstype.IntType)}, nil

	case ast.KindCallExpr:
		ctx := g.ctx(sc, depth)
		fns := ctx.FuncsReturning(t)
		fn := fns[g.rng.Intn(len(fns))]
		args := make([]ast.Expr, len(fn.Params))
		for i, pt := range fn.Params {
			a, err := g.genExpr(sc, pt, depth-1)
			if err != nil {
				return nil, err
			}
			args[i] = a
		}
		return &ast.CallExpr{Callee: fn.Name, Args: args, ResType: t}, nil

	case ast.KindIfExpr:
		cond, err := g.genExpr(sc, rstype.Bool, depth-1)
		if err != nil {
			return nil, err
		}
		then, err := g.genBlockExpr(scope.New(sc), t, depth-1)
		if err != nil {
			return nil, err
		}
		els, err := g.genBlockExpr(scope.New(sc), t, depth-1)
		if err != nil {
			return nil, err
		}
		return &ast.IfExpr{Cond: cond, Then: then, Else: els, ResType: t}, nil

	case ast.KindBlockExpr:
		return g.genBlockExpr(scope.New(sc), t, depth-1)

	case ast.KindTupleExpr:
		tt := t.(*rstype.TupleType)
		elems := make([]ast.Expr, len(tt.Elems))
		for i, et := range tt.Elems {
			e, err := g.genExpr(sc, et, depth-1)
			if err != nil {
				return nil, err
			}
			elems[i] = e
		}
		return &ast.TupleExpr{Elems: elems, ResType: tt}, nil

	case ast.KindArrayExpr:
		at := t.(*rstype.ArrayType)
		elems := make([]ast.Expr, at.Len)
		for i := range elems {
			e, err := g.genExpr(sc, at.Elem, depth-1)
			if err != nil {
				return nil, err
			}
			elems[i] = e
		}
		return &ast.ArrayExpr{Elems: elems, ResType: at}, nil

	case ast.KindIndexExpr:
		arrType := &rstype.ArrayType{Elem: t, Len: 1 + g.rng.Intn(4)}
		arr, err := g.genExpr(sc, arrType, depth-1)
		if err != nil {
			return nil, err
		}
		idx, err := g.genExpr(sc, rstype.USize, depth-1)
		if err != nil {
			return nil, err
		}
		return &ast.IndexExpr{Arr: arr, Index: idx, ResType: t}, nil

	case ast.KindTupleIndexExpr:
		n := 1 + g.rng.Intn(3)
		idx := g.rng.Intn(n)
		elems := make([]rstype.Type, n)
		for i := range elems {
			if i == idx {
				elems[i] = t
			} else {
				elems[i] = rstype.Primitives[g.rng.Intn(len(rstype.Primitives))]
			}
		}
		tup, err := g.genExpr(sc, &rstype.TupleType{Elems: elems}, depth-1)
		if err != nil {
			return nil, err
		}
		return &ast.TupleIndexExpr{Tuple: tup, Index: idx, ResType: t}, nil

	case ast.KindFieldAccessExpr:
		ctx := g.ctx(sc, depth)
		cands := ctx.StructFieldsOfType(t)
		cand := cands[g.rng.Intn(len(cands))]
		src, err := g.genExpr(sc, cand.Decl, depth-1)
		if err != nil {
			return nil, err
		}
		return &ast.FieldAccessExpr{Source: src, Field: cand.Field.Name, ResType: t}, nil

	case ast.KindStructExpr:
		st := t.(*rstype.StructType)
		fields := make([]ast.Expr, len(st.Fields))
		for i, f := range st.Fields {
			e, err := g.genExpr(sc, f.Type, depth-1)
			if err != nil {
				return nil, err
			}
			fields[i] = e
		}
		return &ast.StructExpr{Decl: st, Fields: fields}, nil

	case ast.KindEnumExpr:
		return g.genEnumExpr(sc, t.(*rstype.EnumType), depth)

	case ast.KindOptionExpr:
		ot := t.(*rstype.OptionType)
		if depth >= 1 && rstype.Constructible(ot.Inner, depth-1) && g.rng.Intn(3) != 0 {
			inner, err := g.genExpr(sc, ot.Inner, depth-1)
			if err != nil {
				return nil, err
			}
			return &ast.OptionExpr{Inner: inner, ResType: ot}, nil
		}
		return &ast.OptionExpr{ResType: ot}, nil

	case ast.KindResultExpr:
		return g.genResultExpr(sc, t.(*rstype.ResultType), depth)

	case ast.KindBoxExpr:
		bt := t.(*rstype.BoxType)
		inner, err := g.genExpr(sc, bt.Inner, depth-1)
		if err != nil {
			return nil, err
		}
		return &ast.BoxExpr{Inner: inner, ResType: bt}, nil

	case ast.KindRefExpr:
		rt := t.(*rstype.RefType)
		// Borrow only named immutable places, so the reference can
		// never outlive its referent or conflict with a reassignment.
		cands := immutableVarsOfType(sc, rt.Inner)
		if len(cands) == 0 {
			return nil, selection.ErrDeadEnd
		}
		sym := cands[g.rng.Intn(len(cands))]
		return &ast.RefExpr{
			Inner:   &ast.VarRef{Name: sym.Name, VarType: sym.Type, External: sym.Kind == scope.SymExternal},
			ResType: rt,
		}, nil

	case ast.KindDerefExpr:
		box, err := g.genExpr(sc, &rstype.BoxType{Inner: t}, depth-1)
		if err != nil {
			return nil, err
		}
		return &ast.DerefExpr{Box: box, ResType: t}, nil

	case ast.KindUnwrapExpr:
		var src ast.Expr
		var err error
		if g.rng.Intn(2) == 0 {
			src, err = g.genExpr(sc, &rstype.OptionType{Inner: t}, depth-1)
		} else {
			errT := rstype.Primitives[g.rng.Intn(len(rstype.Primitives))]
			src, err = g.genExpr(sc, &rstype.ResultType{Ok: t, Err: errT}, depth-1)
		}
		if err != nil {
			return nil, err
		}
		return &ast.UnwrapExpr{Source: src, ResType: t}, nil

	case ast.KindMatchExpr:
		return g.genMatchExpr(sc, t, depth)

	default:
		panic(fmt.Sprintf("gen: unexpected expression kind %s", kind))
	}
}

func (g *Generator) genIntLit(t *rstype.IntType) *ast.IntLit {
	// Mostly small values, occasionally a boundary of the type. The
	// configured platform width decides the isize/usize boundaries.
	if g.rng.Intn(8) == 0 {
		return &ast.IntLit{Val: boundaryValue(t, g.opts.IntWidth, g.rng.Intn(2) == 0), IntType: t}
	}
	var val string
	if t.Unsigned {
		val = fmt.Sprintf("%d", g.rng.Intn(101))
	} else {
		val = fmt.Sprintf("%d", g.rng.Intn(201)-100)
	}
	return &ast.IntLit{Val: val, IntType: t}
}

// boundaryValue returns an extreme of t as decimal text. 128-bit
// boundaries are clamped to the 64-bit range, which still fits the
// wider type. The signed minimum is written as the negated maximum:
// the true minimum would render as a negation of an out-of-range
// literal, which Rust rejects.
func boundaryValue(t *rstype.IntType, platformBits int, min bool) string {
	bits := t.Width(platformBits)
	if bits > 64 {
		bits = 64
	}
	if t.Unsigned {
		if min {
			return "0"
		}
		max := uint64(math.MaxUint64)
		if bits < 64 {
			max = 1<<uint(bits) - 1
		}
		return strconv.FormatUint(max, 10)
	}
	max := int64(math.MaxInt64)
	if bits < 64 {
		max = 1<<uint(bits-1) - 1
	}
	if min {
		return strconv.FormatInt(-max, 10)
	}
	return strconv.FormatInt(max, 10)
}

const stringAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func (g *Generator) genStringValue() string {
	n := g.rng.Intn(9)
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = stringAlphabet[g.rng.Intn(len(stringAlphabet))]
	}
	return string(buf)
}

// genVarRef reuses an in-scope variable of type t, or mints a fresh
// external parameter when none exists: the free variable joins the
// program's parameter list with its type inferred from this use.
func (g *Generator) genVarRef(sc *scope.Scope, t rstype.Type) (ast.Expr, error) {
	vars := sc.VarsOfType(t)
	if len(vars) > 0 {
		sym := vars[g.rng.Intn(len(vars))]
		return &ast.VarRef{Name: sym.Name, VarType: sym.Type, External: sym.Kind == scope.SymExternal}, nil
	}
	if !g.inEntry || !rstype.IsPrimitive(t) {
		return nil, selection.ErrDeadEnd
	}
	name := g.ids.Next(idgen.Param)
	if err := g.entryScope.Define(&scope.Symbol{Name: name, Type: t, Kind: scope.SymExternal}); err != nil {
		panic(err)
	}
	g.params = append(g.params, ast.Param{Name: name, Type: t})
	return &ast.VarRef{Name: name, VarType: t, External: true}, nil
}

func (g *Generator) genUnary(sc *scope.Scope, t rstype.Type, depth int) (ast.Expr, error) {
	op := ast.OpNeg
	if t.Equal(rstype.Bool) {
		op = ast.OpNot
	}
	operand, err := g.genExpr(sc, t, depth-1)
	if err != nil {
		return nil, err
	}
	return &ast.UnaryExpr{Op: op, Operand: operand, ResType: t}, nil
}

func (g *Generator) genBinary(sc *scope.Scope, t rstype.Type, depth int) (ast.Expr, error) {
	if rstype.IsInteger(t) {
		op := ast.BinaryOp(g.rng.Intn(5)) // OpAdd..OpRem
		left, err := g.genExpr(sc, t, depth-1)
		if err != nil {
			return nil, err
		}
		right, err := g.genExpr(sc, t, depth-1)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{Op: op, Left: left, Right: right, ResType: t}, nil
	}

	// bool result: logical connective or integer comparison
	if g.rng.Intn(2) == 0 {
		op := ast.OpAnd
		if g.rng.Intn(2) == 0 {
			op = ast.OpOr
		}
		left, err := g.genExpr(sc, rstype.Bool, depth-1)
		if err != nil {
			return nil, err
		}
		right, err := g.genExpr(sc, rstype.Bool, depth-1)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{Op: op, Left: left, Right: right, ResType: rstype.Bool}, nil
	}

	op := ast.OpEq + ast.BinaryOp(g.rng.Intn(6))
	operandT := rstype.Integers[g.rng.Intn(len(rstype.Integers))]
	left, err := g.genExpr(sc, operandT, depth-1)
	if err != nil {
		return nil, err
	}
	right, err := g.genExpr(sc, operandT, depth-1)
	if err != nil {
		return nil, err
	}
	return &ast.BinaryExpr{Op: op, Left: left, Right: right, ResType: rstype.Bool}, nil
}

func (g *Generator) genBlockExpr(sc *scope.Scope, t rstype.Type, depth int) (*ast.BlockExpr, error) {
	if depth < 0 {
		return nil, selection.ErrDeadEnd
	}
	var stmts []ast.Stmt
	if depth >= 1 {
		n := g.rng.Intn(3)
		for i := 0; i < n && g.budget > 0; i++ {
			s, err := g.genStmt(sc)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, s)
		}
	}
	var value ast.Expr
	if t != nil {
		var err error
		value, err = g.genExpr(sc, t, depth)
		if err != nil {
			return nil, err
		}
	}
	return &ast.BlockExpr{Stmts: stmts, Value: value, ResType: t}, nil
}

func (g *Generator) genEnumExpr(sc *scope.Scope, et *rstype.EnumType, depth int) (ast.Expr, error) {
	var constructible []int
	for i, v := range et.Variants {
		ok := true
		for _, f := range v.Fields {
			if !rstype.Constructible(f.Type, depth-1) {
				ok = false
				break
			}
		}
		if ok {
			constructible = append(constructible, i)
		}
	}
	if len(constructible) == 0 {
		return nil, selection.ErrDeadEnd
	}
	idx := constructible[g.rng.Intn(len(constructible))]
	variant := et.Variants[idx]
	fields := make([]ast.Expr, len(variant.Fields))
	for i, f := range variant.Fields {
		e, err := g.genExpr(sc, f.Type, depth-1)
		if err != nil {
			return nil, err
		}
		fields[i] = e
	}
	return &ast.EnumExpr{Decl: et, VariantIdx: idx, Fields: fields}, nil
}

func (g *Generator) genResultExpr(sc *scope.Scope, rt *rstype.ResultType, depth int) (ast.Expr, error) {
	okOK := rstype.Constructible(rt.Ok, depth-1)
	errOK := rstype.Constructible(rt.Err, depth-1)
	var isOk bool
	switch {
	case okOK && errOK:
		isOk = g.rng.Intn(2) == 0
	case okOK:
		isOk = true
	case errOK:
		isOk = false
	default:
		return nil, selection.ErrDeadEnd
	}
	inner, err := g.genExpr(sc, pickResultSide(rt, isOk), depth-1)
	if err != nil {
		return nil, err
	}
	return &ast.ResultExpr{IsOk: isOk, Inner: inner, ResType: rt}, nil
}

func pickResultSide(rt *rstype.ResultType, isOk bool) rstype.Type {
	if isOk {
		return rt.Ok
	}
	return rt.Err
}

func (g *Generator) genMatchExpr(sc *scope.Scope, t rstype.Type, depth int) (ast.Expr, error) {
	// Scrutinee family: a declared enum when one fits, otherwise a
	// builtin Option or Result over a scalar.
	var usable []*rstype.EnumType
	for _, en := range g.enums {
		if rstype.Constructible(en, depth-1) {
			usable = append(usable, en)
		}
	}

	choice := g.rng.Intn(3)
	if choice == 0 && len(usable) > 0 {
		et := usable[g.rng.Intn(len(usable))]
		return g.genEnumMatch(sc, t, et, depth)
	}
	if choice != 2 {
		inner := rstype.Primitives[g.rng.Intn(len(rstype.Primitives))]
		return g.genOptionMatch(sc, t, &rstype.OptionType{Inner: inner}, depth)
	}
	ok := rstype.Primitives[g.rng.Intn(len(rstype.Primitives))]
	errT := rstype.Primitives[g.rng.Intn(len(rstype.Primitives))]
	return g.genResultMatch(sc, t, &rstype.ResultType{Ok: ok, Err: errT}, depth)
}

func (g *Generator) genEnumMatch(sc *scope.Scope, t rstype.Type, et *rstype.EnumType, depth int) (ast.Expr, error) {
	scrutinee, err := g.genExpr(sc, et, depth-1)
	if err != nil {
		return nil, err
	}
	arms := make([]*ast.MatchArm, len(et.Variants))
	for i, v := range et.Variants {
		armScope := scope.New(sc)
		pat := &ast.MatchPattern{VariantName: v.Name}
		for _, f := range v.Fields {
			binding := g.ids.Next(idgen.Binding)
			pat.FieldNames = append(pat.FieldNames, f.Name)
			pat.Bindings = append(pat.Bindings, binding)
			pat.BindingTypes = append(pat.BindingTypes, f.Type)
			if err := armScope.Define(&scope.Symbol{Name: binding, Type: f.Type, Kind: scope.SymBinding}); err != nil {
				panic(err)
			}
		}
		body, err := g.genExpr(armScope, t, depth-1)
		if err != nil {
			return nil, err
		}
		arms[i] = &ast.MatchArm{Pattern: pat, Body: body}
	}
	return &ast.MatchExpr{Scrutinee: scrutinee, Arms: arms, ResType: t}, nil
}

func (g *Generator) genOptionMatch(sc *scope.Scope, t rstype.Type, ot *rstype.OptionType, depth int) (ast.Expr, error) {
	scrutinee, err := g.genExpr(sc, ot, depth-1)
	if err != nil {
		return nil, err
	}
	someScope := scope.New(sc)
	binding := g.ids.Next(idgen.Binding)
	if err := someScope.Define(&scope.Symbol{Name: binding, Type: ot.Inner, Kind: scope.SymBinding}); err != nil {
		panic(err)
	}
	someBody, err := g.genExpr(someScope, t, depth-1)
	if err != nil {
		return nil, err
	}
	noneBody, err := g.genExpr(scope.New(sc), t, depth-1)
	if err != nil {
		return nil, err
	}
	return &ast.MatchExpr{
		Scrutinee: scrutinee,
		Arms: []*ast.MatchArm{
			{Pattern: &ast.MatchPattern{Builtin: true, VariantName: "Some", Bindings: []string{binding}, BindingTypes: []rstype.Type{ot.Inner}}, Body: someBody},
			{Pattern: &ast.MatchPattern{Builtin: true, VariantName: "None"}, Body: noneBody},
		},
		ResType: t,
	}, nil
}

func (g *Generator) genResultMatch(sc *scope.Scope, t rstype.Type, rt *rstype.ResultType, depth int) (ast.Expr, error) {
	scrutinee, err := g.genExpr(sc, rt, depth-1)
	if err != nil {
		return nil, err
	}
	okScope := scope.New(sc)
	okBinding := g.ids.Next(idgen.Binding)
	if err := okScope.Define(&scope.Symbol{Name: okBinding, Type: rt.Ok, Kind: scope.SymBinding}); err != nil {
		panic(err)
	}
	okBody, err := g.genExpr(okScope, t, depth-1)
	if err != nil {
		return nil, err
	}
	errScope := scope.New(sc)
	errBinding := g.ids.Next(idgen.Binding)
	if err := errScope.Define(&scope.Symbol{Name: errBinding, Type: rt.Err, Kind: scope.SymBinding}); err != nil {
		panic(err)
	}
	errBody, err := g.genExpr(errScope, t, depth-1)
	if err != nil {
		return nil, err
	}
	return &ast.MatchExpr{
		Scrutinee: scrutinee,
		Arms: []*ast.MatchArm{
			{Pattern: &ast.MatchPattern{Builtin: true, VariantName: "Ok", Bindings: []string{okBinding}, BindingTypes: []rstype.Type{rt.Ok}}, Body: okBody},
			{Pattern: &ast.MatchPattern{Builtin: true, VariantName: "Err", Bindings: []string{errBinding}, BindingTypes: []rstype.Type{rt.Err}}, Body: errBody},
		},
		ResType: t,
	}, nil
}

// containsRef reports whether t contains a reference type anywhere;
// such bindings stay immutable so reassignment can never invalidate a
// borrow.
func containsRef(t rstype.Type) bool {
	switch ty := t.(type) {
	case *rstype.RefType:
		return true
	case *rstype.ArrayType:
		return containsRef(ty.Elem)
	case *rstype.TupleType:
		for _, e := range ty.Elems {
			if containsRef(e) {
				return true
			}
		}
	case *rstype.BoxType:
		return containsRef(ty.Inner)
	case *rstype.OptionType:
		return containsRef(ty.Inner)
	case *rstype.ResultType:
		return containsRef(ty.Ok) || containsRef(ty.Err)
	}
	return false
}

func immutableVarsOfType(sc *scope.Scope, t rstype.Type) []*scope.Symbol {
	var out []*scope.Symbol
	for _, sym := range sc.VarsOfType(t) {
		if !sym.Mutable {
			out = append(out, sym)
		}
	}
	return out
}
