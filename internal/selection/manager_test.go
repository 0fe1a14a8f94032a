package selection

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/rustsynth/rustsynth/internal/ast"
	"github.com/rustsynth/rustsynth/internal/rstype"
	"github.com/rustsynth/rustsynth/internal/scope"
)

func testContext(depth, budget int) Context {
	return Context{
		Scope:  scope.New(nil),
		Depth:  depth,
		Budget: budget,
		Config: Config{IntWidth: 64},
	}
}

// exprKinds asks for the legal productions for type t, the way
// ChooseExprKind frames a decision point.
func exprKinds(ctx Context, t rstype.Type) []ast.NodeKind {
	ctx.Expected = t
	return legalExprKinds(&ctx)
}

// legalExprKinds works off the expected type the context carries, so
// a decision point for a new type must restate it rather than inherit
// whatever the parent expected.
func TestExpectedTypeDrivesLegality(t *testing.T) {
	ctx := testContext(5, 10)
	ctx.Expected = rstype.Bool
	for _, k := range legalExprKinds(&ctx) {
		if k == ast.KindCharLit {
			t.Fatal("char literal legal while a bool is expected")
		}
	}
	m := NewManager(Uniform, rand.New(rand.NewSource(1)))
	k, err := m.ChooseExprKind(&ctx, rstype.Char)
	if err != nil {
		t.Fatal(err)
	}
	if k != ast.KindCharLit {
		t.Errorf("ChooseExprKind for char = %s, want CharLit", k)
	}
	if ctx.Expected != rstype.Bool {
		t.Error("ChooseExprKind should not mutate the caller's context")
	}
}

func TestParse(t *testing.T) {
	for _, s := range Strategies {
		got, err := Parse(s.String())
		if err != nil {
			t.Errorf("Parse(%q): %v", s.String(), err)
		}
		if got != s {
			t.Errorf("Parse(%q) = %v, want %v", s.String(), got, s)
		}
	}
	if _, err := Parse("bogus"); err == nil {
		t.Error("Parse of unknown name should fail")
	}
}

func TestStmtLegalityNeedsBudgetAndDepth(t *testing.T) {
	ctx := testContext(0, 10)
	if kinds := legalStmtKinds(&ctx); len(kinds) != 0 {
		t.Errorf("no depth left: legal kinds = %v, want none", kinds)
	}
	ctx = testContext(5, 0)
	if kinds := legalStmtKinds(&ctx); len(kinds) != 0 {
		t.Errorf("no budget left: legal kinds = %v, want none", kinds)
	}
}

func TestAssignRequiresMutableVar(t *testing.T) {
	ctx := testContext(5, 10)
	for _, k := range legalStmtKinds(&ctx) {
		if k == ast.KindAssignStmt {
			t.Fatal("assignment legal with no mutable variable in scope")
		}
	}
	if err := ctx.Scope.Define(&scope.Symbol{Name: "var0", Type: rstype.I32, Mutable: true, Kind: scope.SymVariable}); err != nil {
		t.Fatal(err)
	}
	found := false
	for _, k := range legalStmtKinds(&ctx) {
		if k == ast.KindAssignStmt {
			found = true
		}
	}
	if !found {
		t.Error("assignment should become legal once a mutable variable exists")
	}
}

func TestExprLegalityFollowsTypeShape(t *testing.T) {
	ctx := testContext(5, 10)
	tests := []struct {
		name    string
		typ     rstype.Type
		want    ast.NodeKind
		exclude ast.NodeKind
	}{
		{"signed int offers negation", rstype.I32, ast.KindUnaryExpr, ast.KindBoolLit},
		{"unsigned int has no negation", rstype.U32, ast.KindIntLit, ast.KindUnaryExpr},
		{"bool offers not", rstype.Bool, ast.KindUnaryExpr, ast.KindIntLit},
		{"char literal only constructor", rstype.Char, ast.KindCharLit, ast.KindStrLit},
		{"box offers its constructor", &rstype.BoxType{Inner: rstype.I8}, ast.KindBoxExpr, ast.KindIntLit},
		{"option offers its constructor", &rstype.OptionType{Inner: rstype.I8}, ast.KindOptionExpr, ast.KindIntLit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kinds := exprKinds(ctx, tt.typ)
			has := func(k ast.NodeKind) bool {
				for _, got := range kinds {
					if got == k {
						return true
					}
				}
				return false
			}
			if !has(tt.want) {
				t.Errorf("legal kinds %v missing %s", kinds, tt.want)
			}
			if has(tt.exclude) {
				t.Errorf("legal kinds %v should not include %s", kinds, tt.exclude)
			}
		})
	}
}

func TestFieldAccessLegalityNeedsDeclaredStruct(t *testing.T) {
	ctx := testContext(5, 10)
	has := func(kinds []ast.NodeKind, k ast.NodeKind) bool {
		for _, got := range kinds {
			if got == k {
				return true
			}
		}
		return false
	}
	if has(exprKinds(ctx, rstype.I64), ast.KindFieldAccessExpr) {
		t.Error("field access legal with no struct declared")
	}
	ctx.Structs = []*rstype.StructType{{
		Name:   "Struct0",
		Fields: []rstype.Field{{Name: "field0", Type: rstype.I64}},
	}}
	if !has(exprKinds(ctx, rstype.I64), ast.KindFieldAccessExpr) {
		t.Error("field access should be legal once a struct carries the type")
	}
	if has(exprKinds(ctx, rstype.Bool), ast.KindFieldAccessExpr) {
		t.Error("field access legal for a type no struct field carries")
	}
}

func TestTupleIndexNeedsDepth(t *testing.T) {
	has := func(kinds []ast.NodeKind, k ast.NodeKind) bool {
		for _, got := range kinds {
			if got == k {
				return true
			}
		}
		return false
	}
	shallow := testContext(1, 10)
	if has(exprKinds(shallow, rstype.I64), ast.KindTupleIndexExpr) {
		t.Error("tuple index legal at depth 1; building the tuple needs two levels")
	}
	deep := testContext(3, 10)
	if !has(exprKinds(deep, rstype.I64), ast.KindTupleIndexExpr) {
		t.Error("tuple index should be legal with depth to build the tuple")
	}
}

func TestLiteralsLegalAtDepthZero(t *testing.T) {
	ctx := testContext(0, 10)
	kinds := exprKinds(ctx, rstype.I64)
	if len(kinds) != 1 || kinds[0] != ast.KindIntLit {
		t.Errorf("at depth 0 only the literal should be legal, got %v", kinds)
	}
}

func TestRefLegalityNeedsImmutableVar(t *testing.T) {
	ctx := testContext(5, 10)
	refT := &rstype.RefType{Inner: rstype.I32}
	if kinds := exprKinds(ctx, refT); len(kinds) != 0 {
		t.Errorf("no borrowable variable: legal kinds = %v, want none", kinds)
	}
	if err := ctx.Scope.Define(&scope.Symbol{Name: "var0", Type: rstype.I32, Mutable: true, Kind: scope.SymVariable}); err != nil {
		t.Fatal(err)
	}
	if kinds := exprKinds(ctx, refT); len(kinds) != 0 {
		t.Errorf("mutable variables are not borrowable, got %v", kinds)
	}
	if err := ctx.Scope.Define(&scope.Symbol{Name: "var1", Type: rstype.I32, Kind: scope.SymVariable}); err != nil {
		t.Fatal(err)
	}
	kinds := exprKinds(ctx, refT)
	if len(kinds) != 1 || kinds[0] != ast.KindRefExpr {
		t.Errorf("immutable variable present: legal kinds = %v, want just RefExpr", kinds)
	}
}

func TestCallLegalOnlyWithMatchingReturn(t *testing.T) {
	ctx := testContext(5, 10)
	ctx.Funcs = []FuncSig{{Name: "fun0", Return: rstype.Bool}}
	has := func(kinds []ast.NodeKind, k ast.NodeKind) bool {
		for _, got := range kinds {
			if got == k {
				return true
			}
		}
		return false
	}
	if !has(exprKinds(ctx, rstype.Bool), ast.KindCallExpr) {
		t.Error("call should be legal for the declared return type")
	}
	if has(exprKinds(ctx, rstype.I32), ast.KindCallExpr) {
		t.Error("call should not be legal for other types")
	}
}

func TestPickReturnsDeadEndOnEmptyLegalSet(t *testing.T) {
	m := NewManager(Uniform, rand.New(rand.NewSource(1)))
	ctx := testContext(0, 0)
	if _, err := m.ChooseStmtKind(&ctx); !errors.Is(err, ErrDeadEnd) {
		t.Errorf("got %v, want ErrDeadEnd", err)
	}
}

func TestSwarmMasksDifferAcrossSeeds(t *testing.T) {
	masksEqual := func(a, b map[ast.NodeKind]bool) bool {
		if len(a) != len(b) {
			return false
		}
		for k, v := range a {
			if b[k] != v {
				return false
			}
		}
		return true
	}
	base := NewManager(Swarm, rand.New(rand.NewSource(0))).DisabledKinds()
	differing := 0
	for seed := int64(1); seed <= 16; seed++ {
		m := NewManager(Swarm, rand.New(rand.NewSource(seed)))
		if !masksEqual(base, m.DisabledKinds()) {
			differing++
		}
	}
	if differing == 0 {
		t.Error("sixteen reseeded swarm configurations all produced the same mask")
	}
}

func TestSwarmNeverPicksDisabledKind(t *testing.T) {
	for seed := int64(0); seed < 8; seed++ {
		m := NewManager(Swarm, rand.New(rand.NewSource(seed)))
		ctx := testContext(5, 10)
		for i := 0; i < 100; i++ {
			k, err := m.ChooseExprKind(&ctx, rstype.I64)
			if errors.Is(err, ErrDeadEnd) {
				continue
			}
			if err != nil {
				t.Fatalf("seed %d: unexpected error: %v", seed, err)
			}
			if m.Disabled(k) {
				t.Fatalf("seed %d: picked masked kind %s", seed, k)
			}
		}
	}
}

func TestUniformNeverPicksIllegalKind(t *testing.T) {
	m := NewManager(Uniform, rand.New(rand.NewSource(7)))
	ctx := testContext(3, 10)
	legal := map[ast.NodeKind]bool{}
	for _, k := range exprKinds(ctx, rstype.U8) {
		legal[k] = true
	}
	for i := 0; i < 200; i++ {
		k, err := m.ChooseExprKind(&ctx, rstype.U8)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !legal[k] {
			t.Fatalf("picked illegal kind %s", k)
		}
	}
}

func TestOptimalBalancesChoices(t *testing.T) {
	m := NewManager(Optimal, rand.New(rand.NewSource(3)))
	ctx := testContext(3, 10)
	for i := 0; i < 300; i++ {
		if _, err := m.ChooseExprKind(&ctx, rstype.U8); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	counts := m.Counts()
	legal := exprKinds(ctx, rstype.U8)
	min, max := counts[legal[0]], counts[legal[0]]
	for _, k := range legal[1:] {
		if counts[k] < min {
			min = counts[k]
		}
		if counts[k] > max {
			max = counts[k]
		}
	}
	if max-min > 1 {
		t.Errorf("optimal strategy left counts unbalanced: min %d, max %d (%v)", min, max, counts)
	}
}

func TestAggressiveForcesTargetWhenLegal(t *testing.T) {
	m := NewAggressive(rand.New(rand.NewSource(5)), ast.KindBinaryExpr)
	ctx := testContext(3, 10)
	for i := 0; i < 50; i++ {
		k, err := m.ChooseExprKind(&ctx, rstype.I64)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if k != ast.KindBinaryExpr {
			t.Fatalf("aggressive manager picked %s, want BinaryExpr", k)
		}
	}
	// The target is not legal for char; the manager falls back to a
	// legal kind instead of failing.
	k, err := m.ChooseExprKind(&ctx, rstype.Char)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k == ast.KindBinaryExpr {
		t.Error("target should not be chosen where illegal")
	}
}

func TestChooseTypeIsConstructibleWithinDepth(t *testing.T) {
	m := NewManager(Uniform, rand.New(rand.NewSource(11)))
	ctx := testContext(4, 10)
	for i := 0; i < 200; i++ {
		typ, err := m.ChooseType(&ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !rstype.Constructible(typ, ctx.Depth-1) {
			t.Fatalf("chose %s, not constructible at depth %d", typ.Rust(), ctx.Depth-1)
		}
	}
}

func TestChooseTypeOffersRefOnlyOverImmutableVars(t *testing.T) {
	m := NewManager(Uniform, rand.New(rand.NewSource(13)))
	ctx := testContext(4, 10)
	for i := 0; i < 100; i++ {
		typ, err := m.ChooseType(&ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := typ.(*rstype.RefType); ok {
			t.Fatal("reference type offered with an empty scope")
		}
	}
	if err := ctx.Scope.Define(&scope.Symbol{Name: "var0", Type: rstype.I64, Kind: scope.SymVariable}); err != nil {
		t.Fatal(err)
	}
	sawRef := false
	for i := 0; i < 500 && !sawRef; i++ {
		typ, err := m.ChooseType(&ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rt, ok := typ.(*rstype.RefType); ok {
			sawRef = true
			if !rt.Inner.Equal(rstype.I64) {
				t.Errorf("offered %s, want &i64 over the only variable", rt.Rust())
			}
		}
	}
	if !sawRef {
		t.Error("500 draws never offered a reference over the immutable variable")
	}
}
