package selection

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/rustsynth/rustsynth/internal/ast"
	"github.com/rustsynth/rustsynth/internal/rstype"
)

// ErrDeadEnd is the sole recoverable condition in generation: a
// decision point at which no legal production exists. The attempt-level
// retry loop catches exactly this error and discards the attempt.
var ErrDeadEnd = errors.New("dead end: no legal production at decision point")

// Strategy is the closed set of selection policies.
type Strategy int

const (
	Uniform Strategy = iota
	Swarm
	Optimal
	Aggressive
)

// String returns the strategy's CLI name.
func (s Strategy) String() string {
	switch s {
	case Uniform:
		return "uniform"
	case Swarm:
		return "swarm"
	case Optimal:
		return "optimal"
	case Aggressive:
		return "aggressive"
	default:
		return "unknown"
	}
}

// Strategies lists every strategy in a stable order.
var Strategies = []Strategy{Uniform, Swarm, Optimal, Aggressive}

// Parse resolves a CLI strategy name.
func Parse(name string) (Strategy, error) {
	for _, s := range Strategies {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown strategy %q", name)
}

// maskable lists the kinds a swarm configuration may disable. Literal
// kinds, variable references, and the let/expr statement forms stay
// enabled so a swarm attempt always has at least one legal production
// for every primitive type.
var maskable = []ast.NodeKind{
	ast.KindAssignStmt,
	ast.KindIfStmt,
	ast.KindUnaryExpr,
	ast.KindBinaryExpr,
	ast.KindCastExpr,
	ast.KindCallExpr,
	ast.KindIfExpr,
	ast.KindBlockExpr,
	ast.KindTupleExpr,
	ast.KindArrayExpr,
	ast.KindIndexExpr,
	ast.KindTupleIndexExpr,
	ast.KindFieldAccessExpr,
	ast.KindStructExpr,
	ast.KindEnumExpr,
	ast.KindOptionExpr,
	ast.KindResultExpr,
	ast.KindBoxExpr,
	ast.KindDerefExpr,
	ast.KindRefExpr,
	ast.KindUnwrapExpr,
	ast.KindMatchExpr,
}

// Manager answers "which legal production next?" at every decision
// point. The four behaviors share one legality computation and differ
// only in policy, dispatched by exhaustive switch on the strategy tag.
type Manager struct {
	strategy Strategy
	rng      *rand.Rand
	disabled map[ast.NodeKind]bool // swarm feature configuration
	counts   map[ast.NodeKind]int  // per-attempt choice tally
	target   ast.NodeKind          // aggressive
}

// NewManager builds a manager for one generation attempt. A swarm
// manager samples its feature configuration here and keeps it for the
// whole attempt.
func NewManager(strategy Strategy, rng *rand.Rand) *Manager {
	m := &Manager{
		strategy: strategy,
		rng:      rng,
		counts:   make(map[ast.NodeKind]int),
	}
	if strategy == Swarm {
		m.disabled = make(map[ast.NodeKind]bool)
		for _, k := range maskable {
			if rng.Intn(2) == 0 {
				m.disabled[k] = true
			}
		}
	}
	if strategy == Aggressive {
		m.target = maskable[rng.Intn(len(maskable))]
	}
	return m
}

// NewAggressive builds a manager that forces the targeted kind
// whenever it is legal.
func NewAggressive(rng *rand.Rand, target ast.NodeKind) *Manager {
	m := NewManager(Aggressive, rng)
	m.target = target
	return m
}

// Strategy returns the policy tag.
func (m *Manager) Strategy() Strategy { return m.strategy }

// Disabled reports whether a swarm configuration masked off the kind.
func (m *Manager) Disabled(k ast.NodeKind) bool { return m.disabled[k] }

// DisabledKinds returns a copy of the swarm mask, nil for other
// strategies.
func (m *Manager) DisabledKinds() map[ast.NodeKind]bool {
	if m.disabled == nil {
		return nil
	}
	out := make(map[ast.NodeKind]bool, len(m.disabled))
	for k, v := range m.disabled {
		out[k] = v
	}
	return out
}

// Counts returns the per-kind choice tally so far this attempt.
func (m *Manager) Counts() map[ast.NodeKind]int {
	out := make(map[ast.NodeKind]int, len(m.counts))
	for k, v := range m.counts {
		out[k] = v
	}
	return out
}

// ChooseStmtKind picks the next statement production, or ErrDeadEnd.
func (m *Manager) ChooseStmtKind(ctx *Context) (ast.NodeKind, error) {
	return m.pick(legalStmtKinds(ctx))
}

// ChooseExprKind picks the next expression production for expected
// type t, or ErrDeadEnd. The decision point sees t as ctx.Expected.
func (m *Manager) ChooseExprKind(ctx *Context, t rstype.Type) (ast.NodeKind, error) {
	c := *ctx
	c.Expected = t
	return m.pick(legalExprKinds(&c))
}

// pick applies the strategy policy to a legal set. Legality never
// varies with the strategy; only the choice among legal kinds does.
func (m *Manager) pick(legal []ast.NodeKind) (ast.NodeKind, error) {
	if len(legal) == 0 {
		return 0, ErrDeadEnd
	}

	var chosen ast.NodeKind
	switch m.strategy {
	case Uniform:
		chosen = legal[m.rng.Intn(len(legal))]

	case Swarm:
		var enabled []ast.NodeKind
		for _, k := range legal {
			if !m.disabled[k] {
				enabled = append(enabled, k)
			}
		}
		if len(enabled) == 0 {
			return 0, ErrDeadEnd
		}
		chosen = enabled[m.rng.Intn(len(enabled))]

	case Optimal:
		best := m.counts[legal[0]]
		for _, k := range legal[1:] {
			if m.counts[k] < best {
				best = m.counts[k]
			}
		}
		var ties []ast.NodeKind
		for _, k := range legal {
			if m.counts[k] == best {
				ties = append(ties, k)
			}
		}
		chosen = ties[m.rng.Intn(len(ties))]

	case Aggressive:
		chosen = legal[m.rng.Intn(len(legal))]
		for _, k := range legal {
			if k == m.target {
				chosen = k
				break
			}
		}

	default:
		panic(fmt.Sprintf("selection: unknown strategy %d", m.strategy))
	}

	m.counts[chosen]++
	return chosen, nil
}

// ChooseType picks a type whose value can be built within the
// remaining depth, or ErrDeadEnd. The same per-kind policy applies,
// keyed by the type's constructor kind.
func (m *Manager) ChooseType(ctx *Context) (rstype.Type, error) {
	d := ctx.Depth - 1 // the value is built one level down
	if d < 0 {
		return nil, ErrDeadEnd
	}

	cands := m.candidateTypes(ctx, d)
	if len(cands) == 0 {
		return nil, ErrDeadEnd
	}

	kinds := make([]ast.NodeKind, len(cands))
	for i, t := range cands {
		kinds[i] = familyOf(t)
	}

	var chosen int
	switch m.strategy {
	case Uniform, Aggressive:
		chosen = m.rng.Intn(len(cands))
		if m.strategy == Aggressive {
			for i, k := range kinds {
				if k == m.target {
					chosen = i
					break
				}
			}
		}

	case Swarm:
		var enabled []int
		for i, k := range kinds {
			if !m.disabled[k] {
				enabled = append(enabled, i)
			}
		}
		if len(enabled) == 0 {
			return nil, ErrDeadEnd
		}
		chosen = enabled[m.rng.Intn(len(enabled))]

	case Optimal:
		best := m.counts[kinds[0]]
		for _, k := range kinds[1:] {
			if m.counts[k] < best {
				best = m.counts[k]
			}
		}
		var ties []int
		for i, k := range kinds {
			if m.counts[k] == best {
				ties = append(ties, i)
			}
		}
		chosen = ties[m.rng.Intn(len(ties))]

	default:
		panic(fmt.Sprintf("selection: unknown strategy %d", m.strategy))
	}

	m.counts[kinds[chosen]]++
	return cands[chosen], nil
}

// candidateTypes assembles the constructible type choices: every
// primitive, the declared aggregates that still fit the depth budget,
// and a few freshly synthesized composite shapes.
func (m *Manager) candidateTypes(ctx *Context, depth int) []rstype.Type {
	cands := make([]rstype.Type, 0, len(rstype.Primitives)+8)
	cands = append(cands, rstype.Primitives...)
	for _, st := range ctx.Structs {
		if rstype.Constructible(st, depth) {
			cands = append(cands, st)
		}
	}
	for _, en := range ctx.Enums {
		if rstype.Constructible(en, depth) {
			cands = append(cands, en)
		}
	}
	if depth >= 1 {
		for i := 0; i < 3; i++ {
			if t := m.randomComposite(depth, 2); t != nil {
				cands = append(cands, t)
			}
		}
		// Reference types are offered only over in-scope immutable
		// variables; the borrow target must already exist.
		if ctx.Scope != nil {
			count := 0
			for _, sym := range ctx.Scope.Visible() {
				if sym.Mutable || containsRefType(sym.Type) {
					continue
				}
				cands = append(cands, &rstype.RefType{Inner: sym.Type})
				count++
				if count == 2 {
					break
				}
			}
		}
	}
	return cands
}

// randomComposite synthesizes one tuple/array/box/option/result shape
// with components nested at most maxNest deep.
func (m *Manager) randomComposite(depth, maxNest int) rstype.Type {
	component := func() rstype.Type {
		if maxNest > 0 && depth >= 2 && m.rng.Intn(3) == 0 {
			if t := m.randomComposite(depth-1, maxNest-1); t != nil {
				return t
			}
		}
		return rstype.Primitives[m.rng.Intn(len(rstype.Primitives))]
	}

	switch m.rng.Intn(5) {
	case 0:
		n := 2 + m.rng.Intn(2)
		elems := make([]rstype.Type, n)
		for i := range elems {
			elems[i] = component()
		}
		return &rstype.TupleType{Elems: elems}
	case 1:
		return &rstype.ArrayType{Elem: component(), Len: 1 + m.rng.Intn(4)}
	case 2:
		return &rstype.BoxType{Inner: component()}
	case 3:
		return &rstype.OptionType{Inner: component()}
	default:
		return &rstype.ResultType{Ok: component(), Err: component()}
	}
}

func containsRefType(t rstype.Type) bool {
	switch ty := t.(type) {
	case *rstype.RefType:
		return true
	case *rstype.ArrayType:
		return containsRefType(ty.Elem)
	case *rstype.TupleType:
		for _, e := range ty.Elems {
			if containsRefType(e) {
				return true
			}
		}
	case *rstype.BoxType:
		return containsRefType(ty.Inner)
	case *rstype.OptionType:
		return containsRefType(ty.Inner)
	case *rstype.ResultType:
		return containsRefType(ty.Ok) || containsRefType(ty.Err)
	}
	return false
}
