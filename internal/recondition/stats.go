package recondition

import "github.com/rustsynth/rustsynth/internal/ast"

// Stats is the per-attempt statistics record: an occurrence count per
// node-kind tag across the whole tree, a usage count per referenced
// identifier, and the mean use count over the referenced identifiers.
type Stats struct {
	NodeCounts  map[string]int `json:"nodeCounts"`
	IdentUses   map[string]int `json:"identUses"`
	AvgIdentUse float64        `json:"avgIdentUse"`
}

// Collect tallies statistics over the whole program tree. The node
// kind tag assigned at construction is the key; no type inspection.
func Collect(prog *ast.Program) *Stats {
	st := &Stats{
		NodeCounts: make(map[string]int),
		IdentUses:  make(map[string]int),
	}
	ast.WalkProgram(prog, func(n ast.Node) {
		st.NodeCounts[n.Kind().String()]++
		switch node := n.(type) {
		case *ast.VarRef:
			st.IdentUses[node.Name]++
		case *ast.CallExpr:
			st.IdentUses[node.Callee]++
		case *ast.AssignStmt:
			st.IdentUses[node.Name]++
		}
	})
	if len(st.IdentUses) > 0 {
		total := 0
		for _, c := range st.IdentUses {
			total += c
		}
		st.AvgIdentUse = float64(total) / float64(len(st.IdentUses))
	}
	return st
}
