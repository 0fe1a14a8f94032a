package scope

import (
	"fmt"

	"github.com/rustsynth/rustsynth/internal/rstype"
)

// SymbolKind represents the kind of symbol
type SymbolKind int

const (
	SymVariable SymbolKind = iota
	SymParam
	SymExternal
	SymBinding
)

// String returns the string representation of the symbol kind
func (sk SymbolKind) String() string {
	switch sk {
	case SymVariable:
		return "variable"
	case SymParam:
		return "parameter"
	case SymExternal:
		return "external parameter"
	case SymBinding:
		return "match binding"
	default:
		return "unknown"
	}
}

// Symbol represents a symbol in the symbol table
type Symbol struct {
	Name    string
	Type    rstype.Type
	Mutable bool
	Kind    SymbolKind
}

// Scope represents a lexical scope with a symbol table. Symbols keep
// their insertion order so iteration is deterministic across runs.
type Scope struct {
	parent  *Scope
	symbols map[string]*Symbol
	order   []string
}

// New creates a new scope with an optional parent
func New(parent *Scope) *Scope {
	return &Scope{
		parent:  parent,
		symbols: make(map[string]*Symbol),
	}
}

// Parent returns the enclosing scope, nil at the top level.
func (s *Scope) Parent() *Scope { return s.parent }

// Define adds a symbol to the current scope
// Returns an error if the symbol is already defined in this scope
func (s *Scope) Define(sym *Symbol) error {
	if _, exists := s.symbols[sym.Name]; exists {
		return fmt.Errorf("symbol '%s' already defined in this scope", sym.Name)
	}
	s.symbols[sym.Name] = sym
	s.order = append(s.order, sym.Name)
	return nil
}

// Resolve looks up a symbol in the current scope and parent scopes
// Returns nil if the symbol is not found
func (s *Scope) Resolve(name string) *Symbol {
	if sym, ok := s.symbols[name]; ok {
		return sym
	}
	if s.parent != nil {
		return s.parent.Resolve(name)
	}
	return nil
}

// ResolveLocal looks up a symbol only in the current scope (not parent scopes)
func (s *Scope) ResolveLocal(name string) *Symbol {
	if sym, ok := s.symbols[name]; ok {
		return sym
	}
	return nil
}

// VarsOfType returns every visible symbol whose type structurally
// equals t, innermost scope first, in declaration order within a scope.
// Shadowed names are skipped.
func (s *Scope) VarsOfType(t rstype.Type) []*Symbol {
	var out []*Symbol
	seen := make(map[string]bool)
	for sc := s; sc != nil; sc = sc.parent {
		for _, name := range sc.order {
			if seen[name] {
				continue
			}
			seen[name] = true
			sym := sc.symbols[name]
			if sym.Type.Equal(t) {
				out = append(out, sym)
			}
		}
	}
	return out
}

// MutableVars returns every visible mutable variable, innermost scope
// first, in declaration order within a scope.
func (s *Scope) MutableVars() []*Symbol {
	var out []*Symbol
	seen := make(map[string]bool)
	for sc := s; sc != nil; sc = sc.parent {
		for _, name := range sc.order {
			if seen[name] {
				continue
			}
			seen[name] = true
			sym := sc.symbols[name]
			if sym.Mutable {
				out = append(out, sym)
			}
		}
	}
	return out
}

// Visible returns every visible symbol, innermost scope first.
func (s *Scope) Visible() []*Symbol {
	var out []*Symbol
	seen := make(map[string]bool)
	for sc := s; sc != nil; sc = sc.parent {
		for _, name := range sc.order {
			if seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, sc.symbols[name])
		}
	}
	return out
}
