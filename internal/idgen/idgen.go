package idgen

import "fmt"

// Kind classifies the identifiers the allocator hands out, so emitted
// names read naturally in the generated source.
type Kind int

const (
	Var Kind = iota
	Func
	Struct
	Enum
	Field
	Param
	Binding
)

// String returns the name prefix used for the kind.
func (k Kind) String() string {
	switch k {
	case Var:
		return "var"
	case Func:
		return "fun"
	case Struct:
		return "Struct"
	case Enum:
		return "Enum"
	case Field:
		return "field"
	case Param:
		return "param"
	case Binding:
		return "bound"
	default:
		return "name"
	}
}

// Allocator produces names unique for the lifetime of one generation
// attempt. State is purely additive; construct a fresh Allocator to
// reset it.
type Allocator struct {
	counters map[Kind]int
}

// New creates an empty allocator.
func New() *Allocator {
	return &Allocator{counters: make(map[Kind]int)}
}

// Next returns a fresh name for the given kind.
func (a *Allocator) Next(kind Kind) string {
	n := a.counters[kind]
	a.counters[kind] = n + 1
	return fmt.Sprintf("%s%d", kind, n)
}
