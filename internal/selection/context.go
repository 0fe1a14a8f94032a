package selection

import (
	"github.com/rustsynth/rustsynth/internal/rstype"
	"github.com/rustsynth/rustsynth/internal/scope"
)

// Config carries the per-attempt settings that affect legality.
type Config struct {
	// IntWidth is the bit width of isize/usize on the target, 32 or 64.
	IntWidth int
	// FailFast selects the stricter pruning policy in the generator.
	FailFast bool
}

// FuncSig describes a previously declared helper function.
type FuncSig struct {
	Name   string
	Params []rstype.Type
	Return rstype.Type
}

// Context is the bundle available at one generation decision point:
// the current scope, the type the consumer expects (nil in statement
// position), the remaining recursion depth, and the remaining
// statement budget. It is a plain value threaded through every call;
// nothing here is process-global.
type Context struct {
	Scope         *scope.Scope
	Expected      rstype.Type
	Depth         int
	Budget        int
	AllowExternal bool
	Funcs         []FuncSig
	Structs       []*rstype.StructType
	Enums         []*rstype.EnumType
	Config        Config
}

// StructField pairs a declared struct with one of its fields.
type StructField struct {
	Decl  *rstype.StructType
	Field rstype.Field
}

// StructFieldsOfType returns every (struct, field) pair whose field
// type equals t and whose struct can still be built within the
// remaining depth, in declaration order.
func (c *Context) StructFieldsOfType(t rstype.Type) []StructField {
	var out []StructField
	for _, st := range c.Structs {
		if !rstype.Constructible(st, c.Depth-1) {
			continue
		}
		for _, f := range st.Fields {
			if f.Type.Equal(t) {
				out = append(out, StructField{Decl: st, Field: f})
			}
		}
	}
	return out
}

// FuncsReturning returns the declared helper functions whose return
// type equals t, in declaration order.
func (c *Context) FuncsReturning(t rstype.Type) []FuncSig {
	var out []FuncSig
	for _, f := range c.Funcs {
		if f.Return != nil && f.Return.Equal(t) {
			out = append(out, f)
		}
	}
	return out
}
