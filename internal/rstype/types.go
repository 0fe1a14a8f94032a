package rstype

import (
	"fmt"
	"strings"
)

// Type is the closed set of Rust types the generator can produce.
// Equality is structural; named aggregates compare by name and shape.
type Type interface {
	// Rust returns the Rust source syntax for the type.
	Rust() string
	// Equal reports structural equality with another type.
	Equal(other Type) bool
	typeNode()
}

// IntType is a fixed-width or platform-width integer type.
type IntType struct {
	Bits     int // 8, 16, 32, 64, 128; 0 for platform-width isize/usize
	Unsigned bool
}

func (t *IntType) typeNode() {}

func (t *IntType) Rust() string {
	prefix := "i"
	if t.Unsigned {
		prefix = "u"
	}
	if t.Bits == 0 {
		return prefix + "size"
	}
	return fmt.Sprintf("%s%d", prefix, t.Bits)
}

func (t *IntType) Equal(other Type) bool {
	o, ok := other.(*IntType)
	return ok && o.Bits == t.Bits && o.Unsigned == t.Unsigned
}

// Width returns the effective bit width given the configured
// platform integer width (32 or 64) for isize/usize.
func (t *IntType) Width(platformBits int) int {
	if t.Bits == 0 {
		return platformBits
	}
	return t.Bits
}

// BoolType is Rust bool.
type BoolType struct{}

func (t *BoolType) typeNode()    {}
func (t *BoolType) Rust() string { return "bool" }
func (t *BoolType) Equal(other Type) bool {
	_, ok := other.(*BoolType)
	return ok
}

// CharType is Rust char.
type CharType struct{}

func (t *CharType) typeNode()    {}
func (t *CharType) Rust() string { return "char" }
func (t *CharType) Equal(other Type) bool {
	_, ok := other.(*CharType)
	return ok
}

// StrType is an owned Rust String.
type StrType struct{}

func (t *StrType) typeNode()    {}
func (t *StrType) Rust() string { return "String" }
func (t *StrType) Equal(other Type) bool {
	_, ok := other.(*StrType)
	return ok
}

// ArrayType is a fixed-length array [T; N].
type ArrayType struct {
	Elem Type
	Len  int
}

func (t *ArrayType) typeNode()    {}
func (t *ArrayType) Rust() string { return fmt.Sprintf("[%s; %d]", t.Elem.Rust(), t.Len) }
func (t *ArrayType) Equal(other Type) bool {
	o, ok := other.(*ArrayType)
	return ok && o.Len == t.Len && t.Elem.Equal(o.Elem)
}

// TupleType is (T0, T1, ...); at least two elements.
type TupleType struct {
	Elems []Type
}

func (t *TupleType) typeNode() {}

func (t *TupleType) Rust() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.Rust()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (t *TupleType) Equal(other Type) bool {
	o, ok := other.(*TupleType)
	if !ok || len(o.Elems) != len(t.Elems) {
		return false
	}
	for i := range t.Elems {
		if !t.Elems[i].Equal(o.Elems[i]) {
			return false
		}
	}
	return true
}

// BoxType is an owning Box<T>.
type BoxType struct {
	Inner Type
}

func (t *BoxType) typeNode()    {}
func (t *BoxType) Rust() string { return "Box<" + t.Inner.Rust() + ">" }
func (t *BoxType) Equal(other Type) bool {
	o, ok := other.(*BoxType)
	return ok && t.Inner.Equal(o.Inner)
}

// OptionType is Option<T>.
type OptionType struct {
	Inner Type
}

func (t *OptionType) typeNode()    {}
func (t *OptionType) Rust() string { return "Option<" + t.Inner.Rust() + ">" }
func (t *OptionType) Equal(other Type) bool {
	o, ok := other.(*OptionType)
	return ok && t.Inner.Equal(o.Inner)
}

// ResultType is Result<T, E>.
type ResultType struct {
	Ok  Type
	Err Type
}

func (t *ResultType) typeNode() {}
func (t *ResultType) Rust() string {
	return "Result<" + t.Ok.Rust() + ", " + t.Err.Rust() + ">"
}
func (t *ResultType) Equal(other Type) bool {
	o, ok := other.(*ResultType)
	return ok && t.Ok.Equal(o.Ok) && t.Err.Equal(o.Err)
}

// RefType is an immutable reference &T.
type RefType struct {
	Inner Type
}

func (t *RefType) typeNode()    {}
func (t *RefType) Rust() string { return "&" + t.Inner.Rust() }
func (t *RefType) Equal(other Type) bool {
	o, ok := other.(*RefType)
	return ok && t.Inner.Equal(o.Inner)
}

// Field is a named struct or enum-variant field.
type Field struct {
	Name string
	Type Type
}

// StructType is a user-defined struct declared earlier in the program.
type StructType struct {
	Name   string
	Fields []Field
}

func (t *StructType) typeNode()    {}
func (t *StructType) Rust() string { return t.Name }

func (t *StructType) Equal(other Type) bool {
	o, ok := other.(*StructType)
	if !ok || o.Name != t.Name || len(o.Fields) != len(t.Fields) {
		return false
	}
	for i := range t.Fields {
		if t.Fields[i].Name != o.Fields[i].Name || !t.Fields[i].Type.Equal(o.Fields[i].Type) {
			return false
		}
	}
	return true
}

// Variant is one enum variant; Fields is empty for unit variants.
type Variant struct {
	Name   string
	Fields []Field
}

// EnumType is a user-defined enum declared earlier in the program.
type EnumType struct {
	Name     string
	Variants []Variant
}

func (t *EnumType) typeNode()    {}
func (t *EnumType) Rust() string { return t.Name }

func (t *EnumType) Equal(other Type) bool {
	o, ok := other.(*EnumType)
	if !ok || o.Name != t.Name || len(o.Variants) != len(t.Variants) {
		return false
	}
	for i := range t.Variants {
		if t.Variants[i].Name != o.Variants[i].Name ||
			len(t.Variants[i].Fields) != len(o.Variants[i].Fields) {
			return false
		}
		for j := range t.Variants[i].Fields {
			if !t.Variants[i].Fields[j].Type.Equal(o.Variants[i].Fields[j].Type) {
				return false
			}
		}
	}
	return true
}

// Builtin singletons for the primitive types.
var (
	I8    = &IntType{Bits: 8}
	I16   = &IntType{Bits: 16}
	I32   = &IntType{Bits: 32}
	I64   = &IntType{Bits: 64}
	I128  = &IntType{Bits: 128}
	ISize = &IntType{Bits: 0}
	U8    = &IntType{Bits: 8, Unsigned: true}
	U16   = &IntType{Bits: 16, Unsigned: true}
	U32   = &IntType{Bits: 32, Unsigned: true}
	U64   = &IntType{Bits: 64, Unsigned: true}
	U128  = &IntType{Bits: 128, Unsigned: true}
	USize = &IntType{Bits: 0, Unsigned: true}
	Bool  = &BoolType{}
	Char  = &CharType{}
	Str   = &StrType{}
)

// Integers lists every integer type in a stable order.
var Integers = []*IntType{I8, I16, I32, I64, I128, ISize, U8, U16, U32, U64, U128, USize}

// Primitives lists every scalar type in a stable order.
var Primitives = []Type{
	I8, I16, I32, I64, I128, ISize,
	U8, U16, U32, U64, U128, USize,
	Bool, Char, Str,
}

// IsInteger reports whether t is one of the integer types.
func IsInteger(t Type) bool {
	_, ok := t.(*IntType)
	return ok
}

// Is128Bit reports whether t is an extended-width integer.
func Is128Bit(t Type) bool {
	it, ok := t.(*IntType)
	return ok && it.Bits == 128
}

// IsPrimitive reports whether t has no component types.
func IsPrimitive(t Type) bool {
	switch t.(type) {
	case *IntType, *BoolType, *CharType, *StrType:
		return true
	}
	return false
}

// Constructible reports whether a value of t can be built within
// depth further recursion levels. Primitives need none; a composite
// needs one level plus whatever its components need; an enum needs
// only its cheapest variant.
func Constructible(t Type, depth int) bool {
	switch ty := t.(type) {
	case *IntType, *BoolType, *CharType, *StrType:
		return depth >= 0
	case *ArrayType:
		return depth >= 1 && Constructible(ty.Elem, depth-1)
	case *TupleType:
		if depth < 1 {
			return false
		}
		for _, e := range ty.Elems {
			if !Constructible(e, depth-1) {
				return false
			}
		}
		return true
	case *BoxType:
		return depth >= 1 && Constructible(ty.Inner, depth-1)
	case *OptionType:
		// None is always available.
		return depth >= 1
	case *ResultType:
		return depth >= 1 && (Constructible(ty.Ok, depth-1) || Constructible(ty.Err, depth-1))
	case *RefType:
		return depth >= 1 && Constructible(ty.Inner, depth-1)
	case *StructType:
		if depth < 1 {
			return false
		}
		for _, f := range ty.Fields {
			if !Constructible(f.Type, depth-1) {
				return false
			}
		}
		return true
	case *EnumType:
		if depth < 1 {
			return false
		}
		for _, v := range ty.Variants {
			ok := true
			for _, f := range v.Fields {
				if !Constructible(f.Type, depth-1) {
					ok = false
					break
				}
			}
			if ok {
				return true
			}
		}
		return false
	default:
		panic(fmt.Sprintf("rstype: unknown type %T", t))
	}
}

// CheapestVariant returns the index of the first variant of e that is
// constructible within depth levels, or -1 when none is.
func CheapestVariant(e *EnumType, depth int) int {
	for i, v := range e.Variants {
		ok := true
		for _, f := range v.Fields {
			if !Constructible(f.Type, depth-1) {
				ok = false
				break
			}
		}
		if ok {
			return i
		}
	}
	return -1
}
