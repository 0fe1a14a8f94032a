package ast

import "github.com/rustsynth/rustsynth/internal/rstype"

// NodeKind is the enumerated tag attached to every node at
// construction time. It doubles as the statistics key, so no runtime
// type inspection is ever needed to classify a node.
type NodeKind int

const (
	KindStructItem NodeKind = iota
	KindEnumItem
	KindFuncItem

	KindLetStmt
	KindAssignStmt
	KindExprStmt
	KindIfStmt
	KindPrintStmt

	KindIntLit
	KindBoolLit
	KindCharLit
	KindStrLit
	KindVarRef
	KindUnaryExpr
	KindBinaryExpr
	KindCastExpr
	KindCallExpr
	KindIfExpr
	KindBlockExpr
	KindTupleExpr
	KindArrayExpr
	KindIndexExpr
	KindTupleIndexExpr
	KindFieldAccessExpr
	KindStructExpr
	KindEnumExpr
	KindOptionExpr
	KindResultExpr
	KindBoxExpr
	KindDerefExpr
	KindRefExpr
	KindUnwrapExpr
	KindMatchExpr
)

// String returns the statistics tag for the kind.
func (k NodeKind) String() string {
	switch k {
	case KindStructItem:
		return "StructItem"
	case KindEnumItem:
		return "EnumItem"
	case KindFuncItem:
		return "FuncItem"
	case KindLetStmt:
		return "LetStmt"
	case KindAssignStmt:
		return "AssignStmt"
	case KindExprStmt:
		return "ExprStmt"
	case KindIfStmt:
		return "IfStmt"
	case KindPrintStmt:
		return "PrintStmt"
	case KindIntLit:
		return "IntLit"
	case KindBoolLit:
		return "BoolLit"
	case KindCharLit:
		return "CharLit"
	case KindStrLit:
		return "StrLit"
	case KindVarRef:
		return "VarRef"
	case KindUnaryExpr:
		return "UnaryExpr"
	case KindBinaryExpr:
		return "BinaryExpr"
	case KindCastExpr:
		return "CastExpr"
	case KindCallExpr:
		return "CallExpr"
	case KindIfExpr:
		return "IfExpr"
	case KindBlockExpr:
		return "BlockExpr"
	case KindTupleExpr:
		return "TupleExpr"
	case KindArrayExpr:
		return "ArrayExpr"
	case KindIndexExpr:
		return "IndexExpr"
	case KindTupleIndexExpr:
		return "TupleIndexExpr"
	case KindFieldAccessExpr:
		return "FieldAccessExpr"
	case KindStructExpr:
		return "StructExpr"
	case KindEnumExpr:
		return "EnumExpr"
	case KindOptionExpr:
		return "OptionExpr"
	case KindResultExpr:
		return "ResultExpr"
	case KindBoxExpr:
		return "BoxExpr"
	case KindDerefExpr:
		return "DerefExpr"
	case KindRefExpr:
		return "RefExpr"
	case KindUnwrapExpr:
		return "UnwrapExpr"
	case KindMatchExpr:
		return "MatchExpr"
	default:
		return "Unknown"
	}
}

// Node is the base interface for all AST nodes.
type Node interface {
	Kind() NodeKind
}

// Item is a top-level declaration.
type Item interface {
	Node
	itemNode()
}

// Stmt is a statement inside a function body.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression carrying the static type it was generated to
// satisfy. A node's type always equals the type its parent requested.
type Expr interface {
	Node
	Type() rstype.Type
	exprNode()
}

// Param is a function parameter or an external program parameter.
type Param struct {
	Name string
	Type rstype.Type
}

// Program is an ordered sequence of top-level items plus the entry
// function and the external parameters its body referenced freely.
type Program struct {
	Items  []Item
	Entry  *FuncItem
	Params []Param
	Seed   uint64
}

// --- Items ---

// StructItem declares a user-defined struct.
type StructItem struct {
	Decl *rstype.StructType
}

func (s *StructItem) Kind() NodeKind { return KindStructItem }
func (s *StructItem) itemNode()      {}

// EnumItem declares a user-defined enum.
type EnumItem struct {
	Decl *rstype.EnumType
}

func (e *EnumItem) Kind() NodeKind { return KindEnumItem }
func (e *EnumItem) itemNode()      {}

// FuncItem declares a function. The entry function's Return is nil.
type FuncItem struct {
	Name    string
	Params  []Param
	Return  rstype.Type
	Body    *BlockExpr
	IsEntry bool
}

func (f *FuncItem) Kind() NodeKind { return KindFuncItem }
func (f *FuncItem) itemNode()      {}

// --- Statements ---

// LetStmt binds a new local variable.
type LetStmt struct {
	Name    string
	Mutable bool
	VarType rstype.Type
	Value   Expr
}

func (l *LetStmt) Kind() NodeKind { return KindLetStmt }
func (l *LetStmt) stmtNode()      {}

// AssignStmt reassigns a mutable local variable.
type AssignStmt struct {
	Name    string
	VarType rstype.Type
	Value   Expr
}

func (a *AssignStmt) Kind() NodeKind { return KindAssignStmt }
func (a *AssignStmt) stmtNode()      {}

// ExprStmt evaluates an expression for effect.
type ExprStmt struct {
	Value Expr
}

func (e *ExprStmt) Kind() NodeKind { return KindExprStmt }
func (e *ExprStmt) stmtNode()      {}

// IfStmt is an if in statement position; branches produce no value.
type IfStmt struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
}

func (i *IfStmt) Kind() NodeKind { return KindIfStmt }
func (i *IfStmt) stmtNode()      {}

// PrintStmt emits a println! of its arguments; the entry function
// ends with one so generated programs have observable output.
type PrintStmt struct {
	Args []Expr
}

func (p *PrintStmt) Kind() NodeKind { return KindPrintStmt }
func (p *PrintStmt) stmtNode()      {}

// --- Expressions ---

// IntLit is an integer literal; Val is decimal text so extended
// 128-bit values never pass through a native Go integer.
type IntLit struct {
	Val     string
	IntType *rstype.IntType
}

func (e *IntLit) Kind() NodeKind    { return KindIntLit }
func (e *IntLit) Type() rstype.Type { return e.IntType }
func (e *IntLit) exprNode()         {}

// BoolLit is true or false.
type BoolLit struct {
	Val bool
}

func (e *BoolLit) Kind() NodeKind    { return KindBoolLit }
func (e *BoolLit) Type() rstype.Type { return rstype.Bool }
func (e *BoolLit) exprNode()         {}

// CharLit is a character literal.
type CharLit struct {
	Val rune
}

func (e *CharLit) Kind() NodeKind    { return KindCharLit }
func (e *CharLit) Type() rstype.Type { return rstype.Char }
func (e *CharLit) exprNode()         {}

// StrLit is an owned string literal.
type StrLit struct {
	Val string
}

func (e *StrLit) Kind() NodeKind    { return KindStrLit }
func (e *StrLit) Type() rstype.Type { return rstype.Str }
func (e *StrLit) exprNode()         {}

// VarRef reads a variable. External marks a free variable of the
// entry function, i.e. a program parameter supplied from outside.
type VarRef struct {
	Name     string
	VarType  rstype.Type
	External bool
}

func (e *VarRef) Kind() NodeKind    { return KindVarRef }
func (e *VarRef) Type() rstype.Type { return e.VarType }
func (e *VarRef) exprNode()         {}

// UnaryOp enumerates unary operators.
type UnaryOp int

const (
	OpNeg UnaryOp = iota
	OpNot
)

// UnaryExpr applies a unary operator. Safe marks the overflow-proof
// rendering chosen by the reconditioner.
type UnaryExpr struct {
	Op      UnaryOp
	Operand Expr
	ResType rstype.Type
	Safe    bool
}

func (e *UnaryExpr) Kind() NodeKind    { return KindUnaryExpr }
func (e *UnaryExpr) Type() rstype.Type { return e.ResType }
func (e *UnaryExpr) exprNode()         {}

// BinaryOp enumerates binary operators.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpRem
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
)

// Arith reports whether the operator is integer arithmetic.
func (op BinaryOp) Arith() bool { return op <= OpRem }

// Comparison reports whether the operator yields bool from two
// operands of one comparable type.
func (op BinaryOp) Comparison() bool { return op >= OpEq && op <= OpGe }

// Rust returns the operator's surface syntax.
func (op BinaryOp) Rust() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpRem:
		return "%"
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	default:
		return "?"
	}
}

// BinaryExpr applies a binary operator; both operands share one type.
type BinaryExpr struct {
	Op      BinaryOp
	Left    Expr
	Right   Expr
	ResType rstype.Type
	Safe    bool
}

func (e *BinaryExpr) Kind() NodeKind    { return KindBinaryExpr }
func (e *BinaryExpr) Type() rstype.Type { return e.ResType }
func (e *BinaryExpr) exprNode()         {}

// CastExpr converts between integer types. Safe marks the
// lossless-on-failure rendering chosen by the reconditioner.
type CastExpr struct {
	Value Expr
	To    *rstype.IntType
	Safe  bool
}

func (e *CastExpr) Kind() NodeKind    { return KindCastExpr }
func (e *CastExpr) Type() rstype.Type { return e.To }
func (e *CastExpr) exprNode()         {}

// CallExpr calls a previously declared helper function by name.
type CallExpr struct {
	Callee  string
	Args    []Expr
	ResType rstype.Type
}

func (e *CallExpr) Kind() NodeKind    { return KindCallExpr }
func (e *CallExpr) Type() rstype.Type { return e.ResType }
func (e *CallExpr) exprNode()         {}

// IfExpr is a conditional in expression position; both arms carry the
// same type as the node itself.
type IfExpr struct {
	Cond    Expr
	Then    *BlockExpr
	Else    *BlockExpr
	ResType rstype.Type
}

func (e *IfExpr) Kind() NodeKind    { return KindIfExpr }
func (e *IfExpr) Type() rstype.Type { return e.ResType }
func (e *IfExpr) exprNode()         {}

// BlockExpr is { stmts; value }. Value is nil for unit blocks such as
// the entry function body or if-statement branches.
type BlockExpr struct {
	Stmts   []Stmt
	Value   Expr
	ResType rstype.Type
}

func (e *BlockExpr) Kind() NodeKind    { return KindBlockExpr }
func (e *BlockExpr) Type() rstype.Type { return e.ResType }
func (e *BlockExpr) exprNode()         {}

// TupleExpr builds a tuple value.
type TupleExpr struct {
	Elems   []Expr
	ResType *rstype.TupleType
}

func (e *TupleExpr) Kind() NodeKind    { return KindTupleExpr }
func (e *TupleExpr) Type() rstype.Type { return e.ResType }
func (e *TupleExpr) exprNode()         {}

// ArrayExpr builds a fixed-length array value.
type ArrayExpr struct {
	Elems   []Expr
	ResType *rstype.ArrayType
}

func (e *ArrayExpr) Kind() NodeKind    { return KindArrayExpr }
func (e *ArrayExpr) Type() rstype.Type { return e.ResType }
func (e *ArrayExpr) exprNode()         {}

// IndexExpr reads one element of a fixed-length array. Safe marks the
// wrapped-index rendering chosen by the reconditioner.
type IndexExpr struct {
	Arr     Expr
	Index   Expr
	ResType rstype.Type
	Safe    bool
}

func (e *IndexExpr) Kind() NodeKind    { return KindIndexExpr }
func (e *IndexExpr) Type() rstype.Type { return e.ResType }
func (e *IndexExpr) exprNode()         {}

// TupleIndexExpr selects one element of a tuple value. Index is fixed
// at generation time and always in range, so no guard is needed.
type TupleIndexExpr struct {
	Tuple   Expr
	Index   int
	ResType rstype.Type
}

func (e *TupleIndexExpr) Kind() NodeKind    { return KindTupleIndexExpr }
func (e *TupleIndexExpr) Type() rstype.Type { return e.ResType }
func (e *TupleIndexExpr) exprNode()         {}

// FieldAccessExpr reads one named field of a struct value.
type FieldAccessExpr struct {
	Source  Expr
	Field   string
	ResType rstype.Type
}

func (e *FieldAccessExpr) Kind() NodeKind    { return KindFieldAccessExpr }
func (e *FieldAccessExpr) Type() rstype.Type { return e.ResType }
func (e *FieldAccessExpr) exprNode()         {}

// StructExpr builds a struct value; Fields align with Decl.Fields.
type StructExpr struct {
	Decl   *rstype.StructType
	Fields []Expr
}

func (e *StructExpr) Kind() NodeKind    { return KindStructExpr }
func (e *StructExpr) Type() rstype.Type { return e.Decl }
func (e *StructExpr) exprNode()         {}

// EnumExpr builds one variant of a user-defined enum; Fields align
// with the variant's declared fields.
type EnumExpr struct {
	Decl       *rstype.EnumType
	VariantIdx int
	Fields     []Expr
}

func (e *EnumExpr) Kind() NodeKind    { return KindEnumExpr }
func (e *EnumExpr) Type() rstype.Type { return e.Decl }
func (e *EnumExpr) exprNode()         {}

// OptionExpr builds Some(inner) or None.
type OptionExpr struct {
	Inner   Expr // nil for None
	ResType *rstype.OptionType
}

func (e *OptionExpr) Kind() NodeKind    { return KindOptionExpr }
func (e *OptionExpr) Type() rstype.Type { return e.ResType }
func (e *OptionExpr) exprNode()         {}

// ResultExpr builds Ok(inner) or Err(inner).
type ResultExpr struct {
	IsOk    bool
	Inner   Expr
	ResType *rstype.ResultType
}

func (e *ResultExpr) Kind() NodeKind    { return KindResultExpr }
func (e *ResultExpr) Type() rstype.Type { return e.ResType }
func (e *ResultExpr) exprNode()         {}

// BoxExpr builds Box::new(inner).
type BoxExpr struct {
	Inner   Expr
	ResType *rstype.BoxType
}

func (e *BoxExpr) Kind() NodeKind    { return KindBoxExpr }
func (e *BoxExpr) Type() rstype.Type { return e.ResType }
func (e *BoxExpr) exprNode()         {}

// DerefExpr dereferences a Box to its inner value.
type DerefExpr struct {
	Box     Expr
	ResType rstype.Type
}

func (e *DerefExpr) Kind() NodeKind    { return KindDerefExpr }
func (e *DerefExpr) Type() rstype.Type { return e.ResType }
func (e *DerefExpr) exprNode()         {}

// RefExpr takes an immutable reference to its operand.
type RefExpr struct {
	Inner   Expr
	ResType *rstype.RefType
}

func (e *RefExpr) Kind() NodeKind    { return KindRefExpr }
func (e *RefExpr) Type() rstype.Type { return e.ResType }
func (e *RefExpr) exprNode()         {}

// UnwrapExpr extracts the payload of an Option or the Ok payload of a
// Result. Safe marks the guarded rendering chosen by the
// reconditioner.
type UnwrapExpr struct {
	Source  Expr
	ResType rstype.Type
	Safe    bool
}

func (e *UnwrapExpr) Kind() NodeKind    { return KindUnwrapExpr }
func (e *UnwrapExpr) Type() rstype.Type { return e.ResType }
func (e *UnwrapExpr) exprNode()         {}

// MatchPattern destructures one enum variant. For Option and Result
// scrutinees Builtin is set and VariantName is Some/None/Ok/Err.
type MatchPattern struct {
	Builtin      bool
	VariantName  string
	FieldNames   []string // declared field names for named-field variants
	Bindings     []string
	BindingTypes []rstype.Type
	Wildcard     bool
}

// MatchArm pairs a pattern with the expression it evaluates to.
type MatchArm struct {
	Pattern *MatchPattern
	Body    Expr
}

// MatchExpr matches over a user enum, Option, or Result value; arms
// cover every variant.
type MatchExpr struct {
	Scrutinee Expr
	Arms      []*MatchArm
	ResType   rstype.Type
}

func (e *MatchExpr) Kind() NodeKind    { return KindMatchExpr }
func (e *MatchExpr) Type() rstype.Type { return e.ResType }
func (e *MatchExpr) exprNode()         {}
