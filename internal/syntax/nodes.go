package syntax

import (
	"svelab/internal/source"
	"svelab/internal/token"
)

// NodeKind discriminates every syntax node this package declares.
type NodeKind uint8

const (
	KindInvalid NodeKind = iota

	// Expressions.
	KindIdentifierName
	KindIntegerLiteral
	KindRealLiteral
	KindStringLiteral
	KindUnbasedUnsizedLiteral
	KindNullLiteral
	KindUnaryExpr
	KindBinaryExpr
	KindConditionalExpr
	KindCallExpr
	KindEmptyArgument
	KindMemberAccess
	KindElementSelect
	KindRangeSelect
	KindConcatenation

	// Data types.
	KindIntegerType
	KindRealType
	KindNamedType
	KindEnumType
	KindStructUnionType
	KindImplicitType

	// Declarations and members.
	KindModuleDecl
	KindPackageDecl
	KindImportDecl
	KindParamDecl
	KindVarDecl
	KindNetDecl
	KindPortDecl
	KindModportDecl
	KindTypedefDecl
	KindForwardTypedefDecl
	KindNetTypeDecl
	KindSubroutineDecl
	KindHierarchyInstantiation
	KindGenerateBlock
	KindEmptyMember
)

// Node is the common interface of every syntax node.
type Node interface {
	Kind() NodeKind
	Span() source.Span
}

// Expr is a marker for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// DataType is a marker for data-type nodes.
type DataType interface {
	Node
	typeNode()
}

// Member is a marker for declaration nodes a scope can contain.
type Member interface {
	Node
	memberNode()
}

type Pos struct {
	Sp source.Span
}

func (p Pos) Span() source.Span { return p.Sp }

// --- Expressions ---

// IdentifierName is a (possibly package-qualified) name reference.
type IdentifierName struct {
	Pos
	Package string // non-empty for pkg::name
	Name    string
	Tok     token.Token
}

func (*IdentifierName) Kind() NodeKind { return KindIdentifierName }
func (*IdentifierName) exprNode()      {}

// IntegerLiteral covers both plain and based integer literals.
type IntegerLiteral struct {
	Pos
	Value uint64
	Width uint32 // 0 when unsized
	Flags token.NumericFlags
}

func (*IntegerLiteral) Kind() NodeKind { return KindIntegerLiteral }
func (*IntegerLiteral) exprNode()      {}

type RealLiteral struct {
	Pos
	Value float64
}

func (*RealLiteral) Kind() NodeKind { return KindRealLiteral }
func (*RealLiteral) exprNode()      {}

type StringLiteral struct {
	Pos
	Value string
	Raw   string
}

func (*StringLiteral) Kind() NodeKind { return KindStringLiteral }
func (*StringLiteral) exprNode()      {}

type UnbasedUnsizedLiteral struct {
	Pos
	Bit byte // '0' '1' 'x' 'z'
}

func (*UnbasedUnsizedLiteral) Kind() NodeKind { return KindUnbasedUnsizedLiteral }
func (*UnbasedUnsizedLiteral) exprNode()      {}

type NullLiteral struct {
	Pos
}

func (*NullLiteral) Kind() NodeKind { return KindNullLiteral }
func (*NullLiteral) exprNode()      {}

type UnaryExpr struct {
	Pos
	Op      token.Kind
	Operand Expr
}

func (*UnaryExpr) Kind() NodeKind { return KindUnaryExpr }
func (*UnaryExpr) exprNode()      {}

type BinaryExpr struct {
	Pos
	Op    token.Kind
	Left  Expr
	Right Expr
}

func (*BinaryExpr) Kind() NodeKind { return KindBinaryExpr }
func (*BinaryExpr) exprNode()      {}

type ConditionalExpr struct {
	Pos
	Cond Expr
	Then Expr
	Else Expr
}

func (*ConditionalExpr) Kind() NodeKind { return KindConditionalExpr }
func (*ConditionalExpr) exprNode()      {}

// CallExpr is a subroutine call; system calls use the $name spelling.
type CallExpr struct {
	Pos
	Name     string
	IsSystem bool
	Args     []Expr
}

func (*CallExpr) Kind() NodeKind { return KindCallExpr }
func (*CallExpr) exprNode()      {}

// EmptyArgument is the hole between two commas in an argument list.
type EmptyArgument struct {
	Pos
}

func (*EmptyArgument) Kind() NodeKind { return KindEmptyArgument }
func (*EmptyArgument) exprNode()      {}

type MemberAccess struct {
	Pos
	Value  Expr
	Member string
}

func (*MemberAccess) Kind() NodeKind { return KindMemberAccess }
func (*MemberAccess) exprNode()      {}

type ElementSelect struct {
	Pos
	Value Expr
	Index Expr
}

func (*ElementSelect) Kind() NodeKind { return KindElementSelect }
func (*ElementSelect) exprNode()      {}

type RangeSelect struct {
	Pos
	Value Expr
	Left  Expr
	Right Expr
}

func (*RangeSelect) Kind() NodeKind { return KindRangeSelect }
func (*RangeSelect) exprNode()      {}

type Concatenation struct {
	Pos
	Operands []Expr
}

func (*Concatenation) Kind() NodeKind { return KindConcatenation }
func (*Concatenation) exprNode()      {}

// --- Data types ---

// RangeSyntax is one [left:right] dimension.
type RangeSyntax struct {
	Sp    source.Span
	Left  Expr
	Right Expr
}

func (r RangeSyntax) Span() source.Span { return r.Sp }

// IntegerType is a keyword integral type with optional packed dimensions:
// logic [7:0], bit, int unsigned, ...
type IntegerType struct {
	Pos
	Keyword token.Kind
	Signed  bool
	// SignedGiven reports whether signed/unsigned was spelled out.
	SignedGiven bool
	Dims        []RangeSyntax
}

func (*IntegerType) Kind() NodeKind { return KindIntegerType }
func (*IntegerType) typeNode()      {}

// RealType is one of real, shortreal, realtime.
type RealType struct {
	Pos
	Keyword token.Kind
}

func (*RealType) Kind() NodeKind { return KindRealType }
func (*RealType) typeNode()      {}

// NamedType refers to a typedef, type parameter, or builtin by name.
type NamedType struct {
	Pos
	Package string
	Name    string
}

func (*NamedType) Kind() NodeKind { return KindNamedType }
func (*NamedType) typeNode()      {}

// ImplicitType is the absent data type of a net or port declaration.
type ImplicitType struct {
	Pos
	Signed bool
	Dims   []RangeSyntax
}

func (*ImplicitType) Kind() NodeKind { return KindImplicitType }
func (*ImplicitType) typeNode()      {}

type EnumMember struct {
	Sp   source.Span
	Name string
	Init Expr // nil for prev+1 defaulting
}

// EnumType declares an enum with an optional base type.
type EnumType struct {
	Pos
	BaseType DataType // nil means int
	Members  []EnumMember
}

func (*EnumType) Kind() NodeKind { return KindEnumType }
func (*EnumType) typeNode()      {}

type StructMember struct {
	Sp   source.Span
	Name string
	Type DataType
}

// StructUnionType declares struct/union, packed or unpacked.
type StructUnionType struct {
	Pos
	IsUnion bool
	Packed  bool
	Signed  bool
	Members []StructMember
}

func (*StructUnionType) Kind() NodeKind { return KindStructUnionType }
func (*StructUnionType) typeNode()      {}
