package syntax

import (
	"svelab/internal/source"
	"svelab/internal/token"
)

// DefinitionKind distinguishes the three instantiable definitions.
type DefinitionKind uint8

const (
	DefModule DefinitionKind = iota
	DefInterface
	DefProgram
)

func (k DefinitionKind) String() string {
	switch k {
	case DefModule:
		return "module"
	case DefInterface:
		return "interface"
	case DefProgram:
		return "program"
	}
	return "?"
}

// ImportDecl is "import pkg::item;" or "import pkg::*;".
type ImportDecl struct {
	Pos
	Package  string
	Item     string // "*" for wildcard
}

func (*ImportDecl) Kind() NodeKind { return KindImportDecl }
func (*ImportDecl) memberNode()    {}

// Declarator is one name in a declaration, with unpacked dims and an
// optional initializer.
type Declarator struct {
	Sp   source.Span
	Name string
	Dims []RangeSyntax
	Init Expr
	// TypeInit is the target for type parameters and typedefs.
	TypeInit DataType
}

// ParamDecl declares value or type parameters.
// In a parameter port list the keyword may be omitted, inheriting
// parameter/localparam from the previous entry; the parser resolves that
// and sets HasKeyword accordingly.
type ParamDecl struct {
	Pos
	IsLocal     bool
	HasKeyword  bool
	IsTypeParam bool
	Type        DataType // value params; nil means implicit
	Declarators []Declarator
}

func (*ParamDecl) Kind() NodeKind { return KindParamDecl }
func (*ParamDecl) memberNode()    {}

// ParamDeclStatement wraps a ParamDecl appearing as a body member.
// Body parameter declarations consume pre-materialized parameter slots
// during instantiation, so the distinction matters there.
type ParamDeclStatement struct {
	Param *ParamDecl
}

func (p *ParamDeclStatement) Kind() NodeKind    { return KindParamDecl }
func (p *ParamDeclStatement) Span() source.Span { return p.Param.Span() }
func (*ParamDeclStatement) memberNode()         {}

// VarDecl declares variables.
type VarDecl struct {
	Pos
	Type        DataType
	Declarators []Declarator
}

func (*VarDecl) Kind() NodeKind { return KindVarDecl }
func (*VarDecl) memberNode()    {}

// NetDecl declares nets of a given net type keyword (wire, tri, ...).
type NetDecl struct {
	Pos
	NetKeyword  token.Kind
	Type        DataType
	Declarators []Declarator
}

func (*NetDecl) Kind() NodeKind { return KindNetDecl }
func (*NetDecl) memberNode()    {}

// PortDirection is the ANSI port direction.
type PortDirection uint8

const (
	DirInput PortDirection = iota
	DirOutput
	DirInOut
	DirRef
)

// PortDecl declares one ANSI header port.
type PortDecl struct {
	Pos
	Direction PortDirection
	Type      DataType
	Name      string
}

func (*PortDecl) Kind() NodeKind { return KindPortDecl }
func (*PortDecl) memberNode()    {}

// ModportDecl declares interface modports.
type ModportDecl struct {
	Pos
	Name  string
	Ports []string
}

func (*ModportDecl) Kind() NodeKind { return KindModportDecl }
func (*ModportDecl) memberNode()    {}

// TypedefDecl is "typedef <type> name;".
type TypedefDecl struct {
	Pos
	Name string
	Type DataType
	Dims []RangeSyntax
}

func (*TypedefDecl) Kind() NodeKind { return KindTypedefDecl }
func (*TypedefDecl) memberNode()    {}

// ForwardCategory tags a forward typedef with the kind it promises.
type ForwardCategory uint8

const (
	ForwardNone ForwardCategory = iota
	ForwardEnum
	ForwardStruct
	ForwardUnion
	ForwardClass
	ForwardInterfaceClass
)

func (c ForwardCategory) String() string {
	switch c {
	case ForwardNone:
		return "none"
	case ForwardEnum:
		return "enum"
	case ForwardStruct:
		return "struct"
	case ForwardUnion:
		return "union"
	case ForwardClass:
		return "class"
	case ForwardInterfaceClass:
		return "interface class"
	}
	return "?"
}

// ForwardTypedefDecl is "typedef enum name;" and friends.
type ForwardTypedefDecl struct {
	Pos
	Name     string
	Category ForwardCategory
}

func (*ForwardTypedefDecl) Kind() NodeKind { return KindForwardTypedefDecl }
func (*ForwardTypedefDecl) memberNode()    {}

// NetTypeDecl is "nettype <type> name [with resolver];".
type NetTypeDecl struct {
	Pos
	Name     string
	Type     DataType
	Alias    string // set when the declaration aliases another net type
	Resolver string
}

func (*NetTypeDecl) Kind() NodeKind { return KindNetTypeDecl }
func (*NetTypeDecl) memberNode()    {}

// SubroutineDecl is a task or function declaration header.
type SubroutineDecl struct {
	Pos
	Name     string
	IsTask   bool
	Return   DataType
	ArgNames []string
	ArgTypes []DataType
}

func (*SubroutineDecl) Kind() NodeKind { return KindSubroutineDecl }
func (*SubroutineDecl) memberNode()    {}

// ModuleHeader carries the parts of a module declaration that matter
// before the body: imports, the parameter port list, ANSI ports.
type ModuleHeader struct {
	Imports    []*ImportDecl
	Parameters []*ParamDecl
	Ports      []*PortDecl
}

// ModuleDecl declares a module, interface, or program definition.
// NetTypeKind records the `default_nettype in force at the declaration,
// as observed by the preprocessor; zero means "use the compilation
// default".
type ModuleDecl struct {
	Pos
	DefKind     DefinitionKind
	Name        string
	NameSp      source.Span
	NetTypeKind token.Kind
	Header      ModuleHeader
	Members     []Member
}

func (*ModuleDecl) Kind() NodeKind { return KindModuleDecl }
func (*ModuleDecl) memberNode()    {}

// PackageDecl declares a package.
type PackageDecl struct {
	Pos
	Name    string
	Members []Member
}

func (*PackageDecl) Kind() NodeKind { return KindPackageDecl }
func (*PackageDecl) memberNode()    {}

// ParamAssignment is one entry of a #(...) clause.
type ParamAssignment struct {
	Sp      source.Span
	Ordered bool
	Name    string      // named form
	NameSp  source.Span
	Expr    Expr        // nil for ".name()" meaning use the default
	Type    DataType    // set when the parser saw an explicit data type
}

// PortConnection is one entry of an instance port list.
type PortConnection struct {
	Sp    source.Span
	Named bool
	Name  string
	Expr  Expr
}

// HierarchicalInstance is one "name[dims](ports)" in an instantiation.
type HierarchicalInstance struct {
	Sp          source.Span
	Name        string
	NameSp      source.Span
	Dims        []RangeSyntax
	Connections []PortConnection
}

// HierarchyInstantiation is "Type #(params) a(), b[3:0]();".
type HierarchyInstantiation struct {
	Pos
	TypeName   string
	TypeNameSp source.Span
	Parameters []ParamAssignment
	Instances  []HierarchicalInstance
}

func (*HierarchyInstantiation) Kind() NodeKind { return KindHierarchyInstantiation }
func (*HierarchyInstantiation) memberNode()    {}

// GenerateBlock is a named begin/end region of members.
type GenerateBlock struct {
	Pos
	Name    string
	Members []Member
}

func (*GenerateBlock) Kind() NodeKind { return KindGenerateBlock }
func (*GenerateBlock) memberNode()    {}

// EmptyMember is a stray semicolon.
type EmptyMember struct {
	Pos
}

func (*EmptyMember) Kind() NodeKind { return KindEmptyMember }
func (*EmptyMember) memberNode()    {}
