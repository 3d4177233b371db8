package symbols

import (
	"svelab/internal/constant"
	"svelab/internal/source"
	"svelab/internal/syntax"
	"svelab/internal/types"
)

// SymbolKind classifies every entity the elaborator creates. The set is
// closed; polymorphic operations switch over it exhaustively.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolRoot
	SymbolDefinition
	SymbolPackage
	SymbolModuleInstance
	SymbolInterfaceInstance
	SymbolProgramInstance
	SymbolInstanceArray
	SymbolParameter
	SymbolTypeParameter
	SymbolVariable
	SymbolNet
	SymbolPort
	SymbolModport
	SymbolSubroutine
	SymbolEnumValue
	SymbolForwardingTypedef
	SymbolTypeAlias
	SymbolNetType
	SymbolGenerateBlock
	SymbolExplicitImport
	SymbolWildcardImport
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolRoot:
		return "root"
	case SymbolDefinition:
		return "definition"
	case SymbolPackage:
		return "package"
	case SymbolModuleInstance:
		return "module instance"
	case SymbolInterfaceInstance:
		return "interface instance"
	case SymbolProgramInstance:
		return "program instance"
	case SymbolInstanceArray:
		return "instance array"
	case SymbolParameter:
		return "parameter"
	case SymbolTypeParameter:
		return "type parameter"
	case SymbolVariable:
		return "variable"
	case SymbolNet:
		return "net"
	case SymbolPort:
		return "port"
	case SymbolModport:
		return "modport"
	case SymbolSubroutine:
		return "subroutine"
	case SymbolEnumValue:
		return "enum value"
	case SymbolForwardingTypedef:
		return "forwarding typedef"
	case SymbolTypeAlias:
		return "type alias"
	case SymbolNetType:
		return "net type"
	case SymbolGenerateBlock:
		return "generate block"
	case SymbolExplicitImport:
		return "explicit import"
	case SymbolWildcardImport:
		return "wildcard import"
	default:
		return "invalid"
	}
}

// IsInstance reports whether the kind is one of the instance kinds.
func (k SymbolKind) IsInstance() bool {
	switch k {
	case SymbolModuleInstance, SymbolInterfaceInstance, SymbolProgramInstance:
		return true
	default:
		return false
	}
}

// IsValue reports whether the symbol holds a runtime value of some type.
func (k SymbolKind) IsValue() bool {
	switch k {
	case SymbolParameter, SymbolVariable, SymbolNet, SymbolPort, SymbolEnumValue:
		return true
	default:
		return false
	}
}

// ForwardDecl is one node of a type alias's forward-declaration list.
// New forwards prepend in O(1); the list is checked once the alias
// target is known.
type ForwardDecl struct {
	Category syntax.ForwardCategory
	Span     source.Span
	Next     *ForwardDecl
}

// Definition is the compile-time template of a module/interface/program.
type Definition struct {
	Kind           syntax.DefinitionKind
	Name           string
	Syntax         *syntax.ModuleDecl
	Scope          ScopeID // the definition's own scope
	Parent         ScopeID // where the definition was declared
	Parameters     []SymbolID
	DefaultNetType *types.NetType
}

// Instance carries the per-instance payload of instance symbols.
type Instance struct {
	Definition *Definition
	Depth      uint32
	// ArrayPath holds the indices of enclosing instance arrays, outermost
	// first. Empty for non-arrayed instances.
	ArrayPath []int32
	// Parameters are the instance's parameter symbols in definition
	// declaration order; its length always equals the definition's
	// parameter count.
	Parameters []SymbolID
	// Connections is the unresolved port connection list; bound later.
	Connections []syntax.PortConnection
	PortMap     map[string]SymbolID
}

// InstanceArrayInfo carries the element list and range of an array.
type InstanceArrayInfo struct {
	Range    types.ConstantRange
	Elements []SymbolID
}

// Symbol is the base record for every entity. Kind selects which of the
// payload fields are meaningful.
type Symbol struct {
	Kind   SymbolKind
	Name   source.StringID
	Span   source.Span
	Parent ScopeID
	// Next links the symbol to its next sibling in declaration order.
	Next SymbolID
	// DeclOrder is the symbol's index in its scope, compared against
	// lookup locations for use-before-declaration checks.
	DeclOrder uint32

	// OwnScope is the scope this symbol owns, for scope-carrying kinds.
	OwnScope ScopeID

	Type  types.TypeID
	Net   *types.NetType
	Value constant.Value

	IsLocalParam bool
	IsPortParam  bool

	// InitSyntax is the unbound initializer for parameters/variables.
	InitSyntax syntax.Expr
	// TypeSyntax is the unresolved declared type.
	TypeSyntax syntax.DataType

	Definition *Definition
	Instance   *Instance
	Array      *InstanceArrayInfo

	// FirstForward heads the forward-declaration list of type aliases.
	FirstForward *ForwardDecl

	// ImportPackage/ImportItem describe import symbols.
	ImportPackage string
	ImportItem    string

	// Modport port names.
	ModportPorts []string
}

// AddForwardDecl prepends a forward declaration to an alias's list.
func (s *Symbol) AddForwardDecl(category syntax.ForwardCategory, sp source.Span) {
	s.FirstForward = &ForwardDecl{Category: category, Span: sp, Next: s.FirstForward}
}
