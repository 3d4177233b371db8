package symbols

import (
	"svelab/internal/source"
	"svelab/internal/syntax"
)

// ScopeKind categorizes scopes for lookup rules.
type ScopeKind uint8

const (
	ScopeInvalid ScopeKind = iota
	ScopeRoot
	ScopePackage
	ScopeDefinition
	ScopeInstance
	ScopeInstanceArray
	ScopeType
	// ScopeTempParams is the synthetic scope that hosts parameter clones
	// while an instantiation binds their initializers.
	ScopeTempParams
	ScopeGenerate
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeRoot:
		return "root"
	case ScopePackage:
		return "package"
	case ScopeDefinition:
		return "definition"
	case ScopeInstance:
		return "instance"
	case ScopeInstanceArray:
		return "instance array"
	case ScopeType:
		return "type"
	case ScopeTempParams:
		return "temp params"
	case ScopeGenerate:
		return "generate"
	default:
		return "invalid"
	}
}

// ScopeState is the tri-state elaboration lifecycle of a scope's
// deferred members.
type ScopeState uint8

const (
	// Unelaborated: deferred members have not been expanded yet.
	Unelaborated ScopeState = iota
	// Elaborating: drainage is in progress; recursive lookups see only
	// the already-materialized prefix.
	Elaborating
	// Elaborated: the name map is authoritative.
	Elaborated
)

// Import records one import declaration attached to a scope.
type Import struct {
	Package  string
	Item     string // "*" for wildcard
	Span     source.Span
	Wildcard bool
}

// Scope is a container of ordered members with lazy construction.
// Members form a singly linked list (First..Last via Symbol.Next) in
// declaration order; the name map is consulted only after the deferred
// list drains.
type Scope struct {
	Kind   ScopeKind
	Owner  SymbolID
	Parent ScopeID
	State  ScopeState

	First SymbolID
	Last  SymbolID
	Count uint32

	NameMap map[source.StringID]SymbolID

	// Deferred holds syntax nodes to expand into symbols on first query.
	Deferred []syntax.Member

	Imports []Import
}
