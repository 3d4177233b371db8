package sema

import (
	"fmt"

	"svelab/internal/diag"
	"svelab/internal/source"
	"svelab/internal/symbols"
	"svelab/internal/syntax"
	"svelab/internal/token"
	"svelab/internal/types"
)

// Options configures a Compilation.
type Options struct {
	// DefaultNetType is the net type in force when a definition doesn't
	// record its own (`default_nettype). KwNull means "none".
	DefaultNetType token.Kind
	// MaxInstanceDepth bounds the instance hierarchy.
	MaxInstanceDepth uint32
	// Tops names the definitions to elaborate as hierarchy roots. Empty
	// means every definition nobody instantiates.
	Tops []string
}

const defaultMaxInstanceDepth = 128

// defState is the per-definition materialization lifecycle; re-entering
// Resolving means a cyclic parameter dependency.
type defState uint8

const (
	defUnresolved defState = iota
	defResolving
	defResolved
)

// Compilation is the root of one elaboration: it owns the arenas, the
// builtin types, the definition registry and the diagnostic sink.
// A compilation must not be shared across concurrent mutators.
type Compilation struct {
	opts Options

	Files    *source.FileSet
	Diags    *diag.Bag
	reporter diag.Reporter

	Types *types.Table
	Syms  *symbols.Table

	rootScope symbols.ScopeID
	rootSym   symbols.SymbolID

	packages    symbols.Packages
	definitions map[defKey]*symbols.Definition
	defStates   map[*symbols.Definition]defState

	builtinNets map[token.Kind]*types.NetType
	errorNet    *types.NetType

	sysSubs map[string]SystemSubroutine

	// instantiated tracks definitions someone instantiated, so Elaborate
	// can pick hierarchy roots.
	instantiated map[*symbols.Definition]bool

	// paramComputing guards ParameterValue against cyclic initializers.
	paramComputing map[symbols.SymbolID]bool

	// userNetTypes lists aliased `nettype declarations for the
	// end-of-elaboration cycle check.
	userNetTypes []symbols.SymbolID

	topInstances []symbols.SymbolID
}

type defKey struct {
	parent symbols.ScopeID
	name   string
}

// NewCompilation creates the root object with builtins seeded.
func NewCompilation(files *source.FileSet, opts Options) *Compilation {
	if opts.DefaultNetType == 0 {
		opts.DefaultNetType = token.KwWire
	}
	if opts.MaxInstanceDepth == 0 {
		opts.MaxInstanceDepth = defaultMaxInstanceDepth
	}
	if files == nil {
		files = source.NewFileSet()
	}

	bag := diag.NewBag(0)
	reporter := diag.BagReporter{Bag: bag}

	c := &Compilation{
		opts:         opts,
		Files:        files,
		Diags:        bag,
		reporter:     reporter,
		Types:        types.NewTable(),
		packages:     make(symbols.Packages),
		definitions:  make(map[defKey]*symbols.Definition),
		defStates:    make(map[*symbols.Definition]defState),
		instantiated: make(map[*symbols.Definition]bool),
		sysSubs:      make(map[string]SystemSubroutine),
	}
	c.Syms = symbols.NewTable(nil, reporter)
	c.Syms.Elab = c

	c.rootSym = c.Syms.NewSymbol(&symbols.Symbol{Kind: symbols.SymbolRoot})
	c.rootScope = c.Syms.NewScope(symbols.ScopeRoot, symbols.NoScopeID, c.rootSym)
	c.Syms.Symbol(c.rootSym).OwnScope = c.rootScope

	c.buildNetTypes()
	registerBuiltinSubroutines(c)
	return c
}

func (c *Compilation) buildNetTypes() {
	logic := c.Types.Builtins().Logic
	c.errorNet = types.NewErrorNet()
	c.builtinNets = map[token.Kind]*types.NetType{
		token.KwWire:    types.NewBuiltinNet(types.NetWire, logic),
		token.KwWAnd:    types.NewBuiltinNet(types.NetWAnd, logic),
		token.KwWOr:     types.NewBuiltinNet(types.NetWOr, logic),
		token.KwTri:     types.NewBuiltinNet(types.NetTri, logic),
		token.KwTriAnd:  types.NewBuiltinNet(types.NetTriAnd, logic),
		token.KwTriOr:   types.NewBuiltinNet(types.NetTriOr, logic),
		token.KwTri0:    types.NewBuiltinNet(types.NetTri0, logic),
		token.KwTri1:    types.NewBuiltinNet(types.NetTri1, logic),
		token.KwTriReg:  types.NewBuiltinNet(types.NetTriReg, logic),
		token.KwSupply0: types.NewBuiltinNet(types.NetSupply0, logic),
		token.KwSupply1: types.NewBuiltinNet(types.NetSupply1, logic),
		token.KwUWire:   types.NewBuiltinNet(types.NetUWire, logic),
	}
}

// RootScope exposes the compilation-unit scope.
func (c *Compilation) RootScope() symbols.ScopeID { return c.rootScope }

// Reporter returns the diagnostic sink shared by every phase.
func (c *Compilation) Reporter() diag.Reporter { return c.reporter }

// ErrorType is the singleton error type ID.
func (c *Compilation) ErrorType() types.TypeID { return c.Types.Builtins().Error }

// TopInstances lists the instantiated hierarchy roots after Elaborate.
func (c *Compilation) TopInstances() []symbols.SymbolID { return c.topInstances }

// Packages exposes the package registry for lookups.
func (c *Compilation) Packages() symbols.Packages { return c.packages }

func (c *Compilation) addDiag(code diag.Code, sev diag.Severity, sp source.Span, msg string, notes ...diag.Note) {
	c.reporter.Report(code, sev, sp, msg, notes)
}

// NetTypeFor maps a net keyword to its builtin net type; the error net
// type for anything else (including KwNull for "none").
func (c *Compilation) NetTypeFor(kw token.Kind) *types.NetType {
	if nt, ok := c.builtinNets[kw]; ok {
		return nt
	}
	return c.errorNet
}

// DefaultNetTypeFor reflects the innermost `default_nettype in force at
// the given declaration; the declaration records what the preprocessor
// saw, and the compilation option covers everything else.
func (c *Compilation) DefaultNetTypeFor(decl *syntax.ModuleDecl) *types.NetType {
	kw := c.opts.DefaultNetType
	if decl != nil && decl.NetTypeKind != 0 {
		kw = decl.NetTypeKind
	}
	return c.NetTypeFor(kw)
}

// AddSyntaxTree registers the top level of one parsed source unit:
// definitions and packages are cataloged, anything else defers into the
// root scope.
func (c *Compilation) AddSyntaxTree(members []syntax.Member) {
	for _, m := range members {
		switch node := m.(type) {
		case *syntax.ModuleDecl:
			c.addDefinition(node, c.rootScope)
		case *syntax.PackageDecl:
			c.addPackage(node)
		default:
			c.Syms.AddDeferredMembers(c.rootScope, m)
		}
	}
}

func (c *Compilation) addDefinition(node *syntax.ModuleDecl, parent symbols.ScopeID) *symbols.Definition {
	def := &symbols.Definition{
		Kind:           node.DefKind,
		Name:           node.Name,
		Syntax:         node,
		Parent:         parent,
		DefaultNetType: c.DefaultNetTypeFor(node),
	}

	sym := c.Syms.NewSymbol(&symbols.Symbol{
		Kind:       symbols.SymbolDefinition,
		Name:       c.Syms.Strings.Intern(node.Name),
		Span:       node.NameSp,
		Definition: def,
	})
	c.Syms.AddMember(parent, sym)

	defScope := c.Syms.NewScope(symbols.ScopeDefinition, parent, sym)
	c.Syms.Symbol(sym).OwnScope = defScope
	def.Scope = defScope

	key := defKey{parent: parent, name: node.Name}
	if _, exists := c.definitions[key]; exists {
		c.addDiag(diag.SemRedefinition, diag.SevError, node.NameSp,
			fmt.Sprintf("redefinition of %q", node.Name))
	}
	c.definitions[key] = def
	return def
}

func (c *Compilation) addPackage(node *syntax.PackageDecl) {
	sym := c.Syms.NewSymbol(&symbols.Symbol{
		Kind: symbols.SymbolPackage,
		Name: c.Syms.Strings.Intern(node.Name),
		Span: node.Span(),
	})
	c.Syms.AddMember(c.rootScope, sym)

	pkgScope := c.Syms.NewScope(symbols.ScopePackage, c.rootScope, sym)
	c.Syms.Symbol(sym).OwnScope = pkgScope
	c.packages[node.Name] = pkgScope

	for _, m := range node.Members {
		if md, ok := m.(*syntax.ModuleDecl); ok {
			c.addDefinition(md, pkgScope)
			continue
		}
		c.Syms.AddDeferredMembers(pkgScope, m)
	}
}

// GetDefinition resolves a definition name from the given scope, walking
// outward so that package-scoped definitions win over root ones.
func (c *Compilation) GetDefinition(name string, scope symbols.ScopeID) *symbols.Definition {
	for cur := scope; cur.IsValid(); cur = c.Syms.Scope(cur).Parent {
		if def, ok := c.definitions[defKey{parent: cur, name: name}]; ok {
			return def
		}
	}
	return nil
}

// Definitions lists every registered definition.
func (c *Compilation) Definitions() []*symbols.Definition {
	out := make([]*symbols.Definition, 0, len(c.definitions))
	for _, def := range c.definitions {
		out = append(out, def)
	}
	return out
}

// Elaborate materializes the instance hierarchy: requested tops, or
// every definition that nothing else instantiates. The traversal then
// forces every scope so that all diagnostics surface.
func (c *Compilation) Elaborate() {
	// Drain the root so instantiations there register before root
	// selection happens.
	c.Syms.Drain(c.rootScope)
	for _, pkgScope := range c.packages {
		c.Syms.Drain(pkgScope)
	}

	var roots []*symbols.Definition
	if len(c.opts.Tops) > 0 {
		for _, name := range c.opts.Tops {
			if def := c.GetDefinition(name, c.rootScope); def != nil {
				roots = append(roots, def)
			} else {
				c.addDiag(diag.ElabUnknownModule, diag.SevError, source.Span{},
					fmt.Sprintf("unknown module %q", name))
			}
		}
	} else {
		// A definition someone names in an instantiation anywhere is not
		// a hierarchy root. Deferred bodies haven't elaborated yet, so
		// this scans the syntax rather than the symbol graph.
		used := make(map[string]bool)
		for _, def := range c.sortedDefinitions() {
			names := make(map[string]bool)
			scanInstantiatedNames(def.Syntax.Members, names)
			// Self-recursion doesn't disqualify a definition from being
			// a root; the depth limit cuts the cycle during elaboration.
			delete(names, def.Name)
			for n := range names {
				used[n] = true
			}
		}
		for def := range c.instantiated {
			used[def.Name] = true
		}
		for _, def := range c.sortedDefinitions() {
			if !used[def.Name] && def.Parent == c.rootScope {
				roots = append(roots, def)
			}
		}
	}

	for _, def := range roots {
		inst := c.instantiateTop(def)
		if inst.IsValid() {
			c.topInstances = append(c.topInstances, inst)
		}
	}

	for _, id := range c.topInstances {
		c.forceElaborate(c.Syms.Symbol(id).OwnScope)
	}

	c.checkNetTypeCycles()
}

// scanInstantiatedNames collects definition names referenced by
// instantiations, descending into nested containers.
func scanInstantiatedNames(members []syntax.Member, used map[string]bool) {
	for _, m := range members {
		switch n := m.(type) {
		case *syntax.HierarchyInstantiation:
			used[n.TypeName] = true
		case *syntax.GenerateBlock:
			scanInstantiatedNames(n.Members, used)
		case *syntax.ModuleDecl:
			scanInstantiatedNames(n.Members, used)
		}
	}
}

// sortedDefinitions returns definitions in a deterministic order.
func (c *Compilation) sortedDefinitions() []*symbols.Definition {
	// Walk the root scope's member order rather than the map.
	var out []*symbols.Definition
	for _, id := range c.Syms.Members(c.rootScope) {
		sym := c.Syms.Symbol(id)
		if sym.Kind == symbols.SymbolDefinition && sym.Definition != nil {
			out = append(out, sym.Definition)
		}
	}
	return out
}

// forceElaborate drains a scope and recurses into members' own scopes.
func (c *Compilation) forceElaborate(scopeID symbols.ScopeID) {
	if !scopeID.IsValid() {
		return
	}
	for _, id := range c.Syms.Members(scopeID) {
		sym := c.Syms.Symbol(id)
		if sym.OwnScope.IsValid() && sym.Kind != symbols.SymbolDefinition {
			c.forceElaborate(sym.OwnScope)
		}
	}
}
