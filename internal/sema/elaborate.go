package sema

import (
	"fmt"

	"svelab/internal/diag"
	"svelab/internal/symbols"
	"svelab/internal/syntax"
	"svelab/internal/types"
)

// ElaborateMember expands one deferred syntax node into symbols of the
// scope. It implements symbols.Elaborator, so scope drainage lands here.
func (c *Compilation) ElaborateMember(scopeID symbols.ScopeID, node syntax.Member) {
	switch n := node.(type) {
	case *syntax.VarDecl:
		c.elaborateVarDecl(scopeID, n)

	case *syntax.NetDecl:
		c.elaborateNetDecl(scopeID, n)

	case *syntax.ParamDecl:
		c.elaborateParamDecl(scopeID, n, n.IsLocal, false)

	case *syntax.ParamDeclStatement:
		c.elaborateParamDecl(scopeID, n.Param, n.Param.IsLocal, false)

	case *syntax.PortDecl:
		c.elaboratePortDecl(scopeID, n)

	case *syntax.ModportDecl:
		sym := c.Syms.NewSymbol(&symbols.Symbol{
			Kind:         symbols.SymbolModport,
			Name:         c.Syms.Strings.Intern(n.Name),
			Span:         n.Span(),
			ModportPorts: n.Ports,
		})
		c.Syms.AddMember(scopeID, sym)

	case *syntax.TypedefDecl:
		c.elaborateTypedef(scopeID, n)

	case *syntax.ForwardTypedefDecl:
		sym := c.Syms.NewSymbol(&symbols.Symbol{
			Kind: symbols.SymbolForwardingTypedef,
			Name: c.Syms.Strings.Intern(n.Name),
			Span: n.Span(),
		})
		c.Syms.Symbol(sym).AddForwardDecl(n.Category, n.Span())
		c.Syms.AddMember(scopeID, sym)

	case *syntax.NetTypeDecl:
		c.elaborateNetTypeDecl(scopeID, n)

	case *syntax.ImportDecl:
		c.Syms.AddImport(scopeID, symbols.Import{
			Package:  n.Package,
			Item:     n.Item,
			Span:     n.Span(),
			Wildcard: n.Item == "*",
		})

	case *syntax.SubroutineDecl:
		sym := c.Syms.NewSymbol(&symbols.Symbol{
			Kind: symbols.SymbolSubroutine,
			Name: c.Syms.Strings.Intern(n.Name),
			Span: n.Span(),
			Type: c.GetType(n.Return, symbols.LookupLocation{}, scopeID),
		})
		c.Syms.AddMember(scopeID, sym)

	case *syntax.HierarchyInstantiation:
		c.instantiate(n, scopeID)

	case *syntax.GenerateBlock:
		sym := c.Syms.NewSymbol(&symbols.Symbol{
			Kind: symbols.SymbolGenerateBlock,
			Name: c.Syms.Strings.Intern(n.Name),
			Span: n.Span(),
		})
		c.Syms.AddMember(scopeID, sym)
		genScope := c.Syms.NewScope(symbols.ScopeGenerate, scopeID, sym)
		c.Syms.Symbol(sym).OwnScope = genScope
		for _, m := range n.Members {
			c.Syms.AddDeferredMembers(genScope, m)
		}

	case *syntax.ModuleDecl:
		// A nested definition registers in the enclosing scope.
		c.addDefinition(n, scopeID)

	case *syntax.EmptyMember:
		// Nothing to do.

	default:
		// Closed dispatch: anything else is a front-end bug.
		panic(fmt.Sprintf("sema: unhandled member kind %T", node))
	}
}

func (c *Compilation) elaborateVarDecl(scopeID symbols.ScopeID, n *syntax.VarDecl) {
	ctx := BindContext{Comp: c, Scope: scopeID, Flags: BindConstant}
	baseType := c.GetType(n.Type, symbols.LookupLocation{}, scopeID)
	for _, d := range n.Declarators {
		ty := c.applyUnpackedDims(baseType, d.Dims, ctx)
		sym := c.Syms.NewSymbol(&symbols.Symbol{
			Kind:       symbols.SymbolVariable,
			Name:       c.Syms.Strings.Intern(d.Name),
			Span:       d.Sp,
			Type:       ty,
			InitSyntax: d.Init,
		})
		c.Syms.AddMember(scopeID, sym)
	}
}

func (c *Compilation) elaborateNetDecl(scopeID symbols.ScopeID, n *syntax.NetDecl) {
	ctx := BindContext{Comp: c, Scope: scopeID, Flags: BindConstant}
	baseType := c.GetType(n.Type, symbols.LookupLocation{}, scopeID)
	nt := c.NetTypeFor(n.NetKeyword)
	if nt.IsError() {
		// A user-defined net type: resolve it by name in scope.
		if id := c.Syms.Lookup(n.NetKeyword.Text(), symbols.LookupLocation{}, scopeID, c.packages); id.Symbol.IsValid() {
			if s := c.Syms.Symbol(id.Symbol); s.Kind == symbols.SymbolNetType {
				nt = s.Net
			}
		}
	}

	for _, d := range n.Declarators {
		ty := c.applyUnpackedDims(baseType, d.Dims, ctx)
		sym := c.Syms.NewSymbol(&symbols.Symbol{
			Kind:       symbols.SymbolNet,
			Name:       c.Syms.Strings.Intern(d.Name),
			Span:       d.Sp,
			Type:       ty,
			Net:        nt,
			InitSyntax: d.Init,
		})
		c.Syms.AddMember(scopeID, sym)
	}
}

// elaborateParamDecl creates value or type parameter symbols. isPort
// marks parameter-port-list entries; resolveDefinition passes true.
func (c *Compilation) elaborateParamDecl(scopeID symbols.ScopeID, n *syntax.ParamDecl, isLocal, isPort bool) []symbols.SymbolID {
	var out []symbols.SymbolID
	for _, d := range n.Declarators {
		kind := symbols.SymbolParameter
		if n.IsTypeParam {
			kind = symbols.SymbolTypeParameter
		}
		sym := &symbols.Symbol{
			Kind:         kind,
			Name:         c.Syms.Strings.Intern(d.Name),
			Span:         d.Sp,
			IsLocalParam: isLocal,
			IsPortParam:  isPort,
			InitSyntax:   d.Init,
			TypeSyntax:   n.Type,
		}
		if n.IsTypeParam && d.TypeInit != nil {
			sym.TypeSyntax = d.TypeInit
		}
		id := c.Syms.NewSymbol(sym)
		c.Syms.AddMember(scopeID, id)
		c.resolveParamType(id)
		out = append(out, id)
	}
	return out
}

// resolveParamType computes the declared type of a parameter symbol.
// Value parameters with no explicit type default to the initializer's
// self-determined type; type parameters resolve their target type.
func (c *Compilation) resolveParamType(id symbols.SymbolID) {
	sym := c.Syms.Symbol(id)
	scope := sym.Parent
	loc := c.Syms.Before(id)

	if sym.Kind == symbols.SymbolTypeParameter {
		if sym.TypeSyntax != nil {
			ty := c.GetType(sym.TypeSyntax, loc, scope)
			c.Syms.Symbol(id).Type = ty
		}
		return
	}

	if sym.TypeSyntax != nil {
		ty := c.GetType(sym.TypeSyntax, loc, scope)
		c.Syms.Symbol(id).Type = ty
		return
	}
	// Untyped parameter: the initializer decides.
	if sym.InitSyntax != nil {
		ctx := BindContext{Comp: c, Scope: scope, Location: loc, Flags: BindConstant}
		bound := Bind(sym.InitSyntax, ctx)
		c.Syms.Symbol(id).Type = bound.Type
		if !bound.IsBad() {
			c.Syms.Symbol(id).Value = bound.Val
		}
		return
	}
	c.Syms.Symbol(id).Type = c.ErrorType()
}

func (c *Compilation) elaboratePortDecl(scopeID symbols.ScopeID, n *syntax.PortDecl) {
	sym := c.Syms.NewSymbol(&symbols.Symbol{
		Kind: symbols.SymbolPort,
		Name: c.Syms.Strings.Intern(n.Name),
		Span: n.Span(),
		Type: c.GetType(n.Type, symbols.LookupLocation{}, scopeID),
	})
	c.Syms.AddMember(scopeID, sym)
}

func (c *Compilation) elaborateTypedef(scopeID symbols.ScopeID, n *syntax.TypedefDecl) {
	ctx := BindContext{Comp: c, Scope: scopeID, Flags: BindConstant}
	target := c.GetType(n.Type, symbols.LookupLocation{}, scopeID)
	target = c.applyUnpackedDims(target, n.Dims, ctx)
	aliasType := c.Types.Alias(n.Name, target)

	sym := c.Syms.NewSymbol(&symbols.Symbol{
		Kind: symbols.SymbolTypeAlias,
		Name: c.Syms.Strings.Intern(n.Name),
		Span: n.Span(),
		Type: aliasType,
	})

	// Adopt forward declarations already recorded under this name.
	nameID := c.Syms.Strings.Intern(n.Name)
	sc := c.Syms.Scope(scopeID)
	for id := sc.First; id.IsValid(); id = c.Syms.Symbol(id).Next {
		fw := c.Syms.Symbol(id)
		if fw.Kind == symbols.SymbolForwardingTypedef && fw.Name == nameID {
			for decl := fw.FirstForward; decl != nil; decl = decl.Next {
				c.Syms.Symbol(sym).FirstForward = &symbols.ForwardDecl{
					Category: decl.Category,
					Span:     decl.Span,
					Next:     c.Syms.Symbol(sym).FirstForward,
				}
			}
		}
	}

	c.Syms.AddMember(scopeID, sym)
	c.checkForwardDecls(sym)
}

// checkForwardDecls verifies each forward declaration's category against
// the alias's actual canonical kind.
func (c *Compilation) checkForwardDecls(aliasID symbols.SymbolID) {
	sym := c.Syms.Symbol(aliasID)
	if sym == nil || sym.FirstForward == nil {
		return
	}
	canon := c.Types.Get(c.Types.Canonical(sym.Type))
	if canon == nil || canon.Kind == types.KindError {
		return
	}

	for decl := sym.FirstForward; decl != nil; decl = decl.Next {
		ok := false
		switch decl.Category {
		case syntax.ForwardNone:
			ok = true
		case syntax.ForwardEnum:
			ok = canon.Kind == types.KindEnum
		case syntax.ForwardStruct:
			ok = canon.Kind == types.KindPackedStruct || canon.Kind == types.KindUnpackedStruct
		case syntax.ForwardUnion:
			ok = canon.Kind == types.KindPackedUnion || canon.Kind == types.KindUnpackedUnion
		case syntax.ForwardClass, syntax.ForwardInterfaceClass:
			// Class types are out of scope; the forward can never match.
			ok = false
		}
		if !ok {
			c.addDiag(diag.SemForwardTypedefDoesNotMatch, diag.SevError, decl.Span,
				fmt.Sprintf("forward typedef of %q as %s does not match its declaration",
					c.Syms.SymbolName(aliasID), decl.Category),
				diag.Note{Span: sym.Span, Msg: "declared here"})
		}
	}
}

func (c *Compilation) elaborateNetTypeDecl(scopeID symbols.ScopeID, n *syntax.NetTypeDecl) {
	dataType := c.GetType(n.Type, symbols.LookupLocation{}, scopeID)

	aliasName := n.Alias
	resolverName := n.Resolver
	nt := types.NewUserNet(n.Name, dataType, func() (*types.NetType, string) {
		if aliasName == "" {
			return nil, resolverName
		}
		res := c.Syms.Lookup(aliasName, symbols.LookupLocation{}, scopeID, c.packages)
		if res.Symbol.IsValid() {
			if s := c.Syms.Symbol(res.Symbol); s.Kind == symbols.SymbolNetType {
				return s.Net, resolverName
			}
		}
		return nil, resolverName
	})

	sym := c.Syms.NewSymbol(&symbols.Symbol{
		Kind: symbols.SymbolNetType,
		Name: c.Syms.Strings.Intern(n.Name),
		Span: n.Span(),
		Type: dataType,
		Net:  nt,
	})
	c.Syms.AddMember(scopeID, sym)

	// Cycle checking waits for the end of elaboration so that forward
	// references between net types stay legal; resolving now would
	// memoize a nil alias.
	if n.Alias != "" {
		c.userNetTypes = append(c.userNetTypes, sym)
	}
}

// checkNetTypeCycles diagnoses aliased net types whose canonical form
// collapsed to the error net type.
func (c *Compilation) checkNetTypeCycles() {
	for _, id := range c.userNetTypes {
		sym := c.Syms.Symbol(id)
		if sym.Net != nil && sym.Net.GetCanonical().IsError() {
			c.addDiag(diag.SemCyclicNetTypeAlias, diag.SevError, sym.Span,
				fmt.Sprintf("net type alias %q forms a cycle", c.Syms.SymbolName(id)))
		}
	}
}
