package sema

import (
	"fmt"

	"svelab/internal/constant"
	"svelab/internal/diag"
	"svelab/internal/source"
	"svelab/internal/symbols"
	"svelab/internal/syntax"
	"svelab/internal/types"
)

// resolveDefinition materializes a definition's header: imports and the
// parameter list in declaration order. The state machine catches cyclic
// parameter dependencies between definitions.
func (c *Compilation) resolveDefinition(def *symbols.Definition) {
	switch c.defStates[def] {
	case defResolved:
		return
	case defResolving:
		c.addDiag(diag.ElabRecursiveParamDependency, diag.SevError, def.Syntax.NameSp,
			fmt.Sprintf("recursive parameter dependency while resolving %q", def.Name))
		return
	}
	c.defStates[def] = defResolving

	decl := def.Syntax
	for _, imp := range decl.Header.Imports {
		c.Syms.AddImport(def.Scope, symbols.Import{
			Package:  imp.Package,
			Item:     imp.Item,
			Span:     imp.Span(),
			Wildcard: imp.Item == "*",
		})
	}

	// Parameter port list. A declaration without the keyword inherits
	// parameter/localparam from the previous entry.
	hasPortParams := len(decl.Header.Parameters) > 0
	lastLocal := false
	for _, pd := range decl.Header.Parameters {
		if pd.HasKeyword {
			lastLocal = pd.IsLocal
		}
		ids := c.elaborateParamDecl(def.Scope, pd, lastLocal, true)
		def.Parameters = append(def.Parameters, ids...)
	}

	// ANSI ports.
	for _, port := range decl.Header.Ports {
		c.Syms.AddDeferredMembers(def.Scope, port)
	}

	// Body: parameter declarations materialize now (they belong to the
	// ordered parameter list); everything else defers.
	for _, m := range decl.Members {
		if pds, ok := m.(*syntax.ParamDeclStatement); ok {
			isLocal := hasPortParams || pds.Param.IsLocal
			ids := c.elaborateParamDecl(def.Scope, pds.Param, isLocal, false)
			def.Parameters = append(def.Parameters, ids...)
			continue
		}
		c.Syms.AddDeferredMembers(def.Scope, m)
	}

	c.defStates[def] = defResolved
}

// paramOverride pairs an override site with its expression or type.
type paramOverride struct {
	expr syntax.Expr
	ty   syntax.DataType
	span source.Span
}

// instantiate turns one HierarchyInstantiation into instance symbols in
// the enclosing scope.
func (c *Compilation) instantiate(node *syntax.HierarchyInstantiation, scopeID symbols.ScopeID) {
	def := c.GetDefinition(node.TypeName, scopeID)
	if def == nil {
		c.addDiag(diag.ElabUnknownModule, diag.SevError, node.TypeNameSp,
			fmt.Sprintf("unknown module %q", node.TypeName))
		return
	}
	c.resolveDefinition(def)
	c.instantiated[def] = true

	overrides := c.parseParamAssignments(node, def, scopeID)

	// Materialize parameters once per instantiation site, in a synthetic
	// scope parented at the definition's parent so initializers resolve
	// in the right environment.
	params := c.materializeParams(def, overrides, node, scopeID)

	// Depth accounting: walk up for the nearest enclosing instance.
	depth := uint32(0)
	for cur := scopeID; cur.IsValid(); {
		sc := c.Syms.Scope(cur)
		owner := c.Syms.Symbol(sc.Owner)
		if owner != nil && owner.Kind.IsInstance() && owner.Instance != nil {
			depth = owner.Instance.Depth + 1
			break
		}
		cur = sc.Parent
	}
	if depth > c.opts.MaxInstanceDepth {
		c.addDiag(diag.ElabMaxInstanceDepthExceeded, diag.SevError, node.TypeNameSp,
			fmt.Sprintf("maximum instance depth of %d exceeded", c.opts.MaxInstanceDepth))
		return
	}

	// Implicit nets from port connection expressions, deduplicated
	// across the whole instantiation group.
	implicitNets := make(map[string]bool)
	for i := range node.Instances {
		inst := &node.Instances[i]
		c.createImplicitNets(inst, scopeID, implicitNets)

		var path []int32
		sym := c.recurseInstanceArray(def, inst, params, inst.Dims, path, scopeID, depth)
		if sym.IsValid() {
			c.Syms.AddMember(scopeID, sym)
		}
	}
}

// parseParamAssignments indexes the #(...) clause. Ordered and named
// assignments never mix; named assignments never repeat.
func (c *Compilation) parseParamAssignments(node *syntax.HierarchyInstantiation,
	def *symbols.Definition, scopeID symbols.ScopeID) map[string]paramOverride {

	overrides := make(map[string]paramOverride)
	if len(node.Parameters) == 0 {
		return overrides
	}

	hasAssignments := false
	orderedMode := true
	var ordered []syntax.ParamAssignment
	type namedEntry struct {
		assign syntax.ParamAssignment
		used   bool
	}
	named := make(map[string]*namedEntry)
	var namedOrder []string

	for _, pa := range node.Parameters {
		if !hasAssignments {
			hasAssignments = true
			orderedMode = pa.Ordered
		} else if pa.Ordered != orderedMode {
			c.addDiag(diag.ElabMixingOrderedAndNamedParams, diag.SevError, pa.Sp,
				"mixing ordered and named parameter assignments")
			break
		}

		if pa.Ordered {
			ordered = append(ordered, pa)
			continue
		}
		if pa.Name == "" {
			continue
		}
		if prev, dup := named[pa.Name]; dup {
			c.addDiag(diag.ElabDuplicateParamAssignment, diag.SevError, pa.NameSp,
				fmt.Sprintf("duplicate assignment to parameter %q", pa.Name),
				diag.Note{Span: prev.assign.NameSp, Msg: "previous usage here"})
			continue
		}
		named[pa.Name] = &namedEntry{assign: pa}
		namedOrder = append(namedOrder, pa.Name)
	}

	if orderedMode {
		orderedIndex := 0
		for _, paramID := range def.Parameters {
			if orderedIndex >= len(ordered) {
				break
			}
			param := c.Syms.Symbol(paramID)
			if param.IsLocalParam {
				continue
			}
			pa := ordered[orderedIndex]
			orderedIndex++
			overrides[c.Syms.SymbolName(paramID)] = paramOverride{expr: pa.Expr, ty: pa.Type, span: pa.Sp}
		}
		if orderedIndex < len(ordered) {
			c.addDiag(diag.ElabTooManyParamAssignments, diag.SevError, ordered[orderedIndex].Sp,
				fmt.Sprintf("too many parameter assignments to %q: %d given, %d accepted",
					def.Name, len(ordered), orderedIndex))
		}
		return overrides
	}

	for _, paramID := range def.Parameters {
		name := c.Syms.SymbolName(paramID)
		entry, ok := named[name]
		if !ok {
			continue
		}
		entry.used = true
		param := c.Syms.Symbol(paramID)

		if param.IsLocalParam {
			code := diag.ElabAssignedToLocalBodyParam
			if param.IsPortParam {
				code = diag.ElabAssignedToLocalPortParam
			}
			c.addDiag(code, diag.SevError, entry.assign.NameSp,
				fmt.Sprintf("cannot assign to localparam %q", name),
				diag.Note{Span: param.Span, Msg: "declared here"})
			continue
		}
		// An empty ".name()" just uses the default.
		if entry.assign.Expr == nil && entry.assign.Type == nil {
			continue
		}
		overrides[name] = paramOverride{expr: entry.assign.Expr, ty: entry.assign.Type, span: entry.assign.Sp}
	}

	// Anything not consumed targets a parameter that does not exist.
	// Reported only after every known override applied.
	for _, name := range namedOrder {
		entry := named[name]
		if !entry.used {
			c.addDiag(diag.ElabParameterDoesNotExist, diag.SevError, entry.assign.NameSp,
				fmt.Sprintf("parameter %q does not exist in %q", name, def.Name))
		}
	}
	return overrides
}

// materializeParams clones the definition's parameters into a temporary
// scope parented at the definition's parent, applies overrides, and
// returns the clones in declaration order. The temp scope is discarded
// once instances copy the clones out.
func (c *Compilation) materializeParams(def *symbols.Definition, overrides map[string]paramOverride,
	node *syntax.HierarchyInstantiation, instScope symbols.ScopeID) []symbols.SymbolID {

	tempScope := c.Syms.NewScope(symbols.ScopeTempParams, def.Parent, symbols.NoSymbolID)
	for _, imp := range def.Syntax.Header.Imports {
		c.Syms.AddImport(tempScope, symbols.Import{
			Package:  imp.Package,
			Item:     imp.Item,
			Span:     imp.Span(),
			Wildcard: imp.Item == "*",
		})
	}

	location := symbols.LookupLocation{}
	var out []symbols.SymbolID

	for _, paramID := range def.Parameters {
		orig := c.Syms.Symbol(paramID)
		name := c.Syms.SymbolName(paramID)
		clone := *orig
		clone.Next = symbols.NoSymbolID
		clone.Value = constant.Error()
		cloneID := c.Syms.NewSymbol(&clone)
		c.Syms.AddMember(tempScope, cloneID)
		out = append(out, cloneID)

		ov, overridden := overrides[name]

		if orig.Kind == symbols.SymbolParameter {
			switch {
			case overridden:
				// Override expressions bind in the instantiating scope;
				// only default initializers use the temp environment.
				ctxInst := BindContext{Comp: c, Scope: instScope, Flags: BindConstant}
				bound := Bind(ov.expr, ctxInst)
				cl := c.Syms.Symbol(cloneID)
				cl.InitSyntax = ov.expr
				if orig.TypeSyntax == nil {
					cl.Type = bound.Type
				}
				if bound.IsBad() {
					cl.Value = constant.Error()
				} else {
					cl.Value = bound.Val
				}
			case !orig.IsLocalParam && orig.IsPortParam && orig.InitSyntax == nil:
				c.addDiag(diag.ElabParamHasNoValue, diag.SevError, node.Span(),
					fmt.Sprintf("parameter %q of %q has no default and no override value",
						name, def.Name))
			default:
				c.ParameterValue(cloneID)
			}
			continue
		}

		// Type parameter.
		switch {
		case overridden:
			var ty types.TypeID
			switch {
			case ov.ty != nil:
				ty = c.GetType(ov.ty, location, instScope)
			case ov.expr != nil:
				// The parser didn't know a type was expected; a bare
				// name re-interprets as a named type.
				if nameExpr, ok := ov.expr.(*syntax.IdentifierName); ok {
					named := &syntax.NamedType{Package: nameExpr.Package, Name: nameExpr.Name}
					named.Sp = nameExpr.Span()
					ty = c.GetType(named, location, instScope)
				} else {
					c.addDiag(diag.ElabBadTypeParamExpr, diag.SevError, ov.span,
						fmt.Sprintf("invalid expression for type parameter %q", name))
					ty = c.ErrorType()
				}
			}
			c.Syms.Symbol(cloneID).Type = ty
		case !orig.IsLocalParam && orig.IsPortParam && orig.TypeSyntax == nil:
			c.addDiag(diag.ElabParamHasNoValue, diag.SevError, node.Span(),
				fmt.Sprintf("parameter %q of %q has no default and no override value",
					name, def.Name))
		}
	}
	return out
}

// createImplicitNets scans port connection expressions for identifiers
// that resolve to nothing; each becomes a net of the scope's default net
// type. When the default net type is "none" no nets are created.
func (c *Compilation) createImplicitNets(inst *syntax.HierarchicalInstance,
	scopeID symbols.ScopeID, seen map[string]bool) {

	netType := c.defaultNetTypeForScope(scopeID)
	if netType.IsError() {
		return
	}

	for _, conn := range inst.Connections {
		if conn.Expr == nil {
			continue
		}
		for _, ident := range collectIdentifiers(conn.Expr) {
			if ident.Package != "" || seen[ident.Name] {
				continue
			}
			if res := c.Syms.Lookup(ident.Name, symbols.LookupLocation{}, scopeID, c.packages); res.Symbol.IsValid() {
				continue
			}
			seen[ident.Name] = true
			sym := c.Syms.NewSymbol(&symbols.Symbol{
				Kind: symbols.SymbolNet,
				Name: c.Syms.Strings.Intern(ident.Name),
				Span: ident.Span(),
				Type: c.Types.Builtins().Logic,
				Net:  netType,
			})
			c.Syms.AddMember(scopeID, sym)
		}
	}
}

// collectIdentifiers walks an expression for bare name references.
func collectIdentifiers(e syntax.Expr) []*syntax.IdentifierName {
	var out []*syntax.IdentifierName
	var walk func(syntax.Expr)
	walk = func(e syntax.Expr) {
		switch n := e.(type) {
		case nil:
		case *syntax.IdentifierName:
			out = append(out, n)
		case *syntax.UnaryExpr:
			walk(n.Operand)
		case *syntax.BinaryExpr:
			walk(n.Left)
			walk(n.Right)
		case *syntax.ConditionalExpr:
			walk(n.Cond)
			walk(n.Then)
			walk(n.Else)
		case *syntax.Concatenation:
			for _, op := range n.Operands {
				walk(op)
			}
		case *syntax.ElementSelect:
			walk(n.Value)
			walk(n.Index)
		case *syntax.RangeSelect:
			walk(n.Value)
			walk(n.Left)
			walk(n.Right)
		case *syntax.MemberAccess:
			walk(n.Value)
		case *syntax.CallExpr:
			for _, a := range n.Args {
				walk(a)
			}
		}
	}
	walk(e)
	return out
}

// defaultNetTypeForScope finds the net type in force for implicit nets:
// the owning definition's captured default, or the compilation option.
func (c *Compilation) defaultNetTypeForScope(scopeID symbols.ScopeID) *types.NetType {
	for cur := scopeID; cur.IsValid(); cur = c.Syms.Scope(cur).Parent {
		owner := c.Syms.Symbol(c.Syms.Scope(cur).Owner)
		if owner == nil {
			continue
		}
		if owner.Kind == symbols.SymbolDefinition && owner.Definition != nil {
			return owner.Definition.DefaultNetType
		}
		if owner.Kind.IsInstance() && owner.Instance != nil {
			return owner.Instance.Definition.DefaultNetType
		}
	}
	return c.NetTypeFor(c.opts.DefaultNetType)
}

// recurseInstanceArray peels instance dimensions outermost-first. With
// no dimensions left it creates the leaf instance. A dimension that
// fails to evaluate synthesizes an empty array symbol so later lookups
// produce targeted errors instead of crashes.
func (c *Compilation) recurseInstanceArray(def *symbols.Definition, instSyntax *syntax.HierarchicalInstance,
	params []symbols.SymbolID, dims []syntax.RangeSyntax, path []int32,
	scopeID symbols.ScopeID, depth uint32) symbols.SymbolID {

	if len(dims) == 0 {
		return c.createInstance(def, instSyntax, params, path, scopeID, depth)
	}

	ctx := BindContext{Comp: c, Scope: scopeID, Flags: BindConstant}
	rng, ok := c.EvalDimension(dims[0], ctx)
	if !ok {
		sym := c.Syms.NewSymbol(&symbols.Symbol{
			Kind:  symbols.SymbolInstanceArray,
			Name:  c.Syms.Strings.Intern(instSyntax.Name),
			Span:  instSyntax.NameSp,
			Array: &symbols.InstanceArrayInfo{},
		})
		arrScope := c.Syms.NewScope(symbols.ScopeInstanceArray, scopeID, sym)
		c.Syms.Symbol(sym).OwnScope = arrScope
		return sym
	}

	arrSym := c.Syms.NewSymbol(&symbols.Symbol{
		Kind: symbols.SymbolInstanceArray,
		Name: c.Syms.Strings.Intern(instSyntax.Name),
		Span: instSyntax.NameSp,
	})
	arrScope := c.Syms.NewScope(symbols.ScopeInstanceArray, scopeID, arrSym)
	c.Syms.Symbol(arrSym).OwnScope = arrScope

	info := &symbols.InstanceArrayInfo{Range: rng}
	for i := rng.Lower(); i <= rng.Upper(); i++ {
		childPath := append(append([]int32(nil), path...), i)
		child := c.recurseInstanceArray(def, instSyntax, params, dims[1:], childPath, arrScope, depth)
		if !child.IsValid() {
			continue
		}
		// Elements answer to their index-suffixed name inside the array.
		childSym := c.Syms.Symbol(child)
		childSym.Name = c.Syms.Strings.Intern(fmt.Sprintf("%s[%d]", instSyntax.Name, i))
		c.Syms.AddMember(arrScope, child)
		info.Elements = append(info.Elements, child)
	}
	c.Syms.Symbol(arrSym).Array = info
	return arrSym
}

// createInstance builds one leaf instance: header imports, parameters in
// definition order, ports, stored connections, then body members in
// declaration order with body parameter slots consumed from the
// materialized list.
func (c *Compilation) createInstance(def *symbols.Definition, instSyntax *syntax.HierarchicalInstance,
	params []symbols.SymbolID, path []int32, scopeID symbols.ScopeID, depth uint32) symbols.SymbolID {

	var kind symbols.SymbolKind
	switch def.Kind {
	case syntax.DefInterface:
		kind = symbols.SymbolInterfaceInstance
	case syntax.DefProgram:
		kind = symbols.SymbolProgramInstance
	default:
		kind = symbols.SymbolModuleInstance
	}

	inst := &symbols.Instance{
		Definition:  def,
		Depth:       depth,
		ArrayPath:   append([]int32(nil), path...),
		Connections: instSyntax.Connections,
		PortMap:     make(map[string]symbols.SymbolID),
	}

	sym := c.Syms.NewSymbol(&symbols.Symbol{
		Kind:     kind,
		Name:     c.Syms.Strings.Intern(instSyntax.Name),
		Span:     instSyntax.NameSp,
		Instance: inst,
	})
	instScope := c.Syms.NewScope(symbols.ScopeInstance, scopeID, sym)
	c.Syms.Symbol(sym).OwnScope = instScope

	decl := def.Syntax

	// Package imports from the header come first.
	for _, imp := range decl.Header.Imports {
		c.Syms.AddImport(instScope, symbols.Import{
			Package:  imp.Package,
			Item:     imp.Item,
			Span:     imp.Span(),
			Wildcard: imp.Item == "*",
		})
	}

	// Clone every materialized parameter into the instance, in
	// definition declaration order. Port params join the scope now; body
	// params join when their declaration statement comes up.
	paramIt := 0
	addParamClone := func() symbols.SymbolID {
		orig := c.Syms.Symbol(params[paramIt])
		clone := *orig
		clone.Next = symbols.NoSymbolID
		id := c.Syms.NewSymbol(&clone)
		c.Syms.AddMember(instScope, id)
		inst.Parameters = append(inst.Parameters, id)
		paramIt++
		return id
	}
	for paramIt < len(params) && c.Syms.Symbol(params[paramIt]).IsPortParam {
		addParamClone()
	}

	// Ports precede body members so connections can resolve early.
	for _, port := range decl.Header.Ports {
		portSym := c.Syms.NewSymbol(&symbols.Symbol{
			Kind: symbols.SymbolPort,
			Name: c.Syms.Strings.Intern(port.Name),
			Span: port.Span(),
			Type: c.GetType(port.Type, symbols.LookupLocation{}, instScope),
		})
		c.Syms.AddMember(instScope, portSym)
		inst.PortMap[port.Name] = portSym
	}

	// Body members in declaration order. A parameter declaration
	// statement consumes one materialized slot per declarator.
	for _, m := range decl.Members {
		if pds, ok := m.(*syntax.ParamDeclStatement); ok {
			for range pds.Param.Declarators {
				if paramIt < len(params) {
					addParamClone()
				}
			}
			continue
		}
		c.Syms.AddDeferredMembers(instScope, m)
	}

	// Trailing body parameters (if the syntax listed fewer statements
	// than materialized slots, which only happens on malformed input).
	for paramIt < len(params) {
		addParamClone()
	}

	return sym
}

// instantiateTop builds a hierarchy root from a definition with its
// default parameter values.
func (c *Compilation) instantiateTop(def *symbols.Definition) symbols.SymbolID {
	c.resolveDefinition(def)

	pseudo := &syntax.HierarchicalInstance{
		Name:   def.Name,
		NameSp: def.Syntax.NameSp,
	}
	params := c.materializeParams(def, nil, pseudoInstantiation(def), c.rootScope)
	sym := c.createInstance(def, pseudo, params, nil, c.rootScope, 0)
	c.Syms.AddMember(c.rootScope, sym)
	return sym
}

func pseudoInstantiation(def *symbols.Definition) *syntax.HierarchyInstantiation {
	hi := &syntax.HierarchyInstantiation{
		TypeName:   def.Name,
		TypeNameSp: def.Syntax.NameSp,
	}
	hi.Sp = def.Syntax.NameSp
	return hi
}

// BindPortConnections binds an instance's stored port connection
// expressions in the instantiating scope. Returns the bound expressions
// in connection order, nil for an empty connection; the instance's ports
// are not consulted.
func (c *Compilation) BindPortConnections(instID symbols.SymbolID) []*Expression {
	sym := c.Syms.Symbol(instID)
	if sym == nil || sym.Instance == nil {
		return nil
	}
	parent := c.Syms.Scope(sym.OwnScope).Parent
	ctx := BindContext{Comp: c, Scope: parent}

	var out []*Expression
	for _, conn := range sym.Instance.Connections {
		if conn.Expr == nil {
			out = append(out, nil)
			continue
		}
		out = append(out, Bind(conn.Expr, ctx))
	}
	return out
}
