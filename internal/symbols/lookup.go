package symbols

// LookupLocation encodes a point in declaration order within a scope,
// against which use-before-declaration rules are checked. The zero value
// means "no restriction".
type LookupLocation struct {
	Scope ScopeID
	Index uint32
}

// LookupMax places the location after every declaration of any scope.
func LookupMax() LookupLocation {
	return LookupLocation{Index: ^uint32(0)}
}

// Before returns the location just before the given symbol, so lookups
// from its initializer reject names declared at or after it.
func (t *Table) Before(symID SymbolID) LookupLocation {
	sym := t.Symbol(symID)
	if sym == nil {
		return LookupLocation{}
	}
	return LookupLocation{Scope: sym.Parent, Index: sym.DeclOrder}
}

// After returns the location just past the given symbol.
func (t *Table) After(symID SymbolID) LookupLocation {
	loc := t.Before(symID)
	loc.Index++
	return loc
}

// LookupResult carries the outcome of a name lookup.
type LookupResult struct {
	Symbol SymbolID
	// TooLate is set when the only candidate sits after the lookup
	// location in its scope; the caller decides whether that is an error
	// in its language context.
	TooLate     bool
	TooLateSym  SymbolID
	WasImported bool
}

// Packages is the registry of package scopes by name, owned by the
// compilation and shared with lookup for import resolution.
type Packages map[string]ScopeID

// Lookup resolves a name starting at the given scope and walking the
// parent chain, consulting each scope's own members first and then its
// imports. Candidates in the location's scope declared at or after the
// location are rejected (recorded via TooLate so callers can phrase the
// diagnostic). A miss returns NoSymbolID; the caller reports it.
func (t *Table) Lookup(name string, location LookupLocation, scopeID ScopeID, pkgs Packages) LookupResult {
	var result LookupResult

	for cur := scopeID; cur.IsValid(); cur = t.Scope(cur).Parent {
		if id := t.Find(cur, name); id.IsValid() {
			if location.Scope.IsValid() && location.Scope == cur &&
				t.Symbol(id).DeclOrder >= location.Index {
				result.TooLate = true
				result.TooLateSym = id
				continue
			}
			sym := t.Symbol(id)
			if sym.Kind == SymbolExplicitImport {
				if target := t.resolveImport(sym.ImportPackage, sym.ImportItem, pkgs); target.IsValid() {
					return LookupResult{Symbol: target, WasImported: true}
				}
				continue
			}
			result.Symbol = id
			return result
		}

		// Imports attached to this scope: explicit first, then wildcard.
		sc := t.Scope(cur)
		for _, imp := range sc.Imports {
			if imp.Wildcard || imp.Item != name {
				continue
			}
			if target := t.resolveImport(imp.Package, name, pkgs); target.IsValid() {
				return LookupResult{Symbol: target, WasImported: true}
			}
		}
		for _, imp := range sc.Imports {
			if !imp.Wildcard {
				continue
			}
			if target := t.resolveImport(imp.Package, name, pkgs); target.IsValid() {
				return LookupResult{Symbol: target, WasImported: true}
			}
		}
	}

	return result
}

func (t *Table) resolveImport(pkg, item string, pkgs Packages) SymbolID {
	if pkgs == nil {
		return NoSymbolID
	}
	pkgScope, ok := pkgs[pkg]
	if !ok {
		return NoSymbolID
	}
	return t.Find(pkgScope, item)
}
