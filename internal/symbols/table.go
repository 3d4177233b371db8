package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"svelab/internal/diag"
	"svelab/internal/source"
	"svelab/internal/syntax"
)

// Elaborator expands one deferred syntax node into symbols of a scope.
// The compilation implements it; the indirection keeps this package free
// of binding logic while Find can still trigger drainage.
type Elaborator interface {
	ElaborateMember(scope ScopeID, node syntax.Member)
}

// Table aggregates the scope and symbol arenas plus the shared string
// interner. Index 0 of each arena is reserved for the No*ID sentinel.
type Table struct {
	scopes  []Scope
	symbols []Symbol

	Strings  *source.Interner
	Reporter diag.Reporter
	Elab     Elaborator
}

// NewTable builds a fresh table. If strings is nil a new interner is
// allocated.
func NewTable(strings *source.Interner, reporter diag.Reporter) *Table {
	if strings == nil {
		strings = source.NewInterner()
	}
	return &Table{
		scopes:   make([]Scope, 1, 64),
		symbols:  make([]Symbol, 1, 256),
		Strings:  strings,
		Reporter: reporter,
	}
}

// NewScope allocates a scope.
func (t *Table) NewScope(kind ScopeKind, parent ScopeID, owner SymbolID) ScopeID {
	value, err := safecast.Conv[uint32](len(t.scopes))
	if err != nil {
		panic(fmt.Errorf("scope arena overflow: %w", err))
	}
	id := ScopeID(value)
	t.scopes = append(t.scopes, Scope{
		Kind:    kind,
		Parent:  parent,
		Owner:   owner,
		NameMap: make(map[source.StringID]SymbolID),
	})
	return id
}

// NewSymbol allocates a symbol and returns its ID. The symbol is not yet
// a member of any scope; use AddMember.
func (t *Table) NewSymbol(sym *Symbol) SymbolID {
	if sym == nil {
		panic("symbols: nil symbol")
	}
	value, err := safecast.Conv[uint32](len(t.symbols))
	if err != nil {
		panic(fmt.Errorf("symbol arena overflow: %w", err))
	}
	id := SymbolID(value)
	t.symbols = append(t.symbols, *sym)
	return id
}

// Scope returns the scope record, or nil for an invalid ID.
func (t *Table) Scope(id ScopeID) *Scope {
	if !id.IsValid() || int(id) >= len(t.scopes) {
		return nil
	}
	return &t.scopes[id]
}

// Symbol returns the symbol record, or nil for an invalid ID.
func (t *Table) Symbol(id SymbolID) *Symbol {
	if !id.IsValid() || int(id) >= len(t.symbols) {
		return nil
	}
	return &t.symbols[id]
}

// SymbolName resolves a symbol's interned name.
func (t *Table) SymbolName(id SymbolID) string {
	sym := t.Symbol(id)
	if sym == nil {
		return ""
	}
	name, _ := t.Strings.Lookup(sym.Name)
	return name
}

// NumSymbols reports allocated symbols, excluding the sentinel.
func (t *Table) NumSymbols() int { return len(t.symbols) - 1 }

// AddMember appends the symbol to the scope in declaration order and
// publishes it in the name map. Duplicates diagnose and the newer symbol
// wins the map slot; imports, forwarding typedefs, and an instance that
// takes the name of a definition do not count as duplicates.
func (t *Table) AddMember(scopeID ScopeID, symID SymbolID) {
	sc := t.Scope(scopeID)
	sym := t.Symbol(symID)
	if sc == nil || sym == nil {
		return
	}

	sym.Parent = scopeID
	sym.DeclOrder = sc.Count
	sc.Count++

	if !sc.First.IsValid() {
		sc.First = symID
	} else {
		t.Symbol(sc.Last).Next = symID
	}
	sc.Last = symID

	if sym.Name == source.NoStringID {
		return
	}
	if prev, exists := sc.NameMap[sym.Name]; exists {
		// Imports may coexist with anything, and a top-level instance is
		// named after its definition; real declarations collide.
		prevSym := t.Symbol(prev)
		if sym.Kind != SymbolExplicitImport && sym.Kind != SymbolWildcardImport &&
			sym.Kind != SymbolForwardingTypedef &&
			(prevSym.Kind != SymbolDefinition || !sym.Kind.IsInstance()) {
			if t.Reporter != nil {
				name, _ := t.Strings.Lookup(sym.Name)
				t.Reporter.Report(diag.SemDuplicateDefinition, diag.SevError, sym.Span,
					fmt.Sprintf("duplicate definition of %q", name),
					[]diag.Note{{Span: prevSym.Span, Msg: "previous definition here"}})
			}
		}
	}
	sc.NameMap[sym.Name] = symID
}

// AddDeferredMembers records a syntax node for lazy expansion.
func (t *Table) AddDeferredMembers(scopeID ScopeID, node syntax.Member) {
	sc := t.Scope(scopeID)
	if sc == nil {
		return
	}
	sc.Deferred = append(sc.Deferred, node)
	if sc.State == Elaborated {
		// New deferred work reopens the scope.
		sc.State = Unelaborated
	}
}

// AddImport attaches an import declaration to the scope.
func (t *Table) AddImport(scopeID ScopeID, imp Import) {
	sc := t.Scope(scopeID)
	if sc == nil {
		return
	}
	sc.Imports = append(sc.Imports, imp)
}

// Drain expands every deferred member of the scope. Safe to call
// repeatedly and reentrancy-safe: while draining, the scope reports state
// Elaborating and nested queries fall back to the materialized prefix.
func (t *Table) Drain(scopeID ScopeID) {
	sc := t.Scope(scopeID)
	if sc == nil || sc.State != Unelaborated {
		return
	}
	sc.State = Elaborating

	// The deferred list may grow while draining; index, don't range.
	for i := 0; i < len(t.Scope(scopeID).Deferred); i++ {
		node := t.Scope(scopeID).Deferred[i]
		if t.Elab != nil {
			t.Elab.ElaborateMember(scopeID, node)
		}
	}

	sc = t.Scope(scopeID)
	sc.Deferred = nil
	sc.State = Elaborated
}

// Find resolves a name in this single scope, draining deferred members
// first. During drainage, recursive calls scan the already-built member
// chain instead of the map, preventing infinite recursion.
func (t *Table) Find(scopeID ScopeID, name string) SymbolID {
	sc := t.Scope(scopeID)
	if sc == nil {
		return NoSymbolID
	}
	nameID := t.Strings.Intern(name)

	switch sc.State {
	case Unelaborated:
		t.Drain(scopeID)
	case Elaborating:
		// Reentrant: walk what exists so far.
		for id := sc.First; id.IsValid(); id = t.Symbol(id).Next {
			if t.Symbol(id).Name == nameID {
				return id
			}
		}
		return NoSymbolID
	case Elaborated:
	}

	if id, ok := t.Scope(scopeID).NameMap[nameID]; ok {
		return id
	}
	return NoSymbolID
}

// Members returns the scope's member IDs in declaration order, draining
// deferred work first.
func (t *Table) Members(scopeID ScopeID) []SymbolID {
	t.Drain(scopeID)
	sc := t.Scope(scopeID)
	if sc == nil {
		return nil
	}
	out := make([]SymbolID, 0, sc.Count)
	for id := sc.First; id.IsValid(); id = t.Symbol(id).Next {
		out = append(out, id)
	}
	return out
}
