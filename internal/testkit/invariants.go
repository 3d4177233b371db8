// Package testkit carries cross-cutting invariant checks shared by
// package tests: properties that must hold for all inputs rather than
// for one scenario.
package testkit

import (
	"fmt"
	"strings"

	"svelab/internal/source"
	"svelab/internal/symbols"
	"svelab/internal/token"
	"svelab/internal/types"
)

// CheckTokenRoundTrip verifies that concatenating every token's raw text
// (including leading trivia) reproduces the file content byte-for-byte.
func CheckTokenRoundTrip(file *source.File, tokens []token.Token) error {
	if file == nil {
		return fmt.Errorf("nil file")
	}
	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteString(tok.FullText())
	}
	if sb.String() != string(file.Content) {
		return fmt.Errorf("round trip mismatch for %s:\n got: %q\nwant: %q",
			file.Path, sb.String(), string(file.Content))
	}
	return nil
}

// CheckCanonicalIdempotence verifies canonical(canonical(T)) ==
// canonical(T) for every allocated type.
func CheckCanonicalIdempotence(tbl *types.Table) error {
	for id := types.TypeID(1); int(id) <= tbl.Len(); id++ {
		c := tbl.Canonical(id)
		if tbl.Canonical(c) != c {
			return fmt.Errorf("canonical not idempotent for type %d (%s)", id, tbl.Get(id).Kind)
		}
	}
	return nil
}

// CheckLookupStability verifies that two successive finds agree for
// every name visible in the scope.
func CheckLookupStability(tbl *symbols.Table, scope symbols.ScopeID) error {
	for _, id := range tbl.Members(scope) {
		name := tbl.SymbolName(id)
		if name == "" {
			continue
		}
		first := tbl.Find(scope, name)
		second := tbl.Find(scope, name)
		if first != second {
			return fmt.Errorf("lookup of %q unstable: %d then %d", name, first, second)
		}
	}
	return nil
}

// CheckInstanceDepths verifies that no instance in the graph exceeds the
// depth bound and that depth grows monotonically along parent chains.
func CheckInstanceDepths(tbl *symbols.Table, root symbols.ScopeID, maxDepth uint32) error {
	var walk func(scope symbols.ScopeID, parentDepth uint32) error
	walk = func(scope symbols.ScopeID, parentDepth uint32) error {
		for _, id := range tbl.Members(scope) {
			sym := tbl.Symbol(id)
			if sym.Kind.IsInstance() && sym.Instance != nil {
				if sym.Instance.Depth > maxDepth {
					return fmt.Errorf("instance %q depth %d exceeds bound %d",
						tbl.SymbolName(id), sym.Instance.Depth, maxDepth)
				}
				if sym.Instance.Depth < parentDepth {
					return fmt.Errorf("instance %q depth %d below parent depth %d",
						tbl.SymbolName(id), sym.Instance.Depth, parentDepth)
				}
				if err := walk(sym.OwnScope, sym.Instance.Depth); err != nil {
					return err
				}
				continue
			}
			if sym.OwnScope.IsValid() && sym.Kind != symbols.SymbolDefinition {
				if err := walk(sym.OwnScope, parentDepth); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return walk(root, 0)
}
