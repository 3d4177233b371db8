// Package astjson serializes the elaborated symbol graph to JSON. Each
// symbol becomes an object with name, kind and source range plus
// kind-specific fields; references to other symbols serialize as opaque
// link identifiers rather than re-embedding the target.
package astjson

import (
	"encoding/json"
	"fmt"
	"io"

	"svelab/internal/sema"
	"svelab/internal/symbols"
)

type node = map[string]any

// Serializer walks a compilation's symbol graph.
type Serializer struct {
	comp *sema.Compilation
}

func New(comp *sema.Compilation) *Serializer {
	return &Serializer{comp: comp}
}

// Serialize writes the whole graph rooted at the compilation: packages
// and top-level instances.
func (s *Serializer) Serialize(w io.Writer) error {
	root := node{
		"kind": "root",
	}

	var members []node
	for _, id := range s.comp.Syms.Members(s.comp.RootScope()) {
		members = append(members, s.visit(id))
	}
	root["members"] = members

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(root)
}

// writeLink produces the opaque identifier for a cross-symbol reference.
func (s *Serializer) writeLink(id symbols.SymbolID) string {
	return fmt.Sprintf("sym@%d", id)
}

func (s *Serializer) visit(id symbols.SymbolID) node {
	tbl := s.comp.Syms
	sym := tbl.Symbol(id)
	if sym == nil {
		return node{"kind": "invalid"}
	}

	out := node{
		"id":           s.writeLink(id),
		"name":         tbl.SymbolName(id),
		"kind":         sym.Kind.String(),
		"source_range": sym.Span.String(),
	}

	switch sym.Kind {
	case symbols.SymbolParameter:
		out["type"] = s.typeName(sym)
		out["local"] = sym.IsLocalParam
		out["port"] = sym.IsPortParam
		if val := s.comp.ParameterValue(id); !val.IsError() {
			out["value"] = val.String()
		}

	case symbols.SymbolTypeParameter:
		out["type"] = s.typeName(sym)

	case symbols.SymbolVariable, symbols.SymbolPort:
		out["type"] = s.typeName(sym)

	case symbols.SymbolNet:
		out["type"] = s.typeName(sym)
		if sym.Net != nil {
			out["net_type"] = sym.Net.Name
		}

	case symbols.SymbolEnumValue:
		out["type"] = s.typeName(sym)
		out["value"] = sym.Value.String()

	case symbols.SymbolDefinition:
		if sym.Definition != nil {
			out["definition_kind"] = sym.Definition.Kind.String()
		}

	case symbols.SymbolModuleInstance, symbols.SymbolInterfaceInstance, symbols.SymbolProgramInstance:
		if inst := sym.Instance; inst != nil {
			// Cross reference, not an embedded copy.
			out["definition"] = s.writeLink(s.comp.Syms.Scope(inst.Definition.Scope).Owner)
			out["depth"] = inst.Depth
			if len(inst.ArrayPath) > 0 {
				out["array_path"] = inst.ArrayPath
			}
			var paramLinks []string
			for _, p := range inst.Parameters {
				paramLinks = append(paramLinks, s.writeLink(p))
			}
			if paramLinks != nil {
				out["parameters"] = paramLinks
			}
		}

	case symbols.SymbolInstanceArray:
		if sym.Array != nil {
			out["range"] = sym.Array.Range.String()
		}

	case symbols.SymbolTypeAlias:
		out["type"] = s.typeName(sym)

	case symbols.SymbolModport:
		out["ports"] = sym.ModportPorts
	}

	if sym.OwnScope.IsValid() && sym.Kind != symbols.SymbolDefinition {
		var members []node
		for _, member := range tbl.Members(sym.OwnScope) {
			members = append(members, s.visit(member))
		}
		if members != nil {
			out["members"] = members
		}
	}

	return out
}

func (s *Serializer) typeName(sym *symbols.Symbol) string {
	ty := s.comp.Types.Get(sym.Type)
	if ty == nil {
		return "<error>"
	}
	if ty.Name != "" {
		return ty.Name
	}
	return ty.Kind.String()
}
