package sema

import (
	"fmt"

	"svelab/internal/constant"
	"svelab/internal/diag"
	"svelab/internal/symbols"
	"svelab/internal/syntax"
	"svelab/internal/token"
	"svelab/internal/types"
)

// GetType synthesizes or reuses a Type from a data-type syntax node,
// using the scope for name lookup. This is the compilation's fromSyntax
// entry point; failures produce the error type plus diagnostics.
func (c *Compilation) GetType(dt syntax.DataType, location symbols.LookupLocation, scope symbols.ScopeID) types.TypeID {
	ctx := BindContext{Comp: c, Scope: scope, Location: location, Flags: BindConstant}

	switch t := dt.(type) {
	case nil:
		return c.Types.Builtins().Logic

	case *syntax.ImplicitType:
		base := c.scalarBase(token.KwLogic, t.Signed)
		return c.applyPackedDims(base, t.Dims, ctx)

	case *syntax.IntegerType:
		return c.integerTypeFromSyntax(t, ctx)

	case *syntax.RealType:
		switch t.Keyword {
		case token.KwShortReal:
			return c.Types.Builtins().ShortReal
		case token.KwRealTime:
			return c.Types.Builtins().RealTime
		default:
			return c.Types.Builtins().Real
		}

	case *syntax.NamedType:
		return c.namedTypeFromSyntax(t, scope)

	case *syntax.EnumType:
		return c.enumTypeFromSyntax(t, ctx)

	case *syntax.StructUnionType:
		return c.structTypeFromSyntax(t, ctx)

	default:
		return c.ErrorType()
	}
}

func (c *Compilation) integerTypeFromSyntax(t *syntax.IntegerType, ctx BindContext) types.TypeID {
	b := c.Types.Builtins()

	var base types.TypeID
	switch t.Keyword {
	case token.KwBit, token.KwLogic, token.KwReg:
		base = c.scalarBase(t.Keyword, t.Signed && t.SignedGiven)
	case token.KwByte:
		base = b.Byte
	case token.KwShortInt:
		base = b.ShortInt
	case token.KwInt:
		base = b.Int
	case token.KwLongInt:
		base = b.LongInt
	case token.KwInteger:
		base = b.Integer
	case token.KwTime:
		base = b.Time
	default:
		c.addDiag(diag.SemUndeclaredIdentifier, diag.SevError, t.Span(),
			fmt.Sprintf("unsupported type keyword %q", t.Keyword))
		return c.ErrorType()
	}

	// Explicit signed/unsigned on a predefined int flips signedness.
	if t.SignedGiven {
		ty := *c.Types.Get(base)
		if ty.Kind == types.KindPredefinedInt && ty.Signed != t.Signed {
			ty.Signed = t.Signed
			base = c.Types.Variant(ty)
		}
	}

	return c.applyPackedDims(base, t.Dims, ctx)
}

func (c *Compilation) scalarBase(kw token.Kind, signed bool) types.TypeID {
	b := c.Types.Builtins()
	var base types.TypeID
	switch kw {
	case token.KwBit:
		base = b.Bit
	case token.KwReg:
		base = b.Reg
	default:
		base = b.Logic
	}
	if signed {
		ty := *c.Types.Get(base)
		ty.Signed = true
		ty.Name = ty.Name + " signed"
		return c.Types.Variant(ty)
	}
	return base
}

// applyPackedDims folds packed dimensions over a base type, innermost
// last, validating that the element is integral.
func (c *Compilation) applyPackedDims(base types.TypeID, dims []syntax.RangeSyntax, ctx BindContext) types.TypeID {
	result := base
	for i := len(dims) - 1; i >= 0; i-- {
		rng, ok := c.EvalDimension(dims[i], ctx)
		if !ok {
			return c.ErrorType()
		}
		if !c.Types.IsIntegral(result) {
			c.addDiag(diag.SemPackedMemberNotIntegral, diag.SevError, dims[i].Sp,
				"packed dimension requires an integral element type")
			return c.ErrorType()
		}
		result = c.Types.PackedArray(result, rng)
	}
	return result
}

func (c *Compilation) namedTypeFromSyntax(t *syntax.NamedType, scope symbols.ScopeID) types.TypeID {
	var symID symbols.SymbolID
	if t.Package != "" {
		pkgScope, ok := c.packages[t.Package]
		if !ok {
			c.addDiag(diag.SemUnknownPackage, diag.SevError, t.Span(),
				fmt.Sprintf("unknown package %q", t.Package))
			return c.ErrorType()
		}
		symID = c.Syms.Find(pkgScope, t.Name)
	} else {
		res := c.Syms.Lookup(t.Name, symbols.LookupLocation{}, scope, c.packages)
		symID = res.Symbol
	}

	if !symID.IsValid() {
		c.addDiag(diag.SemUndeclaredIdentifier, diag.SevError, t.Span(),
			fmt.Sprintf("use of undeclared identifier %q", t.Name))
		return c.ErrorType()
	}

	sym := c.Syms.Symbol(symID)
	switch sym.Kind {
	case symbols.SymbolTypeAlias, symbols.SymbolTypeParameter:
		if sym.Type.IsValid() {
			return sym.Type
		}
		return c.ErrorType()
	default:
		c.addDiag(diag.SemUnknownMember, diag.SevError, t.Span(),
			fmt.Sprintf("%q is a %s, not a type", t.Name, sym.Kind))
		return c.ErrorType()
	}
}

// enumTypeFromSyntax binds each value's initializer in the context of
// the previous value's implicit prev+1 default and validates uniqueness.
// Enum members spill into the enclosing scope as EnumValue symbols.
func (c *Compilation) enumTypeFromSyntax(t *syntax.EnumType, ctx BindContext) types.TypeID {
	base := c.Types.Builtins().Int
	if t.BaseType != nil {
		base = c.GetType(t.BaseType, ctx.Location, ctx.Scope)
		if !c.Types.IsIntegral(base) {
			if !c.Types.IsError(base) {
				c.addDiag(diag.SemInvalidEnumBase, diag.SevError, t.BaseType.Span(),
					"enum base type must be integral")
			}
			base = c.ErrorType()
		}
	}

	var values []types.EnumValue
	seen := make(map[int64]string)
	next := int64(0)

	for _, m := range t.Members {
		val := next
		if m.Init != nil {
			bound := Bind(m.Init, ctx)
			if n, ok := bound.Val.AsInt64(); ok {
				val = n
			} else if !bound.IsBad() {
				c.addDiag(diag.BindExpressionNotConstant, diag.SevError, m.Init.Span(),
					"enum value initializer is not constant")
			}
		}

		if prev, dup := seen[val]; dup {
			c.addDiag(diag.SemEnumValueDuplicate, diag.SevError, m.Sp,
				fmt.Sprintf("enum value %d duplicates %q", val, prev))
		}
		seen[val] = m.Name
		values = append(values, types.EnumValue{Name: m.Name, Value: val})
		next = val + 1
	}

	enumID := c.Types.Enum("", base, values)

	// Spill the members into the enclosing scope.
	for _, v := range values {
		sym := c.Syms.NewSymbol(&symbols.Symbol{
			Kind:  symbols.SymbolEnumValue,
			Name:  c.Syms.Strings.Intern(v.Name),
			Span:  t.Span(),
			Type:  enumID,
			Value: constant.MakeInteger(v.Value),
		})
		c.Syms.AddMember(ctx.Scope, sym)
	}

	return enumID
}

// structTypeFromSyntax validates that packed composites contain only
// integral members; width accumulation happens in the type table.
func (c *Compilation) structTypeFromSyntax(t *syntax.StructUnionType, ctx BindContext) types.TypeID {
	var fields []types.Field
	for _, m := range t.Members {
		fieldType := c.GetType(m.Type, ctx.Location, ctx.Scope)
		if t.Packed && !c.Types.IsIntegral(fieldType) && !c.Types.IsError(fieldType) {
			c.addDiag(diag.SemPackedMemberNotIntegral, diag.SevError, m.Sp,
				fmt.Sprintf("packed member %q must be of integral type", m.Name))
			fieldType = c.ErrorType()
		}
		fields = append(fields, types.Field{Name: m.Name, Type: fieldType})
	}

	switch {
	case t.Packed && t.IsUnion:
		return c.Types.PackedUnion("", fields, t.Signed)
	case t.Packed:
		return c.Types.PackedStruct("", fields, t.Signed)
	case t.IsUnion:
		return c.Types.UnpackedUnion("", fields)
	default:
		return c.Types.UnpackedStruct("", fields)
	}
}

// applyUnpackedDims wraps a type in unpacked array dimensions.
func (c *Compilation) applyUnpackedDims(base types.TypeID, dims []syntax.RangeSyntax, ctx BindContext) types.TypeID {
	result := base
	for i := len(dims) - 1; i >= 0; i-- {
		rng, ok := c.EvalDimension(dims[i], ctx)
		if !ok {
			return c.ErrorType()
		}
		result = c.Types.UnpackedArray(result, rng)
	}
	return result
}
