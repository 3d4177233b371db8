package sema

import (
	"fmt"

	"svelab/internal/constant"
	"svelab/internal/diag"
	"svelab/internal/source"
	"svelab/internal/symbols"
	"svelab/internal/syntax"
	"svelab/internal/token"
	"svelab/internal/types"
)

// ExprKind discriminates bound expressions.
type ExprKind uint8

const (
	ExprBad ExprKind = iota
	ExprIntegerLiteral
	ExprRealLiteral
	ExprStringLiteral
	ExprUnbasedLiteral
	ExprNullLiteral
	ExprNameRef
	ExprUnary
	ExprBinary
	ExprConditional
	ExprConcat
	ExprElementSelect
	ExprRangeSelect
	ExprMemberAccess
	ExprSystemCall
	ExprEmptyArgument
	ExprConversion
)

// Expression is a bound (typed) expression.
type Expression struct {
	Kind ExprKind
	Type types.TypeID
	Span source.Span
	Bad  bool

	// Val is the folded constant when one is known at bind time.
	Val constant.Value

	Symbol   symbols.SymbolID // ExprNameRef
	Op       token.Kind       // ExprUnary, ExprBinary
	Operands []*Expression
	CallName string // ExprSystemCall
}

// IsBad mirrors the recorded-not-thrown policy: bad expressions flow
// through the binder without cascading diagnostics.
func (e *Expression) IsBad() bool { return e == nil || e.Bad }

// BindFlags adjust name resolution and constant requirements.
type BindFlags uint8

const (
	// BindConstant requires the expression to be compile-time constant.
	BindConstant BindFlags = 1 << iota
	// BindNoHierarchicalNames disallows cross-hierarchy references.
	BindNoHierarchicalNames
	// BindAssignmentAllowed permits assignment operators at top level.
	BindAssignmentAllowed
)

// BindContext carries the environment of one expression bind.
type BindContext struct {
	Comp     *Compilation
	Scope    symbols.ScopeID
	Location symbols.LookupLocation
	Flags    BindFlags
}

func (ctx BindContext) addDiag(code diag.Code, sp source.Span, msg string, notes ...diag.Note) {
	ctx.Comp.addDiag(code, diag.SevError, sp, msg, notes...)
}

func (ctx BindContext) addWarning(code diag.Code, sp source.Span, msg string) {
	ctx.Comp.addDiag(code, diag.SevWarning, sp, msg)
}

// makeNonConst clears the constant requirement and forbids hierarchical
// names, the context used to bind default values of non-constant system
// subroutine arguments.
func makeNonConst(ctx BindContext) BindContext {
	if ctx.Flags&BindConstant != 0 {
		ctx.Flags &^= BindConstant
		ctx.Flags |= BindNoHierarchicalNames
	}
	return ctx
}

func (ctx BindContext) badExpr(sp source.Span) *Expression {
	return &Expression{Kind: ExprBad, Type: ctx.Comp.ErrorType(), Span: sp, Bad: true, Val: constant.Error()}
}

// Bind maps an expression syntax node to a typed bound expression.
// Errors are recorded on the context's compilation; the returned
// expression is marked bad rather than nil.
func Bind(expr syntax.Expr, ctx BindContext) *Expression {
	switch e := expr.(type) {
	case *syntax.IntegerLiteral:
		return bindIntegerLiteral(e, ctx)

	case *syntax.RealLiteral:
		return &Expression{
			Kind: ExprRealLiteral,
			Type: ctx.Comp.Types.Builtins().Real,
			Span: e.Span(),
			Val:  constant.MakeReal(e.Value),
		}

	case *syntax.StringLiteral:
		return &Expression{
			Kind: ExprStringLiteral,
			Type: ctx.Comp.Types.Builtins().String,
			Span: e.Span(),
			Val:  constant.MakeString(e.Value),
		}

	case *syntax.UnbasedUnsizedLiteral:
		return bindUnbasedLiteral(e, ctx)

	case *syntax.NullLiteral:
		return &Expression{
			Kind: ExprNullLiteral,
			Type: ctx.Comp.Types.Builtins().Null,
			Span: e.Span(),
			Val:  constant.Null(),
		}

	case *syntax.IdentifierName:
		return bindName(e, ctx)

	case *syntax.UnaryExpr:
		return bindUnary(e, ctx)

	case *syntax.BinaryExpr:
		return bindBinary(e, ctx)

	case *syntax.ConditionalExpr:
		return bindConditional(e, ctx)

	case *syntax.Concatenation:
		return bindConcat(e, ctx)

	case *syntax.ElementSelect:
		return bindElementSelect(e, ctx)

	case *syntax.RangeSelect:
		return bindRangeSelect(e, ctx)

	case *syntax.MemberAccess:
		return bindMemberAccess(e, ctx)

	case *syntax.CallExpr:
		return bindCall(e, ctx)

	case *syntax.EmptyArgument:
		return &Expression{Kind: ExprEmptyArgument, Type: ctx.Comp.Types.Builtins().Void, Span: e.Span()}

	default:
		return ctx.badExpr(expr.Span())
	}
}

func bindIntegerLiteral(e *syntax.IntegerLiteral, ctx BindContext) *Expression {
	b := ctx.Comp.Types.Builtins()
	ty := b.Int
	width := e.Width
	if width != 0 {
		ty = ctx.Comp.Types.Canonical(
			ctx.Comp.Types.PackedArray(b.Logic, types.ConstantRange{Left: int32(width) - 1, Right: 0})) //nolint:gosec
	}
	sv := constant.SVInt{Width: 32, Signed: true, Bits: e.Value}
	if width != 0 {
		sv = constant.SVInt{Width: width, Signed: e.Flags.IsSigned, Bits: e.Value}
	}
	return &Expression{
		Kind: ExprIntegerLiteral,
		Type: ty,
		Span: e.Span(),
		Val:  constant.MakeSVInt(sv),
	}
}

func bindUnbasedLiteral(e *syntax.UnbasedUnsizedLiteral, ctx BindContext) *Expression {
	b := ctx.Comp.Types.Builtins()
	var val constant.Value
	switch e.Bit {
	case '1':
		val = constant.MakeSVInt(constant.SVInt{Width: 1, Bits: 1})
	case '0':
		val = constant.MakeSVInt(constant.SVInt{Width: 1})
	case 'x':
		val = constant.MakeSVInt(constant.SVInt{Width: 1, Unknown: 1})
	default: // z
		val = constant.MakeSVInt(constant.SVInt{Width: 1, HighZ: 1})
	}
	return &Expression{Kind: ExprUnbasedLiteral, Type: b.Logic, Span: e.Span(), Val: val}
}

func bindName(e *syntax.IdentifierName, ctx BindContext) *Expression {
	scope := ctx.Scope
	name := e.Name

	if e.Package != "" {
		pkgScope, ok := ctx.Comp.packages[e.Package]
		if !ok {
			ctx.addDiag(diag.SemUnknownPackage, e.Span(), fmt.Sprintf("unknown package %q", e.Package))
			return ctx.badExpr(e.Span())
		}
		id := ctx.Comp.Syms.Find(pkgScope, name)
		if !id.IsValid() {
			ctx.addDiag(diag.SemUnknownMember, e.Span(),
				fmt.Sprintf("%q is not a member of package %q", name, e.Package))
			return ctx.badExpr(e.Span())
		}
		return ctx.nameRefFor(id, e.Span())
	}

	res := ctx.Comp.Syms.Lookup(name, ctx.Location, scope, ctx.Comp.packages)
	if !res.Symbol.IsValid() {
		if res.TooLate {
			sym := ctx.Comp.Syms.Symbol(res.TooLateSym)
			ctx.addDiag(diag.SemUsedBeforeDeclared, e.Span(),
				fmt.Sprintf("%q is used before its declaration", name),
				diag.Note{Span: sym.Span, Msg: "declared here"})
		} else {
			ctx.addDiag(diag.SemUndeclaredIdentifier, e.Span(),
				fmt.Sprintf("use of undeclared identifier %q", name))
		}
		return ctx.badExpr(e.Span())
	}
	return ctx.nameRefFor(res.Symbol, e.Span())
}

func (ctx BindContext) nameRefFor(id symbols.SymbolID, sp source.Span) *Expression {
	sym := ctx.Comp.Syms.Symbol(id)

	switch sym.Kind {
	case symbols.SymbolTypeAlias, symbols.SymbolTypeParameter:
		ctx.addDiag(diag.SemTypeIsNotAValue, sp,
			fmt.Sprintf("type name %q used where a value is required", ctx.Comp.Syms.SymbolName(id)))
		return ctx.badExpr(sp)
	}

	result := &Expression{
		Kind:   ExprNameRef,
		Type:   sym.Type,
		Span:   sp,
		Symbol: id,
	}
	if !result.Type.IsValid() {
		result.Type = ctx.Comp.ErrorType()
	}

	switch sym.Kind {
	case symbols.SymbolParameter, symbols.SymbolEnumValue:
		result.Val = ctx.Comp.ParameterValue(id)
	default:
		if ctx.Flags&BindConstant != 0 {
			ctx.addDiag(diag.BindExpressionNotConstant, sp,
				fmt.Sprintf("reference to %s %q is not constant",
					sym.Kind, ctx.Comp.Syms.SymbolName(id)))
			return ctx.badExpr(sp)
		}
	}
	return result
}

func bindUnary(e *syntax.UnaryExpr, ctx BindContext) *Expression {
	operand := Bind(e.Operand, ctx)
	result := &Expression{
		Kind:     ExprUnary,
		Span:     e.Span(),
		Op:       e.Op,
		Operands: []*Expression{operand},
	}
	if operand.IsBad() {
		result.Bad = true
		result.Type = ctx.Comp.ErrorType()
		return result
	}

	switch e.Op {
	case token.Bang, token.Amp, token.Or, token.Xor, token.TildeAmp, token.TildeOr, token.TildeXor, token.XorTilde:
		// Logical/reduction operators produce a single bit.
		result.Type = ctx.Comp.Types.Builtins().Logic
	default:
		result.Type = operand.Type
	}
	result.Val = foldUnary(e.Op, operand, ctx, e.Span())
	return result
}

func bindBinary(e *syntax.BinaryExpr, ctx BindContext) *Expression {
	lhs := Bind(e.Left, ctx)
	rhs := Bind(e.Right, ctx)
	result := &Expression{
		Kind:     ExprBinary,
		Span:     e.Span(),
		Op:       e.Op,
		Operands: []*Expression{lhs, rhs},
	}
	if lhs.IsBad() || rhs.IsBad() {
		result.Bad = true
		result.Type = ctx.Comp.ErrorType()
		return result
	}

	result.Type = binaryResultType(e.Op, lhs, rhs, ctx)
	result.Val = foldBinary(e.Op, lhs, rhs, ctx, e.Span())
	if result.Val.IsError() && isDivision(e.Op) {
		// foldBinary already reported division by zero.
		result.Bad = true
	}
	return result
}

func isDivision(op token.Kind) bool {
	return op == token.Slash || op == token.Percent
}

func binaryResultType(op token.Kind, lhs, rhs *Expression, ctx BindContext) types.TypeID {
	tt := ctx.Comp.Types
	b := tt.Builtins()

	switch op {
	case token.DoubleEquals, token.BangEquals, token.TripleEquals, token.BangDoubleEquals,
		token.EqualsQuestion, token.BangEqualsQuestion, token.Lt, token.LtEq, token.Gt, token.GtEq,
		token.DoubleAmp, token.DoubleOr:
		return b.Logic
	}

	if tt.IsFloating(lhs.Type) || tt.IsFloating(rhs.Type) {
		return b.Real
	}
	// Integral: the wider operand wins; ties prefer the left.
	if tt.BitWidth(rhs.Type) > tt.BitWidth(lhs.Type) {
		return rhs.Type
	}
	return lhs.Type
}

func bindConditional(e *syntax.ConditionalExpr, ctx BindContext) *Expression {
	cond := Bind(e.Cond, ctx)
	thenE := Bind(e.Then, ctx)
	elseE := Bind(e.Else, ctx)
	result := &Expression{
		Kind:     ExprConditional,
		Span:     e.Span(),
		Operands: []*Expression{cond, thenE, elseE},
		Type:     thenE.Type,
	}
	if cond.IsBad() || thenE.IsBad() || elseE.IsBad() {
		result.Bad = true
		result.Type = ctx.Comp.ErrorType()
		return result
	}
	if n, ok := cond.Val.AsInt64(); ok {
		if n != 0 {
			result.Val = thenE.Val
		} else {
			result.Val = elseE.Val
			result.Type = elseE.Type
		}
	}
	return result
}

func bindConcat(e *syntax.Concatenation, ctx BindContext) *Expression {
	result := &Expression{Kind: ExprConcat, Span: e.Span()}
	var width uint32
	bad := false
	for _, opnd := range e.Operands {
		bound := Bind(opnd, ctx)
		result.Operands = append(result.Operands, bound)
		if bound.IsBad() {
			bad = true
			continue
		}
		width += ctx.Comp.Types.BitWidth(bound.Type)
	}
	if bad || width == 0 {
		result.Bad = true
		result.Type = ctx.Comp.ErrorType()
		return result
	}
	b := ctx.Comp.Types.Builtins()
	result.Type = ctx.Comp.Types.Canonical(
		ctx.Comp.Types.PackedArray(b.Logic, types.ConstantRange{Left: int32(width) - 1, Right: 0})) //nolint:gosec
	return result
}

func bindElementSelect(e *syntax.ElementSelect, ctx BindContext) *Expression {
	value := Bind(e.Value, ctx)
	index := Bind(e.Index, ctx)
	result := &Expression{
		Kind:     ExprElementSelect,
		Span:     e.Span(),
		Operands: []*Expression{value, index},
	}
	if value.IsBad() || index.IsBad() {
		result.Bad = true
		result.Type = ctx.Comp.ErrorType()
		return result
	}

	tt := ctx.Comp.Types
	ty := tt.Get(tt.Canonical(value.Type))
	switch ty.Kind {
	case types.KindPackedArray:
		elem := ty.Elem
		if !elem.IsValid() {
			elem = tt.Builtins().Logic
		}
		result.Type = elem
	case types.KindUnpackedArray:
		result.Type = ty.Elem
	default:
		result.Type = tt.Builtins().Logic
	}
	return result
}

func bindRangeSelect(e *syntax.RangeSelect, ctx BindContext) *Expression {
	value := Bind(e.Value, ctx)
	left := Bind(e.Left, ctx)
	right := Bind(e.Right, ctx)
	result := &Expression{
		Kind:     ExprRangeSelect,
		Span:     e.Span(),
		Operands: []*Expression{value, left, right},
	}
	if value.IsBad() || left.IsBad() || right.IsBad() {
		result.Bad = true
		result.Type = ctx.Comp.ErrorType()
		return result
	}

	l, lok := left.Val.AsInt64()
	r, rok := right.Val.AsInt64()
	if !lok || !rok {
		ctx.addDiag(diag.BindExpressionNotConstant, e.Span(), "range select bounds must be constant")
		result.Bad = true
		result.Type = ctx.Comp.ErrorType()
		return result
	}
	b := ctx.Comp.Types.Builtins()
	result.Type = ctx.Comp.Types.Canonical(ctx.Comp.Types.PackedArray(b.Logic,
		types.ConstantRange{Left: int32(l), Right: int32(r)})) //nolint:gosec // bounds checked by width rules
	return result
}

func bindMemberAccess(e *syntax.MemberAccess, ctx BindContext) *Expression {
	value := Bind(e.Value, ctx)
	result := &Expression{
		Kind:     ExprMemberAccess,
		Span:     e.Span(),
		Operands: []*Expression{value},
	}
	if value.IsBad() {
		result.Bad = true
		result.Type = ctx.Comp.ErrorType()
		return result
	}

	tt := ctx.Comp.Types
	ty := tt.Get(tt.Canonical(value.Type))
	for _, f := range ty.Fields {
		if f.Name == e.Member {
			result.Type = f.Type
			return result
		}
	}
	ctx.addDiag(diag.SemUnknownMember, e.Span(),
		fmt.Sprintf("no member %q in type %s", e.Member, ty.Kind))
	result.Bad = true
	result.Type = ctx.Comp.ErrorType()
	return result
}
