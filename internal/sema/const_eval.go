package sema

import (
	"svelab/internal/constant"
	"svelab/internal/diag"
	"svelab/internal/source"
	"svelab/internal/symbols"
	"svelab/internal/syntax"
	"svelab/internal/token"
	"svelab/internal/types"
)

// foldUnary evaluates a unary operator when the operand is constant.
func foldUnary(op token.Kind, operand *Expression, _ BindContext, _ source.Span) constant.Value {
	if operand.Val.IsReal() {
		v := operand.Val.Real()
		switch op {
		case token.Minus:
			return constant.MakeReal(-v)
		case token.Plus:
			return constant.MakeReal(v)
		case token.Bang:
			if v == 0 {
				return constant.MakeInteger(1)
			}
			return constant.MakeInteger(0)
		}
		return constant.Error()
	}

	n, ok := operand.Val.AsInt64()
	if !ok {
		return constant.Error()
	}
	switch op {
	case token.Minus:
		return constant.MakeInteger(-n)
	case token.Plus:
		return constant.MakeInteger(n)
	case token.Tilde:
		return constant.MakeInteger(^n)
	case token.Bang:
		if n == 0 {
			return constant.MakeInteger(1)
		}
		return constant.MakeInteger(0)
	case token.Amp:
		// Reduction AND of a fully-known value: all ones within width.
		sv := operand.Val.Integer()
		if sv.Width == 0 || sv.Width >= 64 {
			return constant.Error()
		}
		mask := (uint64(1) << sv.Width) - 1
		if sv.Bits&mask == mask {
			return constant.MakeInteger(1)
		}
		return constant.MakeInteger(0)
	case token.Or:
		if n != 0 {
			return constant.MakeInteger(1)
		}
		return constant.MakeInteger(0)
	case token.Xor:
		var bits uint64 = uint64(n) //nolint:gosec // bit counting
		var parity int64
		for bits != 0 {
			parity ^= int64(bits & 1) //nolint:gosec
			bits >>= 1
		}
		return constant.MakeInteger(parity)
	}
	return constant.Error()
}

// foldBinary evaluates a binary operator over constant operands. Division
// by a constant zero is a diagnostic, not a panic.
func foldBinary(op token.Kind, lhs, rhs *Expression, ctx BindContext, sp source.Span) constant.Value {
	if lhs.Val.IsReal() || rhs.Val.IsReal() {
		return foldBinaryReal(op, lhs, rhs, ctx, sp)
	}

	a, aok := lhs.Val.AsInt64()
	b, bok := rhs.Val.AsInt64()
	if !aok || !bok {
		return constant.Error()
	}

	boolVal := func(cond bool) constant.Value {
		if cond {
			return constant.MakeInteger(1)
		}
		return constant.MakeInteger(0)
	}

	switch op {
	case token.Plus:
		return constant.MakeInteger(a + b)
	case token.Minus:
		return constant.MakeInteger(a - b)
	case token.Star:
		return constant.MakeInteger(a * b)
	case token.Slash:
		if b == 0 {
			ctx.addDiag(diag.BindDivideByZero, sp, "division by zero")
			return constant.Error()
		}
		return constant.MakeInteger(a / b)
	case token.Percent:
		if b == 0 {
			ctx.addDiag(diag.BindDivideByZero, sp, "division by zero")
			return constant.Error()
		}
		return constant.MakeInteger(a % b)
	case token.DoubleStar:
		return constant.MakeInteger(ipow(a, b))
	case token.Amp:
		return constant.MakeInteger(a & b)
	case token.Or:
		return constant.MakeInteger(a | b)
	case token.Xor:
		return constant.MakeInteger(a ^ b)
	case token.Shl, token.AShl:
		if b < 0 || b > 63 {
			return constant.MakeInteger(0)
		}
		return constant.MakeInteger(a << uint(b))
	case token.Shr:
		if b < 0 || b > 63 {
			return constant.MakeInteger(0)
		}
		return constant.MakeInteger(int64(uint64(a) >> uint(b))) //nolint:gosec // logical shift
	case token.AShr:
		if b < 0 || b > 63 {
			return constant.MakeInteger(0)
		}
		return constant.MakeInteger(a >> uint(b))
	case token.DoubleEquals, token.TripleEquals:
		return boolVal(a == b)
	case token.BangEquals, token.BangDoubleEquals:
		return boolVal(a != b)
	case token.Lt:
		return boolVal(a < b)
	case token.LtEq:
		return boolVal(a <= b)
	case token.Gt:
		return boolVal(a > b)
	case token.GtEq:
		return boolVal(a >= b)
	case token.DoubleAmp:
		return boolVal(a != 0 && b != 0)
	case token.DoubleOr:
		return boolVal(a != 0 || b != 0)
	}
	return constant.Error()
}

func foldBinaryReal(op token.Kind, lhs, rhs *Expression, ctx BindContext, sp source.Span) constant.Value {
	toReal := func(v constant.Value) (float64, bool) {
		switch {
		case v.IsReal():
			return v.Real(), true
		case v.IsInteger():
			n, ok := v.AsInt64()
			return float64(n), ok
		default:
			return 0, false
		}
	}
	a, aok := toReal(lhs.Val)
	b, bok := toReal(rhs.Val)
	if !aok || !bok {
		return constant.Error()
	}

	boolVal := func(cond bool) constant.Value {
		if cond {
			return constant.MakeInteger(1)
		}
		return constant.MakeInteger(0)
	}

	switch op {
	case token.Plus:
		return constant.MakeReal(a + b)
	case token.Minus:
		return constant.MakeReal(a - b)
	case token.Star:
		return constant.MakeReal(a * b)
	case token.Slash:
		if b == 0 {
			ctx.addDiag(diag.BindDivideByZero, sp, "division by zero")
			return constant.Error()
		}
		return constant.MakeReal(a / b)
	case token.DoubleEquals:
		return boolVal(a == b)
	case token.BangEquals:
		return boolVal(a != b)
	case token.Lt:
		return boolVal(a < b)
	case token.LtEq:
		return boolVal(a <= b)
	case token.Gt:
		return boolVal(a > b)
	case token.GtEq:
		return boolVal(a >= b)
	}
	return constant.Error()
}

func ipow(base, exp int64) int64 {
	if exp < 0 {
		switch base {
		case 1:
			return 1
		case -1:
			if exp%2 == 0 {
				return 1
			}
			return -1
		default:
			return 0
		}
	}
	var result int64 = 1
	for ; exp > 0; exp-- {
		result *= base
	}
	return result
}

// ParameterValue computes (and caches) a parameter or enum value's
// constant. Parameters bind their initializer in their declaring scope
// just before their own declaration point.
func (c *Compilation) ParameterValue(id symbols.SymbolID) constant.Value {
	sym := c.Syms.Symbol(id)
	if sym == nil {
		return constant.Error()
	}
	if !sym.Value.IsError() || sym.InitSyntax == nil {
		return sym.Value
	}

	// A parameter whose initializer leads back to itself is a cycle.
	if c.paramComputing[id] {
		c.addDiag(diag.ElabRecursiveParamDependency, diag.SevError, sym.Span,
			"recursive parameter dependency")
		return constant.Error()
	}
	if c.paramComputing == nil {
		c.paramComputing = make(map[symbols.SymbolID]bool)
	}
	c.paramComputing[id] = true
	defer delete(c.paramComputing, id)

	ctx := BindContext{
		Comp:     c,
		Scope:    sym.Parent,
		Location: c.Syms.Before(id),
		Flags:    BindConstant,
	}
	bound := Bind(sym.InitSyntax, ctx)
	val := bound.Val
	if bound.IsBad() {
		val = constant.Error()
	}
	// Cache so later references don't rebind.
	c.Syms.Symbol(id).Value = val
	return val
}

// EvalDimension evaluates one [left:right] dimension as a constant
// range. Failure is a diagnostic and ok == false; callers synthesize
// error entities rather than crashing.
func (c *Compilation) EvalDimension(rng syntax.RangeSyntax, ctx BindContext) (types.ConstantRange, bool) {
	ctx.Flags |= BindConstant

	left := Bind(rng.Left, ctx)
	right := Bind(rng.Right, ctx)
	if left.IsBad() || right.IsBad() {
		return types.ConstantRange{}, false
	}

	l, lok := left.Val.AsInt64()
	r, rok := right.Val.AsInt64()
	if !lok || !rok {
		c.addDiag(diag.SemDimensionNotConstant, diag.SevError, rng.Sp,
			"dimension is not a constant range")
		return types.ConstantRange{}, false
	}
	if l < -(1<<31) || l >= 1<<31 || r < -(1<<31) || r >= 1<<31 {
		c.addDiag(diag.SemInvalidDimensionRange, diag.SevError, rng.Sp, "dimension bounds out of range")
		return types.ConstantRange{}, false
	}
	return types.ConstantRange{Left: int32(l), Right: int32(r)}, true
}
