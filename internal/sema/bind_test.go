package sema_test

import (
	"testing"

	"svelab/internal/diag"
	"svelab/internal/sema"
	"svelab/internal/syntax"
	"svelab/internal/token"
)

func bindCtx(c *sema.Compilation) sema.BindContext {
	return sema.BindContext{Comp: c, Scope: c.RootScope()}
}

func TestBindLiterals(t *testing.T) {
	c := newComp(sema.Options{})
	b := c.Types.Builtins()
	ctx := bindCtx(c)

	e := sema.Bind(intLit(42), ctx)
	if e.Kind != sema.ExprIntegerLiteral || e.Type != b.Int {
		t.Errorf("integer literal: %+v", e)
	}
	if n, ok := e.Val.AsInt64(); !ok || n != 42 {
		t.Errorf("value = %d, %v", n, ok)
	}

	r := sema.Bind(&syntax.RealLiteral{Value: 3.25}, ctx)
	if r.Kind != sema.ExprRealLiteral || r.Type != b.Real || r.Val.Real() != 3.25 {
		t.Errorf("real literal: %+v", r)
	}

	s := sema.Bind(&syntax.StringLiteral{Value: "hi"}, ctx)
	if s.Kind != sema.ExprStringLiteral || s.Type != b.String || s.Val.Str() != "hi" {
		t.Errorf("string literal: %+v", s)
	}

	u := sema.Bind(&syntax.UnbasedUnsizedLiteral{Bit: '1'}, ctx)
	if u.Kind != sema.ExprUnbasedLiteral || u.Type != b.Logic {
		t.Errorf("unbased literal: %+v", u)
	}

	n := sema.Bind(&syntax.NullLiteral{}, ctx)
	if n.Kind != sema.ExprNullLiteral || n.Type != b.Null {
		t.Errorf("null literal: %+v", n)
	}
}

func TestBindArithmeticFolding(t *testing.T) {
	c := newComp(sema.Options{})
	ctx := bindCtx(c)

	tests := []struct {
		op   token.Kind
		l, r uint64
		want int64
	}{
		{token.Plus, 2, 3, 5},
		{token.Minus, 7, 3, 4},
		{token.Star, 6, 7, 42},
		{token.Slash, 42, 6, 7},
		{token.Percent, 17, 5, 2},
		{token.Shl, 1, 4, 16},
		{token.DoubleStar, 2, 10, 1024},
		{token.Lt, 1, 2, 1},
		{token.GtEq, 1, 2, 0},
		{token.DoubleAmp, 1, 0, 0},
		{token.DoubleOr, 1, 0, 1},
	}
	for _, tt := range tests {
		e := sema.Bind(&syntax.BinaryExpr{Op: tt.op, Left: intLit(tt.l), Right: intLit(tt.r)}, ctx)
		if e.IsBad() {
			t.Errorf("%v: unexpectedly bad", tt.op)
			continue
		}
		got, ok := e.Val.AsInt64()
		if !ok || got != tt.want {
			t.Errorf("%v: got %d (ok=%v), want %d", tt.op, got, ok, tt.want)
		}
	}
}

func TestDivideByZero(t *testing.T) {
	c := newComp(sema.Options{})
	ctx := bindCtx(c)

	e := sema.Bind(&syntax.BinaryExpr{Op: token.Slash, Left: intLit(1), Right: intLit(0)}, ctx)
	if !hasCode(c.Diags, diag.BindDivideByZero) {
		t.Error("expected DivideByZero")
	}
	if !e.Val.IsError() {
		t.Error("value should be the error constant")
	}
}

func TestUndeclaredIdentifier(t *testing.T) {
	c := newComp(sema.Options{})
	ctx := bindCtx(c)

	e := sema.Bind(ident("nope"), ctx)
	if !e.IsBad() {
		t.Error("expression should be bad")
	}
	if !hasCode(c.Diags, diag.SemUndeclaredIdentifier) {
		t.Error("expected UndeclaredIdentifier")
	}
	if !c.Types.IsError(e.Type) {
		t.Error("type should be the error type")
	}
}

func TestConditionalFolding(t *testing.T) {
	c := newComp(sema.Options{})
	ctx := bindCtx(c)

	e := sema.Bind(&syntax.ConditionalExpr{
		Cond: intLit(1), Then: intLit(10), Else: intLit(20),
	}, ctx)
	if n, ok := e.Val.AsInt64(); !ok || n != 10 {
		t.Errorf("folded = %d, want 10", n)
	}
}

func TestConcatWidth(t *testing.T) {
	c := newComp(sema.Options{})
	ctx := bindCtx(c)

	e := sema.Bind(&syntax.Concatenation{Operands: []syntax.Expr{intLit(1), intLit(2)}}, ctx)
	if e.IsBad() {
		t.Fatal("concat should bind")
	}
	if got := c.Types.BitWidth(e.Type); got != 64 {
		t.Errorf("concat width = %d, want 64", got)
	}
}

func sysCall(name string, args ...syntax.Expr) *syntax.CallExpr {
	return &syntax.CallExpr{Name: name, IsSystem: true, Args: args}
}

func strLit(s string) *syntax.StringLiteral {
	return &syntax.StringLiteral{Value: s}
}

func TestUnknownSystemName(t *testing.T) {
	c := newComp(sema.Options{})
	e := sema.Bind(sysCall("$nonsense"), bindCtx(c))
	if !e.IsBad() || !hasCode(c.Diags, diag.BindUnknownSystemName) {
		t.Error("expected UnknownSystemName and a bad expression")
	}
}

func TestDisplayFormatChecking(t *testing.T) {
	tests := []struct {
		name string
		call *syntax.CallExpr
		code diag.Code
	}{
		{"ok", sysCall("$display", strLit("%d"), intLit(1)), diag.UnknownCode},
		{"no argument", sysCall("$display", strLit("%d")), diag.BindFormatNoArgument},
		{"too few specs", sysCall("$display", strLit("%d"), intLit(1), intLit(2)), diag.UnknownCode},
		{"mismatched", sysCall("$display", strLit("%d"), strLit("x")), diag.BindFormatMismatchedType},
		{"real to int", sysCall("$display", strLit("%d"), &syntax.RealLiteral{Value: 1.5}), diag.BindFormatRealInt},
		{"unknown spec", sysCall("$display", strLit("%q"), intLit(1)), diag.BindUnknownFormatSpecifier},
		{"empty into spec", sysCall("$display", strLit("%d"), &syntax.EmptyArgument{}), diag.BindFormatEmptyArg},
		{"empty without spec", sysCall("$display", &syntax.EmptyArgument{}), diag.UnknownCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newComp(sema.Options{})
			sema.Bind(tt.call, bindCtx(c))
			if tt.code == diag.UnknownCode {
				for _, d := range c.Diags.Items() {
					if d.Severity >= diag.SevError {
						t.Errorf("unexpected error diagnostics: %v", c.Diags.Items())
						break
					}
				}
			} else if !hasCode(c.Diags, tt.code) {
				t.Errorf("expected %v, got %v", tt.code, c.Diags.Items())
			}
		})
	}
}

func TestStringSpecAcceptsIntegral(t *testing.T) {
	// %s prints integral values as characters, so an int is legal.
	c := newComp(sema.Options{})
	sema.Bind(sysCall("$display", strLit("%s"), intLit(65)), bindCtx(c))
	if c.Diags.HasErrors() {
		t.Errorf("unexpected diagnostics: %v", c.Diags.Items())
	}
}

func TestSformatfChecking(t *testing.T) {
	c := newComp(sema.Options{})
	b := c.Types.Builtins()

	e := sema.Bind(sysCall("$sformatf", strLit("%d"), intLit(5)), bindCtx(c))
	if e.IsBad() || e.Type != b.String {
		t.Errorf("sformatf should return string: %+v", e)
	}

	c2 := newComp(sema.Options{})
	sema.Bind(sysCall("$sformatf", strLit("%d"), intLit(5), intLit(6)), bindCtx(c2))
	if !hasCode(c2.Diags, diag.BindFormatTooManyArgs) {
		t.Error("expected FormatTooManyArgs")
	}

	c3 := newComp(sema.Options{})
	sema.Bind(sysCall("$sformatf", strLit("%d %d"), intLit(5)), bindCtx(c3))
	if !hasCode(c3.Diags, diag.BindFormatNoArgument) {
		t.Error("expected FormatNoArgument")
	}
}

func TestBitsAndClog2(t *testing.T) {
	c := newComp(sema.Options{})
	ctx := bindCtx(c)

	e := sema.Bind(sysCall("$bits", intLit(0)), ctx)
	if n, ok := e.Val.AsInt64(); !ok || n != 32 {
		t.Errorf("$bits(int) = %d, want 32", n)
	}

	e = sema.Bind(sysCall("$clog2", intLit(1024)), ctx)
	if n, ok := e.Val.AsInt64(); !ok || n != 10 {
		t.Errorf("$clog2(1024) = %d, want 10", n)
	}

	e = sema.Bind(sysCall("$clog2", intLit(1025)), ctx)
	if n, _ := e.Val.AsInt64(); n != 11 {
		t.Errorf("$clog2(1025) = %d, want 11", n)
	}

	// Arity violations.
	c2 := newComp(sema.Options{})
	sema.Bind(sysCall("$bits"), bindCtx(c2))
	if !hasCode(c2.Diags, diag.BindTooFewArguments) {
		t.Error("expected TooFewArguments")
	}
	c3 := newComp(sema.Options{})
	sema.Bind(sysCall("$bits", intLit(1), intLit(2)), bindCtx(c3))
	if !hasCode(c3.Diags, diag.BindTooManyArguments) {
		t.Error("expected TooManyArguments")
	}
}

func TestEmptyArgRejectedByStrictSubroutine(t *testing.T) {
	c := newComp(sema.Options{})
	e := sema.Bind(sysCall("$bits", &syntax.EmptyArgument{}), bindCtx(c))
	if !e.IsBad() || !hasCode(c.Diags, diag.BindBadSystemSubroutineArg) {
		t.Error("expected BadSystemSubroutineArg for empty argument")
	}
}

func TestEnumElaboration(t *testing.T) {
	c := newComp(sema.Options{})
	c.AddSyntaxTree([]syntax.Member{
		mod("Top", nil, &syntax.TypedefDecl{
			Name: "state_t",
			Type: &syntax.EnumType{Members: []syntax.EnumMember{
				{Name: "IDLE"},
				{Name: "RUN", Init: intLit(5)},
				{Name: "DONE"},
			}},
		}),
	})
	c.Elaborate()

	if c.Diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", c.Diags.Items())
	}
	topScope := c.Syms.Symbol(c.TopInstances()[0]).OwnScope

	wants := map[string]int64{"IDLE": 0, "RUN": 5, "DONE": 6}
	for name, want := range wants {
		id := c.Syms.Find(topScope, name)
		if !id.IsValid() {
			t.Fatalf("enum member %q not spilled into scope", name)
		}
		got, ok := c.Syms.Symbol(id).Value.AsInt64()
		if !ok || got != want {
			t.Errorf("%s = %d, want %d", name, got, want)
		}
	}
}

func TestEnumDuplicateValues(t *testing.T) {
	c := newComp(sema.Options{})
	c.AddSyntaxTree([]syntax.Member{
		mod("Top", nil, &syntax.TypedefDecl{
			Name: "bad_t",
			Type: &syntax.EnumType{Members: []syntax.EnumMember{
				{Name: "A", Init: intLit(1)},
				{Name: "B", Init: intLit(1)},
			}},
		}),
	})
	c.Elaborate()

	if !hasCode(c.Diags, diag.SemEnumValueDuplicate) {
		t.Error("expected EnumValueDuplicate")
	}
}

func TestPackedStructMemberValidation(t *testing.T) {
	c := newComp(sema.Options{})
	c.AddSyntaxTree([]syntax.Member{
		mod("Top", nil, &syntax.TypedefDecl{
			Name: "bad_t",
			Type: &syntax.StructUnionType{
				Packed: true,
				Members: []syntax.StructMember{
					{Name: "ok", Type: &syntax.IntegerType{Keyword: token.KwLogic}},
					{Name: "bad", Type: &syntax.RealType{Keyword: token.KwReal}},
				},
			},
		}),
	})
	c.Elaborate()

	if !hasCode(c.Diags, diag.SemPackedMemberNotIntegral) {
		t.Error("expected PackedMemberNotIntegral")
	}
}

func TestForwardTypedefMismatch(t *testing.T) {
	c := newComp(sema.Options{})
	c.AddSyntaxTree([]syntax.Member{
		mod("Top", nil,
			&syntax.ForwardTypedefDecl{Name: "t", Category: syntax.ForwardEnum},
			&syntax.TypedefDecl{
				Name: "t",
				Type: &syntax.StructUnionType{
					Packed: true,
					Members: []syntax.StructMember{
						{Name: "f", Type: &syntax.IntegerType{Keyword: token.KwLogic}},
					},
				},
			}),
	})
	c.Elaborate()

	if !hasCode(c.Diags, diag.SemForwardTypedefDoesNotMatch) {
		t.Error("expected ForwardTypedefDoesNotMatch")
	}
}

func TestForwardTypedefMatch(t *testing.T) {
	c := newComp(sema.Options{})
	c.AddSyntaxTree([]syntax.Member{
		mod("Top", nil,
			&syntax.ForwardTypedefDecl{Name: "t", Category: syntax.ForwardEnum},
			&syntax.TypedefDecl{
				Name: "t",
				Type: &syntax.EnumType{Members: []syntax.EnumMember{{Name: "X"}}},
			}),
	})
	c.Elaborate()

	if hasCode(c.Diags, diag.SemForwardTypedefDoesNotMatch) {
		t.Errorf("matching forward typedef should not diagnose: %v", c.Diags.Items())
	}
}

func TestConstantContextRejectsVariables(t *testing.T) {
	c := newComp(sema.Options{})
	c.AddSyntaxTree([]syntax.Member{
		mod("Top", nil,
			&syntax.VarDecl{
				Type:        &syntax.IntegerType{Keyword: token.KwInt},
				Declarators: []syntax.Declarator{{Name: "v"}},
			},
			&syntax.VarDecl{
				Type: &syntax.IntegerType{Keyword: token.KwLogic,
					Dims: []syntax.RangeSyntax{{Left: ident("v"), Right: intLit(0)}}},
				Declarators: []syntax.Declarator{{Name: "w"}},
			}),
	})
	c.Elaborate()

	if !hasCode(c.Diags, diag.BindExpressionNotConstant) {
		t.Errorf("expected ExpressionNotConstant, got %v", c.Diags.Items())
	}
}

func TestDiagnosticDeterminism(t *testing.T) {
	build := func() []diag.Diagnostic {
		c := newComp(sema.Options{})
		c.AddSyntaxTree([]syntax.Member{
			mod("M", []*syntax.ParamDecl{valueParam("A", intLit(1), false)}),
			mod("Top", nil,
				inst("Nope", nil, syntax.HierarchicalInstance{Name: "bad"}),
				inst("M", []syntax.ParamAssignment{{Name: "Z", Expr: intLit(0)}},
					syntax.HierarchicalInstance{Name: "u"}),
			),
		})
		c.Elaborate()
		return c.Diags.Items()
	}

	a := build()
	b := build()
	if len(a) != len(b) {
		t.Fatalf("diagnostic counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Code != b[i].Code || a[i].Primary != b[i].Primary {
			t.Errorf("diagnostic %d differs between runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}
