package sema

import (
	"fmt"

	"svelab/internal/constant"
	"svelab/internal/diag"
	"svelab/internal/sformat"
	"svelab/internal/source"
	"svelab/internal/syntax"
	"svelab/internal/types"
)

// Args is the bound argument list of a system subroutine call.
type Args = []*Expression

// SubroutineKind distinguishes tasks from functions.
type SubroutineKind uint8

const (
	SubroutineTask SubroutineKind = iota
	SubroutineFunction
)

func (k SubroutineKind) String() string {
	if k == SubroutineTask {
		return "task"
	}
	return "function"
}

// SystemSubroutine is one registered system task or function. The
// generic binder calls AllowEmptyArgument/BindArgument per argument and
// CheckArguments once the list is complete.
type SystemSubroutine interface {
	Name() string
	Kind() SubroutineKind
	AllowEmptyArgument(argIndex int) bool
	BindArgument(argIndex int, ctx BindContext, expr syntax.Expr) *Expression
	CheckArguments(ctx BindContext, args Args, callRange source.Span) types.TypeID
}

// systemSubroutineBase supplies the default behaviors.
type systemSubroutineBase struct {
	name string
	kind SubroutineKind
}

func (s systemSubroutineBase) Name() string             { return s.name }
func (s systemSubroutineBase) Kind() SubroutineKind     { return s.kind }
func (systemSubroutineBase) AllowEmptyArgument(int) bool { return false }

func (systemSubroutineBase) BindArgument(_ int, ctx BindContext, expr syntax.Expr) *Expression {
	return Bind(expr, ctx)
}

// checkArgCount enforces the declared argument bounds. Method calls
// carry their receiver as the first argument, which doesn't count.
func checkArgCount(ctx BindContext, isMethod bool, args Args, callRange source.Span, minArgs, maxArgs int) bool {
	provided := len(args)
	if isMethod && provided > 0 {
		provided--
	}

	if provided < minArgs {
		ctx.addDiag(diag.BindTooFewArguments, callRange,
			fmt.Sprintf("too few arguments: expected at least %d, got %d", minArgs, provided))
		return false
	}
	if provided > maxArgs {
		ctx.addDiag(diag.BindTooManyArguments, args[maxArgs].Span,
			fmt.Sprintf("too many arguments: expected at most %d, got %d", maxArgs, provided))
		return false
	}

	for _, arg := range args {
		if arg.IsBad() {
			return false
		}
	}
	return true
}

// badArg reports an invalid argument type and yields the error type.
func badArg(ctx BindContext, sub SystemSubroutine, arg *Expression) types.TypeID {
	ctx.addDiag(diag.BindBadSystemSubroutineArg, arg.Span,
		fmt.Sprintf("invalid argument type for system %s", sub.Kind()))
	return ctx.Comp.ErrorType()
}

// formatSpecOK pairs a specifier kind with an argument type.
func formatSpecOK(c *Compilation, kind sformat.ArgKind, ty types.TypeID) bool {
	tt := c.Types
	switch kind {
	case sformat.ArgInteger, sformat.ArgChar:
		return tt.IsIntegral(ty)
	case sformat.ArgFloat, sformat.ArgTime:
		return tt.IsIntegral(ty) || tt.IsFloating(ty)
	case sformat.ArgString:
		canon := tt.Get(tt.Canonical(ty))
		return canon.Kind == types.KindString || canon.Kind.IsIntegral()
	case sformat.ArgNet, sformat.ArgPattern:
		return true
	}
	return true
}

// isRealToIntSpec is the warning-grade carve-out: a real value against
// an integer specifier formats with rounding rather than failing.
func isRealToIntSpec(c *Compilation, kind sformat.ArgKind, ty types.TypeID) bool {
	return kind == sformat.ArgInteger && c.Types.IsFloating(ty)
}

// isPrintableWithoutSpec reports whether an aggregate can be written with
// no explicit specifier: byte arrays print as strings, everything else
// needs %p.
func isPrintableWithoutSpec(c *Compilation, ty types.TypeID) bool {
	canon := c.Types.Get(c.Types.Canonical(ty))
	switch canon.Kind {
	case types.KindUnpackedStruct, types.KindUnpackedUnion:
		return false
	case types.KindUnpackedArray:
		elem := c.Types.Get(c.Types.Canonical(canon.Elem))
		return elem.Kind.IsIntegral() && elem.BitWidth == 8
	default:
		return true
	}
}

// checkFormatArgs validates a $display-style argument list, where any
// literal string argument introduces format specifiers consumed by the
// following arguments.
func checkFormatArgs(ctx BindContext, args Args) bool {
	var specs []sformat.Spec
	specIdx := 0

	for _, arg := range args {
		if arg.Kind == ExprEmptyArgument {
			// Empty arguments are fine unless a specifier wants a value.
			if specIdx >= len(specs) {
				continue
			}
			spec := specs[specIdx]
			specIdx++
			ctx.addDiag(diag.BindFormatEmptyArg, arg.Span,
				fmt.Sprintf("empty argument consumed by format specifier '%s'", spec.Text))
			return false
		}
		if arg.IsBad() {
			return false
		}

		if specIdx >= len(specs) {
			if arg.Kind == ExprStringLiteral {
				specs = specs[:0]
				specIdx = 0
				parsed, errs := sformat.Parse(arg.Val.Str(), arg.Span)
				if len(errs) > 0 {
					for _, e := range errs {
						ctx.addDiag(diag.BindUnknownFormatSpecifier, e.Range, e.Message)
					}
					return false
				}
				specs = parsed
			} else if !isPrintableWithoutSpec(ctx.Comp, arg.Type) {
				ctx.addDiag(diag.BindFormatUnspecifiedType, arg.Span,
					"aggregate cannot be formatted without a specifier")
				return false
			}
			continue
		}

		spec := specs[specIdx]
		specIdx++
		if !formatSpecOK(ctx.Comp, spec.Kind, arg.Type) {
			if isRealToIntSpec(ctx.Comp, spec.Kind, arg.Type) {
				ctx.addWarning(diag.BindFormatRealInt, arg.Span,
					fmt.Sprintf("real value passed to integer format specifier '%s'", spec.Text))
			} else {
				ctx.addDiag(diag.BindFormatMismatchedType, arg.Span,
					fmt.Sprintf("argument type does not match format specifier '%s'", spec.Text))
				return false
			}
		}
	}

	ok := true
	for ; specIdx < len(specs); specIdx++ {
		ctx.addDiag(diag.BindFormatNoArgument, specs[specIdx].Range,
			fmt.Sprintf("no argument for format specifier '%s'", specs[specIdx].Text))
		ok = false
	}
	return ok
}

// checkFormatValues validates a $sformatf-style call where the first
// argument is the format string and the rest must satisfy it exactly.
func checkFormatValues(ctx BindContext, args Args) bool {
	if len(args) == 0 || args[0].Kind != ExprStringLiteral {
		// Unknown until runtime.
		return true
	}

	specs, errs := sformat.Parse(args[0].Val.Str(), args[0].Span)
	if len(errs) > 0 {
		for _, e := range errs {
			ctx.addDiag(diag.BindUnknownFormatSpecifier, e.Range, e.Message)
		}
		return false
	}

	ok := true
	argIndex := 1
	for _, spec := range specs {
		if argIndex >= len(args) {
			ctx.addDiag(diag.BindFormatNoArgument, spec.Range,
				fmt.Sprintf("no argument for format specifier '%s'", spec.Text))
			ok = false
			continue
		}
		arg := args[argIndex]
		argIndex++

		if !formatSpecOK(ctx.Comp, spec.Kind, arg.Type) {
			if isRealToIntSpec(ctx.Comp, spec.Kind, arg.Type) {
				ctx.addWarning(diag.BindFormatRealInt, arg.Span,
					fmt.Sprintf("real value passed to integer format specifier '%s'", spec.Text))
			} else {
				ctx.addDiag(diag.BindFormatMismatchedType, arg.Span,
					fmt.Sprintf("argument type does not match format specifier '%s'", spec.Text))
				ok = false
			}
		}
	}

	if argIndex < len(args) {
		ctx.addDiag(diag.BindFormatTooManyArgs, args[argIndex].Span,
			"too many arguments for format string")
		ok = false
	}
	return ok
}

// displayTask is the $display/$write/$error family: any number of
// arguments, format strings checked wherever they appear, empty
// arguments legal between commas.
type displayTask struct {
	systemSubroutineBase
}

func (displayTask) AllowEmptyArgument(int) bool { return true }

func (d displayTask) BindArgument(_ int, ctx BindContext, expr syntax.Expr) *Expression {
	return Bind(expr, makeNonConst(ctx))
}

func (d displayTask) CheckArguments(ctx BindContext, args Args, callRange source.Span) types.TypeID {
	if !checkArgCount(ctx, false, args, callRange, 0, 1<<20) {
		return ctx.Comp.ErrorType()
	}
	if !checkFormatArgs(ctx, args) {
		return ctx.Comp.ErrorType()
	}
	return ctx.Comp.Types.Builtins().Void
}

// sformatfFunc is $sformatf: a fixed format string then its values.
type sformatfFunc struct {
	systemSubroutineBase
}

func (s sformatfFunc) BindArgument(_ int, ctx BindContext, expr syntax.Expr) *Expression {
	return Bind(expr, makeNonConst(ctx))
}

func (s sformatfFunc) CheckArguments(ctx BindContext, args Args, callRange source.Span) types.TypeID {
	if !checkArgCount(ctx, false, args, callRange, 1, 1<<20) {
		return ctx.Comp.ErrorType()
	}
	if !checkFormatValues(ctx, args) {
		return ctx.Comp.ErrorType()
	}
	return ctx.Comp.Types.Builtins().String
}

// bitsFunc is $bits: the width of a type or expression, constant when
// the operand's type is known.
type bitsFunc struct {
	systemSubroutineBase
}

func (b bitsFunc) CheckArguments(ctx BindContext, args Args, callRange source.Span) types.TypeID {
	if !checkArgCount(ctx, false, args, callRange, 1, 1) {
		return ctx.Comp.ErrorType()
	}
	if !ctx.Comp.Types.IsIntegral(args[0].Type) && !ctx.Comp.Types.IsFloating(args[0].Type) {
		return badArg(ctx, b, args[0])
	}
	return ctx.Comp.Types.Builtins().Int
}

// clog2Func is $clog2.
type clog2Func struct {
	systemSubroutineBase
}

func (f clog2Func) CheckArguments(ctx BindContext, args Args, callRange source.Span) types.TypeID {
	if !checkArgCount(ctx, false, args, callRange, 1, 1) {
		return ctx.Comp.ErrorType()
	}
	if !ctx.Comp.Types.IsIntegral(args[0].Type) {
		return badArg(ctx, f, args[0])
	}
	return ctx.Comp.Types.Builtins().Int
}

// SimpleSystemSubroutine has fixed positional argument types and a fixed
// return type. Arguments bind as r-values against their declared type.
type SimpleSystemSubroutine struct {
	systemSubroutineBase
	requiredArgs  int
	argTypes      []types.TypeID
	returnType    types.TypeID
	allowNonConst bool
	isMethod      bool
}

// NewSimpleSystemSubroutine builds a fixed-signature subroutine.
func NewSimpleSystemSubroutine(name string, kind SubroutineKind, requiredArgs int,
	argTypes []types.TypeID, returnType types.TypeID, allowNonConst, isMethod bool) *SimpleSystemSubroutine {
	return &SimpleSystemSubroutine{
		systemSubroutineBase: systemSubroutineBase{name: name, kind: kind},
		requiredArgs:         requiredArgs,
		argTypes:             argTypes,
		returnType:           returnType,
		allowNonConst:        allowNonConst,
		isMethod:             isMethod,
	}
}

func (s *SimpleSystemSubroutine) BindArgument(argIndex int, ctx BindContext, expr syntax.Expr) *Expression {
	if s.allowNonConst {
		ctx = makeNonConst(ctx)
	}
	bound := Bind(expr, ctx)
	if argIndex < len(s.argTypes) && !bound.IsBad() {
		want := s.argTypes[argIndex]
		if !ctx.Comp.Types.AssignmentCompatible(want, bound.Type) {
			_ = badArg(ctx, s, bound)
			bound.Bad = true
		}
	}
	return bound
}

func (s *SimpleSystemSubroutine) CheckArguments(ctx BindContext, args Args, callRange source.Span) types.TypeID {
	if !checkArgCount(ctx, s.isMethod, args, callRange, s.requiredArgs, len(s.argTypes)) {
		return ctx.Comp.ErrorType()
	}
	return s.returnType
}

// registerBuiltinSubroutines seeds the registry.
func registerBuiltinSubroutines(c *Compilation) {
	add := func(s SystemSubroutine) { c.sysSubs[s.Name()] = s }

	for _, name := range []string{"$display", "$write", "$info", "$warning", "$error", "$fatal", "$monitor", "$strobe"} {
		add(displayTask{systemSubroutineBase{name: name, kind: SubroutineTask}})
	}
	add(sformatfFunc{systemSubroutineBase{name: "$sformatf", kind: SubroutineFunction}})
	add(bitsFunc{systemSubroutineBase{name: "$bits", kind: SubroutineFunction}})
	add(clog2Func{systemSubroutineBase{name: "$clog2", kind: SubroutineFunction}})

	b := c.Types.Builtins()
	add(NewSimpleSystemSubroutine("$time", SubroutineFunction, 0, nil, b.Time, false, false))
	add(NewSimpleSystemSubroutine("$realtime", SubroutineFunction, 0, nil, b.RealTime, false, false))
	add(NewSimpleSystemSubroutine("$itor", SubroutineFunction, 1, []types.TypeID{b.Int}, b.Real, true, false))
	add(NewSimpleSystemSubroutine("$rtoi", SubroutineFunction, 1, []types.TypeID{b.Real}, b.Integer, true, false))
}

// bindCall resolves a call expression. Only system calls have a
// registry here; regular subroutine calls resolve through the scope.
func bindCall(e *syntax.CallExpr, ctx BindContext) *Expression {
	if !e.IsSystem {
		return bindUserCall(e, ctx)
	}

	sub, ok := ctx.Comp.sysSubs[e.Name]
	if !ok {
		ctx.addDiag(diag.BindUnknownSystemName, e.Span(),
			fmt.Sprintf("unknown system task or function %q", e.Name))
		return ctx.badExpr(e.Span())
	}

	result := &Expression{
		Kind:     ExprSystemCall,
		Span:     e.Span(),
		CallName: e.Name,
	}

	var args Args
	for i, argSyntax := range e.Args {
		if _, empty := argSyntax.(*syntax.EmptyArgument); empty {
			if !sub.AllowEmptyArgument(i) {
				ctx.addDiag(diag.BindBadSystemSubroutineArg, argSyntax.Span(),
					fmt.Sprintf("system %s does not accept empty arguments", sub.Kind()))
				return ctx.badExpr(e.Span())
			}
			args = append(args, &Expression{
				Kind: ExprEmptyArgument,
				Type: ctx.Comp.Types.Builtins().Void,
				Span: argSyntax.Span(),
			})
			continue
		}
		args = append(args, sub.BindArgument(i, ctx, argSyntax))
	}

	result.Operands = args
	result.Type = sub.CheckArguments(ctx, args, e.Span())
	if ctx.Comp.Types.IsError(result.Type) {
		result.Bad = true
	}
	result.Val = evalSystemCall(e.Name, args, ctx)
	return result
}

// evalSystemCall folds the constant-evaluable system functions.
func evalSystemCall(name string, args Args, ctx BindContext) constant.Value {
	switch name {
	case "$bits":
		if len(args) == 1 && !args[0].IsBad() {
			return constant.MakeInteger(int64(ctx.Comp.Types.BitWidth(args[0].Type)))
		}
	case "$clog2":
		if len(args) == 1 {
			if n, ok := args[0].Val.AsInt64(); ok && n >= 0 {
				return constant.MakeInteger(clog2(n))
			}
		}
	}
	return constant.Error()
}

func clog2(n int64) int64 {
	if n <= 1 {
		return 0
	}
	var r int64
	v := n - 1
	for v > 0 {
		v >>= 1
		r++
	}
	return r
}

func bindUserCall(e *syntax.CallExpr, ctx BindContext) *Expression {
	res := ctx.Comp.Syms.Lookup(e.Name, ctx.Location, ctx.Scope, ctx.Comp.packages)
	if !res.Symbol.IsValid() {
		ctx.addDiag(diag.SemUndeclaredIdentifier, e.Span(),
			fmt.Sprintf("use of undeclared identifier %q", e.Name))
		return ctx.badExpr(e.Span())
	}
	sym := ctx.Comp.Syms.Symbol(res.Symbol)

	result := &Expression{
		Kind:     ExprSystemCall,
		Span:     e.Span(),
		CallName: e.Name,
		Symbol:   res.Symbol,
		Type:     sym.Type,
	}
	if !result.Type.IsValid() {
		result.Type = ctx.Comp.ErrorType()
	}
	for _, argSyntax := range e.Args {
		result.Operands = append(result.Operands, Bind(argSyntax, makeNonConst(ctx)))
	}
	if ctx.Flags&BindConstant != 0 {
		ctx.addDiag(diag.BindExpressionNotConstant, e.Span(),
			fmt.Sprintf("call to %q is not constant", e.Name))
		result.Bad = true
	}
	return result
}
