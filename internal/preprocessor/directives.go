package preprocessor

import (
	"strings"

	"svelab/internal/diag"
	"svelab/internal/token"
)

// handleDirective dispatches one directive token. It returns a token and
// whether that token should be emitted to the consumer; most directives
// are swallowed into trivia and return emit == false.
func (pp *Preprocessor) handleDirective(tok token.Token) (token.Token, bool) {
	switch tok.Directive {
	case token.DirMacroUsage:
		return pp.expandMacroUsage(tok, nil)

	case token.DirDefine:
		pp.handleDefine(tok)
		return token.Token{}, false

	case token.DirUndef:
		name, nameTok, ok := pp.directiveName(tok)
		if ok {
			delete(pp.macros, name)
		}
		pp.stashDirective(tok, nameTok)
		return token.Token{}, false

	case token.DirUndefineAll:
		pp.macros = make(map[string]*Macro)
		pp.stashDirective(tok)
		return token.Token{}, false

	case token.DirIfDef, token.DirIfNDef:
		pp.handleIfDef(tok, tok.Directive == token.DirIfNDef)
		return token.Token{}, false

	case token.DirElsIf, token.DirElse, token.DirEndIf:
		// Reached in active context only; skipInactive consumes these for
		// dead branches.
		pp.handleBranchDirective(tok)
		return token.Token{}, false

	case token.DirInclude:
		return pp.handleInclude(tok)

	case token.DirLine, token.DirPragma, token.DirTimescale:
		rest := pp.restOfLine()
		if tok.Directive == token.DirTimescale {
			var sb strings.Builder
			for _, t := range rest {
				sb.WriteString(t.FullText())
			}
			pp.timescale = strings.TrimSpace(sb.String())
		}
		pp.stashDirective(tok, rest...)
		return token.Token{}, false

	case token.DirResetAll:
		pp.defaultNetType = token.KwWire
		pp.cellDefine = false
		pp.unconnectedDrive = ""
		pp.timescale = ""
		pp.stashDirective(tok)
		return token.Token{}, false

	case token.DirDefaultNetType:
		arg := pp.current().Next()
		switch {
		case arg.Kind.IsKeyword():
			pp.defaultNetType = arg.Kind
		case arg.Kind == token.Identifier && arg.Value == "none":
			pp.defaultNetType = token.KwNull
		default:
			pp.errPP(diag.PPUnknownDirective, arg.Span, "invalid `default_nettype argument")
		}
		pp.stashDirective(tok, arg)
		return token.Token{}, false

	case token.DirBeginKeywords:
		arg := pp.current().Next()
		if arg.Kind == token.StringLiteral {
			pp.keywordsStack = append(pp.keywordsStack, arg.Value)
		}
		pp.stashDirective(tok, arg)
		return token.Token{}, false

	case token.DirEndKeywords:
		if n := len(pp.keywordsStack); n > 0 {
			pp.keywordsStack = pp.keywordsStack[:n-1]
		}
		pp.stashDirective(tok)
		return token.Token{}, false

	case token.DirCellDefine:
		pp.cellDefine = true
		pp.stashDirective(tok)
		return token.Token{}, false

	case token.DirEndCellDefine:
		pp.cellDefine = false
		pp.stashDirective(tok)
		return token.Token{}, false

	case token.DirUnconnectedDrive:
		arg := pp.current().Next()
		pp.unconnectedDrive = arg.ValueText()
		pp.stashDirective(tok, arg)
		return token.Token{}, false

	case token.DirNoUnconnectedDrive:
		pp.unconnectedDrive = ""
		pp.stashDirective(tok)
		return token.Token{}, false

	default:
		// Misplaced ` already got its lexer diagnostic; pass it along.
		return tok, true
	}
}

// directiveName reads the identifier argument of `undef and friends.
// Callers stash the directive trivia whether or not the name parses.
func (pp *Preprocessor) directiveName(_ token.Token) (string, token.Token, bool) {
	nameTok := pp.current().Next()
	if nameTok.Kind != token.Identifier && !nameTok.Kind.IsKeyword() {
		pp.errPP(diag.PPExpectedMacroName, nameTok.Span, "expected macro name")
		return "", nameTok, false
	}
	return nameTok.ValueText(), nameTok, true
}

func (pp *Preprocessor) handleInclude(tok token.Token) (token.Token, bool) {
	lx := pp.current()
	arg := lx.Next()

	var name string
	quoted := false
	argToks := []token.Token{arg}

	switch arg.Kind {
	case token.StringLiteral:
		name = arg.Value
		quoted = true
	case token.Lt:
		var sb strings.Builder
		for {
			t := lx.Next()
			if t.Kind == token.Gt || t.Kind == token.EOF {
				argToks = append(argToks, t)
				break
			}
			sb.WriteString(t.FullText())
			argToks = append(argToks, t)
		}
		name = strings.TrimSpace(sb.String())
	default:
		pp.errPP(diag.PPExpectedIncludeFileName, arg.Span, "expected an include file name")
		pp.stashDirective(tok)
		return arg, true
	}

	if len(pp.lexers) >= pp.opts.MaxIncludeDepth {
		pp.errPP(diag.PPCouldNotOpenIncludeFile, arg.Span, "include depth limit exceeded")
		pp.stashDirective(tok)
		return arg, true
	}

	fromFile := tok.Span.File
	id, ok := pp.fs.ResolveInclude(name, fromFile, quoted)
	if !ok {
		pp.errPP(diag.PPCouldNotOpenIncludeFile, arg.Span, "could not find or open include file")
		// Pass the file name token through so the consumer sees something
		// where the include was.
		pp.stashDirective(tok)
		return arg, true
	}

	pp.stashDirective(tok, argToks...)
	pp.push(id)
	return token.Token{}, false
}

func (pp *Preprocessor) defined(name string) bool {
	_, ok := pp.macros[name]
	return ok
}

func (pp *Preprocessor) parentActive() bool {
	for _, c := range pp.condStack {
		if !c.active {
			return false
		}
	}
	return true
}

func (pp *Preprocessor) handleIfDef(tok token.Token, negate bool) {
	name, nameTok, ok := pp.directiveName(tok)
	if !ok {
		pp.stashDirective(tok, nameTok)
		return
	}
	cond := pp.defined(name)
	if negate {
		cond = !cond
	}
	parent := pp.parentActive()
	pp.stashDirective(tok, nameTok)
	pp.condStack = append(pp.condStack, condState{
		active: parent && cond,
		taken:  cond,
		span:   tok.Span,
	})
	if !(parent && cond) {
		pp.skipInactive()
	}
}

// handleBranchDirective processes `elsif/`else/`endif seen while the
// surrounding branch is active: the branch that was being emitted ends
// here, so everything until `endif is dead.
func (pp *Preprocessor) handleBranchDirective(tok token.Token) {
	if len(pp.condStack) == 0 {
		pp.errPP(diag.PPUnexpectedConditional, tok.Span, "unexpected conditional directive")
		return
	}
	top := &pp.condStack[len(pp.condStack)-1]

	switch tok.Directive {
	case token.DirElsIf:
		_, nameTok, _ := pp.directiveName(tok)
		pp.stashDirective(tok, nameTok)
		if top.sawElse {
			pp.errPP(diag.PPUnexpectedConditional, tok.Span, "`elsif after `else")
		}
		top.active = false
		pp.skipInactive()

	case token.DirElse:
		pp.stashDirective(tok)
		if top.sawElse {
			pp.errPP(diag.PPUnexpectedConditional, tok.Span, "duplicate `else")
		}
		top.sawElse = true
		top.active = false
		pp.skipInactive()

	case token.DirEndIf:
		pp.stashDirective(tok)
		pp.condStack = pp.condStack[:len(pp.condStack)-1]
	}
}

// skipInactive consumes source text while the innermost conditional
// branch is dead, tracking nested conditionals, until a branch becomes
// live or the conditional pops. The skipped text is preserved as trivia.
func (pp *Preprocessor) skipInactive() {
	lx := pp.current()
	depth := 0
	var sb strings.Builder

	flush := func(end token.Token) {
		if sb.Len() == 0 {
			return
		}
		pp.pendingTrivia = append(pp.pendingTrivia, token.Trivia{
			Kind: token.TriviaSkippedText,
			Span: end.Span,
			Text: sb.String(),
		})
		sb.Reset()
	}

	for {
		tok := lx.Next()
		if tok.Kind == token.EOF {
			flush(tok)
			pp.stashTrivia(tok.Leading)
			if len(pp.condStack) > 0 {
				pp.errPP(diag.PPMissingEndIfDirective, pp.condStack[len(pp.condStack)-1].span,
					"missing `endif directive")
				pp.condStack = pp.condStack[:0]
			}
			return
		}

		if tok.Kind == token.Directive {
			switch tok.Directive {
			case token.DirIfDef, token.DirIfNDef:
				depth++
				sb.WriteString(tok.FullText())
				continue

			case token.DirEndIf:
				if depth > 0 {
					depth--
					sb.WriteString(tok.FullText())
					continue
				}
				flush(tok)
				pp.stashDirective(tok)
				pp.condStack = pp.condStack[:len(pp.condStack)-1]
				if !pp.parentActive() {
					// Still inside a dead outer branch.
					pp.skipInactive()
				}
				return

			case token.DirElsIf:
				if depth > 0 {
					sb.WriteString(tok.FullText())
					continue
				}
				top := &pp.condStack[len(pp.condStack)-1]
				name, nameTok, ok := pp.directiveName(tok)
				flush(tok)
				pp.stashDirective(tok, nameTok)
				if !ok {
					continue
				}
				if top.sawElse {
					pp.errPP(diag.PPUnexpectedConditional, tok.Span, "`elsif after `else")
					continue
				}
				cond := pp.defined(name) && !top.taken
				if cond && pp.parentActiveExceptTop() {
					top.active = true
					top.taken = true
					return
				}
				if pp.defined(name) {
					top.taken = true
				}
				continue

			case token.DirElse:
				if depth > 0 {
					sb.WriteString(tok.FullText())
					continue
				}
				top := &pp.condStack[len(pp.condStack)-1]
				flush(tok)
				pp.stashDirective(tok)
				if top.sawElse {
					pp.errPP(diag.PPUnexpectedConditional, tok.Span, "duplicate `else")
					continue
				}
				top.sawElse = true
				if !top.taken && pp.parentActiveExceptTop() {
					top.active = true
					top.taken = true
					return
				}
				continue
			}
		}

		sb.WriteString(tok.FullText())
	}
}

// parentActiveExceptTop reports whether all conditionals except the
// innermost one are live.
func (pp *Preprocessor) parentActiveExceptTop() bool {
	for _, c := range pp.condStack[:len(pp.condStack)-1] {
		if !c.active {
			return false
		}
	}
	return true
}
