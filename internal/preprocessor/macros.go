package preprocessor

import (
	"strings"

	"svelab/internal/diag"
	"svelab/internal/lexer"
	"svelab/internal/source"
	"svelab/internal/token"
)

// handleDefine parses `define NAME[(formals)] body-to-end-of-line.
func (pp *Preprocessor) handleDefine(dir token.Token) {
	lx := pp.current()
	lx.SetMacroMode(true)
	defer lx.SetMacroMode(false)

	nameTok := lx.Next()
	if nameTok.Kind != token.Identifier && !nameTok.Kind.IsKeyword() {
		pp.errPP(diag.PPExpectedMacroName, nameTok.Span, "expected macro name")
		pp.stashDirective(dir, nameTok)
		return
	}
	name := nameTok.ValueText()

	consumed := []token.Token{nameTok}
	m := &Macro{Name: name, Span: dir.Span.Cover(nameTok.Span)}

	// A formal list only exists when the paren hugs the name; with a space
	// between, the paren is part of the body.
	if lx.Peek().Kind == token.LParen && lx.Peek().Span.Start == nameTok.Span.End {
		m.HasFormals = true
		open := lx.Next()
		consumed = append(consumed, open)
		for {
			t := lx.Next()
			consumed = append(consumed, t)
			switch t.Kind {
			case token.Identifier:
				m.Formals = append(m.Formals, t.ValueText())
			case token.Comma:
			case token.RParen, token.EOF:
				goto formalsDone
			default:
				pp.errPP(diag.PPExpectedMacroName, t.Span, "expected macro formal argument")
			}
		}
	formalsDone:
	}

	// Body: rest of line, honoring continuations.
	for {
		peeked := lx.Peek()
		if peeked.Kind == token.EOF || startsNewLine(peeked) {
			break
		}
		t := lx.Next()
		consumed = append(consumed, t)
		if t.Kind == token.LineContinuation {
			continue
		}
		m.Body = append(m.Body, t)
	}

	if prev, exists := pp.macros[name]; exists {
		if pp.opts.Reporter != nil {
			pp.opts.Reporter.Report(diag.SemRedefinition, diag.SevWarning, nameTok.Span,
				"macro redefined", []diag.Note{{Span: prev.Span, Msg: "previous definition here"}})
		}
	}
	pp.macros[name] = m
	pp.stashDirective(dir, consumed...)
}

// nextRaw pops from the expansion queue if possible, falling back to the
// live lexer. Used when collecting macro call arguments, which may come
// from an enclosing expansion.
func (pp *Preprocessor) nextRaw() (token.Token, []string) {
	if len(pp.expansion) > 0 {
		e := pp.expansion[0]
		pp.expansion = pp.expansion[1:]
		return e.tok, e.stack
	}
	return pp.current().Next(), nil
}

// expandMacroUsage handles a `NAME reference. The stack carries the names
// of macros whose expansions produced this token; re-entering one of them
// diagnoses the recursion and passes the reference through literally.
func (pp *Preprocessor) expandMacroUsage(tok token.Token, stack []string) (token.Token, bool) {
	name := tok.ValueText()

	m, ok := pp.macros[name]
	if !ok {
		pp.errPP(diag.PPUnknownDirective, tok.Span, "unknown macro or compiler directive `"+name)
		return tok, true
	}

	for _, on := range stack {
		if on == name {
			pp.errPP(diag.PPRecursiveMacro, tok.Span, "recursive macro expansion of `"+name)
			return tok, true
		}
	}
	if len(stack) >= pp.opts.MaxMacroDepth {
		pp.errPP(diag.PPExceededMaxMacroDepth, tok.Span, "exceeded maximum macro expansion depth")
		return tok, true
	}

	var args [][]token.Token
	var argToks []token.Token
	if m.HasFormals {
		open, _ := pp.nextRaw()
		if open.Kind != token.LParen {
			pp.errPP(diag.PPExpectedMacroArgs, open.Span, "expected macro argument list")
			// Deliver the unexpected token after the passthrough reference.
			pp.expansion = append([]expEntry{{tok: open, stack: stack}}, pp.expansion...)
			return tok, true
		}
		argToks = append(argToks, open)
		args, argToks = pp.collectMacroArgs(argToks, stack)
		if len(args) != len(m.Formals) {
			// A single empty argument also satisfies zero formals.
			if !(len(m.Formals) == 0 && len(args) == 1 && len(args[0]) == 0) {
				pp.errPP(diag.PPMacroArgCountMismatch, tok.Span, "wrong number of macro arguments")
			}
		}
	}

	pp.stashDirective(tok, argToks...)

	expanded := substituteBody(m, args)
	newStack := append(append([]string(nil), stack...), name)

	entries := make([]expEntry, 0, len(expanded))
	for _, et := range expanded {
		entries = append(entries, expEntry{tok: et, stack: newStack})
	}
	pp.expansion = append(entries, pp.expansion...)
	return token.Token{}, false
}

// collectMacroArgs reads balanced argument text until the closing paren.
// Top-level commas separate arguments; parens, brackets and braces nest.
func (pp *Preprocessor) collectMacroArgs(consumed []token.Token, stack []string) ([][]token.Token, []token.Token) {
	var args [][]token.Token
	var cur []token.Token
	depth := 0

	for {
		t, _ := pp.nextRaw()
		if t.Kind == token.EOF {
			pp.errPP(diag.PPExpectedMacroArgs, t.Span, "unterminated macro argument list")
			args = append(args, cur)
			return args, consumed
		}
		consumed = append(consumed, t)

		switch t.Kind {
		case token.LParen, token.LBracket, token.LBrace:
			depth++
			cur = append(cur, t)
		case token.RBracket, token.RBrace:
			depth--
			cur = append(cur, t)
		case token.RParen:
			if depth == 0 {
				args = append(args, cur)
				return args, consumed
			}
			depth--
			cur = append(cur, t)
		case token.Comma:
			if depth == 0 {
				args = append(args, cur)
				cur = nil
			} else {
				cur = append(cur, t)
			}
		default:
			cur = append(cur, t)
		}
	}
}

// substituteBody replaces formal references in the body with argument
// tokens and resolves the `" and `` macro operators.
func substituteBody(m *Macro, args [][]token.Token) []token.Token {
	formalIndex := make(map[string]int, len(m.Formals))
	for i, f := range m.Formals {
		formalIndex[f] = i
	}

	var out []token.Token
	stringify := false
	var strParts []string
	var strSpan source.Span

	flushToken := func(t token.Token) {
		if stringify {
			strParts = append(strParts, t.Text)
			strSpan = strSpan.Cover(t.Span)
			return
		}
		out = append(out, t)
	}

	for i := 0; i < len(m.Body); i++ {
		t := m.Body[i]

		switch t.Kind {
		case token.MacroQuote:
			if !stringify {
				stringify = true
				strParts = nil
				strSpan = t.Span
			} else {
				stringify = false
				value := strings.Join(strParts, "")
				out = append(out, token.Token{
					Kind:  token.StringLiteral,
					Span:  strSpan,
					Text:  "\"" + value + "\"",
					Value: value,
				})
			}
			continue

		case token.MacroEscapedQuote:
			flushToken(token.Token{Kind: token.StringLiteral, Span: t.Span, Text: "\"", Value: "\""})
			continue

		case token.MacroPaste:
			// Join the previous emitted token with the next body token
			// (after formal substitution) and re-lex the splice.
			if len(out) == 0 || i+1 >= len(m.Body) {
				continue
			}
			next := m.Body[i+1]
			i++
			nextToks := []token.Token{next}
			if next.Kind == token.Identifier {
				if idx, ok := formalIndex[next.ValueText()]; ok && idx < len(args) {
					nextToks = args[idx]
				}
			}
			prev := out[len(out)-1]
			out = out[:len(out)-1]
			var sb strings.Builder
			sb.WriteString(prev.Text)
			for _, nt := range nextToks {
				sb.WriteString(nt.Text)
			}
			out = append(out, relex(sb.String(), prev.Span)...)
			continue
		}

		if t.Kind == token.Identifier {
			if idx, ok := formalIndex[t.ValueText()]; ok {
				if idx < len(args) {
					for j, at := range args[idx] {
						if j == 0 {
							// The reference's leading trivia replaces the
							// argument's, keeping body spacing intact.
							at.Leading = t.Leading
						}
						flushToken(at)
					}
				}
				continue
			}
		}

		flushToken(t)
	}

	return out
}

// relex re-scans pasted text so that `` produces real tokens.
func relex(text string, near source.Span) []token.Token {
	fs := source.NewFileSet()
	id := fs.AddVirtual("<paste>", []byte(text))
	lx := lexer.New(fs.Get(id), lexer.Options{})
	var toks []token.Token
	for {
		t := lx.Next()
		if t.Kind == token.EOF {
			return toks
		}
		// Keep the paste site's location for diagnostics.
		t.Span = near
		toks = append(toks, t)
	}
}
