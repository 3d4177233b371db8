package lexer

import (
	"svelab/internal/diag"
	"svelab/internal/token"
)

// scanDirective handles the ` marker: a directive or macro usage, or, in
// macro mode, one of the special `" `\" `` tokens.
func (lx *Lexer) scanDirective() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // `

	if lx.macroMode {
		switch lx.cursor.Peek() {
		case '"':
			lx.cursor.Bump()
			sp := lx.cursor.SpanFrom(start)
			return token.Token{Kind: token.MacroQuote, Span: sp, Text: lx.text(sp)}
		case '`':
			lx.cursor.Bump()
			sp := lx.cursor.SpanFrom(start)
			return token.Token{Kind: token.MacroPaste, Span: sp, Text: lx.text(sp)}
		case '\\':
			if lx.cursor.PeekAt(1) == '"' {
				lx.cursor.Bump()
				lx.cursor.Bump()
				sp := lx.cursor.SpanFrom(start)
				return token.Token{Kind: token.MacroEscapedQuote, Span: sp, Text: lx.text(sp)}
			}
		}
	}

	if !isIdentStart(lx.cursor.Peek()) {
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.LexMisplacedDirectiveChar, sp, "expected directive name")
		return token.Token{Kind: token.Directive, Span: sp, Text: lx.text(sp), Directive: token.DirUnknown}
	}

	for isIdentContinue(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	text := lx.text(sp)
	name := text[1:]
	return token.Token{
		Kind:      token.Directive,
		Span:      sp,
		Text:      text,
		Value:     name,
		Directive: token.LookupDirective(name),
	}
}
