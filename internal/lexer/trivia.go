package lexer

import (
	"svelab/internal/diag"
	"svelab/internal/token"
)

// collectLeadingTrivia gathers the run of trivia before the next
// significant token:
//   - spaces/tabs/\v/\f coalesce into one Whitespace trivia
//   - each \n, \r or \r\n becomes one EndOfLine trivia
//   - // line comments, /* block comments (no nesting in SystemVerilog;
//     a nested /* gets a diagnostic, an unterminated comment runs to EOF)
//   - a byte order mark at offset zero is diagnosed and kept as trivia so
//     round-trips stay byte-exact
func (lx *Lexer) collectLeadingTrivia() {
	lx.hold = lx.hold[:0]

	if lx.cursor.Off == 0 {
		lx.consumeBOM()
	}

	for !lx.cursor.EOF() {
		start := lx.cursor.Mark()
		b := lx.cursor.Peek()

		if isWhitespace(b) {
			for isWhitespace(lx.cursor.Peek()) {
				lx.cursor.Bump()
			}
			lx.pushTrivia(token.TriviaWhitespace, start)
			continue
		}

		if isNewline(b) {
			lx.cursor.Bump()
			if b == '\r' {
				lx.cursor.Eat('\n')
			}
			lx.pushTrivia(token.TriviaEndOfLine, start)
			continue
		}

		if b == '/' {
			if lx.scanComment() {
				continue
			}
		}

		break
	}
}

func (lx *Lexer) pushTrivia(kind token.TriviaKind, start uint32) {
	sp := lx.cursor.SpanFrom(start)
	lx.hold = append(lx.hold, token.Trivia{
		Kind: kind,
		Span: sp,
		Text: lx.text(sp),
	})
}

func (lx *Lexer) consumeBOM() {
	c := lx.cursor
	if c.Peek() == 0xEF && c.PeekAt(1) == 0xBB && c.PeekAt(2) == 0xBF {
		start := lx.cursor.Mark()
		lx.cursor.Bump()
		lx.cursor.Bump()
		lx.cursor.Bump()
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.LexUnicodeBOM, sp, "Unicode byte order mark")
		lx.hold = append(lx.hold, token.Trivia{Kind: token.TriviaWhitespace, Span: sp, Text: lx.text(sp)})
		return
	}
	// UTF-16 BOMs normally disappear during load; if one survives (virtual
	// buffer), diagnose it the same way.
	b0, b1, ok := c.Peek2()
	if ok && ((b0 == 0xFE && b1 == 0xFF) || (b0 == 0xFF && b1 == 0xFE)) {
		start := lx.cursor.Mark()
		lx.cursor.Bump()
		lx.cursor.Bump()
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.LexUnicodeBOM, sp, "Unicode byte order mark")
		lx.hold = append(lx.hold, token.Trivia{Kind: token.TriviaWhitespace, Span: sp, Text: lx.text(sp)})
	}
}

// scanComment handles // and /* */; reports false if the slash starts a
// punctuation token instead.
func (lx *Lexer) scanComment() bool {
	b0, b1, ok := lx.cursor.Peek2()
	if !ok || b0 != '/' {
		return false
	}

	switch b1 {
	case '/':
		start := lx.cursor.Mark()
		lx.cursor.Bump()
		lx.cursor.Bump()
		for !lx.cursor.EOF() && !isNewline(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
		lx.pushTrivia(token.TriviaLineComment, start)
		return true

	case '*':
		start := lx.cursor.Mark()
		lx.cursor.Bump()
		lx.cursor.Bump()
		terminated := false
		for !lx.cursor.EOF() {
			c0, c1, ok2 := lx.cursor.Peek2()
			if ok2 && c0 == '*' && c1 == '/' {
				lx.cursor.Bump()
				lx.cursor.Bump()
				terminated = true
				break
			}
			if ok2 && c0 == '/' && c1 == '*' {
				nestedStart := lx.cursor.Mark()
				lx.cursor.Bump()
				lx.cursor.Bump()
				lx.errLex(diag.LexNestedBlockComment, lx.cursor.SpanFrom(nestedStart),
					"nested block comments are disallowed")
				continue
			}
			lx.cursor.Bump()
		}
		sp := lx.cursor.SpanFrom(start)
		if !terminated {
			lx.errLex(diag.LexUnterminatedBlockComment, sp, "block comment is not terminated")
		}
		lx.hold = append(lx.hold, token.Trivia{
			Kind: token.TriviaBlockComment,
			Span: sp,
			Text: lx.text(sp),
		})
		return true
	}
	return false
}
