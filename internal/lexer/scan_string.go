package lexer

import (
	"strings"

	"svelab/internal/diag"
	"svelab/internal/token"
)

// scanString handles string literals with the full escape table:
// \n \t \v \f \a \\ \" , octal \NNN (0-255), hex \xHH, and the
// backslash-newline line continuation. An unescaped newline or EOF ends
// the literal with ExpectedClosingQuote.
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening quote

	var value strings.Builder
	terminated := false

scan:
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()

		switch {
		case b == '"':
			lx.cursor.Bump()
			terminated = true
			break scan

		case isNewline(b):
			break scan

		case b == '\\':
			lx.cursor.Bump()
			lx.scanEscape(&value)

		default:
			value.WriteByte(lx.cursor.Bump())
		}
	}

	sp := lx.cursor.SpanFrom(start)
	if !terminated {
		lx.errLex(diag.LexExpectedClosingQuote, sp, "missing closing quote")
	}

	return token.Token{
		Kind:  token.StringLiteral,
		Span:  sp,
		Text:  lx.text(sp),
		Value: value.String(),
	}
}

func (lx *Lexer) scanEscape(value *strings.Builder) {
	if lx.cursor.EOF() {
		return
	}

	escStart := lx.cursor.Mark() - 1
	b := lx.cursor.Peek()

	switch {
	case isNewline(b):
		// Line continuation: the newline disappears from the value.
		lx.cursor.Bump()
		if b == '\r' {
			lx.cursor.Eat('\n')
		}

	case b == 'n':
		lx.cursor.Bump()
		value.WriteByte('\n')
	case b == 't':
		lx.cursor.Bump()
		value.WriteByte('\t')
	case b == 'v':
		lx.cursor.Bump()
		value.WriteByte('\v')
	case b == 'f':
		lx.cursor.Bump()
		value.WriteByte('\f')
	case b == 'a':
		lx.cursor.Bump()
		value.WriteByte('\a')
	case b == '\\':
		lx.cursor.Bump()
		value.WriteByte('\\')
	case b == '"':
		lx.cursor.Bump()
		value.WriteByte('"')

	case isOctal(b):
		var code uint32
		for i := 0; i < 3 && isOctal(lx.cursor.Peek()); i++ {
			code = code*8 + uint32(lx.cursor.Bump()-'0')
		}
		if code > 255 {
			lx.errLex(diag.LexOctalEscapeCodeTooBig, lx.cursor.SpanFrom(escStart),
				"octal escape code is too large")
			return
		}
		value.WriteByte(byte(code))

	case b == 'x':
		lx.cursor.Bump()
		if !isHex(lx.cursor.Peek()) {
			lx.errLex(diag.LexInvalidHexEscapeCode, lx.cursor.SpanFrom(escStart),
				"invalid hexadecimal escape code")
			if !lx.cursor.EOF() && lx.cursor.Peek() != '"' && !isNewline(lx.cursor.Peek()) {
				value.WriteByte(lx.cursor.Bump())
			}
			return
		}
		var code uint32
		for i := 0; i < 2 && isHex(lx.cursor.Peek()); i++ {
			code = code*16 + hexVal(lx.cursor.Bump())
		}
		value.WriteByte(byte(code))

	default:
		lx.errLex(diag.LexUnknownEscapeCode, lx.cursor.SpanFrom(escStart),
			"unknown character escape code")
		value.WriteByte(lx.cursor.Bump())
	}
}

func hexVal(b byte) uint32 {
	switch {
	case isDec(b):
		return uint32(b - '0')
	case b >= 'a' && b <= 'f':
		return uint32(b-'a') + 10
	default:
		return uint32(b-'A') + 10
	}
}
