package lexer

import (
	"strconv"
	"strings"

	"svelab/internal/diag"
	"svelab/internal/token"
)

// scanNumber handles decimal integers, reals and time literals.
// Vector bases ('h, 'sb, ...) start at an apostrophe and are scanned by
// scanApostrophe; their digits by scanBasedDigits.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()

	for isDec(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
		lx.cursor.Bump()
	}

	isReal := false
	missingFraction := false

	if lx.cursor.Peek() == '.' {
		isReal = true
		lx.cursor.Bump()
		if !isDec(lx.cursor.Peek()) {
			missingFraction = true
		}
		for isDec(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
			lx.cursor.Bump()
		}
	}

	// An exponent only counts if a digit follows the e (and optional
	// sign); otherwise the e starts the next token: 32e_9 lexes as the
	// integer 32 followed by the identifier e_9.
	if b := lx.cursor.Peek(); b == 'e' || b == 'E' {
		expMark := lx.cursor.Mark()
		lx.cursor.Bump()
		if lx.cursor.Peek() == '+' || lx.cursor.Peek() == '-' {
			lx.cursor.Bump()
		}
		if isDec(lx.cursor.Peek()) {
			isReal = true
			for isDec(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
				lx.cursor.Bump()
			}
		} else {
			lx.cursor.Reset(expMark)
		}
	}

	// 1step is the one keyword that begins with a digit.
	if !isReal && lx.text(lx.cursor.SpanFrom(start)) == "1" && lx.peekWord("step") {
		for range "step" {
			lx.cursor.Bump()
		}
		sp := lx.cursor.SpanFrom(start)
		return token.Token{Kind: token.KwOneStep, Span: sp, Text: lx.text(sp), Value: lx.text(sp)}
	}

	// Time unit suffix, only when it isn't the start of a longer
	// identifier: 97ns is a time literal, 97nsec is 97 then nsec.
	if unit, n, ok := lx.peekTimeUnit(); ok {
		for i := uint32(0); i < n; i++ {
			lx.cursor.Bump()
		}
		sp := lx.cursor.SpanFrom(start)
		text := lx.text(sp)
		return token.Token{
			Kind:  token.TimeLiteral,
			Span:  sp,
			Text:  text,
			Flags: token.NumericFlags{Unit: unit},
			Num:   token.Number{Real: parseReal(text[:len(text)-int(n)])},
		}
	}

	sp := lx.cursor.SpanFrom(start)
	text := lx.text(sp)

	if isReal {
		if missingFraction {
			lx.errLex(diag.LexMissingFractionalDigits, sp, "expected fractional digits after '.'")
		}
		return token.Token{
			Kind: token.RealLiteral,
			Span: sp,
			Text: text,
			Num:  token.Number{Real: parseReal(text)},
		}
	}

	return token.Token{
		Kind: token.IntegerLiteral,
		Span: sp,
		Text: text,
		Num:  token.Number{Int: parseDecimal(text)},
	}
}

// peekWord reports whether the given word sits at the cursor and is not
// the prefix of a longer identifier.
func (lx *Lexer) peekWord(word string) bool {
	for i := 0; i < len(word); i++ {
		if lx.cursor.PeekAt(uint32(i)) != word[i] { //nolint:gosec // small fixed words
			return false
		}
	}
	return !isIdentContinue(lx.cursor.PeekAt(uint32(len(word)))) //nolint:gosec
}

// peekTimeUnit recognizes a time suffix at the cursor. Returns the unit
// and its byte length.
func (lx *Lexer) peekTimeUnit() (token.TimeUnit, uint32, bool) {
	b0 := lx.cursor.Peek()
	b1 := lx.cursor.PeekAt(1)

	if b0 == 's' && !isIdentContinue(b1) {
		return token.Seconds, 1, true
	}
	if b1 == 's' && !isIdentContinue(lx.cursor.PeekAt(2)) {
		switch b0 {
		case 'm':
			return token.Milliseconds, 2, true
		case 'u':
			return token.Microseconds, 2, true
		case 'n':
			return token.Nanoseconds, 2, true
		case 'p':
			return token.Picoseconds, 2, true
		case 'f':
			return token.Femtoseconds, 2, true
		}
	}
	return 0, 0, false
}

// scanApostrophe dispatches the ' token: assignment-pattern brace, vector
// base, unbased unsized literal, or the bare apostrophe (casts).
func (lx *Lexer) scanApostrophe() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // '

	b := lx.cursor.Peek()

	if b == '{' {
		lx.cursor.Bump()
		sp := lx.cursor.SpanFrom(start)
		return token.Token{Kind: token.ApostropheLBrace, Span: sp, Text: lx.text(sp)}
	}

	if b == '0' || b == '1' || b == 'x' || b == 'X' || b == 'z' || b == 'Z' {
		// Only a single bit: '01 is '0 followed by 1.
		lx.cursor.Bump()
		sp := lx.cursor.SpanFrom(start)
		bit := b
		if bit == 'X' {
			bit = 'x'
		}
		if bit == 'Z' {
			bit = 'z'
		}
		var val uint64
		if bit == '1' {
			val = 1
		}
		return token.Token{
			Kind: token.UnbasedUnsizedLiteral,
			Span: sp,
			Text: lx.text(sp),
			Num:  token.Number{UnsizedBit: bit, Int: val},
		}
	}

	signed := false
	if b == 's' || b == 'S' {
		signed = true
		lx.cursor.Bump()
		b = lx.cursor.Peek()
	}

	if base, ok := baseForChar(b); ok {
		lx.cursor.Bump()
		sp := lx.cursor.SpanFrom(start)
		lx.pendingBase = true
		lx.pendingFlags = token.NumericFlags{Base: base, IsSigned: signed}
		return token.Token{
			Kind:  token.IntegerBase,
			Span:  sp,
			Text:  lx.text(sp),
			Flags: lx.pendingFlags,
		}
	}

	if signed {
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.LexExpectedIntegerBaseAfterSigned, sp,
			"expected integer base specifier after signed specifier")
		lx.pendingBase = true
		lx.pendingFlags = token.NumericFlags{Base: token.DecimalBase, IsSigned: true}
		return token.Token{
			Kind:  token.IntegerBase,
			Span:  sp,
			Text:  lx.text(sp),
			Flags: lx.pendingFlags,
		}
	}

	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.Apostrophe, Span: sp, Text: lx.text(sp)}
}

func baseForChar(b byte) (token.LiteralBase, bool) {
	switch b {
	case 'b', 'B':
		return token.BinaryBase, true
	case 'o', 'O':
		return token.OctalBase, true
	case 'd', 'D':
		return token.DecimalBase, true
	case 'h', 'H':
		return token.HexBase, true
	}
	return 0, false
}

// scanBasedDigits consumes the digit run after an IntegerBase token,
// in the base recorded by scanApostrophe. Underscores separate; x/z/?
// are 4-state digits (their bit pattern is owned by constant evaluation,
// the lexer only records the spelling).
func (lx *Lexer) scanBasedDigits() token.Token {
	lx.pendingBase = false
	start := lx.cursor.Mark()

	valid := func(b byte) bool {
		if b == '_' || isLogicDigit(b) {
			return true
		}
		switch lx.pendingFlags.Base {
		case token.BinaryBase:
			return isBinary(b)
		case token.OctalBase:
			return isOctal(b)
		case token.DecimalBase:
			return isDec(b)
		case token.HexBase:
			return isHex(b)
		}
		return false
	}

	for valid(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}

	sp := lx.cursor.SpanFrom(start)
	text := lx.text(sp)
	if text == "" {
		lx.errLex(diag.LexMissingVectorDigits, sp, "expected digits after integer base")
		return token.Token{Kind: token.Unknown, Span: sp, Flags: lx.pendingFlags}
	}

	return token.Token{
		Kind:  token.IntegerLiteral,
		Span:  sp,
		Text:  text,
		Flags: lx.pendingFlags,
		Num:   token.Number{Int: parseInBase(text, lx.pendingFlags.Base)},
	}
}

// parseDecimal saturates at the uint64 limit rather than failing.
func parseDecimal(text string) uint64 {
	var v uint64
	for i := 0; i < len(text); i++ {
		b := text[i]
		if b == '_' {
			continue
		}
		d := uint64(b - '0')
		if v > (^uint64(0)-d)/10 {
			return ^uint64(0)
		}
		v = v*10 + d
	}
	return v
}

func parseInBase(text string, base token.LiteralBase) uint64 {
	var radix uint64
	switch base {
	case token.BinaryBase:
		radix = 2
	case token.OctalBase:
		radix = 8
	case token.DecimalBase:
		radix = 10
	case token.HexBase:
		radix = 16
	}

	var v uint64
	for i := 0; i < len(text); i++ {
		b := text[i]
		if b == '_' {
			continue
		}
		var d uint64
		switch {
		case isDec(b):
			d = uint64(b - '0')
		case b >= 'a' && b <= 'f':
			d = uint64(b-'a') + 10
		case b >= 'A' && b <= 'F':
			d = uint64(b-'A') + 10
		default:
			// 4-state digit: value contribution unknown, treat as zero.
			d = 0
		}
		if v > (^uint64(0)-d)/radix {
			return ^uint64(0)
		}
		v = v*radix + d
	}
	return v
}

// parseReal interprets the literal text, stripping digit separators.
// Out-of-range values round to +/-Inf, matching the overflow contract.
func parseReal(text string) float64 {
	clean := strings.ReplaceAll(text, "_", "")
	clean = strings.TrimSuffix(clean, ".")
	// ParseFloat already yields +/-Inf for out-of-range input, which is
	// exactly the overflow contract, so the error is irrelevant here.
	v, _ := strconv.ParseFloat(clean, 64)
	return v
}
