package lexer

func isDec(b byte) bool {
	return b >= '0' && b <= '9'
}

func isHex(b byte) bool {
	return isDec(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isOctal(b byte) bool {
	return b >= '0' && b <= '7'
}

func isBinary(b byte) bool {
	return b == '0' || b == '1'
}

// isLogicDigit reports whether b is a 4-state digit placeholder.
func isLogicDigit(b byte) bool {
	return b == 'x' || b == 'X' || b == 'z' || b == 'Z' || b == '?'
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentStart(b byte) bool {
	return isAlpha(b) || b == '_'
}

// isIdentContinue matches the tail of a simple identifier; $ is legal
// everywhere but the first character.
func isIdentContinue(b byte) bool {
	return isAlpha(b) || isDec(b) || b == '_' || b == '$'
}

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\v' || b == '\f'
}

func isNewline(b byte) bool {
	return b == '\n' || b == '\r'
}

// isPrintable reports whether a byte may appear in source text outside of
// string literals and comments.
func isPrintable(b byte) bool {
	return b >= 0x20 && b < 0x7F || b == '\t' || b == '\v' || b == '\f' || isNewline(b)
}
