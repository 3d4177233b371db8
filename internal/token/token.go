package token

import (
	"strings"

	"svelab/internal/source"
)

// Token is a single source token with its location, raw text and leading
// trivia. Text is the exact source spelling; Value is the semantic string
// (identifier after unescaping, string literal after escape processing).
// Concatenating every token's trivia text plus Text reproduces the source.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Value   string
	Leading []Trivia

	// Numeric literal attributes; meaningful only for numeric kinds.
	Flags NumericFlags
	Num   Number

	// Directive attributes; meaningful only for Kind == Directive.
	Directive DirectiveKind
}

// ValueText returns the semantic text: Value when set, raw Text otherwise.
func (t Token) ValueText() string {
	if t.Value != "" {
		return t.Value
	}
	return t.Text
}

// FullText returns the leading trivia text followed by the token text.
func (t Token) FullText() string {
	if len(t.Leading) == 0 {
		return t.Text
	}
	var sb strings.Builder
	for _, tr := range t.Leading {
		sb.WriteString(tr.Text)
	}
	sb.WriteString(t.Text)
	return sb.String()
}

// FullSpan covers the leading trivia and the token itself.
func (t Token) FullSpan() source.Span {
	sp := t.Span
	for _, tr := range t.Leading {
		sp = sp.Cover(tr.Span)
	}
	return sp
}
