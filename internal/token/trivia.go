package token

import "svelab/internal/source"

// TriviaKind classifies the non-token source text attached to tokens.
type TriviaKind uint8

const (
	TriviaWhitespace TriviaKind = iota
	TriviaEndOfLine
	TriviaLineComment
	TriviaBlockComment
	// TriviaDirective carries a consumed preprocessor directive (and, for
	// `define, its entire body) so that raw round-trips still see it.
	TriviaDirective
	// TriviaSkippedText carries source excluded by a false `ifdef branch.
	TriviaSkippedText
)

func (k TriviaKind) String() string {
	switch k {
	case TriviaWhitespace:
		return "Whitespace"
	case TriviaEndOfLine:
		return "EndOfLine"
	case TriviaLineComment:
		return "LineComment"
	case TriviaBlockComment:
		return "BlockComment"
	case TriviaDirective:
		return "Directive"
	case TriviaSkippedText:
		return "SkippedText"
	}
	return "Trivia(?)"
}

// Trivia is one piece of leading trivia: whitespace, a comment, a line
// ending, or a swallowed directive. Text is the exact source excerpt.
type Trivia struct {
	Kind TriviaKind
	Span source.Span
	Text string
}
