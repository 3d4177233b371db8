// Package preprocessor consumes lexer tokens and emits the filtered
// stream the parser sees: directives handled, macros expanded, false
// conditional branches skipped, include files spliced in.
//
// Every consumed directive survives as TriviaDirective text attached to
// the next emitted token, so concatenating the output stream's raw text
// still reproduces the original source (modulo expanded macro bodies,
// which carry their own spans into the expansion).
package preprocessor
