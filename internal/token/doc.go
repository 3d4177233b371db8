// Package token defines the SystemVerilog token model: kinds for the
// complete keyword and punctuation sets, literal flags, trivia, and the
// Token value produced by the lexer and consumed by the preprocessor.
package token
