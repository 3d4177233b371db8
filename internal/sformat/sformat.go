// Package sformat parses $display-style format strings into the list of
// argument specifiers the binder checks call arguments against.
package sformat

import (
	"fmt"

	"svelab/internal/source"
)

// ArgKind is the class of value a format specifier consumes.
type ArgKind uint8

const (
	// ArgNone consumes nothing (%m, %l, %%).
	ArgNone ArgKind = iota
	// ArgInteger is %d/%o/%h/%x/%b and friends.
	ArgInteger
	// ArgFloat is %e/%f/%g.
	ArgFloat
	// ArgTime is %t, accepting any numeric value.
	ArgTime
	// ArgChar is %c.
	ArgChar
	// ArgString is %s.
	ArgString
	// ArgNet is %v, the net strength specifier.
	ArgNet
	// ArgPattern is %p, accepting any value.
	ArgPattern
)

func (k ArgKind) String() string {
	switch k {
	case ArgNone:
		return "none"
	case ArgInteger:
		return "integer"
	case ArgFloat:
		return "float"
	case ArgTime:
		return "time"
	case ArgChar:
		return "char"
	case ArgString:
		return "string"
	case ArgNet:
		return "net"
	case ArgPattern:
		return "pattern"
	}
	return "?"
}

// Spec is one parsed format specifier.
type Spec struct {
	Kind ArgKind
	// Text is the raw specifier spelling, e.g. "%0d".
	Text string
	// Range locates the specifier within the source string literal.
	Range source.Span
}

// ParseError describes a malformed specifier.
type ParseError struct {
	Message string
	Range   source.Span
}

func (e ParseError) Error() string { return e.Message }

func classify(b byte) (ArgKind, bool) {
	switch b {
	case 'd', 'D', 'o', 'O', 'h', 'H', 'x', 'X', 'b', 'B', 'u', 'U', 'z', 'Z':
		return ArgInteger, true
	case 'e', 'E', 'f', 'F', 'g', 'G':
		return ArgFloat, true
	case 't', 'T':
		return ArgTime, true
	case 'c', 'C':
		return ArgChar, true
	case 's', 'S':
		return ArgString, true
	case 'v', 'V':
		return ArgNet, true
	case 'p', 'P':
		return ArgPattern, true
	case 'm', 'M', 'l', 'L', '%':
		return ArgNone, true
	}
	return ArgNone, false
}

// Parse walks the format text and collects the specifiers that consume
// arguments. start is the source offset of the text's first byte, used to
// attribute errors to exact positions inside the literal.
func Parse(text string, start source.Span) ([]Spec, []ParseError) {
	var specs []Spec
	var errs []ParseError

	at := func(i, n int) source.Span {
		sp := start
		sp.Start = start.Start + uint32(i)         //nolint:gosec // literal lengths are small
		sp.End = sp.Start + uint32(n)              //nolint:gosec
		return sp
	}

	for i := 0; i < len(text); i++ {
		if text[i] != '%' {
			continue
		}
		j := i + 1
		// Width/precision digits: %0d, %5.2f ...
		for j < len(text) && (text[j] == '-' || text[j] == '.' || (text[j] >= '0' && text[j] <= '9')) {
			j++
		}
		if j >= len(text) {
			errs = append(errs, ParseError{
				Message: "format string ends with a bare '%'",
				Range:   at(i, j-i),
			})
			break
		}

		kind, ok := classify(text[j])
		if !ok {
			errs = append(errs, ParseError{
				Message: fmt.Sprintf("unknown format specifier '%%%c'", text[j]),
				Range:   at(i, j-i+1),
			})
			i = j
			continue
		}
		if kind != ArgNone {
			specs = append(specs, Spec{
				Kind:  kind,
				Text:  text[i : j+1],
				Range: at(i, j-i+1),
			})
		}
		i = j
	}

	return specs, errs
}
