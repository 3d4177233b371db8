package diag

import (
	"svelab/internal/source"
)

// Note is a secondary location attached to a diagnostic, e.g. the
// declaration a duplicate collides with.
type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is one finding produced by a phase of the front-end.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}
