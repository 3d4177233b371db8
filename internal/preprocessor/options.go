package preprocessor

import (
	"svelab/internal/diag"
	"svelab/internal/source"
)

// Options configures a Preprocessor.
type Options struct {
	Reporter diag.Reporter
	// Defines are macro predefinitions from the command line or project
	// manifest, name -> object-like body text.
	Defines map[string]string
	// MaxIncludeDepth bounds the include stack. Zero means the default.
	MaxIncludeDepth int
	// MaxMacroDepth bounds nested macro expansion. Zero means the default.
	MaxMacroDepth int
}

const (
	defaultMaxIncludeDepth = 32
	defaultMaxMacroDepth   = 128
)

func (pp *Preprocessor) errPP(code diag.Code, sp source.Span, msg string) {
	if pp.opts.Reporter != nil {
		pp.opts.Reporter.Report(code, diag.SevError, sp, msg, nil)
	}
}
