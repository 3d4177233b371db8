// Package diagfmt renders diagnostic bags for humans (pretty, with
// source excerpts and carets) and machines (JSON).
package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"svelab/internal/diag"
	"svelab/internal/source"
)

// Options control rendering.
type Options struct {
	// Color enables ANSI styling.
	Color bool
	// Context prints the offending source line with a caret underline.
	Context bool
}

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	noteColor    = color.New(color.FgCyan)
	locColor     = color.New(color.Bold)
)

func severityLabel(sev diag.Severity, colorize bool) string {
	label := strings.ToLower(sev.String())
	if !colorize {
		return label
	}
	switch sev {
	case diag.SevError, diag.SevFatal:
		return errorColor.Sprint(label)
	case diag.SevWarning:
		return warningColor.Sprint(label)
	default:
		return noteColor.Sprint(label)
	}
}

// Pretty writes one block per diagnostic, in emission order; emission
// order is the contract for deterministic presentation.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts Options) {
	for _, d := range bag.Items() {
		writeOne(w, d, fs, opts)
		for _, note := range d.Notes {
			writeLine(w, note.Span, diag.SevNote, "", note.Msg, fs, opts)
		}
	}
}

func writeOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts Options) {
	writeLine(w, d.Primary, d.Severity, d.Code.ID(), d.Message, fs, opts)
}

func writeLine(w io.Writer, sp source.Span, sev diag.Severity, codeID, msg string, fs *source.FileSet, opts Options) {
	loc := "<unknown>"
	var line source.LineCol
	var file *source.File
	if fs != nil && int(sp.File) < fs.Len() {
		file = fs.Get(sp.File)
		line, _ = fs.Resolve(sp)
		loc = fmt.Sprintf("%s:%d:%d", file.Path, line.Line, line.Col)
	}
	if opts.Color {
		loc = locColor.Sprint(loc)
	}

	if codeID != "" {
		fmt.Fprintf(w, "%s: %s [%s]: %s\n", loc, severityLabel(sev, opts.Color), codeID, msg)
	} else {
		fmt.Fprintf(w, "%s: %s: %s\n", loc, severityLabel(sev, opts.Color), msg)
	}

	if !opts.Context || file == nil {
		return
	}
	text := file.GetLine(line.Line)
	if text == "" {
		return
	}
	fmt.Fprintf(w, "  %s\n", text)

	// The caret column accounts for the display width of everything
	// before the span, so wide runes and tabs don't skew the underline.
	prefix := text
	if int(line.Col-1) <= len(text) {
		prefix = text[:line.Col-1]
	}
	pad := runewidth.StringWidth(strings.ReplaceAll(prefix, "\t", "    "))
	underline := int(sp.Len())
	if underline < 1 {
		underline = 1
	}
	if underline > runewidth.StringWidth(text)-pad {
		rest := runewidth.StringWidth(text) - pad
		if rest > 0 {
			underline = rest
		} else {
			underline = 1
		}
	}
	caret := strings.Repeat(" ", pad+2) + strings.Repeat("^", underline)
	if opts.Color {
		caret = errorColor.Sprint(caret)
	}
	fmt.Fprintln(w, caret)
}

// Summary prints the error/warning count footer.
func Summary(w io.Writer, bag *diag.Bag, opts Options) {
	errs := bag.ErrorCount()
	warns := 0
	for _, d := range bag.Items() {
		if d.Severity == diag.SevWarning {
			warns++
		}
	}
	if errs == 0 && warns == 0 {
		return
	}
	label := fmt.Sprintf("%d error(s), %d warning(s)", errs, warns)
	if opts.Color && errs > 0 {
		label = errorColor.Sprint(label)
	}
	fmt.Fprintln(w, label)
}
