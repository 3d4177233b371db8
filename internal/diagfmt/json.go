package diagfmt

import (
	"encoding/json"
	"io"

	"svelab/internal/diag"
	"svelab/internal/source"
)

type jsonNote struct {
	File    string `json:"file"`
	Line    uint32 `json:"line"`
	Col     uint32 `json:"col"`
	Message string `json:"message"`
}

type jsonDiagnostic struct {
	Severity string     `json:"severity"`
	Code     string     `json:"code"`
	File     string     `json:"file"`
	Line     uint32     `json:"line"`
	Col      uint32     `json:"col"`
	Message  string     `json:"message"`
	Notes    []jsonNote `json:"notes,omitempty"`
}

func position(fs *source.FileSet, sp source.Span) (string, source.LineCol) {
	if fs == nil || int(sp.File) >= fs.Len() {
		return "", source.LineCol{}
	}
	start, _ := fs.Resolve(sp)
	return fs.Get(sp.File).Path, start
}

// JSON writes the bag as a JSON array, in emission order.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet) error {
	out := make([]jsonDiagnostic, 0, bag.Len())
	for _, d := range bag.Items() {
		path, pos := position(fs, d.Primary)
		jd := jsonDiagnostic{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			File:     path,
			Line:     pos.Line,
			Col:      pos.Col,
			Message:  d.Message,
		}
		for _, n := range d.Notes {
			npath, npos := position(fs, n.Span)
			jd.Notes = append(jd.Notes, jsonNote{
				File: npath, Line: npos.Line, Col: npos.Col, Message: n.Msg,
			})
		}
		out = append(out, jd)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
