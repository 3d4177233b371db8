package diagfmt_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"svelab/internal/diag"
	"svelab/internal/diagfmt"
	"svelab/internal/source"
)

func sampleBag() (*diag.Bag, *source.FileSet, source.Span) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("top.sv", []byte("module m;\nwire bad bad;\nendmodule\n"))
	sp := source.Span{File: id, Start: 15, End: 18}

	bag := diag.NewBag(0)
	bag.Add(diag.NewError(diag.SemDuplicateDefinition, sp, "duplicate definition of \"bad\"").
		WithNote(source.Span{File: id, Start: 10, End: 13}, "previous definition here"))
	bag.Add(diag.NewWarning(diag.BindFormatRealInt, sp, "real value passed to integer format specifier"))
	return bag, fs, sp
}

func TestPrettyOutput(t *testing.T) {
	bag, fs, _ := sampleBag()

	var buf bytes.Buffer
	diagfmt.Pretty(&buf, bag, fs, diagfmt.Options{Context: true})
	out := buf.String()

	for _, want := range []string{
		"top.sv:2:", "error", "[SEM3001]", "duplicate definition",
		"note", "previous definition here",
		"wire bad bad;", "^",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrettyPreservesEmissionOrder(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.sv", []byte("xy\n"))
	bag := diag.NewBag(0)
	// Emitted later-position first; presentation must keep that order.
	bag.Add(diag.NewError(diag.SemUnknownMember, source.Span{File: id, Start: 1, End: 2}, "second position"))
	bag.Add(diag.NewError(diag.SemUnknownMember, source.Span{File: id, Start: 0, End: 1}, "first position"))

	var buf bytes.Buffer
	diagfmt.Pretty(&buf, bag, fs, diagfmt.Options{})
	out := buf.String()
	if strings.Index(out, "second position") > strings.Index(out, "first position") {
		t.Errorf("emission order not preserved:\n%s", out)
	}
}

func TestJSONOutput(t *testing.T) {
	bag, fs, _ := sampleBag()

	var buf bytes.Buffer
	if err := diagfmt.JSON(&buf, bag, fs); err != nil {
		t.Fatal(err)
	}

	var out []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("entries = %d, want 2", len(out))
	}
	if out[0]["severity"] != "ERROR" || out[0]["file"] != "top.sv" {
		t.Errorf("first entry = %v", out[0])
	}
	if out[1]["severity"] != "WARNING" {
		t.Errorf("second entry = %v", out[1])
	}
}

func TestSummary(t *testing.T) {
	bag, _, _ := sampleBag()
	var buf bytes.Buffer
	diagfmt.Summary(&buf, bag, diagfmt.Options{})
	if !strings.Contains(buf.String(), "1 error(s), 1 warning(s)") {
		t.Errorf("summary = %q", buf.String())
	}
}
