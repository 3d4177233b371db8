package driver_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"svelab/internal/driver"
	"svelab/internal/preprocessor"
	"svelab/internal/source"
	"svelab/internal/syntax"
	"svelab/internal/testkit"
	"svelab/internal/token"
)

func writeFiles(t *testing.T, files map[string]string) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for name, content := range files {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}
	driver.SortPaths(paths)
	return dir, paths
}

func TestTokenizeFiles(t *testing.T) {
	_, paths := writeFiles(t, map[string]string{
		"a.sv": "module m; endmodule\n",
		"b.sv": "wire w;\n",
	})

	fs := source.NewFileSet()
	results, err := driver.TokenizeFiles(context.Background(), fs, paths)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d", len(results))
	}

	// Input order preserved regardless of goroutine scheduling.
	for i, p := range paths {
		if results[i].Path != p {
			t.Errorf("result %d path = %s, want %s", i, results[i].Path, p)
		}
		if results[i].Bag.HasErrors() {
			t.Errorf("%s: unexpected errors", p)
		}
		if len(results[i].Tokens) == 0 || results[i].Tokens[len(results[i].Tokens)-1].Kind != token.EOF {
			t.Errorf("%s: token stream malformed", p)
		}
	}

	// Round trip across every input stream.
	for _, res := range results {
		if err := testkit.CheckTokenRoundTrip(fs.Get(res.FileID), res.Tokens); err != nil {
			t.Error(err)
		}
	}
}

func TestPreprocessWithIncludes(t *testing.T) {
	dir, paths := writeFiles(t, map[string]string{
		"top.sv":   "`include \"defs.svh\"\n`WIDTH\n",
		"defs.svh": "`define WIDTH 32\n",
	})
	// Only top.sv is a compilation input.
	var inputs []string
	for _, p := range paths {
		if strings.HasSuffix(p, "top.sv") {
			inputs = append(inputs, p)
		}
	}

	fs := source.NewFileSet()
	results, _, err := driver.PreprocessFiles(context.Background(), fs, inputs,
		driver.Options{IncludeDirs: []string{dir}})
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", results[0].Bag.Items())
	}

	var kinds []token.Kind
	for _, tok := range results[0].Tokens {
		kinds = append(kinds, tok.Kind)
	}
	if len(kinds) != 2 || kinds[0] != token.IntegerLiteral || kinds[1] != token.EOF {
		t.Errorf("kinds = %v, want [IntegerLiteral EOF]", kinds)
	}
	if results[0].Tokens[0].Num.Int != 32 {
		t.Errorf("macro value = %d, want 32", results[0].Tokens[0].Num.Int)
	}
}

// stubParse is a minimal stand-in for the external parser: it recognizes
// just enough to produce an empty module per "module <name>" pair.
func stubParse(_ *source.FileSet, _ source.FileID, pp *preprocessor.Preprocessor) ([]syntax.Member, error) {
	var members []syntax.Member
	for {
		tok := pp.Next()
		if tok.Kind == token.EOF {
			return members, nil
		}
		if tok.Kind == token.KwModule {
			name := pp.Next()
			members = append(members, &syntax.ModuleDecl{
				DefKind: syntax.DefModule,
				Name:    name.ValueText(),
				NameSp:  name.Span,
			})
		}
	}
}

func TestElaboratePipeline(t *testing.T) {
	_, paths := writeFiles(t, map[string]string{
		"m.sv": "module m; endmodule\n",
	})

	res, err := driver.Elaborate(context.Background(), paths, driver.Options{Parse: stubParse})
	if err != nil {
		t.Fatal(err)
	}
	if res.Comp.Diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", res.Comp.Diags.Items())
	}
	if len(res.Comp.TopInstances()) != 1 {
		t.Errorf("tops = %d, want 1", len(res.Comp.TopInstances()))
	}
}

func TestElaborateRequiresParser(t *testing.T) {
	if _, err := driver.Elaborate(context.Background(), nil, driver.Options{}); err == nil {
		t.Error("expected an error when no parser is registered")
	}
}

func TestDiskCache(t *testing.T) {
	cache, err := driver.OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	_, paths := writeFiles(t, map[string]string{"a.sv": "wire w;\n"})
	fs := source.NewFileSet()
	results, _, err := driver.PreprocessFiles(context.Background(), fs, paths,
		driver.Options{Cache: cache})
	if err != nil {
		t.Fatal(err)
	}

	file := fs.Get(results[0].FileID)
	payload, ok := cache.Lookup(file.Hash)
	if !ok {
		t.Fatal("cache record missing")
	}
	if payload.TokenCount != len(results[0].Tokens) {
		t.Errorf("token count = %d, want %d", payload.TokenCount, len(results[0].Tokens))
	}
	if payload.HasErrors {
		t.Error("no errors expected")
	}

	if err := cache.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, ok := cache.Lookup(file.Hash); ok {
		t.Error("record should be gone after Clear")
	}
}
