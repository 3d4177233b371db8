package lexer_test

import (
	"math"
	"strings"
	"testing"

	"svelab/internal/diag"
	"svelab/internal/lexer"
	"svelab/internal/source"
	"svelab/internal/token"
)

// testReporter collects every diagnostic produced while lexing.
type testReporter struct {
	diagnostics []diag.Diagnostic
}

func (r *testReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	r.diagnostics = append(r.diagnostics, diag.Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Primary:  primary,
		Notes:    notes,
	})
}

func (r *testReporter) last() diag.Code {
	if len(r.diagnostics) == 0 {
		return diag.UnknownCode
	}
	return r.diagnostics[len(r.diagnostics)-1].Code
}

func makeTestLexer(input string) (*lexer.Lexer, *testReporter) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.sv", []byte(input))
	file := fs.Get(fileID)

	reporter := &testReporter{}
	lx := lexer.New(file, lexer.Options{Reporter: reporter})
	return lx, reporter
}

func collectAllTokens(lx *lexer.Lexer) []token.Token {
	var tokens []token.Token
	for {
		tok := lx.Next()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			return tokens
		}
	}
}

// lexOne lexes input and returns the first token.
func lexOne(t *testing.T, input string) (token.Token, *testReporter) {
	t.Helper()
	lx, reporter := makeTestLexer(input)
	return lx.Next(), reporter
}

func checkRoundTrip(t *testing.T, input string) {
	t.Helper()
	lx, _ := makeTestLexer(input)
	var sb strings.Builder
	for _, tok := range collectAllTokens(lx) {
		sb.WriteString(tok.FullText())
	}
	if sb.String() != input {
		t.Errorf("round trip mismatch:\n got: %q\nwant: %q", sb.String(), input)
	}
}

func TestLineCommentTrivia(t *testing.T) {
	tok, reporter := lexOne(t, "// comment")
	if tok.Kind != token.EOF {
		t.Fatalf("kind = %v, want EOF", tok.Kind)
	}
	if len(tok.Leading) != 1 || tok.Leading[0].Kind != token.TriviaLineComment {
		t.Fatalf("leading = %+v, want one line comment", tok.Leading)
	}
	if tok.Leading[0].Text != "// comment" {
		t.Errorf("trivia text = %q", tok.Leading[0].Text)
	}
	if len(reporter.diagnostics) != 0 {
		t.Errorf("unexpected diagnostics: %v", reporter.diagnostics)
	}
	checkRoundTrip(t, "// comment")
}

func TestBlockCommentTrivia(t *testing.T) {
	for _, input := range []string{
		"/* comment */",
		"/*\ncomment on\nmultiple lines\n*/",
	} {
		tok, reporter := lexOne(t, input)
		if tok.Kind != token.EOF {
			t.Fatalf("%q: kind = %v, want EOF", input, tok.Kind)
		}
		if len(tok.Leading) != 1 || tok.Leading[0].Kind != token.TriviaBlockComment {
			t.Fatalf("%q: leading = %+v", input, tok.Leading)
		}
		if len(reporter.diagnostics) != 0 {
			t.Errorf("%q: unexpected diagnostics", input)
		}
		checkRoundTrip(t, input)
	}
}

func TestUnterminatedBlockComment(t *testing.T) {
	tok, reporter := lexOne(t, "/* comment")
	if tok.Kind != token.EOF {
		t.Fatalf("kind = %v, want EOF", tok.Kind)
	}
	if len(tok.Leading) != 1 || tok.Leading[0].Kind != token.TriviaBlockComment {
		t.Fatalf("leading = %+v", tok.Leading)
	}
	if reporter.last() != diag.LexUnterminatedBlockComment {
		t.Errorf("last diag = %v, want UnterminatedBlockComment", reporter.last())
	}
	checkRoundTrip(t, "/* comment")
}

func TestNestedBlockComment(t *testing.T) {
	tok, reporter := lexOne(t, "/* comment /* stuff */")
	if tok.Kind != token.EOF {
		t.Fatalf("kind = %v, want EOF", tok.Kind)
	}
	if reporter.last() != diag.LexNestedBlockComment {
		t.Errorf("last diag = %v, want NestedBlockComment", reporter.last())
	}
}

func TestNewlineTrivia(t *testing.T) {
	for _, input := range []string{"\r", "\r\n", "\n"} {
		tok, reporter := lexOne(t, input)
		if tok.Kind != token.EOF {
			t.Fatalf("%q: kind = %v", input, tok.Kind)
		}
		if len(tok.Leading) != 1 || tok.Leading[0].Kind != token.TriviaEndOfLine {
			t.Fatalf("%q: leading = %+v", input, tok.Leading)
		}
		if len(reporter.diagnostics) != 0 {
			t.Errorf("%q: unexpected diagnostics", input)
		}
		checkRoundTrip(t, input)
	}
}

func TestWhitespaceTrivia(t *testing.T) {
	tok, reporter := lexOne(t, " \t\v\f token")
	if tok.Kind != token.Identifier {
		t.Fatalf("kind = %v, want Identifier", tok.Kind)
	}
	if len(tok.Leading) != 1 || tok.Leading[0].Kind != token.TriviaWhitespace {
		t.Fatalf("leading = %+v", tok.Leading)
	}
	if len(reporter.diagnostics) != 0 {
		t.Errorf("unexpected diagnostics")
	}
	checkRoundTrip(t, " \t\v\f token")
}

func TestIdentifiers(t *testing.T) {
	tests := []struct {
		input string
		kind  token.Kind
		value string
	}{
		{"abc", token.Identifier, "abc"},
		{"a92837asdf358", token.Identifier, "a92837asdf358"},
		{"__a$$asdf213$", token.Identifier, "__a$$asdf213$"},
		{"\\98\\#$%)(*lkjsd__09...asdf345", token.Identifier, "98\\#$%)(*lkjsd__09...asdf345"},
		{"$hello", token.SystemIdentifier, "$hello"},
		{"$45__hello", token.SystemIdentifier, "$45__hello"},
	}
	for _, tt := range tests {
		tok, reporter := lexOne(t, tt.input)
		if tok.Kind != tt.kind {
			t.Errorf("%q: kind = %v, want %v", tt.input, tok.Kind, tt.kind)
		}
		if tok.ValueText() != tt.value {
			t.Errorf("%q: value = %q, want %q", tt.input, tok.ValueText(), tt.value)
		}
		if len(reporter.diagnostics) != 0 {
			t.Errorf("%q: unexpected diagnostics", tt.input)
		}
		checkRoundTrip(t, tt.input)
	}
}

func TestEscapedWhitespace(t *testing.T) {
	for _, input := range []string{"\\", "\\  "} {
		tok, reporter := lexOne(t, input)
		if tok.Kind != token.Unknown {
			t.Errorf("%q: kind = %v, want Unknown", input, tok.Kind)
		}
		if reporter.last() != diag.LexEscapedWhitespace {
			t.Errorf("%q: diag = %v, want EscapedWhitespace", input, reporter.last())
		}
	}
}

func TestAllKeywords(t *testing.T) {
	for text, want := range token.Keywords() {
		tok, reporter := lexOne(t, text)
		if tok.Kind != want {
			t.Errorf("%q: kind = %v, want %v", text, tok.Kind, want)
		}
		if tok.ValueText() != text {
			t.Errorf("%q: value = %q", text, tok.ValueText())
		}
		if len(reporter.diagnostics) != 0 {
			t.Errorf("%q: unexpected diagnostics", text)
		}
	}
}

func TestAllPunctuation(t *testing.T) {
	for want, text := range token.PunctKinds() {
		// A bare apostrophe or dollar only appears in larger contexts but
		// still lexes standalone.
		tok, reporter := lexOne(t, text)
		if tok.Kind != want {
			t.Errorf("%q: kind = %v, want %v", text, tok.Kind, want)
		}
		if tok.Text != text {
			t.Errorf("%q: text = %q", text, tok.Text)
		}
		if len(reporter.diagnostics) != 0 {
			t.Errorf("%q: unexpected diagnostics", text)
		}
	}
}

func TestStringLiterals(t *testing.T) {
	tests := []struct {
		input string
		value string
		code  diag.Code
	}{
		{`"literal  #@$asdf"`, "literal  #@$asdf", diag.UnknownCode},
		{"\"literal\\n\\t\\v\\f\\a \\\\ \\\" \"", "literal\n\t\v\f\a \\ \" ", diag.UnknownCode},
		{"\"literal\\377\"", "literal\377", diag.UnknownCode},
		{"\"literal\\400\"", "literal", diag.LexOctalEscapeCodeTooBig},
		{"\"literal\\xFa\"", "literal\xFa", diag.UnknownCode},
		{"\"literal\\xz\"", "literalz", diag.LexInvalidHexEscapeCode},
		{"\"literal\\i\"", "literali", diag.LexUnknownEscapeCode},
		{"\"literal", "literal", diag.LexExpectedClosingQuote},
		{"\"literal\\\r\nwith new line\"", "literalwith new line", diag.UnknownCode},
	}
	for _, tt := range tests {
		tok, reporter := lexOne(t, tt.input)
		if tok.Kind != token.StringLiteral {
			t.Errorf("%q: kind = %v, want StringLiteral", tt.input, tok.Kind)
		}
		if tok.Value != tt.value {
			t.Errorf("%q: value = %q, want %q", tt.input, tok.Value, tt.value)
		}
		if tt.code == diag.UnknownCode {
			if len(reporter.diagnostics) != 0 {
				t.Errorf("%q: unexpected diagnostics %v", tt.input, reporter.diagnostics)
			}
			checkRoundTrip(t, tt.input)
		} else if reporter.last() != tt.code {
			t.Errorf("%q: diag = %v, want %v", tt.input, reporter.last(), tt.code)
		}
	}
}

func TestStringUnescapedNewline(t *testing.T) {
	tok, reporter := lexOne(t, "\"literal\r\nwith new line\"")
	if tok.Kind != token.StringLiteral {
		t.Fatalf("kind = %v", tok.Kind)
	}
	if tok.Value != "literal" {
		t.Errorf("value = %q, want %q", tok.Value, "literal")
	}
	if reporter.last() != diag.LexExpectedClosingQuote {
		t.Errorf("diag = %v, want ExpectedClosingQuote", reporter.last())
	}
}

func TestIntegerLiteral(t *testing.T) {
	tok, reporter := lexOne(t, "19248")
	if tok.Kind != token.IntegerLiteral {
		t.Fatalf("kind = %v", tok.Kind)
	}
	if tok.Num.Int != 19248 {
		t.Errorf("value = %d, want 19248", tok.Num.Int)
	}
	if len(reporter.diagnostics) != 0 {
		t.Errorf("unexpected diagnostics")
	}
}

func TestVectorBases(t *testing.T) {
	tests := []struct {
		input  string
		base   token.LiteralBase
		signed bool
	}{
		{"'d", token.DecimalBase, false},
		{"'sD", token.DecimalBase, true},
		{"'Sb", token.BinaryBase, true},
		{"'B", token.BinaryBase, false},
		{"'so", token.OctalBase, true},
		{"'O", token.OctalBase, false},
		{"'h", token.HexBase, false},
		{"'SH", token.HexBase, true},
	}
	for _, tt := range tests {
		tok, reporter := lexOne(t, tt.input)
		if tok.Kind != token.IntegerBase {
			t.Errorf("%q: kind = %v, want IntegerBase", tt.input, tok.Kind)
		}
		if tok.Flags.Base != tt.base || tok.Flags.IsSigned != tt.signed {
			t.Errorf("%q: flags = %+v", tt.input, tok.Flags)
		}
		if len(reporter.diagnostics) != 0 {
			t.Errorf("%q: unexpected diagnostics", tt.input)
		}
	}
}

func TestBasedVector(t *testing.T) {
	lx, reporter := makeTestLexer("8'hFF")
	toks := collectAllTokens(lx)
	if len(toks) != 4 {
		t.Fatalf("got %d tokens, want 4 (int, base, digits, EOF)", len(toks))
	}
	if toks[0].Kind != token.IntegerLiteral || toks[0].Num.Int != 8 {
		t.Errorf("size token = %+v", toks[0])
	}
	if toks[1].Kind != token.IntegerBase || toks[1].Flags.Base != token.HexBase {
		t.Errorf("base token = %+v", toks[1])
	}
	if toks[2].Kind != token.IntegerLiteral || toks[2].Num.Int != 255 {
		t.Errorf("digits token = %+v", toks[2])
	}
	if len(reporter.diagnostics) != 0 {
		t.Errorf("unexpected diagnostics")
	}
	checkRoundTrip(t, "8'hFF")
	checkRoundTrip(t, "13'b1100xZ?01")
	checkRoundTrip(t, "8 'h F_F")
}

func TestUnbasedUnsized(t *testing.T) {
	for _, tt := range []struct {
		input string
		bit   byte
		val   uint64
	}{
		{"'0", '0', 0},
		{"'1", '1', 1},
		{"'x", 'x', 0},
		{"'z", 'z', 0},
	} {
		tok, reporter := lexOne(t, tt.input)
		if tok.Kind != token.UnbasedUnsizedLiteral {
			t.Errorf("%q: kind = %v", tt.input, tok.Kind)
		}
		if tok.Num.UnsizedBit != tt.bit || tok.Num.Int != tt.val {
			t.Errorf("%q: num = %+v", tt.input, tok.Num)
		}
		if len(reporter.diagnostics) != 0 {
			t.Errorf("%q: unexpected diagnostics", tt.input)
		}
	}
}

func withinUlp(a, b float64) bool {
	return math.Abs(a-b) <= math.Abs(a)*1e-15
}

func TestRealLiterals(t *testing.T) {
	tests := []struct {
		input string
		value float64
	}{
		{"32.57", 32.57},
		{"32e57", 32e57},
		{"0000032E+000__57", 32e57},
		{"3_2e-5__7", 32e-57},
		{"32.3456e57", 32.3456e57},
	}
	for _, tt := range tests {
		tok, reporter := lexOne(t, tt.input)
		if tok.Kind != token.RealLiteral {
			t.Errorf("%q: kind = %v, want RealLiteral", tt.input, tok.Kind)
			continue
		}
		if !withinUlp(tok.Num.Real, tt.value) {
			t.Errorf("%q: value = %g, want %g", tt.input, tok.Num.Real, tt.value)
		}
		if len(reporter.diagnostics) != 0 {
			t.Errorf("%q: unexpected diagnostics", tt.input)
		}
	}
}

func TestRealMissingFraction(t *testing.T) {
	tok, reporter := lexOne(t, "32.")
	if tok.Kind != token.RealLiteral {
		t.Fatalf("kind = %v", tok.Kind)
	}
	if tok.Num.Real != 32 {
		t.Errorf("value = %g, want 32", tok.Num.Real)
	}
	if reporter.last() != diag.LexMissingFractionalDigits {
		t.Errorf("diag = %v, want MissingFractionalDigits", reporter.last())
	}
}

func TestRealOverflow(t *testing.T) {
	for _, input := range []string{"32e9000", strings.Repeat("9", 400) + ".0"} {
		tok, reporter := lexOne(t, input)
		if tok.Kind != token.RealLiteral {
			t.Fatalf("%q: kind = %v", input, tok.Kind)
		}
		if !math.IsInf(tok.Num.Real, 1) {
			t.Errorf("%q: value = %g, want +Inf", input, tok.Num.Real)
		}
		if len(reporter.diagnostics) != 0 {
			t.Errorf("%q: unexpected diagnostics", input)
		}
	}
}

func TestNotAnExponent(t *testing.T) {
	lx, reporter := makeTestLexer("32e_9")
	toks := collectAllTokens(lx)
	if toks[0].Kind != token.IntegerLiteral || toks[0].Text != "32" {
		t.Errorf("first token = %+v, want integer 32", toks[0])
	}
	if toks[1].Kind != token.Identifier || toks[1].Text != "e_9" {
		t.Errorf("second token = %+v, want identifier e_9", toks[1])
	}
	if len(reporter.diagnostics) != 0 {
		t.Errorf("unexpected diagnostics")
	}
}

func TestTimeLiterals(t *testing.T) {
	tests := []struct {
		input string
		unit  token.TimeUnit
	}{
		{"3.4s", token.Seconds},
		{"9999ms", token.Milliseconds},
		{"572.234us", token.Microseconds},
		{"97ns", token.Nanoseconds},
		{"42ps", token.Picoseconds},
		{"42fs", token.Femtoseconds},
	}
	for _, tt := range tests {
		tok, reporter := lexOne(t, tt.input)
		if tok.Kind != token.TimeLiteral {
			t.Errorf("%q: kind = %v, want TimeLiteral", tt.input, tok.Kind)
		}
		if tok.Flags.Unit != tt.unit {
			t.Errorf("%q: unit = %v, want %v", tt.input, tok.Flags.Unit, tt.unit)
		}
		if len(reporter.diagnostics) != 0 {
			t.Errorf("%q: unexpected diagnostics", tt.input)
		}
	}
}

func TestMisplacedDirectiveChar(t *testing.T) {
	tok, reporter := lexOne(t, "`")
	if tok.Kind != token.Directive {
		t.Fatalf("kind = %v, want Directive", tok.Kind)
	}
	if tok.Directive != token.DirUnknown {
		t.Errorf("directive kind = %v, want Unknown", tok.Directive)
	}
	if reporter.last() != diag.LexMisplacedDirectiveChar {
		t.Errorf("diag = %v, want MisplacedDirectiveChar", reporter.last())
	}
}

func TestDirectiveToken(t *testing.T) {
	tok, reporter := lexOne(t, "`include")
	if tok.Kind != token.Directive || tok.Directive != token.DirInclude {
		t.Fatalf("token = %+v, want include directive", tok)
	}
	if tok.ValueText() != "include" {
		t.Errorf("value = %q", tok.ValueText())
	}
	if len(reporter.diagnostics) != 0 {
		t.Errorf("unexpected diagnostics")
	}
}

func TestInvalidChars(t *testing.T) {
	tests := []struct {
		input string
		code  diag.Code
	}{
		{"\x04", diag.LexNonPrintableChar},
		{"\U0001f34c", diag.LexUTF8Char},
		{"\x00", diag.LexEmbeddedNull},
	}
	for _, tt := range tests {
		tok, reporter := lexOne(t, tt.input)
		if tok.Kind != token.Unknown {
			t.Errorf("%q: kind = %v, want Unknown", tt.input, tok.Kind)
		}
		if reporter.last() != tt.code {
			t.Errorf("%q: diag = %v, want %v", tt.input, reporter.last(), tt.code)
		}
		if tok.Text != tt.input {
			t.Errorf("%q: text = %q", tt.input, tok.Text)
		}
	}
}

func TestUnicodeBOM(t *testing.T) {
	for _, input := range []string{"\xEF\xBB\xBF ", "\xFE\xFF ", "\xFF\xFE "} {
		_, reporter := lexOne(t, input)
		if reporter.last() != diag.LexUnicodeBOM {
			t.Errorf("%q: diag = %v, want UnicodeBOM", input, reporter.last())
		}
	}
}

func TestRoundTripMixedSource(t *testing.T) {
	src := "module m #(parameter int W = 8) (input logic [W-1:0] a);\n" +
		"  // body comment\n" +
		"  wire [3:0] w = 4'b10x1;\n" +
		"  assign w[0] = a ? '1 : '0; /* tail */\n" +
		"endmodule\n"
	checkRoundTrip(t, src)
}

func TestNumericDeterminism(t *testing.T) {
	inputs := []string{"8'hFF", "12'so777", "'d42", "16'b1010_1010"}
	for _, input := range inputs {
		lx1, _ := makeTestLexer(input)
		lx2, _ := makeTestLexer(input)
		t1 := collectAllTokens(lx1)
		t2 := collectAllTokens(lx2)
		if len(t1) != len(t2) {
			t.Fatalf("%q: token count mismatch", input)
		}
		for i := range t1 {
			if t1[i].Flags != t2[i].Flags || t1[i].Num != t2[i].Num {
				t.Errorf("%q: token %d differs between runs", input, i)
			}
		}
	}
}
