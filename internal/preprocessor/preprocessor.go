package preprocessor

import (
	"strings"

	"svelab/internal/diag"
	"svelab/internal/lexer"
	"svelab/internal/source"
	"svelab/internal/token"
)

// Macro is one `define record.
type Macro struct {
	Name       string
	HasFormals bool
	Formals    []string
	Body       []token.Token
	Span       source.Span
}

// condState tracks one entry of the `ifdef stack.
type condState struct {
	// active: this branch's text is being emitted.
	active bool
	// taken: some branch of this conditional already matched, so later
	// `elsif/`else branches are dead even if their condition holds.
	taken bool
	// sawElse: an `else was seen; further `elsif/`else are errors.
	sawElse bool
	span    source.Span
}

// expEntry is one token waiting in the expansion queue, together with the
// stack of macro names whose expansion produced it.
type expEntry struct {
	tok   token.Token
	stack []string
}

// Preprocessor turns a raw token stream into the preprocessed stream.
// State is per source unit: macro table, conditional stack, include
// stack, and the default-nettype / keyword-version bookkeeping.
type Preprocessor struct {
	fs   *source.FileSet
	opts Options

	lexers []*lexer.Lexer // include stack; the last entry is current
	macros map[string]*Macro

	condStack []condState
	expansion []expEntry

	// pendingTrivia accumulates directive/skipped text to attach to the
	// next emitted token.
	pendingTrivia []token.Trivia

	defaultNetType token.Kind // KwWire unless `default_nettype changed it
	keywordsStack  []string
	cellDefine     bool
	unconnectedDrive string
	timescale      string
}

// New creates a preprocessor reading from the given file.
func New(fs *source.FileSet, fileID source.FileID, opts Options) *Preprocessor {
	if opts.MaxIncludeDepth <= 0 {
		opts.MaxIncludeDepth = defaultMaxIncludeDepth
	}
	if opts.MaxMacroDepth <= 0 {
		opts.MaxMacroDepth = defaultMaxMacroDepth
	}

	pp := &Preprocessor{
		fs:             fs,
		opts:           opts,
		macros:         make(map[string]*Macro),
		defaultNetType: token.KwWire,
	}
	for name, body := range opts.Defines {
		pp.macros[name] = &Macro{Name: name, Body: lexDefineBody(fs, name, body)}
	}
	pp.push(fileID)
	return pp
}

// lexDefineBody turns a predefine's body text into tokens.
func lexDefineBody(fs *source.FileSet, name, body string) []token.Token {
	if body == "" {
		return nil
	}
	id := fs.AddVirtual("<define:"+name+">", []byte(body))
	lx := lexer.New(fs.Get(id), lexer.Options{})
	var toks []token.Token
	for {
		tok := lx.Next()
		if tok.Kind == token.EOF {
			return toks
		}
		toks = append(toks, tok)
	}
}

func (pp *Preprocessor) push(fileID source.FileID) {
	pp.lexers = append(pp.lexers, lexer.New(pp.fs.Get(fileID), lexer.Options{Reporter: pp.opts.Reporter}))
}

func (pp *Preprocessor) current() *lexer.Lexer {
	return pp.lexers[len(pp.lexers)-1]
}

// DefaultNetType returns the kind of the net type currently in force via
// `default_nettype: a net-type keyword, or KwNull for "none".
func (pp *Preprocessor) DefaultNetType() token.Kind {
	return pp.defaultNetType
}

// Macros exposes the macro table for tests and tooling.
func (pp *Preprocessor) Macros() map[string]*Macro {
	return pp.macros
}

// Timescale returns the text of the innermost `timescale in force.
func (pp *Preprocessor) Timescale() string {
	return pp.timescale
}

// InCellDefine reports whether a `celldefine region is open.
func (pp *Preprocessor) InCellDefine() bool {
	return pp.cellDefine
}

// Next returns the next preprocessed token. After the outermost EOF it
// always returns EOF.
func (pp *Preprocessor) Next() token.Token {
	for {
		// Drain any pending macro expansion first.
		if len(pp.expansion) > 0 {
			entry := pp.expansion[0]
			pp.expansion = pp.expansion[1:]
			tok := entry.tok
			if tok.Kind == token.Directive && tok.Directive == token.DirMacroUsage {
				if out, emit := pp.expandMacroUsage(tok, entry.stack); emit {
					return pp.deliver(out)
				}
				continue
			}
			return pp.deliver(tok)
		}

		tok := pp.current().Next()

		if tok.Kind == token.EOF {
			if len(pp.lexers) > 1 {
				// Finished an include file; keep its trailing trivia.
				pp.stashTrivia(tok.Leading)
				pp.lexers = pp.lexers[:len(pp.lexers)-1]
				continue
			}
			if len(pp.condStack) > 0 {
				pp.errPP(diag.PPMissingEndIfDirective, pp.condStack[len(pp.condStack)-1].span,
					"missing `endif directive")
				pp.condStack = nil
			}
			return pp.deliver(tok)
		}

		if tok.Kind == token.Directive {
			if out, emit := pp.handleDirective(tok); emit {
				return pp.deliver(out)
			}
			continue
		}

		return pp.deliver(tok)
	}
}

// deliver prepends pending trivia before handing the token out.
func (pp *Preprocessor) deliver(tok token.Token) token.Token {
	if len(pp.pendingTrivia) > 0 {
		tok.Leading = append(pp.pendingTrivia, tok.Leading...)
		pp.pendingTrivia = nil
	}
	return tok
}

func (pp *Preprocessor) stashTrivia(trivia []token.Trivia) {
	pp.pendingTrivia = append(pp.pendingTrivia, trivia...)
}

// stashDirective records the raw text of a consumed directive (and its
// argument tokens) as one TriviaDirective.
func (pp *Preprocessor) stashDirective(first token.Token, rest ...token.Token) {
	var sb strings.Builder
	sb.WriteString(first.FullText())
	sp := first.Span
	for _, t := range rest {
		sb.WriteString(t.FullText())
		sp = sp.Cover(t.Span)
	}
	pp.pendingTrivia = append(pp.pendingTrivia, token.Trivia{
		Kind: token.TriviaDirective,
		Span: sp,
		Text: sb.String(),
	})
}

// restOfLine consumes every token up to (not including) the first token
// that starts on a new line, honoring backslash continuations.
func (pp *Preprocessor) restOfLine() []token.Token {
	var toks []token.Token
	lx := pp.current()
	for {
		peeked := lx.Peek()
		if peeked.Kind == token.EOF || startsNewLine(peeked) {
			return toks
		}
		tok := lx.Next()
		if tok.Kind == token.LineContinuation {
			toks = append(toks, tok)
			continue
		}
		toks = append(toks, tok)
	}
}

// startsNewLine reports whether the token's leading trivia contains a
// line ending, i.e. the token belongs to the next source line.
func startsNewLine(tok token.Token) bool {
	for _, tr := range tok.Leading {
		if tr.Kind == token.TriviaEndOfLine {
			return true
		}
	}
	return false
}
