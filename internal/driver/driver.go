// Package driver orchestrates the front-end pipeline: loading files,
// lexing them in parallel, preprocessing them one after another, and
// running the single-threaded elaboration over the results.
package driver

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"svelab/internal/diag"
	"svelab/internal/lexer"
	"svelab/internal/preprocessor"
	"svelab/internal/sema"
	"svelab/internal/source"
	"svelab/internal/syntax"
	"svelab/internal/token"
)

// ParseFunc is the seam to the external parser: it consumes one file's
// preprocessed token stream and returns the top-level syntax members.
type ParseFunc func(fs *source.FileSet, file source.FileID, pp *preprocessor.Preprocessor) ([]syntax.Member, error)

// Options configures a pipeline run.
type Options struct {
	IncludeDirs      []string
	Defines          map[string]string
	DefaultNetType   token.Kind
	MaxInstanceDepth uint32
	Tops             []string
	// Parse supplies the external parser; nil limits the pipeline to
	// tokenize/preprocess.
	Parse ParseFunc
	// Cache is optional; hits skip nothing but record pipeline metadata.
	Cache *DiskCache
}

// FileResult is the per-file outcome of the lex/preprocess fan-out.
type FileResult struct {
	Path   string
	FileID source.FileID
	Tokens []token.Token
	Bag    *diag.Bag
}

// TokenizeFiles lexes every file without preprocessing. Files process
// concurrently; results and diagnostics come back in input order.
func TokenizeFiles(ctx context.Context, fs *source.FileSet, paths []string) ([]FileResult, error) {
	results := make([]FileResult, len(paths))

	// Loading mutates the FileSet, so it happens up front on one
	// goroutine; lexing is read-only per file and fans out.
	for i, path := range paths {
		id, err := fs.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		results[i] = FileResult{Path: path, FileID: id}
	}

	g, _ := errgroup.WithContext(ctx)
	for i := range results {
		g.Go(func() error {
			res := &results[i]
			bag := diag.NewBag(0)
			lx := lexer.New(fs.Get(res.FileID), lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
			for {
				tok := lx.Next()
				res.Tokens = append(res.Tokens, tok)
				if tok.Kind == token.EOF {
					break
				}
			}
			res.Bag = bag
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// PreprocessFiles runs the full lex+preprocess stage per file.
// Each file gets its own preprocessor state (macro table, conditional
// stack), matching per-compilation-unit semantics.
func PreprocessFiles(ctx context.Context, fs *source.FileSet, paths []string, opts Options) ([]FileResult, []*preprocessor.Preprocessor, error) {
	for _, dir := range opts.IncludeDirs {
		fs.AddIncludeDir(dir)
	}

	results := make([]FileResult, len(paths))
	pps := make([]*preprocessor.Preprocessor, len(paths))

	for i, path := range paths {
		id, err := fs.Load(path)
		if err != nil {
			return nil, nil, fmt.Errorf("load %s: %w", path, err)
		}
		results[i] = FileResult{Path: path, FileID: id}
	}

	// Include resolution loads files into the shared FileSet, so the
	// preprocess stage stays sequential; only the pure lexing stage
	// (TokenizeFiles) fans out.
	for i := range results {
		preprocessOne(fs, &results[i], &pps[i], opts)
	}

	if opts.Cache != nil {
		for i := range results {
			opts.Cache.Record(fs.Get(results[i].FileID), &results[i])
		}
	}
	return results, pps, nil
}

func preprocessOne(fs *source.FileSet, res *FileResult, ppOut **preprocessor.Preprocessor, opts Options) {
	bag := diag.NewBag(0)
	pp := preprocessor.New(fs, res.FileID, preprocessor.Options{
		Reporter: diag.BagReporter{Bag: bag},
		Defines:  opts.Defines,
	})
	for {
		tok := pp.Next()
		res.Tokens = append(res.Tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	res.Bag = bag
	*ppOut = pp
}

// ElaborateResult is the outcome of a full pipeline run.
type ElaborateResult struct {
	Comp  *sema.Compilation
	Files []FileResult
}

// Elaborate runs the whole front end: preprocess each file, parse via
// the external parser, build the definition catalog, and elaborate the
// hierarchy. File diagnostics merge into the compilation's bag in input
// order, keeping output deterministic.
func Elaborate(ctx context.Context, paths []string, opts Options) (*ElaborateResult, error) {
	if opts.Parse == nil {
		return nil, fmt.Errorf("no parser registered")
	}

	fs := source.NewFileSet()
	results, pps, err := PreprocessFiles(ctx, fs, paths, opts)
	if err != nil {
		return nil, err
	}

	comp := sema.NewCompilation(fs, sema.Options{
		DefaultNetType:   opts.DefaultNetType,
		MaxInstanceDepth: opts.MaxInstanceDepth,
		Tops:             opts.Tops,
	})

	for i := range results {
		comp.Diags.Merge(results[i].Bag)

		members, err := opts.Parse(fs, results[i].FileID, pps[i])
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", results[i].Path, err)
		}
		comp.AddSyntaxTree(members)
	}

	comp.Elaborate()
	return &ElaborateResult{Comp: comp, Files: results}, nil
}

// SortPaths orders input files deterministically.
func SortPaths(paths []string) {
	sort.Strings(paths)
}
