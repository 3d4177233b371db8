package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"svelab/internal/astjson"
	"svelab/internal/diagfmt"
	"svelab/internal/driver"
	"svelab/internal/project"
	"svelab/internal/sema"
	"svelab/internal/symbols"
	"svelab/internal/token"
)

var elaborateCmd = &cobra.Command{
	Use:   "elaborate [flags] [file.sv...]",
	Short: "Elaborate a design into its semantic model",
	Long: `Elaborate preprocesses and parses the inputs, builds the definition
catalog, materializes the instance hierarchy and reports diagnostics.
With no file arguments the inputs come from the project manifest.`,
	RunE: runElaborate,
}

func init() {
	elaborateCmd.Flags().Bool("json", false, "dump the elaborated symbol graph as JSON")
	elaborateCmd.Flags().StringSlice("top", nil, "top-level module names")
	elaborateCmd.Flags().Bool("cache", false, "record pipeline metadata in the disk cache")
}

// parserHook is the seam for the external parser. It stays nil in this
// binary; embedders register a real parser before calling Execute.
var parserHook driver.ParseFunc

func runElaborate(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	tops, _ := cmd.Flags().GetStringSlice("top")
	useCache, _ := cmd.Flags().GetBool("cache")
	includeDirs, _ := cmd.Root().PersistentFlags().GetStringSlice("include")
	defines, _ := cmd.Root().PersistentFlags().GetStringToString("define")

	opts := driver.Options{
		IncludeDirs: includeDirs,
		Defines:     defines,
		Tops:        tops,
		Parse:       parserHook,
	}

	paths := args
	if len(paths) == 0 {
		manifest, err := project.Find(".")
		if err != nil {
			return fmt.Errorf("no input files and %w", err)
		}
		paths = manifest.Compile.Files
		opts.IncludeDirs = append(opts.IncludeDirs, manifest.Compile.IncludeDirs...)
		if opts.Defines == nil {
			opts.Defines = manifest.Compile.Defines
		}
		if len(opts.Tops) == 0 {
			opts.Tops = manifest.Compile.Tops
		}
		opts.MaxInstanceDepth = manifest.Compile.MaxInstanceDepth
		if kw, ok := token.LookupKeyword(manifest.Compile.DefaultNetType); ok {
			opts.DefaultNetType = kw
		}
	}
	driver.SortPaths(paths)

	if useCache {
		cache, err := driver.OpenDiskCache("svelab")
		if err == nil {
			opts.Cache = cache
		}
	}

	result, err := driver.Elaborate(context.Background(), paths, opts)
	if err != nil {
		return err
	}

	fmtOpts := diagfmt.Options{Color: useColor(cmd, os.Stderr), Context: true}
	diagfmt.Pretty(os.Stderr, result.Comp.Diags, result.Comp.Files, fmtOpts)
	diagfmt.Summary(os.Stderr, result.Comp.Diags, fmtOpts)

	if asJSON {
		if err := astjson.New(result.Comp).Serialize(cmd.OutOrStdout()); err != nil {
			return err
		}
	} else {
		for _, top := range result.Comp.TopInstances() {
			printInstanceTree(cmd, result.Comp, top, 0)
		}
	}

	if result.Comp.Diags.HasErrors() {
		return fmt.Errorf("elaboration failed")
	}
	return nil
}

func printInstanceTree(cmd *cobra.Command, comp *sema.Compilation, id symbols.SymbolID, depth int) {
	sym := comp.Syms.Symbol(id)
	if sym == nil {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%*s%s (%s)\n", depth*2, "", comp.Syms.SymbolName(id), sym.Kind)
	if !sym.OwnScope.IsValid() {
		return
	}
	for _, member := range comp.Syms.Members(sym.OwnScope) {
		ms := comp.Syms.Symbol(member)
		if ms.Kind.IsInstance() || ms.Kind == symbols.SymbolInstanceArray {
			printInstanceTree(cmd, comp, member, depth+1)
		}
	}
}
