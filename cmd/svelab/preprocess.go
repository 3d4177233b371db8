package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"svelab/internal/diagfmt"
	"svelab/internal/driver"
	"svelab/internal/source"
	"svelab/internal/token"
)

var preprocessCmd = &cobra.Command{
	Use:   "preprocess [flags] file.sv...",
	Short: "Run the preprocessor and print the resulting text",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPreprocess,
}

func init() {
	preprocessCmd.Flags().Bool("tokens", false, "print tokens instead of reconstructed text")
}

func runPreprocess(cmd *cobra.Command, args []string) error {
	asTokens, _ := cmd.Flags().GetBool("tokens")
	includeDirs, _ := cmd.Root().PersistentFlags().GetStringSlice("include")
	defines, _ := cmd.Root().PersistentFlags().GetStringToString("define")

	fs := source.NewFileSet()
	results, _, err := driver.PreprocessFiles(context.Background(), fs, args, driver.Options{
		IncludeDirs: includeDirs,
		Defines:     defines,
	})
	if err != nil {
		return err
	}

	opts := diagfmt.Options{Color: useColor(cmd, os.Stderr), Context: true}
	hadErrors := false
	for _, res := range results {
		if res.Bag.Len() > 0 {
			diagfmt.Pretty(os.Stderr, res.Bag, fs, opts)
		}
		hadErrors = hadErrors || res.Bag.HasErrors()

		for _, tok := range res.Tokens {
			if asTokens {
				if tok.Kind != token.EOF {
					fmt.Fprintf(cmd.OutOrStdout(), "%-22s %-14s %q\n", tok.Span, tok.Kind, tok.Text)
				}
				continue
			}
			// Reconstructed text: trivia plus token spelling.
			fmt.Fprint(cmd.OutOrStdout(), tok.FullText())
		}
		if !asTokens {
			fmt.Fprintln(cmd.OutOrStdout())
		}
	}

	if hadErrors {
		return fmt.Errorf("preprocessing produced errors")
	}
	return nil
}
