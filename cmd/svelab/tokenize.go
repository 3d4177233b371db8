package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"svelab/internal/diagfmt"
	"svelab/internal/driver"
	"svelab/internal/source"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] file.sv...",
	Short: "Lex SystemVerilog source files into raw tokens",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTokenize,
}

func init() {
	tokenizeCmd.Flags().Bool("trivia", false, "print leading trivia with each token")
}

func runTokenize(cmd *cobra.Command, args []string) error {
	showTrivia, _ := cmd.Flags().GetBool("trivia")

	fs := source.NewFileSet()
	results, err := driver.TokenizeFiles(context.Background(), fs, args)
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
			if showTrivia {
				for _, tr := range tok.Leading {
					fmt.Fprintf(cmd.OutOrStdout(), "  %-14s %q\n", tr.Kind, tr.Text)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-22s %-14s %q\n", tok.Span, tok.Kind, tok.Text)
		}
	}

	if hadErrors {
		return fmt.Errorf("tokenization produced errors")
	}
	return nil
}
