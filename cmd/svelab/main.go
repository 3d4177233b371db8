package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"svelab/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "svelab",
	Short: "SystemVerilog elaboration front end",
	Long:  `svelab lexes, preprocesses and elaborates SystemVerilog designs into a semantic model`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(preprocessCmd)
	rootCmd.AddCommand(elaborateCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().StringSliceP("include", "I", nil, "include search directories")
	rootCmd.PersistentFlags().StringToString("define", nil, "predefine macros (name=value)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func useColor(cmd *cobra.Command, f *os.File) bool {
	colorFlag, _ := cmd.Root().PersistentFlags().GetString("color")
	return colorFlag == "on" || (colorFlag == "auto" && isTerminal(f))
}
