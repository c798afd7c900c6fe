package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-preview"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "vango-zoom",
		Short: "vango-zoom - click-to-zoom images for Vango apps",
		Long: `vango-zoom animates an image from its place in the page to a large,
centered view and back. This tool serves a live demo gallery, computes zoom
geometry and previews the widget's lifecycle in the terminal.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	}

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newGeometryCommand())
	rootCmd.AddCommand(newPreviewCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
