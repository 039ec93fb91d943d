package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "geodiff-action",
	Short: "GeoDiff - detect changes between geospatial database files in CI",
	Long: `GeoDiff is a CI utility that detects and reports differences between two
GeoPackage or SQLite database files. When only one file is given, it compares
against the previous committed revision from git history, then publishes the
result as GitHub Actions outputs and an optional job summary.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(diffCmd)
}
