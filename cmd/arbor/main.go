// Package main provides the entry point for the arbor CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/arbor/cmd/arbor/commands"
	"github.com/Sumatoshi-tech/arbor/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	rootCmd := &cobra.Command{
		Use:   "arbor",
		Short: "Arbor - interactive ordered-tree sessions",
		Long: `Arbor drives mutable ordered binary trees (search trees and heaps)
through an explicit interaction state machine.

Commands:
  repl      Drive a tree session interactively from stdin
  script    Run an operation script from a YAML or JSON file
  render    Insert values and render the resulting tree`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewReplCommand())
	rootCmd.AddCommand(commands.NewScriptCommand())
	rootCmd.AddCommand(commands.NewRenderCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "arbor %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
