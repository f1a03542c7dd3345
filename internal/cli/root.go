// Package cli defines Cobra command definitions for the storysense CLI.
// This file contains the root command, version flag, and help output.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/storysense-dev/storysense/internal/tui"
)

var version = "dev" // set via ldflags at build time

var rootCmd = &cobra.Command{
	Use:   "storysense",
	Short: "Side-by-side human rating of generated user stories",
	Long: `StorySense shows two machine-generated rewrites of a user story next to
the original, collects INVEST, quality and preference scores for each,
and exports the ratings as a JSON document.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// When no subcommand is provided, launch TUI if TTY, show help otherwise
		if !tui.IsTTY() {
			return cmd.Help()
		}
		return launchTUI(cmd, "", "", "")
	},
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(rateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
}
