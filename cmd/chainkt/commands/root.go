// Package commands provides the CLI commands for the chainkt tool.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chainkt/chainkt/internal/matcher"
	"github.com/chainkt/chainkt/internal/registry"
)

var (
	flagDB    string
	flagDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "chainkt",
	Short: "Rewrite imperative Kotlin find loops into call chains",
	Long: `chainkt scans Kotlin sources for imperative "find" loops — scan a
collection, test each element, return or assign the first match, a found
flag, or a match index — and rewrites them into the equivalent call chain:
firstOrNull, lastOrNull, any, none, contains, indexOf and friends.

Rewrites are staged in a local database by default and applied with
'chainkt apply', so every change can be reviewed first.

Usage:
  chainkt rewrite [targets...]   Scan and stage loop rewrites
  chainkt apply                  Apply staged rewrites to disk
  chainkt history                Show applied rewrites
  chainkt version                Print version`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(rewriteCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Staging database path or libsql URL (default: CHAINKT_DB or .chainkt/chainkt.db)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")

	if err := registry.Register(matcher.FindMatcher{}); err != nil {
		panic(err)
	}
}
