package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainkt/chainkt/internal/model"
)

// Version information - can be set at build time
var (
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the chainkt version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("chainkt version %s\n", model.CurrentToolVersion)
		if GitCommit != "unknown" {
			fmt.Printf("  Git commit: %s\n", GitCommit)
		}
		if BuildDate != "unknown" {
			fmt.Printf("  Build date: %s\n", BuildDate)
		}
	},
}
