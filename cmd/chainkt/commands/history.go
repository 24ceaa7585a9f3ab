package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainkt/chainkt/db"
	"github.com/chainkt/chainkt/internal/config"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show applied rewrites, newest first",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum entries to show (0 = all)")
	historyCmd.Flags().BoolVarP(&historyJSON, "json", "j", false, "Output in JSON format")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if flagDB != "" {
		cfg.DBPath = flagDB
	}
	out := cmd.OutOrStdout()

	conn, err := db.Connect(cfg.DBPath, flagDebug || cfg.Debug)
	if err != nil {
		return err
	}
	store := db.NewStore(conn)

	applies, err := store.History(historyLimit)
	if err != nil {
		return err
	}

	if historyJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(applies)
	}

	if len(applies) == 0 {
		fmt.Fprintln(out, "No applied rewrites.")
		return nil
	}
	for _, a := range applies {
		fmt.Fprintf(out, "%s  %s  %s  %s\n",
			a.AppliedAt.Format("2006-01-02 15:04:05"),
			a.ID,
			a.Stage.File,
			a.Stage.Operation,
		)
	}
	return nil
}
