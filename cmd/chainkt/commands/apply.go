package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chainkt/chainkt/db"
	"github.com/chainkt/chainkt/internal/config"
	"github.com/chainkt/chainkt/internal/util"
)

var (
	applyStageID string
	applyForce   bool
)

var applyCmd = &cobra.Command{
	Use:   "apply [stage-id]",
	Short: "Apply staged rewrites to disk",
	Long: `Write pending staged rewrites to their files. Each file is verified
against the digest recorded at staging time; files modified since staging are
skipped unless --force is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runApply,
}

func init() {
	applyCmd.Flags().BoolVarP(&applyForce, "force", "f", false, "Apply even when the file changed since staging")
}

func runApply(cmd *cobra.Command, args []string) error {
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

	stages, err := store.ListPending()
	if err != nil {
		return err
	}
	if len(args) == 1 {
		applyStageID = args[0]
	}

	applied, skipped := 0, 0
	for _, stage := range stages {
		if applyStageID != "" && stage.ID != applyStageID {
			continue
		}

		current, err := os.ReadFile(stage.File)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  ✗ %s: %v\n", stage.File, err)
			skipped++
			continue
		}
		if !applyForce && util.SHA1Hex(current) != stage.BaseDigest {
			fmt.Fprintf(os.Stderr, "  ✗ %s: modified since staging (use --force to override)\n", stage.File)
			if err := store.MarkFailed(stage.ID); err != nil {
				return err
			}
			skipped++
			continue
		}

		if err := util.WriteFileAtomic(stage.File, []byte(stage.Modified), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "  ✗ %s: %v\n", stage.File, err)
			skipped++
			continue
		}
		if _, err := store.MarkApplied(stage.ID, "cli", false); err != nil {
			return err
		}
		fmt.Fprintf(out, "  ✓ %s (%s)\n", stage.File, stage.ID)
		applied++
	}

	switch {
	case applied == 0 && skipped == 0:
		fmt.Fprintln(out, "No staged changes to apply.")
	case skipped > 0:
		fmt.Fprintf(out, "Applied %d change(s), skipped %d.\n", applied, skipped)
		return fmt.Errorf("%d stage(s) could not be applied", skipped)
	default:
		fmt.Fprintf(out, "Applied %d change(s).\n", applied)
	}
	return nil
}
