package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chainkt/chainkt/db"
	"github.com/chainkt/chainkt/internal/config"
	"github.com/chainkt/chainkt/internal/engine"
	"github.com/chainkt/chainkt/internal/kotlin"
	"github.com/chainkt/chainkt/internal/model"
	"github.com/chainkt/chainkt/internal/registry"
	"github.com/chainkt/chainkt/internal/scanner"
	"github.com/chainkt/chainkt/internal/util"
	"github.com/chainkt/chainkt/internal/writer"
)

var (
	rewriteInclude       []string
	rewriteExclude       []string
	rewriteNoGitignore   bool
	rewriteFollowLinks   bool
	rewriteMaxBytes      int64
	rewriteWorkers       int
	rewriteMaxChainCalls int
	rewriteDiffContext   int
	rewriteShowDiff      bool
	rewriteJSON          bool
	rewriteDryRun        bool
	rewriteWrite         bool
	rewriteInteractive   bool
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite [targets...]",
	Short: "Scan Kotlin sources and stage find-loop rewrites",
	Long: `Scan the given files and directories (default: current directory) for
imperative find loops and compute their call-chain rewrites.

By default the rewrites are staged in the database for review; nothing on
disk changes until 'chainkt apply'. Use --write to apply immediately or
--dry-run to only report what would change.

Examples:
  chainkt rewrite src/
  chainkt rewrite --diff --dry-run src/main/kotlin
  chainkt rewrite --write --include '**/*.kt' .`,
	RunE: runRewrite,
}

func init() {
	f := rewriteCmd.Flags()
	f.StringSliceVar(&rewriteInclude, "include", nil, "Include file patterns (glob)")
	f.StringSliceVar(&rewriteExclude, "exclude", nil, "Exclude file patterns (glob)")
	f.BoolVar(&rewriteNoGitignore, "no-gitignore", false, "Disable .gitignore filtering")
	f.BoolVar(&rewriteFollowLinks, "follow-symlinks", false, "Follow symbolic links during traversal")
	f.Int64Var(&rewriteMaxBytes, "max-bytes", 0, "Maximum file size to process (default from config)")
	f.IntVarP(&rewriteWorkers, "workers", "w", 0, "Concurrent workers (default: all CPUs)")
	f.IntVar(&rewriteMaxChainCalls, "max-chain-calls", 0, "Reject rewrites longer than this many chained calls")
	f.IntVarP(&rewriteDiffContext, "diff-context", "C", 3, "Lines of context for diffs")
	f.BoolVarP(&rewriteShowDiff, "diff", "D", false, "Show a unified diff of the changes")
	f.BoolVarP(&rewriteJSON, "json", "j", false, "Output results in JSON format")
	f.BoolVarP(&rewriteDryRun, "dry-run", "d", false, "Report changes without staging or writing")
	f.BoolVar(&rewriteWrite, "write", false, "Write changes directly to disk, skipping the staging area")
	f.BoolVarP(&rewriteInteractive, "interactive", "i", false, "Confirm each file's loop rewrites before writing")
}

func runRewrite(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	applyRewriteFlags(cfg)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	sc := scanner.New(scanner.Config{
		MaxBytes:       cfg.MaxFileBytes,
		FollowSymlinks: rewriteFollowLinks,
		IncludeGlobs:   rewriteInclude,
		ExcludeGlobs:   rewriteExclude,
		NoGitignore:    rewriteNoGitignore,
		Extensions:     kotlin.Extensions(),
	})
	files, err := sc.ScanTargets(ctx, args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No Kotlin files found.")
		return nil
	}

	eng := engine.New(registry.DefaultRegistry, engine.Config{
		MaxChainCalls: cfg.MaxChainCalls,
		Workers:       cfg.Workers,
	})
	results := eng.ProcessFiles(ctx, files)

	if rewriteJSON {
		return emitJSON(cmd, results)
	}
	return emitText(cmd, cfg, results)
}

func applyRewriteFlags(cfg *config.Config) {
	if flagDB != "" {
		cfg.DBPath = flagDB
	}
	if flagDebug {
		cfg.Debug = true
	}
	if rewriteMaxBytes > 0 {
		cfg.MaxFileBytes = rewriteMaxBytes
	}
	if rewriteWorkers > 0 {
		cfg.Workers = rewriteWorkers
	}
	if rewriteMaxChainCalls > 0 {
		cfg.MaxChainCalls = rewriteMaxChainCalls
	}
	if rewriteDiffContext >= 0 {
		cfg.DiffContext = rewriteDiffContext
	}
}

func emitJSON(cmd *cobra.Command, results []*model.Result) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func emitText(cmd *cobra.Command, cfg *config.Config, results []*model.Result) error {
	out := cmd.OutOrStdout()

	changed := make([]*model.Result, 0, len(results))
	failed := 0
	for _, res := range results {
		if !res.Success {
			failed++
			fmt.Fprintf(os.Stderr, "  ✗ %s: %s\n", res.File, res.Error)
			continue
		}
		if len(res.Changes) == 0 {
			continue
		}
		changed = append(changed, res)

		fmt.Fprintf(out, "%s: %d loop(s)\n", res.File, len(res.Changes))
		for _, ch := range res.Changes {
			fmt.Fprintf(out, "  line %d: %s\n", ch.LineStart, ch.Presentation)
		}
		if rewriteShowDiff {
			diff := util.UnifiedDiff(res.OriginalContent, res.ModifiedContent, res.File, cfg.DiffContext)
			if diff != "" {
				fmt.Fprintln(out)
				fmt.Fprint(out, diff)
				fmt.Fprintln(out)
			}
		}
	}

	if len(changed) == 0 {
		fmt.Fprintln(out, "No rewritable loops found.")
		if failed > 0 {
			return fmt.Errorf("%d file(s) failed", failed)
		}
		return nil
	}

	var w writer.Writer
	switch {
	case rewriteDryRun:
		w = writer.NewDryRunWriter()
	case rewriteInteractive:
		w = writer.NewInteractiveWriter()
	case rewriteWrite:
		w = writer.NewDiskWriter()
	default:
		return stageResults(cmd, cfg, changed, failed)
	}

	for _, res := range changed {
		if err := w.WriteResult(res, 0o644); err != nil {
			if errors.Is(err, writer.ErrAborted) {
				break
			}
			return err
		}
	}
	fmt.Fprint(out, w.Summary())
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed", failed)
	}
	return nil
}

func stageResults(cmd *cobra.Command, cfg *config.Config, changed []*model.Result, failed int) error {
	out := cmd.OutOrStdout()

	conn, err := db.Connect(cfg.DBPath, cfg.Debug)
	if err != nil {
		return err
	}
	store := db.NewStore(conn)

	session, err := store.BeginSession(map[string]any{"command": "rewrite"})
	if err != nil {
		return err
	}
	staged := 0
	for _, res := range changed {
		diff := util.UnifiedDiff(res.OriginalContent, res.ModifiedContent, res.File, cfg.DiffContext)
		if _, err := store.StageResult(session.ID, res, diff); err != nil {
			return fmt.Errorf("staging %s: %w", res.File, err)
		}
		staged++
	}
	if err := store.EndSession(session.ID); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nStaged %d change(s) in session %s.\n", staged, session.ID)
	fmt.Fprintln(out, "Run 'chainkt apply' to write them to disk.")
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed", failed)
	}
	return nil
}
