// Package writer abstracts how rewrite results reach disk: dry-run mode
// tracks the would-be changes, disk mode writes atomically after verifying
// the file still matches the digest the rewrite was computed from, and
// interactive mode confirms each file's loop rewrites first. Staged changes
// go through the db package instead.
package writer

import (
	"fmt"
	"os"
	"strings"

	"github.com/chainkt/chainkt/internal/model"
	"github.com/chainkt/chainkt/internal/util"
)

// Writer consumes per-file rewrite results and decides how they reach disk.
type Writer interface {
	WriteResult(res *model.Result, perm os.FileMode) error
	Summary() string
}

// DryRunWriter tracks file changes without writing to disk.
type DryRunWriter struct {
	changes []FileChange
}

// FileChange represents a file that would be modified.
type FileChange struct {
	Path      string
	Loops     int
	BytesDiff int
}

// NewDryRunWriter creates a new dry-run writer.
func NewDryRunWriter() *DryRunWriter {
	return &DryRunWriter{
		changes: make([]FileChange, 0),
	}
}

// WriteResult records the rewrite without touching the file.
func (w *DryRunWriter) WriteResult(res *model.Result, perm os.FileMode) error {
	w.changes = append(w.changes, FileChange{
		Path:      res.File,
		Loops:     res.LoopsRewritten,
		BytesDiff: len(res.ModifiedContent) - len(res.OriginalContent),
	})
	return nil
}

// Summary returns a summary of changes that would be made.
func (w *DryRunWriter) Summary() string {
	if len(w.changes) == 0 {
		return "No changes would be made."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Would modify %d file(s):\n", len(w.changes)))

	totalBytesDiff := 0
	for _, change := range w.changes {
		totalBytesDiff += change.BytesDiff
		sb.WriteString(fmt.Sprintf("  %s: %d loop(s) (%s bytes)\n",
			change.Path, change.Loops, signed(change.BytesDiff)))
	}
	sb.WriteString(fmt.Sprintf("Total: %s bytes\n", signed(totalBytesDiff)))

	return sb.String()
}

func signed(n int) string {
	if n >= 0 {
		return fmt.Sprintf("+%d", n)
	}
	return fmt.Sprintf("%d", n)
}

// DiskWriter performs actual file writes to disk. A file that no longer
// matches the digest its rewrite was computed from is refused rather than
// clobbered.
type DiskWriter struct {
	writtenFiles []string
}

// NewDiskWriter creates a new disk writer.
func NewDiskWriter() *DiskWriter {
	return &DiskWriter{
		writtenFiles: make([]string, 0),
	}
}

// WriteResult writes the rewritten content to the result's file atomically.
func (w *DiskWriter) WriteResult(res *model.Result, perm os.FileMode) error {
	if before, err := os.Stat(res.File); err == nil {
		current, readErr := os.ReadFile(res.File)
		if readErr != nil {
			return fmt.Errorf("reading %s: %w", res.File, readErr)
		}
		if res.OriginalSHA1 != "" && util.SHA1Hex(current) != res.OriginalSHA1 {
			return fmt.Errorf("%s: file changed since the rewrite was computed", res.File)
		}
		if after, statErr := os.Stat(res.File); statErr == nil && util.RaceDetected(before, after) {
			return fmt.Errorf("%s: file changed while verifying", res.File)
		}
	}

	if err := util.WriteFileAtomic(res.File, []byte(res.ModifiedContent), perm); err != nil {
		return fmt.Errorf("writing file %s: %w", res.File, err)
	}

	w.writtenFiles = append(w.writtenFiles, res.File)
	return nil
}

// Summary returns a summary of files that were written.
func (w *DiskWriter) Summary() string {
	if len(w.writtenFiles) == 0 {
		return "No files were written."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Successfully wrote %d file(s):\n", len(w.writtenFiles)))

	for _, path := range w.writtenFiles {
		sb.WriteString(fmt.Sprintf("  %s\n", path))
	}

	return sb.String()
}
