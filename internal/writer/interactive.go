package writer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chainkt/chainkt/internal/model"
)

// ErrAborted reports that the user quit an interactive session.
var ErrAborted = errors.New("aborted by user")

// InteractiveWriter lists each rewritten loop and asks for confirmation per
// file before handing the content to the disk writer.
type InteractiveWriter struct {
	disk      *DiskWriter
	in        *bufio.Reader
	out       io.Writer
	confirmed []string
	rejected  []string
}

// NewInteractiveWriter creates an interactive writer on the process terminal.
func NewInteractiveWriter() *InteractiveWriter {
	return NewInteractiveWriterIO(os.Stdin, os.Stdout)
}

// NewInteractiveWriterIO creates an interactive writer over explicit streams.
func NewInteractiveWriterIO(in io.Reader, out io.Writer) *InteractiveWriter {
	return &InteractiveWriter{
		disk: NewDiskWriter(),
		in:   bufio.NewReader(in),
		out:  out,
	}
}

// WriteResult shows the file's loop rewrites and asks before writing.
func (w *InteractiveWriter) WriteResult(res *model.Result, perm os.FileMode) error {
	if len(res.Changes) == 0 {
		return nil
	}

	fmt.Fprintf(w.out, "%s:\n", res.File)
	for _, ch := range res.Changes {
		fmt.Fprintf(w.out, "  line %d: %s\n", ch.LineStart, ch.Presentation)
		fmt.Fprintf(w.out, "    -> %s\n", ch.New)
	}
	fmt.Fprintf(w.out, "Rewrite %d loop(s) in %s? [y/N/q]: ", len(res.Changes), res.File)

	line, err := w.in.ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("reading confirmation: %w", err)
	}

	switch strings.TrimSpace(strings.ToLower(line)) {
	case "y", "yes":
		if err := w.disk.WriteResult(res, perm); err != nil {
			return err
		}
		w.confirmed = append(w.confirmed, res.File)
	case "q", "quit":
		return ErrAborted
	default:
		w.rejected = append(w.rejected, res.File)
	}
	return nil
}

// Summary returns a summary of user decisions.
func (w *InteractiveWriter) Summary() string {
	var sb strings.Builder

	if len(w.confirmed) > 0 {
		sb.WriteString(fmt.Sprintf("Applied changes to %d file(s):\n", len(w.confirmed)))
		for _, path := range w.confirmed {
			sb.WriteString(fmt.Sprintf("  ✓ %s\n", path))
		}
	}

	if len(w.rejected) > 0 {
		sb.WriteString(fmt.Sprintf("Rejected changes to %d file(s):\n", len(w.rejected)))
		for _, path := range w.rejected {
			sb.WriteString(fmt.Sprintf("  ✗ %s\n", path))
		}
	}

	if len(w.confirmed) == 0 && len(w.rejected) == 0 {
		return "No changes were proposed."
	}

	return sb.String()
}
