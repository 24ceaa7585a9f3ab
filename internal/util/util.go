package util

import (
	"bytes"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/chainkt/chainkt/internal/model"
)

// --- String and Slice Helpers ---

// Splice replaces a slice of bytes with another slice.
func Splice(b []byte, start, end int, replacement []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(len(b) - (end - start) + len(replacement))
	buf.Write(b[:start])
	buf.Write(replacement)
	buf.Write(b[end:])
	return buf.Bytes()
}

// TakeIndent extracts the leading whitespace from a string.
func TakeIndent(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == ' ' || r == '\t' {
			b.WriteRune(r)
		} else {
			break
		}
	}
	return b.String()
}

// LineOfOffset returns the 1-based line number of a byte offset.
func LineOfOffset(content string, offset int) int {
	if offset > len(content) {
		offset = len(content)
	}
	return 1 + strings.Count(content[:offset], "\n")
}

// SumChangedBytes calculates the absolute difference in bytes from a list of changes.
func SumChangedBytes(ch []model.Change) int {
	total := 0
	for _, c := range ch {
		d := len(c.New) - len(c.Original)
		if d < 0 {
			d = -d
		}
		total += d
	}
	return total
}

// UnifiedDiff returns a unified diff of two strings with stable a/ b/ headers
// and no color codes.
func UnifiedDiff(from, to, path string, context int) string {
	if from == to {
		return ""
	}
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(from),
		B:        difflib.SplitLines(to),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  context,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return ""
	}
	return text
}
