// Package engine drives the rewrite pipeline: parse a Kotlin buffer, run the
// registered idiom matchers over every candidate loop, generate the call
// chains, and splice the edits back into the source.
package engine

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/chainkt/chainkt/internal/ir"
	"github.com/chainkt/chainkt/internal/kotlin"
	"github.com/chainkt/chainkt/internal/model"
	"github.com/chainkt/chainkt/internal/registry"
	"github.com/chainkt/chainkt/internal/transform"
	"github.com/chainkt/chainkt/internal/util"
)

// Config tunes the engine.
type Config struct {
	// MaxChainCalls rejects rewrites whose chain exceeds this many call
	// stages; beyond that the chain is no simpler than the loop.
	MaxChainCalls int
	// Workers bounds the file-level concurrency of ProcessFiles.
	Workers int
}

// Engine rewrites find-style loops into call chains.
type Engine struct {
	registry *registry.Registry
	emitter  *kotlin.Emitter
	cfg      Config
}

// New creates an engine over the given matcher registry.
func New(reg *registry.Registry, cfg Config) *Engine {
	if cfg.MaxChainCalls <= 0 {
		cfg.MaxChainCalls = 3
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Engine{registry: reg, emitter: kotlin.NewEmitter(), cfg: cfg}
}

// rewrite is one accepted loop transformation with its materialized edits.
type rewrite struct {
	tr    transform.Transformation
	name  string
	edits []transform.Edit
}

// RewriteSource rewrites every matchable loop in the buffer and returns the
// modified content plus one change record per rewritten loop. A buffer with
// no matchable loops returns the input unchanged and no changes.
func (e *Engine) RewriteSource(ctx context.Context, src []byte) ([]byte, []model.Change, error) {
	if ok, err := kotlin.Validate(ctx, src); err != nil {
		return nil, nil, err
	} else if !ok {
		return nil, nil, model.ErrParseFailed
	}

	candidates, err := kotlin.Analyze(ctx, src)
	if err != nil {
		return nil, nil, err
	}

	var accepted []rewrite
	var spans []ir.Span
	for _, cand := range candidates {
		loopSpan := cand.State.Loop.Span
		if overlapsAny(loopSpan, spans) {
			continue
		}

		rw := e.matchCandidate(cand)
		if rw == nil {
			continue
		}
		// Comments inside the rewritten range have no home in the generated
		// expression; leave such loops alone rather than drop them.
		if containsComment(src, rw.tr.CommentRange(), rw.tr.TargetSpan()) {
			continue
		}

		accepted = append(accepted, *rw)
		spans = append(spans, loopSpan)
	}

	if len(accepted) == 0 {
		return src, nil, nil
	}

	var changes []model.Change
	var allEdits []transform.Edit
	content := string(src)
	for _, rw := range accepted {
		loopSpan := rw.tr.Loop().Span
		changes = append(changes, model.Change{
			Matcher:      rw.name,
			Operation:    rw.tr.Generator().Description(),
			Presentation: rw.tr.Presentation(),
			LineStart:    util.LineOfOffset(content, loopSpan.Start),
			LineEnd:      util.LineOfOffset(content, loopSpan.End),
			Start:        loopSpan.Start,
			End:          loopSpan.End,
			Original:     content[loopSpan.Start:loopSpan.End],
			ChainCalls:   rw.tr.ChainCalls(),
		})
		for _, ed := range rw.edits {
			if ed.NewText == "" {
				ed.Span = expandDeletion(src, ed.Span)
			}
			allEdits = append(allEdits, ed)
		}
		// The generated expression is the edit on the target span.
		for _, ed := range rw.edits {
			if ed.Span == rw.tr.TargetSpan() {
				changes[len(changes)-1].New = ed.NewText
			}
		}
	}

	// Apply in reverse source order so earlier offsets stay valid.
	sort.Slice(allEdits, func(i, j int) bool {
		return allEdits[i].Span.Start > allEdits[j].Span.Start
	})
	out := src
	for _, ed := range allEdits {
		out = util.Splice(out, ed.Span.Start, ed.Span.End, []byte(ed.NewText))
	}
	return out, changes, nil
}

// matchCandidate runs the registered matchers over one candidate, first match
// wins, and materializes the accepted transformation's edits.
func (e *Engine) matchCandidate(cand *kotlin.Candidate) *rewrite {
	for _, m := range e.registry.List() {
		res := m.MatchWithFilter(cand.State, cand.Filter)
		if res == nil {
			continue
		}
		tr := res.Transformation()
		if tr.ChainCalls() > e.cfg.MaxChainCalls {
			return nil
		}
		expr := tr.Generator().Generate(e.emitter)
		return &rewrite{tr: tr, name: m.Name(), edits: tr.ConvertLoop(expr)}
	}
	return nil
}

// ProcessFile reads, rewrites and reports one file. Errors surface in the
// result, not as Go errors: one broken file must not kill the run.
func (e *Engine) ProcessFile(ctx context.Context, path string) *model.Result {
	res := &model.Result{
		File:          path,
		Time:          time.Now().UTC().Format(time.RFC3339),
		SchemaVersion: model.CurrentSchemaVersion,
		ToolVersion:   model.CurrentToolVersion,
	}

	src, err := os.ReadFile(path)
	if err != nil {
		res.Error = err.Error()
		res.ErrorCode = model.ECReadError
		return res
	}
	res.OriginalContent = string(src)
	res.OriginalSHA1 = util.SHA1Hex(src)

	out, changes, err := e.RewriteSource(ctx, src)
	if err != nil {
		res.Error = err.Error()
		if err == model.ErrParseFailed {
			res.ErrorCode = model.ECParseFailed
		} else {
			res.ErrorCode = model.ECUnknown
		}
		return res
	}

	res.Success = true
	res.Changes = changes
	res.LoopsRewritten = len(changes)
	res.ModifiedContent = string(out)
	res.ModifiedSHA1 = util.SHA1Hex(out)
	res.ChangedBytes = util.SumChangedBytes(changes)
	return res
}

// ProcessFiles rewrites the files with a bounded worker pool, preserving
// input order in the results.
func (e *Engine) ProcessFiles(ctx context.Context, files []string) []*model.Result {
	results := make([]*model.Result, len(files))
	jobs := make(chan int)

	done := make(chan struct{})
	for w := 0; w < e.cfg.Workers; w++ {
		go func() {
			for idx := range jobs {
				results[idx] = e.ProcessFile(ctx, files[idx])
			}
			done <- struct{}{}
		}()
	}

dispatch:
	for i := 0; i < len(files); i++ {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	for w := 0; w < e.cfg.Workers; w++ {
		<-done
	}

	for i, r := range results {
		if r == nil {
			results[i] = &model.Result{
				File:      files[i],
				Error:     fmt.Sprintf("cancelled: %v", ctx.Err()),
				ErrorCode: model.ECUnknown,
			}
		}
	}
	return results
}

// overlapsAny reports whether the span intersects any accepted span. Nested
// loops inside an already-rewritten outer loop are skipped this way.
func overlapsAny(s ir.Span, spans []ir.Span) bool {
	for _, other := range spans {
		if s.Start < other.End && other.Start < s.End {
			return true
		}
	}
	return false
}

// expandDeletion widens a deletion span to swallow the leading indentation
// and the trailing newline, so removing a loop does not leave a blank line.
func expandDeletion(src []byte, s ir.Span) ir.Span {
	lineStart := s.Start
	for lineStart > 0 && src[lineStart-1] != '\n' {
		lineStart--
	}
	start := s.Start
	// Swallow the prefix only when the span is alone on its line.
	if prefix := string(src[lineStart:s.Start]); util.TakeIndent(prefix) == prefix {
		start = lineStart
	}
	end := s.End
	for end < len(src) && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	if end < len(src) && src[end] == '\n' {
		end++
	} else {
		end = s.End
	}
	return ir.Span{Start: start, End: end}
}

// containsComment scans the range for line or block comments outside string
// and character literals, ignoring the target span that gets replaced anyway.
func containsComment(src []byte, r ir.Span, target ir.Span) bool {
	if r.Start < 0 || r.End > len(src) || r.Start >= r.End {
		return false
	}
	inStr, inChar := false, false
	for i := r.Start; i < r.End-1; i++ {
		if i >= target.Start && i < target.End {
			continue
		}
		c := src[i]
		switch {
		case inStr:
			if c == '\\' {
				i++
			} else if c == '"' {
				inStr = false
			}
		case inChar:
			if c == '\\' {
				i++
			} else if c == '\'' {
				inChar = false
			}
		case c == '"':
			inStr = true
		case c == '\'':
			inChar = true
		case c == '/' && (src[i+1] == '/' || src[i+1] == '*'):
			return true
		}
	}
	return false
}
