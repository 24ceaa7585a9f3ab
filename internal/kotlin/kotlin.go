// Package kotlin is the Kotlin front-end for the loop rewriting engine. It
// parses source buffers with Tree-sitter, locates candidate for-loops,
// normalizes them into the matcher IR (peeling leading filter conditions into
// reusable predicates), supplies the resolved-fact oracles, and renders
// generated call chains back into Kotlin expression text.
package kotlin

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	tskotlin "github.com/smacker/go-tree-sitter/kotlin"

	"github.com/chainkt/chainkt/internal/ir"
)

// Extensions lists the file extensions this front-end handles.
func Extensions() []string { return []string{".kt", ".kts"} }

// Candidate is one normalized loop ready for idiom matching, together with
// the filter condition peeled off its body, if any.
type Candidate struct {
	State  *ir.MatchingState
	Filter *ir.FilterCondition
}

// Parse parses a Kotlin source buffer.
func Parse(ctx context.Context, src []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(tskotlin.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing kotlin source: %w", err)
	}
	return tree, nil
}

// Validate reports whether the buffer parses without syntax errors.
func Validate(ctx context.Context, src []byte) (bool, error) {
	tree, err := Parse(ctx, src)
	if err != nil {
		return false, err
	}
	defer tree.Close()
	return !tree.RootNode().HasError(), nil
}

// Analyze parses the buffer and returns the normalized loop candidates in
// source order. Loops that do not fit the normalized shape (no iterable, a
// destructuring form other than withIndex, an empty body) are skipped, not
// errors: this is a best-effort harvest.
func Analyze(ctx context.Context, src []byte) ([]*Candidate, error) {
	tree, err := Parse(ctx, src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var loops []*sitter.Node
	collectByType(tree.RootNode(), "for_statement", &loops)

	var candidates []*Candidate
	for _, node := range loops {
		if cand := normalizeLoop(node, src); cand != nil {
			candidates = append(candidates, cand)
		}
	}
	return candidates, nil
}

// collectByType gathers all descendants of the given node type, depth-first.
func collectByType(node *sitter.Node, nodeType string, out *[]*sitter.Node) {
	if node.Type() == nodeType {
		*out = append(*out, node)
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		collectByType(node.NamedChild(i), nodeType, out)
	}
}

// namedChildren returns the named children of a node.
func namedChildren(node *sitter.Node) []*sitter.Node {
	n := int(node.NamedChildCount())
	children := make([]*sitter.Node, 0, n)
	for i := 0; i < n; i++ {
		children = append(children, node.NamedChild(i))
	}
	return children
}

// childOfType returns the first named child with the given type, or nil.
func childOfType(node *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if c := node.NamedChild(i); c.Type() == nodeType {
			return c
		}
	}
	return nil
}

// span converts a node's byte range into an IR span.
func span(node *sitter.Node) ir.Span {
	return ir.Span{Start: int(node.StartByte()), End: int(node.EndByte())}
}
