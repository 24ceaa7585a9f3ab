package kotlin

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/chainkt/chainkt/internal/ir"
)

// peelFilter strips leading filter shapes off the loop body and folds them
// into one reusable predicate:
//
//	for (x in xs) { if (cond) { ... } }     -> filter cond
//	for (x in xs) { if (cond) continue; ... } -> filter !cond
//
// Successive shapes combine with &&. Peeling stops at the first statement
// that is not a filter or whose condition mutates state; the remaining
// statements are returned for idiom classification.
func peelFilter(stmts []*sitter.Node, conv *converter, facts *Facts) (ir.Expr, []*sitter.Node) {
	var filter ir.Expr
	for {
		if len(stmts) == 0 {
			return filter, stmts
		}
		first := stmts[0]
		if first.Type() != "if_expression" {
			return filter, stmts
		}
		cond, consequence, alternative := ifParts(first)
		if cond == nil || consequence == nil || alternative != nil {
			return filter, stmts
		}
		condExpr := conv.expr(cond)
		if !facts.PredicateSafe(condExpr) {
			return filter, stmts
		}

		if len(stmts) == 1 {
			// Guard around the whole remaining body.
			filter = conjoin(filter, condExpr)
			stmts = bodyStatements(consequence)
			continue
		}
		if isContinueBody(consequence, conv.src) {
			// Skip pattern: the guard rejects, so the filter is its negation.
			filter = conjoin(filter, negate(condExpr))
			stmts = stmts[1:]
			continue
		}
		return filter, stmts
	}
}

// ifParts destructures an if expression into condition, consequence and
// optional else branch. Field names are tried first; positional layout is the
// fallback.
func ifParts(node *sitter.Node) (cond, consequence, alternative *sitter.Node) {
	cond = node.ChildByFieldName("condition")
	consequence = node.ChildByFieldName("consequence")
	alternative = node.ChildByFieldName("alternative")
	if cond != nil && consequence != nil {
		return cond, consequence, alternative
	}

	var bodies []*sitter.Node
	for _, c := range namedChildren(node) {
		if c.Type() == "control_structure_body" {
			bodies = append(bodies, c)
			continue
		}
		if cond == nil && c.Type() != "comment" {
			cond = c
		}
	}
	if len(bodies) > 0 {
		consequence = bodies[0]
	}
	if len(bodies) > 1 {
		alternative = bodies[1]
	}
	return cond, consequence, alternative
}

// isContinueBody reports whether the branch body is a lone continue.
func isContinueBody(body *sitter.Node, src []byte) bool {
	stmts := bodyStatements(body)
	if len(stmts) != 1 {
		return false
	}
	text := strings.TrimSpace(string(stmts[0].Content(src)))
	return text == "continue" || strings.HasPrefix(text, "continue@")
}

// conjoin folds a new condition into the accumulated filter.
func conjoin(filter, cond ir.Expr) ir.Expr {
	if filter == nil {
		return cond
	}
	return &ir.Binary{Op: "&&", Left: filter, Right: cond}
}

// negate builds the logical negation of a predicate, simplifying the shapes
// that read better without a bang.
func negate(e ir.Expr) ir.Expr {
	switch e := e.(type) {
	case *ir.Unary:
		if e.Op == "!" {
			return e.Operand
		}
	case *ir.Binary:
		switch e.Op {
		case "==":
			return &ir.Binary{Op: "!=", Left: e.Left, Right: e.Right}
		case "!=":
			return &ir.Binary{Op: "==", Left: e.Left, Right: e.Right}
		default:
			return &ir.Raw{Text: "!(" + e.String() + ")", Refs: ir.Refs(e)}
		}
	case *ir.Name, *ir.Select:
		return &ir.Unary{Op: "!", Operand: e}
	}
	if _, ok := e.(*ir.Literal); ok {
		return &ir.Unary{Op: "!", Operand: e}
	}
	return &ir.Raw{Text: "!(" + e.String() + ")", Refs: ir.Refs(e)}
}
