package kotlin

import (
	"strings"

	"github.com/chainkt/chainkt/internal/ir"
)

// Facts is the resolved-fact oracle backing the matchers for one candidate
// loop. It works from declared types and source text; the matchers never see
// more certainty than the front-end can actually provide, and every check
// errs toward declining a rewrite.
type Facts struct {
	bodyText string
}

func newFacts(bodyText string) *Facts {
	return &Facts{bodyText: bodyText}
}

// IsNullable reports whether the declared type admits null. Loop variables
// without a type annotation are treated as non-null; annotate the variable to
// opt out of rewrites that would conflate "not found" with "found null".
func (f *Facts) IsNullable(v *ir.VarDecl) bool {
	return v.Type.Nullable
}

// IsConstant accepts compile-time literal constants only. The initializer of
// the assign idiom becomes the not-found value and gets moved, so anything
// with evaluation semantics of its own is rejected.
func (f *Facts) IsConstant(e ir.Expr) bool {
	lit, ok := e.(*ir.Literal)
	return ok && lit.Kind != ir.LitOther
}

// IsLoopInvariant reports whether the expression is independent of the loop
// iteration: it references neither the element nor the index variable.
func (f *Facts) IsLoopInvariant(e ir.Expr, loop *ir.Loop) bool {
	if ir.References(e, loop.InputVar) {
		return false
	}
	if loop.IndexVar != nil && ir.References(e, loop.IndexVar) {
		return false
	}
	return true
}

// SideEffectFree is the strict check used where an expression gets duplicated
// or reordered: identifiers, literals, operators and member access pass;
// calls and mutations do not.
func (f *Facts) SideEffectFree(e ir.Expr) bool {
	switch e := e.(type) {
	case *ir.Name, *ir.Literal:
		return true
	case *ir.Binary:
		return f.SideEffectFree(e.Left) && f.SideEffectFree(e.Right)
	case *ir.Unary:
		return f.SideEffectFree(e.Operand)
	case *ir.Select:
		return f.SideEffectFree(e.Receiver) && f.SideEffectFree(e.Selector)
	case *ir.Raw:
		return sideEffectFreeText(e.Text)
	}
	return false
}

// PredicateSafe is the laxer check applied when peeling a filter condition:
// boolean predicates may call into pure-looking code, but any mutation
// disqualifies the peel.
func (f *Facts) PredicateSafe(e ir.Expr) bool {
	return mutationFreeText(exprText(e))
}

// UsageCountInLoop counts standalone references to the variable inside the
// loop body, the assignment target included.
func (f *Facts) UsageCountInLoop(v *ir.VarDecl, loop *ir.Loop) int {
	return ir.CountWord(f.bodyText, v.Name)
}

func exprText(e ir.Expr) string { return e.String() }

func sideEffectFreeText(text string) bool {
	if strings.ContainsAny(text, "({") {
		return false
	}
	return mutationFreeText(text)
}

func mutationFreeText(text string) bool {
	if strings.Contains(text, "++") || strings.Contains(text, "--") {
		return false
	}
	for i := 0; i < len(text); i++ {
		if text[i] != '=' {
			continue
		}
		prev := byte(0)
		if i > 0 {
			prev = text[i-1]
		}
		next := byte(0)
		if i+1 < len(text) {
			next = text[i+1]
		}
		// ==, !=, <=, >= are comparisons; a lone = mutates.
		if next == '=' || prev == '=' || prev == '!' || prev == '<' || prev == '>' {
			if next == '=' {
				i++
			}
			continue
		}
		return false
	}
	return true
}
