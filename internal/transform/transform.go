// Package transform packages a successful idiom match together with the
// minimal edits needed to splice the generated call chain into the source and
// delete the now-dead loop.
package transform

import (
	"fmt"

	"github.com/chainkt/chainkt/internal/generator"
	"github.com/chainkt/chainkt/internal/ir"
)

// Edit is a single text rewrite: replace the span with NewText. Deleting is
// replacing with the empty string.
type Edit struct {
	Span    ir.Span
	NewText string
}

// Transformation is the common surface of the two result variants. A
// transformation is consumed once: ConvertLoop must not be called twice.
type Transformation interface {
	Loop() *ir.Loop
	Generator() generator.Generator
	// Presentation is the human-readable description shown to the user.
	Presentation() string
	// ChainCalls mirrors the generator's chain-call count for the driver's
	// net-simplification judgement.
	ChainCalls() int
	// CommentRange is the source range whose comments must survive the
	// rewrite.
	CommentRange() ir.Span
	// TargetSpan is the site that receives the generated expression.
	TargetSpan() ir.Span
	// ConvertLoop produces the edits that splice the generated expression in
	// and remove the loop. Single-shot.
	ConvertLoop(expr ir.Expr) []Edit
}

// Result wraps exactly one of the two transformation variants.
type Result struct {
	ReturnBased *FindAndReturn
	AssignBased *FindAndAssign
}

// Transformation returns the variant the result carries.
func (r *Result) Transformation() Transformation {
	if r.ReturnBased != nil {
		return r.ReturnBased
	}
	return r.AssignBased
}

// FindAndReturn replaces the returned expression of the statement following
// the loop and deletes the loop.
type FindAndReturn struct {
	loop      *ir.Loop
	following *ir.Return
	gen       generator.Generator
	converted bool
}

// NewFindAndReturn builds the return-based variant. The following return must
// carry a value; the classifier checked that before delegating here.
func NewFindAndReturn(loop *ir.Loop, following *ir.Return, gen generator.Generator) *Result {
	if following.Value == nil {
		panic("transform: following return has no returned expression")
	}
	return &Result{ReturnBased: &FindAndReturn{loop: loop, following: following, gen: gen}}
}

func (t *FindAndReturn) Loop() *ir.Loop                 { return t.loop }
func (t *FindAndReturn) Generator() generator.Generator { return t.gen }
func (t *FindAndReturn) ChainCalls() int                { return t.gen.ChainCalls() }

func (t *FindAndReturn) Presentation() string {
	return fmt.Sprintf("Replace loop with '%s'", t.gen.Description())
}

func (t *FindAndReturn) CommentRange() ir.Span {
	return ir.Span{Start: t.loop.Span.Start, End: t.following.ValueSpan.End}
}

func (t *FindAndReturn) TargetSpan() ir.Span { return t.following.ValueSpan }

func (t *FindAndReturn) ConvertLoop(expr ir.Expr) []Edit {
	if t.converted {
		panic("transform: ConvertLoop called twice")
	}
	t.converted = true
	return []Edit{
		{Span: t.following.ValueSpan, NewText: expr.String()},
		{Span: t.loop.Span, NewText: ""},
	}
}

// FindAndAssign replaces the pre-loop initializer with the generated
// expression, tightens the mutable binding to val, and deletes the loop.
type FindAndAssign struct {
	loop      *ir.Loop
	init      *ir.VariableInitialization
	gen       generator.Generator
	converted bool
}

// NewFindAndAssign builds the assignment-based variant.
func NewFindAndAssign(loop *ir.Loop, init *ir.VariableInitialization, gen generator.Generator) *Result {
	return &Result{AssignBased: &FindAndAssign{loop: loop, init: init, gen: gen}}
}

func (t *FindAndAssign) Loop() *ir.Loop                 { return t.loop }
func (t *FindAndAssign) Generator() generator.Generator { return t.gen }
func (t *FindAndAssign) ChainCalls() int                { return t.gen.ChainCalls() }

func (t *FindAndAssign) Presentation() string {
	return fmt.Sprintf("Replace loop with '%s'", t.gen.Description())
}

func (t *FindAndAssign) CommentRange() ir.Span {
	return ir.Span{Start: t.init.InitializerSpan.Start, End: t.loop.Span.End}
}

func (t *FindAndAssign) TargetSpan() ir.Span { return t.init.InitializerSpan }

func (t *FindAndAssign) ConvertLoop(expr ir.Expr) []Edit {
	if t.converted {
		panic("transform: ConvertLoop called twice")
	}
	t.converted = true
	edits := []Edit{
		{Span: t.init.InitializerSpan, NewText: expr.String()},
		{Span: t.loop.Span, NewText: ""},
	}
	// The loop held the variable's only other use, so after deletion the
	// binding is effectively final.
	if t.init.Mutable && t.init.KeywordSpan.Len() > 0 {
		edits = append(edits, Edit{Span: t.init.KeywordSpan, NewText: "val"})
	}
	return edits
}
