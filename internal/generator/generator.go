// Package generator holds the code-synthesis units produced by a successful
// idiom match. A generator knows which call-chain operation reproduces the
// matched loop and how to materialize it through an externally supplied
// emitter; decorators wrap another generator's output in null-coalescing,
// conditional, safe-call, let-binding or negation combinators.
//
// Generators are stateless apart from their construction arguments, own their
// wrapped child exclusively, and are single-shot: Generate must be called at
// most once per instance.
package generator

import "github.com/chainkt/chainkt/internal/ir"

// CallSpec describes one emission step: a template with $0..$n argument
// placeholders, the ordered arguments, an optional explicit receiver and an
// optional safe-call marking. The emitter turns the spec into an expression
// node; the generators never concatenate source text themselves.
type CallSpec struct {
	Template string
	Args     []ir.Expr
	Receiver ir.Expr
	SafeCall bool
}

// Emitter is the code-emission capability supplied by the caller.
type Emitter interface {
	Emit(spec CallSpec) ir.Expr
}

// Generator synthesizes the replacement expression for a matched loop.
type Generator interface {
	// Description is the display tag of the operation, e.g. "firstOrNull{}"
	// for a lambda-taking call or "contains()" for a plain one.
	Description() string
	// ChainCalls is the number of chained call stages the final expression
	// requires. The driver uses it to judge whether the rewrite is a net
	// simplification.
	ChainCalls() int
	// Generate materializes the expression. Single-shot.
	Generate(em Emitter) ir.Expr
}

// Simple emits a single chained call on the loop's iterable: either
// name { filter } with the filter compiled to a lambda, or name(args...).
type Simple struct {
	FunctionName string
	Receiver     ir.Expr
	Filter       ir.Expr
	FilterParam  *ir.VarDecl
	Args         []ir.Expr
}

func (g *Simple) Description() string {
	if g.Filter != nil {
		return g.FunctionName + "{}"
	}
	return g.FunctionName + "()"
}

func (g *Simple) ChainCalls() int { return 1 }

func (g *Simple) Generate(em Emitter) ir.Expr {
	if g.Filter != nil {
		body := g.Filter
		if g.FilterParam != nil {
			body = ir.Substitute(body, g.FilterParam, "it")
		}
		return em.Emit(CallSpec{
			Template: g.FunctionName + " { $0 }",
			Args:     []ir.Expr{body},
			Receiver: g.Receiver,
		})
	}
	template := g.FunctionName + "("
	for i := range g.Args {
		if i > 0 {
			template += ", "
		}
		template += "$" + string(rune('0'+i))
	}
	template += ")"
	return em.Emit(CallSpec{Template: template, Args: g.Args, Receiver: g.Receiver})
}

// Elvis wraps another generator's nullable result with a non-null fallback:
// inner ?: fallback.
type Elvis struct {
	Inner    Generator
	Fallback ir.Expr
}

func (g *Elvis) Description() string { return g.Inner.Description() }
func (g *Elvis) ChainCalls() int     { return g.Inner.ChainCalls() }

func (g *Elvis) Generate(em Emitter) ir.Expr {
	inner := g.Inner.Generate(em)
	return em.Emit(CallSpec{Template: "$0 ?: $1", Args: []ir.Expr{inner, g.Fallback}})
}

// Conditional selects between two expressions on a boolean flag result:
// if (flag) then else otherwise.
type Conditional struct {
	Flag      Generator
	Then      ir.Expr
	Otherwise ir.Expr
}

func (g *Conditional) Description() string { return g.Flag.Description() }
func (g *Conditional) ChainCalls() int     { return g.Flag.ChainCalls() }

func (g *Conditional) Generate(em Emitter) ir.Expr {
	flag := g.Flag.Generate(em)
	return em.Emit(CallSpec{
		Template: "if ($0) $1 else $2",
		Args:     []ir.Expr{flag, g.Then, g.Otherwise},
	})
}

// SafeCallChain chains a selector onto a nullable result with ?. so the
// selector only evaluates when a match was found.
type SafeCallChain struct {
	Inner    Generator
	Selector ir.Expr
}

func (g *SafeCallChain) Description() string { return g.Inner.Description() }
func (g *SafeCallChain) ChainCalls() int     { return g.Inner.ChainCalls() + 1 }

func (g *SafeCallChain) Generate(em Emitter) ir.Expr {
	inner := g.Inner.Generate(em)
	return em.Emit(CallSpec{
		Template: "$0",
		Args:     []ir.Expr{g.Selector},
		Receiver: inner,
		SafeCall: true,
	})
}

// LetBinding evaluates an arbitrary expression over the found element by
// binding it inside ?.let { ... }.
type LetBinding struct {
	Inner Generator
	Param *ir.VarDecl
	Body  ir.Expr
}

func (g *LetBinding) Description() string { return g.Inner.Description() }
func (g *LetBinding) ChainCalls() int     { return g.Inner.ChainCalls() + 1 }

func (g *LetBinding) Generate(em Emitter) ir.Expr {
	inner := g.Inner.Generate(em)
	body := ir.Substitute(g.Body, g.Param, "it")
	return em.Emit(CallSpec{
		Template: "let { $0 }",
		Args:     []ir.Expr{body},
		Receiver: inner,
		SafeCall: true,
	})
}

// Negated applies a boolean negation to the wrapped generator's result.
type Negated struct {
	Inner Generator
}

func (g *Negated) Description() string { return "!" + g.Inner.Description() }
func (g *Negated) ChainCalls() int     { return g.Inner.ChainCalls() }

func (g *Negated) Generate(em Emitter) ir.Expr {
	inner := g.Inner.Generate(em)
	return em.Emit(CallSpec{Template: "!$0", Args: []ir.Expr{inner}})
}
