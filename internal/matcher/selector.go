package matcher

import (
	"github.com/chainkt/chainkt/internal/generator"
	"github.com/chainkt/chainkt/internal/ir"
)

// buildFindOperationGenerator decides which call-chain operation reproduces
// the idiom described by the found / not-found value pair, or nil when no
// operation preserves the loop's semantics.
func buildFindOperationGenerator(
	state *ir.MatchingState,
	filter *ir.FilterCondition,
	valueIfFound, valueIfNotFound ir.Expr,
	findFirst bool,
) generator.Generator {
	loop := state.Loop
	input := state.InputVar

	if state.IndexVar != nil {
		return buildIndexGenerator(state, filter, valueIfFound, valueIfNotFound, findFirst)
	}

	// Bare reference to the element: firstOrNull / lastOrNull.
	if name, ok := valueIfFound.(*ir.Name); ok && name.Decl == input {
		fn := "firstOrNull"
		if !findFirst {
			fn = "lastOrNull"
		}
		base := &generator.Simple{
			FunctionName: fn,
			Receiver:     loop.Iterable,
			Filter:       filterExpr(filter),
			FilterParam:  input,
		}
		return applyElvisFallback(state, base, valueIfNotFound)
	}

	// Boolean pair: found flag, possibly negated.
	if ir.IsBoolLiteral(valueIfFound, true) && ir.IsBoolLiteral(valueIfNotFound, false) {
		return buildFoundFlagGenerator(state, filter, false)
	}
	if ir.IsBoolLiteral(valueIfFound, false) && ir.IsBoolLiteral(valueIfNotFound, true) {
		return buildFoundFlagGenerator(state, filter, true)
	}

	if ir.References(valueIfFound, input) {
		// Evaluating the found value has potential side effects; discarding
		// those for every non-last match is only acceptable when the loop
		// stops at the first one anyway.
		if !findFirst {
			return nil
		}
		base := &generator.Simple{
			FunctionName: "firstOrNull",
			Receiver:     loop.Iterable,
			Filter:       filterExpr(filter),
			FilterParam:  input,
		}
		if sel, ok := valueIfFound.(*ir.Select); ok {
			if recv, ok := sel.Receiver.(*ir.Name); ok && recv.Decl == input && !ir.References(sel.Selector, input) {
				return applyElvisFallback(state, &generator.SafeCallChain{Inner: base, Selector: sel.Selector}, valueIfNotFound)
			}
		}
		// General shape: bind the found element in a let. A nullable element
		// type makes "found null" indistinguishable from "not found" through
		// the nullable result, unless the not-found value is null itself.
		if state.Oracles.IsNullable(input) && !ir.IsNullLiteral(valueIfNotFound) {
			return nil
		}
		let := &generator.LetBinding{Inner: base, Param: input, Body: valueIfFound}
		return applyElvisFallback(state, let, valueIfNotFound)
	}

	// Fallback: compute the found flag and select between the two values.
	flag := buildFoundFlagGenerator(state, filter, false)
	return &generator.Conditional{Flag: flag, Then: valueIfFound, Otherwise: valueIfNotFound}
}

// buildIndexGenerator handles the index-variable idiom: return the index of a
// match, or -1 when there is none.
func buildIndexGenerator(
	state *ir.MatchingState,
	filter *ir.FilterCondition,
	valueIfFound, valueIfNotFound ir.Expr,
	findFirst bool,
) generator.Generator {
	// Without a filter the first index is trivially 0; with a filter over the
	// index variable the chain forms are ambiguous.
	if filter == nil || ir.References(filter.Expr, state.IndexVar) {
		return nil
	}
	name, ok := valueIfFound.(*ir.Name)
	if !ok || name.Decl != state.IndexVar {
		return nil
	}
	// TODO: only the -1 sentinel is recognized; indexOf and friends return -1
	// and any other not-found value would need an extra comparison stage.
	if !ir.IsIntLiteral(valueIfNotFound, "-1") {
		return nil
	}

	if arg := filterAsContainsArgument(state, filter); arg != nil {
		fn := "indexOf"
		if !findFirst {
			fn = "lastIndexOf"
		}
		return &generator.Simple{FunctionName: fn, Receiver: state.Loop.Iterable, Args: []ir.Expr{arg}}
	}
	fn := "indexOfFirst"
	if !findFirst {
		fn = "indexOfLast"
	}
	return &generator.Simple{
		FunctionName: fn,
		Receiver:     state.Loop.Iterable,
		Filter:       filter.Expr,
		FilterParam:  state.InputVar,
	}
}

// buildFoundFlagGenerator produces a boolean "was anything found" generator.
// It never fails: any/none always apply, and contains is preferred when the
// filter is an equality test against a loop-invariant value.
func buildFoundFlagGenerator(state *ir.MatchingState, filter *ir.FilterCondition, negated bool) generator.Generator {
	if filter != nil {
		if arg := filterAsContainsArgument(state, filter); arg != nil {
			var g generator.Generator = &generator.Simple{
				FunctionName: "contains",
				Receiver:     state.Loop.Iterable,
				Args:         []ir.Expr{arg},
			}
			if negated {
				g = &generator.Negated{Inner: g}
			}
			return g
		}
	}
	fn := "any"
	if negated {
		fn = "none"
	}
	g := &generator.Simple{FunctionName: fn, Receiver: state.Loop.Iterable}
	if filter != nil {
		g.Filter = filter.Expr
		g.FilterParam = state.InputVar
	}
	return g
}

// filterAsContainsArgument recognizes a filter of the shape `input == x` (or
// `x == input`) where x is loop-invariant and side-effect-free, and returns
// x. Such filters compile to contains/indexOf with x as the argument instead
// of a lambda.
func filterAsContainsArgument(state *ir.MatchingState, filter *ir.FilterCondition) ir.Expr {
	bin, ok := filter.Expr.(*ir.Binary)
	if !ok || bin.Op != "==" {
		return nil
	}
	var candidate ir.Expr
	if name, ok := bin.Left.(*ir.Name); ok && name.Decl == state.InputVar {
		candidate = bin.Right
	} else if name, ok := bin.Right.(*ir.Name); ok && name.Decl == state.InputVar {
		candidate = bin.Left
	} else {
		return nil
	}
	if ir.References(candidate, state.InputVar) {
		return nil
	}
	if !state.Oracles.IsLoopInvariant(candidate, state.Loop) || !state.Oracles.SideEffectFree(candidate) {
		return nil
	}
	return candidate
}

// applyElvisFallback finishes a generator whose natural result is nullable.
// A null not-found value needs no wrapper. A non-null fallback gets an elvis
// wrapper, but only when the element type itself is non-null: otherwise a
// null result could mean "found null" rather than "not found" and the rewrite
// is declined.
func applyElvisFallback(state *ir.MatchingState, gen generator.Generator, valueIfNotFound ir.Expr) generator.Generator {
	if ir.IsNullLiteral(valueIfNotFound) {
		return gen
	}
	if state.Oracles.IsNullable(state.InputVar) {
		return nil
	}
	return &generator.Elvis{Inner: gen, Fallback: valueIfNotFound}
}

func filterExpr(filter *ir.FilterCondition) ir.Expr {
	if filter == nil {
		return nil
	}
	return filter.Expr
}
