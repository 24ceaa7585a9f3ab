// Package matcher recognizes imperative "find" loop idioms — scan a
// collection, test each element, return or assign the first (or last) match,
// a found flag, or a match index — and selects the call-chain operation that
// reproduces them.
//
// Every matching function returns nil for "no applicable transformation";
// that is the single failure mode and never an error. Structural
// preconditions violated by the caller panic instead.
package matcher

import (
	"github.com/chainkt/chainkt/internal/ir"
	"github.com/chainkt/chainkt/internal/transform"
)

// FindMatcher matches the find idiom family.
type FindMatcher struct{}

// Name identifies the matcher in the registry.
func (FindMatcher) Name() string { return "find" }

// Match attempts to recognize a find idiom in a loop with no peeled filter.
func (m FindMatcher) Match(state *ir.MatchingState) *transform.Result {
	return m.MatchWithFilter(state, nil)
}

// MatchWithFilter attempts to recognize a find idiom in a loop whose leading
// filter condition has already been peeled off the body.
func (m FindMatcher) MatchWithFilter(state *ir.MatchingState, filter *ir.FilterCondition) *transform.Result {
	if res := m.matchReturn(state, filter); res != nil {
		return res
	}

	// A return unconditionally terminates on the first match; the remaining
	// idioms assign into a pre-declared variable and differ only in whether
	// they break out (find-first) or run to completion (find-last).
	var findFirst bool
	switch len(state.Statements) {
	case 1:
		findFirst = false
	case 2:
		br, ok := state.Statements[1].(*ir.Break)
		if !ok || br.Target != state.Loop {
			return nil
		}
		findFirst = true
	default:
		return nil
	}

	assign, ok := state.Statements[0].(*ir.Assign)
	if !ok {
		return nil
	}
	init := findVariableInitializationBeforeLoop(state, assign.Target)
	if init == nil {
		return nil
	}

	gen := buildFindOperationGenerator(state, filter, assign.Value, init.Initializer, findFirst)
	if gen == nil {
		return nil
	}
	return transform.NewFindAndAssign(state.Loop, init, gen)
}

// matchReturn recognizes the return pair: the body's only statement is a
// return and the statement following the loop is a return with the same
// (possibly absent) label.
func (m FindMatcher) matchReturn(state *ir.MatchingState, filter *ir.FilterCondition) *transform.Result {
	if len(state.Statements) != 1 {
		return nil
	}
	ret, ok := state.Statements[0].(*ir.Return)
	if !ok {
		return nil
	}
	following, ok := state.Following.(*ir.Return)
	if !ok || following.Label != ret.Label {
		return nil
	}
	if ret.Value == nil || following.Value == nil {
		return nil
	}

	gen := buildFindOperationGenerator(state, filter, ret.Value, following.Value, true)
	if gen == nil {
		return nil
	}
	return transform.NewFindAndReturn(state.Loop, following, gen)
}

// findVariableInitializationBeforeLoop resolves the assignment target to a
// variable declared and initialized immediately before the loop, walking
// backward from the loop. The initializer must be a compile-time constant
// because it becomes the not-found value and gets duplicated or moved, and
// the assignment must be the variable's only usage inside the loop.
func findVariableInitializationBeforeLoop(state *ir.MatchingState, target *ir.VarDecl) *ir.VariableInitialization {
	for _, init := range state.Preceding {
		if init.Variable != target {
			continue
		}
		if !state.Oracles.IsConstant(init.Initializer) {
			return nil
		}
		if state.Oracles.UsageCountInLoop(target, state.Loop) != 1 {
			return nil
		}
		return init
	}
	return nil
}
