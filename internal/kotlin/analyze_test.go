package kotlin

import (
	"context"
	"testing"

	"github.com/chainkt/chainkt/internal/ir"
)

func analyzeOne(t *testing.T, src string) *Candidate {
	t.Helper()
	candidates, err := Analyze(context.Background(), []byte(src))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(candidates))
	}
	return candidates[0]
}

func TestValidate(t *testing.T) {
	ok, err := Validate(context.Background(), []byte("fun f(items: List<Int>) {\n    for (x in items) {\n    }\n}\n"))
	if err != nil || !ok {
		t.Errorf("Validate(well-formed) = %v, %v", ok, err)
	}
	ok, err = Validate(context.Background(), []byte("fun broken( {\n"))
	if err != nil || ok {
		t.Errorf("Validate(broken) = %v, %v", ok, err)
	}
}

func TestAnalyzeReturnIdiom(t *testing.T) {
	src := `fun firstPositive(items: List<Int>): Int {
    for (x in items) {
        if (x > 0) {
            return x
        }
    }
    return -1
}
`
	cand := analyzeOne(t, src)
	state := cand.State

	if state.InputVar == nil || state.InputVar.Name != "x" {
		t.Fatalf("InputVar = %+v", state.InputVar)
	}
	if state.IndexVar != nil {
		t.Errorf("IndexVar = %+v, want nil", state.IndexVar)
	}
	if got := state.Loop.Iterable.String(); got != "items" {
		t.Errorf("Iterable = %q", got)
	}

	if cand.Filter == nil {
		t.Fatal("guard condition was not peeled into a filter")
	}
	if got := cand.Filter.Expr.String(); got != "x > 0" {
		t.Errorf("filter = %q", got)
	}

	if len(state.Statements) != 1 {
		t.Fatalf("got %d residual statements, want 1", len(state.Statements))
	}
	ret, ok := state.Statements[0].(*ir.Return)
	if !ok {
		t.Fatalf("residual statement = %T, want *ir.Return", state.Statements[0])
	}
	name, ok := ret.Value.(*ir.Name)
	if !ok || name.Decl != state.InputVar {
		t.Errorf("returned value = %v, want the loop variable", ret.Value)
	}

	following, ok := state.Following.(*ir.Return)
	if !ok {
		t.Fatalf("Following = %T, want *ir.Return", state.Following)
	}
	if !ir.IsIntLiteral(following.Value, "-1") {
		t.Errorf("following return value = %v, want -1", following.Value)
	}
	if got := src[following.ValueSpan.Start:following.ValueSpan.End]; got != "-1" {
		t.Errorf("ValueSpan covers %q, want \"-1\"", got)
	}
}

func TestAnalyzeContinueFilter(t *testing.T) {
	src := `fun f(items: List<Int>): Int {
    for (x in items) {
        if (x < 0) continue
        return x
    }
    return -1
}
`
	cand := analyzeOne(t, src)
	if cand.Filter == nil {
		t.Fatal("continue guard was not peeled")
	}
	if got := cand.Filter.Expr.String(); got != "!(x < 0)" {
		t.Errorf("filter = %q", got)
	}
	if len(cand.State.Statements) != 1 {
		t.Errorf("got %d residual statements, want 1", len(cand.State.Statements))
	}
}

func TestAnalyzeStackedFilters(t *testing.T) {
	src := `fun f(items: List<String>): String? {
    for (x in items) {
        if (x != other) continue
        if (x.isNotEmpty()) {
            return x
        }
    }
    return null
}
`
	cand := analyzeOne(t, src)
	if cand.Filter == nil {
		t.Fatal("filters were not peeled")
	}
	if got := cand.Filter.Expr.String(); got != "x == other && x.isNotEmpty()" {
		t.Errorf("filter = %q", got)
	}
}

func TestAnalyzePrecedingInitialization(t *testing.T) {
	src := `fun f(items: List<Int>): Boolean {
    var found = false
    for (x in items) {
        if (x < 0) {
            found = true
            break
        }
    }
    return found
}
`
	cand := analyzeOne(t, src)
	state := cand.State

	if len(state.Preceding) != 1 {
		t.Fatalf("got %d preceding initializations, want 1", len(state.Preceding))
	}
	init := state.Preceding[0]
	if init.Variable.Name != "found" || !init.Mutable {
		t.Errorf("initialization = %+v", init)
	}
	if !ir.IsBoolLiteral(init.Initializer, false) {
		t.Errorf("initializer = %v, want false", init.Initializer)
	}
	if got := src[init.InitializerSpan.Start:init.InitializerSpan.End]; got != "false" {
		t.Errorf("InitializerSpan covers %q", got)
	}
	if got := src[init.KeywordSpan.Start:init.KeywordSpan.End]; got != "var" {
		t.Errorf("KeywordSpan covers %q", got)
	}

	if len(state.Statements) != 2 {
		t.Fatalf("got %d residual statements, want 2", len(state.Statements))
	}
	assign, ok := state.Statements[0].(*ir.Assign)
	if !ok || assign.Target != init.Variable {
		t.Errorf("first residual statement = %+v, want assignment to found", state.Statements[0])
	}
	br, ok := state.Statements[1].(*ir.Break)
	if !ok || br.Target != state.Loop {
		t.Errorf("second residual statement = %+v, want break out of the loop", state.Statements[1])
	}
}

func TestAnalyzeImmutableInitialization(t *testing.T) {
	src := `fun f(items: List<Int>): Int {
    val fallback = -1
    for (x in items) {
        if (x > 0) {
            return x
        }
    }
    return fallback
}
`
	cand := analyzeOne(t, src)
	state := cand.State

	if len(state.Preceding) != 1 {
		t.Fatalf("got %d preceding initializations, want 1", len(state.Preceding))
	}
	init := state.Preceding[0]
	if init.Mutable {
		t.Error("val binding reported as mutable")
	}
	if got := src[init.KeywordSpan.Start:init.KeywordSpan.End]; got != "val" {
		t.Errorf("KeywordSpan covers %q, want \"val\"", got)
	}
}

func TestAnalyzeWithIndex(t *testing.T) {
	src := `fun f(items: List<String>, target: String): Int {
    var pos = -1
    for ((i, x) in items.withIndex()) {
        if (x == target) {
            pos = i
            break
        }
    }
    return pos
}
`
	cand := analyzeOne(t, src)
	state := cand.State

	if state.IndexVar == nil || state.IndexVar.Name != "i" {
		t.Fatalf("IndexVar = %+v", state.IndexVar)
	}
	if state.InputVar == nil || state.InputVar.Name != "x" {
		t.Fatalf("InputVar = %+v", state.InputVar)
	}
	if got := state.Loop.Iterable.String(); got != "items" {
		t.Errorf("Iterable = %q, want the receiver without withIndex()", got)
	}

	if len(state.Preceding) != 1 || !ir.IsIntLiteral(state.Preceding[0].Initializer, "-1") {
		t.Fatalf("preceding initializations = %+v", state.Preceding)
	}
	assign, ok := state.Statements[0].(*ir.Assign)
	if !ok {
		t.Fatalf("first residual statement = %T", state.Statements[0])
	}
	name, ok := assign.Value.(*ir.Name)
	if !ok || name.Decl != state.IndexVar {
		t.Errorf("assigned value = %v, want the index variable", assign.Value)
	}
}

func TestAnalyzeSkipsOtherDestructuring(t *testing.T) {
	src := `fun f(pairs: List<Pair<Int, Int>>) {
    for ((a, b) in pairs) {
        use(a, b)
    }
}
`
	candidates, err := Analyze(context.Background(), []byte(src))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("got %d candidates, want 0 for non-withIndex destructuring", len(candidates))
	}
}

func TestAnalyzeSkipsEmptyBody(t *testing.T) {
	src := "fun f(items: List<Int>) {\n    for (x in items) {\n    }\n}\n"
	candidates, err := Analyze(context.Background(), []byte(src))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("got %d candidates, want 0 for an empty body", len(candidates))
	}
}

func TestAnalyzeLabeledLoop(t *testing.T) {
	src := `fun f(items: List<Int>): Int {
    outer@ for (x in items) {
        if (x > 0) {
            return x
        }
    }
    return -1
}
`
	cand := analyzeOne(t, src)
	loop := cand.State.Loop
	if loop.Label != "outer" {
		t.Errorf("Label = %q", loop.Label)
	}
	if got := src[loop.Span.Start:loop.Span.End]; got[:6] != "outer@" {
		t.Errorf("loop span starts with %q, want the label included", got[:6])
	}
}

func TestAnalyzeBraceFreeBody(t *testing.T) {
	src := `fun f(items: List<Int>): Int {
    for (x in items) if (x > 0) return x
    return -1
}
`
	cand := analyzeOne(t, src)
	if cand.Filter == nil || cand.Filter.Expr.String() != "x > 0" {
		t.Fatalf("filter = %+v", cand.Filter)
	}
	if _, ok := cand.State.Statements[0].(*ir.Return); !ok {
		t.Errorf("residual statement = %T, want *ir.Return", cand.State.Statements[0])
	}
}

func TestAnalyzeNullableAnnotation(t *testing.T) {
	src := `fun f(items: List<String?>): String? {
    for (x: String? in items) {
        if (x != null) {
            return x
        }
    }
    return null
}
`
	cand := analyzeOne(t, src)
	if !cand.State.Oracles.IsNullable(cand.State.InputVar) {
		t.Error("annotated String? loop variable must be nullable")
	}
}
