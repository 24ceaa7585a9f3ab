package generator

import (
	"testing"

	"github.com/chainkt/chainkt/internal/ir"
)

// textEmitter renders call specs the way the Kotlin back-end does, so the
// assertions below read as the final source text.
type textEmitter struct{}

func (textEmitter) Emit(spec CallSpec) ir.Expr {
	text := ir.RenderTemplate(spec.Template, spec.Args)
	if spec.Receiver != nil {
		dot := "."
		if spec.SafeCall {
			dot = "?."
		}
		text = spec.Receiver.String() + dot + text
	}
	return &ir.Raw{Text: text}
}

func items() ir.Expr { return &ir.Raw{Text: "items"} }

func TestSimpleWithFilter(t *testing.T) {
	param := &ir.VarDecl{Name: "item"}
	g := &Simple{
		FunctionName: "firstOrNull",
		Receiver:     items(),
		Filter:       &ir.Raw{Text: "item.isValid", Refs: []*ir.VarDecl{param}},
		FilterParam:  param,
	}

	if g.Description() != "firstOrNull{}" {
		t.Errorf("Description = %q", g.Description())
	}
	if g.ChainCalls() != 1 {
		t.Errorf("ChainCalls = %d", g.ChainCalls())
	}
	got := g.Generate(textEmitter{}).String()
	want := "items.firstOrNull { it.isValid }"
	if got != want {
		t.Errorf("Generate = %q, want %q", got, want)
	}
}

func TestSimpleWithArgs(t *testing.T) {
	g := &Simple{
		FunctionName: "contains",
		Receiver:     items(),
		Args:         []ir.Expr{&ir.Raw{Text: "target"}},
	}

	if g.Description() != "contains()" {
		t.Errorf("Description = %q", g.Description())
	}
	got := g.Generate(textEmitter{}).String()
	if got != "items.contains(target)" {
		t.Errorf("Generate = %q", got)
	}
}

func TestSimpleNoFilterNoArgs(t *testing.T) {
	g := &Simple{FunctionName: "any", Receiver: items()}
	if got := g.Generate(textEmitter{}).String(); got != "items.any()" {
		t.Errorf("Generate = %q", got)
	}
}

func TestElvis(t *testing.T) {
	inner := &Simple{FunctionName: "firstOrNull", Receiver: items()}
	g := &Elvis{Inner: inner, Fallback: ir.Int("0")}

	if g.Description() != inner.Description() {
		t.Errorf("Elvis must not change the description: %q", g.Description())
	}
	got := g.Generate(textEmitter{}).String()
	if got != "items.firstOrNull() ?: 0" {
		t.Errorf("Generate = %q", got)
	}
}

func TestConditional(t *testing.T) {
	param := &ir.VarDecl{Name: "x"}
	flag := &Simple{
		FunctionName: "any",
		Receiver:     items(),
		Filter:       &ir.Raw{Text: "x > 0", Refs: []*ir.VarDecl{param}},
		FilterParam:  param,
	}
	g := &Conditional{Flag: flag, Then: &ir.Raw{Text: `"yes"`}, Otherwise: &ir.Raw{Text: `"no"`}}

	got := g.Generate(textEmitter{}).String()
	want := `if (items.any { it > 0 }) "yes" else "no"`
	if got != want {
		t.Errorf("Generate = %q, want %q", got, want)
	}
	if g.ChainCalls() != 1 {
		t.Errorf("Conditional adds no chain call, got %d", g.ChainCalls())
	}
}

func TestSafeCallChain(t *testing.T) {
	inner := &Simple{FunctionName: "firstOrNull", Receiver: items()}
	g := &SafeCallChain{Inner: inner, Selector: &ir.Raw{Text: "name"}}

	if g.ChainCalls() != 2 {
		t.Errorf("ChainCalls = %d, want 2", g.ChainCalls())
	}
	got := g.Generate(textEmitter{}).String()
	if got != "items.firstOrNull()?.name" {
		t.Errorf("Generate = %q", got)
	}
}

func TestLetBinding(t *testing.T) {
	param := &ir.VarDecl{Name: "user"}
	inner := &Simple{FunctionName: "firstOrNull", Receiver: items()}
	body := &ir.Raw{Text: "user.age + 1", Refs: []*ir.VarDecl{param}}
	g := &LetBinding{Inner: inner, Param: param, Body: body}

	if g.ChainCalls() != 2 {
		t.Errorf("ChainCalls = %d, want 2", g.ChainCalls())
	}
	got := g.Generate(textEmitter{}).String()
	want := "items.firstOrNull()?.let { it.age + 1 }"
	if got != want {
		t.Errorf("Generate = %q, want %q", got, want)
	}
}

func TestNegated(t *testing.T) {
	inner := &Simple{FunctionName: "contains", Receiver: items(), Args: []ir.Expr{&ir.Raw{Text: "x"}}}
	g := &Negated{Inner: inner}

	if g.Description() != "!contains()" {
		t.Errorf("Description = %q", g.Description())
	}
	got := g.Generate(textEmitter{}).String()
	if got != "!items.contains(x)" {
		t.Errorf("Generate = %q", got)
	}
}

func TestStackedDecorators(t *testing.T) {
	param := &ir.VarDecl{Name: "s"}
	base := &Simple{
		FunctionName: "firstOrNull",
		Receiver:     items(),
		Filter:       &ir.Raw{Text: "s.isNotEmpty()", Refs: []*ir.VarDecl{param}},
		FilterParam:  param,
	}
	chain := &SafeCallChain{Inner: base, Selector: &ir.Raw{Text: "length"}}
	g := &Elvis{Inner: chain, Fallback: ir.Int("-1")}

	got := g.Generate(textEmitter{}).String()
	want := "items.firstOrNull { it.isNotEmpty() }?.length ?: -1"
	if got != want {
		t.Errorf("Generate = %q, want %q", got, want)
	}
	if g.ChainCalls() != 2 {
		t.Errorf("ChainCalls = %d, want 2", g.ChainCalls())
	}
}
