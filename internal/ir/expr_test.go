package ir

import "testing"

func TestContainsWord(t *testing.T) {
	tests := []struct {
		name string
		text string
		word string
		want bool
	}{
		{"standalone", "x == target", "x", true},
		{"part of longer identifier", "xs.size", "x", false},
		{"member access selector", "item.x", "x", false},
		{"safe member access selector", "item?.x", "x", false},
		{"receiver of member access", "x.name", "x", true},
		{"inside call args", "compute(x, y)", "x", true},
		{"absent", "y == target", "x", false},
		{"underscore boundary", "x_old", "x", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContainsWord(tt.text, tt.word); got != tt.want {
				t.Errorf("ContainsWord(%q, %q) = %v, want %v", tt.text, tt.word, got, tt.want)
			}
		})
	}
}

func TestCountWord(t *testing.T) {
	if got := CountWord("x = x + other.x", "x"); got != 2 {
		t.Errorf("CountWord = %d, want 2", got)
	}
	if got := CountWord("found = item", "found"); got != 1 {
		t.Errorf("CountWord = %d, want 1", got)
	}
}

func TestReplaceWord(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"x == target", "it == target"},
		{"x.name == x.alias", "it.name == it.alias"},
		{"prefix.x + x", "prefix.x + it"},
		{"xs.contains(x)", "xs.contains(it)"},
	}
	for _, tt := range tests {
		if got := ReplaceWord(tt.text, "x", "it"); got != tt.want {
			t.Errorf("ReplaceWord(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestSubstitute(t *testing.T) {
	v := &VarDecl{Name: "x"}
	other := &VarDecl{Name: "y"}

	name := &Name{Decl: v}
	got := Substitute(name, v, "it")
	if got.String() != "it" {
		t.Errorf("Substitute(Name) = %q, want it", got.String())
	}
	// The original must stay intact.
	if name.String() != "x" {
		t.Errorf("Substitute mutated its input: %q", name.String())
	}

	bin := &Binary{Op: "==", Left: &Name{Decl: v}, Right: &Name{Decl: other}}
	if s := Substitute(bin, v, "it").String(); s != "it == y" {
		t.Errorf("Substitute(Binary) = %q, want %q", s, "it == y")
	}
	if bin.String() != "x == y" {
		t.Errorf("Substitute mutated its input: %q", bin.String())
	}

	raw := &Raw{Text: "x.length > 3 && x != other.x", Refs: []*VarDecl{v}}
	sub := Substitute(raw, v, "it")
	if sub.String() != "it.length > 3 && it != other.x" {
		t.Errorf("Substitute(Raw) = %q", sub.String())
	}
	if References(sub, v) {
		t.Error("substituted expression still references the original decl")
	}

	// No reference: the same node comes back.
	if Substitute(&Name{Decl: other}, v, "it").(*Name).Decl != other {
		t.Error("Substitute rebuilt an expression without references")
	}
}

func TestReferences(t *testing.T) {
	v := &VarDecl{Name: "x"}
	shadow := &VarDecl{Name: "x"}

	if !References(&Name{Decl: v}, v) {
		t.Error("Name should reference its decl")
	}
	// Identity, not name equality.
	if References(&Name{Decl: shadow}, v) {
		t.Error("distinct decls with equal names must not alias")
	}
	sel := &Select{Receiver: &Name{Decl: v}, Selector: &Raw{Text: "name"}}
	if !References(sel, v) {
		t.Error("Select receiver reference missed")
	}
	if References(&Literal{Kind: LitInt, Text: "1"}, v) {
		t.Error("literal cannot reference a variable")
	}
}

func TestLiteralPredicates(t *testing.T) {
	if !IsNullLiteral(Null()) {
		t.Error("IsNullLiteral(Null())")
	}
	if IsNullLiteral(&Raw{Text: "null"}) {
		t.Error("raw text is not a null literal")
	}
	if !IsBoolLiteral(Bool(true), true) || IsBoolLiteral(Bool(true), false) {
		t.Error("IsBoolLiteral true")
	}
	if !IsBoolLiteral(Bool(false), false) {
		t.Error("IsBoolLiteral false")
	}
	if !IsIntLiteral(Int("-1"), "-1") {
		t.Error("IsIntLiteral -1")
	}
	if IsIntLiteral(Int("1"), "-1") {
		t.Error("sign must match exactly")
	}
}

func TestRenderTemplate(t *testing.T) {
	args := []Expr{&Raw{Text: "xs.firstOrNull { it > 0 }"}, Int("0")}
	got := RenderTemplate("$0 ?: $1", args)
	want := "xs.firstOrNull { it > 0 } ?: 0"
	if got != want {
		t.Errorf("RenderTemplate = %q, want %q", got, want)
	}

	if got := RenderTemplate("none()", nil); got != "none()" {
		t.Errorf("RenderTemplate without placeholders = %q", got)
	}

	// A dollar not followed by a digit passes through.
	if got := RenderTemplate(`"$name"`, nil); got != `"$name"` {
		t.Errorf("RenderTemplate with non-placeholder dollar = %q", got)
	}

	defer func() {
		if recover() == nil {
			t.Error("out-of-range placeholder must panic")
		}
	}()
	RenderTemplate("$0 and $1", []Expr{Int("1")})
}

func TestExprString(t *testing.T) {
	v := &VarDecl{Name: "item"}
	sel := &Select{Receiver: &Name{Decl: v}, Selector: &Raw{Text: "name"}, Safe: true}
	if sel.String() != "item?.name" {
		t.Errorf("Select.String() = %q", sel.String())
	}
	un := &Unary{Op: "!", Operand: &Name{Decl: v}}
	if un.String() != "!item" {
		t.Errorf("Unary.String() = %q", un.String())
	}
}
