package ir

import "strings"

// Expr is a node in the normalized expression tree the matchers operate on.
// The front-end lowers source expressions into the handful of shapes the
// matchers actually inspect; anything else arrives as an opaque Raw node that
// still knows which declared variables it references.
type Expr interface {
	isExpr()
	String() string
}

// TypeRef is a resolved (or best-effort) static type of a declaration.
type TypeRef struct {
	Text     string
	Nullable bool
}

// VarDecl identifies a variable declaration. Declarations are compared by
// pointer identity: two references to the same variable share the same decl.
type VarDecl struct {
	Name string
	Type TypeRef
}

// Name is a bare reference to a declared variable.
type Name struct {
	Decl *VarDecl
}

func (n *Name) isExpr()        {}
func (n *Name) String() string { return n.Decl.Name }

// LiteralKind tags compile-time literal constants.
type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitBool
	LitString
	LitChar
	LitNull
	LitOther
)

// Literal is a compile-time constant in source form.
type Literal struct {
	Kind LiteralKind
	Text string
}

func (l *Literal) isExpr()        {}
func (l *Literal) String() string { return l.Text }

// Null returns the null literal.
func Null() *Literal { return &Literal{Kind: LitNull, Text: "null"} }

// Bool returns the true or false literal.
func Bool(v bool) *Literal {
	if v {
		return &Literal{Kind: LitBool, Text: "true"}
	}
	return &Literal{Kind: LitBool, Text: "false"}
}

// Int returns an integer literal with the given source text.
func Int(text string) *Literal { return &Literal{Kind: LitInt, Text: text} }

// Binary is an infix expression such as an equality test.
type Binary struct {
	Op    string
	Left  Expr
	Right Expr
}

func (b *Binary) isExpr() {}
func (b *Binary) String() string {
	return b.Left.String() + " " + b.Op + " " + b.Right.String()
}

// Unary is a prefix expression such as a boolean negation.
type Unary struct {
	Op      string
	Operand Expr
}

func (u *Unary) isExpr()        {}
func (u *Unary) String() string { return u.Op + u.Operand.String() }

// Select is a qualified access: receiver.selector or receiver?.selector.
type Select struct {
	Receiver Expr
	Selector Expr
	Safe     bool
}

func (s *Select) isExpr() {}
func (s *Select) String() string {
	dot := "."
	if s.Safe {
		dot = "?."
	}
	return s.Receiver.String() + dot + s.Selector.String()
}

// Raw is an opaque source expression the front-end did not lower further.
// Refs lists the declared variables referenced anywhere inside it.
type Raw struct {
	Text string
	Refs []*VarDecl
}

func (r *Raw) isExpr()        {}
func (r *Raw) String() string { return r.Text }

// IsNullLiteral reports whether e is exactly the null literal.
func IsNullLiteral(e Expr) bool {
	l, ok := e.(*Literal)
	return ok && l.Kind == LitNull
}

// IsBoolLiteral reports whether e is the given boolean literal.
func IsBoolLiteral(e Expr, v bool) bool {
	l, ok := e.(*Literal)
	if !ok || l.Kind != LitBool {
		return false
	}
	return l.Text == "true" == v
}

// IsIntLiteral reports whether e is an integer literal with the exact source
// text given (sign included).
func IsIntLiteral(e Expr, text string) bool {
	l, ok := e.(*Literal)
	return ok && l.Kind == LitInt && l.Text == text
}

// References reports whether e contains any reference to v.
func References(e Expr, v *VarDecl) bool {
	switch e := e.(type) {
	case *Name:
		return e.Decl == v
	case *Literal:
		return false
	case *Binary:
		return References(e.Left, v) || References(e.Right, v)
	case *Unary:
		return References(e.Operand, v)
	case *Select:
		return References(e.Receiver, v) || References(e.Selector, v)
	case *Raw:
		for _, r := range e.Refs {
			if r == v {
				return true
			}
		}
		return false
	}
	return false
}

// Substitute returns a copy of e with every reference to v renamed to name.
// The input expression is not modified; filter conditions are borrowed from
// the front-end and must stay intact. Inside Raw nodes the rename is textual
// on word boundaries, which matches how the front-end collected the refs.
func Substitute(e Expr, v *VarDecl, name string) Expr {
	if !References(e, v) {
		return e
	}
	switch e := e.(type) {
	case *Name:
		return &Name{Decl: &VarDecl{Name: name, Type: v.Type}}
	case *Binary:
		return &Binary{Op: e.Op, Left: Substitute(e.Left, v, name), Right: Substitute(e.Right, v, name)}
	case *Unary:
		return &Unary{Op: e.Op, Operand: Substitute(e.Operand, v, name)}
	case *Select:
		return &Select{
			Receiver: Substitute(e.Receiver, v, name),
			Selector: Substitute(e.Selector, v, name),
			Safe:     e.Safe,
		}
	case *Raw:
		refs := make([]*VarDecl, 0, len(e.Refs))
		for _, r := range e.Refs {
			if r != v {
				refs = append(refs, r)
			}
		}
		return &Raw{Text: ReplaceWord(e.Text, v.Name, name), Refs: refs}
	}
	return e
}

// Refs collects the declared variables referenced anywhere inside e.
func Refs(e Expr) []*VarDecl {
	var out []*VarDecl
	seen := map[*VarDecl]bool{}
	add := func(v *VarDecl) {
		if v != nil && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	var walk func(Expr)
	walk = func(e Expr) {
		switch e := e.(type) {
		case *Name:
			add(e.Decl)
		case *Binary:
			walk(e.Left)
			walk(e.Right)
		case *Unary:
			walk(e.Operand)
		case *Select:
			walk(e.Receiver)
			walk(e.Selector)
		case *Raw:
			for _, r := range e.Refs {
				add(r)
			}
		}
	}
	walk(e)
	return out
}

func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// wordAt reports whether text[i:i+len(word)] is a standalone occurrence of
// word: not part of a longer identifier and not a member access selector
// (preceded by '.' or '?.').
func wordAt(text string, i int, word string) bool {
	if i+len(word) > len(text) || text[i:i+len(word)] != word {
		return false
	}
	if i > 0 && (isWordByte(text[i-1]) || text[i-1] == '.') {
		return false
	}
	if end := i + len(word); end < len(text) && isWordByte(text[end]) {
		return false
	}
	return true
}

// ContainsWord reports whether the identifier occurs as a standalone word in
// the source text. Member-access selectors do not count.
func ContainsWord(text, word string) bool {
	for i := 0; i+len(word) <= len(text); i++ {
		if wordAt(text, i, word) {
			return true
		}
	}
	return false
}

// CountWord counts standalone occurrences of the identifier in the text.
func CountWord(text, word string) int {
	n := 0
	for i := 0; i+len(word) <= len(text); i++ {
		if wordAt(text, i, word) {
			n++
			i += len(word) - 1
		}
	}
	return n
}

// ReplaceWord rewrites standalone occurrences of the identifier.
func ReplaceWord(text, word, repl string) string {
	var sb strings.Builder
	for i := 0; i < len(text); {
		if wordAt(text, i, word) {
			sb.WriteString(repl)
			i += len(word)
			continue
		}
		sb.WriteByte(text[i])
		i++
	}
	return sb.String()
}

// RenderTemplate expands $0..$9 placeholders in a template with the string
// forms of the given arguments. Unknown placeholders panic: templates are
// produced by the generators and a bad index is a programming error.
func RenderTemplate(template string, args []Expr) string {
	var sb strings.Builder
	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != '$' || i+1 >= len(template) {
			sb.WriteByte(c)
			continue
		}
		idx := int(template[i+1] - '0')
		if idx < 0 || idx > 9 {
			sb.WriteByte(c)
			continue
		}
		if idx >= len(args) {
			panic("ir: template placeholder out of range: " + template)
		}
		sb.WriteString(args[idx].String())
		i++
	}
	return sb.String()
}
