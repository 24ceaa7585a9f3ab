package kotlin

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/chainkt/chainkt/internal/ir"
)

// converter lowers source expression nodes into the matcher IR. Only the
// shapes the matchers inspect are lowered structurally; everything else
// becomes an opaque Raw carrying the scoped variables it references.
type converter struct {
	src   []byte
	scope map[string]*ir.VarDecl
}

func (c *converter) expr(node *sitter.Node) ir.Expr {
	text := strings.TrimSpace(string(node.Content(c.src)))

	switch node.Type() {
	case "parenthesized_expression":
		if inner := firstNamed(node); inner != nil {
			return c.expr(inner)
		}
	case "simple_identifier":
		if decl, ok := c.scope[text]; ok {
			return &ir.Name{Decl: decl}
		}
		return &ir.Raw{Text: text}
	case "equality_expression", "comparison_expression", "conjunction_expression", "disjunction_expression":
		if e := c.binary(node); e != nil {
			return e
		}
	case "prefix_expression":
		if e := c.prefix(node, text); e != nil {
			return e
		}
	}

	return c.fromText(text)
}

// fromText lowers bare source text when no structural node is available:
// literal, scoped member access, or opaque Raw.
func (c *converter) fromText(text string) ir.Expr {
	if decl, ok := c.scope[text]; ok {
		return &ir.Name{Decl: decl}
	}
	if lit := literalFromText(text); lit != nil {
		return lit
	}
	if sel := c.selectFromText(text); sel != nil {
		return sel
	}
	return c.rawFromText(text)
}

// binary lowers a two-operand infix expression, reading the operator from the
// anonymous token between the operands.
func (c *converter) binary(node *sitter.Node) ir.Expr {
	children := namedChildren(node)
	if len(children) != 2 {
		return nil
	}
	op := ""
	for i := 0; i < int(node.ChildCount()); i++ {
		ch := node.Child(i)
		if !ch.IsNamed() {
			op = string(ch.Content(c.src))
			break
		}
	}
	if op == "" {
		return nil
	}
	return &ir.Binary{Op: op, Left: c.expr(children[0]), Right: c.expr(children[1])}
}

// prefix lowers !x and folds -<int literal> into a signed integer literal so
// the -1 index sentinel matches structurally.
func (c *converter) prefix(node *sitter.Node, text string) ir.Expr {
	operandNode := firstNamed(node)
	if operandNode == nil {
		return nil
	}
	switch {
	case strings.HasPrefix(text, "!"):
		return &ir.Unary{Op: "!", Operand: c.expr(operandNode)}
	case strings.HasPrefix(text, "-"):
		if lit := literalFromText(strings.TrimSpace(text[1:])); lit != nil && lit.Kind == ir.LitInt {
			return &ir.Literal{Kind: ir.LitInt, Text: "-" + lit.Text}
		}
	}
	return nil
}

// literalFromText classifies literal constants by their source text, which is
// stable across grammar revisions.
func literalFromText(text string) *ir.Literal {
	switch text {
	case "null":
		return ir.Null()
	case "true", "false":
		return &ir.Literal{Kind: ir.LitBool, Text: text}
	}
	if text != "" && allDigits(text) {
		return &ir.Literal{Kind: ir.LitInt, Text: text}
	}
	if strings.HasPrefix(text, "-") && len(text) > 1 && allDigits(text[1:]) {
		return &ir.Literal{Kind: ir.LitInt, Text: text}
	}
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' && !strings.Contains(text, "$") {
		return &ir.Literal{Kind: ir.LitString, Text: text}
	}
	if len(text) >= 3 && text[0] == '\'' && text[len(text)-1] == '\'' {
		return &ir.Literal{Kind: ir.LitChar, Text: text}
	}
	return nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

// selectFromText recognizes `v.selector` / `v?.selector` where v is a scoped
// variable. The selector stays opaque; the matcher only needs to know whether
// it references the receiver again.
func (c *converter) selectFromText(text string) ir.Expr {
	end := 0
	for end < len(text) && isIdentByte(text[end]) {
		end++
	}
	if end == 0 {
		return nil
	}
	decl, ok := c.scope[text[:end]]
	if !ok {
		return nil
	}
	rest := text[end:]
	safe := false
	switch {
	case strings.HasPrefix(rest, "?."):
		safe = true
		rest = rest[2:]
	case strings.HasPrefix(rest, "."):
		rest = rest[1:]
	default:
		return nil
	}
	if rest == "" {
		return nil
	}
	return &ir.Select{
		Receiver: &ir.Name{Decl: decl},
		Selector: c.rawFromText(rest),
		Safe:     safe,
	}
}

// rawFromText wraps opaque source text, recording which scoped variables it
// mentions.
func (c *converter) rawFromText(text string) *ir.Raw {
	raw := &ir.Raw{Text: text}
	for name, decl := range c.scope {
		if ir.ContainsWord(text, name) {
			raw.Refs = append(raw.Refs, decl)
		}
	}
	return raw
}

func isIdentByte(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

func firstNamed(node *sitter.Node) *sitter.Node {
	if node.NamedChildCount() == 0 {
		return nil
	}
	return node.NamedChild(0)
}
