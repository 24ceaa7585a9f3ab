package kotlin

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/chainkt/chainkt/internal/ir"
)

// withIndexSuffix marks the destructuring iteration form the index idiom
// uses: for ((i, x) in xs.withIndex()).
const withIndexSuffix = ".withIndex()"

// normalizeLoop builds a matching candidate from one for_statement, or nil
// when the loop does not fit the normalized shape.
func normalizeLoop(node *sitter.Node, src []byte) *Candidate {
	var inputVar, indexVar *ir.VarDecl
	var declNode *sitter.Node

	if single := childOfType(node, "variable_declaration"); single != nil {
		declNode = single
		inputVar = parseVarDecl(single, src)
	} else if multi := childOfType(node, "multi_variable_declaration"); multi != nil {
		declNode = multi
		decls := namedChildren(multi)
		if len(decls) != 2 {
			return nil
		}
		indexVar = parseVarDecl(decls[0], src)
		inputVar = parseVarDecl(decls[1], src)
	}
	if inputVar == nil || declNode == nil {
		return nil
	}

	bodyNode := childOfType(node, "control_structure_body")
	iterNode := iterableNode(node, declNode, bodyNode)
	if bodyNode == nil || iterNode == nil {
		return nil
	}

	iterText := string(iterNode.Content(src))
	if indexVar != nil {
		// Only the withIndex form gives the index idiom a plain receiver for
		// the generated chain; any other destructuring is out of scope.
		if !strings.HasSuffix(iterText, withIndexSuffix) {
			return nil
		}
		iterText = strings.TrimSuffix(iterText, withIndexSuffix)
	}

	label, labelNode := loopLabel(node, src)
	loopSpan := span(node)
	if labelNode != nil {
		loopSpan.Start = int(labelNode.StartByte())
	}

	loop := &ir.Loop{
		Span:     loopSpan,
		Label:    label,
		InputVar: inputVar,
		IndexVar: indexVar,
	}

	scope := map[string]*ir.VarDecl{inputVar.Name: inputVar}
	if indexVar != nil {
		scope[indexVar.Name] = indexVar
	}
	preceding := precedingInitializations(node, labelNode, src, scope)

	facts := newFacts(string(bodyNode.Content(src)))
	conv := &converter{src: src, scope: scope}
	loop.Iterable = conv.rawFromText(iterText)

	stmtNodes := bodyStatements(bodyNode)
	if len(stmtNodes) == 0 {
		return nil
	}
	filterExpr, residual := peelFilter(stmtNodes, conv, facts)
	if len(residual) == 0 {
		return nil
	}

	stmts := make([]ir.Stmt, 0, len(residual))
	for _, sn := range residual {
		stmts = append(stmts, classifyStatement(sn, src, conv, loop))
	}
	loop.Body = stmts

	state := &ir.MatchingState{
		Loop:       loop,
		Statements: stmts,
		InputVar:   inputVar,
		IndexVar:   indexVar,
		Following:  classifyFollowing(node, src, conv, loop),
		Preceding:  preceding,
		Oracles:    facts,
	}

	var filter *ir.FilterCondition
	if filterExpr != nil {
		filter = &ir.FilterCondition{Expr: filterExpr}
	}
	return &Candidate{State: state, Filter: filter}
}

// parseVarDecl reads a loop variable declaration: `x` or `x: String?`.
func parseVarDecl(node *sitter.Node, src []byte) *ir.VarDecl {
	text := string(node.Content(src))
	name := text
	var typeRef ir.TypeRef
	if idx := strings.Index(text, ":"); idx >= 0 {
		name = strings.TrimSpace(text[:idx])
		typeRef.Text = strings.TrimSpace(text[idx+1:])
		typeRef.Nullable = strings.HasSuffix(typeRef.Text, "?")
	}
	return &ir.VarDecl{Name: strings.TrimSpace(name), Type: typeRef}
}

// iterableNode finds the iterated expression: the named child of the loop
// that is neither the declaration nor the body.
func iterableNode(loop, declNode, bodyNode *sitter.Node) *sitter.Node {
	for _, c := range namedChildren(loop) {
		if c == declNode || c == bodyNode {
			continue
		}
		if c.Type() == "annotation" || c.Type() == "comment" {
			continue
		}
		return c
	}
	return nil
}

// bodyStatements flattens a control_structure_body into its statement nodes:
// either the children of the braced statements block or the single statement.
func bodyStatements(body *sitter.Node) []*sitter.Node {
	if stmts := childOfType(body, "statements"); stmts != nil {
		return statementNodes(stmts)
	}
	return statementNodes(body)
}

// statementNodes drops comment nodes from a statement list.
func statementNodes(node *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for _, c := range namedChildren(node) {
		if c.Type() == "comment" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// loopLabel returns the loop's label and its node, when the for statement is
// preceded by an `ident@` label.
func loopLabel(node *sitter.Node, src []byte) (string, *sitter.Node) {
	prev := node.PrevSibling()
	if prev != nil && prev.Type() == "label" {
		return strings.TrimSuffix(string(prev.Content(src)), "@"), prev
	}
	return "", nil
}

// precedingInitializations collects `var x = <init>` declarations before the
// loop, nearest first, and registers their variables in the scope so body
// expressions can resolve them.
func precedingInitializations(node, labelNode *sitter.Node, src []byte, scope map[string]*ir.VarDecl) []*ir.VariableInitialization {
	var out []*ir.VariableInitialization
	conv := &converter{src: src, scope: scope}
	start := node
	if labelNode != nil {
		start = labelNode
	}
	for prev := start.PrevNamedSibling(); prev != nil; prev = prev.PrevNamedSibling() {
		if prev.Type() != "property_declaration" {
			continue
		}
		init := parseInitialization(prev, src, conv)
		if init == nil {
			continue
		}
		if _, exists := scope[init.Variable.Name]; !exists {
			scope[init.Variable.Name] = init.Variable
		}
		out = append(out, init)
	}
	return out
}

// parseInitialization reads a property declaration with an initializer.
func parseInitialization(node *sitter.Node, src []byte, conv *converter) *ir.VariableInitialization {
	varDeclNode := childOfType(node, "variable_declaration")
	if varDeclNode == nil {
		return nil
	}
	decl := parseVarDecl(varDeclNode, src)

	var keyword ir.Span
	mutable := false
	hasAssign := false
	eqEnd := -1
	var initNode *sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		switch c.Type() {
		// The grammar wraps the keyword in a binding_pattern_kind node;
		// older revisions exposed bare var/val tokens.
		case "binding_pattern_kind":
			keyword = span(c)
			mutable = string(c.Content(src)) == "var"
		case "var":
			mutable = true
			keyword = span(c)
		case "val":
			keyword = span(c)
		case "=":
			hasAssign = true
			eqEnd = int(c.EndByte())
		default:
			if hasAssign && c.IsNamed() {
				initNode = c
			}
		}
	}
	if initNode != nil {
		return &ir.VariableInitialization{
			Variable:        decl,
			Initializer:     conv.expr(initNode),
			Mutable:         mutable,
			KeywordSpan:     keyword,
			InitializerSpan: span(initNode),
		}
	}
	if eqEnd < 0 {
		return nil
	}
	// Anonymous initializer token; recover it from the source text.
	end := int(node.EndByte())
	start := eqEnd
	for start < end && (src[start] == ' ' || src[start] == '\t') {
		start++
	}
	for end > start && (src[end-1] == ' ' || src[end-1] == '\t' || src[end-1] == ';' || src[end-1] == '\n') {
		end--
	}
	if start >= end {
		return nil
	}
	return &ir.VariableInitialization{
		Variable:        decl,
		Initializer:     conv.fromText(string(src[start:end])),
		Mutable:         mutable,
		KeywordSpan:     keyword,
		InitializerSpan: ir.Span{Start: start, End: end},
	}
}

// classifyStatement lowers a residual body statement into the tagged IR kind
// the matchers switch on.
func classifyStatement(node *sitter.Node, src []byte, conv *converter, loop *ir.Loop) ir.Stmt {
	text := string(node.Content(src))
	switch {
	case node.Type() == "assignment":
		if st := classifyAssignment(node, src, conv); st != nil {
			return st
		}
		return &ir.Other{}
	case isJump(node, text, "break"):
		label := jumpLabel(text, "break")
		if label == "" || label == loop.Label {
			return &ir.Break{Target: loop, Label: label}
		}
		return &ir.Break{Label: label}
	case isJump(node, text, "return"):
		label := jumpLabel(text, "return")
		ret := &ir.Return{Label: label}
		if value := jumpValue(node); value != nil {
			ret.Value = conv.expr(value)
			ret.ValueSpan = span(value)
		} else if valueText, off := jumpValueText(text, "return"); valueText != "" {
			// Some grammar revisions expose literal operands as anonymous
			// tokens; recover the returned expression from the text.
			start := int(node.StartByte()) + off
			ret.Value = conv.fromText(valueText)
			ret.ValueSpan = ir.Span{Start: start, End: start + len(valueText)}
		}
		return ret
	}
	return &ir.Other{}
}

// classifyAssignment recognizes a plain `=` assignment to a scoped variable.
func classifyAssignment(node *sitter.Node, src []byte, conv *converter) ir.Stmt {
	// Augmented assignments (+=, -=, ...) are accumulation territory, not
	// find territory.
	for i := 0; i < int(node.ChildCount()); i++ {
		switch node.Child(i).Type() {
		case "+=", "-=", "*=", "/=", "%=":
			return nil
		}
	}
	children := namedChildren(node)
	if len(children) == 0 {
		return nil
	}
	lhs := strings.TrimSpace(string(children[0].Content(src)))
	target, ok := conv.scope[lhs]
	if !ok {
		return nil
	}
	if len(children) >= 2 {
		return &ir.Assign{Target: target, Value: conv.expr(children[len(children)-1])}
	}
	// Anonymous RHS token; recover it from the text after the = sign.
	text := string(node.Content(src))
	idx := strings.Index(text, "=")
	if idx < 0 {
		return nil
	}
	rhs := strings.TrimSpace(strings.TrimRight(text[idx+1:], ";"))
	if rhs == "" {
		return nil
	}
	return &ir.Assign{Target: target, Value: conv.fromText(rhs)}
}

// classifyFollowing lowers the statement immediately after the loop.
func classifyFollowing(node *sitter.Node, src []byte, conv *converter, loop *ir.Loop) ir.Stmt {
	next := node.NextNamedSibling()
	if next == nil {
		return nil
	}
	return classifyStatement(next, src, conv, loop)
}

// isJump matches return/break/continue statements by node type or text, so a
// grammar that wraps jumps differently still classifies.
func isJump(node *sitter.Node, text, keyword string) bool {
	if !strings.HasPrefix(text, keyword) {
		return false
	}
	rest := text[len(keyword):]
	if rest != "" && rest[0] != ' ' && rest[0] != '@' && rest[0] != '\n' {
		return false
	}
	return node.Type() == "jump_expression" || node.Type() == keyword
}

// jumpLabel extracts the label of `return@lbl` / `break@lbl`, or "".
func jumpLabel(text, keyword string) string {
	rest := strings.TrimPrefix(text, keyword)
	if !strings.HasPrefix(rest, "@") {
		return ""
	}
	rest = rest[1:]
	end := 0
	for end < len(rest) && (rest[end] == '_' || rest[end] >= '0' && rest[end] <= '9' ||
		rest[end] >= 'a' && rest[end] <= 'z' || rest[end] >= 'A' && rest[end] <= 'Z') {
		end++
	}
	return rest[:end]
}

// jumpValue returns the returned expression node of a return statement, nil
// for a bare return.
func jumpValue(node *sitter.Node) *sitter.Node {
	children := namedChildren(node)
	if len(children) == 0 {
		return nil
	}
	return children[len(children)-1]
}

// jumpValueText extracts the operand text of a jump statement and its byte
// offset within the statement, for grammars that keep the operand anonymous.
func jumpValueText(text, keyword string) (string, int) {
	rest := strings.TrimPrefix(text, keyword)
	off := len(keyword)
	if strings.HasPrefix(rest, "@") {
		label := jumpLabel(text, keyword)
		rest = rest[1+len(label):]
		off += 1 + len(label)
	}
	trimmed := strings.TrimLeft(rest, " \t")
	off += len(rest) - len(trimmed)
	trimmed = strings.TrimRight(trimmed, " \t\n;")
	return trimmed, off
}
