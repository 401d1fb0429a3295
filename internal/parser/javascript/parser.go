// Package javascript implements the language adapter for JavaScript and
// TypeScript source, backed by tree-sitter grammars. One Parser value
// handles exactly one of the two languages; NewJS and NewTS construct the
// two variants sharing the same visitor. The walk is a single recursive
// pass: a node either opens a new declaration scope (function/class/
// interface) or is classified as a relation trigger and its children are
// walked in turn, so no subtree is visited by more than one path.
package javascript

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/codegraph-dev/codegraph/internal/model"
	"github.com/codegraph-dev/codegraph/internal/parser"
)

// Parser is a tree-sitter backed JavaScript/TypeScript adapter.
type Parser struct {
	tsParser *sitter.Parser
	lang     model.Language
}

// NewJS returns an adapter for plain JavaScript (and JSX).
func NewJS() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(javascript.GetLanguage())
	return &Parser{tsParser: p, lang: model.LangJavaScript}
}

// NewTS returns an adapter for TypeScript.
func NewTS() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(typescript.GetLanguage())
	return &Parser{tsParser: p, lang: model.LangTypeScript}
}

func (p *Parser) Language() model.Language { return p.lang }

func (p *Parser) Extensions() []string {
	if p.lang == model.LangTypeScript {
		return []string{".ts", ".tsx"}
	}
	return []string{".js", ".jsx", ".mjs", ".cjs"}
}

// extractor carries the per-file extraction state: the accumulated symbol
// and relation slices, and the stack of enclosing symbol indices used for
// parent linking and relation attribution (§4.1).
type extractor struct {
	src     []byte
	symbols []parser.RawSymbol
	rels    []parser.RawRelation
	stack   []int
}

func (e *extractor) top() int {
	if len(e.stack) == 0 {
		return -1
	}
	return e.stack[len(e.stack)-1]
}
func (e *extractor) push(idx int) { e.stack = append(e.stack, idx) }
func (e *extractor) pop()         { e.stack = e.stack[:len(e.stack)-1] }

func (e *extractor) addSymbol(s parser.RawSymbol) int {
	if s.Line == 0 {
		return -1
	}
	s.ParentIdx = e.top()
	e.symbols = append(e.symbols, s)
	return len(e.symbols) - 1
}

func (e *extractor) addRelation(kind model.RelationKind, target string, line int) {
	enclosing := e.top()
	if enclosing < 0 || target == "" {
		return // module-level references are discarded, §4.1 contract
	}
	e.rels = append(e.rels, parser.RawRelation{
		EnclosingIdx: enclosing,
		TargetText:   target,
		Kind:         kind,
		Line:         line,
	})
}

func (p *Parser) Parse(input parser.FileInput) (*parser.ParseResult, error) {
	tree, err := p.tsParser.ParseCtx(context.Background(), nil, input.Content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	e := &extractor{src: input.Content}
	root := tree.RootNode()
	for i := 0; i < int(root.ChildCount()); i++ {
		e.walk(root.Child(i))
	}
	return &parser.ParseResult{Symbols: e.symbols, Relations: e.rels}, nil
}

func (e *extractor) walk(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "function_declaration":
		e.extractFunction(n)
		return
	case "class_declaration":
		e.extractClass(n)
		return
	case "interface_declaration":
		e.extractInterface(n)
		return
	case "lexical_declaration", "variable_declaration":
		e.extractVarDecl(n)
		return
	case "export_statement":
		if body := n.ChildByFieldName("declaration"); body != nil {
			e.walk(body)
		} else {
			for i := 0; i < int(n.ChildCount()); i++ {
				e.walk(n.Child(i))
			}
		}
		return
	}
	e.classify(n)
	for i := 0; i < int(n.ChildCount()); i++ {
		e.walk(n.Child(i))
	}
}

func (e *extractor) extractFunction(n *sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	idx := e.addSymbol(parser.RawSymbol{
		Name:      nameNode.Content(e.src),
		Kind:      model.KindFunction,
		Line:      int(n.StartPoint().Row) + 1,
		EndLine:   int(n.EndPoint().Row) + 1,
		Signature: firstLine(n, e.src),
	})
	if idx < 0 {
		return
	}
	e.push(idx)
	if body := n.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.ChildCount()); i++ {
			e.walk(body.Child(i))
		}
	}
	e.pop()
}

func (e *extractor) extractClass(n *sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	idx := e.addSymbol(parser.RawSymbol{
		Name:       nameNode.Content(e.src),
		Kind:       model.KindClass,
		Line:       int(n.StartPoint().Row) + 1,
		EndLine:    int(n.EndPoint().Row) + 1,
		Signature:  firstLine(n, e.src),
		Visibility: model.VisibilityPublic,
	})
	if idx < 0 {
		return
	}
	e.push(idx)
	if heritage := findChild(n, "class_heritage"); heritage != nil {
		e.extractHeritage(heritage)
	}
	if body := n.ChildByFieldName("body"); body != nil {
		e.extractClassBody(body)
	}
	e.pop()
}

func (e *extractor) extractHeritage(n *sitter.Node) {
	walkTree(n, func(c *sitter.Node) {
		if c.Type() == "identifier" || c.Type() == "type_identifier" {
			e.addRelation(model.RelationInheritance, c.Content(e.src), int(c.StartPoint().Row)+1)
		}
	})
}

func (e *extractor) extractClassBody(body *sitter.Node) {
	for i := 0; i < int(body.ChildCount()); i++ {
		member := body.Child(i)
		switch member.Type() {
		case "method_definition":
			e.extractMethod(member)
		case "field_definition", "public_field_definition":
			e.extractField(member)
		}
	}
}

func (e *extractor) extractMethod(n *sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nameNode.Content(e.src)
	vis := model.VisibilityPublic
	if strings.HasPrefix(name, "#") || strings.HasPrefix(name, "_") {
		vis = model.VisibilityPrivate
	}
	idx := e.addSymbol(parser.RawSymbol{
		Name:       name,
		Kind:       model.KindMethod,
		Line:       int(n.StartPoint().Row) + 1,
		EndLine:    int(n.EndPoint().Row) + 1,
		Signature:  firstLine(n, e.src),
		Visibility: vis,
	})
	if idx < 0 {
		return
	}
	e.push(idx)
	if body := n.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.ChildCount()); i++ {
			e.walk(body.Child(i))
		}
	}
	e.pop()
}

func (e *extractor) extractField(n *sitter.Node) {
	nameNode := n.ChildByFieldName("property")
	if nameNode == nil {
		nameNode = findChild(n, "property_identifier")
	}
	if nameNode == nil {
		return
	}
	e.addSymbol(parser.RawSymbol{
		Name:      nameNode.Content(e.src),
		Kind:      model.KindField,
		Line:      int(n.StartPoint().Row) + 1,
		EndLine:   int(n.EndPoint().Row) + 1,
		Signature: firstLine(n, e.src),
	})
}

func (e *extractor) extractInterface(n *sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	idx := e.addSymbol(parser.RawSymbol{
		Name:       nameNode.Content(e.src),
		Kind:       model.KindInterface,
		Line:       int(n.StartPoint().Row) + 1,
		EndLine:    int(n.EndPoint().Row) + 1,
		Signature:  firstLine(n, e.src),
		Visibility: model.VisibilityPublic,
	})
	if idx < 0 {
		return
	}
	if heritage := findChild(n, "extends_type_clause"); heritage != nil {
		e.push(idx)
		e.extractHeritage(heritage)
		e.pop()
	}
}

func (e *extractor) extractVarDecl(n *sitter.Node) {
	for i := 0; i < int(n.ChildCount()); i++ {
		d := n.Child(i)
		if d.Type() != "variable_declarator" {
			continue
		}
		nameNode := d.ChildByFieldName("name")
		if nameNode == nil || nameNode.Type() != "identifier" {
			continue
		}
		name := nameNode.Content(e.src)
		kind := model.KindVariable
		if strings.ToUpper(name) == name && name != "" {
			kind = model.KindConstant
		}
		value := d.ChildByFieldName("value")
		isArrowFn := value != nil && (value.Type() == "arrow_function" || value.Type() == "function_expression")
		if isArrowFn {
			kind = model.KindFunction
		}
		idx := e.addSymbol(parser.RawSymbol{
			Name:      name,
			Kind:      kind,
			Line:      int(d.StartPoint().Row) + 1,
			EndLine:   int(d.EndPoint().Row) + 1,
			Signature: firstLine(n, e.src),
		})
		if value == nil {
			continue
		}
		if isArrowFn && idx >= 0 {
			e.push(idx)
			if body := value.ChildByFieldName("body"); body != nil {
				e.walk(body)
			}
			e.pop()
		} else {
			e.walk(value)
		}
	}
}

func (e *extractor) classify(n *sitter.Node) {
	line := int(n.StartPoint().Row) + 1
	switch n.Type() {
	case "call_expression":
		callee := n.ChildByFieldName("function")
		switch {
		case callee == nil:
		case callee.Type() == "identifier":
			name := callee.Content(e.src)
			if isCapitalized(name) {
				e.addRelation(model.RelationInstantiation, name, line)
			} else {
				e.addRelation(model.RelationDirectCall, name, line)
			}
		case callee.Type() == "member_expression":
			if prop := callee.ChildByFieldName("property"); prop != nil {
				e.addRelation(model.RelationMethodCall, prop.Content(e.src), line)
			}
		default:
			e.addRelation(model.RelationDynamicCall, "", line)
		}
	case "new_expression":
		if ctor := n.ChildByFieldName("constructor"); ctor != nil {
			name := ctor.Content(e.src)
			if idx := strings.IndexByte(name, '.'); idx >= 0 {
				name = name[idx+1:]
			}
			e.addRelation(model.RelationInstantiation, name, line)
		}
	case "member_expression":
		if parentIsCall(n) {
			return
		}
		if prop := n.ChildByFieldName("property"); prop != nil {
			e.addRelation(model.RelationFieldAccess, prop.Content(e.src), line)
		}
	case "assignment_expression":
		if left := n.ChildByFieldName("left"); left != nil && left.Type() == "identifier" {
			e.addRelation(model.RelationAssignment, left.Content(e.src), line)
		}
	case "identifier":
		if !parentIsDeclOrCalleeOrMember(n) {
			e.addRelation(model.RelationReference, n.Content(e.src), line)
		}
	}
}

func parentIsCall(n *sitter.Node) bool {
	parent := n.Parent()
	return parent != nil && parent.Type() == "call_expression" && parent.ChildByFieldName("function") == n
}

func parentIsDeclOrCalleeOrMember(n *sitter.Node) bool {
	parent := n.Parent()
	if parent == nil {
		return false
	}
	switch parent.Type() {
	case "call_expression", "member_expression", "new_expression", "variable_declarator",
		"function_declaration", "class_declaration", "method_definition", "formal_parameters":
		return true
	}
	return false
}

func isCapitalized(s string) bool {
	return s != "" && s[0] >= 'A' && s[0] <= 'Z'
}

func firstLine(n *sitter.Node, src []byte) string {
	text := n.Content(src)
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	text = strings.TrimSpace(text)
	const max = 120
	if len(text) > max {
		text = text[:max]
	}
	return text
}

func findChild(node *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		if c := node.Child(i); c.Type() == nodeType {
			return c
		}
	}
	return nil
}

func walkTree(node *sitter.Node, fn func(*sitter.Node)) {
	if node == nil {
		return
	}
	fn(node)
	for i := 0; i < int(node.ChildCount()); i++ {
		walkTree(node.Child(i), fn)
	}
}
