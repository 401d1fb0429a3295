// Package rust implements the language adapter for Rust source, following
// the same single-pass visitor idiom as the javascript and python
// adapters: a node either opens a new declaration scope or is classified
// as a relation trigger, with an explicit enclosing-symbol stack.
package rust

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"

	"github.com/codegraph-dev/codegraph/internal/model"
	"github.com/codegraph-dev/codegraph/internal/parser"
)

// Parser is a tree-sitter backed Rust adapter.
type Parser struct {
	tsParser *sitter.Parser
}

// New returns a Rust adapter.
func New() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(rust.GetLanguage())
	return &Parser{tsParser: p}
}

func (p *Parser) Language() model.Language { return model.LangRust }
func (p *Parser) Extensions() []string     { return []string{".rs"} }

type extractor struct {
	src      []byte
	symbols  []parser.RawSymbol
	rels     []parser.RawRelation
	stack    []int
	implName string // current inherent/trait impl's target type, for Method classification
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
		return
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
	case "function_item":
		e.extractFunction(n)
		return
	case "struct_item":
		e.extractStruct(n)
		return
	case "enum_item":
		e.extractEnum(n)
		return
	case "trait_item":
		e.extractTrait(n)
		return
	case "impl_item":
		e.extractImpl(n)
		return
	case "const_item", "static_item":
		e.extractConst(n)
		return
	case "mod_item":
		if body := n.ChildByFieldName("body"); body != nil {
			for i := 0; i < int(body.ChildCount()); i++ {
				e.walk(body.Child(i))
			}
		}
		return
	}
	e.classify(n)
	for i := 0; i < int(n.ChildCount()); i++ {
		e.walk(n.Child(i))
	}
}

func isPublic(n *sitter.Node) bool {
	return findChild(n, "visibility_modifier") != nil
}

func (e *extractor) extractFunction(n *sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	kind := model.KindFunction
	if e.implName != "" {
		kind = model.KindMethod
	}
	vis := model.VisibilityPrivate
	if isPublic(n) {
		vis = model.VisibilityPublic
	}
	idx := e.addSymbol(parser.RawSymbol{
		Name:       nameNode.Content(e.src),
		Kind:       kind,
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

func (e *extractor) extractStruct(n *sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	vis := model.VisibilityPrivate
	if isPublic(n) {
		vis = model.VisibilityPublic
	}
	idx := e.addSymbol(parser.RawSymbol{
		Name:       nameNode.Content(e.src),
		Kind:       model.KindStruct,
		Line:       int(n.StartPoint().Row) + 1,
		EndLine:    int(n.EndPoint().Row) + 1,
		Signature:  firstLine(n, e.src),
		Visibility: vis,
	})
	if idx < 0 {
		return
	}
	if body := n.ChildByFieldName("body"); body != nil {
		e.push(idx)
		for i := 0; i < int(body.ChildCount()); i++ {
			field := body.Child(i)
			if field.Type() != "field_declaration" {
				continue
			}
			if fname := field.ChildByFieldName("name"); fname != nil {
				e.addSymbol(parser.RawSymbol{
					Name:      fname.Content(e.src),
					Kind:      model.KindField,
					Line:      int(field.StartPoint().Row) + 1,
					EndLine:   int(field.EndPoint().Row) + 1,
					Signature: firstLine(field, e.src),
				})
			}
		}
		e.pop()
	}
}

func (e *extractor) extractEnum(n *sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	vis := model.VisibilityPrivate
	if isPublic(n) {
		vis = model.VisibilityPublic
	}
	e.addSymbol(parser.RawSymbol{
		Name:       nameNode.Content(e.src),
		Kind:       model.KindEnum,
		Line:       int(n.StartPoint().Row) + 1,
		EndLine:    int(n.EndPoint().Row) + 1,
		Signature:  firstLine(n, e.src),
		Visibility: vis,
	})
}

func (e *extractor) extractTrait(n *sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	vis := model.VisibilityPrivate
	if isPublic(n) {
		vis = model.VisibilityPublic
	}
	idx := e.addSymbol(parser.RawSymbol{
		Name:       nameNode.Content(e.src),
		Kind:       model.KindInterface,
		Line:       int(n.StartPoint().Row) + 1,
		EndLine:    int(n.EndPoint().Row) + 1,
		Signature:  firstLine(n, e.src),
		Visibility: vis,
	})
	if idx < 0 {
		return
	}
	if bounds := findChild(n, "trait_bounds"); bounds != nil {
		e.push(idx)
		walkTree(bounds, func(c *sitter.Node) {
			if c.Type() == "type_identifier" {
				e.addRelation(model.RelationInheritance, c.Content(e.src), int(c.StartPoint().Row)+1)
			}
		})
		e.pop()
	}
}

// extractImpl does not create a symbol of its own (an impl block isn't a
// declaration site per §3's kind set); it records the target type name so
// nested functions classify as Method, and emits an Inheritance relation
// for `impl Trait for Type` blocks attributed to the struct/enum symbol
// being implemented, if one is already known in this file.
func (e *extractor) extractImpl(n *sitter.Node) {
	typeNode := n.ChildByFieldName("type")
	traitNode := n.ChildByFieldName("trait")
	prevImpl := e.implName
	if typeNode != nil {
		e.implName = typeNode.Content(e.src)
	}
	if traitNode != nil && typeNode != nil {
		if target := e.findSymbolIdx(e.implName); target >= 0 {
			e.push(target)
			e.addRelation(model.RelationInheritance, traitNode.Content(e.src), int(n.StartPoint().Row)+1)
			e.pop()
		}
	}
	if body := n.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.ChildCount()); i++ {
			e.walk(body.Child(i))
		}
	}
	e.implName = prevImpl
}

func (e *extractor) findSymbolIdx(name string) int {
	for i := len(e.symbols) - 1; i >= 0; i-- {
		if e.symbols[i].Name == name {
			return i
		}
	}
	return -1
}

func (e *extractor) extractConst(n *sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	vis := model.VisibilityPrivate
	if isPublic(n) {
		vis = model.VisibilityPublic
	}
	e.addSymbol(parser.RawSymbol{
		Name:       nameNode.Content(e.src),
		Kind:       model.KindConstant,
		Line:       int(n.StartPoint().Row) + 1,
		EndLine:    int(n.EndPoint().Row) + 1,
		Signature:  firstLine(n, e.src),
		Visibility: vis,
	})
}

func (e *extractor) classify(n *sitter.Node) {
	line := int(n.StartPoint().Row) + 1
	switch n.Type() {
	case "call_expression":
		fn := n.ChildByFieldName("function")
		switch {
		case fn == nil:
		case fn.Type() == "identifier":
			e.addRelation(model.RelationDirectCall, fn.Content(e.src), line)
		case fn.Type() == "scoped_identifier":
			name := fn.Content(e.src)
			if idx := strings.LastIndex(name, "::"); idx >= 0 {
				name = name[idx+2:]
			}
			if isCapitalized(name) {
				e.addRelation(model.RelationInstantiation, name, line)
			} else {
				e.addRelation(model.RelationDirectCall, name, line)
			}
		case fn.Type() == "field_expression":
			if field := fn.ChildByFieldName("field"); field != nil {
				e.addRelation(model.RelationMethodCall, field.Content(e.src), line)
			}
		default:
			e.addRelation(model.RelationDynamicCall, "", line)
		}
	case "struct_expression":
		if name := n.ChildByFieldName("name"); name != nil {
			e.addRelation(model.RelationInstantiation, name.Content(e.src), line)
		}
	case "field_expression":
		if parentIsCall(n) {
			return
		}
		if field := n.ChildByFieldName("field"); field != nil {
			e.addRelation(model.RelationFieldAccess, field.Content(e.src), line)
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
	case "call_expression", "field_expression", "scoped_identifier", "struct_expression",
		"function_item", "struct_item", "parameters":
		return true
	}
	return false
}

func isCapitalized(s string) bool {
	return s != "" && s[0] >= 'A' && s[0] <= 'Z'
}

func firstLine(n *sitter.Node, src []byte) string {
	text := n.Content(src)
	if idx := strings.IndexByte(text, '{'); idx >= 0 {
		text = text[:idx]
	} else if idx := strings.IndexByte(text, '\n'); idx >= 0 {
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
