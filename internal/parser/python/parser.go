// Package python implements the language adapter for Python source,
// following the same tree-sitter visitor idiom as the javascript adapter:
// a single depth-first walk that either opens a new declaration scope
// (function/class) or classifies a node as a relation trigger, with an
// explicit enclosing-symbol stack for parent linking and attribution.
package python

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/codegraph-dev/codegraph/internal/model"
	"github.com/codegraph-dev/codegraph/internal/parser"
)

// Parser is a tree-sitter backed Python adapter.
type Parser struct {
	tsParser *sitter.Parser
}

// New returns a Python adapter.
func New() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &Parser{tsParser: p}
}

func (p *Parser) Language() model.Language { return model.LangPython }
func (p *Parser) Extensions() []string     { return []string{".py", ".pyi"} }

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

func (e *extractor) inClass() bool {
	top := e.top()
	return top >= 0 && e.symbols[top].Kind == model.KindClass
}

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

// walk is the single recursive traversal: a node either opens a new
// declaration scope (recursing into its own body with push/pop already
// applied) or is classified for relation triggers and its children are
// walked in turn. No node is visited by more than one path.
func (e *extractor) walk(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "function_definition":
		e.extractFunction(n)
		return
	case "class_definition":
		e.extractClass(n)
		return
	case "assignment":
		e.extractAssignment(n)
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
	kind := model.KindFunction
	if e.inClass() {
		kind = model.KindMethod
	}
	name := nameNode.Content(e.src)
	vis := model.VisibilityPublic
	if strings.HasPrefix(name, "_") {
		vis = model.VisibilityPrivate
	}
	idx := e.addSymbol(parser.RawSymbol{
		Name:       name,
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
	if bases := n.ChildByFieldName("superclasses"); bases != nil {
		walkTree(bases, func(c *sitter.Node) {
			if c.Type() == "identifier" {
				e.addRelation(model.RelationInheritance, c.Content(e.src), int(c.StartPoint().Row)+1)
			}
		})
	}
	if body := n.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.ChildCount()); i++ {
			e.walk(body.Child(i))
		}
	}
	e.pop()
}

func (e *extractor) extractAssignment(n *sitter.Node) {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	if left == nil || left.Type() != "identifier" {
		if right != nil {
			e.walk(right)
		}
		return
	}
	name := left.Content(e.src)
	kind := model.KindVariable
	if strings.ToUpper(name) == name {
		kind = model.KindConstant
	}
	// Only module/class level assignments become symbols (§4.1); inside a
	// function body they're just targets of the Assignment relation.
	if e.top() < 0 || e.inClass() {
		e.addSymbol(parser.RawSymbol{
			Name:      name,
			Kind:      kind,
			Line:      int(n.StartPoint().Row) + 1,
			EndLine:   int(n.EndPoint().Row) + 1,
			Signature: firstLine(n, e.src),
		})
	} else {
		e.addRelation(model.RelationAssignment, name, int(n.StartPoint().Row)+1)
	}
	if right != nil {
		e.walk(right)
	}
}

func (e *extractor) classify(n *sitter.Node) {
	line := int(n.StartPoint().Row) + 1
	switch n.Type() {
	case "call":
		fn := n.ChildByFieldName("function")
		switch {
		case fn == nil:
		case fn.Type() == "identifier":
			name := fn.Content(e.src)
			if isCapitalized(name) {
				e.addRelation(model.RelationInstantiation, name, line)
			} else {
				e.addRelation(model.RelationDirectCall, name, line)
			}
		case fn.Type() == "attribute":
			if attr := fn.ChildByFieldName("attribute"); attr != nil {
				e.addRelation(model.RelationMethodCall, attr.Content(e.src), line)
			}
		default:
			e.addRelation(model.RelationDynamicCall, "", line)
		}
	case "attribute":
		if parentIsCall(n) {
			return
		}
		if attr := n.ChildByFieldName("attribute"); attr != nil {
			e.addRelation(model.RelationFieldAccess, attr.Content(e.src), line)
		}
	case "identifier":
		if !parentIsDeclOrCalleeOrMember(n) {
			e.addRelation(model.RelationReference, n.Content(e.src), line)
		}
	}
}

func parentIsCall(n *sitter.Node) bool {
	parent := n.Parent()
	return parent != nil && parent.Type() == "call" && parent.ChildByFieldName("function") == n
}

func parentIsDeclOrCalleeOrMember(n *sitter.Node) bool {
	parent := n.Parent()
	if parent == nil {
		return false
	}
	switch parent.Type() {
	case "call", "attribute", "function_definition", "class_definition",
		"assignment", "parameters", "keyword_argument":
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

func walkTree(node *sitter.Node, fn func(*sitter.Node)) {
	if node == nil {
		return
	}
	fn(node)
	for i := 0; i < int(node.ChildCount()); i++ {
		walkTree(node.Child(i), fn)
	}
}
