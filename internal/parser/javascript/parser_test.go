package javascript

import (
	"testing"

	"github.com/codegraph-dev/codegraph/internal/model"
	"github.com/codegraph-dev/codegraph/internal/parser"
)

func parseJS(t *testing.T, src string) *parser.ParseResult {
	t.Helper()
	p := NewJS()
	res, err := p.Parse(parser.FileInput{Path: "mod.js", Content: []byte(src), Language: model.LangJavaScript})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return res
}

func parseTS(t *testing.T, src string) *parser.ParseResult {
	t.Helper()
	p := NewTS()
	res, err := p.Parse(parser.FileInput{Path: "mod.ts", Content: []byte(src), Language: model.LangTypeScript})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return res
}

func findSymbol(res *parser.ParseResult, name string) (parser.RawSymbol, bool) {
	for _, s := range res.Symbols {
		if s.Name == name {
			return s, true
		}
	}
	return parser.RawSymbol{}, false
}

func TestLanguageAndExtensions(t *testing.T) {
	js := NewJS()
	if js.Language() != model.LangJavaScript {
		t.Errorf("NewJS().Language() = %v, want LangJavaScript", js.Language())
	}
	if ext := js.Extensions(); len(ext) == 0 {
		t.Error("NewJS().Extensions() is empty")
	}

	ts := NewTS()
	if ts.Language() != model.LangTypeScript {
		t.Errorf("NewTS().Language() = %v, want LangTypeScript", ts.Language())
	}
	if ext := ts.Extensions(); len(ext) == 0 {
		t.Error("NewTS().Extensions() is empty")
	}
}

func TestExtractFunctionDeclaration(t *testing.T) {
	res := parseJS(t, `
function fetchUser(id) {
  return lookup(id);
}
`)
	sym, ok := findSymbol(res, "fetchUser")
	if !ok {
		t.Fatal("fetchUser symbol not found")
	}
	if sym.Kind != model.KindFunction {
		t.Errorf("Kind = %v, want KindFunction", sym.Kind)
	}

	var sawCall bool
	for _, r := range res.Relations {
		if r.Kind == model.RelationDirectCall && r.TargetText == "lookup" {
			sawCall = true
		}
	}
	if !sawCall {
		t.Error("expected a DirectCall relation to lookup")
	}
}

func TestExtractClassWithMethodsAndHeritage(t *testing.T) {
	res := parseJS(t, `
class Widget extends Base {
  render() {
    this.paint();
  }
  _resize() {}
}
`)
	class, ok := findSymbol(res, "Widget")
	if !ok {
		t.Fatal("Widget symbol not found")
	}
	if class.Kind != model.KindClass {
		t.Errorf("Kind = %v, want KindClass", class.Kind)
	}

	render, ok := findSymbol(res, "render")
	if !ok {
		t.Fatal("render method not found")
	}
	if render.Kind != model.KindMethod {
		t.Errorf("render Kind = %v, want KindMethod", render.Kind)
	}
	if render.Visibility != model.VisibilityPublic {
		t.Errorf("render Visibility = %v, want Public", render.Visibility)
	}

	resize, ok := findSymbol(res, "_resize")
	if !ok {
		t.Fatal("_resize method not found")
	}
	if resize.Visibility != model.VisibilityPrivate {
		t.Errorf("_resize Visibility = %v, want Private (underscore-prefixed)", resize.Visibility)
	}

	var sawInheritance bool
	for _, r := range res.Relations {
		if r.Kind == model.RelationInheritance && r.TargetText == "Base" {
			sawInheritance = true
		}
	}
	if !sawInheritance {
		t.Error("expected Inheritance relation to Base")
	}
}

func TestExtractInterfaceTS(t *testing.T) {
	res := parseTS(t, `
interface Shape extends Drawable {
  area(): number;
}
`)
	sym, ok := findSymbol(res, "Shape")
	if !ok {
		t.Fatal("Shape symbol not found")
	}
	if sym.Kind != model.KindInterface {
		t.Errorf("Kind = %v, want KindInterface", sym.Kind)
	}

	var sawInheritance bool
	for _, r := range res.Relations {
		if r.Kind == model.RelationInheritance && r.TargetText == "Drawable" {
			sawInheritance = true
		}
	}
	if !sawInheritance {
		t.Error("expected Inheritance relation to Drawable")
	}
}

func TestArrowFunctionAssignedToConstIsFunctionSymbol(t *testing.T) {
	res := parseJS(t, `
const handler = (req) => {
  process(req);
};
`)
	sym, ok := findSymbol(res, "handler")
	if !ok {
		t.Fatal("handler symbol not found")
	}
	if sym.Kind != model.KindFunction {
		t.Errorf("Kind = %v, want KindFunction for arrow-function const", sym.Kind)
	}
}

func TestUppercaseConstIsConstant(t *testing.T) {
	res := parseJS(t, `const MAX_RETRIES = 3;`)
	sym, ok := findSymbol(res, "MAX_RETRIES")
	if !ok {
		t.Fatal("MAX_RETRIES symbol not found")
	}
	if sym.Kind != model.KindConstant {
		t.Errorf("Kind = %v, want KindConstant for all-uppercase binding", sym.Kind)
	}
}

func TestMethodCallAndInstantiationClassification(t *testing.T) {
	res := parseJS(t, `
function build() {
  const c = new Connection();
  c.open();
}
`)
	var sawInstantiation, sawMethodCall bool
	for _, r := range res.Relations {
		if r.Kind == model.RelationInstantiation && r.TargetText == "Connection" {
			sawInstantiation = true
		}
		if r.Kind == model.RelationMethodCall && r.TargetText == "open" {
			sawMethodCall = true
		}
	}
	if !sawInstantiation {
		t.Error("expected Instantiation relation to Connection")
	}
	if !sawMethodCall {
		t.Error("expected MethodCall relation to open")
	}
}

func TestExportedDeclarationIsStillExtracted(t *testing.T) {
	res := parseJS(t, `export function helper() {}`)
	if _, ok := findSymbol(res, "helper"); !ok {
		t.Error("expected export_statement to unwrap to its declaration")
	}
}

func TestRelationsAttachToEnclosingFunctionOnly(t *testing.T) {
	res := parseJS(t, `
someOrphanCall();
function outer() {
  innerCall();
}
`)
	outerIdx := -1
	for i, s := range res.Symbols {
		if s.Name == "outer" {
			outerIdx = i
		}
	}
	if outerIdx < 0 {
		t.Fatal("outer symbol not found")
	}
	for _, r := range res.Relations {
		if r.TargetText == "someOrphanCall" {
			t.Error("module-level call should have been discarded, not attached to any enclosing symbol")
		}
		if r.TargetText == "innerCall" && r.EnclosingIdx != outerIdx {
			t.Errorf("innerCall EnclosingIdx = %d, want %d (outer)", r.EnclosingIdx, outerIdx)
		}
	}
}
