package rust

import (
	"testing"

	"github.com/codegraph-dev/codegraph/internal/model"
	"github.com/codegraph-dev/codegraph/internal/parser"
)

func parseRS(t *testing.T, src string) *parser.ParseResult {
	t.Helper()
	p := New()
	res, err := p.Parse(parser.FileInput{Path: "mod.rs", Content: []byte(src), Language: model.LangRust})
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
	p := New()
	if p.Language() != model.LangRust {
		t.Errorf("Language() = %v, want LangRust", p.Language())
	}
	if ext := p.Extensions(); len(ext) != 1 || ext[0] != ".rs" {
		t.Errorf("Extensions() = %v, want [.rs]", ext)
	}
}

func TestExtractFreeFunctionAndVisibility(t *testing.T) {
	res := parseRS(t, `
pub fn fetch(id: u32) -> u32 {
    lookup(id)
}

fn helper() {}
`)
	fetch, ok := findSymbol(res, "fetch")
	if !ok {
		t.Fatal("fetch symbol not found")
	}
	if fetch.Kind != model.KindFunction {
		t.Errorf("Kind = %v, want KindFunction", fetch.Kind)
	}
	if fetch.Visibility != model.VisibilityPublic {
		t.Errorf("Visibility = %v, want Public for pub fn", fetch.Visibility)
	}

	helper, ok := findSymbol(res, "helper")
	if !ok {
		t.Fatal("helper symbol not found")
	}
	if helper.Visibility != model.VisibilityPrivate {
		t.Errorf("Visibility = %v, want Private for non-pub fn", helper.Visibility)
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

func TestStructFieldsAndImplMethodsClassifyAsMethod(t *testing.T) {
	res := parseRS(t, `
pub struct Widget {
    size: u32,
}

impl Widget {
    pub fn render(&self) {
        self.paint();
    }
}
`)
	widget, ok := findSymbol(res, "Widget")
	if !ok {
		t.Fatal("Widget symbol not found")
	}
	if widget.Kind != model.KindStruct {
		t.Errorf("Kind = %v, want KindStruct", widget.Kind)
	}
	if widget.Visibility != model.VisibilityPublic {
		t.Errorf("Visibility = %v, want Public", widget.Visibility)
	}

	field, ok := findSymbol(res, "size")
	if !ok {
		t.Fatal("size field not found")
	}
	if field.Kind != model.KindField {
		t.Errorf("Kind = %v, want KindField", field.Kind)
	}

	render, ok := findSymbol(res, "render")
	if !ok {
		t.Fatal("render method not found")
	}
	if render.Kind != model.KindMethod {
		t.Errorf("Kind = %v, want KindMethod for a fn inside impl Widget", render.Kind)
	}
}

func TestImplTraitForTypeEmitsInheritanceOnTargetSymbol(t *testing.T) {
	res := parseRS(t, `
pub struct Widget;

impl Drawable for Widget {
    fn draw(&self) {}
}
`)
	widgetIdx := -1
	for i, s := range res.Symbols {
		if s.Name == "Widget" {
			widgetIdx = i
		}
	}
	if widgetIdx < 0 {
		t.Fatal("Widget symbol not found")
	}

	var found bool
	for _, r := range res.Relations {
		if r.Kind == model.RelationInheritance && r.TargetText == "Drawable" {
			found = true
			if r.EnclosingIdx != widgetIdx {
				t.Errorf("Inheritance EnclosingIdx = %d, want %d (Widget)", r.EnclosingIdx, widgetIdx)
			}
		}
	}
	if !found {
		t.Error("expected Inheritance relation to Drawable attributed to Widget")
	}

	if _, ok := findSymbol(res, "draw"); !ok {
		t.Error("draw method should still be extracted from the impl body")
	}
}

func TestEnumAndTraitExtraction(t *testing.T) {
	res := parseRS(t, `
pub enum Shape {
    Circle,
    Square,
}

pub trait Renderer {
    fn render(&self);
}
`)
	shape, ok := findSymbol(res, "Shape")
	if !ok {
		t.Fatal("Shape symbol not found")
	}
	if shape.Kind != model.KindEnum {
		t.Errorf("Kind = %v, want KindEnum", shape.Kind)
	}

	renderer, ok := findSymbol(res, "Renderer")
	if !ok {
		t.Fatal("Renderer symbol not found")
	}
	if renderer.Kind != model.KindInterface {
		t.Errorf("Kind = %v, want KindInterface for a trait", renderer.Kind)
	}
}

func TestScopedIdentifierCallClassification(t *testing.T) {
	res := parseRS(t, `
fn build() {
    let c = Shape::Circle();
    let n = Connection::new();
    c.open();
}
`)
	var sawInstantiation, sawDirectCall, sawMethodCall bool
	for _, r := range res.Relations {
		if r.Kind == model.RelationInstantiation && r.TargetText == "Circle" {
			sawInstantiation = true
		}
		if r.Kind == model.RelationDirectCall && r.TargetText == "new" {
			sawDirectCall = true
		}
		if r.Kind == model.RelationMethodCall && r.TargetText == "open" {
			sawMethodCall = true
		}
	}
	if !sawInstantiation {
		t.Error("expected Instantiation relation for Shape::Circle() (capitalized final segment)")
	}
	if !sawDirectCall {
		t.Error("expected DirectCall relation for Connection::new() (lowercase final segment)")
	}
	if !sawMethodCall {
		t.Error("expected MethodCall relation to open")
	}
}

func TestConstItemExtraction(t *testing.T) {
	res := parseRS(t, `pub const MAX_RETRIES: u32 = 3;`)
	sym, ok := findSymbol(res, "MAX_RETRIES")
	if !ok {
		t.Fatal("MAX_RETRIES symbol not found")
	}
	if sym.Kind != model.KindConstant {
		t.Errorf("Kind = %v, want KindConstant", sym.Kind)
	}
	if sym.Visibility != model.VisibilityPublic {
		t.Errorf("Visibility = %v, want Public", sym.Visibility)
	}
}
