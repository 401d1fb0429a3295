package query

import (
	"testing"

	"github.com/codegraph-dev/codegraph/internal/graph"
	"github.com/codegraph-dev/codegraph/internal/model"
)

func buildCallChain(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	main, _ := g.AddSymbol(model.Symbol{Name: "main", File: "app.py", Line: 1, Kind: model.KindFunction, Parent: model.NoParent})
	fetch, _ := g.AddSymbol(model.Symbol{Name: "fetch", File: "app.py", Line: 5, Kind: model.KindFunction, Parent: model.NoParent})
	parse, _ := g.AddSymbol(model.Symbol{Name: "parse", File: "app.py", Line: 9, Kind: model.KindFunction, Parent: model.NoParent})
	if _, err := g.AddRelation(model.Relation{Source: main, Target: fetch, Kind: model.RelationDirectCall, Confidence: 1.0, Line: 2}); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddRelation(model.Relation{Source: fetch, Target: parse, Kind: model.RelationDirectCall, Confidence: 1.0, Line: 6}); err != nil {
		t.Fatal(err)
	}
	return g
}

func TestNavigateDepth1ReturnsDirectCallsOnly(t *testing.T) {
	g := buildCallChain(t)
	res, err := Navigate(g, "main", 1)
	if err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if len(res.Calls) != 1 || res.Calls[0].Name != "fetch" {
		t.Errorf("got calls %+v, want [fetch]", res.Calls)
	}
	if len(res.CalledBy) != 0 {
		t.Errorf("expected no callers for main, got %+v", res.CalledBy)
	}
}

func TestNavigateDepth2ExpandsTransitively(t *testing.T) {
	g := buildCallChain(t)
	res, err := Navigate(g, "main", 2)
	if err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if len(res.Calls) != 2 {
		t.Fatalf("got %d calls, want 2 (fetch, parse)", len(res.Calls))
	}
	if res.Calls[0].Name != "fetch" || res.Calls[1].Name != "parse" {
		t.Errorf("got calls %+v, want [fetch, parse] in discovery order", res.Calls)
	}
}

func TestNavigateAmbiguousNameReturnsError(t *testing.T) {
	g := graph.New()
	g.AddSymbol(model.Symbol{Name: "save", File: "x.py", Line: 1, Kind: model.KindFunction})
	g.AddSymbol(model.Symbol{Name: "save", File: "y.py", Line: 1, Kind: model.KindFunction})

	_, err := Navigate(g, "save", 1)
	if err == nil {
		t.Fatal("expected ambiguous error")
	}
}

func TestNavigateSiblingsExcludeSelfAndAreLineOrdered(t *testing.T) {
	g := graph.New()
	a, _ := g.AddSymbol(model.Symbol{Name: "a", File: "f.py", Line: 10, Kind: model.KindFunction})
	g.AddSymbol(model.Symbol{Name: "b", File: "f.py", Line: 1, Kind: model.KindFunction})
	g.AddSymbol(model.Symbol{Name: "c", File: "f.py", Line: 20, Kind: model.KindFunction})
	_ = a

	res, err := Navigate(g, "a", 1)
	if err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if len(res.Siblings) != 2 || res.Siblings[0].Name != "b" || res.Siblings[1].Name != "c" {
		t.Errorf("got siblings %+v, want [b, c] ordered by line", res.Siblings)
	}
}
