package query

import (
	"testing"

	"github.com/codegraph-dev/codegraph/internal/graph"
	"github.com/codegraph-dev/codegraph/internal/model"
)

func TestImpactDirectCallersAreIncomingCallSources(t *testing.T) {
	g := graph.New()
	target, _ := g.AddSymbol(model.Symbol{Name: "core", File: "lib/core.py", Line: 1, Kind: model.KindFunction})
	caller, _ := g.AddSymbol(model.Symbol{Name: "caller", File: "lib/caller.py", Line: 1, Kind: model.KindFunction})
	if _, err := g.AddRelation(model.Relation{Source: caller, Target: target, Kind: model.RelationDirectCall, Confidence: 1.0, Line: 2}); err != nil {
		t.Fatal(err)
	}

	res, err := Impact(g, "core", true)
	if err != nil {
		t.Fatalf("Impact: %v", err)
	}
	if len(res.DirectCallers) != 1 || res.DirectCallers[0].Name != "caller" {
		t.Errorf("got direct callers %+v, want [caller]", res.DirectCallers)
	}
	if res.RiskLevel != "Low" {
		t.Errorf("got risk %s, want Low", res.RiskLevel)
	}
}

func TestImpactDirectIsSubsetOfTransitiveUnion(t *testing.T) {
	g := graph.New()
	core, _ := g.AddSymbol(model.Symbol{Name: "core", File: "a.py", Line: 1, Kind: model.KindFunction})
	mid, _ := g.AddSymbol(model.Symbol{Name: "mid", File: "b.py", Line: 1, Kind: model.KindFunction})
	top, _ := g.AddSymbol(model.Symbol{Name: "top", File: "c.py", Line: 1, Kind: model.KindFunction})
	g.AddRelation(model.Relation{Source: mid, Target: core, Kind: model.RelationDirectCall, Confidence: 1.0, Line: 1})
	g.AddRelation(model.Relation{Source: top, Target: mid, Kind: model.RelationDirectCall, Confidence: 1.0, Line: 1})

	res, err := Impact(g, "core", true)
	if err != nil {
		t.Fatalf("Impact: %v", err)
	}
	if len(res.DirectCallers) != 1 || res.DirectCallers[0].Name != "mid" {
		t.Errorf("got direct %+v, want [mid]", res.DirectCallers)
	}
	if len(res.TransitiveImpact) != 1 || res.TransitiveImpact[0].Name != "top" {
		t.Errorf("got transitive %+v, want [top]", res.TransitiveImpact)
	}
}

func TestImpactHighRiskAboveTenTotal(t *testing.T) {
	g := graph.New()
	target, _ := g.AddSymbol(model.Symbol{Name: "core", File: "a.py", Line: 1, Kind: model.KindFunction})
	for i := 0; i < 11; i++ {
		caller, _ := g.AddSymbol(model.Symbol{Name: "c", File: "a.py", Line: i + 2, Kind: model.KindFunction})
		g.AddRelation(model.Relation{Source: caller, Target: target, Kind: model.RelationDirectCall, Confidence: 1.0, Line: i + 2})
	}

	res, err := Impact(g, "core", true)
	if err != nil {
		t.Fatalf("Impact: %v", err)
	}
	if res.RiskLevel != "High" {
		t.Errorf("got risk %s, want High", res.RiskLevel)
	}
}

func TestImpactExcludesTestFilesFromAffectedWhenNotIncluded(t *testing.T) {
	g := graph.New()
	target, _ := g.AddSymbol(model.Symbol{Name: "core", File: "lib/core.py", Line: 1, Kind: model.KindFunction})
	caller, _ := g.AddSymbol(model.Symbol{Name: "test_core", File: "tests/test_core.py", Line: 1, Kind: model.KindFunction})
	g.AddRelation(model.Relation{Source: caller, Target: target, Kind: model.RelationDirectCall, Confidence: 1.0, Line: 2})

	res, err := Impact(g, "core", false)
	if err != nil {
		t.Fatalf("Impact: %v", err)
	}
	for _, f := range res.AffectedFiles {
		if f == "tests/test_core.py" {
			t.Errorf("expected test file excluded from affected_files, got %+v", res.AffectedFiles)
		}
	}
	if len(res.TestFiles) != 1 || res.TestFiles[0] != "tests/test_core.py" {
		t.Errorf("expected test_files to still report tests/test_core.py, got %+v", res.TestFiles)
	}
}
