package query

import (
	"testing"

	"github.com/codegraph-dev/codegraph/internal/graph"
	"github.com/codegraph-dev/codegraph/internal/model"
)

func TestFindExactMatchOutranksSubstring(t *testing.T) {
	g := graph.New()
	g.AddSymbol(model.Symbol{Name: "process_data", File: "a.py", Line: 1, Kind: model.KindFunction})
	g.AddSymbol(model.Symbol{Name: "process_data_helper", File: "b.py", Line: 1, Kind: model.KindFunction})

	res, err := Find(g, "process_data", "")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(res.Matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(res.Matches))
	}
	if res.Matches[0].Name != "process_data" || res.Matches[0].Confidence != 1.0 {
		t.Errorf("top match = %+v, want exact process_data at 1.0", res.Matches[0])
	}
	if res.Matches[1].Confidence != 0.8 {
		t.Errorf("substring match confidence = %f, want 0.8", res.Matches[1].Confidence)
	}
}

func TestFindScopeFiltersByFilePrefix(t *testing.T) {
	g := graph.New()
	g.AddSymbol(model.Symbol{Name: "run", File: "pkg/a/run.py", Line: 1, Kind: model.KindFunction})
	g.AddSymbol(model.Symbol{Name: "run", File: "pkg/b/run.py", Line: 1, Kind: model.KindFunction})

	res, err := Find(g, "run", "pkg/a")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(res.Matches) != 1 || res.Matches[0].File != "pkg/a/run.py" {
		t.Errorf("got %+v, want only pkg/a/run.py", res.Matches)
	}
}

func TestFindRanksExactMatchAboveLongerSubstringMatch(t *testing.T) {
	g := graph.New()
	g.AddSymbol(model.Symbol{Name: "runner_long", File: "a.py", Line: 1, Kind: model.KindFunction})
	g.AddSymbol(model.Symbol{Name: "run", File: "a.py", Line: 2, Kind: model.KindFunction})

	res, err := Find(g, "run", "")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(res.Matches) < 2 {
		t.Fatalf("expected both symbols to match, got %+v", res.Matches)
	}
	if res.Matches[0].Name != "run" {
		t.Errorf("expected exact match 'run' first, got %+v", res.Matches[0])
	}
}

func TestFindCapsAt50(t *testing.T) {
	g := graph.New()
	for i := 0; i < 60; i++ {
		g.AddSymbol(model.Symbol{Name: "widget", File: "a.py", Line: i + 1, Kind: model.KindFunction})
	}
	res, err := Find(g, "widget", "")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(res.Matches) != FindCap {
		t.Errorf("got %d matches, want cap %d", len(res.Matches), FindCap)
	}
}

func TestFindGroupedByFile(t *testing.T) {
	g := graph.New()
	g.AddSymbol(model.Symbol{Name: "widget", File: "a.py", Line: 1, Kind: model.KindFunction})
	g.AddSymbol(model.Symbol{Name: "widget", File: "b.py", Line: 1, Kind: model.KindFunction})

	res, err := Find(g, "widget", "")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(res.GroupedByFile) != 2 {
		t.Errorf("got %d file groups, want 2", len(res.GroupedByFile))
	}
}
