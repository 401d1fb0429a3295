package query

import (
	"path"
	"strings"

	"github.com/codegraph-dev/codegraph/internal/graph"
	"github.com/codegraph-dev/codegraph/internal/model"
)

// ImpactTransitiveCap stops the transitive walk once direct+transitive
// reaches this size; the direct-caller list itself is never truncated.
const ImpactTransitiveCap = 500

// ImpactResult is the wire shape of an impact tool response (§6).
type ImpactResult struct {
	Symbol           SymbolRef   `json:"symbol"`
	DirectCallers    []SymbolRef `json:"direct_callers"`
	TransitiveImpact []SymbolRef `json:"transitive_impact"`
	AffectedFiles    []string    `json:"affected_files"`
	TestFiles        []string    `json:"test_files"`
	RiskLevel        string      `json:"risk_level"`
}

// Impact resolves name and computes everything that transitively depends
// on it by walking incoming call/instantiation/reference edges backward
// from the symbol, classifying the blast radius into a risk tier (§4.7).
func Impact(g *graph.Graph, name string, includeTests bool) (*ImpactResult, error) {
	id, err := ResolveQuerySymbol(g, name)
	if err != nil {
		return nil, err
	}

	seen := map[model.SymbolID]bool{id: true}
	var direct, transitive []model.SymbolID

	frontier := incomingImpactSources(g, id)
	for _, src := range frontier {
		if !seen[src] {
			seen[src] = true
			direct = append(direct, src)
		}
	}

	total := len(direct)
	queue := append([]model.SymbolID{}, direct...)
	for len(queue) > 0 && total < ImpactTransitiveCap {
		cur := queue[0]
		queue = queue[1:]
		for _, src := range incomingImpactSources(g, cur) {
			if seen[src] {
				continue
			}
			seen[src] = true
			transitive = append(transitive, src)
			queue = append(queue, src)
			total++
			if total >= ImpactTransitiveCap {
				break
			}
		}
	}

	affectedSet := map[string]bool{}
	for _, sid := range direct {
		affectedSet[g.Symbol(sid).File] = true
	}
	for _, sid := range transitive {
		affectedSet[g.Symbol(sid).File] = true
	}

	var testFiles []string
	for f := range affectedSet {
		if isTestFile(f) {
			testFiles = append(testFiles, f)
		}
	}
	if !includeTests {
		for _, f := range testFiles {
			delete(affectedSet, f)
		}
	}

	affectedFiles := make([]string, 0, len(affectedSet))
	for f := range affectedSet {
		affectedFiles = append(affectedFiles, f)
	}

	return &ImpactResult{
		Symbol:           ref(g, id, 1.0),
		DirectCallers:    toConfidentRefs(g, direct),
		TransitiveImpact: toConfidentRefs(g, transitive),
		AffectedFiles:    affectedFiles,
		TestFiles:        testFiles,
		RiskLevel:        riskLevel(len(direct) + len(transitive)),
	}, nil
}

func incomingImpactSources(g *graph.Graph, id model.SymbolID) []model.SymbolID {
	var out []model.SymbolID
	for _, ei := range g.Incoming(id) {
		e := g.Edge(ei)
		if e.Kind.IsImpactSource() {
			out = append(out, e.Source)
		}
	}
	return out
}

func toConfidentRefs(g *graph.Graph, ids []model.SymbolID) []SymbolRef {
	out := make([]SymbolRef, len(ids))
	for i, id := range ids {
		out[i] = ref(g, id, 1.0)
	}
	return out
}

func riskLevel(total int) string {
	switch {
	case total <= 2:
		return "Low"
	case total <= 10:
		return "Medium"
	default:
		return "High"
	}
}

// isTestFile reports whether file matches one of the test-file patterns
// test_*, *_test.*, *.test.*, tests/* (§4.7).
func isTestFile(file string) bool {
	base := path.Base(file)
	if strings.HasPrefix(base, "test_") {
		return true
	}
	if strings.Contains(base, "_test.") {
		return true
	}
	if strings.Contains(base, ".test.") {
		return true
	}
	for _, part := range strings.Split(path.Dir(file), "/") {
		if part == "tests" {
			return true
		}
	}
	return false
}
