package query

import (
	"sort"
	"strings"

	"github.com/codegraph-dev/codegraph/internal/fuzzy"
	"github.com/codegraph-dev/codegraph/internal/graph"
	"github.com/codegraph-dev/codegraph/internal/model"
)

// FindCap bounds the number of matches a Find response returns.
const FindCap = 50

// FindResult is the wire shape of a find tool response (§6).
type FindResult struct {
	Matches       []SymbolRef            `json:"matches"`
	GroupedByFile map[string][]SymbolRef `json:"grouped_by_file"`
}

// Find scores every symbol against query using the three-tier scheme
// (exact name = 1.0, lowercased substring = 0.8, fuzzy >= floor clamped
// to [0.3, 1.0)), optionally restricted to files with the scope prefix,
// and returns up to FindCap matches ordered by confidence desc, then
// shortest name, then smallest id (§4.7).
func Find(g *graph.Graph, query string, scope string) (*FindResult, error) {
	lowerQuery := strings.ToLower(query)

	type candidate struct {
		id         model.SymbolID
		confidence float32
	}
	var candidates []candidate

	for i := 0; i < g.NodeCount(); i++ {
		id := model.SymbolID(i)
		s := g.Symbol(id)
		if scope != "" && !strings.HasPrefix(s.File, scope) {
			continue
		}

		switch {
		case s.Name == query:
			candidates = append(candidates, candidate{id, 1.0})
		case strings.Contains(strings.ToLower(s.Name), lowerQuery):
			candidates = append(candidates, candidate{id, 0.8})
		default:
			score := fuzzy.Score(s.Name, query)
			if score < fuzzy.Floor {
				continue
			}
			confidence := score
			if confidence >= 1.0 {
				confidence = 0.999999
			}
			candidates = append(candidates, candidate{id, float32(confidence)})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.confidence != b.confidence {
			return a.confidence > b.confidence
		}
		nameA, nameB := g.Symbol(a.id).Name, g.Symbol(b.id).Name
		if len(nameA) != len(nameB) {
			return len(nameA) < len(nameB)
		}
		return a.id < b.id
	})

	if len(candidates) > FindCap {
		candidates = candidates[:FindCap]
	}

	matches := make([]SymbolRef, len(candidates))
	grouped := map[string][]SymbolRef{}
	for i, c := range candidates {
		ref := ref(g, c.id, c.confidence)
		matches[i] = ref
		grouped[ref.File] = append(grouped[ref.File], ref)
	}

	return &FindResult{Matches: matches, GroupedByFile: grouped}, nil
}
