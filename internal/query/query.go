// Package query implements the three read-only operations served over the
// graph snapshot: Navigate a symbol's neighborhood, Find symbols by name,
// and compute Impact (transitive callers/users).
package query

import (
	"fmt"

	"github.com/codegraph-dev/codegraph/internal/fuzzy"
	"github.com/codegraph-dev/codegraph/internal/graph"
	"github.com/codegraph-dev/codegraph/internal/model"
	"github.com/codegraph-dev/codegraph/pkg/cgerr"
)

// SymbolRef is the wire-shape symbol record returned in every query
// response (§6): {name, file, line, signature?, language?, confidence?}.
type SymbolRef struct {
	Name       string  `json:"name"`
	File       string  `json:"file"`
	Line       int     `json:"line"`
	Signature  string  `json:"signature,omitempty"`
	Language   string  `json:"language,omitempty"`
	Confidence float32 `json:"confidence,omitempty"`
}

func ref(g *graph.Graph, id model.SymbolID, confidence float32) SymbolRef {
	s := g.Symbol(id)
	return SymbolRef{
		Name:       s.Name,
		File:       s.File,
		Line:       s.Line,
		Signature:  s.Signature,
		Language:   s.Language.String(),
		Confidence: confidence,
	}
}

// ResolveQuerySymbol resolves a bare name (no enclosing use-site) to a
// single symbol id for Navigate and Impact: an exact name match if there
// is exactly one, otherwise the unique highest-scoring fuzzy match. Ties
// at either tier return an *cgerr.Error of kind Ambiguous listing every
// tied candidate as "name (file:line)" (§4.7, scenario S4).
func ResolveQuerySymbol(g *graph.Graph, name string) (model.SymbolID, error) {
	exact := g.FindByName(name)
	if len(exact) == 1 {
		return exact[0], nil
	}
	if len(exact) > 1 {
		return 0, cgerr.Ambiguous(name, candidateLabels(g, exact))
	}

	type scored struct {
		id    model.SymbolID
		score float64
	}
	var best []scored
	bestScore := -1.0
	for id := 0; id < g.NodeCount(); id++ {
		sid := model.SymbolID(id)
		score := fuzzy.Score(g.Symbol(sid).Name, name)
		if score < fuzzy.Floor {
			continue
		}
		if score > bestScore {
			bestScore = score
			best = []scored{{sid, score}}
		} else if score == bestScore {
			best = append(best, scored{sid, score})
		}
	}
	if len(best) == 0 {
		return 0, cgerr.NotFound(name)
	}
	if len(best) > 1 {
		ids := make([]model.SymbolID, len(best))
		for i, b := range best {
			ids[i] = b.id
		}
		return 0, cgerr.Ambiguous(name, candidateLabels(g, ids))
	}
	return best[0].id, nil
}

func candidateLabels(g *graph.Graph, ids []model.SymbolID) []string {
	labels := make([]string, len(ids))
	for i, id := range ids {
		s := g.Symbol(id)
		labels[i] = fmt.Sprintf("%s (%s:%d)", s.Name, s.File, s.Line)
	}
	return labels
}

// dedupPreserveOrder removes repeats from ids, keeping first occurrence
// order — the shape Navigate and Impact return their neighbor lists in.
func dedupPreserveOrder(ids []model.SymbolID) []model.SymbolID {
	seen := make(map[model.SymbolID]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
