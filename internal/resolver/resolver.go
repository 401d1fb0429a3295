// Package resolver converts the raw, textually targeted relations an
// adapter emits into graph edges with a symbol id target and a confidence
// score, following the five-tier resolution order in the component design.
package resolver

import (
	"path/filepath"
	"sort"

	"github.com/codegraph-dev/codegraph/internal/fuzzy"
	"github.com/codegraph-dev/codegraph/internal/graph"
	"github.com/codegraph-dev/codegraph/internal/model"
)

// PendingEdge is a relation still carrying a textual target, queued by the
// indexer while building the graph from one or more adapter runs.
type PendingEdge struct {
	Source     model.SymbolID
	TargetText string
	Kind       model.RelationKind
	Line       int
}

// Stats summarizes one resolution pass, logged by the indexer.
type Stats struct {
	LocalExact     int
	GlobalUnique   int
	GlobalAmbiguous int
	Fuzzy          int
	Unresolved     int
}

// Resolve rewrites each pending edge into a graph relation, appending
// resolved edges directly to g. fuzzyFloor is the minimum similarity score
// considered by tier 4 (default 0.3, §4.3). Edges are processed in
// insertion order and results are deterministic for identical inputs.
func Resolve(g *graph.Graph, pending []PendingEdge, fuzzyFloor float64) Stats {
	var stats Stats
	for _, p := range pending {
		target, confidence, tier := resolveOne(g, p, fuzzyFloor)
		switch tier {
		case tierLocal:
			stats.LocalExact++
		case tierGlobalUnique:
			stats.GlobalUnique++
		case tierGlobalAmbiguous:
			stats.GlobalAmbiguous++
		case tierFuzzy:
			stats.Fuzzy++
		default:
			stats.Unresolved++
			continue
		}
		_, _ = g.AddRelation(model.Relation{
			Source:     p.Source,
			Target:     target,
			Kind:       p.Kind,
			Confidence: confidence,
			Line:       p.Line,
		})
	}
	return stats
}

type tier int

const (
	tierUnresolved tier = iota
	tierLocal
	tierGlobalUnique
	tierGlobalAmbiguous
	tierFuzzy
)

func resolveOne(g *graph.Graph, p PendingEdge, fuzzyFloor float64) (model.SymbolID, float32, tier) {
	if p.TargetText == "" {
		return 0, 0, tierUnresolved // DynamicCall with no descriptor
	}
	src := g.Symbol(p.Source)
	candidates := g.FindByName(p.TargetText)
	if len(candidates) == 0 {
		if id, score, ok := resolveFuzzy(g, p, fuzzyFloor); ok {
			return id, score, tierFuzzy
		}
		return 0, 0, tierUnresolved
	}

	if id, ok := resolveLocal(g, src, candidates, p); ok {
		confidence := float32(1.0)
		if len(localCandidates(g, src, candidates)) > 1 {
			confidence = 0.95
		}
		return id, confidence, tierLocal
	}

	if len(candidates) == 1 {
		confidence := float32(1.0)
		if p.Kind == model.RelationMethodCall || p.Kind == model.RelationFieldAccess {
			confidence = 0.9
		}
		return candidates[0], confidence, tierGlobalUnique
	}

	id, unique := rankAmbiguous(g, src, candidates, p)
	if unique {
		return id, 0.7, tierGlobalAmbiguous
	}
	return id, 0.5, tierGlobalAmbiguous
}

// localCandidates filters candidates to those sharing the source symbol's file.
func localCandidates(g *graph.Graph, src *model.Symbol, candidates []model.SymbolID) []model.SymbolID {
	var out []model.SymbolID
	for _, id := range candidates {
		if g.Symbol(id).File == src.File {
			out = append(out, id)
		}
	}
	return out
}

// resolveLocal implements tier 1: prefer a same-file candidate whose line
// is closest to but not after the edge's line.
func resolveLocal(g *graph.Graph, src *model.Symbol, candidates []model.SymbolID, p PendingEdge) (model.SymbolID, bool) {
	local := localCandidates(g, src, candidates)
	if len(local) == 0 {
		return 0, false
	}
	if len(local) == 1 {
		return local[0], true
	}
	best := local[0]
	bestDist := lineDistance(g.Symbol(best).Line, p.Line)
	for _, id := range local[1:] {
		d := lineDistance(g.Symbol(id).Line, p.Line)
		if d < bestDist || (d == bestDist && id < best) {
			best, bestDist = id, d
		}
	}
	return best, true
}

// lineDistance ranks same-file candidates by closeness to the use site,
// preferring a declaration at or before useLine over one declared after it.
const afterUsePenalty = 1 << 20

func lineDistance(declLine, useLine int) int {
	if declLine <= useLine {
		return useLine - declLine
	}
	return afterUsePenalty + (declLine - useLine)
}

// rankAmbiguous implements tier 3: rank by (same language, same directory,
// kind compatibility), deterministic tiebreak on smallest id.
func rankAmbiguous(g *graph.Graph, src *model.Symbol, candidates []model.SymbolID, p PendingEdge) (model.SymbolID, bool) {
	type scored struct {
		id    model.SymbolID
		score int
	}
	preferred := p.Kind.PreferredTargetKinds()
	ranked := make([]scored, 0, len(candidates))
	for _, id := range candidates {
		sym := g.Symbol(id)
		s := 0
		if sym.Language == src.Language {
			s += 4
		}
		if filepath.Dir(sym.File) == filepath.Dir(src.File) {
			s += 2
		}
		for _, k := range preferred {
			if sym.Kind == k {
				s += 1
				break
			}
		}
		ranked = append(ranked, scored{id: id, score: s})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].id < ranked[j].id
	})
	unique := len(ranked) == 1 || ranked[0].score > ranked[1].score
	return ranked[0].id, unique
}

// resolveFuzzy implements tier 4: best-scoring symbol name above the floor.
func resolveFuzzy(g *graph.Graph, p PendingEdge, floor float64) (model.SymbolID, float32, bool) {
	var best model.SymbolID
	bestScore := -1.0
	found := false
	for id := 0; id < g.NodeCount(); id++ {
		sid := model.SymbolID(id)
		score := fuzzy.Score(g.Symbol(sid).Name, p.TargetText)
		if score < floor {
			continue
		}
		if score > bestScore || (score == bestScore && sid < best) {
			best, bestScore, found = sid, score, true
		}
	}
	if !found {
		return 0, 0, false
	}
	confidence := float32(bestScore * 0.6)
	if confidence > 0.85 {
		confidence = 0.85
	}
	return best, confidence, true
}
