package query

import (
	"fmt"

	"github.com/codegraph-dev/codegraph/internal/graph"
	"github.com/codegraph-dev/codegraph/internal/model"
	"github.com/codegraph-dev/codegraph/pkg/cgerr"
)

// NavigateTotalCap bounds the total number of neighbor nodes (calls +
// called_by combined, across all expanded depths) a Navigate response
// may carry, regardless of requested depth (§4.7).
const NavigateTotalCap = 200

// NavigateSiblingCap bounds the siblings list to the first N symbols in
// the target's file by line.
const NavigateSiblingCap = 20

// NavigateResult is the wire shape of a navigate tool response (§6).
type NavigateResult struct {
	Function SymbolRef   `json:"function"`
	Calls    []SymbolRef `json:"calls"`
	CalledBy []SymbolRef `json:"called_by"`
	Siblings []SymbolRef `json:"siblings"`
	Summary  string      `json:"summary"`
}

// Navigate resolves name to a symbol and returns its call-graph
// neighborhood out to depth, its siblings in the same file, and a one-line
// summary. A depth outside 1..4 is rejected with an InvalidArgument error.
func Navigate(g *graph.Graph, name string, depth int) (*NavigateResult, error) {
	if depth < 1 || depth > 4 {
		return nil, cgerr.InvalidArgument("depth must be between 1 and 4")
	}
	id, err := ResolveQuerySymbol(g, name)
	if err != nil {
		return nil, err
	}

	calls := bfsNeighbors(g, []model.SymbolID{id}, depth, outgoingCallLike)
	calledBy := bfsNeighbors(g, []model.SymbolID{id}, depth, incomingCallLike)
	applyTotalCap(&calls, &calledBy, NavigateTotalCap)

	siblings := siblingsOf(g, id)

	return &NavigateResult{
		Function: ref(g, id, 1.0),
		Calls:    toRefs(g, calls),
		CalledBy: toRefs(g, calledBy),
		Siblings: toRefs(g, siblings),
		Summary: fmt.Sprintf("%s: %d calls, %d callers, %d siblings",
			g.Symbol(id).Name, len(calls), len(calledBy), len(siblings)),
	}, nil
}

type edgeStep struct {
	id         model.SymbolID
	confidence float32
}

func outgoingCallLike(g *graph.Graph, id model.SymbolID) []edgeStep {
	var out []edgeStep
	for _, ei := range g.Outgoing(id) {
		e := g.Edge(ei)
		if e.Kind.IsCallLike() {
			out = append(out, edgeStep{id: e.Target, confidence: e.Confidence})
		}
	}
	return out
}

func incomingCallLike(g *graph.Graph, id model.SymbolID) []edgeStep {
	var out []edgeStep
	for _, ei := range g.Incoming(id) {
		e := g.Edge(ei)
		if e.Kind.IsCallLike() {
			out = append(out, edgeStep{id: e.Source, confidence: e.Confidence})
		}
	}
	return out
}

// bfsNeighbors expands from roots up to depth levels via step, returning
// neighbor ids in first-discovered order with the confidence of the edge
// that first reached them attached via idWithConfidence (read by toRefs).
func bfsNeighbors(g *graph.Graph, roots []model.SymbolID, depth int, step func(*graph.Graph, model.SymbolID) []edgeStep) []idWithConfidence {
	seen := map[model.SymbolID]bool{}
	for _, r := range roots {
		seen[r] = true
	}
	var order []idWithConfidence
	frontier := roots
	for d := 0; d < depth && len(frontier) > 0; d++ {
		var next []model.SymbolID
		for _, cur := range frontier {
			for _, s := range step(g, cur) {
				if seen[s.id] {
					continue
				}
				seen[s.id] = true
				order = append(order, idWithConfidence{id: s.id, confidence: s.confidence})
				next = append(next, s.id)
			}
		}
		frontier = next
	}
	return order
}

type idWithConfidence struct {
	id         model.SymbolID
	confidence float32
}

func applyTotalCap(calls, calledBy *[]idWithConfidence, cap int) {
	total := len(*calls) + len(*calledBy)
	if total <= cap {
		return
	}
	// Trim calledBy first, then calls, preserving discovery order within
	// whichever list remains.
	over := total - cap
	if over >= len(*calledBy) {
		over -= len(*calledBy)
		*calledBy = nil
		if over < len(*calls) {
			*calls = (*calls)[:len(*calls)-over]
		} else {
			*calls = nil
		}
		return
	}
	*calledBy = (*calledBy)[:len(*calledBy)-over]
}

func toRefs(g *graph.Graph, ids []idWithConfidence) []SymbolRef {
	out := make([]SymbolRef, len(ids))
	for i, ic := range ids {
		out[i] = ref(g, ic.id, ic.confidence)
	}
	return out
}

func siblingsOf(g *graph.Graph, id model.SymbolID) []idWithConfidence {
	file := g.Symbol(id).File
	all := g.FindByFile(file)
	var out []idWithConfidence
	for _, sid := range all {
		if sid == id {
			continue
		}
		out = append(out, idWithConfidence{id: sid, confidence: 1.0})
		if len(out) >= NavigateSiblingCap {
			break
		}
	}
	return out
}
