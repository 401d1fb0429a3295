// Package graph implements the in-memory symbol graph: flat node and edge
// vectors plus the auxiliary name/type/file indices and adjacency lists
// described in the data model. A Graph is append-only during indexing and
// treated as immutable once handed to the query engine.
package graph

import (
	"fmt"
	"sort"

	"github.com/codegraph-dev/codegraph/internal/model"
)

// EdgeIndex is the position of a Relation in the Graph's edge vector.
type EdgeIndex int32

// Graph owns the canonical symbol/relation arrays and their indices.
type Graph struct {
	nodes []model.Symbol
	edges []model.Relation

	byName map[string][]model.SymbolID
	byType map[model.Kind][]model.SymbolID
	byFile map[string][]model.SymbolID

	outgoing [][]EdgeIndex
	incoming [][]EdgeIndex
}

// New returns an empty graph ready to accept symbols and relations.
func New() *Graph {
	return &Graph{
		byName: make(map[string][]model.SymbolID),
		byType: make(map[model.Kind][]model.SymbolID),
		byFile: make(map[string][]model.SymbolID),
	}
}

// AddSymbol appends a new node, assigning it the next dense id, and
// updates the by_name/by_type/by_file indices. It rejects symbols with an
// empty name or file, per §4.2.
func (g *Graph) AddSymbol(s model.Symbol) (model.SymbolID, error) {
	if s.Name == "" {
		return 0, fmt.Errorf("graph: symbol has empty name")
	}
	if s.File == "" {
		return 0, fmt.Errorf("graph: symbol %q has empty file", s.Name)
	}
	id := model.SymbolID(len(g.nodes))
	s.ID = id
	g.nodes = append(g.nodes, s)
	g.outgoing = append(g.outgoing, nil)
	g.incoming = append(g.incoming, nil)

	g.byName[s.Name] = append(g.byName[s.Name], id)
	g.byType[s.Kind] = append(g.byType[s.Kind], id)
	g.byFile[s.File] = insertByLine(g.byFile[s.File], g.nodes, id)
	return id, nil
}

func insertByLine(ids []model.SymbolID, nodes []model.Symbol, id model.SymbolID) []model.SymbolID {
	line := nodes[id].Line
	idx := sort.Search(len(ids), func(i int) bool { return nodes[ids[i]].Line > line })
	ids = append(ids, 0)
	copy(ids[idx+1:], ids[idx:])
	ids[idx] = id
	return ids
}

// AddRelation appends a new edge if both endpoints exist and updates the
// outgoing/incoming adjacency lists. It is a no-op (with an error) if
// either endpoint is out of range.
func (g *Graph) AddRelation(r model.Relation) (EdgeIndex, error) {
	if !g.validID(r.Source) || !g.validID(r.Target) {
		return 0, fmt.Errorf("graph: relation references unknown symbol id")
	}
	idx := EdgeIndex(len(g.edges))
	g.edges = append(g.edges, r)
	g.outgoing[r.Source] = append(g.outgoing[r.Source], idx)
	g.incoming[r.Target] = append(g.incoming[r.Target], idx)
	return idx, nil
}

func (g *Graph) validID(id model.SymbolID) bool {
	return id >= 0 && int(id) < len(g.nodes)
}

// FindByName returns every symbol id with the given name, in insertion order.
func (g *Graph) FindByName(name string) []model.SymbolID {
	return g.byName[name]
}

// FindByType returns every symbol id of the given kind, in insertion order.
func (g *Graph) FindByType(k model.Kind) []model.SymbolID {
	return g.byType[k]
}

// FindByFile returns every symbol id declared in file, sorted by line.
func (g *Graph) FindByFile(file string) []model.SymbolID {
	return g.byFile[file]
}

// Outgoing returns the edge indices whose source is id.
func (g *Graph) Outgoing(id model.SymbolID) []EdgeIndex {
	if !g.validID(id) {
		return nil
	}
	return g.outgoing[id]
}

// Incoming returns the edge indices whose target is id.
func (g *Graph) Incoming(id model.SymbolID) []EdgeIndex {
	if !g.validID(id) {
		return nil
	}
	return g.incoming[id]
}

// Symbol returns the node at id. The caller must check NodeCount first;
// an out-of-range id panics, matching the teacher's index-trusted style
// for internal traversal code operating on a graph it just built.
func (g *Graph) Symbol(id model.SymbolID) *model.Symbol {
	return &g.nodes[id]
}

// Edge returns the relation at edge index i.
func (g *Graph) Edge(i EdgeIndex) *model.Relation {
	return &g.edges[i]
}

// NodeCount returns the number of symbols in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of relations in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Nodes returns the full node vector, in id order. Callers must not mutate
// the returned slice.
func (g *Graph) Nodes() []model.Symbol { return g.nodes }

// Edges returns the full edge vector, in insertion order. Callers must not
// mutate the returned slice.
func (g *Graph) Edges() []model.Relation { return g.edges }

// SetEdgeTarget rewrites an edge's target and confidence in place and
// appends the edge to the new target's incoming list; the old target's
// incoming list is left as it was. The resolver does not call it: it
// appends each resolved edge with AddRelation.
func (g *Graph) SetEdgeTarget(i EdgeIndex, target model.SymbolID, confidence float32) error {
	if !g.validID(target) {
		return fmt.Errorf("graph: resolved target id out of range")
	}
	g.edges[i].Target = target
	g.edges[i].Confidence = confidence
	g.incoming[target] = append(g.incoming[target], i)
	return nil
}

// Rebuild reconstructs a Graph's auxiliary indices and adjacency lists
// from scratch given already-decoded node and edge vectors. Used by the
// persistence loader, where indices are never serialized (§4.4) and a
// deterministic rebuild is an invariant (§4.2, §8 property 5).
func Rebuild(nodes []model.Symbol, edges []model.Relation) *Graph {
	g := New()
	g.nodes = nodes
	g.outgoing = make([][]EdgeIndex, len(nodes))
	g.incoming = make([][]EdgeIndex, len(nodes))

	for id := range nodes {
		sid := model.SymbolID(id)
		g.byName[nodes[id].Name] = append(g.byName[nodes[id].Name], sid)
		g.byType[nodes[id].Kind] = append(g.byType[nodes[id].Kind], sid)
		g.byFile[nodes[id].File] = insertByLine(g.byFile[nodes[id].File], nodes, sid)
	}
	g.edges = edges
	for i, e := range edges {
		idx := EdgeIndex(i)
		if g.validID(e.Source) {
			g.outgoing[e.Source] = append(g.outgoing[e.Source], idx)
		}
		if g.validID(e.Target) {
			g.incoming[e.Target] = append(g.incoming[e.Target], idx)
		}
	}
	return g
}
