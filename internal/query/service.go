package query

import (
	"fmt"

	"github.com/codegraph-dev/codegraph/internal/graph"
)

// Service binds a single immutable graph snapshot to a result cache. The
// app builds a new Service each time it reindexes; concurrent
// queries against the same Service are safe since both the graph and
// the cache's entries are never mutated in place after construction
// (§5).
type Service struct {
	graph *graph.Graph
	cache *Cache
}

// NewService wraps g with a fresh, empty result cache.
func NewService(g *graph.Graph) *Service {
	return &Service{graph: g, cache: NewCache()}
}

// Graph returns the underlying snapshot, e.g. for staleness checks.
func (s *Service) Graph() *graph.Graph {
	return s.graph
}

func (s *Service) Navigate(name string, depth int) (*NavigateResult, error) {
	key := fmt.Sprintf("navigate:%s:%d", name, depth)
	if v, ok := s.cache.Get(key); ok {
		return v.(*NavigateResult), nil
	}
	res, err := Navigate(s.graph, name, depth)
	if err != nil {
		return nil, err
	}
	s.cache.Put(key, res)
	return res, nil
}

func (s *Service) Find(q string, scope string) (*FindResult, error) {
	key := fmt.Sprintf("find:%s:%s", q, scope)
	if v, ok := s.cache.Get(key); ok {
		return v.(*FindResult), nil
	}
	res, err := Find(s.graph, q, scope)
	if err != nil {
		return nil, err
	}
	s.cache.Put(key, res)
	return res, nil
}

func (s *Service) Impact(name string, includeTests bool) (*ImpactResult, error) {
	key := fmt.Sprintf("impact:%s:%t", name, includeTests)
	if v, ok := s.cache.Get(key); ok {
		return v.(*ImpactResult), nil
	}
	res, err := Impact(s.graph, name, includeTests)
	if err != nil {
		return nil, err
	}
	s.cache.Put(key, res)
	return res, nil
}
