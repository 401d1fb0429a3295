// Package app wires the indexer and query engine together behind the
// single-writer, atomic-snapshot concurrency model described in §5: one
// goroutine handles requests serially, checking staleness and maybe
// reindexing before each query, and a new Service/graph pointer is
// swapped in only after a full index run succeeds.
package app

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/codegraph-dev/codegraph/internal/config"
	"github.com/codegraph-dev/codegraph/internal/indexer"
	"github.com/codegraph-dev/codegraph/internal/parser"
	"github.com/codegraph-dev/codegraph/internal/parser/javascript"
	"github.com/codegraph-dev/codegraph/internal/parser/python"
	"github.com/codegraph-dev/codegraph/internal/parser/rust"
	"github.com/codegraph-dev/codegraph/internal/persist"
	"github.com/codegraph-dev/codegraph/internal/query"
	"github.com/codegraph-dev/codegraph/pkg/cgerr"
)

// NewRegistry returns the registry with all four spec languages wired
// in: Python, JavaScript, TypeScript, Rust (§1).
func NewRegistry() *parser.Registry {
	reg := parser.NewRegistry()
	reg.Register(python.New())
	reg.Register(javascript.NewJS())
	reg.Register(javascript.NewTS())
	reg.Register(rust.New())
	return reg
}

// App holds the current query snapshot and reindexes on demand. It is
// not safe for concurrent reindex calls — the CLI and the MCP server
// both serialize request handling onto a single goroutine, per §5.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *parser.Registry
	current  atomic.Pointer[query.Service]
}

// New constructs an App with no graph loaded yet; call EnsureFresh or
// Reindex before serving queries.
func New(cfg *config.Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{cfg: cfg, logger: logger, registry: NewRegistry()}
}

// Reindex runs a full rebuild and atomically swaps in the resulting
// Service, discarding the previous snapshot.
func (a *App) Reindex() (*indexer.Result, error) {
	ix := indexer.New(a.cfg, a.logger, a.registry)
	res, err := ix.Run()
	if err != nil {
		return nil, err
	}
	a.current.Store(query.NewService(res.Graph))
	return res, nil
}

// EnsureFresh reindexes only if the on-disk index is missing or older
// than a file under the project root (§4.6); otherwise it loads the
// existing index into a fresh Service if none is loaded yet, rebuilding
// it instead when the file fails to decode as a CorruptIndex error.
func (a *App) EnsureFresh() error {
	stale, err := indexer.NeedsReindex(a.cfg)
	if err != nil {
		return err
	}
	if stale {
		_, err := a.Reindex()
		return err
	}
	if a.current.Load() == nil {
		g, err := persist.ReadFile(a.cfg.IndexPath)
		if err != nil {
			var ce *cgerr.Error
			if errors.As(err, &ce) && ce.Code() == cgerr.CodeCorruptIndex {
				_, err = a.Reindex()
			}
			return err
		}
		a.current.Store(query.NewService(g))
	}
	return nil
}

// Service returns the currently loaded query snapshot, or nil if none
// has been built yet.
func (a *App) Service() *query.Service {
	return a.current.Load()
}
