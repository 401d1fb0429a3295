// Package indexer walks a project, runs each file through its language
// adapter, resolves the collected raw relations into graph edges, and
// persists the result — the sole writer of a project's graph (§4.5,§4.6).
package indexer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/codegraph-dev/codegraph/internal/config"
	"github.com/codegraph-dev/codegraph/internal/graph"
	"github.com/codegraph-dev/codegraph/internal/model"
	"github.com/codegraph-dev/codegraph/internal/parser"
	"github.com/codegraph-dev/codegraph/internal/persist"
	"github.com/codegraph-dev/codegraph/internal/resolver"
)

// skipDirs are never descended into, regardless of .gitignore content.
var skipDirs = map[string]bool{
	".git":         true,
	".codegraph":   true,
	"node_modules": true,
	"target":       true,
	"dist":         true,
	"build":        true,
	"__pycache__":  true,
	".venv":        true,
}

// Diagnostic records a non-fatal per-file failure surfaced to the caller
// (§4.5: parse errors skip the file, never abort the run).
type Diagnostic struct {
	File string
	Err  error
}

// Result summarizes one indexing run. RunID has no persisted meaning —
// it exists purely to correlate one run's log lines and diagnostics,
// the way the teacher's IndexRun records correlate a run's DB rows.
type Result struct {
	RunID        uuid.UUID
	Graph        *graph.Graph
	FilesScanned int
	FilesParsed  int
	FilesSkipped int
	Diagnostics  []Diagnostic
	ResolveStats resolver.Stats
	Duration     time.Duration
}

// Indexer owns the language adapter registry and runtime configuration
// used to build a project's graph from scratch.
type Indexer struct {
	registry *parser.Registry
	cfg      *config.Config
	logger   *slog.Logger
}

// New constructs an Indexer that dispatches files through the adapters
// already registered in registry; it registers none of its own.
func New(cfg *config.Config, logger *slog.Logger, registry *parser.Registry) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{registry: registry, cfg: cfg, logger: logger}
}

// Run performs a full rebuild of the graph for the project rooted at
// cfg.ProjectRoot: walk, parse, resolve, persist. It never returns a
// partial graph on a per-file error — those become Diagnostics instead.
func (ix *Indexer) Run() (*Result, error) {
	start := time.Now()
	gi := loadGitignore(ix.cfg.ProjectRoot)

	g := graph.New()
	var pending []resolver.PendingEdge
	res := &Result{RunID: uuid.New()}
	ix.logger.Debug("run started", "run_id", res.RunID)

	err := filepath.WalkDir(ix.cfg.ProjectRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(ix.cfg.ProjectRoot, path)
		if relErr != nil {
			rel = path
		}

		if d.IsDir() {
			if path != ix.cfg.ProjectRoot && (skipDirs[d.Name()] || (gi != nil && gi.MatchesPath(rel))) {
				return filepath.SkipDir
			}
			return nil
		}

		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		adapter := ix.registry.ForFile(path)
		if adapter == nil {
			return nil
		}
		res.FilesScanned++

		info, statErr := d.Info()
		if statErr != nil {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{File: rel, Err: statErr})
			res.FilesSkipped++
			return nil
		}
		if info.Size() > ix.cfg.MaxFileBytes {
			ix.logger.Warn("skipping oversized file", "file", rel, "size", humanize.Bytes(uint64(info.Size())))
			res.FilesSkipped++
			return nil
		}

		content, readErr := os.ReadFile(path)
		if readErr != nil {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{File: rel, Err: readErr})
			res.FilesSkipped++
			return nil
		}

		pr, parseErr := adapter.Parse(parser.FileInput{Path: rel, Content: content, Language: adapter.Language()})
		if parseErr != nil {
			ix.logger.Warn("parse failed", "file", rel, "error", parseErr)
			res.Diagnostics = append(res.Diagnostics, Diagnostic{File: rel, Err: parseErr})
			res.FilesSkipped++
			return nil
		}

		ix.ingest(g, &pending, rel, adapter.Language(), pr)
		res.FilesParsed++
		return nil
	})
	if err != nil {
		return nil, err
	}

	res.ResolveStats = resolver.Resolve(g, pending, ix.cfg.FuzzyFloor)

	if err := persist.WriteFile(ix.cfg.IndexPath, g); err != nil {
		return nil, err
	}

	res.Graph = g
	res.Duration = time.Since(start)
	return res, nil
}

// ingest appends one file's extracted raw symbols/relations into g and
// pending, translating each adapter's local indices (ParentIdx,
// EnclosingIdx into its own ParseResult.Symbols slice) into real graph
// SymbolIDs.
func (ix *Indexer) ingest(g *graph.Graph, pending *[]resolver.PendingEdge, file string, lang model.Language, pr *parser.ParseResult) {
	localToGlobal := make([]model.SymbolID, len(pr.Symbols))

	for i, rs := range pr.Symbols {
		if rs.Name == "" || rs.Line <= 0 {
			localToGlobal[i] = model.NoParent
			continue
		}
		parent := model.NoParent
		if rs.ParentIdx >= 0 && rs.ParentIdx < i {
			parent = localToGlobal[rs.ParentIdx]
		}
		id, err := g.AddSymbol(model.Symbol{
			Name:       rs.Name,
			Kind:       rs.Kind,
			File:       file,
			Line:       rs.Line,
			Signature:  rs.Signature,
			Language:   lang,
			Visibility: rs.Visibility,
			Parent:     parent,
		})
		if err != nil {
			localToGlobal[i] = model.NoParent
			continue
		}
		localToGlobal[i] = id
	}

	for _, rr := range pr.Relations {
		if rr.EnclosingIdx < 0 || rr.EnclosingIdx >= len(localToGlobal) {
			continue
		}
		source := localToGlobal[rr.EnclosingIdx]
		if source == model.NoParent {
			continue
		}
		if rr.TargetText == "" {
			continue
		}
		*pending = append(*pending, resolver.PendingEdge{
			Source:     source,
			TargetText: rr.TargetText,
			Kind:       rr.Kind,
			Line:       rr.Line,
		})
	}
}

// NeedsReindex reports whether the persisted index is missing or older
// than any file under root — the only staleness signal this system uses;
// there is no incremental reparse (§4.6). Every file outside skipDirs
// counts, whether or not an adapter handles its extension, and
// .gitignore patterns are not applied here.
func NeedsReindex(cfg *config.Config) (bool, error) {
	indexInfo, err := os.Stat(cfg.IndexPath)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, err
	}
	stale := false
	err = filepath.WalkDir(cfg.ProjectRoot, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if stale {
			return filepath.SkipAll
		}
		if d.IsDir() {
			if path != cfg.ProjectRoot && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		if info.ModTime().After(indexInfo.ModTime()) {
			stale = true
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return stale, nil
}

func loadGitignore(root string) *ignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	content, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var patterns []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if len(patterns) == 0 {
		return nil
	}
	return ignore.CompileIgnoreLines(patterns...)
}

// Summary renders a one-line human-readable recap of a run, e.g. for
// --verbose CLI output.
func Summary(r *Result) string {
	return fmt.Sprintf(
		"run %s: scanned %s files, parsed %s, skipped %s, %s symbols, %s edges (%s unresolved) in %s",
		r.RunID,
		humanize.Comma(int64(r.FilesScanned)), humanize.Comma(int64(r.FilesParsed)), humanize.Comma(int64(r.FilesSkipped)),
		humanize.Comma(int64(r.Graph.NodeCount())), humanize.Comma(int64(r.Graph.EdgeCount())),
		humanize.Comma(int64(r.ResolveStats.Unresolved)), r.Duration.Round(time.Millisecond),
	)
}
