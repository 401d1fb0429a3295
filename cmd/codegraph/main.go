package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/codegraph-dev/codegraph/internal/app"
	"github.com/codegraph-dev/codegraph/internal/config"
	"github.com/codegraph-dev/codegraph/internal/indexer"
	"github.com/codegraph-dev/codegraph/internal/mcptools"
	"github.com/codegraph-dev/codegraph/internal/query"
	"github.com/codegraph-dev/codegraph/pkg/cgerr"
)

var (
	flagVerbose  bool
	flagForce    bool
	flagIndex    string
	errorHandled bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(exitCodeFor(err))
	}
}

var rootCmd = &cobra.Command{
	Use:           "codegraph",
	Short:         "Builds and serves a cross-file symbol-relationship graph for LLM assistants",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(indexCmd, serveCmd, mcpCmd)
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index a project and write .codegraph/index.bin",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&flagForce, "force", false, "reindex even if the on-disk index is already fresh")
}

func runIndex(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	target := ""
	if len(args) > 0 {
		target = args[0]
	}

	cfg, err := config.Load(target)
	if err != nil {
		return cgerr.IOFailure(err)
	}

	a := app.New(cfg, logger)

	var res *indexer.Result
	if flagForce {
		res, err = a.Reindex()
	} else {
		stale, staleErr := indexer.NeedsReindex(cfg)
		if staleErr != nil {
			return cgerr.IOFailure(staleErr)
		}
		if !stale {
			logger.Info("index is already fresh", "path", cfg.IndexPath)
			return nil
		}
		res, err = a.Reindex()
	}
	if err != nil {
		return err
	}

	logger.Info("index complete", "summary", indexer.Summary(res))
	for _, d := range res.Diagnostics {
		logger.Warn("parse diagnostic", "file", d.File, "error", d.Err)
	}
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve navigate/find/impact tools over stdio (alias for mcp)",
	RunE:  runServe,
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve navigate/find/impact tools over stdio as an MCP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagIndex, "index", "", "project path whose index to serve (default: CODEGRAPH_PROJECT or .)")
	mcpCmd.Flags().StringVar(&flagIndex, "index", "", "project path whose index to serve (default: CODEGRAPH_PROJECT or .)")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := config.Load(flagIndex)
	if err != nil {
		return cgerr.IOFailure(err)
	}

	a := app.New(cfg, logger)
	if err := a.EnsureFresh(); err != nil {
		return err
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{Name: "codegraph", Version: "0.1.0"}, nil)
	mcptools.RegisterAll(server, func() (*query.Service, error) {
		if err := a.EnsureFresh(); err != nil {
			return nil, err
		}
		return a.Service(), nil
	})

	logger.Info("codegraph MCP server ready", "project", cfg.ProjectRoot)
	return server.Run(context.Background(), &sdkmcp.StdioTransport{})
}

func exitCodeFor(err error) int {
	if ce, ok := err.(*cgerr.Error); ok {
		return ce.Code().ExitCode()
	}
	return 1
}
