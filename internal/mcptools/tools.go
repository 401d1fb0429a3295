// Package mcptools is the Tool Surface (§4.8): it validates incoming
// tool parameters, dispatches to the Query Engine, and serializes typed
// results back onto the wire. Handlers never let a query-level error
// crash the server — everything becomes a structured tool result (§7).
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/codegraph-dev/codegraph/internal/query"
	"github.com/codegraph-dev/codegraph/pkg/cgerr"
)

// ToolHandler is the interface every tool handler implements, mirroring
// the teacher's handler shape: a typed params struct in, a JSON string
// (or error) out.
type ToolHandler[P any] interface {
	Handle(ctx context.Context, params P) (string, error)
}

// WrapHandler adapts a ToolHandler into the SDK's AddTool callback shape,
// translating handler errors into structured (IsError) results instead
// of ever propagating a panic or a raw Go error to the transport.
func WrapHandler[P any](h ToolHandler[P]) func(context.Context, *sdkmcp.CallToolRequest, *P) (*sdkmcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, params *P) (res *sdkmcp.CallToolResult, out any, callErr error) {
		defer func() {
			if r := recover(); r != nil {
				res = &sdkmcp.CallToolResult{
					IsError: true,
					Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: errorBody(fmt.Errorf("panic: %v", r))}},
				}
				out, callErr = nil, nil
			}
		}()
		if params == nil {
			params = new(P)
		}
		result, err := h.Handle(ctx, *params)
		if err != nil {
			return &sdkmcp.CallToolResult{
				IsError: true,
				Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: errorBody(err)}},
			}, nil, nil
		}
		return &sdkmcp.CallToolResult{
			Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: result}},
		}, nil, nil
	}
}

func errorBody(err error) string {
	var ce *cgerr.Error
	if asErr, ok := err.(*cgerr.Error); ok {
		ce = asErr
	} else {
		ce = cgerr.Wrap(cgerr.CodeInvalidArgument, err.Error(), err)
	}
	body, marshalErr := json.Marshal(ce.RPCError(map[string]any{"candidates": ce.Candidates()}))
	if marshalErr != nil {
		return ce.Error()
	}
	return string(body)
}

// NavigateArgs is the navigate tool's wire parameter shape (§6).
type NavigateArgs struct {
	SymbolName string `json:"symbol_name" jsonschema:"required,description:The symbol to navigate from"`
	Depth      int    `json:"depth" jsonschema:"description:Traversal depth 1-4, default 1"`
}

// NavigateHandler serves the navigate tool.
type NavigateHandler struct {
	Service func() (*query.Service, error)
}

func (h *NavigateHandler) Handle(ctx context.Context, args NavigateArgs) (string, error) {
	if args.SymbolName == "" {
		return "", cgerr.InvalidArgument("symbol_name is required")
	}
	depth := args.Depth
	if depth == 0 {
		depth = 1
	}
	svc, err := h.Service()
	if err != nil {
		return "", err
	}
	res, err := svc.Navigate(args.SymbolName, depth)
	if err != nil {
		return "", err
	}
	return marshal(res)
}

// FindArgs is the find tool's wire parameter shape (§6).
type FindArgs struct {
	Query string `json:"query" jsonschema:"required,description:Name or substring to search for"`
	Scope string `json:"scope" jsonschema:"description:Optional file path prefix to restrict results to"`
}

// FindHandler serves the find tool.
type FindHandler struct {
	Service func() (*query.Service, error)
}

func (h *FindHandler) Handle(ctx context.Context, args FindArgs) (string, error) {
	if args.Query == "" {
		return "", cgerr.InvalidArgument("query is required")
	}
	svc, err := h.Service()
	if err != nil {
		return "", err
	}
	res, err := svc.Find(args.Query, args.Scope)
	if err != nil {
		return "", err
	}
	return marshal(res)
}

// ImpactArgs is the impact tool's wire parameter shape (§6).
type ImpactArgs struct {
	SymbolName   string `json:"symbol_name" jsonschema:"required,description:The symbol to analyze for impact"`
	IncludeTests bool   `json:"include_tests" jsonschema:"description:Whether to include test files in affected_files"`
}

// ImpactHandler serves the impact tool.
type ImpactHandler struct {
	Service func() (*query.Service, error)
}

func (h *ImpactHandler) Handle(ctx context.Context, args ImpactArgs) (string, error) {
	if args.SymbolName == "" {
		return "", cgerr.InvalidArgument("symbol_name is required")
	}
	svc, err := h.Service()
	if err != nil {
		return "", err
	}
	res, err := svc.Impact(args.SymbolName, args.IncludeTests)
	if err != nil {
		return "", err
	}
	return marshal(res)
}

func marshal(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", cgerr.Wrap(cgerr.CodeInvalidArgument, fmt.Sprintf("marshal result: %v", err), err)
	}
	return string(b), nil
}

// RegisterAll binds the three tools (navigate, find, impact) onto server,
// each resolving its live Service lazily via serviceFn so a reindex's
// atomic snapshot swap (§5) is always reflected on the next call.
func RegisterAll(server *sdkmcp.Server, serviceFn func() (*query.Service, error)) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "navigate",
		Description: "Navigate a symbol's call-graph neighborhood: what it calls, what calls it, and its file siblings.",
	}, WrapHandler[NavigateArgs](&NavigateHandler{Service: serviceFn}))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "find",
		Description: "Find symbols by exact name, substring, or fuzzy match, optionally scoped to a file path prefix.",
	}, WrapHandler[FindArgs](&FindHandler{Service: serviceFn}))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "impact",
		Description: "Analyze the blast radius of changing a symbol: direct and transitive callers, affected files, and risk level.",
	}, WrapHandler[ImpactArgs](&ImpactHandler{Service: serviceFn}))
}
