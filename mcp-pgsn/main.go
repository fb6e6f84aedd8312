package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	pgsn "github.com/yoriyuki/pgsn/core"
	"github.com/yoriyuki/pgsn/gsn"
	"github.com/yoriyuki/pgsn/store"
)

type tools struct {
	store *store.Store
	steps int
}

// guard turns contract violations raised while handling a request into tool
// errors instead of taking the server down.
func guard(h server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (res *mcp.CallToolResult, err error) {
		defer func() {
			if r := recover(); r != nil {
				res, err = mcp.NewToolResultError(fmt.Sprint(r)), nil
			}
		}()
		return h(ctx, request)
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal value: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (t *tools) budget(request mcp.CallToolRequest) int {
	if n := request.GetInt("steps", 0); n > 0 {
		return n
	}
	return t.steps
}

func requireTerm(request mcp.CallToolRequest) (pgsn.Term, error) {
	src, err := request.RequireString("term")
	if err != nil {
		return nil, err
	}
	return pgsn.UnmarshalTerm([]byte(src), nil)
}

func (t *tools) handleEval(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	term, err := requireTerm(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := pgsn.TryFullyEval(term, t.budget(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := pgsn.MarshalTerm(n)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (t *tools) handleValue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	term, err := requireTerm(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, err := pgsn.ValueOf(term, t.budget(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(v)
}

func (t *tools) handleTrace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	term, err := requireTerm(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tr := pgsn.TraceEval(term, t.budget(request), request.GetBool("terms", true))
	v, err := pgsn.ToHost(tr.ToValue())
	if err != nil {
		return mcp.NewToolResultText(tr.ToValue().String()), nil
	}
	return jsonResult(v)
}

func (t *tools) handleGSN(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	term, err := requireTerm(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := gsn.FromTerm(term, t.budget(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	switch format := request.GetString("format", "parts"); format {
	case "parts":
		return jsonResult(gsn.Parts(n))
	case "dot":
		return mcp.NewToolResultText(gsn.DOT(n)), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown format %q", format)), nil
	}
}

func (t *tools) handlePut(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	term, err := requireTerm(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := t.store.Put(ctx, name, term); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("stored %s", name)), nil
}

func (t *tools) handleGet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	term, err := t.store.Get(ctx, name, nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := pgsn.MarshalTerm(term)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (t *tools) handleList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := t.store.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(entries)
}

func (t *tools) handleDelete(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := t.store.Delete(ctx, name); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted %s", name)), nil
}

func termArg() mcp.ToolOption {
	return mcp.WithString("term",
		mcp.Required(),
		mcp.Description(`Term in wire JSON, e.g. {"type_name":"Integer","is_named":true,"value":1}`),
	)
}

func stepsArg() mcp.ToolOption {
	return mcp.WithNumber("steps",
		mcp.Description("Reduction step budget (defaults to PGSN_STEPS)"),
	)
}

func nameArg(desc string) mcp.ToolOption {
	return mcp.WithString("name",
		mcp.Required(),
		mcp.Description(desc),
	)
}

func newServer(t *tools) *server.MCPServer {
	s := server.NewMCPServer(
		"pgsn",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.AddTool(
		mcp.NewTool("pgsn_eval",
			mcp.WithDescription("Reduce a term to normal form. Returns the normal form in wire JSON."),
			termArg(), stepsArg(),
		),
		guard(t.handleEval),
	)

	s.AddTool(
		mcp.NewTool("pgsn_value",
			mcp.WithDescription("Reduce a term and project the result to plain JSON. Fails when the normal form is not a value."),
			termArg(), stepsArg(),
		),
		guard(t.handleValue),
	)

	s.AddTool(
		mcp.NewTool("pgsn_trace",
			mcp.WithDescription("Reduce a term and return the trace: entry, intermediate terms, step count and result."),
			termArg(), stepsArg(),
			mcp.WithBoolean("terms",
				mcp.Description("Include every intermediate term (default true)"),
			),
		),
		guard(t.handleTrace),
	)

	s.AddTool(
		mcp.NewTool("pgsn_gsn",
			mcp.WithDescription("Evaluate a GSN argument and return its parts list or a Graphviz rendering."),
			termArg(), stepsArg(),
			mcp.WithString("format",
				mcp.Description(`"parts" (default) or "dot"`),
			),
		),
		guard(t.handleGSN),
	)

	s.AddTool(
		mcp.NewTool("pgsn_put",
			mcp.WithDescription("Store a term under a name, replacing any previous one."),
			nameArg("Name to store the term under"), termArg(),
		),
		guard(t.handlePut),
	)

	s.AddTool(
		mcp.NewTool("pgsn_get",
			mcp.WithDescription("Fetch a stored term as wire JSON."),
			nameArg("Name of the stored term"),
		),
		guard(t.handleGet),
	)

	s.AddTool(
		mcp.NewTool("pgsn_list",
			mcp.WithDescription("List stored terms with their update times."),
		),
		guard(t.handleList),
	)

	s.AddTool(
		mcp.NewTool("pgsn_delete",
			mcp.WithDescription("Delete a stored term."),
			nameArg("Name of the stored term"),
		),
		guard(t.handleDelete),
	)

	return s
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	dbPath := envOr("PGSN_DB", "pgsn.db")
	steps, err := strconv.Atoi(envOr("PGSN_STEPS", "1000000"))
	if err != nil || steps <= 0 {
		log.Fatalf("invalid PGSN_STEPS %q", os.Getenv("PGSN_STEPS"))
	}

	st, err := store.Open(dbPath)
	if err != nil {
		log.Fatalf("open term store: %v", err)
	}
	defer st.Close()

	s := newServer(&tools{store: st, steps: steps})
	log.Printf("pgsn MCP server on stdio (store: %s, steps: %d)", dbPath, steps)
	if err := server.ServeStdio(s); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
