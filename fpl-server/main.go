// Command fpl-server exposes the optimizer as MCP tools over HTTP so an
// assistant can ask for estimates, fixtures, or a full squad optimization.
package main

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"fpl-optimizer/internal/rules"
)

// ServerConfig carries the per-process settings every tool handler reads.
type ServerConfig struct {
	RawRoot      string
	SquadPath    string
	BaseURL      string
	FetchMissing bool
	Rules        rules.Rules
}

type toolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func main() {
	var (
		addr         = flag.String("addr", ":8080", "HTTP listen address")
		mcpPath      = flag.String("path", "/mcp", "HTTP path for MCP endpoint")
		rawRoot      = flag.String("raw-root", "data/raw", "root directory for raw JSON")
		squadPath    = flag.String("squad", "current_squad.json", "current squad snapshot path")
		fetchMissing = flag.Bool("fetch-missing", true, "download raw payloads when absent from the store")
		requireAuth  = flag.Bool("require-auth", true, "require API key auth via FPL_OPT_API_KEY")
		authHeader   = flag.String("auth-header", "X-API-Key", "HTTP header to read API key from")
	)
	flag.Parse()

	cfg := ServerConfig{
		RawRoot:      *rawRoot,
		SquadPath:    *squadPath,
		FetchMissing: *fetchMissing,
		Rules:        rules.Default(),
	}

	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "fpl-optimizer",
			Version: "1.0.0",
		},
		nil,
	)

	registry := make([]toolInfo, 0, 4)

	addTool(server, &registry, &mcp.Tool{
		Name:        "expected_points",
		Description: "Per-player expected points for a gameweek, best first",
	}, expectedPointsHandler(cfg))

	addTool(server, &registry, &mcp.Tool{
		Name:        "optimize_team",
		Description: "Optimal 15-player squad, starting 11, formation and captaincy",
	}, optimizeHandler(cfg))

	addTool(server, &registry, &mcp.Tool{
		Name:        "gw_fixtures",
		Description: "Gameweek fixtures with difficulty, flagging blank/double gameweeks",
	}, fixturesHandler(cfg))

	handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})

	apiKey := strings.TrimSpace(os.Getenv("FPL_OPT_API_KEY"))
	if *requireAuth && apiKey == "" {
		slog.Error("FPL_OPT_API_KEY is required (set env var or run with --require-auth=false)")
		os.Exit(1)
	}

	withAuth := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" {
				next(w, r)
				return
			}
			key := strings.TrimSpace(r.Header.Get(*authHeader))
			if key == "" {
				if authz := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(authz), "bearer ") {
					key = strings.TrimSpace(authz[7:])
				}
			}
			if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized"}`))
				return
			}
			next(w, r)
		}
	}

	http.HandleFunc("/health", withAuth(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}))

	http.HandleFunc("/tools", withAuth(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		b, _ := json.MarshalIndent(map[string]any{"tools": registry}, "", "  ")
		w.Write(b)
	}))

	http.HandleFunc(*mcpPath, withAuth(func(w http.ResponseWriter, r *http.Request) {
		handler.ServeHTTP(w, r)
	}))

	slog.Info("MCP HTTP server listening", slog.String("addr", *addr), slog.String("path", *mcpPath))
	if err := http.ListenAndServe(*addr, nil); err != nil {
		slog.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func addTool[T any](server *mcp.Server, registry *[]toolInfo, tool *mcp.Tool, handler func(context.Context, *mcp.CallToolRequest, T) (*mcp.CallToolResult, any, error)) {
	*registry = append(*registry, toolInfo{Name: tool.Name, Description: tool.Description})
	mcp.AddTool(server, tool, handler)
}

func toolMarshal(v any) (*mcp.CallToolResult, any, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError(err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(b)},
		},
	}, nil, nil
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)},
		},
	}
}
