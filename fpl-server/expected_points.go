package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"fpl-optimizer/internal/feed"
)

// ExpectedPointsArgs is the input schema for the expected_points tool.
type ExpectedPointsArgs struct {
	GW       int    `json:"gw" jsonschema:"Gameweek (0 = next)"`
	Limit    int    `json:"limit" jsonschema:"How many players to return (default 20)"`
	Position string `json:"position" jsonschema:"Filter: GK|DEF|MID|FWD (default all)"`
}

// PlayerEstimate is one player's expected-points breakdown.
type PlayerEstimate struct {
	Element      int     `json:"element"`
	Name         string  `json:"name"`
	Team         string  `json:"team"`
	Position     string  `json:"position"`
	Cost         float64 `json:"cost"`
	Expected     float64 `json:"expected_points"`
	Form         float64 `json:"form"`
	PPG          float64 `json:"points_per_game"`
	ICT          float64 `json:"ict_index"`
	Availability int     `json:"availability"`
	Fixtures     int     `json:"fixtures_this_gw"`
}

// ExpectedPointsResult is the output of the expected_points tool.
type ExpectedPointsResult struct {
	Gameweek int              `json:"gameweek"`
	Players  []PlayerEstimate `json:"players"`
}

func buildExpectedPoints(cfg ServerConfig, args ExpectedPointsArgs) (*ExpectedPointsResult, error) {
	bootstrap, gw, fixtures, err := loadGameweekData(cfg, args.GW)
	if err != nil {
		return nil, err
	}
	points, byTeam := scoreGameweek(bootstrap, fixtures)

	limit := args.Limit
	if limit <= 0 {
		limit = 20
	}
	wantPos := feed.Position(0)
	switch args.Position {
	case "", "ALL":
	case "GK":
		wantPos = feed.Goalkeeper
	case "DEF":
		wantPos = feed.Defender
	case "MID":
		wantPos = feed.Midfielder
	case "FWD":
		wantPos = feed.Forward
	default:
		return nil, fmt.Errorf("unknown position filter: %q", args.Position)
	}

	teamNames := feed.TeamShortNames(bootstrap.Teams)
	estimates := make([]PlayerEstimate, 0, len(points))
	for _, p := range bootstrap.Elements {
		pts, ok := points[p.ID]
		if !ok {
			continue
		}
		if wantPos != 0 && p.Position() != wantPos {
			continue
		}
		estimates = append(estimates, PlayerEstimate{
			Element:      p.ID,
			Name:         p.WebName,
			Team:         teamNames[p.Team],
			Position:     p.Position().Label(),
			Cost:         p.Cost(),
			Expected:     pts,
			Form:         p.FormValue(),
			PPG:          p.PPGValue(),
			ICT:          p.ICTValue(),
			Availability: p.Availability(),
			Fixtures:     len(byTeam[p.Team]),
		})
	}
	sort.SliceStable(estimates, func(a, b int) bool {
		if estimates[a].Expected != estimates[b].Expected {
			return estimates[a].Expected > estimates[b].Expected
		}
		return estimates[a].Element < estimates[b].Element
	})
	if len(estimates) > limit {
		estimates = estimates[:limit]
	}
	return &ExpectedPointsResult{Gameweek: gw, Players: estimates}, nil
}

// expectedPointsHandler is the MCP tool handler for expected_points.
func expectedPointsHandler(cfg ServerConfig) func(context.Context, *mcp.CallToolRequest, ExpectedPointsArgs) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, args ExpectedPointsArgs) (*mcp.CallToolResult, any, error) {
		out, err := buildExpectedPoints(cfg, args)
		if err != nil {
			return toolError(err), nil, nil
		}
		return toolMarshal(out)
	}
}
