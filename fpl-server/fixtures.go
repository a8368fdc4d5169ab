package main

import (
	"context"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"fpl-optimizer/internal/feed"
)

// FixturesArgs is the input schema for the gw_fixtures tool.
type FixturesArgs struct {
	GW int `json:"gw" jsonschema:"Gameweek (0 = next)"`
}

// FixtureInfo is one fixture with both sides' difficulty ratings.
type FixtureInfo struct {
	Home           string `json:"home"`
	Away           string `json:"away"`
	HomeDifficulty int    `json:"home_difficulty"`
	AwayDifficulty int    `json:"away_difficulty"`
}

// TeamRound summarizes a club's round: fixture count and easiest rating,
// flagging blank and double gameweeks for transfer planning.
type TeamRound struct {
	Team     string `json:"team"`
	Fixtures int    `json:"fixtures"`
	BestDiff int    `json:"best_difficulty,omitempty"`
	DoubleGW bool   `json:"double_gameweek,omitempty"`
	BlankGW  bool   `json:"blank_gameweek,omitempty"`
}

// FixturesResult is the output of the gw_fixtures tool.
type FixturesResult struct {
	Gameweek int           `json:"gameweek"`
	Fixtures []FixtureInfo `json:"fixtures"`
	Teams    []TeamRound   `json:"teams"`
}

func buildFixtures(cfg ServerConfig, args FixturesArgs) (*FixturesResult, error) {
	bootstrap, gw, fixtures, err := loadGameweekData(cfg, args.GW)
	if err != nil {
		return nil, err
	}
	teamNames := feed.TeamShortNames(bootstrap.Teams)
	byTeam := feed.TeamFixtures(bootstrap.Teams, fixtures)

	out := &FixturesResult{Gameweek: gw}
	for _, f := range fixtures {
		out.Fixtures = append(out.Fixtures, FixtureInfo{
			Home:           teamNames[f.TeamH],
			Away:           teamNames[f.TeamA],
			HomeDifficulty: f.TeamHDifficulty,
			AwayDifficulty: f.TeamADifficulty,
		})
	}
	for _, t := range bootstrap.Teams {
		round := TeamRound{
			Team:     t.ShortName,
			Fixtures: len(byTeam[t.ID]),
			DoubleGW: len(byTeam[t.ID]) > 1,
			BlankGW:  len(byTeam[t.ID]) == 0,
		}
		for _, f := range byTeam[t.ID] {
			if round.BestDiff == 0 || f.Difficulty < round.BestDiff {
				round.BestDiff = f.Difficulty
			}
		}
		out.Teams = append(out.Teams, round)
	}
	sort.SliceStable(out.Teams, func(a, b int) bool {
		return out.Teams[a].Team < out.Teams[b].Team
	})
	return out, nil
}

// fixturesHandler is the MCP tool handler for gw_fixtures.
func fixturesHandler(cfg ServerConfig) func(context.Context, *mcp.CallToolRequest, FixturesArgs) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, args FixturesArgs) (*mcp.CallToolResult, any, error) {
		out, err := buildFixtures(cfg, args)
		if err != nil {
			return toolError(err), nil, nil
		}
		return toolMarshal(out)
	}
}
