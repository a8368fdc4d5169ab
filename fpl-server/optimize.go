package main

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"fpl-optimizer/internal/feed"
	"fpl-optimizer/internal/lineup"
	"fpl-optimizer/internal/rules"
	"fpl-optimizer/internal/squad"
)

// OptimizeArgs is the input schema for the optimize_team tool.
type OptimizeArgs struct {
	GW        int    `json:"gw" jsonschema:"Gameweek (0 = next)"`
	Chip      string `json:"chip" jsonschema:"Chip: wildcard|free_hit|bench_boost|triple_captain (default none)"`
	Transfers int    `json:"transfers" jsonschema:"Free transfers available (default 1)"`
	Rebuild   bool   `json:"rebuild" jsonschema:"Ignore the held squad and rebuild from scratch"`
}

// PickResult is one squad member in an optimization result.
type PickResult struct {
	Element  int     `json:"element"`
	Name     string  `json:"name"`
	Team     string  `json:"team"`
	Position string  `json:"position"`
	Cost     float64 `json:"cost"`
	Expected float64 `json:"expected_points"`
}

// TransferResult is one out/in pair.
type TransferResult struct {
	Out string `json:"out"`
	In  string `json:"in"`
}

// OptimizeResult is the output of the optimize_team tool.
type OptimizeResult struct {
	Gameweek       int              `json:"gameweek"`
	Chip           string           `json:"chip,omitempty"`
	Formation      string           `json:"formation"`
	TotalCost      float64          `json:"total_cost"`
	SquadExpected  float64          `json:"squad_expected_points"`
	Projected      float64          `json:"lineup_projected_points"`
	Penalty        float64          `json:"transfer_penalty,omitempty"`
	Captain        string           `json:"captain"`
	ViceCaptain    string           `json:"vice_captain,omitempty"`
	Lineup         []PickResult     `json:"lineup"`
	Bench          []PickResult     `json:"bench"`
	Transfers      []TransferResult `json:"transfers,omitempty"`
	RebuiltFromNil bool             `json:"rebuilt_from_scratch"`
}

func buildOptimize(cfg ServerConfig, args OptimizeArgs) (*OptimizeResult, error) {
	chip, err := rules.ParseChip(args.Chip)
	if err != nil {
		return nil, err
	}
	bootstrap, gw, fixtures, err := loadGameweekData(cfg, args.GW)
	if err != nil {
		return nil, err
	}
	points, _ := scoreGameweek(bootstrap, fixtures)

	var current []squad.SnapshotEntry
	if !args.Rebuild {
		current = squad.LoadSnapshot(cfg.SquadPath)
	}
	freeTransfers := args.Transfers
	if freeTransfers < 1 {
		freeTransfers = 1
	}
	if freeTransfers > cfg.Rules.MaxFreeTransfers {
		freeTransfers = cfg.Rules.MaxFreeTransfers
	}

	selection, err := squad.Select(bootstrap.Elements, points, cfg.Rules, squad.Options{
		Current:       current,
		FreeTransfers: freeTransfers,
		Chip:          chip,
	})
	if err != nil {
		return nil, err
	}
	res, err := lineup.Select(selection.Players, points, cfg.Rules, chip)
	if err != nil {
		return nil, err
	}

	teamNames := feed.TeamShortNames(bootstrap.Teams)
	pick := func(p feed.Player) PickResult {
		return PickResult{
			Element:  p.ID,
			Name:     p.WebName,
			Team:     teamNames[p.Team],
			Position: p.Position().Label(),
			Cost:     p.Cost(),
			Expected: points[p.ID],
		}
	}
	out := &OptimizeResult{
		Gameweek:       gw,
		Chip:           string(chip),
		Formation:      res.Formation.Label(),
		TotalCost:      selection.TotalCost,
		SquadExpected:  selection.ExpectedPoints,
		Projected:      res.Projected,
		Penalty:        selection.Penalty,
		Captain:        res.Captain.WebName,
		RebuiltFromNil: selection.Rebuild,
	}
	if res.HasVice {
		out.ViceCaptain = res.Vice.WebName
	}
	for _, p := range res.Lineup {
		out.Lineup = append(out.Lineup, pick(p))
	}
	for _, p := range res.Bench {
		out.Bench = append(out.Bench, pick(p))
	}
	for _, t := range selection.Transfers {
		out.Transfers = append(out.Transfers, TransferResult{Out: t.Out.WebName, In: t.In.WebName})
	}
	return out, nil
}

// optimizeHandler is the MCP tool handler for optimize_team.
func optimizeHandler(cfg ServerConfig) func(context.Context, *mcp.CallToolRequest, OptimizeArgs) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, args OptimizeArgs) (*mcp.CallToolResult, any, error) {
		out, err := buildOptimize(cfg, args)
		if err != nil {
			return toolError(err), nil, nil
		}
		return toolMarshal(out)
	}
}
