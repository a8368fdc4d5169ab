package main

import (
	"path/filepath"
	"testing"
)

func TestBuildOptimizeRebuild(t *testing.T) {
	dir, cfg := tmpCfg(t)
	writeTestBootstrap(t, dir)
	writeTestFixtures(t, dir, 7)

	result, err := buildOptimize(cfg, OptimizeArgs{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Gameweek != 7 {
		t.Errorf("gameweek = %d; want 7", result.Gameweek)
	}
	if !result.RebuiltFromNil {
		t.Error("no snapshot on disk; want a from-scratch rebuild")
	}
	if len(result.Lineup) != 11 {
		t.Fatalf("lineup = %d; want 11", len(result.Lineup))
	}
	if len(result.Bench) != 4 {
		t.Fatalf("bench = %d; want 4", len(result.Bench))
	}
	if result.TotalCost > cfg.Rules.BudgetCap {
		t.Errorf("total cost %.1f exceeds the budget cap", result.TotalCost)
	}
	// The fifteen's points rise with the id; the top forward captains.
	if result.Captain != "P15" {
		t.Errorf("captain = %s; want P15", result.Captain)
	}
	if result.ViceCaptain == "" || result.ViceCaptain == result.Captain {
		t.Errorf("vice captain = %q", result.ViceCaptain)
	}
	if result.Penalty != 0 || len(result.Transfers) != 0 {
		t.Errorf("rebuild reported transfers %v penalty %.1f", result.Transfers, result.Penalty)
	}
	gk := 0
	for _, p := range result.Lineup {
		if p.Element == 16 {
			t.Error("ruled-out player in the lineup")
		}
		if p.Position == "GK" {
			gk++
		}
	}
	if gk != 1 {
		t.Errorf("lineup goalkeepers = %d; want 1", gk)
	}
}

func TestBuildOptimizeChipValidation(t *testing.T) {
	dir, cfg := tmpCfg(t)
	writeTestBootstrap(t, dir)
	writeTestFixtures(t, dir, 7)

	if _, err := buildOptimize(cfg, OptimizeArgs{Chip: "all_in"}); err == nil {
		t.Error("want error for an unknown chip")
	}

	result, err := buildOptimize(cfg, OptimizeArgs{Chip: "triple_captain"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Chip != "triple_captain" {
		t.Errorf("chip = %q; want triple_captain", result.Chip)
	}
}

func TestBuildOptimizeUsesSnapshot(t *testing.T) {
	dir, cfg := tmpCfg(t)
	writeTestBootstrap(t, dir)
	writeTestFixtures(t, dir, 7)

	// Hold the full fifteen; with no better player available the plan is to
	// stand pat in transfer mode.
	entries := []any{}
	for id := 1; id <= 15; id++ {
		entries = append(entries, map[string]any{"id": id})
	}
	writeJSON(t, filepath.Join(dir, "current_squad.json"), entries)

	result, err := buildOptimize(cfg, OptimizeArgs{Transfers: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RebuiltFromNil {
		t.Error("snapshot present; want transfer mode, not a rebuild")
	}
	if len(result.Transfers) != 0 {
		t.Errorf("transfers = %v; want none with no upgrades available", result.Transfers)
	}

	// Rebuild overrides the held squad.
	result, err = buildOptimize(cfg, OptimizeArgs{Rebuild: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.RebuiltFromNil {
		t.Error("Rebuild arg set; want a from-scratch rebuild")
	}
}
