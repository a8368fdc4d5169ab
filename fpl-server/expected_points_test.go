package main

import "testing"

func TestBuildExpectedPoints(t *testing.T) {
	dir, cfg := tmpCfg(t)
	writeTestBootstrap(t, dir)
	writeTestFixtures(t, dir, 7)

	result, err := buildExpectedPoints(cfg, ExpectedPointsArgs{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Gameweek != 7 {
		t.Errorf("gameweek = %d; want 7", result.Gameweek)
	}
	if len(result.Players) != 15 {
		t.Fatalf("players = %d; want 15 estimates", len(result.Players))
	}
	if top := result.Players[0]; top.Element != 15 || top.Name != "P15" {
		t.Errorf("top player = %+v; want P15 with the best form", top)
	}
	for i := 1; i < len(result.Players); i++ {
		if result.Players[i-1].Expected < result.Players[i].Expected {
			t.Fatalf("players not sorted by expected points at %d", i)
		}
	}
	for _, p := range result.Players {
		if p.Element == 16 {
			t.Error("ruled-out player included in estimates")
		}
		if p.Fixtures != 1 {
			t.Errorf("player %d fixtures = %d; want 1", p.Element, p.Fixtures)
		}
	}
}

func TestBuildExpectedPointsLimit(t *testing.T) {
	dir, cfg := tmpCfg(t)
	writeTestBootstrap(t, dir)
	writeTestFixtures(t, dir, 7)

	result, err := buildExpectedPoints(cfg, ExpectedPointsArgs{Limit: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Players) != 5 {
		t.Fatalf("players = %d; want 5", len(result.Players))
	}
	// The strongest five by form are ids 15 down to 11.
	for i, want := range []int{15, 14, 13, 12, 11} {
		if result.Players[i].Element != want {
			t.Errorf("player[%d] = %d; want %d", i, result.Players[i].Element, want)
		}
	}
}

func TestBuildExpectedPointsPositionFilter(t *testing.T) {
	dir, cfg := tmpCfg(t)
	writeTestBootstrap(t, dir)
	writeTestFixtures(t, dir, 7)

	result, err := buildExpectedPoints(cfg, ExpectedPointsArgs{Position: "GK"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Players) != 2 {
		t.Fatalf("players = %d; want the 2 goalkeepers", len(result.Players))
	}
	for _, p := range result.Players {
		if p.Position != "GK" {
			t.Errorf("player %d position = %s; want GK", p.Element, p.Position)
		}
	}
}

func TestBuildExpectedPointsBadFilter(t *testing.T) {
	dir, cfg := tmpCfg(t)
	writeTestBootstrap(t, dir)
	writeTestFixtures(t, dir, 7)

	if _, err := buildExpectedPoints(cfg, ExpectedPointsArgs{Position: "STRIKER"}); err == nil {
		t.Error("want error for an unknown position filter")
	}
}
