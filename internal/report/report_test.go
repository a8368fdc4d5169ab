package report

import (
	"strings"
	"testing"

	"fpl-optimizer/internal/feed"
	"fpl-optimizer/internal/lineup"
	"fpl-optimizer/internal/rules"
	"fpl-optimizer/internal/squad"
)

func testData() Data {
	gk := feed.Player{ID: 1, WebName: "Raya", Team: 1, ElementType: 1, NowCost: 56, Form: "4.0", PointsPerGame: "4.2", ICTIndex: "80.0"}
	mid := feed.Player{ID: 2, WebName: "Saka", Team: 1, ElementType: 3, NowCost: 105, Form: "7.2", PointsPerGame: "6.1", ICTIndex: "250.4"}
	fwd := feed.Player{ID: 3, WebName: "Wissa", Team: 2, ElementType: 4, NowCost: 62, Form: "3.0", PointsPerGame: "3.8", ICTIndex: "110.0"}
	benchGK := feed.Player{ID: 4, WebName: "Turner", Team: 2, ElementType: 1, NowCost: 40, Form: "0.0", PointsPerGame: "0.5", ICTIndex: "2.0"}

	return Data{
		Gameweek: 21,
		Selection: &squad.Selection{
			Players:        []feed.Player{gk, mid, fwd, benchGK},
			TotalCost:      26.3,
			ExpectedPoints: 14.8,
			Objective:      14.8,
		},
		Lineup: &lineup.Result{
			Lineup:    []feed.Player{gk, mid, fwd},
			Formation: rules.Formation{Defenders: 4, Midfielders: 4, Forwards: 2},
			Projected: 21.3,
			Captain:   mid,
			Vice:      fwd,
			HasVice:   true,
			Bench:     []feed.Player{benchGK},
		},
		Points:    map[int]float64{1: 3.1, 2: 6.5, 3: 4.2, 4: 1.0},
		TeamNames: map[int]string{1: "ARS", 2: "BRE"},
		Fixtures: map[int][]feed.TeamFixture{
			1: {{Opponent: 2, Difficulty: 2, Home: true}},
			2: {{Opponent: 1, Difficulty: 4, Home: false}},
		},
	}
}

func TestRender(t *testing.T) {
	var buf strings.Builder
	Render(&buf, testData())
	out := buf.String()

	wantLines := []string{
		"Optimal Team for Gameweek 21 (Total Cost: £26.3, Squad Expected Points: 14.80, Lineup Projected Points: 21.30)",
		"Recommended Formation: 4-4-2",
		"- Saka (ARS, £10.5) - Expected: 6.50",
		"(Captain - points doubled)",
		"(Vice-Captain)",
		"- Turner (BRE, £4.0, GK) - Expected: 1.00",
		"fixtures: vs BRE (H, diff 2)",
		"chance 100%",
	}
	for _, want := range wantLines {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "Chip Active") {
		t.Error("chip line printed without a chip")
	}
	if strings.Contains(out, "Transfer Penalty") {
		t.Error("penalty line printed with no penalty")
	}
	if strings.Contains(out, "Transfers:") {
		t.Error("transfers section printed with no transfers")
	}
}

func TestRenderChipAndTransfers(t *testing.T) {
	d := testData()
	d.Chip = rules.ChipTripleCaptain
	out1 := feed.Player{ID: 9, WebName: "Isak", Team: 2, ElementType: 4}
	in1 := d.Selection.Players[2]
	d.Selection.Transfers = []squad.Transfer{{Out: out1, In: in1}}
	d.Selection.Penalty = 4
	d.Selection.Objective = 10.8

	var buf strings.Builder
	Render(&buf, d)
	out := buf.String()

	wantLines := []string{
		"Chip Active: Triple Captain",
		"Transfer Penalty: -4 pts (net objective 10.80)",
		"- OUT Isak (BRE) -> IN Wissa (BRE)",
		"(Captain - points tripled)",
	}
	for _, want := range wantLines {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}
