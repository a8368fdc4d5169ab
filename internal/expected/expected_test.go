package expected

import (
	"math"
	"testing"

	"fpl-optimizer/internal/feed"
)

func evenTeams() []feed.Team {
	return []feed.Team{
		{ID: 1, ShortName: "AAA", Strength: 4},
		{ID: 2, ShortName: "BBB", Strength: 4},
		{ID: 3, ShortName: "CCC", Strength: 4},
		{ID: 4, ShortName: "DDD", Strength: 4},
	}
}

func intPtr(v int) *int { return &v }

func TestEstimate(t *testing.T) {
	player := feed.Player{
		ID:            1,
		Team:          1,
		Form:          "6.0",
		PointsPerGame: "5.0",
		ICTIndex:      "100.0",
	}
	// base = 6.0*0.6 + 5.0*0.4 = 5.6, ict boost = 1.2

	tests := []struct {
		name     string
		player   feed.Player
		teams    []feed.Team
		fixtures []feed.TeamFixture
		want     float64
		wantOK   bool
	}{
		{
			name:     "HomeMidDifficulty",
			player:   player,
			teams:    evenTeams(),
			fixtures: []feed.TeamFixture{{Opponent: 2, Difficulty: 3, Home: true}},
			// 5.6 * 0.6 * 1.2 * 1.0 * 1.2 = 4.8384
			want:   4.84,
			wantOK: true,
		},
		{
			name:     "AwayHardFixture",
			player:   player,
			teams:    evenTeams(),
			fixtures: []feed.TeamFixture{{Opponent: 2, Difficulty: 4, Home: false}},
			// 5.6 * 0.4 * 0.9 * 1.0 * 1.2 = 2.4192
			want:   2.42,
			wantOK: true,
		},
		{
			name:   "StrongOpponentDampens",
			player: player,
			teams: []feed.Team{
				{ID: 1, Strength: 3},
				{ID: 2, Strength: 5},
			},
			fixtures: []feed.TeamFixture{{Opponent: 2, Difficulty: 3, Home: true}},
			// avg strength 4, opponent 5: 5.6 * 0.6 * 1.2 * 0.8 * 1.2 = 3.87072
			want:   3.87,
			wantOK: true,
		},
		{
			name:   "DoubleGameweekSums",
			player: player,
			teams:  evenTeams(),
			fixtures: []feed.TeamFixture{
				{Opponent: 2, Difficulty: 3, Home: true},
				{Opponent: 3, Difficulty: 4, Home: false},
			},
			// 4.8384 + 2.4192 = 7.2576, rounded once at the end
			want:   7.26,
			wantOK: true,
		},
		{
			name: "AvailabilityScales",
			player: func() feed.Player {
				p := player
				p.Chance = intPtr(75)
				return p
			}(),
			teams:    evenTeams(),
			fixtures: []feed.TeamFixture{{Opponent: 2, Difficulty: 3, Home: true}},
			// 4.8384 * 0.75 = 3.6288
			want:   3.63,
			wantOK: true,
		},
		{
			name: "RuledOutExcluded",
			player: func() feed.Player {
				p := player
				p.Chance = intPtr(0)
				return p
			}(),
			teams:    evenTeams(),
			fixtures: []feed.TeamFixture{{Opponent: 2, Difficulty: 3, Home: true}},
			wantOK:   false,
		},
		{
			name:     "BlankGameweekExcluded",
			player:   player,
			teams:    evenTeams(),
			fixtures: nil,
			wantOK:   false,
		},
		{
			name: "MalformedStatsReadAsZero",
			player: feed.Player{
				ID:            2,
				Team:          1,
				Form:          "n/a",
				PointsPerGame: "5.0",
				ICTIndex:      "",
			},
			teams:    evenTeams(),
			fixtures: []feed.TeamFixture{{Opponent: 2, Difficulty: 3, Home: true}},
			// base = 0*0.6 + 5.0*0.4 = 2.0, no ict boost:
			// 2.0 * 0.6 * 1.2 * 1.0 * 1.0 = 1.44
			want:   1.44,
			wantOK: true,
		},
		{
			name:     "UnknownOpponentUsesAverageStrength",
			player:   player,
			teams:    evenTeams(),
			fixtures: []feed.TeamFixture{{Opponent: 99, Difficulty: 3, Home: true}},
			want:     4.84,
			wantOK:   true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := NewModel(tc.teams)
			got, ok := m.Estimate(tc.player, tc.fixtures)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v; want %v", ok, tc.wantOK)
			}
			if !ok {
				return
			}
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("Estimate = %.4f; want %.2f", got, tc.want)
			}
		})
	}
}

func TestEstimateAll(t *testing.T) {
	teams := evenTeams()
	byTeam := map[int][]feed.TeamFixture{
		1: {{Opponent: 2, Difficulty: 3, Home: true}},
		2: {{Opponent: 1, Difficulty: 3, Home: false}},
		3: nil, // blank gameweek
	}
	players := []feed.Player{
		{ID: 1, Team: 1, Form: "6.0", PointsPerGame: "5.0"},
		{ID: 2, Team: 2, Form: "4.0", PointsPerGame: "4.0"},
		{ID: 3, Team: 3, Form: "9.0", PointsPerGame: "9.0"}, // blank, excluded
		{ID: 4, Team: 1, Form: "6.0", PointsPerGame: "5.0", Chance: intPtr(0)}, // out
	}

	m := NewModel(teams)
	got := m.EstimateAll(players, byTeam)

	if len(got) != 2 {
		t.Fatalf("estimated %d players; want 2: %v", len(got), got)
	}
	if _, ok := got[3]; ok {
		t.Error("player on a blank gameweek received an estimate")
	}
	if _, ok := got[4]; ok {
		t.Error("ruled-out player received an estimate")
	}
	if got[1] <= got[2] {
		t.Errorf("estimates %v; player 1 with better stats should outscore player 2", got)
	}
}
