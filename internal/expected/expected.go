// Package expected turns a player's season statistics and upcoming fixtures
// into a single expected-points estimate for the next gameweek.
package expected

import (
	"math"

	"fpl-optimizer/internal/feed"
)

const (
	formWeight = 0.6
	ppgWeight  = 0.4
	ictScale   = 0.2
	homeBonus  = 1.2
	awayBonus  = 0.9
)

// Model scores players against the round's fixtures. Opponent strength is
// normalized against the league-wide average so weaker opponents raise the
// estimate.
type Model struct {
	avgStrength float64
	strength    map[int]float64
}

func NewModel(teams []feed.Team) *Model {
	m := &Model{strength: make(map[int]float64, len(teams))}
	total := 0.0
	for _, t := range teams {
		m.strength[t.ID] = float64(t.Strength)
		total += float64(t.Strength)
	}
	if len(teams) > 0 {
		m.avgStrength = total / float64(len(teams))
	}
	return m
}

// Estimate returns the expected points for one player over the given round
// fixtures, rounded to two decimal places. ok is false when the player is
// ruled out (availability 0) or the club has no fixture this round; such
// players are excluded from optimization entirely rather than scored zero.
func (m *Model) Estimate(p feed.Player, fixtures []feed.TeamFixture) (float64, bool) {
	if len(fixtures) == 0 {
		return 0, false
	}
	chance := p.Availability()
	if chance == 0 {
		return 0, false
	}

	base := p.FormValue()*formWeight + p.PPGValue()*ppgWeight
	boost := p.ICTValue() / 100 * ictScale

	exp := 0.0
	for _, fix := range fixtures {
		oppStrength, ok := m.strength[fix.Opponent]
		if !ok || oppStrength == 0 {
			oppStrength = m.avgStrength
		}
		strengthFactor := 1.0
		if oppStrength > 0 {
			strengthFactor = m.avgStrength / oppStrength
		}
		diffFactor := float64(6-fix.Difficulty) / 5.0
		venue := awayBonus
		if fix.Home {
			venue = homeBonus
		}
		exp += base * diffFactor * venue * strengthFactor * (1 + boost)
	}

	exp *= float64(chance) / 100.0
	// The only rounding in the pipeline; downstream sums use this value as-is.
	return math.Round(exp*100) / 100, true
}

// EstimateAll scores every eligible player, keyed by element id. Players the
// model rules out are absent from the map.
func (m *Model) EstimateAll(players []feed.Player, byTeam map[int][]feed.TeamFixture) map[int]float64 {
	out := make(map[int]float64, len(players))
	for _, p := range players {
		if pts, ok := m.Estimate(p, byTeam[p.Team]); ok {
			out[p.ID] = pts
		}
	}
	return out
}
