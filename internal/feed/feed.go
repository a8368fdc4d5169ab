// Package feed decodes the classic FPL API payloads (bootstrap-static and
// per-event fixtures) into the typed records the optimizer works from.
package feed

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Position is the FPL element type (1=GK, 2=DEF, 3=MID, 4=FWD).
type Position int

const (
	Goalkeeper Position = 1
	Defender   Position = 2
	Midfielder Position = 3
	Forward    Position = 4
)

// Label returns the short position label used in reports.
func (p Position) Label() string {
	switch p {
	case Goalkeeper:
		return "GK"
	case Defender:
		return "DEF"
	case Midfielder:
		return "MID"
	case Forward:
		return "FWD"
	default:
		return "UNK"
	}
}

// Player is the subset of a bootstrap element the optimizer needs. The FPL
// API serves form, points_per_game and ict_index as strings; availability is
// null until the club reports an injury/doubt.
type Player struct {
	ID            int    `json:"id"`
	WebName       string `json:"web_name"`
	Team          int    `json:"team"`
	ElementType   int    `json:"element_type"`
	NowCost       int    `json:"now_cost"`
	Form          string `json:"form"`
	PointsPerGame string `json:"points_per_game"`
	ICTIndex      string `json:"ict_index"`
	Chance        *int   `json:"chance_of_playing_next_round"`
}

// Position returns the typed position for the raw element type.
func (p Player) Position() Position {
	return Position(p.ElementType)
}

// Cost converts now_cost (tenths of a million) to currency units.
func (p Player) Cost() float64 {
	return float64(p.NowCost) / 10.0
}

// Availability is chance_of_playing_next_round with the documented default of
// 100 when the feed carries null.
func (p Player) Availability() int {
	if p.Chance == nil {
		return 100
	}
	return *p.Chance
}

// FormValue parses the form stat, defaulting to 0 when missing or malformed.
func (p Player) FormValue() float64 { return statValue(p.Form) }

// PPGValue parses points_per_game, defaulting to 0.
func (p Player) PPGValue() float64 { return statValue(p.PointsPerGame) }

// ICTValue parses ict_index, defaulting to 0.
func (p Player) ICTValue() float64 { return statValue(p.ICTIndex) }

func statValue(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// Team holds bootstrap team metadata plus the relative strength rating used
// to normalize opponent difficulty.
type Team struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	Strength  int    `json:"strength"`
}

// Event is a gameweek entry from the bootstrap events array.
type Event struct {
	ID       int  `json:"id"`
	IsNext   bool `json:"is_next"`
	Finished bool `json:"finished"`
}

// Bootstrap is the decoded subset of bootstrap-static.json.
type Bootstrap struct {
	Events   []Event  `json:"events"`
	Teams    []Team   `json:"teams"`
	Elements []Player `json:"elements"`
}

// ParseBootstrap decodes a raw bootstrap-static payload.
func ParseBootstrap(raw []byte) (*Bootstrap, error) {
	var b Bootstrap
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("parse bootstrap-static: %w", err)
	}
	return &b, nil
}

// NextGameweek returns the id of the upcoming gameweek. When no event is
// flagged is_next (end of season, stale cache) it falls back to the highest
// finished gameweek plus one.
func NextGameweek(events []Event) int {
	for _, e := range events {
		if e.IsNext {
			return e.ID
		}
	}
	finished := 0
	for _, e := range events {
		if e.Finished && e.ID > finished {
			finished = e.ID
		}
	}
	return finished + 1
}

// Fixture is one scheduled pairing for a gameweek, as served by
// fixtures?event=N. Each side carries its own difficulty rating (1-5).
type Fixture struct {
	Event           int `json:"event"`
	TeamH           int `json:"team_h"`
	TeamA           int `json:"team_a"`
	TeamHDifficulty int `json:"team_h_difficulty"`
	TeamADifficulty int `json:"team_a_difficulty"`
}

// ParseFixtures decodes a raw fixtures payload.
func ParseFixtures(raw []byte) ([]Fixture, error) {
	var fixtures []Fixture
	if err := json.Unmarshal(raw, &fixtures); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	return fixtures, nil
}

// TeamFixture is one fixture from a single club's point of view.
type TeamFixture struct {
	Opponent   int
	Difficulty int
	Home       bool
}

// TeamFixtures groups the round's fixtures by club. Clubs without a fixture
// this round (blank gameweek) map to an empty list; clubs with several
// (double gameweek) list them all.
func TeamFixtures(teams []Team, fixtures []Fixture) map[int][]TeamFixture {
	out := make(map[int][]TeamFixture, len(teams))
	for _, t := range teams {
		out[t.ID] = nil
	}
	for _, f := range fixtures {
		out[f.TeamH] = append(out[f.TeamH], TeamFixture{
			Opponent:   f.TeamA,
			Difficulty: f.TeamHDifficulty,
			Home:       true,
		})
		out[f.TeamA] = append(out[f.TeamA], TeamFixture{
			Opponent:   f.TeamH,
			Difficulty: f.TeamADifficulty,
			Home:       false,
		})
	}
	return out
}

// TeamShortNames returns a team-ID to short-name map for report rendering.
func TeamShortNames(teams []Team) map[int]string {
	out := make(map[int]string, len(teams))
	for _, t := range teams {
		out[t.ID] = t.ShortName
	}
	return out
}
