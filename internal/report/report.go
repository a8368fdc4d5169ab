// Package report renders an optimization run for human consumption.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"fpl-optimizer/internal/feed"
	"fpl-optimizer/internal/lineup"
	"fpl-optimizer/internal/rules"
	"fpl-optimizer/internal/squad"
)

// Data is everything a rendered report draws from.
type Data struct {
	Gameweek  int
	Chip      rules.Chip
	Selection *squad.Selection
	Lineup    *lineup.Result
	Points    map[int]float64
	TeamNames map[int]string
	Fixtures  map[int][]feed.TeamFixture
}

// Render writes the full squad/lineup report.
func Render(w io.Writer, d Data) {
	fmt.Fprintf(w, "Optimal Team for Gameweek %d (Total Cost: £%.1f, Squad Expected Points: %.2f, Lineup Projected Points: %.2f)\n",
		d.Gameweek, d.Selection.TotalCost, d.Selection.ExpectedPoints, d.Lineup.Projected)
	if d.Chip != rules.ChipNone {
		fmt.Fprintf(w, "Chip Active: %s\n", d.Chip.Title())
	}
	if d.Selection.Penalty > 0 {
		fmt.Fprintf(w, "Transfer Penalty: -%.0f pts (net objective %.2f)\n", d.Selection.Penalty, d.Selection.Objective)
	}
	fmt.Fprintf(w, "Recommended Formation: %s\n", d.Lineup.Formation.Label())

	if len(d.Selection.Transfers) > 0 {
		fmt.Fprintf(w, "\nTransfers:\n")
		for _, t := range d.Selection.Transfers {
			fmt.Fprintf(w, "- OUT %s (%s) -> IN %s (%s)\n",
				t.Out.WebName, d.teamName(t.Out.Team),
				t.In.WebName, d.teamName(t.In.Team))
		}
	}

	fmt.Fprintf(w, "\nStarting 11:\n")
	for _, pos := range []feed.Position{feed.Goalkeeper, feed.Defender, feed.Midfielder, feed.Forward} {
		group := playersAt(d.Lineup.Lineup, pos)
		if len(group) == 0 {
			continue
		}
		sortByPoints(group, d.Points)
		fmt.Fprintf(w, "\n%s:\n", pos.Label())
		for _, p := range group {
			fmt.Fprintf(w, "- %s (%s, £%.1f) - Expected: %.2f - %s\n",
				p.WebName, d.teamName(p.Team), p.Cost(), d.Points[p.ID], d.reason(p, "Selected"))
			if p.ID == d.Lineup.Captain.ID {
				note := "points doubled"
				if d.Chip == rules.ChipTripleCaptain {
					note = "points tripled"
				}
				fmt.Fprintf(w, "  (Captain - %s)\n", note)
			} else if d.Lineup.HasVice && p.ID == d.Lineup.Vice.ID {
				fmt.Fprintln(w, "  (Vice-Captain)")
			}
		}
	}

	fmt.Fprintf(w, "\nBench (in priority order):\n")
	for _, p := range d.Lineup.Bench {
		fmt.Fprintf(w, "- %s (%s, £%.1f, %s) - Expected: %.2f - %s\n",
			p.WebName, d.teamName(p.Team), p.Cost(), p.Position().Label(), d.Points[p.ID], d.reason(p, "Backup"))
	}
}

func (d Data) teamName(id int) string {
	if name, ok := d.TeamNames[id]; ok {
		return name
	}
	return "???"
}

// reason explains a pick: the stats feeding the estimate plus the round's
// fixture context.
func (d Data) reason(p feed.Player, role string) string {
	fixes := make([]string, 0, len(d.Fixtures[p.Team]))
	for _, f := range d.Fixtures[p.Team] {
		venue := "A"
		if f.Home {
			venue = "H"
		}
		fixes = append(fixes, fmt.Sprintf("vs %s (%s, diff %d)", d.teamName(f.Opponent), venue, f.Difficulty))
	}
	return fmt.Sprintf("%s for %.2f pts (form %.1f, PPG %.1f, ICT %.1f); fixtures: %s; chance %d%%",
		role, d.Points[p.ID], p.FormValue(), p.PPGValue(), p.ICTValue(),
		strings.Join(fixes, ", "), p.Availability())
}

func playersAt(players []feed.Player, pos feed.Position) []feed.Player {
	out := make([]feed.Player, 0, len(players))
	for _, p := range players {
		if p.Position() == pos {
			out = append(out, p)
		}
	}
	return out
}

func sortByPoints(players []feed.Player, points map[int]float64) {
	sort.SliceStable(players, func(a, b int) bool {
		return points[players[a].ID] > points[players[b].ID]
	})
}
