// Package lineup picks the starting 11 from a fixed 15-player squad: one
// independent optimization per legal formation, best projected total wins.
package lineup

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"fpl-optimizer/internal/feed"
	"fpl-optimizer/internal/rules"
	"fpl-optimizer/internal/solver"
)

// ErrInfeasible is returned when no formation can be fielded from the squad.
var ErrInfeasible = errors.New("infeasible lineup optimization")

// Result is the chosen lineup with captaincy and bench ordering resolved.
type Result struct {
	Lineup    []feed.Player
	Formation rules.Formation
	// Projected is the lineup's summed expected points with the captain
	// multiplier applied (and the bench added under bench boost).
	Projected float64
	Captain   feed.Player
	Vice      feed.Player
	HasVice   bool
	// Bench holds the squad members left out, best first.
	Bench []feed.Player
}

type candidate struct {
	lineup    []feed.Player
	projected float64
}

// Select solves an 11-player selection per formation and keeps the formation
// with the highest projected total. The formations are independent problems,
// solved concurrently; the winner is chosen by fixed enumeration order so
// equal projections resolve to the first formation listed.
func Select(squad []feed.Player, points map[int]float64, r rules.Rules, chip rules.Chip) (*Result, error) {
	if len(squad) == 0 {
		return nil, fmt.Errorf("%w: empty squad", ErrInfeasible)
	}
	squadTotal := 0.0
	for _, p := range squad {
		squadTotal += points[p.ID]
	}

	candidates := make([]*candidate, len(r.Formations))
	var g errgroup.Group
	for i, formation := range r.Formations {
		g.Go(func() error {
			members, err := solveFormation(squad, points, formation)
			if errors.Is(err, solver.ErrInfeasible) {
				return nil // formation not fieldable from this squad
			}
			if err != nil {
				return err
			}
			candidates[i] = &candidate{
				lineup:    members,
				projected: project(members, points, squadTotal, chip),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var best *candidate
	var bestFormation rules.Formation
	for i, c := range candidates {
		if c == nil {
			continue
		}
		if best == nil || c.projected > best.projected {
			best = c
			bestFormation = r.Formations[i]
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: squad cannot field any configured formation", ErrInfeasible)
	}

	res := &Result{
		Lineup:    best.lineup,
		Formation: bestFormation,
		Projected: best.projected,
		Bench:     bench(squad, best.lineup, points),
	}
	ranked := rankByPoints(best.lineup, points)
	res.Captain = ranked[0]
	if len(ranked) > 1 {
		res.Vice = ranked[1]
		res.HasVice = true
	}
	return res, nil
}

// solveFormation maximizes summed expected points over exactly 11 squad
// members matching the formation's position counts.
func solveFormation(squad []feed.Player, points map[int]float64, f rules.Formation) ([]feed.Player, error) {
	prob := solver.NewProblem(len(squad))
	all := make(map[int]float64, len(squad))
	byPos := make(map[feed.Position]map[int]float64)
	for i, p := range squad {
		prob.SetObjective(i, points[p.ID])
		all[i] = 1
		if byPos[p.Position()] == nil {
			byPos[p.Position()] = make(map[int]float64)
		}
		byPos[p.Position()][i] = 1
	}

	prob.AddConstraint(all, solver.Equal, 11)
	prob.AddConstraint(byPos[feed.Goalkeeper], solver.Equal, 1)
	prob.AddConstraint(byPos[feed.Defender], solver.Equal, float64(f.Defenders))
	prob.AddConstraint(byPos[feed.Midfielder], solver.Equal, float64(f.Midfielders))
	prob.AddConstraint(byPos[feed.Forward], solver.Equal, float64(f.Forwards))

	sol, err := prob.Solve()
	if err != nil {
		return nil, err
	}
	members := make([]feed.Player, 0, 11)
	for i, set := range sol.Values {
		if set {
			members = append(members, squad[i])
		}
	}
	return members, nil
}

// project computes the lineup's projected total. The captain multiplier
// replaces the captain's single count already in the sum (x2, or x3 under
// triple captain), so the top scorer is counted twice or three times in
// total, never four. Bench boost adds the rest of the squad.
func project(lineup []feed.Player, points map[int]float64, squadTotal float64, chip rules.Chip) float64 {
	sum := 0.0
	top := 0.0
	for _, p := range lineup {
		pts := points[p.ID]
		sum += pts
		if pts > top {
			top = pts
		}
	}
	multiplier := 2.0
	if chip == rules.ChipTripleCaptain {
		multiplier = 3.0
	}
	total := sum + top*(multiplier-1)
	if chip == rules.ChipBenchBoost {
		total += squadTotal - sum
	}
	return total
}

func bench(squad, lineup []feed.Player, points map[int]float64) []feed.Player {
	started := make(map[int]bool, len(lineup))
	for _, p := range lineup {
		started[p.ID] = true
	}
	out := make([]feed.Player, 0, len(squad)-len(lineup))
	for _, p := range squad {
		if !started[p.ID] {
			out = append(out, p)
		}
	}
	return rankByPoints(out, points)
}

func rankByPoints(players []feed.Player, points map[int]float64) []feed.Player {
	ranked := append([]feed.Player(nil), players...)
	sort.SliceStable(ranked, func(a, b int) bool {
		if points[ranked[a].ID] != points[ranked[b].ID] {
			return points[ranked[a].ID] > points[ranked[b].ID]
		}
		return ranked[a].ID < ranked[b].ID
	})
	return ranked
}
