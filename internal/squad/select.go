// Package squad selects the 15-player squad, either rebuilding from scratch
// or transferring against the currently-held squad, by posing the choice as a
// 0/1 program.
package squad

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"fpl-optimizer/internal/feed"
	"fpl-optimizer/internal/rules"
	"fpl-optimizer/internal/solver"
)

// ErrInfeasible wraps solver infeasibility so callers can distinguish "the
// constraints admit no squad" from upstream-data or persistence failures.
var ErrInfeasible = errors.New("infeasible squad optimization")

// Options carries the per-run inputs beyond the player pool.
type Options struct {
	// Current is the held squad from the snapshot; empty means full rebuild.
	Current []SnapshotEntry
	// FreeTransfers is the number of transfers without a points cost.
	FreeTransfers int
	Chip          rules.Chip
}

// Transfer is one out/in pair implied by a transfer-mode selection.
type Transfer struct {
	Out feed.Player
	In  feed.Player
}

// Selection is a valid 15-player squad plus the bookkeeping the report and
// history record need.
type Selection struct {
	Players        []feed.Player
	TotalCost      float64
	ExpectedPoints float64 // sum over the 15, before any transfer penalty
	Transfers      []Transfer
	Penalty        float64 // points charged for transfers beyond the allowance
	Objective      float64 // solver objective: expected points minus penalty
	Rebuild        bool    // true when selected without transfer constraints
}

// Select chooses the squad maximizing expected points under the rule set.
// Players absent from points (ruled out or blank gameweek) are not eligible.
// Returns ErrInfeasible when no squad satisfies the constraints.
func Select(players []feed.Player, points map[int]float64, r rules.Rules, opts Options) (*Selection, error) {
	pool := make([]feed.Player, 0, len(players))
	for _, p := range players {
		if _, ok := points[p.ID]; ok {
			pool = append(pool, p)
		}
	}

	current := resolveCurrent(opts.Current, pool)
	if len(current) == 0 || opts.Chip.UnlimitedTransfers() {
		return rebuild(pool, points, r)
	}
	return transfer(pool, current, points, r, opts.FreeTransfers)
}

// resolveCurrent maps snapshot entries to pool players. Held players missing
// from the current feed are dropped with a warning, matching how a player
// removed from the game mid-season behaves.
func resolveCurrent(current []SnapshotEntry, pool []feed.Player) []feed.Player {
	if len(current) == 0 {
		return nil
	}
	byID := make(map[int]feed.Player, len(pool))
	for _, p := range pool {
		byID[p.ID] = p
	}
	out := make([]feed.Player, 0, len(current))
	for _, e := range current {
		p, ok := byID[e.ID]
		if !ok {
			slog.Warn("held player missing from feed, dropping from squad",
				slog.Int("id", e.ID), slog.String("name", e.WebName))
			continue
		}
		out = append(out, p)
	}
	return out
}

// filterDominated trims players that cannot appear in any optimal squad. A
// player is dropped when kept same-position players costing no more and
// scoring at least as much span enough clubs that one of them can always
// take the dropped player's slot: at most quota-1 of them are already in the
// squad, and a full squad has at most (size-1)/cap clubs at the club cap, so
// quota+(size-1)/cap dominator clubs guarantee a feasible equal-or-better
// swap. Shrinks the solver's search space without touching the optimum.
func filterDominated(pool []feed.Player, points map[int]float64, r rules.Rules) []feed.Player {
	if r.ClubCap < 1 || r.SquadSize < 1 {
		return pool
	}
	byPos := make(map[feed.Position][]int)
	for i, p := range pool {
		byPos[p.Position()] = append(byPos[p.Position()], i)
	}
	fullClubs := (r.SquadSize - 1) / r.ClubCap
	drop := make([]bool, len(pool))
	for pos, idxs := range byPos {
		quota := r.Quotas[pos]
		if quota == 0 {
			continue
		}
		needed := quota + fullClubs
		// Dominators sort ahead of the players they dominate, so deciding
		// in this order means drops are always backed by kept players.
		sort.SliceStable(idxs, func(a, b int) bool {
			pa, pb := pool[idxs[a]], pool[idxs[b]]
			if pa.NowCost != pb.NowCost {
				return pa.NowCost < pb.NowCost
			}
			if points[pa.ID] != points[pb.ID] {
				return points[pa.ID] > points[pb.ID]
			}
			return pa.ID < pb.ID
		})
		for i, pi := range idxs {
			p := pool[pi]
			clubs := make(map[int]bool)
			for _, dj := range idxs[:i] {
				if drop[dj] {
					continue
				}
				d := pool[dj]
				if d.NowCost <= p.NowCost && points[d.ID] >= points[p.ID] {
					clubs[d.Team] = true
				}
			}
			if len(clubs) >= needed {
				drop[pi] = true
			}
		}
	}
	kept := make([]feed.Player, 0, len(pool))
	for i, p := range pool {
		if !drop[i] {
			kept = append(kept, p)
		}
	}
	return kept
}

// rebuild selects 15 players from scratch: cost under the budget cap, exact
// position quotas, and the per-club cap.
func rebuild(pool []feed.Player, points map[int]float64, r rules.Rules) (*Selection, error) {
	pool = filterDominated(pool, points, r)
	prob := solver.NewProblem(len(pool))
	for i, p := range pool {
		prob.SetObjective(i, points[p.ID])
	}

	all := make(map[int]float64, len(pool))
	cost := make(map[int]float64, len(pool))
	byPos := make(map[feed.Position]map[int]float64)
	byClub := make(map[int]map[int]float64)
	for i, p := range pool {
		all[i] = 1
		cost[i] = p.Cost()
		addCoeff(byPos, p.Position(), i)
		addCoeff(byClub, p.Team, i)
	}

	prob.AddConstraint(all, solver.Equal, float64(r.SquadSize))
	prob.AddConstraint(cost, solver.LessEq, r.BudgetCap)
	for pos, quota := range r.Quotas {
		prob.AddConstraint(byPos[pos], solver.Equal, float64(quota))
	}
	for _, coeffs := range byClub {
		prob.AddConstraint(coeffs, solver.LessEq, float64(r.ClubCap))
	}

	sol, err := prob.Solve()
	if err != nil {
		if errors.Is(err, solver.ErrInfeasible) {
			return nil, fmt.Errorf("%w: no %d-player squad fits the budget and quotas", ErrInfeasible, r.SquadSize)
		}
		return nil, err
	}

	selected := make([]feed.Player, 0, r.SquadSize)
	for i, set := range sol.Values {
		if set {
			selected = append(selected, pool[i])
		}
	}
	return summarize(selected, points, nil, 0, sol.Objective, true), nil
}

// transfer selects keeps from the held squad and buys from the rest of the
// pool. Sells fund buys, the resulting 15 obey the same quotas and club cap,
// and each transfer beyond the free allowance costs the configured penalty via
// binary penalty slots the objective charges for.
func transfer(pool []feed.Player, current []feed.Player, points map[int]float64, r rules.Rules, freeTransfers int) (*Selection, error) {
	held := make(map[int]bool, len(current))
	for _, p := range current {
		held[p.ID] = true
	}
	buyable := make([]feed.Player, 0, len(pool))
	for _, p := range pool {
		if !held[p.ID] {
			buyable = append(buyable, p)
		}
	}
	// Held players are never filtered; a sell decision stays the solver's.
	buyable = filterDominated(buyable, points, r)

	// Variable layout: keeps, then buys, then extra-transfer slots.
	nKeep := len(current)
	nBuy := len(buyable)
	nExtra := nKeep - freeTransfers
	if nExtra < 0 {
		nExtra = 0
	}
	prob := solver.NewProblem(nKeep + nBuy + nExtra)

	playerAt := func(v int) feed.Player {
		if v < nKeep {
			return current[v]
		}
		return buyable[v-nKeep]
	}
	for v := 0; v < nKeep+nBuy; v++ {
		prob.SetObjective(v, points[playerAt(v).ID])
	}
	for v := nKeep + nBuy; v < prob.NumVars(); v++ {
		prob.SetObjective(v, -r.TransferPenalty)
	}

	size := make(map[int]float64)
	cost := make(map[int]float64)
	byPos := make(map[feed.Position]map[int]float64)
	byClub := make(map[int]map[int]float64)
	for v := 0; v < nKeep+nBuy; v++ {
		p := playerAt(v)
		size[v] = 1
		cost[v] = p.Cost()
		addCoeff(byPos, p.Position(), v)
		addCoeff(byClub, p.Team, v)
	}

	// Exactly a full squad, with transfers balanced one-out-one-in.
	prob.AddConstraint(size, solver.Equal, float64(r.SquadSize))
	keeps := make(map[int]float64, nKeep)
	for v := 0; v < nKeep; v++ {
		keeps[v] = 1
	}
	buys := make(map[int]float64, nBuy)
	for v := nKeep; v < nKeep+nBuy; v++ {
		buys[v] = 1
	}
	balanced := make(map[int]float64, nKeep+nBuy)
	for v := range keeps {
		balanced[v] = 1
	}
	for v := range buys {
		balanced[v] = 1
	}
	prob.AddConstraint(balanced, solver.Equal, float64(nKeep))

	// Buys spend no more than sells free up: Σ buy·cost ≤ Σ (1-keep)·cost.
	budget := make(map[int]float64, nKeep+nBuy)
	heldValue := 0.0
	for v := 0; v < nKeep; v++ {
		budget[v] = cost[v]
		heldValue += cost[v]
	}
	for v := nKeep; v < nKeep+nBuy; v++ {
		budget[v] = cost[v]
	}
	prob.AddConstraint(budget, solver.LessEq, heldValue)

	// Transfers out beyond the free allowance each open a penalty slot:
	// Σ (1-keep) - Σ extra ≤ free.
	penalized := make(map[int]float64, nKeep+nExtra)
	for v := 0; v < nKeep; v++ {
		penalized[v] = -1
	}
	for v := nKeep + nBuy; v < prob.NumVars(); v++ {
		penalized[v] = -1
	}
	prob.AddConstraint(penalized, solver.LessEq, float64(freeTransfers-nKeep))

	for pos, quota := range r.Quotas {
		prob.AddConstraint(byPos[pos], solver.Equal, float64(quota))
	}
	for _, coeffs := range byClub {
		prob.AddConstraint(coeffs, solver.LessEq, float64(r.ClubCap))
	}

	sol, err := prob.Solve()
	if err != nil {
		if errors.Is(err, solver.ErrInfeasible) {
			return nil, fmt.Errorf("%w: no transfer plan satisfies the budget and quotas", ErrInfeasible)
		}
		return nil, err
	}

	selected := make([]feed.Player, 0, r.SquadSize)
	var kept, bought, sold []feed.Player
	for v := 0; v < nKeep+nBuy; v++ {
		p := playerAt(v)
		if sol.Values[v] {
			selected = append(selected, p)
			if v < nKeep {
				kept = append(kept, p)
			} else {
				bought = append(bought, p)
			}
		} else if v < nKeep {
			sold = append(sold, p)
		}
	}
	extra := 0
	for v := nKeep + nBuy; v < prob.NumVars(); v++ {
		if sol.Values[v] {
			extra++
		}
	}

	transfers := pairTransfers(sold, bought, points)
	penalty := float64(extra) * r.TransferPenalty
	return summarize(selected, points, transfers, penalty, sol.Objective, false), nil
}

// pairTransfers matches outs to ins by position where possible, purely for
// reporting; the optimization itself only balances counts.
func pairTransfers(sold, bought []feed.Player, points map[int]float64) []Transfer {
	if len(sold) == 0 || len(sold) != len(bought) {
		return nil
	}
	byPoints := func(ps []feed.Player) {
		sort.SliceStable(ps, func(a, b int) bool {
			if points[ps[a].ID] != points[ps[b].ID] {
				return points[ps[a].ID] > points[ps[b].ID]
			}
			return ps[a].ID < ps[b].ID
		})
	}
	byPoints(sold)
	byPoints(bought)
	out := make([]Transfer, 0, len(sold))
	for i := range sold {
		out = append(out, Transfer{Out: sold[i], In: bought[i]})
	}
	return out
}

func summarize(selected []feed.Player, points map[int]float64, transfers []Transfer, penalty float64, objective float64, rebuild bool) *Selection {
	sel := &Selection{
		Players:   selected,
		Transfers: transfers,
		Penalty:   penalty,
		Objective: objective,
		Rebuild:   rebuild,
	}
	for _, p := range selected {
		sel.TotalCost += p.Cost()
		sel.ExpectedPoints += points[p.ID]
	}
	return sel
}

func addCoeff[K comparable](m map[K]map[int]float64, key K, v int) {
	if m[key] == nil {
		m[key] = make(map[int]float64)
	}
	m[key][v] = 1
}
