package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"fpl-optimizer/internal/config"
	"fpl-optimizer/internal/expected"
	"fpl-optimizer/internal/feed"
	"fpl-optimizer/internal/fetch"
	"fpl-optimizer/internal/history"
	"fpl-optimizer/internal/lineup"
	"fpl-optimizer/internal/report"
	"fpl-optimizer/internal/rules"
	"fpl-optimizer/internal/squad"
	"fpl-optimizer/internal/store"
)

type runOptions struct {
	Chip      rules.Chip
	Transfers int
	SquadFile string
	Gameweek  int
	Live      bool
}

// optimize is the whole batch run: fetch, estimate, select squad and lineup,
// report, persist. A failed snapshot write or history insert is reported but
// never discards an otherwise-successful optimization.
func optimize(ctx context.Context, cfg config.Config, opts runOptions, out io.Writer) error {
	st := store.NewJSONStore(cfg.RawRoot)
	client := fetch.NewClient(st)
	client.BaseURL = cfg.BaseURL
	client.UseCache = !opts.Live
	client.DisableWrite = opts.Live

	rawBootstrap, err := client.BootstrapStatic(opts.Live)
	if err != nil {
		return fmt.Errorf("fetch bootstrap: %w", err)
	}
	bootstrap, err := feed.ParseBootstrap(rawBootstrap)
	if err != nil {
		return err
	}

	gw := opts.Gameweek
	if gw <= 0 {
		gw = feed.NextGameweek(bootstrap.Events)
	}
	rawFixtures, err := client.EventFixtures(gw, opts.Live)
	if err != nil {
		return fmt.Errorf("fetch gw %d fixtures: %w", gw, err)
	}
	fixtures, err := feed.ParseFixtures(rawFixtures)
	if err != nil {
		return err
	}

	byTeam := feed.TeamFixtures(bootstrap.Teams, fixtures)
	model := expected.NewModel(bootstrap.Teams)
	points := model.EstimateAll(bootstrap.Elements, byTeam)
	slog.Info("scored players", slog.Int("eligible", len(points)), slog.Int("gameweek", gw))

	squadPath := cfg.SquadPath
	if opts.SquadFile != "" {
		squadPath = opts.SquadFile
	}
	current := squad.LoadSnapshot(squadPath)

	freeTransfers := opts.Transfers
	if freeTransfers < 1 {
		freeTransfers = 1
	}
	if freeTransfers > cfg.Rules.MaxFreeTransfers {
		freeTransfers = cfg.Rules.MaxFreeTransfers
	}

	selection, err := squad.Select(bootstrap.Elements, points, cfg.Rules, squad.Options{
		Current:       current,
		FreeTransfers: freeTransfers,
		Chip:          opts.Chip,
	})
	if err != nil {
		return err
	}

	lineupRes, err := lineup.Select(selection.Players, points, cfg.Rules, opts.Chip)
	if err != nil {
		return err
	}

	report.Render(out, report.Data{
		Gameweek:  gw,
		Chip:      opts.Chip,
		Selection: selection,
		Lineup:    lineupRes,
		Points:    points,
		TeamNames: feed.TeamShortNames(bootstrap.Teams),
		Fixtures:  byTeam,
	})

	// The report above is the run's product; persistence failures from here
	// on are reported without failing the run.
	if err := squad.SaveSnapshot(cfg.SquadPath, selection.Players); err != nil {
		slog.Error("saving squad snapshot", slog.String("error", err.Error()))
		fmt.Fprintf(out, "\nwarning: squad snapshot not saved: %v\n", err)
	}
	if err := recordRun(ctx, cfg, gw, opts.Chip, selection, lineupRes, points, feed.TeamShortNames(bootstrap.Teams)); err != nil {
		slog.Error("recording run history", slog.String("error", err.Error()))
		fmt.Fprintf(out, "\nwarning: run history not recorded: %v\n", err)
	}
	return nil
}

func recordRun(ctx context.Context, cfg config.Config, gw int, chip rules.Chip, sel *squad.Selection, res *lineup.Result, points map[int]float64, teamNames map[int]string) error {
	hs, err := history.Open(ctx, cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer func() {
		_ = hs.Close()
	}()

	picks := make([]history.Pick, 0, len(sel.Players))
	add := func(p feed.Player, role string, pts float64) {
		picks = append(picks, history.Pick{
			Element:  p.ID,
			Name:     p.WebName,
			Position: p.Position().Label(),
			Team:     teamNames[p.Team],
			Cost:     p.Cost(),
			Expected: pts,
			Role:     role,
		})
	}
	for _, p := range res.Lineup {
		role := history.RoleStart
		if p.ID == res.Captain.ID {
			role = history.RoleCaptain
		} else if res.HasVice && p.ID == res.Vice.ID {
			role = history.RoleVice
		}
		add(p, role, points[p.ID])
	}
	for _, p := range res.Bench {
		add(p, history.RoleBench, points[p.ID])
	}

	_, err = hs.RecordRun(ctx, history.Run{
		Gameweek:      gw,
		Chip:          string(chip),
		Formation:     res.Formation.Label(),
		SquadCost:     sel.TotalCost,
		SquadExpected: sel.ExpectedPoints,
		Projected:     res.Projected,
		Transfers:     len(sel.Transfers),
		Penalty:       sel.Penalty,
	}, picks)
	return err
}

func printHistory(ctx context.Context, cfg config.Config, out io.Writer) error {
	hs, err := history.Open(ctx, cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer func() {
		_ = hs.Close()
	}()

	runs, err := hs.Runs(ctx, 20)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs recorded yet")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(out, "#%d %s GW%d %s cost £%.1f expected %.2f projected %.2f transfers %d penalty %.0f\n",
			r.ID, r.CreatedOn.Format("2006-01-02"), r.Gameweek, r.Formation,
			r.SquadCost, r.SquadExpected, r.Projected, r.Transfers, r.Penalty)
	}
	return nil
}
