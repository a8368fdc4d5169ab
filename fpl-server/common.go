package main

import (
	"fmt"

	"fpl-optimizer/internal/expected"
	"fpl-optimizer/internal/feed"
	"fpl-optimizer/internal/fetch"
	"fpl-optimizer/internal/store"
)

// loadGameweekData returns the bootstrap, the resolved gameweek and that
// round's fixtures. Payloads come from the raw store; when FetchMissing is
// set, absent files are downloaded first.
func loadGameweekData(cfg ServerConfig, gw int) (*feed.Bootstrap, int, []feed.Fixture, error) {
	st := store.NewJSONStore(cfg.RawRoot)
	client := fetch.NewClient(st)
	if cfg.BaseURL != "" {
		client.BaseURL = cfg.BaseURL
	}

	rawBootstrap, err := readOrFetch(cfg, st, "bootstrap/bootstrap-static.json", func() ([]byte, error) {
		return client.BootstrapStatic(false)
	})
	if err != nil {
		return nil, 0, nil, fmt.Errorf("bootstrap-static: %w", err)
	}
	bootstrap, err := feed.ParseBootstrap(rawBootstrap)
	if err != nil {
		return nil, 0, nil, err
	}

	if gw <= 0 {
		gw = feed.NextGameweek(bootstrap.Events)
	}
	rawFixtures, err := readOrFetch(cfg, st, fmt.Sprintf("fixtures/event_%d.json", gw), func() ([]byte, error) {
		return client.EventFixtures(gw, false)
	})
	if err != nil {
		return nil, 0, nil, fmt.Errorf("gw %d fixtures: %w", gw, err)
	}
	fixtures, err := feed.ParseFixtures(rawFixtures)
	if err != nil {
		return nil, 0, nil, err
	}
	return bootstrap, gw, fixtures, nil
}

func readOrFetch(cfg ServerConfig, st *store.JSONStore, rel string, fetchFn func() ([]byte, error)) ([]byte, error) {
	if st.Exists(rel) {
		return st.ReadRaw(rel)
	}
	if !cfg.FetchMissing {
		return nil, fmt.Errorf("missing raw file: %s", st.Path(rel))
	}
	return fetchFn()
}

// scoreGameweek runs the expected-points model over a loaded gameweek.
func scoreGameweek(bootstrap *feed.Bootstrap, fixtures []feed.Fixture) (map[int]float64, map[int][]feed.TeamFixture) {
	byTeam := feed.TeamFixtures(bootstrap.Teams, fixtures)
	model := expected.NewModel(bootstrap.Teams)
	return model.EstimateAll(bootstrap.Elements, byTeam), byTeam
}
