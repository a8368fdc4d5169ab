package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fpl-optimizer/internal/feed"
	"fpl-optimizer/internal/rules"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultConfigName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestReadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Read(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "https://fantasy.premierleague.com/api", cfg.BaseURL)
	assert.Equal(t, rules.Default(), cfg.Rules)
	assert.NotEmpty(t, cfg.RawRoot)
	assert.NotEmpty(t, cfg.SquadPath)
	assert.NotEmpty(t, cfg.HistoryDB)
	assert.NotEmpty(t, cfg.LogPath)
}

func TestReadOverrides(t *testing.T) {
	path := writeConfig(t, `
base_url: http://localhost:8080/api
raw_root: /tmp/fpl/raw
rules:
  budget_cap: 95.5
  transfer_penalty: 8
  formations:
    - 4-4-2
    - 3-5-2
`)
	cfg, err := Read(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/api", cfg.BaseURL)
	assert.Equal(t, "/tmp/fpl/raw", cfg.RawRoot)
	assert.InDelta(t, 95.5, cfg.Rules.BudgetCap, 1e-9)
	assert.InDelta(t, 8.0, cfg.Rules.TransferPenalty, 1e-9)
	require.Len(t, cfg.Rules.Formations, 2)
	assert.Equal(t, "4-4-2", cfg.Rules.Formations[0].Label())
	// Untouched fields keep their defaults.
	assert.Equal(t, 15, cfg.Rules.SquadSize)
	assert.Equal(t, 3, cfg.Rules.ClubCap)
}

func TestReadQuotaOverrides(t *testing.T) {
	path := writeConfig(t, `
rules:
  squad_size: 13
  formations:
    - 4-4-2
quotas:
  DEF: 4
  MID: 4
`)
	cfg, err := Read(path)
	require.NoError(t, err)

	assert.Equal(t, 13, cfg.Rules.SquadSize)
	assert.Equal(t, 4, cfg.Rules.Quotas[feed.Defender])
	assert.Equal(t, 4, cfg.Rules.Quotas[feed.Midfielder])
	assert.Equal(t, 2, cfg.Rules.Quotas[feed.Goalkeeper])
	assert.Equal(t, 3, cfg.Rules.Quotas[feed.Forward])
}

func TestReadRejectsUnknownQuotaLabel(t *testing.T) {
	path := writeConfig(t, `
quotas:
  STRIKER: 3
`)
	_, err := Read(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STRIKER")
}

func TestReadRejectsInvalidRules(t *testing.T) {
	// Quotas no longer sum to the squad size.
	path := writeConfig(t, `
quotas:
  FWD: 9
`)
	_, err := Read(path)
	require.Error(t, err)
}

func TestReadRejectsBadFormation(t *testing.T) {
	path := writeConfig(t, `
rules:
  formations:
    - 4-4-4
`)
	_, err := Read(path)
	require.Error(t, err)
}

func TestReadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "rules: [not: a map")
	_, err := Read(path)
	require.Error(t, err)
}
