// Package config loads the optimizer's configuration file and sets up the
// file-backed logger. Defaults work with no config present.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v3"

	"fpl-optimizer/internal/feed"
	"fpl-optimizer/internal/rules"
)

const (
	ConfigDirName     = "fpl-optimizer"
	DefaultConfigName = "fpl-optimizer.yaml"
	DefaultLogName    = "fpl-optimizer.log"
	DefaultDBName     = "history.db"
	DefaultSquadName  = "current_squad.json"
	DefaultRawDirName = "raw"
)

var errConfigRead = errors.New("failed to read config file")

// Config is the on-disk configuration. Rule overrides sit alongside paths so
// an alternate league only needs a different file.
type Config struct {
	BaseURL   string      `yaml:"base_url,omitempty"`
	RawRoot   string      `yaml:"raw_root,omitempty"`
	SquadPath string      `yaml:"squad_path,omitempty"`
	HistoryDB string      `yaml:"history_db,omitempty"`
	LogPath   string      `yaml:"log_path,omitempty"`
	Rules     rules.Rules `yaml:"rules"`
	// QuotaOverrides maps position labels (GK/DEF/MID/FWD) to required
	// counts; empty keeps the default quotas.
	QuotaOverrides map[string]int `yaml:"quotas,omitempty"`
}

func defaultConfig() Config {
	return Config{
		BaseURL:   "https://fantasy.premierleague.com/api",
		RawRoot:   path.Join(xdg.CacheHome, ConfigDirName, DefaultRawDirName),
		SquadPath: path.Join(xdg.DataHome, ConfigDirName, DefaultSquadName),
		HistoryDB: path.Join(xdg.DataHome, ConfigDirName, DefaultDBName),
		LogPath:   path.Join(xdg.StateHome, ConfigDirName, DefaultLogName),
		Rules:     rules.Default(),
	}
}

// Path resolves name under this app's XDG config directory.
func Path(name string) string {
	fullPath, err := xdg.ConfigFile(path.Join(ConfigDirName, name))
	if err != nil {
		panic(err)
	}
	return fullPath
}

// Read loads the config file at configPath, layering it over the defaults.
// A missing file is not an error. A .env alongside the working directory is
// loaded first so paths in the file can reference the environment.
func Read(configPath string) (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", slog.String("error", err.Error()))
	}

	cfg := defaultConfig()
	raw, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Join(err, errConfigRead)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		return cfg, errors.Join(err, errConfigRead)
	}
	merge(&cfg, fileCfg)
	if err := applyQuotaOverrides(&cfg, fileCfg.QuotaOverrides); err != nil {
		return cfg, err
	}
	if err := cfg.Rules.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid rules in %s: %w", configPath, err)
	}
	return cfg, nil
}

func merge(cfg *Config, file Config) {
	if file.BaseURL != "" {
		cfg.BaseURL = file.BaseURL
	}
	if file.RawRoot != "" {
		cfg.RawRoot = file.RawRoot
	}
	if file.SquadPath != "" {
		cfg.SquadPath = file.SquadPath
	}
	if file.HistoryDB != "" {
		cfg.HistoryDB = file.HistoryDB
	}
	if file.LogPath != "" {
		cfg.LogPath = file.LogPath
	}
	if file.Rules.BudgetCap > 0 {
		cfg.Rules.BudgetCap = file.Rules.BudgetCap
	}
	if file.Rules.SquadSize > 0 {
		cfg.Rules.SquadSize = file.Rules.SquadSize
	}
	if file.Rules.ClubCap > 0 {
		cfg.Rules.ClubCap = file.Rules.ClubCap
	}
	if file.Rules.TransferPenalty > 0 {
		cfg.Rules.TransferPenalty = file.Rules.TransferPenalty
	}
	if file.Rules.MaxFreeTransfers > 0 {
		cfg.Rules.MaxFreeTransfers = file.Rules.MaxFreeTransfers
	}
	if len(file.Rules.Formations) > 0 {
		cfg.Rules.Formations = file.Rules.Formations
	}
}

func applyQuotaOverrides(cfg *Config, overrides map[string]int) error {
	if len(overrides) == 0 {
		return nil
	}
	labels := map[string]feed.Position{
		"GK":  feed.Goalkeeper,
		"DEF": feed.Defender,
		"MID": feed.Midfielder,
		"FWD": feed.Forward,
	}
	quotas := make(map[feed.Position]int, len(cfg.Rules.Quotas))
	for pos, n := range cfg.Rules.Quotas {
		quotas[pos] = n
	}
	for label, n := range overrides {
		pos, ok := labels[label]
		if !ok {
			return fmt.Errorf("unknown position label in quotas: %q", label)
		}
		quotas[pos] = n
	}
	cfg.Rules.Quotas = quotas
	return nil
}

// LoggerInit routes slog to a rolling log file; stdout belongs to the report.
func LoggerInit(logPath string, level slog.Level) (io.Closer, error) {
	if err := os.MkdirAll(path.Dir(logPath), 0o755); err != nil {
		return nil, fmt.Errorf("log dir: %w", err)
	}
	logFile := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logFile, nil
}
