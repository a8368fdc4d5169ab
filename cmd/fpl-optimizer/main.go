package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"fpl-optimizer/internal/config"
	"fpl-optimizer/internal/rules"
)

var (
	BuildVersion = "master"
	BuildDate    = time.Now().Format("2006-01-02")

	cfgFile   string
	chipName  string
	transfers int
	squadFile string
	gameweek  int
	live      bool

	rootCmd = &cobra.Command{
		Use:   "fpl-optimizer",
		Short: "FPL squad and lineup optimizer",
		Long: `fpl-optimizer - picks the best 15-player FPL squad and starting 11
for the upcoming gameweek from live FPL API data.`,
		RunE: run,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run:   version,
	}

	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "Show recent optimization runs",
		Args:  cobra.NoArgs,
		RunE:  showHistory,
	}
)

func main() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.Path(config.DefaultConfigName), "config file path")
	rootCmd.Flags().StringVar(&chipName, "chip", "", "chip to play: wildcard|free_hit|bench_boost|triple_captain")
	rootCmd.Flags().IntVar(&transfers, "transfers", 1, "number of free transfers (1-5)")
	rootCmd.Flags().StringVar(&squadFile, "squad", "", "current squad JSON file (overrides the default snapshot)")
	rootCmd.Flags().IntVar(&gameweek, "gw", 0, "gameweek to optimize for (0 = next)")
	rootCmd.Flags().BoolVar(&live, "live", false, "bypass the raw JSON cache")
	rootCmd.AddCommand(versionCmd, historyCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func version(_ *cobra.Command, _ []string) {
	fmt.Printf("fpl-optimizer %s (built %s, %s)\n", BuildVersion, BuildDate, runtime.Version())
}

func run(_ *cobra.Command, _ []string) error {
	chip, err := rules.ParseChip(chipName)
	if err != nil {
		return err
	}

	cfg, err := config.Read(cfgFile)
	if err != nil {
		return err
	}

	logFile, err := config.LoggerInit(cfg.LogPath, slog.LevelInfo)
	if err != nil {
		return err
	}
	defer func(closer io.Closer) {
		_ = closer.Close()
	}(logFile)

	slog.Info("starting run",
		slog.String("version", BuildVersion),
		slog.String("chip", string(chip)),
		slog.Int("transfers", transfers),
		slog.Bool("live", live))

	opts := runOptions{
		Chip:      chip,
		Transfers: transfers,
		SquadFile: squadFile,
		Gameweek:  gameweek,
		Live:      live,
	}
	return optimize(context.Background(), cfg, opts, os.Stdout)
}

func showHistory(_ *cobra.Command, _ []string) error {
	cfg, err := config.Read(cfgFile)
	if err != nil {
		return err
	}
	return printHistory(context.Background(), cfg, os.Stdout)
}
