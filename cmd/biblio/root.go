package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"biblio"
	"biblio/pkg/core"
	"biblio/pkg/notify"
)

var (
	cfgPath string
	dataDir string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "biblio",
	Short: "A lending catalog for documents, borrowers, and loans",
	Long: `Biblio tracks a lending catalog backed by flat snapshot files.
It enforces loan quotas, document availability, and loan lifecycle rules,
and persists every successful change to pipe-delimited text files.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "biblio.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "Data directory (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

// loadConfig merges the config file with command-line overrides.
func loadConfig() (biblio.Config, error) {
	cfg, err := biblio.LoadConfig(cfgPath)
	if err != nil {
		return biblio.Config{}, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if verbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

// buildService wires observers from the config and opens the engine.
func buildService(ctx context.Context) (*core.Service, biblio.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, biblio.Config{}, err
	}

	hub := notify.NewHub(slog.Default())
	if cfg.Notify.Console {
		hub.Attach(notify.NewConsoleObserver("library", os.Stdout))
	}
	if cfg.Notify.Email != "" {
		hub.Attach(notify.NewEmailObserver(cfg.Notify.Email, slog.Default()))
	}
	if cfg.Notify.Journal != "" {
		hub.Attach(notify.NewJournalObserver(cfg.Notify.Journal))
	}

	svc, err := biblio.New(ctx, cfg.DataDir,
		biblio.WithLogger(slog.Default()),
		biblio.WithBroadcaster(hub),
	)
	if err != nil {
		return nil, biblio.Config{}, err
	}
	return svc, cfg, nil
}

// exitWithMessage prints the stable user-facing message for an engine error
// and logs the technical cause, then exits.
func exitWithMessage(err error) {
	slog.Debug("operation failed", "error", err)
	msg := core.Message(err)
	if errors.Is(err, core.ErrPersistence) {
		// State changed in memory; make the durability gap visible.
		fmt.Fprintln(os.Stderr, "Warning:", msg)
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, "Error:", msg)
	os.Exit(1)
}
