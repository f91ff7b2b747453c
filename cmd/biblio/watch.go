package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"biblio"
	"biblio/pkg/adapters/fs"
	blifecycle "biblio/pkg/adapters/lifecycle"
	"biblio/pkg/core"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the data directory and reload on external changes",
	Long: `Watches the registry snapshot files and reloads the in-memory state
whenever another process (or a hand edit) changes them. Runs until
interrupted.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fatal("Failed to load config", err)
		}

		store := fs.NewStore(fs.Config{Dir: cfg.DataDir, Logger: slog.Default()})
		svc, err := biblio.New(cmd.Context(), cfg.DataDir,
			biblio.WithStore(store),
			biblio.WithLogger(slog.Default()),
		)
		if err != nil {
			fatal("Failed to open library", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		changes, err := store.Watch(ctx)
		if err != nil {
			fatal("Failed to start watcher", err)
		}

		src := blifecycle.NewSource(changes)
		if err := src.Start(ctx); err != nil {
			fatal("Failed to start change source", err)
		}

		fmt.Printf("Watching %s (ctrl-c to stop)\n", cfg.DataDir)
		for ev := range src.Events() {
			change, ok := ev.(core.ChangeEvent)
			if !ok {
				continue
			}
			if err := svc.Load(ctx); err != nil {
				slog.Error("reload failed", "error", err)
				continue
			}
			stats := svc.Statistics()
			fmt.Printf("%s changed: %d documents, %d users, %d active / %d overdue loans\n",
				change.Registry, stats.TotalDocuments, stats.TotalUsers,
				stats.ActiveLoans, stats.OverdueLoans)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
