package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/scorarr/scorarr/internal/controllers"
	"github.com/spf13/cobra"
)

func newRunCmd(configPath, logLevel *string) *cobra.Command {
	var dryRun bool
	var limit int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one batch reconciliation sweep",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*configPath, *logLevel)
			if err != nil {
				return err
			}
			if dryRun {
				a.cfg.DryRun = true
			}
			if cmd.Flags().Changed("limit") {
				a.cfg.Limit = limit
			}

			resolver := controllers.NewResolver(a.radarr, a.notifier, a.cfg, a.logger)
			orch := controllers.NewOrchestrator(a.radarr, resolver, a.cfg, a.logger)

			ctx := context.Background()
			count, err := orch.LoadEligibleItems(ctx, a.cfg.Limit)
			if err != nil {
				return err
			}
			if count == 0 {
				a.logger.Info("No eligible movies to reconcile")
				return nil
			}

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)
			go func() {
				sig := <-sigChan
				a.logger.WithField("signal", sig).Info("Received shutdown signal")
				orch.Shutdown()
			}()

			summary := orch.Run(ctx)
			if summary != nil && summary.Failed > 0 {
				return fmt.Errorf("%d of %d items failed", summary.Failed, summary.Failed+summary.Completed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compare and log without searching, tagging, or notifying")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of movies to process (0 = no limit)")

	return cmd
}
