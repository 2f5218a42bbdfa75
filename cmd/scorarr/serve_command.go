package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/scorarr/scorarr/internal/api"
	"github.com/scorarr/scorarr/internal/controllers"
	"github.com/scorarr/scorarr/internal/scheduler"
	"github.com/spf13/cobra"
)

func newServeCmd(configPath, logLevel *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the import webhook server and scheduled sweeps",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*configPath, *logLevel)
			if err != nil {
				return err
			}

			a.logger.Info("Starting scorarr")

			resolver := controllers.NewResolver(a.radarr, a.notifier, a.cfg, a.logger)
			hookCtrl := controllers.NewHookController(a.radarr, resolver, a.logger)

			sched := scheduler.NewScheduler(a.radarr, a.notifier, a.cfg, a.logger)
			if err := sched.Start(); err != nil {
				return fmt.Errorf("failed to start scheduler: %w", err)
			}
			defer sched.Stop()

			server := api.NewServer(a.cfg, hookCtrl, sched, a.logger)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			serverErrChan := make(chan error, 1)
			go func() {
				if err := server.Start(ctx); err != nil {
					serverErrChan <- err
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			a.logger.Info("scorarr is running")

			select {
			case err := <-serverErrChan:
				return fmt.Errorf("server error: %w", err)
			case sig := <-sigChan:
				a.logger.WithField("signal", sig).Info("Received shutdown signal")
				cancel()
				if err := server.Shutdown(context.Background()); err != nil {
					a.logger.WithError(err).Error("Error during server shutdown")
				}
			}

			a.logger.Info("scorarr stopped")
			return nil
		},
	}

	return cmd
}
