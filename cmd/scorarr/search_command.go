package main

import (
	"context"

	"github.com/scorarr/scorarr/internal/controllers"
	"github.com/spf13/cobra"
)

func newSearchCmd(configPath, logLevel *string) *cobra.Command {
	var movieID int64

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search and reconcile a single movie",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*configPath, *logLevel)
			if err != nil {
				return err
			}

			resolver := controllers.NewResolver(a.radarr, a.notifier, a.cfg, a.logger)
			checker := controllers.NewChecker(a.radarr, resolver, a.cfg, a.logger)

			return checker.CheckMovie(context.Background(), movieID)
		},
	}

	cmd.Flags().Int64Var(&movieID, "movie-id", 0, "Radarr movie ID to reconcile")
	_ = cmd.MarkFlagRequired("movie-id")

	return cmd
}
