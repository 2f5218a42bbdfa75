package main

import (
	"fmt"
	"os"

	"github.com/scorarr/scorarr/internal/config"
	"github.com/scorarr/scorarr/internal/services/notify"
	"github.com/scorarr/scorarr/internal/services/radarr"
	"github.com/scorarr/scorarr/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var logLevel string

	root := &cobra.Command{
		Use:           "scorarr",
		Short:         "Reconciles Radarr custom format scores between grab and import",
		Long:          "scorarr compares the custom format score Radarr expected when a release was grabbed\nagainst the score of the file actually imported, tags the movie with the outcome,\nand notifies a webhook on mismatch.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override configured log level")

	root.AddCommand(newRunCmd(&configPath, &logLevel))
	root.AddCommand(newSearchCmd(&configPath, &logLevel))
	root.AddCommand(newServeCmd(&configPath, &logLevel))

	return root
}

// app bundles the configuration and shared service clients built once per
// command invocation.
type app struct {
	cfg      *config.Config
	logger   *logrus.Logger
	radarr   *radarr.Client
	notifier *notify.WebhookNotifier
}

func loadApp(configPath, logLevel string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logger := utils.NewLogger(cfg.LogLevel)

	client, err := radarr.NewClient(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Radarr client: %w", err)
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		radarr:   client,
		notifier: notify.NewWebhookNotifier(cfg, logger),
	}, nil
}
