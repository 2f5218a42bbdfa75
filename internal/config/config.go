package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Radarr
	RadarrURL    string
	RadarrAPIKey string

	// Score tolerance (absolute band around the expected score)
	MaxOverScore  int
	MaxUnderScore int

	// Tagging
	TaggingEnabled   bool
	SuccessTagLabel  string
	MismatchTagLabel string

	// Queue
	MaxConcurrentDownloads int
	SearchInterval         time.Duration
	DownloadCheckInterval  time.Duration
	DownloadTimeout        time.Duration
	CommandTimeout         time.Duration
	CommandPollInterval    time.Duration
	GrabWaitTimeout        time.Duration
	HistoryPollInterval    time.Duration
	Limit                  int // 0 = no limit

	// Notifications
	WebhookURL string

	// Server
	ServerPort string

	// Scheduler
	ScheduleCron string

	// Behaviour
	DryRun   bool
	LogLevel string
}

// Load loads configuration from a YAML file and environment variables.
// An empty path falls back to the default search locations.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("scorarr")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/scorarr")
		v.AddConfigPath("/etc/scorarr")
	}

	v.SetEnvPrefix("SCORARR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine as long as the environment
		// provides the required values.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		RadarrURL:    strings.TrimRight(v.GetString("radarr.url"), "/"),
		RadarrAPIKey: v.GetString("radarr.api_key"),

		MaxOverScore:  v.GetInt("scores.max_over_score"),
		MaxUnderScore: v.GetInt("scores.max_under_score"),

		TaggingEnabled:   v.GetBool("tags.enabled"),
		SuccessTagLabel:  v.GetString("tags.success_label"),
		MismatchTagLabel: v.GetString("tags.mismatch_label"),

		MaxConcurrentDownloads: v.GetInt("queue.max_concurrent_downloads"),
		SearchInterval:         time.Duration(v.GetInt("queue.search_interval_seconds")) * time.Second,
		DownloadCheckInterval:  time.Duration(v.GetInt("queue.download_check_interval_seconds")) * time.Second,
		DownloadTimeout:        time.Duration(v.GetInt("queue.download_timeout_minutes")) * time.Minute,
		CommandTimeout:         time.Duration(v.GetInt("queue.command_timeout_seconds")) * time.Second,
		CommandPollInterval:    time.Duration(v.GetInt("queue.command_poll_interval_seconds")) * time.Second,
		GrabWaitTimeout:        time.Duration(v.GetInt("queue.grab_wait_timeout_seconds")) * time.Second,
		HistoryPollInterval:    time.Duration(v.GetInt("queue.history_poll_interval_seconds")) * time.Second,
		Limit:                  v.GetInt("queue.limit"),

		WebhookURL: v.GetString("notify.webhook_url"),

		ServerPort: v.GetString("server.port"),

		ScheduleCron: v.GetString("schedule.cron"),

		DryRun:   v.GetBool("dry_run"),
		LogLevel: v.GetString("log_level"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scores.max_over_score", 100)
	v.SetDefault("scores.max_under_score", 0)

	v.SetDefault("tags.enabled", true)
	v.SetDefault("tags.success_label", "scorarr-ok")
	v.SetDefault("tags.mismatch_label", "scorarr-mismatch")

	v.SetDefault("queue.max_concurrent_downloads", 3)
	v.SetDefault("queue.search_interval_seconds", 30)
	v.SetDefault("queue.download_check_interval_seconds", 60)
	v.SetDefault("queue.download_timeout_minutes", 60)
	v.SetDefault("queue.command_timeout_seconds", 120)
	v.SetDefault("queue.command_poll_interval_seconds", 2)
	v.SetDefault("queue.grab_wait_timeout_seconds", 120)
	v.SetDefault("queue.history_poll_interval_seconds", 5)
	v.SetDefault("queue.limit", 0)

	v.SetDefault("server.port", "8787")
	v.SetDefault("schedule.cron", "0 */6 * * *")

	v.SetDefault("dry_run", false)
	v.SetDefault("log_level", "info")
}

// validate checks required fields and tunable sanity before anything runs.
func (c *Config) validate() error {
	if c.RadarrURL == "" {
		return fmt.Errorf("radarr.url is required")
	}
	if c.RadarrAPIKey == "" {
		return fmt.Errorf("radarr.api_key is required")
	}
	if c.MaxOverScore < 0 {
		return fmt.Errorf("scores.max_over_score must not be negative")
	}
	if c.MaxUnderScore < 0 {
		return fmt.Errorf("scores.max_under_score must not be negative")
	}
	if c.MaxConcurrentDownloads < 1 {
		return fmt.Errorf("queue.max_concurrent_downloads must be at least 1")
	}
	return nil
}
