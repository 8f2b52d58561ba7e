package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBHost     string `long:"db-host" env:"DB_HOST" default:"localhost" description:"Database host"`
	DBPort     string `long:"db-port" env:"DB_PORT" default:"5432" description:"Database port"`
	DBUser     string `long:"db-user" env:"DB_USER" default:"podcasts_user" description:"Database user"`
	DBPassword string `long:"db-password" env:"DB_PASSWORD" description:"Database password (required)" required:"true"`
	DBName     string `long:"db-name" env:"DB_NAME" default:"podcasts" description:"Database name"`
	DBSSLMode  string `long:"db-sslmode" env:"DB_SSLMODE" default:"disable" description:"Database SSL mode"`

	// Ingestion configuration
	FeedsFile     string `long:"feeds-file" env:"FEEDS_FILE" default:"./feeds.csv" description:"CSV file listing source feeds"`
	BatchSize     int    `long:"batch-size" env:"BATCH_SIZE" default:"0" description:"Limit feeds processed per run (0 = all)"`
	ForceRefresh  bool   `long:"force-refresh" env:"FORCE_REFRESH" description:"Ignore cache tokens and refetch every feed"`
	DeleteMissing bool   `long:"delete-missing" env:"DELETE_MISSING" default:"true" description:"Delete podcasts whose feed URL is no longer in the CSV"`
	OnlyDaily     bool   `long:"only-daily" env:"ONLY_DAILY_FEEDS" description:"Process only feeds flagged as daily in the CSV"`
	ActiveOnly    bool   `long:"active-only" env:"REFRESH_ACTIVE_ONLY" default:"true" description:"Skip feeds with no recent episodes"`
	ActiveDays    int    `long:"active-days" env:"REFRESH_ACTIVE_DAYS" default:"60" description:"Freshness window in days for the activity check"`
	WorkerCount   int    `long:"worker-count" env:"WORKER_COUNT" default:"10" description:"Number of concurrent feed workers"`

	// HTTP client configuration
	FetchTimeout int     `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"20" description:"Feed fetch timeout in seconds"`
	FetchRPS     float64 `long:"fetch-rps" env:"FETCH_RPS" default:"0" description:"Global fetch rate limit in requests per second (0 = unlimited)"`
	UserAgent    string  `long:"user-agent" env:"USER_AGENT" default:"PodcastLibrary/1.0" description:"User agent string for HTTP requests"`

	Debug bool `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load parses configuration from command-line flags and environment
// variables. It returns (nil, nil) when help output was requested.
func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBHost:        raw.DBHost,
		DBPort:        raw.DBPort,
		DBUser:        raw.DBUser,
		DBPassword:    raw.DBPassword,
		DBName:        raw.DBName,
		DBSSLMode:     raw.DBSSLMode,
		FeedsFile:     raw.FeedsFile,
		BatchSize:     raw.BatchSize,
		ForceRefresh:  raw.ForceRefresh,
		DeleteMissing: raw.DeleteMissing,
		OnlyDaily:     raw.OnlyDaily,
		ActiveOnly:    raw.ActiveOnly,
		ActiveDays:    raw.ActiveDays,
		WorkerCount:   raw.WorkerCount,
		FetchTimeout:  raw.FetchTimeout,
		FetchRPS:      raw.FetchRPS,
		UserAgent:     raw.UserAgent,
		Debug:         raw.Debug,
		Version:       GetVersion(),
	}

	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}
	if cfg.BatchSize < 0 {
		cfg.BatchSize = 0
	}

	return cfg, nil
}
