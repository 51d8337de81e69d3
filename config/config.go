package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	League        LeagueConfig        `yaml:"league"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// LeagueConfig holds season lifecycle tuning.
type LeagueConfig struct {
	// RetentionWeeks is how many most-recent weeks survive cleanup.
	RetentionWeeks int `yaml:"retention_weeks"`
}

// SchedulerConfig holds timer and catch-up configuration.
type SchedulerConfig struct {
	// JobsFile points at the declarative catch-up job list.
	JobsFile string `yaml:"jobs_file"`
	// CatchupJobDelay is the pause between two catch-up job executions.
	CatchupJobDelay time.Duration `yaml:"catchup_job_delay"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	MetricsAddress string `yaml:"metrics_address"`
	Environment    string `yaml:"environment"`
}

// LoadConfig loads the configuration from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	// Try reading configuration from the file first
	data, err := os.ReadFile(filename)
	if err != nil {
		// If the file is not found, try loading from environment variables
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// --- OVERRIDE WITH ENV VARS IF PRESENT ---
	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	return &cfg, nil
}

func loadConfigFromEnv() (*Config, error) {
	cfg := &Config{}
	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when no config file is present")
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("SCHEDULER_JOBS_FILE"); v != "" {
		cfg.Scheduler.JobsFile = v
	}
	if v := os.Getenv("LEAGUE_RETENTION_WEEKS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.League.RetentionWeeks = n
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.League.RetentionWeeks == 0 {
		cfg.League.RetentionWeeks = 12
	}
	if cfg.Scheduler.JobsFile == "" {
		cfg.Scheduler.JobsFile = "jobs.yaml"
	}
	if cfg.Scheduler.CatchupJobDelay == 0 {
		cfg.Scheduler.CatchupJobDelay = 2 * time.Second
	}
	if cfg.Observability.MetricsAddress == "" {
		cfg.Observability.MetricsAddress = ":9090"
	}
}
