package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	DatabaseURL       string
	ServerPort        string
	FrontendURL       string
	SchedulerTimezone string
	SchedulerCron     string
	SchedulerCatchup  bool
	RateLimit         string
	ServerDebugMode   bool
	EnableHSTS        bool
	AutoMigrate       bool
}

// fileConfig is the optional YAML overlay (CONFIG_FILE). Only keys present
// in the file override the environment.
type fileConfig struct {
	DatabaseURL *string `yaml:"database_url"`
	ServerPort  *string `yaml:"server_port"`
	FrontendURL *string `yaml:"frontend_url"`
	Scheduler   struct {
		Timezone *string `yaml:"timezone"`
		Cron     *string `yaml:"cron"`
		Catchup  *bool   `yaml:"catchup"`
	} `yaml:"scheduler"`
	RateLimit   *string `yaml:"rate_limit"`
	AutoMigrate *bool   `yaml:"auto_migrate"`
}

// Load loads configuration from a .env file (if present), environment
// variables, and an optional YAML file named by CONFIG_FILE.
func Load() (*Config, error) {
	// .env is a local-dev convenience; absence is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		FrontendURL:       getEnv("FRONTEND_URL", "http://localhost:3000"),
		SchedulerTimezone: getEnv("SCHEDULER_TIMEZONE", "America/Los_Angeles"),
		SchedulerCron:     getEnv("SCHEDULER_CRON", "59 23 * * *"),
		SchedulerCatchup:  getEnvBool("SCHEDULER_CATCHUP", true),
		RateLimit:         getEnv("RATE_LIMIT", "20-S"),
		ServerDebugMode:   getEnvBool("SERVER_DEBUG_MODE", false),
		EnableHSTS:        getEnvBool("ENABLE_HSTS", false),
		AutoMigrate:       getEnvBool("AUTO_MIGRATE", true),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if _, err := time.LoadLocation(cfg.SchedulerTimezone); err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_TIMEZONE %q: %w", cfg.SchedulerTimezone, err)
	}

	return cfg, nil
}

// SchedulerLocation resolves the configured scheduler time zone. Load has
// already validated it, so failure falls back to UTC.
func (c *Config) SchedulerLocation() *time.Location {
	loc, err := time.LoadLocation(c.SchedulerTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.DatabaseURL != nil {
		cfg.DatabaseURL = *fc.DatabaseURL
	}
	if fc.ServerPort != nil {
		cfg.ServerPort = *fc.ServerPort
	}
	if fc.FrontendURL != nil {
		cfg.FrontendURL = *fc.FrontendURL
	}
	if fc.Scheduler.Timezone != nil {
		cfg.SchedulerTimezone = *fc.Scheduler.Timezone
	}
	if fc.Scheduler.Cron != nil {
		cfg.SchedulerCron = *fc.Scheduler.Cron
	}
	if fc.Scheduler.Catchup != nil {
		cfg.SchedulerCatchup = *fc.Scheduler.Catchup
	}
	if fc.RateLimit != nil {
		cfg.RateLimit = *fc.RateLimit
	}
	if fc.AutoMigrate != nil {
		cfg.AutoMigrate = *fc.AutoMigrate
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
