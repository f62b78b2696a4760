package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every setting of the server. Values come from defaults, then an optional
// YAML file named by CONFIG_FILE, then environment variables.
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Server     ServerConfig     `yaml:"server"`
	Simulation SimulationConfig `yaml:"simulation"`
	Storage    StorageConfig    `yaml:"storage"`

	JWTSecretKey   string `yaml:"jwt_secret_key"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	URL    string `yaml:"url"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps"`
	RateLimitBurst int      `yaml:"rate_limit_burst"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type SimulationConfig struct {
	Runs int    `yaml:"runs"`
	Seed uint64 `yaml:"seed"`
}

// StorageConfig points at the Cloudflare R2 bucket exports are uploaded to.
type StorageConfig struct {
	AccountID       string `yaml:"account_id"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	BucketName      string `yaml:"bucket_name"`
	PublicBaseURL   string `yaml:"public_base_url"`

	// LocalDir receives exports when no bucket is configured.
	LocalDir string `yaml:"local_dir"`
}

// Enabled reports whether uploads are configured at all.
func (s StorageConfig) Enabled() bool {
	return s.AccountID != "" && s.BucketName != ""
}

func defaults() *Config {
	return &Config{
		Database: DatabaseConfig{Driver: "sqlite", URL: "file:tournaments.db?_pragma=busy_timeout(5000)"},
		Server: ServerConfig{
			Port:           8080,
			RateLimitRPS:   20,
			RateLimitBurst: 40,
			AllowedOrigins: []string{"*"},
		},
		Simulation:     SimulationConfig{Runs: 50, Seed: 1},
		Storage:        StorageConfig{LocalDir: "exports"},
		MetricsEnabled: true,
	}
}

// Load reads the configuration. A .env file is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Database.Driver, "DATABASE_DRIVER")
	setString(&cfg.Database.URL, "DATABASE_URL")
	setString(&cfg.JWTSecretKey, "JWT_SECRET_KEY")
	setString(&cfg.Storage.AccountID, "R2_ACCOUNT_ID")
	setString(&cfg.Storage.AccessKeyID, "R2_ACCESS_KEY_ID")
	setString(&cfg.Storage.SecretAccessKey, "R2_SECRET_ACCESS_KEY")
	setString(&cfg.Storage.BucketName, "R2_BUCKET_NAME")
	setString(&cfg.Storage.PublicBaseURL, "R2_PUBLIC_BASE_URL")
	setString(&cfg.Storage.LocalDir, "EXPORT_DIR")

	if v := os.Getenv("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_RPS environment variable: %w", err)
		}
		cfg.Server.RateLimitRPS = rps
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("SIMULATION_RUNS"); v != "" {
		runs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SIMULATION_RUNS environment variable: %w", err)
		}
		cfg.Simulation.Runs = runs
	}
	if v := os.Getenv("SIMULATION_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid SIMULATION_SEED environment variable: %w", err)
		}
		cfg.Simulation.Seed = seed
	}
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid METRICS_ENABLED environment variable: %w", err)
		}
		cfg.MetricsEnabled = enabled
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is not set")
	}
	if c.JWTSecretKey == "" {
		return fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Simulation.Runs < 1 {
		return fmt.Errorf("SIMULATION_RUNS must be positive, got %d", c.Simulation.Runs)
	}
	return nil
}
