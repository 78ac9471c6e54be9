package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	yaml "go.yaml.in/yaml/v3"
)

type Config struct {
	DBDriver   string `yaml:"db_driver"` // postgres|sqlite
	DBHost     string `yaml:"db_host"`
	DBPort     int    `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`
	DBPath     string `yaml:"db_path"` // sqlite only

	HTTPAddr    string   `yaml:"http_addr"`
	JWTSecret   string   `yaml:"jwt_secret"`
	CORSOrigins []string `yaml:"cors_origins"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// PlanRatePerMin limits POST /plan per user; 0 disables the limit.
	PlanRatePerMin        int `yaml:"plan_rate_per_min"`
	WeightedMaxCandidates int `yaml:"weighted_max_candidates"`
	ApplyConcurrency      int `yaml:"apply_concurrency"`

	// AutoPlanCron is a cron spec for batch planning; empty disables it.
	AutoPlanCron      string `yaml:"autoplan_cron"`
	AutoPlanAlgorithm string `yaml:"autoplan_algorithm"`
}

func defaults() Config {
	return Config{
		DBDriver:          "postgres",
		DBPort:            5432,
		HTTPAddr:          ":8080",
		CORSOrigins:       []string{"*"},
		LogLevel:          "info",
		LogFormat:         "console",
		PlanRatePerMin:    30,
		ApplyConcurrency:  8,
		AutoPlanAlgorithm: "sequential",
	}
}

// Load reads CONFIG_FILE (yaml) when set, then applies environment
// overrides on top.
func Load() (*Config, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(c *Config) error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) error {
		v, ok := os.LookupEnv(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("DB_DRIVER", &c.DBDriver)
	str("DB_HOST", &c.DBHost)
	str("DB_USER", &c.DBUser)
	str("DB_PASSWORD", &c.DBPassword)
	str("DB_NAME", &c.DBName)
	str("DB_PATH", &c.DBPath)
	str("HTTP_ADDR", &c.HTTPAddr)
	str("JWT_SECRET", &c.JWTSecret)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	str("AUTOPLAN_CRON", &c.AutoPlanCron)
	str("AUTOPLAN_ALGORITHM", &c.AutoPlanAlgorithm)

	if v, ok := os.LookupEnv("CORS_ORIGINS"); ok {
		c.CORSOrigins = splitList(v)
	}

	for key, dst := range map[string]*int{
		"DB_PORT":                 &c.DBPort,
		"PLAN_RATE_PER_MIN":       &c.PlanRatePerMin,
		"WEIGHTED_MAX_CANDIDATES": &c.WeightedMaxCandidates,
		"APPLY_CONCURRENCY":       &c.ApplyConcurrency,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// DSN returns the data source name for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return c.DBPath
	}
	return c.ConnString()
}

func (c *Config) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}
