// Package config loads runtime settings from the environment, with an
// optional YAML file layered underneath for deployments that prefer files
// over flags. Environment variables always win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is every knob the service and the CLI read.
type Config struct {
	Port          string        `yaml:"port"`
	LogLevel      string        `yaml:"log_level"`
	DataDir       string        `yaml:"data_dir"`
	RedisAddr     string        `yaml:"redis_addr"`
	MaxWorkers    int           `yaml:"max_workers"`
	WeightVersion string        `yaml:"weight_version"`
	Interpreter   string        `yaml:"interpreter"`
	RunTimeout    time.Duration `yaml:"run_timeout"`

	RateLimit struct {
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
	} `yaml:"rate_limit"`
}

func defaults() Config {
	c := Config{
		Port:          "8080",
		LogLevel:      "info",
		DataDir:       "./data",
		MaxWorkers:    8,
		WeightVersion: "v2",
		Interpreter:   "python3",
		RunTimeout:    120 * time.Second,
	}
	c.RateLimit.RequestsPerSecond = 10
	c.RateLimit.Burst = 20
	return c
}

// Load builds the configuration: defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment overrides.
func Load() (Config, error) {
	c := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &c); err != nil {
			return c, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	c.Port = getEnv("PORT", c.Port)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.DataDir = getEnv("DATA_DIR", c.DataDir)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.MaxWorkers = getEnvInt("MAX_WORKERS", c.MaxWorkers)
	c.WeightVersion = getEnv("WEIGHT_VERSION", c.WeightVersion)
	c.Interpreter = getEnv("SANDBOX_INTERPRETER", c.Interpreter)

	if c.MaxWorkers < 1 {
		return c, fmt.Errorf("max_workers must be at least 1, got %d", c.MaxWorkers)
	}

	return c, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// EnvTokenSource resolves service credentials from the environment:
// "github" -> GITHUB_TOKEN, "huggingface" -> HF_TOKEN, anything else ->
// <SERVICE>_TOKEN.
type EnvTokenSource struct{}

func (EnvTokenSource) Token(service string) string {
	switch service {
	case "github":
		return os.Getenv("GITHUB_TOKEN")
	case "huggingface":
		return os.Getenv("HF_TOKEN")
	default:
		return os.Getenv(strings.ToUpper(service) + "_TOKEN")
	}
}
