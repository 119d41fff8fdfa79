// Package config loads the staffing service settings from a YAML file,
// overlaid by environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when CONFIG_PATH is not set.
var DefaultPath = filepath.Join("internal", "staffing", "config", "config.yaml")

// Config holds every setting of the service.
type Config struct {
	GRPCPort               int      `yaml:"GRPC_PORT"`
	HTTPPort               int      `yaml:"HTTP_PORT"`
	DBDriver               string   `yaml:"DB_DRIVER"`
	DBHost                 string   `yaml:"DB_HOST"`
	DBPort                 int      `yaml:"DB_PORT"`
	DBUser                 string   `yaml:"DB_USER"`
	DBPassword             string   `yaml:"DB_PASSWORD"`
	DBName                 string   `yaml:"DB_NAME"`
	DBSSLMode              string   `yaml:"DB_SSLMODE"`
	DBConnectRetries       uint64   `yaml:"DB_CONNECT_RETRIES"`
	LogLevel               string   `yaml:"LOG_LEVEL"`
	CORSAllowedOrigins     []string `yaml:"CORS_ALLOWED_ORIGINS"`
	StrictDepartmentChecks bool     `yaml:"STRICT_DEPARTMENT_CHECKS"`
}

// Defaults returns a configuration that runs locally against sqlite.
func Defaults() *Config {
	return &Config{
		GRPCPort:           50051,
		HTTPPort:           8080,
		DBDriver:           "sqlite",
		DBName:             "staffing.db",
		DBSSLMode:          "disable",
		DBConnectRetries:   5,
		LogLevel:           "info",
		CORSAllowedOrigins: []string{"*"},
	}
}

// Load reads .env if present, then the YAML file named by CONFIG_PATH (or
// DefaultPath), then applies environment overrides.
func Load() (*Config, error) {
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = DefaultPath
	}
	return LoadFile(path)
}

// LoadFile is Load without .env handling for an explicit file path.
// A missing file leaves the defaults in place.
func LoadFile(path string) (*Config, error) {
	cfg := Defaults()

	file, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var errs []error
	setInt := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	setInt("GRPC_PORT", &c.GRPCPort)
	setInt("HTTP_PORT", &c.HTTPPort)
	setString("DB_DRIVER", &c.DBDriver)
	setString("DB_HOST", &c.DBHost)
	setInt("DB_PORT", &c.DBPort)
	setString("DB_USER", &c.DBUser)
	setString("DB_PASSWORD", &c.DBPassword)
	setString("DB_NAME", &c.DBName)
	setString("DB_SSLMODE", &c.DBSSLMode)
	setString("LOG_LEVEL", &c.LogLevel)

	if v, ok := os.LookupEnv("DB_CONNECT_RETRIES"); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid DB_CONNECT_RETRIES: %w", err))
		} else {
			c.DBConnectRetries = n
		}
	}
	if v, ok := os.LookupEnv("STRICT_DEPARTMENT_CHECKS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid STRICT_DEPARTMENT_CHECKS: %w", err))
		} else {
			c.StrictDepartmentChecks = b
		}
	}
	if v, ok := os.LookupEnv("CORS_ALLOWED_ORIGINS"); ok {
		c.CORSAllowedOrigins = splitList(v)
	}

	return errors.Join(errs...)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
