// Package config loads sylfinder's settings.
//
// Settings are layered: built-in defaults, then an optional YAML file,
// then environment variables. The result is validated before use.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/abelbrown/sylfinder/internal/backend"
	"github.com/abelbrown/sylfinder/internal/model"
	"github.com/abelbrown/sylfinder/internal/ranking"
	"github.com/abelbrown/sylfinder/internal/validation"
)

// PathEnvVar overrides the config file search.
const PathEnvVar = "SYLFINDER_CONFIG"

// DefaultBaseURL is the hosted syllabus finder service.
const DefaultBaseURL = "https://syallabus-finder-backend.onrender.com"

// Config is the application configuration.
type Config struct {
	API  APIConfig  `koanf:"api"`
	Data DataConfig `koanf:"data"`
	UI   UIConfig   `koanf:"ui"`
	Log  LogConfig  `koanf:"log"`
}

// APIConfig describes the remote service and how hard to lean on it.
type APIConfig struct {
	BaseURL           string        `koanf:"base_url" validate:"required,url"`
	AuthTimeout       time.Duration `koanf:"auth_timeout" validate:"gt=0"`
	UploadTimeout     time.Duration `koanf:"upload_timeout" validate:"gt=0"`
	HistoryTimeout    time.Duration `koanf:"history_timeout" validate:"gt=0"`
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"gte=0"`
	Burst             int           `koanf:"burst" validate:"gte=0"`
	BreakerFailures   uint32        `koanf:"breaker_failures" validate:"gte=1"`
	BreakerCooldown   time.Duration `koanf:"breaker_cooldown" validate:"gt=0"`
}

// DataConfig locates local state.
type DataConfig struct {
	// Dir holds the database and logs. A leading ~ is expanded.
	Dir string `koanf:"dir" validate:"required"`
}

// UIConfig holds start-up preferences.
type UIConfig struct {
	Language string `koanf:"language" validate:"oneof=en hi es te"`
	Metric   string `koanf:"metric" validate:"oneof=likeCount viewCount"`
	StartDir string `koanf:"start_dir"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:           DefaultBaseURL,
			AuthTimeout:       30 * time.Second,
			UploadTimeout:     3 * time.Minute, // extraction + search runs server-side
			HistoryTimeout:    30 * time.Second,
			RequestsPerSecond: 2,
			Burst:             4,
			BreakerFailures:   5,
			BreakerCooldown:   30 * time.Second,
		},
		Data: DataConfig{Dir: filepath.Join("~", ".sylfinder")},
		UI: UIConfig{
			Language: string(model.English),
			Metric:   ranking.ByLikes.Name(),
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load builds the configuration from defaults, the first config file found
// and the environment.
func Load() (*Config, error) {
	return LoadFrom(FindConfigFile())
}

// LoadFrom is Load with an explicit config file. An empty path skips the
// file layer.
func LoadFrom(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	return validation.Struct(c)
}

// FindConfigFile returns the first existing config file, or "".
func FindConfigFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range searchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func searchPaths() []string {
	paths := []string{"sylfinder.yaml", "sylfinder.yml"}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "sylfinder", "config.yaml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".sylfinder", "config.yaml"))
	}
	return paths
}

var envMappings = map[string]string{
	"sylfinder_api_url":             "api.base_url",
	"sylfinder_auth_timeout":        "api.auth_timeout",
	"sylfinder_upload_timeout":      "api.upload_timeout",
	"sylfinder_history_timeout":     "api.history_timeout",
	"sylfinder_requests_per_second": "api.requests_per_second",
	"sylfinder_burst":               "api.burst",
	"sylfinder_breaker_failures":    "api.breaker_failures",
	"sylfinder_breaker_cooldown":    "api.breaker_cooldown",
	"sylfinder_data_dir":            "data.dir",
	"sylfinder_language":            "ui.language",
	"sylfinder_metric":              "ui.metric",
	"sylfinder_start_dir":           "ui.start_dir",
	"sylfinder_log_level":           "log.level",
}

// envTransformFunc maps SYLFINDER_* variables onto config paths. Anything
// unmapped is skipped so unrelated variables cannot leak in.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// DataDir returns Data.Dir with ~ expanded.
func (c *Config) DataDir() (string, error) {
	dir := c.Data.Dir
	if dir == "~" || strings.HasPrefix(dir, "~/") || strings.HasPrefix(dir, "~"+string(filepath.Separator)) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		dir = filepath.Join(home, dir[1:])
	}
	return dir, nil
}

// DBPath returns the SQLite database path inside the data directory.
func (c *Config) DBPath() (string, error) {
	dir, err := c.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sylfinder.db"), nil
}

// Language returns the configured start-up language.
func (c *Config) Language() model.Language {
	lang, err := model.ParseLanguage(c.UI.Language)
	if err != nil {
		return model.English
	}
	return lang
}

// Metric returns the configured start-up ranking metric.
func (c *Config) Metric() ranking.Metric {
	m, err := ranking.ParseMetric(c.UI.Metric)
	if err != nil {
		return ranking.ByLikes
	}
	return m
}

// Backend returns the client settings for the remote service.
func (c *Config) Backend() backend.Config {
	return backend.Config{
		BaseURL:           c.API.BaseURL,
		AuthTimeout:       c.API.AuthTimeout,
		UploadTimeout:     c.API.UploadTimeout,
		HistoryTimeout:    c.API.HistoryTimeout,
		RequestsPerSecond: c.API.RequestsPerSecond,
		Burst:             c.API.Burst,
		BreakerFailures:   c.API.BreakerFailures,
		BreakerCooldown:   c.API.BreakerCooldown,
	}
}
