// Package config provides YAML-based configuration for the matcher service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Upstream failure policies for the job search client.
const (
	UpstreamFailureEmpty = "empty" // 200 with an empty job list
	UpstreamFailureError = "error" // 502 to the caller
)

// AppConfig represents the root configuration document
type AppConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Skills    SkillsConfig    `yaml:"skills"`
	JobSearch JobSearchConfig `yaml:"jobsearch"`
	Cache     CacheConfig     `yaml:"cache"`
	History   HistoryConfig   `yaml:"history"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port                 int    `yaml:"port"`
	BindAddress          string `yaml:"bind_address"`
	EnableCORS           bool   `yaml:"enable_cors"`
	AllowOrigins         string `yaml:"allow_origins"`
	ReadTimeout          int    `yaml:"read_timeout_seconds"`
	WriteTimeout         int    `yaml:"write_timeout_seconds"`
	IdleTimeout          int    `yaml:"idle_timeout_seconds"`
	BodyLimit            string `yaml:"body_limit"`
	EnableRequestLogging bool   `yaml:"enable_request_logging"`
}

// StorageConfig contains upload storage settings
type StorageConfig struct {
	UploadDirectory string `yaml:"upload_directory"`
}

// SkillsConfig tunes the skill extractor.
type SkillsConfig struct {
	// Vocabulary overrides the built-in reference vocabulary when non-empty.
	Vocabulary        []string `yaml:"vocabulary,omitempty"`
	MaxSkills int `yaml:"max_skills"`
	// FallbackThreshold is the vocabulary hit count below which named
	// entities are added. 0 disables the entity fallback.
	FallbackThreshold int `yaml:"fallback_threshold"`
}

// JobSearchConfig configures the outbound job search API.
type JobSearchConfig struct {
	APIURL           string `yaml:"api_url"`
	AffID            string `yaml:"affid,omitempty"`
	Locale           string `yaml:"locale"`
	DefaultLocation  string `yaml:"default_location"`
	DefaultUserAgent string `yaml:"default_user_agent"`
	TimeoutSeconds   int    `yaml:"timeout_seconds"`
	UpstreamFailure  string `yaml:"upstream_failure"`
}

// CacheConfig configures the optional Valkey job cache.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Address    string `yaml:"address"`
	Password   string `yaml:"password,omitempty"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// HistoryConfig configures the optional DuckDB search history.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	DBPath  string `yaml:"db_path"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:                 5000,
			BindAddress:          "0.0.0.0",
			EnableCORS:           true,
			AllowOrigins:         "*",
			ReadTimeout:          30,
			WriteTimeout:         60,
			IdleTimeout:          120,
			BodyLimit:            "16M",
			EnableRequestLogging: true,
		},
		Storage: StorageConfig{
			UploadDirectory: "./uploads",
		},
		Skills: SkillsConfig{
			MaxSkills:         5,
			FallbackThreshold: 3,
		},
		JobSearch: JobSearchConfig{
			APIURL:           "http://public.api.careerjet.net/search",
			Locale:           "en_US",
			DefaultLocation:  "United States",
			DefaultUserAgent: "Mozilla/5.0",
			TimeoutSeconds:   30,
			UpstreamFailure:  UpstreamFailureEmpty,
		},
		Cache: CacheConfig{
			Enabled:    false,
			Address:    "localhost:6379",
			TTLSeconds: 900,
		},
		History: HistoryConfig{
			Enabled: false,
			DBPath:  "./data/history.duckdb",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from a YAML file. A missing file is
// created with the defaults. Variables from a .env file next to the
// working directory are loaded before environment overrides apply.
func LoadConfig(configPath string) (*AppConfig, error) {
	_ = godotenv.Load()

	config := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	config.applyEnvironmentOverrides()
	config.resolvePaths(filepath.Dir(configPath))

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save writes the configuration to a YAML file
func (c *AppConfig) Save(configPath string) error {
	output, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# CV job matcher configuration\n# This file is auto-generated on first run\n\n")
	content := append(header, output...)

	if dir := filepath.Dir(configPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate rejects settings the service cannot run with.
func (c *AppConfig) Validate() error {
	switch c.JobSearch.UpstreamFailure {
	case UpstreamFailureEmpty, UpstreamFailureError:
	default:
		return fmt.Errorf("invalid jobsearch.upstream_failure %q: want %q or %q",
			c.JobSearch.UpstreamFailure, UpstreamFailureEmpty, UpstreamFailureError)
	}
	if c.Skills.MaxSkills <= 0 {
		return fmt.Errorf("skills.max_skills must be positive, got %d", c.Skills.MaxSkills)
	}
	if c.Skills.FallbackThreshold < 0 {
		return fmt.Errorf("skills.fallback_threshold must not be negative, got %d", c.Skills.FallbackThreshold)
	}
	if c.JobSearch.APIURL == "" {
		return fmt.Errorf("jobsearch.api_url is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
		c.Server.BindAddress = addr
	}
	if dir := os.Getenv("UPLOAD_DIR"); dir != "" {
		c.Storage.UploadDirectory = dir
	}
	if url := os.Getenv("JOBSEARCH_API_URL"); url != "" {
		c.JobSearch.APIURL = url
	}
	if affid := os.Getenv("JOBSEARCH_AFFID"); affid != "" {
		c.JobSearch.AffID = affid
	}
	if mode := os.Getenv("JOBSEARCH_UPSTREAM_FAILURE"); mode != "" {
		c.JobSearch.UpstreamFailure = mode
	}
	if addr := os.Getenv("VALKEY_ADDR"); addr != "" {
		c.Cache.Address = addr
		c.Cache.Enabled = true
	}
	if pw := os.Getenv("VALKEY_PASSWORD"); pw != "" {
		c.Cache.Password = pw
	}
	if path := os.Getenv("HISTORY_DB_PATH"); path != "" {
		c.History.DBPath = path
		c.History.Enabled = true
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		c.Logging.Format = format
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if !filepath.IsAbs(c.Storage.UploadDirectory) {
		c.Storage.UploadDirectory = filepath.Join(configDir, c.Storage.UploadDirectory)
	}
	if !filepath.IsAbs(c.History.DBPath) {
		c.History.DBPath = filepath.Join(configDir, c.History.DBPath)
	}
}

// GetUploadDir returns the absolute uploads directory path
func (c *AppConfig) GetUploadDir() string {
	return c.Storage.UploadDirectory
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// JobSearchTimeout returns the outbound request timeout; zero means none.
func (c *AppConfig) JobSearchTimeout() time.Duration {
	return time.Duration(c.JobSearch.TimeoutSeconds) * time.Second
}

// CacheTTL returns the job cache entry lifetime.
func (c *AppConfig) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{c.Storage.UploadDirectory}
	if c.History.Enabled {
		dirs = append(dirs, filepath.Dir(c.History.DBPath))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
