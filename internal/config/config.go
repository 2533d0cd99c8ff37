package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSourceURLTemplate = "http://www.stadtentwicklung.berlin.de/umwelt/luftqualitaet/de/messnetz/tageswerte/download/%s.html"

	defaultConfigFile     = "blume.yml"
	defaultPort           = 8080
	defaultRequestTimeout = 30 * time.Second
	defaultMaxBodyBytes   = 5 * 1024 * 1024
	defaultRecentDays     = 7
	defaultRefetchWindow  = 5 * 24 * time.Hour
	defaultCrawlDelay     = time.Second
)

// Config holds runtime settings shared by the API and the watcher.
type Config struct {
	AppEnv   string
	LogLevel slog.Level

	DatabaseURL string
	DBDriver    string

	Port        int
	BearerToken string

	SourceURLTemplate string
	RequestTimeout    time.Duration
	MaxBodyBytes      int64
	RecentDays        int
	RefetchWindow     time.Duration
	CrawlDelay        time.Duration
	DryRun            bool
}

// fileSection is one environment block of the optional YAML file.
type fileSection struct {
	DatabaseURL       string `yaml:"database_url"`
	DBDriver          string `yaml:"db_driver"`
	Port              int    `yaml:"port"`
	BearerToken       string `yaml:"bearer_token"`
	SourceURLTemplate string `yaml:"source_url_template"`
	RequestTimeout    string `yaml:"request_timeout"`
	MaxBodyBytes      int64  `yaml:"max_body_bytes"`
	RecentDays        int    `yaml:"recent_days"`
	RefetchWindow     string `yaml:"refetch_window"`
	CrawlDelay        string `yaml:"crawl_delay"`
	LogLevel          string `yaml:"log_level"`
}

// Load reads configuration from .env, the optional YAML file and environment
// variables, in increasing order of precedence.
func Load() (Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := Config{
		AppEnv:            "dev",
		LogLevel:          slog.LevelInfo,
		DBDriver:          "postgres",
		Port:              defaultPort,
		SourceURLTemplate: DefaultSourceURLTemplate,
		RequestTimeout:    defaultRequestTimeout,
		MaxBodyBytes:      defaultMaxBodyBytes,
		RecentDays:        defaultRecentDays,
		RefetchWindow:     defaultRefetchWindow,
		CrawlDelay:        defaultCrawlDelay,
	}

	if v := env("APP_ENV"); v != "" {
		cfg.AppEnv = v
	}
	switch cfg.AppEnv {
	case "dev", "prod":
	default:
		return cfg, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", cfg.AppEnv)
	}

	path := env("CONFIG_FILE")
	required := path != ""
	if path == "" {
		path = defaultConfigFile
	}
	if err := cfg.applyFile(path, required); err != nil {
		return cfg, err
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

// Validate checks the settings every binary depends on.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	switch c.DBDriver {
	case "postgres", "sqlite", "mysql":
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if !strings.Contains(c.SourceURLTemplate, "%s") {
		return fmt.Errorf("SOURCE_URL_TEMPLATE must contain %%s: %s", c.SourceURLTemplate)
	}
	if c.RecentDays <= 0 {
		return fmt.Errorf("invalid RECENT_DAYS: %d", c.RecentDays)
	}
	return nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// applyFile overlays the section of the YAML file matching AppEnv. The file
// uses the long environment names, e.g.
//
//	development:
//	  database_url: postgres://localhost/blume
//	production:
//	  database_url: postgres://db/blume
func (c *Config) applyFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	var sections map[string]fileSection
	if err := yaml.Unmarshal(data, &sections); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	name := "development"
	if c.AppEnv == "prod" {
		name = "production"
	}
	sec, ok := sections[name]
	if !ok {
		return nil
	}

	if sec.DatabaseURL != "" {
		c.DatabaseURL = sec.DatabaseURL
	}
	if sec.DBDriver != "" {
		c.DBDriver = sec.DBDriver
	}
	if sec.Port > 0 {
		c.Port = sec.Port
	}
	if sec.BearerToken != "" {
		c.BearerToken = sec.BearerToken
	}
	if sec.SourceURLTemplate != "" {
		c.SourceURLTemplate = sec.SourceURLTemplate
	}
	if sec.MaxBodyBytes > 0 {
		c.MaxBodyBytes = sec.MaxBodyBytes
	}
	if sec.RecentDays > 0 {
		c.RecentDays = sec.RecentDays
	}
	if sec.LogLevel != "" {
		level, err := parseLogLevel(sec.LogLevel)
		if err != nil {
			return err
		}
		c.LogLevel = level
	}
	for _, d := range []struct {
		raw  string
		name string
		dst  *time.Duration
	}{
		{sec.RequestTimeout, "request_timeout", &c.RequestTimeout},
		{sec.RefetchWindow, "refetch_window", &c.RefetchWindow},
		{sec.CrawlDelay, "crawl_delay", &c.CrawlDelay},
	} {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("invalid %s in %s: %w", d.name, path, err)
		}
		*d.dst = parsed
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := env("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := env("DB_DRIVER"); v != "" {
		c.DBDriver = strings.ToLower(v)
	}

	if portStr := env("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			c.Port = port
		} else {
			return fmt.Errorf("invalid PORT: %s", portStr)
		}
	} else if portStr := env("API_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			c.Port = port
		} else {
			return fmt.Errorf("invalid API_PORT: %s", portStr)
		}
	}

	if v := env("API_BEARER_TOKEN"); v != "" {
		c.BearerToken = v
	}
	if v := env("SOURCE_URL_TEMPLATE"); v != "" {
		c.SourceURLTemplate = v
	}

	if v := env("REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
		}
		c.RequestTimeout = d
	}
	if v := env("REFETCH_WINDOW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid REFETCH_WINDOW: %w", err)
		}
		c.RefetchWindow = d
	}
	if v := env("CRAWL_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid CRAWL_DELAY: %w", err)
		}
		c.CrawlDelay = d
	}

	if v := env("MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid MAX_BODY_BYTES: %s", v)
		}
		c.MaxBodyBytes = n
	}
	if v := env("RECENT_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid RECENT_DAYS: %s", v)
		}
		c.RecentDays = n
	}

	if v := env("LOG_LEVEL"); v != "" {
		level, err := parseLogLevel(v)
		if err != nil {
			return err
		}
		c.LogLevel = level
	}

	dryRun := env("DRY_RUN")
	c.DryRun = dryRun == "1" || strings.EqualFold(dryRun, "true")

	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
