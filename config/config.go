package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds kitfinder configuration.
type Config struct {
	CatalogSource    string        `yaml:"catalog"`
	Timeout          time.Duration `yaml:"timeout"`
	MaxRetries       int           `yaml:"max_retries"`
	RetryBackoff     time.Duration `yaml:"retry_backoff"`
	RetryBackoffMax  time.Duration `yaml:"retry_backoff_max"`
	UserAgent        string        `yaml:"user_agent"`
	RespectRobotsTxt bool          `yaml:"respect_robots"`

	Workers      int    `yaml:"workers"`
	BatchSize    int    `yaml:"batch_size"`
	OutputFile   string `yaml:"output"`
	OutputFormat string `yaml:"format"` // csv, json, or dual

	ListenAddr  string  `yaml:"listen"`
	MetricsAddr string  `yaml:"metrics_addr"`
	PrefsDir    string  `yaml:"prefs_dir"`
	CacheSize   int     `yaml:"cache_size"`
	RateLimit   float64 `yaml:"rate_limit"`
	RateBurst   int     `yaml:"rate_burst"`

	RecommendationLimit int `yaml:"recommendations"`
	CompareLimit        int `yaml:"compare_limit"`

	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns defaults for a local catalog file.
func DefaultConfig() *Config {
	return &Config{
		CatalogSource:       "kits.json",
		Timeout:             10 * time.Second,
		MaxRetries:          2,
		RetryBackoff:        200 * time.Millisecond,
		RetryBackoffMax:     2 * time.Second,
		UserAgent:           "kitfinder/1.0 (+https://github.com/routerhaus/kitfinder)",
		RespectRobotsTxt:    false,
		Workers:             4,
		BatchSize:           50,
		OutputFile:          "output/kits.csv",
		OutputFormat:        "csv",
		ListenAddr:          ":8080",
		MetricsAddr:         "",
		PrefsDir:            "",
		CacheSize:           256,
		RateLimit:           20,
		RateBurst:           40,
		RecommendationLimit: 6,
		CompareLimit:        4,
		Verbose:             false,
	}
}

// LoadFile overlays the YAML file at path onto cfg. Keys missing from the
// file keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// IsRemote reports whether the catalog is fetched over HTTP.
func (c *Config) IsRemote() bool {
	return strings.HasPrefix(c.CatalogSource, "http://") || strings.HasPrefix(c.CatalogSource, "https://")
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.CatalogSource == "" {
		return fmt.Errorf("catalog source cannot be empty")
	}
	if c.IsRemote() {
		parsedURL, err := url.Parse(c.CatalogSource)
		if err != nil {
			return fmt.Errorf("invalid catalog URL: %w", err)
		}
		if parsedURL.Host == "" {
			return fmt.Errorf("catalog URL must include a host")
		}
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.RetryBackoff < 0 {
		return fmt.Errorf("retry backoff cannot be negative")
	}
	if c.RetryBackoffMax < 0 {
		return fmt.Errorf("retry backoff max cannot be negative")
	}
	if c.RetryBackoffMax > 0 && c.RetryBackoff > c.RetryBackoffMax {
		return fmt.Errorf("retry backoff (%s) cannot exceed retry backoff max (%s)", c.RetryBackoff, c.RetryBackoffMax)
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}

	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}
	if c.OutputFormat != "csv" && c.OutputFormat != "json" && c.OutputFormat != "dual" {
		return fmt.Errorf("output format must be csv, json, or dual")
	}

	if c.CacheSize < 0 {
		return fmt.Errorf("cache size cannot be negative")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit cannot be negative")
	}
	if c.RateLimit > 0 && c.RateBurst <= 0 {
		return fmt.Errorf("rate burst must be positive when rate limiting is enabled")
	}
	if c.RecommendationLimit <= 0 {
		return fmt.Errorf("recommendation limit must be positive")
	}
	if c.CompareLimit <= 0 {
		return fmt.Errorf("compare limit must be positive")
	}

	return nil
}
