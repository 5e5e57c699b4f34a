package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvString returns the trimmed value of key and whether it was set.
func EnvString(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}

// EnvInt parses key as an integer.
func EnvInt(key string) (int, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, true, fmt.Errorf("%s: %w", key, err)
	}
	return n, true, nil
}

// EnvDuration parses key as a Go duration such as "10s".
func EnvDuration(key string) (time.Duration, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, true, fmt.Errorf("%s: %w", key, err)
	}
	return d, true, nil
}

// ApplyEnv overlays the KITFINDER_* environment variables onto c.
func (c *Config) ApplyEnv() error {
	if v, ok := EnvString("KITFINDER_CATALOG"); ok {
		c.CatalogSource = v
	}
	if v, ok := EnvString("KITFINDER_LISTEN"); ok {
		c.ListenAddr = v
	}
	if v, ok := EnvString("KITFINDER_METRICS_ADDR"); ok {
		c.MetricsAddr = v
	}
	if v, ok := EnvString("KITFINDER_PREFS_DIR"); ok {
		c.PrefsDir = v
	}
	if v, ok := EnvString("KITFINDER_OUTPUT"); ok {
		c.OutputFile = v
	}
	if v, ok, err := EnvInt("KITFINDER_WORKERS"); err != nil {
		return err
	} else if ok {
		c.Workers = v
	}
	if v, ok, err := EnvInt("KITFINDER_MAX_RETRIES"); err != nil {
		return err
	} else if ok {
		c.MaxRetries = v
	}
	if v, ok, err := EnvDuration("KITFINDER_TIMEOUT"); err != nil {
		return err
	} else if ok {
		c.Timeout = v
	}
	return nil
}
