// Package config loads application configuration from environment variables.
// Every value has a default so the service starts with an empty environment.
package config

import (
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to integers
	"strings" // strings trims and compares values
	"time"    // time parses durations
)

// The listening port, the artifact location and the body limit are fixed
// and are not read from the environment.
const (
	Port      = "5000"                                 // HTTP port to listen on
	ModelPath = "output/iris_random_forest_model.json" // artifact loaded at startup
	BodyLimit = "1M"                                   // largest accepted request body
)

// Config holds all runtime configuration values. Each field corresponds to
// one environment variable or to a group of them.
type Config struct {
	Env             string        // application environment (e.g. "dev", "prod")
	ShutdownTimeout time.Duration // graceful shutdown budget
	Log             LogConfig     // logger level and rotating file sink
	Cache           CacheConfig   // prediction cache tiers
	Events          EventsConfig  // RabbitMQ prediction events
}

// LogConfig controls the zap logger and its optional rotating file sink.
type LogConfig struct {
	Level      string // debug, info, warn or error
	File       string // empty disables the file sink
	MaxSizeMB  int    // rotate after this many megabytes
	MaxBackups int    // rotated files to keep
	MaxAgeDays int    // days to keep rotated files
}

// Load reads configuration values from environment variables and returns a
// Config. Unset or malformed values fall back to their defaults.
func Load() Config {
	return Config{
		Env:             getenv("APP_ENV", "dev"),                                  // environment (dev/test/prod)
		ShutdownTimeout: parseDur(getenv("SHUTDOWN_TIMEOUT", "5s"), 5*time.Second), // time allowed for in-flight requests
		Log:             LoadLogConfig(),                                           // LOG_* variables
		Cache:           LoadCacheConfig(),                                         // CACHE_* and REDIS_* variables
		Events:          LoadEventsConfig(),                                        // EVENTS_* and broker URL
	}
}

// IsDev reports whether the service runs in a development environment.
func (c Config) IsDev() bool {
	return strings.EqualFold(c.Env, "dev") || strings.EqualFold(c.Env, "development") // both spellings are accepted
}

// LoadLogConfig reads LOG_* variables.
func LoadLogConfig() LogConfig {
	return LogConfig{
		Level:      getenv("LOG_LEVEL", "info"),                // minimum level
		File:       os.Getenv("LOG_FILE"),                      // file sink path (empty allowed)
		MaxSizeMB:  atoi(getenv("LOG_MAX_SIZE_MB", "50"), 50),  // rotation size
		MaxBackups: atoi(getenv("LOG_MAX_BACKUPS", "3"), 3),    // rotated files kept
		MaxAgeDays: atoi(getenv("LOG_MAX_AGE_DAYS", "28"), 28), // retention in days
	}
}

// getenv returns the trimmed value of key, or def when it is unset or blank.
func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// envBool understands the usual spellings of true and false; anything else
// yields def.
func envBool(key string, def bool) bool {
	switch strings.ToLower(getenv(key, "")) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

// atoi is like strconv.Atoi but falls back to def on malformed input.
func atoi(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// parseDur accepts time.ParseDuration syntax ("750ms", "10m"). Zero and
// negative durations fall back to def.
func parseDur(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
