// Package envconfig reads tokenizer settings from the environment.
package envconfig

import (
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Var returns an environment variable stripped of leading and trailing
// quotes and spaces.
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}

// LogLevel returns the log level set via MINBPE_DEBUG.
//
// A true boolean selects debug; an integer n selects level -4n, so
// MINBPE_DEBUG=2 enables trace records.
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("MINBPE_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}

	return level
}

// Int returns a function reading a non-negative integer with a default.
func Int(key string, defaultValue int) func() int {
	return func() int {
		if s := Var(key); s != "" {
			n, err := strconv.Atoi(s)
			if err == nil && n >= 0 {
				return n
			}
			slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
		}
		return defaultValue
	}
}

var (
	// CacheSize is the number of encoded chunks memoized per tokenizer. 0 disables the cache.
	CacheSize = Int("MINBPE_CACHE_SIZE", 4096)
	// NumWorkers bounds the goroutines used for batch encoding and vocabulary recovery.
	NumWorkers = Int("MINBPE_NUM_WORKERS", runtime.NumCPU())
)

// EnvVar describes a setting.
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap returns the current settings keyed by variable name.
func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"MINBPE_DEBUG":       {"MINBPE_DEBUG", LogLevel(), "Show additional debug information (e.g. MINBPE_DEBUG=1)"},
		"MINBPE_CACHE_SIZE":  {"MINBPE_CACHE_SIZE", CacheSize(), "Encoded chunks cached per tokenizer (default 4096, 0 disables)"},
		"MINBPE_NUM_WORKERS": {"MINBPE_NUM_WORKERS", NumWorkers(), "Maximum worker goroutines (default number of CPUs)"},
	}
}
