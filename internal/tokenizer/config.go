package tokenizer

import (
	"log/slog"
	"os"

	"github.com/born-ml/minbpe/internal/envconfig"
	"github.com/born-ml/minbpe/internal/logutil"
	"github.com/born-ml/minbpe/internal/parallel"
)

// Config holds tokenizer settings. Zero fields take their defaults.
type Config struct {
	// Logger receives training progress (Info) and per-call encode and
	// decode records (Trace).
	Logger *slog.Logger

	// CacheSize is the number of chunk encodings memoized per tokenizer.
	// Zero uses MINBPE_CACHE_SIZE; a negative value disables the cache.
	CacheSize int

	// Parallel controls EncodeBatch and merge recovery for compat tokenizers.
	Parallel parallel.Config
}

// DefaultConfig returns the configuration described by the environment.
func DefaultConfig() Config {
	return Config{
		Logger:    logutil.NewLogger(os.Stderr, envconfig.LogLevel()),
		CacheSize: envconfig.CacheSize(),
		Parallel:  parallel.DefaultConfig(),
	}
}

func (c Config) withDefaults() Config {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.CacheSize == 0 {
		c.CacheSize = envconfig.CacheSize()
	}
	if c.Parallel == (parallel.Config{}) {
		c.Parallel = parallel.DefaultConfig()
	}
	return c
}
