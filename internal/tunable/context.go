package tunable

import (
	"os"
	"strconv"
	"time"

	"github.com/samcharles93/kerntune/internal/logger"
)

// Config is an immutable snapshot of the tuning knobs. A search captures the
// snapshot once at its start and never re-reads it mid-algorithm.
type Config struct {
	// Enable gates the whole tunable-op subsystem. When false, dispatch goes
	// straight to the default candidate without touching the results cache.
	Enable bool

	// Tuning gates live measurement. When false, a cache miss falls back to
	// the default candidate instead of running a search.
	Tuning bool

	// NumericsCheck gates output validation against the reference candidate.
	NumericsCheck bool

	// MaxWarmupDuration caps warmup wall time. Negative means unset.
	// Zero skips warmup entirely.
	MaxWarmupDuration time.Duration

	// MaxWarmupIters caps warmup iterations. Negative means unset.
	MaxWarmupIters int

	// MaxTuningDuration caps timed-measurement wall time per candidate.
	// Zero or negative means unset.
	MaxTuningDuration time.Duration

	// MaxTuningIters caps timed iterations per candidate. Zero or negative
	// means unset.
	MaxTuningIters int

	// RotatingBufferSize is the byte budget for rotated parameter copies.
	// Zero disables buffer rotation.
	RotatingBufferSize int

	// ICacheFlush interleaves a cache disturbance between every timed call.
	ICacheFlush bool

	// ICacheFlushIters runs the disturbance this many times before a search
	// begins.
	ICacheFlushIters int
}

// DefaultConfig enables tuning with validation on and every cap unset: one
// warmup iteration and one hundred tuning iterations per candidate.
func DefaultConfig() Config {
	return Config{
		Enable:            true,
		Tuning:            true,
		NumericsCheck:     true,
		MaxWarmupDuration: -1,
		MaxWarmupIters:    -1,
	}
}

// ConfigFromEnv overlays KERNTUNE_* environment variables onto base.
func ConfigFromEnv(base Config) Config {
	cfg := base
	envBool("KERNTUNE_ENABLED", &cfg.Enable)
	envBool("KERNTUNE_TUNING", &cfg.Tuning)
	envBool("KERNTUNE_NUMERICS_CHECK", &cfg.NumericsCheck)
	envBool("KERNTUNE_ICACHE_FLUSH", &cfg.ICacheFlush)
	envInt("KERNTUNE_ICACHE_FLUSH_ITERATIONS", &cfg.ICacheFlushIters)
	envInt("KERNTUNE_MAX_WARMUP_ITERATIONS", &cfg.MaxWarmupIters)
	envInt("KERNTUNE_MAX_TUNING_ITERATIONS", &cfg.MaxTuningIters)
	envMillis("KERNTUNE_MAX_WARMUP_DURATION_MS", &cfg.MaxWarmupDuration)
	envMillis("KERNTUNE_MAX_TUNING_DURATION_MS", &cfg.MaxTuningDuration)
	envInt("KERNTUNE_ROTATING_BUFFER_SIZE", &cfg.RotatingBufferSize)
	return cfg
}

func envBool(key string, dst *bool) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func envInt(key string, dst *int) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envMillis(key string, dst *time.Duration) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = time.Duration(n) * time.Millisecond
		}
	}
}

// Context ties a config snapshot to the results cache and the logging sink.
// One Context may serve many Ops; its fields are read-only after creation.
type Context struct {
	cfg     Config
	cache   ResultsCache
	log     logger.Logger
	flushFn func()
}

// NewContext builds a tuning context. A nil cache disables result caching
// (every enabled invoke re-tunes); a nil log falls back to the default
// logger.
func NewContext(cfg Config, cache ResultsCache, log logger.Logger) *Context {
	if log == nil {
		log = logger.Default()
	}
	return &Context{
		cfg:     cfg,
		cache:   cache,
		log:     log,
		flushFn: disturbCaches,
	}
}

// Config returns the context's config snapshot.
func (c *Context) Config() Config { return c.cfg }

// SetFlushFunc replaces the cache-disturbance hook. Intended for platforms
// with a real instruction-cache flush primitive. Must be called before
// concurrent use begins.
func (c *Context) SetFlushFunc(f func()) {
	if f != nil {
		c.flushFn = f
	}
}
