package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// CacheCfg controls response caching. An empty RedisAddr keeps the cache
// purely in-process.
type CacheCfg struct {
	Enabled   bool
	RedisAddr string
	TTL       time.Duration
	LocalSize int
	LocalTTL  time.Duration
	OpTimeout time.Duration
}

type Config struct {
	Addr       string
	LogLevel   string
	LogConsole bool
	LogSampleN int

	CatalogPath string
	HeavyPath   string
	MaxCursors  int

	DefaultLimit int
	MaxLimit     int

	Watch bool
	Cache CacheCfg

	ShutdownGrace time.Duration
}

func FromEnv() Config {
	cursors := getint("STARFOV_MAX_CURSORS", 8)
	if cursors < 1 {
		cursors = 1
	}

	defLimit := getint("STARFOV_DEFAULT_LIMIT", 200)
	if defLimit <= 0 {
		defLimit = 200
	}
	maxLimit := getint("STARFOV_MAX_LIMIT", 0)
	if maxLimit < 0 {
		maxLimit = 0
	}

	ttl := getduration("STARFOV_CACHE_TTL", 60*time.Second)
	localSize := getint("STARFOV_CACHE_LOCAL_SIZE", 1024)
	if localSize < 0 {
		localSize = 0
	}

	return Config{
		Addr:       getenv("STARFOV_ADDR", ":8990"),
		LogLevel:   getenv("STARFOV_LOG_LEVEL", "info"),
		LogConsole: getbool("STARFOV_LOG_CONSOLE", false),
		LogSampleN: getint("STARFOV_LOG_SAMPLE_N", 0),

		CatalogPath: getenv("STARFOV_CATALOG", "gaia.sqlite3"),
		HeavyPath:   getenv("STARFOV_HEAVY", ""),
		MaxCursors:  cursors,

		DefaultLimit: defLimit,
		MaxLimit:     maxLimit,

		Watch: getbool("STARFOV_WATCH", true),
		Cache: CacheCfg{
			Enabled:   getbool("STARFOV_CACHE_ENABLED", false),
			RedisAddr: getenv("STARFOV_REDIS_ADDR", ""),
			TTL:       ttl,
			LocalSize: localSize,
			LocalTTL:  getduration("STARFOV_CACHE_LOCAL_TTL", ttl/4),
			OpTimeout: getduration("STARFOV_CACHE_OP_TIMEOUT", 250*time.Millisecond),
		},

		ShutdownGrace: getduration("STARFOV_SHUTDOWN_GRACE", 10*time.Second),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
