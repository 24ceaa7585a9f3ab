// Package config loads runtime configuration from the environment, with an
// optional .env file for local development. CLI flags override whatever is
// loaded here.
package config

import (
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application's configuration.
type Config struct {
	DBPath        string
	MaxChainCalls int
	DiffContext   int
	MaxFileBytes  int64
	Workers       int
	Debug         bool
}

// Load reads configuration from CHAINKT_* environment variables, falling back
// to defaults. A .env file in the working directory is read first when
// present; real environment variables win over it.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBPath:        ".chainkt/chainkt.db",
		MaxChainCalls: 3,
		DiffContext:   3,
		MaxFileBytes:  2 << 20,
		Workers:       runtime.NumCPU(),
	}

	if v := os.Getenv("CHAINKT_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("CHAINKT_MAX_CHAIN_CALLS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxChainCalls = n
		}
	}
	if v := os.Getenv("CHAINKT_DIFF_CONTEXT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.DiffContext = n
		}
	}
	if v := os.Getenv("CHAINKT_MAX_FILE_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MaxFileBytes = n
		}
	}
	if v := os.Getenv("CHAINKT_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("CHAINKT_DEBUG"); v == "1" || v == "true" {
		cfg.Debug = true
	}

	return cfg
}
