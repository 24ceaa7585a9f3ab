package config

import (
	"runtime"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"CHAINKT_DB", "CHAINKT_MAX_CHAIN_CALLS", "CHAINKT_DIFF_CONTEXT",
		"CHAINKT_MAX_FILE_BYTES", "CHAINKT_WORKERS", "CHAINKT_DEBUG",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.DBPath != ".chainkt/chainkt.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.MaxChainCalls != 3 {
		t.Errorf("MaxChainCalls = %d", cfg.MaxChainCalls)
	}
	if cfg.DiffContext != 3 {
		t.Errorf("DiffContext = %d", cfg.DiffContext)
	}
	if cfg.MaxFileBytes != 2<<20 {
		t.Errorf("MaxFileBytes = %d", cfg.MaxFileBytes)
	}
	if cfg.Workers != runtime.NumCPU() {
		t.Errorf("Workers = %d", cfg.Workers)
	}
	if cfg.Debug {
		t.Error("Debug = true by default")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CHAINKT_DB", "/tmp/staging.db")
	t.Setenv("CHAINKT_MAX_CHAIN_CALLS", "5")
	t.Setenv("CHAINKT_DIFF_CONTEXT", "0")
	t.Setenv("CHAINKT_MAX_FILE_BYTES", "1024")
	t.Setenv("CHAINKT_WORKERS", "2")
	t.Setenv("CHAINKT_DEBUG", "true")

	cfg := Load()
	if cfg.DBPath != "/tmp/staging.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.MaxChainCalls != 5 {
		t.Errorf("MaxChainCalls = %d", cfg.MaxChainCalls)
	}
	if cfg.DiffContext != 0 {
		t.Errorf("DiffContext = %d", cfg.DiffContext)
	}
	if cfg.MaxFileBytes != 1024 {
		t.Errorf("MaxFileBytes = %d", cfg.MaxFileBytes)
	}
	if cfg.Workers != 2 {
		t.Errorf("Workers = %d", cfg.Workers)
	}
	if !cfg.Debug {
		t.Error("Debug = false with CHAINKT_DEBUG=true")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("CHAINKT_MAX_CHAIN_CALLS", "not-a-number")
	t.Setenv("CHAINKT_WORKERS", "-3")
	t.Setenv("CHAINKT_MAX_FILE_BYTES", "0")
	t.Setenv("CHAINKT_DEBUG", "yes")

	cfg := Load()
	if cfg.MaxChainCalls != 3 {
		t.Errorf("MaxChainCalls = %d, want the default", cfg.MaxChainCalls)
	}
	if cfg.Workers != runtime.NumCPU() {
		t.Errorf("Workers = %d, want the default", cfg.Workers)
	}
	if cfg.MaxFileBytes != 2<<20 {
		t.Errorf("MaxFileBytes = %d, want the default", cfg.MaxFileBytes)
	}
	if cfg.Debug {
		t.Error("Debug must only accept 1/true")
	}
}
