package node

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := ValidateConfig(DefaultConfig()); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateConfig(t *testing.T) {
	t.Run("unknown network rejected", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Network = "moonnet"
		if err := ValidateConfig(cfg); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("empty datadir rejected", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.DataDir = "  "
		if err := ValidateConfig(cfg); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("bad log level rejected", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.LogLevel = "loud"
		if err := ValidateConfig(cfg); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("no file -> defaults", func(t *testing.T) {
		cfg, err := LoadConfig("")
		if err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}
		if cfg.Network != "mainnet" || cfg.LogLevel != "info" {
			t.Fatalf("unexpected defaults: %+v", cfg)
		}
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		body := "network: regtest\nlogLevel: debug\n"
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatalf("write config: %v", err)
		}
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}
		if cfg.Network != "regtest" || cfg.LogLevel != "debug" {
			t.Fatalf("file values not applied: %+v", cfg)
		}
	})

	t.Run("environment overrides file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("network: regtest\n"), 0o600); err != nil {
			t.Fatalf("write config: %v", err)
		}
		t.Setenv("SABLE_NETWORK", "testnet")
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}
		if cfg.Network != "testnet" {
			t.Fatalf("expected testnet, got %s", cfg.Network)
		}
	})

	t.Run("invalid file content rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("network: moonnet\n"), 0o600); err != nil {
			t.Fatalf("write config: %v", err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Fatalf("expected error for unknown network")
		}
	})

	t.Run("missing file rejected", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestConfigParams(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Network = "regtest"
	params, err := cfg.Params()
	if err != nil {
		t.Fatalf("Params: %v", err)
	}
	if !params.NoRetargeting {
		t.Fatalf("regtest params should disable retargeting")
	}
}
