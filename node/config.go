package node

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"sable.dev/sable/consensus"
)

// Config is the node-side configuration. Consensus parameters are not
// configurable here: Network selects one of the built-in parameter sets, so a
// misconfigured node cannot invent its own difficulty schedule.
type Config struct {
	Network  string `yaml:"network"  envconfig:"NETWORK"`
	DataDir  string `yaml:"dataDir"  envconfig:"DATA_DIR"`
	LogLevel string `yaml:"logLevel" envconfig:"LOG_LEVEL"`
}

var allowedLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".sable"
	}
	return filepath.Join(home, ".sable")
}

func DefaultConfig() Config {
	return Config{
		Network:  "mainnet",
		DataDir:  DefaultDataDir(),
		LogLevel: "info",
	}
}

// LoadConfig builds the effective configuration: defaults, then the YAML file
// when one is given, then SABLE_-prefixed environment variables on top.
func LoadConfig(configFile string) (*Config, error) {
	cfg := DefaultConfig()
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}
	if err := envconfig.Process("sable", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.Network) == "" {
		return errors.New("network is required")
	}
	if _, err := consensus.ParamsForNetwork(cfg.Network); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		return errors.New("dataDir is required")
	}
	if _, ok := allowedLogLevels[cfg.LogLevel]; !ok {
		return fmt.Errorf("invalid logLevel %q", cfg.LogLevel)
	}
	return nil
}

// Params resolves the consensus parameter set named by the configuration.
func (c *Config) Params() (*consensus.Params, error) {
	return consensus.ParamsForNetwork(c.Network)
}
