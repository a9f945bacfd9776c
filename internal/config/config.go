// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings such as name, environment, metrics, and logging levels.
type App struct {
	Name        string `yaml:"name"`
	Env         string `yaml:"env"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Paper configures the in-memory ledger used for dry runs.
type Paper struct {
	Enabled          bool     `yaml:"enabled"`
	Admins           []string `yaml:"admins"`
	StartingLamports uint64   `yaml:"starting_lamports"`
	JournalPath      string   `yaml:"journal_path"`
	StatePath        string   `yaml:"state_path"`
}

// Risk encodes guard-rails for how much a transfer may pay out.
type Risk struct {
	MaxFeePerTransfer uint64 `yaml:"max_fee_per_transfer"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App    App    `yaml:"app"`
	Hub    Hub    `yaml:"hub"`
	Wallet Wallet `yaml:"wallet"`
	Paper  Paper  `yaml:"paper"`
	Risk   Risk   `yaml:"risk"`
}

// Environment variables that override file values.
const (
	EnvRPCURL     = "FEEHUB_RPC_URL"
	EnvProgramID  = "FEEHUB_PROGRAM_ID"
	EnvCommitment = "FEEHUB_COMMITMENT"
)

// Load reads a YAML file from disk and hydrates a Config struct.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ApplyEnv overlays FEEHUB_* environment variables onto cfg.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvRPCURL); v != "" {
		c.Hub.RPCURL = v
	}
	if v := os.Getenv(EnvProgramID); v != "" {
		c.Hub.ProgramID = v
	}
	if v := os.Getenv(EnvCommitment); v != "" {
		c.Hub.Commitment = v
	}
}

// ErrMissingRPCURL is returned when no endpoint is configured. There is no
// implicit default cluster.
var ErrMissingRPCURL = errors.New("config: hub.rpc_url is required unless paper.enabled is set")

// Validate checks the fields the hub client cannot run without.
func (c *Config) Validate() error {
	if !c.Paper.Enabled && strings.TrimSpace(c.Hub.RPCURL) == "" {
		return ErrMissingRPCURL
	}
	switch strings.ToLower(c.Hub.Commitment) {
	case "", "processed", "confirmed", "finalized":
	default:
		return fmt.Errorf("config: unknown commitment %q", c.Hub.Commitment)
	}
	return nil
}
