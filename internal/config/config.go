package config

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// Config represents the complete shadoworacle configuration.
type Config struct {
	Ledger LedgerConfig `toml:"ledger" mapstructure:"ledger"`
	Clock  ClockConfig  `toml:"clock" mapstructure:"clock"`
	Oracle OracleConfig `toml:"oracle" mapstructure:"oracle"`
	Log    LogConfig    `toml:"log" mapstructure:"log"`
	Export ExportConfig `toml:"export" mapstructure:"export"`

	// Internal fields for configuration management
	configPath string `toml:"-" mapstructure:"-"`
}

// LedgerConfig selects the storage behind the reference ledger.
type LedgerConfig struct {
	Backend     string `toml:"backend" mapstructure:"backend"`
	Path        string `toml:"path" mapstructure:"path"`
	CacheSize   int    `toml:"cache_size" mapstructure:"cache_size"`
	Compression string `toml:"compression" mapstructure:"compression"`
}

// ClockConfig is the initial clock of a fresh ledger. A persisted clock wins.
type ClockConfig struct {
	UnixTimestamp int64  `toml:"unix_timestamp" mapstructure:"unix_timestamp"`
	Slot          uint64 `toml:"slot" mapstructure:"slot"`
}

// Start returns the configured start time.
func (c ClockConfig) Start() time.Time {
	return time.Unix(c.UnixTimestamp, 0).UTC()
}

// OracleConfig configures the providers.
type OracleConfig struct {
	Lamports  uint64   `toml:"lamports" mapstructure:"lamports"`
	Providers []string `toml:"providers" mapstructure:"providers"`

	// Program ID overrides, base58. Empty keeps the mainnet program.
	PythProgramID        string `toml:"pyth_program_id" mapstructure:"pyth_program_id"`
	SwitchboardProgramID string `toml:"switchboard_program_id" mapstructure:"switchboard_program_id"`
	ChainlinkProgramID   string `toml:"chainlink_program_id" mapstructure:"chainlink_program_id"`
}

// ProgramIDs parses the program ID overrides. Zero keys mean no override.
func (c OracleConfig) ProgramIDs() (pyth, switchboard, chainlink solana.PublicKey, err error) {
	parse := func(s string) (solana.PublicKey, error) {
		if s == "" {
			return solana.PublicKey{}, nil
		}
		return solana.PublicKeyFromBase58(s)
	}
	if pyth, err = parse(c.PythProgramID); err != nil {
		return
	}
	if switchboard, err = parse(c.SwitchboardProgramID); err != nil {
		return
	}
	chainlink, err = parse(c.ChainlinkProgramID)
	return
}

// Enabled reports whether provider is listed in Providers.
func (c OracleConfig) Enabled(provider string) bool {
	for _, p := range c.Providers {
		if p == provider {
			return true
		}
	}
	return false
}

// LogConfig configures logrus.
type LogConfig struct {
	Level  string `toml:"level" mapstructure:"level"`
	Format string `toml:"format" mapstructure:"format"`
}

// ExportConfig configures the account export.
type ExportConfig struct {
	Dir     string `toml:"dir" mapstructure:"dir"`
	Workers int    `toml:"workers" mapstructure:"workers"`
}

// GetConfigPath returns the path of the loaded configuration file, if any.
func (c *Config) GetConfigPath() string {
	return c.configPath
}
