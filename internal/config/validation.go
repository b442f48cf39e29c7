package config

import (
	"fmt"

	"github.com/LeJamon/goShadowOracle/internal/oracle"
	"github.com/LeJamon/goShadowOracle/internal/storage/compression"
	"github.com/LeJamon/goShadowOracle/internal/storage/kv"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

// ValidateConfig performs validation on the complete configuration
func ValidateConfig(config *Config) error {
	if err := config.Ledger.Validate(); err != nil {
		return fmt.Errorf("ledger config validation failed: %w", err)
	}
	if err := config.Clock.Validate(); err != nil {
		return fmt.Errorf("clock config validation failed: %w", err)
	}
	if err := config.Oracle.Validate(); err != nil {
		return fmt.Errorf("oracle config validation failed: %w", err)
	}
	if err := config.Log.Validate(); err != nil {
		return fmt.Errorf("log config validation failed: %w", err)
	}
	if err := config.Export.Validate(); err != nil {
		return fmt.Errorf("export config validation failed: %w", err)
	}
	return nil
}

// Validate validates the ledger configuration
func (c *LedgerConfig) Validate() error {
	if !contains(kv.Backends, c.Backend) {
		return fmt.Errorf("backend must be one of %v, got %q", kv.Backends, c.Backend)
	}
	if c.Backend != kv.BackendMemory && c.Path == "" {
		return fmt.Errorf("path is required for the %s backend", c.Backend)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must be non-negative, got %d", c.CacheSize)
	}
	if !contains(compression.Available(), c.Compression) {
		return fmt.Errorf("compression must be one of %v, got %q", compression.Available(), c.Compression)
	}
	return nil
}

// Validate validates the clock configuration
func (c *ClockConfig) Validate() error {
	if c.UnixTimestamp < 0 {
		return fmt.Errorf("unix_timestamp must be non-negative, got %d", c.UnixTimestamp)
	}
	return nil
}

// Validate validates the oracle configuration
func (c *OracleConfig) Validate() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("at least one provider must be enabled")
	}
	for _, p := range c.Providers {
		if !contains(oracle.Providers, p) {
			return fmt.Errorf("unknown provider %q (want one of %v)", p, oracle.Providers)
		}
	}
	pyth, switchboard, chainlink, err := c.ProgramIDs()
	if err != nil {
		return fmt.Errorf("invalid program id: %w", err)
	}

	// overrides are compared with the defaults they leave in place
	effective := []struct {
		provider string
		id       solana.PublicKey
		fallback solana.PublicKey
	}{
		{oracle.ProviderPyth, pyth, oracle.PythProgramID},
		{oracle.ProviderSwitchboard, switchboard, oracle.SwitchboardProgramID},
		{oracle.ProviderChainlink, chainlink, oracle.ChainlinkProgramID},
	}
	owners := make(map[solana.PublicKey]string, len(effective))
	for _, e := range effective {
		id := e.id
		if id.IsZero() {
			id = e.fallback
		}
		if other, ok := owners[id]; ok {
			return fmt.Errorf("%s and %s share program id %s", other, e.provider, id)
		}
		owners[id] = e.provider
	}
	return nil
}

// Validate validates the log configuration
func (c *LogConfig) Validate() error {
	if _, err := logrus.ParseLevel(c.Level); err != nil {
		return err
	}
	if c.Format != "text" && c.Format != "json" {
		return fmt.Errorf("format must be text or json, got %q", c.Format)
	}
	return nil
}

// Validate validates the export configuration
func (c *ExportConfig) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
