package config

import (
	"github.com/LeJamon/goShadowOracle/internal/oracle"
	"github.com/spf13/viper"
)

// DefaultStartTimestamp is 2024-01-01T00:00:00Z.
const DefaultStartTimestamp int64 = 1704067200

// setDefaults sets every default value
func setDefaults(v *viper.Viper) {
	v.SetDefault("ledger.backend", "pebble")
	v.SetDefault("ledger.path", ".shadoworacle/ledger")
	v.SetDefault("ledger.cache_size", 1024)
	v.SetDefault("ledger.compression", "lz4")

	v.SetDefault("clock.unix_timestamp", DefaultStartTimestamp)
	v.SetDefault("clock.slot", 1)

	v.SetDefault("oracle.lamports", oracle.DefaultLamports)
	v.SetDefault("oracle.providers", oracle.Providers)
	v.SetDefault("oracle.pyth_program_id", "")
	v.SetDefault("oracle.switchboard_program_id", "")
	v.SetDefault("oracle.chainlink_program_id", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("export.dir", "accounts")
	v.SetDefault("export.workers", 4)
}
