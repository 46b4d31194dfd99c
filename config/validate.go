package config

import (
	"fmt"
	"strings"
)

// Validate checks runtime node config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Network != Mainnet && cfg.Network != Testnet {
		return fmt.Errorf("network must be %q or %q", Mainnet, Testnet)
	}
	if cfg.RPC.Port < 0 || cfg.RPC.Port > 65535 {
		return fmt.Errorf("rpc.port must be in range [0, 65535]")
	}
	if cfg.RPC.AdminTokenHash != "" && !strings.HasPrefix(cfg.RPC.AdminTokenHash, "$argon2id$") {
		return fmt.Errorf("rpc.admintoken must be an argon2id encoded hash")
	}
	if cfg.Sampler.IntervalSec <= 0 {
		return fmt.Errorf("sampler.interval must be positive")
	}
	if cfg.Sampler.LeaderboardSize < 1 {
		return fmt.Errorf("sampler.leaderboard must be at least 1")
	}
	if cfg.Snapshot.Enabled {
		if cfg.Snapshot.IntervalSec <= 0 {
			return fmt.Errorf("snapshot.interval must be positive")
		}
		if cfg.Snapshot.Keep < 1 {
			return fmt.Errorf("snapshot.keep must be at least 1")
		}
	}
	switch cfg.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn, or error")
	}
	return nil
}
