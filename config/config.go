// Package config handles application configuration.
//
// Configuration is split into two categories:
//   - Economy rules: Defined at genesis, validated, changed at runtime
//     only through the admin operations (versioned swap)
//   - Node settings: Runtime configuration, can vary per deployment
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// NetworkType identifies mainnet or testnet.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
)

// =============================================================================
// Node Configuration (runtime, per-deployment settings)
// =============================================================================

// Config holds node-specific runtime configuration.
type Config struct {
	// Core
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`

	// RPC server
	RPC RPCConfig

	// Background sampler (price history + leaderboard)
	Sampler SamplerConfig

	// Snapshot export
	Snapshot SnapshotConfig

	// Logging
	Log LogConfig
}

// RPCConfig holds RPC server settings.
type RPCConfig struct {
	Enabled     bool     `conf:"rpc.enabled"`
	Addr        string   `conf:"rpc.addr"`
	Port        int      `conf:"rpc.port"`
	AllowedIPs  []string `conf:"rpc.allowed"`
	CORSOrigins []string `conf:"rpc.cors"` // Allowed CORS origins ("*" = all).
	EnableWS    bool     `conf:"rpc.ws"`   // Serve the /ws snapshot stream.

	// AdminTokenHash is the argon2id hash of the admin API token,
	// encoded by auth.HashToken. Empty disables all admin_* methods.
	AdminTokenHash string `conf:"rpc.admintoken"`
}

// SamplerConfig holds background sampler settings.
type SamplerConfig struct {
	IntervalSec     int `conf:"sampler.interval"`    // Seconds between ticks.
	LeaderboardSize int `conf:"sampler.leaderboard"` // Entries kept per recompute.
}

// SnapshotConfig holds gzip snapshot export settings.
type SnapshotConfig struct {
	Enabled     bool `conf:"snapshot.enabled"`
	IntervalSec int  `conf:"snapshot.interval"` // Seconds between exports.
	Keep        int  `conf:"snapshot.keep"`     // Snapshot files retained.
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// =============================================================================
// Directory helpers
// =============================================================================

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.hashrush
//	macOS:   ~/Library/Application Support/HashRush
//	Windows: %APPDATA%\HashRush
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hashrush"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "HashRush")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "HashRush")
		}
		return filepath.Join(home, "AppData", "Roaming", "HashRush")
	default:
		return filepath.Join(home, ".hashrush")
	}
}

// NetworkDataDir returns the network-specific data directory.
func (c *Config) NetworkDataDir() string {
	return filepath.Join(c.DataDir, string(c.Network))
}

// LedgerDir returns the ledger database directory.
func (c *Config) LedgerDir() string {
	return filepath.Join(c.NetworkDataDir(), "ledger")
}

// SnapshotsDir returns the snapshot export directory.
func (c *Config) SnapshotsDir() string {
	return filepath.Join(c.NetworkDataDir(), "snapshots")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "hashrush.conf")
}

// EconomyFile returns the economy rules override file path.
func (c *Config) EconomyFile() string {
	return filepath.Join(c.NetworkDataDir(), "economy.json")
}
