package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadFile loads node configuration from a .conf file.
// Format: key = value (one per line, # for comments)
func LoadFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse key = value
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: invalid format (expected key = value)", lineNum)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		values[key] = value
	}

	return values, scanner.Err()
}

// ApplyFileConfig applies file configuration to a Config struct.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	for key, value := range values {
		if err := setConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

// setConfigValue sets a node config value by key.
// Only node-operational settings, NOT economy rules.
func setConfigValue(cfg *Config, key, value string) error {
	switch key {
	// Core
	case "network":
		cfg.Network = NetworkType(value)
	case "datadir":
		cfg.DataDir = value

	// RPC
	case "rpc.enabled", "rpc":
		cfg.RPC.Enabled = parseBool(value)
	case "rpc.addr":
		cfg.RPC.Addr = value
	case "rpc.port":
		port, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.RPC.Port = port
	case "rpc.allowed":
		cfg.RPC.AllowedIPs = parseStringList(value)
	case "rpc.cors":
		cfg.RPC.CORSOrigins = parseStringList(value)
	case "rpc.ws":
		cfg.RPC.EnableWS = parseBool(value)
	case "rpc.admintoken":
		cfg.RPC.AdminTokenHash = value

	// Sampler
	case "sampler.interval":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Sampler.IntervalSec = n
	case "sampler.leaderboard":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Sampler.LeaderboardSize = n

	// Snapshots
	case "snapshot.enabled":
		cfg.Snapshot.Enabled = parseBool(value)
	case "snapshot.interval":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Snapshot.IntervalSec = n
	case "snapshot.keep":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Snapshot.Keep = n

	// Logging
	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	case "log.json":
		cfg.Log.JSON = parseBool(value)

	default:
		// Unknown keys are ignored
	}
	return nil
}

// parseBool parses a boolean value.
func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// parseStringList parses a comma-separated list.
func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// WriteDefaultConfig writes a default node configuration file.
func WriteDefaultConfig(path string, network NetworkType) error {
	content := `# HashRush Node Configuration
#
# This file contains NODE settings only.
# Economy rules (difficulty, rewards, wager tables) live in economy.json
# and may only change through the validated admin operations.

# Network: mainnet or testnet
network = ` + string(network) + `

# Data directory (default: ~/.hashrush)
# datadir = ~/.hashrush

# ============================================================================
# RPC Server
# ============================================================================

rpc.enabled = true
rpc.addr = 127.0.0.1
rpc.port = ` + defaultRPCPort(network) + `
rpc.allowed = 127.0.0.1
# CORS allowed origins ("*" for all)
# rpc.cors = http://localhost:3000

# Websocket snapshot stream on GET /ws
rpc.ws = true

# Argon2id hash of the admin API token (hashrush-cli admin hash-token).
# Empty disables all admin_* methods.
# rpc.admintoken =

# ============================================================================
# Background Sampler
# ============================================================================

# Seconds between price-history samples / leaderboard recomputes
sampler.interval = 300
sampler.leaderboard = 100

# ============================================================================
# Snapshot Export
# ============================================================================

snapshot.enabled = true
snapshot.interval = 3600
snapshot.keep = 24

# ============================================================================
# Logging
# ============================================================================

log.level = info
# log.file =
log.json = false
`
	return os.WriteFile(path, []byte(content), 0644)
}

func defaultRPCPort(network NetworkType) string {
	if network == Testnet {
		return "8651"
	}
	return "8650"
}
