package node

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashrush-gg/hashrush-core/config"
)

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// loadEconomyRules returns the economy rules for the node's network.
// A rules file in the data directory overrides the built-in defaults,
// which allows private test deployments to reshape the economy without
// a rebuild. The file is validated on load.
func loadEconomyRules(cfg *config.Config) (*config.Economy, error) {
	path := cfg.EconomyFile()
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return config.EconomyFor(cfg.Network), nil
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	rules, err := config.LoadEconomy(path)
	if err != nil {
		return nil, fmt.Errorf("economy file %s: %w", path, err)
	}
	if rules.Network != string(cfg.Network) {
		return nil, fmt.Errorf("economy file %s is for network %q, node is %q",
			path, rules.Network, cfg.Network)
	}
	return rules, nil
}
