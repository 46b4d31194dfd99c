package config

// DefaultMainnet returns the default node configuration for mainnet.
func DefaultMainnet() *Config {
	return &Config{
		Network: Mainnet,
		DataDir: DefaultDataDir(),
		RPC: RPCConfig{
			Enabled:    true,
			Addr:       "127.0.0.1",
			Port:       8650,
			AllowedIPs: []string{"127.0.0.1"},
			EnableWS:   true,
		},
		Sampler: SamplerConfig{
			IntervalSec:     300,
			LeaderboardSize: 100,
		},
		Snapshot: SnapshotConfig{
			Enabled:     true,
			IntervalSec: 3600,
			Keep:        24,
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}

// DefaultTestnet returns the default node configuration for testnet.
func DefaultTestnet() *Config {
	cfg := DefaultMainnet()
	cfg.Network = Testnet
	cfg.RPC.Port = 8651
	cfg.Sampler.IntervalSec = 30
	cfg.Snapshot.IntervalSec = 600
	return cfg
}

// Default returns the default node configuration for the given network.
func Default(network NetworkType) *Config {
	switch network {
	case Testnet:
		return DefaultTestnet()
	default:
		return DefaultMainnet()
	}
}
