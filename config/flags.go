package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// Flags holds parsed command-line flags.
type Flags struct {
	// Commands
	Help    bool
	Version bool

	// Core
	Network string
	DataDir string
	Config  string

	// RPC
	RPC            bool
	RPCAddr        string
	RPCPort        int
	RPCAllowed     string
	RPCCORS        string
	RPCWS          bool
	AdminTokenHash string

	// Sampler
	SamplerInterval int
	LeaderboardSize int

	// Snapshots
	Snapshot         bool
	SnapshotInterval int
	SnapshotKeep     int

	// Logging
	LogLevel string
	LogFile  string
	LogJSON  bool

	// Remaining args
	Args []string

	// Explicitly-set bool flags (for true/false overrides).
	SetRPC      bool
	SetRPCWS    bool
	SetSnapshot bool
	SetLogJSON  bool
}

// ParseFlags parses command-line flags.
func ParseFlags() *Flags {
	f := &Flags{}
	fs := flag.NewFlagSet("hashrush", flag.ContinueOnError)

	// Commands
	fs.BoolVar(&f.Help, "help", false, "Show help message")
	fs.BoolVar(&f.Help, "h", false, "Show help message (shorthand)")
	fs.BoolVar(&f.Version, "version", false, "Show version information")
	fs.BoolVar(&f.Version, "v", false, "Show version (shorthand)")

	// Core
	var testnet bool
	fs.StringVar(&f.Network, "network", "", "Network type (mainnet or testnet)")
	fs.BoolVar(&testnet, "testnet", false, "Use testnet (shorthand for --network=testnet)")
	fs.StringVar(&f.DataDir, "datadir", "", "Data directory path")
	fs.StringVar(&f.Config, "config", "", "Config file path")
	fs.StringVar(&f.Config, "c", "", "Config file path (shorthand)")

	// RPC
	fs.BoolVar(&f.RPC, "rpc", true, "Enable RPC server")
	fs.StringVar(&f.RPCAddr, "rpc-addr", "", "RPC listen address")
	fs.IntVar(&f.RPCPort, "rpc-port", 0, "RPC listen port")
	fs.StringVar(&f.RPCAllowed, "rpc-allowed", "", "Allowed IPs for RPC")
	fs.StringVar(&f.RPCCORS, "rpc-cors", "", "Allowed CORS origins for RPC (comma-separated)")
	fs.BoolVar(&f.RPCWS, "rpc-ws", true, "Serve the /ws snapshot stream")
	fs.StringVar(&f.AdminTokenHash, "admin-token-hash", "", "Argon2id hash gating admin_* methods")

	// Sampler
	fs.IntVar(&f.SamplerInterval, "sampler-interval", 0, "Seconds between sampler ticks")
	fs.IntVar(&f.LeaderboardSize, "leaderboard-size", 0, "Leaderboard entries kept")

	// Snapshots
	fs.BoolVar(&f.Snapshot, "snapshot", true, "Enable periodic snapshot export")
	fs.IntVar(&f.SnapshotInterval, "snapshot-interval", 0, "Seconds between snapshot exports")
	fs.IntVar(&f.SnapshotKeep, "snapshot-keep", 0, "Snapshot files retained")

	// Logging
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")

	// Custom usage
	fs.Usage = func() {
		printUsage()
	}

	// Parse
	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// Handle --testnet shorthand
	if testnet {
		f.Network = "testnet"
	}
	f.SetRPC = isFlagSet(fs, "rpc")
	f.SetRPCWS = isFlagSet(fs, "rpc-ws")
	f.SetSnapshot = isFlagSet(fs, "snapshot")
	f.SetLogJSON = isFlagSet(fs, "log-json")

	f.Args = fs.Args()

	// Detect unparsed flags caused by positional arguments stopping the parser.
	for _, arg := range f.Args {
		if strings.HasPrefix(arg, "-") {
			fmt.Fprintf(os.Stderr, "Error: flag %q was not parsed (positional argument stopped parsing)\n", arg)
			os.Exit(1)
		}
	}

	return f
}

// ApplyFlags applies command-line flags to a Config struct.
func ApplyFlags(cfg *Config, f *Flags) {
	// Core
	if f.Network != "" {
		cfg.Network = NetworkType(f.Network)
	}
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}

	// RPC
	if f.SetRPC {
		cfg.RPC.Enabled = f.RPC
	}
	if f.RPCAddr != "" {
		cfg.RPC.Addr = f.RPCAddr
	}
	if f.RPCPort != 0 {
		cfg.RPC.Port = f.RPCPort
	}
	if f.RPCAllowed != "" {
		cfg.RPC.AllowedIPs = parseStringList(f.RPCAllowed)
	}
	if f.RPCCORS != "" {
		cfg.RPC.CORSOrigins = parseStringList(f.RPCCORS)
	}
	if f.SetRPCWS {
		cfg.RPC.EnableWS = f.RPCWS
	}
	if f.AdminTokenHash != "" {
		cfg.RPC.AdminTokenHash = f.AdminTokenHash
	}

	// Sampler
	if f.SamplerInterval != 0 {
		cfg.Sampler.IntervalSec = f.SamplerInterval
	}
	if f.LeaderboardSize != 0 {
		cfg.Sampler.LeaderboardSize = f.LeaderboardSize
	}

	// Snapshots
	if f.SetSnapshot {
		cfg.Snapshot.Enabled = f.Snapshot
	}
	if f.SnapshotInterval != 0 {
		cfg.Snapshot.IntervalSec = f.SnapshotInterval
	}
	if f.SnapshotKeep != 0 {
		cfg.Snapshot.Keep = f.SnapshotKeep
	}

	// Logging
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.SetLogJSON {
		cfg.Log.JSON = f.LogJSON
	}
}

// isFlagSet checks if a flag was explicitly set.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func printUsage() {
	usage := `HashRush Core - authoritative mining-economy ledger

Usage:
  hashrushd [options]
  hashrushd --help

Commands:
  --help, -h      Show this help message
  --version, -v   Show version information

Core Options:
  --network       Network type: mainnet (default) or testnet
  --testnet       Shorthand for --network=testnet
  --datadir       Data directory (default: ~/.hashrush)
  --config, -c    Config file path (default: <datadir>/hashrush.conf)

RPC Options:
  --rpc                Enable RPC server (default: true)
  --rpc-addr           RPC listen address (default: 127.0.0.1)
  --rpc-port           RPC port (mainnet: 8650, testnet: 8651)
  --rpc-allowed        Allowed IPs for RPC (comma-separated)
  --rpc-cors           Allowed CORS origins for RPC (comma-separated)
  --rpc-ws             Serve the /ws snapshot stream (default: true)
  --admin-token-hash   Argon2id hash gating admin_* methods

Sampler Options:
  --sampler-interval   Seconds between sampler ticks (default: 300)
  --leaderboard-size   Leaderboard entries kept (default: 100)

Snapshot Options:
  --snapshot           Enable periodic snapshot export (default: true)
  --snapshot-interval  Seconds between exports (default: 3600)
  --snapshot-keep      Snapshot files retained (default: 24)

Logging Options:
  --log-level     Log level: debug, info, warn, error (default: info)
  --log-file      Log file path (also logs to console)
  --log-json      Output logs as JSON
`
	fmt.Print(usage)
}
