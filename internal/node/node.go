// Package node provides a reusable ledger node that can be embedded
// in any binary (daemon, tests, future launcher).
package node

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hashrush-gg/hashrush-core/config"
	"github.com/hashrush-gg/hashrush-core/internal/econ"
	"github.com/hashrush-gg/hashrush-core/internal/engine"
	klog "github.com/hashrush-gg/hashrush-core/internal/log"
	"github.com/hashrush-gg/hashrush-core/internal/persist"
	"github.com/hashrush-gg/hashrush-core/internal/rpc"
	"github.com/hashrush-gg/hashrush-core/internal/storage"
)

// Node is a fully-initialized ledger node.
type Node struct {
	cfg    *config.Config
	rules  *config.Economy
	logger zerolog.Logger

	// Core
	db      storage.DB
	gateway *persist.Gateway
	engine  *engine.Engine

	// RPC
	rpcServer *rpc.Server

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates and initializes a new Node. It performs all setup steps
// (logger, economy rules, storage, engine, RPC) but does NOT start
// background goroutines (sampler, snapshot schedule). Call Start() for that.
func New(cfg *config.Config) (*Node, error) {
	cfg.DataDir = expandHome(cfg.DataDir)

	// ── 1. Init logger ──────────────────────────────────────────────
	logFile := cfg.Log.File
	if logFile == "" {
		logsDir := cfg.LogsDir()
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			return nil, fmt.Errorf("creating logs dir: %w", err)
		}
		logFile = logsDir + "/hashrush.log"
	}
	if err := klog.Init(cfg.Log.Level, cfg.Log.JSON, logFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logger := klog.Node

	// ── 2. Economy rules ────────────────────────────────────────────
	rules, err := loadEconomyRules(cfg)
	if err != nil {
		return nil, fmt.Errorf("load economy rules: %w", err)
	}

	logger.Info().
		Str("network", string(cfg.Network)).
		Str("symbol", rules.Symbol).
		Uint64("difficulty", rules.Mining.InitialDifficulty).
		Int("block_time", rules.Mining.TargetBlockTime).
		Msg("Starting HashRush Node")

	// ── 3. Open storage ─────────────────────────────────────────────
	db, err := storage.NewBadger(cfg.LedgerDir())
	if err != nil {
		return nil, fmt.Errorf("open database at %s: %w", cfg.LedgerDir(), err)
	}
	gateway := persist.Open(db)
	logger.Info().Str("path", cfg.LedgerDir()).Msg("Database opened")

	// ── 4. Load persisted state ─────────────────────────────────────
	chain, err := gateway.LoadChain()
	if err != nil {
		gateway.Close()
		db.Close()
		return nil, fmt.Errorf("load chain state: %w", err)
	}
	accounts, err := gateway.LoadAccounts()
	if err != nil {
		gateway.Close()
		db.Close()
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	prices, err := gateway.LoadPriceHistory()
	if err != nil {
		gateway.Close()
		db.Close()
		return nil, fmt.Errorf("load price history: %w", err)
	}
	if chain != nil {
		logger.Info().
			Uint64("height", chain.BlockHeight).
			Int("accounts", len(accounts)).
			Msg("Resuming persisted ledger")
	}

	// ── 5. Engine ───────────────────────────────────────────────────
	n := &Node{
		cfg:     cfg,
		rules:   rules,
		logger:  logger,
		db:      db,
		gateway: gateway,
	}
	n.ctx, n.cancel = context.WithCancel(context.Background())

	eng, err := engine.New(rules, engine.Options{
		Store:        gateway,
		Chain:        chain,
		Accounts:     accounts,
		PriceHistory: prices,
		// The RPC server is built after the engine; the closure resolves
		// it at call time.
		OnSnapshot: func(snap econ.Snapshot) {
			if n.rpcServer != nil {
				n.rpcServer.BroadcastSnapshot(snap)
			}
		},
	})
	if err != nil {
		gateway.Close()
		db.Close()
		return nil, fmt.Errorf("create engine: %w", err)
	}
	n.engine = eng

	// ── 6. RPC server ───────────────────────────────────────────────
	if cfg.RPC.Enabled {
		addr := fmt.Sprintf("%s:%d", cfg.RPC.Addr, cfg.RPC.Port)
		n.rpcServer = rpc.New(addr, eng, cfg.RPC)
		n.rpcServer.SetSnapshotExporter(n.ExportSnapshot)
	}

	return n, nil
}

// Start launches the sampler, the snapshot schedule, and the RPC listener.
func (n *Node) Start() error {
	if n.rpcServer != nil {
		if err := n.rpcServer.Start(); err != nil {
			return err
		}
		n.logger.Info().
			Str("addr", n.rpcServer.Addr()).
			Bool("ws", n.cfg.RPC.EnableWS).
			Msg("RPC server listening")
	}

	interval := time.Duration(n.cfg.Sampler.IntervalSec) * time.Second
	n.engine.StartSampler(interval, n.cfg.Sampler.LeaderboardSize)

	if n.cfg.Snapshot.Enabled {
		n.wg.Add(1)
		go func() {
			defer n.wg.Done()
			n.runSnapshotSchedule(time.Duration(n.cfg.Snapshot.IntervalSec) * time.Second)
		}()
	}

	snap := n.engine.Snapshot()
	n.logger.Info().
		Uint64("height", snap.Height).
		Float64("total_mined", snap.TotalMined).
		Msg("Node started successfully")

	return nil
}

// Stop performs graceful shutdown in reverse order.
func (n *Node) Stop() {
	n.cancel()
	n.wg.Wait()

	n.engine.StopSampler()
	if n.rpcServer != nil {
		n.rpcServer.Stop()
	}
	if n.gateway != nil {
		n.gateway.Close()
	}
	if n.db != nil {
		n.db.Close()
	}

	n.logger.Info().Msg("Goodbye!")
}

// RPCAddr returns the address the RPC server is listening on.
func (n *Node) RPCAddr() string {
	if n.rpcServer == nil {
		return ""
	}
	return n.rpcServer.Addr()
}

// Engine exposes the economy engine for embedding binaries.
func (n *Node) Engine() *engine.Engine {
	return n.engine
}

// Height returns the current block height.
func (n *Node) Height() uint64 {
	return n.engine.Snapshot().Height
}

// ── Snapshot schedule ───────────────────────────────────────────────

func (n *Node) runSnapshotSchedule(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-n.ctx.Done():
			return
		case <-ticker.C:
			if _, err := n.ExportSnapshot(); err != nil {
				n.logger.Error().Err(err).Msg("scheduled snapshot failed")
			}
		}
	}
}

// ExportSnapshot writes a full-state backup into the snapshots directory
// and returns its path. Also used by the admin_snapshot RPC endpoint.
func (n *Node) ExportSnapshot() (string, error) {
	chain, accounts, prices := n.engine.Export()
	backup := &persist.Backup{
		Time:         time.Now().Unix(),
		Network:      string(n.cfg.Network),
		Chain:        chain,
		Accounts:     accounts,
		PriceHistory: prices,
	}

	path, err := persist.ExportSnapshot(n.cfg.SnapshotsDir(), backup, n.cfg.Snapshot.Keep)
	if err != nil {
		return "", err
	}
	n.logger.Info().Str("path", path).Int("accounts", len(accounts)).Msg("Snapshot exported")
	return path, nil
}
