// Package engine implements the authoritative mining-economy engine:
// contribution accounting, block closing, reward distribution, the AMM
// exchange, wager games, purchases, and claims. All operations are atomic
// under a single lock and commit in memory before persistence.
package engine

import (
	"crypto/rand"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hashrush-gg/hashrush-core/config"
	"github.com/hashrush-gg/hashrush-core/internal/econ"
	"github.com/hashrush-gg/hashrush-core/internal/log"
	"github.com/hashrush-gg/hashrush-core/pkg/types"
)

// Store receives committed state for durable storage. Calls must not block;
// the engine never rolls back an in-memory commit on a persistence failure.
type Store interface {
	PutChain(*econ.ChainState)
	PutAccount(*econ.Account)
	PutPriceHistory([]econ.PricePoint)
}

// nopStore discards all writes. Used when no store is configured (tests).
type nopStore struct{}

func (nopStore) PutChain(*econ.ChainState)         {}
func (nopStore) PutAccount(*econ.Account)          {}
func (nopStore) PutPriceHistory([]econ.PricePoint) {}

// Options configures a new Engine. Zero values select genesis state, a
// random wager seed, the wall clock, and no persistence.
type Options struct {
	Store        Store
	Chain        *econ.ChainState
	Accounts     []*econ.Account
	PriceHistory []econ.PricePoint

	// Seed feeds the wager draw digest. Tests inject a fixed seed for
	// deterministic outcomes.
	Seed []byte

	// Now overrides the clock.
	Now func() time.Time

	// OnSnapshot, when set, is called with a fresh snapshot after every
	// block close and sampler tick. Called outside the engine lock.
	OnSnapshot func(econ.Snapshot)
}

// Engine owns the chain state and all accounts. Every public operation
// takes the single mutex, validates, mutates, and queues persistence.
type Engine struct {
	mu sync.Mutex

	rules    *config.Economy
	chain    *econ.ChainState
	accounts map[types.PlayerID]*econ.Account

	prices      []econ.PricePoint
	leaderboard []econ.LeaderboardEntry

	store      Store
	nowFn      func() time.Time
	seed       [32]byte
	onSnapshot func(econ.Snapshot)

	samplerStop chan struct{}
	samplerDone chan struct{}

	log zerolog.Logger
}

// New builds an engine from economy rules and previously persisted state.
func New(rules *config.Economy, opts Options) (*Engine, error) {
	if rules == nil {
		return nil, econ.Internalf("economy rules are required")
	}
	if err := rules.Validate(); err != nil {
		return nil, econ.Validationf("economy rules: %v", err)
	}

	e := &Engine{
		rules:      rules,
		accounts:   make(map[types.PlayerID]*econ.Account),
		prices:     opts.PriceHistory,
		store:      opts.Store,
		nowFn:      opts.Now,
		onSnapshot: opts.OnSnapshot,
		log:        log.Engine,
	}
	if e.store == nil {
		e.store = nopStore{}
	}
	if e.nowFn == nil {
		e.nowFn = time.Now
	}

	if len(opts.Seed) > 0 {
		copy(e.seed[:], opts.Seed)
	} else if _, err := rand.Read(e.seed[:]); err != nil {
		return nil, econ.Internalf("wager seed: %v", err)
	}

	e.chain = opts.Chain
	if e.chain == nil {
		e.chain = econ.NewChainState(rules, e.nowFn().Unix())
		e.log.Info().Msg("initialized genesis chain state")
	}
	if e.chain.LimitedStock == nil {
		e.chain.LimitedStock = make(map[string]int)
	}
	if err := e.chain.CheckInvariants(rules); err != nil {
		return nil, econ.Internalf("chain state: %v", err)
	}

	for _, a := range opts.Accounts {
		e.accounts[a.ID] = a
	}

	e.log.Info().
		Uint64("height", e.chain.BlockHeight).
		Uint64("difficulty", e.chain.Difficulty).
		Int("accounts", len(e.accounts)).
		Msg("engine ready")
	return e, nil
}

// now returns the current unix time from the injected clock.
func (e *Engine) now() int64 {
	return e.nowFn().Unix()
}

// account returns the entry for a player, creating genesis defaults on
// first contact. Caller holds the lock.
func (e *Engine) account(id types.PlayerID) *econ.Account {
	a, ok := e.accounts[id]
	if !ok {
		a = econ.NewAccount(id, e.now())
		e.accounts[id] = a
		e.log.Debug().Str("player", string(a.ID)).Msg("new account")
	}
	return a
}

// checkPlayer rejects malformed player IDs before any state is touched.
func checkPlayer(id types.PlayerID) error {
	if !id.IsValid() {
		return econ.Validationf("invalid player id %q", id)
	}
	return nil
}

// snapshotLocked builds a snapshot. Caller holds the lock.
func (e *Engine) snapshotLocked() econ.Snapshot {
	c := e.chain
	return econ.Snapshot{
		Height:            c.BlockHeight,
		Difficulty:        c.Difficulty,
		BlockProgress:     c.BlockProgress,
		TotalMined:        c.TotalMined,
		RewardPoolToken:   c.RewardPoolToken,
		RewardPoolReserve: c.RewardPoolReserve,
		LiquidityReserve:  c.LiquidityReserve,
		TreasuryReserve:   c.TreasuryReserve,
		Price:             c.Price(e.rules.Exchange.FloorPrice),
		RulesVersion:      c.RulesVersion,
		Time:              e.now(),
	}
}

// Snapshot returns a read-only view of the chain state.
func (e *Engine) Snapshot() econ.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Account returns a copy of a player's ledger entry, creating it on first
// contact like any other operation.
func (e *Engine) Account(id types.PlayerID) (econ.Account, error) {
	if err := checkPlayer(id); err != nil {
		return econ.Account{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	a := e.account(id)
	a.RolloverDaily(e.now())
	cp := *a
	cp.UpgradeLevels = copyIntMap(a.UpgradeLevels)
	cp.ClaimedQuests = copyBoolMap(a.ClaimedQuests)
	return cp, nil
}

// PriceHistory returns a copy of the sampled price history.
func (e *Engine) PriceHistory() []econ.PricePoint {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]econ.PricePoint, len(e.prices))
	copy(out, e.prices)
	return out
}

// Leaderboard returns the last computed leaderboard. The sampler recomputes
// it; before the first tick this is empty.
func (e *Engine) Leaderboard() []econ.LeaderboardEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]econ.LeaderboardEntry, len(e.leaderboard))
	copy(out, e.leaderboard)
	return out
}

// recomputeLeaderboardLocked sorts accounts by lifetime hashes and keeps
// the top size entries. Caller holds the lock.
func (e *Engine) recomputeLeaderboardLocked(size int) {
	entries := make([]econ.LeaderboardEntry, 0, len(e.accounts))
	for _, a := range e.accounts {
		if a.LifetimeHashes <= 0 {
			continue
		}
		entries = append(entries, econ.LeaderboardEntry{
			Player:         a.ID,
			LifetimeHashes: a.LifetimeHashes,
			BlocksClosed:   a.BlocksClosed,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].LifetimeHashes != entries[j].LifetimeHashes {
			return entries[i].LifetimeHashes > entries[j].LifetimeHashes
		}
		return entries[i].Player < entries[j].Player
	})
	if len(entries) > size {
		entries = entries[:size]
	}
	e.leaderboard = entries
}

// notify pushes a snapshot to the OnSnapshot hook. Called after the lock
// is released.
func (e *Engine) notify(snap econ.Snapshot) {
	if e.onSnapshot != nil {
		e.onSnapshot(snap)
	}
}

// Export returns deep copies of the full ledger state for a backup.
func (e *Engine) Export() (econ.ChainState, []econ.Account, []econ.PricePoint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	chain := *e.chain
	chain.LimitedStock = copyIntMap(e.chain.LimitedStock)
	chain.Quests = append([]econ.Quest(nil), e.chain.Quests...)

	accounts := make([]econ.Account, 0, len(e.accounts))
	for _, a := range e.accounts {
		cp := *a
		cp.UpgradeLevels = copyIntMap(a.UpgradeLevels)
		cp.ClaimedQuests = copyBoolMap(a.ClaimedQuests)
		accounts = append(accounts, cp)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })

	prices := make([]econ.PricePoint, len(e.prices))
	copy(prices, e.prices)
	return chain, accounts, prices
}

// Rules returns the immutable economy rules the engine was built with.
func (e *Engine) Rules() *config.Economy {
	return e.rules
}

func copyIntMap(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyBoolMap(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
