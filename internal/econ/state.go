package econ

import (
	"fmt"

	"github.com/hashrush-gg/hashrush-core/config"
)

// ChainState is the single authoritative record of network-wide mining
// progress. One instance per process, owned by the engine and mutated only
// under its lock.
type ChainState struct {
	BlockHeight   uint64 `json:"block_height"`
	Difficulty    uint64 `json:"difficulty"`     // Hashes needed to close the open block.
	BlockProgress uint64 `json:"block_progress"` // Always < Difficulty.

	EpochStart    int64 `json:"epoch_start"`     // Unix seconds, start of the retarget epoch.
	LastBlockTime int64 `json:"last_block_time"` // Unix seconds of the last block close.

	TotalMined float64 `json:"total_mined"` // Never exceeds the supply cap.

	// Shared pools. Funded by protocol fees and wager losses, drained by
	// daily rewards, quests, and wager wins. Never negative.
	RewardPoolToken   float64 `json:"reward_pool_token"`
	RewardPoolReserve float64 `json:"reward_pool_reserve"`

	LiquidityReserve float64 `json:"liquidity_reserve"` // AMM backing.
	TreasuryReserve  float64 `json:"treasury_reserve"`  // Admin-controlled float.

	// Admin-adjustable rules, swapped as a whole with RulesVersion bumped.
	RewardSplit  config.RewardSplit `json:"reward_split"`
	ExchangeCaps ExchangeCaps       `json:"exchange_caps"`
	Quests       []Quest            `json:"quests,omitempty"`
	RulesVersion uint64             `json:"rules_version"`

	// Units sold per limited-stock item, across all players.
	LimitedStock map[string]int `json:"limited_stock,omitempty"`
}

// ExchangeCaps bounds per-account daily exchange volume, in tokens.
type ExchangeCaps struct {
	MaxDailySell float64 `json:"max_daily_sell"`
	MaxDailyBuy  float64 `json:"max_daily_buy"`
}

// Quest is a one-shot reward for reaching a lifetime-counter goal.
type Quest struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Counter string  `json:"counter"` // One of the Counter* constants.
	Goal    float64 `json:"goal"`
	Reward  float64 `json:"reward"` // Tokens, paid from the reward pool.
}

// Quest counter names.
const (
	CounterLifetimeHashes = "lifetime_hashes"
	CounterBlocksClosed   = "blocks_closed"
	CounterTrades         = "trades"
	CounterWagers         = "wagers"
)

// ValidCounter reports whether name is a known quest counter.
func ValidCounter(name string) bool {
	switch name {
	case CounterLifetimeHashes, CounterBlocksClosed, CounterTrades, CounterWagers:
		return true
	}
	return false
}

// PricePoint is one sample of the AMM price history.
type PricePoint struct {
	Time  int64   `json:"time"`
	Price float64 `json:"price"`
}

// AppendPrice appends p and trims the history to at most cap samples,
// dropping the oldest first.
func AppendPrice(hist []PricePoint, p PricePoint, cap int) []PricePoint {
	hist = append(hist, p)
	if cap > 0 && len(hist) > cap {
		hist = hist[len(hist)-cap:]
	}
	return hist
}

// Snapshot is a read-only view of chain state served to clients.
type Snapshot struct {
	Height        uint64  `json:"height"`
	Difficulty    uint64  `json:"difficulty"`
	BlockProgress uint64  `json:"block_progress"`
	TotalMined    float64 `json:"total_mined"`

	RewardPoolToken   float64 `json:"reward_pool_token"`
	RewardPoolReserve float64 `json:"reward_pool_reserve"`
	LiquidityReserve  float64 `json:"liquidity_reserve"`
	TreasuryReserve   float64 `json:"treasury_reserve"`

	Price        float64 `json:"price"`
	RulesVersion uint64  `json:"rules_version"`
	Time         int64   `json:"time"`
}

// NewChainState builds the genesis state from the economy rules.
func NewChainState(rules *config.Economy, now int64) *ChainState {
	return &ChainState{
		Difficulty:       rules.Mining.InitialDifficulty,
		EpochStart:       now,
		LastBlockTime:    now,
		LiquidityReserve: rules.GenesisLiquidity,
		TreasuryReserve:  rules.GenesisTreasury,
		RewardSplit:      rules.RewardSplit,
		ExchangeCaps: ExchangeCaps{
			MaxDailySell: rules.Exchange.MaxDailySell,
			MaxDailyBuy:  rules.Exchange.MaxDailyBuy,
		},
		RulesVersion: 1,
		LimitedStock: make(map[string]int),
	}
}

// CheckInvariants verifies the structural invariants. A failure here is an
// internal error: state is only ever mutated through the engines, which
// must preserve all of these.
func (c *ChainState) CheckInvariants(rules *config.Economy) error {
	if c.Difficulty < rules.Mining.InitialDifficulty {
		return fmt.Errorf("difficulty %d below floor %d", c.Difficulty, rules.Mining.InitialDifficulty)
	}
	if c.BlockProgress >= c.Difficulty {
		return fmt.Errorf("block progress %d not below difficulty %d", c.BlockProgress, c.Difficulty)
	}
	if c.TotalMined < 0 || c.TotalMined > rules.Mining.MaxSupply {
		return fmt.Errorf("total mined %v outside [0, %v]", c.TotalMined, rules.Mining.MaxSupply)
	}
	if c.RewardPoolToken < 0 || c.RewardPoolReserve < 0 {
		return fmt.Errorf("negative reward pool: token=%v reserve=%v", c.RewardPoolToken, c.RewardPoolReserve)
	}
	if c.LiquidityReserve < 0 || c.TreasuryReserve < 0 {
		return fmt.Errorf("negative reserve: liquidity=%v treasury=%v", c.LiquidityReserve, c.TreasuryReserve)
	}
	if err := c.RewardSplit.Validate(); err != nil {
		return err
	}
	return nil
}

// Price returns the AMM spot price, reserve units per token. Falls back to
// the floor price until anything has been mined.
func (c *ChainState) Price(floor float64) float64 {
	if c.TotalMined <= 0 {
		return floor
	}
	return c.LiquidityReserve / c.TotalMined
}

// FindQuest returns the quest with the given ID.
func (c *ChainState) FindQuest(id string) (Quest, bool) {
	for _, q := range c.Quests {
		if q.ID == id {
			return q, true
		}
	}
	return Quest{}, false
}
