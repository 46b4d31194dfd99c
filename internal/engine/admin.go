package engine

import (
	"github.com/hashrush-gg/hashrush-core/config"
	"github.com/hashrush-gg/hashrush-core/internal/econ"
)

// Admin operations. Each change is validated, applied under the lock, and
// bumps RulesVersion so in-flight readers can tell rule sets apart.

// SetRewardSplit replaces the block-reward split. Rejected unless the
// percentages sum to exactly 100.
func (e *Engine) SetRewardSplit(split config.RewardSplit) error {
	if err := split.Validate(); err != nil {
		return econ.Validationf("%v", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.chain.RewardSplit = split
	e.chain.RulesVersion++
	e.store.PutChain(e.chain)
	e.log.Info().
		Int("pool", split.PoolPct).
		Int("closer", split.CloserPct).
		Int("contributor", split.ContributorPct).
		Uint64("rules_version", e.chain.RulesVersion).
		Msg("reward split updated")
	return nil
}

// SetExchangeCaps replaces the per-day exchange caps.
func (e *Engine) SetExchangeCaps(caps econ.ExchangeCaps) error {
	if caps.MaxDailySell < 0 || caps.MaxDailyBuy < 0 {
		return econ.Validationf("exchange caps must be non-negative")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.chain.ExchangeCaps = caps
	e.chain.RulesVersion++
	e.store.PutChain(e.chain)
	e.log.Info().
		Float64("max_sell", caps.MaxDailySell).
		Float64("max_buy", caps.MaxDailyBuy).
		Msg("exchange caps updated")
	return nil
}

// InjectLiquidity moves reserve currency from the treasury into the AMM
// backing, bounded by the treasury balance.
func (e *Engine) InjectLiquidity(amount float64) error {
	if amount <= 0 {
		return econ.Validationf("amount must be positive")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.chain.TreasuryReserve < amount {
		return econ.InsufficientFundsf("treasury %v below %v", e.chain.TreasuryReserve, amount)
	}
	e.chain.TreasuryReserve -= amount
	e.chain.LiquidityReserve += amount
	e.store.PutChain(e.chain)
	e.log.Info().Float64("amount", amount).Float64("liquidity", e.chain.LiquidityReserve).Msg("liquidity injected")
	return nil
}

// AddQuest registers a new quest.
func (e *Engine) AddQuest(q econ.Quest) error {
	if q.ID == "" {
		return econ.Validationf("quest id is required")
	}
	if !econ.ValidCounter(q.Counter) {
		return econ.Validationf("unknown quest counter %q", q.Counter)
	}
	if q.Goal <= 0 || q.Reward <= 0 {
		return econ.Validationf("quest goal and reward must be positive")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.chain.FindQuest(q.ID); exists {
		return econ.Validationf("quest %q already exists", q.ID)
	}
	e.chain.Quests = append(e.chain.Quests, q)
	e.chain.RulesVersion++
	e.store.PutChain(e.chain)
	e.log.Info().Str("quest", q.ID).Msg("quest added")
	return nil
}

// RemoveQuest unregisters a quest. Claims already paid stay paid.
func (e *Engine) RemoveQuest(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, q := range e.chain.Quests {
		if q.ID == id {
			e.chain.Quests = append(e.chain.Quests[:i], e.chain.Quests[i+1:]...)
			e.chain.RulesVersion++
			e.store.PutChain(e.chain)
			e.log.Info().Str("quest", id).Msg("quest removed")
			return nil
		}
	}
	return econ.Validationf("unknown quest %q", id)
}
