package engine

import (
	"github.com/hashrush-gg/hashrush-core/internal/econ"
	"github.com/hashrush-gg/hashrush-core/pkg/types"
)

// ClaimResult reports a daily or quest claim.
type ClaimResult struct {
	Reward       float64 `json:"reward"`
	TokenBalance float64 `json:"token_balance"`
}

// ClaimDaily pays the daily reward from the token pool, once per UTC
// calendar day. Active premium multiplies the base amount. The payout is
// capped at the pool balance.
func (e *Engine) ClaimDaily(player types.PlayerID) (ClaimResult, error) {
	if err := checkPlayer(player); err != nil {
		return ClaimResult{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.chain
	acct := e.account(player)
	now := e.now()

	day := econ.DayOf(now)
	if acct.LastDailyClaim == day {
		return ClaimResult{}, econ.Capacityf("daily reward already claimed today")
	}

	reward := e.rules.Daily.BaseReward
	if acct.PremiumActive(now) {
		reward *= e.rules.Daily.PremiumMultiplier
	}
	if reward > c.RewardPoolToken {
		reward = c.RewardPoolToken
	}
	if reward <= 0 {
		return ClaimResult{}, econ.InsufficientFundsf("reward pool is empty")
	}

	c.RewardPoolToken -= reward
	acct.TokenBalance += reward
	acct.LastDailyClaim = day

	e.store.PutChain(c)
	e.store.PutAccount(acct)

	e.log.Debug().Str("player", string(player)).Float64("reward", reward).Msg("daily claim")
	return ClaimResult{Reward: reward, TokenBalance: acct.TokenBalance}, nil
}

// ClaimQuest pays a one-shot quest reward from the token pool once the
// quest's lifetime counter has reached its goal.
func (e *Engine) ClaimQuest(player types.PlayerID, questID string) (ClaimResult, error) {
	if err := checkPlayer(player); err != nil {
		return ClaimResult{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.chain
	acct := e.account(player)

	q, ok := c.FindQuest(questID)
	if !ok {
		return ClaimResult{}, econ.Validationf("unknown quest %q", questID)
	}
	if acct.ClaimedQuests[questID] {
		return ClaimResult{}, econ.Capacityf("quest %q already claimed", questID)
	}
	if acct.Counter(q.Counter) < q.Goal {
		return ClaimResult{}, econ.Validationf("quest %q not complete: %v of %v %s",
			questID, acct.Counter(q.Counter), q.Goal, q.Counter)
	}

	reward := q.Reward
	if reward > c.RewardPoolToken {
		reward = c.RewardPoolToken
	}
	if reward <= 0 {
		return ClaimResult{}, econ.InsufficientFundsf("reward pool is empty")
	}

	c.RewardPoolToken -= reward
	acct.TokenBalance += reward
	if acct.ClaimedQuests == nil {
		acct.ClaimedQuests = make(map[string]bool)
	}
	acct.ClaimedQuests[questID] = true

	e.store.PutChain(c)
	e.store.PutAccount(acct)

	e.log.Debug().Str("player", string(player)).Str("quest", questID).Float64("reward", reward).Msg("quest claim")
	return ClaimResult{Reward: reward, TokenBalance: acct.TokenBalance}, nil
}
