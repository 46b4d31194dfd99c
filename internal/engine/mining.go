package engine

import (
	"math"

	"github.com/hashrush-gg/hashrush-core/internal/econ"
	"github.com/hashrush-gg/hashrush-core/pkg/types"
)

// SubmitResult reports the effect of one hash submission.
type SubmitResult struct {
	BlockProgress uint64  `json:"block_progress"`
	Target        uint64  `json:"target"` // Current difficulty.
	BlocksClosed  int     `json:"blocks_closed"`
	Reward        float64 `json:"reward"` // Tokens credited to the caller.

	// Hashes not consumed because the per-call block cap was reached.
	// The caller resubmits them; they are never silently discarded.
	Remaining uint64 `json:"remaining,omitempty"`
}

// SubmitHashes consumes a hash contribution against the open block,
// closing up to MaxBlocksPerSubmit blocks. Contributors earn a
// pay-per-share cut as hashes accumulate; closing a block pays the closer
// bonus and funds the shared pool. Difficulty retargets on epoch
// boundaries and the supply cap is enforced by trimming the final mint.
func (e *Engine) SubmitHashes(player types.PlayerID, amount uint64) (SubmitResult, error) {
	if err := checkPlayer(player); err != nil {
		return SubmitResult{}, err
	}
	if amount == 0 {
		return SubmitResult{}, econ.Validationf("hash amount must be positive")
	}

	e.mu.Lock()

	c := e.chain
	acct := e.account(player)
	now := e.now()

	remaining := amount
	res := SubmitResult{}
	for remaining > 0 {
		space := c.Difficulty - c.BlockProgress
		consume := remaining
		if consume > space {
			consume = space
		}

		// Reward is recomputed every iteration; a halving boundary or the
		// supply cap may be crossed mid-submission.
		reward := e.blockRewardLocked()

		share := float64(consume) / float64(c.Difficulty) * reward * float64(c.RewardSplit.ContributorPct) / 100
		acct.TokenBalance += share
		acct.LifetimeHashes += float64(consume)
		res.Reward += share

		c.BlockProgress += consume
		remaining -= consume

		if c.BlockProgress == c.Difficulty {
			c.BlockProgress = 0
			c.BlockHeight++
			c.LastBlockTime = now

			closer := reward * float64(c.RewardSplit.CloserPct) / 100
			acct.TokenBalance += closer
			res.Reward += closer
			c.RewardPoolToken += reward * float64(c.RewardSplit.PoolPct) / 100
			c.TotalMined += reward
			acct.BlocksClosed++
			res.BlocksClosed++

			if c.BlockHeight%e.rules.Mining.EpochLength == 0 {
				e.retargetLocked(now)
			}

			if res.BlocksClosed >= e.rules.Mining.MaxBlocksPerSubmit {
				res.Remaining = remaining
				break
			}
		}
	}

	res.BlockProgress = c.BlockProgress
	res.Target = c.Difficulty

	e.store.PutChain(c)
	e.store.PutAccount(acct)

	var snap econ.Snapshot
	if res.BlocksClosed > 0 {
		snap = e.snapshotLocked()
	}
	e.mu.Unlock()

	if res.BlocksClosed > 0 {
		e.log.Debug().
			Str("player", string(player)).
			Int("blocks", res.BlocksClosed).
			Float64("reward", res.Reward).
			Uint64("height", snap.Height).
			Msg("blocks closed")
		e.notify(snap)
	}
	return res, nil
}

// blockRewardLocked returns the reward for closing the next block: the
// halving schedule value, trimmed so the supply cap is never exceeded.
// Caller holds the lock.
func (e *Engine) blockRewardLocked() float64 {
	reward := BlockReward(e.rules.Mining.InitialBlockReward, e.rules.Mining.HalvingInterval, e.chain.BlockHeight)
	if left := e.rules.Mining.MaxSupply - e.chain.TotalMined; reward > left {
		if left < 0 {
			left = 0
		}
		reward = left
	}
	return reward
}

// BlockReward is the halving schedule: initial / 2^(height/interval).
// Pure function of height.
func BlockReward(initial float64, interval, height uint64) float64 {
	if interval == 0 {
		return initial
	}
	halvings := height / interval
	if halvings >= 64 {
		return 0
	}
	return initial / float64(uint64(1)<<halvings)
}

// retargetLocked recomputes difficulty from the observed epoch duration.
// Only called on exact epoch boundaries. The timespan is clamped to
// [expected/4, expected*4] so one abnormal epoch cannot swing difficulty
// more than 4x, and the result never drops below the initial difficulty.
// Caller holds the lock.
func (e *Engine) retargetLocked(now int64) {
	m := e.rules.Mining
	expected := int64(m.EpochLength) * int64(m.TargetBlockTime)
	actual := now - e.chain.EpochStart

	next := NextDifficulty(e.chain.Difficulty, actual, expected)
	if next < m.InitialDifficulty {
		next = m.InitialDifficulty
	}

	if next != e.chain.Difficulty {
		e.log.Info().
			Uint64("height", e.chain.BlockHeight).
			Uint64("old", e.chain.Difficulty).
			Uint64("new", next).
			Int64("epoch_seconds", actual).
			Msg("difficulty retarget")
	}
	e.chain.Difficulty = next
	e.chain.EpochStart = now
}

// NextDifficulty computes the post-epoch difficulty.
// actualTimeSpan is the elapsed seconds for the epoch; expectedTimeSpan is
// epochLength * targetBlockTime. The timespan clamp bounds the adjustment
// ratio to [0.25, 4.0].
func NextDifficulty(current uint64, actualTimeSpan, expectedTimeSpan int64) uint64 {
	if actualTimeSpan <= 0 {
		actualTimeSpan = 1
	}
	if expectedTimeSpan <= 0 {
		expectedTimeSpan = 1
	}

	minSpan := expectedTimeSpan / 4
	if minSpan == 0 {
		minSpan = 1
	}
	maxSpan := expectedTimeSpan * 4
	if actualTimeSpan < minSpan {
		actualTimeSpan = minSpan
	}
	if actualTimeSpan > maxSpan {
		actualTimeSpan = maxSpan
	}

	next := math.Floor(float64(current) * float64(expectedTimeSpan) / float64(actualTimeSpan))
	if next < 1 {
		return 1
	}
	return uint64(next)
}
