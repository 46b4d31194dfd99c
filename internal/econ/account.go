package econ

import (
	"github.com/hashrush-gg/hashrush-core/pkg/types"
)

// Account is one player's ledger entry. Created on first contact, never
// deleted, mutated only through the engine operations.
type Account struct {
	ID types.PlayerID `json:"id"`

	TokenBalance   float64 `json:"token_balance"`
	ReserveBalance float64 `json:"reserve_balance"`

	// Derived from owned upgrades.
	ClickPower float64 `json:"click_power"`
	AutoRate   float64 `json:"auto_rate"`

	// Lifetime counters. Monotonic, used by quests and the leaderboard.
	LifetimeHashes float64 `json:"lifetime_hashes"`
	BlocksClosed   uint64  `json:"blocks_closed"`
	Trades         uint64  `json:"trades"`
	Wagers         uint64  `json:"wagers"`

	PremiumUntil int64 `json:"premium_until,omitempty"` // Unix seconds, 0 = inactive.

	// Daily exchange usage, reset on calendar-day rollover.
	DailySold   float64 `json:"daily_sold,omitempty"`
	DailyBought float64 `json:"daily_bought,omitempty"`
	DailyDay    int64   `json:"daily_day,omitempty"` // UTC day number of the counters.

	LastDailyClaim int64 `json:"last_daily_claim,omitempty"` // UTC day number.

	UpgradeLevels map[string]int  `json:"upgrade_levels,omitempty"`
	ClaimedQuests map[string]bool `json:"claimed_quests,omitempty"`

	// Monotonic per-account draw counter feeding the wager digest.
	WagerNonce uint64 `json:"wager_nonce,omitempty"`

	CreatedAt int64 `json:"created_at"`
}

// NewAccount returns a genesis-default entry for a new player.
func NewAccount(id types.PlayerID, now int64) *Account {
	return &Account{
		ID:            id,
		ClickPower:    1,
		UpgradeLevels: make(map[string]int),
		ClaimedQuests: make(map[string]bool),
		CreatedAt:     now,
		DailyDay:      DayOf(now),
	}
}

// DayOf maps a unix timestamp to its UTC calendar-day number.
func DayOf(ts int64) int64 {
	return ts / 86400
}

// PremiumActive reports whether premium is active at the given time.
func (a *Account) PremiumActive(now int64) bool {
	return a.PremiumUntil > now
}

// RolloverDaily resets the daily exchange counters if the calendar day has
// advanced since they were last touched. Idempotent within a day.
func (a *Account) RolloverDaily(now int64) {
	day := DayOf(now)
	if day != a.DailyDay {
		a.DailySold = 0
		a.DailyBought = 0
		a.DailyDay = day
	}
}

// Counter returns the lifetime counter named by a quest.
func (a *Account) Counter(name string) float64 {
	switch name {
	case CounterLifetimeHashes:
		return a.LifetimeHashes
	case CounterBlocksClosed:
		return float64(a.BlocksClosed)
	case CounterTrades:
		return float64(a.Trades)
	case CounterWagers:
		return float64(a.Wagers)
	}
	return 0
}

// Level returns the owned level of an upgrade.
func (a *Account) Level(upgradeID string) int {
	if a.UpgradeLevels == nil {
		return 0
	}
	return a.UpgradeLevels[upgradeID]
}

// LeaderboardEntry is one row of the lifetime-hashes leaderboard.
type LeaderboardEntry struct {
	Player         types.PlayerID `json:"player"`
	LifetimeHashes float64        `json:"lifetime_hashes"`
	BlocksClosed   uint64         `json:"blocks_closed"`
}
