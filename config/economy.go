package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// =============================================================================
// Economy Rules (genesis-defined, canonical parameter set)
//
// The deployed clients shipped with several divergent copies of these
// numbers. This is the single source of truth; change it only through a
// validated admin update, never field-by-field at runtime.
// =============================================================================

// Upgrade category constants.
const (
	UpgradeClick   = "click"   // Raises per-tap hash power.
	UpgradeAuto    = "auto"    // Raises passive hash rate.
	UpgradePremium = "premium" // Extends the premium expiry timestamp.
	UpgradeLimited = "limited" // Globally capped stock, no level cap.
)

// Economy holds the economic protocol rules. Loaded from the economy file
// when present, otherwise from the built-in network preset.
type Economy struct {
	// Identity
	Network string `json:"network"`
	Symbol  string `json:"symbol"`  // In-game token symbol (NRC).
	Reserve string `json:"reserve"` // Reserve currency symbol (TON).

	// Mining
	Mining MiningRules `json:"mining"`

	// Reward split, in whole percent. Must sum to exactly 100.
	RewardSplit RewardSplit `json:"reward_split"`

	// Exchange
	Exchange ExchangeRules `json:"exchange"`

	// Purchase revenue routing, in whole percent. Must sum to exactly 100.
	PurchaseSplit PurchaseSplit `json:"purchase_split"`

	// Daily reward
	Daily DailyRules `json:"daily"`

	// Wager mini-games
	Wager WagerRules `json:"wager"`

	// Upgrade catalog
	Upgrades []UpgradeDef `json:"upgrades"`

	// Genesis pool funding
	GenesisLiquidity float64 `json:"genesis_liquidity"` // Reserve units backing the AMM.
	GenesisTreasury  float64 `json:"genesis_treasury"`  // Admin-controlled float.
}

// MiningRules defines block production economics.
type MiningRules struct {
	InitialDifficulty  uint64  `json:"initial_difficulty"`    // Hashes per block, also the retarget floor.
	TargetBlockTime    int     `json:"target_block_time"`     // Target seconds between blocks.
	EpochLength        uint64  `json:"epoch_length"`          // Blocks between difficulty retargets.
	InitialBlockReward float64 `json:"initial_block_reward"`  // NRC minted per block before halving.
	HalvingInterval    uint64  `json:"halving_interval"`      // Blocks between reward halvings.
	MaxSupply          float64 `json:"max_supply"`            // Total NRC cap.
	MaxBlocksPerSubmit int     `json:"max_blocks_per_submit"` // Iteration cap per submit call.
}

// RewardSplit divides each block reward between the shared pool, the
// closing account, and pay-per-share contributors.
type RewardSplit struct {
	PoolPct        int `json:"pool_pct"`
	CloserPct      int `json:"closer_pct"`
	ContributorPct int `json:"contributor_pct"`
}

// Sum returns the total of the three percentages.
func (r RewardSplit) Sum() int {
	return r.PoolPct + r.CloserPct + r.ContributorPct
}

// Validate rejects splits that do not sum to exactly 100.
func (r RewardSplit) Validate() error {
	if r.PoolPct < 0 || r.CloserPct < 0 || r.ContributorPct < 0 {
		return fmt.Errorf("reward split percentages must be non-negative")
	}
	if s := r.Sum(); s != 100 {
		return fmt.Errorf("reward split must sum to 100, got %d", s)
	}
	return nil
}

// ExchangeRules bounds the AMM exchange.
type ExchangeRules struct {
	FloorPrice        float64 `json:"floor_price"`         // Price used while totalMined == 0.
	MaxDailySell      float64 `json:"max_daily_sell"`      // NRC per account per day.
	MaxDailyBuy       float64 `json:"max_daily_buy"`       // NRC per account per day.
	SampleIntervalSec int     `json:"sample_interval_sec"` // Min seconds between price samples.
	PriceHistoryCap   int     `json:"price_history_cap"`   // Ring buffer length.
}

// PurchaseSplit routes reserve-currency purchase revenue.
type PurchaseSplit struct {
	TreasuryPct  int `json:"treasury_pct"`
	LiquidityPct int `json:"liquidity_pct"`
	PoolPct      int `json:"pool_pct"`
}

// Validate rejects splits that do not sum to exactly 100.
func (p PurchaseSplit) Validate() error {
	if p.TreasuryPct < 0 || p.LiquidityPct < 0 || p.PoolPct < 0 {
		return fmt.Errorf("purchase split percentages must be non-negative")
	}
	if s := p.TreasuryPct + p.LiquidityPct + p.PoolPct; s != 100 {
		return fmt.Errorf("purchase split must sum to 100, got %d", s)
	}
	return nil
}

// DailyRules configures the daily claim.
type DailyRules struct {
	BaseReward        float64 `json:"base_reward"`        // NRC per claim.
	PremiumMultiplier float64 `json:"premium_multiplier"` // Applied while premium is active.
}

// WagerRules configures the two mini-games.
type WagerRules struct {
	MinBet          float64       `json:"min_bet"`
	MaxBet          float64       `json:"max_bet"`
	SlotsReel       []SlotSymbol  `json:"slots_reel"`       // Weighted symbol reel (drawn three times).
	SlotsTripleMult float64       `json:"slots_triple"`     // Multiplier for a non-seven triple.
	SlotsSevenMult  float64       `json:"slots_seven"`      // Multiplier for triple sevens (jackpot).
	SlotsPairMult   float64       `json:"slots_pair"`       // Multiplier for two-of-three sevens.
	RelicTiers      []RelicTier   `json:"relic_tiers"`      // Five-tier rarity table.
	JackpotFraction float64       `json:"jackpot_fraction"` // Pool share paid by a legendary relic.
}

// SlotSymbol is one reel symbol with its draw weight.
type SlotSymbol struct {
	Name   string `json:"name"`
	Weight int    `json:"weight"`
}

// RelicTier is one rarity bucket of the relic game.
// A tier with Jackpot=true pays floor(pool * JackpotFraction) instead of
// bet * Multiplier.
type RelicTier struct {
	Name       string  `json:"name"`
	Weight     int     `json:"weight"`
	Multiplier float64 `json:"multiplier"`
	Jackpot    bool    `json:"jackpot,omitempty"`
}

// UpgradeDef is one entry of the upgrade catalog.
type UpgradeDef struct {
	ID       string  `json:"id"`
	Category string  `json:"category"` // click, auto, premium, limited.
	Currency string  `json:"currency"` // "nrc" or "ton".
	BaseCost float64 `json:"base_cost"`
	Scale    float64 `json:"scale"`     // Cost grows by (1+scale)^level.
	MaxLevel int     `json:"max_level"` // 0 = unlimited (limited items use StockCap instead).
	Effect   float64 `json:"effect"`    // Click power / auto rate added per level.

	// Premium upgrades only: seconds of premium granted per purchase.
	DurationSec int64 `json:"duration_sec,omitempty"`

	// Limited items only: global unit cap across all players.
	StockCap int `json:"stock_cap,omitempty"`
}

// =============================================================================
// Pre-defined economy configurations
// =============================================================================

// MainnetEconomy returns the mainnet economy rules.
func MainnetEconomy() *Economy {
	return &Economy{
		Network: string(Mainnet),
		Symbol:  "NRC",
		Reserve: "TON",
		Mining: MiningRules{
			InitialDifficulty:  36_000,
			TargetBlockTime:    600, // 10 minute blocks
			EpochLength:        144, // Retarget about daily at target rate.
			InitialBlockReward: 50,
			HalvingInterval:    10_000,
			MaxSupply:          21_000_000,
			MaxBlocksPerSubmit: 16,
		},
		RewardSplit: RewardSplit{
			PoolPct:        10,
			CloserPct:      70,
			ContributorPct: 20,
		},
		Exchange: ExchangeRules{
			FloorPrice:        0.0001,
			MaxDailySell:      10_000,
			MaxDailyBuy:       10_000,
			SampleIntervalSec: 300,
			PriceHistoryCap:   2016,
		},
		PurchaseSplit: PurchaseSplit{
			TreasuryPct:  40,
			LiquidityPct: 40,
			PoolPct:      20,
		},
		Daily: DailyRules{
			BaseReward:        10,
			PremiumMultiplier: 2,
		},
		Wager: WagerRules{
			MinBet: 1,
			MaxBet: 1_000,
			SlotsReel: []SlotSymbol{
				{Name: "cherry", Weight: 40},
				{Name: "lemon", Weight: 30},
				{Name: "bell", Weight: 20},
				{Name: "seven", Weight: 10},
			},
			SlotsTripleMult: 10,
			SlotsSevenMult:  50,
			SlotsPairMult:   2,
			RelicTiers: []RelicTier{
				{Name: "common", Weight: 60, Multiplier: 0.5},
				{Name: "uncommon", Weight: 25, Multiplier: 1},
				{Name: "rare", Weight: 10, Multiplier: 2},
				{Name: "epic", Weight: 4, Multiplier: 5},
				{Name: "legendary", Weight: 1, Jackpot: true},
			},
			JackpotFraction: 0.25,
		},
		Upgrades: []UpgradeDef{
			{ID: "pickaxe", Category: UpgradeClick, Currency: "nrc", BaseCost: 25, Scale: 0.15, MaxLevel: 50, Effect: 1},
			{ID: "drill", Category: UpgradeClick, Currency: "nrc", BaseCost: 500, Scale: 0.2, MaxLevel: 25, Effect: 10},
			{ID: "rig", Category: UpgradeAuto, Currency: "nrc", BaseCost: 100, Scale: 0.18, MaxLevel: 50, Effect: 2},
			{ID: "farm", Category: UpgradeAuto, Currency: "ton", BaseCost: 1, Scale: 0.25, MaxLevel: 20, Effect: 50},
			{ID: "premium-week", Category: UpgradePremium, Currency: "ton", BaseCost: 2, Scale: 0, DurationSec: 7 * 24 * 3600},
			{ID: "founder-badge", Category: UpgradeLimited, Currency: "ton", BaseCost: 10, Scale: 0, Effect: 25, StockCap: 1000},
		},
		GenesisLiquidity: 50_000,
		GenesisTreasury:  10_000,
	}
}

// TestnetEconomy returns the testnet economy rules.
func TestnetEconomy() *Economy {
	e := MainnetEconomy()
	e.Network = string(Testnet)

	// Faster blocks and halvings so a test session exercises every path.
	e.Mining.InitialDifficulty = 1_000
	e.Mining.TargetBlockTime = 30
	e.Mining.EpochLength = 10
	e.Mining.HalvingInterval = 100
	e.Exchange.SampleIntervalSec = 10
	return e
}

// EconomyFor returns the economy rules for the given network.
func EconomyFor(network NetworkType) *Economy {
	switch network {
	case Testnet:
		return TestnetEconomy()
	default:
		return MainnetEconomy()
	}
}

// =============================================================================
// Economy file I/O
// =============================================================================

// LoadEconomy loads economy rules from a file.
func LoadEconomy(path string) (*Economy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading economy file: %w", err)
	}

	var e Economy
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("parsing economy file: %w", err)
	}

	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("invalid economy rules: %w", err)
	}

	return &e, nil
}

// Save writes the economy rules to a file.
func (e *Economy) Save(path string) error {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding economy rules: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing economy file: %w", err)
	}

	return nil
}

// Validate checks that the economy rules are internally consistent.
func (e *Economy) Validate() error {
	if e.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}

	m := e.Mining
	if m.InitialDifficulty == 0 {
		return fmt.Errorf("initial_difficulty must be positive")
	}
	if m.TargetBlockTime <= 0 {
		return fmt.Errorf("target_block_time must be positive")
	}
	if m.EpochLength == 0 {
		return fmt.Errorf("epoch_length must be positive")
	}
	if m.InitialBlockReward <= 0 {
		return fmt.Errorf("initial_block_reward must be positive")
	}
	if m.MaxSupply < m.InitialBlockReward {
		return fmt.Errorf("max_supply must cover at least one block reward")
	}
	if m.MaxBlocksPerSubmit < 1 {
		return fmt.Errorf("max_blocks_per_submit must be at least 1")
	}

	if err := e.RewardSplit.Validate(); err != nil {
		return err
	}
	if err := e.PurchaseSplit.Validate(); err != nil {
		return err
	}

	x := e.Exchange
	if x.FloorPrice <= 0 {
		return fmt.Errorf("floor_price must be positive")
	}
	if x.MaxDailySell < 0 || x.MaxDailyBuy < 0 {
		return fmt.Errorf("daily exchange caps must be non-negative")
	}
	if x.PriceHistoryCap < 1 {
		return fmt.Errorf("price_history_cap must be at least 1")
	}

	w := e.Wager
	if w.MinBet <= 0 || w.MaxBet < w.MinBet {
		return fmt.Errorf("wager bet bounds invalid: min=%v max=%v", w.MinBet, w.MaxBet)
	}
	if len(w.SlotsReel) == 0 {
		return fmt.Errorf("slots reel must not be empty")
	}
	reelWeight := 0
	for _, s := range w.SlotsReel {
		if s.Weight < 0 {
			return fmt.Errorf("slots symbol %q has negative weight", s.Name)
		}
		reelWeight += s.Weight
	}
	if reelWeight <= 0 {
		return fmt.Errorf("slots reel weights must sum to a positive value")
	}
	if len(w.RelicTiers) == 0 {
		return fmt.Errorf("relic tiers must not be empty")
	}
	jackpots := 0
	tierWeights := 0
	for _, tier := range w.RelicTiers {
		if tier.Weight < 0 {
			return fmt.Errorf("relic tier %q has negative weight", tier.Name)
		}
		tierWeights += tier.Weight
		if tier.Jackpot {
			jackpots++
		}
	}
	if tierWeights <= 0 {
		return fmt.Errorf("relic tier weights must sum to a positive value")
	}
	if jackpots > 0 && (w.JackpotFraction <= 0 || w.JackpotFraction > 1) {
		return fmt.Errorf("jackpot_fraction must be in (0, 1], got %v", w.JackpotFraction)
	}

	seen := make(map[string]struct{}, len(e.Upgrades))
	for _, u := range e.Upgrades {
		if u.ID == "" {
			return fmt.Errorf("upgrade with empty id")
		}
		if _, dup := seen[u.ID]; dup {
			return fmt.Errorf("duplicate upgrade id %q", u.ID)
		}
		seen[u.ID] = struct{}{}

		switch u.Category {
		case UpgradeClick, UpgradeAuto:
			if u.Effect <= 0 {
				return fmt.Errorf("upgrade %q: effect must be positive", u.ID)
			}
		case UpgradePremium:
			if u.DurationSec <= 0 {
				return fmt.Errorf("upgrade %q: premium needs duration_sec", u.ID)
			}
		case UpgradeLimited:
			if u.StockCap <= 0 {
				return fmt.Errorf("upgrade %q: limited needs stock_cap", u.ID)
			}
		default:
			return fmt.Errorf("upgrade %q: unknown category %q", u.ID, u.Category)
		}
		if u.Currency != "nrc" && u.Currency != "ton" {
			return fmt.Errorf("upgrade %q: unknown currency %q", u.ID, u.Currency)
		}
		if u.BaseCost <= 0 {
			return fmt.Errorf("upgrade %q: base_cost must be positive", u.ID)
		}
		if u.Scale < 0 {
			return fmt.Errorf("upgrade %q: scale must be non-negative", u.ID)
		}
	}

	if e.GenesisLiquidity < 0 || e.GenesisTreasury < 0 {
		return fmt.Errorf("genesis pool funding must be non-negative")
	}

	return nil
}

// Upgrade returns the catalog entry with the given ID.
func (e *Economy) Upgrade(id string) (UpgradeDef, bool) {
	for _, u := range e.Upgrades {
		if u.ID == id {
			return u, true
		}
	}
	return UpgradeDef{}, false
}
