package engine

import (
	"math"

	"github.com/hashrush-gg/hashrush-core/config"
	"github.com/hashrush-gg/hashrush-core/internal/econ"
	"github.com/hashrush-gg/hashrush-core/internal/log"
	"github.com/hashrush-gg/hashrush-core/pkg/types"
)

// PurchaseResult reports one catalog purchase.
type PurchaseResult struct {
	ItemID         string  `json:"item_id"`
	Level          int     `json:"level"` // Owned level after the purchase.
	Cost           float64 `json:"cost"`
	TokenBalance   float64 `json:"token_balance"`
	ReserveBalance float64 `json:"reserve_balance"`
	PremiumUntil   int64   `json:"premium_until,omitempty"`
}

// Purchase buys one level of a catalog upgrade. Cost scales geometrically
// with the owned level. Reserve-paid revenue is split across treasury,
// liquidity, and the reserve pool; token-paid revenue goes entirely to the
// token reward pool. Limited items are gated by a global stock cap instead
// of a per-account level cap.
func (e *Engine) Purchase(player types.PlayerID, itemID string, currency types.Currency) (PurchaseResult, error) {
	if err := checkPlayer(player); err != nil {
		return PurchaseResult{}, err
	}
	item, ok := e.rules.Upgrade(itemID)
	if !ok {
		return PurchaseResult{}, econ.Validationf("unknown item %q", itemID)
	}
	if string(currency) != item.Currency {
		return PurchaseResult{}, econ.Validationf("item %q is priced in %s", itemID, item.Currency)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.chain
	acct := e.account(player)
	now := e.now()

	level := acct.Level(itemID)
	if item.Category == config.UpgradeLimited {
		if c.LimitedStock[itemID] >= item.StockCap {
			return PurchaseResult{}, econ.Capacityf("item %q is sold out", itemID)
		}
	} else if item.MaxLevel > 0 && level >= item.MaxLevel {
		return PurchaseResult{}, econ.Capacityf("item %q already at max level %d", itemID, item.MaxLevel)
	}

	cost := item.BaseCost * math.Pow(1+item.Scale, float64(level))

	var balance *float64
	if currency == types.CurrencyReserve {
		balance = &acct.ReserveBalance
	} else {
		balance = &acct.TokenBalance
	}
	if *balance < cost {
		return PurchaseResult{}, econ.InsufficientFundsf("balance %v below cost %v", *balance, cost)
	}

	*balance -= cost
	if currency == types.CurrencyReserve {
		split := e.rules.PurchaseSplit
		c.TreasuryReserve += cost * float64(split.TreasuryPct) / 100
		c.LiquidityReserve += cost * float64(split.LiquidityPct) / 100
		c.RewardPoolReserve += cost * float64(split.PoolPct) / 100
	} else {
		c.RewardPoolToken += cost
	}

	switch item.Category {
	case config.UpgradeClick:
		acct.ClickPower += item.Effect
	case config.UpgradeAuto:
		acct.AutoRate += item.Effect
	case config.UpgradePremium:
		// Stack on top of unexpired time only.
		base := acct.PremiumUntil
		if base < now {
			base = now
		}
		acct.PremiumUntil = base + item.DurationSec
	case config.UpgradeLimited:
		acct.ClickPower += item.Effect
		c.LimitedStock[itemID]++
	}
	if acct.UpgradeLevels == nil {
		acct.UpgradeLevels = make(map[string]int)
	}
	acct.UpgradeLevels[itemID] = level + 1

	e.store.PutChain(c)
	e.store.PutAccount(acct)

	log.Shop.Debug().
		Str("player", string(player)).
		Str("item", itemID).
		Int("level", level+1).
		Float64("cost", cost).
		Msg("purchase")

	return PurchaseResult{
		ItemID:         itemID,
		Level:          level + 1,
		Cost:           cost,
		TokenBalance:   acct.TokenBalance,
		ReserveBalance: acct.ReserveBalance,
		PremiumUntil:   acct.PremiumUntil,
	}, nil
}
