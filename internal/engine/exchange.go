package engine

import (
	"github.com/hashrush-gg/hashrush-core/internal/econ"
	"github.com/hashrush-gg/hashrush-core/internal/log"
	"github.com/hashrush-gg/hashrush-core/pkg/types"
)

// TradeResult reports one exchange trade.
type TradeResult struct {
	Direction      types.TradeDirection `json:"direction"`
	AmountToken    float64              `json:"amount_token"`
	AmountReserve  float64              `json:"amount_reserve"`
	Price          float64              `json:"price"`
	TokenBalance   float64              `json:"token_balance"`
	ReserveBalance float64              `json:"reserve_balance"`
}

// Trade executes an AMM trade of amount tokens in the given direction.
// Price is liquidityReserve/totalMined with a floor-price fallback. Sells
// require active premium and move the sold tokens into the reward pool;
// buys are filled from the reward pool, which is the counterparty. Both
// directions are bounded by per-day caps that reset on calendar rollover.
func (e *Engine) Trade(player types.PlayerID, direction types.TradeDirection, amount float64) (TradeResult, error) {
	if err := checkPlayer(player); err != nil {
		return TradeResult{}, err
	}
	if amount <= 0 {
		return TradeResult{}, econ.Validationf("trade amount must be positive")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.chain
	acct := e.account(player)
	now := e.now()
	acct.RolloverDaily(now)

	price := c.Price(e.rules.Exchange.FloorPrice)

	// All rejection paths run before any mutation.
	switch direction {
	case types.TradeSell:
		if !acct.PremiumActive(now) {
			return TradeResult{}, econ.Validationf("selling requires active premium")
		}
		if acct.DailySold+amount > c.ExchangeCaps.MaxDailySell {
			return TradeResult{}, econ.Capacityf("daily sell cap: %v of %v remaining",
				c.ExchangeCaps.MaxDailySell-acct.DailySold, c.ExchangeCaps.MaxDailySell)
		}
		if acct.TokenBalance < amount {
			return TradeResult{}, econ.InsufficientFundsf("token balance %v below %v", acct.TokenBalance, amount)
		}
		if c.LiquidityReserve < amount*price {
			return TradeResult{}, econ.InsufficientFundsf("liquidity reserve %v cannot pay %v", c.LiquidityReserve, amount*price)
		}
	case types.TradeBuy:
		if acct.DailyBought+amount > c.ExchangeCaps.MaxDailyBuy {
			return TradeResult{}, econ.Capacityf("daily buy cap: %v of %v remaining",
				c.ExchangeCaps.MaxDailyBuy-acct.DailyBought, c.ExchangeCaps.MaxDailyBuy)
		}
		if acct.ReserveBalance < amount*price {
			return TradeResult{}, econ.InsufficientFundsf("reserve balance %v below cost %v", acct.ReserveBalance, amount*price)
		}
		if c.RewardPoolToken < amount {
			return TradeResult{}, econ.InsufficientFundsf("reward pool %v cannot fill %v", c.RewardPoolToken, amount)
		}
	default:
		return TradeResult{}, econ.Validationf("unknown trade direction %q", direction)
	}

	value := amount * price
	switch direction {
	case types.TradeSell:
		acct.TokenBalance -= amount
		acct.ReserveBalance += value
		c.LiquidityReserve -= value
		c.RewardPoolToken += amount
		acct.DailySold += amount
	case types.TradeBuy:
		acct.ReserveBalance -= value
		acct.TokenBalance += amount
		c.LiquidityReserve += value
		c.RewardPoolToken -= amount
		acct.DailyBought += amount
	}
	acct.Trades++

	e.samplePriceLocked(now)

	e.store.PutChain(c)
	e.store.PutAccount(acct)

	log.Exchange.Debug().
		Str("player", string(player)).
		Str("direction", string(direction)).
		Float64("amount", amount).
		Float64("price", price).
		Msg("trade")

	return TradeResult{
		Direction:      direction,
		AmountToken:    amount,
		AmountReserve:  value,
		Price:          price,
		TokenBalance:   acct.TokenBalance,
		ReserveBalance: acct.ReserveBalance,
	}, nil
}

// samplePriceLocked appends a price-history sample if the last one is
// older than the sample interval. Rate-limited, not per-trade. Caller
// holds the lock.
func (e *Engine) samplePriceLocked(now int64) {
	if n := len(e.prices); n > 0 && now-e.prices[n-1].Time < int64(e.rules.Exchange.SampleIntervalSec) {
		return
	}
	e.prices = econ.AppendPrice(e.prices, econ.PricePoint{
		Time:  now,
		Price: e.chain.Price(e.rules.Exchange.FloorPrice),
	}, e.rules.Exchange.PriceHistoryCap)
	e.store.PutPriceHistory(e.prices)
}
