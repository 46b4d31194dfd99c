package types

import "fmt"

// PlayerID identifies a player account. IDs are opaque strings assigned by
// the platform layer (bot, launcher) and are trusted as-is: the ledger never
// derives authority from them beyond key lookup.
type PlayerID string

// IsValid reports whether the ID is usable as a ledger key.
func (p PlayerID) IsValid() bool {
	return len(p) > 0 && len(p) <= MaxPlayerIDLen
}

// MaxPlayerIDLen bounds player IDs so a hostile client cannot bloat storage keys.
const MaxPlayerIDLen = 64

// Currency selects which balance an operation touches.
type Currency string

const (
	// CurrencyToken is the mined in-game token (NRC).
	CurrencyToken Currency = "nrc"
	// CurrencyReserve is the reserve currency backing the exchange (TON).
	CurrencyReserve Currency = "ton"
)

// Valid reports whether c is a known currency.
func (c Currency) Valid() bool {
	return c == CurrencyToken || c == CurrencyReserve
}

// ParseCurrency converts a wire string into a Currency.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown currency %q", s)
	}
	return c, nil
}

// TradeDirection selects the side of an exchange operation.
type TradeDirection string

const (
	TradeSell TradeDirection = "sell" // NRC -> TON
	TradeBuy  TradeDirection = "buy"  // TON -> NRC
)

// Valid reports whether d is a known direction.
func (d TradeDirection) Valid() bool {
	return d == TradeSell || d == TradeBuy
}

// GameID identifies a wager mini-game.
type GameID string

const (
	GameSlots GameID = "slots" // three-reel slot machine
	GameRelic GameID = "relic" // five-tier relic chest
)

// Valid reports whether g is a known game.
func (g GameID) Valid() bool {
	return g == GameSlots || g == GameRelic
}
