package engine

import (
	"encoding/binary"
	"math"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/hashrush-gg/hashrush-core/config"
	"github.com/hashrush-gg/hashrush-core/internal/econ"
	"github.com/hashrush-gg/hashrush-core/internal/log"
	"github.com/hashrush-gg/hashrush-core/pkg/types"
)

// WagerResult reports one wager round.
type WagerResult struct {
	Game       types.GameID `json:"game"`
	Outcome    string       `json:"outcome"` // "cherry|bell|seven" or a relic tier name.
	Multiplier float64      `json:"multiplier,omitempty"`
	Jackpot    bool         `json:"jackpot,omitempty"`
	Payout     float64      `json:"payout"`
	Balance    float64      `json:"balance"` // New balance in the bet currency.
	Nonce      uint64       `json:"nonce"`   // Draw counter, for fairness audits.
}

// Wager plays one round of a mini-game. The bet is debited into the shared
// pool before the draw, so the pool can always cover at least the bet; the
// payout is capped at the pool balance, which therefore never goes
// negative. Draws are derived from blake3(seed, player, nonce).
func (e *Engine) Wager(player types.PlayerID, game types.GameID, bet float64, currency types.Currency) (WagerResult, error) {
	if err := checkPlayer(player); err != nil {
		return WagerResult{}, err
	}
	if !game.Valid() {
		return WagerResult{}, econ.Validationf("unknown game %q", game)
	}
	if !currency.Valid() {
		return WagerResult{}, econ.Validationf("unknown currency %q", currency)
	}
	w := e.rules.Wager
	if bet < w.MinBet || bet > w.MaxBet {
		return WagerResult{}, econ.Validationf("bet %v outside [%v, %v]", bet, w.MinBet, w.MaxBet)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.chain
	acct := e.account(player)

	balance, pool := e.wagerAccounts(acct, currency)
	if *balance < bet {
		return WagerResult{}, econ.InsufficientFundsf("balance %v below bet %v", *balance, bet)
	}

	// Fund the pool with the bet before drawing.
	*balance -= bet
	*pool += bet
	acct.Wagers++
	acct.WagerNonce++

	digest := e.drawDigest(player, acct.WagerNonce)

	res := WagerResult{Game: game, Nonce: acct.WagerNonce}
	switch game {
	case types.GameSlots:
		res.Outcome, res.Multiplier, res.Jackpot = e.spinSlots(digest)
	case types.GameRelic:
		res.Outcome, res.Multiplier, res.Jackpot = e.openRelic(digest)
	}

	// Relic jackpots pay a pool fraction; slots triple sevens is a fixed
	// multiple like every other line.
	payout := bet * res.Multiplier
	if res.Jackpot && game == types.GameRelic {
		payout = math.Floor(*pool * w.JackpotFraction)
	}
	if payout > *pool {
		payout = *pool
	}
	*pool -= payout
	*balance += payout
	res.Payout = payout
	res.Balance = *balance

	e.store.PutChain(c)
	e.store.PutAccount(acct)

	log.Wager.Debug().
		Str("player", string(player)).
		Str("game", string(game)).
		Float64("bet", bet).
		Str("outcome", res.Outcome).
		Float64("payout", payout).
		Msg("wager")
	return res, nil
}

// wagerAccounts resolves the balance and pool touched by a bet currency.
func (e *Engine) wagerAccounts(acct *econ.Account, currency types.Currency) (balance, pool *float64) {
	if currency == types.CurrencyReserve {
		return &acct.ReserveBalance, &e.chain.RewardPoolReserve
	}
	return &acct.TokenBalance, &e.chain.RewardPoolToken
}

// drawDigest derives the random bytes for one draw.
func (e *Engine) drawDigest(player types.PlayerID, nonce uint64) [32]byte {
	buf := make([]byte, 0, len(e.seed)+len(player)+8)
	buf = append(buf, e.seed[:]...)
	buf = append(buf, player...)
	buf = binary.BigEndian.AppendUint64(buf, nonce)
	return blake3.Sum256(buf)
}

// spinSlots draws three reel symbols. A matched triple pays the triple
// multiplier, triple sevens pays the jackpot multiplier, and two sevens
// out of three pay the pair multiplier.
func (e *Engine) spinSlots(digest [32]byte) (outcome string, mult float64, jackpot bool) {
	w := e.rules.Wager
	reels := make([]string, 3)
	sevens := 0
	for i := range reels {
		r := binary.BigEndian.Uint64(digest[i*8 : i*8+8])
		reels[i] = pickSymbol(w.SlotsReel, r)
		if reels[i] == "seven" {
			sevens++
		}
	}
	outcome = strings.Join(reels, "|")

	switch {
	case sevens == 3:
		return outcome, w.SlotsSevenMult, true
	case reels[0] == reels[1] && reels[1] == reels[2]:
		return outcome, w.SlotsTripleMult, false
	case sevens == 2:
		return outcome, w.SlotsPairMult, false
	}
	return outcome, 0, false
}

// openRelic draws one rarity tier from the five-tier table.
func (e *Engine) openRelic(digest [32]byte) (outcome string, mult float64, jackpot bool) {
	tiers := e.rules.Wager.RelicTiers
	total := 0
	for _, t := range tiers {
		total += t.Weight
	}
	r := int(binary.BigEndian.Uint64(digest[:8]) % uint64(total))
	for _, t := range tiers {
		if r < t.Weight {
			return t.Name, t.Multiplier, t.Jackpot
		}
		r -= t.Weight
	}
	last := tiers[len(tiers)-1]
	return last.Name, last.Multiplier, last.Jackpot
}

// pickSymbol draws one weighted reel symbol.
func pickSymbol(reel []config.SlotSymbol, r uint64) string {
	total := 0
	for _, s := range reel {
		total += s.Weight
	}
	n := int(r % uint64(total))
	for _, s := range reel {
		if n < s.Weight {
			return s.Name
		}
		n -= s.Weight
	}
	return reel[len(reel)-1].Name
}
