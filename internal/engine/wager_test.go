package engine

import (
	"testing"

	"github.com/hashrush-gg/hashrush-core/config"
	"github.com/hashrush-gg/hashrush-core/internal/econ"
	"github.com/hashrush-gg/hashrush-core/pkg/types"
)

// riggedReel makes every slots spin land the given symbol.
func riggedReel(symbol string) []config.SlotSymbol {
	return []config.SlotSymbol{{Name: symbol, Weight: 1}}
}

// riggedTiers makes every relic draw land the given tier.
func riggedTiers(tier config.RelicTier) []config.RelicTier {
	tier.Weight = 1
	return []config.RelicTier{tier}
}

func TestWager_JackpotCappedAtPool(t *testing.T) {
	rules := config.MainnetEconomy()
	rules.Wager.SlotsReel = riggedReel("seven") // always triple sevens, 50x
	e := newTestEngine(t, rules, &testClock{now: 1000})
	e.chain.RewardPoolToken = 3
	seedAccount(e, "alice", 10, 0)

	// Bet 10 into a pool of 3: pool is 13 before the draw. The 50x win
	// requests 500 but only 13 is available.
	res, err := e.Wager("alice", types.GameSlots, 10, types.CurrencyToken)
	if err != nil {
		t.Fatalf("Wager() error: %v", err)
	}
	if !almostEqual(res.Payout, 13) {
		t.Errorf("payout = %v, want 13", res.Payout)
	}
	if !almostEqual(e.chain.RewardPoolToken, 0) {
		t.Errorf("pool = %v, want 0", e.chain.RewardPoolToken)
	}
	if a := e.account("alice"); !almostEqual(a.TokenBalance, 13) {
		t.Errorf("balance = %v, want 13", a.TokenBalance)
	}
}

func TestWager_SlotsTriple(t *testing.T) {
	rules := config.MainnetEconomy()
	rules.Wager.SlotsReel = riggedReel("cherry") // always a 10x triple
	e := newTestEngine(t, rules, &testClock{now: 1000})
	e.chain.RewardPoolToken = 1000
	seedAccount(e, "bob", 50, 0)

	res, err := e.Wager("bob", types.GameSlots, 10, types.CurrencyToken)
	if err != nil {
		t.Fatalf("Wager() error: %v", err)
	}
	if res.Outcome != "cherry|cherry|cherry" {
		t.Errorf("outcome = %q", res.Outcome)
	}
	if !almostEqual(res.Payout, 100) {
		t.Errorf("payout = %v, want 100", res.Payout)
	}
	// Pool funded by the bet, drained by the payout: 1000 + 10 - 100.
	if !almostEqual(e.chain.RewardPoolToken, 910) {
		t.Errorf("pool = %v, want 910", e.chain.RewardPoolToken)
	}
}

func TestWager_LossFundsPool(t *testing.T) {
	rules := config.MainnetEconomy()
	rules.Wager.RelicTiers = riggedTiers(config.RelicTier{Name: "common", Multiplier: 0})
	e := newTestEngine(t, rules, &testClock{now: 1000})
	seedAccount(e, "carol", 100, 0)

	res, err := e.Wager("carol", types.GameRelic, 25, types.CurrencyToken)
	if err != nil {
		t.Fatalf("Wager() error: %v", err)
	}
	if res.Payout != 0 {
		t.Errorf("payout = %v, want 0", res.Payout)
	}
	if !almostEqual(e.chain.RewardPoolToken, 25) {
		t.Errorf("pool = %v, want 25 (the lost bet)", e.chain.RewardPoolToken)
	}
	if a := e.account("carol"); !almostEqual(a.TokenBalance, 75) {
		t.Errorf("balance = %v, want 75", a.TokenBalance)
	}
}

func TestWager_RelicJackpotPaysPoolFraction(t *testing.T) {
	rules := config.MainnetEconomy() // jackpot fraction 0.25
	rules.Wager.RelicTiers = riggedTiers(config.RelicTier{Name: "legendary", Jackpot: true})
	e := newTestEngine(t, rules, &testClock{now: 1000})
	e.chain.RewardPoolToken = 990
	seedAccount(e, "dave", 100, 0)

	res, err := e.Wager("dave", types.GameRelic, 10, types.CurrencyToken)
	if err != nil {
		t.Fatalf("Wager() error: %v", err)
	}
	// Pool is 1000 after the bet: floor(1000 * 0.25) = 250.
	if !almostEqual(res.Payout, 250) {
		t.Errorf("payout = %v, want 250", res.Payout)
	}
	if !res.Jackpot {
		t.Error("outcome should be flagged as jackpot")
	}
	if !almostEqual(e.chain.RewardPoolToken, 750) {
		t.Errorf("pool = %v, want 750", e.chain.RewardPoolToken)
	}
}

func TestWager_ReserveCurrencyUsesReservePool(t *testing.T) {
	rules := config.MainnetEconomy()
	rules.Wager.RelicTiers = riggedTiers(config.RelicTier{Name: "common", Multiplier: 0})
	e := newTestEngine(t, rules, &testClock{now: 1000})
	seedAccount(e, "erin", 0, 50)

	if _, err := e.Wager("erin", types.GameRelic, 5, types.CurrencyReserve); err != nil {
		t.Fatalf("Wager() error: %v", err)
	}
	if !almostEqual(e.chain.RewardPoolReserve, 5) {
		t.Errorf("reserve pool = %v, want 5", e.chain.RewardPoolReserve)
	}
	if e.chain.RewardPoolToken != 0 {
		t.Error("token pool must be untouched by a reserve bet")
	}
}

func TestWager_Rejections(t *testing.T) {
	rules := config.MainnetEconomy() // bets bounded to [1, 1000]
	e := newTestEngine(t, rules, &testClock{now: 1000})
	seedAccount(e, "frank", 5, 0)

	tests := []struct {
		name     string
		player   types.PlayerID
		game     types.GameID
		bet      float64
		currency types.Currency
		kind     econ.Kind
	}{
		{"below min bet", "frank", types.GameSlots, 0.5, types.CurrencyToken, econ.KindValidation},
		{"above max bet", "frank", types.GameSlots, 5000, types.CurrencyToken, econ.KindValidation},
		{"unknown game", "frank", "dice", 10, types.CurrencyToken, econ.KindValidation},
		{"unknown currency", "frank", types.GameSlots, 2, "usd", econ.KindValidation},
		{"insufficient balance", "frank", types.GameSlots, 50, types.CurrencyToken, econ.KindInsufficientFunds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Wager(tt.player, tt.game, tt.bet, tt.currency)
			if err == nil {
				t.Fatal("expected rejection")
			}
			if got := econ.KindOf(err); got != tt.kind {
				t.Errorf("kind = %v, want %v", got, tt.kind)
			}
		})
	}
	if a := e.account("frank"); a.TokenBalance != 5 || a.Wagers != 0 {
		t.Error("rejected wagers must not mutate the account")
	}
}

func TestWager_NonceAdvancesPerRound(t *testing.T) {
	rules := config.MainnetEconomy()
	rules.Wager.RelicTiers = riggedTiers(config.RelicTier{Name: "common", Multiplier: 0})
	e := newTestEngine(t, rules, &testClock{now: 1000})
	seedAccount(e, "gina", 100, 0)

	r1, err := e.Wager("gina", types.GameRelic, 1, types.CurrencyToken)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := e.Wager("gina", types.GameRelic, 1, types.CurrencyToken)
	if err != nil {
		t.Fatal(err)
	}
	if r2.Nonce != r1.Nonce+1 {
		t.Errorf("nonces = %d, %d; want consecutive", r1.Nonce, r2.Nonce)
	}
}
