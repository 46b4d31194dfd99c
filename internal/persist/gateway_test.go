package persist

import (
	"testing"
	"time"

	"github.com/hashrush-gg/hashrush-core/config"
	"github.com/hashrush-gg/hashrush-core/internal/econ"
	"github.com/hashrush-gg/hashrush-core/internal/storage"
)

// waitFor polls until the condition holds or the deadline passes. The
// gateway writes asynchronously, so reads after Put need a grace period.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition never held")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestGateway_ChainRoundTrip(t *testing.T) {
	db := storage.NewMemory()
	g := Open(db)
	defer g.Close()

	c := econ.NewChainState(config.MainnetEconomy(), 1000)
	c.BlockHeight = 7
	c.TotalMined = 350
	g.PutChain(c)

	waitFor(t, func() bool {
		got, err := g.LoadChain()
		return err == nil && got != nil && got.BlockHeight == 7
	})

	got, err := g.LoadChain()
	if err != nil {
		t.Fatalf("LoadChain() error: %v", err)
	}
	if got.TotalMined != 350 {
		t.Errorf("total mined = %v, want 350", got.TotalMined)
	}
	if got.RewardSplit.CloserPct != 70 {
		t.Errorf("split closer = %d, want 70", got.RewardSplit.CloserPct)
	}
}

func TestGateway_LoadChain_FreshDB(t *testing.T) {
	g := Open(storage.NewMemory())
	defer g.Close()

	c, err := g.LoadChain()
	if err != nil {
		t.Fatalf("LoadChain() error: %v", err)
	}
	if c != nil {
		t.Error("fresh database should yield a nil chain record")
	}
}

func TestGateway_AccountsRoundTrip(t *testing.T) {
	db := storage.NewMemory()
	g := Open(db)
	defer g.Close()

	a := econ.NewAccount("alice", 1000)
	a.TokenBalance = 45
	a.UpgradeLevels["pickaxe"] = 2
	b := econ.NewAccount("bob", 1000)
	b.LifetimeHashes = 9000
	g.PutAccount(a)
	g.PutAccount(b)

	waitFor(t, func() bool {
		got, err := g.LoadAccounts()
		return err == nil && len(got) == 2
	})

	got, err := g.LoadAccounts()
	if err != nil {
		t.Fatalf("LoadAccounts() error: %v", err)
	}
	byID := map[string]*econ.Account{}
	for _, acct := range got {
		byID[string(acct.ID)] = acct
	}
	if byID["alice"] == nil || byID["alice"].TokenBalance != 45 {
		t.Errorf("alice record = %+v", byID["alice"])
	}
	if byID["alice"].UpgradeLevels["pickaxe"] != 2 {
		t.Error("upgrade levels lost in round trip")
	}
	if byID["bob"] == nil || byID["bob"].LifetimeHashes != 9000 {
		t.Errorf("bob record = %+v", byID["bob"])
	}
}

func TestGateway_PriceHistoryRoundTrip(t *testing.T) {
	g := Open(storage.NewMemory())
	defer g.Close()

	points := []econ.PricePoint{{Time: 1, Price: 0.001}, {Time: 300, Price: 0.002}}
	g.PutPriceHistory(points)

	waitFor(t, func() bool {
		got, err := g.LoadPriceHistory()
		return err == nil && len(got) == 2
	})

	got, _ := g.LoadPriceHistory()
	if got[1].Price != 0.002 {
		t.Errorf("points = %+v", got)
	}
}

func TestGateway_LatestWriteWins(t *testing.T) {
	g := Open(storage.NewMemory())
	defer g.Close()

	c := econ.NewChainState(config.MainnetEconomy(), 1000)
	for h := uint64(1); h <= 20; h++ {
		c.BlockHeight = h
		g.PutChain(c)
	}
	g.Close()

	got, err := g.LoadChain()
	if err != nil {
		t.Fatalf("LoadChain() error: %v", err)
	}
	if got.BlockHeight != 20 {
		t.Errorf("height = %d, want the last committed 20", got.BlockHeight)
	}
}

func TestGateway_NamespacesDoNotCollide(t *testing.T) {
	db := storage.NewMemory()
	g := Open(db)
	defer g.Close()

	// An account named like the chain record key must not shadow it.
	c := econ.NewChainState(config.MainnetEconomy(), 1000)
	c.BlockHeight = 3
	g.PutChain(c)
	g.PutAccount(econ.NewAccount("state", 1000))

	waitFor(t, func() bool {
		accts, err := g.LoadAccounts()
		return err == nil && len(accts) == 1
	})

	got, err := g.LoadChain()
	if err != nil {
		t.Fatal(err)
	}
	if got.BlockHeight != 3 {
		t.Errorf("chain record clobbered: %+v", got)
	}
}
