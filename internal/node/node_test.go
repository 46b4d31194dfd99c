package node

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashrush-gg/hashrush-core/config"
	"github.com/hashrush-gg/hashrush-core/internal/persist"
)

// testConfig returns a testnet config rooted in a temp directory with the
// RPC server on an ephemeral port.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default(config.Testnet)
	cfg.DataDir = t.TempDir()
	cfg.RPC.Enabled = true
	cfg.RPC.Addr = "127.0.0.1"
	cfg.RPC.Port = 0
	cfg.Sampler.IntervalSec = 3600 // keep the sampler quiet during tests
	return cfg
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	tests := []struct {
		input, want string
	}{
		{"~/foo/bar", filepath.Join(home, "foo/bar")},
		{"~/.hashrush/ledger", filepath.Join(home, ".hashrush/ledger")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"", ""},
	}
	for _, tt := range tests {
		got := expandHome(tt.input)
		if got != tt.want {
			t.Errorf("expandHome(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLoadEconomyRules_Defaults(t *testing.T) {
	cfg := testConfig(t)
	rules, err := loadEconomyRules(cfg)
	if err != nil {
		t.Fatalf("loadEconomyRules: %v", err)
	}
	if rules.Network != string(config.Testnet) {
		t.Fatalf("network = %q, want testnet", rules.Network)
	}
	if rules.Mining.InitialDifficulty != 1000 {
		t.Fatalf("difficulty = %d, want testnet default 1000", rules.Mining.InitialDifficulty)
	}
}

func TestLoadEconomyRules_FileOverride(t *testing.T) {
	cfg := testConfig(t)

	rules := config.TestnetEconomy()
	rules.Mining.InitialDifficulty = 5000
	if err := os.MkdirAll(cfg.NetworkDataDir(), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := rules.Save(cfg.EconomyFile()); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := loadEconomyRules(cfg)
	if err != nil {
		t.Fatalf("loadEconomyRules: %v", err)
	}
	if loaded.Mining.InitialDifficulty != 5000 {
		t.Fatalf("difficulty = %d, want override 5000", loaded.Mining.InitialDifficulty)
	}
}

func TestLoadEconomyRules_WrongNetwork(t *testing.T) {
	cfg := testConfig(t)

	if err := os.MkdirAll(cfg.NetworkDataDir(), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := config.MainnetEconomy().Save(cfg.EconomyFile()); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := loadEconomyRules(cfg); err == nil {
		t.Fatal("expected error for mismatched network")
	}
}

func TestNode_Lifecycle(t *testing.T) {
	cfg := testConfig(t)

	n, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := n.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer n.Stop()

	// The RPC server must answer on its ephemeral port.
	body := []byte(`{"jsonrpc":"2.0","method":"chain_getSnapshot","id":1}`)
	resp, err := http.Post("http://"+n.RPCAddr(), "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	var envelope struct {
		Result struct {
			Height uint64 `json:"height"`
		} `json:"result"`
		Error *struct {
			Code int `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error != nil {
		t.Fatalf("rpc error code %d", envelope.Error.Code)
	}
	if envelope.Result.Height != 0 {
		t.Fatalf("height = %d, want 0", envelope.Result.Height)
	}
}

func TestNode_PersistsAcrossRestart(t *testing.T) {
	cfg := testConfig(t)

	n, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := n.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Close one testnet block, then shut down cleanly.
	if _, err := n.Engine().SubmitHashes("alice", 1000); err != nil {
		t.Fatalf("submit: %v", err)
	}
	n.Stop()

	n2, err := New(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer n2.Stop()

	if n2.Height() != 1 {
		t.Fatalf("height after restart = %d, want 1", n2.Height())
	}
	acct, err := n2.Engine().Account("alice")
	if err != nil {
		t.Fatalf("account: %v", err)
	}
	if acct.TokenBalance != 45 {
		t.Fatalf("balance after restart = %v, want 45", acct.TokenBalance)
	}
}

func TestNode_ExportSnapshot(t *testing.T) {
	cfg := testConfig(t)

	n, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer n.Stop()

	if _, err := n.Engine().SubmitHashes("alice", 1000); err != nil {
		t.Fatalf("submit: %v", err)
	}

	path, err := n.ExportSnapshot()
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	backup, err := persist.ReadSnapshot(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if backup.Network != string(config.Testnet) {
		t.Fatalf("network = %q", backup.Network)
	}
	if backup.Chain.BlockHeight != 1 {
		t.Fatalf("snapshot height = %d, want 1", backup.Chain.BlockHeight)
	}
	if len(backup.Accounts) != 1 || backup.Accounts[0].ID != "alice" {
		t.Fatalf("accounts = %+v", backup.Accounts)
	}
}
