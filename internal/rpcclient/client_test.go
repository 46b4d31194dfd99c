package rpcclient

import (
	"encoding/json"
	"testing"

	"github.com/hashrush-gg/hashrush-core/config"
	"github.com/hashrush-gg/hashrush-core/internal/engine"
	"github.com/hashrush-gg/hashrush-core/internal/rpc"
)

// setupTestEnv starts a testnet RPC server on a random port and returns a
// client pointed at it.
func setupTestEnv(t *testing.T) *Client {
	t.Helper()

	eng, err := engine.New(config.TestnetEconomy(), engine.Options{})
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	srv := rpc.New("127.0.0.1:0", eng, config.RPCConfig{})
	if err := srv.Start(); err != nil {
		t.Fatalf("start rpc: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })

	return New("http://" + srv.Addr() + "/")
}

func TestClient_ChainGetSnapshot(t *testing.T) {
	client := setupTestEnv(t)

	var snap struct {
		Height     uint64  `json:"height"`
		Difficulty uint64  `json:"difficulty"`
		Price      float64 `json:"price"`
	}
	if err := client.Call("chain_getSnapshot", nil, &snap); err != nil {
		t.Fatalf("Call error: %v", err)
	}

	if snap.Height != 0 {
		t.Errorf("height = %d, want 0", snap.Height)
	}
	if snap.Difficulty != 1000 {
		t.Errorf("difficulty = %d, want testnet 1000", snap.Difficulty)
	}
	if snap.Price == 0 {
		t.Error("price is zero, want floor price")
	}
}

func TestClient_SubmitHashes(t *testing.T) {
	client := setupTestEnv(t)

	var result struct {
		BlocksClosed int     `json:"blocks_closed"`
		Reward       float64 `json:"reward"`
	}
	err := client.Call("mine_submitHashes",
		rpc.SubmitParam{Player: "alice", Amount: 1000}, &result)
	if err != nil {
		t.Fatalf("Call error: %v", err)
	}

	if result.BlocksClosed != 1 {
		t.Errorf("blocks closed = %d, want 1", result.BlocksClosed)
	}
	if result.Reward != 45 {
		t.Errorf("reward = %v, want 45", result.Reward)
	}
}

func TestClient_EngineError(t *testing.T) {
	client := setupTestEnv(t)

	var raw json.RawMessage
	err := client.Call("wager_play",
		rpc.WagerParam{Player: "alice", Game: "slots", Bet: 10, Currency: "nrc"}, &raw)
	if err == nil {
		t.Fatal("expected error for broke player")
	}

	rpcErr, ok := err.(*RPCError)
	if !ok {
		t.Fatalf("expected RPCError, got %T: %v", err, err)
	}
	if rpcErr.Code != rpc.CodeInsufficientFunds {
		t.Errorf("error code = %d, want %d", rpcErr.Code, rpc.CodeInsufficientFunds)
	}
}

func TestClient_Call_InvalidEndpoint(t *testing.T) {
	client := New("http://127.0.0.1:1/") // port 1 — should refuse

	var raw json.RawMessage
	if err := client.Call("chain_getSnapshot", nil, &raw); err == nil {
		t.Fatal("expected connection error")
	}
}

func TestClient_Call_MethodNotFound(t *testing.T) {
	client := setupTestEnv(t)

	var raw json.RawMessage
	err := client.Call("nonexistent_method", nil, &raw)
	if err == nil {
		t.Fatal("expected error for unknown method")
	}

	rpcErr, ok := err.(*RPCError)
	if !ok {
		t.Fatalf("expected RPCError, got %T: %v", err, err)
	}
	if rpcErr.Code != rpc.CodeMethodNotFound {
		t.Errorf("error code = %d, want %d", rpcErr.Code, rpc.CodeMethodNotFound)
	}
}
