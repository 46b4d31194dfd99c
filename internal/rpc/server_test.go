package rpc

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/hashrush-gg/hashrush-core/config"
	"github.com/hashrush-gg/hashrush-core/internal/engine"
)

// newTestServer starts a server on an ephemeral port and returns its base URL.
func newTestServer(t *testing.T, cfg config.RPCConfig) (*Server, string) {
	t.Helper()

	eng, err := engine.New(config.TestnetEconomy(), engine.Options{})
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	s := New("127.0.0.1:0", eng, cfg)
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { s.Stop() })

	return s, "http://" + s.Addr()
}

// rpcCall posts a JSON-RPC request and decodes the response envelope.
func rpcCall(t *testing.T, url, method string, params interface{}) Response {
	t.Helper()

	body, err := json.Marshal(Request{JSONRPC: "2.0", Method: method, Params: params, ID: 1})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	httpResp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer httpResp.Body.Close()

	var resp Response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

// resultAs re-decodes a successful response's result into target.
func resultAs(t *testing.T, resp Response, target interface{}) {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected error: %d %s", resp.Error.Code, resp.Error.Message)
	}
	data, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		t.Fatalf("decode result: %v", err)
	}
}

func wantCode(t *testing.T, resp Response, code int) {
	t.Helper()
	if resp.Error == nil {
		t.Fatalf("expected error code %d, got success: %v", code, resp.Result)
	}
	if resp.Error.Code != code {
		t.Fatalf("error code = %d (%s), want %d", resp.Error.Code, resp.Error.Message, code)
	}
}

func TestRPC_SubmitHashes(t *testing.T) {
	_, url := newTestServer(t, config.RPCConfig{})

	// One full testnet block: contributor 20% plus closer 70% of 50.
	resp := rpcCall(t, url, "mine_submitHashes", SubmitParam{Player: "alice", Amount: 1000})

	var result struct {
		BlockProgress uint64  `json:"block_progress"`
		BlocksClosed  int     `json:"blocks_closed"`
		Reward        float64 `json:"reward"`
	}
	resultAs(t, resp, &result)
	if result.BlocksClosed != 1 {
		t.Fatalf("blocks closed = %d, want 1", result.BlocksClosed)
	}
	if result.BlockProgress != 0 {
		t.Fatalf("block progress = %d, want 0", result.BlockProgress)
	}
	if result.Reward != 45 {
		t.Fatalf("reward = %v, want 45", result.Reward)
	}
}

func TestRPC_SnapshotAndAccount(t *testing.T) {
	_, url := newTestServer(t, config.RPCConfig{})

	rpcCall(t, url, "mine_submitHashes", SubmitParam{Player: "alice", Amount: 1000})

	var snap struct {
		Height          uint64  `json:"height"`
		RewardPoolToken float64 `json:"reward_pool_token"`
	}
	resultAs(t, rpcCall(t, url, "chain_getSnapshot", nil), &snap)
	if snap.Height != 1 {
		t.Fatalf("height = %d, want 1", snap.Height)
	}
	if snap.RewardPoolToken != 5 {
		t.Fatalf("pool = %v, want 5", snap.RewardPoolToken)
	}

	var acct AccountResult
	resultAs(t, rpcCall(t, url, "account_get", PlayerParam{Player: "alice"}), &acct)
	if acct.Account.TokenBalance != 45 {
		t.Fatalf("balance = %v, want 45", acct.Account.TokenBalance)
	}
	if acct.Premium {
		t.Fatal("fresh account should not be premium")
	}
}

func TestRPC_MethodNotFound(t *testing.T) {
	_, url := newTestServer(t, config.RPCConfig{})
	wantCode(t, rpcCall(t, url, "chain_getBlockByHash", nil), CodeMethodNotFound)
}

func TestRPC_InvalidJSON(t *testing.T) {
	_, url := newTestServer(t, config.RPCConfig{})

	httpResp, err := http.Post(url, "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer httpResp.Body.Close()

	var resp Response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	wantCode(t, resp, CodeParseError)
}

func TestRPC_RejectsGET(t *testing.T) {
	_, url := newTestServer(t, config.RPCConfig{})

	httpResp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer httpResp.Body.Close()

	var resp Response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	wantCode(t, resp, CodeInvalidRequest)
}

func TestRPC_RejectsWrongJSONRPCVersion(t *testing.T) {
	_, url := newTestServer(t, config.RPCConfig{})

	httpResp, err := http.Post(url, "application/json",
		strings.NewReader(`{"jsonrpc":"1.0","method":"chain_getSnapshot","id":1}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer httpResp.Body.Close()

	var resp Response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	wantCode(t, resp, CodeInvalidRequest)
}

func TestRPC_ErrorCodes(t *testing.T) {
	_, url := newTestServer(t, config.RPCConfig{})

	// Missing required param field.
	wantCode(t, rpcCall(t, url, "mine_submitHashes", SubmitParam{Amount: 10}), CodeInvalidParams)

	// Selling without premium is a validation failure.
	rpcCall(t, url, "mine_submitHashes", SubmitParam{Player: "alice", Amount: 1000})
	wantCode(t, rpcCall(t, url, "exchange_trade",
		TradeParam{Player: "alice", Direction: "sell", Amount: 10}), CodeValidation)

	// Betting more than the balance.
	wantCode(t, rpcCall(t, url, "wager_play",
		WagerParam{Player: "alice", Game: "slots", Bet: 1000, Currency: "nrc"}), CodeInsufficientFunds)

	// A second daily claim on the same day hits the once-per-day cap.
	resp := rpcCall(t, url, "daily_claim", PlayerParam{Player: "alice"})
	if resp.Error != nil {
		t.Fatalf("first claim: %d %s", resp.Error.Code, resp.Error.Message)
	}
	wantCode(t, rpcCall(t, url, "daily_claim", PlayerParam{Player: "alice"}), CodeCapacity)
}

func TestRPC_AdminDisabledWithoutHash(t *testing.T) {
	_, url := newTestServer(t, config.RPCConfig{})
	wantCode(t, rpcCall(t, url, "admin_injectLiquidity",
		AdminLiquidityParam{Token: "anything", Amount: 100}), CodeUnauthorized)
}

func TestRPC_AdminAuth(t *testing.T) {
	hash, err := HashToken("hunter2")
	if err != nil {
		t.Fatalf("hash token: %v", err)
	}
	_, url := newTestServer(t, config.RPCConfig{AdminTokenHash: hash})

	wantCode(t, rpcCall(t, url, "admin_setRewardSplit",
		AdminSplitParam{Token: "wrong", PoolPct: 20, CloserPct: 60, ContributorPct: 20}), CodeUnauthorized)

	var ok OKResult
	resultAs(t, rpcCall(t, url, "admin_setRewardSplit",
		AdminSplitParam{Token: "hunter2", PoolPct: 20, CloserPct: 60, ContributorPct: 20}), &ok)
	if !ok.OK {
		t.Fatal("expected ok")
	}

	var snap struct {
		RulesVersion uint64 `json:"rules_version"`
	}
	resultAs(t, rpcCall(t, url, "chain_getSnapshot", nil), &snap)
	if snap.RulesVersion != 1 {
		t.Fatalf("rules version = %d, want 1", snap.RulesVersion)
	}

	// A split that does not sum to 100 is rejected by the engine.
	wantCode(t, rpcCall(t, url, "admin_setRewardSplit",
		AdminSplitParam{Token: "hunter2", PoolPct: 50, CloserPct: 50, ContributorPct: 50}), CodeValidation)
}

func TestRPC_AdminSnapshot(t *testing.T) {
	hash, err := HashToken("hunter2")
	if err != nil {
		t.Fatalf("hash token: %v", err)
	}
	s, url := newTestServer(t, config.RPCConfig{AdminTokenHash: hash})

	// Not configured yet.
	wantCode(t, rpcCall(t, url, "admin_snapshot", AdminParam{Token: "hunter2"}), CodeNotFound)

	s.SetSnapshotExporter(func() (string, error) {
		return "/tmp/hashrush-test.json.gz", nil
	})

	var result SnapshotExportResult
	resultAs(t, rpcCall(t, url, "admin_snapshot", AdminParam{Token: "hunter2"}), &result)
	if result.File != "/tmp/hashrush-test.json.gz" {
		t.Fatalf("file = %q", result.File)
	}
}

func TestRPC_AdminQuests(t *testing.T) {
	hash, err := HashToken("hunter2")
	if err != nil {
		t.Fatalf("hash token: %v", err)
	}
	_, url := newTestServer(t, config.RPCConfig{AdminTokenHash: hash})

	var ok OKResult
	resultAs(t, rpcCall(t, url, "admin_addQuest", AdminQuestParam{
		Token: "hunter2", ID: "first-block", Name: "Close a block",
		Counter: "blocks_closed", Goal: 1, Reward: 25,
	}), &ok)

	// Complete and claim it.
	rpcCall(t, url, "mine_submitHashes", SubmitParam{Player: "alice", Amount: 1000})
	var claim struct {
		Reward float64 `json:"reward"`
	}
	resultAs(t, rpcCall(t, url, "quest_claim", QuestClaimParam{Player: "alice", Quest: "first-block"}), &claim)
	if claim.Reward == 0 {
		t.Fatal("expected a quest reward")
	}

	resultAs(t, rpcCall(t, url, "admin_removeQuest",
		AdminRemoveQuestParam{Token: "hunter2", ID: "first-block"}), &ok)
	wantCode(t, rpcCall(t, url, "quest_claim",
		QuestClaimParam{Player: "bob", Quest: "first-block"}), CodeValidation)
}

func TestRPC_IPAllowlist(t *testing.T) {
	_, url := newTestServer(t, config.RPCConfig{AllowedIPs: []string{"203.0.113.0/24"}})

	httpResp, err := http.Post(url, "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", httpResp.StatusCode)
	}
}

func TestRPC_CORSPreflight(t *testing.T) {
	_, url := newTestServer(t, config.RPCConfig{CORSOrigins: []string{"*"}})

	req, err := http.NewRequest(http.MethodOptions, url, nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Origin", "https://play.example.com")

	httpResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", httpResp.StatusCode)
	}
	if got := httpResp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow-origin = %q, want *", got)
	}
}

func TestRPC_BodySizeLimit(t *testing.T) {
	_, url := newTestServer(t, config.RPCConfig{})

	big := bytes.Repeat([]byte("a"), maxBodySize+2)
	httpResp, err := http.Post(url, "application/json", bytes.NewReader(big))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer httpResp.Body.Close()

	var resp Response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	wantCode(t, resp, CodeInvalidRequest)
}
