package rpc

import (
	"github.com/hashrush-gg/hashrush-core/internal/econ"
)

// JSON-RPC 2.0 error codes. Application errors map the engine's error
// kinds onto the -32000 range so clients can branch without string
// matching.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603

	CodeNotFound          = -32000
	CodeValidation        = -32001
	CodeInsufficientFunds = -32002
	CodeCapacity          = -32003
	CodeUnauthorized      = -32004
)

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      interface{} `json:"id"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// engineError converts an engine error into a JSON-RPC error using the
// error's kind. Unknown kinds fall back to an internal error.
func engineError(err error) *Error {
	code := CodeInternalError
	switch econ.KindOf(err) {
	case econ.KindValidation:
		code = CodeValidation
	case econ.KindInsufficientFunds:
		code = CodeInsufficientFunds
	case econ.KindCapacity:
		code = CodeCapacity
	}
	return &Error{Code: code, Message: err.Error()}
}

// ── Param types ─────────────────────────────────────────────────────────

// PlayerParam is used by endpoints that take only a player ID.
type PlayerParam struct {
	Player string `json:"player"`
}

// SubmitParam is used by mine_submitHashes.
type SubmitParam struct {
	Player string `json:"player"`
	Amount uint64 `json:"amount"`
}

// TradeParam is used by exchange_trade.
type TradeParam struct {
	Player    string  `json:"player"`
	Direction string  `json:"direction"` // "sell" or "buy"
	Amount    float64 `json:"amount"`    // Tokens.
}

// WagerParam is used by wager_play.
type WagerParam struct {
	Player   string  `json:"player"`
	Game     string  `json:"game"` // "slots" or "relic"
	Bet      float64 `json:"bet"`
	Currency string  `json:"currency"`
}

// PurchaseParam is used by shop_purchase.
type PurchaseParam struct {
	Player   string `json:"player"`
	Item     string `json:"item"`
	Currency string `json:"currency"`
}

// QuestClaimParam is used by quest_claim.
type QuestClaimParam struct {
	Player string `json:"player"`
	Quest  string `json:"quest"`
}

// ── Admin param types ───────────────────────────────────────────────────

// AdminParam carries the bearer token shared by all admin endpoints.
type AdminParam struct {
	Token string `json:"token"`
}

// AdminSplitParam is used by admin_setRewardSplit.
type AdminSplitParam struct {
	Token          string `json:"token"`
	PoolPct        int    `json:"pool_pct"`
	CloserPct      int    `json:"closer_pct"`
	ContributorPct int    `json:"contributor_pct"`
}

// AdminCapsParam is used by admin_setExchangeCaps.
type AdminCapsParam struct {
	Token        string  `json:"token"`
	MaxDailySell float64 `json:"max_daily_sell"`
	MaxDailyBuy  float64 `json:"max_daily_buy"`
}

// AdminLiquidityParam is used by admin_injectLiquidity.
type AdminLiquidityParam struct {
	Token  string  `json:"token"`
	Amount float64 `json:"amount"`
}

// AdminQuestParam is used by admin_addQuest.
type AdminQuestParam struct {
	Token   string  `json:"token"`
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Counter string  `json:"counter"`
	Goal    float64 `json:"goal"`
	Reward  float64 `json:"reward"`
}

// AdminRemoveQuestParam is used by admin_removeQuest.
type AdminRemoveQuestParam struct {
	Token string `json:"token"`
	ID    string `json:"id"`
}

// ── Result types ────────────────────────────────────────────────────────

// Most endpoints return the engine result structs directly; the types
// below cover the endpoints without a dedicated engine result.

// AccountResult is returned by account_get.
type AccountResult struct {
	Account econ.Account `json:"account"`
	Premium bool         `json:"premium"`
}

// PriceHistoryResult is returned by chain_getPriceHistory.
type PriceHistoryResult struct {
	Points []econ.PricePoint `json:"points"`
}

// LeaderboardResult is returned by chain_getLeaderboard.
type LeaderboardResult struct {
	Entries []econ.LeaderboardEntry `json:"entries"`
}

// SnapshotExportResult is returned by admin_snapshot.
type SnapshotExportResult struct {
	File string `json:"file"`
}

// OKResult acknowledges admin mutations that return no data.
type OKResult struct {
	OK bool `json:"ok"`
}
