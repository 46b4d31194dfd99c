package rpc

import (
	"github.com/hashrush-gg/hashrush-core/pkg/types"
)

// handleMineSubmitHashes implements mine_submitHashes.
func (s *Server) handleMineSubmitHashes(req *Request) (interface{}, *Error) {
	var params SubmitParam
	if rpcErr := parseParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	if params.Player == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "player is required"}
	}

	result, err := s.engine.SubmitHashes(types.PlayerID(params.Player), params.Amount)
	if err != nil {
		return nil, engineError(err)
	}
	return result, nil
}

// handleExchangeTrade implements exchange_trade.
func (s *Server) handleExchangeTrade(req *Request) (interface{}, *Error) {
	var params TradeParam
	if rpcErr := parseParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	if params.Player == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "player is required"}
	}
	direction := types.TradeDirection(params.Direction)
	if !direction.Valid() {
		return nil, &Error{Code: CodeInvalidParams, Message: "direction must be \"sell\" or \"buy\""}
	}

	result, err := s.engine.Trade(types.PlayerID(params.Player), direction, params.Amount)
	if err != nil {
		return nil, engineError(err)
	}
	return result, nil
}

// handleWagerPlay implements wager_play.
func (s *Server) handleWagerPlay(req *Request) (interface{}, *Error) {
	var params WagerParam
	if rpcErr := parseParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	if params.Player == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "player is required"}
	}
	currency, err := types.ParseCurrency(params.Currency)
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: err.Error()}
	}

	result, err := s.engine.Wager(types.PlayerID(params.Player), types.GameID(params.Game), params.Bet, currency)
	if err != nil {
		return nil, engineError(err)
	}
	return result, nil
}

// handleShopPurchase implements shop_purchase.
func (s *Server) handleShopPurchase(req *Request) (interface{}, *Error) {
	var params PurchaseParam
	if rpcErr := parseParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	if params.Player == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "player is required"}
	}
	if params.Item == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "item is required"}
	}
	currency, err := types.ParseCurrency(params.Currency)
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: err.Error()}
	}

	result, err := s.engine.Purchase(types.PlayerID(params.Player), params.Item, currency)
	if err != nil {
		return nil, engineError(err)
	}
	return result, nil
}

// handleDailyClaim implements daily_claim.
func (s *Server) handleDailyClaim(req *Request) (interface{}, *Error) {
	var params PlayerParam
	if rpcErr := parseParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	if params.Player == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "player is required"}
	}

	result, err := s.engine.ClaimDaily(types.PlayerID(params.Player))
	if err != nil {
		return nil, engineError(err)
	}
	return result, nil
}

// handleQuestClaim implements quest_claim.
func (s *Server) handleQuestClaim(req *Request) (interface{}, *Error) {
	var params QuestClaimParam
	if rpcErr := parseParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	if params.Player == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "player is required"}
	}
	if params.Quest == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "quest is required"}
	}

	result, err := s.engine.ClaimQuest(types.PlayerID(params.Player), params.Quest)
	if err != nil {
		return nil, engineError(err)
	}
	return result, nil
}

// handleAccountGet implements account_get. Reading an account creates it,
// matching the engine's first-contact semantics.
func (s *Server) handleAccountGet(req *Request) (interface{}, *Error) {
	var params PlayerParam
	if rpcErr := parseParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	if params.Player == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "player is required"}
	}

	acct, err := s.engine.Account(types.PlayerID(params.Player))
	if err != nil {
		return nil, engineError(err)
	}
	return AccountResult{
		Account: acct,
		Premium: acct.PremiumActive(s.engine.Snapshot().Time),
	}, nil
}

// handleChainGetSnapshot implements chain_getSnapshot.
func (s *Server) handleChainGetSnapshot(req *Request) (interface{}, *Error) {
	return s.engine.Snapshot(), nil
}

// handleChainGetPriceHistory implements chain_getPriceHistory.
func (s *Server) handleChainGetPriceHistory(req *Request) (interface{}, *Error) {
	return PriceHistoryResult{Points: s.engine.PriceHistory()}, nil
}

// handleChainGetLeaderboard implements chain_getLeaderboard.
func (s *Server) handleChainGetLeaderboard(req *Request) (interface{}, *Error) {
	return LeaderboardResult{Entries: s.engine.Leaderboard()}, nil
}
