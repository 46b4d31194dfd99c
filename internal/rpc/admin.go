package rpc

import (
	"github.com/hashrush-gg/hashrush-core/config"
	"github.com/hashrush-gg/hashrush-core/internal/econ"
)

// requireAdmin verifies the bearer token against the configured argon2id
// hash. Admin methods are disabled entirely when no hash is configured.
func (s *Server) requireAdmin(token string) *Error {
	if s.adminHash == "" {
		return &Error{Code: CodeUnauthorized, Message: "admin API is disabled"}
	}
	ok, err := VerifyToken(token, s.adminHash)
	if err != nil {
		s.logger.Error().Err(err).Msg("admin token hash is malformed")
		return &Error{Code: CodeInternalError, Message: "admin token verification failed"}
	}
	if !ok {
		return &Error{Code: CodeUnauthorized, Message: "invalid admin token"}
	}
	return nil
}

// handleAdminSetRewardSplit implements admin_setRewardSplit.
func (s *Server) handleAdminSetRewardSplit(req *Request) (interface{}, *Error) {
	var params AdminSplitParam
	if rpcErr := parseParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := s.requireAdmin(params.Token); rpcErr != nil {
		return nil, rpcErr
	}

	split := config.RewardSplit{
		PoolPct:        params.PoolPct,
		CloserPct:      params.CloserPct,
		ContributorPct: params.ContributorPct,
	}
	if err := s.engine.SetRewardSplit(split); err != nil {
		return nil, engineError(err)
	}
	return OKResult{OK: true}, nil
}

// handleAdminSetExchangeCaps implements admin_setExchangeCaps.
func (s *Server) handleAdminSetExchangeCaps(req *Request) (interface{}, *Error) {
	var params AdminCapsParam
	if rpcErr := parseParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := s.requireAdmin(params.Token); rpcErr != nil {
		return nil, rpcErr
	}

	caps := econ.ExchangeCaps{
		MaxDailySell: params.MaxDailySell,
		MaxDailyBuy:  params.MaxDailyBuy,
	}
	if err := s.engine.SetExchangeCaps(caps); err != nil {
		return nil, engineError(err)
	}
	return OKResult{OK: true}, nil
}

// handleAdminInjectLiquidity implements admin_injectLiquidity.
func (s *Server) handleAdminInjectLiquidity(req *Request) (interface{}, *Error) {
	var params AdminLiquidityParam
	if rpcErr := parseParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := s.requireAdmin(params.Token); rpcErr != nil {
		return nil, rpcErr
	}

	if err := s.engine.InjectLiquidity(params.Amount); err != nil {
		return nil, engineError(err)
	}
	return OKResult{OK: true}, nil
}

// handleAdminAddQuest implements admin_addQuest.
func (s *Server) handleAdminAddQuest(req *Request) (interface{}, *Error) {
	var params AdminQuestParam
	if rpcErr := parseParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := s.requireAdmin(params.Token); rpcErr != nil {
		return nil, rpcErr
	}

	quest := econ.Quest{
		ID:      params.ID,
		Name:    params.Name,
		Counter: params.Counter,
		Goal:    params.Goal,
		Reward:  params.Reward,
	}
	if err := s.engine.AddQuest(quest); err != nil {
		return nil, engineError(err)
	}
	return OKResult{OK: true}, nil
}

// handleAdminRemoveQuest implements admin_removeQuest.
func (s *Server) handleAdminRemoveQuest(req *Request) (interface{}, *Error) {
	var params AdminRemoveQuestParam
	if rpcErr := parseParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := s.requireAdmin(params.Token); rpcErr != nil {
		return nil, rpcErr
	}

	if err := s.engine.RemoveQuest(params.ID); err != nil {
		return nil, engineError(err)
	}
	return OKResult{OK: true}, nil
}

// handleAdminSnapshot implements admin_snapshot.
func (s *Server) handleAdminSnapshot(req *Request) (interface{}, *Error) {
	var params AdminParam
	if rpcErr := parseParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := s.requireAdmin(params.Token); rpcErr != nil {
		return nil, rpcErr
	}

	if s.exporter == nil {
		return nil, &Error{Code: CodeNotFound, Message: "snapshot export is not configured"}
	}
	file, err := s.exporter()
	if err != nil {
		s.logger.Error().Err(err).Msg("snapshot export failed")
		return nil, &Error{Code: CodeInternalError, Message: "snapshot export failed"}
	}
	return SnapshotExportResult{File: file}, nil
}
