// Package rpc implements the JSON-RPC 2.0 API server.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/hashrush-gg/hashrush-core/config"
	"github.com/hashrush-gg/hashrush-core/internal/econ"
	"github.com/hashrush-gg/hashrush-core/internal/engine"
	klog "github.com/hashrush-gg/hashrush-core/internal/log"
)

// maxBodySize is the maximum allowed request body size (1 MB).
const maxBodySize = 1 << 20

// SnapshotExporter writes a full-state export and returns the file path.
// Wired by the node so admin_snapshot can trigger an out-of-schedule export.
type SnapshotExporter func() (string, error)

// Server is the JSON-RPC 2.0 HTTP server.
type Server struct {
	addr        string
	engine      *engine.Engine
	exporter    SnapshotExporter // nil = admin_snapshot disabled.
	adminHash   string           // argon2id hash; empty = admin_* disabled.
	hub         *wsHub           // nil = /ws disabled.
	server      *http.Server
	logger      zerolog.Logger
	ln          net.Listener
	allowedNets []*net.IPNet // Empty = allow all.
	corsOrigins []string     // Empty = no CORS headers.
}

// New creates a new RPC server bound to the engine. The cfg parameter
// controls IP filtering, CORS, the admin token, and the /ws stream. A
// zero-value RPCConfig allows all IPs and disables CORS, admin methods,
// and the websocket stream.
func New(addr string, eng *engine.Engine, cfg config.RPCConfig) *Server {
	s := &Server{
		addr:        addr,
		engine:      eng,
		adminHash:   cfg.AdminTokenHash,
		logger:      klog.RPC,
		allowedNets: parseAllowedIPs(cfg.AllowedIPs),
		corsOrigins: cfg.CORSOrigins,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRequest)
	if cfg.EnableWS {
		s.hub = newWSHub(s.logger)
		mux.HandleFunc("/ws", s.handleWS)
	}

	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

// SetSnapshotExporter enables the admin_snapshot endpoint.
func (s *Server) SetSnapshotExporter(fn SnapshotExporter) {
	s.exporter = fn
}

// BroadcastSnapshot pushes a snapshot to all websocket subscribers.
// Safe to call when the stream is disabled. Intended as the engine's
// OnSnapshot hook.
func (s *Server) BroadcastSnapshot(snap econ.Snapshot) {
	if s.hub != nil {
		s.hub.broadcast(snap)
	}
}

// parseAllowedIPs converts string IP/CIDR entries into net.IPNet.
func parseAllowedIPs(entries []string) []*net.IPNet {
	var nets []*net.IPNet
	for _, entry := range entries {
		_, ipNet, err := net.ParseCIDR(entry)
		if err == nil {
			nets = append(nets, ipNet)
			continue
		}
		// Try as a single IP (add /32 or /128).
		ip := net.ParseIP(entry)
		if ip == nil {
			continue
		}
		bits := 32
		if ip.To4() == nil {
			bits = 128
		}
		nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
	}
	return nets
}

// Start begins listening and serving in a background goroutine.
// It returns immediately after the listener is bound.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("rpc listen: %w", err)
	}
	s.ln = ln

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("RPC server error")
		}
	}()

	return nil
}

// Addr returns the listener address (useful when bound to :0).
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// Stop gracefully shuts down the server and closes websocket clients.
func (s *Server) Stop() error {
	if s.hub != nil {
		s.hub.close()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// handleRequest is the main HTTP handler for JSON-RPC requests.
func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	if !s.remoteAllowed(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	// CORS headers.
	s.setCORSHeaders(w, r)

	// Handle CORS preflight.
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if r.Method != http.MethodPost {
		writeError(w, nil, CodeInvalidRequest, "only POST method is allowed")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		writeError(w, nil, CodeParseError, "failed to read request body")
		return
	}
	if len(body) > maxBodySize {
		writeError(w, nil, CodeInvalidRequest, "request body too large")
		return
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, nil, CodeParseError, "invalid JSON")
		return
	}

	if req.JSONRPC != "2.0" {
		writeError(w, req.ID, CodeInvalidRequest, "jsonrpc must be \"2.0\"")
		return
	}

	result, rpcErr := s.dispatch(&req)
	if rpcErr != nil {
		writeJSON(w, Response{
			JSONRPC: "2.0",
			Error:   rpcErr,
			ID:      req.ID,
		})
		return
	}

	writeJSON(w, Response{
		JSONRPC: "2.0",
		Result:  result,
		ID:      req.ID,
	})
}

// dispatch routes a request to the appropriate handler.
func (s *Server) dispatch(req *Request) (interface{}, *Error) {
	switch req.Method {
	case "mine_submitHashes":
		return s.handleMineSubmitHashes(req)
	case "exchange_trade":
		return s.handleExchangeTrade(req)
	case "wager_play":
		return s.handleWagerPlay(req)
	case "shop_purchase":
		return s.handleShopPurchase(req)
	case "daily_claim":
		return s.handleDailyClaim(req)
	case "quest_claim":
		return s.handleQuestClaim(req)
	case "account_get":
		return s.handleAccountGet(req)
	case "chain_getSnapshot":
		return s.handleChainGetSnapshot(req)
	case "chain_getPriceHistory":
		return s.handleChainGetPriceHistory(req)
	case "chain_getLeaderboard":
		return s.handleChainGetLeaderboard(req)
	case "admin_setRewardSplit":
		return s.handleAdminSetRewardSplit(req)
	case "admin_setExchangeCaps":
		return s.handleAdminSetExchangeCaps(req)
	case "admin_injectLiquidity":
		return s.handleAdminInjectLiquidity(req)
	case "admin_addQuest":
		return s.handleAdminAddQuest(req)
	case "admin_removeQuest":
		return s.handleAdminRemoveQuest(req)
	case "admin_snapshot":
		return s.handleAdminSnapshot(req)
	default:
		return nil, &Error{Code: CodeMethodNotFound, Message: fmt.Sprintf("method %q not found", req.Method)}
	}
}

// writeJSON writes a JSON-RPC response.
func writeJSON(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// writeError writes a JSON-RPC error response.
func writeError(w http.ResponseWriter, id interface{}, code int, message string) {
	writeJSON(w, Response{
		JSONRPC: "2.0",
		Error:   &Error{Code: code, Message: message},
		ID:      id,
	})
}

// remoteAllowed applies the IP allowlist to the request's remote address.
func (s *Server) remoteAllowed(r *http.Request) bool {
	if len(s.allowedNets) == 0 {
		return true
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return false
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	for _, n := range s.allowedNets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// setCORSHeaders adds CORS headers based on the configured origins.
func (s *Server) setCORSHeaders(w http.ResponseWriter, r *http.Request) {
	if len(s.corsOrigins) == 0 {
		return
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		return
	}

	allowed := false
	for _, o := range s.corsOrigins {
		if o == "*" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			allowed = true
			break
		}
		if o == origin {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			allowed = true
			break
		}
	}

	if allowed {
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	}
}

// parseParams unmarshals the request params into the given target.
func parseParams(req *Request, target interface{}) *Error {
	if req.Params == nil {
		return &Error{Code: CodeInvalidParams, Message: "params required"}
	}

	data, err := json.Marshal(req.Params)
	if err != nil {
		return &Error{Code: CodeInvalidParams, Message: "invalid params"}
	}

	if err := json.Unmarshal(data, target); err != nil {
		return &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid params: %v", err)}
	}
	return nil
}
