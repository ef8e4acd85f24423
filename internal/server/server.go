// Package server exposes the SolaPay HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"solapay/internal/domain"
	"solapay/internal/observability"
	"solapay/internal/payments"
	"solapay/internal/storage"
	"solapay/internal/wallet"
)

// Options configures a Server.
type Options struct {
	Wallet      *wallet.Service
	Payments    *payments.Service
	Users       storage.UserStore
	Logger      *zap.Logger
	CORSOrigins []string
	DemoMode    bool
	Network     string
}

// Server holds the handlers and their process-scoped dependencies.
// Dependencies are constructed once at startup and passed in explicitly.
type Server struct {
	wallet   *wallet.Service
	payments *payments.Service
	users    storage.UserStore
	logger   *zap.Logger
	cors     []string
	demoMode bool
	network  string
	hub      *Hub
	started  time.Time
}

// New creates a Server.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		wallet:   opts.Wallet,
		payments: opts.Payments,
		users:    opts.Users,
		logger:   logger,
		cors:     opts.CORSOrigins,
		demoMode: opts.DemoMode,
		network:  opts.Network,
		hub:      NewHub(logger),
		started:  time.Now(),
	}
}

// Handler returns the routed HTTP handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /wallet/balance", s.handleBalance)
	mux.HandleFunc("POST /wallet/send", s.handleSend)
	mux.HandleFunc("GET /transactions", s.handleTransactions)
	mux.HandleFunc("POST /kyc", s.handleKYC)
	mux.HandleFunc("GET /profile", s.handleProfileGet)
	mux.HandleFunc("POST /profile", s.handleProfilePut)
	mux.HandleFunc("POST /auth/google", s.handleAuthGoogle)
	mux.HandleFunc("GET /ws/transactions", s.handleWS)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.Handle("GET /metrics", observability.Handler())

	return s.withCORS(s.withRequestLog(mux))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.hub.Close()
	return srv.Shutdown(shutdownCtx)
}

// writeJSON writes v as a JSON response with the given status.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", zap.Error(err))
	}
}

// errorBody is the JSON error response shape.
type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// writeError maps the error taxonomy onto status codes: validation
// failures are 400 naming the field, upstream node failures 502, and
// everything else (store failures included) 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: vErr.Error(), Field: vErr.Field})
		return
	}

	var uErr *domain.UpstreamError
	if errors.As(err, &uErr) {
		s.logger.Warn("upstream failure", zap.Error(err))
		s.writeJSON(w, http.StatusBadGateway, errorBody{Error: "chain node unavailable"})
		return
	}

	s.logger.Error("request failed", zap.Error(err))
	s.writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
}
