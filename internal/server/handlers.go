package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"solapay/internal/domain"
	"solapay/internal/observability"
	"solapay/internal/payments"
	"solapay/internal/solana"
	"solapay/internal/storage"
)

// okBody is the plain success acknowledgment.
type okBody struct {
	OK bool `json:"ok"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, okBody{OK: true})
}

// handleBalance serves GET /wallet/balance?publicKey=<addr>.
func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	pubkey := r.URL.Query().Get("publicKey")

	balance, err := s.wallet.GetBalance(r.Context(), pubkey)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, balance)
}

// sendRequest is the canonical /wallet/send body. amountLamports is the
// canonical amount field; amountSol is accepted as an alternate and
// converted on ingest.
type sendRequest struct {
	Signature      string          `json:"signature"`
	From           string          `json:"from"`
	To             string          `json:"to"`
	AmountLamports int64           `json:"amountLamports"`
	AmountSol      float64         `json:"amountSol"`
	Network        string          `json:"network"`
	FiatCurrency   string          `json:"fiatCurrency"`
	Metadata       json.RawMessage `json:"metadata"`
}

// handleSend serves POST /wallet/send. The client already executed the
// transfer against the chain; this only records the audit row.
func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, domain.NewValidationError("body", "malformed JSON"))
		return
	}

	sub := payments.Submission{
		Signature:      req.Signature,
		FromAddress:    req.From,
		ToAddress:      req.To,
		AmountLamports: req.AmountLamports,
		AmountSOL:      req.AmountSol,
		Network:        req.Network,
		FiatCurrency:   req.FiatCurrency,
		Metadata:       req.Metadata,
	}

	inserted, err := s.payments.Record(r.Context(), sub)
	if err != nil {
		s.writeError(w, err)
		return
	}

	// Replays are acknowledged but already announced; only a freshly
	// stored row reaches the feed.
	if inserted {
		s.hub.Broadcast(feedEvent{
			Type:      "transaction",
			Signature: req.Signature,
			From:      req.From,
			To:        req.To,
			Lamports:  sub.AmountLamports,
			Network:   sub.Network,
			At:        time.Now().UTC(),
		})
	}

	s.writeJSON(w, http.StatusCreated, okBody{OK: true})
}

// handleTransactions serves GET /transactions?publicKey=<addr>.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	pubkey := r.URL.Query().Get("publicKey")

	records, err := s.payments.List(r.Context(), pubkey)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if records == nil {
		records = []*domain.TransactionRecord{}
	}
	s.writeJSON(w, http.StatusOK, records)
}

// kycRequest is the /kyc body; data is stored opaquely.
type kycRequest struct {
	UserPublicKey string          `json:"userPublicKey"`
	Data          json.RawMessage `json:"data"`
}

// handleKYC serves POST /kyc.
func (s *Server) handleKYC(w http.ResponseWriter, r *http.Request) {
	var req kycRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, domain.NewValidationError("body", "malformed JSON"))
		return
	}

	if err := s.payments.SubmitKYC(r.Context(), req.UserPublicKey, req.Data); err != nil {
		s.writeError(w, err)
		return
	}

	observability.RecordKYCSubmission()
	s.writeJSON(w, http.StatusCreated, okBody{OK: true})
}

// profileRequest is the /profile upsert body.
type profileRequest struct {
	WalletPublicKey string `json:"walletPublicKey"`
	Name            string `json:"name"`
	Email           string `json:"email"`
}

// handleProfileGet serves GET /profile?publicKey=<addr>.
func (s *Server) handleProfileGet(w http.ResponseWriter, r *http.Request) {
	pubkey := r.URL.Query().Get("publicKey")
	if pubkey == "" {
		s.writeError(w, domain.NewValidationError("publicKey", "required"))
		return
	}

	profile, err := s.users.GetByWallet(r.Context(), pubkey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.writeJSON(w, http.StatusNotFound, errorBody{Error: "profile not found"})
			return
		}
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, profile)
}

// handleProfilePut serves POST /profile, upserting by wallet pubkey.
func (s *Server) handleProfilePut(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, domain.NewValidationError("body", "malformed JSON"))
		return
	}
	if err := solana.ValidateAddress("walletPublicKey", req.WalletPublicKey); err != nil {
		s.writeError(w, err)
		return
	}

	err := s.users.Upsert(r.Context(), &domain.UserProfile{
		WalletPubkey: req.WalletPublicKey,
		Name:         req.Name,
		Email:        req.Email,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, okBody{OK: true})
}

// handleAuthGoogle is a placeholder; OAuth is not configured.
func (s *Server) handleAuthGoogle(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusNotImplemented, errorBody{
		Error: "Google OAuth not configured. Set GOOGLE_CLIENT_ID/SECRET and implement callback.",
	})
}

// StatusResponse is the JSON response for the /status endpoint.
type StatusResponse struct {
	Status      string `json:"status"`
	Uptime      string `json:"uptime"`
	Network     string `json:"network"`
	DemoMode    bool   `json:"demo_mode"`
	Subscribers int    `json:"ws_subscribers"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, StatusResponse{
		Status:      "running",
		Uptime:      time.Since(s.started).String(),
		Network:     s.network,
		DemoMode:    s.demoMode,
		Subscribers: s.hub.Subscribers(),
	})
}
