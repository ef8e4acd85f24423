package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"solapay/internal/domain"
	"solapay/internal/payments"
	"solapay/internal/solana/stub"
	"solapay/internal/storage"
	"solapay/internal/storage/memory"
	"solapay/internal/storage/noop"
	"solapay/internal/wallet"
)

const (
	testWallet = "4vJ9JU1bJJE96FWSJKvHsmmFADCg4gpZQff4P3bkLKi"
	peerWallet = "8qbHbw2BbbTHBW1sbeqakYXVKRQM8Ne7pLK7m6CVfeR"
	testSig    = "6pc4LiB8KHAPvbUbkozrTcPL5zXspYBdATv5raNDyVbhiKjrKokLb9o111kxTD5KkPVd7UBSCcFcnWFkrJ82Hu6"
)

var errTest = errors.New("node down")

type testEnv struct {
	server *Server
	rpc    *stub.RPCClient
	users  storage.UserStore
}

func newTestServer(t *testing.T) *testEnv {
	t.Helper()

	rpc := stub.NewRPCClient()
	users := memory.NewUserStore()

	walletSvc := wallet.NewService(rpc, "GBP",
		wallet.Rates{SOLToGBP: 120, SOLToUSD: 150, GBPToPKR: 360}, false, zap.NewNop())

	paymentsSvc := payments.NewService(payments.Options{
		Transactions: memory.NewTransactionStore(),
		KYC:          memory.NewKYCStore(),
		RPC:          rpc,
	})

	srv := New(Options{
		Wallet:   walletSvc,
		Payments: paymentsSvc,
		Users:    users,
		Network:  domain.NetworkDevnet,
	})

	return &testEnv{server: srv, rpc: rpc, users: users}
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	env := newTestServer(t)
	rec := doRequest(t, env.server.Handler(), http.MethodGet, "/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body okBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.OK {
		t.Error("expected ok=true")
	}
}

func TestBalance(t *testing.T) {
	env := newTestServer(t)
	env.rpc.SetBalance(testWallet, 2_500_000_000)

	rec := doRequest(t, env.server.Handler(), http.MethodGet, "/wallet/balance?publicKey="+testWallet, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var balance domain.Balance
	if err := json.Unmarshal(rec.Body.Bytes(), &balance); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if balance.Lamports != 2_500_000_000 {
		t.Errorf("lamports = %d, want 2500000000", balance.Lamports)
	}
	if balance.SOL != 2.5 {
		t.Errorf("sol = %f, want 2.5", balance.SOL)
	}
	if balance.FiatValue != 300 {
		t.Errorf("fiatValue = %f, want 300", balance.FiatValue)
	}
	if balance.FiatCurrency != "GBP" {
		t.Errorf("fiatCurrency = %s, want GBP", balance.FiatCurrency)
	}
}

func TestBalance_InvalidKey(t *testing.T) {
	env := newTestServer(t)

	rec := doRequest(t, env.server.Handler(), http.MethodGet, "/wallet/balance?publicKey=short", "")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Field != "publicKey" {
		t.Errorf("field = %q, want publicKey", body.Field)
	}
}

func TestBalance_NodeDown(t *testing.T) {
	env := newTestServer(t)
	env.rpc.Err = errTest

	rec := doRequest(t, env.server.Handler(), http.MethodGet, "/wallet/balance?publicKey="+testWallet, "")

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestSendAndList(t *testing.T) {
	env := newTestServer(t)
	handler := env.server.Handler()

	body := `{"signature":"` + testSig + `","from":"` + testWallet + `","to":"` + peerWallet + `","amountLamports":1000000}`

	rec := doRequest(t, handler, http.MethodPost, "/wallet/send", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("send status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	// Replaying the exact same submission still acknowledges.
	rec = doRequest(t, handler, http.MethodPost, "/wallet/send", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("replay status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, handler, http.MethodGet, "/transactions?publicKey="+testWallet, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var records []*domain.TransactionRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record after replay, got %d", len(records))
	}
	if records[0].Signature != testSig {
		t.Errorf("signature = %s, want %s", records[0].Signature, testSig)
	}
}

func TestSend_AmountSol(t *testing.T) {
	env := newTestServer(t)
	handler := env.server.Handler()

	body := `{"signature":"` + testSig + `","from":"` + testWallet + `","to":"` + peerWallet + `","amountSol":0.5}`

	rec := doRequest(t, handler, http.MethodPost, "/wallet/send", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("send status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, handler, http.MethodGet, "/transactions?publicKey="+testWallet, "")

	var records []*domain.TransactionRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].AmountLamports != 500_000_000 {
		t.Errorf("amountLamports = %d, want 500000000", records[0].AmountLamports)
	}
}

func TestSend_MinLengthAddressesAccepted(t *testing.T) {
	env := newTestServer(t)
	handler := env.server.Handler()

	// Endpoints are recorded as the client asserts them; a 30-character
	// identifier is enough even when it is not a decodable key.
	from := strings.Repeat("A", 30)
	to := strings.Repeat("B", 30)
	body := `{"signature":"` + testSig + `","from":"` + from + `","to":"` + to + `","amountLamports":1000000}`

	rec := doRequest(t, handler, http.MethodPost, "/wallet/send", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("send status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, handler, http.MethodGet, "/transactions?publicKey="+from, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var records []*domain.TransactionRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
}

func TestSend_ValidationErrors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"malformed json", `{not json`, "body"},
		{"bad signature", `{"signature":"x","from":"` + testWallet + `","to":"` + peerWallet + `","amountLamports":1}`, "signature"},
		{"bad from", `{"signature":"` + testSig + `","from":"short","to":"` + peerWallet + `","amountLamports":1}`, "from"},
		{"missing amount", `{"signature":"` + testSig + `","from":"` + testWallet + `","to":"` + peerWallet + `"}`, "amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestServer(t)

			rec := doRequest(t, env.server.Handler(), http.MethodPost, "/wallet/send", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
			}

			var body errorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Field != tt.wantField {
				t.Errorf("field = %q, want %q", body.Field, tt.wantField)
			}
		})
	}
}

func TestTransactions_MissingKeyRejected(t *testing.T) {
	env := newTestServer(t)

	rec := doRequest(t, env.server.Handler(), http.MethodGet, "/transactions", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestTransactions_EmptyIsJSONArray(t *testing.T) {
	env := newTestServer(t)

	rec := doRequest(t, env.server.Handler(), http.MethodGet, "/transactions?publicKey="+testWallet, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("expected empty JSON array, got %s", got)
	}
}

func TestDemoMode_WritesDroppedReadsEmpty(t *testing.T) {
	rpc := stub.NewRPCClient()

	paymentsSvc := payments.NewService(payments.Options{
		Transactions: noop.NewTransactionStore(),
		KYC:          noop.NewKYCStore(),
		RPC:          rpc,
	})

	srv := New(Options{
		Wallet: wallet.NewService(rpc, "GBP",
			wallet.Rates{SOLToGBP: 120, SOLToUSD: 150, GBPToPKR: 360}, false, zap.NewNop()),
		Payments: paymentsSvc,
		Users:    noop.NewUserStore(),
		DemoMode: true,
		Network:  domain.NetworkDevnet,
	})
	handler := srv.Handler()

	body := `{"signature":"` + testSig + `","from":"` + testWallet + `","to":"` + peerWallet + `","amountLamports":1000000}`

	rec := doRequest(t, handler, http.MethodPost, "/wallet/send", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("send status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, handler, http.MethodGet, "/transactions?publicKey="+testWallet, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("demo mode list must be an empty array, got %s", got)
	}
}

func TestKYC(t *testing.T) {
	env := newTestServer(t)

	body := `{"userPublicKey":"` + testWallet + `","data":{"document":"passport"}}`

	rec := doRequest(t, env.server.Handler(), http.MethodPost, "/kyc", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
}

func TestKYC_InvalidPubkey(t *testing.T) {
	env := newTestServer(t)

	body := `{"userPublicKey":"bad","data":{}}`

	rec := doRequest(t, env.server.Handler(), http.MethodPost, "/kyc", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestProfile_RoundTrip(t *testing.T) {
	env := newTestServer(t)
	handler := env.server.Handler()

	rec := doRequest(t, handler, http.MethodGet, "/profile?publicKey="+testWallet, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 before upsert", rec.Code)
	}

	body := `{"walletPublicKey":"` + testWallet + `","name":"Alice","email":"alice@example.com"}`
	rec = doRequest(t, handler, http.MethodPost, "/profile", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upsert status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, handler, http.MethodGet, "/profile?publicKey="+testWallet, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", rec.Code)
	}

	var profile domain.UserProfile
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if profile.Name != "Alice" {
		t.Errorf("name = %s, want Alice", profile.Name)
	}
}

func TestAuthGoogle_NotImplemented(t *testing.T) {
	env := newTestServer(t)

	rec := doRequest(t, env.server.Handler(), http.MethodPost, "/auth/google", `{}`)
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d, want 501", rec.Code)
	}
}

func TestStatus(t *testing.T) {
	env := newTestServer(t)

	rec := doRequest(t, env.server.Handler(), http.MethodGet, "/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var status StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if status.Status != "running" {
		t.Errorf("status = %s, want running", status.Status)
	}
	if status.Network != domain.NetworkDevnet {
		t.Errorf("network = %s, want devnet", status.Network)
	}
}

func TestCORS_Preflight(t *testing.T) {
	rpc := stub.NewRPCClient()
	srv := New(Options{
		Wallet: wallet.NewService(rpc, "GBP",
			wallet.Rates{SOLToGBP: 120, SOLToUSD: 150, GBPToPKR: 360}, false, zap.NewNop()),
		Payments: payments.NewService(payments.Options{
			Transactions: memory.NewTransactionStore(),
			KYC:          memory.NewKYCStore(),
			RPC:          rpc,
		}),
		Users:       memory.NewUserStore(),
		CORSOrigins: []string{"http://localhost:5173"},
	})

	req := httptest.NewRequest(http.MethodOptions, "/wallet/send", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("allow-origin = %q", got)
	}

	// Unknown origins get no CORS headers.
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected allow-origin for unknown origin: %q", got)
	}
}
