// Package gatewaytest provides an in-process fake of the VaultString API
// gateway for tests: happy-path defaults, per-route overrides, and recording
// of the auth and device headers the client attaches.
package gatewaytest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/vaultstring-web/vaultstring-frontend-sub001/internal/domain"
	"github.com/vaultstring-web/vaultstring-frontend-sub001/pkg/httputil"
	"github.com/vaultstring-web/vaultstring-frontend-sub001/pkg/pagination"
)

// RateFunc computes a fake quote.
type RateFunc func(from, to string, amount float64) (rate, converted, fee float64)

// Server is a fake gateway backed by httptest.
type Server struct {
	URL string

	mu           sync.Mutex
	server       *httptest.Server
	validToken   string
	user         map[string]any
	wallets      []domain.Wallet
	transactions []domain.Transaction
	documents    []domain.Document
	rateFunc     RateFunc
	rateDelay    func(from, to string, amount float64) // hook for ordering tests
	failSubmit   struct {
		status  int
		message string
	}

	lastAuthHeader   string
	lastDeviceHeader string
	seenDeviceIDs    map[string]int
}

// New starts a fake gateway with happy-path defaults: one valid token, a
// Malawian individual user, a funded MWK wallet, and a flat MWK→CNY rate.
func New() *Server {
	s := &Server{
		validToken: "test-token",
		user: map[string]any{
			"id":         "user-1",
			"first_name": "Chikondi",
			"last_name":  "Banda",
			"email":      "chikondi@example.mw",
			"country":    "MW",
			"user_type":  "individual",
			"kyc_status": "verified",
		},
		wallets: []domain.Wallet{
			{ID: "w-1", Currency: domain.CurrencyMWK, Number: "1234567890123456", Balance: 250000, IsDefault: true},
		},
		rateFunc: func(from, to string, amount float64) (float64, float64, float64) {
			return 0.0042, amount * 0.0042, 2.5
		},
		seenDeviceIDs: make(map[string]int),
	}

	r := chi.NewRouter()
	r.Post("/v1/auth/login", s.handleLogin)
	r.Post("/v1/auth/register", s.handleRegister)
	r.Post("/v1/auth/password-reset/request", s.handleAccepted)
	r.Post("/v1/auth/password-reset/confirm", s.handleAccepted)
	r.Get("/v1/auth/verify-email", s.handleVerifyEmailToken)
	r.Post("/v1/auth/verify-email", s.handleAccepted)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/v1/auth/me", s.handleCurrentUser)
		r.Get("/v1/wallets", s.handleWallets)
		r.Get("/v1/transactions", s.handleTransactions)
		r.Get("/v1/rates", s.handleRate)
		r.Post("/v1/transfers", s.handleTransfer)
		r.Get("/v1/kyc/documents", s.handleDocuments)
		r.Post("/v1/kyc/documents", s.handleUploadDocument)
	})

	s.server = httptest.NewServer(r)
	s.URL = s.server.URL
	return s
}

// Close shuts the fake gateway down.
func (s *Server) Close() {
	s.server.Close()
}

// SetUser replaces the raw user payload served by /v1/auth/me.
func (s *Server) SetUser(user map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
}

// SetToken replaces the token the fake accepts.
func (s *Server) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.validToken = token
}

// SetWallets replaces the wallet listing.
func (s *Server) SetWallets(wallets []domain.Wallet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets = wallets
}

// SetTransactions replaces the transaction history.
func (s *Server) SetTransactions(txns []domain.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = txns
}

// SetRateFunc replaces the quote computation.
func (s *Server) SetRateFunc(fn RateFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rateFunc = fn
}

// SetRateDelay installs a hook invoked before a quote is answered, letting
// ordering tests hold one response back.
func (s *Server) SetRateDelay(fn func(from, to string, amount float64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rateDelay = fn
}

// FailSubmit makes transfer submissions answer with the given status and message.
func (s *Server) FailSubmit(status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSubmit.status = status
	s.failSubmit.message = message
}

// LastAuthHeader returns the Authorization header of the most recent
// authenticated request.
func (s *Server) LastAuthHeader() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAuthHeader
}

// LastDeviceHeader returns the X-Device-ID header of the most recent request.
func (s *Server) LastDeviceHeader() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastDeviceHeader
}

// DeviceIDCount returns how many distinct device ids the fake has seen.
func (s *Server) DeviceIDCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seenDeviceIDs)
}

func (s *Server) recordHeaders(r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAuthHeader = r.Header.Get("Authorization")
	s.lastDeviceHeader = r.Header.Get("X-Device-ID")
	if id := s.lastDeviceHeader; id != "" {
		s.seenDeviceIDs[id]++
	}
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.recordHeaders(r)

		s.mu.Lock()
		want := "Bearer " + s.validToken
		s.mu.Unlock()

		if r.Header.Get("Authorization") != want {
			httputil.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "session expired")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.recordHeaders(r)

	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "malformed body")
		return
	}
	if creds.Password == "wrong" {
		httputil.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid email or password")
		return
	}

	s.mu.Lock()
	payload := map[string]any{"token": s.validToken, "user": s.user}
	s.mu.Unlock()

	httputil.WriteData(w, http.StatusOK, payload)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	s.recordHeaders(r)

	var input map[string]any
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "malformed body")
		return
	}

	s.mu.Lock()
	payload := map[string]any{"token": s.validToken, "user": s.user}
	s.mu.Unlock()

	httputil.WriteData(w, http.StatusCreated, payload)
}

func (s *Server) handleAccepted(w http.ResponseWriter, r *http.Request) {
	s.recordHeaders(r)
	httputil.WriteData(w, http.StatusOK, map[string]string{"status": "accepted"})
}

func (s *Server) handleVerifyEmailToken(w http.ResponseWriter, r *http.Request) {
	s.recordHeaders(r)
	if r.URL.Query().Get("token") == "" {
		httputil.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "token is required")
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]string{"status": "verified"})
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	user := s.user
	s.mu.Unlock()
	httputil.WriteData(w, http.StatusOK, user)
}

func (s *Server) handleWallets(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	wallets := s.wallets
	s.mu.Unlock()
	httputil.WriteData(w, http.StatusOK, wallets)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	params := pagination.DefaultParams()
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		params.Page = p
	}
	if pp, err := strconv.Atoi(r.URL.Query().Get("per_page")); err == nil {
		params.PerPage = pp
	}

	s.mu.Lock()
	txns := s.transactions
	s.mu.Unlock()

	httputil.WriteData(w, http.StatusOK, pagination.NewResult(txns, len(txns), params))
}

func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	amount, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
	if err != nil || from == "" || to == "" {
		httputil.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "from, to, and amount are required")
		return
	}

	s.mu.Lock()
	rateFn := s.rateFunc
	delay := s.rateDelay
	s.mu.Unlock()

	if delay != nil {
		delay(from, to, amount)
	}

	rate, converted, fee := rateFn(from, to, amount)
	httputil.WriteData(w, http.StatusOK, map[string]float64{
		"rate":             rate,
		"converted_amount": converted,
		"fee":              fee,
	})
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	fail := s.failSubmit
	s.mu.Unlock()

	if fail.status != 0 {
		httputil.WriteError(w, fail.status, "TRANSFER_REJECTED", fail.message)
		return
	}

	var req domain.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "malformed body")
		return
	}

	httputil.WriteData(w, http.StatusCreated, map[string]string{
		"transaction_id":   "txn-0001",
		"recipient_name":   "Li Wei",
		"recipient_wallet": "9876543210987654",
		"recipient_id":     req.Recipient,
	})
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	docs := s.documents
	s.mu.Unlock()
	httputil.WriteData(w, http.StatusOK, docs)
}

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "malformed multipart body")
		return
	}

	docType := r.FormValue("type")
	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "file is required")
		return
	}
	defer file.Close()

	doc := domain.Document{
		ID:       "doc-0001",
		Type:     docType,
		FileName: header.Filename,
		Status:   domain.DocumentSubmitted,
	}

	s.mu.Lock()
	s.documents = append(s.documents, doc)
	s.mu.Unlock()

	httputil.WriteData(w, http.StatusCreated, doc)
}
