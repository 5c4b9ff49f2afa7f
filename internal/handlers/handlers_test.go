package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finsim/trading-ledger/internal/auth"
	"github.com/finsim/trading-ledger/internal/ledger"
	"github.com/finsim/trading-ledger/internal/quote"
	"github.com/finsim/trading-ledger/internal/session"
	"github.com/finsim/trading-ledger/internal/store"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.OpenTest(t)
	sessions := session.NewStore(st, time.Hour)
	sim := quote.NewSimProvider()
	ledgerSvc := ledger.New(st, sim)
	authSvc := auth.New(st, sessions)

	trades := ledger.NewProcessor(ledgerSvc, 2)
	trades.Start()
	t.Cleanup(trades.Stop)

	return New(authSvc, ledgerSvc, trades, sessions, sim).Router()
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func registerUser(t *testing.T, router *gin.Engine, username string) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/register", "", map[string]string{
		"username":     username,
		"password":     "pw",
		"confirmation": "pw",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Register returned %d: %s", w.Code, w.Body.String())
	}
	token, _ := decode(t, w)["token"].(string)
	if token == "" {
		t.Fatal("Register returned no token")
	}
	return token
}

func TestRegisterLoginLogoutFlow(t *testing.T) {
	router := newTestRouter(t)

	token := registerUser(t, router, "alice")

	// Register sets the session cookie too.
	w := doJSON(t, router, http.MethodPost, "/api/register", "", map[string]string{
		"username": "bob", "password": "pw", "confirmation": "pw",
	})
	found := false
	for _, c := range w.Result().Cookies() {
		if c.Name == "session_token" && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("Expected session cookie on register")
	}

	// The token works.
	if w := doJSON(t, router, http.MethodGet, "/api/portfolio", token, nil); w.Code != http.StatusOK {
		t.Errorf("Portfolio with token returned %d", w.Code)
	}

	// Logout invalidates it.
	if w := doJSON(t, router, http.MethodGet, "/api/logout", token, nil); w.Code != http.StatusOK {
		t.Errorf("Logout returned %d", w.Code)
	}
	if w := doJSON(t, router, http.MethodGet, "/api/portfolio", token, nil); w.Code != http.StatusForbidden {
		t.Errorf("Portfolio after logout returned %d, want 403", w.Code)
	}

	// Login again.
	w = doJSON(t, router, http.MethodPost, "/api/login", "", map[string]string{
		"username": "alice", "password": "pw",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Login returned %d: %s", w.Code, w.Body.String())
	}
}

func TestRegister_DuplicateIsConflict(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "carol")

	w := doJSON(t, router, http.MethodPost, "/api/register", "", map[string]string{
		"username": "carol", "password": "pw", "confirmation": "pw",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403, got %d", w.Code)
	}
	if kind := decode(t, w)["kind"]; kind != "conflict" {
		t.Errorf("Expected kind conflict, got %v", kind)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "dave")

	w := doJSON(t, router, http.MethodPost, "/api/login", "", map[string]string{
		"username": "dave", "password": "wrong",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403, got %d", w.Code)
	}
	if kind := decode(t, w)["kind"]; kind != "authentication" {
		t.Errorf("Expected kind authentication, got %v", kind)
	}
}

func TestUnauthenticatedRequests(t *testing.T) {
	router := newTestRouter(t)

	paths := []struct{ method, path string }{
		{http.MethodGet, "/api/portfolio"},
		{http.MethodGet, "/api/history"},
		{http.MethodGet, "/api/quote?symbol=AAPL"},
		{http.MethodPost, "/api/buy"},
		{http.MethodPost, "/api/sell"},
		{http.MethodPost, "/api/deposit"},
	}
	for _, p := range paths {
		w := doJSON(t, router, p.method, p.path, "", map[string]string{})
		if w.Code != http.StatusForbidden {
			t.Errorf("%s %s: expected 403, got %d", p.method, p.path, w.Code)
		}
	}
}

func TestTradeFlow(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "erin")

	// Quote first.
	w := doJSON(t, router, http.MethodGet, "/api/quote?symbol=AAPL", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Quote returned %d: %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["symbol"] != "AAPL" || body["price_display"] == "" {
		t.Errorf("Quote body wrong: %v", body)
	}

	// Buy.
	w = doJSON(t, router, http.MethodPost, "/api/buy", token, map[string]any{
		"symbol": "AAPL", "shares": 10,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Buy returned %d: %s", w.Code, w.Body.String())
	}

	// Portfolio shows the position.
	w = doJSON(t, router, http.MethodGet, "/api/portfolio", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Portfolio returned %d", w.Code)
	}
	rows, _ := decode(t, w)["rows"].([]any)
	if len(rows) != 1 {
		t.Fatalf("Expected 1 portfolio row, got %d", len(rows))
	}

	// Sell part of it.
	w = doJSON(t, router, http.MethodPost, "/api/sell", token, map[string]any{
		"symbol": "AAPL", "shares": 4,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Sell returned %d: %s", w.Code, w.Body.String())
	}

	// Deposit.
	w = doJSON(t, router, http.MethodPost, "/api/deposit", token, map[string]string{
		"amount": "250.00",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Deposit returned %d: %s", w.Code, w.Body.String())
	}

	// History has all three, oldest first.
	w = doJSON(t, router, http.MethodGet, "/api/history", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("History returned %d", w.Code)
	}
	entries, _ := decode(t, w)["entries"].([]any)
	if len(entries) != 3 {
		t.Fatalf("Expected 3 history entries, got %d", len(entries))
	}
	first, _ := entries[0].(map[string]any)
	if first["kind"] != "BUY" {
		t.Errorf("Expected first entry BUY, got %v", first["kind"])
	}
}

func TestDomainErrorsAre403(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "frank")

	cases := []struct {
		name string
		path string
		body any
		kind string
	}{
		{"unknown symbol", "/api/buy", map[string]any{"symbol": "ZZZZ", "shares": 1}, "unknown_symbol"},
		{"zero shares", "/api/buy", map[string]any{"symbol": "AAPL", "shares": 0}, "validation"},
		{"sell without holding", "/api/sell", map[string]any{"symbol": "AAPL", "shares": 1}, "no_holding"},
		{"bad deposit", "/api/deposit", map[string]string{"amount": "-5"}, "validation"},
		{"insufficient funds", "/api/buy", map[string]any{"symbol": "MSFT", "shares": 1000000}, "insufficient_funds"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, tc.path, token, tc.body)
			if w.Code != http.StatusForbidden {
				t.Fatalf("Expected 403, got %d: %s", w.Code, w.Body.String())
			}
			body := decode(t, w)
			if body["kind"] != tc.kind {
				t.Errorf("Expected kind %s, got %v", tc.kind, body["kind"])
			}
			if body["message"] == "" {
				t.Error("Expected a human-readable message")
			}
		})
	}
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Health returned %d", w.Code)
	}
}
