package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rail-booking-go/internal/api"
	"rail-booking-go/internal/database"
	"rail-booking-go/internal/identity"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
)

type mapProvider struct {
	tokens map[string]string
	next   int
}

func (p *mapProvider) Authenticate(_ context.Context, token string) (string, error) {
	userId, ok := p.tokens[token]
	if !ok {
		return "", identity.ErrInvalidToken
	}
	return userId, nil
}

func (p *mapProvider) IssueToken(_ context.Context, userId string) (string, error) {
	p.next++
	token := fmt.Sprintf("token-%d", p.next)
	p.tokens[token] = userId
	return token, nil
}

func (p *mapProvider) RevokeToken(_ context.Context, token string) error {
	delete(p.tokens, token)
	return nil
}

type silentSender struct{}

func (silentSender) Send(_ context.Context, _, _, _ string) error { return nil }

func setupRouterTest(t *testing.T) (*gin.Engine, func()) {
	gin.SetMode(gin.TestMode)

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	dbService := database.NewServiceWithDB(db)
	if err := dbService.InitSchema(); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	provider := &mapProvider{tokens: make(map[string]string)}
	service, err := api.NewService(dbService, provider, silentSender{})
	if err != nil {
		t.Fatalf("Failed to build service: %v", err)
	}

	router := NewHandler(service, provider).Router()
	cleanup := func() {
		db.Close()
	}
	return router, cleanup
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	router, cleanup := setupRouterTest(t)
	defer cleanup()

	rec := doJSON(t, router, http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
}

func TestWallet_RequiresToken(t *testing.T) {
	router, cleanup := setupRouterTest(t)
	defer cleanup()

	rec := doJSON(t, router, http.MethodGet, "/api/wallet/balance", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/wallet/balance", "made-up", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for unknown token, got %d", rec.Code)
	}
}

func TestSignupLoginBalanceFlow(t *testing.T) {
	router, cleanup := setupRouterTest(t)
	defer cleanup()

	rec := doJSON(t, router, http.MethodPost, "/api/accounts/signup", "", `{
		"username": "webuser",
		"email": "webuser@example.com",
		"phone_number": "555-0101",
		"password": "opensesame",
		"confirm_password": "opensesame"
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201 from signup, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/api/accounts/login", "", `{
		"identifier": "webuser@example.com",
		"password": "opensesame"
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from login, got %d: %s", rec.Code, rec.Body.String())
	}

	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil {
		t.Fatalf("Failed to decode login response: %v", err)
	}
	if login.Token == "" {
		t.Fatal("Expected a token from login")
	}

	rec = doJSON(t, router, http.MethodGet, "/api/wallet/balance", login.Token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from balance, got %d: %s", rec.Code, rec.Body.String())
	}
	var balance struct {
		Balance string `json:"balance"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &balance); err != nil {
		t.Fatalf("Failed to decode balance response: %v", err)
	}
	if balance.Balance != "0.00" {
		t.Errorf("Expected balance 0.00, got %q", balance.Balance)
	}

	// Invalid amount maps to 400.
	rec = doJSON(t, router, http.MethodPost, "/api/wallet/credit", login.Token, `{"amount": "12.345"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad amount, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/wallet/credit", login.Token, `{"amount": "75.50"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from credit, got %d: %s", rec.Code, rec.Body.String())
	}

	// Debit beyond the balance maps to 400.
	rec = doJSON(t, router, http.MethodPost, "/api/wallet/debit", login.Token, `{"amount": "100"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for insufficient funds, got %d", rec.Code)
	}

	// Unknown booking maps to 404.
	rec = doJSON(t, router, http.MethodDelete, "/api/bookings/no-such-booking", login.Token, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown booking, got %d", rec.Code)
	}
}

func TestWrongCredentialsMapTo401(t *testing.T) {
	router, cleanup := setupRouterTest(t)
	defer cleanup()

	rec := doJSON(t, router, http.MethodPost, "/api/accounts/login", "", `{
		"identifier": "nobody@example.com",
		"password": "whatever"
	}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for unknown credentials, got %d", rec.Code)
	}
}
