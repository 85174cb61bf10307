package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ibertrade/fmbridge/internal/config"
	"github.com/ibertrade/fmbridge/internal/utils"
)

func testRouter(t *testing.T) *Router {
	t.Helper()
	hash, err := utils.HashPassword("s3cret")
	if err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{
		JWTSecret:     "test-secret",
		AdminLogin:    "admin",
		AdminPassword: hash,
	}
	return NewRouter(cfg, nil)
}

func TestHealthCheck(t *testing.T) {
	router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestLogin(t *testing.T) {
	router := testRouter(t)

	body, _ := json.Marshal(map[string]string{"login": "admin", "password": "s3cret"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/auth/login", bytes.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["accessToken"] == "" {
		t.Error("no access token in response")
	}

	// Wrong password
	body, _ = json.Marshal(map[string]string{"login": "admin", "password": "nope"})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/auth/login", bytes.NewReader(body)))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: status = %d", rec.Code)
	}
}

func TestSyncEndpointsRequireToken(t *testing.T) {
	router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/sync/pull", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated trigger: status = %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/sync/pull", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d, want 401", rec.Code)
	}
}
