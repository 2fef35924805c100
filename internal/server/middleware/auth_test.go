package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth_Disabled(t *testing.T) {
	handler := Auth(&AuthConfig{Enabled: false})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/sample", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("disabled auth must pass requests through, got %d", w.Code)
	}
}

func TestAuth_MissingCredentials(t *testing.T) {
	cfg := &AuthConfig{Enabled: true, User: "admin", Password: "secret"}
	handler := Auth(cfg)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/sample", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if w.Header().Get("WWW-Authenticate") == "" {
		t.Error("expected WWW-Authenticate header")
	}
}

func TestAuth_WrongCredentials(t *testing.T) {
	cfg := &AuthConfig{Enabled: true, User: "admin", Password: "secret"}
	handler := Auth(cfg)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/sample", nil)
	req.SetBasicAuth("admin", "wrong")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuth_ValidCredentials(t *testing.T) {
	cfg := &AuthConfig{Enabled: true, User: "admin", Password: "secret"}
	handler := Auth(cfg)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/sample", nil)
	req.SetBasicAuth("admin", "secret")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestAuth_ExcludedPath(t *testing.T) {
	cfg := &AuthConfig{Enabled: true, User: "admin", Password: "secret"}
	handler := Auth(cfg, "/health")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("excluded path must bypass auth, got %d", w.Code)
	}
}

func TestAuth_ReloadTakesEffect(t *testing.T) {
	// The config is shared by pointer; flipping it must affect the
	// already-built chain.
	cfg := &AuthConfig{Enabled: false}
	handler := Auth(cfg)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/sample", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 before reload, got %d", w.Code)
	}

	cfg.Enabled = true
	cfg.User = "admin"
	cfg.Password = "secret"

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/sample", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 after reload, got %d", w.Code)
	}
}
