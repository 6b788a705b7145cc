package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lingnanlabs/guangfu-agents/internal/api/middleware"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAPIKeyAuth_Disabled(t *testing.T) {
	auth := middleware.NewAPIKeyAuth("")
	if auth.Enabled() {
		t.Error("Expected auth to be disabled with an empty key list")
	}

	handler := auth.Middleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/agents", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Disabled auth: status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestAPIKeyAuth_ValidKey(t *testing.T) {
	auth := middleware.NewAPIKeyAuth("test-key-1,test-key-2")
	if !auth.Enabled() {
		t.Fatal("Expected auth to be enabled")
	}

	handler := auth.Middleware(okHandler())

	// Bearer token
	req := httptest.NewRequest(http.MethodGet, "/api/v1/agents", nil)
	req.Header.Set("Authorization", "Bearer test-key-1")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Valid Bearer key: status = %d, want %d", w.Code, http.StatusOK)
	}

	// X-API-Key header
	req2 := httptest.NewRequest(http.MethodGet, "/api/v1/agents", nil)
	req2.Header.Set("X-API-Key", "test-key-2")
	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, req2)

	if w2.Code != http.StatusOK {
		t.Errorf("Valid X-API-Key: status = %d, want %d", w2.Code, http.StatusOK)
	}

	// api_key query parameter, the SSE path
	req3 := httptest.NewRequest(http.MethodGet, "/api/v1/collaboration/stream?api_key=test-key-1", nil)
	w3 := httptest.NewRecorder()
	handler.ServeHTTP(w3, req3)

	if w3.Code != http.StatusOK {
		t.Errorf("Valid query key: status = %d, want %d", w3.Code, http.StatusOK)
	}
}

func TestAPIKeyAuth_InvalidKey(t *testing.T) {
	auth := middleware.NewAPIKeyAuth("valid-key")
	handler := auth.Middleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/agents", nil)
	req.Header.Set("Authorization", "Bearer wrong-key")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Invalid key: status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAPIKeyAuth_MissingKey(t *testing.T) {
	auth := middleware.NewAPIKeyAuth("valid-key")
	handler := auth.Middleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/agents", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Missing key: status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAPIKeyAuth_PublicPaths(t *testing.T) {
	auth := middleware.NewAPIKeyAuth("valid-key")
	handler := auth.Middleware(okHandler())

	for _, path := range []string{"/health", "/version"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Public path %s: status = %d, want %d", path, w.Code, http.StatusOK)
		}
	}
}

func TestAPIKeyAuth_RuntimeKeys(t *testing.T) {
	auth := middleware.NewAPIKeyAuth("")
	auth.AddKey("runtime-key")
	if !auth.Enabled() {
		t.Fatal("AddKey did not enable auth")
	}

	auth.RemoveKey("runtime-key")
	if auth.Enabled() {
		t.Fatal("RemoveKey of last key did not disable auth")
	}
}
