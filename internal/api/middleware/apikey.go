package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
)

// APIKeyAuth is middleware that validates API key authentication.
//
// When enabled (GUANGFU_API_KEYS is set), all requests to /api/v1/*
// must include a valid API key via:
//   - Authorization: Bearer <key>
//   - X-API-Key: <key>
//   - api_key query parameter (for SSE connections)
//
// The following paths are always public:
//   - /health
//   - /version
//
// API keys are configured as a comma-separated list: "key1,key2,key3".
type APIKeyAuth struct {
	mu      sync.RWMutex
	keys    map[string]bool
	enabled bool
}

// NewAPIKeyAuth creates an API key auth middleware from the configured
// comma-separated key list. An empty list disables auth.
func NewAPIKeyAuth(keyList string) *APIKeyAuth {
	auth := &APIKeyAuth{keys: make(map[string]bool)}
	for _, key := range strings.Split(keyList, ",") {
		key = strings.TrimSpace(key)
		if key != "" {
			auth.keys[key] = true
			auth.enabled = true
		}
	}
	return auth
}

// Enabled returns whether API key auth is active.
func (a *APIKeyAuth) Enabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// AddKey adds a new API key at runtime.
func (a *APIKeyAuth) AddKey(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.keys[key] = true
	a.enabled = true
}

// RemoveKey removes an API key at runtime.
func (a *APIKeyAuth) RemoveKey(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.keys, key)
	if len(a.keys) == 0 {
		a.enabled = false
	}
}

// Middleware returns an http.Handler middleware that enforces API key auth.
func (a *APIKeyAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		apiKey := extractAPIKey(r)
		if apiKey == "" {
			respondUnauthorized(w, "API key required. Set Authorization: Bearer <key> or X-API-Key header.")
			return
		}

		if !a.validateKey(apiKey) {
			respondUnauthorized(w, "Invalid API key.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (a *APIKeyAuth) validateKey(candidate string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for key := range a.keys {
		if subtle.ConstantTimeCompare([]byte(candidate), []byte(key)) == 1 {
			return true
		}
	}
	return false
}

func extractAPIKey(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	// SSE consumers cannot always set headers.
	if key := r.URL.Query().Get("api_key"); key != "" {
		return key
	}
	return ""
}

func isPublicPath(path string) bool {
	switch path {
	case "/health", "/version":
		return true
	}
	return false
}

func respondUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="guangfu-agents"`)
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": msg,
	})
}
