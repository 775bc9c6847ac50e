package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nisix/errkit/auth"
	"github.com/nisix/errkit/server/middleware"
)

func newTestServer(t *testing.T, cfg Config, debug bool) (*Server, *auth.Service) {
	t.Helper()
	cfg.ApplyDefaults()
	cfg.Errors.Debug = &debug

	svc, err := auth.NewService(auth.Config{Secret: "s3cret", Issuer: "errkit"})
	require.NoError(t, err)

	s := New(cfg, quietLogger())
	s.ApplyMiddleware(ErrorHandlerOptions{})
	s.RegisterDefaultEndpoints("errkit-test", "v0.0.1")

	r := s.GinEngine()
	r.GET("/panic", func(*gin.Context) { panic("kaboom") })
	admin := r.Group("/admin", middleware.Auth(middleware.AuthConfig{Verifier: svc}), middleware.RequireRole("admin"))
	admin.GET("/stats", func(c *gin.Context) { RespondOK(c, "ok") })
	r.POST("/upload", func(c *gin.Context) { RespondCreated(c, "stored") })
	return s, svc
}

func do(t *testing.T, s *Server, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	var body map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), "body: %s", w.Body.String())
	}
	return w, body
}

func TestServer_PanicBecomesOpaque500(t *testing.T) {
	for _, debug := range []bool{true, false} {
		s, _ := newTestServer(t, Config{}, debug)
		w, body := do(t, s, httptest.NewRequest(http.MethodGet, "/panic", http.NoBody))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		inner, ok := body["error"].(map[string]any)
		require.True(t, ok, "expected nested error body, got %v", body)
		assert.Equal(t, float64(500), inner["status"])
		assert.Equal(t, "panic: kaboom", inner["message"])
		_, hasStack := inner["stack"]
		assert.Equal(t, debug, hasStack)
	}
}

func TestServer_AuthInversion(t *testing.T) {
	s, svc := newTestServer(t, Config{}, false)
	reader, err := svc.Issue("u1", "reader")
	require.NoError(t, err)
	admin, err := svc.Issue("u2", "admin")
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantMsg    string
	}{
		{"missing token", "", http.StatusUnauthorized, "Unauthenticated"},
		{"bad scheme", "Basic abc", http.StatusUnauthorized, "Unauthenticated"},
		{"garbage token", "Bearer nope", http.StatusUnauthorized, "Unauthenticated"},
		{"wrong role", "Bearer " + reader, http.StatusForbidden, "Unauthorized"},
		{"granted", "Bearer " + admin, http.StatusOK, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/stats", http.NoBody)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w, body := do(t, s, req)
			assert.Equal(t, tc.wantStatus, w.Code)
			if tc.wantMsg != "" {
				assert.Equal(t, tc.wantMsg, body["message"])
			}
		})
	}
}

func TestServer_NotFoundAndMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t, Config{}, false)

	w, body := do(t, s, httptest.NewRequest(http.MethodGet, "/nowhere", http.NoBody))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NotFound", body["message"])

	w, body = do(t, s, httptest.NewRequest(http.MethodGet, "/upload", http.NoBody))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "MethodNotAllowed", body["message"])
}

func TestServer_BodySizeLimit(t *testing.T) {
	s, _ := newTestServer(t, Config{MaxBodySize: "8B"}, false)
	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("this body is too long"))

	w, body := do(t, s, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "PayloadTooLarge", body["message"])
}

func TestServer_RateLimit(t *testing.T) {
	s, _ := newTestServer(t, Config{RateLimit: &middleware.RateLimitConfig{RequestsPerSecond: 1, Burst: 1}}, false)

	w, _ := do(t, s, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	assert.Equal(t, http.StatusOK, w.Code)

	w, body := do(t, s, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "TooManyRequests", body["message"])
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestServer_RequestIDAndHealth(t *testing.T) {
	s, _ := newTestServer(t, Config{}, false)
	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	req.Header.Set(middleware.HeaderRequestID, "req-42")

	w, body := do(t, s, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-42", w.Header().Get(middleware.HeaderRequestID))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "errkit-test", body["service"])
}

func TestServer_CORSPreflight(t *testing.T) {
	s, _ := newTestServer(t, Config{}, false)
	req := httptest.NewRequest(http.MethodOptions, "/upload", http.NoBody)
	req.Header.Set("Origin", "https://example.com")

	w, _ := do(t, s, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_StartStop(t *testing.T) {
	s, _ := newTestServer(t, Config{Host: "127.0.0.1", Port: 0}, false)
	// ApplyDefaults replaced port 0, so rebind on an ephemeral port.
	s.httpServer.Addr = "127.0.0.1:0"

	require.NoError(t, s.Start(context.Background()))
	resp, err := http.Get("http://" + s.Addr() + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, s.Stop(context.Background()))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Port: 8080}, false},
		{"bad port", Config{Port: 70000}, true},
		{"negative timeout", Config{ReadTimeout: -1}, true},
		{"negative rate", Config{RateLimit: &middleware.RateLimitConfig{RequestsPerSecond: -1}}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			assert.Equal(t, tc.wantErr, err != nil, "Validate() = %v", err)
		})
	}
}

func TestServer_RateLimitIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	s, _ := newTestServer(t, Config{RateLimit: &middleware.RateLimitConfig{RequestsPerSecond: 1, Burst: 1}}, false)

	allowed := 0
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
		req.Header.Set("X-Forwarded-For", "10.0.0."+strconv.Itoa(i+1))
		if w, _ := do(t, s, req); w.Code == http.StatusOK {
			allowed++
		}
	}
	assert.Equal(t, 1, allowed, "rotating X-Forwarded-For must not bypass the limit")
}

func TestServer_TrustedProxyForwardedFor(t *testing.T) {
	s, _ := newTestServer(t, Config{
		RateLimit:      &middleware.RateLimitConfig{RequestsPerSecond: 1, Burst: 1},
		TrustedProxies: []string{"192.0.2.0/24"},
	}, false)

	for _, client := range []string{"203.0.113.1", "203.0.113.2"} {
		req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
		req.Header.Set("X-Forwarded-For", client)
		w, _ := do(t, s, req)
		assert.Equal(t, http.StatusOK, w.Code, "client %s behind a trusted proxy has its own bucket", client)
	}
}
