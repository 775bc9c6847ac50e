package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nisix/errkit/auth"
	"github.com/nisix/errkit/errors"
	"github.com/nisix/errkit/logger"
	"github.com/nisix/errkit/server/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// capture records the last error left on the context after the chain ran.
func capture(got *error) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) > 0 {
			*got = c.Errors.Last().Err
		}
	}
}

func run(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRecovery_RecordsPanicError(t *testing.T) {
	var got error
	r := gin.New()
	r.Use(capture(&got), middleware.Recovery(logger.NewWithWriter(&logger.Config{Level: "disabled"}, "t", &strings.Builder{})))
	r.GET("/", func(*gin.Context) { panic("test panic") })

	run(r, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	var perr *middleware.PanicError
	require.True(t, errors.As(got, &perr), "expected PanicError, got %v", got)
	assert.Equal(t, "test panic", perr.Value)
	assert.Contains(t, perr.Stack(), "goroutine")
	assert.False(t, errors.IsClassified(got))
}

func TestRecovery_NoPanic(t *testing.T) {
	var got error
	r := gin.New()
	r.Use(capture(&got), middleware.Recovery(nil))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := run(r, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, got)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/", func(c *gin.Context) {
		id := logger.RequestIDFromContext(c.Request.Context())
		assert.NotEmpty(t, id)
		assert.Equal(t, c.GetString(middleware.ContextKeyRequestID), id)
		c.Status(http.StatusOK)
	})

	w := run(r, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set(middleware.HeaderRequestID, "existing")
	w = run(r, req)
	assert.Equal(t, "existing", w.Header().Get(middleware.HeaderRequestID))
}

func TestAuth(t *testing.T) {
	svc, err := auth.NewService(auth.Config{Secret: "k"})
	require.NoError(t, err)
	token, err := svc.Issue("user-9", "reader")
	require.NoError(t, err)

	tests := []struct {
		name     string
		path     string
		header   string
		wantCode errors.ErrorCode
		reached  bool
	}{
		{"skip path", "/public/x", "", "", true},
		{"missing header", "/private", "", errors.ErrCodeUnauthenticated, false},
		{"not bearer", "/private", "Token abc", errors.ErrCodeUnauthenticated, false},
		{"valid", "/private", "Bearer " + token, "", true},
		{"valid lowercase scheme", "/private", "bearer " + token, "", true},
		{"role missing", "/private/admin", "Bearer " + token, errors.ErrCodeUnauthorized, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got error
			reached := false
			r := gin.New()
			r.Use(capture(&got), middleware.Auth(middleware.AuthConfig{Verifier: svc, SkipPaths: []string{"/public"}}))
			handler := func(c *gin.Context) {
				reached = true
				if tc.path == "/private" {
					assert.Equal(t, "user-9", middleware.ClaimsFrom(c).Subject)
				}
				c.Status(http.StatusOK)
			}
			r.GET("/public/x", handler)
			r.GET("/private", handler)
			r.GET("/private/admin", middleware.RequireRole("admin"), handler)

			req := httptest.NewRequest(http.MethodGet, tc.path, http.NoBody)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			run(r, req)

			assert.Equal(t, tc.reached, reached)
			if tc.wantCode == "" {
				assert.NoError(t, got)
				return
			}
			assert.Equal(t, tc.wantCode, errors.CodeOf(got))
		})
	}
}

func TestRequireRole_WithoutAuth(t *testing.T) {
	var got error
	r := gin.New()
	r.Use(capture(&got))
	r.GET("/", middleware.RequireRole("admin"), func(c *gin.Context) { c.Status(http.StatusOK) })

	run(r, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	assert.Equal(t, errors.ErrCodeUnauthenticated, errors.CodeOf(got))
}

func TestRateLimit(t *testing.T) {
	var got error
	r := gin.New()
	r.Use(capture(&got), middleware.RateLimit(middleware.RateLimitConfig{RequestsPerSecond: 1, Burst: 2}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := run(r, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := run(r, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	ce, ok := errors.AsClassified(got)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeTooManyRequests, ce.Code)
	assert.Equal(t, 429, ce.Status)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestBodySizeLimit(t *testing.T) {
	var got error
	r := gin.New()
	r.Use(capture(&got), middleware.BodySizeLimit("4B"))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := run(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("ok")))
	assert.Equal(t, http.StatusOK, w.Code)

	run(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("too large")))
	assert.Equal(t, errors.ErrCodePayloadTooLarge, errors.CodeOf(got))
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"", 99},
		{"garbage", 99},
		{"512B", 512},
		{"1KiB", 1024},
		{"10MB", 10 * 1000 * 1000},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, middleware.ParseSize(tc.in, 99), "ParseSize(%q)", tc.in)
	}
}

func TestCORS(t *testing.T) {
	cfg := middleware.CORSConfig{
		AllowedOrigins:   []string{"https://ok.example"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowCredentials: true,
	}
	r := gin.New()
	r.Use(middleware.CORS(cfg))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("Origin", "https://ok.example")
	w := run(r, req)
	assert.Equal(t, "https://ok.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("Origin", "https://evil.example")
	w = run(r, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestLogger_WritesCode(t *testing.T) {
	var buf strings.Builder
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "t", &buf)
	r := gin.New()
	r.Use(middleware.RequestLogger(log))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/x", func(c *gin.Context) {
		_ = c.Error(errors.NotFound())
		c.Status(http.StatusNotFound)
	})

	run(r, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	assert.Empty(t, buf.String(), "health checks are not logged")

	run(r, httptest.NewRequest(http.MethodGet, "/x", http.NoBody))
	out := buf.String()
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"code":"NotFound"`)
	assert.Contains(t, out, `"status":404`)
}
