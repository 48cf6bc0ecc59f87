package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func okRouter(mw ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(mw...)
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func do(router *gin.Engine, headers map[string]string, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAPIKeyAuth(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		target   string
		wantCode int
	}{
		{"valid header key", map[string]string{"X-API-Key": "key-1"}, "/test", http.StatusOK},
		{"second valid key", map[string]string{"X-API-Key": "key-2"}, "/test", http.StatusOK},
		{"valid query param key", nil, "/test?api_key=key-1", http.StatusOK},
		{"missing key", nil, "/test", http.StatusUnauthorized},
		{"wrong key", map[string]string{"X-API-Key": "nope"}, "/test", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := okRouter(APIKeyAuth([]string{"key-1", "key-2"}))
			if w := do(router, tt.headers, tt.target); w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", w.Code, tt.wantCode)
			}
		})
	}
}

func TestAdminKeyAuth(t *testing.T) {
	router := okRouter(AdminKeyAuth([]string{"admin-key"}))

	if w := do(router, map[string]string{"X-API-Key": "admin-key"}, "/test"); w.Code != http.StatusOK {
		t.Errorf("valid admin key: status = %d", w.Code)
	}
	// A non-admin key is recognized as present but insufficient: 403, not 401.
	if w := do(router, map[string]string{"X-API-Key": "regular-key"}, "/test"); w.Code != http.StatusForbidden {
		t.Errorf("non-admin key: status = %d, want 403", w.Code)
	}
	if w := do(router, nil, "/test"); w.Code != http.StatusUnauthorized {
		t.Errorf("missing key: status = %d, want 401", w.Code)
	}
}

func TestCORSAllowedOrigin(t *testing.T) {
	router := okRouter(CORS([]string{"http://localhost:3000"}))

	w := do(router, map[string]string{"Origin": "http://localhost:3000"}, "/test")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("allow-origin = %q", got)
	}

	w = do(router, map[string]string{"Origin": "http://untrusted.example"}, "/test")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected allow-origin for unknown origin: %q", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	router := okRouter(CORS([]string{"http://localhost:3000"}))

	req := httptest.NewRequest(http.MethodOptions, "/test", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("preflight missing Access-Control-Allow-Methods")
	}
}

// withKey simulates the auth middleware having stored the caller's key.
func withKey(key func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("api_key", key(c))
		c.Next()
	}
}

func TestRateLimitWithinBurst(t *testing.T) {
	router := okRouter(
		withKey(func(c *gin.Context) string { return "caller" }),
		RateLimit(10, 5),
	)

	for i := 0; i < 5; i++ {
		if w := do(router, nil, "/test"); w.Code != http.StatusOK {
			t.Errorf("request %d: status = %d, want 200", i, w.Code)
		}
	}
}

func TestRateLimitRejectsBeyondBurst(t *testing.T) {
	router := okRouter(
		withKey(func(c *gin.Context) string { return "caller" }),
		RateLimit(1, 2),
	)

	do(router, nil, "/test")
	do(router, nil, "/test")

	if w := do(router, nil, "/test"); w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Code)
	}
}

func TestRateLimitPerKeyBuckets(t *testing.T) {
	router := okRouter(
		withKey(func(c *gin.Context) string { return c.GetHeader("X-API-Key") }),
		RateLimit(1, 1),
	)

	if w := do(router, map[string]string{"X-API-Key": "key-a"}, "/test"); w.Code != http.StatusOK {
		t.Errorf("key-a first request: status = %d", w.Code)
	}
	if w := do(router, map[string]string{"X-API-Key": "key-a"}, "/test"); w.Code != http.StatusTooManyRequests {
		t.Errorf("key-a second request: status = %d, want 429", w.Code)
	}
	// An exhausted bucket for one key must not affect another key.
	if w := do(router, map[string]string{"X-API-Key": "key-b"}, "/test"); w.Code != http.StatusOK {
		t.Errorf("key-b first request: status = %d", w.Code)
	}
}

func TestRateLimitSkipsWhenUnauthenticated(t *testing.T) {
	router := okRouter(RateLimit(1, 1))

	// Without an api_key in the context the limiter stands aside.
	for i := 0; i < 3; i++ {
		if w := do(router, nil, "/test"); w.Code != http.StatusOK {
			t.Errorf("request %d: status = %d, want 200", i, w.Code)
		}
	}
}
