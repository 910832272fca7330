package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func doCORS(cfg CORSConfig, method, origin string) *httptest.ResponseRecorder {
	handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("handled"))
	}))

	req := httptest.NewRequest(method, "/services", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestCORS_OriginResolution(t *testing.T) {
	prod := CORSConfig{
		AllowedOrigins: []string{"https://homigo.app", "https://admin.homigo.app"},
		Environment:    "production",
	}

	tests := []struct {
		name      string
		cfg       CORSConfig
		origin    string
		wantAllow string
		wantVary  string
	}{
		{
			name:      "development wildcards every origin",
			cfg:       CORSConfig{AllowedOrigins: []string{"*"}, Environment: "development"},
			origin:    "https://evil.example",
			wantAllow: "*",
		},
		{
			name:      "wildcard entry overrides production",
			cfg:       CORSConfig{AllowedOrigins: []string{"https://homigo.app", "*"}, Environment: "production"},
			origin:    "https://anything.example",
			wantAllow: "*",
		},
		{
			name:      "listed origin echoed with Vary",
			cfg:       prod,
			origin:    "https://admin.homigo.app",
			wantAllow: "https://admin.homigo.app",
			wantVary:  "Origin",
		},
		{
			name:   "unlisted origin gets no header",
			cfg:    prod,
			origin: "https://evil.example",
		},
		{
			name: "no Origin header at all",
			cfg:  prod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doCORS(tt.cfg, http.MethodGet, tt.origin)

			assert.Equal(t, tt.wantAllow, rr.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantVary, rr.Header().Get("Vary"))
			// The request itself always runs; only the browser enforces CORS.
			assert.Equal(t, http.StatusOK, rr.Code)
		})
	}
}

func TestCORS_PreflightAnsweredDirectly(t *testing.T) {
	rr := doCORS(DefaultCORSConfig(), http.MethodOptions, "https://homigo.app")

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.NotContains(t, rr.Body.String(), "handled")
}

func TestCORS_HeaderFields(t *testing.T) {
	rr := doCORS(CORSConfig{
		AllowedOrigins:   []string{"https://homigo.app"},
		AllowedHeaders:   []string{"Accept", "Authorization", "X-Custom"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		MaxAge:           7200,
		AllowCredentials: true,
		Environment:      "production",
	}, http.MethodGet, "https://homigo.app")

	h := rr.Header()
	assert.Equal(t, "Accept, Authorization, X-Custom", h.Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "X-Correlation-ID", h.Get("Access-Control-Expose-Headers"))
	assert.Equal(t, "7200", h.Get("Access-Control-Max-Age"))
	assert.Equal(t, "true", h.Get("Access-Control-Allow-Credentials"))
}

func TestCORS_Defaults(t *testing.T) {
	rr := doCORS(CORSConfig{AllowedOrigins: []string{"*"}, Environment: "development"}, http.MethodGet, "")

	h := rr.Header()
	assert.Equal(t, "GET, POST, PUT, PATCH, DELETE, OPTIONS", h.Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Accept, Authorization, Content-Type, X-Correlation-ID", h.Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "3600", h.Get("Access-Control-Max-Age"))
	assert.Empty(t, h.Get("Access-Control-Allow-Credentials"))
}

func TestDefaultCORSConfig(t *testing.T) {
	cfg := DefaultCORSConfig()

	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Contains(t, cfg.AllowedMethods, "DELETE")
	assert.Contains(t, cfg.AllowedHeaders, "X-Correlation-ID")
	assert.Equal(t, []string{"X-Correlation-ID"}, cfg.ExposedHeaders)
	assert.Equal(t, 3600, cfg.MaxAge)
	assert.Equal(t, "development", cfg.Environment)
}
