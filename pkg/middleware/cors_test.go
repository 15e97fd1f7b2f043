package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func serveCORS(cfg CORSConfig, method, origin string) *httptest.ResponseRecorder {
	h := CORS(cfg)(okHandler())
	req := httptest.NewRequest(method, "/v1/api/stores/me", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCORS_AllowOrigin(t *testing.T) {
	tests := []struct {
		name        string
		cfg         CORSConfig
		origin      string
		wantOrigin  string
		wantCreds   string
		wantVaryHdr bool
	}{
		{
			name:       "wildcard without credentials",
			cfg:        CORSConfig{AllowedOrigins: []string{"*"}},
			origin:     "https://anything.example",
			wantOrigin: "*",
		},
		{
			name:        "wildcard with credentials echoes origin",
			cfg:         CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true},
			origin:      "https://shop.example",
			wantOrigin:  "https://shop.example",
			wantCreds:   "true",
			wantVaryHdr: true,
		},
		{
			name:        "listed origin",
			cfg:         CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}, AllowCredentials: true},
			origin:      "http://localhost:3000",
			wantOrigin:  "http://localhost:3000",
			wantCreds:   "true",
			wantVaryHdr: true,
		},
		{
			name:        "listed origin with trailing slash in config",
			cfg:         CORSConfig{AllowedOrigins: []string{"https://a.example/", "https://b.example"}},
			origin:      "https://a.example",
			wantOrigin:  "https://a.example",
			wantVaryHdr: true,
		},
		{
			name:   "unlisted origin",
			cfg:    CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}, AllowCredentials: true},
			origin: "https://evil.example",
		},
		{
			name: "no origin header",
			cfg:  CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveCORS(tt.cfg, http.MethodGet, tt.origin)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantCreds, rec.Header().Get("Access-Control-Allow-Credentials"))
			if tt.wantVaryHdr {
				assert.Equal(t, "Origin", rec.Header().Get("Vary"))
			}
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	rec := serveCORS(CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}}, http.MethodOptions, "http://localhost:3000")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "GET, POST, PATCH, DELETE, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Accept, Authorization, Content-Type, X-Correlation-ID", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "3600", rec.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_CustomHeaders(t *testing.T) {
	rec := serveCORS(CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET"},
		AllowedHeaders: []string{"Authorization"},
		ExposedHeaders: []string{"X-Correlation-ID", "traceparent"},
		MaxAge:         60,
	}, http.MethodGet, "https://x.example")

	assert.Equal(t, "GET", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Authorization", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "X-Correlation-ID, traceparent", rec.Header().Get("Access-Control-Expose-Headers"))
	assert.Equal(t, "60", rec.Header().Get("Access-Control-Max-Age"))
}
