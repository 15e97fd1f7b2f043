package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

func TestAuthenticate(t *testing.T) {
	alice := &Principal{UserID: "user-1", Email: "alice@example.com", Role: "CREATOR"}

	tests := []struct {
		name       string
		authn      Authenticator
		wantStatus int
		wantBody   string
		wantCalled bool
	}{
		{
			name:       "principal resolved",
			authn:      func(*http.Request) (*Principal, error) { return alice, nil },
			wantStatus: http.StatusOK,
			wantCalled: true,
		},
		{
			name:       "nil principal",
			authn:      func(*http.Request) (*Principal, error) { return nil, nil },
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"Unauthorized"}`,
		},
		{
			name: "unauthorized error",
			authn: func(*http.Request) (*Principal, error) {
				return nil, fmt.Errorf("resolve: %w", apperrors.ErrUnauthorized)
			},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"Unauthorized"}`,
		},
		{
			name: "backend failure",
			authn: func(*http.Request) (*Principal, error) {
				return nil, errors.New("connection refused")
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			var seen *Principal
			h := Authenticate(tt.authn, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				seen = PrincipalFromContext(r.Context())
				assert.Equal(t, seen.UserID, logger.UserIDFromContext(r.Context()))
				assert.Equal(t, seen.Role, logger.RoleFromContext(r.Context()))
				w.WriteHeader(http.StatusOK)
			}))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/api/stores/me", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCalled, called)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
			if tt.wantCalled {
				require.NotNil(t, seen)
				assert.Equal(t, alice.UserID, seen.UserID)
			}
		})
	}
}

func TestPrincipalFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, PrincipalFromContext(req.Context()))
}

func TestWriteForbidden(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteForbidden(rec)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"Forbidden"}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
