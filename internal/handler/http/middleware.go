package http

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/utafrali/storefront/internal/auth"
	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/validator"
)

// maxBodyBytes caps request bodies at 1 MiB.
const maxBodyBytes = 1 << 20

// IdentityResolver turns request credentials into an identity. It is
// satisfied by *auth.Resolver.
type IdentityResolver interface {
	Resolve(r *http.Request) (*domain.Identity, error)
}

// authenticate adapts resolver to the shared authentication middleware,
// which answers 401 when no identity can be established.
func authenticate(resolver IdentityResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Authenticate(func(r *http.Request) (*middleware.Principal, error) {
		id, err := resolver.Resolve(r)
		if err != nil || id == nil {
			return nil, err
		}
		return &middleware.Principal{UserID: id.ID, Email: id.Email, Role: id.Role.String()}, nil
	}, logger)
}

// identityFromRequest returns the identity established by authenticate, or
// nil on routes that are not authenticated.
func identityFromRequest(r *http.Request) *domain.Identity {
	p := middleware.PrincipalFromContext(r.Context())
	if p == nil {
		return nil
	}
	return &domain.Identity{ID: p.UserID, Email: p.Email, Role: domain.Role(p.Role)}
}

// requireRole lets the request through only when the caller's role is one of
// roles. It must be mounted after authenticate.
func requireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := auth.Authorize(identityFromRequest(r), roles...)
			switch {
			case errors.Is(err, apperrors.ErrUnauthorized):
				middleware.RecordAuthDecision(middleware.AuthOutcomeUnauthorized)
				middleware.WriteUnauthorized(w)
				return
			case err != nil:
				middleware.RecordAuthDecision(middleware.AuthOutcomeForbidden)
				middleware.WriteForbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ContentTypeJSON rejects request bodies that are not declared as JSON.
// Bodiless requests such as DELETE or a restore PATCH pass through.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength != 0 && r.Body != nil && r.Body != http.NoBody {
			if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
				httputil.WriteFailure(w, http.StatusUnsupportedMediaType, &httputil.ErrorResponse{
					Code:    "UNSUPPORTED_MEDIA_TYPE",
					Message: "Content-Type must be application/json",
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// decodeRequest reads at most maxBodyBytes of JSON into dst and validates it.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return validator.DecodeAndValidate(r, dst)
}

// clientInfo describes the caller for session bookkeeping.
func clientInfo(r *http.Request) auth.ClientInfo {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return auth.ClientInfo{IPAddress: host, UserAgent: r.UserAgent()}
}
