package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
)

type principalKey struct{}

// Principal is the authenticated caller attached to a request context.
type Principal struct {
	UserID string
	Email  string
	Role   string
}

// Authenticator resolves the caller of r. It returns an error wrapping
// apperrors.ErrUnauthorized when the request carries no usable credential;
// any other error is treated as a server failure.
type Authenticator func(r *http.Request) (*Principal, error)

// Authenticate runs authn and stores the resulting Principal in the request
// context. Unauthenticated requests get 401 {"error":"Unauthorized"}.
func Authenticate(authn Authenticator, l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := authn(r)
			switch {
			case err != nil && !errors.Is(err, apperrors.ErrUnauthorized):
				RecordAuthDecision(AuthOutcomeError)
				httputil.WriteError(w, r, err, l)
				return
			case err != nil || p == nil:
				RecordAuthDecision(AuthOutcomeUnauthorized)
				WriteUnauthorized(w)
				return
			}

			RecordAuthDecision(AuthOutcomeAuthenticated)

			ctx := WithPrincipal(r.Context(), p)
			ctx = logger.WithUser(ctx, p.UserID, p.Role)
			ctx = logger.NewContext(ctx, logger.FromContext(ctx).With(
				slog.String("user_id", p.UserID),
				slog.String("role", p.Role),
			))
			trace.SpanFromContext(ctx).SetAttributes(
				attribute.String("enduser.id", p.UserID),
				attribute.String("enduser.role", p.Role),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the Principal stored by Authenticate, or nil.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}

// WriteUnauthorized writes the fixed 401 body.
func WriteUnauthorized(w http.ResponseWriter) {
	httputil.WriteMessage(w, http.StatusUnauthorized, "Unauthorized")
}

// WriteForbidden writes the fixed 403 body.
func WriteForbidden(w http.ResponseWriter) {
	httputil.WriteMessage(w, http.StatusForbidden, "Forbidden")
}
