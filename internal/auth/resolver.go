package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const bearerPrefix = "Bearer "

// Strategy is one way of establishing who sent a request. Resolve returns
// (identity, nil) on success and (nil, nil) when the request carries no
// credential the strategy understands. Any error aborts resolution.
type Strategy interface {
	Name() string
	Resolve(r *http.Request) (*domain.Identity, error)
}

// Resolver tries its strategies in order and returns the first identity
// found.
type Resolver struct {
	strategies []Strategy
}

// NewResolver creates a resolver over strategies, tried in the given order.
func NewResolver(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies}
}

// Resolve returns the identity of r's sender. A request no strategy
// recognizes yields an error wrapping apperrors.ErrUnauthorized.
func (res *Resolver) Resolve(r *http.Request) (*domain.Identity, error) {
	for _, s := range res.strategies {
		id, err := s.Resolve(r)
		if err != nil {
			return nil, fmt.Errorf("resolve %s credential: %w", s.Name(), err)
		}
		if id != nil {
			return id, nil
		}
	}
	return nil, apperrors.Unauthorized("Unauthorized")
}

// CookieStrategy resolves the provider's session cookie.
type CookieStrategy struct {
	provider *Provider
}

// NewCookieStrategy creates a cookie strategy backed by provider.
func NewCookieStrategy(provider *Provider) *CookieStrategy {
	return &CookieStrategy{provider: provider}
}

// Name implements Strategy.
func (s *CookieStrategy) Name() string { return "cookie" }

// Resolve implements Strategy.
func (s *CookieStrategy) Resolve(r *http.Request) (*domain.Identity, error) {
	return s.provider.ResolveSession(r)
}

// BearerStrategy resolves an "Authorization: Bearer <token>" header against
// the session table. The prefix match is case-sensitive.
type BearerStrategy struct {
	sessions repository.SessionRepository
	now      func() time.Time
}

// NewBearerStrategy creates a bearer strategy backed by sessions.
func NewBearerStrategy(sessions repository.SessionRepository) *BearerStrategy {
	return &BearerStrategy{sessions: sessions, now: time.Now}
}

// Name implements Strategy.
func (s *BearerStrategy) Name() string { return "bearer" }

// Resolve implements Strategy. A missing or malformed header counts as no
// credential.
func (s *BearerStrategy) Resolve(r *http.Request) (*domain.Identity, error) {
	token, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		return nil, nil
	}

	_, user, err := s.sessions.FindActiveByToken(r.Context(), token, s.now())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find session: %w", err)
	}

	return user.Identity(), nil
}

func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", false
	}
	return token, true
}
