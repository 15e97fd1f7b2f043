package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const cookieIssuer = "storefront"

// sessionClaims is the payload of a session cookie. The cookie only points
// at a session row; it carries no identity of its own.
type sessionClaims struct {
	SessionToken string `json:"sid"`
	jwt.RegisteredClaims
}

// CookieCodec signs and verifies the session cookie. The cookie value is an
// HS256 JWT whose sid claim is the opaque session token.
type CookieCodec struct {
	name   string
	secret []byte
	secure bool
	now    func() time.Time
}

// NewCookieCodec creates a codec for the named cookie.
func NewCookieCodec(name, secret string, secure bool) *CookieCodec {
	return &CookieCodec{
		name:   name,
		secret: []byte(secret),
		secure: secure,
		now:    time.Now,
	}
}

// Name returns the cookie name.
func (c *CookieCodec) Name() string {
	return c.name
}

// Encode returns a signed cookie for sessionToken that expires with the
// session.
func (c *CookieCodec) Encode(sessionToken string, expiresAt time.Time) (*http.Cookie, error) {
	claims := &sessionClaims{
		SessionToken: sessionToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cookieIssuer,
			IssuedAt:  jwt.NewNumericDate(c.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session cookie: %w", err)
	}

	return &http.Cookie{
		Name:     c.name,
		Value:    signed,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Decode extracts the session token from r's cookie. It reports false when
// the cookie is absent, malformed, expired, or signed with another key.
func (c *CookieCodec) Decode(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(c.name)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cookieIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !token.Valid || claims.SessionToken == "" {
		return "", false
	}

	return claims.SessionToken, true
}
