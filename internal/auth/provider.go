package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// Password length bounds, in characters.
const (
	minPasswordLength = 8
	maxPasswordLength = 128
)

// sessionTokenBytes is the entropy of a session token before encoding.
const sessionTokenBytes = 32

// Messages returned to clients by sign-up and sign-in.
const (
	msgInvalidCredentials = "Invalid email or password"
	msgUserExists         = "User already exists"
)

// RegistrationPublisher announces newly registered users.
type RegistrationPublisher interface {
	PublishUserRegistered(ctx context.Context, user *domain.User) error
}

// SignUpInput holds the parameters for registering a new user.
type SignUpInput struct {
	Email    string
	Password string
	Name     string
}

// SignInInput holds the parameters for signing in.
type SignInInput struct {
	Email    string
	Password string
}

// ClientInfo describes the client a session is issued to.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// Provider is the credential provider: it registers users, verifies
// passwords, issues sessions, and resolves the session cookie of a request.
type Provider struct {
	users    repository.UserRepository
	accounts repository.AccountRepository
	sessions repository.SessionRepository
	cache    repository.SessionCache
	cookies  *CookieCodec
	events   RegistrationPublisher
	ttl      time.Duration
	hashCost int
	logger   *slog.Logger
	now      func() time.Time
}

// NewProvider creates a new credential provider. cache and events may be
// nil.
func NewProvider(
	users repository.UserRepository,
	accounts repository.AccountRepository,
	sessions repository.SessionRepository,
	cache repository.SessionCache,
	cookies *CookieCodec,
	events RegistrationPublisher,
	sessionTTL time.Duration,
	logger *slog.Logger,
) *Provider {
	return &Provider{
		users:    users,
		accounts: accounts,
		sessions: sessions,
		cache:    cache,
		cookies:  cookies,
		events:   events,
		ttl:      sessionTTL,
		hashCost: bcryptCost,
		logger:   logger,
		now:      time.Now,
	}
}

// SignUp registers a new user with role CREATOR and signs them in.
func (p *Provider) SignUp(ctx context.Context, input SignUpInput, client ClientInfo) (*domain.AuthResult, error) {
	user, err := p.register(ctx, input)
	if err != nil {
		return nil, err
	}

	if p.events != nil {
		if err := p.events.PublishUserRegistered(ctx, user); err != nil {
			p.logger.ErrorContext(ctx, "failed to publish user.registered event",
				slog.String("user_id", user.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	p.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return p.issueSession(ctx, user, client)
}

// SignIn verifies an email and password and issues a new session. Every
// credential mismatch yields the same error so callers cannot probe which
// emails are registered.
func (p *Provider) SignIn(ctx context.Context, input SignInInput, client ClientInfo) (*domain.AuthResult, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, apperrors.Unauthorized(msgInvalidCredentials)
	}

	user, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized(msgInvalidCredentials)
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	account, err := p.accounts.GetByUserAndProvider(ctx, user.ID, domain.ProviderCredential)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized(msgInvalidCredentials)
		}
		return nil, fmt.Errorf("get credential account: %w", err)
	}

	if account.PasswordHash == "" || !checkPassword(account.PasswordHash, input.Password) {
		return nil, apperrors.Unauthorized(msgInvalidCredentials)
	}

	p.logger.InfoContext(ctx, "user signed in", slog.String("user_id", user.ID))

	return p.issueSession(ctx, user, client)
}

// SessionCookie returns the signed cookie carrying result's session token.
func (p *Provider) SessionCookie(result *domain.AuthResult) (*http.Cookie, error) {
	return p.cookies.Encode(result.Token, result.ExpiresAt)
}

// ResolveSession returns the identity behind r's session cookie. A missing
// or unverifiable cookie, or one naming an unknown or expired session,
// yields (nil, nil). Database failures are returned.
func (p *Provider) ResolveSession(r *http.Request) (*domain.Identity, error) {
	token, ok := p.cookies.Decode(r)
	if !ok {
		return nil, nil
	}

	ctx := r.Context()
	now := p.now()

	if p.cache != nil {
		session, user, err := p.cache.Get(ctx, token)
		if err != nil {
			p.logger.WarnContext(ctx, "session cache lookup failed", slog.String("error", err.Error()))
		} else if session != nil && session.ValidAt(now) {
			return user.Identity(), nil
		}
	}

	session, user, err := p.sessions.FindActiveByToken(ctx, token, now)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find session: %w", err)
	}

	p.cacheSession(ctx, session, user)

	return user.Identity(), nil
}

// EnsureAdmin makes sure an ADMIN account exists for email. A missing user is
// registered with password; an existing user keeps its password and is
// elevated to ADMIN.
func (p *Provider) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)

	user, err := p.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		user, err = p.register(ctx, SignUpInput{Email: email, Password: password})
		if err != nil {
			return fmt.Errorf("register admin: %w", err)
		}
		p.logger.InfoContext(ctx, "admin user created", slog.String("user_id", user.ID))
	case err != nil:
		return fmt.Errorf("get admin user: %w", err)
	}

	if user.Role == domain.RoleAdmin {
		return nil
	}

	if err := p.users.UpdateRole(ctx, user.ID, domain.RoleAdmin); err != nil {
		return fmt.Errorf("elevate admin user: %w", err)
	}

	p.logger.InfoContext(ctx, "user elevated to admin",
		slog.String("user_id", user.ID),
		slog.String("previous_role", user.Role.String()),
	)

	return nil
}

// register validates input and stores the user together with its credential
// account.
func (p *Provider) register(ctx context.Context, input SignUpInput) (*domain.User, error) {
	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, apperrors.InvalidInput("Email is required")
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	switch _, err := p.users.GetByEmail(ctx, email); {
	case err == nil:
		return nil, apperrors.AlreadyExists(msgUserExists)
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	hash, err := hashPassword(input.Password, p.hashCost)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = localPart(email)
	}

	now := p.now().UTC()
	user := &domain.User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Role:      domain.DefaultRole,
		CreatedAt: now,
		UpdatedAt: now,
	}
	account := &domain.Account{
		ID:           uuid.New().String(),
		AccountID:    user.ID,
		ProviderID:   domain.ProviderCredential,
		UserID:       user.ID,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := p.users.CreateWithAccount(ctx, user, account); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, apperrors.AlreadyExists(msgUserExists)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func (p *Provider) issueSession(ctx context.Context, user *domain.User, client ClientInfo) (*domain.AuthResult, error) {
	token, err := newSessionToken()
	if err != nil {
		return nil, err
	}

	now := p.now().UTC()
	session := &domain.Session{
		ID:        uuid.New().String(),
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: now.Add(p.ttl),
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := p.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	p.cacheSession(ctx, session, user)

	return &domain.AuthResult{Token: token, ExpiresAt: session.ExpiresAt, User: user}, nil
}

func (p *Provider) cacheSession(ctx context.Context, session *domain.Session, user *domain.User) {
	if p.cache == nil {
		return
	}
	if err := p.cache.Set(ctx, session, user); err != nil {
		p.logger.WarnContext(ctx, "failed to cache session",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}
}

func newSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func localPart(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}

// validatePassword checks the password length in characters.
func validatePassword(password string) error {
	n := len([]rune(password))
	if n < minPasswordLength || n > maxPasswordLength {
		return apperrors.InvalidInput(fmt.Sprintf(
			"Password must be between %d and %d characters", minPasswordLength, maxPasswordLength))
	}
	return nil
}

// passwordDigest is what bcrypt actually hashes. bcrypt rejects input over 72
// bytes, so the password is reduced to a fixed-size SHA-256 digest first.
func passwordDigest(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

func hashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(passwordDigest(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), passwordDigest(password)) == nil
}
