package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// SessionRepository implements repository.SessionRepository using PostgreSQL.
type SessionRepository struct {
	db database.DBTX
}

// NewSessionRepository creates a new PostgreSQL-backed session repository.
func NewSessionRepository(db database.DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create stores a new session.
func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) (err error) {
	query := `
		INSERT INTO session (id, token, user_id, expires_at, ip_address, user_agent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	ctx, end := database.TraceQuery(ctx, "CreateSession", query)
	defer func() { end(err) }()

	_, err = r.db.Exec(ctx, query,
		s.ID,
		s.Token,
		s.UserID,
		s.ExpiresAt,
		s.IPAddress,
		s.UserAgent,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	return nil
}

// FindActiveByToken returns the session whose token equals token exactly,
// joined to its user, when it expires strictly after now.
func (r *SessionRepository) FindActiveByToken(ctx context.Context, token string, now time.Time) (_ *domain.Session, _ *domain.User, err error) {
	query := `
		SELECT s.id, s.token, s.user_id, s.expires_at, COALESCE(s.ip_address, ''), COALESCE(s.user_agent, ''),
		       s.created_at, s.updated_at,
		       u.id, u.name, u.email, u.email_verified, u.image, u.role, u.created_at, u.updated_at
		FROM session s
		JOIN "user" u ON u.id = s.user_id
		WHERE s.token = $1 AND s.expires_at > $2`

	ctx, end := database.TraceQuery(ctx, "FindActiveSessionByToken", query)
	defer func() { end(err) }()

	var (
		s    domain.Session
		u    domain.User
		role string
	)
	err = r.db.QueryRow(ctx, query, token, now).Scan(
		&s.ID,
		&s.Token,
		&s.UserID,
		&s.ExpiresAt,
		&s.IPAddress,
		&s.UserAgent,
		&s.CreatedAt,
		&s.UpdatedAt,
		&u.ID,
		&u.Name,
		&u.Email,
		&u.EmailVerified,
		&u.Image,
		&role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.ErrNotFound
		}
		return nil, nil, fmt.Errorf("scan session: %w", err)
	}

	if u.Role, err = domain.ParseRole(role); err != nil {
		return nil, nil, fmt.Errorf("scan session user %s: %w", u.ID, err)
	}

	return &s, &u, nil
}
