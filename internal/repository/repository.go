package repository

import (
	"context"
	"time"

	"github.com/utafrali/storefront/internal/domain"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user. A duplicate email yields
	// apperrors.ErrAlreadyExists.
	Create(ctx context.Context, user *domain.User) error

	// CreateWithAccount inserts user and its provider account atomically.
	CreateWithAccount(ctx context.Context, user *domain.User, account *domain.Account) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdateRole changes the role of an existing user.
	UpdateRole(ctx context.Context, id string, role domain.Role) error
}

// AccountRepository defines the interface for provider account persistence.
type AccountRepository interface {
	// Create inserts a new account row.
	Create(ctx context.Context, account *domain.Account) error

	// GetByUserAndProvider returns the account of userID for providerID.
	GetByUserAndProvider(ctx context.Context, userID, providerID string) (*domain.Account, error)
}

// SessionRepository defines the interface for session persistence.
type SessionRepository interface {
	// Create stores a new session.
	Create(ctx context.Context, session *domain.Session) error

	// FindActiveByToken returns the session matching token exactly together
	// with its owning user, provided the session expires after now.
	// Unknown or expired tokens yield apperrors.ErrNotFound.
	FindActiveByToken(ctx context.Context, token string, now time.Time) (*domain.Session, *domain.User, error)
}

// StoreRepository defines the interface for store persistence. Writes that
// violate a uniqueness constraint return domain.ErrStoreOwnerConflict,
// domain.ErrStoreUsernameConflict, or domain.ErrStoreUniqueViolation.
type StoreRepository interface {
	// Create inserts a new store.
	Create(ctx context.Context, store *domain.Store) error

	// GetActiveByUserID returns the non-deleted store owned by userID.
	GetActiveByUserID(ctx context.Context, userID string) (*domain.Store, error)

	// ExistsByUsername reports whether any store, deleted or not, holds
	// username.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// GetByID returns a store by id regardless of visibility or deletion.
	GetByID(ctx context.Context, id string) (*domain.Store, error)

	// GetPublicByUsername returns the store only if it is public and not
	// deleted.
	GetPublicByUsername(ctx context.Context, username string) (*domain.Store, error)

	// List returns every store, newest first.
	List(ctx context.Context) ([]domain.Store, error)

	// Update persists the mutable fields and updated_at of store.
	Update(ctx context.Context, store *domain.Store) error

	// SoftDelete stamps deleted_at and updated_at on an active store.
	SoftDelete(ctx context.Context, id string, at time.Time) error

	// Restore clears deleted_at on a deleted store and returns the result.
	Restore(ctx context.Context, id string, at time.Time) (*domain.Store, error)
}

// SessionCache caches resolved cookie sessions so repeat requests skip the
// database. Implementations must never return a session past its expiry.
type SessionCache interface {
	// Get returns nil values and no error on a miss.
	Get(ctx context.Context, token string) (*domain.Session, *domain.User, error)
	Set(ctx context.Context, session *domain.Session, user *domain.User) error
	Delete(ctx context.Context, token string) error
}
