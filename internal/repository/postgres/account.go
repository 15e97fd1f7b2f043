package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// AccountRepository implements repository.AccountRepository using PostgreSQL.
type AccountRepository struct {
	db database.DBTX
}

// NewAccountRepository creates a new PostgreSQL-backed account repository.
func NewAccountRepository(db database.DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account row.
func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) error {
	return insertAccount(ctx, r.db, a)
}

func insertAccount(ctx context.Context, db database.DBTX, a *domain.Account) (err error) {
	query := `
		INSERT INTO account (id, account_id, provider_id, user_id, password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	ctx, end := database.TraceQuery(ctx, "CreateAccount", query)
	defer func() { end(err) }()

	_, err = db.Exec(ctx, query,
		a.ID,
		a.AccountID,
		a.ProviderID,
		a.UserID,
		a.PasswordHash,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		if _, ok := database.UniqueViolation(err); ok {
			return apperrors.AlreadyExists("Account already exists")
		}
		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

// GetByUserAndProvider returns the account of userID for providerID.
func (r *AccountRepository) GetByUserAndProvider(ctx context.Context, userID, providerID string) (_ *domain.Account, err error) {
	query := `
		SELECT id, account_id, provider_id, user_id, COALESCE(password, ''), created_at, updated_at
		FROM account
		WHERE user_id = $1 AND provider_id = $2`

	ctx, end := database.TraceQuery(ctx, "GetAccountByUserAndProvider", query)
	defer func() { end(err) }()

	var a domain.Account
	err = r.db.QueryRow(ctx, query, userID, providerID).Scan(
		&a.ID,
		&a.AccountID,
		&a.ProviderID,
		&a.UserID,
		&a.PasswordHash,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}

	return &a, nil
}
