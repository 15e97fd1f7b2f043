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

// Unique constraint names declared by the stores migration.
const (
	constraintStoreOwner    = "stores_user_id_key"
	constraintStoreUsername = "stores_username_key"
)

const storeColumns = `id, user_id, username, name, description, avatar_url, banner_url,
		is_public, is_vacation_mode, announcement_text, announcement_enabled,
		created_at, updated_at, deleted_at`

// StoreRepository implements repository.StoreRepository using PostgreSQL.
type StoreRepository struct {
	db database.DBTX
}

// NewStoreRepository creates a new PostgreSQL-backed store repository.
func NewStoreRepository(db database.DBTX) *StoreRepository {
	return &StoreRepository{db: db}
}

// Create inserts a new store.
func (r *StoreRepository) Create(ctx context.Context, s *domain.Store) (err error) {
	query := `
		INSERT INTO stores (` + storeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	ctx, end := database.TraceQuery(ctx, "CreateStore", query)
	defer func() { end(err) }()

	_, err = r.db.Exec(ctx, query,
		s.ID,
		s.UserID,
		s.Username,
		s.Name,
		s.Description,
		s.AvatarURL,
		s.BannerURL,
		s.IsPublic,
		s.IsVacationMode,
		s.AnnouncementText,
		s.AnnouncementEnabled,
		s.CreatedAt,
		s.UpdatedAt,
		s.DeletedAt,
	)
	if err != nil {
		if conflict := classifyStoreConflict(err); conflict != nil {
			return fmt.Errorf("insert store: %w", conflict)
		}
		return fmt.Errorf("insert store: %w", err)
	}

	return nil
}

// GetActiveByUserID returns the non-deleted store owned by userID.
func (r *StoreRepository) GetActiveByUserID(ctx context.Context, userID string) (*domain.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores WHERE user_id = $1 AND deleted_at IS NULL`
	return r.scanStore(ctx, "GetActiveStoreByUserID", query, userID)
}

// ExistsByUsername reports whether any store holds username, including
// soft-deleted ones.
func (r *StoreRepository) ExistsByUsername(ctx context.Context, username string) (exists bool, err error) {
	query := `SELECT EXISTS (SELECT 1 FROM stores WHERE username = $1)`

	ctx, end := database.TraceQuery(ctx, "StoreUsernameExists", query)
	defer func() { end(err) }()

	if err = r.db.QueryRow(ctx, query, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("check store username: %w", err)
	}
	return exists, nil
}

// GetByID returns a store by id regardless of its state.
func (r *StoreRepository) GetByID(ctx context.Context, id string) (*domain.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores WHERE id = $1`
	return r.scanStore(ctx, "GetStoreByID", query, id)
}

// GetPublicByUsername returns the store only when it is public and active.
func (r *StoreRepository) GetPublicByUsername(ctx context.Context, username string) (*domain.Store, error) {
	query := `SELECT ` + storeColumns + `
		FROM stores
		WHERE username = $1 AND is_public = TRUE AND deleted_at IS NULL`
	return r.scanStore(ctx, "GetPublicStoreByUsername", query, username)
}

// List returns every store, newest first.
func (r *StoreRepository) List(ctx context.Context) (stores []domain.Store, err error) {
	query := `SELECT ` + storeColumns + ` FROM stores ORDER BY created_at DESC`

	ctx, end := database.TraceQuery(ctx, "ListStores", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	stores = make([]domain.Store, 0)
	for rows.Next() {
		var s domain.Store
		if err = rows.Scan(storeDest(&s)...); err != nil {
			return nil, fmt.Errorf("scan store row: %w", err)
		}
		stores = append(stores, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate store rows: %w", err)
	}

	return stores, nil
}

// Update persists the mutable fields of s. Username, owner, and deletion
// state are never written here.
func (r *StoreRepository) Update(ctx context.Context, s *domain.Store) (err error) {
	query := `
		UPDATE stores
		SET name = $1, description = $2, avatar_url = $3, banner_url = $4,
		    is_public = $5, is_vacation_mode = $6, announcement_text = $7,
		    announcement_enabled = $8, updated_at = $9
		WHERE id = $10 AND deleted_at IS NULL`

	ctx, end := database.TraceQuery(ctx, "UpdateStore", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query,
		s.Name,
		s.Description,
		s.AvatarURL,
		s.BannerURL,
		s.IsPublic,
		s.IsVacationMode,
		s.AnnouncementText,
		s.AnnouncementEnabled,
		s.UpdatedAt,
		s.ID,
	)
	if err != nil {
		if conflict := classifyStoreConflict(err); conflict != nil {
			return fmt.Errorf("update store: %w", conflict)
		}
		return fmt.Errorf("update store: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// SoftDelete marks an active store as deleted at the given time.
func (r *StoreRepository) SoftDelete(ctx context.Context, id string, at time.Time) (err error) {
	query := `UPDATE stores SET deleted_at = $1, updated_at = $1 WHERE id = $2 AND deleted_at IS NULL`

	ctx, end := database.TraceQuery(ctx, "SoftDeleteStore", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("soft delete store: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Restore clears deleted_at on a deleted store and returns the updated row.
// A store that is not deleted yields apperrors.ErrNotFound.
func (r *StoreRepository) Restore(ctx context.Context, id string, at time.Time) (*domain.Store, error) {
	query := `
		UPDATE stores
		SET deleted_at = NULL, updated_at = $1
		WHERE id = $2 AND deleted_at IS NOT NULL
		RETURNING ` + storeColumns
	return r.scanStore(ctx, "RestoreStore", query, at, id)
}

func (r *StoreRepository) scanStore(ctx context.Context, operation, query string, args ...any) (_ *domain.Store, err error) {
	ctx, end := database.TraceQuery(ctx, operation, query)
	defer func() { end(err) }()

	var s domain.Store
	if err = r.db.QueryRow(ctx, query, args...).Scan(storeDest(&s)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan store: %w", err)
	}

	return &s, nil
}

func storeDest(s *domain.Store) []any {
	return []any{
		&s.ID,
		&s.UserID,
		&s.Username,
		&s.Name,
		&s.Description,
		&s.AvatarURL,
		&s.BannerURL,
		&s.IsPublic,
		&s.IsVacationMode,
		&s.AnnouncementText,
		&s.AnnouncementEnabled,
		&s.CreatedAt,
		&s.UpdatedAt,
		&s.DeletedAt,
	}
}

// classifyStoreConflict maps a unique violation to the domain conflict for
// the constraint that fired. It returns nil for any other error.
func classifyStoreConflict(err error) error {
	constraint, ok := database.UniqueViolation(err)
	if !ok {
		return nil
	}

	switch constraint {
	case constraintStoreOwner:
		return domain.ErrStoreOwnerConflict
	case constraintStoreUsername:
		return domain.ErrStoreUsernameConflict
	default:
		return domain.ErrStoreUniqueViolation
	}
}
