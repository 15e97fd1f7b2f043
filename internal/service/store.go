package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// User-visible store failure messages.
const (
	msgOwnerHasStore   = "User already owns a store"
	msgUsernameTaken   = "Username already taken"
	msgUniqueViolation = "unique constraint violation"
	msgStoreNotDeleted = "Store is not deleted"
	storeResourceName  = "Store"
)

// StoreEventPublisher announces store lifecycle changes.
type StoreEventPublisher interface {
	PublishStoreCreated(ctx context.Context, store *domain.Store) error
	PublishStoreUpdated(ctx context.Context, store *domain.Store) error
	PublishStoreDeleted(ctx context.Context, store *domain.Store) error
	PublishStoreRestored(ctx context.Context, store *domain.Store) error
}

// StoreService implements the store lifecycle: one active store per owner,
// permanently reserved usernames, soft delete by the owner, and restore by
// an administrator.
type StoreService struct {
	repo   repository.StoreRepository
	events StoreEventPublisher
	logger *slog.Logger
	now    func() time.Time
}

// NewStoreService creates a new store service. events may be nil.
func NewStoreService(repo repository.StoreRepository, events StoreEventPublisher, logger *slog.Logger) *StoreService {
	return &StoreService{
		repo:   repo,
		events: events,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create creates the store of ownerID. The pre-checks produce the precise
// conflict message; the database constraints catch creators that race past
// them.
func (s *StoreService) Create(ctx context.Context, ownerID string, input domain.CreateStoreInput) (*domain.Store, error) {
	switch _, err := s.repo.GetActiveByUserID(ctx, ownerID); {
	case err == nil:
		return nil, apperrors.Conflict(msgOwnerHasStore)
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, fmt.Errorf("check existing store: %w", err)
	}

	taken, err := s.repo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return nil, apperrors.Conflict(msgUsernameTaken)
	}

	now := s.now()
	store := &domain.Store{
		ID:          uuid.New().String(),
		UserID:      ownerID,
		Username:    input.Username,
		Name:        input.Name,
		Description: input.Description,
		AvatarURL:   input.AvatarURL,
		BannerURL:   input.BannerURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, store); err != nil {
		if conflict := storeConflict(err); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("create store: %w", err)
	}

	if s.events != nil {
		s.logPublishError(ctx, "store.created", store, s.events.PublishStoreCreated(ctx, store))
	}

	s.logger.InfoContext(ctx, "store created",
		slog.String("store_id", store.ID),
		slog.String("user_id", ownerID),
		slog.String("username", store.Username),
	)

	return store, nil
}

// GetOwn returns the active store of ownerID.
func (s *StoreService) GetOwn(ctx context.Context, ownerID string) (*domain.Store, error) {
	store, err := s.repo.GetActiveByUserID(ctx, ownerID)
	if err != nil {
		return nil, notFoundOr(err, "get own store")
	}
	return store, nil
}

// UpdateOwn applies input to the active store of ownerID. Username and owner
// are not part of input and so never change.
func (s *StoreService) UpdateOwn(ctx context.Context, ownerID string, input domain.UpdateStoreInput) (*domain.Store, error) {
	store, err := s.GetOwn(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	input.Apply(store)
	store.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, store); err != nil {
		if conflict := storeConflict(err); conflict != nil {
			return nil, conflict
		}
		return nil, notFoundOr(err, "update store")
	}

	if s.events != nil {
		s.logPublishError(ctx, "store.updated", store, s.events.PublishStoreUpdated(ctx, store))
	}

	s.logger.InfoContext(ctx, "store updated",
		slog.String("store_id", store.ID),
		slog.String("user_id", ownerID),
	)

	return store, nil
}

// SoftDelete marks the active store of ownerID as deleted. The username stays
// reserved.
func (s *StoreService) SoftDelete(ctx context.Context, ownerID string) error {
	store, err := s.GetOwn(ctx, ownerID)
	if err != nil {
		return err
	}

	at := s.now()
	if err := s.repo.SoftDelete(ctx, store.ID, at); err != nil {
		return notFoundOr(err, "soft delete store")
	}
	store.DeletedAt = &at
	store.UpdatedAt = at

	if s.events != nil {
		s.logPublishError(ctx, "store.deleted", store, s.events.PublishStoreDeleted(ctx, store))
	}

	s.logger.InfoContext(ctx, "store soft-deleted",
		slog.String("store_id", store.ID),
		slog.String("user_id", ownerID),
	)

	return nil
}

// GetPublicByUsername returns the public projection of a public, active
// store. Missing, private, and deleted stores are indistinguishable.
func (s *StoreService) GetPublicByUsername(ctx context.Context, username string) (*domain.PublicStoreView, error) {
	store, err := s.repo.GetPublicByUsername(ctx, username)
	if err != nil {
		return nil, notFoundOr(err, "get public store")
	}
	if !store.IsPubliclyVisible() {
		return nil, apperrors.NotFound(storeResourceName)
	}
	return store.PublicView(), nil
}

// AdminList returns every store, deleted and private ones included.
func (s *StoreService) AdminList(ctx context.Context) ([]domain.Store, error) {
	stores, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	if stores == nil {
		stores = []domain.Store{}
	}
	return stores, nil
}

// AdminGetByID returns any store by id.
func (s *StoreService) AdminGetByID(ctx context.Context, id string) (*domain.Store, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NotFound(storeResourceName)
	}

	store, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "get store")
	}
	return store, nil
}

// AdminRestore brings a soft-deleted store back. Restoring an active store
// is rejected.
func (s *StoreService) AdminRestore(ctx context.Context, id string) (*domain.Store, error) {
	store, err := s.AdminGetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if store.IsActive() {
		return nil, apperrors.BadRequest(msgStoreNotDeleted)
	}

	restored, err := s.repo.Restore(ctx, id, s.now())
	if err != nil {
		// Another restore won between the read and the write.
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.BadRequest(msgStoreNotDeleted)
		}
		return nil, fmt.Errorf("restore store: %w", err)
	}

	if s.events != nil {
		s.logPublishError(ctx, "store.restored", restored, s.events.PublishStoreRestored(ctx, restored))
	}

	s.logger.InfoContext(ctx, "store restored",
		slog.String("store_id", restored.ID),
		slog.String("user_id", restored.UserID),
	)

	return restored, nil
}

func (s *StoreService) logPublishError(ctx context.Context, eventType string, store *domain.Store, err error) {
	if err == nil {
		return
	}
	s.logger.ErrorContext(ctx, "failed to publish "+eventType+" event",
		slog.String("store_id", store.ID),
		slog.String("error", err.Error()),
	)
}

// storeConflict translates a uniqueness failure from the repository into the
// matching 409, or returns nil for any other error.
func storeConflict(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, domain.ErrStoreOwnerConflict):
		return apperrors.Conflict(msgOwnerHasStore)
	case errors.Is(err, domain.ErrStoreUsernameConflict):
		return apperrors.Conflict(msgUsernameTaken)
	case errors.Is(err, domain.ErrStoreUniqueViolation):
		return apperrors.Conflict(msgUniqueViolation)
	}
	return nil
}

// notFoundOr maps a repository ErrNotFound to the store 404 and wraps
// anything else with op.
func notFoundOr(err error, op string) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.NotFound(storeResourceName)
	}
	return fmt.Errorf("%s: %w", op, err)
}
