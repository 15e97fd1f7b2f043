package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/middleware"
)

// StoreService is the store lifecycle as seen by the store endpoints.
type StoreService interface {
	Create(ctx context.Context, ownerID string, input domain.CreateStoreInput) (*domain.Store, error)
	GetOwn(ctx context.Context, ownerID string) (*domain.Store, error)
	UpdateOwn(ctx context.Context, ownerID string, input domain.UpdateStoreInput) (*domain.Store, error)
	SoftDelete(ctx context.Context, ownerID string) error
	GetPublicByUsername(ctx context.Context, username string) (*domain.PublicStoreView, error)
	AdminList(ctx context.Context) ([]domain.Store, error)
	AdminGetByID(ctx context.Context, id string) (*domain.Store, error)
	AdminRestore(ctx context.Context, id string) (*domain.Store, error)
}

// StoreHandler handles HTTP requests for store endpoints.
type StoreHandler struct {
	service StoreService
	logger  *slog.Logger
}

// NewStoreHandler creates a new store HTTP handler.
func NewStoreHandler(svc StoreService, logger *slog.Logger) *StoreHandler {
	return &StoreHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// CreateStoreRequest is the JSON request body for creating a store.
type CreateStoreRequest struct {
	Username    string  `json:"username" validate:"required,min=3,max=30,slug"`
	Name        string  `json:"name" validate:"required,min=1,max=80"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	AvatarURL   *string `json:"avatarUrl" validate:"omitempty,url"`
	BannerURL   *string `json:"bannerUrl" validate:"omitempty,url"`
}

// UpdateStoreRequest is the JSON request body for updating the caller's
// store. It has no username field, so a supplied username is ignored.
type UpdateStoreRequest struct {
	Name                *string `json:"name" validate:"omitempty,min=1,max=80"`
	Description         *string `json:"description" validate:"omitempty,max=500"`
	AvatarURL           *string `json:"avatarUrl" validate:"omitempty,url"`
	BannerURL           *string `json:"bannerUrl" validate:"omitempty,url"`
	IsPublic            *bool   `json:"isPublic"`
	IsVacationMode      *bool   `json:"isVacationMode"`
	AnnouncementText    *string `json:"announcementText" validate:"omitempty,max=200"`
	AnnouncementEnabled *bool   `json:"announcementEnabled"`
}

// --- Owner handlers ---

// Create handles POST /v1/api/stores
func (h *StoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner := identityFromRequest(r)
	if owner == nil {
		middleware.WriteUnauthorized(w)
		return
	}

	var req CreateStoreRequest
	if err := decodeRequest(w, r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	store, err := h.service.Create(r.Context(), owner.ID, domain.CreateStoreInput{
		Username:    req.Username,
		Name:        req.Name,
		Description: req.Description,
		AvatarURL:   req.AvatarURL,
		BannerURL:   req.BannerURL,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusCreated, store)
}

// GetMine handles GET /v1/api/stores/me
func (h *StoreHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	owner := identityFromRequest(r)
	if owner == nil {
		middleware.WriteUnauthorized(w)
		return
	}

	store, err := h.service.GetOwn(r.Context(), owner.ID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, store)
}

// UpdateMine handles PATCH /v1/api/stores/me
func (h *StoreHandler) UpdateMine(w http.ResponseWriter, r *http.Request) {
	owner := identityFromRequest(r)
	if owner == nil {
		middleware.WriteUnauthorized(w)
		return
	}

	var req UpdateStoreRequest
	if err := decodeRequest(w, r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	store, err := h.service.UpdateOwn(r.Context(), owner.ID, domain.UpdateStoreInput{
		Name:                req.Name,
		Description:         req.Description,
		AvatarURL:           req.AvatarURL,
		BannerURL:           req.BannerURL,
		IsPublic:            req.IsPublic,
		IsVacationMode:      req.IsVacationMode,
		AnnouncementText:    req.AnnouncementText,
		AnnouncementEnabled: req.AnnouncementEnabled,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, store)
}

// DeleteMine handles DELETE /v1/api/stores/me
func (h *StoreHandler) DeleteMine(w http.ResponseWriter, r *http.Request) {
	owner := identityFromRequest(r)
	if owner == nil {
		middleware.WriteUnauthorized(w)
		return
	}

	if err := h.service.SoftDelete(r.Context(), owner.ID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Public handlers ---

// GetPublic handles GET /v1/api/stores/{username}
func (h *StoreHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetPublicByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, view)
}

// --- Admin handlers ---

// AdminList handles GET /v1/api/stores/admin
func (h *StoreHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	stores, err := h.service.AdminList(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, stores)
}

// AdminGet handles GET /v1/api/stores/admin/{id}
func (h *StoreHandler) AdminGet(w http.ResponseWriter, r *http.Request) {
	store, err := h.service.AdminGetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, store)
}

// AdminRestore handles PATCH /v1/api/stores/admin/{id}/restore
func (h *StoreHandler) AdminRestore(w http.ResponseWriter, r *http.Request) {
	store, err := h.service.AdminRestore(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, store)
}
