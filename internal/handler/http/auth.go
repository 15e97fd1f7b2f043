package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/auth"
	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/middleware"
)

// AuthService is the credential provider as seen by the auth endpoints.
type AuthService interface {
	SignUp(ctx context.Context, input auth.SignUpInput, client auth.ClientInfo) (*domain.AuthResult, error)
	SignIn(ctx context.Context, input auth.SignInInput, client auth.ClientInfo) (*domain.AuthResult, error)
	SessionCookie(result *domain.AuthResult) (*http.Cookie, error)
}

// AuthHandler handles HTTP requests for auth endpoints. Failures use the
// bare {"error": "..."} body rather than the envelope.
type AuthHandler struct {
	service AuthService
	logger  *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(svc AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// RegisterRequest is the JSON request body for registration.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"omitempty,max=100"`
}

// LoginRequest is the JSON request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// --- Handlers ---

// Register handles POST /v1/api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeRequest(w, r, &req); err != nil {
		httputil.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.SignUp(r.Context(), auth.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	}, clientInfo(r))
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}

	h.writeAuthResult(w, r, result)
}

// Login handles POST /v1/api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeRequest(w, r, &req); err != nil {
		httputil.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.SignIn(r.Context(), auth.SignInInput{
		Email:    req.Email,
		Password: req.Password,
	}, clientInfo(r))
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}

	h.writeAuthResult(w, r, result)
}

// Me handles GET /v1/api/auth/me and returns the resolved identity as is.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id := identityFromRequest(r)
	if id == nil {
		middleware.WriteUnauthorized(w)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, id)
}

func (h *AuthHandler) writeAuthResult(w http.ResponseWriter, r *http.Request, result *domain.AuthResult) {
	cookie, err := h.service.SessionCookie(result)
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}
	http.SetCookie(w, cookie)
	httputil.WriteJSON(w, http.StatusOK, result)
}

// writeAuthError answers 400 with the failure message, except for
// unexpected failures which are logged and answered with 500.
func (h *AuthHandler) writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Status < http.StatusInternalServerError {
		httputil.WriteMessage(w, http.StatusBadRequest, appErr.Message)
		return
	}

	logger.WithContext(r.Context(), h.logger).ErrorContext(r.Context(), "auth request failed",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	httputil.WriteMessage(w, http.StatusInternalServerError, "Internal server error")
}
