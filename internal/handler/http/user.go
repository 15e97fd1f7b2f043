package http

import (
	"net/http"

	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/middleware"
)

// UserHandler handles HTTP requests for the current user.
type UserHandler struct{}

// NewUserHandler creates a new user HTTP handler.
func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// Me handles GET /v1/api/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	id := identityFromRequest(r)
	if id == nil {
		middleware.WriteUnauthorized(w)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, id)
}
