package auth

import (
	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Authorize checks that id holds one of the required roles. Roles match
// exactly; there is no hierarchy. A nil identity is unauthorized rather than
// forbidden.
func Authorize(id *domain.Identity, required ...domain.Role) error {
	if id == nil {
		return apperrors.Unauthorized("Unauthorized")
	}
	if !id.HasRole(required...) {
		return apperrors.Forbidden("Forbidden")
	}
	return nil
}
