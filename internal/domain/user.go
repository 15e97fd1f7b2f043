package domain

import (
	"time"
)

// User represents a registered user in the system.
type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"emailVerified"`
	Image         *string   `json:"image"`
	Role          Role      `json:"role"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Identity returns the authenticated-actor view of u.
func (u *User) Identity() *Identity {
	return &Identity{ID: u.ID, Email: u.Email, Role: u.Role}
}

// Identity is an authenticated actor. It is produced by the session
// resolver and passed explicitly to every operation that needs it.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// HasRole reports whether the identity's role is one of roles.
func (i *Identity) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

// ProviderCredential identifies email+password accounts.
const ProviderCredential = "credential"

// Account links a user to an authentication provider. For credential
// accounts PasswordHash holds the bcrypt hash.
type Account struct {
	ID           string    `json:"id"`
	AccountID    string    `json:"accountId"`
	ProviderID   string    `json:"providerId"`
	UserID       string    `json:"userId"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
