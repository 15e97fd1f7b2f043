package domain

import (
	"errors"
	"time"
)

// Uniqueness failures reported by the store repository when the database
// rejects a write. They let the service tell the two conflicts apart even
// when its pre-checks lost a race.
var (
	ErrStoreOwnerConflict    = errors.New("store owner conflict")
	ErrStoreUsernameConflict = errors.New("store username conflict")
	ErrStoreUniqueViolation  = errors.New("store unique violation")
)

// Store is one user's storefront. Username is fixed at creation and stays
// reserved even after the store is soft-deleted.
type Store struct {
	ID                  string     `json:"id"`
	UserID              string     `json:"userId"`
	Username            string     `json:"username"`
	Name                string     `json:"name"`
	Description         *string    `json:"description"`
	AvatarURL           *string    `json:"avatarUrl"`
	BannerURL           *string    `json:"bannerUrl"`
	IsPublic            bool       `json:"isPublic"`
	IsVacationMode      bool       `json:"isVacationMode"`
	AnnouncementText    *string    `json:"announcementText"`
	AnnouncementEnabled bool       `json:"announcementEnabled"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
	DeletedAt           *time.Time `json:"deletedAt"`
}

// IsActive reports whether the store has not been soft-deleted.
func (s *Store) IsActive() bool {
	return s.DeletedAt == nil
}

// IsPubliclyVisible reports whether anonymous callers may see the store.
// Vacation mode does not affect visibility.
func (s *Store) IsPubliclyVisible() bool {
	return s.IsPublic && s.IsActive()
}

// PublicView projects the store onto the fields exposed to anonymous
// callers.
func (s *Store) PublicView() *PublicStoreView {
	return &PublicStoreView{
		Username:            s.Username,
		Name:                s.Name,
		Description:         s.Description,
		AvatarURL:           s.AvatarURL,
		BannerURL:           s.BannerURL,
		AnnouncementText:    s.AnnouncementText,
		AnnouncementEnabled: s.AnnouncementEnabled,
		IsVacationMode:      s.IsVacationMode,
	}
}

// PublicStoreView is the allow-listed public projection of a Store.
type PublicStoreView struct {
	Username            string  `json:"username"`
	Name                string  `json:"name"`
	Description         *string `json:"description"`
	AvatarURL           *string `json:"avatarUrl"`
	BannerURL           *string `json:"bannerUrl"`
	AnnouncementText    *string `json:"announcementText"`
	AnnouncementEnabled bool    `json:"announcementEnabled"`
	IsVacationMode      bool    `json:"isVacationMode"`
}

// CreateStoreInput holds the owner-supplied fields for a new store.
type CreateStoreInput struct {
	Username    string
	Name        string
	Description *string
	AvatarURL   *string
	BannerURL   *string
}

// UpdateStoreInput holds the mutable store fields. A nil field is left
// unchanged. Username and owner are deliberately absent.
type UpdateStoreInput struct {
	Name                *string
	Description         *string
	AvatarURL           *string
	BannerURL           *string
	IsPublic            *bool
	IsVacationMode      *bool
	AnnouncementText    *string
	AnnouncementEnabled *bool
}

// Apply copies every non-nil field of in onto s.
func (in UpdateStoreInput) Apply(s *Store) {
	if in.Name != nil {
		s.Name = *in.Name
	}
	if in.Description != nil {
		s.Description = in.Description
	}
	if in.AvatarURL != nil {
		s.AvatarURL = in.AvatarURL
	}
	if in.BannerURL != nil {
		s.BannerURL = in.BannerURL
	}
	if in.IsPublic != nil {
		s.IsPublic = *in.IsPublic
	}
	if in.IsVacationMode != nil {
		s.IsVacationMode = *in.IsVacationMode
	}
	if in.AnnouncementText != nil {
		s.AnnouncementText = in.AnnouncementText
	}
	if in.AnnouncementEnabled != nil {
		s.AnnouncementEnabled = *in.AnnouncementEnabled
	}
}
