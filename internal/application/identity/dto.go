package identity

import (
	"time"

	"github.com/alfred/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// ClaimsInput is the subset of token claims that identify a caller
type ClaimsInput struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// UpdateProfileInput contains the editable profile fields. Empty values are left unchanged.
type UpdateProfileInput struct {
	Name         string
	DefaultFacet string
}

// UserDTO is the caller's profile as returned by /me
type UserDTO struct {
	ID                 uuid.UUID  `json:"id"`
	Email              string     `json:"email"`
	Name               string     `json:"name"`
	AvatarURL          string     `json:"avatar_url,omitempty"`
	Plan               string     `json:"plan"`
	SubscriptionStatus string     `json:"subscription_status,omitempty"`
	PlanRenewsAt       *time.Time `json:"plan_renews_at,omitempty"`
	DefaultFacet       string     `json:"default_facet"`
	CreatedAt          time.Time  `json:"created_at"`
}

// ToUserDTO converts a domain user
func ToUserDTO(u *identity.User) *UserDTO {
	return &UserDTO{
		ID:                 u.ID,
		Email:              u.Email,
		Name:               u.Name,
		AvatarURL:          u.AvatarURL,
		Plan:               u.EffectivePlan(),
		SubscriptionStatus: string(u.SubscriptionStatus),
		PlanRenewsAt:       u.PlanRenewsAt,
		DefaultFacet:       u.DefaultFacet,
		CreatedAt:          u.CreatedAt,
	}
}
