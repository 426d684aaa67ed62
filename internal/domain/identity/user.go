package identity

import (
	"net/mail"
	"strings"
	"time"

	"github.com/alfred/backend/internal/domain/shared"
)

// SubscriptionStatus mirrors the billing provider's subscription state
type SubscriptionStatus string

const (
	SubscriptionNone     SubscriptionStatus = ""
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionTrialing SubscriptionStatus = "trialing"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// User is the account behind every owned aggregate. Users are not registered
// here: they are materialized from identity provider claims on first use.
type User struct {
	shared.BaseAggregateRoot
	ExternalID           string
	Email                string
	Name                 string
	AvatarURL            string
	Plan                 string
	StripeCustomerID     string
	StripeSubscriptionID string
	SubscriptionStatus   SubscriptionStatus
	PlanRenewsAt         *time.Time
	DefaultFacet         string
	LastSeenAt           time.Time
}

// NewUserFromClaims creates a user for an authenticated subject
func NewUserFromClaims(externalID, email, name string) (*User, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, shared.NewDomainError("INVALID_SUBJECT", "Token subject is required")
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	u := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ExternalID:        externalID,
		Email:             email,
		Name:              strings.TrimSpace(name),
		Plan:              "free",
		LastSeenAt:        time.Now(),
	}
	if u.Name == "" {
		u.Name = displayNameFromEmail(email)
	}
	return u, nil
}

// SyncClaims refreshes identity fields from the token. It reports whether
// anything changed so callers can skip a write.
func (u *User) SyncClaims(email, name string) bool {
	changed := false
	if e, err := normalizeEmail(email); err == nil && e != "" && e != u.Email {
		u.Email = e
		changed = true
	}
	if n := strings.TrimSpace(name); n != "" && n != u.Name {
		u.Name = n
		changed = true
	}
	if time.Since(u.LastSeenAt) > time.Hour {
		u.LastSeenAt = time.Now()
		changed = true
	}
	if changed {
		u.IncrementVersion()
	}
	return changed
}

// UpdateProfile changes user-editable settings
func (u *User) UpdateProfile(name, defaultFacet string) error {
	name = strings.TrimSpace(name)
	if name != "" {
		if len(name) > 100 {
			return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 100 characters")
		}
		u.Name = name
	}
	if defaultFacet != "" {
		u.DefaultFacet = defaultFacet
	}
	u.IncrementVersion()
	return nil
}

// ApplySubscription records the billing state for the user
func (u *User) ApplySubscription(plan, subscriptionID string, status SubscriptionStatus, renewsAt *time.Time) {
	u.Plan = plan
	u.StripeSubscriptionID = subscriptionID
	u.SubscriptionStatus = status
	u.PlanRenewsAt = renewsAt
	u.IncrementVersion()
}

// SetStripeCustomer links the user to a billing customer
func (u *User) SetStripeCustomer(customerID string) {
	u.StripeCustomerID = customerID
	u.IncrementVersion()
}

// EffectivePlan returns the plan whose limits apply. Lapsed subscriptions fall back to free.
func (u *User) EffectivePlan() string {
	switch u.SubscriptionStatus {
	case SubscriptionActive, SubscriptionTrialing, SubscriptionPastDue:
		if u.Plan != "" {
			return u.Plan
		}
	}
	return "free"
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", nil
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return email, nil
}

func displayNameFromEmail(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return "User"
}
