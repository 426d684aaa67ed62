package models

import (
	"time"

	"github.com/alfred/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	AggregateModel
	ExternalID           string                      `gorm:"type:varchar(255);not null;uniqueIndex"`
	Email                string                      `gorm:"type:varchar(320);not null;uniqueIndex"`
	Name                 string                      `gorm:"type:varchar(100);not null"`
	AvatarURL            string                      `gorm:"type:varchar(1000)"`
	Plan                 string                      `gorm:"type:varchar(20);not null;default:'free'"`
	StripeCustomerID     string                      `gorm:"type:varchar(255);index"`
	StripeSubscriptionID string                      `gorm:"type:varchar(255)"`
	SubscriptionStatus   identity.SubscriptionStatus `gorm:"type:varchar(20)"`
	PlanRenewsAt         *time.Time
	DefaultFacet         string    `gorm:"type:varchar(20)"`
	LastSeenAt           time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot:    m.ToAggregateRoot(),
		ExternalID:           m.ExternalID,
		Email:                m.Email,
		Name:                 m.Name,
		AvatarURL:            m.AvatarURL,
		Plan:                 m.Plan,
		StripeCustomerID:     m.StripeCustomerID,
		StripeSubscriptionID: m.StripeSubscriptionID,
		SubscriptionStatus:   m.SubscriptionStatus,
		PlanRenewsAt:         m.PlanRenewsAt,
		DefaultFacet:         m.DefaultFacet,
		LastSeenAt:           m.LastSeenAt,
	}
}

// UserModelFromDomain creates a persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{
		ExternalID:           u.ExternalID,
		Email:                u.Email,
		Name:                 u.Name,
		AvatarURL:            u.AvatarURL,
		Plan:                 u.Plan,
		StripeCustomerID:     u.StripeCustomerID,
		StripeSubscriptionID: u.StripeSubscriptionID,
		SubscriptionStatus:   u.SubscriptionStatus,
		PlanRenewsAt:         u.PlanRenewsAt,
		DefaultFacet:         u.DefaultFacet,
		LastSeenAt:           u.LastSeenAt,
	}
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	return m
}
