// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Identity represents the authenticated principal as reported by the
// identity provider. A nil *Identity means signed out.
type Identity struct {
	UID      uuid.UUID
	Email    string
	Provider string // "password" or a federated provider id, e.g. "google.com"
}

// UserProfile represents the user profile document kept in the document
// store, keyed by the identity's UID.
type UserProfile struct {
	Email       string
	DisplayName string
	CreatedAt   time.Time
	LastLogin   time.Time
}

// NewUserProfile creates a profile for a freshly registered identity.
func NewUserProfile(email, displayName string) *UserProfile {
	now := time.Now().UTC()
	return &UserProfile{
		Email:       email,
		DisplayName: displayName,
		CreatedAt:   now,
		LastLogin:   now,
	}
}
