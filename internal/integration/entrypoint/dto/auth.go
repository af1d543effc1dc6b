// Package dto defines data transfer objects for API requests and responses.
package dto

import (
	"time"

	"github.com/finance-tracker/client/internal/application/session"
	"github.com/finance-tracker/client/internal/domain/entity"
)

// RegisterRequest represents the request body for user registration.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name" binding:"max=100"`
}

// LoginRequest represents the request body for email/password sign-in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ProviderLoginRequest represents the request body for federated sign-in.
type ProviderLoginRequest struct {
	Provider  string `json:"provider" binding:"required"`
	Assertion string `json:"assertion" binding:"required"`
}

// AuthResponse represents the response for authentication endpoints.
type AuthResponse struct {
	SessionToken string          `json:"session_token"`
	User         IdentityPayload `json:"user"`
	Profile      *ProfilePayload `json:"profile,omitempty"`
}

// IdentityPayload represents the signed-in identity in API responses.
type IdentityPayload struct {
	UID      string `json:"uid"`
	Email    string `json:"email"`
	Provider string `json:"provider"`
}

// ProfilePayload represents the profile document in API responses.
type ProfilePayload struct {
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	LastLogin   time.Time `json:"last_login"`
}

// SessionResponse represents the session snapshot for GET /api/session.
type SessionResponse struct {
	State       string           `json:"state"`
	Loading     bool             `json:"loading"`
	CurrentUser *IdentityPayload `json:"current_user,omitempty"`
	UserData    *ProfilePayload  `json:"user_data,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// ToIdentityPayload converts a domain Identity to its API representation.
func ToIdentityPayload(identity *entity.Identity) IdentityPayload {
	return IdentityPayload{
		UID:      identity.UID.String(),
		Email:    identity.Email,
		Provider: identity.Provider,
	}
}

// ToProfilePayload converts a domain UserProfile to its API representation.
func ToProfilePayload(profile *entity.UserProfile) *ProfilePayload {
	if profile == nil {
		return nil
	}
	return &ProfilePayload{
		Email:       profile.Email,
		DisplayName: profile.DisplayName,
		CreatedAt:   profile.CreatedAt,
		LastLogin:   profile.LastLogin,
	}
}

// ToSessionResponse converts a session snapshot to its API representation.
func ToSessionResponse(snapshot session.Snapshot) SessionResponse {
	response := SessionResponse{
		State:    string(snapshot.State),
		Loading:  snapshot.Loading,
		UserData: ToProfilePayload(snapshot.UserData),
	}
	if snapshot.CurrentUser != nil {
		payload := ToIdentityPayload(snapshot.CurrentUser)
		response.CurrentUser = &payload
	}
	if snapshot.Err != nil {
		response.Error = snapshot.Err.Error()
	}
	return response
}
