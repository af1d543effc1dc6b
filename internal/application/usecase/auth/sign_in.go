// Package auth contains authentication-related use cases.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/finance-tracker/client/internal/application/adapter"
	"github.com/finance-tracker/client/internal/domain/entity"
)

// SignInInput represents the input for email/password sign-in.
type SignInInput struct {
	Email    string
	Password string
}

// SignInOutput represents the output of sign-in.
type SignInOutput struct {
	Identity     *entity.Identity
	Profile      *entity.UserProfile
	SessionToken string
}

// SignInUseCase authenticates an identity and stamps its profile's last login.
type SignInUseCase struct {
	provider adapter.IdentityProvider
	users    adapter.UserRepository
	tokens   adapter.SessionTokenService
}

// NewSignInUseCase creates a new SignInUseCase instance.
func NewSignInUseCase(
	provider adapter.IdentityProvider,
	users adapter.UserRepository,
	tokens adapter.SessionTokenService,
) *SignInUseCase {
	return &SignInUseCase{
		provider: provider,
		users:    users,
		tokens:   tokens,
	}
}

// Execute performs the sign-in.
func (uc *SignInUseCase) Execute(ctx context.Context, input SignInInput) (*SignInOutput, error) {
	identity, err := uc.provider.SignIn(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	profile, err := refreshLastLogin(ctx, uc.users, identity, "")
	if err != nil {
		return nil, err
	}

	token, err := uc.tokens.IssueSessionToken(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	return &SignInOutput{
		Identity:     identity,
		Profile:      profile,
		SessionToken: token,
	}, nil
}

// refreshLastLogin upserts the profile document for a signed-in identity,
// preserving CreatedAt and DisplayName when a profile already exists.
func refreshLastLogin(
	ctx context.Context,
	users adapter.UserRepository,
	identity *entity.Identity,
	displayName string,
) (*entity.UserProfile, error) {
	profile, err := users.FindByUID(ctx, identity.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user profile: %w", err)
	}

	if profile == nil {
		profile = entity.NewUserProfile(identity.Email, displayName)
	} else {
		profile.LastLogin = time.Now().UTC()
	}

	if err := users.Upsert(ctx, identity.UID, profile); err != nil {
		return nil, fmt.Errorf("failed to update user profile: %w", err)
	}
	return profile, nil
}
