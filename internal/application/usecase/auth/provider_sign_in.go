// Package auth contains authentication-related use cases.
package auth

import (
	"context"
	"fmt"

	"github.com/finance-tracker/client/internal/application/adapter"
	"github.com/finance-tracker/client/internal/domain/entity"
)

// ProviderSignInInput represents the input for federated provider sign-in.
type ProviderSignInInput struct {
	Provider  string // Provider id, e.g. "google.com".
	Assertion string // Signed assertion issued by the provider.
}

// ProviderSignInOutput represents the output of federated sign-in.
type ProviderSignInOutput struct {
	Identity     *entity.Identity
	Profile      *entity.UserProfile
	SessionToken string
}

// ProviderSignInUseCase authenticates via a federated identity provider and
// creates or refreshes the profile document, mirroring the password flow.
type ProviderSignInUseCase struct {
	provider adapter.IdentityProvider
	users    adapter.UserRepository
	tokens   adapter.SessionTokenService
}

// NewProviderSignInUseCase creates a new ProviderSignInUseCase instance.
func NewProviderSignInUseCase(
	provider adapter.IdentityProvider,
	users adapter.UserRepository,
	tokens adapter.SessionTokenService,
) *ProviderSignInUseCase {
	return &ProviderSignInUseCase{
		provider: provider,
		users:    users,
		tokens:   tokens,
	}
}

// Execute performs the federated sign-in.
func (uc *ProviderSignInUseCase) Execute(ctx context.Context, input ProviderSignInInput) (*ProviderSignInOutput, error) {
	identity, err := uc.provider.SignInWithProvider(ctx, input.Provider, input.Assertion)
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

	return &ProviderSignInOutput{
		Identity:     identity,
		Profile:      profile,
		SessionToken: token,
	}, nil
}
