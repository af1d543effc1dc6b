// Package auth contains authentication-related use cases.
package auth

import (
	"context"
	"fmt"
	"regexp"

	"github.com/finance-tracker/client/internal/application/adapter"
	"github.com/finance-tracker/client/internal/domain/entity"
	domainerror "github.com/finance-tracker/client/internal/domain/error"
)

// SignUpInput represents the input for user registration.
type SignUpInput struct {
	Email       string
	Password    string
	DisplayName string
}

// SignUpOutput represents the output of user registration.
type SignUpOutput struct {
	Identity     *entity.Identity
	Profile      *entity.UserProfile
	SessionToken string
}

// SignUpUseCase registers a new identity with the identity provider and
// creates its profile document in the document store.
type SignUpUseCase struct {
	provider adapter.IdentityProvider
	users    adapter.UserRepository
	tokens   adapter.SessionTokenService
}

// NewSignUpUseCase creates a new SignUpUseCase instance.
func NewSignUpUseCase(
	provider adapter.IdentityProvider,
	users adapter.UserRepository,
	tokens adapter.SessionTokenService,
) *SignUpUseCase {
	return &SignUpUseCase{
		provider: provider,
		users:    users,
		tokens:   tokens,
	}
}

// Execute performs the registration.
func (uc *SignUpUseCase) Execute(ctx context.Context, input SignUpInput) (*SignUpOutput, error) {
	if !isValidEmail(input.Email) {
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeInvalidEmail,
			"invalid email format",
			domainerror.ErrInvalidEmail,
		)
	}

	identity, err := uc.provider.SignUp(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	profile := entity.NewUserProfile(identity.Email, input.DisplayName)
	if err := uc.users.Upsert(ctx, identity.UID, profile); err != nil {
		return nil, fmt.Errorf("failed to create user profile: %w", err)
	}

	token, err := uc.tokens.IssueSessionToken(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	return &SignUpOutput{
		Identity:     identity,
		Profile:      profile,
		SessionToken: token,
	}, nil
}

// isValidEmail validates email format using a simple regex.
func isValidEmail(email string) bool {
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return emailRegex.MatchString(email)
}
