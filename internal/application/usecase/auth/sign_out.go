// Package auth contains authentication-related use cases.
package auth

import (
	"context"

	"github.com/finance-tracker/client/internal/application/adapter"
)

// SignOutUseCase signs the current identity out. The identity provider's
// subscription propagates the change to the session controller, which clears
// the transaction store.
type SignOutUseCase struct {
	provider adapter.IdentityProvider
}

// NewSignOutUseCase creates a new SignOutUseCase instance.
func NewSignOutUseCase(provider adapter.IdentityProvider) *SignOutUseCase {
	return &SignOutUseCase{
		provider: provider,
	}
}

// Execute performs the sign-out.
func (uc *SignOutUseCase) Execute(ctx context.Context) error {
	return uc.provider.SignOut(ctx)
}
