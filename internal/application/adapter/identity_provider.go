// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/finance-tracker/client/internal/domain/entity"
)

// IdentityCallback is invoked on every identity change. A nil identity means
// signed out. Callbacks for one subscription are delivered in the order the
// provider observed the changes.
type IdentityCallback func(identity *entity.Identity)

// Subscription is a handle to an active identity-change subscription.
type Subscription interface {
	// Unsubscribe stops delivery of identity-change callbacks. Safe to call
	// more than once.
	Unsubscribe()
}

// IdentityProvider defines the contract of the external identity provider.
type IdentityProvider interface {
	// SignUp registers a new email/password identity and signs it in.
	SignUp(ctx context.Context, email, password string) (*entity.Identity, error)

	// SignIn authenticates an email/password identity.
	SignIn(ctx context.Context, email, password string) (*entity.Identity, error)

	// SignInWithProvider authenticates via a federated provider using a signed
	// assertion issued by that provider.
	SignInWithProvider(ctx context.Context, provider, assertion string) (*entity.Identity, error)

	// SignOut signs the current identity out.
	SignOut(ctx context.Context) error

	// OnIdentityChange subscribes to identity changes. The callback fires
	// immediately with the current identity (possibly nil), then on every
	// subsequent change until Unsubscribe is called.
	OnIdentityChange(callback IdentityCallback) Subscription

	// CurrentIdentity returns the currently signed-in identity, or nil.
	CurrentIdentity() *entity.Identity
}

// SessionTokenService issues and validates session tokens for the
// presentation layer's request authentication.
type SessionTokenService interface {
	// IssueSessionToken creates a signed session token for the identity.
	IssueSessionToken(ctx context.Context, identity *entity.Identity) (string, error)

	// ValidateSessionToken verifies a session token and returns the identity
	// it was issued for.
	ValidateSessionToken(ctx context.Context, token string) (*entity.Identity, error)
}
