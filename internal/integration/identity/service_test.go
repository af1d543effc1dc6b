package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/finance-tracker/client/internal/domain/entity"
	domainerror "github.com/finance-tracker/client/internal/domain/error"
	"github.com/finance-tracker/client/internal/integration/docstore/memstore"
)

const (
	testSessionSecret   = "session-secret-for-tests"
	testFederatedSecret = "federated-secret-for-tests"
)

func newTestService() *Service {
	return NewService(memstore.NewStore(), testSessionSecret, testFederatedSecret, time.Hour)
}

func signAssertion(t *testing.T, secret, email string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign assertion: %v", err)
	}
	return token
}

func TestServiceSignUp(t *testing.T) {
	t.Run("registers and signs the identity in", func(t *testing.T) {
		service := newTestService()

		identity, err := service.SignUp(context.Background(), "user@example.com", "correct-horse")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if identity.Email != "user@example.com" || identity.Provider != ProviderPassword {
			t.Errorf("unexpected identity: %+v", identity)
		}
		if current := service.CurrentIdentity(); current == nil || current.UID != identity.UID {
			t.Error("expected the new identity to be current")
		}
	})

	t.Run("rejects short passwords", func(t *testing.T) {
		service := newTestService()

		_, err := service.SignUp(context.Background(), "user@example.com", "short")
		if !errors.Is(err, domainerror.ErrWeakPassword) {
			t.Fatalf("expected weak password error, got %v", err)
		}
	})

	t.Run("rejects duplicate emails", func(t *testing.T) {
		service := newTestService()

		if _, err := service.SignUp(context.Background(), "user@example.com", "correct-horse"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, err := service.SignUp(context.Background(), "user@example.com", "another-pass")
		if !errors.Is(err, domainerror.ErrEmailAlreadyExists) {
			t.Fatalf("expected duplicate email error, got %v", err)
		}
	})
}

func TestServiceSignIn(t *testing.T) {
	t.Run("authenticates a registered identity", func(t *testing.T) {
		service := newTestService()
		registered, err := service.SignUp(context.Background(), "user@example.com", "correct-horse")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_ = service.SignOut(context.Background())

		identity, err := service.SignIn(context.Background(), "user@example.com", "correct-horse")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if identity.UID != registered.UID {
			t.Error("expected the registered identity")
		}
	})

	t.Run("same error for wrong password and unknown email", func(t *testing.T) {
		service := newTestService()
		if _, err := service.SignUp(context.Background(), "user@example.com", "correct-horse"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, wrongPass := service.SignIn(context.Background(), "user@example.com", "wrong-password")
		_, unknown := service.SignIn(context.Background(), "nobody@example.com", "whatever")

		if !errors.Is(wrongPass, domainerror.ErrInvalidCredentials) {
			t.Fatalf("expected invalid credentials, got %v", wrongPass)
		}
		if wrongPass.Error() != unknown.Error() {
			t.Error("credential errors must be indistinguishable")
		}
	})
}

func TestServiceSignInWithProvider(t *testing.T) {
	t.Run("creates an identity on first federated sign-in", func(t *testing.T) {
		service := newTestService()
		assertion := signAssertion(t, testFederatedSecret, "fed@example.com")

		identity, err := service.SignInWithProvider(context.Background(), "google.com", assertion)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if identity.Email != "fed@example.com" || identity.Provider != "google.com" {
			t.Errorf("unexpected identity: %+v", identity)
		}

		// A second sign-in resolves the same identity.
		again, err := service.SignInWithProvider(context.Background(), "google.com", assertion)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again.UID != identity.UID {
			t.Error("expected a stable uid across federated sign-ins")
		}
	})

	t.Run("rejects assertions signed with the wrong secret", func(t *testing.T) {
		service := newTestService()
		assertion := signAssertion(t, "some-other-secret", "fed@example.com")

		_, err := service.SignInWithProvider(context.Background(), "google.com", assertion)
		if !errors.Is(err, domainerror.ErrInvalidAssertion) {
			t.Fatalf("expected invalid assertion, got %v", err)
		}
	})
}

func TestServiceSubscriptions(t *testing.T) {
	t.Run("callback fires immediately with the current identity", func(t *testing.T) {
		service := newTestService()
		identity, err := service.SignUp(context.Background(), "user@example.com", "correct-horse")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var observed []*entity.Identity
		sub := service.OnIdentityChange(func(id *entity.Identity) {
			observed = append(observed, id)
		})
		defer sub.Unsubscribe()

		if len(observed) != 1 || observed[0] == nil || observed[0].UID != identity.UID {
			t.Fatalf("expected an immediate callback with the current identity, got %v", observed)
		}
	})

	t.Run("changes are delivered in order until unsubscribe", func(t *testing.T) {
		service := newTestService()

		var observed []*entity.Identity
		sub := service.OnIdentityChange(func(id *entity.Identity) {
			observed = append(observed, id)
		})

		identity, err := service.SignUp(context.Background(), "user@example.com", "correct-horse")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_ = service.SignOut(context.Background())

		sub.Unsubscribe()
		_, _ = service.SignIn(context.Background(), "user@example.com", "correct-horse")

		if len(observed) != 3 {
			t.Fatalf("expected 3 callbacks (initial, sign-in, sign-out), got %d", len(observed))
		}
		if observed[0] != nil {
			t.Error("expected the initial callback to be nil")
		}
		if observed[1] == nil || observed[1].UID != identity.UID {
			t.Error("expected the sign-in callback to carry the identity")
		}
		if observed[2] != nil {
			t.Error("expected the sign-out callback to be nil")
		}
	})
}

func TestSessionTokens(t *testing.T) {
	identity := &entity.Identity{
		UID:      uuid.New(),
		Email:    "user@example.com",
		Provider: ProviderPassword,
	}

	t.Run("round trip", func(t *testing.T) {
		service := newTestService()

		token, err := service.IssueSessionToken(context.Background(), identity)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		validated, err := service.ValidateSessionToken(context.Background(), token)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if validated.UID != identity.UID || validated.Email != identity.Email {
			t.Errorf("unexpected identity from token: %+v", validated)
		}
	})

	t.Run("expired tokens are reported as expired", func(t *testing.T) {
		service := NewService(memstore.NewStore(), testSessionSecret, testFederatedSecret, -time.Minute)

		token, err := service.IssueSessionToken(context.Background(), identity)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, err = service.ValidateSessionToken(context.Background(), token)
		if !errors.Is(err, domainerror.ErrExpiredToken) {
			t.Fatalf("expected expired token error, got %v", err)
		}
	})

	t.Run("garbage tokens are invalid", func(t *testing.T) {
		service := newTestService()

		_, err := service.ValidateSessionToken(context.Background(), "not.a.token")
		if !errors.Is(err, domainerror.ErrInvalidToken) {
			t.Fatalf("expected invalid token error, got %v", err)
		}
	})

	t.Run("tokens signed with another secret are invalid", func(t *testing.T) {
		issuer := NewService(memstore.NewStore(), "different-secret", testFederatedSecret, time.Hour)
		service := newTestService()

		token, err := issuer.IssueSessionToken(context.Background(), identity)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, err = service.ValidateSessionToken(context.Background(), token)
		if !errors.Is(err, domainerror.ErrInvalidToken) {
			t.Fatalf("expected invalid token error, got %v", err)
		}
	})
}
