// Package identity implements the identity provider contract with
// credentials held in the document store and HS256 session tokens.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/finance-tracker/client/internal/application/adapter"
	"github.com/finance-tracker/client/internal/domain/entity"
	domainerror "github.com/finance-tracker/client/internal/domain/error"
)

const (
	// credentialsCollection holds identity credential documents keyed by uid.
	credentialsCollection = "credentials"

	// ProviderPassword is the provider id for email/password identities.
	ProviderPassword = "password"

	// minPasswordLength is the minimum accepted password length.
	minPasswordLength = 8

	defaultSessionExpiry = 24 * time.Hour
)

// sessionClaims are the custom claims carried by session tokens.
type sessionClaims struct {
	UID      string `json:"uid"`
	Email    string `json:"email"`
	Provider string `json:"provider"`
	jwt.RegisteredClaims
}

// assertionClaims are the claims expected on a federated provider assertion.
type assertionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Service implements adapter.IdentityProvider and adapter.SessionTokenService.
// It keeps the current identity in memory and fans identity changes out to
// subscribers in the order they occur.
type Service struct {
	docs            adapter.DocumentStore
	sessionSecret   []byte
	federatedSecret []byte
	sessionExpiry   time.Duration

	mu          sync.Mutex
	current     *entity.Identity
	subscribers map[uint64]adapter.IdentityCallback
	nextSubID   uint64

	// dispatchMu serializes callback delivery so subscribers observe
	// identity changes in provider order.
	dispatchMu sync.Mutex
}

// NewService creates an identity service backed by the given document store.
func NewService(docs adapter.DocumentStore, sessionSecret, federatedSecret string, sessionExpiry time.Duration) *Service {
	if sessionExpiry <= 0 {
		sessionExpiry = defaultSessionExpiry
	}
	return &Service{
		docs:            docs,
		sessionSecret:   []byte(sessionSecret),
		federatedSecret: []byte(federatedSecret),
		sessionExpiry:   sessionExpiry,
		subscribers:     map[uint64]adapter.IdentityCallback{},
	}
}

// SignUp registers a new email/password identity and signs it in.
func (s *Service) SignUp(ctx context.Context, email, password string) (*entity.Identity, error) {
	if len(password) < minPasswordLength {
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeWeakPassword,
			fmt.Sprintf("password must be at least %d characters", minPasswordLength),
			domainerror.ErrWeakPassword,
		)
	}

	existing, err := s.docs.QueryByField(ctx, credentialsCollection, "email", email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if len(existing) > 0 {
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeEmailExists,
			"email already exists",
			domainerror.ErrEmailAlreadyExists,
		)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	identity := &entity.Identity{
		UID:      uuid.New(),
		Email:    email,
		Provider: ProviderPassword,
	}

	doc := adapter.Document{
		"uid":          identity.UID.String(),
		"email":        email,
		"passwordHash": string(hash),
		"provider":     ProviderPassword,
	}
	if err := s.docs.SetDocument(ctx, credentialsCollection, identity.UID.String(), doc); err != nil {
		return nil, fmt.Errorf("failed to store credentials: %w", err)
	}

	s.setCurrent(identity)
	return identity, nil
}

// SignIn authenticates an email/password identity.
func (s *Service) SignIn(ctx context.Context, email, password string) (*entity.Identity, error) {
	credential, err := s.findCredential(ctx, email)
	if err != nil {
		return nil, err
	}

	// Generic error for unknown email, wrong password and federated-only
	// identities alike, to prevent email enumeration.
	invalid := domainerror.NewAuthError(
		domainerror.ErrCodeInvalidCredentials,
		"invalid email or password",
		domainerror.ErrInvalidCredentials,
	)

	if credential == nil {
		return nil, invalid
	}
	hash, _ := credential["passwordHash"].(string)
	if hash == "" {
		return nil, invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, invalid
	}

	identity, err := identityFromCredential(credential)
	if err != nil {
		return nil, err
	}

	s.setCurrent(identity)
	return identity, nil
}

// SignInWithProvider authenticates via a federated provider assertion. The
// assertion is an HS256 token signed with the shared federated secret and
// carrying the identity's email claim. A credential document is created on
// first federated sign-in.
func (s *Service) SignInWithProvider(ctx context.Context, provider, assertion string) (*entity.Identity, error) {
	claims := &assertionClaims{}
	token, err := jwt.ParseWithClaims(assertion, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.federatedSecret, nil
	})
	if err != nil || !token.Valid || claims.Email == "" {
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeInvalidAssertion,
			"provider assertion could not be verified",
			domainerror.ErrInvalidAssertion,
		)
	}

	credential, err := s.findCredential(ctx, claims.Email)
	if err != nil {
		return nil, err
	}

	var identity *entity.Identity
	if credential != nil {
		identity, err = identityFromCredential(credential)
		if err != nil {
			return nil, err
		}
		identity.Provider = provider
	} else {
		identity = &entity.Identity{
			UID:      uuid.New(),
			Email:    claims.Email,
			Provider: provider,
		}
		doc := adapter.Document{
			"uid":      identity.UID.String(),
			"email":    identity.Email,
			"provider": provider,
		}
		if err := s.docs.SetDocument(ctx, credentialsCollection, identity.UID.String(), doc); err != nil {
			return nil, fmt.Errorf("failed to store credentials: %w", err)
		}
	}

	s.setCurrent(identity)
	return identity, nil
}

// SignOut signs the current identity out.
func (s *Service) SignOut(ctx context.Context) error {
	s.setCurrent(nil)
	return nil
}

// OnIdentityChange subscribes to identity changes. The callback fires
// immediately with the current identity, then on every change until
// Unsubscribe.
func (s *Service) OnIdentityChange(callback adapter.IdentityCallback) adapter.Subscription {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = callback
	current := s.current
	s.mu.Unlock()

	s.dispatchMu.Lock()
	callback(current)
	s.dispatchMu.Unlock()

	return &subscription{service: s, id: id}
}

// CurrentIdentity returns the currently signed-in identity, or nil.
func (s *Service) CurrentIdentity() *entity.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// IssueSessionToken creates a signed session token for the identity.
func (s *Service) IssueSessionToken(ctx context.Context, identity *entity.Identity) (string, error) {
	now := time.Now().UTC()
	claims := sessionClaims{
		UID:      identity.UID.String(),
		Email:    identity.Email,
		Provider: identity.Provider,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "finance-tracker-client",
			Subject:   identity.UID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.sessionSecret)
}

// ValidateSessionToken verifies a session token and returns its identity.
func (s *Service) ValidateSessionToken(ctx context.Context, tokenString string) (*entity.Identity, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.sessionSecret, nil
	})
	if err != nil {
		code := domainerror.ErrCodeInvalidToken
		sentinel := domainerror.ErrInvalidToken
		if errors.Is(err, jwt.ErrTokenExpired) {
			code = domainerror.ErrCodeExpiredToken
			sentinel = domainerror.ErrExpiredToken
		}
		return nil, domainerror.NewAuthError(code, "invalid or expired session token", sentinel)
	}
	if !token.Valid {
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeInvalidToken,
			"invalid session token",
			domainerror.ErrInvalidToken,
		)
	}

	uid, err := uuid.Parse(claims.UID)
	if err != nil {
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeInvalidToken,
			"invalid uid in session token",
			domainerror.ErrInvalidToken,
		)
	}

	return &entity.Identity{
		UID:      uid,
		Email:    claims.Email,
		Provider: claims.Provider,
	}, nil
}

// setCurrent swaps the current identity and notifies subscribers. Delivery is
// serialized so every subscriber observes changes in the same order.
func (s *Service) setCurrent(identity *entity.Identity) {
	s.mu.Lock()
	s.current = identity
	callbacks := make([]adapter.IdentityCallback, 0, len(s.subscribers))
	ids := make([]uint64, 0, len(s.subscribers))
	for id := range s.subscribers {
		ids = append(ids, id)
	}
	// Map iteration order is random; deliver in subscription order.
	slices.Sort(ids)
	for _, id := range ids {
		callbacks = append(callbacks, s.subscribers[id])
	}
	s.mu.Unlock()

	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()
	for _, callback := range callbacks {
		callback(identity)
	}

	if identity != nil {
		slog.Info("Identity signed in", "uid", identity.UID, "provider", identity.Provider)
	} else {
		slog.Info("Identity signed out")
	}
}

// findCredential looks a credential document up by email.
// Returns (nil, nil) when no credential exists.
func (s *Service) findCredential(ctx context.Context, email string) (adapter.Document, error) {
	docs, err := s.docs.QueryByField(ctx, credentialsCollection, "email", email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up credentials: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

func identityFromCredential(credential adapter.Document) (*entity.Identity, error) {
	uidString, _ := credential["uid"].(string)
	uid, err := uuid.Parse(uidString)
	if err != nil {
		return nil, fmt.Errorf("malformed credential document: %w", err)
	}
	email, _ := credential["email"].(string)
	provider, _ := credential["provider"].(string)
	return &entity.Identity{
		UID:      uid,
		Email:    email,
		Provider: provider,
	}, nil
}

// subscription implements adapter.Subscription.
type subscription struct {
	service *Service
	id      uint64
	once    sync.Once
}

// Unsubscribe stops delivery of identity-change callbacks.
func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		s.service.mu.Lock()
		delete(s.service.subscribers, s.id)
		s.service.mu.Unlock()
	})
}
