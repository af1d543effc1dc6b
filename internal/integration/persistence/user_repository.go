// Package persistence implements repository interfaces over the document store.
package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/client/internal/application/adapter"
	"github.com/finance-tracker/client/internal/domain/entity"
	domainerror "github.com/finance-tracker/client/internal/domain/error"
)

// usersCollection holds profile documents keyed by identity uid.
const usersCollection = "users"

// userRepository implements the adapter.UserRepository interface.
type userRepository struct {
	docs adapter.DocumentStore
}

// NewUserRepository creates a new user repository instance.
func NewUserRepository(docs adapter.DocumentStore) adapter.UserRepository {
	return &userRepository{
		docs: docs,
	}
}

// FindByUID retrieves the profile document for an identity.
func (r *userRepository) FindByUID(ctx context.Context, uid uuid.UUID) (*entity.UserProfile, error) {
	doc, err := r.docs.GetDocument(ctx, usersCollection, uid.String())
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}

	createdAt, err := time.Parse(time.RFC3339, stringField(doc, "createdAt"))
	if err != nil {
		return nil, domainerror.NewPersistenceError(
			domainerror.ErrCodeDocumentDecode,
			"malformed user profile document",
			err,
		)
	}
	lastLogin, err := time.Parse(time.RFC3339, stringField(doc, "lastLogin"))
	if err != nil {
		return nil, domainerror.NewPersistenceError(
			domainerror.ErrCodeDocumentDecode,
			"malformed user profile document",
			err,
		)
	}

	return &entity.UserProfile{
		Email:       stringField(doc, "email"),
		DisplayName: stringField(doc, "displayName"),
		CreatedAt:   createdAt,
		LastLogin:   lastLogin,
	}, nil
}

// Upsert creates or fully replaces the profile document for an identity.
func (r *userRepository) Upsert(ctx context.Context, uid uuid.UUID, profile *entity.UserProfile) error {
	doc := adapter.Document{
		"email":       profile.Email,
		"displayName": profile.DisplayName,
		"createdAt":   profile.CreatedAt.UTC().Format(time.RFC3339),
		"lastLogin":   profile.LastLogin.UTC().Format(time.RFC3339),
	}
	return r.docs.SetDocument(ctx, usersCollection, uid.String(), doc)
}
