// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/finance-tracker/client/internal/domain/entity"
)

// UserRepository defines user profile persistence over the document store.
type UserRepository interface {
	// FindByUID retrieves the profile document for an identity.
	// Returns (nil, nil) when no profile document exists yet.
	FindByUID(ctx context.Context, uid uuid.UUID) (*entity.UserProfile, error)

	// Upsert creates or fully replaces the profile document for an identity.
	Upsert(ctx context.Context, uid uuid.UUID, profile *entity.UserProfile) error
}
