package repository

import (
	"context"

	"campool/internal/domain"
)

// UserRepository defines the read operations the engine needs on riders.
type UserRepository interface {
	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByIDs retrieves several users in one query, keyed by id. Missing
	// ids are simply absent from the result.
	GetByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error)
}
