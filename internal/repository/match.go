package repository

import (
	"context"
	"time"

	"campool/internal/domain"
)

// MatchRepository defines the persistence operations for ride matches.
type MatchRepository interface {
	// Create persists a new match.
	Create(ctx context.Context, match *domain.RideMatch) error

	// GetByID retrieves a match by ID.
	GetByID(ctx context.Context, id string) (*domain.RideMatch, error)

	// GetByIDForUpdate retrieves a match and locks its row for the
	// duration of the enclosing transaction.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.RideMatch, error)

	// Update rewrites the mutable fields of a match, provided it is still
	// in the expected status. It reports false when the status check
	// failed, which signals a lost race.
	Update(ctx context.Context, match *domain.RideMatch, expected domain.MatchStatus) (bool, error)

	// ListPendingDepartedBefore retrieves PENDING matches whose departure
	// time has passed the cutoff.
	ListPendingDepartedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*domain.RideMatch, error)

	// ListPendingCreatedBefore retrieves PENDING matches created before
	// the cutoff.
	ListPendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*domain.RideMatch, error)
}
