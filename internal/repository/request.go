package repository

import (
	"context"
	"time"

	"campool/internal/domain"
)

// RequestRepository defines the persistence operations for ride requests.
type RequestRepository interface {
	// Create persists a new ride request.
	Create(ctx context.Context, req *domain.RideRequest) error

	// GetByID retrieves a request by ID.
	GetByID(ctx context.Context, id string) (*domain.RideRequest, error)

	// ListSearching retrieves requests currently in SEARCHING state,
	// oldest first, up to limit.
	ListSearching(ctx context.Context, limit int) ([]*domain.RideRequest, error)

	// ListSearchingExpiredBefore retrieves SEARCHING requests whose
	// ExpiresAt has passed the cutoff.
	ListSearchingExpiredBefore(ctx context.Context, cutoff time.Time, limit int) ([]*domain.RideRequest, error)

	// ClaimForMatch transitions a request from SEARCHING to MATCHED and
	// records the match id and co-rider set. It reports false when the
	// request was no longer SEARCHING, which signals a lost race.
	ClaimForMatch(ctx context.Context, requestID, matchID string, matchedWith []string) (bool, error)

	// ReleaseFromMatch returns a non-terminal request to SEARCHING with
	// match id and co-rider set cleared. Terminal requests are untouched.
	ReleaseFromMatch(ctx context.Context, requestID string) (bool, error)

	// TransitionStatus moves a request from one status to another. It
	// reports false when the request was not in the expected status.
	TransitionStatus(ctx context.Context, requestID string, from, to domain.RequestStatus) (bool, error)

	// Cancel marks a request cancelled with a reason, provided it is in
	// the expected status.
	Cancel(ctx context.Context, requestID string, from domain.RequestStatus, reason string, at time.Time) (bool, error)
}
