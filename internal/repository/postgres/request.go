package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"campool/internal/domain"
	"campool/internal/repository"
)

// RequestRepository is a PostgreSQL implementation of repository.RequestRepository.
type RequestRepository struct {
	q Querier
}

// NewRequestRepository creates a new PostgreSQL request repository.
func NewRequestRepository(db *sql.DB) *RequestRepository {
	return &RequestRepository{q: db}
}

// NewRequestRepositoryWithTx creates a request repository using a transaction.
func NewRequestRepositoryWithTx(tx *sql.Tx) *RequestRepository {
	return &RequestRepository{q: tx}
}

const requestColumns = `id, user_id, origin_lat, origin_lng, origin_address, origin_geohash,
		dest_lat, dest_lng, dest_address, dest_geohash,
		departure_time, flexibility_min, expires_at, looking_for_seats, max_price_per_seat,
		pref_gender, pref_verified_only, pref_same_department,
		status, matched_with, match_id, created_at, cancelled_at, cancel_reason`

// Create persists a new ride request.
func (r *RequestRepository) Create(ctx context.Context, req *domain.RideRequest) error {
	query := `
		INSERT INTO ride_requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
	`

	matchedWith := req.MatchedWith
	if matchedWith == nil {
		matchedWith = []string{}
	}

	_, err := r.q.ExecContext(ctx, query,
		req.ID,
		req.UserID,
		req.Origin.Lat,
		req.Origin.Lng,
		req.Origin.Address,
		req.Origin.Geohash,
		req.Destination.Lat,
		req.Destination.Lng,
		req.Destination.Address,
		req.Destination.Geohash,
		req.DepartureTime,
		req.FlexibilityMin,
		req.ExpiresAt,
		req.LookingForSeats,
		req.MaxPricePerSeat,
		req.Preferences.Gender,
		req.Preferences.StudentVerifiedOnly,
		req.Preferences.SameDepartmentPreferred,
		req.Status,
		pq.Array(matchedWith),
		nullString(req.MatchID),
		req.CreatedAt,
		nullTime(req.CancelledAt),
		nullString(req.CancelReason),
	)
	return err
}

// GetByID retrieves a request by ID.
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*domain.RideRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM ride_requests WHERE id = $1`

	req, err := scanRequest(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

// ListSearching retrieves requests currently in SEARCHING state, oldest first.
func (r *RequestRepository) ListSearching(ctx context.Context, limit int) ([]*domain.RideRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM ride_requests
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2
	`
	return r.list(ctx, query, domain.RequestStatusSearching, limit)
}

// ListSearchingExpiredBefore retrieves SEARCHING requests past their expiry.
func (r *RequestRepository) ListSearchingExpiredBefore(ctx context.Context, cutoff time.Time, limit int) ([]*domain.RideRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM ride_requests
		WHERE status = $1 AND expires_at < $2
		ORDER BY expires_at ASC
		LIMIT $3
	`
	return r.list(ctx, query, domain.RequestStatusSearching, cutoff, limit)
}

// ClaimForMatch transitions a request from SEARCHING to MATCHED. The WHERE
// clause on status is the race gate: the loser of two concurrent claims
// updates zero rows.
func (r *RequestRepository) ClaimForMatch(ctx context.Context, requestID, matchID string, matchedWith []string) (bool, error) {
	query := `
		UPDATE ride_requests
		SET status = $1, match_id = $2, matched_with = $3
		WHERE id = $4 AND status = $5
	`
	result, err := r.q.ExecContext(ctx, query,
		domain.RequestStatusMatched, matchID, pq.Array(matchedWith), requestID, domain.RequestStatusSearching)
	if err != nil {
		return false, err
	}
	return affected(result)
}

// ReleaseFromMatch returns a non-terminal request to SEARCHING.
func (r *RequestRepository) ReleaseFromMatch(ctx context.Context, requestID string) (bool, error) {
	query := `
		UPDATE ride_requests
		SET status = $1, match_id = NULL, matched_with = '{}'
		WHERE id = $2 AND status NOT IN ($3, $4)
	`
	result, err := r.q.ExecContext(ctx, query,
		domain.RequestStatusSearching, requestID, domain.RequestStatusCompleted, domain.RequestStatusCancelled)
	if err != nil {
		return false, err
	}
	return affected(result)
}

// TransitionStatus moves a request from one status to another.
func (r *RequestRepository) TransitionStatus(ctx context.Context, requestID string, from, to domain.RequestStatus) (bool, error) {
	query := `UPDATE ride_requests SET status = $1 WHERE id = $2 AND status = $3`
	result, err := r.q.ExecContext(ctx, query, to, requestID, from)
	if err != nil {
		return false, err
	}
	return affected(result)
}

// Cancel marks a request cancelled with a reason.
func (r *RequestRepository) Cancel(ctx context.Context, requestID string, from domain.RequestStatus, reason string, at time.Time) (bool, error) {
	query := `
		UPDATE ride_requests
		SET status = $1, match_id = NULL, matched_with = '{}', cancelled_at = $2, cancel_reason = $3
		WHERE id = $4 AND status = $5
	`
	result, err := r.q.ExecContext(ctx, query,
		domain.RequestStatusCancelled, at, reason, requestID, from)
	if err != nil {
		return false, err
	}
	return affected(result)
}

func (r *RequestRepository) list(ctx context.Context, query string, args ...any) ([]*domain.RideRequest, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*domain.RideRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*domain.RideRequest, error) {
	var req domain.RideRequest
	var matchedWith pq.StringArray
	var matchID sql.NullString
	var cancelledAt sql.NullTime
	var cancelReason sql.NullString

	err := row.Scan(
		&req.ID,
		&req.UserID,
		&req.Origin.Lat,
		&req.Origin.Lng,
		&req.Origin.Address,
		&req.Origin.Geohash,
		&req.Destination.Lat,
		&req.Destination.Lng,
		&req.Destination.Address,
		&req.Destination.Geohash,
		&req.DepartureTime,
		&req.FlexibilityMin,
		&req.ExpiresAt,
		&req.LookingForSeats,
		&req.MaxPricePerSeat,
		&req.Preferences.Gender,
		&req.Preferences.StudentVerifiedOnly,
		&req.Preferences.SameDepartmentPreferred,
		&req.Status,
		&matchedWith,
		&matchID,
		&req.CreatedAt,
		&cancelledAt,
		&cancelReason,
	)
	if err != nil {
		return nil, err
	}

	req.MatchedWith = matchedWith
	if matchID.Valid {
		req.MatchID = matchID.String
	}
	if cancelledAt.Valid {
		req.CancelledAt = cancelledAt.Time
	}
	if cancelReason.Valid {
		req.CancelReason = cancelReason.String
	}
	return &req, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

func affected(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
