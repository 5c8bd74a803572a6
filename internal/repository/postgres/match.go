package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/lib/pq"

	"campool/internal/domain"
	"campool/internal/repository"
)

// MatchRepository is a PostgreSQL implementation of repository.MatchRepository.
type MatchRepository struct {
	q Querier
}

// NewMatchRepository creates a new PostgreSQL match repository.
func NewMatchRepository(db *sql.DB) *MatchRepository {
	return &MatchRepository{q: db}
}

// NewMatchRepositoryWithTx creates a match repository using a transaction.
func NewMatchRepositoryWithTx(tx *sql.Tx) *MatchRepository {
	return &MatchRepository{q: tx}
}

const matchColumns = `id, request_ids, participants,
		meeting_lat, meeting_lng, meeting_address, meeting_geohash,
		dropoff_lat, dropoff_lng, dropoff_address, dropoff_geohash,
		departure_time, estimated_total_cost, cost_per_person, total_seats,
		status, confirmations, chat_room_id, created_at, confirmed_at, cancelled_at, cancel_reason`

// Create persists a new match.
func (r *MatchRepository) Create(ctx context.Context, match *domain.RideMatch) error {
	participants, err := json.Marshal(match.Participants)
	if err != nil {
		return err
	}

	confirmations := match.Confirmations
	if confirmations == nil {
		confirmations = []string{}
	}

	query := `
		INSERT INTO ride_matches (` + matchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`
	_, err = r.q.ExecContext(ctx, query,
		match.ID,
		pq.Array(match.RequestIDs),
		participants,
		match.MeetingPoint.Lat,
		match.MeetingPoint.Lng,
		match.MeetingPoint.Address,
		match.MeetingPoint.Geohash,
		match.DropoffPoint.Lat,
		match.DropoffPoint.Lng,
		match.DropoffPoint.Address,
		match.DropoffPoint.Geohash,
		match.DepartureTime,
		match.EstimatedTotalCost,
		match.CostPerPerson,
		match.TotalSeats,
		match.Status,
		pq.Array(confirmations),
		match.ChatRoomID,
		match.CreatedAt,
		nullTime(match.ConfirmedAt),
		nullTime(match.CancelledAt),
		nullString(match.CancelReason),
	)
	return err
}

// GetByID retrieves a match by ID.
func (r *MatchRepository) GetByID(ctx context.Context, id string) (*domain.RideMatch, error) {
	query := `SELECT ` + matchColumns + ` FROM ride_matches WHERE id = $1`
	return r.get(ctx, query, id)
}

// GetByIDForUpdate retrieves a match and locks its row. Must run inside a
// transaction; concurrent transitions on the same match serialize here.
func (r *MatchRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.RideMatch, error) {
	query := `SELECT ` + matchColumns + ` FROM ride_matches WHERE id = $1 FOR UPDATE`
	return r.get(ctx, query, id)
}

func (r *MatchRepository) get(ctx context.Context, query, id string) (*domain.RideMatch, error) {
	match, err := scanMatch(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return match, nil
}

// Update rewrites the mutable fields of a match. The WHERE clause on status
// makes the write conditional: a concurrent transition that already moved
// the match out of the expected status wins, and this update reports false.
func (r *MatchRepository) Update(ctx context.Context, match *domain.RideMatch, expected domain.MatchStatus) (bool, error) {
	confirmations := match.Confirmations
	if confirmations == nil {
		confirmations = []string{}
	}

	query := `
		UPDATE ride_matches
		SET status = $1, confirmations = $2, confirmed_at = $3, cancelled_at = $4, cancel_reason = $5
		WHERE id = $6 AND status = $7
	`
	result, err := r.q.ExecContext(ctx, query,
		match.Status,
		pq.Array(confirmations),
		nullTime(match.ConfirmedAt),
		nullTime(match.CancelledAt),
		nullString(match.CancelReason),
		match.ID,
		expected,
	)
	if err != nil {
		return false, err
	}
	return affected(result)
}

// ListPendingDepartedBefore retrieves PENDING matches past their departure time.
func (r *MatchRepository) ListPendingDepartedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*domain.RideMatch, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM ride_matches
		WHERE status = $1 AND departure_time < $2
		ORDER BY departure_time ASC
		LIMIT $3
	`
	return r.list(ctx, query, domain.MatchStatusPending, cutoff, limit)
}

// ListPendingCreatedBefore retrieves PENDING matches created before the cutoff.
func (r *MatchRepository) ListPendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*domain.RideMatch, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM ride_matches
		WHERE status = $1 AND created_at < $2
		ORDER BY created_at ASC
		LIMIT $3
	`
	return r.list(ctx, query, domain.MatchStatusPending, cutoff, limit)
}

func (r *MatchRepository) list(ctx context.Context, query string, args ...any) ([]*domain.RideMatch, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*domain.RideMatch
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}
	return matches, rows.Err()
}

func scanMatch(row rowScanner) (*domain.RideMatch, error) {
	var match domain.RideMatch
	var requestIDs pq.StringArray
	var confirmations pq.StringArray
	var participants []byte
	var confirmedAt sql.NullTime
	var cancelledAt sql.NullTime
	var cancelReason sql.NullString

	err := row.Scan(
		&match.ID,
		&requestIDs,
		&participants,
		&match.MeetingPoint.Lat,
		&match.MeetingPoint.Lng,
		&match.MeetingPoint.Address,
		&match.MeetingPoint.Geohash,
		&match.DropoffPoint.Lat,
		&match.DropoffPoint.Lng,
		&match.DropoffPoint.Address,
		&match.DropoffPoint.Geohash,
		&match.DepartureTime,
		&match.EstimatedTotalCost,
		&match.CostPerPerson,
		&match.TotalSeats,
		&match.Status,
		&confirmations,
		&match.ChatRoomID,
		&match.CreatedAt,
		&confirmedAt,
		&cancelledAt,
		&cancelReason,
	)
	if err != nil {
		return nil, err
	}

	match.RequestIDs = requestIDs
	match.Confirmations = confirmations
	if err := json.Unmarshal(participants, &match.Participants); err != nil {
		return nil, err
	}
	if confirmedAt.Valid {
		match.ConfirmedAt = confirmedAt.Time
	}
	if cancelledAt.Valid {
		match.CancelledAt = cancelledAt.Time
	}
	if cancelReason.Valid {
		match.CancelReason = cancelReason.String
	}
	return &match, nil
}
