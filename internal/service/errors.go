package service

import (
	"errors"
	"fmt"
)

// Error taxonomy roots. Specific sentinels wrap one of these so handlers
// can map whole categories with errors.Is.
var (
	// ErrValidation is the root of malformed-input errors.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidState is the root of errors where the operation is not
	// valid for the record's current lifecycle state.
	ErrInvalidState = errors.New("invalid lifecycle state")

	// ErrConflict is the root of errors where a concurrent mutation
	// invalidated the operation's preconditions.
	ErrConflict = errors.New("conflicting concurrent update")
)

var (
	// ErrEmptyRequestIDs is returned when match creation receives no request ids.
	ErrEmptyRequestIDs = fmt.Errorf("%w: no request ids given", ErrValidation)

	// ErrTooFewRequests is returned when match creation receives fewer than two requests.
	ErrTooFewRequests = fmt.Errorf("%w: a match needs at least two requests", ErrValidation)

	// ErrGroupTooLarge is returned when match creation exceeds the group size limit.
	ErrGroupTooLarge = fmt.Errorf("%w: too many requests for one match", ErrValidation)

	// ErrDuplicateRequestID is returned when the same request id appears twice.
	ErrDuplicateRequestID = fmt.Errorf("%w: duplicate request id", ErrValidation)

	// ErrIneligiblePair is returned when two requests fail an eligibility gate
	// (distance cutoff, time window, or preference compatibility).
	ErrIneligiblePair = fmt.Errorf("%w: requests are not mutually compatible", ErrValidation)

	// ErrPriceLimitExceeded is returned when the estimated cost per person
	// exceeds a participant's price limit.
	ErrPriceLimitExceeded = fmt.Errorf("%w: cost per person exceeds a rider's limit", ErrValidation)

	// ErrNotParticipant is returned when the acting user is not part of the match.
	ErrNotParticipant = fmt.Errorf("%w: user is not a participant of this match", ErrValidation)

	// ErrNotRequestOwner is returned when the acting user does not own the request.
	ErrNotRequestOwner = fmt.Errorf("%w: user does not own this request", ErrValidation)

	// ErrInvalidFlexibility is returned when flexibility is outside 0-120 minutes.
	ErrInvalidFlexibility = fmt.Errorf("%w: flexibility must be between 0 and 120 minutes", ErrValidation)

	// ErrInvalidSeats is returned when the seat count is outside 1-3.
	ErrInvalidSeats = fmt.Errorf("%w: seats must be between 1 and 3", ErrValidation)

	// ErrInvalidPrice is returned when the price limit is negative.
	ErrInvalidPrice = fmt.Errorf("%w: max price per seat must not be negative", ErrValidation)

	// ErrInvalidLocation is returned when coordinates are out of range.
	ErrInvalidLocation = fmt.Errorf("%w: invalid coordinates", ErrValidation)

	// ErrDepartureInPast is returned when the departure time has already passed.
	ErrDepartureInPast = fmt.Errorf("%w: departure time is in the past", ErrValidation)

	// ErrRequestNotSearching is returned when a request was claimed or
	// cancelled between candidate selection and match creation.
	ErrRequestNotSearching = fmt.Errorf("%w: request is no longer searching", ErrConflict)

	// ErrRequestClaimed is returned when another match formation currently
	// holds a claim lock on a request.
	ErrRequestClaimed = fmt.Errorf("%w: request is being claimed by another match", ErrConflict)

	// ErrMatchNotPending is returned when an operation requires a pending match.
	ErrMatchNotPending = fmt.Errorf("%w: match is no longer pending", ErrInvalidState)

	// ErrMatchNotConfirmed is returned when starting a ride that is not confirmed.
	ErrMatchNotConfirmed = fmt.Errorf("%w: match is not confirmed", ErrInvalidState)

	// ErrMatchNotRiding is returned when completing a ride that is not underway.
	ErrMatchNotRiding = fmt.Errorf("%w: match is not riding", ErrInvalidState)

	// ErrMatchTerminal is returned on any mutation of a cancelled or completed match.
	ErrMatchTerminal = fmt.Errorf("%w: match is cancelled or completed", ErrInvalidState)

	// ErrRequestNotCancellable is returned when a request cannot be cancelled
	// in its current state.
	ErrRequestNotCancellable = fmt.Errorf("%w: request cannot be cancelled in its current state", ErrInvalidState)
)
