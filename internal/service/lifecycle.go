package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"campool/internal/domain"
	"campool/internal/geo"
	internalRedis "campool/internal/redis"
	"campool/internal/repository"
)

const requestClaimTTL = 30 * time.Second

// LifecycleConfig holds the tunables for match formation.
type LifecycleConfig struct {
	CostBase      float64       // flat component of the fare estimate
	CostPerKm     float64       // per-kilometer component
	MaxGroupSize  int           // most requests one match may bind
	ReminderDelay time.Duration // confirmation reminder fires this long after creation
}

// DefaultLifecycleConfig returns the production lifecycle parameters.
func DefaultLifecycleConfig() LifecycleConfig {
	return LifecycleConfig{
		CostBase:      60,
		CostPerKm:     30,
		MaxGroupSize:  4,
		ReminderDelay: 5 * time.Minute,
	}
}

// LifecycleService owns the state machine for matches and their linked
// requests. Every transition — user-triggered or sweep-triggered — runs
// through here, inside one transaction per operation.
type LifecycleService struct {
	txm         repository.TxManager
	requestRepo repository.RequestRepository
	matchRepo   repository.MatchRepository
	userRepo    repository.UserRepository
	scorer      *Scorer
	dispatcher  *NotificationDispatcher
	lockStore   internalRedis.LockStoreInterface   // optional
	originIndex internalRedis.OriginIndexInterface // optional
	cfg         LifecycleConfig
}

// NewLifecycleService creates a new LifecycleService.
func NewLifecycleService(
	txm repository.TxManager,
	requestRepo repository.RequestRepository,
	matchRepo repository.MatchRepository,
	userRepo repository.UserRepository,
	scorer *Scorer,
	dispatcher *NotificationDispatcher,
	lockStore internalRedis.LockStoreInterface,
	originIndex internalRedis.OriginIndexInterface,
	cfg LifecycleConfig,
) *LifecycleService {
	return &LifecycleService{
		txm:         txm,
		requestRepo: requestRepo,
		matchRepo:   matchRepo,
		userRepo:    userRepo,
		scorer:      scorer,
		dispatcher:  dispatcher,
		lockStore:   lockStore,
		originIndex: originIndex,
		cfg:         cfg,
	}
}

// CreateMatch binds the given searching requests into one pending match.
// All requests must be mutually eligible, pairwise, not just against one
// anchor. The claim is all-or-nothing: if any request was already taken,
// the whole operation fails with a conflict and nothing is written.
func (s *LifecycleService) CreateMatch(ctx context.Context, requestIDs []string) (*domain.RideMatch, error) {
	if len(requestIDs) == 0 {
		return nil, ErrEmptyRequestIDs
	}
	if len(requestIDs) < 2 {
		return nil, ErrTooFewRequests
	}
	if s.cfg.MaxGroupSize > 0 && len(requestIDs) > s.cfg.MaxGroupSize {
		return nil, ErrGroupTooLarge
	}
	seen := make(map[string]bool, len(requestIDs))
	for _, id := range requestIDs {
		if seen[id] {
			return nil, ErrDuplicateRequestID
		}
		seen[id] = true
	}

	// Claim locks shrink the race window between the eligibility checks
	// and the transaction. Correctness does not depend on them.
	release, err := s.acquireClaims(ctx, requestIDs)
	if err != nil {
		return nil, err
	}
	defer release()

	requests := make([]*domain.RideRequest, 0, len(requestIDs))
	userIDs := make([]string, 0, len(requestIDs))
	for _, id := range requestIDs {
		req, err := s.requestRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if req.Status != domain.RequestStatusSearching {
			return nil, fmt.Errorf("%w (request %s)", ErrRequestNotSearching, id)
		}
		requests = append(requests, req)
		userIDs = append(userIDs, req.UserID)
	}

	users, err := s.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range userIDs {
		if _, ok := users[id]; !ok {
			return nil, fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
		}
	}

	for i := 0; i < len(requests); i++ {
		for j := i + 1; j < len(requests); j++ {
			a, b := requests[i], requests[j]
			if _, ok := s.scorer.ScorePair(a, b, users[a.UserID], users[b.UserID]); !ok {
				return nil, fmt.Errorf("%w (requests %s, %s)", ErrIneligiblePair, a.ID, b.ID)
			}
		}
	}

	match, err := s.buildMatch(requests, users)
	if err != nil {
		return nil, err
	}

	notifications := s.dispatcher.MatchFound(match)

	err = s.txm.WithinTx(ctx, func(uow *repository.UnitOfWork) error {
		for i, req := range requests {
			coRiders := otherUserIDs(userIDs, i)
			claimed, err := uow.Requests.ClaimForMatch(ctx, req.ID, match.ID, coRiders)
			if err != nil {
				return err
			}
			if !claimed {
				return fmt.Errorf("%w (request %s)", ErrRequestNotSearching, req.ID)
			}
		}

		if err := uow.Matches.Create(ctx, match); err != nil {
			return err
		}

		reminder := &domain.ScheduledTask{
			ID:        uuid.New().String(),
			MatchID:   match.ID,
			Kind:      domain.TaskConfirmationReminder,
			FireAt:    match.CreatedAt.Add(s.cfg.ReminderDelay),
			CreatedAt: match.CreatedAt,
		}
		if err := uow.Tasks.Create(ctx, reminder); err != nil {
			return err
		}

		for _, n := range notifications {
			if err := uow.Notifications.Create(ctx, n); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Matched requests leave the candidate pool. Index trouble is not a
	// lifecycle failure; stale entries are filtered on read.
	if s.originIndex != nil {
		for _, req := range requests {
			if err := s.originIndex.Remove(ctx, req.ID); err != nil {
				log.Printf("origin index remove failed for request %s: %v", req.ID, err)
			}
		}
	}

	s.dispatcher.Deliver(ctx, notifications)
	return match, nil
}

// Confirm records a participant's confirmation. Confirming twice is a
// no-op. When the last participant confirms, the match transitions to
// CONFIRMED and the cost summary lands in the match chat.
func (s *LifecycleService) Confirm(ctx context.Context, matchID, userID string) (*domain.RideMatch, error) {
	var match *domain.RideMatch
	var notifications []*domain.Notification

	err := s.txm.WithinTx(ctx, func(uow *repository.UnitOfWork) error {
		m, err := uow.Matches.GetByIDForUpdate(ctx, matchID)
		if err != nil {
			return err
		}
		if m.Status != domain.MatchStatusPending {
			return ErrMatchNotPending
		}
		if !m.HasParticipant(userID) {
			return ErrNotParticipant
		}

		if m.HasConfirmed(userID) {
			match = m
			return nil
		}

		m.Confirmations = append(m.Confirmations, userID)
		if m.AllConfirmed() {
			m.Status = domain.MatchStatusConfirmed
			m.ConfirmedAt = time.Now()
		}

		updated, err := uow.Matches.Update(ctx, m, domain.MatchStatusPending)
		if err != nil {
			return err
		}
		if !updated {
			return fmt.Errorf("%w (match %s)", ErrConflict, m.ID)
		}

		if m.Status == domain.MatchStatusConfirmed {
			msg := &domain.ChatMessage{
				ID:         uuid.New().String(),
				ChatRoomID: m.ChatRoomID,
				SenderID:   "system",
				Body: fmt.Sprintf("All %d riders confirmed! Estimated cost per person: %.0f.",
					len(m.Participants), m.CostPerPerson),
				System:    true,
				CreatedAt: time.Now(),
			}
			if err := uow.Chat.Create(ctx, msg); err != nil {
				return err
			}
			if err := uow.Tasks.CancelForMatch(ctx, m.ID); err != nil {
				return err
			}
			notifications = s.dispatcher.MatchConfirmed(m)
			for _, n := range notifications {
				if err := uow.Notifications.Create(ctx, n); err != nil {
					return err
				}
			}
		}

		match = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.Deliver(ctx, notifications)
	return match, nil
}

// CancelMatch cancels a match and returns its non-terminal requests to the
// searching pool. Without force only a pending match may be cancelled;
// sweeps use force to take down breached matches from any live state.
// Cancelled and completed matches are immutable either way.
func (s *LifecycleService) CancelMatch(ctx context.Context, matchID, reason string, force bool) error {
	var cancelled *domain.RideMatch
	var released []string
	var notifications []*domain.Notification

	err := s.txm.WithinTx(ctx, func(uow *repository.UnitOfWork) error {
		m, err := uow.Matches.GetByIDForUpdate(ctx, matchID)
		if err != nil {
			return err
		}
		if m.Status.IsTerminal() {
			return ErrMatchTerminal
		}
		if !force && m.Status != domain.MatchStatusPending {
			return ErrMatchNotPending
		}

		expected := m.Status
		m.Status = domain.MatchStatusCancelled
		m.CancelledAt = time.Now()
		m.CancelReason = reason

		updated, err := uow.Matches.Update(ctx, m, expected)
		if err != nil {
			return err
		}
		if !updated {
			return fmt.Errorf("%w (match %s)", ErrConflict, m.ID)
		}

		for _, reqID := range m.RequestIDs {
			wasReleased, err := uow.Requests.ReleaseFromMatch(ctx, reqID)
			if err != nil {
				return err
			}
			if wasReleased {
				released = append(released, reqID)
			}
		}

		if err := uow.Tasks.CancelForMatch(ctx, m.ID); err != nil {
			return err
		}

		notifications = s.dispatcher.MatchCancelled(m, reason)
		for _, n := range notifications {
			if err := uow.Notifications.Create(ctx, n); err != nil {
				return err
			}
		}

		cancelled = m
		return nil
	})
	if err != nil {
		return err
	}

	// Released requests rejoin the candidate pool.
	if s.originIndex != nil {
		for _, reqID := range released {
			if p, ok := participantByRequest(cancelled, reqID); ok {
				if err := s.originIndex.Add(ctx, reqID, p.Pickup.Lat, p.Pickup.Lng); err != nil {
					log.Printf("origin index re-add failed for request %s: %v", reqID, err)
				}
			}
		}
	}

	s.dispatcher.Deliver(ctx, notifications)
	return nil
}

// StartRide moves a confirmed match and its requests into RIDING.
func (s *LifecycleService) StartRide(ctx context.Context, matchID string) (*domain.RideMatch, error) {
	return s.advance(ctx, matchID,
		domain.MatchStatusConfirmed, domain.MatchStatusRiding, ErrMatchNotConfirmed,
		domain.RequestStatusMatched, domain.RequestStatusRiding,
		func(m *domain.RideMatch) []*domain.Notification { return s.dispatcher.RideStarted(m) })
}

// CompleteRide moves a riding match and its requests into COMPLETED.
func (s *LifecycleService) CompleteRide(ctx context.Context, matchID string) (*domain.RideMatch, error) {
	return s.advance(ctx, matchID,
		domain.MatchStatusRiding, domain.MatchStatusCompleted, ErrMatchNotRiding,
		domain.RequestStatusRiding, domain.RequestStatusCompleted,
		func(m *domain.RideMatch) []*domain.Notification { return s.dispatcher.RideCompleted(m) })
}

func (s *LifecycleService) advance(
	ctx context.Context,
	matchID string,
	from, to domain.MatchStatus,
	stateErr error,
	reqFrom, reqTo domain.RequestStatus,
	compose func(*domain.RideMatch) []*domain.Notification,
) (*domain.RideMatch, error) {
	var match *domain.RideMatch
	var notifications []*domain.Notification

	err := s.txm.WithinTx(ctx, func(uow *repository.UnitOfWork) error {
		m, err := uow.Matches.GetByIDForUpdate(ctx, matchID)
		if err != nil {
			return err
		}
		if m.Status.IsTerminal() {
			return ErrMatchTerminal
		}
		if m.Status != from {
			return stateErr
		}

		m.Status = to
		updated, err := uow.Matches.Update(ctx, m, from)
		if err != nil {
			return err
		}
		if !updated {
			return fmt.Errorf("%w (match %s)", ErrConflict, m.ID)
		}

		for _, reqID := range m.RequestIDs {
			// Requests cancelled mid-match keep their state.
			if _, err := uow.Requests.TransitionStatus(ctx, reqID, reqFrom, reqTo); err != nil {
				return err
			}
		}

		notifications = compose(m)
		for _, n := range notifications {
			if err := uow.Notifications.Create(ctx, n); err != nil {
				return err
			}
		}

		match = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.Deliver(ctx, notifications)
	return match, nil
}

// buildMatch assembles the match entity: frozen participant snapshots, the
// shared meeting and dropoff points (centroids of the group), the earliest
// departure as the group's representative time, and the cost split.
func (s *LifecycleService) buildMatch(requests []*domain.RideRequest, users map[string]*domain.User) (*domain.RideMatch, error) {
	now := time.Now()
	match := &domain.RideMatch{
		ID:            uuid.New().String(),
		Status:        domain.MatchStatusPending,
		Confirmations: []string{},
		ChatRoomID:    uuid.New().String(),
		CreatedAt:     now,
	}

	var sumOLat, sumOLng, sumDLat, sumDLng float64
	for _, req := range requests {
		user := users[req.UserID]
		match.RequestIDs = append(match.RequestIDs, req.ID)
		match.Participants = append(match.Participants, domain.Participant{
			UserID:     user.ID,
			RequestID:  req.ID,
			Name:       user.Name,
			Gender:     user.Gender,
			Department: user.Department,
			Verified:   user.Verified,
			Seats:      req.LookingForSeats,
			Pickup:     req.Origin,
			Dropoff:    req.Destination,
		})
		match.TotalSeats += req.LookingForSeats

		if match.DepartureTime.IsZero() || req.DepartureTime.Before(match.DepartureTime) {
			match.DepartureTime = req.DepartureTime
		}

		sumOLat += req.Origin.Lat
		sumOLng += req.Origin.Lng
		sumDLat += req.Destination.Lat
		sumDLng += req.Destination.Lng
	}

	n := float64(len(requests))
	match.MeetingPoint = domain.GeoPoint{
		Lat:     sumOLat / n,
		Lng:     sumOLng / n,
		Address: requests[0].Origin.Address,
	}
	match.MeetingPoint.Geohash = geo.Encode(match.MeetingPoint.Lat, match.MeetingPoint.Lng, 7)
	match.DropoffPoint = domain.GeoPoint{
		Lat:     sumDLat / n,
		Lng:     sumDLng / n,
		Address: requests[0].Destination.Address,
	}
	match.DropoffPoint.Geohash = geo.Encode(match.DropoffPoint.Lat, match.DropoffPoint.Lng, 7)

	rideKm := geo.Distance(match.MeetingPoint.Lat, match.MeetingPoint.Lng, match.DropoffPoint.Lat, match.DropoffPoint.Lng)
	match.EstimatedTotalCost = s.cfg.CostBase + rideKm*s.cfg.CostPerKm
	match.CostPerPerson = match.EstimatedTotalCost / n

	for _, req := range requests {
		if req.MaxPricePerSeat > 0 && match.CostPerPerson > req.MaxPricePerSeat {
			return nil, fmt.Errorf("%w (request %s, limit %.0f, share %.0f)",
				ErrPriceLimitExceeded, req.ID, req.MaxPricePerSeat, match.CostPerPerson)
		}
	}

	return match, nil
}

// acquireClaims takes a short-lived lock per request id and returns a
// release function for the ones acquired.
func (s *LifecycleService) acquireClaims(ctx context.Context, requestIDs []string) (func(), error) {
	if s.lockStore == nil {
		return func() {}, nil
	}

	var held []string
	release := func() {
		for _, id := range held {
			_ = s.lockStore.ReleaseRequestLock(ctx, id)
		}
	}

	for _, id := range requestIDs {
		locked, err := s.lockStore.AcquireRequestLock(ctx, id, requestClaimTTL)
		if err != nil {
			release()
			return nil, err
		}
		if !locked {
			release()
			return nil, fmt.Errorf("%w (request %s)", ErrRequestClaimed, id)
		}
		held = append(held, id)
	}
	return release, nil
}

func otherUserIDs(userIDs []string, self int) []string {
	others := make([]string, 0, len(userIDs)-1)
	for i, id := range userIDs {
		if i != self {
			others = append(others, id)
		}
	}
	return others
}

func participantByRequest(match *domain.RideMatch, requestID string) (domain.Participant, bool) {
	for _, p := range match.Participants {
		if p.RequestID == requestID {
			return p, true
		}
	}
	return domain.Participant{}, false
}
