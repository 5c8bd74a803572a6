package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"campool/internal/domain"
	"campool/internal/geo"
	internalRedis "campool/internal/redis"
	"campool/internal/repository"
)

// RequestService handles ride request intake and owner-driven cancellation.
type RequestService struct {
	requestRepo repository.RequestRepository
	userRepo    repository.UserRepository
	lifecycle   *LifecycleService
	originIndex internalRedis.OriginIndexInterface // optional
}

// NewRequestService creates a new RequestService.
func NewRequestService(
	requestRepo repository.RequestRepository,
	userRepo repository.UserRepository,
	lifecycle *LifecycleService,
	originIndex internalRedis.OriginIndexInterface,
) *RequestService {
	return &RequestService{
		requestRepo: requestRepo,
		userRepo:    userRepo,
		lifecycle:   lifecycle,
		originIndex: originIndex,
	}
}

// CreateRequestInput contains the parameters for posting a ride request.
type CreateRequestInput struct {
	UserID          string
	Origin          domain.GeoPoint
	Destination     domain.GeoPoint
	DepartureTime   time.Time
	FlexibilityMin  int
	LookingForSeats int
	MaxPricePerSeat float64
	Preferences     domain.Preferences
}

// CreateRequest validates and persists a new request in SEARCHING state and
// enters it into the candidate pool.
func (s *RequestService) CreateRequest(ctx context.Context, in CreateRequestInput) (*domain.RideRequest, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	// The owner must exist; the engine snapshots profiles later.
	if _, err := s.userRepo.GetByID(ctx, in.UserID); err != nil {
		return nil, err
	}

	if in.Preferences.Gender == "" {
		in.Preferences.Gender = domain.GenderPreferenceAny
	}
	if in.Origin.Geohash == "" {
		in.Origin.Geohash = geo.Encode(in.Origin.Lat, in.Origin.Lng, 7)
	}
	if in.Destination.Geohash == "" {
		in.Destination.Geohash = geo.Encode(in.Destination.Lat, in.Destination.Lng, 7)
	}

	req := &domain.RideRequest{
		ID:              uuid.New().String(),
		UserID:          in.UserID,
		Origin:          in.Origin,
		Destination:     in.Destination,
		DepartureTime:   in.DepartureTime,
		FlexibilityMin:  in.FlexibilityMin,
		ExpiresAt:       in.DepartureTime.Add(time.Duration(in.FlexibilityMin) * time.Minute),
		LookingForSeats: in.LookingForSeats,
		MaxPricePerSeat: in.MaxPricePerSeat,
		Preferences:     in.Preferences,
		Status:          domain.RequestStatusSearching,
		MatchedWith:     []string{},
		CreatedAt:       time.Now(),
	}

	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	if s.originIndex != nil {
		if err := s.originIndex.Add(ctx, req.ID, req.Origin.Lat, req.Origin.Lng); err != nil {
			// The pool index is an optimization; the database scan fallback
			// still sees this request.
			log.Printf("origin index add failed for request %s: %v", req.ID, err)
		}
	}

	return req, nil
}

// GetRequest retrieves a request by ID.
func (s *RequestService) GetRequest(ctx context.Context, id string) (*domain.RideRequest, error) {
	return s.requestRepo.GetByID(ctx, id)
}

// CancelRequest cancels the owner's request. A searching request is simply
// cancelled; a request inside a pending match takes the whole match down
// through the lifecycle service, returning the other riders to the pool.
func (s *RequestService) CancelRequest(ctx context.Context, requestID, userID, reason string) error {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req.UserID != userID {
		return ErrNotRequestOwner
	}
	if reason == "" {
		reason = "cancelled by owner"
	}

	switch req.Status {
	case domain.RequestStatusSearching:
		cancelled, err := s.requestRepo.Cancel(ctx, requestID, domain.RequestStatusSearching, reason, time.Now())
		if err != nil {
			return err
		}
		if !cancelled {
			return ErrRequestNotSearching
		}
		if s.originIndex != nil {
			if err := s.originIndex.Remove(ctx, requestID); err != nil {
				log.Printf("origin index remove failed for request %s: %v", requestID, err)
			}
		}
		return nil

	case domain.RequestStatusMatched:
		// Cancelling the match releases the co-riders and this request;
		// the request is then cancelled rather than returned to searching.
		if err := s.lifecycle.CancelMatch(ctx, req.MatchID, "a rider withdrew", false); err != nil {
			return err
		}
		if _, err := s.requestRepo.Cancel(ctx, requestID, domain.RequestStatusSearching, reason, time.Now()); err != nil {
			return err
		}
		if s.originIndex != nil {
			_ = s.originIndex.Remove(ctx, requestID)
		}
		return nil

	default:
		return ErrRequestNotCancellable
	}
}

func (s *RequestService) validate(in CreateRequestInput) error {
	if in.UserID == "" {
		return ErrValidation
	}
	if !validCoords(in.Origin) || !validCoords(in.Destination) {
		return ErrInvalidLocation
	}
	if in.FlexibilityMin < 0 || in.FlexibilityMin > 120 {
		return ErrInvalidFlexibility
	}
	if in.LookingForSeats < 1 || in.LookingForSeats > 3 {
		return ErrInvalidSeats
	}
	if in.MaxPricePerSeat < 0 {
		return ErrInvalidPrice
	}
	if !in.DepartureTime.After(time.Now()) {
		return ErrDepartureInPast
	}
	return nil
}

func validCoords(p domain.GeoPoint) bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180 &&
		!(p.Lat == 0 && p.Lng == 0)
}
