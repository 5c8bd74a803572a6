package service

import (
	"context"
	"errors"
	"log"
	"sort"

	"campool/internal/domain"
	"campool/internal/geo"
	internalRedis "campool/internal/redis"
	"campool/internal/repository"
)

const candidatePoolLimit = 200

// Candidate is one scored, eligible counterpart for a reference request.
type Candidate struct {
	Request   *domain.RideRequest
	Score     float64
	Breakdown ScoreBreakdown
}

// CandidateService produces the ranked candidate list for a ride request.
type CandidateService struct {
	requestRepo repository.RequestRepository
	userRepo    repository.UserRepository
	originIndex internalRedis.OriginIndexInterface // optional geo pre-filter
	cacheStore  *internalRedis.CacheStore          // optional profile cache
	scorer      *Scorer
}

// NewCandidateService creates a new CandidateService.
func NewCandidateService(
	requestRepo repository.RequestRepository,
	userRepo repository.UserRepository,
	originIndex internalRedis.OriginIndexInterface,
	cacheStore *internalRedis.CacheStore,
	scorer *Scorer,
) *CandidateService {
	return &CandidateService{
		requestRepo: requestRepo,
		userRepo:    userRepo,
		originIndex: originIndex,
		cacheStore:  cacheStore,
		scorer:      scorer,
	}
}

// ScoreCandidates returns the eligible counterparts for the given request,
// ranked by descending score, ties broken by earlier creation (first-come
// priority). Ineligible pairs are excluded entirely.
func (s *CandidateService) ScoreCandidates(ctx context.Context, requestID string) ([]Candidate, error) {
	ref, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	refUser, err := s.userRepo.GetByID(ctx, ref.UserID)
	if err != nil {
		return nil, err
	}

	pool, err := s.candidatePool(ctx, ref)
	if err != nil {
		return nil, err
	}

	userIDs := make([]string, 0, len(pool))
	for _, req := range pool {
		userIDs = append(userIDs, req.UserID)
	}
	users, err := s.loadUsers(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(pool))
	for _, req := range pool {
		user, ok := users[req.UserID]
		if !ok {
			continue
		}
		result, eligible := s.scorer.ScorePair(ref, req, refUser, user)
		if !eligible {
			continue
		}
		candidates = append(candidates, Candidate{
			Request:   req,
			Score:     result.Score,
			Breakdown: result.Breakdown,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Request.CreatedAt.Before(candidates[j].Request.CreatedAt)
	})

	return candidates, nil
}

// candidatePool returns the searching requests worth scoring against the
// reference. The Redis geo index narrows by origin radius first; without it
// we fall back to a bounding-box scan over searching requests.
func (s *CandidateService) candidatePool(ctx context.Context, ref *domain.RideRequest) ([]*domain.RideRequest, error) {
	if s.originIndex != nil {
		origins, err := s.originIndex.FindNearby(ctx, ref.Origin.Lat, ref.Origin.Lng, s.scorer.cfg.OriginCutoffKm)
		if err == nil {
			return s.fetchSearching(ctx, ref, origins), nil
		}
		// Index unavailable: fall through to the database scan.
		log.Printf("origin index lookup failed, falling back to scan: %v", err)
	}

	all, err := s.requestRepo.ListSearching(ctx, candidatePoolLimit)
	if err != nil {
		return nil, err
	}

	box := geo.Box(ref.Origin.Lat, ref.Origin.Lng, s.scorer.cfg.OriginCutoffKm)
	pool := make([]*domain.RideRequest, 0, len(all))
	for _, req := range all {
		if req.ID == ref.ID || req.UserID == ref.UserID {
			continue
		}
		if !box.Contains(req.Origin.Lat, req.Origin.Lng) {
			continue
		}
		pool = append(pool, req)
	}
	return pool, nil
}

func (s *CandidateService) fetchSearching(ctx context.Context, ref *domain.RideRequest, origins []internalRedis.RequestOrigin) []*domain.RideRequest {
	pool := make([]*domain.RideRequest, 0, len(origins))
	for _, origin := range origins {
		if origin.RequestID == ref.ID {
			continue
		}
		req, err := s.requestRepo.GetByID(ctx, origin.RequestID)
		if err != nil {
			// The index can lag behind cancellations; a stale entry is
			// not an error for the whole scan.
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			log.Printf("candidate fetch failed for request %s: %v", origin.RequestID, err)
			continue
		}
		if req.Status != domain.RequestStatusSearching || req.UserID == ref.UserID {
			continue
		}
		pool = append(pool, req)
	}
	return pool
}

// loadUsers resolves profiles through the cache first, then the database,
// back-filling the cache for future scans.
func (s *CandidateService) loadUsers(ctx context.Context, userIDs []string) (map[string]*domain.User, error) {
	if s.cacheStore == nil {
		return s.userRepo.GetByIDs(ctx, userIDs)
	}

	cached, misses, err := s.cacheStore.GetUsersBatch(ctx, userIDs)
	if err != nil {
		// Cache trouble never fails a scan.
		log.Printf("user cache batch lookup failed: %v", err)
		return s.userRepo.GetByIDs(ctx, userIDs)
	}

	users := make(map[string]*domain.User, len(userIDs))
	for id, cu := range cached {
		users[id] = &domain.User{
			ID:         cu.ID,
			Name:       cu.Name,
			Gender:     cu.Gender,
			Department: cu.Department,
			Verified:   cu.Verified,
			PushToken:  cu.PushToken,
		}
	}

	if len(misses) > 0 {
		fresh, err := s.userRepo.GetByIDs(ctx, misses)
		if err != nil {
			return nil, err
		}
		for id, user := range fresh {
			users[id] = user
			_ = s.cacheStore.SetUser(ctx, &internalRedis.CachedUser{
				ID:         user.ID,
				Name:       user.Name,
				Gender:     user.Gender,
				Department: user.Department,
				Verified:   user.Verified,
				PushToken:  user.PushToken,
			})
		}
	}

	return users, nil
}
