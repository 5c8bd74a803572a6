package tests

import (
	"context"
	"testing"
	"time"

	"campool/internal/domain"
	"campool/internal/service"
)

func scoringRequest(id, userID string, originLat, originLng float64, departure time.Time, flexMin int) *domain.RideRequest {
	return &domain.RideRequest{
		ID:              id,
		UserID:          userID,
		Origin:          domain.GeoPoint{Lat: originLat, Lng: originLng},
		Destination:     domain.GeoPoint{Lat: 23.8700, Lng: 90.4000},
		DepartureTime:   departure,
		FlexibilityMin:  flexMin,
		LookingForSeats: 1,
		Preferences:     domain.Preferences{Gender: domain.GenderPreferenceAny},
		Status:          domain.RequestStatusSearching,
		CreatedAt:       time.Now(),
	}
}

func scoringUser(id, gender, department string) *domain.User {
	return &domain.User{ID: id, Gender: gender, Department: department, Verified: true}
}

func TestScorePair_CloseRequestsScoreHigh(t *testing.T) {
	scorer := service.NewScorer(service.DefaultScoreConfig())
	departure := time.Now().Add(2 * time.Hour)

	a := scoringRequest("a", "u1", 23.7900, 90.4100, departure, 15)
	b := scoringRequest("b", "u2", 23.7910, 90.4110, departure.Add(10*time.Minute), 15)
	ua := scoringUser("u1", "FEMALE", "CSE")
	ub := scoringUser("u2", "MALE", "CSE")
	a.Preferences.SameDepartmentPreferred = true

	result, ok := scorer.ScorePair(a, b, ua, ub)
	if !ok {
		t.Fatal("expected the pair to be eligible")
	}
	if result.Score <= 60 {
		t.Errorf("expected a strong score for near-identical trips, got %.1f", result.Score)
	}
	if result.Score > 100 {
		t.Errorf("score must not exceed 100, got %.1f", result.Score)
	}
	if !result.Breakdown.DepartmentMatch {
		t.Error("expected a department match in the breakdown")
	}
}

func TestScorePair_IdenticalTripsCapAtHundred(t *testing.T) {
	scorer := service.NewScorer(service.DefaultScoreConfig())
	departure := time.Now().Add(2 * time.Hour)

	a := scoringRequest("a", "u1", 23.7900, 90.4100, departure, 15)
	b := scoringRequest("b", "u2", 23.7900, 90.4100, departure, 15)
	a.Preferences.SameDepartmentPreferred = true
	ua := scoringUser("u1", "FEMALE", "CSE")
	ub := scoringUser("u2", "FEMALE", "CSE")

	result, ok := scorer.ScorePair(a, b, ua, ub)
	if !ok {
		t.Fatal("expected the pair to be eligible")
	}
	if result.Score != 100 {
		t.Errorf("expected the bonus clamped at 100, got %.1f", result.Score)
	}
}

func TestScorePair_DistanceCutoffExcludesOutright(t *testing.T) {
	scorer := service.NewScorer(service.DefaultScoreConfig())
	departure := time.Now().Add(2 * time.Hour)

	a := scoringRequest("a", "u1", 23.7900, 90.4100, departure, 15)
	// ~1.1km away at the origin, past the 0.5km cutoff.
	b := scoringRequest("b", "u2", 23.8000, 90.4100, departure, 15)
	ua := scoringUser("u1", "FEMALE", "")
	ub := scoringUser("u2", "FEMALE", "")

	if _, ok := scorer.ScorePair(a, b, ua, ub); ok {
		t.Error("expected a far-origin pair to be excluded, not low-scored")
	}
}

func TestScorePair_TimeWindowIsCombinedFlexibility(t *testing.T) {
	scorer := service.NewScorer(service.DefaultScoreConfig())
	departure := time.Now().Add(2 * time.Hour)

	// 25 minutes apart with a combined window of 20 minutes.
	a := scoringRequest("a", "u1", 23.7900, 90.4100, departure, 10)
	b := scoringRequest("b", "u2", 23.7900, 90.4100, departure.Add(25*time.Minute), 10)
	ua := scoringUser("u1", "FEMALE", "")
	ub := scoringUser("u2", "FEMALE", "")

	if _, ok := scorer.ScorePair(a, b, ua, ub); ok {
		t.Error("expected a pair outside the combined flexibility window to be excluded")
	}

	// Generous flexibility never stretches past the 30 minute cap.
	a.FlexibilityMin = 120
	b.FlexibilityMin = 120
	b.DepartureTime = departure.Add(31 * time.Minute)
	if _, ok := scorer.ScorePair(a, b, ua, ub); ok {
		t.Error("expected the time window capped at 30 minutes")
	}
}

func TestScorePair_GenderPreferenceMustBeMutual(t *testing.T) {
	scorer := service.NewScorer(service.DefaultScoreConfig())
	departure := time.Now().Add(2 * time.Hour)

	a := scoringRequest("a", "u1", 23.7900, 90.4100, departure, 15)
	b := scoringRequest("b", "u2", 23.7900, 90.4100, departure, 15)
	a.Preferences.Gender = domain.GenderPreferenceFemale
	ua := scoringUser("u1", "FEMALE", "")
	ub := scoringUser("u2", "MALE", "")

	if _, ok := scorer.ScorePair(a, b, ua, ub); ok {
		t.Error("expected a gender preference mismatch to exclude the pair")
	}

	// The gate cuts both ways: b's preference screens a's gender too.
	a.Preferences.Gender = domain.GenderPreferenceAny
	b.Preferences.Gender = domain.GenderPreferenceMale
	if _, ok := scorer.ScorePair(a, b, ua, ub); ok {
		t.Error("expected the counterpart's preference to apply as well")
	}
}

func TestScorePair_VerifiedOnlyRequiresBothVerified(t *testing.T) {
	scorer := service.NewScorer(service.DefaultScoreConfig())
	departure := time.Now().Add(2 * time.Hour)

	a := scoringRequest("a", "u1", 23.7900, 90.4100, departure, 15)
	b := scoringRequest("b", "u2", 23.7900, 90.4100, departure, 15)
	a.Preferences.StudentVerifiedOnly = true
	ua := scoringUser("u1", "FEMALE", "")
	ub := scoringUser("u2", "FEMALE", "")
	ub.Verified = false

	if _, ok := scorer.ScorePair(a, b, ua, ub); ok {
		t.Error("expected an unverified counterpart to be excluded")
	}
}

func TestScorePair_DepartmentBonusNeedsPreference(t *testing.T) {
	scorer := service.NewScorer(service.DefaultScoreConfig())
	departure := time.Now().Add(2 * time.Hour)

	a := scoringRequest("a", "u1", 23.7900, 90.4100, departure, 15)
	b := scoringRequest("b", "u2", 23.7900, 90.4100, departure, 15)
	ua := scoringUser("u1", "FEMALE", "CSE")
	ub := scoringUser("u2", "FEMALE", "CSE")

	plain, ok := scorer.ScorePair(a, b, ua, ub)
	if !ok {
		t.Fatal("expected the pair to be eligible")
	}

	a.Preferences.SameDepartmentPreferred = true
	boosted, ok := scorer.ScorePair(a, b, ua, ub)
	if !ok {
		t.Fatal("expected the pair to be eligible")
	}
	if boosted.Score <= plain.Score {
		t.Errorf("expected the preference to add the bonus: %.1f vs %.1f", boosted.Score, plain.Score)
	}
}

func TestScoreCandidates_RanksByScoreThenAge(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture()
	scorer := service.NewScorer(service.DefaultScoreConfig())
	candidates := service.NewCandidateService(f.requestRepo, f.userRepo, nil, nil, scorer)

	departure := time.Now().Add(2 * time.Hour)
	f.seedRider("u1", "ref", departure)

	// near: same trip, scores highest. drift: slightly offset origin.
	// twin: identical score to drift but posted earlier.
	f.seedRider("u2", "near", departure)
	f.seedRider("u3", "drift", departure)
	f.seedRider("u4", "twin", departure)

	drift := f.requestRepo.GetRequest("drift")
	drift.Origin.Lat += 0.0020
	drift.CreatedAt = time.Now()
	f.requestRepo.AddRequest(drift)

	twin := f.requestRepo.GetRequest("twin")
	twin.Origin.Lat += 0.0020
	twin.CreatedAt = time.Now().Add(-time.Hour)
	f.requestRepo.AddRequest(twin)

	ranked, err := candidates.ScoreCandidates(ctx, "ref")
	if err != nil {
		t.Fatalf("failed to score candidates: %v", err)
	}
	if len(ranked) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(ranked))
	}
	if ranked[0].Request.ID != "near" {
		t.Errorf("expected the co-located request first, got %s", ranked[0].Request.ID)
	}
	// Equal scores fall back to first-come priority.
	if ranked[1].Request.ID != "twin" || ranked[2].Request.ID != "drift" {
		t.Errorf("expected ties broken by age (twin before drift), got %s then %s",
			ranked[1].Request.ID, ranked[2].Request.ID)
	}
}

func TestScoreCandidates_ExcludesIneligible(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture()
	scorer := service.NewScorer(service.DefaultScoreConfig())
	candidates := service.NewCandidateService(f.requestRepo, f.userRepo, nil, nil, scorer)

	departure := time.Now().Add(2 * time.Hour)
	f.seedRider("u1", "ref", departure)
	f.seedRider("u2", "ok", departure)
	f.seedRider("u3", "far", departure)
	f.seedRider("u4", "late", departure.Add(2*time.Hour))

	far := f.requestRepo.GetRequest("far")
	far.Origin.Lat = 23.8100
	f.requestRepo.AddRequest(far)

	ranked, err := candidates.ScoreCandidates(ctx, "ref")
	if err != nil {
		t.Fatalf("failed to score candidates: %v", err)
	}
	if len(ranked) != 1 {
		t.Fatalf("expected only the compatible request, got %d candidates", len(ranked))
	}
	if ranked[0].Request.ID != "ok" {
		t.Errorf("expected request ok, got %s", ranked[0].Request.ID)
	}
	if ranked[0].Score < 0 || ranked[0].Score > 100 {
		t.Errorf("score out of range: %.1f", ranked[0].Score)
	}
}

func TestScoreCandidates_UsesOriginIndexWhenAvailable(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture()
	scorer := service.NewScorer(service.DefaultScoreConfig())
	candidates := service.NewCandidateService(f.requestRepo, f.userRepo, f.originIndex, nil, scorer)

	departure := time.Now().Add(2 * time.Hour)
	f.seedRider("u1", "ref", departure)
	f.seedRider("u2", "indexed", departure)

	// A request missing from the index is invisible to the scan.
	f.seedRider("u3", "unindexed", departure)
	_ = f.originIndex.Remove(ctx, "unindexed")

	ranked, err := candidates.ScoreCandidates(ctx, "ref")
	if err != nil {
		t.Fatalf("failed to score candidates: %v", err)
	}
	if len(ranked) != 1 || ranked[0].Request.ID != "indexed" {
		t.Fatalf("expected only the indexed request, got %d candidates", len(ranked))
	}
}
