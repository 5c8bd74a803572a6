package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"campool/internal/domain"
	"campool/internal/service"
)

func newRequestService(f *engineFixture) *service.RequestService {
	return service.NewRequestService(f.requestRepo, f.userRepo, f.lifecycle, f.originIndex)
}

func validInput(userID string) service.CreateRequestInput {
	return service.CreateRequestInput{
		UserID:          userID,
		Origin:          domain.GeoPoint{Lat: 23.7900, Lng: 90.4100, Address: "Campus Gate 2"},
		Destination:     domain.GeoPoint{Lat: 23.8700, Lng: 90.4000, Address: "Uttara Sector 4"},
		DepartureTime:   time.Now().Add(2 * time.Hour),
		FlexibilityMin:  15,
		LookingForSeats: 1,
	}
}

func TestCreateRequest_StartsSearching(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture()
	svc := newRequestService(f)
	f.userRepo.AddUser(&domain.User{ID: "u1", Name: "Rider", Gender: "FEMALE", Verified: true})

	req, err := svc.CreateRequest(ctx, validInput("u1"))
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if req.Status != domain.RequestStatusSearching {
		t.Errorf("expected SEARCHING, got %s", req.Status)
	}
	if req.Preferences.Gender != domain.GenderPreferenceAny {
		t.Errorf("expected the gender preference defaulted to ANY, got %s", req.Preferences.Gender)
	}
	if req.Origin.Geohash == "" || req.Destination.Geohash == "" {
		t.Error("expected geohashes computed for both endpoints")
	}
	wantExpiry := req.DepartureTime.Add(15 * time.Minute)
	if !req.ExpiresAt.Equal(wantExpiry) {
		t.Errorf("expected expiry %v, got %v", wantExpiry, req.ExpiresAt)
	}
	if !f.originIndex.Has(req.ID) {
		t.Error("expected the request entered into the origin index")
	}
}

func TestCreateRequest_Validation(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture()
	svc := newRequestService(f)
	f.userRepo.AddUser(&domain.User{ID: "u1", Name: "Rider", Gender: "FEMALE", Verified: true})

	cases := []struct {
		name    string
		mutate  func(*service.CreateRequestInput)
		wantErr error
	}{
		{"missing user", func(in *service.CreateRequestInput) { in.UserID = "" }, service.ErrValidation},
		{"null island origin", func(in *service.CreateRequestInput) { in.Origin = domain.GeoPoint{} }, service.ErrInvalidLocation},
		{"latitude out of range", func(in *service.CreateRequestInput) { in.Destination.Lat = 91 }, service.ErrInvalidLocation},
		{"negative flexibility", func(in *service.CreateRequestInput) { in.FlexibilityMin = -1 }, service.ErrInvalidFlexibility},
		{"flexibility too large", func(in *service.CreateRequestInput) { in.FlexibilityMin = 121 }, service.ErrInvalidFlexibility},
		{"zero seats", func(in *service.CreateRequestInput) { in.LookingForSeats = 0 }, service.ErrInvalidSeats},
		{"too many seats", func(in *service.CreateRequestInput) { in.LookingForSeats = 4 }, service.ErrInvalidSeats},
		{"negative price", func(in *service.CreateRequestInput) { in.MaxPricePerSeat = -1 }, service.ErrInvalidPrice},
		{"departure in past", func(in *service.CreateRequestInput) { in.DepartureTime = time.Now().Add(-time.Minute) }, service.ErrDepartureInPast},
	}

	for _, tc := range cases {
		in := validInput("u1")
		tc.mutate(&in)
		if _, err := svc.CreateRequest(ctx, in); !errors.Is(err, tc.wantErr) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.wantErr, err)
		}
	}
}

func TestCancelRequest_SearchingIsCancelledDirectly(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture()
	svc := newRequestService(f)
	f.userRepo.AddUser(&domain.User{ID: "u1", Name: "Rider", Gender: "FEMALE", Verified: true})

	req, err := svc.CreateRequest(ctx, validInput("u1"))
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	if err := svc.CancelRequest(ctx, req.ID, "u1", "found a bus"); err != nil {
		t.Fatalf("failed to cancel request: %v", err)
	}

	stored := f.requestRepo.GetRequest(req.ID)
	if stored.Status != domain.RequestStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", stored.Status)
	}
	if stored.CancelReason != "found a bus" {
		t.Errorf("expected the reason recorded, got %q", stored.CancelReason)
	}
	if f.originIndex.Has(req.ID) {
		t.Error("expected the request removed from the origin index")
	}
}

func TestCancelRequest_OnlyOwnerMayCancel(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture()
	svc := newRequestService(f)
	f.userRepo.AddUser(&domain.User{ID: "u1", Name: "Rider", Gender: "FEMALE", Verified: true})

	req, err := svc.CreateRequest(ctx, validInput("u1"))
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	if err := svc.CancelRequest(ctx, req.ID, "u2", ""); !errors.Is(err, service.ErrNotRequestOwner) {
		t.Errorf("expected ErrNotRequestOwner, got %v", err)
	}
	if stored := f.requestRepo.GetRequest(req.ID); stored.Status != domain.RequestStatusSearching {
		t.Errorf("expected the request untouched, got %s", stored.Status)
	}
}

func TestCancelRequest_MatchedTakesDownTheMatch(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture()
	svc := newRequestService(f)
	departure := time.Now().Add(2 * time.Hour)
	f.seedRider("u1", "r1", departure)
	f.seedRider("u2", "r2", departure)
	match, err := f.lifecycle.CreateMatch(ctx, []string{"r1", "r2"})
	if err != nil {
		t.Fatalf("failed to create match: %v", err)
	}

	if err := svc.CancelRequest(ctx, "r1", "u1", "cannot make it"); err != nil {
		t.Fatalf("failed to cancel matched request: %v", err)
	}

	// The withdrawing rider's request ends up cancelled, not searching.
	if r1 := f.requestRepo.GetRequest("r1"); r1.Status != domain.RequestStatusCancelled {
		t.Errorf("expected r1 CANCELLED, got %s", r1.Status)
	}
	// The co-rider is released back into the pool.
	if r2 := f.requestRepo.GetRequest("r2"); r2.Status != domain.RequestStatusSearching {
		t.Errorf("expected r2 SEARCHING, got %s", r2.Status)
	}
	if stored := f.matchRepo.GetMatch(match.ID); stored.Status != domain.MatchStatusCancelled {
		t.Errorf("expected the match CANCELLED, got %s", stored.Status)
	}
}

func TestCancelRequest_RidingIsNotCancellable(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture()
	svc := newRequestService(f)
	departure := time.Now().Add(2 * time.Hour)
	f.seedRider("u1", "r1", departure)
	f.seedRider("u2", "r2", departure)
	match, err := f.lifecycle.CreateMatch(ctx, []string{"r1", "r2"})
	if err != nil {
		t.Fatalf("failed to create match: %v", err)
	}
	if _, err := f.lifecycle.Confirm(ctx, match.ID, "u1"); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if _, err := f.lifecycle.Confirm(ctx, match.ID, "u2"); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if _, err := f.lifecycle.StartRide(ctx, match.ID); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	if err := svc.CancelRequest(ctx, "r1", "u1", ""); !errors.Is(err, service.ErrRequestNotCancellable) {
		t.Errorf("expected ErrRequestNotCancellable, got %v", err)
	}
}
