package service

import (
	"time"

	"campool/internal/domain"
	"campool/internal/geo"
)

// ScoreConfig holds the cutoffs and weights for pair scoring.
//
// The weights sum to 85; the department bonus tops a perfect pair up to 100.
// A pair beyond any cutoff is ineligible outright, not merely low-scored.
type ScoreConfig struct {
	OriginCutoffKm  float64       // pairs further apart at origin are ineligible
	DestCutoffKm    float64       // same shape, larger cutoff at destination
	MaxTimeWindow   time.Duration // hard cap on the combined-flexibility window
	OriginWeight    float64
	DestWeight      float64
	TimeWeight      float64
	DepartmentBonus float64
}

// DefaultScoreConfig returns the production scoring parameters.
func DefaultScoreConfig() ScoreConfig {
	return ScoreConfig{
		OriginCutoffKm:  0.5,
		DestCutoffKm:    1.0,
		MaxTimeWindow:   30 * time.Minute,
		OriginWeight:    35,
		DestWeight:      25,
		TimeWeight:      25,
		DepartmentBonus: 15,
	}
}

// ScoreBreakdown explains how a pair score was composed. Each component is
// normalized to [0,100] before weighting.
type ScoreBreakdown struct {
	OriginDistanceKm float64       `json:"origin_distance_km"`
	DestDistanceKm   float64       `json:"dest_distance_km"`
	TimeDifference   time.Duration `json:"-"`
	OriginComponent  float64       `json:"origin_component"`
	DestComponent    float64       `json:"dest_component"`
	TimeComponent    float64       `json:"time_component"`
	DepartmentMatch  bool          `json:"department_match"`
}

// PairScore is the compatibility result for an eligible pair.
type PairScore struct {
	Score     float64        `json:"score"` // 0-100
	Breakdown ScoreBreakdown `json:"breakdown"`
}

// Scorer computes compatibility between two ride requests.
type Scorer struct {
	cfg ScoreConfig
}

// NewScorer creates a scorer with the given configuration.
func NewScorer(cfg ScoreConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// ScorePair evaluates two requests against each other. The second return
// value reports eligibility: ineligible pairs get no score at all, so they
// never show up ranked low instead of excluded.
func (s *Scorer) ScorePair(a, b *domain.RideRequest, userA, userB *domain.User) (PairScore, bool) {
	originDist := geo.Distance(a.Origin.Lat, a.Origin.Lng, b.Origin.Lat, b.Origin.Lng)
	if originDist > s.cfg.OriginCutoffKm {
		return PairScore{}, false
	}

	destDist := geo.Distance(a.Destination.Lat, a.Destination.Lng, b.Destination.Lat, b.Destination.Lng)
	if destDist > s.cfg.DestCutoffKm {
		return PairScore{}, false
	}

	timeDiff := a.DepartureTime.Sub(b.DepartureTime)
	if timeDiff < 0 {
		timeDiff = -timeDiff
	}
	window := time.Duration(a.FlexibilityMin+b.FlexibilityMin) * time.Minute
	if window > s.cfg.MaxTimeWindow {
		window = s.cfg.MaxTimeWindow
	}
	if window <= 0 || timeDiff > window {
		return PairScore{}, false
	}

	if !preferencesCompatible(a, b, userA, userB) {
		return PairScore{}, false
	}

	breakdown := ScoreBreakdown{
		OriginDistanceKm: originDist,
		DestDistanceKm:   destDist,
		TimeDifference:   timeDiff,
		OriginComponent:  decay(originDist, s.cfg.OriginCutoffKm),
		DestComponent:    decay(destDist, s.cfg.DestCutoffKm),
		TimeComponent:    decay(timeDiff.Minutes(), window.Minutes()),
		DepartmentMatch:  sameDepartment(userA, userB),
	}

	score := breakdown.OriginComponent*s.cfg.OriginWeight/100 +
		breakdown.DestComponent*s.cfg.DestWeight/100 +
		breakdown.TimeComponent*s.cfg.TimeWeight/100

	// Soft bonus only: sharing a department never gates a pair.
	if breakdown.DepartmentMatch && (a.Preferences.SameDepartmentPreferred || b.Preferences.SameDepartmentPreferred) {
		score += s.cfg.DepartmentBonus
	}
	if score > 100 {
		score = 100
	}

	return PairScore{Score: score, Breakdown: breakdown}, true
}

// decay maps value 0 to 100 and value >= max to 0, linearly.
func decay(value, max float64) float64 {
	if max <= 0 {
		return 0
	}
	c := (1 - value/max) * 100
	if c < 0 {
		return 0
	}
	return c
}

// preferencesCompatible applies the boolean gates: gender preferences must
// accept each other mutually, and a verified-only flag on either side
// requires both users to be verified.
func preferencesCompatible(a, b *domain.RideRequest, userA, userB *domain.User) bool {
	if !genderAccepts(a.Preferences.Gender, userB.Gender) {
		return false
	}
	if !genderAccepts(b.Preferences.Gender, userA.Gender) {
		return false
	}
	if a.Preferences.StudentVerifiedOnly || b.Preferences.StudentVerifiedOnly {
		if !userA.Verified || !userB.Verified {
			return false
		}
	}
	return true
}

func genderAccepts(pref domain.GenderPreference, gender string) bool {
	switch pref {
	case domain.GenderPreferenceMale:
		return gender == "MALE"
	case domain.GenderPreferenceFemale:
		return gender == "FEMALE"
	default:
		return true
	}
}

func sameDepartment(a, b *domain.User) bool {
	return a.Department != "" && a.Department == b.Department
}
