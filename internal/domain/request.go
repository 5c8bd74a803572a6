package domain

import "time"

// RequestStatus represents the current status of a ride request.
type RequestStatus string

const (
	RequestStatusSearching RequestStatus = "SEARCHING"
	RequestStatusMatched   RequestStatus = "MATCHED"
	RequestStatusRiding    RequestStatus = "RIDING"
	RequestStatusCompleted RequestStatus = "COMPLETED"
	RequestStatusCancelled RequestStatus = "CANCELLED"
)

// GenderPreference restricts who a request owner is willing to ride with.
type GenderPreference string

const (
	GenderPreferenceAny    GenderPreference = "ANY"
	GenderPreferenceMale   GenderPreference = "MALE"
	GenderPreferenceFemale GenderPreference = "FEMALE"
)

// GeoPoint is a location with its human-readable address and geohash key.
type GeoPoint struct {
	Lat     float64
	Lng     float64
	Address string
	Geohash string
}

// Preferences are the matching constraints attached to a ride request.
type Preferences struct {
	Gender                  GenderPreference
	StudentVerifiedOnly     bool
	SameDepartmentPreferred bool
}

// RideRequest represents a student's standing intent to travel.
//
// Status, MatchID, MatchedWith and the cancellation fields are owned by the
// lifecycle service; nothing else in the system writes them.
type RideRequest struct {
	ID             string
	UserID         string
	Origin         GeoPoint
	Destination    GeoPoint
	DepartureTime  time.Time
	FlexibilityMin int // 0-120 minutes either side of DepartureTime
	ExpiresAt      time.Time
	LookingForSeats int     // 1-3
	MaxPricePerSeat float64 // 0 means no limit
	Preferences    Preferences
	Status         RequestStatus
	MatchedWith    []string // user ids of co-riders while matched
	MatchID        string   // set iff Status is MATCHED or RIDING
	CreatedAt      time.Time
	CancelledAt    time.Time
	CancelReason   string
}

// IsTerminal reports whether the request can no longer change state.
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusCompleted || s == RequestStatusCancelled
}
