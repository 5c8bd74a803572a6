package domain

import "time"

// MatchStatus represents the current status of a ride match.
type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "PENDING"
	MatchStatusConfirmed MatchStatus = "CONFIRMED"
	MatchStatusRiding    MatchStatus = "RIDING"
	MatchStatusCompleted MatchStatus = "COMPLETED"
	MatchStatusCancelled MatchStatus = "CANCELLED"
)

// IsTerminal reports whether the match can no longer change state.
func (s MatchStatus) IsTerminal() bool {
	return s == MatchStatusCompleted || s == MatchStatusCancelled
}

// Participant is a snapshot of one rider taken at match-creation time.
// The snapshot is intentionally frozen: later profile edits do not flow
// back into existing matches, so a match stays interpretable as formed.
type Participant struct {
	UserID     string   `json:"user_id"`
	RequestID  string   `json:"request_id"`
	Name       string   `json:"name"`
	Gender     string   `json:"gender"`
	Department string   `json:"department"`
	Verified   bool     `json:"verified"`
	Seats      int      `json:"seats"`
	Pickup     GeoPoint `json:"pickup"`
	Dropoff    GeoPoint `json:"dropoff"`
}

// RideMatch binds two or more ride requests into one shared ride.
type RideMatch struct {
	ID                 string
	RequestIDs         []string
	Participants       []Participant
	MeetingPoint       GeoPoint
	DropoffPoint       GeoPoint
	DepartureTime      time.Time // earliest departure among the linked requests
	EstimatedTotalCost float64
	CostPerPerson      float64
	TotalSeats         int
	Status             MatchStatus
	Confirmations      []string // user ids that have explicitly confirmed
	ChatRoomID         string
	CreatedAt          time.Time
	ConfirmedAt        time.Time
	CancelledAt        time.Time
	CancelReason       string
}

// HasConfirmed reports whether the given user already confirmed the match.
func (m *RideMatch) HasConfirmed(userID string) bool {
	for _, id := range m.Confirmations {
		if id == userID {
			return true
		}
	}
	return false
}

// HasParticipant reports whether the given user is part of the match.
func (m *RideMatch) HasParticipant(userID string) bool {
	for _, p := range m.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// AllConfirmed reports whether every participant has confirmed.
func (m *RideMatch) AllConfirmed() bool {
	return len(m.Confirmations) >= len(m.Participants)
}

// UnconfirmedUserIDs returns the participants that have not yet confirmed.
func (m *RideMatch) UnconfirmedUserIDs() []string {
	var pending []string
	for _, p := range m.Participants {
		if !m.HasConfirmed(p.UserID) {
			pending = append(pending, p.UserID)
		}
	}
	return pending
}

// ParticipantUserIDs returns the user ids of all participants.
func (m *RideMatch) ParticipantUserIDs() []string {
	ids := make([]string, 0, len(m.Participants))
	for _, p := range m.Participants {
		ids = append(ids, p.UserID)
	}
	return ids
}
