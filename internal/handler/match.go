package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"campool/internal/domain"
	"campool/internal/repository"
	"campool/internal/service"
)

// MatchHandler handles HTTP requests for matches.
type MatchHandler struct {
	lifecycle *service.LifecycleService
	matchRepo repository.MatchRepository
}

// NewMatchHandler creates a new MatchHandler.
func NewMatchHandler(lifecycle *service.LifecycleService, matchRepo repository.MatchRepository) *MatchHandler {
	return &MatchHandler{
		lifecycle: lifecycle,
		matchRepo: matchRepo,
	}
}

// CreateMatchRequest is the HTTP request body for forming a match.
type CreateMatchRequest struct {
	RequestIDs []string `json:"request_ids"`
}

// ConfirmMatchRequest is the HTTP request body for confirming a match.
type ConfirmMatchRequest struct {
	UserID string `json:"user_id"`
}

// CancelMatchRequest is the HTTP request body for cancelling a match.
type CancelMatchRequest struct {
	Reason string `json:"reason,omitempty"`
}

// MatchResponse is the wire form of a match.
type MatchResponse struct {
	ID                 string               `json:"id"`
	RequestIDs         []string             `json:"request_ids"`
	Participants       []domain.Participant `json:"participants"`
	MeetingPoint       GeoPointPayload      `json:"meeting_point"`
	DropoffPoint       GeoPointPayload      `json:"dropoff_point"`
	DepartureTime      time.Time            `json:"departure_time"`
	EstimatedTotalCost float64              `json:"estimated_total_cost"`
	CostPerPerson      float64              `json:"cost_per_person"`
	TotalSeats         int                  `json:"total_seats"`
	Status             string               `json:"status"`
	Confirmations      []string             `json:"confirmations"`
	ChatRoomID         string               `json:"chat_room_id"`
	CreatedAt          time.Time            `json:"created_at"`
	CancelReason       string               `json:"cancel_reason,omitempty"`
}

// CreateMatch handles POST /v1/matches
func (h *MatchHandler) CreateMatch(c *gin.Context) {
	var req CreateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	match, err := h.lifecycle.CreateMatch(c.Request.Context(), req.RequestIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toMatchResponse(match))
}

// GetMatch handles GET /v1/matches/:id
func (h *MatchHandler) GetMatch(c *gin.Context) {
	match, err := h.matchRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMatchResponse(match))
}

// ConfirmMatch handles POST /v1/matches/:id/confirm
func (h *MatchHandler) ConfirmMatch(c *gin.Context) {
	var req ConfirmMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	match, err := h.lifecycle.Confirm(c.Request.Context(), c.Param("id"), req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMatchResponse(match))
}

// CancelMatch handles POST /v1/matches/:id/cancel
func (h *MatchHandler) CancelMatch(c *gin.Context) {
	var req CancelMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	reason := req.Reason
	if reason == "" {
		reason = "cancelled by rider"
	}

	if err := h.lifecycle.CancelMatch(c.Request.Context(), c.Param("id"), reason, false); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// StartRide handles POST /v1/matches/:id/start
func (h *MatchHandler) StartRide(c *gin.Context) {
	match, err := h.lifecycle.StartRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMatchResponse(match))
}

// CompleteRide handles POST /v1/matches/:id/complete
func (h *MatchHandler) CompleteRide(c *gin.Context) {
	match, err := h.lifecycle.CompleteRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMatchResponse(match))
}

func toMatchResponse(m *domain.RideMatch) MatchResponse {
	confirmations := m.Confirmations
	if confirmations == nil {
		confirmations = []string{}
	}
	return MatchResponse{
		ID:                 m.ID,
		RequestIDs:         m.RequestIDs,
		Participants:       m.Participants,
		MeetingPoint:       fromGeoPoint(m.MeetingPoint),
		DropoffPoint:       fromGeoPoint(m.DropoffPoint),
		DepartureTime:      m.DepartureTime,
		EstimatedTotalCost: m.EstimatedTotalCost,
		CostPerPerson:      m.CostPerPerson,
		TotalSeats:         m.TotalSeats,
		Status:             string(m.Status),
		Confirmations:      confirmations,
		ChatRoomID:         m.ChatRoomID,
		CreatedAt:          m.CreatedAt,
		CancelReason:       m.CancelReason,
	}
}
