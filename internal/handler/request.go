package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"campool/internal/domain"
	"campool/internal/service"
)

// RequestHandler handles HTTP requests for ride requests.
type RequestHandler struct {
	requestService   *service.RequestService
	candidateService *service.CandidateService
}

// NewRequestHandler creates a new RequestHandler.
func NewRequestHandler(requestService *service.RequestService, candidateService *service.CandidateService) *RequestHandler {
	return &RequestHandler{
		requestService:   requestService,
		candidateService: candidateService,
	}
}

// GeoPointPayload is the wire form of a location.
type GeoPointPayload struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
	Geohash string  `json:"geohash,omitempty"`
}

// CreateRequestRequest is the HTTP request body for posting a ride request.
type CreateRequestRequest struct {
	UserID          string          `json:"user_id"`
	Origin          GeoPointPayload `json:"origin"`
	Destination     GeoPointPayload `json:"destination"`
	DepartureTime   time.Time       `json:"departure_time"`
	FlexibilityMin  int             `json:"flexibility_min"`
	LookingForSeats int             `json:"looking_for_seats"`
	MaxPricePerSeat float64         `json:"max_price_per_seat"`
	Preferences     struct {
		Gender                  string `json:"gender,omitempty"`
		StudentVerifiedOnly     bool   `json:"student_verified_only"`
		SameDepartmentPreferred bool   `json:"same_department_preferred"`
	} `json:"preferences"`
}

// CancelRequestRequest is the HTTP request body for cancelling a request.
type CancelRequestRequest struct {
	UserID string `json:"user_id"`
	Reason string `json:"reason,omitempty"`
}

// RequestResponse is the wire form of a ride request.
type RequestResponse struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Origin          GeoPointPayload `json:"origin"`
	Destination     GeoPointPayload `json:"destination"`
	DepartureTime   time.Time       `json:"departure_time"`
	FlexibilityMin  int             `json:"flexibility_min"`
	ExpiresAt       time.Time       `json:"expires_at"`
	LookingForSeats int             `json:"looking_for_seats"`
	MaxPricePerSeat float64         `json:"max_price_per_seat"`
	Status          string          `json:"status"`
	MatchedWith     []string        `json:"matched_with"`
	MatchID         string          `json:"match_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	CancelReason    string          `json:"cancel_reason,omitempty"`
}

// CandidateResponse is one entry in the ranked candidate list.
type CandidateResponse struct {
	RequestID string                 `json:"request_id"`
	UserID    string                 `json:"user_id"`
	Score     float64                `json:"score"`
	Breakdown service.ScoreBreakdown `json:"breakdown"`
}

// CreateRequest handles POST /v1/requests
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	var req CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	created, err := h.requestService.CreateRequest(c.Request.Context(), service.CreateRequestInput{
		UserID:          req.UserID,
		Origin:          toGeoPoint(req.Origin),
		Destination:     toGeoPoint(req.Destination),
		DepartureTime:   req.DepartureTime,
		FlexibilityMin:  req.FlexibilityMin,
		LookingForSeats: req.LookingForSeats,
		MaxPricePerSeat: req.MaxPricePerSeat,
		Preferences: domain.Preferences{
			Gender:                  domain.GenderPreference(req.Preferences.Gender),
			StudentVerifiedOnly:     req.Preferences.StudentVerifiedOnly,
			SameDepartmentPreferred: req.Preferences.SameDepartmentPreferred,
		},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toRequestResponse(created))
}

// GetRequest handles GET /v1/requests/:id
func (h *RequestHandler) GetRequest(c *gin.Context) {
	req, err := h.requestService.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRequestResponse(req))
}

// CancelRequest handles POST /v1/requests/:id/cancel
func (h *RequestHandler) CancelRequest(c *gin.Context) {
	var body CancelRequestRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.requestService.CancelRequest(c.Request.Context(), c.Param("id"), body.UserID, body.Reason); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// GetCandidates handles GET /v1/requests/:id/candidates
func (h *RequestHandler) GetCandidates(c *gin.Context) {
	candidates, err := h.candidateService.ScoreCandidates(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]CandidateResponse, 0, len(candidates))
	for _, cand := range candidates {
		out = append(out, CandidateResponse{
			RequestID: cand.Request.ID,
			UserID:    cand.Request.UserID,
			Score:     cand.Score,
			Breakdown: cand.Breakdown,
		})
	}
	c.JSON(http.StatusOK, gin.H{"candidates": out})
}

func toGeoPoint(p GeoPointPayload) domain.GeoPoint {
	return domain.GeoPoint{Lat: p.Lat, Lng: p.Lng, Address: p.Address, Geohash: p.Geohash}
}

func fromGeoPoint(p domain.GeoPoint) GeoPointPayload {
	return GeoPointPayload{Lat: p.Lat, Lng: p.Lng, Address: p.Address, Geohash: p.Geohash}
}

func toRequestResponse(req *domain.RideRequest) RequestResponse {
	matchedWith := req.MatchedWith
	if matchedWith == nil {
		matchedWith = []string{}
	}
	return RequestResponse{
		ID:              req.ID,
		UserID:          req.UserID,
		Origin:          fromGeoPoint(req.Origin),
		Destination:     fromGeoPoint(req.Destination),
		DepartureTime:   req.DepartureTime,
		FlexibilityMin:  req.FlexibilityMin,
		ExpiresAt:       req.ExpiresAt,
		LookingForSeats: req.LookingForSeats,
		MaxPricePerSeat: req.MaxPricePerSeat,
		Status:          string(req.Status),
		MatchedWith:     matchedWith,
		MatchID:         req.MatchID,
		CreatedAt:       req.CreatedAt,
		CancelReason:    req.CancelReason,
	}
}
