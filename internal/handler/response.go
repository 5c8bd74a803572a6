package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"campool/internal/repository"
	"campool/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// mapErrorToHTTPStatus maps the service error taxonomy to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest

	// State and conflict errors both surface as 409: the record exists
	// but the operation lost to its current lifecycle state.
	case errors.Is(err, service.ErrInvalidState),
		errors.Is(err, service.ErrConflict):
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}
