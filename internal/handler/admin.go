package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"campool/internal/service"
)

// AdminHandler exposes the maintenance sweeps for ops tooling. The sweeps
// also run on their own timers; triggering one here is always safe because
// they only act on records still in the qualifying state.
type AdminHandler struct {
	sweeps *service.SweepService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(sweeps *service.SweepService) *AdminHandler {
	return &AdminHandler{sweeps: sweeps}
}

// SweepResponse reports how many records a sweep affected.
type SweepResponse struct {
	Affected int `json:"affected"`
}

// RunExpirySweep handles POST /v1/admin/sweeps/expiry
func (h *AdminHandler) RunExpirySweep(c *gin.Context) {
	h.run(c, h.sweeps.RunExpirySweep)
}

// RunTimeoutSweep handles POST /v1/admin/sweeps/timeout
func (h *AdminHandler) RunTimeoutSweep(c *gin.Context) {
	h.run(c, h.sweeps.RunTimeoutSweep)
}

// RunRequestCleanup handles POST /v1/admin/sweeps/requests
func (h *AdminHandler) RunRequestCleanup(c *gin.Context) {
	h.run(c, h.sweeps.RunRequestCleanup)
}

// RunReminderSweep handles POST /v1/admin/sweeps/reminders
func (h *AdminHandler) RunReminderSweep(c *gin.Context) {
	h.run(c, h.sweeps.RunReminderSweep)
}

func (h *AdminHandler) run(c *gin.Context, sweep func(context.Context) (int, error)) {
	affected, err := sweep(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SweepResponse{Affected: affected})
}
