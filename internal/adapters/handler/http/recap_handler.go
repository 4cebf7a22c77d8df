package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pursueapp/recap-engine/internal/core/domain"
	"github.com/pursueapp/recap-engine/internal/core/services"
	"github.com/pursueapp/recap-engine/internal/core/workers"
)

type RecapHandler struct {
	recaps    *services.RecapService
	scheduler *workers.Scheduler
}

func NewRecapHandler(recaps *services.RecapService, scheduler *workers.Scheduler) *RecapHandler {
	return &RecapHandler{
		recaps:    recaps,
		scheduler: scheduler,
	}
}

type forceRecapRequest struct {
	GroupID string `json:"group_id" binding:"required"`
	WeekEnd string `json:"week_end" binding:"required"`
}

// ForceRecap processes one group for one explicit week, skipping the
// timezone-window check. Dedup still applies: a week that already went out
// comes back as a skip, not a resend.
func (h *RecapHandler) ForceRecap(c *gin.Context) {
	var req forceRecapRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	weekEnd, err := time.Parse("2006-01-02", req.WeekEnd)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid week_end format, expected YYYY-MM-DD"})
		return
	}
	if weekEnd.Weekday() != time.Sunday {
		c.JSON(http.StatusBadRequest, gin.H{"error": "week_end must be a Sunday"})
		return
	}

	outcome, err := h.recaps.ForceProcess(c.Request.Context(), req.GroupID, weekEnd)
	if err != nil {
		if errors.Is(err, domain.ErrGroupNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// LastRun reports the most recent sweep's counters.
func (h *RecapHandler) LastRun(c *gin.Context) {
	report := h.scheduler.LastReport()
	if report == nil {
		c.JSON(http.StatusOK, gin.H{"status": "no sweep completed yet"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *RecapHandler) RegisterRoutes(router *gin.RouterGroup) {
	adminGroup := router.Group("/admin/recaps")
	{
		adminGroup.POST("/force", h.ForceRecap)
		adminGroup.GET("/last-run", h.LastRun)
	}
}
