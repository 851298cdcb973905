package handlers

import (
	"net/http"
	"time"

	"storehub-backend/models"
	"storehub-backend/status"
	"storehub-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type StatusHandler struct {
	DB       *gorm.DB
	Resolver *status.Resolver
}

// Duration choices accepted by the status-change endpoint.
const (
	DurationOneHour     = "1_hour"
	DurationTwoHours    = "2_hours"
	DurationEndOfDay    = "end_of_day"
	DurationPermanently = "permanently"
)

// durationFor maps a duration choice to a concrete duration. "permanently"
// (and the empty default) return nil: the status carries no duration and
// expires at the end of the day via the derivation rule.
func durationFor(choice string, now time.Time) *time.Duration {
	var d time.Duration
	switch choice {
	case DurationOneHour:
		d = time.Hour
	case DurationTwoHours:
		d = 2 * time.Hour
	case DurationEndOfDay:
		d = models.EndOfDay(now).Sub(now)
	default: // permanently
		return nil
	}
	return &d
}

// SetStoreStatus appends a manual status override to the store's history and
// invalidates the cached resolution so the next read recomputes.
func (h *StatusHandler) SetStoreStatus(c *gin.Context) {
	storeHandler := StoreHandler{DB: h.DB, Resolver: h.Resolver}
	store, ok := storeHandler.findVendorStore(c)
	if !ok {
		return
	}

	var req struct {
		Status   string `json:"status" binding:"required,oneof=open closed busy"`
		Duration string `json:"duration" binding:"omitempty,oneof=1_hour 2_hours end_of_day permanently"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	now := time.Now()
	duration := durationFor(req.Duration, now)

	override := models.StoreStatus{
		StoreID:   store.ID,
		Status:    req.Status,
		SetAt:     now,
		ExpiresAt: models.ComputeExpiresAt(now, duration),
	}
	if duration != nil {
		seconds := int64(duration.Seconds())
		override.DurationSeconds = &seconds
	}

	// History is append-only: always a new row, older rows are kept.
	if err := h.DB.Create(&override).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set store status"})
		return
	}

	h.Resolver.Invalidate(store.ID)
	res := h.Resolver.Resolve(store.ID, now)

	c.JSON(http.StatusCreated, gin.H{
		"store_status":   override,
		"current_status": resolutionResponse(res),
	})
}

// GetStatusHistory lists the store's most recent status overrides, newest
// first.
func (h *StatusHandler) GetStatusHistory(c *gin.Context) {
	storeHandler := StoreHandler{DB: h.DB, Resolver: h.Resolver}
	store, ok := storeHandler.findVendorStore(c)
	if !ok {
		return
	}

	var history []models.StoreStatus
	if err := h.DB.Where("store_id = ?", store.ID).
		Order("set_at DESC, created_at DESC").
		Limit(50).
		Find(&history).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch status history"})
		return
	}

	c.JSON(http.StatusOK, history)
}
