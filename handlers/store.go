package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"storehub-backend/models"
	"storehub-backend/status"
	"storehub-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Default opening hours assigned to a new store until the owner edits them.
const (
	defaultOpenTime  = "09:00"
	defaultCloseTime = "21:00"
)

type StoreHandler struct {
	DB       *gorm.DB
	Resolver *status.Resolver
}

// ========== Public Endpoints ==========

func (h *StoreHandler) GetStores(c *gin.Context) {
	var stores []models.Store
	if err := h.DB.Preload("OpeningPeriods").Where("is_active = ?", true).Order("name").Find(&stores).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stores"})
		return
	}

	c.JSON(http.StatusOK, stores)
}

func (h *StoreHandler) GetStore(c *gin.Context) {
	id := c.Param("id")

	var store models.Store
	if err := h.DB.Preload("OpeningPeriods").Where("id = ? AND is_active = ?", id, true).First(&store).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
		return
	}

	res := h.Resolver.Resolve(store.ID, time.Now())

	c.JSON(http.StatusOK, gin.H{
		"store":               store,
		"has_contact_details": store.HasContactDetails(),
		"current_status":      resolutionResponse(res),
	})
}

func (h *StoreHandler) GetNearestStore(c *gin.Context) {
	latStr := c.Query("lat")
	lngStr := c.Query("lng")

	if latStr == "" || lngStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng query parameters are required"})
		return
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid latitude"})
		return
	}

	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid longitude"})
		return
	}

	var stores []models.Store
	if err := h.DB.Preload("OpeningPeriods").Where("is_active = ?", true).Find(&stores).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stores"})
		return
	}

	var nearest *models.Store
	var nearestDistance float64 = -1

	for i := range stores {
		dist := utils.Haversine(lat, lng, stores[i].Latitude, stores[i].Longitude)
		if dist <= stores[i].DeliveryRadius && (nearestDistance < 0 || dist < nearestDistance) {
			nearest = &stores[i]
			nearestDistance = dist
		}
	}

	if nearest == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No store delivers to your location"})
		return
	}

	res := h.Resolver.Resolve(nearest.ID, time.Now())

	c.JSON(http.StatusOK, gin.H{
		"store":          nearest,
		"distance":       nearestDistance,
		"current_status": resolutionResponse(res),
	})
}

// GetStoreStatus resolves whether the store is currently open, and for
// Busy/Closed overrides how long the state holds.
func (h *StoreHandler) GetStoreStatus(c *gin.Context) {
	id := c.Param("id")

	var store models.Store
	if err := h.DB.Select("id").Where("id = ? AND is_active = ?", id, true).First(&store).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
		return
	}

	res := h.Resolver.Resolve(store.ID, time.Now())
	c.JSON(http.StatusOK, resolutionResponse(res))
}

// ========== Vendor Endpoints ==========

func (h *StoreHandler) CreateStore(c *gin.Context) {
	vendorID, _ := c.Get("vendor_id")

	var req struct {
		Name           string  `json:"name" binding:"required"`
		Description    string  `json:"description"`
		ManagerName    string  `json:"manager_name"`
		Phone          string  `json:"phone"`
		Email          string  `json:"email"`
		City           string  `json:"city"`
		Latitude       float64 `json:"latitude" binding:"required"`
		Longitude      float64 `json:"longitude" binding:"required"`
		DeliveryRadius float64 `json:"delivery_radius"`
		MinOrderValue  float64 `json:"min_order_value"`
		PreparingTime  int     `json:"preparing_time"`
		IsDriveThru    bool    `json:"is_drive_thru"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	var vendor models.Vendor
	if err := h.DB.Where("id = ?", vendorID).First(&vendor).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vendor not found"})
		return
	}

	// Capacity guard: the vendor's business details cap how many branches
	// may exist. Checked before anything is written.
	var branchCount int64
	if err := h.DB.Model(&models.Store{}).Where("vendor_id = ?", vendor.ID).Count(&branchCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count branches"})
		return
	}
	if branchCount >= int64(vendor.MaxBranches) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("The maximum number of branches (%d) for this vendor has been reached", vendor.MaxBranches),
		})
		return
	}

	store := models.Store{
		VendorID:       vendor.ID,
		Name:           req.Name,
		Slug:           utils.Slugify(req.Name) + "-" + uuid.New().String()[:8],
		Description:    req.Description,
		ManagerName:    req.ManagerName,
		Phone:          req.Phone,
		Email:          req.Email,
		City:           req.City,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		DeliveryRadius: req.DeliveryRadius,
		MinOrderValue:  req.MinOrderValue,
		PreparingTime:  req.PreparingTime,
		IsDriveThru:    req.IsDriveThru,
		IsActive:       true,
	}

	if store.DeliveryRadius == 0 {
		store.DeliveryRadius = 5
	}

	tx := h.DB.Begin()

	if err := tx.Create(&store).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create store"})
		return
	}

	// Create default opening hours, Monday through Sunday
	open, close := defaultOpenTime, defaultCloseTime
	for weekday := models.Monday; weekday <= models.Sunday; weekday++ {
		period := models.OpeningPeriod{
			StoreID: store.ID,
			Weekday: weekday,
			Start:   &open,
			End:     &close,
		}
		if err := tx.Create(&period).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create default opening hours"})
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to finalize store creation"})
		return
	}

	h.DB.Preload("OpeningPeriods").First(&store, store.ID)
	c.JSON(http.StatusCreated, store)
}

func (h *StoreHandler) UpdateStore(c *gin.Context) {
	store, ok := h.findVendorStore(c)
	if !ok {
		return
	}

	var req struct {
		Name           *string  `json:"name"`
		Description    *string  `json:"description"`
		ManagerName    *string  `json:"manager_name"`
		Phone          *string  `json:"phone"`
		Email          *string  `json:"email"`
		City           *string  `json:"city"`
		Latitude       *float64 `json:"latitude"`
		Longitude      *float64 `json:"longitude"`
		DeliveryRadius *float64 `json:"delivery_radius"`
		MinOrderValue  *float64 `json:"min_order_value"`
		PreparingTime  *int     `json:"preparing_time"`
		IsDriveThru    *bool    `json:"is_drive_thru"`
		IsActive       *bool    `json:"is_active"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ManagerName != nil {
		updates["manager_name"] = *req.ManagerName
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.Latitude != nil {
		updates["latitude"] = *req.Latitude
	}
	if req.Longitude != nil {
		updates["longitude"] = *req.Longitude
	}
	if req.DeliveryRadius != nil {
		updates["delivery_radius"] = *req.DeliveryRadius
	}
	if req.MinOrderValue != nil {
		updates["min_order_value"] = *req.MinOrderValue
	}
	if req.PreparingTime != nil {
		updates["preparing_time"] = *req.PreparingTime
	}
	if req.IsDriveThru != nil {
		updates["is_drive_thru"] = *req.IsDriveThru
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := h.DB.Model(store).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update store"})
			return
		}
		h.Resolver.Invalidate(store.ID)
	}

	h.DB.Preload("OpeningPeriods").First(store, store.ID)
	c.JSON(http.StatusOK, store)
}

func (h *StoreHandler) DeleteStore(c *gin.Context) {
	store, ok := h.findVendorStore(c)
	if !ok {
		return
	}

	tx := h.DB.Begin()

	// Opening periods and status history have no lifecycle independent of
	// the store; remove them with it.
	if err := tx.Where("store_id = ?", store.ID).Delete(&models.OpeningPeriod{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete opening hours"})
		return
	}
	if err := tx.Where("store_id = ?", store.ID).Delete(&models.StoreStatus{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete status history"})
		return
	}
	if err := tx.Delete(store).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete store"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to finalize store deletion"})
		return
	}

	h.Resolver.Invalidate(store.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Store deleted"})
}

func (h *StoreHandler) GetStoreHours(c *gin.Context) {
	store, ok := h.findVendorStore(c)
	if !ok {
		return
	}

	var periods []models.OpeningPeriod
	if err := h.DB.Where("store_id = ?", store.ID).Order("weekday, start").Find(&periods).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch opening hours"})
		return
	}

	c.JSON(http.StatusOK, periods)
}

// UpdateStoreHours replaces the store's whole weekly schedule. A weekday may
// appear more than once (split shifts); a row with neither start nor end
// marks the weekday closed all day.
func (h *StoreHandler) UpdateStoreHours(c *gin.Context) {
	store, ok := h.findVendorStore(c)
	if !ok {
		return
	}

	var req []struct {
		Weekday int     `json:"weekday" binding:"required,min=1,max=7"`
		Start   *string `json:"start"`
		End     *string `json:"end"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	periods := make([]models.OpeningPeriod, 0, len(req))
	for _, p := range req {
		period := models.OpeningPeriod{
			StoreID: store.ID,
			Weekday: p.Weekday,
			Start:   p.Start,
			End:     p.End,
		}
		if err := period.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		periods = append(periods, period)
	}

	tx := h.DB.Begin()

	if err := tx.Where("store_id = ?", store.ID).Delete(&models.OpeningPeriod{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to replace opening hours"})
		return
	}
	for i := range periods {
		if err := tx.Create(&periods[i]).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to replace opening hours"})
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to finalize opening hours update"})
		return
	}

	h.Resolver.Invalidate(store.ID)

	var saved []models.OpeningPeriod
	h.DB.Where("store_id = ?", store.ID).Order("weekday, start").Find(&saved)
	c.JSON(http.StatusOK, saved)
}

// ========== Admin Endpoints ==========

func (h *StoreHandler) ListAllStores(c *gin.Context) {
	var stores []models.Store
	if err := h.DB.Preload("Vendor").Preload("OpeningPeriods").Order("name").Find(&stores).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stores"})
		return
	}

	c.JSON(http.StatusOK, stores)
}

// findVendorStore loads the store in the :id param and checks it belongs to
// the authenticated vendor. Responds 404 (not 403) on foreign stores so
// other vendors' store ids are not confirmed.
func (h *StoreHandler) findVendorStore(c *gin.Context) (*models.Store, bool) {
	id := c.Param("id")
	vendorID, _ := c.Get("vendor_id")

	var store models.Store
	if err := h.DB.Where("id = ?", id).First(&store).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
		return nil, false
	}

	if vID, ok := vendorID.(uuid.UUID); !ok || store.VendorID != vID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
		return nil, false
	}

	return &store, true
}

// resolutionResponse shapes a resolution for JSON responses. Remaining time
// is present only for temporary Busy/Closed overrides.
func resolutionResponse(res status.Resolution) gin.H {
	resp := gin.H{"status": res.Status}
	if res.Remaining != nil {
		resp["remaining_seconds"] = int64(res.Remaining.Seconds())
		resp["remaining"] = formatDuration(*res.Remaining)
	}
	return resp
}

// formatDuration renders a non-negative duration as "HH:MM:SS".
func formatDuration(d time.Duration) string {
	total := int64(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
