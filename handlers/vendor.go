package handlers

import (
	"net/http"

	"storehub-backend/models"
	"storehub-backend/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type VendorHandler struct {
	DB *gorm.DB
}

// CreateVendor registers a vendor together with its owner account. Admin
// only; self-service vendor signup is not offered.
func (h *VendorHandler) CreateVendor(c *gin.Context) {
	var req struct {
		Name          string `json:"name" binding:"required"`
		OwnerEmail    string `json:"owner_email" binding:"required,email"`
		OwnerPassword string `json:"owner_password" binding:"required,min=8"`
		OwnerName     string `json:"owner_name"`
		Phone         string `json:"phone"`
		MaxBranches   int    `json:"max_branches"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	slug := utils.Slugify(req.Name)

	var existing models.Vendor
	if err := h.DB.Where("slug = ?", slug).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "A vendor with this name already exists"})
		return
	}

	var existingUser models.User
	if err := h.DB.Where("email = ?", req.OwnerEmail).First(&existingUser).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.OwnerPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	maxBranches := req.MaxBranches
	if maxBranches <= 0 {
		maxBranches = 3
	}

	tx := h.DB.Begin()

	owner := models.User{
		Email:    req.OwnerEmail,
		Password: string(hashedPassword),
		Name:     req.OwnerName,
		Role:     "vendor_owner",
	}
	if err := tx.Create(&owner).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create owner account"})
		return
	}

	vendor := models.Vendor{
		Name:        req.Name,
		Slug:        slug,
		OwnerID:     owner.ID,
		Email:       req.OwnerEmail,
		Phone:       req.Phone,
		MaxBranches: maxBranches,
	}
	if err := tx.Create(&vendor).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create vendor"})
		return
	}

	if err := tx.Model(&owner).Update("vendor_id", vendor.ID).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to link owner to vendor"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to finalize vendor creation"})
		return
	}

	h.DB.Preload("Owner").First(&vendor, vendor.ID)
	c.JSON(http.StatusCreated, vendor)
}

func (h *VendorHandler) ListVendors(c *gin.Context) {
	var vendors []models.Vendor
	if err := h.DB.Preload("Stores").Order("name").Find(&vendors).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch vendors"})
		return
	}

	c.JSON(http.StatusOK, vendors)
}

// UpdateVendor lets an admin adjust a vendor's branch allowance and contact
// details.
func (h *VendorHandler) UpdateVendor(c *gin.Context) {
	id := c.Param("id")

	var vendor models.Vendor
	if err := h.DB.Where("id = ?", id).First(&vendor).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vendor not found"})
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Phone       *string `json:"phone"`
		Email       *string `json:"email"`
		MaxBranches *int    `json:"max_branches"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.MaxBranches != nil {
		if *req.MaxBranches < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max_branches must be at least 1"})
			return
		}
		updates["max_branches"] = *req.MaxBranches
	}

	if len(updates) > 0 {
		if err := h.DB.Model(&vendor).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update vendor"})
			return
		}
	}

	c.JSON(http.StatusOK, vendor)
}
