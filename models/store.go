package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is a physical branch owned by a vendor. It is the aggregate root for
// its opening periods and its status history.
type Store struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	VendorID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"vendor_id"`
	Vendor         Vendor          `gorm:"foreignKey:VendorID" json:"-"`
	Name           string          `gorm:"not null" json:"name"`
	Slug           string          `gorm:"uniqueIndex;not null" json:"slug"`
	ManagerName    string          `json:"manager_name,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	Email          string          `json:"email,omitempty"`
	Description    string          `json:"description,omitempty"`
	City           string          `json:"city,omitempty"`
	Latitude       float64         `gorm:"not null" json:"latitude"`
	Longitude      float64         `gorm:"not null" json:"longitude"`
	DeliveryRadius float64         `gorm:"default:5" json:"delivery_radius"`
	MinOrderValue  float64         `gorm:"default:0" json:"min_order_value"`
	Rating         float64         `gorm:"default:0" json:"rating"`
	PreparingTime  int             `gorm:"default:0" json:"preparing_time"` // minutes
	IsDriveThru    bool            `gorm:"default:false" json:"is_drive_thru"`
	IsMain         bool            `gorm:"default:false" json:"is_main"`
	IsActive       bool            `gorm:"default:true" json:"is_active"`
	OpeningPeriods []OpeningPeriod `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE" json:"opening_periods,omitempty"`
	Statuses       []StoreStatus   `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (s *Store) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s *Store) HasContactDetails() bool {
	return s.ManagerName != "" || s.Phone != "" || s.Email != ""
}
