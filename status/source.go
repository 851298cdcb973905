package status

import (
	"time"

	"storehub-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DBSource reads schedules and status history from the database. It
// implements both ScheduleSource and StatusSource.
type DBSource struct {
	DB *gorm.DB
}

func (s *DBSource) OpeningPeriods(storeID uuid.UUID, weekday int) ([]models.OpeningPeriod, error) {
	var periods []models.OpeningPeriod
	err := s.DB.Where("store_id = ? AND weekday = ?", storeID, weekday).Find(&periods).Error
	return periods, err
}

// ActiveOverrides returns status rows whose [set_at, expires_at] window
// contains now, ordered newest set_at first. Exact set_at ties fall back to
// creation order so the result is deterministic.
func (s *DBSource) ActiveOverrides(storeID uuid.UUID, now time.Time) ([]models.StoreStatus, error) {
	var statuses []models.StoreStatus
	err := s.DB.
		Where("store_id = ? AND set_at <= ? AND expires_at >= ?", storeID, now, now).
		Order("set_at DESC, created_at DESC").
		Find(&statuses).Error
	return statuses, err
}

// NewDBResolver wires a Resolver to the database with the given cache.
func NewDBResolver(db *gorm.DB, cache Cache) *Resolver {
	source := &DBSource{DB: db}
	return NewResolver(source, source, cache)
}
