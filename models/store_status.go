package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Manually set store status values.
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
	StatusBusy   = "busy"
)

// StoreStatus is one entry in a store's append-only status history. SetAt is
// assigned at creation and never changes; ExpiresAt is derived once from the
// optional duration. Rows are retained as history, never updated or deleted.
type StoreStatus struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	StoreID         uuid.UUID `gorm:"type:uuid;not null;index" json:"store_id"`
	Status          string    `gorm:"not null" json:"status"` // open, closed, busy
	DurationSeconds *int64    `json:"duration_seconds,omitempty"`
	SetAt           time.Time `gorm:"not null;index" json:"set_at"`
	ExpiresAt       time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt       time.Time `json:"created_at"`
}

func (s *StoreStatus) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Duration returns the stored duration, or nil for a status that runs to the
// end of the day.
func (s *StoreStatus) Duration() *time.Duration {
	if s.DurationSeconds == nil {
		return nil
	}
	d := time.Duration(*s.DurationSeconds) * time.Second
	return &d
}

// DisplayLabel maps the stored status value to its display form. Anything
// unrecognized reads as Closed.
func (s *StoreStatus) DisplayLabel() string {
	switch s.Status {
	case StatusOpen:
		return "Open"
	case StatusBusy:
		return "Busy"
	default:
		return "Closed"
	}
}

// ComputeExpiresAt derives the expiry for a status set at setAt. With a
// duration the status expires at setAt+duration; without one it holds for
// the rest of setAt's calendar day, expiring at 23:59:59 local time.
func ComputeExpiresAt(setAt time.Time, duration *time.Duration) time.Time {
	if duration != nil {
		return setAt.Add(*duration)
	}
	return EndOfDay(setAt)
}

// EndOfDay returns 23:59:59 on t's calendar day, in t's location.
func EndOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 23, 59, 59, 0, t.Location())
}
