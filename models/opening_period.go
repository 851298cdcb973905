package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ISO weekday numbering, Monday-first.
const (
	Monday = 1 + iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// EndOfDaySeconds is 23:59:59 expressed as seconds since midnight.
const EndOfDaySeconds = 23*3600 + 59*60 + 59

var ErrEndNotAfterStart = errors.New("end must be after start")

// OpeningPeriod is one scheduled open window for a store on a given weekday.
// Start and end are local times of day ("HH:MM" or "HH:MM:SS"). Leaving both
// empty means the store is closed all day on that weekday. A store may have
// several periods on the same weekday (split shifts).
type OpeningPeriod struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	StoreID   uuid.UUID `gorm:"type:uuid;not null;index" json:"store_id"`
	Weekday   int       `gorm:"not null;index" json:"weekday"` // 1=Monday .. 7=Sunday
	Start     *string   `json:"start"`
	End       *string   `json:"end"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *OpeningPeriod) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Validate checks the weekday range, the time formats, and that end is
// strictly after start when both are present.
func (p *OpeningPeriod) Validate() error {
	if p.Weekday < Monday || p.Weekday > Sunday {
		return fmt.Errorf("weekday must be between 1 (Monday) and 7 (Sunday), got %d", p.Weekday)
	}

	var start, end int
	var err error
	if p.Start != nil {
		if start, err = ParseTimeOfDay(*p.Start); err != nil {
			return err
		}
	}
	if p.End != nil {
		if end, err = ParseTimeOfDay(*p.End); err != nil {
			return err
		}
	}
	if p.Start != nil && p.End != nil && end <= start {
		return ErrEndNotAfterStart
	}
	return nil
}

// Matches reports whether the given time of day (seconds since midnight)
// falls inside this period. A missing start counts as midnight and a missing
// end as 23:59:59; both missing means closed all day, which never matches.
// The comparison is inclusive on both ends.
func (p *OpeningPeriod) Matches(secondsOfDay int) bool {
	if p.Start == nil && p.End == nil {
		return false
	}

	start := 0
	if p.Start != nil {
		s, err := ParseTimeOfDay(*p.Start)
		if err != nil {
			return false
		}
		start = s
	}

	end := EndOfDaySeconds
	if p.End != nil {
		e, err := ParseTimeOfDay(*p.End)
		if err != nil {
			return false
		}
		end = e
	}

	return start <= secondsOfDay && secondsOfDay <= end
}

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS" into seconds since midnight.
func ParseTimeOfDay(value string) (int, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Hour()*3600 + t.Minute()*60 + t.Second(), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q, expected HH:MM or HH:MM:SS", value)
}

// ISOWeekday returns the ISO weekday for t: 1=Monday .. 7=Sunday.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return Sunday
	}
	return wd
}

// SecondsOfDay returns t's wall-clock time as seconds since midnight.
func SecondsOfDay(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}
