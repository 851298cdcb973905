package status

import (
	"time"

	"storehub-backend/models"

	"github.com/google/uuid"
)

// Label is a resolved store state as shown to customers.
type Label string

const (
	Open   Label = "Open"
	Closed Label = "Closed"
	Busy   Label = "Busy"
)

// Resolution is the answer to "is this store open right now". Remaining is
// set only for temporary Busy/Closed overrides and is never negative.
type Resolution struct {
	Status    Label          `json:"status"`
	Remaining *time.Duration `json:"remaining,omitempty"`
}

// ScheduleSource provides a store's opening periods for one weekday.
type ScheduleSource interface {
	OpeningPeriods(storeID uuid.UUID, weekday int) ([]models.OpeningPeriod, error)
}

// StatusSource provides a store's status overrides whose
// [set_at, expires_at] window contains now, newest set_at first.
type StatusSource interface {
	ActiveOverrides(storeID uuid.UUID, now time.Time) ([]models.StoreStatus, error)
}

// Resolver computes a store's current status from its schedule and status
// history, memoizing results in the injected cache.
type Resolver struct {
	Schedule ScheduleSource
	Statuses StatusSource
	Cache    Cache
	TTL      time.Duration
}

func NewResolver(schedule ScheduleSource, statuses StatusSource, cache Cache) *Resolver {
	return &Resolver{
		Schedule: schedule,
		Statuses: statuses,
		Cache:    cache,
		TTL:      CacheTTL,
	}
}

// Resolve determines the store's status at now.
//
// Outside scheduled opening hours the store is Closed and overrides are not
// consulted. Within hours, the latest active override wins: Busy/Closed carry
// the remaining time until expiry (clamped at zero), Open carries none, and
// an unrecognized value reads as Closed. With no active override the store
// is Open by default. Every input has a defined output; source errors
// degrade to the defensive defaults (no schedule means Closed, no override
// means Open).
func (r *Resolver) Resolve(storeID uuid.UUID, now time.Time) Resolution {
	key := CacheKey(storeID)
	if res, ok := r.Cache.Get(key); ok {
		return res
	}

	weekday := models.ISOWeekday(now)
	seconds := models.SecondsOfDay(now)

	periods, err := r.Schedule.OpeningPeriods(storeID, weekday)
	if err != nil {
		periods = nil
	}

	withinHours := false
	for i := range periods {
		if periods[i].Matches(seconds) {
			withinHours = true
			break
		}
	}
	if !withinHours {
		return r.cache(key, Resolution{Status: Closed})
	}

	overrides, err := r.Statuses.ActiveOverrides(storeID, now)
	if err != nil || len(overrides) == 0 {
		return r.cache(key, Resolution{Status: Open})
	}

	active := overrides[0]
	switch active.Status {
	case models.StatusBusy, models.StatusClosed:
		remaining := active.ExpiresAt.Sub(now)
		if remaining < 0 {
			remaining = 0
		}
		return r.cache(key, Resolution{Status: Label(active.DisplayLabel()), Remaining: &remaining})
	case models.StatusOpen:
		return r.cache(key, Resolution{Status: Open})
	default:
		return r.cache(key, Resolution{Status: Closed})
	}
}

// Invalidate drops the cached resolution for a store. Callers must invoke it
// after every mutation of the store, its opening hours, or its status log.
func (r *Resolver) Invalidate(storeID uuid.UUID) {
	r.Cache.Delete(CacheKey(storeID))
}

func (r *Resolver) cache(key string, res Resolution) Resolution {
	ttl := r.TTL
	if ttl <= 0 {
		ttl = CacheTTL
	}
	r.Cache.Set(key, res, ttl)
	return res
}
