package events

import (
	"time"

	"github.com/eventplanner/backend/internal/models"
)

// Resolve derives an event's effective lifecycle state from its record and the
// given instant. Pure: no I/O, no randomness, and it reads only the explicit
// status override and the schedule.
//
// An explicit CANCELLED or TRASHED override wins unconditionally. Any other
// stored status (including LIVE set by publish) is a scheduling hint; the
// time-derived value is what callers see.
func Resolve(e *models.Event, now time.Time) models.EventStatus {
	if e.Status != nil {
		if s := *e.Status; s == models.StatusCancelled || s == models.StatusTrashed {
			return s
		}
	}
	if e.StartsAt == nil || e.EndsAt == nil {
		return models.StatusDraft
	}
	if now.Before(*e.StartsAt) {
		return models.StatusDraft
	}
	if !now.After(*e.EndsAt) {
		return models.StatusLive
	}
	return models.StatusCompleted
}
