package models

import (
	"time"

	"github.com/google/uuid"
)

// CheckInScope narrows a check-in to the whole event, a session or a zone.
type CheckInScope string

const (
	ScopeEvent   CheckInScope = "EVENT"
	ScopeSession CheckInScope = "SESSION"
	ScopeZone    CheckInScope = "ZONE"
)

// CheckIn is a single attendee check-in. The ID comes from a process-lifetime
// sequence; submissions are not durable unless archiving is enabled.
type CheckIn struct {
	ID         uint64       `json:"id"`
	EventID    uuid.UUID    `json:"event_id"`
	Scope      CheckInScope `json:"scope"`
	ScopeRef   *string      `json:"scope_ref,omitempty"` // session or zone id; absent for EVENT scope
	AttendeeID *string      `json:"attendee_id,omitempty"`
	Name       string       `json:"name"` // falls back to Code when not provided
	Code       string       `json:"code"`
	At         time.Time    `json:"at"`
}
