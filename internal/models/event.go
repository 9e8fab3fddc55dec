package models

import (
	"time"

	"github.com/google/uuid"
)

// EventStatus is an event lifecycle state. CANCELLED and TRASHED are stored as
// explicit overrides; DRAFT, LIVE and COMPLETED are normally derived from the
// event's schedule at read time.
type EventStatus string

const (
	StatusDraft     EventStatus = "DRAFT"
	StatusLive      EventStatus = "LIVE"
	StatusCompleted EventStatus = "COMPLETED"
	StatusCancelled EventStatus = "CANCELLED"
	StatusTrashed   EventStatus = "TRASHED"
)

// EventMode describes how an event is held.
type EventMode string

const (
	ModeVirtual  EventMode = "VIRTUAL"
	ModeInPerson EventMode = "IN_PERSON"
	ModeHybrid   EventMode = "HYBRID"
)

// Event is the stored event record. Status holds the explicit lifecycle
// override; nil means the effective status is derived from StartsAt/EndsAt.
type Event struct {
	ID                uuid.UUID    `json:"id"`
	TenantID          *string      `json:"tenant_id,omitempty"` // nil only for legacy/superadmin-created records
	Name              string       `json:"name"`
	Description       string       `json:"description,omitempty"`
	Venue             *string      `json:"venue,omitempty"`
	Address           *string      `json:"address,omitempty"`
	City              *string      `json:"city,omitempty"`
	Category          *string      `json:"category,omitempty"`
	EventMode         EventMode    `json:"event_mode"`
	Status            *EventStatus `json:"status,omitempty"`
	StartsAt          *time.Time   `json:"starts_at,omitempty"`
	EndsAt            *time.Time   `json:"ends_at,omitempty"`
	PriceCents        *int         `json:"price_cents,omitempty"`
	BannerURL         *string      `json:"banner_url,omitempty"`
	ExpectedAttendees *int         `json:"expected_attendees,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}
