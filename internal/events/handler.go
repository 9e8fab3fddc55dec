package events

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eventplanner/backend/internal/middleware"
	"github.com/eventplanner/backend/internal/models"
	"github.com/eventplanner/backend/pkg/response"
)

// Request is the body for POST /events and PUT /events/:id.
type Request struct {
	Name              string     `json:"name" binding:"required"`
	Description       string     `json:"description"`
	Venue             *string    `json:"venue"`
	Address           *string    `json:"address"`
	City              *string    `json:"city"`
	Category          *string    `json:"category"`
	EventMode         string     `json:"event_mode" binding:"required,oneof=VIRTUAL IN_PERSON HYBRID"`
	StartsAt          *time.Time `json:"starts_at"`
	EndsAt            *time.Time `json:"ends_at"`
	PriceCents        *int       `json:"price_cents"`
	BannerURL         *string    `json:"banner_url"`
	ExpectedAttendees *int       `json:"expected_attendees"`
}

func (r Request) input() Input {
	return Input{
		Name:              r.Name,
		Description:       r.Description,
		Venue:             r.Venue,
		Address:           r.Address,
		City:              r.City,
		Category:          r.Category,
		EventMode:         models.EventMode(r.EventMode),
		StartsAt:          r.StartsAt,
		EndsAt:            r.EndsAt,
		PriceCents:        r.PriceCents,
		BannerURL:         r.BannerURL,
		ExpectedAttendees: r.ExpectedAttendees,
	}
}

// Handler handles event HTTP endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates an event handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the event routes on the given group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/events", h.List)
	rg.POST("/events", h.Create)
	rg.GET("/events/upcoming", h.Upcoming)
	rg.GET("/events/cities", h.Cities)
	rg.GET("/events/:id", h.GetByID)
	rg.PUT("/events/:id", h.Update)
	rg.DELETE("/events/:id", h.Delete)
	rg.DELETE("/events/:id/purge", h.Purge)
	rg.PATCH("/events/:id/cancel", h.Cancel)
	rg.PATCH("/events/:id/trash", h.Trash)
	rg.PATCH("/events/:id/restore", h.Restore)
	rg.PATCH("/events/:id/publish", h.Publish)
}

// List handles GET /events with status/mode/search filters and paging.
func (h *Handler) List(c *gin.Context) {
	tenantID, isSuperAdmin := middleware.TenantFrom(c)

	q := ListQuery{
		Status:  c.Query("status"),
		City:    c.Query("city"),
		Search:  c.Query("search"),
		Page:    intQuery(c, "page", 1),
		Limit:   intQuery(c, "limit", 10),
		SortBy:  c.Query("sort_by"),
		SortDir: c.Query("sort_dir"),
	}
	if m := c.Query("event_mode"); m != "" {
		mode := models.EventMode(m)
		q.Mode = &mode
	}

	page, err := h.svc.List(c.Request.Context(), q, tenantID, isSuperAdmin)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, page)
}

// GetByID handles GET /events/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	tenantID, isSuperAdmin := middleware.TenantFrom(c)
	view, err := h.svc.GetByID(c.Request.Context(), id, tenantID, isSuperAdmin)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, view)
}

// Create handles POST /events.
func (h *Handler) Create(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	tenantID, _ := middleware.TenantFrom(c)
	view, err := h.svc.Create(c.Request.Context(), req.input(), tenantID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, view)
}

// Update handles PUT /events/:id.
func (h *Handler) Update(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	tenantID, isSuperAdmin := middleware.TenantFrom(c)
	view, err := h.svc.Update(c.Request.Context(), id, req.input(), tenantID, isSuperAdmin)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, view)
}

// Delete handles DELETE /events/:id (soft delete to TRASHED).
func (h *Handler) Delete(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	tenantID, isSuperAdmin := middleware.TenantFrom(c)
	if err := h.svc.Delete(c.Request.Context(), id, tenantID, isSuperAdmin); err != nil {
		respondError(c, err)
		return
	}
	response.NoContent(c)
}

// Purge handles DELETE /events/:id/purge (hard delete of trashed records).
func (h *Handler) Purge(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	tenantID, isSuperAdmin := middleware.TenantFrom(c)
	if err := h.svc.Purge(c.Request.Context(), id, tenantID, isSuperAdmin); err != nil {
		respondError(c, err)
		return
	}
	response.NoContent(c)
}

// Cancel handles PATCH /events/:id/cancel.
func (h *Handler) Cancel(c *gin.Context) {
	h.mutate(c, h.svc.Cancel)
}

// Trash handles PATCH /events/:id/trash.
func (h *Handler) Trash(c *gin.Context) {
	h.mutate(c, h.svc.Trash)
}

// Restore handles PATCH /events/:id/restore.
func (h *Handler) Restore(c *gin.Context) {
	h.mutate(c, h.svc.Restore)
}

// Publish handles PATCH /events/:id/publish.
func (h *Handler) Publish(c *gin.Context) {
	h.mutate(c, h.svc.Publish)
}

// Upcoming handles GET /events/upcoming.
func (h *Handler) Upcoming(c *gin.Context) {
	tenantID, isSuperAdmin := middleware.TenantFrom(c)
	limit := intQuery(c, "limit", 10)
	views, err := h.svc.Upcoming(c.Request.Context(), limit, tenantID, isSuperAdmin)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, views)
}

// Cities handles GET /events/cities.
func (h *Handler) Cities(c *gin.Context) {
	tenantID, isSuperAdmin := middleware.TenantFrom(c)
	cities, err := h.svc.Cities(c.Request.Context(), tenantID, isSuperAdmin)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, cities)
}

type mutateFunc func(ctx context.Context, id uuid.UUID, tenantID string, isSuperAdmin bool) (*View, error)

func (h *Handler) mutate(c *gin.Context, fn mutateFunc) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	tenantID, isSuperAdmin := middleware.TenantFrom(c)
	view, err := fn(c.Request.Context(), id, tenantID, isSuperAdmin)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, view)
}

func eventID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return uuid.Nil, false
	}
	return id, true
}

func intQuery(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// respondError maps service errors to HTTP responses.
func respondError(c *gin.Context, err error) {
	var vErr *ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, ErrAccessDenied):
		response.Forbidden(c, err.Error())
	case errors.Is(err, ErrTenantRequired):
		response.BadRequest(c, err.Error())
	case IsStateConflict(err):
		response.Conflict(c, err.Error())
	case errors.As(err, &vErr):
		response.BadRequest(c, err.Error())
	default:
		response.Internal(c, "internal error")
	}
}
