package events

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventplanner/backend/internal/clock"
	"github.com/eventplanner/backend/internal/models"
)

// Store is the durable record storage the service orchestrates. Implemented by
// Repository; faked in tests.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	Insert(ctx context.Context, e *models.Event) error
	Update(ctx context.Context, e *models.Event) (*models.Event, error)
	SetStatus(ctx context.Context, id uuid.UUID, status *models.EventStatus) (*models.Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f Filter, now time.Time) ([]models.Event, int, error)
	Upcoming(ctx context.Context, tenantID *string, limit int, now time.Time) ([]models.Event, error)
	Cities(ctx context.Context, tenantID *string) ([]string, error)
}

// View is an event merged with its effective status at read time.
type View struct {
	models.Event
	Status models.EventStatus `json:"status"`
}

// Page is one page of event views.
type Page struct {
	Items []View `json:"items"`
	Total int    `json:"total"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}

// Input carries the client-supplied event fields for create and update.
type Input struct {
	Name              string
	Description       string
	Venue             *string
	Address           *string
	City              *string
	Category          *string
	EventMode         models.EventMode
	StartsAt          *time.Time
	EndsAt            *time.Time
	PriceCents        *int
	BannerURL         *string
	ExpectedAttendees *int
}

// ListQuery narrows List results. Zero values mean no filtering.
type ListQuery struct {
	Status  string
	Mode    *models.EventMode
	City    string
	Search  string
	Page    int
	Limit   int
	SortBy  string
	SortDir string
}

// Service orchestrates the resolver, cache and store with read-through
// population and invalidate-before-write on every mutation.
type Service struct {
	store  Store
	cache  Cache
	clock  clock.Clock
	logger *zap.Logger
}

// NewService creates an event status service.
func NewService(store Store, cache Cache, clk clock.Clock, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cache == nil {
		cache = NopCache{}
	}
	return &Service{store: store, cache: cache, clock: clk, logger: logger}
}

// GetByID resolves an event's effective view, read-through: cache hit skips
// the store; a miss reads the store and populates the cache. The tenant check
// runs on both paths.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID, tenantID string, isSuperAdmin bool) (*View, error) {
	if e, ok := s.cache.Get(ctx, id); ok {
		if err := checkTenant(e, tenantID, isSuperAdmin); err != nil {
			return nil, err
		}
		s.logger.Debug("cache hit", zap.String("event_id", id.String()))
		return s.view(e), nil
	}
	s.logger.Debug("cache miss", zap.String("event_id", id.String()))

	e, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkTenant(e, tenantID, isSuperAdmin); err != nil {
		return nil, err
	}
	s.cache.Put(ctx, e)
	return s.view(e), nil
}

// Create validates the request for its mode, persists the event as DRAFT and
// populates the cache with the fresh record.
func (s *Service) Create(ctx context.Context, in Input, tenantID string) (*View, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, ErrTenantRequired
	}
	if err := validateByMode(in); err != nil {
		return nil, err
	}

	draft := models.StatusDraft
	e := &models.Event{
		TenantID:          &tenantID,
		Name:              in.Name,
		Description:       in.Description,
		Venue:             in.Venue,
		Address:           in.Address,
		City:              in.City,
		Category:          in.Category,
		EventMode:         in.EventMode,
		Status:            &draft,
		StartsAt:          in.StartsAt,
		EndsAt:            in.EndsAt,
		PriceCents:        in.PriceCents,
		BannerURL:         in.BannerURL,
		ExpectedAttendees: in.ExpectedAttendees,
	}
	if err := s.store.Insert(ctx, e); err != nil {
		return nil, err
	}
	s.cache.Put(ctx, e)
	return s.view(e), nil
}

// Update replaces an event's mutable fields. Evicts the cache entry before
// the store write.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input, tenantID string, isSuperAdmin bool) (*View, error) {
	s.cache.Evict(ctx, id)

	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkTenant(existing, tenantID, isSuperAdmin); err != nil {
		return nil, err
	}
	if err := validateByMode(in); err != nil {
		return nil, err
	}

	existing.Name = in.Name
	existing.Description = in.Description
	existing.Venue = in.Venue
	existing.Address = in.Address
	existing.City = in.City
	existing.Category = in.Category
	existing.EventMode = in.EventMode
	existing.StartsAt = in.StartsAt
	existing.EndsAt = in.EndsAt
	existing.PriceCents = in.PriceCents
	existing.BannerURL = in.BannerURL
	existing.ExpectedAttendees = in.ExpectedAttendees

	updated, err := s.store.Update(ctx, existing)
	if err != nil {
		return nil, err
	}
	return s.view(updated), nil
}

// Cancel sets the explicit CANCELLED override.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, tenantID string, isSuperAdmin bool) (*View, error) {
	return s.override(ctx, id, tenantID, isSuperAdmin, models.StatusCancelled, nil)
}

// Trash sets the explicit TRASHED override. An event whose time-derived
// status is currently LIVE must be cancelled first.
func (s *Service) Trash(ctx context.Context, id uuid.UUID, tenantID string, isSuperAdmin bool) (*View, error) {
	return s.override(ctx, id, tenantID, isSuperAdmin, models.StatusTrashed, func(e *models.Event) error {
		if e.Status != nil && *e.Status == models.StatusCancelled {
			return nil
		}
		if Resolve(e, s.clock.Now()) == models.StatusLive {
			return ErrTrashLive
		}
		return nil
	})
}

// Delete soft-deletes: the record is marked TRASHED, not removed.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, tenantID string, isSuperAdmin bool) error {
	_, err := s.override(ctx, id, tenantID, isSuperAdmin, models.StatusTrashed, nil)
	return err
}

// Restore clears the explicit override so the time-derived rule re-applies.
func (s *Service) Restore(ctx context.Context, id uuid.UUID, tenantID string, isSuperAdmin bool) (*View, error) {
	s.cache.Evict(ctx, id)

	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkTenant(existing, tenantID, isSuperAdmin); err != nil {
		return nil, err
	}
	e, err := s.store.SetStatus(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	return s.view(e), nil
}

// Publish sets the explicit LIVE status. The resolver still derives the
// visible state from the schedule; publish only marks intent.
func (s *Service) Publish(ctx context.Context, id uuid.UUID, tenantID string, isSuperAdmin bool) (*View, error) {
	return s.override(ctx, id, tenantID, isSuperAdmin, models.StatusLive, nil)
}

// Purge hard-deletes a record. Only permitted when the explicit status is
// already TRASHED.
func (s *Service) Purge(ctx context.Context, id uuid.UUID, tenantID string, isSuperAdmin bool) error {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := checkTenant(existing, tenantID, isSuperAdmin); err != nil {
		return err
	}
	if existing.Status == nil || *existing.Status != models.StatusTrashed {
		return ErrPurgeNotTrashed
	}
	s.cache.Evict(ctx, id)
	return s.store.Delete(ctx, id)
}

// List returns a tenant-scoped page of event views. The status filter is
// applied store-side with predicates equivalent to Resolve.
func (s *Service) List(ctx context.Context, q ListQuery, tenantID string, isSuperAdmin bool) (*Page, error) {
	scope, err := tenantScope(tenantID, isSuperAdmin)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	items, total, err := s.store.List(ctx, Filter{
		TenantID: scope,
		Status:   q.Status,
		Mode:     q.Mode,
		City:     q.City,
		Search:   q.Search,
		Page:     q.Page,
		Limit:    q.Limit,
		SortBy:   q.SortBy,
		SortDir:  q.SortDir,
	}, now)
	if err != nil {
		return nil, err
	}

	views := make([]View, 0, len(items))
	for i := range items {
		views = append(views, View{Event: items[i], Status: Resolve(&items[i], now)})
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = 10
	}
	return &Page{Items: views, Total: total, Page: page, Limit: limit}, nil
}

// Upcoming returns up to limit events starting after now, soonest first.
func (s *Service) Upcoming(ctx context.Context, limit int, tenantID string, isSuperAdmin bool) ([]View, error) {
	scope, err := tenantScope(tenantID, isSuperAdmin)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	items, err := s.store.Upcoming(ctx, scope, limit, now)
	if err != nil {
		return nil, err
	}
	views := make([]View, 0, len(items))
	for i := range items {
		views = append(views, View{Event: items[i], Status: Resolve(&items[i], now)})
	}
	return views, nil
}

// Cities returns the distinct cities visible to the caller.
func (s *Service) Cities(ctx context.Context, tenantID string, isSuperAdmin bool) ([]string, error) {
	scope, err := tenantScope(tenantID, isSuperAdmin)
	if err != nil {
		return nil, err
	}
	return s.store.Cities(ctx, scope)
}

// override is the shared evict-check-guard-write path for the explicit status
// mutations. The cache entry goes first so a concurrent reader cannot keep a
// pre-mutation snapshot beyond the TTL.
func (s *Service) override(ctx context.Context, id uuid.UUID, tenantID string, isSuperAdmin bool, status models.EventStatus, guard func(*models.Event) error) (*View, error) {
	s.cache.Evict(ctx, id)

	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkTenant(existing, tenantID, isSuperAdmin); err != nil {
		return nil, err
	}
	if guard != nil {
		if err := guard(existing); err != nil {
			return nil, err
		}
	}
	e, err := s.store.SetStatus(ctx, id, &status)
	if err != nil {
		return nil, err
	}
	return s.view(e), nil
}

func (s *Service) view(e *models.Event) *View {
	return &View{Event: *e, Status: Resolve(e, s.clock.Now())}
}

func checkTenant(e *models.Event, tenantID string, isSuperAdmin bool) error {
	if isSuperAdmin {
		return nil
	}
	if e.TenantID == nil || *e.TenantID != tenantID || tenantID == "" {
		return ErrAccessDenied
	}
	return nil
}

func tenantScope(tenantID string, isSuperAdmin bool) (*string, error) {
	if isSuperAdmin {
		return nil, nil
	}
	if strings.TrimSpace(tenantID) == "" {
		return nil, ErrTenantRequired
	}
	return &tenantID, nil
}

func validateByMode(in Input) error {
	if strings.TrimSpace(in.Name) == "" {
		return &ValidationError{Field: "name", Reason: "required"}
	}
	if in.EventMode == models.ModeVirtual {
		return nil
	}
	if in.City == nil || strings.TrimSpace(*in.City) == "" {
		return &ValidationError{Field: "city", Reason: "required for in-person or hybrid events"}
	}
	return nil
}
