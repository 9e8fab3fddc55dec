package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventplanner/backend/internal/models"
)

const eventColumns = `id, tenant_id, name, description, venue, address, city, category, event_mode, status, starts_at, ends_at, price_cents, banner_url, expected_attendees, created_at, updated_at`

// Repository handles event persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an event repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Filter narrows List queries. A nil TenantID means no tenant scoping
// (superadmin). Status takes the effective-status keys (DRAFT, LIVE,
// COMPLETED, CANCELLED, TRASHED, ALL); empty means ALL.
type Filter struct {
	TenantID *string
	Status   string
	Mode     *models.EventMode
	City     string
	Search   string
	Page     int
	Limit    int
	SortBy   string
	SortDir  string
}

// GetByID returns an event by ID, or ErrNotFound.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// Insert persists a new event.
func (r *Repository) Insert(ctx context.Context, e *models.Event) error {
	const q = `INSERT INTO events (id, tenant_id, name, description, venue, address, city, category, event_mode, status, starts_at, ends_at, price_cents, banner_url, expected_attendees)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q,
		e.TenantID, e.Name, e.Description, e.Venue, e.Address, e.City, e.Category,
		e.EventMode, e.Status, e.StartsAt, e.EndsAt, e.PriceCents, e.BannerURL, e.ExpectedAttendees).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// Update rewrites an event's mutable fields and returns the stored row.
func (r *Repository) Update(ctx context.Context, e *models.Event) (*models.Event, error) {
	q := `UPDATE events SET name = $1, description = $2, venue = $3, address = $4, city = $5, category = $6, event_mode = $7, starts_at = $8, ends_at = $9, price_cents = $10, banner_url = $11, expected_attendees = $12, updated_at = NOW()
		WHERE id = $13
		RETURNING ` + eventColumns
	updated, err := scanEvent(r.pool.QueryRow(ctx, q,
		e.Name, e.Description, e.Venue, e.Address, e.City, e.Category, e.EventMode,
		e.StartsAt, e.EndsAt, e.PriceCents, e.BannerURL, e.ExpectedAttendees, e.ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return updated, nil
}

// SetStatus writes the explicit status override (nil clears it) and returns
// the stored row.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status *models.EventStatus) (*models.Event, error) {
	q := `UPDATE events SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING ` + eventColumns
	e, err := scanEvent(r.pool.QueryRow(ctx, q, status, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// Delete removes an event row permanently.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM events WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// statusPredicate translates an effective-status key into the SQL predicate
// equivalent to Resolve. The derived states read the instant bound to nowArg;
// the override states ignore it, so their callers pass "". A record counts as
// overridden only for CANCELLED/TRASHED; any other stored status defers to
// the schedule, exactly like Resolve.
func statusPredicate(key string, nowArg string) string {
	notOverridden := `(status IS NULL OR status NOT IN ('CANCELLED','TRASHED'))`
	switch key {
	case string(models.StatusDraft):
		return notOverridden + ` AND (starts_at IS NULL OR ends_at IS NULL OR starts_at > ` + nowArg + `)`
	case string(models.StatusLive):
		return notOverridden + ` AND starts_at <= ` + nowArg + ` AND ends_at >= ` + nowArg
	case string(models.StatusCompleted):
		return notOverridden + ` AND ends_at < ` + nowArg
	case string(models.StatusCancelled):
		return `status = 'CANCELLED'`
	case string(models.StatusTrashed):
		return `status = 'TRASHED'`
	default: // ALL or empty
		return ""
	}
}

var sortColumns = map[string]string{
	"created_at":  "created_at",
	"updated_at":  "updated_at",
	"starts_at":   "starts_at",
	"price_cents": "price_cents",
	"name":        "name",
}

// List returns a page of events matching the filter plus the total match count.
// `now` comes from the caller's clock so the store-side predicates and Resolve
// agree on the same instant.
func (r *Repository) List(ctx context.Context, f Filter, now time.Time) ([]models.Event, int, error) {
	var conds []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.TenantID != nil {
		conds = append(conds, "tenant_id = "+arg(*f.TenantID))
	}
	switch key := strings.ToUpper(f.Status); key {
	case string(models.StatusDraft), string(models.StatusLive), string(models.StatusCompleted):
		conds = append(conds, statusPredicate(key, arg(now)))
	case string(models.StatusCancelled), string(models.StatusTrashed):
		conds = append(conds, statusPredicate(key, ""))
	}
	if f.Mode != nil {
		conds = append(conds, "event_mode = "+arg(*f.Mode))
	}
	if f.City != "" {
		conds = append(conds, "LOWER(city) = LOWER("+arg(f.City)+")")
	}
	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		conds = append(conds, "(name ILIKE "+p+" OR description ILIKE "+p+" OR venue ILIKE "+p+" OR address ILIKE "+p+")")
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM events"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortCol, ok := sortColumns[f.SortBy]
	if !ok {
		sortCol = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(f.SortDir, "ASC") {
		dir = "ASC"
	}

	limit := f.Limit
	if limit < 1 {
		limit = 10
	} else if limit > 100 {
		limit = 100
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	q := "SELECT " + eventColumns + " FROM events" + where +
		" ORDER BY " + sortCol + " " + dir +
		" LIMIT " + arg(limit) + " OFFSET " + arg((page-1)*limit)

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *e)
	}
	return list, total, rows.Err()
}

// Upcoming returns events starting after now, soonest first.
func (r *Repository) Upcoming(ctx context.Context, tenantID *string, limit int, now time.Time) ([]models.Event, error) {
	if limit < 1 {
		limit = 10
	} else if limit > 100 {
		limit = 100
	}
	q := `SELECT ` + eventColumns + ` FROM events WHERE starts_at > $1`
	args := []interface{}{now}
	if tenantID != nil {
		q += ` AND tenant_id = $2`
		args = append(args, *tenantID)
	}
	q += fmt.Sprintf(` ORDER BY starts_at ASC LIMIT %d`, limit)

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *e)
	}
	return list, rows.Err()
}

// Cities returns the distinct non-null cities across events, tenant-scoped
// unless tenantID is nil.
func (r *Repository) Cities(ctx context.Context, tenantID *string) ([]string, error) {
	q := `SELECT DISTINCT city FROM events WHERE city IS NOT NULL`
	var args []interface{}
	if tenantID != nil {
		q += ` AND tenant_id = $1`
		args = append(args, *tenantID)
	}
	q += ` ORDER BY city`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cities []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		cities = append(cities, c)
	}
	return cities, rows.Err()
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.TenantID, &e.Name, &e.Description, &e.Venue, &e.Address, &e.City,
		&e.Category, &e.EventMode, &e.Status, &e.StartsAt, &e.EndsAt, &e.PriceCents,
		&e.BannerURL, &e.ExpectedAttendees, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
