package checkin

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventplanner/backend/internal/models"
)

// Repository persists archived check-ins. It implements Store, so enabling
// the archive pipeline makes search persistence-backed.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a check-in repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert stores one archived check-in. seq is the bus-assigned id, unique only
// within one process lifetime, so the table carries its own identity column.
func (r *Repository) Insert(ctx context.Context, rec *models.CheckIn) error {
	const q = `INSERT INTO checkins (event_id, seq, scope, scope_ref, attendee_id, name, code, checked_in_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.pool.Exec(ctx, q, rec.EventID, rec.ID, rec.Scope, rec.ScopeRef, rec.AttendeeID, rec.Name, rec.Code, rec.At)
	return err
}

// Search returns archived check-ins for an event, newest first, optionally
// filtered by name/code/attendee.
func (r *Repository) Search(ctx context.Context, eventID uuid.UUID, query string, limit int) ([]models.CheckIn, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}
	q := `SELECT seq, event_id, scope, scope_ref, attendee_id, name, code, checked_in_at
		FROM checkins WHERE event_id = $1`
	args := []interface{}{eventID}
	if query != "" {
		q += ` AND (name ILIKE $2 OR code ILIKE $2 OR attendee_id ILIKE $2)`
		args = append(args, "%"+query+"%")
	}
	q += ` ORDER BY checked_in_at DESC LIMIT ` + strconv.Itoa(limit)

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.CheckIn
	for rows.Next() {
		var rec models.CheckIn
		if err := rows.Scan(&rec.ID, &rec.EventID, &rec.Scope, &rec.ScopeRef, &rec.AttendeeID, &rec.Name, &rec.Code, &rec.At); err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}
