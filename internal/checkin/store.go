package checkin

import (
	"context"

	"github.com/google/uuid"

	"github.com/eventplanner/backend/internal/models"
)

// Store answers check-in history queries. The bus itself retains nothing; a
// Store implementation is the pluggable persistence behind search.
type Store interface {
	Search(ctx context.Context, eventID uuid.UUID, query string, limit int) ([]models.CheckIn, error)
}

// EmptyStore is the live-only default: no history is kept, search always
// returns no rows.
type EmptyStore struct{}

func (EmptyStore) Search(context.Context, uuid.UUID, string, int) ([]models.CheckIn, error) {
	return []models.CheckIn{}, nil
}
