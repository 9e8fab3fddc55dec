package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/eventplanner/backend/internal/models"
)

func TestNopCacheAlwaysMisses(t *testing.T) {
	t.Parallel()

	c := NopCache{}
	ctx := context.Background()
	e := &models.Event{ID: uuid.New(), Name: "summit"}

	c.Put(ctx, e)
	if got, ok := c.Get(ctx, e.ID); ok || got != nil {
		t.Fatalf("expected miss after put, got %+v", got)
	}
	// Evicting an absent key must not panic.
	c.Evict(ctx, e.ID)
}

func TestCacheKey(t *testing.T) {
	t.Parallel()

	id := uuid.MustParse("5a9f2b61-1d28-4c5e-9b3f-8e7a1c2d3e4f")
	if got := cacheKey(id); got != "event:5a9f2b61-1d28-4c5e-9b3f-8e7a1c2d3e4f" {
		t.Fatalf("unexpected cache key %q", got)
	}
}

// The snapshot stored in the cache must round-trip every field the resolver
// and tenant check read, or a cache hit could change an answer.
func TestEventSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	tenant := "tenant-a"
	status := models.StatusCancelled
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(8 * time.Hour)
	in := models.Event{
		ID:        uuid.New(),
		TenantID:  &tenant,
		Name:      "summit",
		EventMode: models.ModeHybrid,
		Status:    &status,
		StartsAt:  &start,
		EndsAt:    &end,
	}

	raw, err := json.Marshal(&in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out models.Event
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if out.ID != in.ID {
		t.Fatalf("id changed: %s vs %s", out.ID, in.ID)
	}
	if out.TenantID == nil || *out.TenantID != tenant {
		t.Fatalf("tenant id lost: %v", out.TenantID)
	}
	if out.Status == nil || *out.Status != status {
		t.Fatalf("explicit status lost: %v", out.Status)
	}
	now := start.Add(time.Hour)
	if Resolve(&in, now) != Resolve(&out, now) {
		t.Fatal("resolver answer differs across the cache boundary")
	}
}
